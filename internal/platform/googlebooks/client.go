package googlebooks

import (
	"context"
	"fmt"
	"net/http"
	"net/url"
	"strconv"
	"time"

	"bookrec/internal/entity"

	json "github.com/goccy/go-json"
)

// retryBackoff is the fixed wait before the single retry allowed on a
// rate-limited ISBN lookup.
const retryBackoff = time.Second

// Client talks to the Google Books volumes API.
type Client struct {
	httpClient *http.Client
	baseURL    string
	apiKey     string
	userAgent  string
}

func NewClient(apiKey, userAgent string) *Client {
	return &Client{
		httpClient: &http.Client{
			Timeout: 15 * time.Second,
		},
		baseURL:   "https://www.googleapis.com/books/v1/volumes",
		apiKey:    apiKey,
		userAgent: userAgent,
	}
}

// Volume is a normalized Google Books volume.
type Volume struct {
	ID            string   `json:"id"`
	Title         string   `json:"title"`
	Authors       []string `json:"authors,omitempty"`
	Publisher     string   `json:"publisher,omitempty"`
	Description   string   `json:"description,omitempty"`
	PageCount     *int     `json:"page_count,omitempty"`
	Categories    []string `json:"categories,omitempty"`
	AverageRating *float64 `json:"average_rating,omitempty"`
	RatingsCount  *int     `json:"ratings_count,omitempty"`
	Language      string   `json:"language,omitempty"`
	Thumbnail     string   `json:"thumbnail,omitempty"`
	InfoLink      string   `json:"info_link,omitempty"`
	PreviewLink   string   `json:"preview_link,omitempty"`
}

type volumesResponse struct {
	Items []volumeItem `json:"items"`
}

type volumeItem struct {
	ID         string `json:"id"`
	VolumeInfo struct {
		Title         string   `json:"title"`
		Authors       []string `json:"authors"`
		Publisher     string   `json:"publisher"`
		Description   string   `json:"description"`
		PageCount     *int     `json:"pageCount"`
		Categories    []string `json:"categories"`
		AverageRating *float64 `json:"averageRating"`
		RatingsCount  *int     `json:"ratingsCount"`
		Language      string   `json:"language"`
		InfoLink      string   `json:"infoLink"`
		PreviewLink   string   `json:"previewLink"`
		ImageLinks    struct {
			Thumbnail      string `json:"thumbnail"`
			SmallThumbnail string `json:"smallThumbnail"`
		} `json:"imageLinks"`
	} `json:"volumeInfo"`
}

func (item volumeItem) normalize() Volume {
	info := item.VolumeInfo
	thumbnail := info.ImageLinks.Thumbnail
	if thumbnail == "" {
		thumbnail = info.ImageLinks.SmallThumbnail
	}
	return Volume{
		ID:            item.ID,
		Title:         info.Title,
		Authors:       info.Authors,
		Publisher:     info.Publisher,
		Description:   info.Description,
		PageCount:     info.PageCount,
		Categories:    info.Categories,
		AverageRating: info.AverageRating,
		RatingsCount:  info.RatingsCount,
		Language:      info.Language,
		Thumbnail:     thumbnail,
		InfoLink:      info.InfoLink,
		PreviewLink:   info.PreviewLink,
	}
}

// SearchVolumes searches by an arbitrary query string.
func (c *Client) SearchVolumes(ctx context.Context, query string, maxResults int) ([]Volume, error) {
	items, err := c.list(ctx, query, maxResults)
	if err != nil {
		return nil, err
	}
	volumes := make([]Volume, len(items))
	for i, item := range items {
		volumes[i] = item.normalize()
	}
	return volumes, nil
}

// GetVolumeByISBN looks a volume up by ISBN. The provider rate-limits this
// endpoint aggressively, so a 429 is retried exactly once after a fixed
// backoff and then treated as a permanent failure.
func (c *Client) GetVolumeByISBN(ctx context.Context, isbn string) (*Volume, error) {
	var lastErr error
	for attempt := 0; attempt < 2; attempt++ {
		if attempt > 0 {
			select {
			case <-time.After(retryBackoff):
			case <-ctx.Done():
				return nil, ctx.Err()
			}
		}

		items, err := c.list(ctx, "isbn:"+isbn, 1)
		if err != nil {
			lastErr = err
			if isRateLimited(err) && attempt == 0 {
				continue
			}
			return nil, err
		}
		if len(items) == 0 {
			return nil, nil
		}
		v := items[0].normalize()
		return &v, nil
	}
	return nil, lastErr
}

// BestEdition returns the first edition of the record with a rating, trying
// each ISBN in turn; when none is rated it falls back to a title search, and
// failing that returns the first edition found.
func (c *Client) BestEdition(ctx context.Context, rec entity.CatalogRecord) (*Volume, error) {
	var first *Volume
	for _, isbn := range rec.ISBN {
		volume, err := c.GetVolumeByISBN(ctx, isbn)
		if err != nil || volume == nil {
			continue
		}
		if first == nil {
			first = volume
		}
		if volume.AverageRating != nil {
			return volume, nil
		}
	}

	if rec.Title != "" {
		volumes, err := c.SearchVolumes(ctx, fmt.Sprintf("intitle:%q", rec.Title), 1)
		if err == nil && len(volumes) > 0 {
			return &volumes[0], nil
		}
	}
	return first, nil
}

func (c *Client) list(ctx context.Context, query string, maxResults int) ([]volumeItem, error) {
	q := url.Values{}
	q.Set("q", query)
	q.Set("maxResults", strconv.Itoa(maxResults))
	if c.apiKey != "" {
		q.Set("key", c.apiKey)
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodGet, c.baseURL+"?"+q.Encode(), nil)
	if err != nil {
		return nil, err
	}
	req.Header.Set("User-Agent", c.userAgent)

	resp, err := c.httpClient.Do(req)
	if err != nil {
		return nil, err
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		return nil, &statusError{code: resp.StatusCode}
	}

	var res volumesResponse
	if err := json.NewDecoder(resp.Body).Decode(&res); err != nil {
		return nil, err
	}
	return res.Items, nil
}

type statusError struct {
	code int
}

func (e *statusError) Error() string {
	return fmt.Sprintf("unexpected status code: %d", e.code)
}

func isRateLimited(err error) bool {
	se, ok := err.(*statusError)
	return ok && se.code == http.StatusTooManyRequests
}
