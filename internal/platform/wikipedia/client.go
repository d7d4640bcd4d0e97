package wikipedia

import (
	"context"
	"log"
	"net/http"
	"net/url"
	"time"

	json "github.com/goccy/go-json"
	lru "github.com/hashicorp/golang-lru/v2"
)

const summaryCacheSize = 128

// Client fetches plain-text page summaries from the Wikipedia REST API.
type Client struct {
	httpClient *http.Client
	baseURL    string
	userAgent  string
	cache      *lru.Cache[string, string]
}

func NewClient(userAgent string) *Client {
	cache, _ := lru.New[string, string](summaryCacheSize)
	return &Client{
		httpClient: &http.Client{
			Timeout: 10 * time.Second,
		},
		baseURL:   "https://en.wikipedia.org/api/rest_v1/page/summary",
		userAgent: userAgent,
		cache:     cache,
	}
}

// Summary returns the lead extract for the named page, or an empty string on
// any failure. Summaries are decoration, so errors are logged and swallowed.
func (c *Client) Summary(ctx context.Context, name string) string {
	if cached, ok := c.cache.Get(name); ok {
		return cached
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodGet, c.baseURL+"/"+url.PathEscape(name), nil)
	if err != nil {
		return ""
	}
	req.Header.Set("User-Agent", c.userAgent)

	resp, err := c.httpClient.Do(req)
	if err != nil {
		log.Printf("wikipedia summary for %q failed: %v", name, err)
		return ""
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		return ""
	}

	var res struct {
		Extract string `json:"extract"`
	}
	if err := json.NewDecoder(resp.Body).Decode(&res); err != nil {
		log.Printf("wikipedia summary for %q failed: %v", name, err)
		return ""
	}

	if res.Extract != "" {
		c.cache.Add(name, res.Extract)
	}
	return res.Extract
}
