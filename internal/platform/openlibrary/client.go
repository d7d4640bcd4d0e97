package openlibrary

import (
	"context"
	"fmt"
	"net/http"
	"net/url"
	"regexp"
	"sort"
	"strconv"
	"strings"
	"time"

	"bookrec/internal/entity"

	json "github.com/goccy/go-json"
	lru "github.com/hashicorp/golang-lru/v2"
	"golang.org/x/sync/errgroup"
	"golang.org/x/time/rate"
)

const (
	searchFields      = "key,title,subtitle,author_name,first_publish_year,edition_count,language,subject,cover_i,ratings_count,ratings_average,isbn"
	relatedPoolFields = "key,title,author_name,subject,cover_i,ratings_count,ratings_average,first_publish_year"

	// fanOutWorkers bounds concurrent subject-combination queries.
	fanOutWorkers = 8

	detailCacheSize = 128
)

// SummaryFetcher supplies encyclopedia summaries for author bios. A failed
// lookup is an empty string, never an error.
type SummaryFetcher interface {
	Summary(ctx context.Context, name string) string
}

// Client talks to the Open Library search and author APIs. The underlying
// http.Client and rate limiter are shared process-wide and safe for
// concurrent use.
type Client struct {
	httpClient *http.Client
	baseURL    string
	userAgent  string
	limiter    *rate.Limiter
	summaries  SummaryFetcher

	// Bounded memoization with no invalidation. A stale entry is acceptable;
	// nothing correctness-critical depends on these.
	authorCache  *lru.Cache[string, entity.Author]
	subjectCache *lru.Cache[string, []string]
}

func NewClient(userAgent string, rps int, summaries SummaryFetcher) *Client {
	authorCache, _ := lru.New[string, entity.Author](detailCacheSize)
	subjectCache, _ := lru.New[string, []string](detailCacheSize)
	return &Client{
		httpClient: &http.Client{
			Timeout: 15 * time.Second,
		},
		baseURL:      "https://openlibrary.org",
		userAgent:    userAgent,
		limiter:      rate.NewLimiter(rate.Every(time.Second/time.Duration(rps)), 1),
		summaries:    summaries,
		authorCache:  authorCache,
		subjectCache: subjectCache,
	}
}

type searchResponse struct {
	NumFound int                    `json:"numFound"`
	Docs     []entity.CatalogRecord `json:"docs"`
}

// AuthorSummary matches one doc of search/authors.json.
type AuthorSummary struct {
	Key            string   `json:"key"`
	Name           string   `json:"name"`
	BirthDate      string   `json:"birth_date"`
	DeathDate      string   `json:"death_date"`
	TopWork        string   `json:"top_work"`
	TopSubjects    []string `json:"top_subjects"`
	WorkCount      *int     `json:"work_count"`
	RatingsAverage *float64 `json:"ratings_average"`
}

type authorDetailResponse struct {
	Name           string          `json:"name"`
	BirthDate      string          `json:"birth_date"`
	DeathDate      string          `json:"death_date"`
	Bio            json.RawMessage `json:"bio"` // string or {type, value}
	Photos         []int           `json:"photos"`
	TopSubjects    []string        `json:"top_subjects"`
	Subjects       []string        `json:"subjects"`
	Links          []entity.Link   `json:"links"`
	TopWork        string          `json:"top_work"`
	AlternateNames []string        `json:"alternate_names"`
	WorksCount     *int            `json:"works_count"`
	RatingsAverage *float64        `json:"ratings_average"`
}

type worksResponse struct {
	Entries []workEntry `json:"entries"`
}

type workEntry struct {
	Key              string   `json:"key"`
	Title            string   `json:"title"`
	Subjects         []string `json:"subjects"`
	EditionCount     int      `json:"edition_count"`
	Covers           []int    `json:"covers"`
	FirstPublishDate string   `json:"first_publish_date"`
}

type workResponse struct {
	Key              string          `json:"key"`
	Title            string          `json:"title"`
	Description      json.RawMessage `json:"description"` // string or {type, value}
	Subjects         []string        `json:"subjects"`
	Covers           []int           `json:"covers"`
	FirstPublishDate string          `json:"first_publish_date"`
}

// SearchBooks queries for works matching every genre, pre-filtered to at
// least minReviews ratings.
func (c *Client) SearchBooks(ctx context.Context, genres []string, minReviews, limit, offset int) ([]entity.CatalogRecord, error) {
	parts := make([]string, len(genres))
	for i, g := range genres {
		parts[i] = "subject:" + g
	}
	q := url.Values{}
	q.Set("q", strings.Join(parts, " AND "))
	q.Set("ratings_count", fmt.Sprintf("[%d TO *]", minReviews))
	q.Set("limit", strconv.Itoa(limit))
	q.Set("offset", strconv.Itoa(offset))
	q.Set("fields", searchFields)

	var res searchResponse
	if err := c.get(ctx, c.baseURL+"/search.json?"+q.Encode(), &res); err != nil {
		return nil, err
	}
	return res.Docs, nil
}

// SearchBooksByTitle is a best-match title search.
func (c *Client) SearchBooksByTitle(ctx context.Context, query string, limit, offset int) ([]entity.CatalogRecord, error) {
	q := url.Values{}
	q.Set("q", query)
	q.Set("limit", strconv.Itoa(limit))
	q.Set("offset", strconv.Itoa(offset))
	q.Set("fields", searchFields)

	var res searchResponse
	if err := c.get(ctx, c.baseURL+"/search.json?"+q.Encode(), &res); err != nil {
		return nil, err
	}
	return res.Docs, nil
}

// SearchAuthors queries the author search endpoint.
func (c *Client) SearchAuthors(ctx context.Context, name string, limit int) ([]AuthorSummary, error) {
	q := url.Values{}
	q.Set("q", name)
	q.Set("limit", strconv.Itoa(limit))

	var res struct {
		Docs []AuthorSummary `json:"docs"`
	}
	if err := c.get(ctx, c.baseURL+"/search/authors.json?"+q.Encode(), &res); err != nil {
		return nil, err
	}
	return res.Docs, nil
}

// WorkSubjects derives an author's top five subjects from their twenty most
// published works. Results are memoized.
func (c *Client) WorkSubjects(ctx context.Context, authorKey string) ([]string, error) {
	key := normalizeKey(authorKey)
	if cached, ok := c.subjectCache.Get(key); ok {
		return cached, nil
	}

	q := url.Values{}
	q.Set("limit", "50")
	q.Set("fields", "subjects,edition_count")
	var res worksResponse
	if err := c.get(ctx, fmt.Sprintf("%s/authors/%s/works.json?%s", c.baseURL, key, q.Encode()), &res); err != nil {
		return nil, err
	}

	entries := res.Entries
	sort.SliceStable(entries, func(i, j int) bool {
		return entries[i].EditionCount > entries[j].EditionCount
	})
	if len(entries) > 20 {
		entries = entries[:20]
	}

	counts := make(map[string]int)
	var order []string
	for _, work := range entries {
		for _, s := range work.Subjects {
			s = strings.ToLower(s)
			if counts[s] == 0 {
				order = append(order, s)
			}
			counts[s]++
		}
	}
	// Most frequent first, first-seen order on ties.
	sort.SliceStable(order, func(i, j int) bool {
		return counts[order[i]] > counts[order[j]]
	})
	if len(order) > 5 {
		order = order[:5]
	}

	c.subjectCache.Add(key, order)
	return order, nil
}

// GetAuthorDetail fetches a single author. Subjects fall back from
// top_subjects to subjects to the author's works, lower-cased and capped at
// five; the bio comes from the encyclopedia summary service with the catalog
// bio as fallback. The returned value is a copy, so callers may attach a
// similarity score without poisoning the cache.
func (c *Client) GetAuthorDetail(ctx context.Context, authorKey string) (*entity.Author, error) {
	key := normalizeKey(authorKey)
	if cached, ok := c.authorCache.Get(key); ok {
		author := cached
		return &author, nil
	}

	var res authorDetailResponse
	if err := c.get(ctx, fmt.Sprintf("%s/authors/%s.json", c.baseURL, key), &res); err != nil {
		return nil, err
	}

	subjects := res.TopSubjects
	if len(subjects) == 0 {
		subjects = res.Subjects
	}
	if len(subjects) == 0 {
		subjects, _ = c.WorkSubjects(ctx, key)
	}
	if len(subjects) == 0 {
		subjects = []string{"science"}
	}
	lowered := make([]string, 0, 5)
	for _, s := range subjects {
		lowered = append(lowered, strings.ToLower(s))
		if len(lowered) == 5 {
			break
		}
	}

	name := res.Name
	if name == "" {
		name = "Unknown Author"
	}

	var bio string
	if c.summaries != nil {
		bio = c.summaries.Summary(ctx, name)
	}
	if bio == "" {
		bio = decodeTextValue(res.Bio)
	}

	var photoID *int
	if len(res.Photos) > 0 && res.Photos[0] > 0 {
		photoID = &res.Photos[0]
	}

	author := entity.Author{
		Key:            key,
		Name:           name,
		BirthDate:      res.BirthDate,
		DeathDate:      res.DeathDate,
		Bio:            bio,
		WorksCount:     res.WorksCount,
		Subjects:       lowered,
		Links:          res.Links,
		TopWork:        res.TopWork,
		AlternateNames: res.AlternateNames,
		Rating:         res.RatingsAverage,
		PhotoID:        photoID,
	}
	c.authorCache.Add(key, author)
	result := author
	return &result, nil
}

// FindRelatedAuthors resolves the target author, then issues one AND-query
// per pair of the target's top subjects and ranks candidate authors by how
// many of those queries they appear under. The target itself is excluded.
func (c *Client) FindRelatedAuthors(ctx context.Context, targetName string, limit int) ([]entity.RelatedAuthor, error) {
	primaries, err := c.SearchAuthors(ctx, targetName, 1)
	if err != nil {
		return nil, err
	}
	if len(primaries) == 0 {
		return nil, nil
	}
	primary := primaries[0]
	primaryKey := normalizeKey(primary.Key)

	subjects := make([]string, 0, len(primary.TopSubjects))
	for _, s := range primary.TopSubjects {
		subjects = append(subjects, strings.ToLower(s))
	}
	if len(subjects) == 0 {
		subjects, _ = c.WorkSubjects(ctx, primaryKey)
	}
	if len(subjects) == 0 {
		subjects = []string{"science"}
	}

	combos := subjectPairs(subjects)

	type comboHit struct {
		key  string
		name string
	}
	hits := make(chan []comboHit, len(combos))

	g := new(errgroup.Group)
	g.SetLimit(fanOutWorkers)
	for _, combo := range combos {
		combo := combo
		g.Go(func() error {
			clauses := make([]string, len(combo))
			for i, s := range combo {
				clauses[i] = fmt.Sprintf("subject:%q", s)
			}
			q := url.Values{}
			q.Set("q", strings.Join(clauses, " AND "))
			q.Set("limit", "50")
			q.Set("fields", "author_key,author_name")

			var res struct {
				Docs []struct {
					AuthorKeys  []string `json:"author_key"`
					AuthorNames []string `json:"author_name"`
				} `json:"docs"`
			}
			if err := c.get(ctx, c.baseURL+"/search.json?"+q.Encode(), &res); err != nil {
				// One failed combination contributes nothing.
				return nil
			}
			batch := make([]comboHit, 0, len(res.Docs))
			for _, doc := range res.Docs {
				if len(doc.AuthorKeys) == 0 || len(doc.AuthorNames) == 0 {
					continue
				}
				key := normalizeKey(doc.AuthorKeys[0])
				if strings.EqualFold(key, primaryKey) {
					continue
				}
				batch = append(batch, comboHit{key: key, name: doc.AuthorNames[0]})
			}
			hits <- batch
			return nil
		})
	}
	_ = g.Wait()
	close(hits)

	scores := make(map[string]int)
	names := make(map[string]string)
	var order []string
	for batch := range hits {
		for _, hit := range batch {
			if scores[hit.key] == 0 {
				order = append(order, hit.key)
				names[hit.key] = hit.name
			}
			scores[hit.key]++
		}
	}
	sort.SliceStable(order, func(i, j int) bool {
		return scores[order[i]] > scores[order[j]]
	})
	if len(order) > limit {
		order = order[:limit]
	}

	results := make([]entity.RelatedAuthor, 0, len(order))
	for _, key := range order {
		results = append(results, entity.RelatedAuthor{Name: names[key], Key: key, Score: scores[key]})
	}
	return results, nil
}

// GetAuthorWorks lists an author's works projected to Books.
func (c *Client) GetAuthorWorks(ctx context.Context, authorKey string, limit int) ([]entity.Book, error) {
	key := normalizeKey(authorKey)
	q := url.Values{}
	q.Set("limit", strconv.Itoa(limit))
	var res worksResponse
	if err := c.get(ctx, fmt.Sprintf("%s/authors/%s/works.json?%s", c.baseURL, key, q.Encode()), &res); err != nil {
		return nil, err
	}

	books := make([]entity.Book, 0, len(res.Entries))
	for _, work := range res.Entries {
		title := work.Title
		if title == "" {
			title = "Unknown"
		}
		book := entity.Book{
			Key:         normalizeKey(work.Key),
			Title:       title,
			Genres:      work.Subjects,
			PublishYear: parseYear(work.FirstPublishDate),
		}
		if len(work.Covers) > 0 && work.Covers[0] > 0 {
			book.CoverID = &work.Covers[0]
		}
		books = append(books, book)
	}
	return books, nil
}

// GetWork fetches the detail of a single work.
func (c *Client) GetWork(ctx context.Context, workKey string) (*entity.WorkDetail, error) {
	key := normalizeKey(workKey)
	var res workResponse
	if err := c.get(ctx, fmt.Sprintf("%s/works/%s.json", c.baseURL, key), &res); err != nil {
		return nil, err
	}
	return &entity.WorkDetail{
		Key:              key,
		Title:            res.Title,
		Description:      decodeTextValue(res.Description),
		Subjects:         res.Subjects,
		CoverIDs:         res.Covers,
		FirstPublishDate: res.FirstPublishDate,
	}, nil
}

func (c *Client) get(ctx context.Context, rawURL string, target any) error {
	if err := c.limiter.Wait(ctx); err != nil {
		return err
	}
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, rawURL, nil)
	if err != nil {
		return err
	}
	req.Header.Set("User-Agent", c.userAgent)

	resp, err := c.httpClient.Do(req)
	if err != nil {
		return err
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		return fmt.Errorf("unexpected status code: %d", resp.StatusCode)
	}
	return json.NewDecoder(resp.Body).Decode(target)
}

// normalizeKey strips the path prefix from keys like "/authors/OL123A" or
// "/works/OL45W".
func normalizeKey(key string) string {
	if i := strings.LastIndex(key, "/"); i >= 0 {
		return key[i+1:]
	}
	return key
}

// decodeTextValue handles fields that are either a plain string or a typed
// {type, value} object.
func decodeTextValue(raw json.RawMessage) string {
	if len(raw) == 0 {
		return ""
	}
	var s string
	if err := json.Unmarshal(raw, &s); err == nil {
		return s
	}
	var obj struct {
		Value string `json:"value"`
	}
	if err := json.Unmarshal(raw, &obj); err == nil {
		return obj.Value
	}
	return ""
}

// subjectPairs returns every unordered pair of subjects, or single-element
// combinations when there is only one subject.
func subjectPairs(subjects []string) [][]string {
	var combos [][]string
	for i := 0; i < len(subjects); i++ {
		for j := i + 1; j < len(subjects); j++ {
			combos = append(combos, []string{subjects[i], subjects[j]})
		}
	}
	if len(combos) == 0 {
		for _, s := range subjects {
			combos = append(combos, []string{s})
		}
	}
	return combos
}

var yearPattern = regexp.MustCompile(`\d{4}`)

func parseYear(date string) *int {
	match := yearPattern.FindString(date)
	if match == "" {
		return nil
	}
	year, err := strconv.Atoi(match)
	if err != nil {
		return nil
	}
	return &year
}
