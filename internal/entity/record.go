package entity

// CatalogRecord is one upstream search document in its provider field shape.
// Key is unique within one result page but may repeat across pages, so
// consumers paging through results must dedupe on it.
type CatalogRecord struct {
	Key              string   `json:"key"`
	Title            string   `json:"title"`
	Subtitle         string   `json:"subtitle,omitempty"`
	AuthorNames      []string `json:"author_name"`
	Subjects         []string `json:"subject"`
	RatingsAverage   *float64 `json:"ratings_average"`
	RatingsCount     *int     `json:"ratings_count"`
	CoverID          *int     `json:"cover_i"`
	FirstPublishYear *int     `json:"first_publish_year"`
	EditionCount     *int     `json:"edition_count,omitempty"`
	ISBN             []string `json:"isbn,omitempty"`

	// Ratio is the subject-overlap ratio against a search target, attached by
	// the related-book search. Not an upstream field.
	Ratio float64 `json:"-"`
}

// Book projects the record to the normalized output entity.
func (r CatalogRecord) Book() Book {
	title := r.Title
	if title == "" {
		title = "Unknown"
	}
	return Book{
		Key:         r.Key,
		Title:       title,
		Authors:     r.AuthorNames,
		Genres:      r.Subjects,
		Rating:      r.RatingsAverage,
		RatingCount: r.RatingsCount,
		CoverID:     r.CoverID,
		PublishYear: r.FirstPublishYear,
	}
}
