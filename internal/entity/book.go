package entity

// Book is the normalized output entity projected from a CatalogRecord at the
// response boundary. It is never mutated after construction.
type Book struct {
	Key         string   `json:"key"`
	Title       string   `json:"title"`
	Authors     []string `json:"authors"`
	Genres      []string `json:"genres"`
	Rating      *float64 `json:"rating,omitempty"`
	RatingCount *int     `json:"rating_count,omitempty"`
	CoverID     *int     `json:"cover_id,omitempty"`
	PublishYear *int     `json:"publish_year,omitempty"`
	Description string   `json:"description,omitempty"`
	Score       *float64 `json:"score,omitempty"`
}

// WorkDetail is the detail view of a single catalog work.
type WorkDetail struct {
	Key              string   `json:"key"`
	Title            string   `json:"title"`
	Description      string   `json:"description,omitempty"`
	Subjects         []string `json:"subjects,omitempty"`
	CoverIDs         []int    `json:"covers,omitempty"`
	FirstPublishDate string   `json:"first_publish_date,omitempty"`
}
