package entity

// Link is an external reference attached to an author by the upstream catalog.
type Link struct {
	Title string `json:"title,omitempty"`
	URL   string `json:"url,omitempty"`
}

// Author is the normalized author entity. SimilarityScore is assigned exactly
// once, by the similar-author ranking strategy; plain lookups leave it nil.
type Author struct {
	Key             string   `json:"key"`
	Name            string   `json:"name"`
	BirthDate       string   `json:"birth_date,omitempty"`
	DeathDate       string   `json:"death_date,omitempty"`
	Bio             string   `json:"bio,omitempty"`
	WorksCount      *int     `json:"works_count,omitempty"`
	Subjects        []string `json:"subjects"`
	Links           []Link   `json:"links,omitempty"`
	TopWork         string   `json:"top_work,omitempty"`
	AlternateNames  []string `json:"alternate_names,omitempty"`
	Rating          *float64 `json:"rating,omitempty"`
	SimilarityScore *float64 `json:"similarity_score,omitempty"`
	PhotoID         *int     `json:"photo_id,omitempty"`
}

// RelatedAuthor is one entry of the related-author candidate pool. Score is the
// number of subject-combination queries the author appeared under.
type RelatedAuthor struct {
	Name  string `json:"name"`
	Key   string `json:"key"`
	Score int    `json:"score"`
}
