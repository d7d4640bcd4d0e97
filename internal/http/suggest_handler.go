package http

import (
	"log"
	"net/http"

	"bookrec/internal/httpx"
)

// SuggestHandler serves the autocomplete endpoints. Both always answer 200
// with a list; upstream trouble degrades to an empty list so the frontend's
// typeahead never breaks.
type SuggestHandler struct {
	catalog Catalog
}

func NewSuggestHandler(catalog Catalog) *SuggestHandler {
	return &SuggestHandler{catalog: catalog}
}

type authorSuggestion struct {
	Key  string `json:"key"`
	Name string `json:"name"`
}

type bookSuggestion struct {
	Key     string `json:"key"`
	Title   string `json:"title"`
	CoverID *int   `json:"cover_id,omitempty"`
}

// Authors handles GET /api/author_suggest.
func (h *SuggestHandler) Authors(w http.ResponseWriter, r *http.Request) {
	q := r.URL.Query()
	query := q.Get("query")
	limit := clampInt(intParam(q, "limit", 5), 1, 20)

	suggestions := []authorSuggestion{}
	if query != "" {
		results, err := h.catalog.SearchAuthors(r.Context(), query, limit)
		if err != nil {
			log.Printf("author suggest %q failed: %v", query, err)
		}
		for _, a := range results {
			suggestions = append(suggestions, authorSuggestion{Key: a.Key, Name: a.Name})
		}
	}
	httpx.JSONSuccess(r, w, suggestions, map[string]interface{}{"count": len(suggestions)})
}

// Books handles GET /api/book_suggest.
func (h *SuggestHandler) Books(w http.ResponseWriter, r *http.Request) {
	q := r.URL.Query()
	query := q.Get("query")
	limit := clampInt(intParam(q, "limit", 5), 1, 20)

	suggestions := []bookSuggestion{}
	if query != "" {
		results, err := h.catalog.SearchBooksByTitle(r.Context(), query, limit, 0)
		if err != nil {
			log.Printf("book suggest %q failed: %v", query, err)
		}
		for _, rec := range results {
			suggestions = append(suggestions, bookSuggestion{Key: rec.Key, Title: rec.Title, CoverID: rec.CoverID})
		}
	}
	httpx.JSONSuccess(r, w, suggestions, map[string]interface{}{"count": len(suggestions)})
}
