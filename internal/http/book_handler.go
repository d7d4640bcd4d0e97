package http

import (
	"net/http"

	"bookrec/internal/entity"
	"bookrec/internal/httpx"
	"bookrec/internal/platform/googlebooks"

	"github.com/go-chi/chi/v5"
)

type BookHandler struct {
	recommender Recommender
	catalog     Catalog
	editions    Editions
	summaries   Summaries
}

func NewBookHandler(recommender Recommender, catalog Catalog, editions Editions, summaries Summaries) *BookHandler {
	return &BookHandler{
		recommender: recommender,
		catalog:     catalog,
		editions:    editions,
		summaries:   summaries,
	}
}

type bookQuery struct {
	Book  string `validate:"required,min=2"`
	Limit int    `validate:"gte=1,lte=20"`
}

type bookDetailResponse struct {
	Detail          *entity.WorkDetail  `json:"detail"`
	Edition         *googlebooks.Volume `json:"edition,omitempty"`
	Recommendations []entity.Book       `json:"recommendations"`
}

// Recommendations handles GET /api/book. Unlike the author listing, zero
// results here are a 404: the caller asked about one specific title.
func (h *BookHandler) Recommendations(w http.ResponseWriter, r *http.Request) {
	q := r.URL.Query()
	query := bookQuery{
		Book:  q.Get("book"),
		Limit: intParam(q, "limit", 20),
	}
	if details := validateQuery(query); details != nil {
		httpx.JSONError(r, w, http.StatusBadRequest, "validation_failed", "Invalid query parameters", details)
		return
	}

	books := h.recommender.SimilarBooks(r.Context(), query.Book, query.Limit)
	if len(books) == 0 {
		httpx.JSONError(r, w, http.StatusNotFound, "not_found", "No recommendations found for title "+query.Book, nil)
		return
	}
	httpx.JSONSuccess(r, w, books, map[string]interface{}{"count": len(books)})
}

// Detail handles GET /api/book/{workKey}: the work's detail plus similar-book
// recommendations seeded from its title.
func (h *BookHandler) Detail(w http.ResponseWriter, r *http.Request) {
	key := chi.URLParam(r, "workKey")
	limit := clampInt(intParam(r.URL.Query(), "limit", 10), 1, 20)

	detail, err := h.catalog.GetWork(r.Context(), key)
	if err != nil || detail == nil {
		httpx.JSONError(r, w, http.StatusNotFound, "not_found", "Work not found", nil)
		return
	}

	if detail.Description == "" && h.summaries != nil {
		detail.Description = h.summaries.Summary(r.Context(), detail.Title)
	}

	res := bookDetailResponse{Detail: detail}

	if h.editions != nil && detail.Title != "" {
		if matches, err := h.catalog.SearchBooksByTitle(r.Context(), detail.Title, 1, 0); err == nil && len(matches) > 0 {
			// Edition enrichment is decoration; a failed lookup is not an error.
			res.Edition, _ = h.editions.BestEdition(r.Context(), matches[0])
		}
	}

	res.Recommendations = h.recommender.SimilarBooks(r.Context(), detail.Title, limit)
	if res.Recommendations == nil {
		res.Recommendations = []entity.Book{}
	}

	httpx.JSONSuccess(r, w, res, nil)
}
