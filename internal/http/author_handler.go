package http

import (
	"net/http"

	"bookrec/internal/entity"
	"bookrec/internal/httpx"

	"github.com/abadojack/whatlanggo"
	"github.com/go-chi/chi/v5"
)

type AuthorHandler struct {
	recommender Recommender
	catalog     Catalog
}

func NewAuthorHandler(recommender Recommender, catalog Catalog) *AuthorHandler {
	return &AuthorHandler{recommender: recommender, catalog: catalog}
}

type authorQuery struct {
	Author string `validate:"required,min=2"`
	Limit  int    `validate:"gte=1,lte=20"`
}

// Recommendations handles GET /api/author. Zero-score entries are returned
// rather than filtered; an empty result is a valid 200.
func (h *AuthorHandler) Recommendations(w http.ResponseWriter, r *http.Request) {
	q := r.URL.Query()
	query := authorQuery{
		Author: q.Get("author"),
		Limit:  intParam(q, "limit", 10),
	}
	if details := validateQuery(query); details != nil {
		httpx.JSONError(r, w, http.StatusBadRequest, "validation_failed", "Invalid query parameters", details)
		return
	}

	authors := h.recommender.SimilarAuthors(r.Context(), query.Author, query.Limit)
	if authors == nil {
		authors = []entity.Author{}
	}
	httpx.JSONSuccess(r, w, authors, map[string]interface{}{"count": len(authors)})
}

// Detail handles GET /api/author/{authorKey}.
func (h *AuthorHandler) Detail(w http.ResponseWriter, r *http.Request) {
	key := chi.URLParam(r, "authorKey")
	author, err := h.catalog.GetAuthorDetail(r.Context(), key)
	if err != nil || author == nil {
		httpx.JSONError(r, w, http.StatusNotFound, "not_found", "Author not found", nil)
		return
	}
	httpx.JSONSuccess(r, w, author, nil)
}

// Works handles GET /api/author/{authorKey}/works. When a languages filter is
// given, works are kept only if their title's detected language matches one
// of the requested ISO 639-1 codes.
func (h *AuthorHandler) Works(w http.ResponseWriter, r *http.Request) {
	key := chi.URLParam(r, "authorKey")
	q := r.URL.Query()
	limit := clampInt(intParam(q, "limit", 20), 1, 100)

	works, err := h.catalog.GetAuthorWorks(r.Context(), key, limit)
	if err != nil {
		httpx.JSONError(r, w, http.StatusInternalServerError, "upstream_error", "Could not list author works", nil)
		return
	}

	if languages := listParam(q, "languages"); len(languages) > 0 {
		works = filterByTitleLanguage(works, languages)
	}
	if works == nil {
		works = []entity.Book{}
	}
	httpx.JSONSuccess(r, w, works, map[string]interface{}{"count": len(works)})
}

// filterByTitleLanguage keeps works whose detected title language is in
// langs. Titles the detector is unsure about are kept; dropping them would
// punish short titles, which detection handles poorly.
func filterByTitleLanguage(works []entity.Book, langs []string) []entity.Book {
	wanted := make(map[string]struct{}, len(langs))
	for _, l := range langs {
		wanted[l] = struct{}{}
	}

	filtered := make([]entity.Book, 0, len(works))
	for _, work := range works {
		info := whatlanggo.Detect(work.Title)
		if !info.IsReliable() {
			filtered = append(filtered, work)
			continue
		}
		if _, ok := wanted[info.Lang.Iso6391()]; ok {
			filtered = append(filtered, work)
		}
	}
	return filtered
}
