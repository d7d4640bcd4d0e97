package http

import (
	"net/http"

	"github.com/go-chi/chi/v5"
)

// Handlers bundles everything the router mounts.
type Handlers struct {
	Genre   *GenreHandler
	Author  *AuthorHandler
	Book    *BookHandler
	Suggest *SuggestHandler
}

// NewRouter wires the API surface. Middleware is applied in the given order.
func NewRouter(h Handlers, middleware ...func(http.Handler) http.Handler) *chi.Mux {
	r := chi.NewRouter()
	for _, m := range middleware {
		r.Use(m)
	}

	r.Get("/healthz", func(w http.ResponseWriter, _ *http.Request) {
		w.WriteHeader(http.StatusOK)
		_, _ = w.Write([]byte("ok"))
	})

	r.Route("/api", func(r chi.Router) {
		r.Get("/genre_filter", h.Genre.Filter)

		r.Get("/author", h.Author.Recommendations)
		r.Get("/author/{authorKey}", h.Author.Detail)
		r.Get("/author/{authorKey}/works", h.Author.Works)

		r.Get("/book", h.Book.Recommendations)
		r.Get("/book/{workKey}", h.Book.Detail)

		r.Get("/author_suggest", h.Suggest.Authors)
		r.Get("/book_suggest", h.Suggest.Books)
	})

	return r
}
