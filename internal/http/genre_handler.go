package http

import (
	"net/http"

	"bookrec/internal/entity"
	"bookrec/internal/httpx"
	"bookrec/internal/recommend"
)

type GenreHandler struct {
	recommender Recommender
}

func NewGenreHandler(recommender Recommender) *GenreHandler {
	return &GenreHandler{recommender: recommender}
}

type genreQuery struct {
	Genres     []string `validate:"required,min=1,dive,required"`
	MinRating  float64  `validate:"gte=0,lte=5"`
	MinReviews int      `validate:"gte=0"`
	Limit      int      `validate:"gte=1,lte=100"`
	Offset     int      `validate:"gte=0"`
}

// Filter handles GET /api/genre_filter.
func (h *GenreHandler) Filter(w http.ResponseWriter, r *http.Request) {
	q := r.URL.Query()
	query := genreQuery{
		Genres:     listParam(q, "genres"),
		MinRating:  floatParam(q, "min_rating", recommend.DefaultMinRating),
		MinReviews: intParam(q, "min_reviews", recommend.DefaultMinReviews),
		Limit:      intParam(q, "limit", recommend.DefaultLimit),
		Offset:     intParam(q, "offset", 0),
	}
	if details := validateQuery(query); details != nil {
		httpx.JSONError(r, w, http.StatusBadRequest, "validation_failed", "Invalid query parameters", details)
		return
	}

	books := h.recommender.ByGenre(r.Context(), recommend.GenreParams{
		Genres:     query.Genres,
		MinRating:  query.MinRating,
		MinReviews: query.MinReviews,
		Limit:      query.Limit,
		Offset:     query.Offset,
	})
	if books == nil {
		books = []entity.Book{}
	}
	httpx.JSONSuccess(r, w, books, map[string]interface{}{"count": len(books)})
}
