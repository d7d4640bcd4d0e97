package http

import (
	"context"

	"bookrec/internal/entity"
	"bookrec/internal/platform/googlebooks"
	"bookrec/internal/platform/openlibrary"
	"bookrec/internal/recommend"
)

// Recommender is the strategy surface the handlers call into.
type Recommender interface {
	ByGenre(ctx context.Context, p recommend.GenreParams) []entity.Book
	SimilarAuthors(ctx context.Context, targetAuthor string, limit int) []entity.Author
	SimilarBooks(ctx context.Context, targetBook string, limit int) []entity.Book
}

// Catalog covers the direct lookups that bypass the recommendation
// strategies.
type Catalog interface {
	GetAuthorDetail(ctx context.Context, authorKey string) (*entity.Author, error)
	GetAuthorWorks(ctx context.Context, authorKey string, limit int) ([]entity.Book, error)
	SearchAuthors(ctx context.Context, name string, limit int) ([]openlibrary.AuthorSummary, error)
	SearchBooksByTitle(ctx context.Context, query string, limit, offset int) ([]entity.CatalogRecord, error)
	GetWork(ctx context.Context, workKey string) (*entity.WorkDetail, error)
}

// Editions resolves the best rated edition of a record.
type Editions interface {
	BestEdition(ctx context.Context, rec entity.CatalogRecord) (*googlebooks.Volume, error)
}

// Summaries supplies encyclopedia summaries for descriptions.
type Summaries interface {
	Summary(ctx context.Context, name string) string
}
