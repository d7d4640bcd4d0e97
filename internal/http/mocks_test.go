package http

import (
	"context"
	"net/http"
	"net/http/httptest"
	"testing"

	"bookrec/internal/entity"
	"bookrec/internal/platform/googlebooks"
	"bookrec/internal/platform/openlibrary"
	"bookrec/internal/recommend"

	json "github.com/goccy/go-json"
	"github.com/stretchr/testify/mock"
	"github.com/stretchr/testify/require"
)

type mockRecommender struct {
	mock.Mock
}

func (m *mockRecommender) ByGenre(ctx context.Context, p recommend.GenreParams) []entity.Book {
	args := m.Called(ctx, p)
	if args.Get(0) == nil {
		return nil
	}
	return args.Get(0).([]entity.Book)
}

func (m *mockRecommender) SimilarAuthors(ctx context.Context, targetAuthor string, limit int) []entity.Author {
	args := m.Called(ctx, targetAuthor, limit)
	if args.Get(0) == nil {
		return nil
	}
	return args.Get(0).([]entity.Author)
}

func (m *mockRecommender) SimilarBooks(ctx context.Context, targetBook string, limit int) []entity.Book {
	args := m.Called(ctx, targetBook, limit)
	if args.Get(0) == nil {
		return nil
	}
	return args.Get(0).([]entity.Book)
}

type mockCatalog struct {
	mock.Mock
}

func (m *mockCatalog) GetAuthorDetail(ctx context.Context, authorKey string) (*entity.Author, error) {
	args := m.Called(ctx, authorKey)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*entity.Author), args.Error(1)
}

func (m *mockCatalog) GetAuthorWorks(ctx context.Context, authorKey string, limit int) ([]entity.Book, error) {
	args := m.Called(ctx, authorKey, limit)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).([]entity.Book), args.Error(1)
}

func (m *mockCatalog) SearchAuthors(ctx context.Context, name string, limit int) ([]openlibrary.AuthorSummary, error) {
	args := m.Called(ctx, name, limit)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).([]openlibrary.AuthorSummary), args.Error(1)
}

func (m *mockCatalog) SearchBooksByTitle(ctx context.Context, query string, limit, offset int) ([]entity.CatalogRecord, error) {
	args := m.Called(ctx, query, limit, offset)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).([]entity.CatalogRecord), args.Error(1)
}

func (m *mockCatalog) GetWork(ctx context.Context, workKey string) (*entity.WorkDetail, error) {
	args := m.Called(ctx, workKey)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*entity.WorkDetail), args.Error(1)
}

type mockEditions struct {
	mock.Mock
}

func (m *mockEditions) BestEdition(ctx context.Context, rec entity.CatalogRecord) (*googlebooks.Volume, error) {
	args := m.Called(ctx, rec)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*googlebooks.Volume), args.Error(1)
}

type mockSummaries struct {
	mock.Mock
}

func (m *mockSummaries) Summary(ctx context.Context, name string) string {
	args := m.Called(ctx, name)
	return args.String(0)
}

type testDeps struct {
	recommender *mockRecommender
	catalog     *mockCatalog
	editions    *mockEditions
	summaries   *mockSummaries
}

func newTestRouter() (http.Handler, *testDeps) {
	deps := &testDeps{
		recommender: new(mockRecommender),
		catalog:     new(mockCatalog),
		editions:    new(mockEditions),
		summaries:   new(mockSummaries),
	}
	router := NewRouter(Handlers{
		Genre:   NewGenreHandler(deps.recommender),
		Author:  NewAuthorHandler(deps.recommender, deps.catalog),
		Book:    NewBookHandler(deps.recommender, deps.catalog, deps.editions, deps.summaries),
		Suggest: NewSuggestHandler(deps.catalog),
	})
	return router, deps
}

func doGet(t *testing.T, router http.Handler, path string) *httptest.ResponseRecorder {
	t.Helper()
	req := httptest.NewRequest(http.MethodGet, path, nil)
	rec := httptest.NewRecorder()
	router.ServeHTTP(rec, req)
	return rec
}

type envelope struct {
	Success bool            `json:"success"`
	Data    json.RawMessage `json:"data"`
	Error   *struct {
		Code    string `json:"code"`
		Message string `json:"message"`
	} `json:"error"`
	Meta map[string]interface{} `json:"meta"`
}

func decodeEnvelope(t *testing.T, rec *httptest.ResponseRecorder) envelope {
	t.Helper()
	var env envelope
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &env))
	return env
}
