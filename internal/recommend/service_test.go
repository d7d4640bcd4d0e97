package recommend

import (
	"context"
	"errors"
	"testing"

	"bookrec/internal/entity"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"
	"github.com/stretchr/testify/require"
)

type mockCatalog struct {
	mock.Mock
}

func (m *mockCatalog) SearchBooks(ctx context.Context, genres []string, minReviews, limit, offset int) ([]entity.CatalogRecord, error) {
	args := m.Called(ctx, genres, minReviews, limit, offset)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).([]entity.CatalogRecord), args.Error(1)
}

func (m *mockCatalog) GetAuthorDetail(ctx context.Context, authorKey string) (*entity.Author, error) {
	args := m.Called(ctx, authorKey)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*entity.Author), args.Error(1)
}

func (m *mockCatalog) FindRelatedAuthors(ctx context.Context, targetName string, limit int) ([]entity.RelatedAuthor, error) {
	args := m.Called(ctx, targetName, limit)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).([]entity.RelatedAuthor), args.Error(1)
}

func (m *mockCatalog) RelatedBooks(ctx context.Context, targetBook string, maxSubjects int) (BookSearch, error) {
	args := m.Called(ctx, targetBook, maxSubjects)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(BookSearch), args.Error(1)
}

type mockBookSearch struct {
	mock.Mock
}

func (m *mockBookSearch) Target() *entity.CatalogRecord {
	args := m.Called()
	if args.Get(0) == nil {
		return nil
	}
	return args.Get(0).(*entity.CatalogRecord)
}

func (m *mockBookSearch) Fetch(ctx context.Context, limit, offset int) ([]entity.CatalogRecord, error) {
	args := m.Called(ctx, limit, offset)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).([]entity.CatalogRecord), args.Error(1)
}

func ratedRecord(key string, rating float64, count int) entity.CatalogRecord {
	return entity.CatalogRecord{
		Key:            key,
		Title:          "Title " + key,
		RatingsAverage: &rating,
		RatingsCount:   &count,
	}
}

func TestByGenre_FiltersAndSortsByRating(t *testing.T) {
	catalog := new(mockCatalog)
	svc := NewService(catalog)

	batch := []entity.CatalogRecord{
		ratedRecord("a", 4.1, 100),
		ratedRecord("b", 3.9, 500), // below threshold
		ratedRecord("c", 4.7, 80),
		{Key: "d", Title: "Unrated"}, // missing rating counts as 0
		ratedRecord("e", 4.4, 60),
	}
	catalog.On("SearchBooks", mock.Anything, []string{"fantasy"}, 50, 3, 0).
		Return(batch, nil).Once()

	got := svc.ByGenre(context.Background(), GenreParams{
		Genres:     []string{"fantasy"},
		MinRating:  4.0,
		MinReviews: 50,
		Limit:      3,
	})

	require.Len(t, got, 3)
	assert.Equal(t, "c", got[0].Key)
	assert.Equal(t, "e", got[1].Key)
	assert.Equal(t, "a", got[2].Key)
	for _, b := range got {
		require.NotNil(t, b.Rating)
		assert.GreaterOrEqual(t, *b.Rating, 4.0)
	}
	catalog.AssertExpectations(t)
}

func TestByGenre_PagesUntilFilled(t *testing.T) {
	catalog := new(mockCatalog)
	svc := NewService(catalog)

	page1 := []entity.CatalogRecord{
		ratedRecord("a", 4.2, 90),
		ratedRecord("b", 2.0, 90),
		ratedRecord("c", 3.0, 90),
	}
	page2 := []entity.CatalogRecord{
		ratedRecord("d", 4.9, 90),
	}
	catalog.On("SearchBooks", mock.Anything, []string{"horror"}, 50, 2, 0).
		Return(page1, nil).Once()
	// Offset advances by the raw page size, not by admitted count.
	catalog.On("SearchBooks", mock.Anything, []string{"horror"}, 50, 2, 3).
		Return(page2, nil).Once()

	got := svc.ByGenre(context.Background(), GenreParams{
		Genres:     []string{"horror"},
		MinRating:  4.0,
		MinReviews: 50,
		Limit:      2,
	})

	require.Len(t, got, 2)
	assert.Equal(t, "d", got[0].Key)
	assert.Equal(t, "a", got[1].Key)
	catalog.AssertExpectations(t)
}

func TestByGenre_UpstreamExhausted(t *testing.T) {
	catalog := new(mockCatalog)
	svc := NewService(catalog)

	catalog.On("SearchBooks", mock.Anything, []string{"western"}, 50, 5, 0).
		Return([]entity.CatalogRecord{ratedRecord("a", 4.5, 70)}, nil).Once()
	catalog.On("SearchBooks", mock.Anything, []string{"western"}, 50, 5, 1).
		Return([]entity.CatalogRecord{}, nil).Once()

	got := svc.ByGenre(context.Background(), GenreParams{
		Genres:     []string{"western"},
		MinRating:  4.0,
		MinReviews: 50,
		Limit:      5,
	})

	require.Len(t, got, 1)
	assert.Equal(t, "a", got[0].Key)
}

func TestByGenre_UpstreamError(t *testing.T) {
	catalog := new(mockCatalog)
	svc := NewService(catalog)

	catalog.On("SearchBooks", mock.Anything, []string{"scifi"}, 50, 5, 0).
		Return(nil, errors.New("boom")).Once()

	got := svc.ByGenre(context.Background(), GenreParams{
		Genres:     []string{"scifi"},
		MinRating:  4.0,
		MinReviews: 50,
		Limit:      5,
	})
	assert.Empty(t, got)
}

func authorWith(key string, subjects ...string) *entity.Author {
	return &entity.Author{Key: key, Name: "Author " + key, Subjects: subjects}
}

func TestSimilarAuthors_ScoresAndSorts(t *testing.T) {
	catalog := new(mockCatalog)
	svc := NewService(catalog)

	candidates := []entity.RelatedAuthor{
		{Name: "Author t", Key: "t", Score: 5},
		{Name: "Author half", Key: "half", Score: 3},
		{Name: "Author full", Key: "full", Score: 2},
	}
	catalog.On("FindRelatedAuthors", mock.Anything, "Ursula K. Le Guin", 4).
		Return(candidates, nil).Once()

	// candidates[0] doubles as the similarity target.
	catalog.On("GetAuthorDetail", mock.Anything, "t").
		Return(authorWith("t", "science fiction", "anarchism"), nil)
	catalog.On("GetAuthorDetail", mock.Anything, "half").
		Return(authorWith("half", "science fiction"), nil)
	catalog.On("GetAuthorDetail", mock.Anything, "full").
		Return(authorWith("full", "science fiction", "anarchism", "taoism"), nil)

	got := svc.SimilarAuthors(context.Background(), "Ursula K. Le Guin", 2)

	require.Len(t, got, 2)
	for _, a := range got {
		require.NotNil(t, a.SimilarityScore)
		assert.GreaterOrEqual(t, *a.SimilarityScore, 0.0)
		assert.LessOrEqual(t, *a.SimilarityScore, 1.0)
	}
	assert.Equal(t, 1.0, *got[0].SimilarityScore)
	assert.GreaterOrEqual(t, *got[0].SimilarityScore, *got[1].SimilarityScore)
	catalog.AssertExpectations(t)
}

func TestSimilarAuthors_DropsFailedDetails(t *testing.T) {
	catalog := new(mockCatalog)
	svc := NewService(catalog)

	candidates := []entity.RelatedAuthor{
		{Name: "Author t", Key: "t", Score: 4},
		{Name: "Author bad", Key: "bad", Score: 2},
	}
	catalog.On("FindRelatedAuthors", mock.Anything, "Someone", 10).
		Return(candidates, nil).Once()
	catalog.On("GetAuthorDetail", mock.Anything, "t").
		Return(authorWith("t", "poetry"), nil)
	catalog.On("GetAuthorDetail", mock.Anything, "bad").
		Return(nil, errors.New("upstream 500"))

	got := svc.SimilarAuthors(context.Background(), "Someone", 5)

	require.Len(t, got, 1)
	assert.Equal(t, "t", got[0].Key)
}

func TestSimilarAuthors_EmptyPool(t *testing.T) {
	catalog := new(mockCatalog)
	svc := NewService(catalog)

	catalog.On("FindRelatedAuthors", mock.Anything, "Nobody", 10).
		Return([]entity.RelatedAuthor{}, nil).Once()

	assert.Empty(t, svc.SimilarAuthors(context.Background(), "Nobody", 5))
}

func TestSimilarAuthors_PoolError(t *testing.T) {
	catalog := new(mockCatalog)
	svc := NewService(catalog)

	catalog.On("FindRelatedAuthors", mock.Anything, "Nobody", 10).
		Return(nil, errors.New("timeout")).Once()

	assert.Empty(t, svc.SimilarAuthors(context.Background(), "Nobody", 5))
}

func TestSimilarBooks_RanksByTextSimilarity(t *testing.T) {
	catalog := new(mockCatalog)
	search := new(mockBookSearch)
	svc := NewService(catalog)

	target := &entity.CatalogRecord{
		Key:      "target",
		Title:    "Dune",
		Subjects: []string{"science fiction", "deserts"},
	}
	page := []entity.CatalogRecord{
		{Key: "close", Title: "Dune Messiah", Subjects: []string{"science fiction", "deserts"}},
		{Key: "far", Title: "Baking Bread", Subjects: []string{"cooking"}},
	}

	catalog.On("RelatedBooks", mock.Anything, "dune", maxTargetSubjects).
		Return(search, nil).Once()
	search.On("Target").Return(target)
	search.On("Fetch", mock.Anything, 2, 0).Return(page, nil).Once()
	search.On("Fetch", mock.Anything, 2, 2).Return([]entity.CatalogRecord{}, nil).Maybe()

	got := svc.SimilarBooks(context.Background(), "dune", 2)

	require.Len(t, got, 2)
	assert.Equal(t, "close", got[0].Key)
	assert.Equal(t, "far", got[1].Key)
	for _, b := range got {
		require.NotNil(t, b.Score)
		assert.GreaterOrEqual(t, *b.Score, 0.0)
		assert.LessOrEqual(t, *b.Score, 1.0+1e-9)
		assert.NotEqual(t, "target", b.Key)
	}
	catalog.AssertExpectations(t)
}

func TestSimilarBooks_NoTarget(t *testing.T) {
	catalog := new(mockCatalog)
	svc := NewService(catalog)

	catalog.On("RelatedBooks", mock.Anything, "gibberish", maxTargetSubjects).
		Return(nil, nil).Once()

	assert.Empty(t, svc.SimilarBooks(context.Background(), "gibberish", 5))
}

func TestSimilarBooks_FetchErrorDegradesToEmpty(t *testing.T) {
	catalog := new(mockCatalog)
	search := new(mockBookSearch)
	svc := NewService(catalog)

	catalog.On("RelatedBooks", mock.Anything, "dune", maxTargetSubjects).
		Return(search, nil).Once()
	search.On("Target").Return(&entity.CatalogRecord{Key: "t", Title: "Dune", Subjects: []string{"x"}})
	search.On("Fetch", mock.Anything, 5, 0).Return(nil, errors.New("boom")).Once()

	assert.Empty(t, svc.SimilarBooks(context.Background(), "dune", 5))
}
