package recommend

import (
	"context"
	"log"
	"sort"
	"strings"
	"sync"
	"time"

	"bookrec/internal/entity"

	"golang.org/x/sync/errgroup"
)

// Defaults mirror the query-parameter defaults of the web boundary.
const (
	DefaultMinRating  = 4.0
	DefaultMinReviews = 50
	DefaultLimit      = 20

	// detailWorkers bounds the candidate-detail fan-out.
	detailWorkers = 8

	// maxTargetSubjects caps how many of the target's subjects seed the
	// related-book pool query.
	maxTargetSubjects = 10
)

// CatalogClient is the upstream capability the strategies compose. All
// methods degrade to empty results on upstream misbehavior.
type CatalogClient interface {
	SearchBooks(ctx context.Context, genres []string, minReviews, limit, offset int) ([]entity.CatalogRecord, error)
	GetAuthorDetail(ctx context.Context, authorKey string) (*entity.Author, error)
	FindRelatedAuthors(ctx context.Context, targetName string, limit int) ([]entity.RelatedAuthor, error)
	RelatedBooks(ctx context.Context, targetBook string, maxSubjects int) (BookSearch, error)
}

// BookSearch is one resolved similar-book query, paged via Fetch.
type BookSearch interface {
	Target() *entity.CatalogRecord
	Fetch(ctx context.Context, limit, offset int) ([]entity.CatalogRecord, error)
}

// Service holds the three recommendation strategies. Stateless across
// requests; safe for concurrent use.
type Service struct {
	catalog CatalogClient
}

func NewService(catalog CatalogClient) *Service {
	return &Service{catalog: catalog}
}

// GenreParams filter the by-genre strategy.
type GenreParams struct {
	Genres     []string
	MinRating  float64
	MinReviews int
	Limit      int
	Offset     int
}

// ByGenre pages through genre-matching records, admitting those whose average
// rating clears MinRating, until Limit books are admitted or the upstream is
// exhausted. A record without a rating counts as rated 0 and is excluded
// whenever MinRating is positive. Output is sorted by rating, descending,
// with upstream order preserved on ties.
func (s *Service) ByGenre(ctx context.Context, p GenreParams) []entity.Book {
	collected := make([]entity.Book, 0, p.Limit)
	offset := p.Offset

	for len(collected) < p.Limit {
		batch, err := s.catalog.SearchBooks(ctx, p.Genres, p.MinReviews, p.Limit, offset)
		if err != nil {
			log.Printf("genre search failed: %v", err)
			break
		}
		if len(batch) == 0 {
			break
		}

		for _, rec := range batch {
			var avg float64
			if rec.RatingsAverage != nil {
				avg = *rec.RatingsAverage
			}
			if avg < p.MinRating {
				continue
			}
			book := rec.Book()
			rating := avg
			book.Rating = &rating
			if book.RatingCount == nil {
				count := 0
				book.RatingCount = &count
			}
			collected = append(collected, book)
			if len(collected) == p.Limit {
				break
			}
		}
		offset += len(batch)
	}

	sort.SliceStable(collected, func(i, j int) bool {
		return *collected[i].Rating > *collected[j].Rating
	})
	if len(collected) > p.Limit {
		collected = collected[:p.Limit]
	}
	return collected
}

// SimilarAuthors ranks authors thematically related to targetAuthor by
// subject overlap. The candidate pool is twice the requested limit; details
// for every pool entry are fetched concurrently and an individual failure
// just drops that candidate.
func (s *Service) SimilarAuthors(ctx context.Context, targetAuthor string, limit int) []entity.Author {
	start := time.Now()

	candidates, err := s.catalog.FindRelatedAuthors(ctx, targetAuthor, limit*2)
	if err != nil {
		log.Printf("related authors for %q failed: %v", targetAuthor, err)
		return nil
	}
	if len(candidates) == 0 {
		return nil
	}

	target, err := s.catalog.GetAuthorDetail(ctx, candidates[0].Key)
	if err != nil || target == nil {
		return nil
	}
	targetSet := SubjectSet(target.Subjects)

	var mu sync.Mutex
	results := make([]entity.Author, 0, len(candidates))

	g := new(errgroup.Group)
	g.SetLimit(detailWorkers)
	for _, cand := range candidates {
		key := cand.Key
		g.Go(func() error {
			author, err := s.catalog.GetAuthorDetail(ctx, key)
			if err != nil || author == nil {
				if err != nil {
					log.Printf("author detail %s failed: %v", key, err)
				}
				return nil
			}
			score := OverlapScore(targetSet, author.Subjects)
			author.SimilarityScore = &score

			mu.Lock()
			results = append(results, *author)
			mu.Unlock()
			return nil
		})
	}
	_ = g.Wait()

	sort.SliceStable(results, func(i, j int) bool {
		return *results[i].SimilarityScore > *results[j].SimilarityScore
	})
	if len(results) > limit {
		results = results[:limit]
	}

	log.Printf("similar authors for %q: %d results in %s", targetAuthor, len(results), time.Since(start).Round(time.Millisecond))
	return results
}

// SimilarBooks resolves the best match for targetBook once, aggregates up to
// limit unique subject-overlapping candidates, and ranks them by TF-IDF
// cosine similarity of title+subjects+authors documents.
func (s *Service) SimilarBooks(ctx context.Context, targetBook string, limit int) []entity.Book {
	search, err := s.catalog.RelatedBooks(ctx, targetBook, maxTargetSubjects)
	if err != nil {
		log.Printf("related books for %q failed: %v", targetBook, err)
		return nil
	}
	if search == nil || search.Target() == nil {
		return nil
	}

	candidates := Collect(ctx, limit, 0, func(ctx context.Context, limit, offset int) []entity.CatalogRecord {
		batch, err := search.Fetch(ctx, limit, offset)
		if err != nil {
			log.Printf("related books page for %q failed: %v", targetBook, err)
			return nil
		}
		return batch
	})
	if len(candidates) == 0 {
		return nil
	}

	docs := make([]string, len(candidates))
	for i, c := range candidates {
		docs[i] = docText(c)
	}
	sims := RankByText(docText(*search.Target()), docs)

	books := make([]entity.Book, len(candidates))
	for i, c := range candidates {
		book := c.Book()
		score := sims[i]
		book.Score = &score
		books[i] = book
	}

	sort.SliceStable(books, func(i, j int) bool {
		return *books[i].Score > *books[j].Score
	})
	if len(books) > limit {
		books = books[:limit]
	}
	return books
}

// docText builds the text document for TF-IDF ranking: title, then subjects,
// then author names, space-joined.
func docText(rec entity.CatalogRecord) string {
	parts := make([]string, 0, 1+len(rec.Subjects)+len(rec.AuthorNames))
	if rec.Title != "" {
		parts = append(parts, rec.Title)
	}
	parts = append(parts, rec.Subjects...)
	parts = append(parts, rec.AuthorNames...)
	return strings.Join(parts, " ")
}
