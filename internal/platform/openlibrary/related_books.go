package openlibrary

import (
	"context"
	"math"
	"net/url"
	"sort"
	"strconv"
	"strings"

	"bookrec/internal/entity"
)

// strictThreshold splits candidates into a strict tier (sharing at least 70%
// of the target's top subjects) and an exploratory tier (sharing any at all).
const strictThreshold = 0.7

// RelatedBookSearch is a short-lived pagination handle for one similar-book
// query. It resolves the search target once and carries it across pages, so
// repeated Fetch calls never re-resolve the title. Not safe for concurrent
// use; build one per request.
type RelatedBookSearch struct {
	c         *Client
	query     string // raw user query, lower-cased, for title exclusion
	target    entity.CatalogRecord
	targetSet map[string]struct{}
	orQuery   string
	seen      map[string]struct{}
}

// NewRelatedBookSearch resolves the best title match for targetBook and
// prepares the subject pool query. Returns nil when no match exists or the
// match carries no subjects; both mean no recommendations are possible.
func (c *Client) NewRelatedBookSearch(ctx context.Context, targetBook string, maxSubjects int) (*RelatedBookSearch, error) {
	q := url.Values{}
	q.Set("q", targetBook)
	q.Set("limit", "1")
	q.Set("fields", "key,title,subject")

	var res searchResponse
	if err := c.get(ctx, c.baseURL+"/search.json?"+q.Encode(), &res); err != nil {
		return nil, err
	}
	if len(res.Docs) == 0 {
		return nil, nil
	}
	target := res.Docs[0]
	if len(target.Subjects) == 0 {
		return nil, nil
	}

	topSubjects := target.Subjects
	if len(topSubjects) > maxSubjects {
		topSubjects = topSubjects[:maxSubjects]
	}
	targetSet := make(map[string]struct{}, len(topSubjects))
	clauses := make([]string, 0, len(topSubjects))
	for _, s := range topSubjects {
		targetSet[strings.ToLower(s)] = struct{}{}
		clauses = append(clauses, `subject:"`+s+`"`)
	}

	return &RelatedBookSearch{
		c:         c,
		query:     strings.ToLower(strings.TrimSpace(targetBook)),
		target:    target,
		targetSet: targetSet,
		orQuery:   strings.Join(clauses, " OR "),
		seen:      map[string]struct{}{},
	}, nil
}

// Target returns the resolved search target.
func (s *RelatedBookSearch) Target() *entity.CatalogRecord {
	return &s.target
}

// Fetch returns up to limit candidates from one pool page. Each candidate
// carries its subject-overlap Ratio. Roughly 70% of the slots go to the
// strict tier and the rest to the exploratory tier; a shortfall in either is
// backfilled from the other, then from remaining overflow, keeping descending
// ratio order within each tier. The target itself, already-returned keys, and
// titles containing the raw query are excluded.
func (s *RelatedBookSearch) Fetch(ctx context.Context, limit, offset int) ([]entity.CatalogRecord, error) {
	q := url.Values{}
	q.Set("q", s.orQuery)
	q.Set("limit", strconv.Itoa(limit*10))
	q.Set("offset", strconv.Itoa(offset))
	q.Set("fields", relatedPoolFields)

	var res searchResponse
	if err := s.c.get(ctx, s.c.baseURL+"/search.json?"+q.Encode(), &res); err != nil {
		return nil, err
	}

	var candidates []entity.CatalogRecord
	for _, doc := range res.Docs {
		if doc.Key == "" || doc.Key == s.target.Key {
			continue
		}
		if _, dup := s.seen[doc.Key]; dup {
			continue
		}
		if s.query != "" && strings.Contains(strings.ToLower(doc.Title), s.query) {
			continue
		}
		s.seen[doc.Key] = struct{}{}

		shared := 0
		counted := make(map[string]struct{}, len(doc.Subjects))
		for _, subj := range doc.Subjects {
			subj = strings.ToLower(subj)
			if _, already := counted[subj]; already {
				continue
			}
			counted[subj] = struct{}{}
			if _, ok := s.targetSet[subj]; ok {
				shared++
			}
		}
		doc.Ratio = float64(shared) / float64(len(s.targetSet))
		candidates = append(candidates, doc)
	}

	return selectTiers(candidates, limit), nil
}

func selectTiers(candidates []entity.CatalogRecord, limit int) []entity.CatalogRecord {
	var strict, explore []entity.CatalogRecord
	for _, c := range candidates {
		switch {
		case c.Ratio >= strictThreshold:
			strict = append(strict, c)
		case c.Ratio > 0:
			explore = append(explore, c)
		}
	}

	sort.SliceStable(strict, func(i, j int) bool { return strict[i].Ratio > strict[j].Ratio })
	sort.SliceStable(explore, func(i, j int) bool { return explore[i].Ratio > explore[j].Ratio })

	strictN := int(math.Ceil(float64(limit) * strictThreshold))
	exploreN := limit - strictN

	selected := append([]entity.CatalogRecord{}, strict[:minInt(strictN, len(strict))]...)
	if len(selected) < strictN {
		exploreN += strictN - len(selected)
	}
	selected = append(selected, explore[:minInt(exploreN, len(explore))]...)

	if len(selected) < limit {
		var extras []entity.CatalogRecord
		extras = append(extras, strict[minInt(strictN, len(strict)):]...)
		extras = append(extras, explore[minInt(exploreN, len(explore)):]...)
		selected = append(selected, extras[:minInt(limit-len(selected), len(extras))]...)
	}

	if len(selected) > limit {
		selected = selected[:limit]
	}
	return selected
}

func minInt(a, b int) int {
	if a < b {
		return a
	}
	return b
}
