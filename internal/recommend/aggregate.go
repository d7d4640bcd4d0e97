package recommend

import (
	"context"

	"bookrec/internal/entity"
)

// FetchFunc returns one page of candidate records. A failed upstream call is
// an empty page; the aggregator cannot tell failure from exhaustion and does
// not need to.
type FetchFunc func(ctx context.Context, limit, offset int) []entity.CatalogRecord

// Collect pages through fetch until limit unique records are accumulated or a
// page comes back empty. Records are deduplicated on their key in
// first-encountered order. The offset advances by the raw page size, not the
// deduplicated count, so upstream pages that overlap cannot loop forever.
func Collect(ctx context.Context, limit, offset int, fetch FetchFunc) []entity.CatalogRecord {
	if limit <= 0 {
		return nil
	}

	collected := make([]entity.CatalogRecord, 0, limit)
	seen := make(map[string]struct{}, limit)
	for len(collected) < limit {
		batch := fetch(ctx, limit, offset)
		if len(batch) == 0 {
			break
		}
		for _, rec := range batch {
			if rec.Key == "" {
				continue
			}
			if _, dup := seen[rec.Key]; dup {
				continue
			}
			seen[rec.Key] = struct{}{}
			collected = append(collected, rec)
			if len(collected) == limit {
				break
			}
		}
		offset += len(batch)
	}
	return collected
}
