package wiki

import (
	"context"
	"errors"

	"golang.org/x/sync/errgroup"

	"github.com/olgasafonova/mediawiki-list-client/internal/base"
	"github.com/olgasafonova/mediawiki-list-client/paging"
)

// CategoryBatchEntry is the outcome for one category of a batch.
type CategoryBatchEntry struct {
	Category string           `json:"category"`
	Members  []CategoryMember `json:"members"`
	Count    int              `json:"count"`
	HasMore  bool             `json:"has_more"`
	Fetches  int              `json:"fetches"`
	Error    string           `json:"error,omitempty"`
}

// CategoryMembersBatch collects up to limit members of each category. Every
// category runs on its own engine and at most base.MaxConcurrentRequests run
// at once. A failing category is reported in its entry; only cancellation
// of ctx fails the whole batch. Entries keep the order of titles.
func (c *Client) CategoryMembersBatch(ctx context.Context, titles []string, limit int, opts ...paging.Option) ([]CategoryBatchEntry, error) {
	if limit <= 0 {
		limit = DefaultLimit
	}
	entries := make([]CategoryBatchEntry, len(titles))

	g, gctx := errgroup.WithContext(ctx)
	g.SetLimit(base.MaxConcurrentRequests)

	for i, title := range titles {
		g.Go(func() error {
			engine := c.CategoryMembers(CategoryMembersOptions{Title: title, BatchSize: limit}, opts...)
			defer engine.Cancel()

			members, err := paging.Collect(paging.Take(engine.All(gctx), limit))
			entry := CategoryBatchEntry{
				Category: normalizeCategoryName(title),
				Members:  members,
				Count:    len(members),
				HasMore:  engine.HasMore(),
				Fetches:  engine.Fetches(),
			}
			if entry.Members == nil {
				entry.Members = []CategoryMember{}
			}
			if err != nil {
				if errors.Is(err, paging.ErrCanceled) && ctx.Err() != nil {
					return err
				}
				entry.Error = err.Error()
				entry.HasMore = false
			}
			entries[i] = entry
			return nil
		})
	}

	if err := g.Wait(); err != nil {
		return nil, err
	}
	return entries, nil
}
