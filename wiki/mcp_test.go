package wiki

import (
	"context"
	"net/url"
	"testing"

	mwerrors "github.com/olgasafonova/mediawiki-list-client/internal/errors"
)

func TestListAllPagesMCP_HasMore(t *testing.T) {
	titles := []string{"A", "B", "C", "D", "E"}

	tests := []struct {
		name     string
		limit    int
		count    int
		hasMore  bool
		requests int
	}{
		{"partial", 3, 3, true, 1},
		{"exact end", 5, 5, false, 1},
		{"beyond end", 8, 5, false, 1},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			fake, client := newFakeWiki(t, allPagesResponder(titles))

			result, err := client.ListAllPagesMCP(context.Background(), ListAllPagesArgs{Limit: tt.limit})
			if err != nil {
				t.Fatalf("ListAllPagesMCP() error = %v", err)
			}
			if result.Count != tt.count || len(result.Pages) != tt.count {
				t.Errorf("Count = %d, want %d", result.Count, tt.count)
			}
			if result.HasMore != tt.hasMore {
				t.Errorf("HasMore = %v, want %v", result.HasMore, tt.hasMore)
			}
			if result.Fetches != tt.requests || fake.count() != tt.requests {
				t.Errorf("Fetches = %d, requests = %d, want %d", result.Fetches, fake.count(), tt.requests)
			}
		})
	}
}

func TestListAllPagesMCP_EmptyResultIsNotNil(t *testing.T) {
	_, client := newFakeWiki(t, func(url.Values) any { return `{"batchcomplete":true}` })

	result, err := client.ListAllPagesMCP(context.Background(), ListAllPagesArgs{})
	if err != nil {
		t.Fatalf("ListAllPagesMCP() error = %v", err)
	}
	if result.Pages == nil || result.Count != 0 || result.HasMore {
		t.Errorf("result = %+v", result)
	}
}

func TestMCPWrappers_Validation(t *testing.T) {
	fake, client := newFakeWiki(t, func(url.Values) any { return `{}` })
	ctx := context.Background()

	tests := []struct {
		name string
		call func() error
	}{
		{"allpages filter", func() error {
			_, err := client.ListAllPagesMCP(ctx, ListAllPagesArgs{FilterRedirects: "maybe"})
			return err
		}},
		{"category required", func() error {
			_, err := client.CategoryMembersMCP(ctx, CategoryMembersArgs{Category: "  "})
			return err
		}},
		{"category type", func() error {
			_, err := client.CategoryMembersMCP(ctx, CategoryMembersArgs{Category: "Physics", Type: "video"})
			return err
		}},
		{"batch empty", func() error {
			_, err := client.CategoryMembersBatchMCP(ctx, CategoryMembersBatchArgs{})
			return err
		}},
		{"batch too large", func() error {
			_, err := client.CategoryMembersBatchMCP(ctx, CategoryMembersBatchArgs{Categories: make([]string, MaxBatchCategories+1)})
			return err
		}},
		{"recent changes type", func() error {
			_, err := client.RecentChangesMCP(ctx, RecentChangesArgs{Type: "rename"})
			return err
		}},
		{"search query", func() error {
			_, err := client.SearchMCP(ctx, SearchArgs{})
			return err
		}},
		{"log action form", func() error {
			_, err := client.LogEventsMCP(ctx, LogEventsArgs{Action: "delete"})
			return err
		}},
		{"contributions user", func() error {
			_, err := client.UserContributionsMCP(ctx, UserContributionsArgs{})
			return err
		}},
		{"backlinks title", func() error {
			_, err := client.BacklinksMCP(ctx, BacklinksArgs{})
			return err
		}},
		{"entity search", func() error {
			_, err := client.EntitySearchMCP(ctx, EntitySearchArgs{})
			return err
		}},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			err := tt.call()
			if !mwerrors.IsValidation(err) {
				t.Errorf("error = %v, want validation error", err)
			}
		})
	}
	if fake.count() != 0 {
		t.Errorf("requests = %d, want 0 for invalid arguments", fake.count())
	}
}

func TestBacklinksMCP_ExcludesRedirectsByDefault(t *testing.T) {
	fake, client := newFakeWiki(t, func(url.Values) any {
		return `{"query":{"backlinks":[{"pageid":3,"ns":0,"title":"Linker"}]}}`
	})
	ctx := context.Background()

	result, err := client.BacklinksMCP(ctx, BacklinksArgs{Title: "Target"})
	if err != nil {
		t.Fatalf("BacklinksMCP() error = %v", err)
	}
	if result.Title != "Target" || result.Count != 1 || result.Backlinks[0].Title != "Linker" {
		t.Errorf("result = %+v", result)
	}
	if got := fake.request(0).Get("blfilterredir"); got != "nonredirects" {
		t.Errorf("blfilterredir = %q, want nonredirects", got)
	}

	if _, err := client.BacklinksMCP(ctx, BacklinksArgs{Title: "Target", IncludeRedirects: true}); err != nil {
		t.Fatal(err)
	}
	if fake.request(1).Has("blfilterredir") {
		t.Error("blfilterredir should be unset when redirects are included")
	}
}

func TestCategoryMembersMCP_NormalizesCategory(t *testing.T) {
	fake, client := newFakeWiki(t, func(url.Values) any {
		return `{"query":{"categorymembers":[{"pageid":1,"ns":0,"title":"Optics","type":"page","timestamp":"2024-01-01T00:00:00Z"}]}}`
	})

	result, err := client.CategoryMembersMCP(context.Background(), CategoryMembersArgs{Category: "Physics", Type: "page", Limit: 10})
	if err != nil {
		t.Fatalf("CategoryMembersMCP() error = %v", err)
	}
	if result.Category != "Category:Physics" || result.Count != 1 || result.HasMore {
		t.Errorf("result = %+v", result)
	}
	form := fake.request(0)
	if form.Get("cmtype") != "page" || form.Get("cmlimit") != "10" {
		t.Errorf("request = %v", form)
	}
}

func TestRecentChangesMCP_Namespace(t *testing.T) {
	fake, client := newFakeWiki(t, func(url.Values) any { return `{"query":{"recentchanges":[]}}` })

	ns, no := 0, false
	if _, err := client.RecentChangesMCP(context.Background(), RecentChangesArgs{Namespace: &ns, Bot: &no}); err != nil {
		t.Fatal(err)
	}
	form := fake.request(0)
	if form.Get("rcnamespace") != "0" || form.Get("rcshow") != "!bot" {
		t.Errorf("request = %v", form)
	}
}

func TestEntitySearchMCP_PropagatesAPIError(t *testing.T) {
	_, client := newFakeWiki(t, func(url.Values) any {
		return `{"error":{"code":"param-missing","info":"The required parameter \"search\" was missing."}}`
	})

	_, err := client.EntitySearchMCP(context.Background(), EntitySearchArgs{Search: "x"})
	if mwerrors.APIErrorCode(err) != "param-missing" {
		t.Errorf("error = %v, want param-missing", err)
	}
}
