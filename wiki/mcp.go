package wiki

import (
	"context"
	"strings"

	mwerrors "github.com/olgasafonova/mediawiki-list-client/internal/errors"
	"github.com/olgasafonova/mediawiki-list-client/paging"
)

// MCP Tool wrapper methods
// These methods run a list for at most args.Limit items and report whether
// the wiki has more.

// take pulls up to limit items and stops the engine.
func take[T any](ctx context.Context, engine *paging.Engine[T], limit int) ([]T, bool, int, error) {
	defer engine.Cancel()

	items, err := paging.Collect(paging.Take(engine.All(ctx), limit))
	if err != nil {
		return nil, false, engine.Fetches(), err
	}
	if items == nil {
		items = []T{}
	}
	return items, engine.HasMore(), engine.Fetches(), nil
}

func namespaces(ns *int) []int {
	if ns == nil {
		return nil
	}
	return []int{*ns}
}

func required(field, value string) error {
	if strings.TrimSpace(value) == "" {
		return mwerrors.NewValidationError(field, "", field+" is required")
	}
	return nil
}

func oneOf(field, value string, allowed ...string) error {
	if value == "" {
		return nil
	}
	for _, a := range allowed {
		if value == a {
			return nil
		}
	}
	return mwerrors.NewValidationError(field, value, "must be one of "+strings.Join(allowed, ", "))
}

// ListAllPagesMCP is the MCP wrapper for AllPages
func (c *Client) ListAllPagesMCP(ctx context.Context, args ListAllPagesArgs) (ListAllPagesResult, error) {
	if err := oneOf("filter_redirects", args.FilterRedirects, "all", "redirects", "nonredirects"); err != nil {
		return ListAllPagesResult{}, err
	}
	limit := normalizeLimit(args.Limit, DefaultLimit, MaxLimit)
	engine := c.AllPages(AllPagesOptions{
		Namespace:       args.Namespace,
		Prefix:          args.Prefix,
		From:            args.From,
		FilterRedirects: args.FilterRedirects,
		BatchSize:       limit,
	})

	pages, more, fetches, err := take(ctx, engine, limit)
	if err != nil {
		return ListAllPagesResult{}, err
	}
	return ListAllPagesResult{Pages: pages, Count: len(pages), HasMore: more, Fetches: fetches}, nil
}

// ListAllCategoriesMCP is the MCP wrapper for AllCategories
func (c *Client) ListAllCategoriesMCP(ctx context.Context, args ListAllCategoriesArgs) (ListAllCategoriesResult, error) {
	limit := normalizeLimit(args.Limit, DefaultLimit, MaxLimit)
	engine := c.AllCategories(AllCategoriesOptions{
		Prefix:     args.Prefix,
		MinMembers: args.MinMembers,
		BatchSize:  limit,
	})

	cats, more, fetches, err := take(ctx, engine, limit)
	if err != nil {
		return ListAllCategoriesResult{}, err
	}
	return ListAllCategoriesResult{Categories: cats, Count: len(cats), HasMore: more, Fetches: fetches}, nil
}

// CategoryMembersMCP is the MCP wrapper for CategoryMembers
func (c *Client) CategoryMembersMCP(ctx context.Context, args CategoryMembersArgs) (CategoryMembersResult, error) {
	if err := required("category", args.Category); err != nil {
		return CategoryMembersResult{}, err
	}
	if err := oneOf("type", args.Type, "page", "subcat", "file"); err != nil {
		return CategoryMembersResult{}, err
	}
	if err := oneOf("sort", args.Sort, "sortkey", "timestamp"); err != nil {
		return CategoryMembersResult{}, err
	}
	if err := oneOf("direction", args.Direction, "asc", "desc"); err != nil {
		return CategoryMembersResult{}, err
	}

	limit := normalizeLimit(args.Limit, DefaultLimit, MaxLimit)
	opts := CategoryMembersOptions{
		Title:     args.Category,
		Sort:      args.Sort,
		Direction: args.Direction,
		BatchSize: limit,
	}
	if args.Type != "" {
		opts.Type = []string{args.Type}
	}

	members, more, fetches, err := take(ctx, c.CategoryMembers(opts), limit)
	if err != nil {
		return CategoryMembersResult{}, err
	}
	return CategoryMembersResult{
		Category: normalizeCategoryName(args.Category),
		Members:  members,
		Count:    len(members),
		HasMore:  more,
		Fetches:  fetches,
	}, nil
}

// CategoryMembersBatchMCP is the MCP wrapper for CategoryMembersBatch
func (c *Client) CategoryMembersBatchMCP(ctx context.Context, args CategoryMembersBatchArgs) (CategoryMembersBatchResult, error) {
	if len(args.Categories) == 0 {
		return CategoryMembersBatchResult{}, mwerrors.NewValidationError("categories", "", "at least one category is required")
	}
	if len(args.Categories) > MaxBatchCategories {
		return CategoryMembersBatchResult{}, mwerrors.NewValidationError("categories", "",
			"at most 20 categories per request")
	}
	for _, cat := range args.Categories {
		if err := required("categories", cat); err != nil {
			return CategoryMembersBatchResult{}, err
		}
	}

	limit := normalizeLimit(args.Limit, DefaultLimit, MaxLimit)
	entries, err := c.CategoryMembersBatch(ctx, args.Categories, limit)
	if err != nil {
		return CategoryMembersBatchResult{}, err
	}
	return CategoryMembersBatchResult{Results: entries, Count: len(entries)}, nil
}

// RecentChangesMCP is the MCP wrapper for RecentChanges
func (c *Client) RecentChangesMCP(ctx context.Context, args RecentChangesArgs) (RecentChangesResult, error) {
	if err := oneOf("type", args.Type, "edit", "new", "log", "external", "categorize"); err != nil {
		return RecentChangesResult{}, err
	}

	limit := normalizeLimit(args.Limit, DefaultLimit, MaxLimit)
	opts := RecentChangesOptions{
		Namespace: namespaces(args.Namespace),
		User:      args.User,
		Start:     args.Start,
		End:       args.End,
		Minor:     args.Minor,
		Bot:       args.Bot,
		Anonymous: args.Anonymous,
		BatchSize: limit,
	}
	if args.Type != "" {
		opts.Type = []string{args.Type}
	}

	changes, more, fetches, err := take(ctx, c.RecentChanges(opts), limit)
	if err != nil {
		return RecentChangesResult{}, err
	}
	return RecentChangesResult{Changes: changes, Count: len(changes), HasMore: more, Fetches: fetches}, nil
}

// SearchMCP is the MCP wrapper for Search
func (c *Client) SearchMCP(ctx context.Context, args SearchArgs) (SearchResult, error) {
	if err := required("query", args.Query); err != nil {
		return SearchResult{}, err
	}
	if err := oneOf("what", args.What, "text", "title", "nearmatch"); err != nil {
		return SearchResult{}, err
	}

	limit := normalizeLimit(args.Limit, DefaultLimit, MaxLimit)
	engine := c.Search(SearchOptions{
		Query:     args.Query,
		Namespace: namespaces(args.Namespace),
		What:      args.What,
		BatchSize: limit,
	})

	hits, more, fetches, err := take(ctx, engine, limit)
	if err != nil {
		return SearchResult{}, err
	}
	return SearchResult{Query: args.Query, Results: hits, Count: len(hits), HasMore: more, Fetches: fetches}, nil
}

// LogEventsMCP is the MCP wrapper for LogEvents
func (c *Client) LogEventsMCP(ctx context.Context, args LogEventsArgs) (LogEventsResult, error) {
	if args.Action != "" && !strings.Contains(args.Action, "/") {
		return LogEventsResult{}, mwerrors.NewValidationError("action", args.Action, "must be in type/action form")
	}

	limit := normalizeLimit(args.Limit, DefaultLimit, MaxLimit)
	engine := c.LogEvents(LogEventsOptions{
		Type:      args.Type,
		Action:    args.Action,
		User:      args.User,
		Title:     args.Title,
		Start:     args.Start,
		End:       args.End,
		BatchSize: limit,
	})

	events, more, fetches, err := take(ctx, engine, limit)
	if err != nil {
		return LogEventsResult{}, err
	}
	return LogEventsResult{Events: events, Count: len(events), HasMore: more, Fetches: fetches}, nil
}

// UserContributionsMCP is the MCP wrapper for UserContributions
func (c *Client) UserContributionsMCP(ctx context.Context, args UserContributionsArgs) (UserContributionsResult, error) {
	if err := required("user", args.User); err != nil {
		return UserContributionsResult{}, err
	}

	limit := normalizeLimit(args.Limit, DefaultLimit, MaxLimit)
	engine := c.UserContributions(UserContributionsOptions{
		User:      args.User,
		Namespace: namespaces(args.Namespace),
		Start:     args.Start,
		End:       args.End,
		BatchSize: limit,
	})

	contribs, more, fetches, err := take(ctx, engine, limit)
	if err != nil {
		return UserContributionsResult{}, err
	}
	return UserContributionsResult{
		User:          args.User,
		Contributions: contribs,
		Count:         len(contribs),
		HasMore:       more,
		Fetches:       fetches,
	}, nil
}

// BacklinksMCP is the MCP wrapper for Backlinks
func (c *Client) BacklinksMCP(ctx context.Context, args BacklinksArgs) (BacklinksResult, error) {
	if err := required("title", args.Title); err != nil {
		return BacklinksResult{}, err
	}

	limit := normalizeLimit(args.Limit, DefaultLimit, MaxLimit)
	opts := BacklinksOptions{
		Title:     args.Title,
		Namespace: namespaces(args.Namespace),
		BatchSize: limit,
	}
	if !args.IncludeRedirects {
		opts.FilterRedirects = "nonredirects"
	}

	links, more, fetches, err := take(ctx, c.Backlinks(opts), limit)
	if err != nil {
		return BacklinksResult{}, err
	}
	return BacklinksResult{Title: args.Title, Backlinks: links, Count: len(links), HasMore: more, Fetches: fetches}, nil
}

// EntitySearchMCP is the MCP wrapper for EntitySearch
func (c *Client) EntitySearchMCP(ctx context.Context, args EntitySearchArgs) (EntitySearchResult, error) {
	if err := required("search", args.Search); err != nil {
		return EntitySearchResult{}, err
	}

	limit := normalizeLimit(args.Limit, DefaultLimit, MaxLimit)
	engine := c.EntitySearch(EntitySearchOptions{
		Search:    args.Search,
		Language:  args.Language,
		Type:      args.Type,
		BatchSize: limit,
	})

	hits, more, fetches, err := take(ctx, engine, limit)
	if err != nil {
		return EntitySearchResult{}, err
	}
	return EntitySearchResult{Search: args.Search, Entities: hits, Count: len(hits), HasMore: more, Fetches: fetches}, nil
}

// SiteInfoMCP is the MCP wrapper for SiteInfo
func (c *Client) SiteInfoMCP(ctx context.Context, _ SiteInfoArgs) (SiteInfo, error) {
	return c.SiteInfo(ctx)
}
