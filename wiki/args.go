package wiki

// ========== All Pages ==========

// ListAllPagesArgs contains parameters for listing pages
type ListAllPagesArgs struct {
	Prefix          string `json:"prefix,omitempty" jsonschema:"Only pages whose title starts with this prefix"`
	From            string `json:"from,omitempty" jsonschema:"Title to start listing from"`
	Namespace       int    `json:"namespace,omitempty" jsonschema:"Namespace ID, 0 for main (default)"`
	FilterRedirects string `json:"filter_redirects,omitempty" jsonschema:"all, redirects or nonredirects"`
	Limit           int    `json:"limit,omitempty" jsonschema:"Maximum pages to return (default 50, max 500)"`
}

// ListAllPagesResult is the result of listing pages
type ListAllPagesResult struct {
	Pages   []PageStub `json:"pages"`
	Count   int        `json:"count"`
	HasMore bool       `json:"has_more"`
	Fetches int        `json:"fetches"`
}

// ========== Categories ==========

// ListAllCategoriesArgs contains parameters for listing categories
type ListAllCategoriesArgs struct {
	Prefix     string `json:"prefix,omitempty" jsonschema:"Only categories starting with this prefix"`
	MinMembers int    `json:"min_members,omitempty" jsonschema:"Only categories with at least this many members"`
	Limit      int    `json:"limit,omitempty" jsonschema:"Maximum categories to return (default 50, max 500)"`
}

// ListAllCategoriesResult is the result of listing categories
type ListAllCategoriesResult struct {
	Categories []Category `json:"categories"`
	Count      int        `json:"count"`
	HasMore    bool       `json:"has_more"`
	Fetches    int        `json:"fetches"`
}

// CategoryMembersArgs contains parameters for listing category members
type CategoryMembersArgs struct {
	Category  string `json:"category" jsonschema:"Category name, with or without the Category: prefix"`
	Type      string `json:"type,omitempty" jsonschema:"Filter by member type: page, subcat or file"`
	Sort      string `json:"sort,omitempty" jsonschema:"Sort by sortkey (default) or timestamp"`
	Direction string `json:"direction,omitempty" jsonschema:"asc (default) or desc"`
	Limit     int    `json:"limit,omitempty" jsonschema:"Maximum members to return (default 50, max 500)"`
}

// CategoryMembersResult is the result of listing category members
type CategoryMembersResult struct {
	Category string           `json:"category"`
	Members  []CategoryMember `json:"members"`
	Count    int              `json:"count"`
	HasMore  bool             `json:"has_more"`
	Fetches  int              `json:"fetches"`
}

// CategoryMembersBatchArgs contains parameters for listing several categories
type CategoryMembersBatchArgs struct {
	Categories []string `json:"categories" jsonschema:"Category names (max 20)"`
	Limit      int      `json:"limit,omitempty" jsonschema:"Maximum members per category (default 50, max 500)"`
}

// CategoryMembersBatchResult is the result of a category batch
type CategoryMembersBatchResult struct {
	Results []CategoryBatchEntry `json:"results"`
	Count   int                  `json:"count"`
}

// MaxBatchCategories caps the categories of one batch request
const MaxBatchCategories = 20

// ========== Recent Changes ==========

// RecentChangesArgs contains parameters for the recent changes feed
type RecentChangesArgs struct {
	Namespace *int   `json:"namespace,omitempty" jsonschema:"Only changes in this namespace (default all)"`
	Type      string `json:"type,omitempty" jsonschema:"edit, new, log or categorize (default all)"`
	User      string `json:"user,omitempty" jsonschema:"Only changes by this user"`
	Start     string `json:"start,omitempty" jsonschema:"Newest timestamp to list from (ISO 8601)"`
	End       string `json:"end,omitempty" jsonschema:"Oldest timestamp to list to (ISO 8601)"`
	Minor     *bool  `json:"minor,omitempty" jsonschema:"true for only minor edits, false to exclude them"`
	Bot       *bool  `json:"bot,omitempty" jsonschema:"true for only bot edits, false to exclude them"`
	Anonymous *bool  `json:"anonymous,omitempty" jsonschema:"true for only anonymous edits, false to exclude them"`
	Limit     int    `json:"limit,omitempty" jsonschema:"Maximum changes to return (default 50, max 500)"`
}

// RecentChangesResult is the result of the recent changes feed
type RecentChangesResult struct {
	Changes []RecentChange `json:"changes"`
	Count   int            `json:"count"`
	HasMore bool           `json:"has_more"`
	Fetches int            `json:"fetches"`
}

// ========== Search ==========

// SearchArgs contains parameters for full-text search
type SearchArgs struct {
	Query     string `json:"query" jsonschema:"Search query text"`
	Namespace *int   `json:"namespace,omitempty" jsonschema:"Only search this namespace (default main)"`
	What      string `json:"what,omitempty" jsonschema:"text (default), title or nearmatch"`
	Limit     int    `json:"limit,omitempty" jsonschema:"Maximum results to return (default 50, max 500)"`
}

// SearchResult is the result of a search
type SearchResult struct {
	Query   string      `json:"query"`
	Results []SearchHit `json:"results"`
	Count   int         `json:"count"`
	HasMore bool        `json:"has_more"`
	Fetches int         `json:"fetches"`
}

// ========== Log Events ==========

// LogEventsArgs contains parameters for listing log entries
type LogEventsArgs struct {
	Type   string `json:"type,omitempty" jsonschema:"Log type such as delete, move, block, upload"`
	Action string `json:"action,omitempty" jsonschema:"Log action in type/action form, e.g. delete/delete"`
	User   string `json:"user,omitempty" jsonschema:"Only entries by this user"`
	Title  string `json:"title,omitempty" jsonschema:"Only entries about this page"`
	Start  string `json:"start,omitempty" jsonschema:"Newest timestamp to list from (ISO 8601)"`
	End    string `json:"end,omitempty" jsonschema:"Oldest timestamp to list to (ISO 8601)"`
	Limit  int    `json:"limit,omitempty" jsonschema:"Maximum entries to return (default 50, max 500)"`
}

// LogEventsResult is the result of listing log entries
type LogEventsResult struct {
	Events  []LogEvent `json:"events"`
	Count   int        `json:"count"`
	HasMore bool       `json:"has_more"`
	Fetches int        `json:"fetches"`
}

// ========== User Contributions ==========

// UserContributionsArgs contains parameters for listing a user's edits
type UserContributionsArgs struct {
	User      string `json:"user" jsonschema:"User name"`
	Namespace *int   `json:"namespace,omitempty" jsonschema:"Only edits in this namespace (default all)"`
	Start     string `json:"start,omitempty" jsonschema:"Newest timestamp to list from (ISO 8601)"`
	End       string `json:"end,omitempty" jsonschema:"Oldest timestamp to list to (ISO 8601)"`
	Limit     int    `json:"limit,omitempty" jsonschema:"Maximum edits to return (default 50, max 500)"`
}

// UserContributionsResult is the result of listing a user's edits
type UserContributionsResult struct {
	User          string         `json:"user"`
	Contributions []Contribution `json:"contributions"`
	Count         int            `json:"count"`
	HasMore       bool           `json:"has_more"`
	Fetches       int            `json:"fetches"`
}

// ========== Backlinks ==========

// BacklinksArgs contains parameters for listing links to a page
type BacklinksArgs struct {
	Title            string `json:"title" jsonschema:"Page to find links to"`
	Namespace        *int   `json:"namespace,omitempty" jsonschema:"Only linking pages in this namespace (default all)"`
	IncludeRedirects bool   `json:"include_redirects,omitempty" jsonschema:"Include redirects to the page (default false)"`
	Limit            int    `json:"limit,omitempty" jsonschema:"Maximum pages to return (default 50, max 500)"`
}

// BacklinksResult is the result of listing links to a page
type BacklinksResult struct {
	Title     string     `json:"title"`
	Backlinks []PageStub `json:"backlinks"`
	Count     int        `json:"count"`
	HasMore   bool       `json:"has_more"`
	Fetches   int        `json:"fetches"`
}

// ========== Wikibase ==========

// EntitySearchArgs contains parameters for Wikibase entity search
type EntitySearchArgs struct {
	Search   string `json:"search" jsonschema:"Label or alias to search for"`
	Language string `json:"language,omitempty" jsonschema:"Language code (default en)"`
	Type     string `json:"type,omitempty" jsonschema:"Entity type: item (default), property or lexeme"`
	Limit    int    `json:"limit,omitempty" jsonschema:"Maximum entities to return (default 50)"`
}

// EntitySearchResult is the result of a Wikibase entity search
type EntitySearchResult struct {
	Search   string            `json:"search"`
	Entities []EntitySearchHit `json:"entities"`
	Count    int               `json:"count"`
	HasMore  bool              `json:"has_more"`
	Fetches  int               `json:"fetches"`
}

// ========== Site Info ==========

// SiteInfoArgs takes no parameters
type SiteInfoArgs struct{}
