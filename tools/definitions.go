package tools

// AllTools contains all tool specifications for the list server.
// Tool descriptions follow a structured format for LLM tool selection:
// - USE WHEN: Natural language triggers
// - NOT FOR: Disambiguation from similar tools
// - PARAMETERS: Key arguments with defaults
// - RETURNS: What the tool returns
//
// Every list tool returns at most limit items plus has_more. A follow-up
// call with a narrower filter is the way to go deeper; continuation state is
// never exposed.
var AllTools = []ToolSpec{
	// ==========================================================================
	// PAGE TOOLS
	// ==========================================================================
	{
		Name:     "mediawiki_list_all_pages",
		Method:   "ListAllPages",
		Title:    "List All Pages",
		Category: "pages",
		Description: `List pages of the wiki in title order.

USE WHEN: User asks "what pages exist", "list pages starting with X", "show all templates".

NOT FOR: Finding pages by content (use mediawiki_search instead).

PARAMETERS:
- prefix: Title prefix (optional)
- from: Title to start from (optional)
- namespace: Namespace ID (default 0, main)
- filter_redirects: all, redirects or nonredirects (optional)
- limit: Max pages (default 50, max 500)

RETURNS: Page titles and IDs, count and has_more.`,
		ReadOnly:   true,
		Idempotent: true,
		OpenWorld:  true,
	},
	{
		Name:     "mediawiki_backlinks",
		Method:   "Backlinks",
		Title:    "What Links Here",
		Category: "pages",
		Description: `List pages that link to a given page.

USE WHEN: User asks "what links to X", "which pages reference X", "is X orphaned".

PARAMETERS:
- title: Target page (required)
- namespace: Only linking pages in this namespace (optional)
- include_redirects: Include redirects to the page (default false)
- limit: Max pages (default 50, max 500)

RETURNS: Linking pages, count and has_more.`,
		ReadOnly:   true,
		Idempotent: true,
		OpenWorld:  true,
	},

	// ==========================================================================
	// CATEGORY TOOLS
	// ==========================================================================
	{
		Name:     "mediawiki_list_all_categories",
		Method:   "ListAllCategories",
		Title:    "List Categories",
		Category: "categories",
		Description: `List the categories of the wiki with member counts.

USE WHEN: User asks "what categories exist", "how is the wiki organized".

NOT FOR: Listing the pages in a category (use mediawiki_category_members).

PARAMETERS:
- prefix: Category name prefix (optional)
- min_members: Minimum member count (optional)
- limit: Max categories (default 50, max 500)

RETURNS: Category names with page, file and subcategory counts.`,
		ReadOnly:   true,
		Idempotent: true,
		OpenWorld:  true,
	},
	{
		Name:     "mediawiki_category_members",
		Method:   "CategoryMembers",
		Title:    "Category Members",
		Category: "categories",
		Description: `List the pages, subcategories and files in one category.

USE WHEN: User asks "what's in category X", "list pages tagged X".

NOT FOR: Several categories at once (use mediawiki_category_members_batch).

PARAMETERS:
- category: Category name, prefix optional (required)
- type: page, subcat or file (optional)
- sort: sortkey (default) or timestamp
- direction: asc (default) or desc
- limit: Max members (default 50, max 500)

RETURNS: Members with type and sort timestamp, count and has_more.`,
		ReadOnly:   true,
		Idempotent: true,
		OpenWorld:  true,
	},
	{
		Name:     "mediawiki_category_members_batch",
		Method:   "CategoryMembersBatch",
		Title:    "Category Members (Batch)",
		Category: "categories",
		Description: `List the members of several categories in one call.

USE WHEN: User asks to compare categories or "list everything in X, Y and Z".

PARAMETERS:
- categories: Category names (required, max 20)
- limit: Max members per category (default 50, max 500)

RETURNS: One entry per category with members and has_more. A failing category reports its error without failing the others.`,
		ReadOnly:   true,
		Idempotent: true,
		OpenWorld:  true,
	},

	// ==========================================================================
	// ACTIVITY TOOLS
	// ==========================================================================
	{
		Name:     "mediawiki_recent_changes",
		Method:   "RecentChanges",
		Title:    "Recent Changes",
		Category: "activity",
		Description: `List recent edits, page creations and log actions, newest first.

USE WHEN: User asks "what changed recently", "show today's edits", "recent activity excluding bots".

PARAMETERS:
- namespace: Namespace ID (optional)
- type: edit, new, log or categorize (optional)
- user: Only this user's changes (optional)
- start / end: ISO 8601 time window (optional)
- minor / bot / anonymous: true to keep only, false to exclude (optional)
- limit: Max changes (default 50, max 500)

RETURNS: Changes with user, timestamp, comment and size, count and has_more.`,
		ReadOnly:   true,
		Idempotent: true,
		OpenWorld:  true,
	},
	{
		Name:     "mediawiki_log_events",
		Method:   "LogEvents",
		Title:    "Log Events",
		Category: "activity",
		Description: `List entries of the wiki logs (deletions, moves, blocks, uploads).

USE WHEN: User asks "who deleted X", "recent page moves", "was user X blocked".

NOT FOR: Content edits (use mediawiki_recent_changes).

PARAMETERS:
- type: Log type such as delete or move (optional)
- action: type/action form, overrides type (optional)
- user / title: Filter by performer or target (optional)
- start / end: ISO 8601 time window (optional)
- limit: Max entries (default 50, max 500)

RETURNS: Log entries with type, action, user and comment.`,
		ReadOnly:   true,
		Idempotent: true,
		OpenWorld:  true,
	},
	{
		Name:     "mediawiki_user_contributions",
		Method:   "UserContributions",
		Title:    "User Contributions",
		Category: "activity",
		Description: `List the edits made by one user, newest first.

USE WHEN: User asks "what has X edited", "show contributions of X".

PARAMETERS:
- user: User name (required)
- namespace: Namespace ID (optional)
- start / end: ISO 8601 time window (optional)
- limit: Max edits (default 50, max 500)

RETURNS: Edits with page, timestamp, comment and size change.`,
		ReadOnly:   true,
		Idempotent: true,
		OpenWorld:  true,
	},

	// ==========================================================================
	// SEARCH TOOLS
	// ==========================================================================
	{
		Name:     "mediawiki_search",
		Method:   "Search",
		Title:    "Search Wiki",
		Category: "search",
		Description: `Search across the wiki for pages containing specific text.

USE WHEN: User asks "find pages about X", "where is X documented".

NOT FOR: Listing pages by title prefix (use mediawiki_list_all_pages).

PARAMETERS:
- query: Search text (required)
- namespace: Namespace ID (optional)
- what: text (default), title or nearmatch
- limit: Max results (default 50, max 500)

RETURNS: Page titles with snippets, size and word count.`,
		ReadOnly:   true,
		Idempotent: true,
		OpenWorld:  true,
	},
	{
		Name:     "wikibase_search_entities",
		Method:   "EntitySearch",
		Title:    "Search Wikibase Entities",
		Category: "search",
		Description: `Search Wikibase items, properties or lexemes by label or alias.

USE WHEN: User asks "what is the Wikidata ID of X", "find the property for X".

NOT FOR: Plain wikis without Wikibase.

PARAMETERS:
- search: Label or alias (required)
- language: Language code (default en)
- type: item (default), property or lexeme
- limit: Max entities (default 50)

RETURNS: Entity IDs with label, description and the term that matched.`,
		ReadOnly:   true,
		Idempotent: true,
		OpenWorld:  true,
	},

	// ==========================================================================
	// SITE TOOLS
	// ==========================================================================
	{
		Name:     "mediawiki_site_info",
		Method:   "SiteInfo",
		Title:    "Site Info",
		Category: "site",
		Description: `Describe the wiki: name, MediaWiki version, namespaces and statistics.

USE WHEN: User asks "which namespaces exist", "how big is this wiki", or a namespace ID is needed for another tool.

RETURNS: Site name, generator, language, namespaces and page/edit/user counts.`,
		ReadOnly:   true,
		Idempotent: true,
		OpenWorld:  true,
	},
}
