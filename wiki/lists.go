package wiki

import (
	"net/url"
	"strconv"
	"strings"

	"github.com/olgasafonova/mediawiki-list-client/paging"
)

// newList wires a list query to the engine. opts come after the client
// defaults so a call can override the batch size or compatibility settings.
func newList[T any](c *Client, q paging.Query, env paging.Envelope, batchSize int, opts []paging.Option) *paging.Engine[T] {
	defaults := []paging.Option{
		paging.WithPaginationSize(batchSize),
		paging.WithCompatibility(c.config.Compatibility),
		paging.WithLogger(c.Logger),
	}
	return paging.New(
		paging.NewPageFetcher(c, env),
		q,
		paging.JSONDecoder[T](paging.DefaultCodec),
		append(defaults, opts...)...,
	)
}

func queryParams(list string) url.Values {
	params := url.Values{}
	params.Set("action", "query")
	params.Set("list", list)
	return params
}

func setIf(params url.Values, key, value string) {
	if value != "" {
		params.Set(key, value)
	}
}

func setInts(params url.Values, key string, values []int) {
	if len(values) == 0 {
		return
	}
	parts := make([]string, len(values))
	for i, v := range values {
		parts[i] = strconv.Itoa(v)
	}
	params.Set(key, strings.Join(parts, "|"))
}

func setPositive(params url.Values, key string, n int) {
	if n > 0 {
		params.Set(key, strconv.Itoa(n))
	}
}

// ========== All Pages ==========

// AllPagesOptions filters list=allpages and generator=allpages
type AllPagesOptions struct {
	Namespace       int
	Prefix          string
	From            string
	To              string
	FilterRedirects string // "all", "redirects" or "nonredirects"
	MinSize         int
	MaxSize         int
	BatchSize       int
}

func (o AllPagesOptions) apply(params url.Values, prefix string) {
	params.Set(prefix+"namespace", strconv.Itoa(o.Namespace))
	setIf(params, prefix+"prefix", o.Prefix)
	setIf(params, prefix+"from", o.From)
	setIf(params, prefix+"to", o.To)
	setIf(params, prefix+"filterredir", o.FilterRedirects)
	setPositive(params, prefix+"minsize", o.MinSize)
	setPositive(params, prefix+"maxsize", o.MaxSize)
}

// AllPages enumerates every page in a namespace
func (c *Client) AllPages(o AllPagesOptions, opts ...paging.Option) *paging.Engine[PageStub] {
	params := queryParams("allpages")
	o.apply(params, "ap")
	q := paging.Query{Name: "allpages", Params: params, LimitParam: "aplimit"}
	return newList[PageStub](c, q, paging.QueryEnvelope{List: "allpages"}, c.ClampLimit(o.BatchSize), opts)
}

// AllPagesGenerator enumerates the same pages as AllPages but yields full
// page objects. props defaults to "info".
func (c *Client) AllPagesGenerator(o AllPagesOptions, props []string, opts ...paging.Option) *paging.Engine[Page] {
	params := url.Values{}
	params.Set("action", "query")
	params.Set("generator", "allpages")
	if len(props) == 0 {
		props = []string{"info"}
	}
	params.Set("prop", strings.Join(props, "|"))
	o.apply(params, "gap")
	q := paging.Query{Name: "allpages-generator", Params: params, LimitParam: "gaplimit"}
	return newList[Page](c, q, paging.QueryEnvelope{Generator: true}, c.ClampLimit(o.BatchSize), opts)
}

// ========== Categories ==========

// AllCategoriesOptions filters list=allcategories
type AllCategoriesOptions struct {
	Prefix     string
	From       string
	To         string
	MinMembers int
	BatchSize  int
}

// AllCategories enumerates categories with their member counts
func (c *Client) AllCategories(o AllCategoriesOptions, opts ...paging.Option) *paging.Engine[Category] {
	params := queryParams("allcategories")
	params.Set("acprop", "size")
	setIf(params, "acprefix", o.Prefix)
	setIf(params, "acfrom", o.From)
	setIf(params, "acto", o.To)
	setPositive(params, "acmin", o.MinMembers)
	q := paging.Query{Name: "allcategories", Params: params, LimitParam: "aclimit"}
	return newList[Category](c, q, paging.QueryEnvelope{List: "allcategories"}, c.ClampLimit(o.BatchSize), opts)
}

// CategoryMembersOptions filters list=categorymembers
type CategoryMembersOptions struct {
	Title     string // with or without the "Category:" prefix
	Namespace []int
	Type      []string // "page", "subcat", "file"
	Sort      string   // "sortkey" or "timestamp"
	Direction string   // "asc" or "desc"
	BatchSize int
}

// CategoryMembers enumerates the pages in a category
func (c *Client) CategoryMembers(o CategoryMembersOptions, opts ...paging.Option) *paging.Engine[CategoryMember] {
	params := queryParams("categorymembers")
	params.Set("cmtitle", normalizeCategoryName(o.Title))
	params.Set("cmprop", "ids|title|type|timestamp|sortkeyprefix")
	setInts(params, "cmnamespace", o.Namespace)
	if len(o.Type) > 0 {
		params.Set("cmtype", strings.Join(o.Type, "|"))
	}
	setIf(params, "cmsort", o.Sort)
	setIf(params, "cmdir", o.Direction)
	q := paging.Query{Name: "categorymembers", Params: params, LimitParam: "cmlimit"}
	return newList[CategoryMember](c, q, paging.QueryEnvelope{List: "categorymembers"}, c.ClampLimit(o.BatchSize), opts)
}

// ========== Recent Changes ==========

// RecentChangesOptions filters list=recentchanges. The *bool filters are
// tri-state: nil leaves the property unfiltered, true keeps only matching
// changes and false excludes them.
type RecentChangesOptions struct {
	Namespace   []int
	Start       string // ISO 8601
	End         string // ISO 8601
	Direction   string // "older" (default) or "newer"
	User        string
	ExcludeUser string
	Type        []string // "edit", "new", "log", "external", "categorize"
	Minor       *bool
	Bot         *bool
	Anonymous   *bool
	Redirect    *bool
	Patrolled   *bool
	BatchSize   int
}

// rcShow renders the tri-state filters as an rcshow value.
func (o RecentChangesOptions) rcShow() string {
	var parts []string
	add := func(flag *bool, name string) {
		switch {
		case flag == nil:
		case *flag:
			parts = append(parts, name)
		default:
			parts = append(parts, "!"+name)
		}
	}
	add(o.Minor, "minor")
	add(o.Bot, "bot")
	add(o.Anonymous, "anon")
	add(o.Redirect, "redirect")
	add(o.Patrolled, "patrolled")
	return strings.Join(parts, "|")
}

// RecentChanges enumerates the recent changes feed
func (c *Client) RecentChanges(o RecentChangesOptions, opts ...paging.Option) *paging.Engine[RecentChange] {
	params := queryParams("recentchanges")
	params.Set("rcprop", "title|ids|sizes|flags|user|timestamp|comment")
	setInts(params, "rcnamespace", o.Namespace)
	setIf(params, "rcstart", o.Start)
	setIf(params, "rcend", o.End)
	setIf(params, "rcdir", o.Direction)
	setIf(params, "rcuser", o.User)
	if o.User == "" {
		setIf(params, "rcexcludeuser", o.ExcludeUser)
	}
	if len(o.Type) > 0 {
		params.Set("rctype", strings.Join(o.Type, "|"))
	}
	setIf(params, "rcshow", o.rcShow())
	q := paging.Query{Name: "recentchanges", Params: params, LimitParam: "rclimit"}
	return newList[RecentChange](c, q, paging.QueryEnvelope{List: "recentchanges"}, c.ClampLimit(o.BatchSize), opts)
}

// ========== Search ==========

// SearchOptions configures list=search
type SearchOptions struct {
	Query     string
	Namespace []int
	What      string // "text" (default), "title" or "nearmatch"
	BatchSize int
}

// Search enumerates full-text search hits
func (c *Client) Search(o SearchOptions, opts ...paging.Option) *paging.Engine[SearchHit] {
	params := queryParams("search")
	params.Set("srsearch", o.Query)
	params.Set("srprop", "size|wordcount|timestamp|snippet")
	setInts(params, "srnamespace", o.Namespace)
	setIf(params, "srwhat", o.What)
	q := paging.Query{Name: "search", Params: params, LimitParam: "srlimit"}
	return newList[SearchHit](c, q, paging.QueryEnvelope{List: "search"}, c.ClampLimit(o.BatchSize), opts)
}

// ========== Log Events ==========

// LogEventsOptions filters list=logevents. Action ("type/action") takes
// precedence over Type.
type LogEventsOptions struct {
	Type      string
	Action    string
	User      string
	Title     string
	Start     string
	End       string
	Direction string // "older" (default) or "newer"
	BatchSize int
}

// LogEvents enumerates log entries
func (c *Client) LogEvents(o LogEventsOptions, opts ...paging.Option) *paging.Engine[LogEvent] {
	params := queryParams("logevents")
	params.Set("leprop", "ids|title|type|user|timestamp|comment|details")
	if o.Action != "" {
		params.Set("leaction", o.Action)
	} else {
		setIf(params, "letype", o.Type)
	}
	setIf(params, "leuser", o.User)
	setIf(params, "letitle", o.Title)
	setIf(params, "lestart", o.Start)
	setIf(params, "leend", o.End)
	setIf(params, "ledir", o.Direction)
	q := paging.Query{Name: "logevents", Params: params, LimitParam: "lelimit"}
	return newList[LogEvent](c, q, paging.QueryEnvelope{List: "logevents"}, c.ClampLimit(o.BatchSize), opts)
}

// ========== User Contributions ==========

// UserContributionsOptions filters list=usercontribs
type UserContributionsOptions struct {
	User      string
	Namespace []int
	Start     string
	End       string
	BatchSize int
}

// UserContributions enumerates the edits of one user, newest first
func (c *Client) UserContributions(o UserContributionsOptions, opts ...paging.Option) *paging.Engine[Contribution] {
	params := queryParams("usercontribs")
	params.Set("ucuser", o.User)
	params.Set("ucprop", "ids|title|timestamp|comment|size|sizediff|flags")
	setInts(params, "ucnamespace", o.Namespace)
	setIf(params, "ucstart", o.Start)
	setIf(params, "ucend", o.End)
	q := paging.Query{Name: "usercontribs", Params: params, LimitParam: "uclimit"}
	return newList[Contribution](c, q, paging.QueryEnvelope{List: "usercontribs"}, c.ClampLimit(o.BatchSize), opts)
}

// ========== Backlinks ==========

// BacklinksOptions filters list=backlinks
type BacklinksOptions struct {
	Title           string
	Namespace       []int
	FilterRedirects string // "all" (default), "redirects" or "nonredirects"
	BatchSize       int
}

// Backlinks enumerates the pages linking to a title ("What links here")
func (c *Client) Backlinks(o BacklinksOptions, opts ...paging.Option) *paging.Engine[PageStub] {
	params := queryParams("backlinks")
	params.Set("bltitle", strings.TrimSpace(o.Title))
	setInts(params, "blnamespace", o.Namespace)
	setIf(params, "blfilterredir", o.FilterRedirects)
	q := paging.Query{Name: "backlinks", Params: params, LimitParam: "bllimit"}
	return newList[PageStub](c, q, paging.QueryEnvelope{List: "backlinks"}, c.ClampLimit(o.BatchSize), opts)
}
