package wiki

import (
	"net/url"

	"github.com/olgasafonova/mediawiki-list-client/paging"
)

// EntitySearchOptions configures Wikibase action=wbsearchentities
type EntitySearchOptions struct {
	Search    string
	Language  string // defaults to "en"
	Type      string // "item" (default), "property", "lexeme", ...
	Strict    bool   // only match in Language, no fallbacks
	BatchSize int    // capped at MaxEntitySearchLimit
}

// EntitySearch enumerates Wikibase entities whose labels or aliases match.
// The endpoint pages with an integer offset in "search-continue".
func (c *Client) EntitySearch(o EntitySearchOptions, opts ...paging.Option) *paging.Engine[EntitySearchHit] {
	lang := o.Language
	if lang == "" {
		lang = "en"
	}

	params := url.Values{}
	params.Set("action", "wbsearchentities")
	params.Set("search", o.Search)
	params.Set("language", lang)
	params.Set("uselang", lang)
	setIf(params, "type", o.Type)
	if o.Strict {
		params.Set("strictlanguage", "1")
	}

	size := normalizeLimit(o.BatchSize, DefaultLimit, min(c.config.MaxLimit, MaxEntitySearchLimit))
	q := paging.Query{Name: "wbsearchentities", Params: params, LimitParam: "limit"}
	return newList[EntitySearchHit](c, q, paging.SearchContinueEnvelope{}, size, opts)
}
