package wiki

import (
	"encoding/json"
	"time"
)

// Constants for response limits
const (
	DefaultLimit = 50
	MaxLimit     = 500

	// MaxEntitySearchLimit is the wbsearchentities per-request cap.
	MaxEntitySearchLimit = 50
)

// ========== List Item Types ==========
//
// Field names follow the formatversion=2 response so items decode directly
// from the raw JSON the engine hands back.

// PageStub is a page as returned by list=allpages and list=backlinks.
type PageStub struct {
	PageID    int    `json:"pageid"`
	Namespace int    `json:"ns"`
	Title     string `json:"title"`
	Redirect  bool   `json:"redirect,omitempty"`
}

// Page is a full page object from a generator query with prop=info.
type Page struct {
	PageID       int       `json:"pageid"`
	Namespace    int       `json:"ns"`
	Title        string    `json:"title"`
	ContentModel string    `json:"contentmodel,omitempty"`
	PageLanguage string    `json:"pagelanguage,omitempty"`
	Length       int       `json:"length,omitempty"`
	Touched      time.Time `json:"touched"`
	LastRevID    int       `json:"lastrevid,omitempty"`
	Redirect     bool      `json:"redirect,omitempty"`
	New          bool      `json:"new,omitempty"`
	Missing      bool      `json:"missing,omitempty"`
}

// Category is an entry of list=allcategories with acprop=size.
type Category struct {
	Name    string `json:"category"`
	Size    int    `json:"size"`
	Pages   int    `json:"pages"`
	Files   int    `json:"files"`
	Subcats int    `json:"subcats"`
}

// UnmarshalJSON accepts both the formatversion=2 "category" key and the
// legacy "*" key.
func (c *Category) UnmarshalJSON(data []byte) error {
	type plain Category
	var aux struct {
		plain
		Legacy string `json:"*"`
	}
	if err := json.Unmarshal(data, &aux); err != nil {
		return err
	}
	*c = Category(aux.plain)
	if c.Name == "" {
		c.Name = aux.Legacy
	}
	return nil
}

// CategoryMember is an entry of list=categorymembers.
type CategoryMember struct {
	PageID        int       `json:"pageid"`
	Namespace     int       `json:"ns"`
	Title         string    `json:"title"`
	Type          string    `json:"type,omitempty"`
	Timestamp     time.Time `json:"timestamp"`
	SortKeyPrefix string    `json:"sortkeyprefix,omitempty"`
}

// RecentChange is an entry of list=recentchanges.
type RecentChange struct {
	Type      string    `json:"type"`
	Namespace int       `json:"ns"`
	Title     string    `json:"title"`
	PageID    int       `json:"pageid"`
	RevID     int       `json:"revid"`
	OldRevID  int       `json:"old_revid"`
	RCID      int       `json:"rcid"`
	User      string    `json:"user"`
	Anonymous bool      `json:"anon,omitempty"`
	Timestamp time.Time `json:"timestamp"`
	Comment   string    `json:"comment"`
	OldLen    int       `json:"oldlen"`
	NewLen    int       `json:"newlen"`
	New       bool      `json:"new,omitempty"`
	Minor     bool      `json:"minor,omitempty"`
	Bot       bool      `json:"bot,omitempty"`
	Redirect  bool      `json:"redirect,omitempty"`
}

// SizeDiff is the byte delta of the change.
func (rc RecentChange) SizeDiff() int {
	return rc.NewLen - rc.OldLen
}

// SearchHit is an entry of list=search.
type SearchHit struct {
	Namespace int       `json:"ns"`
	Title     string    `json:"title"`
	PageID    int       `json:"pageid"`
	Size      int       `json:"size"`
	WordCount int       `json:"wordcount"`
	Snippet   string    `json:"snippet"`
	Timestamp time.Time `json:"timestamp"`
}

// LogEvent is an entry of list=logevents.
type LogEvent struct {
	LogID     int            `json:"logid"`
	Namespace int            `json:"ns"`
	Title     string         `json:"title"`
	PageID    int            `json:"pageid"`
	LogPage   int            `json:"logpage"`
	Type      string         `json:"type"`
	Action    string         `json:"action"`
	User      string         `json:"user"`
	Timestamp time.Time      `json:"timestamp"`
	Comment   string         `json:"comment"`
	Params    map[string]any `json:"params,omitempty"`
}

// Contribution is an entry of list=usercontribs.
type Contribution struct {
	UserID    int       `json:"userid"`
	User      string    `json:"user"`
	PageID    int       `json:"pageid"`
	RevID     int       `json:"revid"`
	ParentID  int       `json:"parentid"`
	Namespace int       `json:"ns"`
	Title     string    `json:"title"`
	Timestamp time.Time `json:"timestamp"`
	Comment   string    `json:"comment"`
	Size      int       `json:"size"`
	SizeDiff  int       `json:"sizediff"`
	New       bool      `json:"new,omitempty"`
	Minor     bool      `json:"minor,omitempty"`
	Top       bool      `json:"top,omitempty"`
}

// EntitySearchHit is an entry of Wikibase action=wbsearchentities.
type EntitySearchHit struct {
	ID          string      `json:"id"`
	Title       string      `json:"title"`
	PageID      int         `json:"pageid"`
	ConceptURI  string      `json:"concepturi"`
	URL         string      `json:"url"`
	Label       string      `json:"label"`
	Description string      `json:"description,omitempty"`
	Match       EntityMatch `json:"match"`
}

// EntityMatch tells which term of the entity matched the search.
type EntityMatch struct {
	Type     string `json:"type"`
	Language string `json:"language"`
	Text     string `json:"text"`
}

// ========== Site Info Types ==========

// SiteInfo is the subset of meta=siteinfo the lists need.
type SiteInfo struct {
	SiteName    string      `json:"site_name"`
	MainPage    string      `json:"main_page"`
	Base        string      `json:"base_url"`
	Generator   string      `json:"generator"`
	PHPVersion  string      `json:"php_version"`
	Language    string      `json:"language"`
	ArticlePath string      `json:"article_path"`
	Server      string      `json:"server"`
	Timezone    string      `json:"timezone"`
	WriteAPI    bool        `json:"write_api_enabled"`
	Namespaces  []Namespace `json:"namespaces"`
	Statistics  *SiteStats  `json:"statistics,omitempty"`
}

// Namespace is one entry of siprop=namespaces.
type Namespace struct {
	ID        int    `json:"id"`
	Name      string `json:"name"`
	Canonical string `json:"canonical,omitempty"`
	Content   bool   `json:"content,omitempty"`
}

// SiteStats is siprop=statistics.
type SiteStats struct {
	Pages       int `json:"pages"`
	Articles    int `json:"articles"`
	Edits       int `json:"edits"`
	Images      int `json:"images"`
	Users       int `json:"users"`
	ActiveUsers int `json:"active_users"`
	Admins      int `json:"admins"`
}
