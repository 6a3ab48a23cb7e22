// Package wiki is a MediaWiki API client whose list queries run on the
// paging engine.
package wiki

import (
	"context"
	"encoding/json"
	"fmt"
	"log/slog"
	"net/http"
	"net/url"
	"slices"
	"strings"
	"time"

	"go.opentelemetry.io/otel/codes"

	"github.com/olgasafonova/mediawiki-list-client/internal/base"
	mwerrors "github.com/olgasafonova/mediawiki-list-client/internal/errors"
	"github.com/olgasafonova/mediawiki-list-client/metrics"
	"github.com/olgasafonova/mediawiki-list-client/paging"
	"github.com/olgasafonova/mediawiki-list-client/tracing"
)

// siteInfoTTL is how long meta=siteinfo stays cached
const siteInfoTTL = 60 * time.Minute

// Client handles communication with the MediaWiki API
type Client struct {
	*base.Client
	config *Config
}

var _ paging.Transport = (*Client)(nil)

// NewClient creates a new MediaWiki API client. opts are applied after the
// settings derived from config.
func NewClient(config *Config, logger *slog.Logger, opts ...base.ClientOption) *Client {
	if logger == nil {
		logger = slog.Default()
	}
	if config.MaxLimit <= 0 {
		config.MaxLimit = MaxLimit
	}

	baseOpts := []base.ClientOption{
		base.WithHTTPClient(base.NewHTTPClient(config.Timeout)),
		base.WithLogger(logger),
		base.WithRateLimit(config.RateLimit, 1),
	}
	return &Client{
		Client: base.NewClient(append(baseOpts, opts...)...),
		config: config,
	}
}

// Config returns the client configuration
func (c *Client) Config() *Config {
	return c.config
}

// Send posts one api.php request and returns the raw JSON body. It asks for
// formatversion=2 unless params name a version, and turns an error envelope
// into an *errors.APIError.
func (c *Client) Send(ctx context.Context, params url.Values) (json.RawMessage, error) {
	form := make(url.Values, len(params)+2)
	for k, vs := range params {
		form[k] = append([]string(nil), vs...)
	}
	form.Set("format", "json")
	if form.Get("formatversion") == "" {
		form.Set("formatversion", "2")
	}

	action := form.Get("action")
	ctx, span := tracing.StartSpan(ctx, "mediawiki.api")
	defer span.End()
	tracing.AddAPIAttributes(span, action, moduleName(form))

	start := time.Now()
	body, status, err := c.DoRequest(ctx, base.RequestConfig{
		URL:       c.config.BaseURL,
		Form:      form,
		UserAgent: c.config.UserAgent,
		MaxRetry:  c.config.MaxRetries + 1,
	})
	elapsed := time.Since(start).Seconds()

	raw, code, err := c.interpret(body, status, err, form)
	if err != nil {
		metrics.RecordAPICall(action, elapsed, false, code)
		tracing.RecordError(span, err)
		span.SetStatus(codes.Error, err.Error())
		return nil, err
	}

	c.RecordSuccess()
	metrics.RecordAPICall(action, elapsed, true, "")
	span.SetStatus(codes.Ok, "")
	return raw, nil
}

// interpret classifies a finished request. The returned code labels the
// failure in metrics.
func (c *Client) interpret(body []byte, status int, err error, form url.Values) (json.RawMessage, string, error) {
	if err != nil {
		return nil, "transport", err
	}
	if status != http.StatusOK {
		return nil, fmt.Sprintf("http_%d", status), &mwerrors.HTTPError{StatusCode: status, Body: snippet(body)}
	}
	if !json.Valid(body) {
		return nil, "invalid_json", fmt.Errorf("%w: response from %s is not JSON: %s",
			paging.ErrUnexpectedData, c.config.BaseURL, snippet(body))
	}

	var envelope struct {
		Error *struct {
			Code string `json:"code"`
			Info string `json:"info"`
			Text string `json:"text"`
		} `json:"error"`
		Errors []struct {
			Code string `json:"code"`
			Text string `json:"text"`
		} `json:"errors"`
	}
	if err := json.Unmarshal(body, &envelope); err != nil {
		// Valid JSON that is not an object, e.g. a bare array.
		return nil, "invalid_json", fmt.Errorf("%w: %v", paging.ErrUnexpectedData, err)
	}

	switch {
	case envelope.Error != nil:
		info := envelope.Error.Info
		if info == "" {
			info = envelope.Error.Text
		}
		return nil, envelope.Error.Code, mwerrors.FromAPI(envelope.Error.Code, info, identifier(form))
	case len(envelope.Errors) > 0:
		first := envelope.Errors[0]
		return nil, first.Code, mwerrors.FromAPI(first.Code, first.Text, identifier(form))
	}
	return json.RawMessage(body), "", nil
}

// moduleName names the submodule a request targets, for span attributes.
func moduleName(params url.Values) string {
	for _, key := range []string{"list", "generator", "meta", "prop"} {
		if v := params.Get(key); v != "" {
			return v
		}
	}
	return ""
}

// identifier picks the title or user a request is about, for not-found errors.
func identifier(params url.Values) string {
	for _, key := range []string{"titles", "cmtitle", "bltitle", "ucuser", "leuser", "letitle", "ids"} {
		if v := params.Get(key); v != "" {
			return v
		}
	}
	return ""
}

func snippet(body []byte) string {
	return base.Truncate(strings.TrimSpace(string(body)), 200)
}

// ClampLimit bounds a per-request limit to what the server accepts.
// Non-positive values select DefaultLimit.
func (c *Client) ClampLimit(limit int) int {
	return normalizeLimit(limit, DefaultLimit, c.config.MaxLimit)
}

// normalizeLimit ensures limit is within bounds
func normalizeLimit(limit, defaultVal, maxVal int) int {
	if limit <= 0 {
		return min(defaultVal, maxVal)
	}
	if limit > maxVal {
		return maxVal
	}
	return limit
}

// normalizeCategoryName ensures category name has proper prefix
func normalizeCategoryName(name string) string {
	name = strings.TrimSpace(strings.ReplaceAll(name, "_", " "))
	if name == "" {
		return name
	}
	if !strings.HasPrefix(strings.ToLower(name), "category:") {
		name = "Category:" + name
	}
	return name
}

// SiteInfo returns general site information and namespaces. Results are
// cached and concurrent callers share one request.
func (c *Client) SiteInfo(ctx context.Context) (SiteInfo, error) {
	cacheKey := "siteinfo:" + c.config.BaseURL
	if cached, ok := c.Cache.Get(cacheKey); ok {
		return cached.(SiteInfo), nil
	}

	v, _, err := c.Dedup.Do(ctx, cacheKey, func() (any, error) {
		info, err := c.fetchSiteInfo(context.WithoutCancel(ctx))
		if err != nil {
			return nil, err
		}
		c.Cache.Set(cacheKey, info, siteInfoTTL)
		return info, nil
	})
	if err != nil {
		return SiteInfo{}, err
	}
	return v.(SiteInfo), nil
}

func (c *Client) fetchSiteInfo(ctx context.Context) (SiteInfo, error) {
	params := url.Values{}
	params.Set("action", "query")
	params.Set("meta", "siteinfo")
	params.Set("siprop", "general|namespaces|statistics")

	raw, err := c.Send(ctx, params)
	if err != nil {
		return SiteInfo{}, err
	}

	var resp struct {
		Query struct {
			General struct {
				SiteName    string `json:"sitename"`
				MainPage    string `json:"mainpage"`
				Base        string `json:"base"`
				Generator   string `json:"generator"`
				PHPVersion  string `json:"phpversion"`
				Lang        string `json:"lang"`
				ArticlePath string `json:"articlepath"`
				Server      string `json:"server"`
				Timezone    string `json:"timezone"`
				WriteAPI    bool   `json:"writeapi"`
			} `json:"general"`
			Namespaces map[string]Namespace `json:"namespaces"`
			Statistics *struct {
				Pages       int `json:"pages"`
				Articles    int `json:"articles"`
				Edits       int `json:"edits"`
				Images      int `json:"images"`
				Users       int `json:"users"`
				ActiveUsers int `json:"activeusers"`
				Admins      int `json:"admins"`
			} `json:"statistics"`
		} `json:"query"`
	}
	if err := json.Unmarshal(raw, &resp); err != nil {
		return SiteInfo{}, fmt.Errorf("%w: siteinfo: %v", paging.ErrUnexpectedData, err)
	}

	g := resp.Query.General
	info := SiteInfo{
		SiteName:    g.SiteName,
		MainPage:    g.MainPage,
		Base:        g.Base,
		Generator:   g.Generator,
		PHPVersion:  g.PHPVersion,
		Language:    g.Lang,
		ArticlePath: g.ArticlePath,
		Server:      g.Server,
		Timezone:    g.Timezone,
		WriteAPI:    g.WriteAPI,
		Namespaces:  make([]Namespace, 0, len(resp.Query.Namespaces)),
	}
	if st := resp.Query.Statistics; st != nil {
		info.Statistics = &SiteStats{
			Pages:       st.Pages,
			Articles:    st.Articles,
			Edits:       st.Edits,
			Images:      st.Images,
			Users:       st.Users,
			ActiveUsers: st.ActiveUsers,
			Admins:      st.Admins,
		}
	}
	for _, ns := range resp.Query.Namespaces {
		info.Namespaces = append(info.Namespaces, ns)
	}
	slices.SortFunc(info.Namespaces, func(a, b Namespace) int { return a.ID - b.ID })
	return info, nil
}
