package wiki

import (
	"context"
	"encoding/json"
	"errors"
	"io"
	"log/slog"
	"net/http"
	"net/http/httptest"
	"net/url"
	"strings"
	"sync"
	"testing"
	"time"
	"unicode/utf8"

	"github.com/cenkalti/backoff/v5"

	"github.com/olgasafonova/mediawiki-list-client/internal/base"
	mwerrors "github.com/olgasafonova/mediawiki-list-client/internal/errors"
	"github.com/olgasafonova/mediawiki-list-client/paging"
)

// fakeWiki is an api.php stand-in that records every request form.
type fakeWiki struct {
	mu       sync.Mutex
	requests []url.Values
	agents   []string
	respond  func(form url.Values) any
}

func (f *fakeWiki) ServeHTTP(w http.ResponseWriter, r *http.Request) {
	if err := r.ParseForm(); err != nil {
		http.Error(w, err.Error(), http.StatusBadRequest)
		return
	}
	f.mu.Lock()
	f.requests = append(f.requests, r.PostForm)
	f.agents = append(f.agents, r.UserAgent())
	f.mu.Unlock()

	w.Header().Set("Content-Type", "application/json")
	switch body := f.respond(r.PostForm).(type) {
	case string:
		_, _ = io.WriteString(w, body)
	default:
		_ = json.NewEncoder(w).Encode(body)
	}
}

func (f *fakeWiki) count() int {
	f.mu.Lock()
	defer f.mu.Unlock()
	return len(f.requests)
}

func (f *fakeWiki) request(i int) url.Values {
	f.mu.Lock()
	defer f.mu.Unlock()
	return f.requests[i]
}

func newFakeWiki(t *testing.T, respond func(form url.Values) any) (*fakeWiki, *Client) {
	t.Helper()
	fake := &fakeWiki{respond: respond}
	server := httptest.NewServer(fake)
	t.Cleanup(server.Close)

	config := DefaultConfig()
	config.BaseURL = server.URL
	config.Timeout = 5 * time.Second
	config.MaxRetries = 0

	logger := slog.New(slog.NewTextHandler(io.Discard, nil))
	client := NewClient(&config, logger,
		base.WithBackOff(func() backoff.BackOff { return &backoff.ZeroBackOff{} }))
	t.Cleanup(client.Close)
	return fake, client
}

func TestSend_PostsJSONFormatVersion2(t *testing.T) {
	fake, client := newFakeWiki(t, func(url.Values) any {
		return `{"batchcomplete":true,"query":{}}`
	})

	params := url.Values{"action": {"query"}, "list": {"allpages"}}
	raw, err := client.Send(context.Background(), params)
	if err != nil {
		t.Fatalf("Send() error = %v", err)
	}
	if string(raw) != `{"batchcomplete":true,"query":{}}` {
		t.Errorf("raw = %s", raw)
	}

	form := fake.request(0)
	if form.Get("format") != "json" {
		t.Errorf("format = %q, want json", form.Get("format"))
	}
	if form.Get("formatversion") != "2" {
		t.Errorf("formatversion = %q, want 2", form.Get("formatversion"))
	}
	if form.Get("list") != "allpages" {
		t.Errorf("list = %q, want allpages", form.Get("list"))
	}
	if params.Get("format") != "" {
		t.Error("Send must not modify the caller's params")
	}
	if fake.agents[0] != client.Config().UserAgent {
		t.Errorf("User-Agent = %q, want %q", fake.agents[0], client.Config().UserAgent)
	}
}

func TestSend_KeepsExplicitFormatVersion(t *testing.T) {
	fake, client := newFakeWiki(t, func(url.Values) any { return `{}` })

	_, err := client.Send(context.Background(), url.Values{"action": {"query"}, "formatversion": {"1"}})
	if err != nil {
		t.Fatalf("Send() error = %v", err)
	}
	if got := fake.request(0).Get("formatversion"); got != "1" {
		t.Errorf("formatversion = %q, want 1", got)
	}
}

func TestSend_Errors(t *testing.T) {
	tests := []struct {
		name   string
		body   string
		params url.Values
		check  func(t *testing.T, err error)
	}{
		{
			name: "error envelope",
			body: `{"error":{"code":"badcontinue","info":"Invalid continue param."}}`,
			check: func(t *testing.T, err error) {
				if mwerrors.APIErrorCode(err) != "badcontinue" {
					t.Errorf("APIErrorCode() = %q, want badcontinue", mwerrors.APIErrorCode(err))
				}
			},
		},
		{
			name:   "errorformat array",
			body:   `{"errors":[{"code":"missingtitle","text":"The page does not exist.","module":"main"}]}`,
			params: url.Values{"titles": {"Nowhere"}},
			check: func(t *testing.T, err error) {
				var nf *mwerrors.NotFoundError
				if !errors.As(err, &nf) {
					t.Fatalf("error = %v, want NotFoundError", err)
				}
				if nf.EntityType != "page" || nf.Identifier != "Nowhere" {
					t.Errorf("NotFoundError = %+v", nf)
				}
				if mwerrors.APIErrorCode(err) != "missingtitle" {
					t.Errorf("APIErrorCode() = %q", mwerrors.APIErrorCode(err))
				}
			},
		},
		{
			name: "html error page",
			body: `<html><body>Database error</body></html>`,
			check: func(t *testing.T, err error) {
				if !errors.Is(err, paging.ErrUnexpectedData) {
					t.Errorf("error = %v, want ErrUnexpectedData", err)
				}
			},
		},
		{
			name: "json array",
			body: `[1,2,3]`,
			check: func(t *testing.T, err error) {
				if !errors.Is(err, paging.ErrUnexpectedData) {
					t.Errorf("error = %v, want ErrUnexpectedData", err)
				}
			},
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, client := newFakeWiki(t, func(url.Values) any { return tt.body })
			params := url.Values{"action": {"query"}}
			for k, v := range tt.params {
				params[k] = v
			}
			_, err := client.Send(context.Background(), params)
			if err == nil {
				t.Fatal("expected error")
			}
			tt.check(t, err)
		})
	}
}

func TestSend_SnippetKeepsRunesWhole(t *testing.T) {
	body := strings.Repeat("日", 100)
	_, client := newFakeWiki(t, func(url.Values) any { return body })

	_, err := client.Send(context.Background(), url.Values{"action": {"query"}})
	if !errors.Is(err, paging.ErrUnexpectedData) {
		t.Fatalf("error = %v, want ErrUnexpectedData", err)
	}
	if !utf8.ValidString(err.Error()) {
		t.Errorf("error message is not valid UTF-8: %q", err.Error())
	}
	if !strings.HasSuffix(err.Error(), strings.Repeat("日", 66)+"...") {
		t.Errorf("error = %q, want body cut to 66 runes", err.Error())
	}
}

func TestSend_HTTPStatus(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		http.Error(w, "forbidden", http.StatusForbidden)
	}))
	defer server.Close()

	config := DefaultConfig()
	config.BaseURL = server.URL
	client := NewClient(&config, slog.New(slog.NewTextHandler(io.Discard, nil)))
	defer client.Close()

	_, err := client.Send(context.Background(), url.Values{"action": {"query"}})
	if !mwerrors.IsHTTPStatus(err, http.StatusForbidden) {
		t.Errorf("error = %v, want HTTP 403", err)
	}
}

func TestSiteInfo_CachedAndSorted(t *testing.T) {
	fake, client := newFakeWiki(t, func(form url.Values) any {
		if form.Get("meta") != "siteinfo" {
			t.Errorf("meta = %q, want siteinfo", form.Get("meta"))
		}
		return `{"batchcomplete":true,"query":{
			"general":{"sitename":"Test Wiki","mainpage":"Main Page","generator":"MediaWiki 1.42.1","lang":"en","writeapi":true},
			"namespaces":{"14":{"id":14,"name":"Category","canonical":"Category"},"0":{"id":0,"name":"","content":true},"-1":{"id":-1,"name":"Special","canonical":"Special"}},
			"statistics":{"pages":120,"articles":80,"edits":900,"images":3,"users":12,"activeusers":4,"admins":2}}}`
	})

	ctx := context.Background()
	info, err := client.SiteInfo(ctx)
	if err != nil {
		t.Fatalf("SiteInfo() error = %v", err)
	}
	if info.SiteName != "Test Wiki" || !info.WriteAPI || info.Language != "en" {
		t.Errorf("general = %+v", info)
	}
	if len(info.Namespaces) != 3 || info.Namespaces[0].ID != -1 || info.Namespaces[2].ID != 14 {
		t.Errorf("namespaces = %+v, want sorted by id", info.Namespaces)
	}
	if !info.Namespaces[1].Content {
		t.Error("main namespace should be a content namespace")
	}
	if info.Statistics == nil || info.Statistics.ActiveUsers != 4 {
		t.Errorf("statistics = %+v", info.Statistics)
	}

	if _, err := client.SiteInfo(ctx); err != nil {
		t.Fatalf("second SiteInfo() error = %v", err)
	}
	if fake.count() != 1 {
		t.Errorf("requests = %d, want 1 (cached)", fake.count())
	}
}

func TestClampLimit(t *testing.T) {
	config := DefaultConfig()
	config.BaseURL = "https://wiki.example/w/api.php"
	config.MaxLimit = 100
	client := NewClient(&config, nil)
	defer client.Close()

	tests := []struct {
		in, want int
	}{
		{0, DefaultLimit},
		{-3, DefaultLimit},
		{10, 10},
		{100, 100},
		{5000, 100},
	}
	for _, tt := range tests {
		if got := client.ClampLimit(tt.in); got != tt.want {
			t.Errorf("ClampLimit(%d) = %d, want %d", tt.in, got, tt.want)
		}
	}

	config.MaxLimit = 20
	if got := client.ClampLimit(0); got != 20 {
		t.Errorf("ClampLimit(0) with max 20 = %d, want 20", got)
	}
}

func TestNormalizeCategoryName(t *testing.T) {
	tests := []struct {
		in, want string
	}{
		{"Physics", "Category:Physics"},
		{"Category:Physics", "Category:Physics"},
		{"category:Physics", "category:Physics"},
		{"  Quantum_mechanics ", "Category:Quantum mechanics"},
		{"", ""},
	}
	for _, tt := range tests {
		if got := normalizeCategoryName(tt.in); got != tt.want {
			t.Errorf("normalizeCategoryName(%q) = %q, want %q", tt.in, got, tt.want)
		}
	}
}
