package evals

import (
	"errors"
	"strings"
	"testing"

	"github.com/olgasafonova/mediawiki-list-client/tools"
)

// mockSelector answers from a fixed table and falls back to a default tool.
type mockSelector struct {
	responses map[string]string
	args      map[string]map[string]any
	fallback  string
	err       error
}

func (m *mockSelector) SelectTool(input string) (string, map[string]any, error) {
	if m.err != nil {
		return "", nil, m.err
	}
	if tool, ok := m.responses[input]; ok {
		return tool, m.args[input], nil
	}
	return m.fallback, nil, nil
}

// perfectSelector returns the expected answer for every suite input.
type perfectSelector struct {
	selection *ToolSelectionSuite
	pairs     *ConfusionPairSuite
}

func (p *perfectSelector) SelectTool(input string) (string, map[string]any, error) {
	if p.selection != nil {
		for _, test := range p.selection.Tests {
			if test.Input == input {
				return test.ExpectedTool, test.ExpectedArgs, nil
			}
		}
	}
	if p.pairs != nil {
		for _, pair := range p.pairs.Pairs {
			for _, test := range pair.Tests {
				if test.Input == input {
					return test.Expected, nil, nil
				}
			}
		}
	}
	return "", nil, nil
}

func loadSuites(t *testing.T) (*ToolSelectionSuite, *ConfusionPairSuite) {
	t.Helper()
	selection, err := LoadToolSelectionSuite()
	if err != nil {
		t.Fatalf("LoadToolSelectionSuite() error = %v", err)
	}
	pairs, err := LoadConfusionPairSuite()
	if err != nil {
		t.Fatalf("LoadConfusionPairSuite() error = %v", err)
	}
	return selection, pairs
}

func TestLoadSuites(t *testing.T) {
	selection, pairs := loadSuites(t)

	if selection.Name == "" || len(selection.Tests) == 0 {
		t.Fatalf("selection suite = %+v, want name and tests", selection)
	}
	ids := map[string]bool{}
	for _, test := range selection.Tests {
		if test.ID == "" || test.Input == "" || test.ExpectedTool == "" {
			t.Errorf("test %+v missing required fields", test)
		}
		if ids[test.ID] {
			t.Errorf("duplicate test ID %s", test.ID)
		}
		ids[test.ID] = true
	}

	if len(pairs.Pairs) == 0 {
		t.Fatal("confusion suite should have pairs")
	}
	for _, pair := range pairs.Pairs {
		if len(pair.Tools) != 2 {
			t.Errorf("pair %s has %d tools, want 2", pair.ID, len(pair.Tools))
		}
		if len(pair.Tests) == 0 {
			t.Errorf("pair %s has no tests", pair.ID)
		}
	}
}

func TestSuitesMatchCatalogue(t *testing.T) {
	selection, pairs := loadSuites(t)

	if problems := Validate(selection, pairs, tools.AllTools); len(problems) > 0 {
		t.Errorf("Validate() found problems:\n%s", strings.Join(problems, "\n"))
	}
}

func TestValidate_ReportsProblems(t *testing.T) {
	catalogue := []tools.ToolSpec{{Name: "a"}, {Name: "b"}, {Name: "c"}}
	selection := &ToolSelectionSuite{Tests: []ToolSelectionTest{
		{ID: "t1", ExpectedTool: "a", NotTools: []string{"ghost"}},
		{ID: "t2", ExpectedTool: "b"},
	}}
	pairs := &ConfusionPairSuite{Pairs: []ConfusionPair{{
		ID:    "p1",
		Tools: []string{"a", "missing"},
		Tests: []ConfusionPairTest{{Input: "x", Expected: "b"}},
	}}}

	problems := Validate(selection, pairs, catalogue)
	want := []string{
		`t1: unknown tool "ghost"`,
		`p1: unknown tool "missing"`,
		`p1: expected "b" is not one of the pair`,
		`c: no tool selection test`,
	}
	if len(problems) != len(want) {
		t.Fatalf("Validate() = %v, want %v", problems, want)
	}
	for i := range want {
		if problems[i] != want[i] {
			t.Errorf("problems[%d] = %q, want %q", i, problems[i], want[i])
		}
	}
}

func TestEvaluateToolSelection_Perfect(t *testing.T) {
	selection, _ := loadSuites(t)

	metrics, results := EvaluateToolSelection(selection, &perfectSelector{selection: selection})

	if metrics.Accuracy != 1.0 {
		t.Errorf("Accuracy = %v, want 1.0; failures: %v", metrics.Accuracy, metrics.FailedDetails)
	}
	if metrics.TotalTests != len(selection.Tests) {
		t.Errorf("TotalTests = %d, want %d", metrics.TotalTests, len(selection.Tests))
	}
	if len(results) != len(selection.Tests) {
		t.Errorf("results = %d, want %d", len(results), len(selection.Tests))
	}
	if got := metrics.ByTool["mediawiki_category_members"].CorrectCount; got != 2 {
		t.Errorf("category_members CorrectCount = %d, want 2", got)
	}
}

func TestEvaluateToolSelection_Failures(t *testing.T) {
	suite := &ToolSelectionSuite{Tests: []ToolSelectionTest{
		{ID: "ok", Category: "pages", Input: "prefix Berlin", ExpectedTool: "mediawiki_list_all_pages",
			ExpectedArgs: map[string]any{"prefix": "Berlin", "limit": float64(20)}},
		{ID: "wrong", Category: "pages", Input: "links to X", ExpectedTool: "mediawiki_backlinks",
			NotTools: []string{"mediawiki_search"}},
		{ID: "args", Category: "search", Input: "find relativity", ExpectedTool: "mediawiki_search",
			ExpectedArgs: map[string]any{"query": "general relativity", "what": "text"}},
	}}
	selector := &mockSelector{
		responses: map[string]string{
			"prefix Berlin":   "mediawiki_list_all_pages",
			"find relativity": "mediawiki_search",
		},
		args: map[string]map[string]any{
			"prefix Berlin":   {"prefix": "Berlin", "limit": 20},
			"find relativity": {"query": "relativity"},
		},
		fallback: "mediawiki_search",
	}

	metrics, results := EvaluateToolSelection(suite, selector)

	if metrics.PassedTests != 1 || metrics.FailedTests != 2 {
		t.Fatalf("passed/failed = %d/%d, want 1/2", metrics.PassedTests, metrics.FailedTests)
	}
	if !results[0].Passed {
		t.Errorf("int limit should match float expectation: %v", results[0].Errors)
	}
	if got := len(results[1].Errors); got != 2 {
		t.Errorf("wrong tool errors = %v, want wrong tool and forbidden tool", results[1].Errors)
	}
	if got := results[2].Errors; len(got) != 2 ||
		!strings.HasPrefix(got[0], "wrong arg query") || !strings.HasPrefix(got[1], "missing arg what") {
		t.Errorf("arg errors = %v", got)
	}
	if got := metrics.ByTool["mediawiki_backlinks"].FalseNegatives; got != 1 {
		t.Errorf("backlinks FalseNegatives = %d, want 1", got)
	}
	if got := metrics.ByTool["mediawiki_search"].FalsePositives; got != 1 {
		t.Errorf("search FalsePositives = %d, want 1", got)
	}
	if got := metrics.ByCategory["pages"]; got.Passed != 1 || got.Failed != 1 {
		t.Errorf("pages category = %+v, want 1 passed 1 failed", got)
	}
}

func TestEvaluateToolSelection_SelectorError(t *testing.T) {
	suite := &ToolSelectionSuite{Tests: []ToolSelectionTest{
		{ID: "e", Input: "anything", ExpectedTool: "mediawiki_site_info"},
	}}

	metrics, results := EvaluateToolSelection(suite, &mockSelector{err: errors.New("model unavailable")})

	if metrics.Accuracy != 0 {
		t.Errorf("Accuracy = %v, want 0", metrics.Accuracy)
	}
	if !strings.Contains(results[0].Errors[0], "model unavailable") {
		t.Errorf("Errors = %v, want selector error", results[0].Errors)
	}
}

func TestEvaluateConfusionPairs(t *testing.T) {
	_, pairs := loadSuites(t)

	metrics := EvaluateConfusionPairs(pairs, &perfectSelector{pairs: pairs})
	if metrics.Accuracy != 1.0 {
		t.Errorf("perfect Accuracy = %v, want 1.0; failures: %v", metrics.Accuracy, metrics.FailedDetails)
	}

	always := EvaluateConfusionPairs(pairs, &mockSelector{fallback: "mediawiki_search"})
	if always.Accuracy >= 1.0 || always.Accuracy <= 0 {
		t.Errorf("constant selector Accuracy = %v, want between 0 and 1", always.Accuracy)
	}
	if got := always.ByCategory["allpages-vs-search"]; got.Passed != 1 || got.Failed != 1 {
		t.Errorf("allpages-vs-search = %+v, want 1 passed 1 failed", got)
	}
}

func TestCompareValues(t *testing.T) {
	tests := []struct {
		name     string
		expected any
		actual   any
		want     bool
	}{
		{"equal strings", "Berlin", "Berlin", true},
		{"different strings", "Berlin", "Paris", false},
		{"int vs float", float64(20), 20, true},
		{"float mismatch", float64(20), 21, false},
		{"bools", false, false, true},
		{"slices", []any{"Physics", "Chemistry"}, []string{"Physics", "Chemistry"}, true},
		{"slice order", []any{"Physics", "Chemistry"}, []any{"Chemistry", "Physics"}, false},
		{"slice length", []any{"Physics"}, []any{}, false},
		{"nil vs value", nil, "x", false},
		{"both nil", nil, nil, true},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if got := compareValues(tt.expected, tt.actual); got != tt.want {
				t.Errorf("compareValues(%v, %v) = %v, want %v", tt.expected, tt.actual, got, tt.want)
			}
		})
	}
}

func TestFormatMetrics(t *testing.T) {
	metrics := newMetrics()
	metrics.record("pages", true, "")
	for i := range 12 {
		metrics.record("search", false, "failure "+string(rune('a'+i)))
	}
	metrics.finish()

	out := FormatMetrics(metrics, "Tool Selection")

	for _, want := range []string{
		"=== Tool Selection ===",
		"Total: 13 tests",
		"Passed: 1 (7.7%)",
		"pages",
		"showing first 10 of 12",
		"failure a",
	} {
		if !strings.Contains(out, want) {
			t.Errorf("FormatMetrics() missing %q in:\n%s", want, out)
		}
	}
	if strings.Contains(out, "failure l") {
		t.Error("FormatMetrics() should truncate failed details")
	}
}
