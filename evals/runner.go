// Package evals checks how well an LLM (or any ToolSelector) picks the
// right list tool and arguments for a natural language request. The suites
// are embedded JSON files validated against the tool catalogue.
package evals

import (
	"embed"
	"encoding/json"
	"fmt"
	"reflect"
	"slices"
	"sort"
	"strings"

	"github.com/olgasafonova/mediawiki-list-client/tools"
)

//go:embed testdata/*.json
var suites embed.FS

// ToolSelectionTest represents a single tool selection evaluation case
type ToolSelectionTest struct {
	ID           string         `json:"id"`
	Category     string         `json:"category"`
	Input        string         `json:"input"`
	ExpectedTool string         `json:"expected_tool"`
	ExpectedArgs map[string]any `json:"expected_args,omitempty"`
	NotTools     []string       `json:"not_tools,omitempty"`
}

// ToolSelectionSuite contains all tool selection tests
type ToolSelectionSuite struct {
	Name        string              `json:"name"`
	Version     string              `json:"version"`
	Description string              `json:"description"`
	Tests       []ToolSelectionTest `json:"tests"`
}

// ConfusionPairTest represents a single disambiguation test
type ConfusionPairTest struct {
	Input    string `json:"input"`
	Expected string `json:"expected"`
	Reason   string `json:"reason"`
}

// ConfusionPair is two tools whose descriptions are easy to mix up
type ConfusionPair struct {
	ID             string              `json:"id"`
	Tools          []string            `json:"tools"`
	Disambiguation string              `json:"disambiguation"`
	Tests          []ConfusionPairTest `json:"tests"`
}

// ConfusionPairSuite contains all confusion pair tests
type ConfusionPairSuite struct {
	Name        string          `json:"name"`
	Version     string          `json:"version"`
	Description string          `json:"description"`
	Pairs       []ConfusionPair `json:"pairs"`
}

// ToolSelectionResult represents the result of a single tool selection evaluation
type ToolSelectionResult struct {
	TestID       string
	Input        string
	ExpectedTool string
	ActualTool   string
	Passed       bool
	Errors       []string
}

// EvalMetrics contains aggregate metrics for an evaluation run
type EvalMetrics struct {
	TotalTests    int
	PassedTests   int
	FailedTests   int
	Accuracy      float64 // PassedTests / TotalTests
	ByCategory    map[string]*CategoryMetrics
	ByTool        map[string]*ToolMetrics
	FailedDetails []string
}

// CategoryMetrics contains metrics per category
type CategoryMetrics struct {
	Total  int
	Passed int
	Failed int
}

// ToolMetrics contains metrics per tool
type ToolMetrics struct {
	ExpectedCount  int // times tool was expected
	CorrectCount   int // times tool was correctly selected
	FalsePositives int // times it was selected instead of another tool
	FalseNegatives int // times it should have been selected but wasn't
}

func newMetrics() *EvalMetrics {
	return &EvalMetrics{
		ByCategory: make(map[string]*CategoryMetrics),
		ByTool:     make(map[string]*ToolMetrics),
	}
}

func (m *EvalMetrics) tool(name string) *ToolMetrics {
	if m.ByTool[name] == nil {
		m.ByTool[name] = &ToolMetrics{}
	}
	return m.ByTool[name]
}

func (m *EvalMetrics) category(name string) *CategoryMetrics {
	if m.ByCategory[name] == nil {
		m.ByCategory[name] = &CategoryMetrics{}
	}
	return m.ByCategory[name]
}

func (m *EvalMetrics) record(category string, passed bool, detail string) {
	m.TotalTests++
	c := m.category(category)
	c.Total++
	if passed {
		m.PassedTests++
		c.Passed++
		return
	}
	m.FailedTests++
	c.Failed++
	m.FailedDetails = append(m.FailedDetails, detail)
}

func (m *EvalMetrics) finish() {
	if m.TotalTests > 0 {
		m.Accuracy = float64(m.PassedTests) / float64(m.TotalTests)
	}
}

// LoadToolSelectionSuite loads the embedded tool selection suite
func LoadToolSelectionSuite() (*ToolSelectionSuite, error) {
	var suite ToolSelectionSuite
	if err := load("testdata/tool_selection.json", &suite); err != nil {
		return nil, err
	}
	return &suite, nil
}

// LoadConfusionPairSuite loads the embedded confusion pair suite
func LoadConfusionPairSuite() (*ConfusionPairSuite, error) {
	var suite ConfusionPairSuite
	if err := load("testdata/confusion_pairs.json", &suite); err != nil {
		return nil, err
	}
	return &suite, nil
}

func load(name string, v any) error {
	data, err := suites.ReadFile(name)
	if err != nil {
		return fmt.Errorf("reading %s: %w", name, err)
	}
	if err := json.Unmarshal(data, v); err != nil {
		return fmt.Errorf("parsing %s: %w", name, err)
	}
	return nil
}

// Validate reports suite entries that name tools missing from catalogue and
// catalogue tools that no selection test expects.
func Validate(selection *ToolSelectionSuite, pairs *ConfusionPairSuite, catalogue []tools.ToolSpec) []string {
	known := make(map[string]bool, len(catalogue))
	for _, spec := range catalogue {
		known[spec.Name] = true
	}

	var problems []string
	unknown := func(where, name string) {
		if !known[name] {
			problems = append(problems, fmt.Sprintf("%s: unknown tool %q", where, name))
		}
	}

	covered := map[string]bool{}
	for _, test := range selection.Tests {
		unknown(test.ID, test.ExpectedTool)
		for _, not := range test.NotTools {
			unknown(test.ID, not)
		}
		covered[test.ExpectedTool] = true
	}
	for _, pair := range pairs.Pairs {
		for _, name := range pair.Tools {
			unknown(pair.ID, name)
		}
		for _, test := range pair.Tests {
			if !slices.Contains(pair.Tools, test.Expected) {
				problems = append(problems, fmt.Sprintf("%s: expected %q is not one of the pair", pair.ID, test.Expected))
			}
		}
	}
	for _, spec := range catalogue {
		if !covered[spec.Name] {
			problems = append(problems, fmt.Sprintf("%s: no tool selection test", spec.Name))
		}
	}
	return problems
}

// ToolSelector is an interface that an LLM or mock can implement for testing
type ToolSelector interface {
	// SelectTool returns the tool name and arguments for a given natural language input
	SelectTool(input string) (toolName string, args map[string]any, err error)
}

// EvaluateToolSelection runs tool selection tests against a selector
func EvaluateToolSelection(suite *ToolSelectionSuite, selector ToolSelector) (*EvalMetrics, []ToolSelectionResult) {
	metrics := newMetrics()
	var results []ToolSelectionResult

	for _, test := range suite.Tests {
		metrics.tool(test.ExpectedTool).ExpectedCount++

		actualTool, actualArgs, err := selector.SelectTool(test.Input)
		result := ToolSelectionResult{
			TestID:       test.ID,
			Input:        test.Input,
			ExpectedTool: test.ExpectedTool,
			ActualTool:   actualTool,
			Passed:       true,
		}
		fail := func(format string, args ...any) {
			result.Passed = false
			result.Errors = append(result.Errors, fmt.Sprintf(format, args...))
		}

		if err != nil {
			fail("selector error: %v", err)
		}
		if actualTool != test.ExpectedTool {
			fail("wrong tool: expected %s, got %s", test.ExpectedTool, actualTool)
			metrics.tool(test.ExpectedTool).FalseNegatives++
			metrics.tool(actualTool).FalsePositives++
		} else {
			metrics.tool(test.ExpectedTool).CorrectCount++
		}
		if slices.Contains(test.NotTools, actualTool) {
			fail("selected forbidden tool: %s", actualTool)
		}
		for _, key := range sortedKeys(test.ExpectedArgs) {
			expected := test.ExpectedArgs[key]
			actual, ok := actualArgs[key]
			switch {
			case !ok:
				fail("missing arg %s (expected %v)", key, expected)
			case !compareValues(expected, actual):
				fail("wrong arg %s: expected %v, got %v", key, expected, actual)
			}
		}

		metrics.record(test.Category, result.Passed,
			fmt.Sprintf("[%s] %s: %s", test.ID, test.Input, strings.Join(result.Errors, "; ")))
		results = append(results, result)
	}

	metrics.finish()
	return metrics, results
}

// EvaluateConfusionPairs runs confusion pair tests against a selector
func EvaluateConfusionPairs(suite *ConfusionPairSuite, selector ToolSelector) *EvalMetrics {
	metrics := newMetrics()

	for _, pair := range suite.Pairs {
		for _, test := range pair.Tests {
			metrics.tool(test.Expected).ExpectedCount++

			actualTool, _, err := selector.SelectTool(test.Input)
			passed := err == nil && actualTool == test.Expected
			if passed {
				metrics.tool(test.Expected).CorrectCount++
			} else {
				metrics.tool(test.Expected).FalseNegatives++
				metrics.tool(actualTool).FalsePositives++
			}
			metrics.record(pair.ID, passed, fmt.Sprintf("[%s] %s: expected %s, got %s (%s)",
				pair.ID, test.Input, test.Expected, actualTool, test.Reason))
		}
	}

	metrics.finish()
	return metrics
}

func sortedKeys(m map[string]any) []string {
	keys := make([]string, 0, len(m))
	for k := range m {
		keys = append(keys, k)
	}
	sort.Strings(keys)
	return keys
}

// compareValues compares expected and actual values, handling the numeric
// type differences JSON decoding introduces.
func compareValues(expected, actual any) bool {
	if expected == nil || actual == nil {
		return expected == actual
	}

	ev := reflect.ValueOf(expected)
	av := reflect.ValueOf(actual)

	if f, ok := asFloat(ev); ok {
		if g, ok := asFloat(av); ok {
			return f == g
		}
	}

	if ev.Kind() == reflect.Slice && av.Kind() == reflect.Slice {
		if ev.Len() != av.Len() {
			return false
		}
		for i := range ev.Len() {
			if !compareValues(ev.Index(i).Interface(), av.Index(i).Interface()) {
				return false
			}
		}
		return true
	}

	return reflect.DeepEqual(expected, actual)
}

func asFloat(v reflect.Value) (float64, bool) {
	switch v.Kind() {
	case reflect.Int, reflect.Int8, reflect.Int16, reflect.Int32, reflect.Int64:
		return float64(v.Int()), true
	case reflect.Float32, reflect.Float64:
		return v.Float(), true
	default:
		return 0, false
	}
}

// FormatMetrics returns a human-readable summary of evaluation metrics
func FormatMetrics(metrics *EvalMetrics, suiteName string) string {
	var b strings.Builder

	fmt.Fprintf(&b, "\n=== %s ===\n", suiteName)
	fmt.Fprintf(&b, "Total: %d tests\n", metrics.TotalTests)
	fmt.Fprintf(&b, "Passed: %d (%.1f%%)\n", metrics.PassedTests, metrics.Accuracy*100)
	fmt.Fprintf(&b, "Failed: %d\n", metrics.FailedTests)

	if len(metrics.ByCategory) > 0 {
		b.WriteString("\nBy Category:\n")
		names := make([]string, 0, len(metrics.ByCategory))
		for name := range metrics.ByCategory {
			names = append(names, name)
		}
		sort.Strings(names)
		for _, name := range names {
			m := metrics.ByCategory[name]
			acc := float64(m.Passed) / float64(m.Total) * 100
			fmt.Fprintf(&b, "  %-25s: %d/%d (%.0f%%)\n", name, m.Passed, m.Total, acc)
		}
	}

	const shown = 10
	if n := len(metrics.FailedDetails); n > 0 {
		if n > shown {
			fmt.Fprintf(&b, "\nFailed Tests (showing first %d of %d):\n", shown, n)
		} else {
			b.WriteString("\nFailed Tests:\n")
		}
		for _, detail := range metrics.FailedDetails[:min(n, shown)] {
			fmt.Fprintf(&b, "  - %s\n", detail)
		}
	}

	return b.String()
}
