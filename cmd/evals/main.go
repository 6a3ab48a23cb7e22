// Command evals reports on the embedded tool selection suites and checks
// them against the registered tool catalogue.
//
// Usage:
//
//	go run ./cmd/evals -suite all -verbose
//
// For actual LLM evaluation, implement evals.ToolSelector and call
// EvaluateToolSelection and EvaluateConfusionPairs.
package main

import (
	"flag"
	"fmt"
	"os"
	"sort"

	"github.com/olgasafonova/mediawiki-list-client/evals"
	"github.com/olgasafonova/mediawiki-list-client/tools"
)

func main() {
	suite := flag.String("suite", "all", "Suite to show: tool_selection, confusion_pairs, or all")
	verbose := flag.Bool("verbose", false, "Show detailed test information")
	flag.Parse()

	selection, err := evals.LoadToolSelectionSuite()
	if err != nil {
		fail(err)
	}
	pairs, err := evals.LoadConfusionPairSuite()
	if err != nil {
		fail(err)
	}

	fmt.Println("MediaWiki List Server - Evaluation Suites")
	fmt.Println("=========================================")

	switch *suite {
	case "tool_selection":
		showToolSelection(selection, *verbose)
	case "confusion_pairs":
		showConfusionPairs(pairs, *verbose)
	case "all":
		showToolSelection(selection, *verbose)
		showConfusionPairs(pairs, *verbose)
	default:
		fmt.Fprintf(os.Stderr, "Unknown suite: %s\n", *suite)
		os.Exit(1)
	}

	if problems := evals.Validate(selection, pairs, tools.AllTools); len(problems) > 0 {
		fmt.Println("\nCatalogue problems:")
		for _, p := range problems {
			fmt.Printf("  - %s\n", p)
		}
		os.Exit(1)
	}
	fmt.Printf("\nAll %d tools covered.\n", len(tools.AllTools))
}

func fail(err error) {
	fmt.Fprintf(os.Stderr, "Error loading evals: %v\n", err)
	os.Exit(1)
}

func showToolSelection(suite *evals.ToolSelectionSuite, verbose bool) {
	fmt.Printf("\nTool Selection Suite: %s (v%s)\n", suite.Name, suite.Version)
	fmt.Printf("Total Tests: %d\n\n", len(suite.Tests))

	byTool := make(map[string]int)
	for _, test := range suite.Tests {
		byTool[test.ExpectedTool]++
	}
	fmt.Println("Tests by Tool:")
	for _, spec := range tools.AllTools {
		fmt.Printf("  %-35s %-12s %d\n", spec.Name, spec.Category, byTool[spec.Name])
	}

	if verbose {
		fmt.Println("\nTest Cases:")
		for _, test := range suite.Tests {
			fmt.Printf("  [%s] %s\n", test.ID, test.Input)
			fmt.Printf("    -> %s %v\n", test.ExpectedTool, sortedArgs(test.ExpectedArgs))
			if len(test.NotTools) > 0 {
				fmt.Printf("    not %v\n", test.NotTools)
			}
		}
	}
}

func showConfusionPairs(suite *evals.ConfusionPairSuite, verbose bool) {
	total := 0
	for _, pair := range suite.Pairs {
		total += len(pair.Tests)
	}
	fmt.Printf("\nConfusion Pairs Suite: %s (v%s)\n", suite.Name, suite.Version)
	fmt.Printf("Total Pairs: %d, Tests: %d\n", len(suite.Pairs), total)

	for _, pair := range suite.Pairs {
		fmt.Printf("\n  %s: %v\n", pair.ID, pair.Tools)
		fmt.Printf("    Rule: %s\n", pair.Disambiguation)
		if verbose {
			for _, test := range pair.Tests {
				fmt.Printf("      %q -> %s (%s)\n", test.Input, test.Expected, test.Reason)
			}
		}
	}
}

func sortedArgs(args map[string]any) []string {
	out := make([]string, 0, len(args))
	for k, v := range args {
		out = append(out, fmt.Sprintf("%s=%v", k, v))
	}
	sort.Strings(out)
	return out
}
