// Command benchmark measures how batch size and early stopping change the
// number of API requests a list walk costs against a live wiki.
//
// Usage:
//
//	MEDIAWIKI_URL=https://en.wikipedia.org/w/api.php go run ./cmd/benchmark -take 100
package main

import (
	"context"
	"flag"
	"fmt"
	"log/slog"
	"os"
	"time"

	"github.com/olgasafonova/mediawiki-list-client/paging"
	"github.com/olgasafonova/mediawiki-list-client/wiki"
)

// measureSiteInfoCache compares a network siteinfo call with a cached one
func measureSiteInfoCache(ctx context.Context, client *wiki.Client) {
	fmt.Println("=== Site Info Cache ===")

	start := time.Now()
	info, err := client.SiteInfo(ctx)
	if err != nil {
		fmt.Printf("   Error: %v\n", err)
		return
	}
	first := time.Since(start)

	start = time.Now()
	_, _ = client.SiteInfo(ctx)
	second := time.Since(start)

	fmt.Printf("   %s (%s)\n", info.SiteName, info.Generator)
	fmt.Printf("   First call (network):  %v\n", first)
	fmt.Printf("   Second call (cached):  %v\n", second)
	if second > 0 {
		fmt.Printf("   Speedup: %.0fx faster\n", float64(first)/float64(second))
	}
	fmt.Println()
}

// measureBatchSizes takes the same number of pages with different batch sizes
func measureBatchSizes(ctx context.Context, client *wiki.Client, take int, sizes []int) {
	fmt.Printf("=== Take %d pages by batch size ===\n", take)

	for _, size := range sizes {
		engine := client.AllPages(wiki.AllPagesOptions{BatchSize: size})
		start := time.Now()
		count := 0
		var walkErr error
		for _, err := range paging.Take(engine.All(ctx), take) {
			if err != nil {
				walkErr = err
				break
			}
			count++
		}
		elapsed := time.Since(start)
		engine.Cancel()

		if walkErr != nil {
			fmt.Printf("   batch %4d: error: %v\n", size, walkErr)
			continue
		}
		fmt.Printf("   batch %4d: %d items, %d requests, %v\n", size, count, engine.Fetches(), elapsed)
	}
	fmt.Println()
}

// measureEarlyStop shows that a small take never fetches past its batch
func measureEarlyStop(ctx context.Context, client *wiki.Client) {
	fmt.Println("=== Early stop ===")

	engine := client.RecentChanges(wiki.RecentChangesOptions{BatchSize: 50})
	defer engine.Cancel()

	items, err := paging.Collect(paging.Take(engine.All(ctx), 5))
	if err != nil {
		fmt.Printf("   Error: %v\n", err)
		return
	}
	fmt.Printf("   %d recent changes in %d request(s), more available: %v\n",
		len(items), engine.Fetches(), engine.HasMore())
	fmt.Println()
}

func main() {
	take := flag.Int("take", 100, "pages to take in the batch size comparison")
	flag.Parse()

	config, err := wiki.LoadConfig()
	if err != nil {
		fmt.Fprintf(os.Stderr, "Config error: %v\n", err)
		os.Exit(1)
	}
	logger := slog.New(slog.NewTextHandler(os.Stderr, &slog.HandlerOptions{Level: slog.LevelError}))
	client := wiki.NewClient(config, logger)
	defer client.Close()
	ctx := context.Background()

	fmt.Println("MediaWiki List Server - Request Measurements")
	fmt.Println("============================================")
	fmt.Println()

	measureSiteInfoCache(ctx, client)
	measureBatchSizes(ctx, client, *take, []int{10, 50, 500})
	measureEarlyStop(ctx, client)
}
