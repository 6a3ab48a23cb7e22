package main

import (
	"context"
	"encoding/json"
	"fmt"
	"io"
	"log/slog"

	"github.com/spf13/cobra"

	"github.com/olgasafonova/mediawiki-list-client/paging"
	"github.com/olgasafonova/mediawiki-list-client/wiki"
)

// rootOptions holds the persistent flags shared by every list command.
type rootOptions struct {
	url        string
	configPath string
	limit      int
	batch      int
	loop       string
	verbose    bool

	client *wiki.Client
}

func newRootCmd() *cobra.Command {
	o := &rootOptions{}

	root := &cobra.Command{
		Use:   "wikilist",
		Short: "Enumerate MediaWiki lists",
		Long: `wikilist walks a MediaWiki list (all pages, category members, recent changes,
search hits or Wikibase entities) batch by batch and prints one JSON object per line.

--limit stops after that many items without fetching further batches; --limit 0
drains the whole list.`,
		SilenceUsage:      true,
		PersistentPreRunE: o.connect,
		PersistentPostRun: func(*cobra.Command, []string) {
			if o.client != nil {
				o.client.Close()
			}
		},
	}

	flags := root.PersistentFlags()
	flags.StringVar(&o.url, "url", "", "wiki API endpoint (overrides MEDIAWIKI_URL)")
	flags.StringVar(&o.configPath, "config", "", "YAML configuration file")
	flags.IntVarP(&o.limit, "limit", "n", 50, "maximum items to print, 0 for all")
	flags.IntVar(&o.batch, "batch", 0, "items per request (default: wiki limit default)")
	flags.StringVar(&o.loop, "loop", "", "repeated continuation handling: throw or fetch-more")
	flags.BoolVarP(&o.verbose, "verbose", "v", false, "log each batch to stderr")

	root.AddCommand(
		newAllPagesCmd(o),
		newCategoryCmd(o),
		newRecentCmd(o),
		newSearchCmd(o),
		newEntitiesCmd(o),
	)
	return root
}

// connect builds the wiki client from config, environment and flags.
func (o *rootOptions) connect(cmd *cobra.Command, _ []string) error {
	var behavior *paging.LoopBehavior
	if o.loop != "" {
		b, err := paging.ParseLoopBehavior(o.loop)
		if err != nil {
			return fmt.Errorf("--loop: %w", err)
		}
		behavior = &b
	}
	if o.limit < 0 {
		return fmt.Errorf("--limit must not be negative")
	}

	config, err := wiki.LoadConfigFile(o.configPath, func(c *wiki.Config) {
		if o.url != "" {
			c.BaseURL = o.url
		}
		if behavior != nil {
			c.Compatibility.ContinuationLoop = *behavior
		}
	})
	if err != nil {
		return err
	}

	level := slog.LevelWarn
	if o.verbose {
		level = slog.LevelDebug
	}
	logger := slog.New(slog.NewTextHandler(cmd.ErrOrStderr(), &slog.HandlerOptions{Level: level}))
	o.client = wiki.NewClient(config, logger)
	return nil
}

// emit prints the items of engine as JSON lines, stopping after o.limit
// items when it is positive.
func emit[T any](ctx context.Context, o *rootOptions, out, status io.Writer, engine *paging.Engine[T]) error {
	defer engine.Cancel()

	seq := engine.All(ctx)
	if o.limit > 0 {
		seq = paging.Take(seq, o.limit)
	}

	enc := json.NewEncoder(out)
	count := 0
	for item, err := range seq {
		if err != nil {
			return err
		}
		if err := enc.Encode(item); err != nil {
			return err
		}
		count++
	}

	more := ""
	if engine.HasMore() {
		more = ", more available"
	}
	fmt.Fprintf(status, "%d items in %d requests%s\n", count, engine.Fetches(), more)
	return nil
}

func run[T any](cmd *cobra.Command, o *rootOptions, engine *paging.Engine[T]) error {
	return emit(cmd.Context(), o, cmd.OutOrStdout(), cmd.ErrOrStderr(), engine)
}
