package main

import (
	"github.com/spf13/cobra"

	"github.com/olgasafonova/mediawiki-list-client/wiki"
)

func newAllPagesCmd(o *rootOptions) *cobra.Command {
	var opts wiki.AllPagesOptions

	cmd := &cobra.Command{
		Use:   "allpages",
		Short: "List pages in title order",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			opts.BatchSize = o.batch
			return run(cmd, o, o.client.AllPages(opts))
		},
	}
	cmd.Flags().StringVar(&opts.Prefix, "prefix", "", "title prefix")
	cmd.Flags().StringVar(&opts.From, "from", "", "title to start from")
	cmd.Flags().IntVar(&opts.Namespace, "namespace", 0, "namespace ID")
	cmd.Flags().StringVar(&opts.FilterRedirects, "redirects", "", "all, redirects or nonredirects")
	return cmd
}

func newCategoryCmd(o *rootOptions) *cobra.Command {
	var (
		opts       wiki.CategoryMembersOptions
		memberType string
	)

	cmd := &cobra.Command{
		Use:   "category [name]",
		Short: "List the members of a category",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			opts.Title = args[0]
			opts.BatchSize = o.batch
			if memberType != "" {
				opts.Type = []string{memberType}
			}
			return run(cmd, o, o.client.CategoryMembers(opts))
		},
	}
	cmd.Flags().StringVar(&memberType, "type", "", "page, subcat or file")
	cmd.Flags().StringVar(&opts.Sort, "sort", "", "sortkey or timestamp")
	cmd.Flags().StringVar(&opts.Direction, "dir", "", "asc or desc")
	return cmd
}

func newRecentCmd(o *rootOptions) *cobra.Command {
	var (
		opts      wiki.RecentChangesOptions
		namespace int
		noBots    bool
	)

	cmd := &cobra.Command{
		Use:   "recent",
		Short: "List recent changes, newest first",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			opts.BatchSize = o.batch
			if cmd.Flags().Changed("namespace") {
				opts.Namespace = []int{namespace}
			}
			if noBots {
				bot := false
				opts.Bot = &bot
			}
			return run(cmd, o, o.client.RecentChanges(opts))
		},
	}
	cmd.Flags().IntVar(&namespace, "namespace", 0, "namespace ID (default all)")
	cmd.Flags().StringVar(&opts.User, "user", "", "only changes by this user")
	cmd.Flags().StringVar(&opts.Start, "start", "", "newest timestamp (ISO 8601)")
	cmd.Flags().StringVar(&opts.End, "end", "", "oldest timestamp (ISO 8601)")
	cmd.Flags().BoolVar(&noBots, "no-bots", false, "exclude bot edits")
	return cmd
}

func newSearchCmd(o *rootOptions) *cobra.Command {
	var opts wiki.SearchOptions

	cmd := &cobra.Command{
		Use:   "search [query]",
		Short: "Full-text search",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			opts.Query = args[0]
			opts.BatchSize = o.batch
			return run(cmd, o, o.client.Search(opts))
		},
	}
	cmd.Flags().StringVar(&opts.What, "what", "", "text, title or nearmatch")
	cmd.Flags().IntSliceVar(&opts.Namespace, "namespace", nil, "namespace IDs")
	return cmd
}

func newEntitiesCmd(o *rootOptions) *cobra.Command {
	var opts wiki.EntitySearchOptions

	cmd := &cobra.Command{
		Use:   "entities [search]",
		Short: "Search Wikibase entities by label or alias",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			opts.Search = args[0]
			opts.BatchSize = o.batch
			return run(cmd, o, o.client.EntitySearch(opts))
		},
	}
	cmd.Flags().StringVar(&opts.Language, "language", "en", "language code")
	cmd.Flags().StringVar(&opts.Type, "type", "", "item, property or lexeme")
	cmd.Flags().BoolVar(&opts.Strict, "strict", false, "match only in the given language")
	return cmd
}
