package cli

import (
	"fmt"
	"os"
	"path/filepath"
	"strings"

	"github.com/spf13/cobra"

	"gazette/internal/search"
)

// SearchOptions holds flags for the search command.
type SearchOptions struct {
	*RootOptions
	Limit int
}

// NewSearchCommand creates the search command.
func NewSearchCommand(rootOpts *RootOptions) *cobra.Command {
	opts := &SearchOptions{RootOptions: rootOpts}

	cmd := &cobra.Command{
		Use:   "search <query>",
		Short: "Query the built search index",
		Long: `Run a query against the exported search index and print the ranked
matches with their scores. Useful for checking what readers will find
before publishing. Requires a prior 'gazette build'.`,
		Args: cobra.MinimumNArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			return runSearch(opts, strings.Join(args, " "))
		},
	}

	cmd.Flags().IntVar(&opts.Limit, "limit", 10, "maximum matches to print")

	return cmd
}

func runSearch(opts *SearchOptions, query string) error {
	cfg, st, err := setup(opts.RootOptions)
	if err != nil {
		return err
	}
	defer st.Close()

	path := filepath.Join(cfg.OutputDir, strings.TrimPrefix(search.IndexPath, "/"))
	data, err := os.ReadFile(path)
	if err != nil {
		if os.IsNotExist(err) {
			return fmt.Errorf("no search index at %s; run 'gazette build' first", path)
		}
		return err
	}

	idx, err := search.ParseIndex(data)
	if err != nil {
		return fmt.Errorf("parse search index: %w", err)
	}

	matches := search.TopMatches(idx, query, opts.Limit)
	if len(matches) == 0 {
		fmt.Printf("No matches for %q.\n", query)
		return nil
	}

	for i, m := range matches {
		fmt.Printf("%2d. [%3d] %s\n", i+1, m.Score, m.Entry.Title)
		fmt.Printf("          /posts/%s/  %s\n", m.Entry.Slug, strings.Join(m.Entry.Tags, " "))
	}
	return nil
}
