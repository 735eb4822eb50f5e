package cli

import (
	"fmt"
	"os/signal"
	"syscall"
	"time"

	"github.com/spf13/cobra"

	"gazette/internal/feed"
	"gazette/internal/logging"
)

// ImportOptions holds flags for the import command.
type ImportOptions struct {
	*RootOptions
	Timeout time.Duration
}

// NewImportCommand creates the import command.
func NewImportCommand(rootOpts *RootOptions) *cobra.Command {
	opts := &ImportOptions{RootOptions: rootOpts}

	cmd := &cobra.Command{
		Use:   "import",
		Short: "Fetch configured feeds into the database",
		Long: `Fetch every configured feed and store new posts.

Posts are keyed by slug; re-importing is safe and only counts posts not
seen before. Sources that fail are skipped and recorded, the rest still
import.`,
		RunE: func(cmd *cobra.Command, args []string) error {
			return runImport(opts, cmd)
		},
	}

	cmd.Flags().DurationVar(&opts.Timeout, "timeout", 20*time.Second, "per-feed fetch timeout")

	return cmd
}

func runImport(opts *ImportOptions, cmd *cobra.Command) error {
	cfg, st, err := setup(opts.RootOptions)
	if err != nil {
		return err
	}
	defer st.Close()
	defer logging.Close()

	if len(cfg.Feeds) == 0 {
		fmt.Println("No feeds configured. Add some to", opts.ConfigPath)
		return nil
	}

	ctx, stop := signal.NotifyContext(cmd.Context(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	im := feed.NewImporter(st, opts.Timeout)
	added, err := im.Run(ctx, cfg.Feeds)
	if err != nil {
		return err
	}

	total, err := st.Count()
	if err != nil {
		return err
	}
	fmt.Printf("Imported %d new posts (%d total).\n", added, total)
	return nil
}
