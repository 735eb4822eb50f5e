package cli

import (
	"fmt"

	"github.com/spf13/cobra"

	"gazette/internal/logging"
	"gazette/internal/site"
)

// NewBuildCommand creates the build command.
func NewBuildCommand(rootOpts *RootOptions) *cobra.Command {
	return &cobra.Command{
		Use:   "build",
		Short: "Export the static site",
		Long: `Render every stored post into the output directory.

The export is the list page, one page per post, the search index and the
tag taxonomy. Serve the directory with any static file server.`,
		RunE: func(cmd *cobra.Command, args []string) error {
			return runBuild(rootOpts)
		},
	}
}

func runBuild(opts *RootOptions) error {
	cfg, st, err := setup(opts)
	if err != nil {
		return err
	}
	defer st.Close()
	defer logging.Close()

	if err := site.NewBuilder(cfg, st).Build(); err != nil {
		return err
	}

	n, err := st.Count()
	if err != nil {
		return err
	}
	fmt.Printf("Built %d posts into %s\n", n, cfg.OutputDir)
	return nil
}
