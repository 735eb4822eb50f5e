package cli

import (
	"fmt"

	tea "github.com/charmbracelet/bubbletea"
	"github.com/spf13/cobra"

	"gazette/internal/logging"
	"gazette/internal/preview"
)

// NewPreviewCommand creates the preview command.
func NewPreviewCommand(rootOpts *RootOptions) *cobra.Command {
	return &cobra.Command{
		Use:   "preview",
		Short: "Browse stored posts with the list-page filters",
		Long: `Open a terminal browser over the stored posts.

The preview runs the same search, language, tag and pagination pipeline
the published list page runs, so it shows exactly what readers will see.`,
		RunE: func(cmd *cobra.Command, args []string) error {
			return runPreview(rootOpts)
		},
	}
}

func runPreview(opts *RootOptions) error {
	cfg, st, err := setup(opts)
	if err != nil {
		return err
	}
	defer st.Close()
	defer logging.Close()

	posts, err := st.Published()
	if err != nil {
		return err
	}
	if len(posts) == 0 {
		fmt.Println("No posts yet. Run 'gazette import' first.")
		return nil
	}

	app := preview.New(cfg.Title, posts)
	_, err = tea.NewProgram(app, tea.WithAltScreen()).Run()
	return err
}
