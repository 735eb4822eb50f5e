package cli

import (
	"fmt"

	"github.com/spf13/cobra"
)

// NewPinCommand creates the pin command.
func NewPinCommand(rootOpts *RootOptions) *cobra.Command {
	var clear bool

	cmd := &cobra.Command{
		Use:   "pin [slug]",
		Short: "Pin a post to the list-page highlight",
		Long: `Mark one post as pinned. The pinned post fills the highlight slot at
the top of the list page and leads the story grid. Pinning a post
replaces any previous pin; at most one post is pinned at a time.`,
		RunE: func(cmd *cobra.Command, args []string) error {
			return runPin(rootOpts, args, clear)
		},
	}

	cmd.Flags().BoolVar(&clear, "clear", false, "remove the current pin")

	return cmd
}

func runPin(opts *RootOptions, args []string, clear bool) error {
	_, st, err := setup(opts)
	if err != nil {
		return err
	}
	defer st.Close()

	if clear {
		if err := st.ClearPinned(); err != nil {
			return err
		}
		fmt.Println("Pin cleared.")
		return nil
	}

	if len(args) != 1 {
		return fmt.Errorf("usage: gazette pin <slug> | gazette pin --clear")
	}

	slug := args[0]
	if err := st.SetPinned(slug); err != nil {
		return err
	}

	p, err := st.BySlug(slug)
	if err != nil {
		return err
	}
	fmt.Printf("Pinned %q.\n", p.Title)
	return nil
}
