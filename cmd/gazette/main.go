// Command gazette imports stories from RSS feeds and publishes them as a
// static site with client-side search, language and tag filters.
package main

import (
	"fmt"
	"os"

	"gazette/internal/cli"
)

func main() {
	if err := cli.NewRootCommand().Execute(); err != nil {
		fmt.Fprintln(os.Stderr, "Error:", err)
		os.Exit(1)
	}
}
