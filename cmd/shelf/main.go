// Command shelf browses a remote product catalog and keeps a local cart.
package main

import (
	"fmt"
	"os"

	"github.com/roach88/shelf/internal/cli"
)

func main() {
	if err := cli.NewRootCommand().Execute(); err != nil {
		if !cli.IsReported(err) {
			fmt.Fprintln(os.Stderr, "shelf:", err)
		}
		os.Exit(cli.GetExitCode(err))
	}
}
