// Command salin queries and edits a constructed-language lexicon.
package main

import (
	"fmt"
	"os"

	"github.com/roach88/salin/internal/cli"
)

func main() {
	if err := cli.NewRootCommand().Execute(); err != nil {
		fmt.Fprintln(os.Stderr, err)
		os.Exit(cli.GetExitCode(err))
	}
}
