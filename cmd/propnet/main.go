// Command propnet compiles, checks and executes propositional network games.
package main

import (
	"errors"
	"fmt"
	"os"

	"github.com/roach88/propnet/internal/cli"
)

func main() {
	cmd := cli.NewRootCommand()
	if err := cmd.Execute(); err != nil {
		var exitErr *cli.ExitError
		if !errors.As(err, &exitErr) {
			// cobra usage errors and the like; commands report their own.
			fmt.Fprintln(os.Stderr, err)
		}
		os.Exit(cli.GetExitCode(err))
	}
}
