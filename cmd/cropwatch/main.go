// Command cropwatch generates synthetic crop market dashboards from the command line.
package main

import (
	"fmt"
	"os"

	"github.com/aristath/cropwatch/internal/cli"
)

func main() {
	if err := cli.NewRootCommand(os.Stdout).Execute(); err != nil {
		fmt.Fprintln(os.Stderr, err)
		os.Exit(1)
	}
}
