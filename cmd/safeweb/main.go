package main

import (
	"context"
	"fmt"
	"os"

	"github.com/bryanwahyu/safeweb/internal/cli"
)

// Signals keep their default behaviour: an interrupt ends the process, and an
// analysis that is already running is simply abandoned.
func main() {
	if err := cli.NewRootCommand(nil).ExecuteContext(context.Background()); err != nil {
		fmt.Fprintf(os.Stderr, "Error: %v\n", err)
		os.Exit(1)
	}
}
