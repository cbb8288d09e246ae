package main

import (
	"fmt"
	"io"
	"os"

	"github.com/urfave/cli/v2"

	"github.com/aipowergrid/photo-gallery/internal/config"
)

// Version is set via -ldflags at build time.
var Version = "dev"

func main() {
	cfg, err := config.Load()
	if err != nil {
		fmt.Fprintf(os.Stderr, "error: invalid configuration: %v\n", err)
		os.Exit(1)
	}

	os.Exit(runCLI(newCLIApp(cfg), os.Args, os.Stderr))
}

// runCLI runs app and reports a failure on stderr. It returns the process
// exit code.
func runCLI(app *cli.App, args []string, stderr io.Writer) int {
	if err := app.Run(args); err != nil {
		fmt.Fprintf(stderr, "error: %v\n", err)
		return 1
	}
	return 0
}
