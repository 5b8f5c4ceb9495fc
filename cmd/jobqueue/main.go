// Command jobqueue is the CLI front-end for the local, persistent
// background job queue: it binds argument parsing and output formatting to
// the store, worker pool, and subprocess runner, none of which know
// anything about the command line themselves.
package main

import (
	"fmt"
	"os"

	"oss.nandlabs.io/taskqueue/cli"
)

const version = "1.0.0"

func main() {
	app := cli.NewCLI()
	app.AddVersion(version)

	app.AddCommand(newEnqueueCommand())
	app.AddCommand(newAddCommand())
	app.AddCommand(newWorkerCommand())
	app.AddCommand(newStatusCommand())
	app.AddCommand(newMetricsCommand())
	app.AddCommand(newListCommand())
	app.AddCommand(newCancelCommand())
	app.AddCommand(newDLQCommand())
	app.AddCommand(newConfigCommand())

	if err := app.Execute(); err != nil {
		fmt.Fprintf(os.Stderr, "Error: %v\n", err)
		os.Exit(1)
	}
}
