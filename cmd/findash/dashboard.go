package main

import (
	"context"
	"flag"
	"fmt"
	"os"

	"github.com/google/subcommands"
)

type dashboardCmd struct {
	rangeFlags
	mode string
}

func (*dashboardCmd) Name() string     { return "dashboard" }
func (*dashboardCmd) Synopsis() string { return "compute the dashboard for a user and range" }
func (*dashboardCmd) Usage() string {
	return `findash dashboard -user <uuid> [-preset <name> | -start <date> -end <date>] [-mode absolute|percent] [-query <jsonpath> | -format markdown]

  Computes the dashboard payload from the data directory and prints it.
`
}

func (c *dashboardCmd) SetFlags(f *flag.FlagSet) {
	c.register(f)
	f.StringVar(&c.mode, "mode", "", "Delta mode: absolute or percent (defaults to the stored preference)")
}

func (c *dashboardCmd) Execute(ctx context.Context, f *flag.FlagSet, _ ...interface{}) subcommands.ExitStatus {
	if err := c.validate(); err != nil {
		fmt.Fprintf(os.Stderr, "Error: %v\n", err)
		return subcommands.ExitUsageError
	}

	e, err := openEnv(true)
	if err != nil {
		fmt.Fprintf(os.Stderr, "Error: %v\n", err)
		return subcommands.ExitFailure
	}
	defer e.logger.Sync()

	svc, err := e.service()
	if err != nil {
		fmt.Fprintf(os.Stderr, "Error: %v\n", err)
		return subcommands.ExitFailure
	}

	payload, err := svc.ComputeDashboard(ctx, c.user, c.request(), c.mode)
	if err != nil {
		fmt.Fprintf(os.Stderr, "Error: %v\n", err)
		return subcommands.ExitFailure
	}

	if c.format == "markdown" {
		printMarkdown(dashboardMarkdown(payload))
		return subcommands.ExitSuccess
	}
	if err := writeJSON(os.Stdout, payload, c.query); err != nil {
		fmt.Fprintf(os.Stderr, "Error: %v\n", err)
		return subcommands.ExitFailure
	}
	return subcommands.ExitSuccess
}
