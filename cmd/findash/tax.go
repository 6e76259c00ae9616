package main

import (
	"context"
	"flag"
	"fmt"
	"os"

	"github.com/google/subcommands"
)

type taxCmd struct {
	rangeFlags
}

func (*taxCmd) Name() string     { return "tax" }
func (*taxCmd) Synopsis() string { return "estimate UK tax for a user and range" }
func (*taxCmd) Usage() string {
	return `findash tax -user <uuid> [-preset <name> | -start <date> -end <date>] [-query <jsonpath> | -format markdown]

  Estimates income and dividend tax from the range's transactions.
  The last-year preset means the previous complete tax year.
`
}

func (c *taxCmd) SetFlags(f *flag.FlagSet) {
	c.register(f)
}

func (c *taxCmd) Execute(ctx context.Context, f *flag.FlagSet, _ ...interface{}) subcommands.ExitStatus {
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

	report, err := svc.EstimateTax(ctx, c.user, c.request())
	if err != nil {
		fmt.Fprintf(os.Stderr, "Error: %v\n", err)
		return subcommands.ExitFailure
	}

	if c.format == "markdown" {
		printMarkdown(taxMarkdown(report))
		return subcommands.ExitSuccess
	}
	if err := writeJSON(os.Stdout, report, c.query); err != nil {
		fmt.Fprintf(os.Stderr, "Error: %v\n", err)
		return subcommands.ExitFailure
	}
	return subcommands.ExitSuccess
}
