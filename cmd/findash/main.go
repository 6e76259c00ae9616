// Command findash computes dashboards and tax reports from the data directory
// and manages its encryption.
package main

import (
	"context"
	"flag"
	"os"
	"path"

	"github.com/google/subcommands"
)

func main() {
	commander := subcommands.NewCommander(flag.CommandLine, path.Base(os.Args[0]))
	commander.Register(commander.HelpCommand(), "")
	commander.Register(commander.FlagsCommand(), "")

	commander.Register(&dashboardCmd{}, "reports")
	commander.Register(&taxCmd{}, "reports")
	commander.Register(&encryptCmd{}, "storage")
	commander.Register(&decryptCmd{}, "storage")

	flag.Parse()
	os.Exit(int(commander.Execute(context.Background())))
}
