package main

import (
	"context"
	"errors"
	"flag"
	"fmt"
	"os"

	"github.com/google/subcommands"
)

type encryptCmd struct{}

func (*encryptCmd) Name() string     { return "encrypt" }
func (*encryptCmd) Synopsis() string { return "encrypt the data directory with a password" }
func (*encryptCmd) Usage() string {
	return `findash encrypt

  Encrypts every CSV and JSON file in the data directory with age.
  The password is read from FINDASH_PASSWORD or prompted for twice.
`
}

func (*encryptCmd) SetFlags(*flag.FlagSet) {}

func (*encryptCmd) Execute(_ context.Context, _ *flag.FlagSet, _ ...interface{}) subcommands.ExitStatus {
	e, err := openEnv(false)
	if err != nil {
		fmt.Fprintf(os.Stderr, "Error: %v\n", err)
		return subcommands.ExitFailure
	}
	if e.store.IsEncrypted() {
		fmt.Fprintln(os.Stderr, "Error: data directory is already encrypted")
		return subcommands.ExitFailure
	}

	password, err := readPassword("New password: ")
	if err == nil && os.Getenv("FINDASH_PASSWORD") == "" {
		var confirm string
		if confirm, err = readPassword("Confirm password: "); err == nil && confirm != password {
			err = errors.New("passwords do not match")
		}
	}
	if err != nil {
		fmt.Fprintf(os.Stderr, "Error: %v\n", err)
		return subcommands.ExitFailure
	}

	if err := e.store.EnableEncryption(password); err != nil {
		fmt.Fprintf(os.Stderr, "Error: %v\n", err)
		return subcommands.ExitFailure
	}
	fmt.Printf("Encrypted %s\n", e.store.BaseDir())
	return subcommands.ExitSuccess
}

type decryptCmd struct{}

func (*decryptCmd) Name() string     { return "decrypt" }
func (*decryptCmd) Synopsis() string { return "remove encryption from the data directory" }
func (*decryptCmd) Usage() string {
	return `findash decrypt

  Decrypts every file in the data directory. Requires the current password.
`
}

func (*decryptCmd) SetFlags(*flag.FlagSet) {}

func (*decryptCmd) Execute(_ context.Context, _ *flag.FlagSet, _ ...interface{}) subcommands.ExitStatus {
	e, err := openEnv(false)
	if err != nil {
		fmt.Fprintf(os.Stderr, "Error: %v\n", err)
		return subcommands.ExitFailure
	}
	if !e.store.IsEncrypted() {
		fmt.Fprintln(os.Stderr, "Error: data directory is not encrypted")
		return subcommands.ExitFailure
	}

	password, err := readPassword("Password: ")
	if err != nil {
		fmt.Fprintf(os.Stderr, "Error: %v\n", err)
		return subcommands.ExitFailure
	}
	if err := e.store.DisableEncryption(password); err != nil {
		fmt.Fprintf(os.Stderr, "Error: %v\n", err)
		return subcommands.ExitFailure
	}
	fmt.Printf("Decrypted %s\n", e.store.BaseDir())
	return subcommands.ExitSuccess
}
