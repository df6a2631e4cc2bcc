package main

import (
	"fmt"
	"os"

	"github.com/urfave/cli/v2"

	"github.com/jensroland/git-solentry/cmd"
)

var version = "dev"

func main() {
	app := &cli.App{
		Name:     "git-solentry",
		Usage:    "link each test case to the solution code it verifies",
		Version:  version,
		Flags:    cmd.GlobalFlags(),
		Before:   cmd.Before,
		Commands: cmd.Commands(),
	}

	if err := app.Run(os.Args); err != nil {
		fmt.Fprintf(os.Stderr, "Error: %s\n", err)
		os.Exit(1)
	}
}
