package cmd

import (
	"fmt"
	"os"
	"path/filepath"

	"github.com/urfave/cli/v2"

	"github.com/jensroland/git-solentry/internal/config"
	"github.com/jensroland/git-solentry/internal/project"
)

// InitCommand returns the init command.
func InitCommand() *cli.Command {
	return &cli.Command{
		Name:  "init",
		Usage: "Write a sample configuration file",
		Flags: []cli.Flag{
			&cli.StringFlag{
				Name:    "output",
				Aliases: []string{"o"},
				Usage:   "Output file path (default: solentry.toml in the repository)",
			},
		},
		Action: runInit,
	}
}

func runInit(c *cli.Context) error {
	outputPath := c.String("output")
	if outputPath == "" {
		root, err := project.FindRoot()
		if err != nil {
			if root, err = os.Getwd(); err != nil {
				return err
			}
		}
		outputPath = project.NewPaths(root).ConfigFile
	}
	if err := os.MkdirAll(filepath.Dir(outputPath), 0o755); err != nil {
		return err
	}

	if err := config.InitConfig(outputPath); err != nil {
		return fmt.Errorf("failed to initialize config: %w", err)
	}

	fmt.Fprintf(stdout(c), "Created configuration file at %s\n", outputPath)
	return nil
}
