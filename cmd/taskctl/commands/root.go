package commands

import (
	"taskdeck/version"

	"github.com/urfave/cli/v3"
)

// NewApp creates the root CLI application
func NewApp() *cli.Command {
	return &cli.Command{
		Name:    "taskctl",
		Usage:   "Taskdeck CLI - create, search, run and delete tasks",
		Version: version.Version,
		Flags: []cli.Flag{
			&cli.StringFlag{
				Name:  "server",
				Usage: "Task backend URL",
			},
		},
		Commands: []*cli.Command{
			TaskCommand(),
		},
	}
}
