package main

import (
	"context"
	"fmt"
	"io"
	"os"
	"os/signal"
	"syscall"

	"github.com/urfave/cli/v3"

	"github.com/jobportal/jobview/cmd/jobview/commands"
)

func main() {
	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	if err := newApp(os.Stdout, os.Stderr).Run(ctx, os.Args); err != nil {
		fmt.Fprintln(os.Stderr, err)
		os.Exit(1)
	}
}

func envFlag() cli.Flag {
	return &cli.StringFlag{
		Name:  "env",
		Usage: "path to an env file",
		Value: ".env",
	}
}

func newApp(stdout, stderr io.Writer) *cli.Command {
	return &cli.Command{
		Name:      "jobview",
		Usage:     "view job postings and apply to them",
		Writer:    stdout,
		ErrWriter: stderr,
		Commands: []*cli.Command{
			{
				Name:  "show",
				Usage: "show a job's detail page",
				Flags: []cli.Flag{
					envFlag(),
					&cli.StringFlag{
						Name:     "job",
						Usage:    "job id",
						Required: true,
					},
					&cli.StringFlag{
						Name:    "user",
						Usage:   "signed-in user id",
						Sources: cli.EnvVars("JOBVIEW_USER"),
					},
				},
				Action: commands.ShowAction,
			},
			{
				Name:  "apply",
				Usage: "apply to a job",
				Flags: []cli.Flag{
					envFlag(),
					&cli.StringFlag{
						Name:     "job",
						Usage:    "job id",
						Required: true,
					},
					&cli.StringFlag{
						Name:     "user",
						Usage:    "signed-in user id",
						Sources:  cli.EnvVars("JOBVIEW_USER"),
						Required: true,
					},
				},
				Action: commands.ApplyAction,
			},
		},
	}
}
