package main

import (
	"context"
	"fmt"
	"os"

	"github.com/sahilchouksey/learnhub-api/app"
	"github.com/urfave/cli/v3"
)

// Version is set at build time through -ldflags.
var Version = "dev"

func main() {
	cmd := &cli.Command{
		Name:    "learnhub-api",
		Usage:   "course platform API server",
		Version: Version,
		// serve is the default when no subcommand is given
		Action: serve,
		Commands: []*cli.Command{
			{
				Name:   "serve",
				Usage:  "migrate the database and start the HTTP server",
				Action: serve,
			},
			{
				Name:  "migrate",
				Usage: "create or update tables and constraints",
				Action: func(ctx context.Context, cmd *cli.Command) error {
					env, log, err := app.Environment()
					if err != nil {
						return err
					}
					defer log.Sync()
					return app.Migrate(env, log)
				},
			},
			{
				Name:  "seed",
				Usage: "create the admin account and default content",
				Flags: []cli.Flag{
					&cli.BoolFlag{
						Name:  "sample",
						Usage: "also create a demo instructor with sample courses",
					},
				},
				Action: func(ctx context.Context, cmd *cli.Command) error {
					env, log, err := app.Environment()
					if err != nil {
						return err
					}
					defer log.Sync()
					if err := app.Migrate(env, log); err != nil {
						return err
					}
					return app.Seed(env, log, cmd.Bool("sample"))
				},
			},
		},
	}

	if err := cmd.Run(context.Background(), os.Args); err != nil {
		fmt.Fprintf(os.Stderr, "learnhub-api: %v\n", err)
		os.Exit(1)
	}
}

func serve(ctx context.Context, cmd *cli.Command) error {
	env, log, err := app.Environment()
	if err != nil {
		return err
	}
	defer log.Sync()
	return app.SetupAndRunServer(env, log)
}
