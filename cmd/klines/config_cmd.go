package main

import (
	"context"
	"fmt"

	"github.com/rxtech-lab/kline-downloader/internal/config"
	"github.com/urfave/cli/v3"
)

func (a *app) configCommand() *cli.Command {
	return &cli.Command{
		Name:  "config",
		Usage: "Inspect the configuration",
		Commands: []*cli.Command{
			{
				Name:   "show",
				Usage:  "Print the effective configuration as YAML",
				Action: a.showConfig,
			},
			{
				Name:   "schema",
				Usage:  "Print the JSON schema of the configuration file",
				Action: a.configSchema,
			},
		},
	}
}

func (a *app) showConfig(_ context.Context, _ *cli.Command) error {
	out, err := a.config.YAML()
	if err != nil {
		return err
	}

	_, err = a.stdout.Write(out)

	return err
}

func (a *app) configSchema(_ context.Context, _ *cli.Command) error {
	schema, err := config.Schema()
	if err != nil {
		return err
	}

	fmt.Fprintln(a.stdout, schema)

	return nil
}
