package main

import (
	"context"
	"encoding/json"
	"fmt"

	"github.com/jedib0t/go-pretty/v6/table"
	"github.com/rxtech-lab/kline-downloader/internal/types"
	"github.com/rxtech-lab/kline-downloader/pkg/marketdata"
	"github.com/urfave/cli/v3"
)

func (a *app) marketsCommand() *cli.Command {
	return &cli.Command{
		Name:  "markets",
		Usage: "Describe the supported markets",
		Flags: []cli.Flag{
			&cli.BoolFlag{
				Name:  "json",
				Usage: "Print the market list as JSON",
			},
		},
		Action: a.markets,
	}
}

func (a *app) markets(_ context.Context, cmd *cli.Command) error {
	markets := marketdata.GetSupportedMarkets()

	if cmd.Bool("json") {
		out, err := json.MarshalIndent(markets, "", "  ")
		if err != nil {
			return err
		}

		fmt.Fprintln(a.stdout, string(out))

		return nil
	}

	endpoints := a.config.MarketEndpoints()

	t := table.NewWriter()
	t.SetOutputMirror(a.stdout)
	t.SetStyle(table.StyleRounded)
	t.AppendHeader(table.Row{"Flag", "Name", "Endpoint", "Contract type", "SDK"})

	for _, info := range markets {
		baseURL, err := endpoints.BaseURL(types.Market(info.Name))
		if err != nil {
			return err
		}

		t.AppendRow(table.Row{info.Flag, info.DisplayName, baseURL, yesNo(info.ContractTypes), yesNo(info.SDK)})
	}

	t.Render()

	return nil
}

func yesNo(b bool) string {
	if b {
		return "yes"
	}

	return "no"
}
