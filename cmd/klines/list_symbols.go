package main

import (
	"context"
	"fmt"
	"strings"

	"github.com/jedib0t/go-pretty/v6/table"
	"github.com/rxtech-lab/kline-downloader/internal/types"
	"github.com/rxtech-lab/kline-downloader/pkg/errors"
	"github.com/urfave/cli/v3"
)

const (
	listFormatPlain = "plain"
	listFormatTable = "table"
)

func marketFlag() *cli.StringFlag {
	flags := make([]string, 0, len(types.Markets))
	for _, market := range types.Markets {
		flags = append(flags, market.Flag())
	}

	return &cli.StringFlag{
		Name:    "market",
		Aliases: []string{"m"},
		Usage:   "Market to query (" + strings.Join(flags, ", ") + ")",
		Value:   types.MarketSpot.Flag(),
	}
}

func (a *app) listSymbolsCommand() *cli.Command {
	return &cli.Command{
		Name:  "list-symbols",
		Usage: "Print the tradable symbols of a market",
		Flags: []cli.Flag{
			marketFlag(),
			&cli.StringFlag{
				Name:  "format",
				Usage: "Output format (plain, table)",
				Value: listFormatPlain,
			},
		},
		Action: a.listSymbols,
	}
}

func (a *app) listSymbols(ctx context.Context, cmd *cli.Command) error {
	market, err := types.ParseMarket(cmd.String("market"))
	if err != nil {
		return err
	}

	format := cmd.String("format")
	if format != listFormatPlain && format != listFormatTable {
		return errors.Newf(errors.ErrCodeInvalidParameter, "unknown list format %q", format)
	}

	client, err := a.newClient("")
	if err != nil {
		return err
	}

	symbols, err := client.ListTradableSymbols(ctx, market)
	if err != nil {
		return err
	}

	if format == listFormatPlain {
		for _, symbol := range symbols {
			fmt.Fprintln(a.stdout, symbol)
		}

		return nil
	}

	t := table.NewWriter()
	t.SetOutputMirror(a.stdout)
	t.SetTitle(market.String() + " symbols")
	t.SetStyle(table.StyleRounded)
	t.AppendHeader(table.Row{"#", "Symbol"})

	for i, symbol := range symbols {
		t.AppendRow(table.Row{i + 1, symbol})
	}

	t.AppendFooter(table.Row{"", fmt.Sprintf("%d tradable", len(symbols))})
	t.Render()

	return nil
}
