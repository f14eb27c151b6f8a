package main

import (
	"context"
	"fmt"
	"strings"
	"time"

	"github.com/rxtech-lab/kline-downloader/internal/types"
	"github.com/rxtech-lab/kline-downloader/pkg/errors"
	"github.com/rxtech-lab/kline-downloader/pkg/marketdata"
	"github.com/rxtech-lab/kline-downloader/pkg/marketdata/provider"
	"github.com/schollz/progressbar/v3"
	"github.com/urfave/cli/v3"
	"go.uber.org/zap"
)

// defaultLookback is the range downloaded when --start-time is omitted.
const defaultLookback = 30 * 24 * time.Hour

func (a *app) getKlinesCommand() *cli.Command {
	return &cli.Command{
		Name:      "get-klines",
		Usage:     "Download klines for symbols into one file per symbol",
		ArgsUsage: "[SYMBOL...]",
		Flags: []cli.Flag{
			marketFlag(),
			&cli.StringFlag{
				Name:    "interval",
				Aliases: []string{"i"},
				Usage:   "Kline interval (" + intervalList() + ")",
				Value:   string(marketdata.IntervalOneHour),
			},
			&cli.StringFlag{
				Name:  "start-time",
				Usage: "Start as epoch milliseconds or `YYYY-MM-DD HH:MM:SS` UTC. Defaults to 30 days before the end",
			},
			&cli.StringFlag{
				Name:  "end-time",
				Usage: "End as epoch milliseconds or `YYYY-MM-DD HH:MM:SS` UTC. Defaults to now",
			},
			&cli.StringFlag{
				Name:    "directory",
				Aliases: []string{"d"},
				Usage:   "Existing output `DIR`",
				Value:   ".",
			},
			&cli.BoolFlag{
				Name:  "all",
				Usage: "Download every tradable symbol of the market",
			},
			&cli.StringFlag{
				Name:  "contract-type",
				Usage: "Contract type sent to futures markets, e.g. PERPETUAL",
			},
			&cli.StringFlag{
				Name:    "format",
				Aliases: []string{"f"},
				Usage:   "Output format (csv, parquet, xlsx). Defaults to output.format",
			},
		},
		Action: a.getKlines,
	}
}

func intervalList() string {
	names := make([]string, 0, len(marketdata.Intervals))
	for _, interval := range marketdata.Intervals {
		names = append(names, string(interval))
	}

	return strings.Join(names, ", ")
}

// timeRange resolves the start and end flags. The end defaults to now and the
// start to defaultLookback before the end.
func timeRange(startFlag, endFlag string, now time.Time) (int64, int64, error) {
	end := now.UnixMilli()

	if endFlag != "" {
		parsed, err := marketdata.ParseTimeMillis(endFlag)
		if err != nil {
			return 0, 0, err
		}

		end = parsed
	}

	start := end - defaultLookback.Milliseconds()

	if startFlag != "" {
		parsed, err := marketdata.ParseTimeMillis(startFlag)
		if err != nil {
			return 0, 0, err
		}

		start = parsed
	}

	if start > end {
		return 0, 0, errors.Newf(errors.ErrCodeInvariantViolation, "start time %d is after end time %d", start, end)
	}

	return start, end, nil
}

// mergeSymbols upper-cases and de-duplicates symbols while keeping their order.
func mergeSymbols(lists ...[]string) []string {
	seen := make(map[string]bool)
	merged := make([]string, 0)

	for _, list := range lists {
		for _, symbol := range list {
			symbol = strings.ToUpper(strings.TrimSpace(symbol))
			if symbol == "" || seen[symbol] {
				continue
			}

			seen[symbol] = true
			merged = append(merged, symbol)
		}
	}

	return merged
}

func (a *app) getKlines(ctx context.Context, cmd *cli.Command) error {
	info, err := marketdata.GetMarketInfo(cmd.String("market"))
	if err != nil {
		return err
	}

	market := types.Market(info.Name)

	sdk := a.config.HTTP.Transport == string(provider.TransportSDK)
	if !info.SDK && sdk {
		return errors.Newf(errors.ErrCodeInvalidParameter, "market %s is not supported by the sdk transport", info.Flag)
	}

	contractType := cmd.String("contract-type")
	if contractType != "" && !info.ContractTypes {
		return errors.Newf(errors.ErrCodeInvalidParameter, "market %s does not take a contract type", info.Flag)
	}

	if contractType != "" && sdk {
		return errors.Newf(errors.ErrCodeInvalidParameter, "contract type %q requires the rest transport", contractType)
	}

	interval, err := marketdata.ParseInterval(cmd.String("interval"))
	if err != nil {
		return err
	}

	start, end, err := timeRange(cmd.String("start-time"), cmd.String("end-time"), time.Now())
	if err != nil {
		return err
	}

	if !cmd.Bool("all") && cmd.Args().Len() == 0 {
		return errors.New(errors.ErrCodeInvalidParameter, "pass --all or at least one symbol")
	}

	params := marketdata.DownloadParams{
		Market:       market,
		Interval:     interval.String(),
		ContractType: contractType,
		StartTime:    start,
		EndTime:      end,
		OutputDir:    cmd.String("directory"),
	}

	if err := params.Validate(); err != nil {
		return err
	}

	var bar *progressbar.ProgressBar

	client, err := a.newClient(cmd.String("format"),
		marketdata.WithOnPage(func(symbol string, cursor, end int64, fetched int) {
			a.logger.Debug("Fetched page",
				zap.String("symbol", symbol),
				zap.Int64("cursor", cursor),
				zap.Int64("end", end),
				zap.Int("fetched", fetched),
			)
		}),
		marketdata.WithOnSymbolDone(func(result marketdata.SymbolResult, _ int, _ int) {
			bar.Describe(result.Symbol)
			_ = bar.Add(1)
		}),
	)
	if err != nil {
		return err
	}

	var listed []string

	if cmd.Bool("all") {
		listed, err = client.ListTradableSymbols(ctx, market)
		if err != nil {
			return err
		}
	}

	symbols := mergeSymbols(listed, cmd.Args().Slice())

	fmt.Fprintln(a.stdout, TitleStyle.Render(fmt.Sprintf("Downloading %d symbol(s)", len(symbols)))+" "+
		HelpStyle.Render(fmt.Sprintf("%s %s %s → %s",
			info.DisplayName,
			interval,
			time.UnixMilli(start).UTC().Format(marketdata.DateTimeLayout),
			time.UnixMilli(end).UTC().Format(marketdata.DateTimeLayout),
		)))

	bar = progressbar.NewOptions(len(symbols),
		progressbar.OptionSetWriter(a.stderr),
		progressbar.OptionSetDescription("Downloading"),
		progressbar.OptionShowCount(),
		progressbar.OptionClearOnFinish(),
	)

	summary, err := client.Download(ctx, params, symbols)
	_ = bar.Finish()

	a.printSummary(summary)

	if err != nil {
		return err
	}

	return summary.Err()
}

func (a *app) printSummary(summary marketdata.Summary) {
	for _, result := range summary.Results {
		line := fmt.Sprintf("%-12s %s", result.Symbol, FormatOutcome(result.Outcome))

		switch result.Outcome {
		case marketdata.OutcomeCompleted:
			line += HelpStyle.Render(fmt.Sprintf(" %d candles → %s", result.Candles, result.Path))
		case marketdata.OutcomeSkipped:
			line += HelpStyle.Render(" " + result.Path + " exists")
		case marketdata.OutcomeFailed:
			line += HelpStyle.Render(fmt.Sprintf(" after %d attempt(s): %v", result.Attempts, result.Err))
		}

		fmt.Fprintln(a.stdout, line)
	}

	fmt.Fprintf(a.stdout, "%d completed, %d skipped, %d failed\n",
		len(summary.Completed()), len(summary.Skipped()), len(summary.Failed()))
}
