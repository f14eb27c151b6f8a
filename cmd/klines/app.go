package main

import (
	"context"
	"io"

	"github.com/rxtech-lab/kline-downloader/internal/config"
	"github.com/rxtech-lab/kline-downloader/internal/logger"
	"github.com/rxtech-lab/kline-downloader/internal/metrics"
	"github.com/rxtech-lab/kline-downloader/internal/version"
	"github.com/rxtech-lab/kline-downloader/pkg/errors"
	"github.com/rxtech-lab/kline-downloader/pkg/marketdata"
	"github.com/rxtech-lab/kline-downloader/pkg/marketdata/provider"
	"github.com/rxtech-lab/kline-downloader/pkg/marketdata/writer"
	"github.com/urfave/cli/v3"
	"go.uber.org/zap"
)

// app holds the state shared by every subcommand. It is populated by the
// root command's Before hook.
type app struct {
	stdout io.Writer
	stderr io.Writer

	config  *config.Config
	logger  *logger.Logger
	metrics *metrics.Metrics
}

func newApp(stdout, stderr io.Writer) *app {
	return &app{stdout: stdout, stderr: stderr}
}

func (a *app) command() *cli.Command {
	return &cli.Command{
		Name:      "klines",
		Version:   version.GetVersion(),
		Usage:     "Download historical klines from Binance-compatible REST APIs",
		Writer:    a.stdout,
		ErrWriter: a.stderr,
		Flags: []cli.Flag{
			&cli.StringFlag{
				Name:    "config",
				Aliases: []string{"c"},
				Usage:   "Path to a YAML configuration `FILE`",
				Sources: cli.EnvVars("KLINES_CONFIG"),
			},
			&cli.StringFlag{
				Name:  "env-file",
				Usage: "Path to a .env file loaded before the configuration",
				Value: ".env",
			},
			&cli.StringFlag{
				Name:  "log-level",
				Usage: "Log level (debug, info, warn, error). Overrides log.level",
			},
			&cli.StringFlag{
				Name:  "metrics-file",
				Usage: "Write Prometheus metrics to `FILE` when the command finishes",
			},
		},
		Before: a.before,
		After:  a.after,
		Commands: []*cli.Command{
			a.listSymbolsCommand(),
			a.getKlinesCommand(),
			a.marketsCommand(),
			a.configCommand(),
		},
	}
}

func (a *app) before(ctx context.Context, cmd *cli.Command) (context.Context, error) {
	if err := config.LoadEnvFile(cmd.String("env-file")); err != nil {
		return ctx, err
	}

	cfg, err := config.Load(cmd.String("config"))
	if err != nil {
		return ctx, err
	}

	if level := cmd.String("log-level"); level != "" {
		cfg.Log.Level = level
	}

	log, err := logger.NewLoggerWithLevel(cfg.Log.Level)
	if err != nil {
		return ctx, err
	}

	a.config = cfg
	a.logger = log
	a.metrics = metrics.New()

	return ctx, nil
}

func (a *app) after(_ context.Context, cmd *cli.Command) error {
	if a.logger != nil {
		_ = a.logger.Sync()
	}

	path := cmd.String("metrics-file")
	if path == "" || a.metrics == nil {
		return nil
	}

	if err := a.metrics.WriteTextfile(path); err != nil {
		return errors.Wrapf(errors.ErrCodeWriteFailed, err, "failed to write metrics to %s", path)
	}

	return nil
}

// newClient builds a kline client from the loaded configuration. An empty
// format falls back to output.format.
func (a *app) newClient(format string, opts ...marketdata.ClientOption) (*marketdata.Client, error) {
	if format == "" {
		format = a.config.Output.Format
	}

	outputFormat, err := writer.ParseFormat(format)
	if err != nil {
		return nil, err
	}

	p, err := provider.New(provider.Config{
		Transport: provider.Transport(a.config.HTTP.Transport),
		Timeout:   a.config.HTTP.Timeout,
		UserAgent: a.config.HTTP.UserAgent,
		Metrics:   a.metrics,
		Logger:    a.logger.Named("provider"),
	})
	if err != nil {
		return nil, err
	}

	a.logger.Debug("Created provider", zap.String("transport", a.config.HTTP.Transport))

	clientConfig := marketdata.ClientConfig{
		Endpoints:       a.config.MarketEndpoints(),
		Format:          outputFormat,
		CorrectedHeader: a.config.Output.CorrectedHeader,
		MaxAttempts:     a.config.Retry.MaxAttempts,
		InitialInterval: a.config.Retry.InitialInterval,
		MaxInterval:     a.config.Retry.MaxInterval,
		RateLimit:       a.config.Rate.LimitPerSecond,
		Burst:           a.config.Rate.Burst,
	}

	opts = append([]marketdata.ClientOption{
		marketdata.WithLogger(a.logger.Named("client")),
		marketdata.WithMetrics(a.metrics),
	}, opts...)

	return marketdata.NewClient(clientConfig, p, opts...)
}
