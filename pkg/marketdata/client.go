package marketdata

import (
	"context"
	"os"
	"time"

	"github.com/cenkalti/backoff/v4"
	"github.com/go-playground/validator/v10"
	"github.com/rxtech-lab/kline-downloader/internal/logger"
	"github.com/rxtech-lab/kline-downloader/internal/metrics"
	"github.com/rxtech-lab/kline-downloader/internal/types"
	"github.com/rxtech-lab/kline-downloader/pkg/errors"
	"github.com/rxtech-lab/kline-downloader/pkg/marketdata/provider"
	"github.com/rxtech-lab/kline-downloader/pkg/marketdata/writer"
	"go.uber.org/zap"
	"golang.org/x/time/rate"
)

// Outcome is the final state of one symbol in a run.
type Outcome string

const (
	OutcomeCompleted Outcome = "completed"
	OutcomeSkipped   Outcome = "skipped"
	OutcomeFailed    Outcome = "failed"
)

// SymbolResult describes what happened to one symbol.
type SymbolResult struct {
	Symbol   string
	Outcome  Outcome
	Path     string
	Candles  int
	Attempts int
	Warnings int
	Err      error
}

// Summary lists the per-symbol results of a run in processing order.
type Summary struct {
	Results []SymbolResult
}

func (s Summary) symbols(outcome Outcome) []string {
	out := make([]string, 0)

	for _, r := range s.Results {
		if r.Outcome == outcome {
			out = append(out, r.Symbol)
		}
	}

	return out
}

// Completed returns the symbols written during the run.
func (s Summary) Completed() []string { return s.symbols(OutcomeCompleted) }

// Skipped returns the symbols whose output already existed.
func (s Summary) Skipped() []string { return s.symbols(OutcomeSkipped) }

// Failed returns the symbols that could not be downloaded.
func (s Summary) Failed() []string { return s.symbols(OutcomeFailed) }

// Err returns a RetriesExhaustedError naming every failed symbol, or nil.
func (s Summary) Err() error {
	var failures []errors.SymbolFailure

	for _, r := range s.Results {
		if r.Outcome == OutcomeFailed {
			failures = append(failures, errors.SymbolFailure{Symbol: r.Symbol, Attempts: r.Attempts, Err: r.Err})
		}
	}

	if len(failures) == 0 {
		return nil
	}

	return errors.NewRetriesExhaustedError(failures)
}

// OnSymbolDone is called once per symbol with its result, its zero based
// position and the number of symbols in the run.
type OnSymbolDone func(result SymbolResult, index int, total int)

// WriterFactory creates the writer for one output file.
type WriterFactory func(format writer.Format, outputPath string, header []string) (writer.CandleWriter, error)

// ClientConfig holds the configuration for the kline client.
type ClientConfig struct {
	Endpoints       Endpoints     `validate:"required"`
	Format          writer.Format `validate:"required,oneof=csv parquet xlsx"`
	CorrectedHeader bool
	// MaxAttempts bounds the downloads of one symbol, the first included.
	MaxAttempts     int           `validate:"min=1"`
	InitialInterval time.Duration `validate:"gte=0"`
	MaxInterval     time.Duration `validate:"gte=0"`
	// RateLimit is the request budget per second. Zero disables throttling.
	RateLimit float64 `validate:"gte=0"`
	Burst     int     `validate:"min=1"`
}

// DefaultClientConfig returns the settings used when nothing is configured.
func DefaultClientConfig() ClientConfig {
	return ClientConfig{
		Endpoints:       DefaultEndpoints(),
		Format:          writer.FormatCSV,
		MaxAttempts:     3,
		InitialInterval: time.Second,
		MaxInterval:     10 * time.Second,
		RateLimit:       10,
		Burst:           1,
	}
}

// Client downloads klines for a list of symbols, one symbol at a time, and
// writes one file per symbol.
type Client struct {
	provider     provider.Provider
	paginator    *Paginator
	config       ClientConfig
	logger       *logger.Logger
	metrics      *metrics.Metrics
	newWriter    WriterFactory
	onSymbolDone OnSymbolDone
}

// ClientOption customises a Client.
type ClientOption func(*Client)

// WithLogger sets the logger.
func WithLogger(l *logger.Logger) ClientOption {
	return func(c *Client) { c.logger = l }
}

// WithMetrics sets the metrics sink.
func WithMetrics(m *metrics.Metrics) ClientOption {
	return func(c *Client) { c.metrics = m }
}

// WithWriterFactory replaces writer.New.
func WithWriterFactory(f WriterFactory) ClientOption {
	return func(c *Client) { c.newWriter = f }
}

// WithOnSymbolDone installs a per-symbol progress callback.
func WithOnSymbolDone(fn OnSymbolDone) ClientOption {
	return func(c *Client) { c.onSymbolDone = fn }
}

// WithOnPage installs a per-page progress callback.
func WithOnPage(fn OnPage) ClientOption {
	return func(c *Client) { c.paginator.SetOnPage(fn) }
}

// NewClient creates a new kline client with the given configuration.
func NewClient(config ClientConfig, p provider.Provider, opts ...ClientOption) (*Client, error) {
	if err := validator.New().Struct(config); err != nil {
		return nil, errors.Wrap(errors.ErrCodeInvalidConfiguration, "invalid client configuration", err)
	}

	if p == nil {
		return nil, errors.New(errors.ErrCodeInvalidConfiguration, "provider is required")
	}

	limit := rate.Inf
	if config.RateLimit > 0 {
		limit = rate.Limit(config.RateLimit)
	}

	c := &Client{
		provider:  p,
		config:    config,
		logger:    logger.NewNop(),
		newWriter: writer.New,
	}
	c.paginator = NewPaginator(p, rate.NewLimiter(limit, config.Burst), nil)

	for _, opt := range opts {
		opt(c)
	}

	c.paginator.logger = c.logger.Named("paginator")

	return c, nil
}

// ListTradableSymbols returns the tradable symbols of market in directory order.
// The request counts against the same rate limit as kline pages.
func (c *Client) ListTradableSymbols(ctx context.Context, market types.Market) ([]string, error) {
	baseURL, err := c.config.Endpoints.BaseURL(market)
	if err != nil {
		return nil, err
	}

	if err := c.paginator.limiter.Wait(ctx); err != nil {
		return nil, err
	}

	infos, err := c.provider.ListSymbols(ctx, market, baseURL)
	if err != nil {
		return nil, err
	}

	symbols := FilterTradable(infos)
	c.logger.Info("Listed symbols",
		zap.String("market", market.String()),
		zap.Int("listed", len(infos)),
		zap.Int("tradable", len(symbols)),
	)

	return symbols, nil
}

// Download validates params and runs them for symbols.
func (c *Client) Download(ctx context.Context, params DownloadParams, symbols []string) (Summary, error) {
	if err := params.Validate(); err != nil {
		return Summary{}, err
	}

	template, err := params.FetchTemplate(c.config.Endpoints)
	if err != nil {
		return Summary{}, err
	}

	return c.Run(ctx, template, symbols)
}

// Run downloads every symbol in order. A symbol whose output file exists is
// skipped without any request. A symbol failing all attempts is recorded and
// the run moves on; only context cancellation stops it early.
func (c *Client) Run(ctx context.Context, template types.FetchRequest, symbols []string) (Summary, error) {
	summary := Summary{Results: make([]SymbolResult, 0, len(symbols))}

	for i, symbol := range symbols {
		if err := ctx.Err(); err != nil {
			return summary, err
		}

		req := template.WithSymbol(symbol)
		outputPath := req.OutputPath(req.StartTime, c.config.Format.Extension())

		var result SymbolResult

		if _, err := os.Stat(outputPath); err == nil {
			c.logger.Info("Output exists, skipping", zap.String("symbol", symbol), zap.String("path", outputPath))
			result = SymbolResult{Symbol: symbol, Outcome: OutcomeSkipped, Path: outputPath}
		} else {
			result = c.downloadSymbol(ctx, req, outputPath)
			if ctx.Err() != nil {
				return summary, ctx.Err()
			}
		}

		summary.Results = append(summary.Results, result)
		c.metrics.ObserveSymbol(string(result.Outcome))

		if c.onSymbolDone != nil {
			c.onSymbolDone(result, i, len(symbols))
		}
	}

	return summary, nil
}

func (c *Client) downloadSymbol(ctx context.Context, req types.FetchRequest, outputPath string) SymbolResult {
	log := c.logger.With(
		zap.String("symbol", req.Symbol),
		zap.String("market", req.Market.String()),
		zap.String("interval", req.Interval),
	)
	result := SymbolResult{Symbol: req.Symbol, Path: outputPath}

	var report Report

	operation := func() (types.Series, error) {
		result.Attempts++

		series, err := c.paginator.FetchSeries(ctx, req)
		if err == nil {
			report = VerifySeries(series, Interval(req.Interval))
			err = report.Err(req.Symbol)
		}

		switch {
		case err == nil:
			return series, nil
		case ctx.Err() != nil:
			return types.Series{}, backoff.Permanent(ctx.Err())
		case !errors.IsRetryable(err):
			return types.Series{}, backoff.Permanent(err)
		default:
			return types.Series{}, err
		}
	}

	notify := func(err error, wait time.Duration) {
		log.Warn("Download attempt failed, retrying",
			zap.Int("attempt", result.Attempts),
			zap.Duration("wait", wait),
			zap.Error(err),
		)
	}

	series, err := backoff.RetryNotifyWithData(operation, c.retryPolicy(ctx), notify)
	if err != nil {
		log.Error("Giving up on symbol", zap.Int("attempts", result.Attempts), zap.Error(err))
		result.Outcome = OutcomeFailed
		result.Err = err

		return result
	}

	for _, warning := range report.Warnings {
		log.Warn("Series check", zap.String("issue", warning.String()))
	}

	result.Warnings = len(report.Warnings)

	w, err := c.newWriter(c.config.Format, outputPath, types.Header(c.config.CorrectedHeader))
	if err != nil {
		result.Outcome = OutcomeFailed
		result.Err = err

		return result
	}

	path, err := writer.WriteSeries(w, series.Candles)
	if err != nil {
		log.Error("Failed to write output", zap.String("path", outputPath), zap.Error(err))
		result.Outcome = OutcomeFailed
		result.Err = err

		return result
	}

	log.Info("Wrote klines", zap.String("path", path), zap.Int("candles", series.Len()), zap.Int("attempts", result.Attempts))

	result.Outcome = OutcomeCompleted
	result.Path = path
	result.Candles = series.Len()

	return result
}

// retryPolicy allows MaxAttempts tries separated by an exponential delay.
func (c *Client) retryPolicy(ctx context.Context) backoff.BackOffContext {
	var policy backoff.BackOff = &backoff.ZeroBackOff{}

	if c.config.InitialInterval > 0 {
		exp := backoff.NewExponentialBackOff()
		exp.InitialInterval = c.config.InitialInterval
		exp.MaxInterval = max(c.config.MaxInterval, c.config.InitialInterval)
		exp.MaxElapsedTime = 0
		exp.Reset()
		policy = exp
	}

	return backoff.WithContext(backoff.WithMaxRetries(policy, uint64(c.config.MaxAttempts-1)), ctx)
}
