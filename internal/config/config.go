// Package config loads the downloader configuration from defaults, an optional
// YAML file, a .env file and KLINES_* environment variables, in increasing
// order of precedence.
package config

import (
	"encoding/json"
	"errors"
	"io/fs"
	"strings"
	"time"

	"github.com/go-playground/validator/v10"
	"github.com/invopop/jsonschema"
	"github.com/joho/godotenv"
	"github.com/spf13/viper"
	"gopkg.in/yaml.v3"

	"github.com/rxtech-lab/kline-downloader/internal/types"
	"github.com/rxtech-lab/kline-downloader/internal/version"
	argoErrors "github.com/rxtech-lab/kline-downloader/pkg/errors"
	"github.com/rxtech-lab/kline-downloader/pkg/marketdata"
)

// EnvPrefix is prepended to every environment override, e.g. KLINES_RATE_LIMIT_PER_SECOND.
const EnvPrefix = "KLINES"

// Config is the complete downloader configuration.
type Config struct {
	// Requires is an optional semver constraint on the downloader version.
	Requires  string          `mapstructure:"requires" yaml:"requires,omitempty" json:"requires,omitempty" jsonschema:"description=Semver range the downloader version must satisfy"`
	Endpoints EndpointsConfig `mapstructure:"endpoints" yaml:"endpoints" json:"endpoints"`
	HTTP      HTTPConfig      `mapstructure:"http" yaml:"http" json:"http"`
	Rate      RateConfig      `mapstructure:"rate" yaml:"rate" json:"rate"`
	Retry     RetryConfig     `mapstructure:"retry" yaml:"retry" json:"retry"`
	Output    OutputConfig    `mapstructure:"output" yaml:"output" json:"output"`
	Log       LogConfig       `mapstructure:"log" yaml:"log" json:"log"`
}

// EndpointsConfig holds the REST root of every market.
type EndpointsConfig struct {
	Spot        string `mapstructure:"spot" yaml:"spot" json:"spot" jsonschema:"title=Spot,description=REST root of the spot market,format=uri" validate:"required,url"`
	UsdFutures  string `mapstructure:"usd_futures" yaml:"usd_futures" json:"usd_futures" jsonschema:"title=USD-M Futures,format=uri" validate:"required,url"`
	CoinFutures string `mapstructure:"coin_futures" yaml:"coin_futures" json:"coin_futures" jsonschema:"title=COIN-M Futures,format=uri" validate:"required,url"`
}

// HTTPConfig controls the transport.
type HTTPConfig struct {
	Transport string        `mapstructure:"transport" yaml:"transport" json:"transport" jsonschema:"enum=rest,enum=sdk" validate:"required,oneof=rest sdk"`
	Timeout   time.Duration `mapstructure:"timeout" yaml:"timeout" json:"timeout" validate:"gt=0"`
	UserAgent string        `mapstructure:"user_agent" yaml:"user_agent" json:"user_agent"`
}

// RateConfig throttles requests to the exchange. A zero limit disables throttling.
type RateConfig struct {
	LimitPerSecond float64 `mapstructure:"limit_per_second" yaml:"limit_per_second" json:"limit_per_second" validate:"gte=0"`
	Burst          int     `mapstructure:"burst" yaml:"burst" json:"burst" validate:"gte=1"`
}

// RetryConfig controls the per-symbol retry loop.
type RetryConfig struct {
	MaxAttempts     int           `mapstructure:"max_attempts" yaml:"max_attempts" json:"max_attempts" validate:"gte=1"`
	InitialInterval time.Duration `mapstructure:"initial_interval" yaml:"initial_interval" json:"initial_interval" validate:"gte=0"`
	MaxInterval     time.Duration `mapstructure:"max_interval" yaml:"max_interval" json:"max_interval" validate:"gtefield=InitialInterval"`
}

// OutputConfig selects the sink.
type OutputConfig struct {
	Format          string `mapstructure:"format" yaml:"format" json:"format" jsonschema:"enum=csv,enum=parquet,enum=xlsx" validate:"required,oneof=csv parquet xlsx"`
	CorrectedHeader bool   `mapstructure:"corrected_header" yaml:"corrected_header" json:"corrected_header"`
}

// LogConfig controls the zap logger.
type LogConfig struct {
	Level string `mapstructure:"level" yaml:"level" json:"level" jsonschema:"enum=debug,enum=info,enum=warn,enum=error" validate:"required,oneof=debug info warn error"`
}

func setDefaults(v *viper.Viper) {
	v.SetDefault("requires", "")
	v.SetDefault("endpoints.spot", marketdata.SpotAPIBaseURL)
	v.SetDefault("endpoints.usd_futures", marketdata.UsdFuturesAPIBaseURL)
	v.SetDefault("endpoints.coin_futures", marketdata.CoinFuturesAPIBaseURL)
	v.SetDefault("http.transport", "rest")
	v.SetDefault("http.timeout", 30*time.Second)
	v.SetDefault("http.user_agent", "kline-downloader")
	v.SetDefault("rate.limit_per_second", 10.0)
	v.SetDefault("rate.burst", 1)
	v.SetDefault("retry.max_attempts", 3)
	v.SetDefault("retry.initial_interval", time.Second)
	v.SetDefault("retry.max_interval", 10*time.Second)
	v.SetDefault("output.format", "csv")
	v.SetDefault("output.corrected_header", false)
	v.SetDefault("log.level", "info")
}

// Load builds the configuration. path may be empty, in which case only defaults
// and environment overrides apply.
func Load(path string) (*Config, error) {
	v := viper.New()
	setDefaults(v)

	v.SetEnvPrefix(EnvPrefix)
	v.SetEnvKeyReplacer(strings.NewReplacer(".", "_"))
	v.AutomaticEnv()

	if path != "" {
		v.SetConfigFile(path)

		if err := v.ReadInConfig(); err != nil {
			return nil, argoErrors.Wrapf(argoErrors.ErrCodeInvalidConfiguration, err, "failed to read config file %s", path)
		}
	}

	var cfg Config
	if err := v.Unmarshal(&cfg); err != nil {
		return nil, argoErrors.Wrap(argoErrors.ErrCodeInvalidConfiguration, "failed to decode config", err)
	}

	if err := cfg.Validate(); err != nil {
		return nil, err
	}

	return &cfg, nil
}

// LoadEnvFile loads KEY=VALUE pairs from a .env file into the process
// environment. A missing file is not an error.
func LoadEnvFile(path string) error {
	if err := godotenv.Load(path); err != nil && !errors.Is(err, fs.ErrNotExist) {
		return argoErrors.Wrapf(argoErrors.ErrCodeInvalidConfiguration, err, "failed to load %s", path)
	}

	return nil
}

// Validate checks the configuration.
func (c *Config) Validate() error {
	validate := validator.New()
	if err := validate.Struct(c); err != nil {
		return argoErrors.Wrap(argoErrors.ErrCodeInvalidConfiguration, "invalid configuration", err)
	}

	return version.CheckConstraint(version.GetVersion(), c.Requires)
}

// MarketEndpoints converts the endpoint section into the mapping used by the client.
func (c *Config) MarketEndpoints() marketdata.Endpoints {
	return marketdata.Endpoints{
		types.MarketSpot:        c.Endpoints.Spot,
		types.MarketUsdFutures:  c.Endpoints.UsdFutures,
		types.MarketCoinFutures: c.Endpoints.CoinFutures,
	}
}

// YAML renders the effective configuration.
func (c *Config) YAML() ([]byte, error) {
	return yaml.Marshal(c)
}

// Schema returns the JSON schema of the configuration file.
func Schema() (string, error) {
	//nolint:exhaustruct // Empty struct is intentional for schema generation
	schema := jsonschema.Reflect(&Config{})

	out, err := json.MarshalIndent(schema, "", "  ")
	if err != nil {
		return "", err
	}

	return string(out), nil
}
