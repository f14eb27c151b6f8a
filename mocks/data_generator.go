package mocks

import (
	"math"
	"math/rand"
	"strconv"
	"time"

	"github.com/rxtech-lab/kline-downloader/internal/types"
)

// DataGenerator generates realistic klines for tests.
type DataGenerator struct {
	rng *rand.Rand
}

// NewDataGenerator creates a new DataGenerator with the given seed.
// Use a fixed seed for reproducible results in tests.
func NewDataGenerator(seed int64) *DataGenerator {
	return &DataGenerator{
		rng: rand.New(rand.NewSource(seed)),
	}
}

// GeneratorConfig configures how klines are generated.
type GeneratorConfig struct {
	// StartTime is the open time of the first candle
	StartTime time.Time
	// Interval is the duration between open times
	Interval time.Duration
	// Count is the number of candles to generate
	Count int
	// InitialPrice is the starting price
	InitialPrice float64
	// Volatility controls price movement per candle (0.01 = 1%)
	Volatility float64
	// VolumeBase is the average base asset volume per candle
	VolumeBase float64
	// VolumeVariance is the variance in volume (0.0 to 1.0)
	VolumeVariance float64
}

// DefaultConfig returns hourly candles starting 2022-01-01 00:00 UTC.
func DefaultConfig() GeneratorConfig {
	return GeneratorConfig{
		StartTime:      time.Date(2022, 1, 1, 0, 0, 0, 0, time.UTC),
		Interval:       time.Hour,
		Count:          1000,
		InitialPrice:   40000.0,
		Volatility:     0.002,
		VolumeBase:     100,
		VolumeVariance: 0.3,
	}
}

// Generate creates Count candles following a geometric Brownian motion.
// Prices are formatted with eight decimals like the exchange does.
func (g *DataGenerator) Generate(config GeneratorConfig) []types.Candle {
	candles := make([]types.Candle, config.Count)
	currentPrice := config.InitialPrice
	currentTime := config.StartTime

	for i := 0; i < config.Count; i++ {
		open := currentPrice

		// Box-Muller transform for a normal sample
		u1 := g.rng.Float64()
		u2 := g.rng.Float64()
		z := math.Sqrt(-2*math.Log(u1)) * math.Cos(2*math.Pi*u2)

		closePrice := open * (1 + config.Volatility*z)
		if closePrice <= 0 {
			closePrice = open * 0.99
		}

		high := math.Max(open, closePrice) + math.Abs(g.rng.Float64()*config.Volatility*open*0.5)
		low := math.Min(open, closePrice) - math.Abs(g.rng.Float64()*config.Volatility*open*0.5)
		if low <= 0 {
			low = math.Min(open, closePrice) * 0.99
		}

		volume := config.VolumeBase * (1.0 + (g.rng.Float64()*2-1)*config.VolumeVariance)
		if volume < 0 {
			volume = config.VolumeBase * 0.1
		}

		takerShare := 0.3 + g.rng.Float64()*0.4
		typical := (high + low + closePrice) / 3

		candles[i] = types.Candle{
			OpenTime:                 currentTime.UnixMilli(),
			Open:                     formatPrice(open),
			High:                     formatPrice(high),
			Low:                      formatPrice(low),
			Close:                    formatPrice(closePrice),
			Volume:                   formatPrice(volume),
			CloseTime:                currentTime.Add(config.Interval).UnixMilli() - 1,
			QuoteAssetVolume:         formatPrice(volume * typical),
			NumberOfTrades:           int64(volume*10) + 1,
			TakerBuyBaseAssetVolume:  formatPrice(volume * takerShare),
			TakerBuyQuoteAssetVolume: formatPrice(volume * takerShare * typical),
		}

		currentPrice = closePrice
		currentTime = currentTime.Add(config.Interval)
	}

	return candles
}

// GenerateHourly is a convenience for count hourly candles from start.
func GenerateHourly(start time.Time, count int) []types.Candle {
	gen := NewDataGenerator(42)
	config := DefaultConfig()
	config.StartTime = start
	config.Count = count

	return gen.Generate(config)
}

func formatPrice(val float64) string {
	return strconv.FormatFloat(roundToDecimals(val, 4), 'f', 8, 64)
}

// roundToDecimals rounds a float64 to the specified number of decimal places.
func roundToDecimals(val float64, decimals int) float64 {
	pow := math.Pow(10, float64(decimals))
	return math.Round(val*pow) / pow
}
