package mocks

import (
	"testing"
	"time"

	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/suite"
)

type DataGeneratorTestSuite struct {
	suite.Suite
}

func TestDataGeneratorSuite(t *testing.T) {
	suite.Run(t, new(DataGeneratorTestSuite))
}

func (suite *DataGeneratorTestSuite) TestGenerate() {
	config := DefaultConfig()
	config.Count = 100

	candles := NewDataGenerator(42).Generate(config)
	suite.Len(candles, 100)

	for i, c := range candles {
		suite.Equal(config.StartTime.Add(time.Duration(i)*config.Interval).UnixMilli(), c.OpenTime)
		suite.Equal(c.OpenTime+config.Interval.Milliseconds()-1, c.CloseTime)

		high := decimal.RequireFromString(c.High)
		low := decimal.RequireFromString(c.Low)
		open := decimal.RequireFromString(c.Open)
		closePrice := decimal.RequireFromString(c.Close)

		suite.True(high.GreaterThanOrEqual(open), "high below open at %d", i)
		suite.True(high.GreaterThanOrEqual(closePrice), "high below close at %d", i)
		suite.True(low.LessThanOrEqual(open), "low above open at %d", i)
		suite.True(low.LessThanOrEqual(closePrice), "low above close at %d", i)
		suite.True(low.IsPositive(), "low not positive at %d", i)
	}
}

func (suite *DataGeneratorTestSuite) TestReproducibility() {
	config := DefaultConfig()
	config.Count = 50

	first := NewDataGenerator(7).Generate(config)
	second := NewDataGenerator(7).Generate(config)
	suite.Equal(first, second)

	third := NewDataGenerator(8).Generate(config)
	suite.NotEqual(first, third)
}

func (suite *DataGeneratorTestSuite) TestGenerateHourly() {
	start := time.Date(2022, 1, 1, 0, 0, 0, 0, time.UTC)
	candles := GenerateHourly(start, 2500)

	suite.Len(candles, 2500)
	suite.Equal(start.UnixMilli(), candles[0].OpenTime)
	suite.Equal(start.Add(2499*time.Hour).UnixMilli(), candles[2499].OpenTime)
}
