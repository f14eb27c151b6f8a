package metrics

import (
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/prometheus/client_golang/prometheus/testutil"
	"github.com/stretchr/testify/suite"
)

type MetricsTestSuite struct {
	suite.Suite
}

func TestMetricsSuite(t *testing.T) {
	suite.Run(t, new(MetricsTestSuite))
}

func (suite *MetricsTestSuite) TestCounters() {
	m := New()

	m.ObserveRequest("klines", OutcomeSuccess, 20*time.Millisecond)
	m.ObserveRequest("klines", OutcomeSuccess, 30*time.Millisecond)
	m.ObserveRequest("klines", OutcomeError, time.Millisecond)
	m.AddCandles(1000)
	m.AddCandles(500)
	m.ObserveSymbol(SymbolCompleted)
	m.ObserveSymbol(SymbolSkipped)

	suite.Equal(2.0, testutil.ToFloat64(m.requests.WithLabelValues("klines", OutcomeSuccess)))
	suite.Equal(1.0, testutil.ToFloat64(m.requests.WithLabelValues("klines", OutcomeError)))
	suite.Equal(1500.0, testutil.ToFloat64(m.candles))
	suite.Equal(1.0, testutil.ToFloat64(m.symbols.WithLabelValues(SymbolSkipped)))
}

func (suite *MetricsTestSuite) TestNilMetricsIsNoop() {
	var m *Metrics

	suite.NotPanics(func() {
		m.ObserveRequest("klines", OutcomeSuccess, time.Second)
		m.AddCandles(1)
		m.ObserveSymbol(SymbolFailed)
	})
}

func (suite *MetricsTestSuite) TestWriteTextfile() {
	m := New()
	m.ObserveSymbol(SymbolFailed)

	path := filepath.Join(suite.T().TempDir(), "klines.prom")
	suite.Require().NoError(m.WriteTextfile(path))

	content, err := os.ReadFile(path)
	suite.Require().NoError(err)
	suite.Contains(string(content), `klines_symbols_total{outcome="failed"} 1`)
}
