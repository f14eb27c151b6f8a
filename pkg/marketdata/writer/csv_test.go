package writer

import (
	"encoding/csv"
	"os"
	"path/filepath"
	"testing"

	"github.com/rxtech-lab/kline-downloader/internal/types"
	"github.com/rxtech-lab/kline-downloader/pkg/errors"
	"github.com/stretchr/testify/suite"
)

type CSVWriterTestSuite struct {
	suite.Suite
	dir string
}

func TestCSVWriterSuite(t *testing.T) {
	suite.Run(t, new(CSVWriterTestSuite))
}

func (suite *CSVWriterTestSuite) SetupTest() {
	suite.dir = suite.T().TempDir()
}

func (suite *CSVWriterTestSuite) readRecords(path string) [][]string {
	f, err := os.Open(path)
	suite.Require().NoError(err)

	defer f.Close()

	records, err := csv.NewReader(f).ReadAll()
	suite.Require().NoError(err)

	return records
}

func (suite *CSVWriterTestSuite) TestWriteAndFinalize() {
	output := filepath.Join(suite.dir, "BTCUSDT_Spot_1h_1640995200000_1641006000000.csv")
	candles := testCandles(3)

	w := NewCSVWriter(output, types.Header(false))
	suite.Require().NoError(w.Initialize())

	for _, c := range candles {
		suite.Require().NoError(w.Write(c))
	}

	_, err := os.Stat(output)
	suite.True(os.IsNotExist(err), "output must not exist before Finalize")

	path, err := w.Finalize()
	suite.Require().NoError(err)
	suite.Equal(output, path)
	suite.Require().NoError(w.Close())

	records := suite.readRecords(output)
	suite.Require().Len(records, 4)
	suite.Equal(types.LegacyHeader, records[0])
	suite.Equal("Close", records[0][6])

	for i, c := range candles {
		suite.Equal(c.Record(), records[i+1])
	}

	content, err := os.ReadFile(output)
	suite.Require().NoError(err)
	suite.Contains(string(content), "1640995200000,46000.12345678,46100.00000000,45900.00000000,46000.12345678,12.50000000,1640998799999,575000.00000000,100,6.25000000,287500.00000000\n")
}

func (suite *CSVWriterTestSuite) TestCorrectedHeader() {
	output := filepath.Join(suite.dir, "corrected.csv")

	_, err := WriteSeries(NewCSVWriter(output, types.Header(true)), nil)
	suite.Require().NoError(err)

	records := suite.readRecords(output)
	suite.Require().Len(records, 1)
	suite.Equal("Close_Time", records[0][6])
}

func (suite *CSVWriterTestSuite) TestEmptySeriesWritesHeaderOnly() {
	output := filepath.Join(suite.dir, "empty.csv")

	_, err := WriteSeries(NewCSVWriter(output, types.Header(false)), []types.Candle{})
	suite.Require().NoError(err)

	suite.Len(suite.readRecords(output), 1)
}

func (suite *CSVWriterTestSuite) TestCloseWithoutFinalizeRemovesTemp() {
	output := filepath.Join(suite.dir, "aborted.csv")

	w := NewCSVWriter(output, types.Header(false))
	suite.Require().NoError(w.Initialize())
	suite.Require().NoError(w.Write(testCandles(1)[0]))
	suite.Require().NoError(w.Close())

	entries, err := os.ReadDir(suite.dir)
	suite.Require().NoError(err)
	suite.Empty(entries)
}

func (suite *CSVWriterTestSuite) TestWriteBeforeInitialize() {
	w := NewCSVWriter(filepath.Join(suite.dir, "x.csv"), types.Header(false))

	err := w.Write(testCandles(1)[0])
	suite.True(errors.HasCode(err, errors.ErrCodeWriteFailed))

	_, err = w.Finalize()
	suite.True(errors.HasCode(err, errors.ErrCodeWriteFailed))
	suite.NoError(w.Close())
}
