package writer

import (
	"database/sql"
	"fmt"
	"os"
	"path/filepath"
	"testing"

	"github.com/Masterminds/squirrel"
	"github.com/rxtech-lab/kline-downloader/internal/types"
	"github.com/rxtech-lab/kline-downloader/pkg/errors"
	"github.com/stretchr/testify/suite"
)

type DuckDBWriterTestSuite struct {
	suite.Suite
	dir string
}

func TestDuckDBWriterSuite(t *testing.T) {
	suite.Run(t, new(DuckDBWriterTestSuite))
}

func (suite *DuckDBWriterTestSuite) SetupTest() {
	suite.dir = suite.T().TempDir()
}

func (suite *DuckDBWriterTestSuite) readParquet(path string) []types.Candle {
	db, err := sql.Open("duckdb", ":memory:")
	suite.Require().NoError(err)

	defer db.Close()

	_, err = db.Exec(fmt.Sprintf(`CREATE VIEW klines_view AS SELECT * FROM read_parquet('%s');`, path))
	suite.Require().NoError(err)

	query, args, err := squirrel.StatementBuilder.PlaceholderFormat(squirrel.Dollar).
		Select(ParquetColumns...).
		From("klines_view").
		OrderBy("open_time").
		ToSql()
	suite.Require().NoError(err)

	rows, err := db.Query(query, args...)
	suite.Require().NoError(err)

	defer rows.Close()

	var candles []types.Candle

	for rows.Next() {
		var c types.Candle
		suite.Require().NoError(rows.Scan(
			&c.OpenTime, &c.Open, &c.High, &c.Low, &c.Close, &c.Volume,
			&c.CloseTime, &c.QuoteAssetVolume, &c.NumberOfTrades,
			&c.TakerBuyBaseAssetVolume, &c.TakerBuyQuoteAssetVolume,
		))
		candles = append(candles, c)
	}

	suite.Require().NoError(rows.Err())

	return candles
}

func (suite *DuckDBWriterTestSuite) TestNewDuckDBWriter() {
	output := filepath.Join(suite.dir, "test.parquet")
	w := NewDuckDBWriter(output)

	duckWriter, ok := w.(*DuckDBWriter)
	suite.Require().True(ok)
	suite.Equal(output, duckWriter.GetOutputPath())
	suite.Nil(duckWriter.db)
	suite.Nil(duckWriter.tx)
	suite.Nil(duckWriter.stmt)
}

func (suite *DuckDBWriterTestSuite) TestInitialize() {
	w := NewDuckDBWriter(filepath.Join(suite.dir, "init.parquet"))
	suite.Require().NoError(w.Initialize())

	duckWriter := w.(*DuckDBWriter)
	suite.NotNil(duckWriter.db)
	suite.NotNil(duckWriter.tx)
	suite.NotNil(duckWriter.stmt)

	suite.NoError(w.Close())
	suite.Nil(duckWriter.db)
}

func (suite *DuckDBWriterTestSuite) TestRoundTrip() {
	output := filepath.Join(suite.dir, "BTCUSDT_Spot_1h_1640995200000_1641006000000.parquet")
	candles := testCandles(25)

	path, err := WriteSeries(NewDuckDBWriter(output), candles)
	suite.Require().NoError(err)
	suite.Equal(output, path)

	suite.Equal(candles, suite.readParquet(output))
}

func (suite *DuckDBWriterTestSuite) TestQuoteInPath() {
	output := filepath.Join(suite.dir, "it's.parquet")

	_, err := WriteSeries(NewDuckDBWriter(output), testCandles(2))
	suite.Require().NoError(err)

	_, err = os.Stat(output)
	suite.NoError(err)
}

func (suite *DuckDBWriterTestSuite) TestCloseWithoutFinalize() {
	output := filepath.Join(suite.dir, "aborted.parquet")

	w := NewDuckDBWriter(output)
	suite.Require().NoError(w.Initialize())
	suite.Require().NoError(w.Write(testCandles(1)[0]))
	suite.Require().NoError(w.Close())

	entries, err := os.ReadDir(suite.dir)
	suite.Require().NoError(err)
	suite.Empty(entries)
}

func (suite *DuckDBWriterTestSuite) TestUninitialized() {
	w := NewDuckDBWriter(filepath.Join(suite.dir, "x.parquet"))

	suite.True(errors.HasCode(w.Write(testCandles(1)[0]), errors.ErrCodeWriteFailed))

	_, err := w.Finalize()
	suite.True(errors.HasCode(err, errors.ErrCodeWriteFailed))
	suite.NoError(w.Close())
}
