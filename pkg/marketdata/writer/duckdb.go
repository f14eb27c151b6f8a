package writer

import (
	"database/sql"
	"fmt"
	"strings"

	"github.com/Masterminds/squirrel"
	_ "github.com/marcboeker/go-duckdb"
	"github.com/rxtech-lab/kline-downloader/internal/types"
	"github.com/rxtech-lab/kline-downloader/pkg/errors"
)

const klinesTable = "klines"

// ParquetColumns are the column names of the parquet output, in record order.
// Prices and volumes stay VARCHAR so the exchange precision is kept.
var ParquetColumns = []string{
	"open_time",
	"open",
	"high",
	"low",
	"close",
	"volume",
	"close_time",
	"quote_asset_volume",
	"number_of_trades",
	"taker_buy_base_asset_volume",
	"taker_buy_quote_asset_volume",
}

// DuckDBWriter buffers candles in an in-memory DuckDB table and exports them
// as a parquet file on Finalize.
type DuckDBWriter struct {
	db         *sql.DB
	tx         *sql.Tx
	stmt       *sql.Stmt
	outputPath string
	tempPath   string
	finalized  bool
}

// NewDuckDBWriter creates a parquet writer for outputPath.
func NewDuckDBWriter(outputPath string) CandleWriter {
	return &DuckDBWriter{
		outputPath: outputPath,
	}
}

// Initialize opens the database, creates the table, begins a transaction
// and prepares the insert statement.
func (w *DuckDBWriter) Initialize() (err error) {
	w.db, err = sql.Open("duckdb", ":memory:")
	if err != nil {
		return errors.Wrap(errors.ErrCodeWriteFailed, "failed to open DuckDB connection", err)
	}

	_, err = w.db.Exec(`
		CREATE TABLE IF NOT EXISTS klines (
			open_time BIGINT,
			open VARCHAR,
			high VARCHAR,
			low VARCHAR,
			close VARCHAR,
			volume VARCHAR,
			close_time BIGINT,
			quote_asset_volume VARCHAR,
			number_of_trades BIGINT,
			taker_buy_base_asset_volume VARCHAR,
			taker_buy_quote_asset_volume VARCHAR
		)
	`)
	if err != nil {
		w.db.Close()
		w.db = nil

		return errors.Wrap(errors.ErrCodeWriteFailed, "failed to create table", err)
	}

	w.tx, err = w.db.Begin()
	if err != nil {
		w.db.Close()
		w.db = nil

		return errors.Wrap(errors.ErrCodeWriteFailed, "failed to begin transaction", err)
	}

	placeholders := make([]any, len(ParquetColumns))

	query, _, err := squirrel.StatementBuilder.PlaceholderFormat(squirrel.Dollar).
		Insert(klinesTable).
		Columns(ParquetColumns...).
		Values(placeholders...).
		ToSql()
	if err != nil {
		return errors.Wrap(errors.ErrCodeWriteFailed, "failed to build insert statement", err)
	}

	w.stmt, err = w.tx.Prepare(query)
	if err != nil {
		return errors.Wrap(errors.ErrCodeWriteFailed, "failed to prepare statement", err)
	}

	return nil
}

// Write inserts a single candle within the open transaction.
func (w *DuckDBWriter) Write(candle types.Candle) error {
	if w.stmt == nil {
		return errors.New(errors.ErrCodeWriteFailed, "writer not initialized")
	}

	_, err := w.stmt.Exec(
		candle.OpenTime,
		candle.Open,
		candle.High,
		candle.Low,
		candle.Close,
		candle.Volume,
		candle.CloseTime,
		candle.QuoteAssetVolume,
		candle.NumberOfTrades,
		candle.TakerBuyBaseAssetVolume,
		candle.TakerBuyQuoteAssetVolume,
	)
	if err != nil {
		return errors.Wrap(errors.ErrCodeWriteFailed, "failed to insert candle", err)
	}

	return nil
}

// Finalize commits the transaction, exports the table to a temporary parquet
// file and moves it into place.
func (w *DuckDBWriter) Finalize() (string, error) {
	if w.tx == nil {
		return "", errors.New(errors.ErrCodeWriteFailed, "writer not initialized")
	}

	if w.stmt != nil {
		w.stmt.Close()
		w.stmt = nil
	}

	if err := w.tx.Commit(); err != nil {
		w.tx.Rollback()
		w.tx = nil

		return "", errors.Wrap(errors.ErrCodeWriteFailed, "failed to commit transaction", err)
	}

	w.tx = nil
	w.tempPath = tempPathFor(w.outputPath)

	_, err := w.db.Exec(fmt.Sprintf(`COPY (SELECT * FROM %s ORDER BY open_time) TO '%s' (FORMAT PARQUET)`,
		klinesTable, quoteLiteral(w.tempPath)))
	if err != nil {
		return "", errors.Wrap(errors.ErrCodeWriteFailed, "failed to export to parquet", err)
	}

	if err := commit(w.tempPath, w.outputPath); err != nil {
		return "", err
	}

	w.finalized = true

	return w.outputPath, nil
}

// Close releases the statement, transaction and connection and removes the
// temporary parquet file when Finalize did not complete.
func (w *DuckDBWriter) Close() error {
	var closeErrors []string

	if w.stmt != nil {
		if err := w.stmt.Close(); err != nil {
			closeErrors = append(closeErrors, fmt.Sprintf("close statement: %v", err))
		}

		w.stmt = nil
	}

	if w.tx != nil {
		if err := w.tx.Rollback(); err != nil {
			closeErrors = append(closeErrors, fmt.Sprintf("rollback: %v", err))
		}

		w.tx = nil
	}

	if w.db != nil {
		if err := w.db.Close(); err != nil {
			closeErrors = append(closeErrors, fmt.Sprintf("close db connection: %v", err))
		}

		w.db = nil
	}

	if !w.finalized {
		if err := discard(w.tempPath); err != nil {
			closeErrors = append(closeErrors, err.Error())
		}

		w.tempPath = ""
	}

	if len(closeErrors) > 0 {
		return errors.Newf(errors.ErrCodeWriteFailed, "errors occurred during close: %s", strings.Join(closeErrors, "; "))
	}

	return nil
}

// GetOutputPath returns the final file path.
func (w *DuckDBWriter) GetOutputPath() string {
	return w.outputPath
}

func quoteLiteral(s string) string {
	return strings.ReplaceAll(s, "'", "''")
}
