package writer

import (
	"github.com/rxtech-lab/kline-downloader/internal/types"
	"github.com/rxtech-lab/kline-downloader/pkg/errors"
	"github.com/xuri/excelize/v2"
)

// XLSXSheet is the worksheet holding the candles.
const XLSXSheet = "klines"

// XLSXWriter streams candles into a single worksheet.
type XLSXWriter struct {
	outputPath string
	tempPath   string
	header     []string
	file       *excelize.File
	stream     *excelize.StreamWriter
	row        int
	finalized  bool
}

// NewXLSXWriter creates an xlsx writer for outputPath.
func NewXLSXWriter(outputPath string, header []string) CandleWriter {
	return &XLSXWriter{
		outputPath: outputPath,
		header:     header,
	}
}

// Initialize creates the workbook and writes the header row.
func (w *XLSXWriter) Initialize() error {
	w.file = excelize.NewFile()

	if err := w.file.SetSheetName("Sheet1", XLSXSheet); err != nil {
		return errors.Wrap(errors.ErrCodeWriteFailed, "failed to name worksheet", err)
	}

	stream, err := w.file.NewStreamWriter(XLSXSheet)
	if err != nil {
		return errors.Wrap(errors.ErrCodeWriteFailed, "failed to create stream writer", err)
	}

	w.stream = stream

	headerRow := make([]interface{}, len(w.header))
	for i, h := range w.header {
		headerRow[i] = h
	}

	return w.setRow(headerRow)
}

// Write appends one row. Integer columns are stored as numbers, prices as text.
func (w *XLSXWriter) Write(candle types.Candle) error {
	if w.stream == nil {
		return errors.New(errors.ErrCodeWriteFailed, "writer not initialized")
	}

	return w.setRow([]interface{}{
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
	})
}

func (w *XLSXWriter) setRow(values []interface{}) error {
	w.row++

	cell, err := excelize.CoordinatesToCellName(1, w.row)
	if err != nil {
		return errors.Wrap(errors.ErrCodeWriteFailed, "failed to address row", err)
	}

	if err := w.stream.SetRow(cell, values); err != nil {
		return errors.Wrapf(errors.ErrCodeWriteFailed, err, "failed to write row %d", w.row)
	}

	return nil
}

// Finalize saves the workbook to a temporary file and moves it into place.
func (w *XLSXWriter) Finalize() (string, error) {
	if w.stream == nil {
		return "", errors.New(errors.ErrCodeWriteFailed, "writer not initialized")
	}

	if err := w.stream.Flush(); err != nil {
		return "", errors.Wrap(errors.ErrCodeWriteFailed, "failed to flush worksheet", err)
	}

	w.tempPath = tempPathFor(w.outputPath)

	if err := w.file.SaveAs(w.tempPath); err != nil {
		return "", errors.Wrap(errors.ErrCodeWriteFailed, "failed to save workbook", err)
	}

	if err := commit(w.tempPath, w.outputPath); err != nil {
		return "", err
	}

	w.finalized = true

	return w.outputPath, nil
}

// Close releases the workbook and removes the temporary file unless Finalize succeeded.
func (w *XLSXWriter) Close() error {
	var closeErr error

	if w.file != nil {
		if err := w.file.Close(); err != nil {
			closeErr = errors.Wrap(errors.ErrCodeWriteFailed, "failed to close workbook", err)
		}

		w.file = nil
		w.stream = nil
	}

	if !w.finalized {
		if err := discard(w.tempPath); err != nil && closeErr == nil {
			closeErr = err
		}

		w.tempPath = ""
	}

	return closeErr
}

// GetOutputPath returns the final file path.
func (w *XLSXWriter) GetOutputPath() string {
	return w.outputPath
}
