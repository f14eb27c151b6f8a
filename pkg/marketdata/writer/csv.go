package writer

import (
	"encoding/csv"
	"os"

	"github.com/rxtech-lab/kline-downloader/internal/types"
	"github.com/rxtech-lab/kline-downloader/pkg/errors"
)

// CSVWriter writes candles as comma separated records with a header row.
type CSVWriter struct {
	outputPath string
	tempPath   string
	header     []string
	file       *os.File
	csv        *csv.Writer
	finalized  bool
}

// NewCSVWriter creates a CSV writer for outputPath.
func NewCSVWriter(outputPath string, header []string) CandleWriter {
	return &CSVWriter{
		outputPath: outputPath,
		header:     header,
	}
}

// Initialize creates the temporary file and writes the header.
func (w *CSVWriter) Initialize() error {
	w.tempPath = tempPathFor(w.outputPath)

	file, err := os.OpenFile(w.tempPath, os.O_CREATE|os.O_EXCL|os.O_WRONLY, 0o644)
	if err != nil {
		return errors.Wrap(errors.ErrCodeWriteFailed, "failed to create temporary file", err)
	}

	w.file = file
	w.csv = csv.NewWriter(file)

	if err := w.csv.Write(w.header); err != nil {
		return errors.Wrap(errors.ErrCodeWriteFailed, "failed to write header", err)
	}

	return nil
}

// Write appends one record.
func (w *CSVWriter) Write(candle types.Candle) error {
	if w.csv == nil {
		return errors.New(errors.ErrCodeWriteFailed, "writer not initialized")
	}

	if err := w.csv.Write(candle.Record()); err != nil {
		return errors.Wrap(errors.ErrCodeWriteFailed, "failed to write record", err)
	}

	return nil
}

// Finalize flushes the records and moves the file into place.
func (w *CSVWriter) Finalize() (string, error) {
	if w.csv == nil {
		return "", errors.New(errors.ErrCodeWriteFailed, "writer not initialized")
	}

	w.csv.Flush()

	if err := w.csv.Error(); err != nil {
		return "", errors.Wrap(errors.ErrCodeWriteFailed, "failed to flush records", err)
	}

	if err := w.file.Close(); err != nil {
		return "", errors.Wrap(errors.ErrCodeWriteFailed, "failed to close temporary file", err)
	}

	w.file = nil

	if err := commit(w.tempPath, w.outputPath); err != nil {
		return "", err
	}

	w.finalized = true

	return w.outputPath, nil
}

// Close releases the file and removes it unless Finalize succeeded.
func (w *CSVWriter) Close() error {
	if w.file != nil {
		w.file.Close()
		w.file = nil
	}

	if w.finalized {
		return nil
	}

	err := discard(w.tempPath)
	w.tempPath = ""

	return err
}

// GetOutputPath returns the final file path.
func (w *CSVWriter) GetOutputPath() string {
	return w.outputPath
}
