package writer

import (
	"fmt"
	"os"
	"path/filepath"
	"strings"

	"github.com/google/uuid"
	"github.com/rxtech-lab/kline-downloader/internal/types"
	"github.com/rxtech-lab/kline-downloader/pkg/errors"
)

// Format is an output file format.
type Format string

const (
	FormatCSV     Format = "csv"
	FormatParquet Format = "parquet"
	FormatXLSX    Format = "xlsx"
)

// Formats lists the supported formats.
var Formats = []Format{FormatCSV, FormatParquet, FormatXLSX}

// ParseFormat validates a format name.
func ParseFormat(s string) (Format, error) {
	for _, f := range Formats {
		if string(f) == strings.ToLower(s) {
			return f, nil
		}
	}

	return "", errors.Newf(errors.ErrCodeInvalidParameter, "unsupported output format %q", s)
}

// Extension returns the file extension without the dot.
func (f Format) Extension() string {
	return string(f)
}

// CandleWriter persists one series to a single file.
//
// Data is written to a hidden temporary file next to the output path and only
// renamed into place by Finalize, so an existing output file is always complete.
type CandleWriter interface {
	// Initialize creates the temporary file and writes the header.
	Initialize() error
	// Write appends a single candle.
	Write(candle types.Candle) error
	// Finalize flushes, syncs and renames the file into place.
	Finalize() (outputPath string, err error)
	// Close releases resources. Without a prior Finalize the temporary file is removed.
	Close() error
	// GetOutputPath returns the configured output file path.
	GetOutputPath() string
}

// New returns the writer for format. header is the column header row; the
// parquet writer uses fixed column names instead.
func New(format Format, outputPath string, header []string) (CandleWriter, error) {
	switch format {
	case FormatCSV:
		return NewCSVWriter(outputPath, header), nil
	case FormatParquet:
		return NewDuckDBWriter(outputPath), nil
	case FormatXLSX:
		return NewXLSXWriter(outputPath, header), nil
	default:
		return nil, errors.Newf(errors.ErrCodeInvalidParameter, "unsupported output format %q", format)
	}
}

// WriteSeries runs the full writer lifecycle for candles and returns the final path.
func WriteSeries(w CandleWriter, candles []types.Candle) (path string, err error) {
	defer func() {
		if closeErr := w.Close(); closeErr != nil && err == nil {
			err = errors.Wrap(errors.ErrCodeWriteFailed, "failed to close writer", closeErr)
		}
	}()

	if err := w.Initialize(); err != nil {
		return "", err
	}

	for _, c := range candles {
		if err := w.Write(c); err != nil {
			return "", err
		}
	}

	return w.Finalize()
}

// tempPathFor returns a hidden, unique sibling of outputPath that keeps its extension.
func tempPathFor(outputPath string) string {
	dir, name := filepath.Split(outputPath)
	ext := filepath.Ext(name)
	stem := strings.TrimSuffix(name, ext)

	return filepath.Join(dir, fmt.Sprintf(".%s.%s.tmp%s", stem, uuid.NewString(), ext))
}

// commit syncs tempPath to disk and renames it to outputPath.
func commit(tempPath, outputPath string) error {
	f, err := os.OpenFile(tempPath, os.O_RDWR, 0)
	if err != nil {
		return errors.Wrap(errors.ErrCodeWriteFailed, "failed to open temporary file", err)
	}

	if err := f.Sync(); err != nil {
		f.Close()

		return errors.Wrap(errors.ErrCodeWriteFailed, "failed to sync temporary file", err)
	}

	if err := f.Close(); err != nil {
		return errors.Wrap(errors.ErrCodeWriteFailed, "failed to close temporary file", err)
	}

	if err := os.Rename(tempPath, outputPath); err != nil {
		return errors.Wrapf(errors.ErrCodeWriteFailed, err, "failed to move output into %s", outputPath)
	}

	return nil
}

// discard removes a temporary file left behind by an unfinished writer.
func discard(tempPath string) error {
	if tempPath == "" {
		return nil
	}

	if err := os.Remove(tempPath); err != nil && !os.IsNotExist(err) {
		return errors.Wrap(errors.ErrCodeWriteFailed, "failed to remove temporary file", err)
	}

	return nil
}
