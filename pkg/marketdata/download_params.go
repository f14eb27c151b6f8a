package marketdata

import (
	"os"

	"github.com/go-playground/validator/v10"
	"github.com/rxtech-lab/kline-downloader/internal/types"
	"github.com/rxtech-lab/kline-downloader/pkg/errors"
)

// DownloadParams describes a kline download shared by every requested symbol.
type DownloadParams struct {
	Market   types.Market `json:"market" validate:"required,oneof=Spot UsdFutures CoinFutures"`
	Interval string       `json:"interval" validate:"required,oneof=1s 1m 3m 5m 15m 30m 1h 2h 4h 6h 8h 12h 1d 3d 1w 1M"`
	// ContractType is only sent to futures markets.
	ContractType string `json:"contractType,omitempty"`
	// StartTime and EndTime are inclusive epoch milliseconds. An inverted
	// range is reported per symbol rather than rejected here.
	StartTime int64  `json:"startTime"`
	EndTime   int64  `json:"endTime"`
	OutputDir string `json:"outputDir" validate:"required"`
}

// Validate checks the parameters and that the output directory exists.
func (p DownloadParams) Validate() error {
	validate := validator.New()
	if err := validate.Struct(p); err != nil {
		return errors.Wrap(errors.ErrCodeInvalidParameter, "invalid download parameters", err)
	}

	info, err := os.Stat(p.OutputDir)
	if err != nil || !info.IsDir() {
		return errors.Newf(errors.ErrCodeOutputDirMissing, "output directory %s does not exist", p.OutputDir)
	}

	return nil
}

// FetchTemplate returns the request every symbol's download is derived from.
func (p DownloadParams) FetchTemplate(endpoints Endpoints) (types.FetchRequest, error) {
	baseURL, err := endpoints.BaseURL(p.Market)
	if err != nil {
		return types.FetchRequest{}, err
	}

	return types.FetchRequest{
		APIBaseURL:   baseURL,
		Market:       p.Market,
		ContractType: p.ContractType,
		Interval:     p.Interval,
		StartTime:    p.StartTime,
		EndTime:      p.EndTime,
		OutputDir:    p.OutputDir,
	}, nil
}
