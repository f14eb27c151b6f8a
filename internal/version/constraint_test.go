package version

import (
	"testing"

	"github.com/rxtech-lab/kline-downloader/pkg/errors"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestCheckConstraint(t *testing.T) {
	tests := []struct {
		name          string
		version       string
		constraint    string
		expectError   bool
		errorContains string
	}{
		{
			name:       "empty constraint",
			version:    "1.2.0",
			constraint: "",
		},
		{
			name:       "within range",
			version:    "1.4.2",
			constraint: ">= 1.2, < 2",
		},
		{
			name:       "v prefix",
			version:    "v1.4.2",
			constraint: "^1.4",
		},
		{
			name:       "development build",
			version:    "main",
			constraint: ">= 9",
		},
		{
			name:          "major too high",
			version:       "2.0.0",
			constraint:    ">= 1.2, < 2",
			expectError:   true,
			errorContains: "does not satisfy",
		},
		{
			name:          "minor too low",
			version:       "1.1.9",
			constraint:    "~1.2",
			expectError:   true,
			errorContains: "does not satisfy",
		},
		{
			name:          "invalid constraint",
			version:       "1.2.0",
			constraint:    "newer than yesterday",
			expectError:   true,
			errorContains: "invalid version constraint",
		},
		{
			name:          "invalid version",
			version:       "one.two",
			constraint:    ">= 1",
			expectError:   true,
			errorContains: "invalid downloader version",
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			err := CheckConstraint(tt.version, tt.constraint)
			if !tt.expectError {
				assert.NoError(t, err)

				return
			}

			require.Error(t, err)
			assert.True(t, errors.HasCode(err, errors.ErrCodeInvalidConfiguration))
			assert.Contains(t, err.Error(), tt.errorContains)
		})
	}
}

func TestGetVersion(t *testing.T) {
	original := Version
	defer func() { Version = original }()

	Version = "1.0.3"
	assert.Equal(t, "1.0.3", GetVersion())
}
