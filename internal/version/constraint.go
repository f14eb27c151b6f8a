package version

import (
	"strings"

	"github.com/Masterminds/semver/v3"
	"github.com/rxtech-lab/kline-downloader/pkg/errors"
)

// CheckConstraint reports whether version satisfies constraint, a semver range
// such as ">= 1.2, < 2". A configuration file uses it to pin the downloader
// versions it was written for.
//
// Rules:
//   - An empty constraint always passes
//   - A "main" version (development build) always passes
//   - A leading "v" on the version is ignored
func CheckConstraint(version, constraint string) error {
	constraint = strings.TrimSpace(constraint)
	if constraint == "" {
		return nil
	}

	c, err := semver.NewConstraint(constraint)
	if err != nil {
		return errors.Wrapf(errors.ErrCodeInvalidConfiguration, err, "invalid version constraint %q", constraint)
	}

	version = strings.TrimPrefix(version, "v")
	if version == "main" {
		return nil
	}

	v, err := semver.NewVersion(version)
	if err != nil {
		return errors.Wrapf(errors.ErrCodeInvalidConfiguration, err, "invalid downloader version %q", version)
	}

	if ok, reasons := c.Validate(v); !ok {
		msgs := make([]string, 0, len(reasons))
		for _, reason := range reasons {
			msgs = append(msgs, reason.Error())
		}

		return errors.Newf(errors.ErrCodeInvalidConfiguration,
			"downloader %s does not satisfy %q: %s", version, constraint, strings.Join(msgs, "; "))
	}

	return nil
}
