package qcavity

import (
	"fmt"

	"github.com/pkg/errors"
)

var (
	ErrConfig     = errors.New("invalid array configuration")
	ErrNotInBasis = errors.New("state not in basis")
	ErrSortMode   = errors.New("unsupported sort mode")
)

// ConfigError reports a malformed array parameter.
// Site is -1 for parameters that are not resolved per site.
type ConfigError struct {
	Key      string
	Site     int
	Expected int
	Got      int
	Reason   string
}

func (e *ConfigError) Error() string {
	where := fmt.Sprintf("%q", e.Key)
	if e.Site >= 0 {
		where = fmt.Sprintf("site %d %q", e.Site, e.Key)
	}
	if e.Reason != "" {
		return fmt.Sprintf("%v: %s: %s", ErrConfig, where, e.Reason)
	}
	return fmt.Sprintf("%v: %s list should have length %d, got %d", ErrConfig, where, e.Expected, e.Got)
}

func (e *ConfigError) Unwrap() error { return ErrConfig }

type LookupError struct {
	State State
}

func (e *LookupError) Error() string { return fmt.Sprintf("%v: %s", ErrNotInBasis, e.State) }

func (e *LookupError) Unwrap() error { return ErrNotInBasis }
