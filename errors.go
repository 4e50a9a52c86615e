package clustering

import (
	"errors"
	"fmt"
	"strings"

	"github.com/hemajv/insights-clustering/partition"
)

var (
	// ErrInvalidK is returned when k is not positive.
	ErrInvalidK = partition.ErrInvalidK

	// ErrInvalidDimensions is returned when the PCA dimension count is not positive.
	ErrInvalidDimensions = errors.New("clustering: dimensions must be positive")

	// ErrEmptyUniverse is returned when the two days share no entity.
	ErrEmptyUniverse = partition.ErrEmptyUniverse

	// ErrEmptyAssignment is returned when a day produced no labeled rows.
	ErrEmptyAssignment = errors.New("clustering: assignment is empty")
)

// ConfigError reports a missing or unparseable configuration value.
//
// The original underlying error (if any) can be accessed via errors.Unwrap.
type ConfigError struct {
	Key   string
	Value string
	cause error
}

func (e *ConfigError) Error() string {
	if e.Value == "" {
		return fmt.Sprintf("config %s: %v", e.Key, e.cause)
	}
	return fmt.Sprintf("config %s=%q: %v", e.Key, e.Value, e.cause)
}

func (e *ConfigError) Unwrap() error { return e.cause }

var errRequired = errors.New("required")

// DataAccessError reports a day whose tables could not be read or held no rows.
//
// The original underlying error (if any) can be accessed via errors.Unwrap.
type DataAccessError struct {
	Observation string
	Path        string
	cause       error
}

func (e *DataAccessError) Error() string {
	return fmt.Sprintf("read observation %s at %s: %v", e.Observation, e.Path, e.cause)
}

func (e *DataAccessError) Unwrap() error { return e.cause }

// LabelRangeError reports rows whose label is outside [0, K).
type LabelRangeError struct {
	Observation string
	K           int
	Labels      []partition.Labeled
}

func (e *LabelRangeError) Error() string {
	const show = 5
	var b strings.Builder
	for i, l := range e.Labels {
		if i == show {
			fmt.Fprintf(&b, ", ... (%d more)", len(e.Labels)-show)
			break
		}
		if i > 0 {
			b.WriteString(", ")
		}
		fmt.Fprintf(&b, "%s=%d", l.ID, l.Label)
	}
	return fmt.Sprintf("observation %s: %d labels outside [0, %d): %s", e.Observation, len(e.Labels), e.K, b.String())
}
