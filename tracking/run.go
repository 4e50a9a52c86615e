package tracking

import (
	"errors"
	"fmt"
	"math"
	"strconv"
	"time"

	"github.com/google/uuid"
)

var (
	// ErrDuplicateName is returned when a parameter or metric name is
	// recorded twice on one run.
	ErrDuplicateName = errors.New("tracking: duplicate name")
	// ErrNonFinite is returned for NaN or infinite metric values.
	ErrNonFinite = errors.New("tracking: non-finite metric value")
	// ErrEmptyName is returned for an empty parameter or metric name.
	ErrEmptyName = errors.New("tracking: empty name")
)

// Param is a named run parameter. Values are recorded as strings.
type Param struct {
	Key   string
	Value string
}

// Metric is a named numeric result.
type Metric struct {
	Key   string
	Value float64
}

// Run is one tracked execution. It is not safe for concurrent use.
type Run struct {
	// ID is a random UUID assigned at creation.
	ID string
	// Experiment names the experiment the run belongs to.
	Experiment string
	// Start is when the run was created.
	Start time.Time

	params  []Param
	metrics []Metric
	seenP   map[string]struct{}
	seenM   map[string]struct{}
}

// NewRun creates an empty run for experiment.
func NewRun(experiment string) *Run {
	return &Run{
		ID:         uuid.NewString(),
		Experiment: experiment,
		Start:      time.Now(),
		seenP:      make(map[string]struct{}),
		seenM:      make(map[string]struct{}),
	}
}

// LogParam records a parameter. Integers and strings are formatted plainly,
// anything else with fmt.Sprint.
func (r *Run) LogParam(key string, value any) error {
	if key == "" {
		return ErrEmptyName
	}
	if _, ok := r.seenP[key]; ok {
		return fmt.Errorf("%w: param %q", ErrDuplicateName, key)
	}
	r.seenP[key] = struct{}{}
	r.params = append(r.params, Param{Key: key, Value: formatParam(value)})
	return nil
}

// LogMetric records a metric.
func (r *Run) LogMetric(key string, value float64) error {
	if key == "" {
		return ErrEmptyName
	}
	if math.IsNaN(value) || math.IsInf(value, 0) {
		return fmt.Errorf("%w: %s=%v", ErrNonFinite, key, value)
	}
	if _, ok := r.seenM[key]; ok {
		return fmt.Errorf("%w: metric %q", ErrDuplicateName, key)
	}
	r.seenM[key] = struct{}{}
	r.metrics = append(r.metrics, Metric{Key: key, Value: value})
	return nil
}

// Params returns the parameters in recording order.
func (r *Run) Params() []Param {
	return append([]Param(nil), r.params...)
}

// Metrics returns the metrics in recording order.
func (r *Run) Metrics() []Metric {
	return append([]Metric(nil), r.metrics...)
}

// Param returns the value of a parameter.
func (r *Run) Param(key string) (string, bool) {
	for _, p := range r.params {
		if p.Key == key {
			return p.Value, true
		}
	}
	return "", false
}

// Metric returns the value of a metric.
func (r *Run) Metric(key string) (float64, bool) {
	for _, m := range r.metrics {
		if m.Key == key {
			return m.Value, true
		}
	}
	return 0, false
}

func formatParam(v any) string {
	switch x := v.(type) {
	case string:
		return x
	case int:
		return strconv.Itoa(x)
	case int64:
		return strconv.FormatInt(x, 10)
	case fmt.Stringer:
		return x.String()
	default:
		return fmt.Sprint(v)
	}
}
