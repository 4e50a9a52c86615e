// Package mlflow records runs through the MLflow tracking REST API (2.0).
//
// Each Record resolves the experiment by name (creating it when missing),
// creates a run, logs every parameter and metric in one log-batch call and
// marks the run FINISHED. If the batch fails the run is marked FAILED.
package mlflow

import (
	"bytes"
	"context"
	"errors"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"strings"
	"time"

	"github.com/hemajv/insights-clustering/codec"
	"github.com/hemajv/insights-clustering/tracking"
)

// MLflow limits a log-batch request to 1000 metrics and 100 params.
const (
	maxBatchMetrics = 1000
	maxBatchParams  = 100
)

// APIError is an error response from the tracking server.
type APIError struct {
	Status    int
	Code      string `json:"error_code"`
	Message   string `json:"message"`
	Operation string
}

func (e *APIError) Error() string {
	return fmt.Sprintf("mlflow: %s: %d %s: %s", e.Operation, e.Status, e.Code, e.Message)
}

// IsNotFound reports whether err is a RESOURCE_DOES_NOT_EXIST response.
func IsNotFound(err error) bool {
	var apiErr *APIError
	return errors.As(err, &apiErr) && apiErr.Code == "RESOURCE_DOES_NOT_EXIST"
}

// Sink is a tracking.Sink backed by an MLflow server.
type Sink struct {
	base   string
	client *http.Client
	codec  codec.Codec
	now    func() time.Time
}

// Option configures a Sink.
type Option func(*Sink)

// WithHTTPClient sets the HTTP client. Defaults to a client with a 30s timeout.
func WithHTTPClient(c *http.Client) Option {
	return func(s *Sink) { s.client = c }
}

// WithCodec sets the body codec. Defaults to codec.Default.
func WithCodec(c codec.Codec) Option {
	return func(s *Sink) { s.codec = c }
}

// New creates a Sink for the tracking server at trackingURI.
func New(trackingURI string, opts ...Option) (*Sink, error) {
	u, err := url.Parse(trackingURI)
	if err != nil {
		return nil, fmt.Errorf("mlflow: parse tracking uri: %w", err)
	}
	if u.Scheme != "http" && u.Scheme != "https" {
		return nil, fmt.Errorf("mlflow: tracking uri %q must be http or https", trackingURI)
	}
	s := &Sink{
		base:   strings.TrimSuffix(u.String(), "/"),
		client: &http.Client{Timeout: 30 * time.Second},
		codec:  codec.Default,
		now:    time.Now,
	}
	for _, opt := range opts {
		opt(s)
	}
	return s, nil
}

type experiment struct {
	ExperimentID string `json:"experiment_id"`
	Name         string `json:"name"`
}

type runTag struct {
	Key   string `json:"key"`
	Value string `json:"value"`
}

type runInfo struct {
	RunID string `json:"run_id"`
}

type param struct {
	Key   string `json:"key"`
	Value string `json:"value"`
}

type metric struct {
	Key       string  `json:"key"`
	Value     float64 `json:"value"`
	Timestamp int64   `json:"timestamp"`
	Step      int64   `json:"step"`
}

type logBatch struct {
	RunID   string   `json:"run_id"`
	Metrics []metric `json:"metrics,omitempty"`
	Params  []param  `json:"params,omitempty"`
}

// Record implements tracking.Sink. The run is created before its data is
// logged, so a failed batch leaves it in the experiment marked FAILED.
func (s *Sink) Record(ctx context.Context, run *tracking.Run) error {
	expID, err := s.experimentID(ctx, run.Experiment)
	if err != nil {
		return err
	}

	var created struct {
		Run struct {
			Info runInfo `json:"info"`
		} `json:"run"`
	}
	err = s.call(ctx, "runs/create", map[string]any{
		"experiment_id": expID,
		"start_time":    run.Start.UnixMilli(),
		"run_name":      run.ID,
		"tags":          []runTag{{Key: "run_uuid_local", Value: run.ID}},
	}, &created)
	if err != nil {
		return err
	}
	runID := created.Run.Info.RunID
	if runID == "" {
		return errors.New("mlflow: runs/create returned no run id")
	}

	if err := s.logBatches(ctx, runID, run); err != nil {
		_ = s.finish(ctx, runID, "FAILED")
		return err
	}
	return s.finish(ctx, runID, "FINISHED")
}

func (s *Sink) logBatches(ctx context.Context, runID string, run *tracking.Run) error {
	ts := s.now().UnixMilli()
	params := run.Params()
	metrics := run.Metrics()

	for len(params) > 0 || len(metrics) > 0 {
		b := logBatch{RunID: runID}
		np := min(len(params), maxBatchParams)
		for _, p := range params[:np] {
			b.Params = append(b.Params, param{Key: p.Key, Value: p.Value})
		}
		params = params[np:]
		nm := min(len(metrics), maxBatchMetrics)
		for _, m := range metrics[:nm] {
			b.Metrics = append(b.Metrics, metric{Key: m.Key, Value: m.Value, Timestamp: ts})
		}
		metrics = metrics[nm:]

		if err := s.call(ctx, "runs/log-batch", b, nil); err != nil {
			return err
		}
	}
	return nil
}

func (s *Sink) finish(ctx context.Context, runID, status string) error {
	return s.call(ctx, "runs/update", map[string]any{
		"run_id":   runID,
		"status":   status,
		"end_time": s.now().UnixMilli(),
	}, nil)
}

func (s *Sink) experimentID(ctx context.Context, name string) (string, error) {
	var found struct {
		Experiment experiment `json:"experiment"`
	}
	q := url.Values{"experiment_name": {name}}
	err := s.do(ctx, http.MethodGet, "experiments/get-by-name?"+q.Encode(), nil, &found)
	if err == nil {
		return found.Experiment.ExperimentID, nil
	}
	if !IsNotFound(err) {
		return "", err
	}

	var created experiment
	if err := s.call(ctx, "experiments/create", map[string]any{"name": name}, &created); err != nil {
		return "", err
	}
	return created.ExperimentID, nil
}

func (s *Sink) call(ctx context.Context, op string, body, out any) error {
	return s.do(ctx, http.MethodPost, op, body, out)
}

func (s *Sink) do(ctx context.Context, method, op string, body, out any) error {
	var rd io.Reader
	if body != nil {
		b, err := s.codec.Marshal(body)
		if err != nil {
			return fmt.Errorf("mlflow: encode %s: %w", op, err)
		}
		rd = bytes.NewReader(b)
	}

	req, err := http.NewRequestWithContext(ctx, method, s.base+"/api/2.0/mlflow/"+op, rd)
	if err != nil {
		return err
	}
	if body != nil {
		req.Header.Set("Content-Type", s.codec.ContentType())
	}
	req.Header.Set("Accept", "application/json")

	resp, err := s.client.Do(req)
	if err != nil {
		return fmt.Errorf("mlflow: %s: %w", strings.SplitN(op, "?", 2)[0], err)
	}
	defer func() { _ = resp.Body.Close() }()

	data, err := io.ReadAll(resp.Body)
	if err != nil {
		return fmt.Errorf("mlflow: read %s response: %w", op, err)
	}
	if resp.StatusCode/100 != 2 {
		apiErr := &APIError{Status: resp.StatusCode, Operation: strings.SplitN(op, "?", 2)[0]}
		if len(data) > 0 {
			_ = s.codec.Unmarshal(data, apiErr)
		}
		return apiErr
	}
	if out == nil || len(data) == 0 {
		return nil
	}
	if err := s.codec.Unmarshal(data, out); err != nil {
		return fmt.Errorf("mlflow: decode %s: %w", op, err)
	}
	return nil
}
