package clustering

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/hemajv/insights-clustering/tracking"
	"golang.org/x/sync/errgroup"
)

// Tracked parameter names.
const (
	ParamK          = "K-Clusters"
	ParamDimensions = "PCA_Dimensions"
	ParamDay1       = "Date 1"
	ParamDay2       = "Date 2"
	ParamShared     = "Shared_ids_between_days"
)

// Tracked metric names.
const (
	MetricInertia1      = "inertia_day1"
	MetricInertia2      = "inertia_day2"
	MetricLabels1       = "number_labels1"
	MetricLabels2       = "number_labels2"
	MetricSilhouette1   = "silhouette_score_1"
	MetricSilhouette2   = "silhouette_score_2"
	MetricRand          = "rand_score"
	MetricFowlkes       = "fowlkes_mallow_score"
	MetricMutualInfo    = "mutual_info_score"
	MetricVariationInfo = "variation_of_information"
	MetricStability     = "cluster_stability"
)

// Report is everything one Runner.Run computed.
type Report struct {
	Day1       *DayResult
	Day2       *DayResult
	Comparison *Comparison
	Run        *tracking.Run
}

// Runner clusters two days, compares them and records the outcome.
type Runner struct {
	pipeline   *Pipeline
	sink       tracking.Sink
	experiment string
	opts       options
}

// NewRunner creates a Runner. The options configure logging, metrics and
// day scheduling; the pipeline keeps its own.
func NewRunner(p *Pipeline, sink tracking.Sink, experiment string, opts ...Option) *Runner {
	return &Runner{
		pipeline:   p,
		sink:       sink,
		experiment: experiment,
		opts:       applyOptions(opts),
	}
}

// Run compares day1 with day2. The sink receives the run only if every
// value was computed; on any error nothing is recorded.
func (r *Runner) Run(ctx context.Context, day1, day2 string) (*Report, error) {
	log := r.opts.logger.WithK(r.pipeline.K()).WithDimension(r.pipeline.Dimensions())

	res1, res2, err := r.days(ctx, log, day1, day2)
	if err != nil {
		return nil, err
	}

	start := time.Now()
	cmp, err := Compare(res1, res2, r.pipeline.K())
	shared := 0
	if cmp != nil {
		shared = cmp.Shared
	}
	r.opts.metricsCollector.RecordCompare(shared, time.Since(start), err)
	var lre *LabelRangeError
	if errors.As(err, &lre) {
		log.LogDropped(ctx, lre)
	}
	log.LogComparison(ctx, cmp, err)
	if err != nil {
		return nil, err
	}

	run, err := r.buildRun(day1, day2, res1, res2, cmp)
	if err != nil {
		return nil, err
	}

	start = time.Now()
	err = r.sink.Record(ctx, run)
	r.opts.metricsCollector.RecordTrack(time.Since(start), err)
	if err != nil {
		return nil, fmt.Errorf("record run %s: %w", run.ID, err)
	}
	log.WithRunID(run.ID).InfoContext(ctx, "run recorded", "experiment", run.Experiment)

	return &Report{Day1: res1, Day2: res2, Comparison: cmp, Run: run}, nil
}

func (r *Runner) days(ctx context.Context, log *Logger, day1, day2 string) (*DayResult, *DayResult, error) {
	var res [2]*DayResult
	obs := [2]string{day1, day2}

	runDay := func(ctx context.Context, i int) error {
		out, err := r.pipeline.Run(ctx, obs[i])
		log.LogDay(ctx, obs[i], out, err)
		if err != nil {
			return err
		}
		res[i] = out
		return nil
	}

	if r.opts.sequential {
		for i := range obs {
			if err := runDay(ctx, i); err != nil {
				return nil, nil, err
			}
		}
		return res[0], res[1], nil
	}

	g, gctx := errgroup.WithContext(ctx)
	for i := range obs {
		g.Go(func() error { return runDay(gctx, i) })
	}
	if err := g.Wait(); err != nil {
		return nil, nil, err
	}
	return res[0], res[1], nil
}

func (r *Runner) buildRun(day1, day2 string, res1, res2 *DayResult, cmp *Comparison) (*tracking.Run, error) {
	run := tracking.NewRun(r.experiment)

	params := []struct {
		key   string
		value any
	}{
		{ParamK, r.pipeline.K()},
		{ParamDimensions, r.pipeline.Dimensions()},
		{ParamDay1, day1},
		{ParamDay2, day2},
		{ParamShared, cmp.Shared},
	}
	for _, p := range params {
		if err := run.LogParam(p.key, p.value); err != nil {
			return nil, err
		}
	}

	metrics := []struct {
		key   string
		value float64
	}{
		{MetricInertia1, res1.Inertia},
		{MetricInertia2, res2.Inertia},
		{MetricLabels1, float64(len(res1.Labels))},
		{MetricLabels2, float64(len(res2.Labels))},
		{MetricSilhouette1, res1.Silhouette},
		{MetricSilhouette2, res2.Silhouette},
		{MetricRand, cmp.AdjustedRand},
		{MetricFowlkes, cmp.FowlkesMallows},
		{MetricMutualInfo, cmp.MutualInfo},
		{MetricVariationInfo, cmp.VariationOfInformation},
		{MetricStability, cmp.Stability},
	}
	for _, m := range metrics {
		if err := run.LogMetric(m.key, m.value); err != nil {
			return nil, err
		}
	}
	return run, nil
}
