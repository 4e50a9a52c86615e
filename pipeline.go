package clustering

import (
	"context"
	"fmt"
	"time"

	"github.com/hemajv/insights-clustering/agreement"
	"github.com/hemajv/insights-clustering/blobstore"
	"github.com/hemajv/insights-clustering/internal/preprocess"
	"github.com/hemajv/insights-clustering/partition"
	"github.com/hemajv/insights-clustering/table"
)

// DayResult is the clustering of one observation.
type DayResult struct {
	Observation string
	// Rows and Features describe the table after the id and skipped
	// columns were removed.
	Rows     int
	Features int
	// IDs and Labels are paired row by row.
	IDs    []partition.EntityID
	Labels []int
	// Inertia is the k-means objective over the reduced points.
	Inertia float64
	// Silhouette is the mean euclidean silhouette of the reduced points.
	Silhouette float64
	// ExplainedVariance holds the variance ratio of each kept component.
	ExplainedVariance []float64
}

// Assignment pairs the ids with their labels.
func (d *DayResult) Assignment() partition.Assignment {
	return partition.NewAssignment(d.IDs, d.Labels)
}

// Pipeline reads, preprocesses and clusters one day's dataset.
// It holds no per-run state and is safe for concurrent use.
type Pipeline struct {
	store blobstore.BlobStore
	k     int
	dims  int
	opts  options
}

// NewPipeline creates a Pipeline clustering into k clusters after reducing
// to dims principal components.
func NewPipeline(store blobstore.BlobStore, k, dims int, opts ...Option) (*Pipeline, error) {
	if k <= 0 {
		return nil, ErrInvalidK
	}
	if dims <= 0 {
		return nil, ErrInvalidDimensions
	}
	return &Pipeline{
		store: store,
		k:     k,
		dims:  dims,
		opts:  applyOptions(opts),
	}, nil
}

// K returns the configured cluster count.
func (p *Pipeline) K() int { return p.k }

// Dimensions returns the configured PCA dimension count.
func (p *Pipeline) Dimensions() int { return p.dims }

// Path returns the dataset prefix of observation.
func (p *Pipeline) Path(observation string) string {
	return table.DatasetPath(p.opts.prefix, observation, p.opts.parser)
}

// Run clusters observation.
func (p *Pipeline) Run(ctx context.Context, observation string) (*DayResult, error) {
	log := p.opts.logger.WithObservation(observation)
	path := p.Path(observation)

	start := time.Now()
	frame, err := table.ReadDataset(ctx, p.store, path, p.opts.layout)
	p.opts.metricsCollector.RecordLoad(frame.Len(), time.Since(start), err)
	if err != nil {
		return nil, &DataAccessError{Observation: observation, Path: path, cause: err}
	}
	rows, features := frame.Features.Dims()
	log.DebugContext(ctx, "dataset loaded", "path", path, "rows", rows, "features", features)

	start = time.Now()
	res, err := p.cluster(ctx, frame)
	p.opts.metricsCollector.RecordCluster(p.k, time.Since(start), err)
	if err != nil {
		return nil, fmt.Errorf("observation %s: %w", observation, err)
	}
	res.Observation = observation
	return res, nil
}

func (p *Pipeline) cluster(ctx context.Context, frame *table.Frame) (*DayResult, error) {
	rows, features := frame.Features.Dims()

	scaled := preprocess.Standardize(frame.Features)
	proj, err := preprocess.PCA(scaled, p.dims)
	if err != nil {
		return nil, err
	}

	c, err := p.opts.clusterer.Cluster(ctx, proj.Points, p.k)
	if err != nil {
		return nil, fmt.Errorf("cluster: %w", err)
	}

	sil, err := agreement.Silhouette(proj.Points, c.Labels)
	if err != nil {
		return nil, fmt.Errorf("silhouette: %w", err)
	}

	return &DayResult{
		Rows:              rows,
		Features:          features,
		IDs:               frame.IDs,
		Labels:            c.Labels,
		Inertia:           c.Inertia,
		Silhouette:        sil,
		ExplainedVariance: proj.ExplainedVarianceRatio,
	}, nil
}
