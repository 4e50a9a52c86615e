// Command stability clusters two days of rule-hit data, scores how well the
// first day's clusters survive into the second and records the result.
//
// Configuration is read from the environment, optionally seeded from a
// .env file in the working directory.
package main

import (
	"context"
	"errors"
	"fmt"
	"io"
	"io/fs"
	"os"
	"os/signal"
	"syscall"

	clustering "github.com/hemajv/insights-clustering"
	"github.com/hemajv/insights-clustering/blobstore"
	"github.com/hemajv/insights-clustering/blobstore/minio"
	"github.com/hemajv/insights-clustering/blobstore/s3"
	"github.com/hemajv/insights-clustering/resource"
	"github.com/hemajv/insights-clustering/tracking"
	"github.com/hemajv/insights-clustering/tracking/mlflow"
	"github.com/hemajv/insights-clustering/tracking/postgres"
	"github.com/hemajv/insights-clustering/tracking/pushgateway"
	"github.com/joho/godotenv"
)

const (
	exitOK     = 0
	exitFailed = 1
	exitConfig = 2
)

func main() {
	if err := godotenv.Load(); err != nil && !errors.Is(err, fs.ErrNotExist) {
		fmt.Fprintf(os.Stderr, "stability: load .env: %v\n", err)
		os.Exit(exitConfig)
	}

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	code := run(ctx, os.LookupEnv, os.Stdout, os.Stderr)
	stop()
	os.Exit(code)
}

// run executes one comparison configured through lookup and returns the
// process exit code.
func run(ctx context.Context, lookup func(string) (string, bool), stdout, stderr io.Writer) int {
	cfg, err := clustering.LoadConfig(lookup)
	if err != nil {
		fmt.Fprintf(stderr, "stability: %v\n", err)
		return exitConfig
	}
	log := newLogger(cfg, stderr)

	if cfg.Timeout > 0 {
		var cancel context.CancelFunc
		ctx, cancel = context.WithTimeout(ctx, cfg.Timeout)
		defer cancel()
	}

	store, err := openStore(ctx, cfg)
	if err != nil {
		fmt.Fprintf(stderr, "stability: open storage: %v\n", err)
		return exitFailed
	}

	sink, closeSink, err := openSink(ctx, cfg, log)
	if err != nil {
		fmt.Fprintf(stderr, "stability: open tracking: %v\n", err)
		return exitFailed
	}
	defer closeSink()

	opts := []clustering.Option{
		clustering.WithPrefix(cfg.Prefix),
		clustering.WithParser(cfg.Parser),
		clustering.WithClusterer(cfg.KMeans),
		clustering.WithLogger(log),
	}
	p, err := clustering.NewPipeline(store, cfg.K, cfg.Dimensions, opts...)
	if err != nil {
		fmt.Fprintf(stderr, "stability: %v\n", err)
		return exitConfig
	}

	report, err := clustering.NewRunner(p, sink, cfg.Tracking.Experiment, opts...).Run(ctx, cfg.Day1, cfg.Day2)
	if err != nil {
		fmt.Fprintf(stderr, "stability: %v\n", err)
		return exitFailed
	}

	fmt.Fprintf(stdout, "cluster stability %s -> %s: %.2f (shared %d, run %s)\n",
		cfg.Day1, cfg.Day2, report.Comparison.Stability, report.Comparison.Shared, report.Run.ID)
	return exitOK
}

func newLogger(cfg *clustering.Config, w io.Writer) *clustering.Logger {
	switch cfg.LogFormat {
	case clustering.LogFormatJSON:
		return clustering.NewJSONLogger(w, cfg.LogLevel)
	case clustering.LogFormatText:
		return clustering.NewTextLogger(w, cfg.LogLevel)
	}
	if f, ok := w.(*os.File); ok {
		return clustering.NewAutoLogger(f, cfg.LogLevel)
	}
	return clustering.NewTextLogger(w, cfg.LogLevel)
}

func openStore(ctx context.Context, cfg *clustering.Config) (blobstore.BlobStore, error) {
	var (
		inner blobstore.BlobStore
		err   error
	)
	sc := cfg.Storage
	switch sc.Backend {
	case clustering.StorageMinio:
		inner, err = minio.Dial(ctx, minio.Endpoint{
			URL:       sc.Endpoint,
			AccessKey: sc.AccessKey,
			SecretKey: sc.SecretKey,
			Bucket:    sc.Bucket,
		})
	case clustering.StorageS3:
		inner, err = s3.New(ctx, s3.Endpoint{
			URL:       sc.Endpoint,
			AccessKey: sc.AccessKey,
			SecretKey: sc.SecretKey,
			Bucket:    sc.Bucket,
		})
	default:
		inner = blobstore.NewLocalStore(sc.Root)
	}
	if err != nil {
		return nil, err
	}

	rc := resource.NewController(resource.Config{
		MaxConcurrentReads: sc.MaxConcurrency,
		ReadBytesPerSec:    sc.ReadBytesPerSec,
	})
	policy := blobstore.DefaultRetryPolicy()
	policy.MaxRetries = sc.MaxRetries
	return blobstore.NewGovernedStore(inner, rc, policy), nil
}

// openSink returns the configured backend followed by a log sink; the log
// line is only written once the backend has accepted the run.
func openSink(ctx context.Context, cfg *clustering.Config, log *clustering.Logger) (tracking.Sink, func(), error) {
	logSink := tracking.NewLogSink(log.Logger)
	noop := func() {}

	tc := cfg.Tracking
	switch tc.Backend {
	case clustering.TrackingMLflow:
		s, err := mlflow.New(tc.MLflowURI)
		if err != nil {
			return nil, noop, err
		}
		return tracking.Tee(s, logSink), noop, nil
	case clustering.TrackingPushgateway:
		s := pushgateway.New(tc.PushgatewayURL, pushgateway.DefaultJob, pushgateway.DefaultNamespace)
		return tracking.Tee(s, logSink), noop, nil
	case clustering.TrackingPostgres:
		s, err := postgres.Connect(ctx, tc.DatabaseURL)
		if err != nil {
			return nil, noop, err
		}
		return tracking.Tee(s, logSink), s.Close, nil
	default:
		return logSink, noop, nil
	}
}
