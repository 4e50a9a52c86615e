package clustering

import (
	"errors"
	"fmt"
	"log/slog"
	"strconv"
	"strings"
	"time"
)

// Storage backends.
const (
	StorageMinio = "minio"
	StorageS3    = "s3"
	StorageLocal = "local"
)

// Tracking backends.
const (
	TrackingMLflow      = "mlflow"
	TrackingPushgateway = "pushgateway"
	TrackingPostgres    = "postgres"
	TrackingLog         = "log"
)

// Log formats.
const (
	LogFormatAuto = "auto"
	LogFormatText = "text"
	LogFormatJSON = "json"
)

// StorageConfig locates the feature tables.
type StorageConfig struct {
	Backend   string
	Endpoint  string
	AccessKey string
	SecretKey string
	Bucket    string
	// Root is the directory of the local backend.
	Root string

	MaxConcurrency  int64
	ReadBytesPerSec int64
	MaxRetries      int
}

// TrackingConfig selects where runs are recorded.
type TrackingConfig struct {
	Backend        string
	Experiment     string
	MLflowURI      string
	PushgatewayURL string
	DatabaseURL    string
}

// Config is the complete configuration of one invocation.
type Config struct {
	Storage  StorageConfig
	Tracking TrackingConfig

	Prefix string
	Parser string

	K          int
	Dimensions int
	Day1       string
	Day2       string
	KMeans     KMeans

	LogLevel  slog.Level
	LogFormat string
	// Timeout bounds the whole run; 0 means none.
	Timeout time.Duration
}

type env struct {
	lookup func(string) (string, bool)
	errs   []error
}

func (e *env) fail(key, value string, cause error) {
	e.errs = append(e.errs, &ConfigError{Key: key, Value: value, cause: cause})
}

func (e *env) str(key, def string) string {
	if v, ok := e.lookup(key); ok && strings.TrimSpace(v) != "" {
		return strings.TrimSpace(v)
	}
	return def
}

func (e *env) required(key string) string {
	v := e.str(key, "")
	if v == "" {
		e.fail(key, "", errRequired)
	}
	return v
}

func (e *env) positive(key string, def int, required bool) int {
	raw := e.str(key, "")
	if raw == "" {
		if required {
			e.fail(key, "", errRequired)
		}
		return def
	}
	v, err := strconv.Atoi(raw)
	if err != nil {
		e.fail(key, raw, err)
		return def
	}
	if v <= 0 {
		e.fail(key, raw, errors.New("must be positive"))
		return def
	}
	return v
}

func (e *env) int64(key string, def int64, allowNegative bool) int64 {
	raw := e.str(key, "")
	if raw == "" {
		return def
	}
	v, err := strconv.ParseInt(raw, 10, 64)
	if err != nil {
		e.fail(key, raw, err)
		return def
	}
	if v < 0 && !allowNegative {
		e.fail(key, raw, errors.New("must not be negative"))
		return def
	}
	return v
}

func (e *env) oneOf(key, def string, allowed ...string) string {
	v := strings.ToLower(e.str(key, def))
	for _, a := range allowed {
		if v == a {
			return v
		}
	}
	e.fail(key, v, fmt.Errorf("must be one of %s", strings.Join(allowed, ", ")))
	return def
}

// LoadConfig builds a Config from lookup, typically os.LookupEnv. Every
// problem found is reported; the result joins one *ConfigError per key.
func LoadConfig(lookup func(string) (string, bool)) (*Config, error) {
	e := &env{lookup: lookup}
	cfg := &Config{}

	cfg.Storage.Backend = e.oneOf("STORAGE_BACKEND", StorageMinio, StorageMinio, StorageS3, StorageLocal)
	switch cfg.Storage.Backend {
	case StorageMinio, StorageS3:
		cfg.Storage.AccessKey = e.required("CEPH_KEY")
		cfg.Storage.SecretKey = e.required("CEPH_SECRET")
		cfg.Storage.Endpoint = e.required("CEPH_HOST")
		cfg.Storage.Bucket = e.required("CEPH_BUCKET")
	case StorageLocal:
		cfg.Storage.Root = e.str("STORAGE_ROOT", ".")
	}
	cfg.Storage.MaxConcurrency = int64(e.positive("STORAGE_MAX_CONCURRENCY", 4, false))
	cfg.Storage.ReadBytesPerSec = e.int64("STORAGE_READ_BYTES_PER_SEC", 0, false)
	cfg.Storage.MaxRetries = int(e.int64("STORAGE_MAX_RETRIES", 3, false))

	cfg.Prefix = e.str("DATA_PREFIX", DefaultPrefix)
	cfg.Parser = e.str("DATA_PARSER", DefaultParser)

	cfg.Tracking.Backend = e.oneOf("TRACKING_BACKEND", TrackingMLflow,
		TrackingMLflow, TrackingPushgateway, TrackingPostgres, TrackingLog)
	cfg.Tracking.Experiment = e.required("MLFLOW_EXPERIMENT_NAME")
	switch cfg.Tracking.Backend {
	case TrackingMLflow:
		cfg.Tracking.MLflowURI = e.required("MLFLOW_TRACKING_UI")
	case TrackingPushgateway:
		cfg.Tracking.PushgatewayURL = e.required("PUSHGATEWAY_URL")
	case TrackingPostgres:
		cfg.Tracking.DatabaseURL = e.required("DATABASE_URL")
	}

	cfg.K = e.positive("K_CLUSTERS", 0, true)
	cfg.Dimensions = e.positive("PCA_DIMENSIONS", 0, true)
	cfg.Day1 = e.required("DAY_1")
	cfg.Day2 = e.required("DAY_2")

	cfg.KMeans = KMeans{
		MaxIter: e.positive("KMEANS_MAX_ITER", 300, false),
		NInit:   e.positive("KMEANS_N_INIT", 1, false),
		Seed:    uint64(e.int64("KMEANS_SEED", 0, true)), //nolint:gosec // bit pattern is the seed
	}

	if raw := e.str("LOG_LEVEL", "info"); raw != "" {
		if err := cfg.LogLevel.UnmarshalText([]byte(raw)); err != nil {
			e.fail("LOG_LEVEL", raw, err)
		}
	}
	cfg.LogFormat = e.oneOf("LOG_FORMAT", LogFormatAuto, LogFormatAuto, LogFormatText, LogFormatJSON)

	if raw := e.str("RUN_TIMEOUT", ""); raw != "" {
		d, err := time.ParseDuration(raw)
		switch {
		case err != nil:
			e.fail("RUN_TIMEOUT", raw, err)
		case d < 0:
			e.fail("RUN_TIMEOUT", raw, errors.New("must not be negative"))
		default:
			cfg.Timeout = d
		}
	}

	if len(e.errs) > 0 {
		return nil, errors.Join(e.errs...)
	}
	return cfg, nil
}
