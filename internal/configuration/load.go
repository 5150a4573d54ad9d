package configuration

import (
	"encoding/json"
	"errors"
	"fmt"
	"io/fs"
	"os"
	"strconv"
	"strings"

	"github.com/joho/godotenv"
)

// Environment variable names read by FromEnv.
const (
	EnvConfigFile    = "LINKAGE_CONFIG_FILE"
	EnvThreshold     = "LINKAGE_THRESHOLD"
	EnvMinBucketSize = "LINKAGE_MIN_BUCKET_SIZE"
	EnvWorkers       = "LINKAGE_WORKERS"
	EnvTemporalHost  = "TEMPORAL_HOSTPORT"
	EnvTemporalNS    = "TEMPORAL_NAMESPACE"
	EnvTemporalQueue = "TEMPORAL_TASK_QUEUE"
	EnvKafkaBrokers  = "KAFKA_BROKERS"
	EnvKafkaTopic    = "KAFKA_TOPIC"
)

// LoadFile decodes a JSON configuration file over cfg. Temporal and Kafka
// keys absent from the file keep their current values. A "linkage" object is
// decoded over the linkage defaults: absent keys take the default and explicit
// zeros are kept. An explicit weights object replaces the default weights.
func LoadFile(cfg *Config, path string) error {
	data, err := os.ReadFile(path)
	if err != nil {
		return fmt.Errorf("failed to read config file %s: %w", path, err)
	}
	if err := json.Unmarshal(data, cfg); err != nil {
		return fmt.Errorf("failed to parse config file %s: %w", path, err)
	}
	return nil
}

// FromEnv builds a configuration from defaults, the file named by
// LINKAGE_CONFIG_FILE, and environment overrides. Variables may also come
// from the given .env files; real environment variables take precedence and
// missing files are skipped. The process environment is never modified.
func FromEnv(envFiles ...string) (*Config, error) {
	return Load("", envFiles...)
}

// Load is FromEnv with an explicit configuration file. A non-empty path
// takes the place of LINKAGE_CONFIG_FILE; environment overrides still apply
// on top of it.
func Load(path string, envFiles ...string) (*Config, error) {
	lookup, err := envLookup(envFiles)
	if err != nil {
		return nil, err
	}

	if path == "" {
		path, _ = lookup(EnvConfigFile)
	}
	cfg := Default()
	if path != "" {
		if err := LoadFile(cfg, path); err != nil {
			return nil, err
		}
	}

	if v, ok := lookup(EnvThreshold); ok {
		f, err := strconv.ParseFloat(v, 64)
		if err != nil {
			return nil, fmt.Errorf("%w: %s=%q: %w", ErrInvalidConfig, EnvThreshold, v, err)
		}
		cfg.Linkage.Threshold = f
	}
	if err := intFromEnv(lookup, EnvMinBucketSize, &cfg.Linkage.MinBucketSize); err != nil {
		return nil, err
	}
	if err := intFromEnv(lookup, EnvWorkers, &cfg.Linkage.Workers); err != nil {
		return nil, err
	}

	if v, ok := lookup(EnvTemporalHost); ok {
		cfg.Temporal.HostPort = v
	}
	if v, ok := lookup(EnvTemporalNS); ok {
		cfg.Temporal.Namespace = v
	}
	if v, ok := lookup(EnvTemporalQueue); ok {
		cfg.Temporal.TaskQueue = v
	}
	if v, ok := lookup(EnvKafkaBrokers); ok {
		cfg.Kafka.Brokers = splitList(v)
	}
	if v, ok := lookup(EnvKafkaTopic); ok {
		cfg.Kafka.Topic = v
	}

	if err := cfg.Validate(); err != nil {
		return nil, err
	}
	return cfg, nil
}

// envLookup returns a lookup over the process environment backed by the
// values of existing .env files. Blank values count as unset.
func envLookup(files []string) (func(string) (string, bool), error) {
	var existing []string
	for _, f := range files {
		if _, err := os.Stat(f); err != nil {
			if errors.Is(err, fs.ErrNotExist) {
				continue
			}
			return nil, fmt.Errorf("failed to stat env file %s: %w", f, err)
		}
		existing = append(existing, f)
	}

	dotenv := map[string]string{}
	if len(existing) > 0 {
		var err error
		if dotenv, err = godotenv.Read(existing...); err != nil {
			return nil, fmt.Errorf("failed to read env files: %w", err)
		}
	}

	return func(key string) (string, bool) {
		if v, ok := os.LookupEnv(key); ok && strings.TrimSpace(v) != "" {
			return strings.TrimSpace(v), true
		}
		if v := strings.TrimSpace(dotenv[key]); v != "" {
			return v, true
		}
		return "", false
	}, nil
}

func intFromEnv(lookup func(string) (string, bool), key string, dst *int) error {
	v, ok := lookup(key)
	if !ok {
		return nil
	}
	n, err := strconv.Atoi(v)
	if err != nil {
		return fmt.Errorf("%w: %s=%q: %w", ErrInvalidConfig, key, v, err)
	}
	*dst = n
	return nil
}

func splitList(s string) []string {
	var out []string
	for _, part := range strings.Split(s, ",") {
		if part = strings.TrimSpace(part); part != "" {
			out = append(out, part)
		}
	}
	return out
}
