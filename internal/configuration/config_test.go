package configuration

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/ahrav/go-corroborate/internal/domain"
)

// clearEnv blanks every variable FromEnv reads. Blank values count as unset.
func clearEnv(t *testing.T) {
	t.Helper()
	for _, key := range []string{
		EnvConfigFile, EnvThreshold, EnvMinBucketSize, EnvWorkers,
		EnvTemporalHost, EnvTemporalNS, EnvTemporalQueue, EnvKafkaBrokers, EnvKafkaTopic,
	} {
		t.Setenv(key, "")
	}
}

func writeFile(t *testing.T, name, content string) string {
	t.Helper()
	path := filepath.Join(t.TempDir(), name)
	require.NoError(t, os.WriteFile(path, []byte(content), 0o600))
	return path
}

func TestDefault(t *testing.T) {
	cfg := Default()

	assert.Equal(t, DefaultTemporalHostPort, cfg.Temporal.HostPort)
	assert.Equal(t, DefaultTaskQueue, cfg.Temporal.TaskQueue)
	assert.False(t, cfg.Kafka.Enabled())
	assert.InDelta(t, domain.DefaultThreshold, cfg.Linkage.Threshold, 1e-9)
	assert.NoError(t, cfg.Validate())
}

func TestValidate(t *testing.T) {
	tests := []struct {
		name    string
		mutate  func(*Config)
		wantErr bool
	}{
		{"defaults", func(*Config) {}, false},
		{"missing task queue", func(c *Config) { c.Temporal.TaskQueue = "" }, true},
		{"bad host port", func(c *Config) { c.Temporal.HostPort = "localhost" }, true},
		{"brokers without topic", func(c *Config) {
			c.Kafka.Brokers = []string{"localhost:9092"}
			c.Kafka.Topic = ""
		}, true},
		{"bad broker", func(c *Config) { c.Kafka.Brokers = []string{"not a broker"} }, true},
		{"brokers with topic", func(c *Config) { c.Kafka.Brokers = []string{"localhost:9092"} }, false},
		{"threshold out of range", func(c *Config) { c.Linkage.Threshold = 2 }, true},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			cfg := Default()
			tt.mutate(cfg)
			err := cfg.Validate()
			if tt.wantErr {
				assert.ErrorIs(t, err, ErrInvalidConfig)
				return
			}
			assert.NoError(t, err)
		})
	}
}

func TestLoadFile(t *testing.T) {
	path := writeFile(t, "config.json", `{
		"linkage": {
			"weights": {"date": 2, "location": "1", "bogus": 5, "ransom": -1},
			"threshold": 0.6,
			"strategies": {"date": "strict"},
			"consensus": {"location": "majority", "location_majority": 0.6}
		},
		"temporal": {"task_queue": "custom-queue"}
	}`)

	cfg := Default()
	require.NoError(t, LoadFile(cfg, path))

	// Non-numeric and negative weights become 0; unknown keys are dropped.
	assert.Equal(t, domain.WeightConfig{domain.AspectDate: 2, domain.AspectLocation: 0, domain.AspectMonetaryAmount: 0},
		cfg.Linkage.Weights)
	assert.Equal(t, []domain.Aspect{domain.AspectDate}, cfg.Linkage.Weights.Active())
	assert.InDelta(t, 0.6, cfg.Linkage.Threshold, 1e-9)
	assert.Equal(t, domain.StrategyStrict, cfg.Linkage.Strategy(domain.AspectDate))
	assert.Equal(t, domain.LocationMajority, cfg.Linkage.Consensus.Location)
	assert.Equal(t, "custom-queue", cfg.Temporal.TaskQueue)
	assert.Equal(t, DefaultTemporalHostPort, cfg.Temporal.HostPort, "absent keys keep defaults")
	assert.NoError(t, cfg.Validate())
}

func TestLoadFile_Errors(t *testing.T) {
	assert.Error(t, LoadFile(Default(), filepath.Join(t.TempDir(), "missing.json")))
	assert.Error(t, LoadFile(Default(), writeFile(t, "bad.json", "{not json")))
}

func TestFromEnv(t *testing.T) {
	clearEnv(t)
	t.Setenv(EnvThreshold, "0.55")
	t.Setenv(EnvWorkers, "4")
	t.Setenv(EnvKafkaBrokers, "localhost:9092, broker2:9092")

	cfg, err := FromEnv()
	require.NoError(t, err)

	assert.InDelta(t, 0.55, cfg.Linkage.Threshold, 1e-9)
	assert.Equal(t, 4, cfg.Linkage.Workers)
	assert.Equal(t, []string{"localhost:9092", "broker2:9092"}, cfg.Kafka.Brokers)
	assert.Equal(t, DefaultKafkaTopic, cfg.Kafka.Topic)
	assert.True(t, cfg.Kafka.Enabled())
}

func TestFromEnv_DotEnvFiles(t *testing.T) {
	clearEnv(t)
	envFile := writeFile(t, ".env", "TEMPORAL_TASK_QUEUE=from-dotenv\nLINKAGE_MIN_BUCKET_SIZE=3\nKAFKA_TOPIC=dotenv-topic\n")
	t.Setenv(EnvKafkaTopic, "from-process")

	cfg, err := FromEnv(envFile, filepath.Join(t.TempDir(), "missing.env"))
	require.NoError(t, err)

	assert.Equal(t, "from-dotenv", cfg.Temporal.TaskQueue)
	assert.Equal(t, 3, cfg.Linkage.MinBucketSize)
	assert.Equal(t, "from-process", cfg.Kafka.Topic, "process environment wins")
	assert.Empty(t, os.Getenv(EnvTemporalQueue), "process environment is not modified")
}

func TestFromEnv_ConfigFile(t *testing.T) {
	clearEnv(t)
	t.Setenv(EnvConfigFile, writeFile(t, "config.json", `{"linkage": {"threshold": 0.8, "min_bucket_size": 2}}`))
	t.Setenv(EnvMinBucketSize, "1")

	cfg, err := FromEnv()
	require.NoError(t, err)

	assert.InDelta(t, 0.8, cfg.Linkage.Threshold, 1e-9)
	assert.Equal(t, 1, cfg.Linkage.MinBucketSize, "environment overrides the file")
}

func TestFromEnv_Invalid(t *testing.T) {
	tests := []struct {
		key, value string
	}{
		{EnvThreshold, "high"},
		{EnvWorkers, "many"},
		{EnvThreshold, "1.5"},
		{EnvTemporalHost, "no-port"},
	}

	for _, tt := range tests {
		t.Run(tt.key+"="+tt.value, func(t *testing.T) {
			clearEnv(t)
			t.Setenv(tt.key, tt.value)

			_, err := FromEnv()
			assert.ErrorIs(t, err, ErrInvalidConfig)
		})
	}
}

func TestLoad_ExplicitFile(t *testing.T) {
	clearEnv(t)
	t.Setenv(EnvConfigFile, writeFile(t, "ignored.json", `{"linkage": {"min_bucket_size": 5}}`))
	t.Setenv(EnvThreshold, "0.65")
	path := writeFile(t, "config.json", `{
		"linkage": {
			"weights": {"date": 1, "headcount": 1},
			"tolerances": {"location_country_bonus": 0}
		}
	}`)

	cfg, err := Load(path)
	require.NoError(t, err)

	assert.InDelta(t, 0.65, cfg.Linkage.Threshold, 1e-9, "environment overrides the file")
	assert.Equal(t, domain.DefaultMinBucketSize, cfg.Linkage.MinBucketSize, "explicit path replaces LINKAGE_CONFIG_FILE")
	assert.Zero(t, cfg.Linkage.Tolerances.LocationCountryBonus)
	assert.InDelta(t, domain.DefaultDateToleranceDays, cfg.Linkage.Tolerances.DateToleranceDays, 1e-9)
	assert.Equal(t, []domain.Aspect{domain.AspectDate, domain.AspectHeadcount}, cfg.Linkage.Weights.Active())
}

func TestLoadFile_LinkageWithoutThreshold(t *testing.T) {
	cfg := Default()
	cfg.Linkage.Threshold = 0.9
	require.NoError(t, LoadFile(cfg, writeFile(t, "config.json", `{"linkage": {"workers": 2}}`)))

	assert.InDelta(t, domain.DefaultThreshold, cfg.Linkage.Threshold, 1e-9)
	assert.Equal(t, 2, cfg.Linkage.Workers)
}
