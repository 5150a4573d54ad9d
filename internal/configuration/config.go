// Package configuration holds per-process settings for the linkage worker and CLI.
//
// Settings come from three layers, later layers winning: compiled defaults,
// an optional JSON file, and environment variables (optionally seeded from
// .env files). Per-invocation linkage settings live in domain.LinkageConfig;
// this package only supplies the process-wide defaults for them.
package configuration

import (
	"fmt"

	"github.com/go-playground/validator/v10"

	"github.com/ahrav/go-corroborate/internal/domain"
)

var validate = validator.New()

// Config is the process configuration.
type Config struct {
	// Linkage is the default linkage configuration applied to requests.
	Linkage domain.LinkageConfig `json:"linkage"`

	// Temporal configures the worker connection.
	Temporal TemporalConfig `json:"temporal"`

	// Kafka configures the optional event sink.
	Kafka KafkaConfig `json:"kafka"`
}

// TemporalConfig holds the Temporal client and worker settings.
type TemporalConfig struct {
	HostPort  string `json:"host_port" validate:"required,hostname_port"`
	Namespace string `json:"namespace" validate:"required"`
	TaskQueue string `json:"task_queue" validate:"required"`
}

// KafkaConfig holds the event sink settings. No brokers disables the sink.
type KafkaConfig struct {
	Brokers []string `json:"brokers" validate:"dive,hostname_port"`
	Topic   string   `json:"topic" validate:"required_with=Brokers"`
}

// Enabled reports whether events should be published to Kafka.
func (k KafkaConfig) Enabled() bool { return len(k.Brokers) > 0 }

// Validate checks every section. Linkage settings are normalized first so
// zero values are accepted as "use the default".
func (c *Config) Validate() error {
	if err := validate.Struct(c.Temporal); err != nil {
		return fmt.Errorf("%w: temporal: %w", ErrInvalidConfig, err)
	}
	if err := validate.Struct(c.Kafka); err != nil {
		return fmt.Errorf("%w: kafka: %w", ErrInvalidConfig, err)
	}
	if err := c.Linkage.Normalize().Validate(); err != nil {
		return fmt.Errorf("%w: linkage: %w", ErrInvalidConfig, err)
	}
	return nil
}
