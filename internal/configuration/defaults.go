package configuration

import (
	"errors"

	"github.com/ahrav/go-corroborate/internal/domain"
)

// ErrInvalidConfig indicates the process configuration failed validation.
var ErrInvalidConfig = errors.New("invalid process configuration")

// Temporal connection defaults.
const (
	DefaultTemporalHostPort  = "localhost:7233"
	DefaultTemporalNamespace = "default"
	DefaultTaskQueue         = "record-linkage"
)

// DefaultKafkaTopic is used when brokers are configured without a topic.
const DefaultKafkaTopic = "linkage-events"

// Default returns a configuration with local-development defaults.
// The Kafka sink is disabled until brokers are configured.
func Default() *Config {
	return &Config{
		Linkage: domain.DefaultLinkageConfig(),
		Temporal: TemporalConfig{
			HostPort:  DefaultTemporalHostPort,
			Namespace: DefaultTemporalNamespace,
			TaskQueue: DefaultTaskQueue,
		},
		Kafka: KafkaConfig{Topic: DefaultKafkaTopic},
	}
}
