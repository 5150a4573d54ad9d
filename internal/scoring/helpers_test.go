package scoring

import (
	"context"
	"errors"
	"sync"

	"github.com/ahrav/go-corroborate/internal/domain"
	"github.com/ahrav/go-corroborate/pkg/events"
)

const testClientKey = "client-key-deterministic"

// capturingSink records appended envelopes and drops idempotent repeats.
type capturingSink struct {
	mu       sync.Mutex
	events   []events.Envelope
	seen     map[string]bool
	failures int
}

func newCapturingSink() *capturingSink {
	return &capturingSink{seen: make(map[string]bool)}
}

func (c *capturingSink) Append(_ context.Context, env events.Envelope) error {
	c.mu.Lock()
	defer c.mu.Unlock()

	if c.failures > 0 {
		c.failures--
		return errors.New("simulated event sink failure")
	}
	if c.seen[env.IdempotencyKey] {
		return nil
	}
	c.seen[env.IdempotencyKey] = true
	c.events = append(c.events, env)
	return nil
}

func (c *capturingSink) byType(t domain.EventType) []events.Envelope {
	c.mu.Lock()
	defer c.mu.Unlock()

	var out []events.Envelope
	for _, e := range c.events {
		if e.Type == string(t) {
			out = append(out, e)
		}
	}
	return out
}

// fixedStrategy returns a canned score for one aspect.
type fixedStrategy struct {
	aspect  domain.Aspect
	score   float64
	defined bool
}

func (f fixedStrategy) Aspect() domain.Aspect { return f.aspect }

func (f fixedStrategy) Compare(_, _ *domain.Record) (float64, bool) { return f.score, f.defined }

// abcRecords is the canonical A/B/C batch: A and B describe one incident.
func abcRecords() []domain.Record {
	a := domain.MustParseDate("2024-01-01")
	b := domain.MustParseDate("2024-01-02")
	c := domain.MustParseDate("2024-06-01")
	return []domain.Record{
		{ID: "A", Date: &a, Location: "Aleppo, Syria",
			Headcount: &domain.Headcount{Total: domain.Float(4)}, MonetaryAmount: domain.Float(1000)},
		{ID: "B", Date: &b, Location: "Aleppo, Syria",
			Headcount: &domain.Headcount{Total: domain.Float(5)}, MonetaryAmount: domain.Float(1050)},
		{ID: "C", Date: &c, Location: "Paris, France",
			Headcount: &domain.Headcount{Total: domain.Float(2)}},
	}
}

// abcConfig weighs the four aspects the A/B/C batch carries.
func abcConfig() domain.LinkageConfig {
	cfg := domain.DefaultLinkageConfig()
	cfg.Weights = domain.WeightConfig{
		domain.AspectDate: 1, domain.AspectLocation: 1,
		domain.AspectHeadcount: 1, domain.AspectMonetaryAmount: 1,
	}
	cfg.Threshold = 0.6
	return cfg
}
