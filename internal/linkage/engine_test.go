package linkage

import (
	"context"
	"encoding/json"
	"io"
	"log/slog"
	"math"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/ahrav/go-corroborate/internal/domain"
)

func quietEngine(t *testing.T, cfg domain.LinkageConfig, opts ...Option) *Engine {
	t.Helper()
	opts = append([]Option{WithLogger(slog.New(slog.NewTextHandler(io.Discard, nil)))}, opts...)
	e, err := New(cfg, opts...)
	require.NoError(t, err)
	return e
}

func abc() []domain.Record {
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

func TestLink_ABCScenario(t *testing.T) {
	for _, strategy := range []domain.StrategyName{domain.StrategyContinuous, domain.StrategyStrict} {
		t.Run(string(strategy), func(t *testing.T) {
			cfg := domain.DefaultLinkageConfig()
			cfg.Weights = domain.WeightConfig{
				domain.AspectDate: 1, domain.AspectLocation: 1,
				domain.AspectHeadcount: 1, domain.AspectMonetaryAmount: 1,
			}
			cfg.Threshold = 0.6
			for _, a := range domain.Aspects() {
				cfg.Strategies[a] = strategy
			}

			got, err := quietEngine(t, cfg).Link(context.Background(), abc())
			require.NoError(t, err)

			require.Len(t, got.Buckets, 2)
			assert.Equal(t, []string{"A", "B"}, got.Buckets[0].EntryIDs)
			assert.Equal(t, []string{"C"}, got.Buckets[1].EntryIDs)
			require.Len(t, got.Pairwise, 1)
			assert.Equal(t, "A", got.Pairwise[0].A)
			assert.Equal(t, "B", got.Pairwise[0].B)
			assert.GreaterOrEqual(t, got.Pairwise[0].Score, 0.6)

			shared := got.Buckets[0].Explanation.SharedAspects()
			assert.Contains(t, shared, domain.AspectDate)
			assert.Contains(t, shared, domain.AspectLocation)
			assert.Contains(t, shared, domain.AspectMonetaryAmount)
		})
	}
}

func TestLink_Empty(t *testing.T) {
	got, err := quietEngine(t, domain.DefaultLinkageConfig()).Link(context.Background(), nil)
	require.NoError(t, err)

	assert.NotNil(t, got.Buckets)
	assert.NotNil(t, got.Pairwise)
	assert.Empty(t, got.Buckets)
	assert.Empty(t, got.Pairwise)
}

func TestLink_IDErrors(t *testing.T) {
	e := quietEngine(t, domain.DefaultLinkageConfig())

	_, err := e.Link(context.Background(), []domain.Record{{ID: "A"}, {ID: "B"}, {ID: "A"}})
	assert.ErrorIs(t, err, domain.ErrDuplicateRecordID)

	_, err = e.Link(context.Background(), []domain.Record{{ID: "A"}, {ID: "  "}})
	assert.ErrorIs(t, err, domain.ErrEmptyRecordID)
}

func TestLink_MalformedValuesAreAbsent(t *testing.T) {
	records := abc()
	records[0].MonetaryAmount = domain.Float(math.NaN())
	records[1].MonetaryAmount = domain.Float(math.Inf(1))

	got, err := quietEngine(t, domain.DefaultLinkageConfig()).Link(context.Background(), records)
	require.NoError(t, err)

	for _, b := range got.Buckets {
		assert.Nil(t, b.Aggregates.MonetaryAmountAvg)
		assert.False(t, b.Explanation.MonetaryAmount.Shared)
	}
}

func TestLink_MinBucketSize(t *testing.T) {
	cfg := domain.DefaultLinkageConfig()
	cfg.Threshold = 0.6
	cfg.MinBucketSize = 2

	got, err := quietEngine(t, cfg).Link(context.Background(), abc())
	require.NoError(t, err)

	require.Len(t, got.Buckets, 1)
	assert.Equal(t, []string{"A", "B"}, got.Buckets[0].EntryIDs)
	assert.Len(t, got.Pairwise, 1, "filtering never changes edges")
}

func TestLink_ThresholdOneOnlyLinksIdenticalRecords(t *testing.T) {
	records := abc()
	dup := records[0]
	dup.ID = "A2"
	records = append(records, dup)

	cfg := domain.DefaultLinkageConfig()
	cfg.Threshold = 1

	got, err := quietEngine(t, cfg).Link(context.Background(), records)
	require.NoError(t, err)

	require.Len(t, got.Buckets, 3)
	assert.Equal(t, []string{"A", "A2"}, got.Buckets[0].EntryIDs)
}

func TestLink_Cancelled(t *testing.T) {
	ctx, cancel := context.WithCancel(context.Background())
	cancel()

	_, err := quietEngine(t, domain.DefaultLinkageConfig()).Link(ctx, abc())
	assert.ErrorIs(t, err, context.Canceled)
}

func TestLink_Progress(t *testing.T) {
	var calls int
	e := quietEngine(t, domain.DefaultLinkageConfig(), WithProgress(func(done, total int) {
		calls++
		assert.LessOrEqual(t, done, total)
	}))

	_, err := e.Link(context.Background(), abc())
	require.NoError(t, err)
	assert.Equal(t, 2, calls)
}

func TestNew_InvalidConfig(t *testing.T) {
	cfg := domain.DefaultLinkageConfig()
	cfg.Threshold = 1.5

	_, err := New(cfg)
	assert.ErrorIs(t, err, domain.ErrInvalidConfig)
}

func TestLink_DecodedConfigUsesDefaultThreshold(t *testing.T) {
	var cfg domain.LinkageConfig
	require.NoError(t, json.Unmarshal([]byte(
		`{"weights": {"date": 1, "location": 1}, "tolerances": {"location_country_bonus": 0}}`), &cfg))

	e := quietEngine(t, cfg)
	assert.InDelta(t, domain.DefaultThreshold, e.Config().Threshold, 1e-9)
	assert.Zero(t, e.Config().Tolerances.LocationCountryBonus)

	jan := domain.MustParseDate("2024-01-01")
	sep := domain.MustParseDate("2024-09-01")
	got, err := e.Link(context.Background(), []domain.Record{
		{ID: "A", Date: &jan, Location: "Aleppo, Syria"},
		{ID: "B", Date: &sep, Location: "Paris, France"},
	})
	require.NoError(t, err)

	assert.Len(t, got.Buckets, 2)
	assert.Empty(t, got.Pairwise)
}

func TestLink_IDsAreKeptAsGiven(t *testing.T) {
	records := abc()
	records[0].ID = " A "
	records[1].ID = "A"

	cfg := domain.DefaultLinkageConfig()
	cfg.Weights = domain.WeightConfig{
		domain.AspectDate: 1, domain.AspectLocation: 1,
		domain.AspectHeadcount: 1, domain.AspectMonetaryAmount: 1,
	}
	cfg.Threshold = 0.6
	got, err := quietEngine(t, cfg).Link(context.Background(), records)
	require.NoError(t, err)

	require.Len(t, got.Pairwise, 1)
	assert.Equal(t, " A ", got.Pairwise[0].A)
	assert.Equal(t, "A", got.Pairwise[0].B)
	assert.Equal(t, []string{" A ", "A"}, got.Buckets[0].EntryIDs)
}
