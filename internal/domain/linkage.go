package domain

import (
	"fmt"
	"strings"
)

// NoSharedValue is the display value for set aspects without consensus.
const NoSharedValue = "no shared value"

// SimilarityEdge links two records whose overall similarity reached the threshold.
// A is always the record that appears first in the input batch.
type SimilarityEdge struct {
	A     string  `json:"a" validate:"required"`
	B     string  `json:"b" validate:"required"`
	Score float64 `json:"score" validate:"gte=0,lte=1"`
}

// DateRange is the span of dates reported by a bucket's members, in ISO form.
type DateRange struct {
	Min string `json:"min"`
	Max string `json:"max"`
}

// TokenCount is one location token and the number of times members used it.
type TokenCount struct {
	Token string `json:"token"`
	Count int    `json:"count"`
}

// HeadcountAverage holds per-component means rounded to one decimal.
type HeadcountAverage struct {
	Male   float64 `json:"male"`
	Female float64 `json:"female"`
	Kids   float64 `json:"kids"`
	Total  float64 `json:"total"`
}

// BucketAggregates are read-only quantitative summaries of a bucket.
type BucketAggregates struct {
	// DateRange is nil when no member has a date.
	DateRange *DateRange `json:"date_range,omitempty"`

	// LocationTokensTop lists the most frequent location tokens.
	LocationTokensTop []TokenCount `json:"location_tokens_top"`

	// HeadcountAvg is all zeros when no member has headcount data.
	HeadcountAvg HeadcountAverage `json:"headcount_avg"`

	// MonetaryAmountAvg is nil when no member has an amount.
	MonetaryAmountAvg *float64 `json:"monetary_amount_avg"`
}

// Consensus reports whether one aspect is shared by every member of a bucket.
// Raw values are returned alongside a display string so callers can apply
// their own locale formatting to dates and amounts.
type Consensus struct {
	// Shared is true only when every member has the attribute and the aspect's
	// consensus rule holds.
	Shared bool `json:"shared"`

	// Display is the rendered shared value ("min" or "min–max" for ranges,
	// comma-joined for sets). Set aspects without consensus show NoSharedValue.
	Display string `json:"display,omitempty"`

	// Min and Max carry the raw numeric range for numeric aspects.
	Min *float64 `json:"min,omitempty"`
	Max *float64 `json:"max,omitempty"`

	// Mean is populated for monetary amounts.
	Mean *float64 `json:"mean,omitempty"`

	// Values carries raw string values: the ISO min/max for dates, the shared
	// normalized string for text aspects, and the shared set for set aspects.
	Values []string `json:"values,omitempty"`
}

// Explanation summarizes which aspects a bucket's members commonly share.
type Explanation struct {
	Date           Consensus                    `json:"date"`
	Location       Consensus                    `json:"location"`
	Headcount      map[HeadcountField]Consensus `json:"counts"`
	MonetaryAmount Consensus                    `json:"ransom"`
	EventTypes     Consensus                    `json:"event_types"`
	Transport      Consensus                    `json:"transport"`
	Conditions     Consensus                    `json:"conditions"`
}

// SharedAspects lists the aspects marked shared, in canonical order.
// Headcount counts as shared when at least one sub-field is.
func (e Explanation) SharedAspects() []Aspect {
	var shared []Aspect
	for _, a := range Aspects() {
		if e.IsShared(a) {
			shared = append(shared, a)
		}
	}
	return shared
}

// IsShared reports whether aspect a is marked shared.
func (e Explanation) IsShared(a Aspect) bool {
	switch a {
	case AspectDate:
		return e.Date.Shared
	case AspectLocation:
		return e.Location.Shared
	case AspectHeadcount:
		for _, c := range e.Headcount {
			if c.Shared {
				return true
			}
		}
		return false
	case AspectMonetaryAmount:
		return e.MonetaryAmount.Shared
	case AspectEventTypes:
		return e.EventTypes.Shared
	case AspectTransport:
		return e.Transport.Shared
	case AspectConditions:
		return e.Conditions.Shared
	}
	return false
}

// Bucket is a maximal group of records transitively connected by edges.
type Bucket struct {
	// ID is derived deterministically from the member ids.
	ID string `json:"bucket_id" validate:"required"`

	// EntryIDs lists members in input order. Never empty.
	EntryIDs []string `json:"entry_ids" validate:"required,min=1"`

	// InternalEdges are the edges whose endpoints are both members.
	InternalEdges []SimilarityEdge `json:"internal_edges"`

	Aggregates  BucketAggregates `json:"aggregates"`
	Explanation Explanation      `json:"explanation"`
}

// Size returns the number of members.
func (b *Bucket) Size() int { return len(b.EntryIDs) }

// LinkageResult is the output of one linkage invocation.
type LinkageResult struct {
	// Buckets are ordered by descending size, ties by first discovery.
	Buckets []Bucket `json:"buckets"`

	// Pairwise lists every edge at or above the threshold in scan order.
	Pairwise []SimilarityEdge `json:"pairwise"`
}

// LinkageRequest is the input of the linkage workflow.
type LinkageRequest struct {
	// Records is the normalized batch. An empty batch is valid.
	Records []Record `json:"records" validate:"dive"`

	// Config configures weights, threshold, strategies and consensus rules.
	Config LinkageConfig `json:"config" validate:"-"`

	// ClientIdempotencyKey enables deterministic event generation.
	ClientIdempotencyKey string `json:"client_idempotency_key" validate:"required"`
}

// Validate checks the request contract and the configuration.
func (r *LinkageRequest) Validate() error {
	if err := validate.Struct(r); err != nil {
		return fmt.Errorf("%w: %w", ErrInvalidRequest, err)
	}
	if err := r.Config.Normalize().Validate(); err != nil {
		return err
	}
	return CheckRecordIDs(r.Records)
}

// ScorePairsInput is the input of the ScorePairs activity.
type ScorePairsInput struct {
	Records              []Record      `json:"records" validate:"dive"`
	Config               LinkageConfig `json:"config" validate:"-"`
	ClientIdempotencyKey string        `json:"client_idempotency_key" validate:"required"`
}

// Validate checks the activity contract.
func (s *ScorePairsInput) Validate() error {
	if err := validate.Struct(s); err != nil {
		return fmt.Errorf("%w: %w", ErrInvalidRequest, err)
	}
	if err := s.Config.Normalize().Validate(); err != nil {
		return err
	}
	return CheckRecordIDs(s.Records)
}

// ScorePairsOutput carries the qualifying edges of a pairwise scan.
type ScorePairsOutput struct {
	// Edges are the pairs at or above the threshold, in scan order.
	Edges []SimilarityEdge `json:"edges" validate:"dive"`

	// Comparisons is the number of pairs scored.
	Comparisons int `json:"comparisons" validate:"gte=0"`
}

// Validate checks the activity output contract.
func (s *ScorePairsOutput) Validate() error { return validate.Struct(s) }

// BuildBucketsInput is the input of the BuildBuckets activity.
type BuildBucketsInput struct {
	Records              []Record         `json:"records" validate:"dive"`
	Edges                []SimilarityEdge `json:"edges" validate:"dive"`
	Config               LinkageConfig    `json:"config" validate:"-"`
	ClientIdempotencyKey string           `json:"client_idempotency_key" validate:"required"`
}

// Validate checks the activity contract.
func (b *BuildBucketsInput) Validate() error {
	if err := validate.Struct(b); err != nil {
		return fmt.Errorf("%w: %w", ErrInvalidRequest, err)
	}
	if err := b.Config.Normalize().Validate(); err != nil {
		return err
	}
	return CheckRecordIDs(b.Records)
}

// CheckRecordIDs verifies every id is non-blank and unique within the batch.
// Ids are compared exactly as given.
func CheckRecordIDs(records []Record) error {
	seen := make(map[string]struct{}, len(records))
	for i := range records {
		id := records[i].ID
		if strings.TrimSpace(id) == "" {
			return fmt.Errorf("%w: record at index %d", ErrEmptyRecordID, i)
		}
		if _, dup := seen[id]; dup {
			return fmt.Errorf("%w: %q", ErrDuplicateRecordID, id)
		}
		seen[id] = struct{}{}
	}
	return nil
}
