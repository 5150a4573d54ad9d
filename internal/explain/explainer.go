// Package explain derives "why these records look alike" summaries for buckets.
//
// The explainer applies its own all-members-must-agree rules per aspect. Those
// rules are independent of the weights and threshold that formed the bucket,
// so a bucket may report zero shared aspects, and explaining a bucket never
// changes its membership.
package explain

import (
	"math"

	"github.com/ahrav/go-corroborate/internal/domain"
)

// epsilon absorbs floating-point noise in tolerance comparisons.
const epsilon = 1e-9

// Explainer evaluates consensus rules over bucket members.
// An Explainer is immutable and safe for concurrent use.
type Explainer struct {
	cfg domain.ConsensusConfig
}

// New creates an explainer. An unset location rule takes its default; zero
// tolerances require exact agreement.
func New(cfg domain.ConsensusConfig) *Explainer {
	return &Explainer{cfg: cfg.WithDefaults()}
}

// Config returns the effective consensus rules.
func (e *Explainer) Config() domain.ConsensusConfig { return e.cfg }

// Explain evaluates every aspect over members. An aspect is never marked
// shared when any member lacks the attribute.
func (e *Explainer) Explain(members []domain.Record) domain.Explanation {
	exp := domain.Explanation{
		Date:           e.date(members),
		Location:       e.location(members),
		Headcount:      make(map[domain.HeadcountField]domain.Consensus, len(domain.HeadcountFields())),
		MonetaryAmount: e.monetary(members),
		EventTypes:     sets(members, func(r *domain.Record) []string { return r.EventTypes }),
		Transport:      text(members, func(r *domain.Record) string { return r.Transport }),
		Conditions:     sets(members, func(r *domain.Record) []string { return r.Conditions }),
	}
	for _, f := range domain.HeadcountFields() {
		exp.Headcount[f] = e.headcount(members, f)
	}
	return exp
}

func (e *Explainer) date(members []domain.Record) domain.Consensus {
	if len(members) == 0 {
		return domain.Consensus{}
	}
	var lo, hi domain.Date
	for i := range members {
		d := members[i].Date
		if d == nil || d.IsZero() {
			return domain.Consensus{}
		}
		if i == 0 || d.Time().Before(lo.Time()) {
			lo = *d
		}
		if i == 0 || d.Time().After(hi.Time()) {
			hi = *d
		}
	}
	return domain.Consensus{
		Shared:  within(hi.DaysBetween(lo), e.cfg.DateSpanDays),
		Display: FormatRange(lo.String(), hi.String()),
		Values:  []string{lo.String(), hi.String()},
	}
}

func (e *Explainer) location(members []domain.Record) domain.Consensus {
	if len(members) == 0 {
		return domain.Consensus{}
	}
	counts := make(map[string]int, len(members))
	var order []string
	for i := range members {
		loc := domain.NormalizeText(members[i].Location)
		if loc == "" {
			return domain.Consensus{}
		}
		if counts[loc] == 0 {
			order = append(order, loc)
		}
		counts[loc]++
	}

	// Most common value, ties to the first seen.
	top := order[0]
	for _, loc := range order[1:] {
		if counts[loc] > counts[top] {
			top = loc
		}
	}

	shared := len(order) == 1
	if !shared && e.cfg.Location == domain.LocationMajority {
		shared = float64(counts[top])/float64(len(members)) >= e.cfg.LocationMajority-epsilon
	}
	if !shared {
		return domain.Consensus{Values: order}
	}
	return domain.Consensus{Shared: true, Display: top, Values: []string{top}}
}

func (e *Explainer) headcount(members []domain.Record, f domain.HeadcountField) domain.Consensus {
	tolerance := e.cfg.HeadcountSubFieldTolerance
	if f == domain.HeadcountTotal {
		tolerance = e.cfg.HeadcountTotalTolerance
	}
	values := make([]float64, 0, len(members))
	for i := range members {
		v, ok := members[i].Headcount.Field(f)
		if !ok {
			return domain.Consensus{}
		}
		values = append(values, v)
	}
	c, ok := numericRange(values)
	if !ok {
		return c
	}
	// max-min bounds every pairwise difference.
	c.Shared = within(*c.Max-*c.Min, tolerance)
	return c
}

func (e *Explainer) monetary(members []domain.Record) domain.Consensus {
	values := make([]float64, 0, len(members))
	for i := range members {
		if members[i].MonetaryAmount == nil {
			return domain.Consensus{}
		}
		values = append(values, *members[i].MonetaryAmount)
	}
	c, ok := numericRange(values)
	if !ok {
		return c
	}

	var sum float64
	for _, v := range values {
		sum += v
	}
	mean := sum / float64(len(values))
	c.Mean = &mean

	var deviation float64
	if mean > 0 {
		for _, v := range values {
			deviation = math.Max(deviation, math.Abs(v-mean)/mean)
		}
	}
	c.Shared = within(deviation, e.cfg.MonetaryDeviation)
	return c
}

// numericRange fills Min, Max and Display. ok is false for an empty input.
func numericRange(values []float64) (domain.Consensus, bool) {
	if len(values) == 0 {
		return domain.Consensus{}, false
	}
	lo, hi := values[0], values[0]
	for _, v := range values[1:] {
		lo = math.Min(lo, v)
		hi = math.Max(hi, v)
	}
	return domain.Consensus{
		Display: FormatRange(FormatNumber(lo), FormatNumber(hi)),
		Min:     &lo,
		Max:     &hi,
	}, true
}

func text(members []domain.Record, get func(*domain.Record) string) domain.Consensus {
	if len(members) == 0 {
		return domain.Consensus{}
	}
	first := domain.NormalizeText(get(&members[0]))
	if first == "" {
		return domain.Consensus{}
	}
	for i := range members[1:] {
		if domain.NormalizeText(get(&members[i+1])) != first {
			return domain.Consensus{}
		}
	}
	return domain.Consensus{Shared: true, Display: first, Values: []string{first}}
}

func sets(members []domain.Record, get func(*domain.Record) []string) domain.Consensus {
	none := domain.Consensus{Display: domain.NoSharedValue}
	if len(members) == 0 {
		return none
	}
	first := domain.NormalizeSet(get(&members[0]))
	if len(first) == 0 {
		return none
	}
	for i := range members[1:] {
		if !domain.EqualSets(first, domain.NormalizeSet(get(&members[i+1]))) {
			return none
		}
	}
	return domain.Consensus{Shared: true, Display: FormatSet(first), Values: first}
}

func within(diff, tolerance float64) bool {
	return diff <= tolerance+epsilon
}
