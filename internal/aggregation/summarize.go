package aggregation

import (
	"math"
	"sort"

	"github.com/ahrav/go-corroborate/internal/domain"
	"github.com/ahrav/go-corroborate/internal/similarity"
)

// TopLocationTokens bounds BucketAggregates.LocationTokensTop.
const TopLocationTokens = 8

// Summarize computes quantitative aggregates over a bucket's members.
// It is pure and never fails; absent attributes are skipped.
func Summarize(members []domain.Record) domain.BucketAggregates {
	return domain.BucketAggregates{
		DateRange:         dateRange(members),
		LocationTokensTop: topTokens(members, TopLocationTokens),
		HeadcountAvg:      headcountAverage(members),
		MonetaryAmountAvg: monetaryAverage(members),
	}
}

// dateRange compares ISO strings, whose lexical order is chronological.
func dateRange(members []domain.Record) *domain.DateRange {
	var out *domain.DateRange
	for i := range members {
		if members[i].Date == nil || members[i].Date.IsZero() {
			continue
		}
		s := members[i].Date.String()
		if out == nil {
			out = &domain.DateRange{Min: s, Max: s}
			continue
		}
		if s < out.Min {
			out.Min = s
		}
		if s > out.Max {
			out.Max = s
		}
	}
	return out
}

// topTokens counts every token occurrence and keeps the k most frequent,
// ties broken by first appearance.
func topTokens(members []domain.Record, k int) []domain.TokenCount {
	counts := make(map[string]int)
	var order []string
	for i := range members {
		for _, tok := range similarity.TokenizeLocation(members[i].Location) {
			if counts[tok] == 0 {
				order = append(order, tok)
			}
			counts[tok]++
		}
	}

	sort.SliceStable(order, func(i, j int) bool {
		return counts[order[i]] > counts[order[j]]
	})
	if len(order) > k {
		order = order[:k]
	}

	out := make([]domain.TokenCount, len(order))
	for i, tok := range order {
		out[i] = domain.TokenCount{Token: tok, Count: counts[tok]}
	}
	return out
}

// headcountAverage averages over members that report any headcount. Missing
// sub-fields of those members count as 0.
func headcountAverage(members []domain.Record) domain.HeadcountAverage {
	var sum [4]float64
	n := 0
	for i := range members {
		if !members[i].HasHeadcount() {
			continue
		}
		v := members[i].Headcount.Vector()
		for k := range sum {
			sum[k] += v[k]
		}
		n++
	}
	if n == 0 {
		return domain.HeadcountAverage{}
	}
	avg := func(k int) float64 { return round(sum[k]/float64(n), 1) }
	return domain.HeadcountAverage{Male: avg(0), Female: avg(1), Kids: avg(2), Total: avg(3)}
}

func monetaryAverage(members []domain.Record) *float64 {
	var sum float64
	n := 0
	for i := range members {
		if members[i].MonetaryAmount == nil {
			continue
		}
		sum += *members[i].MonetaryAmount
		n++
	}
	if n == 0 {
		return nil
	}
	avg := round(sum/float64(n), 2)
	return &avg
}

func round(v float64, places int) float64 {
	p := math.Pow(10, float64(places))
	return math.Round(v*p) / p
}
