package similarity

import (
	"github.com/ahrav/go-corroborate/internal/domain"
)

// EventTypesMatch scores 1 when the normalized event type sets are equal.
type EventTypesMatch struct{}

// Aspect implements Strategy.
func (EventTypesMatch) Aspect() domain.Aspect { return domain.AspectEventTypes }

// Compare implements Strategy.
func (EventTypesMatch) Compare(a, b *domain.Record) (float64, bool) {
	return compareSets(a.EventTypes, b.EventTypes)
}

// ConditionsMatch scores 1 when the normalized condition sets are equal.
type ConditionsMatch struct{}

// Aspect implements Strategy.
func (ConditionsMatch) Aspect() domain.Aspect { return domain.AspectConditions }

// Compare implements Strategy.
func (ConditionsMatch) Compare(a, b *domain.Record) (float64, bool) {
	return compareSets(a.Conditions, b.Conditions)
}

// TransportMatch scores 1 when the normalized transport strings are equal.
type TransportMatch struct{}

// Aspect implements Strategy.
func (TransportMatch) Aspect() domain.Aspect { return domain.AspectTransport }

// Compare implements Strategy.
func (TransportMatch) Compare(a, b *domain.Record) (float64, bool) {
	ta, tb := domain.NormalizeText(a.Transport), domain.NormalizeText(b.Transport)
	if p := presenceOf(ta != "", tb != ""); p != bothPresent {
		return missing(p)
	}
	return boolScore(ta == tb), true
}

// compareSets treats an empty normalized set as absent.
func compareSets(a, b []string) (float64, bool) {
	na, nb := domain.NormalizeSet(a), domain.NormalizeSet(b)
	if p := presenceOf(len(na) > 0, len(nb) > 0); p != bothPresent {
		return missing(p)
	}
	return boolScore(domain.EqualSets(na, nb)), true
}
