package similarity

import (
	"math"
	"strings"
	"unicode"

	"github.com/ahrav/go-corroborate/internal/domain"
)

// stopWords are dropped from location tokens. Articles, prepositions and
// administrative-division nouns carry no identifying signal and would inflate
// Jaccard overlap between unrelated places.
var stopWords = map[string]struct{}{
	"a": {}, "an": {}, "the": {},
	"of": {}, "in": {}, "on": {}, "at": {}, "near": {}, "by": {}, "from": {}, "to": {},
	"and": {}, "outside": {}, "between": {},
	"province": {}, "district": {}, "county": {}, "region": {}, "state": {},
	"governorate": {}, "municipality": {}, "department": {}, "prefecture": {},
	"territory": {}, "division": {}, "subdistrict": {}, "area": {}, "zone": {},
	"city": {}, "town": {}, "village": {}, "lga": {},
}

// IsStopWord reports whether a lower-cased token is dropped during tokenization.
func IsStopWord(token string) bool {
	_, ok := stopWords[token]
	return ok
}

// TokenizeLocation lower-cases the text, strips punctuation other than commas,
// splits on commas and whitespace and drops stop words. Stripped runes join
// their neighbours, so "Al-Bab" and "Albab" yield the same token.
// Token order and duplicates are preserved.
func TokenizeLocation(s string) []string {
	cleaned := strings.Map(func(r rune) rune {
		switch {
		case r == ',':
			return ','
		case unicode.IsSpace(r):
			return ' '
		case unicode.IsLetter(r) || unicode.IsDigit(r):
			return unicode.ToLower(r)
		default:
			return -1
		}
	}, s)

	fields := strings.FieldsFunc(cleaned, func(r rune) bool {
		return r == ',' || unicode.IsSpace(r)
	})

	tokens := fields[:0]
	for _, f := range fields {
		if !IsStopWord(f) {
			tokens = append(tokens, f)
		}
	}
	if len(tokens) == 0 {
		return nil
	}
	return tokens
}

// lastSegment returns the normalized text after the final comma.
// For "Aleppo, Syria" that is "syria"; for a string without commas it is the
// whole normalized string.
func lastSegment(s string) string {
	if i := strings.LastIndexByte(s, ','); i >= 0 {
		s = s[i+1:]
	}
	return domain.NormalizeText(s)
}

// LocationTokens scores locations by Jaccard similarity of their token sets
// plus a bonus when the trailing segment (conventionally the country) matches.
type LocationTokens struct {
	// CountryBonus is added when the last comma segments match. Capped at 1 overall.
	CountryBonus float64
}

// Aspect implements Strategy.
func (LocationTokens) Aspect() domain.Aspect { return domain.AspectLocation }

// Compare implements Strategy.
func (s LocationTokens) Compare(a, b *domain.Record) (float64, bool) {
	locA, locB := domain.NormalizeText(a.Location), domain.NormalizeText(b.Location)
	if p := presenceOf(locA != "", locB != ""); p != bothPresent {
		return missing(p)
	}

	tokA, tokB := TokenizeLocation(locA), TokenizeLocation(locB)
	var score float64
	if len(tokA) == 0 && len(tokB) == 0 {
		// Nothing but stop words on both sides; fall back to exact comparison.
		score = boolScore(locA == locB)
	} else {
		score = Jaccard(tokA, tokB)
	}

	if seg := lastSegment(locA); seg != "" && seg == lastSegment(locB) {
		score += s.CountryBonus
	}
	return math.Min(score, 1), true
}

// LocationExact scores 1 when the trimmed, case-folded strings are identical.
type LocationExact struct{}

// Aspect implements Strategy.
func (LocationExact) Aspect() domain.Aspect { return domain.AspectLocation }

// Compare implements Strategy.
func (LocationExact) Compare(a, b *domain.Record) (float64, bool) {
	locA, locB := domain.NormalizeText(a.Location), domain.NormalizeText(b.Location)
	if p := presenceOf(locA != "", locB != ""); p != bothPresent {
		return missing(p)
	}
	return boolScore(locA == locB), true
}

// Jaccard returns |A∩B| / |A∪B| over the distinct members of two token lists.
// Two empty lists score 0.
func Jaccard(a, b []string) float64 {
	if len(a) == 0 && len(b) == 0 {
		return 0
	}
	setA := make(map[string]struct{}, len(a))
	for _, t := range a {
		setA[t] = struct{}{}
	}
	setB := make(map[string]struct{}, len(b))
	for _, t := range b {
		setB[t] = struct{}{}
	}

	intersection := 0
	for t := range setA {
		if _, ok := setB[t]; ok {
			intersection++
		}
	}
	union := len(setA) + len(setB) - intersection
	return float64(intersection) / float64(union)
}
