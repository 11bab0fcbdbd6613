package domain

import (
	"errors"

	"github.com/shopspring/decimal"
)

// RawQuote is one currency record as the provider returns it, rates expressed
// against the provider's declared base currency.
type RawQuote struct {
	Code string `json:"code"`
	Name string `json:"name"`
	Rate Number `json:"rate"`
}

// RawMetalQuote is one gold/silver record. There is no single rate field;
// the canonical rate is the buying price.
type RawMetalQuote struct {
	Name    string `json:"name"`
	Buying  Number `json:"buying"`
	Selling Number `json:"selling"`
}

// NormalizedQuote is the canonical per-key result of normalization:
// 1 unit of the asset = Rate units of the reference currency.
type NormalizedQuote struct {
	Key         string
	DisplayName string
	Buying      float64
	Selling     float64
	Rate        float64
}

// Convention declares how a provider endpoint expresses raw rates.
type Convention int

const (
	// ConventionDirect: the provider quotes "1 asset unit = R quote units".
	ConventionDirect Convention = iota
	// ConventionBasisDivided: the provider quotes "basisAmount quote units
	// = R asset units"; the canonical value is basisAmount / R.
	ConventionBasisDivided
)

// Shape is the per-endpoint rate encoding the normalizer must be told about.
// The zero value is ConventionDirect; Basis only matters for
// ConventionBasisDivided quotes.
type Shape struct {
	Convention Convention
	Basis      decimal.Decimal
}

var (
	errNonPositiveRate  = errors.New("non-positive rate")
	errNonPositiveBasis = errors.New("non-positive basis amount")
)

// CanonicalRate converts one raw provider rate into the asset's value in
// quote-currency units for the given convention. Raw rates that are zero or
// negative are rejected.
func CanonicalRate(conv Convention, basisAmount, raw decimal.Decimal) (decimal.Decimal, error) {
	if !raw.IsPositive() {
		return decimal.Zero, errNonPositiveRate
	}
	switch conv {
	case ConventionBasisDivided:
		if !basisAmount.IsPositive() {
			return decimal.Zero, errNonPositiveBasis
		}
		return basisAmount.Div(raw), nil
	default:
		return raw, nil
	}
}

// FindReferenceRate locates the reference currency inside a base-quoted
// payload and returns its raw rate (the value of 1 reference unit in base
// units). The provider does not offer a reference-based endpoint, so every
// cross rate is derived from this one record.
func FindReferenceRate(raw []RawQuote, refCode string) (decimal.Decimal, bool) {
	for _, q := range raw {
		if q.Code != refCode {
			continue
		}
		d, err := q.Rate.Decimal()
		if err != nil || !d.IsPositive() {
			return decimal.Zero, false
		}
		return d, true
	}
	return decimal.Zero, false
}

// NormalizeCurrencies converts a quote-currency payload into canonical
// reference-currency rates. Each record's raw rate goes through CanonicalRate
// under the endpoint's declared shape to get the asset's value in quote
// units; refRate is the reference currency's raw rate from the same payload,
// converted the same way, and the canonical rate is the ratio of the two.
// The reference currency itself is pinned to exactly 1. Untracked codes are
// dropped silently; records with unparsable, zero or negative rates are
// returned in dropped so the caller can log them without aborting the batch.
func NormalizeCurrencies(raw []RawQuote, tracked []string, refCode string, refRate decimal.Decimal, shape Shape) (out []NormalizedQuote, dropped []RawQuote) {
	refVal, err := CanonicalRate(shape.Convention, shape.Basis, refRate)
	if err != nil || !refVal.IsPositive() {
		return nil, raw
	}
	allow := allowList(tracked)
	for _, q := range raw {
		if !allow[q.Code] {
			continue
		}
		if q.Code == refCode {
			out = append(out, NormalizedQuote{Key: q.Code, DisplayName: q.Name, Rate: 1})
			continue
		}
		d, err := q.Rate.Decimal()
		if err != nil {
			dropped = append(dropped, q)
			continue
		}
		val, err := CanonicalRate(shape.Convention, shape.Basis, d)
		if err != nil {
			dropped = append(dropped, q)
			continue
		}
		out = append(out, NormalizedQuote{
			Key:         q.Code,
			DisplayName: q.Name,
			Rate:        val.Div(refVal).InexactFloat64(),
		})
	}
	return out, dropped
}

// NormalizeMetals converts gold/silver records into canonical quotes. The
// canonical rate is the buying price passed through the endpoint's shape;
// records with a non-positive buying or selling price are dropped.
func NormalizeMetals(raw []RawMetalQuote, tracked []string, shape Shape) (out []NormalizedQuote, dropped []RawMetalQuote) {
	allow := allowList(tracked)
	for _, q := range raw {
		if !allow[q.Name] {
			continue
		}
		buying, err := q.Buying.Decimal()
		if err != nil {
			dropped = append(dropped, q)
			continue
		}
		selling, err := q.Selling.Decimal()
		if err != nil || !selling.IsPositive() {
			dropped = append(dropped, q)
			continue
		}
		rate, err := CanonicalRate(shape.Convention, shape.Basis, buying)
		if err != nil {
			dropped = append(dropped, q)
			continue
		}
		out = append(out, NormalizedQuote{
			Key:         q.Name,
			DisplayName: q.Name,
			Buying:      buying.InexactFloat64(),
			Selling:     selling.InexactFloat64(),
			Rate:        rate.InexactFloat64(),
		})
	}
	return out, dropped
}

func allowList(keys []string) map[string]bool {
	m := make(map[string]bool, len(keys))
	for _, k := range keys {
		m[k] = true
	}
	return m
}
