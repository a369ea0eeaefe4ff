// Package limits holds the plausibility ranges a caller checks before asking
// the pricing model for an estimate. The model itself only rejects missing,
// non-numeric and negative values; these ranges are a form-level concern.
package limits

import (
	"errors"
	"fmt"
	"math"
	"strconv"
	"strings"

	"github.com/okian/houseprice/internal/domain/pricing"
)

// ErrOutOfRange is wrapped by every Violations error.
var ErrOutOfRange = errors.New("attribute out of range")

// Range is an interval over one attribute.
type Range struct {
	Min          float64 `json:"min"`
	Max          float64 `json:"max"`
	MinInclusive bool    `json:"min_inclusive"`
	MaxInclusive bool    `json:"max_inclusive"`
}

// Contains reports whether v lies within r. NaN is never contained.
func (r Range) Contains(v float64) bool {
	if math.IsNaN(v) {
		return false
	}
	lower := v > r.Min || (r.MinInclusive && v == r.Min)
	upper := v < r.Max || (r.MaxInclusive && v == r.Max)
	return lower && upper
}

func (r Range) String() string {
	open, closing := "(", ")"
	if r.MinInclusive {
		open = "["
	}
	if r.MaxInclusive {
		closing = "]"
	}
	return open + formatBound(r.Min) + ", " + formatBound(r.Max) + closing
}

func formatBound(v float64) string {
	return strconv.FormatFloat(v, 'f', -1, 64)
}

// Limits assigns a Range to every attribute position.
type Limits [pricing.NumAttributes]Range

// Default returns the ranges accepted by the estimation form.
func Default() Limits {
	return Limits{
		pricing.SquareFootage:       {Min: 0, Max: 50000},
		pricing.Bedrooms:            {Min: 0, Max: 20, MinInclusive: true, MaxInclusive: true},
		pricing.Bathrooms:           {Min: 0, Max: 20, MinInclusive: true, MaxInclusive: true},
		pricing.YearBuilt:           {Min: 1900, Max: 2100, MinInclusive: true, MaxInclusive: true},
		pricing.LotSize:             {Min: 0, Max: 1000},
		pricing.GarageSize:          {Min: 0, Max: 10, MinInclusive: true, MaxInclusive: true},
		pricing.NeighborhoodQuality: {Min: 1, Max: 10, MinInclusive: true, MaxInclusive: true},
	}
}

// Violation describes one attribute outside its range. Value is nil when the
// attribute was missing.
type Violation struct {
	Attribute string   `json:"attribute"`
	Label     string   `json:"label"`
	Value     *float64 `json:"value"`
	Range     Range    `json:"range"`
}

func (v Violation) String() string {
	if v.Value == nil {
		return v.Attribute + " is missing (expected " + v.Range.String() + ")"
	}
	return fmt.Sprintf("%s=%s outside %s", v.Attribute, formatBound(*v.Value), v.Range)
}

// Violations lists every attribute that failed Check, in positional order.
type Violations []Violation

func (vs Violations) Error() string {
	parts := make([]string, len(vs))
	for i, v := range vs {
		parts[i] = v.String()
	}
	return ErrOutOfRange.Error() + ": " + strings.Join(parts, "; ")
}

// Unwrap exposes ErrOutOfRange to errors.Is.
func (vs Violations) Unwrap() error { return ErrOutOfRange }

// Check returns Violations when any attribute of f is missing or out of
// range, nil otherwise.
func (l Limits) Check(f pricing.Features) error {
	attrs := pricing.Attributes()
	var out Violations
	for i, p := range f.Values() {
		if p != nil && l[i].Contains(*p) {
			continue
		}
		out = append(out, Violation{
			Attribute: attrs[i].Name,
			Label:     attrs[i].Label,
			Value:     p,
			Range:     l[i],
		})
	}
	if len(out) == 0 {
		return nil
	}
	return out
}
