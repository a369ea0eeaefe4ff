package pricing

import "math"

// Features is a caller-supplied attribute set. Nil fields are missing values.
// JSON keys follow the form field names.
type Features struct {
	SquareFootage       *float64 `json:"squareFootage"`
	Bedrooms            *float64 `json:"bedrooms"`
	Bathrooms           *float64 `json:"bathrooms"`
	YearBuilt           *float64 `json:"yearBuilt"`
	LotSize             *float64 `json:"lotSize"`
	GarageSize          *float64 `json:"garageSize"`
	NeighborhoodQuality *float64 `json:"neighborhoodQuality"`
}

// NewFeatures fills attributes positionally. Positions beyond len(values)
// stay missing; extra values are ignored.
func NewFeatures(values ...float64) Features {
	var f Features
	for i, v := range values {
		if i >= NumAttributes {
			break
		}
		f.Set(i, v)
	}
	return f
}

func (f *Features) fields() [NumAttributes]**float64 {
	return [NumAttributes]**float64{
		&f.SquareFootage,
		&f.Bedrooms,
		&f.Bathrooms,
		&f.YearBuilt,
		&f.LotSize,
		&f.GarageSize,
		&f.NeighborhoodQuality,
	}
}

// Set stores v at position i. Out of range positions are ignored.
func (f *Features) Set(i int, v float64) {
	if i < 0 || i >= NumAttributes {
		return
	}
	*f.fields()[i] = &v
}

// Values returns the attribute pointers in positional order.
func (f Features) Values() [NumAttributes]*float64 {
	return [NumAttributes]*float64{
		f.SquareFootage,
		f.Bedrooms,
		f.Bathrooms,
		f.YearBuilt,
		f.LotSize,
		f.GarageSize,
		f.NeighborhoodQuality,
	}
}

// Vector validates f and returns the complete vector.
func (f Features) Vector() (Vector, error) {
	var v Vector
	for i, p := range f.Values() {
		if p == nil {
			return Vector{}, &InvalidInputError{Attribute: attributeName(i), Reason: ReasonMissing}
		}
		if err := checkValue(i, *p); err != nil {
			return Vector{}, err
		}
		v[i] = *p
	}
	return v, nil
}

// Features converts a complete vector back into the optional form.
func (v Vector) Features() Features {
	return NewFeatures(v[:]...)
}

// Validate reports the first value that is NaN, infinite or negative.
func (v Vector) Validate() error {
	for i, x := range v {
		if err := checkValue(i, x); err != nil {
			return err
		}
	}
	return nil
}

func checkValue(i int, x float64) error {
	switch {
	case math.IsNaN(x):
		return &InvalidInputError{Attribute: attributeName(i), Reason: ReasonNotNumber, Value: x}
	case math.IsInf(x, 0):
		return &InvalidInputError{Attribute: attributeName(i), Reason: ReasonInfinite, Value: x}
	case x < 0:
		return &InvalidInputError{Attribute: attributeName(i), Reason: ReasonNegative, Value: x}
	}
	return nil
}

func attributeName(i int) string {
	return Attributes()[i].Name
}
