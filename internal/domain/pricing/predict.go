package pricing

// Prediction is the self-contained result of Predict. A renderer needs no
// other state to display it.
type Prediction struct {
	// Price is the estimate, floored at zero.
	Price float64
	// RawPrice is the unclamped linear sum.
	RawPrice float64

	Values        Vector
	Contributions Vector
	Intercept     float64
	Attributes    [NumAttributes]Attribute
}

// Clamped reports whether the raw sum was negative and the price floored.
func (p Prediction) Clamped() bool { return p.RawPrice < 0 }

// Names returns the attribute identifiers in positional order.
func (p Prediction) Names() [NumAttributes]string {
	var out [NumAttributes]string
	for i, a := range p.Attributes {
		out[i] = a.Name
	}
	return out
}

// Labels returns the display labels in positional order.
func (p Prediction) Labels() [NumAttributes]string {
	var out [NumAttributes]string
	for i, a := range p.Attributes {
		out[i] = a.Label
	}
	return out
}

// Units returns the unit strings in positional order.
func (p Prediction) Units() [NumAttributes]string {
	var out [NumAttributes]string
	for i, a := range p.Attributes {
		out[i] = a.Unit
	}
	return out
}

// Predict validates f and evaluates the model. Any missing, NaN, infinite or
// negative value fails with *InvalidInputError before computation.
func (m Model) Predict(f Features) (Prediction, error) {
	v, err := f.Vector()
	if err != nil {
		return Prediction{}, err
	}
	return m.evaluate(v), nil
}

// PredictVector is Predict for an already complete vector.
func (m Model) PredictVector(v Vector) (Prediction, error) {
	if err := v.Validate(); err != nil {
		return Prediction{}, err
	}
	return m.evaluate(v), nil
}

// evaluate computes intercept + Σ coefficient·value in positional order.
// Each product is converted to float64 explicitly so the compiler cannot
// fuse it into the running sum; results are identical on every GOARCH.
func (m Model) evaluate(v Vector) Prediction {
	p := Prediction{
		Values:     v,
		Intercept:  m.intercept,
		Attributes: m.attributes,
	}
	sum := m.intercept
	for i := range v {
		p.Contributions[i] = float64(m.coefficients[i] * v[i])
		sum += p.Contributions[i]
	}
	p.RawPrice = sum
	p.Price = sum
	if sum < 0 {
		p.Price = 0
	}
	return p
}
