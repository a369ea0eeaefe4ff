// Package pricing evaluates the fixed linear house price model and derives
// the reporting built on top of it: contribution breakdown, feature
// importance, currency formatting and the textual report.
//
// A Model is an immutable value. It is safe to share between goroutines and
// is meant to be built once at startup and passed to whoever needs it.
package pricing

// NumAttributes is the length of every vector, coefficient set and metadata
// table handled by this package.
const NumAttributes = 7

// Attribute positions. Values, coefficients and metadata are indexed by them.
const (
	SquareFootage = iota
	Bedrooms
	Bathrooms
	YearBuilt
	LotSize
	GarageSize
	NeighborhoodQuality
)

// Attribute describes one model input.
type Attribute struct {
	Name  string `json:"name"`
	Key   string `json:"key"`
	Label string `json:"label"`
	Unit  string `json:"unit"`
}

// Vector is a complete attribute vector in positional order.
type Vector [NumAttributes]float64

// Model holds the coefficients, intercept and attribute metadata.
type Model struct {
	coefficients Vector
	intercept    float64
	attributes   [NumAttributes]Attribute
}

var (
	defaultCoefficients = Vector{
		2.50671725e+05, // Square_Footage
		1.45124232e+04, // Num_Bedrooms
		6.75987020e+03, // Num_Bathrooms
		2.04466480e+04, // Year_Built
		1.93541522e+04, // Lot_Size
		4.20157777e+03, // Garage_Size
		2.32630793e+02, // Neighborhood_Quality
	}
	defaultIntercept = 618861.0186467685
)

// New builds a Model from an explicit coefficient set. Metadata is always the
// fixed attribute table.
func New(coefficients Vector, intercept float64) Model {
	return Model{
		coefficients: coefficients,
		intercept:    intercept,
		attributes:   Attributes(),
	}
}

// Default returns the trained house price model.
func Default() Model {
	return New(defaultCoefficients, defaultIntercept)
}

// Coefficients returns a copy of the coefficient vector.
func (m Model) Coefficients() Vector { return m.coefficients }

// Intercept returns the additive base term.
func (m Model) Intercept() float64 { return m.intercept }

// Attributes returns a copy of the model's attribute metadata.
func (m Model) Attributes() [NumAttributes]Attribute { return m.attributes }

// Attributes returns the fixed attribute table.
func Attributes() [NumAttributes]Attribute {
	return [NumAttributes]Attribute{
		{Name: "Square_Footage", Key: "squareFootage", Label: "Metragem Quadrada", Unit: "m²"},
		{Name: "Num_Bedrooms", Key: "bedrooms", Label: "Número de Quartos", Unit: "quartos"},
		{Name: "Num_Bathrooms", Key: "bathrooms", Label: "Número de Banheiros", Unit: "banheiros"},
		{Name: "Year_Built", Key: "yearBuilt", Label: "Ano de Construção", Unit: "ano"},
		{Name: "Lot_Size", Key: "lotSize", Label: "Tamanho do Lote", Unit: "acres"},
		{Name: "Garage_Size", Key: "garageSize", Label: "Tamanho da Garagem", Unit: "vagas"},
		{Name: "Neighborhood_Quality", Key: "neighborhoodQuality", Label: "Qualidade do Bairro", Unit: "/10"},
	}
}
