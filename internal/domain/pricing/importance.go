package pricing

import (
	"math"
	"sort"
)

// Importance ranks one attribute by the magnitude of its coefficient.
type Importance struct {
	Name        string  `json:"name"`
	Label       string  `json:"label"`
	Coefficient float64 `json:"coefficient"`
	Importance  float64 `json:"importance"`
}

// Importance returns all attributes ordered by descending |coefficient|.
// Equal magnitudes keep their positional order.
func (m Model) Importance() []Importance {
	out := make([]Importance, NumAttributes)
	for i, a := range m.attributes {
		out[i] = Importance{
			Name:        a.Name,
			Label:       a.Label,
			Coefficient: m.coefficients[i],
			Importance:  math.Abs(m.coefficients[i]),
		}
	}
	sort.SliceStable(out, func(i, j int) bool {
		return out[i].Importance > out[j].Importance
	})
	return out
}
