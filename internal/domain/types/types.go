// Package types contains the JSON shapes shared by the HTTP API and its client.
package types

import (
	"time"

	"github.com/okian/houseprice/internal/domain/limits"
	"github.com/okian/houseprice/internal/domain/model"
	"github.com/okian/houseprice/internal/domain/pricing"
)

// AttributeBreakdown is one attribute of a prediction with its contribution.
type AttributeBreakdown struct {
	Name                  string  `json:"name"`
	Key                   string  `json:"key"`
	Label                 string  `json:"label"`
	Unit                  string  `json:"unit"`
	Value                 float64 `json:"value"`
	Contribution          float64 `json:"contribution"`
	FormattedContribution string  `json:"formatted_contribution"`
}

// Prediction is the response of POST /predict.
type Prediction struct {
	Price              float64              `json:"price"`
	FormattedPrice     string               `json:"formatted_price"`
	Clamped            bool                 `json:"clamped"`
	Intercept          float64              `json:"intercept"`
	FormattedIntercept string               `json:"formatted_intercept"`
	Attributes         []AttributeBreakdown `json:"attributes"`
}

// NewPrediction converts a model prediction into its response shape.
func NewPrediction(p pricing.Prediction) Prediction {
	out := Prediction{
		Price:              p.Price,
		FormattedPrice:     pricing.FormatCurrency(p.Price),
		Clamped:            p.Clamped(),
		Intercept:          p.Intercept,
		FormattedIntercept: pricing.FormatCurrency(p.Intercept),
		Attributes:         make([]AttributeBreakdown, pricing.NumAttributes),
	}
	for i, a := range p.Attributes {
		out.Attributes[i] = AttributeBreakdown{
			Name:                  a.Name,
			Key:                   a.Key,
			Label:                 a.Label,
			Unit:                  a.Unit,
			Value:                 p.Values[i],
			Contribution:          p.Contributions[i],
			FormattedContribution: pricing.FormatCurrency(p.Contributions[i]),
		}
	}
	return out
}

// LegacyPrice is the response of POST /prever.
type LegacyPrice struct {
	Price float64 `json:"price"`
}

// LegacyError is the error body of POST /prever.
type LegacyError struct {
	Error string `json:"error"`
}

// RankedImportance is one entry of GET /importance.
type RankedImportance struct {
	Rank        int     `json:"rank"`
	Name        string  `json:"name"`
	Label       string  `json:"label"`
	Coefficient float64 `json:"coefficient"`
	Importance  float64 `json:"importance"`
}

// NewRanking numbers an importance list starting at 1.
func NewRanking(in []pricing.Importance) []RankedImportance {
	out := make([]RankedImportance, len(in))
	for i, imp := range in {
		out[i] = RankedImportance{
			Rank:        i + 1,
			Name:        imp.Name,
			Label:       imp.Label,
			Coefficient: imp.Coefficient,
			Importance:  imp.Importance,
		}
	}
	return out
}

// ModelAttribute describes one coefficient of GET /model.
type ModelAttribute struct {
	pricing.Attribute
	Coefficient float64      `json:"coefficient"`
	Range       limits.Range `json:"range"`
}

// ModelInfo is the response of GET /model.
type ModelInfo struct {
	Intercept  float64          `json:"intercept"`
	Currency   string           `json:"currency"`
	Attributes []ModelAttribute `json:"attributes"`
}

// NewModelInfo describes m together with the ranges the API enforces.
func NewModelInfo(m pricing.Model, l limits.Limits) ModelInfo {
	coef := m.Coefficients()
	info := ModelInfo{
		Intercept:  m.Intercept(),
		Currency:   "BRL",
		Attributes: make([]ModelAttribute, pricing.NumAttributes),
	}
	for i, a := range m.Attributes() {
		info.Attributes[i] = ModelAttribute{Attribute: a, Coefficient: coef[i], Range: l[i]}
	}
	return info
}

// ValuationRequest is the body of POST /valuations.
type ValuationRequest struct {
	RequestID string             `json:"request_id,omitempty"`
	Items     []pricing.Features `json:"items"`
}

// ValuationAck answers POST /valuations.
type ValuationAck struct {
	Status    string `json:"status"`
	JobID     string `json:"job_id"`
	Duplicate bool   `json:"duplicate"`
}

// Job states reported by GET /valuations/{id}.
const (
	JobPending = "pending"
	JobDone    = "done"
)

// ValuationItem is one item of a valuation job.
type ValuationItem struct {
	Index          int     `json:"index"`
	Status         string  `json:"status"`
	Price          float64 `json:"price,omitempty"`
	FormattedPrice string  `json:"formatted_price,omitempty"`
	Clamped        bool    `json:"clamped,omitempty"`
	Error          string  `json:"error,omitempty"`
}

// Valuation is the response of GET /valuations/{id}.
type Valuation struct {
	JobID     string          `json:"job_id"`
	Status    string          `json:"status"`
	CreatedAt time.Time       `json:"created_at"`
	Total     int             `json:"total"`
	Completed int             `json:"completed"`
	Failed    int             `json:"failed"`
	Items     []ValuationItem `json:"items"`
}

// NewValuation converts a stored job into its response shape.
func NewValuation(j model.Job) Valuation {
	out := Valuation{
		JobID:     j.ID,
		Status:    JobPending,
		CreatedAt: j.CreatedAt,
		Total:     len(j.Items),
		Completed: j.Completed,
		Failed:    j.Failed,
		Items:     make([]ValuationItem, len(j.Items)),
	}
	if j.Done() {
		out.Status = JobDone
	}
	for i, it := range j.Items {
		item := ValuationItem{Index: i, Status: string(it.State), Error: it.Err}
		if it.State == model.ItemDone {
			item.Price = it.Price
			item.FormattedPrice = pricing.FormatCurrency(it.Price)
			item.Clamped = it.Clamped
		}
		out.Items[i] = item
	}
	return out
}
