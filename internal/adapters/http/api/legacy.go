package api

import (
	"context"
	"encoding/json"
	"fmt"
	"net/http"
	"strconv"
	"strings"

	"github.com/okian/houseprice/internal/domain/pricing"
	"github.com/okian/houseprice/internal/domain/types"
)

// LegacyDependencies defines what POST /prever needs.
type LegacyDependencies interface {
	Evaluate(ctx context.Context, f pricing.Features) (pricing.Prediction, error)
}

// LegacyHandler serves the legacy single-endpoint contract:
// absent keys count as zero and any failure is a 400 with {"error": ...}.
type LegacyHandler struct {
	deps LegacyDependencies
}

// NewLegacyHandler creates a new legacy handler.
func NewLegacyHandler(deps LegacyDependencies) *LegacyHandler {
	return &LegacyHandler{deps: deps}
}

// HandlePrever handles POST /prever requests.
func (h *LegacyHandler) HandlePrever(w http.ResponseWriter, r *http.Request) {
	if r.Method != http.MethodPost {
		http.NotFound(w, r)
		return
	}

	r.Body = http.MaxBytesReader(w, r.Body, maxBodyBytes)
	var body map[string]any
	if err := json.NewDecoder(r.Body).Decode(&body); err != nil {
		writeJSON(w, http.StatusBadRequest, types.LegacyError{Error: err.Error()})
		return
	}

	f, err := legacyFeatures(body)
	if err != nil {
		writeJSON(w, http.StatusBadRequest, types.LegacyError{Error: err.Error()})
		return
	}

	p, err := h.deps.Evaluate(r.Context(), f)
	if err != nil {
		writeJSON(w, http.StatusBadRequest, types.LegacyError{Error: err.Error()})
		return
	}
	writeJSON(w, http.StatusOK, types.LegacyPrice{Price: pricing.RoundCents(p.Price)})
}

// legacyFeatures reads the seven keys from body. Numbers and numeric
// strings are accepted; an absent key is zero.
func legacyFeatures(body map[string]any) (pricing.Features, error) {
	var f pricing.Features
	for i, a := range pricing.Attributes() {
		raw, ok := body[a.Key]
		if !ok {
			f.Set(i, 0)
			continue
		}
		switch v := raw.(type) {
		case float64:
			f.Set(i, v)
		case string:
			x, err := strconv.ParseFloat(strings.TrimSpace(v), 64)
			if err != nil {
				return pricing.Features{}, fmt.Errorf("could not convert %s to float: %q", a.Key, v)
			}
			f.Set(i, x)
		default:
			return pricing.Features{}, fmt.Errorf("could not convert %s to float: %v", a.Key, raw)
		}
	}
	return f, nil
}
