package api

import (
	"context"
	"net/http"

	"github.com/okian/houseprice/internal/domain/limits"
	"github.com/okian/houseprice/internal/domain/pricing"
	"github.com/okian/houseprice/internal/domain/types"
)

// ModelDependencies defines what the read-only model routes need.
type ModelDependencies interface {
	Model() pricing.Model
	Limits() limits.Limits
	Importance(ctx context.Context) []pricing.Importance
}

// ModelHandler describes the coefficients in use.
type ModelHandler struct {
	deps ModelDependencies
}

// NewModelHandler creates a new model handler.
func NewModelHandler(deps ModelDependencies) *ModelHandler {
	return &ModelHandler{deps: deps}
}

// HandleImportance handles GET /importance requests.
func (h *ModelHandler) HandleImportance(w http.ResponseWriter, r *http.Request) {
	if r.Method != http.MethodGet {
		http.NotFound(w, r)
		return
	}
	writeJSON(w, http.StatusOK, types.NewRanking(h.deps.Importance(r.Context())))
}

// HandleModel handles GET /model requests.
func (h *ModelHandler) HandleModel(w http.ResponseWriter, r *http.Request) {
	if r.Method != http.MethodGet {
		http.NotFound(w, r)
		return
	}
	writeJSON(w, http.StatusOK, types.NewModelInfo(h.deps.Model(), h.deps.Limits()))
}
