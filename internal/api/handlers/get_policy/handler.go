package get_policy

import (
	"net/http"

	"github.com/m04kA/SMC-NetsBookingService/internal/api/handlers"
)

type Handler struct {
	service PolicyService
	logger  Logger
}

func NewHandler(service PolicyService, logger Logger) *Handler {
	return &Handler{
		service: service,
		logger:  logger,
	}
}

// Handle GET /api/v1/policy
// Публичный endpoint - без авторизации
func (h *Handler) Handle(w http.ResponseWriter, r *http.Request) {
	policy, err := h.service.Get(r.Context())
	if err != nil {
		h.logger.Error("GET /policy - Failed to get policy: %v", err)
		handlers.RespondInternalError(w)
		return
	}

	h.logger.Info("GET /policy - Policy retrieved: slot_duration=%d, operators=%d, price_cells=%d",
		policy.SlotDurationMinutes, policy.OperatorCount, len(policy.Pricing))
	handlers.RespondJSON(w, http.StatusOK, policy)
}
