package list_blocks

import (
	"errors"
	"net/http"
	"time"

	"github.com/m04kA/SMC-NetsBookingService/internal/api/handlers"
	"github.com/m04kA/SMC-NetsBookingService/internal/api/middleware"
	"github.com/m04kA/SMC-NetsBookingService/internal/domain"
	"github.com/m04kA/SMC-NetsBookingService/internal/service/blocks"
	"github.com/m04kA/SMC-NetsBookingService/internal/service/blocks/models"
)

const (
	msgMissingUserID = "отсутствует ID пользователя"
	msgInvalidDate   = "некорректный формат даты, ожидается YYYY-MM-DD"
	msgInvalidRange  = "дата окончания раньше даты начала"
	msgForbidden     = "доступ запрещен"
)

type Handler struct {
	service BlockService
	logger  Logger
}

func NewHandler(service BlockService, logger Logger) *Handler {
	return &Handler{
		service: service,
		logger:  logger,
	}
}

// Handle GET /api/v1/blocks
// Query params: from, to (опционально, YYYY-MM-DD)
func (h *Handler) Handle(w http.ResponseWriter, r *http.Request) {
	callerID, ok := middleware.GetUserID(r.Context())
	if !ok {
		h.logger.Warn("GET /blocks - Missing user ID")
		handlers.RespondUnauthorized(w, msgMissingUserID)
		return
	}

	from, err := parseDate(r.URL.Query().Get("from"))
	if err != nil {
		handlers.RespondBadRequest(w, msgInvalidDate)
		return
	}
	to, err := parseDate(r.URL.Query().Get("to"))
	if err != nil {
		handlers.RespondBadRequest(w, msgInvalidDate)
		return
	}

	result, err := h.service.List(r.Context(), callerID, from, to)
	if err != nil {
		switch {
		case errors.Is(err, blocks.ErrAccessDenied):
			h.logger.Warn("GET /blocks - Access denied: caller=%d", callerID)
			handlers.RespondForbidden(w, msgForbidden)

		case errors.Is(err, blocks.ErrInvalidInput):
			handlers.RespondBadRequest(w, msgInvalidRange)

		default:
			h.logger.Error("GET /blocks - Failed to list blocks: error=%v", err)
			handlers.RespondInternalError(w)
		}
		return
	}

	h.logger.Info("GET /blocks - Blocks retrieved: count=%d", len(result))
	handlers.RespondJSON(w, http.StatusOK, models.FromDomainBlockList(result))
}

func parseDate(raw string) (*time.Time, error) {
	if raw == "" {
		return nil, nil
	}
	date, err := time.Parse(domain.DateFormat, raw)
	if err != nil {
		return nil, err
	}
	return &date, nil
}
