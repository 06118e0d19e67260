package delete_block

import (
	"errors"
	"net/http"
	"strconv"

	"github.com/gorilla/mux"

	"github.com/m04kA/SMC-NetsBookingService/internal/api/handlers"
	"github.com/m04kA/SMC-NetsBookingService/internal/api/middleware"
	"github.com/m04kA/SMC-NetsBookingService/internal/service/blocks"
)

const (
	msgInvalidBlockID = "некорректный ID блокировки"
	msgMissingUserID  = "отсутствует ID пользователя"
	msgNotFound       = "блокировка не найдена"
	msgForbidden      = "доступ запрещен"
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

// Handle DELETE /api/v1/blocks/{blockId}
// Отменённые блокировкой бронирования не восстанавливаются
func (h *Handler) Handle(w http.ResponseWriter, r *http.Request) {
	blockID, err := strconv.ParseInt(mux.Vars(r)["blockId"], 10, 64)
	if err != nil {
		h.logger.Warn("DELETE /blocks/{id} - Invalid block ID: %v", err)
		handlers.RespondBadRequest(w, msgInvalidBlockID)
		return
	}

	callerID, ok := middleware.GetUserID(r.Context())
	if !ok {
		handlers.RespondUnauthorized(w, msgMissingUserID)
		return
	}

	if err := h.service.Delete(r.Context(), callerID, blockID); err != nil {
		switch {
		case errors.Is(err, blocks.ErrBlockNotFound):
			h.logger.Warn("DELETE /blocks/{id} - Block not found: block_id=%d", blockID)
			handlers.RespondNotFound(w, msgNotFound)

		case errors.Is(err, blocks.ErrAccessDenied):
			h.logger.Warn("DELETE /blocks/{id} - Access denied: caller=%d", callerID)
			handlers.RespondForbidden(w, msgForbidden)

		default:
			h.logger.Error("DELETE /blocks/{id} - Failed to delete block: block_id=%d, error=%v", blockID, err)
			handlers.RespondInternalError(w)
		}
		return
	}

	h.logger.Info("DELETE /blocks/{id} - Block deleted: block_id=%d, caller=%d", blockID, callerID)
	handlers.RespondJSON(w, http.StatusNoContent, nil)
}
