package create_block

import (
	"errors"
	"net/http"

	"github.com/m04kA/SMC-NetsBookingService/internal/api/handlers"
	"github.com/m04kA/SMC-NetsBookingService/internal/api/middleware"
	blockSlots "github.com/m04kA/SMC-NetsBookingService/internal/usecase/block_slots"
)

const (
	msgMissingUserID      = "отсутствует ID пользователя"
	msgInvalidRequestBody = "некорректное тело запроса"
	msgInvalidData        = "некорректные данные блокировки"
	msgForbidden          = "доступ запрещен"
	msgMachineNotFound    = "машина не найдена"
	msgNotSupported       = "блокировки расписания не поддерживаются схемой БД"
)

type Handler struct {
	useCase BlockSlotsUseCase
	logger  Logger
}

func NewHandler(useCase BlockSlotsUseCase, logger Logger) *Handler {
	return &Handler{
		useCase: useCase,
		logger:  logger,
	}
}

// Handle POST /api/v1/blocks
// Отменяет пересекающиеся бронирования и уведомляет игроков
func (h *Handler) Handle(w http.ResponseWriter, r *http.Request) {
	callerID, ok := middleware.GetUserID(r.Context())
	if !ok {
		h.logger.Warn("POST /blocks - Missing user ID")
		handlers.RespondUnauthorized(w, msgMissingUserID)
		return
	}

	var req CreateBlockRequest
	if err := handlers.DecodeJSON(r, &req); err != nil {
		h.logger.Warn("POST /blocks - Invalid request body: %v", err)
		handlers.RespondBadRequest(w, msgInvalidRequestBody)
		return
	}

	useCaseReq, err := req.ToUseCaseRequest(callerID)
	if err != nil {
		h.logger.Warn("POST /blocks - Failed to parse request: %v", err)
		handlers.RespondBadRequest(w, msgInvalidData)
		return
	}

	result, err := h.useCase.Execute(r.Context(), useCaseReq)
	if err != nil {
		switch {
		case errors.Is(err, blockSlots.ErrAccessDenied):
			h.logger.Warn("POST /blocks - Access denied: caller=%d", callerID)
			handlers.RespondForbidden(w, msgForbidden)

		case errors.Is(err, blockSlots.ErrInvalidInput):
			h.logger.Warn("POST /blocks - Invalid data: %v", err)
			handlers.RespondBadRequest(w, msgInvalidData)

		case errors.Is(err, blockSlots.ErrMachineNotFound):
			handlers.RespondNotFound(w, msgMachineNotFound)

		case errors.Is(err, blockSlots.ErrNotSupported):
			h.logger.Warn("POST /blocks - Blocked slots table is missing")
			handlers.RespondError(w, http.StatusNotImplemented, msgNotSupported)

		default:
			h.logger.Error("POST /blocks - Failed to create block: caller=%d, error=%v", callerID, err)
			handlers.RespondInternalError(w)
		}
		return
	}

	h.logger.Info("POST /blocks - Block created: block_id=%d, cancelled=%d, notified=%d/%d",
		result.Block.ID, len(result.CancelledBookings), result.NotificationsSent, result.NotificationsTotal)
	handlers.RespondJSON(w, http.StatusCreated, FromUseCaseResponse(result))
}
