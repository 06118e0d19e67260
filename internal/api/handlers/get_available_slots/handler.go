package get_available_slots

import (
	"errors"
	"net/http"

	"github.com/m04kA/SMC-NetsBookingService/internal/api/handlers"
	"github.com/m04kA/SMC-NetsBookingService/internal/api/middleware"
	getAvailableSlots "github.com/m04kA/SMC-NetsBookingService/internal/usecase/get_available_slots"
)

const (
	msgMissingUserID      = "отсутствует ID пользователя"
	msgInvalidParams      = "некорректные параметры запроса"
	msgMachineNotFound    = "машина не найдена"
	msgMachineInactive    = "машина выведена из эксплуатации"
	msgPitchNotSupported  = "покрытие недоступно на выбранной машине"
	msgModeNotAllowed     = "режим работы недоступен для машины"
	msgInvalidAvailParams = "нужен machineId или ballType, мяч должен подходить машине"
)

type Handler struct {
	useCase GetAvailableSlotsUseCase
	logger  Logger
}

func NewHandler(useCase GetAvailableSlotsUseCase, logger Logger) *Handler {
	return &Handler{
		useCase: useCase,
		logger:  logger,
	}
}

// Handle GET /api/v1/availability
// Query params: date (YYYY-MM-DD), machineId или ballType, pitchType, operationMode (опционально)
func (h *Handler) Handle(w http.ResponseWriter, r *http.Request) {
	userID, ok := middleware.GetUserID(r.Context())
	if !ok {
		h.logger.Warn("GET /availability - Missing user ID")
		handlers.RespondUnauthorized(w, msgMissingUserID)
		return
	}

	useCaseReq, err := ToUseCaseRequest(userID, r.URL.Query())
	if err != nil {
		h.logger.Warn("GET /availability - Invalid parameters: %v", err)
		handlers.RespondBadRequest(w, msgInvalidParams)
		return
	}

	result, err := h.useCase.Execute(r.Context(), useCaseReq)
	if err != nil {
		switch {
		case errors.Is(err, getAvailableSlots.ErrInvalidInput):
			h.logger.Warn("GET /availability - Invalid input: %v", err)
			handlers.RespondBadRequest(w, msgInvalidAvailParams)

		case errors.Is(err, getAvailableSlots.ErrMachineNotFound):
			h.logger.Warn("GET /availability - Machine not found: machine_id=%v", useCaseReq.MachineID)
			handlers.RespondNotFound(w, msgMachineNotFound)

		case errors.Is(err, getAvailableSlots.ErrMachineInactive):
			h.logger.Warn("GET /availability - Machine inactive: machine_id=%v", useCaseReq.MachineID)
			handlers.RespondUnprocessable(w, msgMachineInactive)

		case errors.Is(err, getAvailableSlots.ErrPitchNotSupported):
			h.logger.Warn("GET /availability - Pitch not supported: machine_id=%v, pitch=%v",
				useCaseReq.MachineID, useCaseReq.PitchType)
			handlers.RespondUnprocessable(w, msgPitchNotSupported)

		case errors.Is(err, getAvailableSlots.ErrModeNotAllowed):
			h.logger.Warn("GET /availability - Mode not allowed: machine_id=%v, mode=%v",
				useCaseReq.MachineID, useCaseReq.OperationMode)
			handlers.RespondBadRequest(w, msgModeNotAllowed)

		default:
			h.logger.Error("GET /availability - Failed to get slots: date=%s, error=%v",
				r.URL.Query().Get("date"), err)
			handlers.RespondInternalError(w)
		}
		return
	}

	response := FromUseCaseResponse(result)

	h.logger.Info("GET /availability - Slots retrieved successfully: user_id=%d, date=%s, slots_count=%d",
		userID, response.Date, len(result.Slots))
	handlers.RespondJSON(w, http.StatusOK, response)
}
