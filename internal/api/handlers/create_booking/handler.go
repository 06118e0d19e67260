package create_booking

import (
	"errors"
	"net/http"

	"github.com/m04kA/SMC-NetsBookingService/internal/api/handlers"
	"github.com/m04kA/SMC-NetsBookingService/internal/api/middleware"
	"github.com/m04kA/SMC-NetsBookingService/internal/entitlement"
	createBooking "github.com/m04kA/SMC-NetsBookingService/internal/usecase/create_booking"
)

const (
	msgMissingUserID      = "отсутствует ID пользователя"
	msgInvalidRequestBody = "некорректное тело запроса"
	msgInvalidInput       = "некорректные данные слота"
	msgInvalidSlotFormat  = "некорректный формат слота: дата YYYY-MM-DD, время HH:MM"
	msgMachineNotFound    = "машина не найдена"
	msgMachineInactive    = "машина выведена из эксплуатации"
	msgPitchNotSupported  = "покрытие недоступно на выбранной машине"
	msgModeNotAllowed     = "режим работы недоступен для машины"
	msgSlotInPast         = "время начала слота уже прошло"
	msgInvalidTimeSlot    = "некорректный временной слот"
	msgSlotBlocked        = "слот заблокирован администратором"
	msgSlotConflict       = "выбранный временной слот уже занят"
	msgOperatorBusy       = "нет свободного оператора на выбранное время"
	msgFundingChanged     = "нельзя снять или сменить пакет у существующего бронирования"
	msgPackageNotFound    = "пакет не найден"
	msgPackageRejected    = "пакет не покрывает бронирование"
	msgForbidden          = "доступ запрещен"
	msgInternal           = "внутренняя ошибка сервера"
)

type Handler struct {
	useCase CreateBookingUseCase
	logger  Logger
}

func NewHandler(useCase CreateBookingUseCase, logger Logger) *Handler {
	return &Handler{
		useCase: useCase,
		logger:  logger,
	}
}

// Handle POST /api/v1/bookings
// Тело: массив слотов (1..10)
func (h *Handler) Handle(w http.ResponseWriter, r *http.Request) {
	callerID, ok := middleware.GetUserID(r.Context())
	if !ok {
		h.logger.Warn("POST /bookings - Missing user ID")
		handlers.RespondUnauthorized(w, msgMissingUserID)
		return
	}

	var req CreateBookingRequest
	if err := handlers.DecodeJSON(r, &req); err != nil {
		h.logger.Warn("POST /bookings - Invalid request body: %v", err)
		handlers.RespondBadRequest(w, msgInvalidRequestBody)
		return
	}

	useCaseReq, err := req.ToUseCaseRequest(callerID)
	if err != nil {
		h.logger.Warn("POST /bookings - Failed to parse request: caller=%d, error=%v", callerID, err)
		handlers.RespondErrorWithReason(w, http.StatusBadRequest, msgInvalidSlotFormat, "validation", err.Error())
		return
	}

	result, err := h.useCase.Execute(r.Context(), useCaseReq)
	if err != nil {
		h.respondError(w, callerID, err)
		return
	}

	response := FromUseCaseResponse(result)

	h.logger.Info("POST /bookings - Bookings committed successfully: caller=%d, count=%d, total=%s",
		callerID, len(result.Bookings), result.Total.StringFixed(2))
	handlers.RespondJSON(w, http.StatusCreated, response)
}

func (h *Handler) respondError(w http.ResponseWriter, callerID int64, err error) {
	var details interface{}
	if d := slotDetails(err); d != nil {
		details = d
	}
	reason := createBooking.RejectReason(err)

	var entErr *entitlement.Error

	switch {
	case errors.Is(err, createBooking.ErrSlotConflict):
		h.logger.Warn("POST /bookings - Slot conflict: caller=%d, error=%v", callerID, err)
		handlers.RespondErrorWithReason(w, http.StatusConflict, msgSlotConflict, reason, details)

	case errors.Is(err, createBooking.ErrOperatorUnavailable):
		h.logger.Warn("POST /bookings - Operator unavailable: caller=%d, error=%v", callerID, err)
		handlers.RespondErrorWithReason(w, http.StatusConflict, msgOperatorBusy, reason, details)

	case errors.Is(err, createBooking.ErrFundingChanged):
		h.logger.Warn("POST /bookings - Funding source changed: caller=%d, error=%v", callerID, err)
		handlers.RespondErrorWithReason(w, http.StatusConflict, msgFundingChanged, reason, details)

	case errors.Is(err, createBooking.ErrSlotBlocked):
		h.logger.Warn("POST /bookings - Slot blocked: caller=%d, error=%v", callerID, err)
		handlers.RespondErrorWithReason(w, http.StatusConflict, msgSlotBlocked, reason, details)

	case errors.As(err, &entErr), errors.Is(err, entitlement.ErrInsufficientSessions):
		h.logger.Warn("POST /bookings - Package rejected: caller=%d, reason=%s", callerID, reason)
		handlers.RespondErrorWithReason(w, http.StatusUnprocessableEntity, msgPackageRejected, reason, details)

	case errors.Is(err, createBooking.ErrPackageNotFound):
		h.logger.Warn("POST /bookings - Package not found: caller=%d", callerID)
		handlers.RespondNotFound(w, msgPackageNotFound)

	case errors.Is(err, createBooking.ErrMachineNotFound):
		h.logger.Warn("POST /bookings - Machine not found: caller=%d, error=%v", callerID, err)
		handlers.RespondErrorWithReason(w, http.StatusNotFound, msgMachineNotFound, reason, details)

	case errors.Is(err, createBooking.ErrAccessDenied):
		h.logger.Warn("POST /bookings - Access denied: caller=%d", callerID)
		handlers.RespondForbidden(w, msgForbidden)

	case errors.Is(err, createBooking.ErrMachineInactive):
		handlers.RespondErrorWithReason(w, http.StatusBadRequest, msgMachineInactive, reason, details)

	case errors.Is(err, createBooking.ErrPitchNotSupported):
		handlers.RespondErrorWithReason(w, http.StatusBadRequest, msgPitchNotSupported, reason, details)

	case errors.Is(err, createBooking.ErrModeNotAllowed):
		handlers.RespondErrorWithReason(w, http.StatusBadRequest, msgModeNotAllowed, reason, details)

	case errors.Is(err, createBooking.ErrSlotInPast):
		handlers.RespondErrorWithReason(w, http.StatusBadRequest, msgSlotInPast, reason, details)

	case errors.Is(err, createBooking.ErrInvalidTimeSlot):
		handlers.RespondErrorWithReason(w, http.StatusBadRequest, msgInvalidTimeSlot, reason, details)

	case errors.Is(err, createBooking.ErrInvalidInput):
		h.logger.Warn("POST /bookings - Invalid input: caller=%d, error=%v", callerID, err)
		handlers.RespondErrorWithReason(w, http.StatusBadRequest, msgInvalidInput, reason, details)

	default:
		h.logger.Error("POST /bookings - Failed to create bookings: caller=%d, error=%v", callerID, err)
		handlers.RespondErrorWithReason(w, http.StatusInternalServerError, msgInternal, reason, details)
	}
}

// slotDetails индекс проблемного слота и уже сохранённые бронирования
func slotDetails(err error) *SlotErrorDetails {
	var slotErr *createBooking.SlotError
	if !errors.As(err, &slotErr) {
		return nil
	}

	details := &SlotErrorDetails{
		SlotIndex: slotErr.Index,
		Committed: make([]BookingResponse, 0, len(slotErr.Committed)),
	}
	for _, b := range slotErr.Committed {
		details.Committed = append(details.Committed, fromBooking(b))
	}

	var entErr *entitlement.Error
	if errors.As(err, &entErr) {
		details.Remaining = &entErr.Remaining
	}

	return details
}
