package validate_package

import (
	"errors"
	"net/http"

	"github.com/m04kA/SMC-NetsBookingService/internal/api/handlers"
	"github.com/m04kA/SMC-NetsBookingService/internal/api/middleware"
	validatePackage "github.com/m04kA/SMC-NetsBookingService/internal/usecase/validate_package"
)

const (
	msgMissingUserID      = "отсутствует ID пользователя"
	msgInvalidRequestBody = "некорректное тело запроса"
	msgInvalidData        = "некорректные данные проверки пакета"
	msgNotFound           = "пакет не найден"
)

type Handler struct {
	useCase ValidatePackageUseCase
	logger  Logger
}

func NewHandler(useCase ValidatePackageUseCase, logger Logger) *Handler {
	return &Handler{
		useCase: useCase,
		logger:  logger,
	}
}

// Handle POST /api/v1/packages/validate
// Отказ пакета не ошибка: 200 с valid=false и причиной
func (h *Handler) Handle(w http.ResponseWriter, r *http.Request) {
	userID, ok := middleware.GetUserID(r.Context())
	if !ok {
		h.logger.Warn("POST /packages/validate - Missing user ID")
		handlers.RespondUnauthorized(w, msgMissingUserID)
		return
	}

	var req ValidatePackageRequest
	if err := handlers.DecodeJSON(r, &req); err != nil {
		h.logger.Warn("POST /packages/validate - Invalid request body: %v", err)
		handlers.RespondBadRequest(w, msgInvalidRequestBody)
		return
	}

	useCaseReq, err := req.ToUseCaseRequest(userID)
	if err != nil {
		h.logger.Warn("POST /packages/validate - Invalid start time: %v", err)
		handlers.RespondBadRequest(w, msgInvalidData)
		return
	}

	result, err := h.useCase.Execute(r.Context(), useCaseReq)
	if err != nil {
		switch {
		case errors.Is(err, validatePackage.ErrPackageNotFound):
			h.logger.Warn("POST /packages/validate - Package not found: user_package_id=%d", req.UserPackageID)
			handlers.RespondNotFound(w, msgNotFound)

		case errors.Is(err, validatePackage.ErrInvalidInput):
			h.logger.Warn("POST /packages/validate - Invalid data: %v", err)
			handlers.RespondBadRequest(w, msgInvalidData)

		default:
			h.logger.Error("POST /packages/validate - Failed to validate package: user_package_id=%d, error=%v",
				req.UserPackageID, err)
			handlers.RespondInternalError(w)
		}
		return
	}

	h.logger.Info("POST /packages/validate - Package checked: user_package_id=%d, user_id=%d, valid=%t, reason=%s",
		req.UserPackageID, userID, result.Valid, result.Reason)
	handlers.RespondJSON(w, http.StatusOK, FromUseCaseResponse(result))
}
