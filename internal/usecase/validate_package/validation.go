package validate_package

import (
	"fmt"

	"github.com/m04kA/SMC-NetsBookingService/internal/domain"
)

// validateRequest валидирует входные данные запроса; пустой slotCount означает один слот
func validateRequest(req *Request) error {
	if req.UserID <= 0 {
		return fmt.Errorf("%w: userID must be positive", ErrInvalidInput)
	}
	if req.UserPackageID <= 0 {
		return fmt.Errorf("%w: userPackageId must be positive", ErrInvalidInput)
	}
	if !req.BallType.IsValid() {
		return fmt.Errorf("%w: unknown ballType %q", ErrInvalidInput, req.BallType)
	}
	if req.PitchType != nil && !req.PitchType.IsValid() {
		return fmt.Errorf("%w: unknown pitchType %q", ErrInvalidInput, *req.PitchType)
	}
	if err := req.StartTime.Validate(); err != nil {
		return fmt.Errorf("%w: invalid startTime: %v", ErrInvalidInput, err)
	}
	if req.SlotCount == 0 {
		req.SlotCount = 1
	}
	if req.SlotCount < 0 || req.SlotCount > domain.MaxBatchSize {
		return fmt.Errorf("%w: slotCount must be between 1 and %d", ErrInvalidInput, domain.MaxBatchSize)
	}
	return nil
}
