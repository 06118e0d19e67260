package block_slots

import (
	"fmt"
	"strings"

	"github.com/m04kA/SMC-NetsBookingService/internal/domain"
)

// validateRequest валидирует входные данные запроса
func validateRequest(req *Request) error {
	if req.StartDate.IsZero() || req.EndDate.IsZero() {
		return fmt.Errorf("%w: startDate and endDate are required", ErrInvalidInput)
	}

	if domain.DateOnly(req.EndDate).Before(domain.DateOnly(req.StartDate)) {
		return fmt.Errorf("%w: endDate is before startDate", ErrInvalidInput)
	}

	if (req.StartTime == nil) != (req.EndTime == nil) {
		return fmt.Errorf("%w: startTime and endTime must be set together", ErrInvalidInput)
	}

	if req.StartTime != nil {
		if err := req.StartTime.Validate(); err != nil {
			return fmt.Errorf("%w: invalid startTime: %v", ErrInvalidInput, err)
		}
		if err := req.EndTime.Validate(); err != nil {
			return fmt.Errorf("%w: invalid endTime: %v", ErrInvalidInput, err)
		}
		if !req.StartTime.IsBefore(*req.EndTime) {
			return fmt.Errorf("%w: startTime must be before endTime", ErrInvalidInput)
		}
	}

	if req.MachineID != nil && *req.MachineID <= 0 {
		return fmt.Errorf("%w: machineId must be positive", ErrInvalidInput)
	}

	if req.PitchType != nil && !req.PitchType.IsValid() {
		return fmt.Errorf("%w: unknown pitchType %q", ErrInvalidInput, *req.PitchType)
	}

	req.Reason = strings.TrimSpace(req.Reason)
	if req.Reason == "" {
		return fmt.Errorf("%w: reason is required", ErrInvalidInput)
	}
	if len(req.Reason) > domain.MaxReasonLength {
		return fmt.Errorf("%w: reason is too long", ErrInvalidInput)
	}

	return nil
}
