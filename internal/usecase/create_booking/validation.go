package create_booking

import (
	"fmt"
	"time"

	"github.com/m04kA/SMC-NetsBookingService/internal/domain"
	"github.com/m04kA/SMC-NetsBookingService/internal/slots"
	"github.com/m04kA/SMC-NetsBookingService/pkg/types"
)

// validateRequest валидирует входные данные запроса
func validateRequest(req *Request, maxBatch int) error {
	if req.CallerID <= 0 {
		return fmt.Errorf("%w: userID must be positive", ErrInvalidInput)
	}

	if req.UserID != nil && *req.UserID <= 0 {
		return fmt.Errorf("%w: player userId must be positive", ErrInvalidInput)
	}

	if req.UserPackageID != nil && *req.UserPackageID <= 0 {
		return fmt.Errorf("%w: userPackageId must be positive", ErrInvalidInput)
	}

	if len(req.Items) == 0 {
		return fmt.Errorf("%w: at least one slot is required", ErrInvalidInput)
	}

	if len(req.Items) > maxBatch {
		return fmt.Errorf("%w: at most %d slots per request", ErrInvalidInput, maxBatch)
	}

	for i, item := range req.Items {
		if err := validateItem(item); err != nil {
			return slotError(i, err)
		}
	}

	return nil
}

// validateItem проверяет обязательные поля и перечисления одного слота
func validateItem(item Item) error {
	if item.Date.IsZero() {
		return fmt.Errorf("%w: date is required", ErrInvalidInput)
	}

	if item.StartTime.IsZero() {
		return fmt.Errorf("%w: startTime is required", ErrInvalidInput)
	}

	if err := item.StartTime.Validate(); err != nil {
		return fmt.Errorf("%w: invalid startTime format: %v", ErrInvalidInput, err)
	}

	if !item.EndTime.IsZero() {
		if err := item.EndTime.Validate(); err != nil {
			return fmt.Errorf("%w: invalid endTime format: %v", ErrInvalidInput, err)
		}
	}

	if item.MachineID == nil && item.BallType == nil {
		return fmt.Errorf("%w: machineId or ballType is required", ErrInvalidInput)
	}

	if item.MachineID != nil && *item.MachineID <= 0 {
		return fmt.Errorf("%w: machineId must be positive", ErrInvalidInput)
	}

	if item.BallType != nil && !item.BallType.IsValid() {
		return fmt.Errorf("%w: unknown ballType %q", ErrInvalidInput, *item.BallType)
	}

	if item.PitchType != nil && !item.PitchType.IsValid() {
		return fmt.Errorf("%w: unknown pitchType %q", ErrInvalidInput, *item.PitchType)
	}

	if item.OperationMode != nil && !item.OperationMode.IsValid() {
		return fmt.Errorf("%w: unknown operationMode %q", ErrInvalidInput, *item.OperationMode)
	}

	return nil
}

// validateSlotTime проверяет, что слот не в прошлом и совпадает со слотом сетки.
// Возвращает время окончания (вычисленное, если не передано).
func validateSlotTime(item Item, date time.Time, policy *domain.Policy, now time.Time) (types.TimeString, error) {
	if domain.IsInPast(date, item.StartTime, now) {
		return "", fmt.Errorf("%w: %s %s", ErrSlotInPast, date.Format(domain.DateFormat), item.StartTime)
	}

	expectedEnd, err := item.StartTime.AddMinutes(policy.SlotDurationMinutes)
	if err != nil {
		return "", fmt.Errorf("%w: slot crosses midnight", ErrInvalidTimeSlot)
	}

	end := item.EndTime
	if end.IsZero() {
		end = expectedEnd
	}
	if !end.Equal(expectedEnd) {
		return "", fmt.Errorf("%w: slot must last %d minutes", ErrInvalidTimeSlot, policy.SlotDurationMinutes)
	}

	if !slots.OnLattice(policy.TimeSlabs, policy.SlotDurationMinutes, item.StartTime, end) {
		return "", fmt.Errorf("%w: %s-%s is not a bookable slot", ErrInvalidTimeSlot, item.StartTime, end)
	}

	return end, nil
}
