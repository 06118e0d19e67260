package get_available_slots

import "fmt"

// validateRequest валидирует входные данные запроса
func validateRequest(req *Request) error {
	if req.Date.IsZero() {
		return fmt.Errorf("%w: date is required", ErrInvalidInput)
	}

	if req.MachineID == nil && req.BallType == nil {
		return fmt.Errorf("%w: machineId or ballType is required", ErrInvalidInput)
	}

	if req.MachineID != nil && *req.MachineID <= 0 {
		return fmt.Errorf("%w: machineId must be positive", ErrInvalidInput)
	}

	if req.BallType != nil && !req.BallType.IsValid() {
		return fmt.Errorf("%w: unknown ballType %q", ErrInvalidInput, *req.BallType)
	}

	if req.PitchType != nil && !req.PitchType.IsValid() {
		return fmt.Errorf("%w: unknown pitchType %q", ErrInvalidInput, *req.PitchType)
	}

	if req.OperationMode != nil && !req.OperationMode.IsValid() {
		return fmt.Errorf("%w: unknown operationMode %q", ErrInvalidInput, *req.OperationMode)
	}

	return nil
}
