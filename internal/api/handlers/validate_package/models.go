package validate_package

import (
	"strings"

	"github.com/shopspring/decimal"

	"github.com/m04kA/SMC-NetsBookingService/internal/domain"
	validatePackage "github.com/m04kA/SMC-NetsBookingService/internal/usecase/validate_package"
	"github.com/m04kA/SMC-NetsBookingService/pkg/types"
)

// ValidatePackageRequest HTTP request model
type ValidatePackageRequest struct {
	UserPackageID int64   `json:"userPackageId"`
	BallType      string  `json:"ballType"`
	PitchType     *string `json:"pitchType,omitempty"`
	MachineID     *int64  `json:"machineId,omitempty"`
	StartTime     string  `json:"startTime"` // "18:00"
	SlotCount     int     `json:"slotCount,omitempty"`
}

// ValidatePackageResponse HTTP response model
type ValidatePackageResponse struct {
	Valid             bool             `json:"valid"`
	Reason            string           `json:"reason,omitempty"`
	Error             string           `json:"error,omitempty"`
	RemainingSessions int              `json:"remainingSessions"`
	ExtraCharge       *decimal.Decimal `json:"extraCharge,omitempty"`
	PerSlot           *decimal.Decimal `json:"extraChargePerSlot,omitempty"`
	ExtraChargeAxes   []string         `json:"extraChargeAxis"`
}

// ToUseCaseRequest конвертирует HTTP запрос в модель use case
func (r *ValidatePackageRequest) ToUseCaseRequest(userID int64) (*validatePackage.Request, error) {
	start, err := types.NewTimeStringFromString(r.StartTime)
	if err != nil {
		return nil, err
	}

	req := &validatePackage.Request{
		UserID:        userID,
		UserPackageID: r.UserPackageID,
		BallType:      domain.BallType(strings.ToUpper(r.BallType)),
		MachineID:     r.MachineID,
		StartTime:     start,
		SlotCount:     r.SlotCount,
	}

	if r.PitchType != nil {
		pitch := domain.PitchType(strings.ToUpper(*r.PitchType))
		req.PitchType = &pitch
	}

	return req, nil
}

// FromUseCaseResponse конвертирует ответ use case; суммы только для валидного пакета
func FromUseCaseResponse(resp *validatePackage.Response) *ValidatePackageResponse {
	result := &ValidatePackageResponse{
		Valid:             resp.Valid,
		Reason:            resp.Reason,
		Error:             resp.Message,
		RemainingSessions: resp.Remaining,
		ExtraChargeAxes:   resp.Axes,
	}

	if result.ExtraChargeAxes == nil {
		result.ExtraChargeAxes = []string{}
	}

	if resp.Valid {
		extra, perSlot := resp.ExtraCharge, resp.PerSlot
		result.ExtraCharge = &extra
		result.PerSlot = &perSlot
	}

	return result
}
