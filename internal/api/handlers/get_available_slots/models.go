package get_available_slots

import (
	"errors"
	"net/url"
	"strconv"
	"strings"
	"time"

	"github.com/shopspring/decimal"

	"github.com/m04kA/SMC-NetsBookingService/internal/domain"
	getAvailableSlots "github.com/m04kA/SMC-NetsBookingService/internal/usecase/get_available_slots"
)

var errMissingDate = errors.New("date is required")

// AvailabilityResponse HTTP response model
type AvailabilityResponse struct {
	Date          string          `json:"date"`
	MachineID     *int64          `json:"machineId,omitempty"`
	BallType      string          `json:"ballType"`
	PitchType     *string         `json:"pitchType,omitempty"`
	PolicyVersion *time.Time      `json:"policyVersion,omitempty"`
	Slots         []AvailableSlot `json:"slots"`
}

// AvailableSlot модель временного слота
type AvailableSlot struct {
	StartTime         string          `json:"startTime"`
	EndTime           string          `json:"endTime"`
	Status            string          `json:"status"`
	Price             decimal.Decimal `json:"price"`
	OperatorAvailable bool            `json:"operatorAvailable"`
	TimeSlab          string          `json:"timeSlab"`
}

// ToUseCaseRequest создает запрос use case из query параметров
func ToUseCaseRequest(userID int64, query url.Values) (*getAvailableSlots.Request, error) {
	dateStr := query.Get("date")
	if dateStr == "" {
		return nil, errMissingDate
	}

	date, err := time.Parse(domain.DateFormat, dateStr)
	if err != nil {
		return nil, err
	}

	req := &getAvailableSlots.Request{
		UserID: userID,
		Date:   date,
	}

	if raw := query.Get("machineId"); raw != "" {
		machineID, err := strconv.ParseInt(raw, 10, 64)
		if err != nil {
			return nil, err
		}
		req.MachineID = &machineID
	}

	if raw := query.Get("ballType"); raw != "" {
		ball := domain.BallType(strings.ToUpper(raw))
		req.BallType = &ball
	}

	if raw := query.Get("pitchType"); raw != "" {
		pitch := domain.PitchType(strings.ToUpper(raw))
		req.PitchType = &pitch
	}

	if raw := query.Get("operationMode"); raw != "" {
		mode := domain.OperationMode(strings.ToUpper(raw))
		req.OperationMode = &mode
	}

	return req, nil
}

// FromUseCaseResponse конвертирует ответ use case в HTTP response
func FromUseCaseResponse(resp *getAvailableSlots.Response) *AvailabilityResponse {
	slots := make([]AvailableSlot, len(resp.Slots))
	for i, slot := range resp.Slots {
		slots[i] = AvailableSlot{
			StartTime:         slot.StartTime.String(),
			EndTime:           slot.EndTime.String(),
			Status:            string(slot.Status),
			Price:             slot.Price,
			OperatorAvailable: slot.OperatorAvailable,
			TimeSlab:          string(slot.TimeSlab),
		}
	}

	result := &AvailabilityResponse{
		Date:      resp.Date.Format(domain.DateFormat),
		MachineID: resp.MachineID,
		BallType:  string(resp.BallType),
		Slots:     slots,
	}

	if resp.PitchType != nil {
		pitch := string(*resp.PitchType)
		result.PitchType = &pitch
	}

	if !resp.PolicyVersion.IsZero() {
		version := resp.PolicyVersion
		result.PolicyVersion = &version
	}

	return result
}
