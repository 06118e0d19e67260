package create_block

import (
	"strings"
	"time"

	"github.com/m04kA/SMC-NetsBookingService/internal/domain"
	"github.com/m04kA/SMC-NetsBookingService/internal/service/blocks/models"
	blockSlots "github.com/m04kA/SMC-NetsBookingService/internal/usecase/block_slots"
	"github.com/m04kA/SMC-NetsBookingService/pkg/types"
)

// CreateBlockRequest HTTP request model
type CreateBlockRequest struct {
	StartDate string  `json:"startDate"`
	EndDate   string  `json:"endDate,omitempty"` // по умолчанию равна startDate
	StartTime *string `json:"startTime,omitempty"`
	EndTime   *string `json:"endTime,omitempty"`
	MachineID *int64  `json:"machineId,omitempty"`
	PitchType *string `json:"pitchType,omitempty"`
	Reason    string  `json:"reason"`
}

// CreateBlockResponse блокировка и результат каскада
type CreateBlockResponse struct {
	Block              *models.BlockResponse `json:"block"`
	CancelledBookings  []int64               `json:"cancelledBookings"`
	NotificationsSent  int                   `json:"notificationsSent"`
	NotificationsTotal int                   `json:"notificationsTotal"`
}

// ToUseCaseRequest конвертирует HTTP запрос в модель use case
func (r *CreateBlockRequest) ToUseCaseRequest(callerID int64) (*blockSlots.Request, error) {
	startDate, err := time.Parse(domain.DateFormat, r.StartDate)
	if err != nil {
		return nil, err
	}

	endDate := startDate
	if r.EndDate != "" {
		if endDate, err = time.Parse(domain.DateFormat, r.EndDate); err != nil {
			return nil, err
		}
	}

	req := &blockSlots.Request{
		CallerID:  callerID,
		StartDate: startDate,
		EndDate:   endDate,
		MachineID: r.MachineID,
		Reason:    r.Reason,
	}

	if r.StartTime != nil {
		start, err := types.NewTimeStringFromString(*r.StartTime)
		if err != nil {
			return nil, err
		}
		req.StartTime = &start
	}
	if r.EndTime != nil {
		end, err := types.NewTimeStringFromString(*r.EndTime)
		if err != nil {
			return nil, err
		}
		req.EndTime = &end
	}

	if r.PitchType != nil {
		pitch := domain.PitchType(strings.ToUpper(*r.PitchType))
		req.PitchType = &pitch
	}

	return req, nil
}

// FromUseCaseResponse конвертирует ответ use case в HTTP response
func FromUseCaseResponse(resp *blockSlots.Response) *CreateBlockResponse {
	cancelled := resp.CancelledBookings
	if cancelled == nil {
		cancelled = []int64{}
	}

	return &CreateBlockResponse{
		Block:              models.FromDomainBlock(resp.Block),
		CancelledBookings:  cancelled,
		NotificationsSent:  resp.NotificationsSent,
		NotificationsTotal: resp.NotificationsTotal,
	}
}
