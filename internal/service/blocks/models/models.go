package models

import (
	"time"

	"github.com/m04kA/SMC-NetsBookingService/internal/domain"
)

// BlockResponse блокировка расписания
type BlockResponse struct {
	ID        int64     `json:"id"`
	StartDate string    `json:"startDate"`
	EndDate   string    `json:"endDate"`
	StartTime *string   `json:"startTime,omitempty"` // пусто для блокировки на весь день
	EndTime   *string   `json:"endTime,omitempty"`
	MachineID *int64    `json:"machineId,omitempty"` // пусто для всех машин
	PitchType *string   `json:"pitchType,omitempty"`
	Reason    string    `json:"reason"`
	CreatedBy int64     `json:"createdBy"`
	CreatedAt time.Time `json:"createdAt"`
}

// FromDomainBlock конвертирует domain модель в DTO
func FromDomainBlock(b *domain.BlockedSlot) *BlockResponse {
	if b == nil {
		return nil
	}

	resp := &BlockResponse{
		ID:        b.ID,
		StartDate: b.StartDate.Format(domain.DateFormat),
		EndDate:   b.EndDate.Format(domain.DateFormat),
		MachineID: b.MachineID,
		Reason:    b.Reason,
		CreatedBy: b.CreatedBy,
		CreatedAt: b.CreatedAt,
	}

	if !b.IsWholeDay() {
		start, end := b.StartTime.String(), b.EndTime.String()
		resp.StartTime = &start
		resp.EndTime = &end
	}

	if b.PitchType != nil {
		pitch := string(*b.PitchType)
		resp.PitchType = &pitch
	}

	return resp
}

// FromDomainBlockList конвертирует список блокировок
func FromDomainBlockList(blocks []*domain.BlockedSlot) []BlockResponse {
	result := make([]BlockResponse, 0, len(blocks))
	for _, b := range blocks {
		if resp := FromDomainBlock(b); resp != nil {
			result = append(result, *resp)
		}
	}
	return result
}
