package models

import (
	"sort"
	"time"

	"github.com/shopspring/decimal"

	"github.com/m04kA/SMC-NetsBookingService/internal/domain"
)

// WindowResponse окно времени
type WindowResponse struct {
	Start string `json:"start"`
	End   string `json:"end"`
}

// PriceCellResponse ячейка матрицы цен
type PriceCellResponse struct {
	Category    string          `json:"category"`
	BallType    string          `json:"ballType"`
	PitchType   string          `json:"pitchType"`
	TimeSlab    string          `json:"timeSlab"`
	Single      decimal.Decimal `json:"single"`
	Consecutive decimal.Decimal `json:"consecutive"`
}

// PolicyResponse действующая политика
type PolicyResponse struct {
	Version                   *time.Time          `json:"version,omitempty"` // nil, если все значения по умолчанию
	SlotDurationMinutes       int                 `json:"slotDurationMinutes"`
	Morning                   WindowResponse      `json:"morning"`
	Evening                   WindowResponse      `json:"evening"`
	OperatorCount             int                 `json:"operatorCount"`
	MachinePitchCompatibility map[int64][]string  `json:"machinePitchCompatibility"`
	Pricing                   []PriceCellResponse `json:"pricing"`
}

// FromDomainPolicy конвертирует политику в DTO; ячейки цен упорядочены
func FromDomainPolicy(p *domain.Policy) *PolicyResponse {
	resp := &PolicyResponse{
		SlotDurationMinutes:       p.SlotDurationMinutes,
		Morning:                   WindowResponse{Start: p.TimeSlabs.Morning.Start.String(), End: p.TimeSlabs.Morning.End.String()},
		Evening:                   WindowResponse{Start: p.TimeSlabs.Evening.Start.String(), End: p.TimeSlabs.Evening.End.String()},
		OperatorCount:             p.OperatorCount,
		MachinePitchCompatibility: make(map[int64][]string, len(p.MachinePitchCompatibility)),
		Pricing:                   make([]PriceCellResponse, 0),
	}

	if !p.Version.IsZero() {
		v := p.Version
		resp.Version = &v
	}

	for id, pitches := range p.MachinePitchCompatibility {
		names := make([]string, len(pitches))
		for i, pitch := range pitches {
			names[i] = string(pitch)
		}
		resp.MachinePitchCompatibility[id] = names
	}

	for category, balls := range p.Pricing {
		for ball, pitches := range balls {
			for pitch, slabs := range pitches {
				for slab, cell := range slabs {
					resp.Pricing = append(resp.Pricing, PriceCellResponse{
						Category:    string(category),
						BallType:    string(ball),
						PitchType:   string(pitch),
						TimeSlab:    string(slab),
						Single:      cell.Single,
						Consecutive: cell.Consecutive,
					})
				}
			}
		}
	}

	sort.Slice(resp.Pricing, func(i, j int) bool {
		a, b := resp.Pricing[i], resp.Pricing[j]
		if a.BallType != b.BallType {
			return a.BallType < b.BallType
		}
		if a.PitchType != b.PitchType {
			return domain.PitchType(a.PitchType).Rank() < domain.PitchType(b.PitchType).Rank()
		}
		return a.TimeSlab > b.TimeSlab // MORNING раньше EVENING
	})

	return resp
}
