package slots

import (
	"fmt"
	"sort"
	"time"

	"github.com/m04kA/SMC-NetsBookingService/internal/domain"
	"github.com/m04kA/SMC-NetsBookingService/pkg/types"
)

// Generate строит сетку слотов на дату по двум окнам.
// Каждый слот длится ровно duration минут, хвост окна короче duration отбрасывается.
// Для сегодняшней даты слоты, чьё начало уже прошло, не возвращаются.
func Generate(date time.Time, windows domain.TimeSlabConfig, duration int, now time.Time) ([]domain.Slot, error) {
	if duration <= 0 {
		return nil, fmt.Errorf("%w: duration must be positive, got %d", ErrInvalidDuration, duration)
	}

	result := make([]domain.Slot, 0)

	// при пересечении окон слот второго окна, накрывающий уже выданный, пропускается
	for _, window := range []domain.TimeWindow{windows.Morning, windows.Evening} {
		windowSlots, err := generateWindow(window, duration)
		if err != nil {
			return nil, err
		}
		for _, s := range windowSlots {
			if overlapsAny(s, result) {
				continue
			}
			result = append(result, s)
		}
	}

	sort.SliceStable(result, func(i, j int) bool {
		return result[i].StartTime.IsBefore(result[j].StartTime)
	})

	if !domain.IsSameDay(date, now) {
		return result, nil
	}

	currentTime := types.NewTimeString(now)
	upcoming := make([]domain.Slot, 0, len(result))
	for _, s := range result {
		if !s.StartTime.IsBefore(currentTime) {
			upcoming = append(upcoming, s)
		}
	}

	return upcoming, nil
}

func overlapsAny(s domain.Slot, accepted []domain.Slot) bool {
	for _, a := range accepted {
		if s.StartTime.IsBefore(a.EndTime) && s.EndTime.IsAfter(a.StartTime) {
			return true
		}
	}
	return false
}

// generateWindow шагает от начала окна до конца; окно с end <= start пустое
func generateWindow(window domain.TimeWindow, duration int) ([]domain.Slot, error) {
	if !window.IsValid() {
		return nil, nil
	}

	slots := make([]domain.Slot, 0)
	current := window.Start

	for current.IsBefore(window.End) {
		slotEnd, err := current.AddMinutes(duration)
		if err != nil {
			// слот перешёл бы через полночь
			break
		}
		if slotEnd.IsAfter(window.End) {
			break
		}

		slots = append(slots, domain.Slot{StartTime: current, EndTime: slotEnd})
		current = slotEnd
	}

	return slots, nil
}

// OnLattice проверяет, что [start, end) совпадает с одним из слотов сетки на день без учёта текущего времени
func OnLattice(windows domain.TimeSlabConfig, duration int, start, end types.TimeString) bool {
	for _, window := range []domain.TimeWindow{windows.Morning, windows.Evening} {
		windowSlots, err := generateWindow(window, duration)
		if err != nil {
			continue
		}
		for _, s := range windowSlots {
			if s.StartTime.Equal(start) && s.EndTime.Equal(end) {
				return true
			}
		}
	}
	return false
}
