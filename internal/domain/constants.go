package domain

import (
	"time"

	"github.com/m04kA/SMC-NetsBookingService/pkg/types"
)

// Значения политики по умолчанию
const (
	DefaultSlotDurationMinutes = 30
	DefaultOperatorCount       = 1
)

// Ограничения бизнес-валидации
const (
	MinSlotDurationMinutes = 5
	MaxSlotDurationMinutes = 240
	MinOperatorCount       = 0
	MaxOperatorCount       = 50
	MaxBatchSize           = 10
	MaxReasonLength        = 500
)

// Форматы времени
const (
	TimeFormat = "15:04"      // HH:MM
	DateFormat = "2006-01-02" // YYYY-MM-DD
)

// DateOnly обнуляет время, сохраняя часовой пояс
func DateOnly(t time.Time) time.Time {
	return time.Date(t.Year(), t.Month(), t.Day(), 0, 0, 0, 0, t.Location())
}

// IsSameDay две даты относятся к одному дню
func IsSameDay(a, b time.Time) bool {
	y1, m1, d1 := a.Date()
	y2, m2, d2 := b.Date()
	return y1 == y2 && m1 == m2 && d1 == d2
}

// IsDateInPast дата раньше сегодняшнего дня.
// Сравниваются календарные даты: часовой пояс date не важен.
func IsDateInPast(date, now time.Time) bool {
	return calendarDay(date).Before(calendarDay(now))
}

// HasPassed момент at на дату date уже наступил по настенным часам now (at <= now).
// Время слотов задаётся в часах площадки, поэтому мгновения не сравниваются.
func HasPassed(date time.Time, at types.TimeString, now time.Time) bool {
	return compareWallClock(date, at, now) <= 0
}

// IsInPast момент at строго раньше now с точностью до минуты
func IsInPast(date time.Time, at types.TimeString, now time.Time) bool {
	return compareWallClock(date, at, now) < 0
}

func compareWallClock(date time.Time, at types.TimeString, now time.Time) int {
	switch {
	case IsDateInPast(date, now):
		return -1
	case !IsSameDay(date, now):
		return 1
	}

	current := types.NewTimeString(now)
	switch {
	case at.IsBefore(current):
		return -1
	case at.IsAfter(current):
		return 1
	}
	return 0
}

func calendarDay(t time.Time) time.Time {
	y, m, d := t.Date()
	return time.Date(y, m, d, 0, 0, 0, 0, time.UTC)
}
