package slots

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/m04kA/SMC-NetsBookingService/internal/domain"
	"github.com/m04kA/SMC-NetsBookingService/pkg/ptr"
	"github.com/m04kA/SMC-NetsBookingService/pkg/types"
)

var (
	testDate  = time.Date(2026, 11, 2, 0, 0, 0, 0, time.UTC)
	dayBefore = testDate.AddDate(0, 0, -1)
)

func TestGenerate_BasicLattice(t *testing.T) {
	got, err := Generate(testDate, domain.DefaultTimeSlabs(), 30, dayBefore)
	require.NoError(t, err)

	// 07:00-17:00 и 17:00-22:00 по 30 минут
	require.Len(t, got, 30)
	assert.Equal(t, domain.Slot{StartTime: "07:00", EndTime: "07:30"}, got[0])
	assert.Equal(t, domain.Slot{StartTime: "21:30", EndTime: "22:00"}, got[len(got)-1])

	for i, s := range got {
		assert.Equal(t, 30, s.EndTime.Minutes()-s.StartTime.Minutes())
		if i > 0 {
			assert.False(t, s.StartTime.IsBefore(got[i-1].EndTime), "слоты не пересекаются")
		}
	}
}

func TestGenerate_Deterministic(t *testing.T) {
	windows := domain.TimeSlabConfig{
		Morning: domain.TimeWindow{Start: "06:15", End: "12:00"},
		Evening: domain.TimeWindow{Start: "18:00", End: "21:10"},
	}

	first, err := Generate(testDate, windows, 45, dayBefore)
	require.NoError(t, err)
	second, err := Generate(testDate, windows, 45, dayBefore)
	require.NoError(t, err)

	assert.Equal(t, first, second)
}

func TestGenerate_TruncatesWindowTail(t *testing.T) {
	windows := domain.TimeSlabConfig{
		Morning: domain.TimeWindow{Start: "07:00", End: "08:40"},
		Evening: domain.TimeWindow{Start: "18:00", End: "18:00"},
	}

	got, err := Generate(testDate, windows, 30, dayBefore)
	require.NoError(t, err)

	require.Len(t, got, 3)
	assert.Equal(t, types.TimeString("08:30"), got[2].EndTime, "частичный слот 08:30-08:40 не выдаётся")
}

func TestGenerate_OverlappingWindows(t *testing.T) {
	windows := domain.TimeSlabConfig{
		Morning: domain.TimeWindow{Start: "10:00", End: "12:00"},
		Evening: domain.TimeWindow{Start: "11:00", End: "13:00"},
	}

	got, err := Generate(testDate, windows, 60, dayBefore)
	require.NoError(t, err)

	starts := make([]types.TimeString, len(got))
	for i, s := range got {
		starts[i] = s.StartTime
	}
	assert.Equal(t, []types.TimeString{"10:00", "11:00", "12:00"}, starts)
}

func TestGenerate_TodayDropsElapsedSlots(t *testing.T) {
	now := time.Date(2026, 11, 2, 9, 10, 0, 0, time.UTC)

	got, err := Generate(testDate, domain.DefaultTimeSlabs(), 30, now)
	require.NoError(t, err)

	require.NotEmpty(t, got)
	assert.Equal(t, types.TimeString("09:30"), got[0].StartTime)

	again, err := Generate(testDate, domain.DefaultTimeSlabs(), 30, now)
	require.NoError(t, err)
	assert.Equal(t, got, again)
}

func TestGenerate_InvalidDuration(t *testing.T) {
	_, err := Generate(testDate, domain.DefaultTimeSlabs(), 0, dayBefore)
	assert.ErrorIs(t, err, ErrInvalidDuration)
}

func TestOnLattice(t *testing.T) {
	cfg := domain.DefaultTimeSlabs()
	assert.True(t, OnLattice(cfg, 30, "09:00", "09:30"))
	assert.False(t, OnLattice(cfg, 30, "09:15", "09:45"))
	assert.False(t, OnLattice(cfg, 30, "09:00", "10:00"))
}

func leatherMachine(id int64) *domain.Machine {
	return &domain.Machine{ID: id, Category: domain.CategoryLeatherBall, OperatorRequired: true, IsActive: true}
}

func booking(machineID int64, start, end types.TimeString, mode domain.OperationMode) *domain.Booking {
	return &domain.Booking{
		MachineID:     ptr.Ptr(machineID),
		BookingDate:   testDate,
		StartTime:     start,
		EndTime:       end,
		BallType:      domain.BallLeather,
		OperationMode: mode,
		Status:        domain.StatusBooked,
	}
}

func resolveDay(t *testing.T, in ResolveInput) map[types.TimeString]domain.ResolvedSlot {
	t.Helper()
	lattice, err := Generate(testDate, domain.DefaultTimeSlabs(), 30, dayBefore)
	require.NoError(t, err)

	in.Date = testDate
	in.Slots = lattice
	in.TimeSlabs = domain.DefaultTimeSlabs()

	out := make(map[types.TimeString]domain.ResolvedSlot)
	for _, s := range Resolve(in) {
		out[s.StartTime] = s
	}
	return out
}

func TestResolve_EmptyDatabase(t *testing.T) {
	got := resolveDay(t, ResolveInput{
		Class:         domain.NewKeyedClass(leatherMachine(1)),
		OperatorCount: 1,
	})

	first := got["07:00"]
	assert.Equal(t, types.TimeString("07:30"), first.EndTime)
	assert.Equal(t, domain.SlotAvailable, first.Status)
	assert.True(t, first.OperatorAvailable)
	assert.Equal(t, domain.SlabMorning, first.TimeSlab)
	assert.Equal(t, domain.SlabEvening, got["17:00"].TimeSlab)
}

func TestResolve_OperatorExhaustion(t *testing.T) {
	// оператор занят бронированием на другой машине
	existing := booking(2, "09:00", "09:30", domain.ModeWithOperator)

	got := resolveDay(t, ResolveInput{
		Class:             domain.NewKeyedClass(leatherMachine(1)),
		OperatorDependent: true,
		OperatorCount:     1,
		Bookings:          []*domain.Booking{existing},
	})

	assert.Equal(t, domain.SlotOperatorUnavailable, got["09:00"].Status, "машина свободна, но оператора нет")
	assert.False(t, got["09:00"].OperatorAvailable)
	assert.Equal(t, domain.SlotAvailable, got["09:30"].Status)

	selfServe := resolveDay(t, ResolveInput{
		Class:         domain.NewKeyedClass(leatherMachine(1)),
		OperatorCount: 1,
		Bookings:      []*domain.Booking{existing},
	})
	assert.Equal(t, domain.SlotAvailable, selfServe["09:00"].Status)
	assert.False(t, selfServe["09:00"].OperatorAvailable)
}

func TestResolve_SelfOperateBookingDoesNotConsumeOperator(t *testing.T) {
	got := resolveDay(t, ResolveInput{
		Class:             domain.NewKeyedClass(leatherMachine(1)),
		OperatorDependent: true,
		OperatorCount:     1,
		Bookings:          []*domain.Booking{booking(2, "09:00", "09:30", domain.ModeSelfOperate)},
	})

	assert.Equal(t, domain.SlotAvailable, got["09:00"].Status)
}

func TestResolve_Precedence(t *testing.T) {
	block := &domain.BlockedSlot{
		StartDate: testDate,
		EndDate:   testDate,
		StartTime: ptr.Ptr(types.TimeString("09:00")),
		EndTime:   ptr.Ptr(types.TimeString("10:00")),
		MachineID: ptr.Ptr(int64(1)),
	}
	cancelled := booking(1, "11:00", "11:30", domain.ModeWithOperator)
	cancelled.Status = domain.StatusCancelled

	got := resolveDay(t, ResolveInput{
		Class:             domain.NewKeyedClass(leatherMachine(1)),
		OperatorDependent: true,
		OperatorCount:     1,
		Bookings: []*domain.Booking{
			booking(1, "09:00", "09:30", domain.ModeWithOperator),
			booking(1, "10:00", "10:30", domain.ModeWithOperator),
			booking(2, "10:30", "11:00", domain.ModeWithOperator),
			cancelled,
		},
		Blocks: []*domain.BlockedSlot{block},
	})

	assert.Equal(t, domain.SlotBlocked, got["09:00"].Status, "блокировка важнее бронирования")
	assert.Equal(t, domain.SlotBlocked, got["09:30"].Status)
	assert.Equal(t, domain.SlotBooked, got["10:00"].Status, "бронирование важнее оператора")
	assert.Equal(t, domain.SlotOperatorUnavailable, got["10:30"].Status)
	assert.Equal(t, domain.SlotAvailable, got["11:00"].Status, "отменённое бронирование не занимает слот")
}

func TestResolve_LegacyClassSeesAllMachinesOfCategory(t *testing.T) {
	machines := []*domain.Machine{leatherMachine(1), leatherMachine(2)}

	got := resolveDay(t, ResolveInput{
		Class:         domain.NewLegacyClass(domain.CategoryLeatherBall, machines),
		OperatorCount: 5,
		Bookings:      []*domain.Booking{booking(2, "12:00", "12:30", domain.ModeWithOperator)},
	})

	assert.Equal(t, domain.SlotBooked, got["12:00"].Status)
}

func TestResolve_BlockOnOtherMachineIgnored(t *testing.T) {
	block := &domain.BlockedSlot{StartDate: testDate, EndDate: testDate, MachineID: ptr.Ptr(int64(2))}

	got := resolveDay(t, ResolveInput{
		Class:         domain.NewKeyedClass(leatherMachine(1)),
		OperatorCount: 1,
		Blocks:        []*domain.BlockedSlot{block},
	})

	assert.Equal(t, domain.SlotAvailable, got["07:00"].Status)
}
