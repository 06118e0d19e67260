package get_available_slots

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/m04kA/SMC-NetsBookingService/internal/domain"
	machineRepo "github.com/m04kA/SMC-NetsBookingService/internal/infra/storage/machine"
	"github.com/m04kA/SMC-NetsBookingService/pkg/ptr"
	"github.com/m04kA/SMC-NetsBookingService/pkg/types"
)

var (
	day = time.Date(2026, 11, 5, 0, 0, 0, 0, time.UTC)
	now = time.Date(2026, 11, 4, 10, 0, 0, 0, time.UTC)
)

type fixedTime struct{ t time.Time }

func (f fixedTime) Now() time.Time { return f.t }

type fakeBookings struct{ bookings []*domain.Booking }

func (f *fakeBookings) ListBookedOnDate(_ context.Context, _ time.Time) ([]*domain.Booking, error) {
	return f.bookings, nil
}

type fakeBlocks struct {
	blocks []*domain.BlockedSlot
	err    error
}

func (f *fakeBlocks) ListForDate(_ context.Context, _ time.Time) ([]*domain.BlockedSlot, error) {
	return f.blocks, f.err
}

type fakeMachines struct{ machines []*domain.Machine }

func (f *fakeMachines) GetByID(_ context.Context, id int64) (*domain.Machine, error) {
	for _, m := range f.machines {
		if m.ID == id {
			return m, nil
		}
	}
	return nil, machineRepo.ErrMachineNotFound
}

func (f *fakeMachines) ListActive(_ context.Context, category *domain.MachineCategory) ([]*domain.Machine, error) {
	result := make([]*domain.Machine, 0)
	for _, m := range f.machines {
		if m.IsActive && (category == nil || m.Category == *category) {
			result = append(result, m)
		}
	}
	return result, nil
}

type staticPolicy struct{ policy *domain.Policy }

func (s staticPolicy) Effective(context.Context) (*domain.Policy, error) { return s.policy, nil }

type admins map[int64]bool

func (a admins) IsAdmin(_ context.Context, id int64) bool { return a[id] }

type nopLogger struct{}

func (nopLogger) Info(string, ...interface{})  {}
func (nopLogger) Warn(string, ...interface{})  {}
func (nopLogger) Error(string, ...interface{}) {}

func machines() []*domain.Machine {
	return []*domain.Machine{
		{ID: 1, Name: "Net 1", Category: domain.CategoryLeatherBall, OperatorRequired: true, IsActive: true},
		{ID: 2, Name: "Net 2", Category: domain.CategoryLeatherBall, OperatorRequired: true, IsActive: true},
		{ID: 3, Name: "Tennis", Category: domain.CategoryTennisBall, IsActive: true},
		{ID: 4, Name: "Old", Category: domain.CategoryTennisBall, IsActive: false},
		{ID: 5, Name: "Net 5", Category: domain.CategoryLeatherBall, IsActive: true},
	}
}

type fixture struct {
	bookings *fakeBookings
	blocks   *fakeBlocks
	policy   *domain.Policy
}

func newFixture() *fixture {
	return &fixture{
		bookings: &fakeBookings{},
		blocks:   &fakeBlocks{},
		policy:   domain.DefaultPolicy(),
	}
}

func (f *fixture) useCase(at time.Time) *UseCase {
	uc := NewUseCase(f.bookings, f.blocks, &fakeMachines{machines: machines()}, staticPolicy{f.policy}, admins{100: true}, nopLogger{})
	uc.timeProvider = fixedTime{at}
	return uc
}

func byStart(resp *Response) map[types.TimeString]Slot {
	out := make(map[types.TimeString]Slot, len(resp.Slots))
	for _, s := range resp.Slots {
		out[s.StartTime] = s
	}
	return out
}

func TestExecute_EmptyDatabase(t *testing.T) {
	f := newFixture()

	resp, err := f.useCase(now).Execute(context.Background(), &Request{UserID: 7, Date: day, MachineID: ptr.Ptr(int64(1))})
	require.NoError(t, err)

	require.NotEmpty(t, resp.Slots)
	first := resp.Slots[0]
	assert.Equal(t, types.TimeString("07:00"), first.StartTime)
	assert.Equal(t, types.TimeString("07:30"), first.EndTime)
	assert.Equal(t, domain.SlotAvailable, first.Status)
	assert.True(t, first.OperatorAvailable)
	assert.True(t, first.Price.IsPositive())
	assert.Equal(t, domain.BallMachine, resp.BallType, "мяч по умолчанию для кожаной категории")
}

func TestExecute_BookedAndOperatorExhausted(t *testing.T) {
	f := newFixture()
	f.bookings.bookings = []*domain.Booking{
		{ID: 1, MachineID: ptr.Ptr(int64(1)), BookingDate: day, StartTime: "09:00", EndTime: "09:30",
			BallType: domain.BallMachine, OperationMode: domain.ModeWithOperator, Status: domain.StatusBooked},
	}

	uc := f.useCase(now)

	own, err := uc.Execute(context.Background(), &Request{Date: day, MachineID: ptr.Ptr(int64(1))})
	require.NoError(t, err)
	assert.Equal(t, domain.SlotBooked, byStart(own)["09:00"].Status)

	other, err := uc.Execute(context.Background(), &Request{Date: day, MachineID: ptr.Ptr(int64(2))})
	require.NoError(t, err)
	assert.Equal(t, domain.SlotOperatorUnavailable, byStart(other)["09:00"].Status)

	tennis, err := uc.Execute(context.Background(), &Request{Date: day, MachineID: ptr.Ptr(int64(3))})
	require.NoError(t, err)
	assert.Equal(t, domain.SlotAvailable, byStart(tennis)["09:00"].Status, "самообслуживание не ждёт оператора")
}

func TestExecute_DefaultModeFollowsCategory(t *testing.T) {
	f := newFixture()
	f.bookings.bookings = []*domain.Booking{
		{ID: 1, MachineID: ptr.Ptr(int64(1)), BookingDate: day, StartTime: "09:00", EndTime: "09:30",
			BallType: domain.BallMachine, OperationMode: domain.ModeWithOperator, Status: domain.StatusBooked},
	}
	uc := f.useCase(now)

	byDefault, err := uc.Execute(context.Background(), &Request{Date: day, MachineID: ptr.Ptr(int64(5))})
	require.NoError(t, err)
	assert.Equal(t, domain.SlotOperatorUnavailable, byStart(byDefault)["09:00"].Status,
		"кожаная категория по умолчанию работает с оператором")

	selfOperate, err := uc.Execute(context.Background(), &Request{
		Date: day, MachineID: ptr.Ptr(int64(5)), OperationMode: ptr.Ptr(domain.ModeSelfOperate),
	})
	require.NoError(t, err)
	assert.Equal(t, domain.SlotAvailable, byStart(selfOperate)["09:00"].Status)

	_, err = uc.Execute(context.Background(), &Request{
		Date: day, MachineID: ptr.Ptr(int64(1)), OperationMode: ptr.Ptr(domain.ModeSelfOperate),
	})
	assert.ErrorIs(t, err, ErrModeNotAllowed)
}

func TestExecute_LegacyRequestByBallType(t *testing.T) {
	f := newFixture()
	f.policy.OperatorCount = 5
	f.bookings.bookings = []*domain.Booking{
		{ID: 1, MachineID: ptr.Ptr(int64(2)), BookingDate: day, StartTime: "12:00", EndTime: "12:30",
			BallType: domain.BallLeather, OperationMode: domain.ModeWithOperator, Status: domain.StatusBooked},
	}

	resp, err := f.useCase(now).Execute(context.Background(), &Request{Date: day, BallType: ptr.Ptr(domain.BallLeather)})
	require.NoError(t, err)
	assert.Equal(t, domain.SlotBooked, byStart(resp)["12:00"].Status)
}

func TestExecute_BlocksDegradeToNone(t *testing.T) {
	f := newFixture()
	f.blocks.err = errors.New("relation blocked_slots does not exist")

	resp, err := f.useCase(now).Execute(context.Background(), &Request{Date: day, MachineID: ptr.Ptr(int64(3))})
	require.NoError(t, err)
	assert.Equal(t, domain.SlotAvailable, resp.Slots[0].Status)
}

func TestExecute_WholeDayBlock(t *testing.T) {
	f := newFixture()
	f.blocks.blocks = []*domain.BlockedSlot{{ID: 1, StartDate: day, EndDate: day, Reason: "maintenance"}}

	resp, err := f.useCase(now).Execute(context.Background(), &Request{Date: day, MachineID: ptr.Ptr(int64(3))})
	require.NoError(t, err)
	for _, s := range resp.Slots {
		assert.Equal(t, domain.SlotBlocked, s.Status)
	}
}

func TestExecute_PastDate(t *testing.T) {
	f := newFixture()
	later := day.AddDate(0, 0, 2)

	resp, err := f.useCase(later).Execute(context.Background(), &Request{UserID: 7, Date: day, MachineID: ptr.Ptr(int64(1))})
	require.NoError(t, err)
	assert.Empty(t, resp.Slots)

	resp, err = f.useCase(later).Execute(context.Background(), &Request{UserID: 100, Date: day, MachineID: ptr.Ptr(int64(1))})
	require.NoError(t, err)
	assert.NotEmpty(t, resp.Slots, "администратор видит прошедшее расписание")
}

func TestExecute_Errors(t *testing.T) {
	f := newFixture()
	f.policy.MachinePitchCompatibility = map[int64][]domain.PitchType{1: {domain.PitchAstro}}
	uc := f.useCase(now)

	tests := []struct {
		name string
		req  *Request
		want error
	}{
		{"no machine and no ball", &Request{Date: day}, ErrInvalidInput},
		{"unknown pitch", &Request{Date: day, MachineID: ptr.Ptr(int64(1)), PitchType: ptr.Ptr(domain.PitchType("GRASS"))}, ErrInvalidInput},
		{"ball does not fit machine", &Request{Date: day, MachineID: ptr.Ptr(int64(1)), BallType: ptr.Ptr(domain.BallTennis)}, ErrInvalidInput},
		{"unknown machine", &Request{Date: day, MachineID: ptr.Ptr(int64(42))}, ErrMachineNotFound},
		{"inactive machine", &Request{Date: day, MachineID: ptr.Ptr(int64(4))}, ErrMachineInactive},
		{"pitch not on machine", &Request{Date: day, MachineID: ptr.Ptr(int64(1)), PitchType: ptr.Ptr(domain.PitchNatural)}, ErrPitchNotSupported},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, err := uc.Execute(context.Background(), tt.req)
			assert.ErrorIs(t, err, tt.want)
		})
	}
}
