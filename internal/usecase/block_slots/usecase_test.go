package block_slots

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/m04kA/SMC-NetsBookingService/internal/domain"
	blockedRepo "github.com/m04kA/SMC-NetsBookingService/internal/infra/storage/blocked"
	bookingRepo "github.com/m04kA/SMC-NetsBookingService/internal/infra/storage/booking"
	machineRepo "github.com/m04kA/SMC-NetsBookingService/internal/infra/storage/machine"
	packagesRepo "github.com/m04kA/SMC-NetsBookingService/internal/infra/storage/packages"
	"github.com/m04kA/SMC-NetsBookingService/internal/integrations/notifier"
	"github.com/m04kA/SMC-NetsBookingService/pkg/ptr"
	"github.com/m04kA/SMC-NetsBookingService/pkg/types"
)

var day = time.Date(2026, 11, 5, 0, 0, 0, 0, time.UTC)

const adminID = 100

type fakeBlocks struct {
	blocks      []*domain.BlockedSlot
	unsupported bool
}

func (f *fakeBlocks) Create(_ context.Context, b *domain.BlockedSlot) (*domain.BlockedSlot, error) {
	if f.unsupported {
		return nil, blockedRepo.ErrNotSupported
	}
	b.ID = int64(len(f.blocks) + 1)
	f.blocks = append(f.blocks, b)
	return b, nil
}

type fakeBookings struct{ bookings []*domain.Booking }

func (f *fakeBookings) FindForBlock(_ context.Context, block *domain.BlockedSlot) ([]*domain.Booking, error) {
	result := make([]*domain.Booking, 0)
	for _, b := range f.bookings {
		if block.AffectsBooking(b) {
			result = append(result, b)
		}
	}
	return result, nil
}

func (f *fakeBookings) Cancel(_ context.Context, id int64, reason string, cancelledBy int64) error {
	for _, b := range f.bookings {
		if b.ID == id && b.Status == domain.StatusBooked {
			b.Status = domain.StatusCancelled
			b.CancellationReason = &reason
			b.CancelledBy = &cancelledBy
			return nil
		}
	}
	return bookingRepo.ErrCannotCancel
}

type fakeMachines struct{}

func (fakeMachines) GetByID(_ context.Context, id int64) (*domain.Machine, error) {
	if id > 3 {
		return nil, machineRepo.ErrMachineNotFound
	}
	return &domain.Machine{ID: id, Category: domain.CategoryLeatherBall, IsActive: true}, nil
}

type fakePackages struct {
	links map[int64]*domain.PackageBooking
	used  map[int64]int
}

func (f *fakePackages) GetLinkByBookingID(_ context.Context, bookingID int64) (*domain.PackageBooking, error) {
	link, ok := f.links[bookingID]
	if !ok {
		return nil, packagesRepo.ErrLinkNotFound
	}
	return link, nil
}

func (f *fakePackages) DecrementUsed(_ context.Context, id int64, n int) error {
	f.used[id] -= n
	return nil
}

type fakeNotifications struct {
	created   []*domain.Notification
	published []uuid.UUID
}

func (f *fakeNotifications) Create(_ context.Context, n *domain.Notification) (*domain.Notification, error) {
	f.created = append(f.created, n)
	return n, nil
}

func (f *fakeNotifications) MarkPublished(_ context.Context, id uuid.UUID) error {
	f.published = append(f.published, id)
	return nil
}

type fakePublisher struct {
	messages []notifier.Message
	fail     bool
}

func (f *fakePublisher) Publish(_ context.Context, msg notifier.Message) error {
	if f.fail {
		return notifier.ErrPublish
	}
	f.messages = append(f.messages, msg)
	return nil
}

type inlineTx struct{}

func (inlineTx) DoSerializable(ctx context.Context, fn func(ctx context.Context) error) error {
	return fn(ctx)
}

type admins map[int64]bool

func (a admins) IsAdmin(_ context.Context, id int64) bool { return a[id] }

type cascadeCounter struct{ total int }

func (c *cascadeCounter) BookingsCascadeCancelled(n int) { c.total += n }

type nopLogger struct{}

func (nopLogger) Info(string, ...interface{})  {}
func (nopLogger) Warn(string, ...interface{})  {}
func (nopLogger) Error(string, ...interface{}) {}

type fixture struct {
	blocks        *fakeBlocks
	bookings      *fakeBookings
	packages      *fakePackages
	notifications *fakeNotifications
	publisher     *fakePublisher
	metrics       *cascadeCounter
}

func newFixture() *fixture {
	booking := func(id int64, userID *int64, machineID int64, start, end types.TimeString) *domain.Booking {
		return &domain.Booking{
			ID: id, UserID: userID, CreatedBy: adminID, MachineID: ptr.Ptr(machineID), BookingDate: day,
			StartTime: start, EndTime: end, BallType: domain.BallMachine, Status: domain.StatusBooked,
		}
	}

	return &fixture{
		blocks: &fakeBlocks{},
		bookings: &fakeBookings{bookings: []*domain.Booking{
			booking(1, ptr.Ptr(int64(7)), 1, "10:00", "10:30"),
			booking(2, ptr.Ptr(int64(8)), 1, "10:30", "11:00"),
			booking(3, nil, 1, "11:00", "11:30"),
			booking(4, ptr.Ptr(int64(9)), 2, "10:00", "10:30"),
			booking(5, ptr.Ptr(int64(7)), 1, "12:00", "12:30"),
		}},
		packages: &fakePackages{
			links: map[int64]*domain.PackageBooking{1: {BookingID: 1, UserPackageID: 50, SessionsUsed: 1}},
			used:  map[int64]int{50: 3},
		},
		notifications: &fakeNotifications{},
		publisher:     &fakePublisher{},
		metrics:       &cascadeCounter{},
	}
}

func (f *fixture) useCase(publisher Publisher) *UseCase {
	return NewUseCase(f.blocks, f.bookings, fakeMachines{}, f.packages, f.notifications, publisher,
		"booking.cancelled", admins{adminID: true}, inlineTx{}, f.metrics, nopLogger{})
}

func blockRequest() *Request {
	return &Request{
		CallerID:  adminID,
		StartDate: day,
		EndDate:   day,
		StartTime: ptr.Ptr(types.TimeString("10:00")),
		EndTime:   ptr.Ptr(types.TimeString("11:30")),
		MachineID: ptr.Ptr(int64(1)),
		Reason:    "net repair",
	}
}

func TestExecute_BlockCascade(t *testing.T) {
	f := newFixture()

	resp, err := f.useCase(f.publisher).Execute(context.Background(), blockRequest())
	require.NoError(t, err)

	assert.Equal(t, []int64{1, 2, 3}, resp.CancelledBookings)
	for _, b := range f.bookings.bookings[:3] {
		assert.Equal(t, domain.StatusCancelled, b.Status)
		assert.Equal(t, "net repair", *b.CancellationReason)
		assert.Equal(t, int64(adminID), *b.CancelledBy)
	}
	assert.Equal(t, domain.StatusBooked, f.bookings.bookings[3].Status, "другая машина")
	assert.Equal(t, domain.StatusBooked, f.bookings.bookings[4].Status, "вне диапазона времени")

	assert.Equal(t, 2, f.packages.used[50], "сессия за отменённое бронирование вернулась")

	require.Len(t, f.notifications.created, 2, "бронирование без игрока не уведомляется")
	assert.Equal(t, int64(7), f.notifications.created[0].UserID)
	assert.Equal(t, resp.Block.ID, f.notifications.created[0].Payload.BlockID)

	require.Len(t, f.publisher.messages, 2)
	assert.Equal(t, "booking.cancelled", f.publisher.messages[0].RoutingKey)
	assert.Equal(t, f.notifications.created[0].ID, f.publisher.messages[0].ID)
	assert.Len(t, f.notifications.published, 2)
	assert.Equal(t, 2, resp.NotificationsSent)
	assert.Equal(t, 3, f.metrics.total)
}

func TestExecute_PublishFailureDoesNotFailBlock(t *testing.T) {
	f := newFixture()
	f.publisher.fail = true

	resp, err := f.useCase(f.publisher).Execute(context.Background(), blockRequest())
	require.NoError(t, err)
	assert.Equal(t, 0, resp.NotificationsSent)
	assert.Equal(t, 2, resp.NotificationsTotal)
	assert.Empty(t, f.notifications.published)
}

func TestExecute_WithoutPublisher(t *testing.T) {
	f := newFixture()

	resp, err := f.useCase(nil).Execute(context.Background(), blockRequest())
	require.NoError(t, err)
	assert.Len(t, f.notifications.created, 2, "уведомления остаются в таблице")
	assert.Equal(t, 0, resp.NotificationsSent)
}

func TestExecute_WholeDayAllMachines(t *testing.T) {
	f := newFixture()
	req := &Request{CallerID: adminID, StartDate: day, EndDate: day, Reason: "tournament"}

	resp, err := f.useCase(nil).Execute(context.Background(), req)
	require.NoError(t, err)
	assert.Len(t, resp.CancelledBookings, 5)
}

func TestExecute_Rejections(t *testing.T) {
	f := newFixture()
	uc := f.useCase(nil)

	notAdmin := blockRequest()
	notAdmin.CallerID = 7

	halfTime := blockRequest()
	halfTime.EndTime = nil

	reversed := blockRequest()
	reversed.EndDate = day.AddDate(0, 0, -1)

	noReason := blockRequest()
	noReason.Reason = "   "

	unknownMachine := blockRequest()
	unknownMachine.MachineID = ptr.Ptr(int64(42))

	tests := []struct {
		name string
		req  *Request
		want error
	}{
		{"not admin", notAdmin, ErrAccessDenied},
		{"only start time", halfTime, ErrInvalidInput},
		{"end before start", reversed, ErrInvalidInput},
		{"empty reason", noReason, ErrInvalidInput},
		{"unknown machine", unknownMachine, ErrMachineNotFound},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, err := uc.Execute(context.Background(), tt.req)
			assert.ErrorIs(t, err, tt.want)
		})
	}

	f.blocks.unsupported = true
	_, err := uc.Execute(context.Background(), blockRequest())
	assert.True(t, errors.Is(err, ErrNotSupported))

	for _, b := range f.bookings.bookings {
		assert.Equal(t, domain.StatusBooked, b.Status)
	}
}
