package bookings

import (
	"context"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/m04kA/SMC-NetsBookingService/internal/domain"
	bookingRepo "github.com/m04kA/SMC-NetsBookingService/internal/infra/storage/booking"
	packagesRepo "github.com/m04kA/SMC-NetsBookingService/internal/infra/storage/packages"
	"github.com/m04kA/SMC-NetsBookingService/internal/service/bookings/models"
	"github.com/m04kA/SMC-NetsBookingService/pkg/ptr"
)

var now = time.Date(2026, 11, 2, 12, 0, 0, 0, time.UTC)

type fixedTime struct{}

func (fixedTime) Now() time.Time { return now }

type fakeRepo struct {
	bookings []*domain.Booking
	filters  []domain.BookingsFilter
}

func (f *fakeRepo) GetByID(_ context.Context, id int64) (*domain.Booking, error) {
	for _, b := range f.bookings {
		if b.ID == id {
			return b, nil
		}
	}
	return nil, bookingRepo.ErrBookingNotFound
}

func (f *fakeRepo) List(_ context.Context, filter domain.BookingsFilter) ([]*domain.Booking, error) {
	f.filters = append(f.filters, filter)
	return f.bookings, nil
}

func (f *fakeRepo) Cancel(_ context.Context, id int64, reason string, cancelledBy int64) error {
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
	if f.used[id] < 0 {
		f.used[id] = 0
	}
	return nil
}

type inlineTx struct{}

func (inlineTx) DoSerializable(ctx context.Context, fn func(ctx context.Context) error) error {
	return fn(ctx)
}

type admins map[int64]bool

func (a admins) IsAdmin(_ context.Context, id int64) bool { return a[id] }

type nopLogger struct{}

func (nopLogger) Info(string, ...interface{})  {}
func (nopLogger) Warn(string, ...interface{})  {}
func (nopLogger) Error(string, ...interface{}) {}

func newService(repo *fakeRepo) *Service {
	return newServiceWithPackages(repo, &fakePackages{links: map[int64]*domain.PackageBooking{}, used: map[int64]int{}})
}

func newServiceWithPackages(repo *fakeRepo, packages *fakePackages) *Service {
	return NewService(repo, packages, inlineTx{}, admins{100: true}, fixedTime{}, nopLogger{})
}

func fixtures() []*domain.Booking {
	day := time.Date(2026, 11, 2, 0, 0, 0, 0, time.UTC)
	return []*domain.Booking{
		{ID: 1, UserID: ptr.Ptr(int64(7)), CreatedBy: 7, BookingDate: day, StartTime: "09:00", EndTime: "09:30", Status: domain.StatusBooked},
		{ID: 2, UserID: ptr.Ptr(int64(7)), CreatedBy: 7, BookingDate: day, StartTime: "15:00", EndTime: "15:30", Status: domain.StatusBooked},
	}
}

func TestGetByID_Access(t *testing.T) {
	s := newService(&fakeRepo{bookings: fixtures()})
	ctx := context.Background()

	resp, err := s.GetByID(ctx, 1, 7)
	require.NoError(t, err)
	assert.Equal(t, "DONE", resp.Status, "прошедшее бронирование отдаётся как DONE")

	_, err = s.GetByID(ctx, 1, 8)
	assert.ErrorIs(t, err, ErrAccessDenied)

	_, err = s.GetByID(ctx, 1, 100)
	assert.NoError(t, err)

	_, err = s.GetByID(ctx, 99, 7)
	assert.ErrorIs(t, err, ErrBookingNotFound)
}

func TestGetUserBookings_DerivedStatusFilter(t *testing.T) {
	repo := &fakeRepo{bookings: fixtures()}
	s := newService(repo)

	resp, err := s.GetUserBookings(context.Background(), &models.GetUserBookingsRequest{
		CallerID: 7,
		UserID:   7,
		Status:   ptr.Ptr("BOOKED"),
	})
	require.NoError(t, err)
	require.Len(t, resp.Bookings, 1)
	assert.Equal(t, int64(2), resp.Bookings[0].ID)

	_, err = s.GetUserBookings(context.Background(), &models.GetUserBookingsRequest{CallerID: 8, UserID: 7})
	assert.ErrorIs(t, err, ErrAccessDenied)

	_, err = s.GetUserBookings(context.Background(), &models.GetUserBookingsRequest{CallerID: 7, UserID: 7, Status: ptr.Ptr("LOST")})
	assert.ErrorIs(t, err, ErrInvalidInput)
}

func TestGetScheduleBookings_AdminOnly(t *testing.T) {
	repo := &fakeRepo{bookings: fixtures()}
	s := newService(repo)

	req := &models.GetScheduleRequest{CallerID: 7, Date: now}
	_, err := s.GetScheduleBookings(context.Background(), req)
	assert.ErrorIs(t, err, ErrAccessDenied)

	req.CallerID = 100
	resp, err := s.GetScheduleBookings(context.Background(), req)
	require.NoError(t, err)
	assert.Len(t, resp.Bookings, 2)

	last := repo.filters[len(repo.filters)-1]
	require.NotNil(t, last.StartDate)
	assert.True(t, last.StartDate.Equal(*last.EndDate))
}

func TestCancel_RestoresPackageSessions(t *testing.T) {
	repo := &fakeRepo{bookings: fixtures()}
	packages := &fakePackages{
		links: map[int64]*domain.PackageBooking{2: {BookingID: 2, UserPackageID: 50, SessionsUsed: 1}},
		used:  map[int64]int{50: 2},
	}
	s := newServiceWithPackages(repo, packages)

	err := s.Cancel(context.Background(), 2, &models.CancelBookingRequest{UserID: 7, CancellationReason: "rain"})
	require.NoError(t, err)

	assert.Equal(t, domain.StatusCancelled, repo.bookings[1].Status)
	assert.Equal(t, "rain", *repo.bookings[1].CancellationReason)
	assert.Equal(t, 1, packages.used[50], "сессия вернулась в пакет")

	err = s.Cancel(context.Background(), 2, &models.CancelBookingRequest{UserID: 7})
	assert.ErrorIs(t, err, ErrCannotCancel)
	assert.Equal(t, 1, packages.used[50], "повторная отмена не возвращает сессию")
}

func TestCancel_Rules(t *testing.T) {
	repo := &fakeRepo{bookings: fixtures()}
	s := newService(repo)
	ctx := context.Background()

	assert.ErrorIs(t, s.Cancel(ctx, 2, &models.CancelBookingRequest{UserID: 8}), ErrAccessDenied)
	assert.ErrorIs(t, s.Cancel(ctx, 1, &models.CancelBookingRequest{UserID: 7}), ErrCannotCancel, "прошедшее бронирование")
	assert.ErrorIs(t, s.Cancel(ctx, 99, &models.CancelBookingRequest{UserID: 7}), ErrBookingNotFound)
	assert.NoError(t, s.Cancel(ctx, 2, &models.CancelBookingRequest{UserID: 100}), "администратор отменяет любое")
}
