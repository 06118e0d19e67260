package bookings

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/samber/lo"

	"github.com/m04kA/SMC-NetsBookingService/internal/domain"
	bookingRepo "github.com/m04kA/SMC-NetsBookingService/internal/infra/storage/booking"
	"github.com/m04kA/SMC-NetsBookingService/internal/service/bookings/models"
)

// Service чтение и отмена бронирований
type Service struct {
	bookingRepo  BookingRepository
	packageRepo  PackageRepository
	txManager    TransactionManager
	roles        RoleResolver
	timeProvider TimeProvider
	logger       Logger
}

// NewService создает новый экземпляр сервиса бронирований
func NewService(
	bookingRepo BookingRepository,
	packageRepo PackageRepository,
	txManager TransactionManager,
	roles RoleResolver,
	timeProvider TimeProvider,
	logger Logger,
) *Service {
	return &Service{
		bookingRepo:  bookingRepo,
		packageRepo:  packageRepo,
		txManager:    txManager,
		roles:        roles,
		timeProvider: timeProvider,
		logger:       logger,
	}
}

// GetByID получает бронирование по ID.
// Видеть бронирование может игрок, создатель или администратор.
func (s *Service) GetByID(ctx context.Context, id int64, userID int64) (*models.BookingResponse, error) {
	booking, err := s.bookingRepo.GetByID(ctx, id)
	if err != nil {
		if errors.Is(err, bookingRepo.ErrBookingNotFound) {
			s.logger.Warn("GetByID: booking id=%d not found", id)
			return nil, ErrBookingNotFound
		}
		s.logger.Error("GetByID: repository error for booking id=%d: %v", id, err)
		return nil, fmt.Errorf("%w: GetByID - repository error: %v", ErrInternal, err)
	}

	if !booking.BelongsTo(userID) && booking.CreatedBy != userID && !s.roles.IsAdmin(ctx, userID) {
		s.logger.Warn("GetByID: access denied for user=%d to booking id=%d", userID, id)
		return nil, ErrAccessDenied
	}

	return models.FromDomainBooking(booking, s.timeProvider.Now()), nil
}

// GetUserBookings история бронирований игрока. Чужую историю видит только администратор.
func (s *Service) GetUserBookings(ctx context.Context, req *models.GetUserBookingsRequest) (*models.BookingListResponse, error) {
	s.logger.Info("GetUserBookings: fetching bookings for user=%d by caller=%d, status=%v", req.UserID, req.CallerID, req.Status)

	if req.UserID != req.CallerID && !s.roles.IsAdmin(ctx, req.CallerID) {
		s.logger.Warn("GetUserBookings: access denied for caller=%d to user=%d", req.CallerID, req.UserID)
		return nil, ErrAccessDenied
	}

	filter := domain.BookingsFilter{UserID: &req.UserID}
	if req.Status != nil {
		status, err := models.ToDomainBookingStatus(*req.Status)
		if err != nil {
			s.logger.Warn("GetUserBookings: invalid status=%s for user=%d", *req.Status, req.UserID)
			return nil, fmt.Errorf("%w: invalid status", ErrInvalidInput)
		}
		filter.Status = &status
	}

	bookings, err := s.bookingRepo.List(ctx, filter)
	if err != nil {
		s.logger.Error("GetUserBookings: repository error for user=%d: %v", req.UserID, err)
		return nil, fmt.Errorf("%w: GetUserBookings - repository error: %v", ErrInternal, err)
	}

	now := s.timeProvider.Now()
	bookings = filterEffective(bookings, filter.Status, now)

	return models.FromDomainBookingList(bookings, now), nil
}

// GetScheduleBookings расписание на дату для администратора
func (s *Service) GetScheduleBookings(ctx context.Context, req *models.GetScheduleRequest) (*models.BookingListResponse, error) {
	s.logger.Info("GetScheduleBookings: date=%s, machine=%v by caller=%d",
		req.Date.Format(domain.DateFormat), req.MachineID, req.CallerID)

	if !s.roles.IsAdmin(ctx, req.CallerID) {
		s.logger.Warn("GetScheduleBookings: caller=%d is not an admin", req.CallerID)
		return nil, ErrAccessDenied
	}

	date := domain.DateOnly(req.Date)
	filter := domain.BookingsFilter{
		MachineID: req.MachineID,
		StartDate: &date,
		EndDate:   &date,
	}
	if req.Status != nil {
		status, err := models.ToDomainBookingStatus(*req.Status)
		if err != nil {
			return nil, fmt.Errorf("%w: invalid status", ErrInvalidInput)
		}
		filter.Status = &status
	}

	bookings, err := s.bookingRepo.List(ctx, filter)
	if err != nil {
		s.logger.Error("GetScheduleBookings: repository error: %v", err)
		return nil, fmt.Errorf("%w: GetScheduleBookings - repository error: %v", ErrInternal, err)
	}

	now := s.timeProvider.Now()
	bookings = filterEffective(bookings, filter.Status, now)

	return models.FromDomainBookingList(bookings, now), nil
}

// filterEffective BOOKED и DONE различаются только по времени, поэтому уточняем после чтения
func filterEffective(bookings []*domain.Booking, status *domain.BookingStatus, now time.Time) []*domain.Booking {
	if status == nil {
		return bookings
	}
	return lo.Filter(bookings, func(b *domain.Booking, _ int) bool {
		return b.EffectiveStatus(now) == *status
	})
}
