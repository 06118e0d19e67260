package bookings

import (
	"context"
	"errors"
	"fmt"

	"github.com/m04kA/SMC-NetsBookingService/internal/domain"
	bookingRepo "github.com/m04kA/SMC-NetsBookingService/internal/infra/storage/booking"
	packagesRepo "github.com/m04kA/SMC-NetsBookingService/internal/infra/storage/packages"
	"github.com/m04kA/SMC-NetsBookingService/internal/service/bookings/models"
)

// Cancel отменяет бронирование игрока или администратора.
// Отмена и возврат сессий пакета выполняются в одной транзакции.
func (s *Service) Cancel(ctx context.Context, bookingID int64, req *models.CancelBookingRequest) error {
	s.logger.Info("Cancel: booking id=%d by user=%d", bookingID, req.UserID)

	if len(req.CancellationReason) > domain.MaxReasonLength {
		return fmt.Errorf("%w: cancellation reason is too long", ErrInvalidInput)
	}

	return s.txManager.DoSerializable(ctx, func(txCtx context.Context) error {
		booking, err := s.bookingRepo.GetByID(txCtx, bookingID)
		if err != nil {
			if errors.Is(err, bookingRepo.ErrBookingNotFound) {
				s.logger.Warn("Cancel: booking id=%d not found", bookingID)
				return ErrBookingNotFound
			}
			s.logger.Error("Cancel: repository error for booking id=%d: %v", bookingID, err)
			return fmt.Errorf("%w: Cancel - get booking: %v", ErrInternal, err)
		}

		if !booking.BelongsTo(req.UserID) && booking.CreatedBy != req.UserID && !s.roles.IsAdmin(txCtx, req.UserID) {
			s.logger.Warn("Cancel: access denied for user=%d to booking id=%d", req.UserID, bookingID)
			return ErrAccessDenied
		}

		if !booking.CanBeCancelled(s.timeProvider.Now()) {
			s.logger.Warn("Cancel: booking id=%d has status %s", bookingID, booking.EffectiveStatus(s.timeProvider.Now()))
			return ErrCannotCancel
		}

		if err := s.bookingRepo.Cancel(txCtx, bookingID, req.CancellationReason, req.UserID); err != nil {
			if errors.Is(err, bookingRepo.ErrCannotCancel) {
				return ErrCannotCancel
			}
			s.logger.Error("Cancel: failed to cancel booking id=%d: %v", bookingID, err)
			return fmt.Errorf("%w: Cancel - cancel booking: %v", ErrInternal, err)
		}

		return s.restoreSessions(txCtx, bookingID)
	})
}

// restoreSessions возвращает сессии, списанные за бронирование
func (s *Service) restoreSessions(ctx context.Context, bookingID int64) error {
	link, err := s.packageRepo.GetLinkByBookingID(ctx, bookingID)
	if errors.Is(err, packagesRepo.ErrLinkNotFound) {
		return nil
	}
	if err != nil {
		s.logger.Error("Cancel: failed to get package link for booking id=%d: %v", bookingID, err)
		return fmt.Errorf("%w: Cancel - get package link: %v", ErrInternal, err)
	}

	if err := s.packageRepo.DecrementUsed(ctx, link.UserPackageID, link.SessionsUsed); err != nil {
		s.logger.Error("Cancel: failed to restore %d sessions to package id=%d: %v", link.SessionsUsed, link.UserPackageID, err)
		return fmt.Errorf("%w: Cancel - restore sessions: %v", ErrInternal, err)
	}

	s.logger.Info("Cancel: restored %d sessions to package id=%d", link.SessionsUsed, link.UserPackageID)
	return nil
}
