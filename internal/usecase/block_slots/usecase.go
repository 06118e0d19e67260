package block_slots

import (
	"context"
	"errors"
	"fmt"

	"github.com/m04kA/SMC-NetsBookingService/internal/domain"
	blockedRepo "github.com/m04kA/SMC-NetsBookingService/internal/infra/storage/blocked"
	bookingRepo "github.com/m04kA/SMC-NetsBookingService/internal/infra/storage/booking"
	machineRepo "github.com/m04kA/SMC-NetsBookingService/internal/infra/storage/machine"
	packagesRepo "github.com/m04kA/SMC-NetsBookingService/internal/infra/storage/packages"
	"github.com/m04kA/SMC-NetsBookingService/internal/integrations/notifier"
)

// UseCase блокировка слотов с каскадной отменой бронирований
type UseCase struct {
	blockRepo        BlockRepository
	bookingRepo      BookingRepository
	machineRepo      MachineRepository
	packageRepo      PackageRepository
	notificationRepo NotificationRepository
	publisher        Publisher
	routingKey       string
	roles            RoleResolver
	txManager        TransactionManager
	metrics          Metrics
	logger           Logger
}

// NewUseCase создает новый экземпляр use case. publisher может быть nil.
func NewUseCase(
	blockRepo BlockRepository,
	bookingRepo BookingRepository,
	machineRepo MachineRepository,
	packageRepo PackageRepository,
	notificationRepo NotificationRepository,
	publisher Publisher,
	routingKey string,
	roles RoleResolver,
	txManager TransactionManager,
	metrics Metrics,
	logger Logger,
) *UseCase {
	return &UseCase{
		blockRepo:        blockRepo,
		bookingRepo:      bookingRepo,
		machineRepo:      machineRepo,
		packageRepo:      packageRepo,
		notificationRepo: notificationRepo,
		publisher:        publisher,
		routingKey:       routingKey,
		roles:            roles,
		txManager:        txManager,
		metrics:          metrics,
		logger:           logger,
	}
}

// Execute создаёт блокировку и в той же транзакции отменяет попавшие под неё бронирования,
// возвращает сессии пакетов и пишет уведомления игрокам. Публикация идёт после коммита.
func (uc *UseCase) Execute(ctx context.Context, req *Request) (*Response, error) {
	uc.logger.Info("BlockSlots: caller=%d, %s..%s, machine=%v, reason=%q",
		req.CallerID, req.StartDate.Format(domain.DateFormat), req.EndDate.Format(domain.DateFormat), req.MachineID, req.Reason)

	if !uc.roles.IsAdmin(ctx, req.CallerID) {
		uc.logger.Warn("BlockSlots: caller=%d is not an admin", req.CallerID)
		return nil, ErrAccessDenied
	}

	if err := validateRequest(req); err != nil {
		uc.logger.Warn("BlockSlots: validation failed: %v", err)
		return nil, err
	}

	if req.MachineID != nil {
		if _, err := uc.machineRepo.GetByID(ctx, *req.MachineID); err != nil {
			if errors.Is(err, machineRepo.ErrMachineNotFound) {
				return nil, ErrMachineNotFound
			}
			uc.logger.Error("BlockSlots: failed to get machine id=%d: %v", *req.MachineID, err)
			return nil, fmt.Errorf("%w: failed to get machine: %v", ErrInternal, err)
		}
	}

	resp := &Response{CancelledBookings: []int64{}}
	notifications := make([]*domain.Notification, 0)

	err := uc.txManager.DoSerializable(ctx, func(txCtx context.Context) error {
		block, err := uc.blockRepo.Create(txCtx, &domain.BlockedSlot{
			StartDate: domain.DateOnly(req.StartDate),
			EndDate:   domain.DateOnly(req.EndDate),
			StartTime: req.StartTime,
			EndTime:   req.EndTime,
			MachineID: req.MachineID,
			PitchType: req.PitchType,
			Reason:    req.Reason,
			CreatedBy: req.CallerID,
		})
		if err != nil {
			if errors.Is(err, blockedRepo.ErrNotSupported) {
				return ErrNotSupported
			}
			return fmt.Errorf("%w: failed to create block: %v", ErrInternal, err)
		}
		resp.Block = block

		affected, err := uc.bookingRepo.FindForBlock(txCtx, block)
		if err != nil {
			return fmt.Errorf("%w: failed to find affected bookings: %v", ErrInternal, err)
		}

		for _, booking := range affected {
			cancelled, err := uc.cancelBooking(txCtx, booking, block, req.CallerID)
			if err != nil {
				return err
			}
			if !cancelled {
				continue
			}
			resp.CancelledBookings = append(resp.CancelledBookings, booking.ID)

			if booking.UserID == nil {
				continue
			}
			n, err := uc.notificationRepo.Create(txCtx, domain.NewCancellationNotification(booking, block))
			if err != nil {
				return fmt.Errorf("%w: failed to create notification: %v", ErrInternal, err)
			}
			notifications = append(notifications, n)
		}

		return nil
	})
	if err != nil {
		uc.logger.Error("BlockSlots: transaction failed: %v", err)
		return nil, err
	}

	uc.metrics.BookingsCascadeCancelled(len(resp.CancelledBookings))
	resp.NotificationsTotal = len(notifications)
	resp.NotificationsSent = uc.publish(ctx, notifications)

	uc.logger.Info("BlockSlots: block id=%d created, %d bookings cancelled, %d/%d notifications published",
		resp.Block.ID, len(resp.CancelledBookings), resp.NotificationsSent, resp.NotificationsTotal)

	return resp, nil
}

// cancelBooking отменяет бронирование и возвращает сессии пакета.
// false означает, что бронирование уже было отменено конкурентно.
func (uc *UseCase) cancelBooking(ctx context.Context, booking *domain.Booking, block *domain.BlockedSlot, actor int64) (bool, error) {
	if err := uc.bookingRepo.Cancel(ctx, booking.ID, block.Reason, actor); err != nil {
		if errors.Is(err, bookingRepo.ErrCannotCancel) {
			return false, nil
		}
		return false, fmt.Errorf("%w: failed to cancel booking id=%d: %v", ErrInternal, booking.ID, err)
	}

	link, err := uc.packageRepo.GetLinkByBookingID(ctx, booking.ID)
	if errors.Is(err, packagesRepo.ErrLinkNotFound) {
		return true, nil
	}
	if err != nil {
		return false, fmt.Errorf("%w: failed to get package link: %v", ErrInternal, err)
	}

	if err := uc.packageRepo.DecrementUsed(ctx, link.UserPackageID, link.SessionsUsed); err != nil {
		return false, fmt.Errorf("%w: failed to restore sessions: %v", ErrInternal, err)
	}

	return true, nil
}

// publish отправляет уведомления после коммита; ошибки только логируются
func (uc *UseCase) publish(ctx context.Context, notifications []*domain.Notification) int {
	if uc.publisher == nil {
		return 0
	}

	sent := 0
	for _, n := range notifications {
		err := uc.publisher.Publish(ctx, notifier.Message{
			ID:         n.ID,
			RoutingKey: uc.routingKey,
			Payload:    n.Payload,
		})
		if err != nil {
			uc.logger.Warn("BlockSlots: failed to publish notification id=%s: %v", n.ID, err)
			continue
		}

		if err := uc.notificationRepo.MarkPublished(ctx, n.ID); err != nil {
			uc.logger.Warn("BlockSlots: failed to mark notification id=%s published: %v", n.ID, err)
		}
		sent++
	}

	return sent
}
