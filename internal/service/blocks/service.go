package blocks

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/m04kA/SMC-NetsBookingService/internal/domain"
	blockedRepo "github.com/m04kA/SMC-NetsBookingService/internal/infra/storage/blocked"
)

// Service просмотр и снятие блокировок. Снятие не восстанавливает отменённые бронирования.
type Service struct {
	blockRepo BlockRepository
	roles     RoleResolver
	logger    Logger
}

func NewService(blockRepo BlockRepository, roles RoleResolver, logger Logger) *Service {
	return &Service{
		blockRepo: blockRepo,
		roles:     roles,
		logger:    logger,
	}
}

// List блокировки, пересекающие диапазон [from, to]
func (s *Service) List(ctx context.Context, callerID int64, from, to *time.Time) ([]*domain.BlockedSlot, error) {
	if !s.roles.IsAdmin(ctx, callerID) {
		return nil, ErrAccessDenied
	}

	if from != nil && to != nil && to.Before(*from) {
		return nil, fmt.Errorf("%w: to is before from", ErrInvalidInput)
	}

	blocks, err := s.blockRepo.List(ctx, domain.BlocksFilter{From: from, To: to})
	if err != nil {
		s.logger.Error("ListBlocks: repository error: %v", err)
		return nil, fmt.Errorf("%w: ListBlocks - repository error: %v", ErrInternal, err)
	}

	return blocks, nil
}

// Delete снимает блокировку
func (s *Service) Delete(ctx context.Context, callerID, id int64) error {
	if !s.roles.IsAdmin(ctx, callerID) {
		s.logger.Warn("DeleteBlock: caller=%d is not an admin", callerID)
		return ErrAccessDenied
	}

	block, err := s.blockRepo.GetByID(ctx, id)
	if err != nil {
		if errors.Is(err, blockedRepo.ErrBlockNotFound) {
			return ErrBlockNotFound
		}
		s.logger.Error("DeleteBlock: repository error for block id=%d: %v", id, err)
		return fmt.Errorf("%w: DeleteBlock - get block: %v", ErrInternal, err)
	}

	if err := s.blockRepo.Delete(ctx, id); err != nil {
		if errors.Is(err, blockedRepo.ErrBlockNotFound) || errors.Is(err, blockedRepo.ErrNotSupported) {
			return ErrBlockNotFound
		}
		s.logger.Error("DeleteBlock: repository error for block id=%d: %v", id, err)
		return fmt.Errorf("%w: DeleteBlock - repository error: %v", ErrInternal, err)
	}

	// отменённые блокировкой бронирования не восстанавливаются
	s.logger.Info("DeleteBlock: block id=%d (%s..%s, reason=%q) removed by caller=%d",
		id, block.StartDate.Format(domain.DateFormat), block.EndDate.Format(domain.DateFormat), block.Reason, callerID)
	return nil
}
