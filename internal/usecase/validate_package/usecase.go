package validate_package

import (
	"context"
	"errors"
	"fmt"

	"github.com/samber/lo"
	"github.com/shopspring/decimal"

	"github.com/m04kA/SMC-NetsBookingService/internal/entitlement"
	packagesRepo "github.com/m04kA/SMC-NetsBookingService/internal/infra/storage/packages"
)

// UseCase проверка пакета без изменения сессий
type UseCase struct {
	packageRepo  PackageRepository
	policy       PolicyProvider
	timeProvider TimeProvider
	logger       Logger
}

func NewUseCase(packageRepo PackageRepository, policy PolicyProvider, logger Logger) *UseCase {
	return &UseCase{
		packageRepo:  packageRepo,
		policy:       policy,
		timeProvider: &RealTimeProvider{},
		logger:       logger,
	}
}

// Execute отказ пакета возвращается как Valid=false, а не как ошибка.
// Истёкший пакет переводится в EXPIRED без гарантии.
func (uc *UseCase) Execute(ctx context.Context, req *Request) (*Response, error) {
	if err := validateRequest(req); err != nil {
		uc.logger.Warn("ValidatePackage: validation failed: %v", err)
		return nil, err
	}

	up, err := uc.packageRepo.GetUserPackage(ctx, req.UserPackageID)
	if err != nil {
		if errors.Is(err, packagesRepo.ErrUserPackageNotFound) {
			return nil, ErrPackageNotFound
		}
		uc.logger.Error("ValidatePackage: failed to get user package id=%d: %v", req.UserPackageID, err)
		return nil, fmt.Errorf("%w: failed to get user package: %v", ErrInternal, err)
	}

	policy, err := uc.policy.Effective(ctx)
	if err != nil {
		uc.logger.Error("ValidatePackage: failed to load policy: %v", err)
		return nil, fmt.Errorf("%w: failed to load policy: %v", ErrInternal, err)
	}

	result, err := entitlement.NewValidator(policy.TimeSlabs).Validate(up, entitlement.Request{
		UserID:    req.UserID,
		BallType:  req.BallType,
		Pitch:     req.PitchType,
		MachineID: req.MachineID,
		StartTime: req.StartTime,
		SlotCount: req.SlotCount,
	}, uc.timeProvider.Now())

	var entErr *entitlement.Error
	if errors.As(err, &entErr) {
		if entErr.Reason == entitlement.ReasonExpired {
			if markErr := uc.packageRepo.MarkExpired(ctx, up.ID); markErr != nil {
				uc.logger.Warn("ValidatePackage: failed to mark package id=%d expired: %v", up.ID, markErr)
			}
		}
		uc.logger.Info("ValidatePackage: package id=%d rejected: %s", up.ID, entErr.Reason)
		return &Response{
			Valid:       false,
			Reason:      string(entErr.Reason),
			Message:     entErr.Error(),
			Remaining:   entErr.Remaining,
			ExtraCharge: decimal.Zero,
			PerSlot:     decimal.Zero,
			Axes:        []string{},
		}, nil
	}
	if err != nil {
		return nil, fmt.Errorf("%w: %v", ErrInvalidInput, err)
	}

	return &Response{
		Valid:       true,
		Remaining:   up.RemainingSessions(),
		ExtraCharge: result.Total,
		PerSlot:     result.PerSlot,
		Axes: lo.Map(result.Axes, func(a entitlement.Axis, _ int) string {
			return string(a)
		}),
	}, nil
}
