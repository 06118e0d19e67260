package get_available_slots

import (
	"context"
	"errors"
	"fmt"

	"github.com/samber/lo"

	"github.com/m04kA/SMC-NetsBookingService/internal/domain"
	machineRepo "github.com/m04kA/SMC-NetsBookingService/internal/infra/storage/machine"
	"github.com/m04kA/SMC-NetsBookingService/internal/pricing"
	"github.com/m04kA/SMC-NetsBookingService/internal/slots"
)

// UseCase use case для получения доступности слотов
type UseCase struct {
	bookingRepo  BookingRepository
	blockRepo    BlockRepository
	machineRepo  MachineRepository
	policy       PolicyProvider
	roles        RoleResolver
	timeProvider TimeProvider
	logger       Logger
}

// NewUseCase создает новый экземпляр use case
func NewUseCase(
	bookingRepo BookingRepository,
	blockRepo BlockRepository,
	machineRepo MachineRepository,
	policy PolicyProvider,
	roles RoleResolver,
	logger Logger,
) *UseCase {
	return &UseCase{
		bookingRepo:  bookingRepo,
		blockRepo:    blockRepo,
		machineRepo:  machineRepo,
		policy:       policy,
		roles:        roles,
		timeProvider: &RealTimeProvider{},
		logger:       logger,
	}
}

// target машина (или категория) и параметры запроса после разрешения
type target struct {
	class             domain.MachineClass
	ball              domain.BallType
	operatorDependent bool
}

// Execute выполняет use case получения доступности.
// Чтение без транзакции: снимок бронирований и блокировок берётся один раз на запрос.
func (uc *UseCase) Execute(ctx context.Context, req *Request) (*Response, error) {
	if err := validateRequest(req); err != nil {
		uc.logger.Warn("GetAvailableSlots: validation failed: %v", err)
		return nil, err
	}

	now := uc.timeProvider.Now()
	date := domain.DateOnly(req.Date)

	resp := &Response{
		Date:      date,
		MachineID: req.MachineID,
		PitchType: req.PitchType,
		Slots:     []Slot{},
	}

	// 1. Прошедшая дата: обычному пользователю пустой список, а не ошибка
	if domain.IsDateInPast(date, now) && !uc.roles.IsAdmin(ctx, req.UserID) {
		uc.logger.Info("GetAvailableSlots: past date %s requested by user=%d", date.Format(domain.DateFormat), req.UserID)
		return resp, nil
	}

	policy, err := uc.policy.Effective(ctx)
	if err != nil {
		uc.logger.Error("GetAvailableSlots: failed to load policy: %v", err)
		return nil, fmt.Errorf("%w: failed to load policy: %v", ErrInternal, err)
	}
	resp.PolicyVersion = policy.Version

	// 2. Машина или класс машин категории
	t, err := uc.resolveTarget(ctx, req, policy)
	if err != nil {
		return nil, err
	}
	resp.BallType = t.ball

	// 3. Сетка слотов
	lattice, err := slots.Generate(date, policy.TimeSlabs, policy.SlotDurationMinutes, now)
	if err != nil {
		uc.logger.Error("GetAvailableSlots: failed to generate slots: %v", err)
		return nil, fmt.Errorf("%w: failed to generate slots: %v", ErrInternal, err)
	}

	// 4. Снимок занятости
	bookings, err := uc.bookingRepo.ListBookedOnDate(ctx, date)
	if err != nil {
		uc.logger.Error("GetAvailableSlots: failed to get bookings: %v", err)
		return nil, fmt.Errorf("%w: failed to get bookings: %v", ErrInternal, err)
	}

	blocks, err := uc.blockRepo.ListForDate(ctx, date)
	if err != nil {
		uc.logger.Warn("GetAvailableSlots: blocks unavailable, treating as none: %v", err)
		blocks = nil
	}

	resolved := slots.Resolve(slots.ResolveInput{
		Date:              date,
		Slots:             lattice,
		Class:             t.class,
		Pitch:             req.PitchType,
		OperatorDependent: t.operatorDependent,
		OperatorCount:     policy.OperatorCount,
		Bookings:          bookings,
		Blocks:            blocks,
		TimeSlabs:         policy.TimeSlabs,
	})

	// 5. Цена одиночного слота
	engine := pricing.NewEngine(policy)
	for _, s := range resolved {
		price, err := engine.Single(t.ball, req.PitchType, s.StartTime)
		if err != nil {
			uc.logger.Error("GetAvailableSlots: price for %s: %v", s.StartTime, err)
			return nil, fmt.Errorf("%w: %v", ErrInternal, err)
		}

		resp.Slots = append(resp.Slots, Slot{
			StartTime:         s.StartTime,
			EndTime:           s.EndTime,
			Status:            s.Status,
			Price:             price,
			OperatorAvailable: s.OperatorAvailable,
			TimeSlab:          s.TimeSlab,
		})
	}

	available := lo.CountBy(resp.Slots, func(s Slot) bool { return s.Status == domain.SlotAvailable })
	uc.logger.Info("GetAvailableSlots: date=%s machine=%v ball=%s: %d slots, %d available",
		date.Format(domain.DateFormat), req.MachineID, t.ball, len(resp.Slots), available)

	return resp, nil
}

func (uc *UseCase) resolveTarget(ctx context.Context, req *Request, policy *domain.Policy) (*target, error) {
	if req.MachineID == nil {
		ball := *req.BallType
		category := ball.Category()

		machines, err := uc.machineRepo.ListActive(ctx, &category)
		if err != nil {
			uc.logger.Error("GetAvailableSlots: failed to list machines: %v", err)
			return nil, fmt.Errorf("%w: failed to list machines: %v", ErrInternal, err)
		}

		return newTarget(domain.NewLegacyClass(category, machines), ball, req.OperationMode)
	}

	machine, err := uc.machineRepo.GetByID(ctx, *req.MachineID)
	if err != nil {
		if errors.Is(err, machineRepo.ErrMachineNotFound) {
			uc.logger.Warn("GetAvailableSlots: machine id=%d not found", *req.MachineID)
			return nil, ErrMachineNotFound
		}
		uc.logger.Error("GetAvailableSlots: failed to get machine id=%d: %v", *req.MachineID, err)
		return nil, fmt.Errorf("%w: failed to get machine: %v", ErrInternal, err)
	}
	if !machine.IsActive {
		return nil, ErrMachineInactive
	}

	ball := machine.Category.DefaultBall()
	if req.BallType != nil {
		if !machine.SupportsBall(*req.BallType) {
			return nil, fmt.Errorf("%w: ballType %s does not fit machine %d", ErrInvalidInput, *req.BallType, machine.ID)
		}
		ball = *req.BallType
	}

	if req.PitchType != nil && !policy.PitchAllowed(machine.ID, *req.PitchType) {
		return nil, fmt.Errorf("%w: %s on machine %d", ErrPitchNotSupported, *req.PitchType, machine.ID)
	}

	return newTarget(domain.NewKeyedClass(machine), ball, req.OperationMode)
}

// newTarget режим и потребность в операторе по классу машин, как при бронировании
func newTarget(class domain.MachineClass, ball domain.BallType, requested *domain.OperationMode) (*target, error) {
	mode := class.ResolveMode(requested)
	if !class.AllowsMode(mode) {
		return nil, fmt.Errorf("%w: %s on %s", ErrModeNotAllowed, mode, class.Category)
	}

	return &target{
		class:             class,
		ball:              ball,
		operatorDependent: class.NeedsOperator(mode),
	}, nil
}
