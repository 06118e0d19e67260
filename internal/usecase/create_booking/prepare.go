package create_booking

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/shopspring/decimal"

	"github.com/m04kA/SMC-NetsBookingService/internal/domain"
	machineRepo "github.com/m04kA/SMC-NetsBookingService/internal/infra/storage/machine"
	"github.com/m04kA/SMC-NetsBookingService/internal/pricing"
	"github.com/m04kA/SMC-NetsBookingService/internal/slots"
	"github.com/m04kA/SMC-NetsBookingService/pkg/types"
)

// preparedSlot слот после валидации и расчёта цены, готовый к записи
type preparedSlot struct {
	index int

	date      time.Time
	start     types.TimeString
	end       types.TimeString
	machineID *int64
	class     domain.MachineClass
	ball      domain.BallType
	pitch     *domain.PitchType
	mode      domain.OperationMode

	operatorDependent bool

	quote pricing.Quote
	extra decimal.Decimal // доплата к пакету за слот
}

func (p *preparedSlot) classKey() string {
	if p.class.Keyed {
		return fmt.Sprintf("machine:%d", *p.machineID)
	}
	return fmt.Sprintf("category:%s", p.class.Category)
}

func (p *preparedSlot) pricingItem() pricing.Item {
	return pricing.Item{
		Date:      p.date,
		ClassKey:  p.classKey(),
		BallType:  p.ball,
		Pitch:     p.pitch,
		StartTime: p.start,
		EndTime:   p.end,
	}
}

// toDomain бронирование для записи.
// При оплате пакетом сессия покрывает цену слота, игрок платит только доплату.
func (p *preparedSlot) toDomain(player *int64, createdBy int64, packageFunded bool) *domain.Booking {
	b := &domain.Booking{
		UserID:        player,
		CreatedBy:     createdBy,
		MachineID:     p.machineID,
		BookingDate:   p.date,
		StartTime:     p.start,
		EndTime:       p.end,
		BallType:      p.ball,
		PitchType:     p.pitch,
		OperationMode: p.mode,
		Status:        domain.StatusBooked,
		OriginalPrice: p.quote.Single,
	}

	if packageFunded {
		b.DiscountAmount = p.quote.Single
		b.ExtraCharge = p.extra
		b.Price = p.extra
		return b
	}

	b.DiscountAmount = p.quote.Discount
	b.ExtraCharge = decimal.Zero
	b.Price = p.quote.Applied
	return b
}

// prepare проверяет слот относительно политики, машины и блокировок
func (uc *UseCase) prepare(
	ctx context.Context,
	index int,
	item Item,
	policy *domain.Policy,
	blocksByDate map[string][]*domain.BlockedSlot,
	now time.Time,
) (*preparedSlot, error) {
	date := domain.DateOnly(item.Date)

	end, err := validateSlotTime(item, date, policy, now)
	if err != nil {
		return nil, err
	}

	p := &preparedSlot{
		index:     index,
		date:      date,
		start:     item.StartTime,
		end:       end,
		machineID: item.MachineID,
		pitch:     item.PitchType,
	}

	if err := uc.resolveMachine(ctx, p, item, policy); err != nil {
		return nil, err
	}

	key := date.Format(domain.DateFormat)
	blocks, ok := blocksByDate[key]
	if !ok {
		blocks, err = uc.blockRepo.ListForDate(ctx, date)
		if err != nil {
			uc.logger.Error("CreateBooking: failed to get blocks for %s: %v", key, err)
			return nil, fmt.Errorf("%w: failed to get blocks: %v", ErrInternal, err)
		}
		blocksByDate[key] = blocks
	}

	slot := domain.Slot{StartTime: p.start, EndTime: p.end}
	if slots.IsSlotBlocked(blocks, date, slot, p.class, p.pitch) {
		return nil, fmt.Errorf("%w: %s %s", ErrSlotBlocked, key, p.start)
	}

	return p, nil
}

// resolveMachine заполняет класс машин, мяч и режим работы
func (uc *UseCase) resolveMachine(ctx context.Context, p *preparedSlot, item Item, policy *domain.Policy) error {
	if item.MachineID == nil {
		category := item.BallType.Category()

		machines, err := uc.machineRepo.ListActive(ctx, &category)
		if err != nil {
			uc.logger.Error("CreateBooking: failed to list machines: %v", err)
			return fmt.Errorf("%w: failed to list machines: %v", ErrInternal, err)
		}

		p.class = domain.NewLegacyClass(category, machines)
		p.ball = *item.BallType
		return resolveMode(p, item)
	}

	machine, err := uc.machineRepo.GetByID(ctx, *item.MachineID)
	if err != nil {
		if errors.Is(err, machineRepo.ErrMachineNotFound) {
			return fmt.Errorf("%w: id=%d", ErrMachineNotFound, *item.MachineID)
		}
		uc.logger.Error("CreateBooking: failed to get machine id=%d: %v", *item.MachineID, err)
		return fmt.Errorf("%w: failed to get machine: %v", ErrInternal, err)
	}
	if !machine.IsActive {
		return fmt.Errorf("%w: id=%d", ErrMachineInactive, machine.ID)
	}

	p.class = domain.NewKeyedClass(machine)

	p.ball = machine.Category.DefaultBall()
	if item.BallType != nil {
		if !machine.SupportsBall(*item.BallType) {
			return fmt.Errorf("%w: ballType %s does not fit machine %d", ErrInvalidInput, *item.BallType, machine.ID)
		}
		p.ball = *item.BallType
	}

	if item.PitchType != nil && !policy.PitchAllowed(machine.ID, *item.PitchType) {
		return fmt.Errorf("%w: %s on machine %d", ErrPitchNotSupported, *item.PitchType, machine.ID)
	}

	return resolveMode(p, item)
}

// resolveMode режим работы и потребность в операторе по классу машин
func resolveMode(p *preparedSlot, item Item) error {
	p.mode = p.class.ResolveMode(item.OperationMode)
	if !p.class.AllowsMode(p.mode) {
		return fmt.Errorf("%w: %s on %s", ErrModeNotAllowed, p.mode, p.class.Category)
	}
	p.operatorDependent = p.class.NeedsOperator(p.mode)
	return nil
}
