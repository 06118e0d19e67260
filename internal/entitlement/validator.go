package entitlement

import (
	"fmt"
	"time"

	"github.com/shopspring/decimal"

	"github.com/m04kA/SMC-NetsBookingService/internal/domain"
	"github.com/m04kA/SMC-NetsBookingService/pkg/types"
)

// Axis ось доплаты
type Axis string

const (
	AxisBallType Axis = "ball_type"
	AxisPitch    Axis = "pitch"
	AxisTiming   Axis = "timing"
	AxisMachine  Axis = "machine"
)

// Request запрос на покрытие бронирования пакетом
type Request struct {
	UserID    int64
	BallType  domain.BallType
	Pitch     *domain.PitchType
	MachineID *int64
	StartTime types.TimeString
	SlotCount int
}

// Result успешная проверка
type Result struct {
	PerSlot   decimal.Decimal // сумма доплат по осям за один слот
	Total     decimal.Decimal // PerSlot * SlotCount
	Axes      []Axis          // оси с ненулевой доплатой
	Breakdown map[Axis]decimal.Decimal
}

// Validator проверяет пакет и считает доплату. Ничего не изменяет.
type Validator struct {
	slabs domain.TimeSlabConfig
}

func NewValidator(slabs domain.TimeSlabConfig) *Validator {
	return &Validator{slabs: slabs}
}

// Validate выполняет проверки по порядку: владелец, статус, срок, остаток, категория.
// Затем считает четыре независимые доплаты.
// Отказ по пакету возвращается как *Error, некорректный запрос как ErrInvalidRequest.
func (v *Validator) Validate(up *domain.UserPackage, req Request, now time.Time) (*Result, error) {
	if up == nil || up.Package == nil {
		return nil, fmt.Errorf("%w: package is required", ErrInvalidRequest)
	}
	if req.SlotCount < 1 {
		return nil, fmt.Errorf("%w: slot count must be positive", ErrInvalidRequest)
	}

	if up.UserID != req.UserID {
		return nil, newError(ReasonNotOwner, ErrNotOwner)
	}

	switch up.EffectiveStatus(now) {
	case domain.PackageActive:
	case domain.PackageExpired:
		return nil, newError(ReasonExpired, ErrExpired)
	default:
		return nil, newError(ReasonInactive, ErrInactive)
	}

	if remaining := up.RemainingSessions(); remaining < req.SlotCount {
		e := newError(ReasonInsufficientSessions, ErrInsufficientSessions)
		e.Remaining = remaining
		return nil, e
	}

	if req.BallType.Category() != up.Package.MachineCategory {
		return nil, newError(ReasonCategoryMismatch, ErrCategoryMismatch)
	}

	return v.Surcharge(up.Package, req), nil
}

// Surcharge доплата за слоты; оси считаются независимо и складываются
func (v *Validator) Surcharge(pkg *domain.Package, req Request) *Result {
	breakdown := map[Axis]decimal.Decimal{
		AxisBallType: v.ballTypeCharge(pkg, req),
		AxisPitch:    v.pitchCharge(pkg, req),
		AxisTiming:   v.timingCharge(pkg, req),
		AxisMachine:  v.machineCharge(pkg, req),
	}

	perSlot := decimal.Zero
	axes := make([]Axis, 0)
	for _, axis := range []Axis{AxisBallType, AxisPitch, AxisTiming, AxisMachine} {
		charge := breakdown[axis]
		if charge.IsPositive() {
			axes = append(axes, axis)
		}
		perSlot = perSlot.Add(charge)
	}

	count := req.SlotCount
	if count < 1 {
		count = 1
	}

	return &Result{
		PerSlot:   perSlot,
		Total:     perSlot.Mul(decimal.NewFromInt(int64(count))),
		Axes:      axes,
		Breakdown: breakdown,
	}
}

// ballTypeCharge только пакет базового мяча при запросе премиального
func (v *Validator) ballTypeCharge(pkg *domain.Package, req Request) decimal.Decimal {
	if pkg.BallTypeTier == nil || *pkg.BallTypeTier != domain.BallMachine || req.BallType != domain.BallLeather {
		return decimal.Zero
	}
	return pkg.UpgradeRules.BallTypeUpgrade
}

// pitchCharge запрос не выше уровня пакета бесплатен, иначе путь из таблицы или плоская сумма
func (v *Validator) pitchCharge(pkg *domain.Package, req Request) decimal.Decimal {
	packageTier := domain.PitchOrBaseline(pkg.PitchTier)
	requested := domain.PitchOrBaseline(req.Pitch)

	if requested.Rank() <= packageTier.Rank() {
		return decimal.Zero
	}
	return pkg.UpgradeRules.PitchSurcharge(packageTier, requested)
}

func (v *Validator) timingCharge(pkg *domain.Package, req Request) decimal.Decimal {
	if pkg.TimingTier != domain.TimingDay || v.slabs.SlabFor(req.StartTime) != domain.SlabEvening {
		return decimal.Zero
	}
	return pkg.UpgradeRules.TimingUpgrade
}

func (v *Validator) machineCharge(pkg *domain.Package, req Request) decimal.Decimal {
	if pkg.MachineID == nil || req.MachineID == nil || *pkg.MachineID == *req.MachineID {
		return decimal.Zero
	}
	return pkg.UpgradeRules.MachineSurcharge(*pkg.MachineID, *req.MachineID)
}
