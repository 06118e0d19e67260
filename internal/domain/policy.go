package domain

import (
	"time"

	"github.com/shopspring/decimal"

	"github.com/m04kA/SMC-NetsBookingService/pkg/types"
)

// Ключи политики в хранилище
const (
	PolicyKeySlotDuration       = "slot_duration_minutes"
	PolicyKeyTimeSlabs          = "time_slabs"
	PolicyKeyOperatorCount      = "operator_count"
	PolicyKeyPitchCompatibility = "machine_pitch_compatibility"
	PolicyKeyPricingMatrix      = "pricing_matrix"
)

// PolicyKeys все ключи, которые читает движок
var PolicyKeys = []string{
	PolicyKeySlotDuration,
	PolicyKeyTimeSlabs,
	PolicyKeyOperatorCount,
	PolicyKeyPitchCompatibility,
	PolicyKeyPricingMatrix,
}

// PolicyEntry сырое значение политики
type PolicyEntry struct {
	Key       string
	Value     string
	UpdatedAt time.Time
}

// TimeWindow окно времени [Start, End) в пределах одних суток
type TimeWindow struct {
	Start types.TimeString `json:"start"`
	End   types.TimeString `json:"end"`
}

// IsValid окно не пустое
func (w TimeWindow) IsValid() bool {
	return w.Start.Validate() == nil && w.End.Validate() == nil && w.Start.IsBefore(w.End)
}

// Contains время начала попадает в окно
func (w TimeWindow) Contains(t types.TimeString) bool {
	return !t.IsBefore(w.Start) && t.IsBefore(w.End)
}

// TimeSlabConfig утреннее и вечернее окна
type TimeSlabConfig struct {
	Morning TimeWindow `json:"morning"`
	Evening TimeWindow `json:"evening"`
}

// SlabFor период по времени начала слота.
// Если слот попадает в оба окна, выигрывает окно с более ранним началом.
// Время вне окон относится к утру.
func (c TimeSlabConfig) SlabFor(start types.TimeString) TimeSlab {
	inMorning := c.Morning.IsValid() && c.Morning.Contains(start)
	inEvening := c.Evening.IsValid() && c.Evening.Contains(start)

	switch {
	case inMorning && inEvening:
		if c.Evening.Start.IsBefore(c.Morning.Start) {
			return SlabEvening
		}
		return SlabMorning
	case inEvening:
		return SlabEvening
	default:
		return SlabMorning
	}
}

// PriceCell цена одиночного слота и суммарная цена двух подряд
type PriceCell struct {
	Single      decimal.Decimal `json:"single"`
	Consecutive decimal.Decimal `json:"consecutive"`
}

// IsValid цены неотрицательны и пара подряд не дороже двух одиночных
func (c PriceCell) IsValid() bool {
	return !c.Single.IsNegative() &&
		!c.Consecutive.IsNegative() &&
		c.Consecutive.LessThanOrEqual(c.Single.Mul(decimal.NewFromInt(2)))
}

// PricingMatrix категория -> мяч -> покрытие -> период -> цены
type PricingMatrix map[MachineCategory]map[BallType]map[PitchType]map[TimeSlab]PriceCell

// Lookup ищет ячейку матрицы
func (m PricingMatrix) Lookup(category MachineCategory, ball BallType, pitch PitchType, slab TimeSlab) (PriceCell, bool) {
	cell, ok := m[category][ball][pitch][slab]
	return cell, ok
}

// Set записывает ячейку, создавая промежуточные уровни
func (m PricingMatrix) Set(category MachineCategory, ball BallType, pitch PitchType, slab TimeSlab, cell PriceCell) {
	if m[category] == nil {
		m[category] = map[BallType]map[PitchType]map[TimeSlab]PriceCell{}
	}
	if m[category][ball] == nil {
		m[category][ball] = map[PitchType]map[TimeSlab]PriceCell{}
	}
	if m[category][ball][pitch] == nil {
		m[category][ball][pitch] = map[TimeSlab]PriceCell{}
	}
	m[category][ball][pitch][slab] = cell
}

// Policy типизированная версионированная конфигурация движка бронирования
type Policy struct {
	Version                   time.Time // максимальный updated_at ключей, нулевое время для значений по умолчанию
	SlotDurationMinutes       int
	TimeSlabs                 TimeSlabConfig
	OperatorCount             int
	MachinePitchCompatibility map[int64][]PitchType
	Pricing                   PricingMatrix
}

// PitchAllowed покрытие доступно на машине; машина без записи поддерживает все покрытия
func (p *Policy) PitchAllowed(machineID int64, pitch PitchType) bool {
	allowed, ok := p.MachinePitchCompatibility[machineID]
	if !ok || len(allowed) == 0 {
		return true
	}
	for _, a := range allowed {
		if a == pitch {
			return true
		}
	}
	return false
}

// DefaultTimeSlabs окна по умолчанию
func DefaultTimeSlabs() TimeSlabConfig {
	return TimeSlabConfig{
		Morning: TimeWindow{Start: "07:00", End: "17:00"},
		Evening: TimeWindow{Start: "17:00", End: "22:00"},
	}
}

// DefaultPricingMatrix матрица цен по умолчанию.
// Премиальный мяч +200, CEMENT +100, NATURAL +200, вечер +100 к одиночному слоту.
func DefaultPricingMatrix() PricingMatrix {
	m := PricingMatrix{}

	base := map[BallType]int64{
		BallMachine: 600,
		BallLeather: 800,
		BallTennis:  400,
	}
	pitchExtra := map[PitchType]int64{
		PitchAstro:   0,
		PitchCement:  100,
		PitchNatural: 200,
	}
	slabExtra := map[TimeSlab]int64{
		SlabMorning: 0,
		SlabEvening: 100,
	}

	for ball, price := range base {
		for pitch, pe := range pitchExtra {
			for slab, se := range slabExtra {
				single := price + pe + se
				m.Set(ball.Category(), ball, pitch, slab, PriceCell{
					Single:      decimal.NewFromInt(single),
					Consecutive: decimal.NewFromInt(single*2 - 200),
				})
			}
		}
	}

	return m
}

// DefaultPolicy значения, которые используются при отсутствии ключей в хранилище
func DefaultPolicy() *Policy {
	return &Policy{
		SlotDurationMinutes:       DefaultSlotDurationMinutes,
		TimeSlabs:                 DefaultTimeSlabs(),
		OperatorCount:             DefaultOperatorCount,
		MachinePitchCompatibility: map[int64][]PitchType{},
		Pricing:                   DefaultPricingMatrix(),
	}
}
