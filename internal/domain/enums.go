package domain

// MachineCategory категория машины (определяет, нужен ли оператор)
type MachineCategory string

const (
	CategoryLeatherBall MachineCategory = "LEATHER_BALL" // требует оператора
	CategoryTennisBall  MachineCategory = "TENNIS_BALL"  // самообслуживание
)

func (c MachineCategory) IsValid() bool {
	return c == CategoryLeatherBall || c == CategoryTennisBall
}

// DefaultOperationMode режим по умолчанию для категории
func (c MachineCategory) DefaultOperationMode() OperationMode {
	if c == CategoryLeatherBall {
		return ModeWithOperator
	}
	return ModeSelfOperate
}

// DefaultBall мяч по умолчанию, когда тип не указан в запросе
func (c MachineCategory) DefaultBall() BallType {
	if c == CategoryTennisBall {
		return BallTennis
	}
	return BallMachine
}

// BallType тип мяча
type BallType string

const (
	BallMachine BallType = "MACHINE" // базовый уровень кожаной категории
	BallLeather BallType = "LEATHER" // премиальный уровень кожаной категории
	BallTennis  BallType = "TENNIS"
)

// AllBallTypes все поддерживаемые типы мячей
var AllBallTypes = []BallType{BallMachine, BallLeather, BallTennis}

func (b BallType) IsValid() bool {
	switch b {
	case BallMachine, BallLeather, BallTennis:
		return true
	}
	return false
}

// Category категория машины, на которой играют этим мячом
func (b BallType) Category() MachineCategory {
	if b == BallTennis {
		return CategoryTennisBall
	}
	return CategoryLeatherBall
}

// PitchType покрытие. Уровни строго упорядочены: ASTRO < CEMENT < NATURAL.
type PitchType string

const (
	PitchAstro   PitchType = "ASTRO"
	PitchCement  PitchType = "CEMENT"
	PitchNatural PitchType = "NATURAL"
)

// BaselinePitch базовое покрытие
const BaselinePitch = PitchAstro

// AllPitchTypes покрытия в порядке возрастания уровня
var AllPitchTypes = []PitchType{PitchAstro, PitchCement, PitchNatural}

func (p PitchType) IsValid() bool {
	return p.Rank() > 0
}

// Rank уровень покрытия, 0 для неизвестного значения
func (p PitchType) Rank() int {
	switch p {
	case PitchAstro:
		return 1
	case PitchCement:
		return 2
	case PitchNatural:
		return 3
	}
	return 0
}

// Normalize приводит неизвестное значение к базовому покрытию
func (p PitchType) Normalize() PitchType {
	if !p.IsValid() {
		return BaselinePitch
	}
	return p
}

// PitchOrBaseline разыменовывает указатель, nil и мусор дают базовое покрытие
func PitchOrBaseline(p *PitchType) PitchType {
	if p == nil {
		return BaselinePitch
	}
	return p.Normalize()
}

// TimeSlab период дня для цены и пакетов
type TimeSlab string

const (
	SlabMorning TimeSlab = "MORNING"
	SlabEvening TimeSlab = "EVENING"
)

// TimingTier временной уровень пакета
type TimingTier string

const (
	TimingDay     TimingTier = "DAY" // только утренний период
	TimingAnytime TimingTier = "ANYTIME"
)

func (t TimingTier) IsValid() bool {
	return t == TimingDay || t == TimingAnytime
}

// OperationMode режим работы машины
type OperationMode string

const (
	ModeWithOperator OperationMode = "WITH_OPERATOR"
	ModeSelfOperate  OperationMode = "SELF_OPERATE"
)

func (m OperationMode) IsValid() bool {
	return m == ModeWithOperator || m == ModeSelfOperate
}

// Role роль пользователя из UserService
type Role string

const (
	RoleCustomer Role = "customer"
	RoleAdmin    Role = "admin"
)
