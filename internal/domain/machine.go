package domain

import "github.com/samber/lo"

// Machine боулинг-машина (сетка)
type Machine struct {
	ID               int64
	Name             string
	Category         MachineCategory
	OperatorRequired bool
	IsActive         bool
}

// SupportsBall проверяет, что мяч подходит к категории машины
func (m *Machine) SupportsBall(ball BallType) bool {
	return ball.Category() == m.Category
}

// MachineClass класс эквивалентности машин для проверки занятости.
// Запрос с ID машины занимает только её, запрос без ID занимает всю категорию.
type MachineClass struct {
	MachineIDs []int64
	Category   MachineCategory
	Keyed      bool

	// OperatorRequired оператор обязателен на каждой машине класса
	OperatorRequired bool
}

// NewKeyedClass класс из одной машины
func NewKeyedClass(m *Machine) MachineClass {
	return MachineClass{
		MachineIDs:       []int64{m.ID},
		Category:         m.Category,
		Keyed:            true,
		OperatorRequired: m.OperatorRequired,
	}
}

// NewLegacyClass класс из всех машин категории
func NewLegacyClass(category MachineCategory, machines []*Machine) MachineClass {
	inCategory := lo.Filter(machines, func(m *Machine, _ int) bool {
		return m.Category == category
	})
	return MachineClass{
		MachineIDs: lo.Map(inCategory, func(m *Machine, _ int) int64 { return m.ID }),
		Category:   category,
		OperatorRequired: len(inCategory) > 0 && lo.EveryBy(inCategory, func(m *Machine) bool {
			return m.OperatorRequired
		}),
	}
}

// ResolveMode режим работы запроса: явный, иначе обязательный оператор, иначе режим категории.
// Доступность и бронирование разрешают режим одинаково.
func (c MachineClass) ResolveMode(requested *OperationMode) OperationMode {
	if requested != nil {
		return *requested
	}
	if c.OperatorRequired {
		return ModeWithOperator
	}
	return c.Category.DefaultOperationMode()
}

// AllowsMode самообслуживание недоступно, если оператор обязателен на всех машинах класса
func (c MachineClass) AllowsMode(mode OperationMode) bool {
	return !(c.OperatorRequired && mode == ModeSelfOperate)
}

// NeedsOperator слот в этом режиме занимает оператора из пула
func (c MachineClass) NeedsOperator(mode OperationMode) bool {
	return c.OperatorRequired || mode == ModeWithOperator
}

// HasMachine машина входит в класс
func (c MachineClass) HasMachine(id int64) bool {
	return lo.Contains(c.MachineIDs, id)
}

// ContainsBooking бронирование занимает ресурс этого класса.
// Бронирование без машины относится к классу по категории мяча.
func (c MachineClass) ContainsBooking(b *Booking) bool {
	if b.MachineID != nil {
		return c.HasMachine(*b.MachineID)
	}
	return b.BallType.Category() == c.Category
}

// MatchesMachineFilter проверяет фильтр машины блокировки (nil = любая машина)
func (c MachineClass) MatchesMachineFilter(machineID *int64) bool {
	if machineID == nil {
		return true
	}
	return c.HasMachine(*machineID)
}
