package pricing

import (
	"fmt"
	"sort"
	"time"

	"github.com/samber/lo"
	"github.com/shopspring/decimal"

	"github.com/m04kA/SMC-NetsBookingService/internal/domain"
	"github.com/m04kA/SMC-NetsBookingService/pkg/types"
)

var two = decimal.NewFromInt(2)

// Engine считает цены по матрице политики.
// Отсутствующие ячейки берутся из матрицы по умолчанию.
type Engine struct {
	matrix   domain.PricingMatrix
	fallback domain.PricingMatrix
	slabs    domain.TimeSlabConfig
}

// NewEngine создает движок для конкретной версии политики
func NewEngine(policy *domain.Policy) *Engine {
	return &Engine{
		matrix:   policy.Pricing,
		fallback: domain.DefaultPricingMatrix(),
		slabs:    policy.TimeSlabs,
	}
}

// Item слот в пакетном расчёте
type Item struct {
	Date      time.Time
	ClassKey  string // ключ класса машин, слоты разных машин не образуют серию
	BallType  domain.BallType
	Pitch     *domain.PitchType
	StartTime types.TimeString
	EndTime   types.TimeString
}

// Quote цена одного слота
type Quote struct {
	Single   decimal.Decimal // цена одиночного слота
	Applied  decimal.Decimal // итоговая цена с учётом серии
	Discount decimal.Decimal // Single - Applied
	Slab     domain.TimeSlab
	InRun    bool
}

// Cell ячейка матрицы для слота. Неизвестное покрытие приводится к базовому.
func (e *Engine) Cell(ball domain.BallType, pitch *domain.PitchType, start types.TimeString) (domain.PriceCell, domain.TimeSlab, error) {
	slab := e.slabs.SlabFor(start)
	p := domain.PitchOrBaseline(pitch)

	if cell, ok := e.matrix.Lookup(ball.Category(), ball, p, slab); ok {
		return cell, slab, nil
	}
	if cell, ok := e.fallback.Lookup(ball.Category(), ball, p, slab); ok {
		return cell, slab, nil
	}
	return domain.PriceCell{}, slab, fmt.Errorf("%w: %s/%s/%s/%s", ErrPriceNotConfigured, ball.Category(), ball, p, slab)
}

// Single цена одиночного слота для выдачи доступности
func (e *Engine) Single(ball domain.BallType, pitch *domain.PitchType, start types.TimeString) (decimal.Decimal, error) {
	cell, _, err := e.Cell(ball, pitch, start)
	if err != nil {
		return decimal.Zero, err
	}
	return cell.Single, nil
}

// PriceBatch считает цены пакета слотов. Результат в порядке входа.
// Слоты группируются по (дата, класс машин, мяч, покрытие); внутри группы серия это
// последовательность, где начало слота равно концу предыдущего. В серии из 2+ слотов
// каждый стоит consecutive/2 своей ячейки, одиночный слот стоит single.
func (e *Engine) PriceBatch(items []Item) ([]Quote, error) {
	quotes := make([]Quote, len(items))

	for i, item := range items {
		cell, slab, err := e.Cell(item.BallType, item.Pitch, item.StartTime)
		if err != nil {
			return nil, err
		}
		quotes[i] = Quote{Single: cell.Single, Applied: cell.Single, Discount: decimal.Zero, Slab: slab}
	}

	groups := lo.GroupBy(lo.Range(len(items)), func(i int) string {
		return groupKey(items[i])
	})

	for _, idx := range groups {
		sort.SliceStable(idx, func(a, b int) bool {
			return items[idx[a]].StartTime.IsBefore(items[idx[b]].StartTime)
		})

		for _, run := range splitRuns(items, idx) {
			if len(run) < 2 {
				continue
			}
			for _, i := range run {
				cell, _, err := e.Cell(items[i].BallType, items[i].Pitch, items[i].StartTime)
				if err != nil {
					return nil, err
				}
				applied := cell.Consecutive.Div(two)
				quotes[i].Applied = applied
				quotes[i].Discount = cell.Single.Sub(applied)
				quotes[i].InRun = true
			}
		}
	}

	return quotes, nil
}

func groupKey(item Item) string {
	return fmt.Sprintf("%s|%s|%s|%s",
		item.Date.Format(domain.DateFormat), item.ClassKey, item.BallType, domain.PitchOrBaseline(item.Pitch))
}

// splitRuns делит отсортированные индексы на максимальные серии подряд идущих слотов
func splitRuns(items []Item, sorted []int) [][]int {
	runs := make([][]int, 0)
	current := make([]int, 0)

	for _, i := range sorted {
		if len(current) > 0 && !items[current[len(current)-1]].EndTime.Equal(items[i].StartTime) {
			runs = append(runs, current)
			current = make([]int, 0)
		}
		current = append(current, i)
	}
	if len(current) > 0 {
		runs = append(runs, current)
	}

	return runs
}
