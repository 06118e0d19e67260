package create_booking

import (
	"context"
	"errors"
	"fmt"
	"sort"

	"github.com/samber/lo"
	"github.com/shopspring/decimal"

	"github.com/m04kA/SMC-NetsBookingService/internal/domain"
	"github.com/m04kA/SMC-NetsBookingService/internal/entitlement"
	bookingRepo "github.com/m04kA/SMC-NetsBookingService/internal/infra/storage/booking"
	packagesRepo "github.com/m04kA/SMC-NetsBookingService/internal/infra/storage/packages"
	"github.com/m04kA/SMC-NetsBookingService/internal/pricing"
	"github.com/m04kA/SMC-NetsBookingService/internal/slots"
	"github.com/m04kA/SMC-NetsBookingService/pkg/txmanager"
)

// BatchMode режим коммита пакета слотов
type BatchMode string

const (
	// BatchPerSlot каждый слот в своей транзакции; при конфликте уже сохранённые слоты остаются
	BatchPerSlot BatchMode = "per_slot"
	// BatchAtomic одна транзакция на весь пакет
	BatchAtomic BatchMode = "atomic"
)

// Options настройки use case из конфигурации сервиса
type Options struct {
	BatchMode    BatchMode
	MaxBatchSize int
}

// UseCase use case для создания бронирований
type UseCase struct {
	bookingRepo  BookingRepository
	blockRepo    BlockRepository
	machineRepo  MachineRepository
	packageRepo  PackageRepository
	policy       PolicyProvider
	roles        RoleResolver
	txManager    TransactionManager
	metrics      Metrics
	opts         Options
	timeProvider TimeProvider
	logger       Logger
}

// NewUseCase создает новый экземпляр use case
func NewUseCase(
	bookingRepo BookingRepository,
	blockRepo BlockRepository,
	machineRepo MachineRepository,
	packageRepo PackageRepository,
	policy PolicyProvider,
	roles RoleResolver,
	txManager TransactionManager,
	metrics Metrics,
	opts Options,
	logger Logger,
) *UseCase {
	if opts.BatchMode != BatchAtomic {
		opts.BatchMode = BatchPerSlot
	}
	if opts.MaxBatchSize <= 0 || opts.MaxBatchSize > domain.MaxBatchSize {
		opts.MaxBatchSize = domain.MaxBatchSize
	}

	return &UseCase{
		bookingRepo:  bookingRepo,
		blockRepo:    blockRepo,
		machineRepo:  machineRepo,
		packageRepo:  packageRepo,
		policy:       policy,
		roles:        roles,
		txManager:    txManager,
		metrics:      metrics,
		opts:         opts,
		timeProvider: &RealTimeProvider{},
		logger:       logger,
	}
}

// Execute выполняет use case создания бронирований.
// Слоты валидируются и оцениваются до записи; запись идёт по возрастанию времени начала
// в сериализуемых транзакциях, ответ сохраняет порядок запроса.
func (uc *UseCase) Execute(ctx context.Context, req *Request) (*Response, error) {
	uc.logger.Info("CreateBooking: caller=%d, slots=%d, package=%v, mode=%s",
		req.CallerID, len(req.Items), req.UserPackageID, uc.opts.BatchMode)

	// 1. Валидация входных данных
	if err := validateRequest(req, uc.opts.MaxBatchSize); err != nil {
		uc.logger.Warn("CreateBooking: validation failed: %v", err)
		uc.reject(err)
		return nil, err
	}

	now := uc.timeProvider.Now()

	// 2. Игрок
	player, err := uc.resolvePlayer(ctx, req)
	if err != nil {
		uc.logger.Warn("CreateBooking: caller=%d: %v", req.CallerID, err)
		uc.reject(err)
		return nil, err
	}

	policy, err := uc.policy.Effective(ctx)
	if err != nil {
		uc.logger.Error("CreateBooking: failed to load policy: %v", err)
		return nil, fmt.Errorf("%w: failed to load policy: %v", ErrInternal, err)
	}

	// 3. Проверка каждого слота
	prepared := make([]*preparedSlot, len(req.Items))
	blocksByDate := make(map[string][]*domain.BlockedSlot)
	for i, item := range req.Items {
		p, err := uc.prepare(ctx, i, item, policy, blocksByDate, now)
		if err != nil {
			uc.logger.Warn("CreateBooking: slot %d rejected: %v", i, err)
			uc.reject(err)
			return nil, slotError(i, err)
		}
		prepared[i] = p
	}

	if err := checkDuplicates(prepared); err != nil {
		uc.reject(err)
		return nil, err
	}

	// 4. Цены пакета до записи
	quotes, err := pricing.NewEngine(policy).PriceBatch(lo.Map(prepared, func(p *preparedSlot, _ int) pricing.Item {
		return p.pricingItem()
	}))
	if err != nil {
		uc.logger.Error("CreateBooking: pricing failed: %v", err)
		return nil, fmt.Errorf("%w: %v", ErrInternal, err)
	}
	for i, q := range quotes {
		prepared[i].quote = q
	}

	// 5. Пакет проверяется на весь пакет слотов
	if req.UserPackageID != nil {
		if err := uc.checkEntitlement(ctx, *req.UserPackageID, player, prepared, policy); err != nil {
			uc.reject(err)
			return nil, err
		}
	}

	// 6. Запись
	ordered := make([]*preparedSlot, len(prepared))
	copy(ordered, prepared)
	sort.SliceStable(ordered, func(i, j int) bool {
		if !ordered[i].date.Equal(ordered[j].date) {
			return ordered[i].date.Before(ordered[j].date)
		}
		return ordered[i].start.IsBefore(ordered[j].start)
	})

	results, err := uc.commit(ctx, req, player, ordered, policy)
	if err != nil {
		return nil, err
	}

	resp := &Response{
		Bookings:         results,
		Total:            decimal.Zero,
		ExtraChargeTotal: decimal.Zero,
		PolicyVersion:    policy.Version,
	}
	for _, b := range results {
		resp.Total = resp.Total.Add(b.Price)
		resp.ExtraChargeTotal = resp.ExtraChargeTotal.Add(b.ExtraCharge)
		if !b.Updated {
			uc.metrics.BookingCreated(string(b.BallType), req.UserPackageID != nil)
		}
	}

	uc.logger.Info("CreateBooking: caller=%d committed %d slots, total=%s", req.CallerID, len(results), resp.Total)

	return resp, nil
}

// resolvePlayer игрок бронирования. Покупатель бронирует только за себя,
// администратор за любого игрока или без игрока.
func (uc *UseCase) resolvePlayer(ctx context.Context, req *Request) (*int64, error) {
	if req.UserID != nil && *req.UserID == req.CallerID {
		return req.UserID, nil
	}

	admin := uc.roles.IsAdmin(ctx, req.CallerID)

	if req.UserID != nil {
		if !admin {
			return nil, fmt.Errorf("%w: cannot book for another player", ErrAccessDenied)
		}
		return req.UserID, nil
	}

	if admin {
		return nil, nil
	}

	caller := req.CallerID
	return &caller, nil
}

// checkDuplicates один слот не может повторяться в пакете
func checkDuplicates(prepared []*preparedSlot) error {
	seen := make(map[string]int, len(prepared))
	for _, p := range prepared {
		key := fmt.Sprintf("%s|%s|%s", p.date.Format(domain.DateFormat), p.start, p.classKey())
		if first, ok := seen[key]; ok {
			return slotError(p.index, fmt.Errorf("%w: duplicates slot %d", ErrInvalidInput, first))
		}
		seen[key] = p.index
	}
	return nil
}

// checkEntitlement проверяет пакет для каждого слота и считает доплату за слот
func (uc *UseCase) checkEntitlement(ctx context.Context, userPackageID int64, player *int64, prepared []*preparedSlot, policy *domain.Policy) error {
	if player == nil {
		return fmt.Errorf("%w: package booking requires a player", ErrInvalidInput)
	}

	up, err := uc.packageRepo.GetUserPackage(ctx, userPackageID)
	if err != nil {
		if errors.Is(err, packagesRepo.ErrUserPackageNotFound) {
			return ErrPackageNotFound
		}
		uc.logger.Error("CreateBooking: failed to get user package id=%d: %v", userPackageID, err)
		return fmt.Errorf("%w: failed to get user package: %v", ErrInternal, err)
	}

	validator := entitlement.NewValidator(policy.TimeSlabs)
	now := uc.timeProvider.Now()

	for _, p := range prepared {
		result, err := validator.Validate(up, entitlement.Request{
			UserID:    *player,
			BallType:  p.ball,
			Pitch:     p.pitch,
			MachineID: p.machineID,
			StartTime: p.start,
			SlotCount: len(prepared),
		}, now)
		if err != nil {
			if errors.Is(err, entitlement.ErrExpired) {
				if markErr := uc.packageRepo.MarkExpired(ctx, up.ID); markErr != nil {
					uc.logger.Warn("CreateBooking: failed to mark package id=%d expired: %v", up.ID, markErr)
				}
			}
			uc.logger.Warn("CreateBooking: package id=%d rejected for slot %d: %v", up.ID, p.index, err)
			return slotError(p.index, err)
		}
		p.extra = result.PerSlot
	}

	return nil
}

// commit записывает слоты в порядке ordered и раскладывает результат по порядку запроса
func (uc *UseCase) commit(ctx context.Context, req *Request, player *int64, ordered []*preparedSlot, policy *domain.Policy) ([]Booking, error) {
	results := make([]*Booking, len(req.Items))

	if uc.opts.BatchMode == BatchAtomic {
		err := uc.txManager.DoSerializable(ctx, func(txCtx context.Context) error {
			for _, p := range ordered {
				b, err := uc.commitSlot(txCtx, req, player, p, policy)
				if err != nil {
					return slotError(p.index, err)
				}
				results[p.index] = b
			}
			return nil
		})
		if err != nil {
			err = txError(err, -1)
			uc.logger.Warn("CreateBooking: atomic batch rolled back: %v", err)
			uc.reject(err)
			return nil, err
		}
		return compact(results), nil
	}

	for _, p := range ordered {
		var b *Booking
		err := uc.txManager.DoSerializable(ctx, func(txCtx context.Context) error {
			var err error
			b, err = uc.commitSlot(txCtx, req, player, p, policy)
			return err
		})
		if err != nil {
			err = txError(err, p.index)
			uc.logger.Warn("CreateBooking: slot %d failed after %d committed: %v", p.index, len(compact(results)), err)
			uc.reject(err)
			var se *SlotError
			if !errors.As(err, &se) {
				se = slotError(p.index, err)
			}
			se.Committed = compact(results)
			return nil, se
		}
		results[p.index] = b
	}

	return compact(results), nil
}

// txError ошибка сериализации при коммите означает, что слот занял конкурент
func txError(err error, index int) error {
	if !errors.Is(err, txmanager.ErrCommitTx) {
		return err
	}
	conflict := fmt.Errorf("%w: %v", ErrSlotConflict, err)
	if index < 0 {
		return conflict
	}
	return slotError(index, conflict)
}

// commitSlot запись одного слота внутри транзакции
func (uc *UseCase) commitSlot(ctx context.Context, req *Request, player *int64, p *preparedSlot, policy *domain.Policy) (*Booking, error) {
	// 1. Сериализация попыток на тот же (дата, время начала)
	if err := uc.bookingRepo.LockSlot(ctx, p.date, p.start); err != nil {
		return nil, fmt.Errorf("%w: failed to lock slot: %v", ErrInternal, err)
	}

	// 2. Повторная проверка занятости под блокировкой
	conflicts, err := uc.bookingRepo.FindConflicts(ctx, domain.ConflictQuery{
		Date:      p.date,
		StartTime: p.start,
		EndTime:   p.end,
		Class:     p.class,
	})
	if err != nil {
		return nil, fmt.Errorf("%w: failed to find conflicts: %v", ErrInternal, err)
	}

	var existing *domain.Booking
	for _, c := range conflicts {
		if existing == nil && isSameBooking(c, player, p) {
			existing = c
			continue
		}
		return nil, fmt.Errorf("%w: %s %s", ErrSlotConflict, p.date.Format(domain.DateFormat), p.start)
	}

	// 3. Операторы проверяются в той же транзакции
	if p.operatorDependent && (existing == nil || !existing.ConsumesOperator()) {
		booked, err := uc.bookingRepo.ListBookedOnDate(ctx, p.date)
		if err != nil {
			return nil, fmt.Errorf("%w: failed to get bookings: %v", ErrInternal, err)
		}
		if slots.OperatorUsage(booked, p.start, p.end) >= policy.OperatorCount {
			return nil, fmt.Errorf("%w: %s %s", ErrOperatorUnavailable, p.date.Format(domain.DateFormat), p.start)
		}
	}

	funded := req.UserPackageID != nil
	booking := p.toDomain(player, req.CallerID, funded)

	// 4. Повторная отправка своего слота обновляет его без повторного списания
	if existing != nil {
		return uc.resubmit(ctx, req, existing, booking, p)
	}

	created, err := uc.bookingRepo.Create(ctx, booking)
	if err != nil {
		if errors.Is(err, bookingRepo.ErrSlotTaken) {
			return nil, fmt.Errorf("%w: %s %s", ErrSlotConflict, p.date.Format(domain.DateFormat), p.start)
		}
		return nil, fmt.Errorf("%w: failed to create booking: %v", ErrInternal, err)
	}

	// 5. Списание сессии и связь с пакетом в той же транзакции
	if funded {
		if err := uc.consumeSession(ctx, created.ID, *req.UserPackageID, p); err != nil {
			return nil, err
		}
	}

	uc.logger.Info("CreateBooking: created booking id=%d %s %s-%s", created.ID,
		created.BookingDate.Format(domain.DateFormat), created.StartTime, created.EndTime)

	b := fromDomainBooking(created, req.UserPackageID, false)
	return &b, nil
}

// resubmit обновляет существующее бронирование игрока.
// Пакет можно добавить к оплаченному напрямую бронированию; снять или сменить пакет нельзя.
func (uc *UseCase) resubmit(ctx context.Context, req *Request, existing, booking *domain.Booking, p *preparedSlot) (*Booking, error) {
	link, err := uc.packageRepo.GetLinkByBookingID(ctx, existing.ID)
	if err != nil && !errors.Is(err, packagesRepo.ErrLinkNotFound) {
		return nil, fmt.Errorf("%w: failed to get package link: %v", ErrInternal, err)
	}

	funded := req.UserPackageID != nil
	switch {
	case link != nil && !funded:
		return nil, fmt.Errorf("%w: booking id=%d is paid by package id=%d", ErrFundingChanged, existing.ID, link.UserPackageID)
	case link != nil && link.UserPackageID != *req.UserPackageID:
		return nil, fmt.Errorf("%w: booking id=%d is paid by package id=%d, got id=%d",
			ErrFundingChanged, existing.ID, link.UserPackageID, *req.UserPackageID)
	}

	booking.ID = existing.ID
	booking.CreatedBy = existing.CreatedBy

	updated, err := uc.bookingRepo.Update(ctx, booking)
	if err != nil {
		if errors.Is(err, bookingRepo.ErrBookingNotFound) {
			return nil, fmt.Errorf("%w: booking id=%d changed concurrently", ErrSlotConflict, existing.ID)
		}
		return nil, fmt.Errorf("%w: failed to update booking: %v", ErrInternal, err)
	}

	if funded && link == nil {
		if err := uc.consumeSession(ctx, updated.ID, *req.UserPackageID, p); err != nil {
			return nil, err
		}
		uc.logger.Info("CreateBooking: booking id=%d moved to package id=%d", updated.ID, *req.UserPackageID)
	}

	uc.logger.Info("CreateBooking: updated booking id=%d in place", updated.ID)
	b := fromDomainBooking(updated, req.UserPackageID, true)
	return &b, nil
}

// consumeSession связывает бронирование с пакетом и списывает одну сессию
func (uc *UseCase) consumeSession(ctx context.Context, bookingID, userPackageID int64, p *preparedSlot) error {
	if _, err := uc.packageRepo.CreateLink(ctx, &domain.PackageBooking{
		BookingID:     bookingID,
		UserPackageID: userPackageID,
		SessionsUsed:  1,
		ExtraCharge:   p.extra,
	}); err != nil {
		return fmt.Errorf("%w: failed to link package: %v", ErrInternal, err)
	}

	if err := uc.packageRepo.IncrementUsed(ctx, userPackageID, 1); err != nil {
		if errors.Is(err, packagesRepo.ErrSessionsExhausted) {
			return fmt.Errorf("%w: package id=%d", entitlement.ErrInsufficientSessions, userPackageID)
		}
		return fmt.Errorf("%w: failed to use package session: %v", ErrInternal, err)
	}
	return nil
}

// isSameBooking существующее бронирование того же игрока на ту же машину и то же время
func isSameBooking(b *domain.Booking, player *int64, p *preparedSlot) bool {
	return player != nil &&
		b.BelongsTo(*player) &&
		b.SameMachine(p.machineID, p.ball) &&
		b.StartTime.Equal(p.start) &&
		b.EndTime.Equal(p.end)
}

func compact(results []*Booking) []Booking {
	return lo.FilterMap(results, func(b *Booking, _ int) (Booking, bool) {
		if b == nil {
			return Booking{}, false
		}
		return *b, true
	})
}

// reject учитывает отказ в метриках по причине
func (uc *UseCase) reject(err error) {
	uc.metrics.BookingRejected(RejectReason(err))
}

// RejectReason машиночитаемая причина отказа
func RejectReason(err error) string {
	var entErr *entitlement.Error
	switch {
	case errors.Is(err, ErrSlotConflict):
		return "conflict"
	case errors.Is(err, ErrOperatorUnavailable):
		return "operator_unavailable"
	case errors.Is(err, ErrSlotBlocked):
		return "blocked"
	case errors.Is(err, ErrFundingChanged):
		return "funding_changed"
	case errors.As(err, &entErr):
		return string(entErr.Reason)
	case errors.Is(err, entitlement.ErrInsufficientSessions):
		return string(entitlement.ReasonInsufficientSessions)
	case errors.Is(err, ErrAccessDenied):
		return "access_denied"
	case errors.Is(err, ErrInternal):
		return "internal"
	default:
		return "validation"
	}
}
