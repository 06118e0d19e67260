package booking

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"time"

	"github.com/Masterminds/squirrel"
	"github.com/lib/pq"
	"github.com/samber/lo"

	"github.com/m04kA/SMC-NetsBookingService/internal/domain"
	"github.com/m04kA/SMC-NetsBookingService/pkg/dbmetrics"
	"github.com/m04kA/SMC-NetsBookingService/pkg/psqlbuilder"
	"github.com/m04kA/SMC-NetsBookingService/pkg/types"
)

// uniqueViolation код ошибки PostgreSQL для нарушения уникального индекса
const uniqueViolation = "23505"

// Repository репозиторий для работы с бронированиями.
// Набор колонок цены зависит от возможностей схемы, определённых при старте.
type Repository struct {
	db   DBExecutor
	caps domain.SchemaCapabilities
}

// NewRepository создает новый экземпляр репозитория бронирований
func NewRepository(db DBExecutor, caps domain.SchemaCapabilities) *Repository {
	return &Repository{db: db, caps: caps}
}

// Create создает бронирование. Если в контексте есть транзакция, использует её.
func (r *Repository) Create(ctx context.Context, booking *domain.Booking) (*domain.Booking, error) {
	if r.caps.PricingColumns {
		return r.createFull(ctx, booking)
	}
	return r.createBase(ctx, booking)
}

// createFull запись для схемы с колонками скидки и доплаты
func (r *Repository) createFull(ctx context.Context, booking *domain.Booking) (*domain.Booking, error) {
	insert := r.baseInsert().
		Columns("original_price", "discount_amount", "extra_charge")

	values := append(r.baseValues(booking), booking.OriginalPrice, booking.DiscountAmount, booking.ExtraCharge)

	return r.insert(ctx, "createFull", insert.Values(values...), booking)
}

// createBase запись для старой схемы, где хранится только итоговая цена
func (r *Repository) createBase(ctx context.Context, booking *domain.Booking) (*domain.Booking, error) {
	return r.insert(ctx, "createBase", r.baseInsert().Values(r.baseValues(booking)...), booking)
}

func (r *Repository) baseInsert() squirrel.InsertBuilder {
	return psqlbuilder.Insert("bookings").
		Columns(
			"user_id",
			"created_by",
			"machine_id",
			"booking_date",
			"start_time",
			"end_time",
			"ball_type",
			"pitch_type",
			"operation_mode",
			"status",
			"price",
		)
}

func (r *Repository) baseValues(booking *domain.Booking) []interface{} {
	return []interface{}{
		booking.UserID,
		booking.CreatedBy,
		booking.MachineID,
		booking.BookingDate,
		booking.StartTime,
		booking.EndTime,
		booking.BallType,
		booking.PitchType,
		booking.OperationMode,
		booking.Status,
		booking.Price,
	}
}

func (r *Repository) insert(ctx context.Context, method string, builder squirrel.InsertBuilder, booking *domain.Booking) (*domain.Booking, error) {
	executor := dbmetrics.GetExecutor(ctx, r.db)

	query, args, err := builder.Suffix("RETURNING id, created_at, updated_at").ToSql()
	if err != nil {
		return nil, fmt.Errorf("%w: %s - build insert query: %v", ErrBuildQuery, method, err)
	}

	var createdAt, updatedAt sql.NullTime
	err = executor.QueryRowContext(ctx, query, args...).Scan(
		&booking.ID,
		&createdAt,
		&updatedAt,
	)
	if isUniqueViolation(err) {
		return nil, fmt.Errorf("%w: %s - %v", ErrSlotTaken, method, err)
	}
	if err != nil {
		return nil, fmt.Errorf("%w: %s - execute insert: %v", ErrExecQuery, method, err)
	}

	booking.CreatedAt = createdAt.Time
	booking.UpdatedAt = updatedAt.Time

	return booking, nil
}

// GetByID получает бронирование по ID. В транзакции блокирует строку.
func (r *Repository) GetByID(ctx context.Context, id int64) (*domain.Booking, error) {
	executor := dbmetrics.GetExecutor(ctx, r.db)

	selectBuilder := r.selectBookings().Where(squirrel.Eq{"id": id})
	if dbmetrics.IsInTransaction(ctx) {
		selectBuilder = selectBuilder.Suffix("FOR UPDATE")
	}

	query, args, err := selectBuilder.ToSql()
	if err != nil {
		return nil, fmt.Errorf("%w: GetByID - build select query: %v", ErrBuildQuery, err)
	}

	booking, err := scanBooking(executor.QueryRowContext(ctx, query, args...))
	if errors.Is(err, sql.ErrNoRows) {
		return nil, ErrBookingNotFound
	}
	if err != nil {
		return nil, fmt.Errorf("%w: GetByID - scan booking: %v", ErrScanRow, err)
	}

	return booking, nil
}

// List бронирования по фильтру.
// Для конкретной даты сортировка по времени начала, иначе сначала новые.
func (r *Repository) List(ctx context.Context, filter domain.BookingsFilter) ([]*domain.Booking, error) {
	executor := dbmetrics.GetExecutor(ctx, r.db)

	selectBuilder := r.selectBookings()

	if filter.UserID != nil {
		selectBuilder = selectBuilder.Where(squirrel.Eq{"user_id": *filter.UserID})
	}
	if filter.MachineID != nil {
		selectBuilder = selectBuilder.Where(squirrel.Eq{"machine_id": *filter.MachineID})
	}
	if filter.StartDate != nil {
		selectBuilder = selectBuilder.Where(squirrel.GtOrEq{"booking_date": *filter.StartDate})
	}
	if filter.EndDate != nil {
		selectBuilder = selectBuilder.Where(squirrel.LtOrEq{"booking_date": *filter.EndDate})
	}

	// DONE не хранится: это BOOKED, который уже прошёл
	if filter.Status != nil {
		stored := *filter.Status
		if stored == domain.StatusDone {
			stored = domain.StatusBooked
		}
		selectBuilder = selectBuilder.Where(squirrel.Eq{"status": stored})
	}

	if filter.StartDate != nil && filter.EndDate != nil && filter.StartDate.Equal(*filter.EndDate) {
		selectBuilder = selectBuilder.OrderBy("start_time ASC", "id ASC")
	} else {
		selectBuilder = selectBuilder.OrderBy("booking_date DESC", "start_time DESC")
	}

	query, args, err := selectBuilder.ToSql()
	if err != nil {
		return nil, fmt.Errorf("%w: List - build select query: %v", ErrBuildQuery, err)
	}

	rows, err := executor.QueryContext(ctx, query, args...)
	if err != nil {
		return nil, fmt.Errorf("%w: List - execute query: %v", ErrExecQuery, err)
	}
	defer rows.Close()

	return scanBookings(rows, "List")
}

// ListBookedOnDate все BOOKED бронирования на дату по всем машинам.
// Используется для занятости и подсчёта операторов; в транзакции блокирует строки.
func (r *Repository) ListBookedOnDate(ctx context.Context, date time.Time) ([]*domain.Booking, error) {
	executor := dbmetrics.GetExecutor(ctx, r.db)

	selectBuilder := r.selectBookings().
		Where(squirrel.Eq{"booking_date": domain.DateOnly(date)}).
		Where(squirrel.Eq{"status": domain.StatusBooked}).
		OrderBy("start_time ASC", "id ASC")

	if dbmetrics.IsInTransaction(ctx) {
		selectBuilder = selectBuilder.Suffix("FOR UPDATE")
	}

	query, args, err := selectBuilder.ToSql()
	if err != nil {
		return nil, fmt.Errorf("%w: ListBookedOnDate - build select query: %v", ErrBuildQuery, err)
	}

	rows, err := executor.QueryContext(ctx, query, args...)
	if err != nil {
		return nil, fmt.Errorf("%w: ListBookedOnDate - execute query: %v", ErrExecQuery, err)
	}
	defer rows.Close()

	return scanBookings(rows, "ListBookedOnDate")
}

// FindConflicts BOOKED бронирования класса машин, пересекающиеся со слотом
func (r *Repository) FindConflicts(ctx context.Context, q domain.ConflictQuery) ([]*domain.Booking, error) {
	executor := dbmetrics.GetExecutor(ctx, r.db)

	categoryBalls := lo.Filter(domain.AllBallTypes, func(b domain.BallType, _ int) bool {
		return b.Category() == q.Class.Category
	})

	classCond := squirrel.Or{
		squirrel.And{
			squirrel.Eq{"machine_id": nil},
			squirrel.Eq{"ball_type": lo.Map(categoryBalls, func(b domain.BallType, _ int) string { return string(b) })},
		},
	}
	if len(q.Class.MachineIDs) > 0 {
		classCond = append(classCond, squirrel.Eq{"machine_id": q.Class.MachineIDs})
	}

	selectBuilder := r.selectBookings().
		Where(squirrel.Eq{"booking_date": domain.DateOnly(q.Date)}).
		Where(squirrel.Eq{"status": domain.StatusBooked}).
		Where(squirrel.Lt{"start_time": q.EndTime}).
		Where(squirrel.Gt{"end_time": q.StartTime}).
		Where(classCond).
		OrderBy("start_time ASC", "id ASC")

	if dbmetrics.IsInTransaction(ctx) {
		selectBuilder = selectBuilder.Suffix("FOR UPDATE")
	}

	query, args, err := selectBuilder.ToSql()
	if err != nil {
		return nil, fmt.Errorf("%w: FindConflicts - build select query: %v", ErrBuildQuery, err)
	}

	rows, err := executor.QueryContext(ctx, query, args...)
	if err != nil {
		return nil, fmt.Errorf("%w: FindConflicts - execute query: %v", ErrExecQuery, err)
	}
	defer rows.Close()

	conflicts, err := scanBookings(rows, "FindConflicts")
	if err != nil {
		return nil, err
	}

	// Тот же критерий, что и в памяти: бронирование без машины занимает любую машину своей категории
	return lo.Filter(conflicts, func(b *domain.Booking, _ int) bool {
		return q.Class.ContainsBooking(b)
	}), nil
}

// FindForBlock BOOKED бронирования, попадающие под блокировку. Строки блокируются в транзакции.
func (r *Repository) FindForBlock(ctx context.Context, block *domain.BlockedSlot) ([]*domain.Booking, error) {
	executor := dbmetrics.GetExecutor(ctx, r.db)

	selectBuilder := r.selectBookings().
		Where(squirrel.Eq{"status": domain.StatusBooked}).
		Where(squirrel.GtOrEq{"booking_date": domain.DateOnly(block.StartDate)}).
		Where(squirrel.LtOrEq{"booking_date": domain.DateOnly(block.EndDate)}).
		OrderBy("booking_date ASC", "start_time ASC", "id ASC")

	if block.MachineID != nil {
		selectBuilder = selectBuilder.Where(squirrel.Eq{"machine_id": *block.MachineID})
	}
	if !block.IsWholeDay() {
		selectBuilder = selectBuilder.
			Where(squirrel.Lt{"start_time": *block.EndTime}).
			Where(squirrel.Gt{"end_time": *block.StartTime})
	}
	if dbmetrics.IsInTransaction(ctx) {
		selectBuilder = selectBuilder.Suffix("FOR UPDATE")
	}

	query, args, err := selectBuilder.ToSql()
	if err != nil {
		return nil, fmt.Errorf("%w: FindForBlock - build select query: %v", ErrBuildQuery, err)
	}

	rows, err := executor.QueryContext(ctx, query, args...)
	if err != nil {
		return nil, fmt.Errorf("%w: FindForBlock - execute query: %v", ErrExecQuery, err)
	}
	defer rows.Close()

	bookings, err := scanBookings(rows, "FindForBlock")
	if err != nil {
		return nil, err
	}

	// покрытие NULL считается базовым, поэтому фильтр по покрытию применяется здесь
	return lo.Filter(bookings, func(b *domain.Booking, _ int) bool {
		return block.AffectsBooking(b)
	}), nil
}

// Update обновляет бронирование на месте при повторной отправке того же слота
func (r *Repository) Update(ctx context.Context, booking *domain.Booking) (*domain.Booking, error) {
	executor := dbmetrics.GetExecutor(ctx, r.db)

	updateBuilder := psqlbuilder.Update("bookings").
		Set("pitch_type", booking.PitchType).
		Set("operation_mode", booking.OperationMode).
		Set("ball_type", booking.BallType).
		Set("price", booking.Price).
		Set("updated_at", squirrel.Expr("NOW()")).
		Where(squirrel.Eq{"id": booking.ID}).
		Where(squirrel.Eq{"status": domain.StatusBooked})

	if r.caps.PricingColumns {
		updateBuilder = updateBuilder.
			Set("original_price", booking.OriginalPrice).
			Set("discount_amount", booking.DiscountAmount).
			Set("extra_charge", booking.ExtraCharge)
	}

	query, args, err := updateBuilder.Suffix("RETURNING created_at, updated_at").ToSql()
	if err != nil {
		return nil, fmt.Errorf("%w: Update - build update query: %v", ErrBuildQuery, err)
	}

	var createdAt, updatedAt sql.NullTime
	err = executor.QueryRowContext(ctx, query, args...).Scan(&createdAt, &updatedAt)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, ErrBookingNotFound
	}
	if err != nil {
		return nil, fmt.Errorf("%w: Update - execute update: %v", ErrExecQuery, err)
	}

	booking.CreatedAt = createdAt.Time
	booking.UpdatedAt = updatedAt.Time

	return booking, nil
}

// Cancel отменяет BOOKED бронирование с причиной и автором
func (r *Repository) Cancel(ctx context.Context, id int64, reason string, cancelledBy int64) error {
	executor := dbmetrics.GetExecutor(ctx, r.db)

	query, args, err := psqlbuilder.Update("bookings").
		Set("status", domain.StatusCancelled).
		Set("cancellation_reason", reason).
		Set("cancelled_by", cancelledBy).
		Set("cancelled_at", squirrel.Expr("NOW()")).
		Set("updated_at", squirrel.Expr("NOW()")).
		Where(squirrel.Eq{"id": id}).
		Where(squirrel.Eq{"status": domain.StatusBooked}).
		ToSql()

	if err != nil {
		return fmt.Errorf("%w: Cancel - build update query: %v", ErrBuildQuery, err)
	}

	result, err := executor.ExecContext(ctx, query, args...)
	if err != nil {
		return fmt.Errorf("%w: Cancel - execute update: %v", ErrExecQuery, err)
	}

	rowsAffected, err := result.RowsAffected()
	if err != nil {
		return fmt.Errorf("%w: Cancel - get rows affected: %v", ErrExecQuery, err)
	}

	if rowsAffected == 0 {
		return ErrCannotCancel
	}

	return nil
}

// LockSlot транзакционная advisory-блокировка на (дата, начало слота).
// Сериализует конкурентные попытки забронировать один слот и проверку операторов.
func (r *Repository) LockSlot(ctx context.Context, date time.Time, start types.TimeString) error {
	tx, ok := dbmetrics.TxFromContext(ctx)
	if !ok {
		return ErrNoTransaction
	}

	key := fmt.Sprintf("slot:%s:%s", domain.DateOnly(date).Format(domain.DateFormat), start)

	query, args, err := psqlbuilder.Select().
		Column(squirrel.Expr("pg_advisory_xact_lock(hashtext(?))", key)).
		ToSql()
	if err != nil {
		return fmt.Errorf("%w: LockSlot - build query: %v", ErrBuildQuery, err)
	}

	if _, err := tx.ExecContext(ctx, query, args...); err != nil {
		return fmt.Errorf("%w: LockSlot - execute: %v", ErrExecQuery, err)
	}

	return nil
}

// selectBookings общий SELECT; для старой схемы цены подставляются выражениями
func (r *Repository) selectBookings() squirrel.SelectBuilder {
	pricing := []string{"original_price", "discount_amount", "extra_charge"}
	if !r.caps.PricingColumns {
		pricing = []string{"price AS original_price", "0 AS discount_amount", "0 AS extra_charge"}
	}

	columns := append([]string{
		"id",
		"user_id",
		"created_by",
		"machine_id",
		"booking_date",
		"start_time",
		"end_time",
		"ball_type",
		"pitch_type",
		"operation_mode",
		"status",
		"price",
	}, pricing...)

	columns = append(columns,
		"cancellation_reason",
		"cancelled_by",
		"cancelled_at",
		"created_at",
		"updated_at",
	)

	return psqlbuilder.Select(columns...).From("bookings")
}

type rowScanner interface {
	Scan(dest ...interface{}) error
}

func scanBooking(row rowScanner) (*domain.Booking, error) {
	var booking domain.Booking
	var createdAt, updatedAt sql.NullTime

	err := row.Scan(
		&booking.ID,
		&booking.UserID,
		&booking.CreatedBy,
		&booking.MachineID,
		&booking.BookingDate,
		&booking.StartTime,
		&booking.EndTime,
		&booking.BallType,
		&booking.PitchType,
		&booking.OperationMode,
		&booking.Status,
		&booking.Price,
		&booking.OriginalPrice,
		&booking.DiscountAmount,
		&booking.ExtraCharge,
		&booking.CancellationReason,
		&booking.CancelledBy,
		&booking.CancelledAt,
		&createdAt,
		&updatedAt,
	)
	if err != nil {
		return nil, err
	}

	booking.CreatedAt = createdAt.Time
	booking.UpdatedAt = updatedAt.Time

	return &booking, nil
}

func scanBookings(rows *sql.Rows, method string) ([]*domain.Booking, error) {
	bookings := make([]*domain.Booking, 0)

	for rows.Next() {
		booking, err := scanBooking(rows)
		if err != nil {
			return nil, fmt.Errorf("%w: %s - scan row: %v", ErrScanRow, method, err)
		}
		bookings = append(bookings, booking)
	}

	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("%w: %s - rows error: %v", ErrScanRow, method, err)
	}

	return bookings, nil
}

func isUniqueViolation(err error) bool {
	var pqErr *pq.Error
	return errors.As(err, &pqErr) && pqErr.Code == uniqueViolation
}
