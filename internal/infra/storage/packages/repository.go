package packages

import (
	"context"
	"database/sql"
	"errors"
	"fmt"

	"github.com/Masterminds/squirrel"

	"github.com/m04kA/SMC-NetsBookingService/internal/domain"
	"github.com/m04kA/SMC-NetsBookingService/pkg/dbmetrics"
	"github.com/m04kA/SMC-NetsBookingService/pkg/psqlbuilder"
)

// Repository купленные пакеты и их связь с бронированиями.
// Счётчик used_sessions меняется только внутри транзакции бронирования или каскадной отмены.
type Repository struct {
	db dbmetrics.DBExecutor
}

// NewRepository создает новый экземпляр репозитория пакетов
func NewRepository(db dbmetrics.DBExecutor) *Repository {
	return &Repository{db: db}
}

// GetUserPackage купленный пакет вместе с позицией каталога. В транзакции блокирует строку пакета.
func (r *Repository) GetUserPackage(ctx context.Context, id int64) (*domain.UserPackage, error) {
	executor := dbmetrics.GetExecutor(ctx, r.db)

	selectBuilder := psqlbuilder.Select(
		"up.id",
		"up.package_id",
		"up.user_id",
		"up.total_sessions",
		"up.used_sessions",
		"up.activation_date",
		"up.expiry_date",
		"up.status",
		"p.id",
		"p.name",
		"p.machine_id",
		"p.machine_category",
		"p.ball_type_tier",
		"p.pitch_tier",
		"p.timing_tier",
		"p.total_sessions",
		"p.validity_days",
		"p.price",
		"p.upgrade_rules",
	).
		From("user_packages up").
		Join("packages p ON p.id = up.package_id").
		Where(squirrel.Eq{"up.id": id})

	if dbmetrics.IsInTransaction(ctx) {
		selectBuilder = selectBuilder.Suffix("FOR UPDATE OF up")
	}

	query, args, err := selectBuilder.ToSql()
	if err != nil {
		return nil, fmt.Errorf("%w: GetUserPackage - build select query: %v", ErrBuildQuery, err)
	}

	var up domain.UserPackage
	var pkg domain.Package
	var rawRules []byte

	err = executor.QueryRowContext(ctx, query, args...).Scan(
		&up.ID,
		&up.PackageID,
		&up.UserID,
		&up.TotalSessions,
		&up.UsedSessions,
		&up.ActivationDate,
		&up.ExpiryDate,
		&up.Status,
		&pkg.ID,
		&pkg.Name,
		&pkg.MachineID,
		&pkg.MachineCategory,
		&pkg.BallTypeTier,
		&pkg.PitchTier,
		&pkg.TimingTier,
		&pkg.TotalSessions,
		&pkg.ValidityDays,
		&pkg.Price,
		&rawRules,
	)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, ErrUserPackageNotFound
	}
	if err != nil {
		return nil, fmt.Errorf("%w: GetUserPackage - scan package: %v", ErrScanRow, err)
	}

	rules, err := domain.NormalizeUpgradeRules(rawRules)
	if err != nil {
		return nil, fmt.Errorf("%w: GetUserPackage - package %d: %v", ErrInvalidRules, pkg.ID, err)
	}
	pkg.UpgradeRules = rules
	up.Package = &pkg

	return &up, nil
}

// IncrementUsed списывает n сессий. Условие used + n <= total проверяется в самом UPDATE.
func (r *Repository) IncrementUsed(ctx context.Context, id int64, n int) error {
	executor := dbmetrics.GetExecutor(ctx, r.db)

	query, args, err := psqlbuilder.Update("user_packages").
		Set("used_sessions", squirrel.Expr("used_sessions + ?", n)).
		Where(squirrel.Eq{"id": id}).
		Where(squirrel.Eq{"status": domain.PackageActive}).
		Where(squirrel.Expr("used_sessions + ? <= total_sessions", n)).
		ToSql()
	if err != nil {
		return fmt.Errorf("%w: IncrementUsed - build update query: %v", ErrBuildQuery, err)
	}

	return r.execAffected(ctx, executor, "IncrementUsed", query, args, ErrSessionsExhausted)
}

// DecrementUsed возвращает n сессий, счётчик не уходит ниже нуля
func (r *Repository) DecrementUsed(ctx context.Context, id int64, n int) error {
	executor := dbmetrics.GetExecutor(ctx, r.db)

	query, args, err := psqlbuilder.Update("user_packages").
		Set("used_sessions", squirrel.Expr("GREATEST(used_sessions - ?, 0)", n)).
		Where(squirrel.Eq{"id": id}).
		ToSql()
	if err != nil {
		return fmt.Errorf("%w: DecrementUsed - build update query: %v", ErrBuildQuery, err)
	}

	return r.execAffected(ctx, executor, "DecrementUsed", query, args, ErrUserPackageNotFound)
}

// MarkExpired фиксирует ленивый переход ACTIVE -> EXPIRED
func (r *Repository) MarkExpired(ctx context.Context, id int64) error {
	executor := dbmetrics.GetExecutor(ctx, r.db)

	query, args, err := psqlbuilder.Update("user_packages").
		Set("status", domain.PackageExpired).
		Where(squirrel.Eq{"id": id}).
		Where(squirrel.Eq{"status": domain.PackageActive}).
		ToSql()
	if err != nil {
		return fmt.Errorf("%w: MarkExpired - build update query: %v", ErrBuildQuery, err)
	}

	if _, err := executor.ExecContext(ctx, query, args...); err != nil {
		return fmt.Errorf("%w: MarkExpired - execute update: %v", ErrExecQuery, err)
	}

	return nil
}

// CreateLink связывает бронирование с пакетом
func (r *Repository) CreateLink(ctx context.Context, link *domain.PackageBooking) (*domain.PackageBooking, error) {
	executor := dbmetrics.GetExecutor(ctx, r.db)

	query, args, err := psqlbuilder.Insert("package_bookings").
		Columns("booking_id", "user_package_id", "sessions_used", "extra_charge").
		Values(link.BookingID, link.UserPackageID, link.SessionsUsed, link.ExtraCharge).
		Suffix("RETURNING id, created_at").
		ToSql()
	if err != nil {
		return nil, fmt.Errorf("%w: CreateLink - build insert query: %v", ErrBuildQuery, err)
	}

	var createdAt sql.NullTime
	if err := executor.QueryRowContext(ctx, query, args...).Scan(&link.ID, &createdAt); err != nil {
		return nil, fmt.Errorf("%w: CreateLink - execute insert: %v", ErrExecQuery, err)
	}
	link.CreatedAt = createdAt.Time

	return link, nil
}

// GetLinkByBookingID связь бронирования с пакетом
func (r *Repository) GetLinkByBookingID(ctx context.Context, bookingID int64) (*domain.PackageBooking, error) {
	executor := dbmetrics.GetExecutor(ctx, r.db)

	query, args, err := psqlbuilder.Select(
		"id",
		"booking_id",
		"user_package_id",
		"sessions_used",
		"extra_charge",
		"created_at",
	).
		From("package_bookings").
		Where(squirrel.Eq{"booking_id": bookingID}).
		ToSql()
	if err != nil {
		return nil, fmt.Errorf("%w: GetLinkByBookingID - build select query: %v", ErrBuildQuery, err)
	}

	var link domain.PackageBooking
	var createdAt sql.NullTime

	err = executor.QueryRowContext(ctx, query, args...).Scan(
		&link.ID,
		&link.BookingID,
		&link.UserPackageID,
		&link.SessionsUsed,
		&link.ExtraCharge,
		&createdAt,
	)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, ErrLinkNotFound
	}
	if err != nil {
		return nil, fmt.Errorf("%w: GetLinkByBookingID - scan link: %v", ErrScanRow, err)
	}
	link.CreatedAt = createdAt.Time

	return &link, nil
}

func (r *Repository) execAffected(ctx context.Context, executor dbmetrics.DBExecutor, method, query string, args []interface{}, notAffected error) error {
	result, err := executor.ExecContext(ctx, query, args...)
	if err != nil {
		return fmt.Errorf("%w: %s - execute update: %v", ErrExecQuery, method, err)
	}

	rowsAffected, err := result.RowsAffected()
	if err != nil {
		return fmt.Errorf("%w: %s - get rows affected: %v", ErrExecQuery, method, err)
	}
	if rowsAffected == 0 {
		return notAffected
	}

	return nil
}
