package blocked

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"time"

	"github.com/Masterminds/squirrel"

	"github.com/m04kA/SMC-NetsBookingService/internal/domain"
	"github.com/m04kA/SMC-NetsBookingService/pkg/dbmetrics"
	"github.com/m04kA/SMC-NetsBookingService/pkg/psqlbuilder"
)

// Repository репозиторий административных блокировок.
// Если таблицы нет в схеме, чтение возвращает пустой список, а запись ErrNotSupported.
type Repository struct {
	db        dbmetrics.DBExecutor
	supported bool
}

// NewRepository создает новый экземпляр репозитория блокировок
func NewRepository(db dbmetrics.DBExecutor, caps domain.SchemaCapabilities) *Repository {
	return &Repository{db: db, supported: caps.BlockedSlots}
}

// Create создает блокировку
func (r *Repository) Create(ctx context.Context, block *domain.BlockedSlot) (*domain.BlockedSlot, error) {
	if !r.supported {
		return nil, ErrNotSupported
	}

	executor := dbmetrics.GetExecutor(ctx, r.db)

	query, args, err := psqlbuilder.Insert("blocked_slots").
		Columns(
			"start_date",
			"end_date",
			"start_time",
			"end_time",
			"machine_id",
			"pitch_type",
			"reason",
			"created_by",
		).
		Values(
			domain.DateOnly(block.StartDate),
			domain.DateOnly(block.EndDate),
			block.StartTime,
			block.EndTime,
			block.MachineID,
			block.PitchType,
			block.Reason,
			block.CreatedBy,
		).
		Suffix("RETURNING id, created_at").
		ToSql()

	if err != nil {
		return nil, fmt.Errorf("%w: Create - build insert query: %v", ErrBuildQuery, err)
	}

	var createdAt sql.NullTime
	if err := executor.QueryRowContext(ctx, query, args...).Scan(&block.ID, &createdAt); err != nil {
		return nil, fmt.Errorf("%w: Create - execute insert: %v", ErrExecQuery, err)
	}
	block.CreatedAt = createdAt.Time

	return block, nil
}

// GetByID получает блокировку по ID
func (r *Repository) GetByID(ctx context.Context, id int64) (*domain.BlockedSlot, error) {
	if !r.supported {
		return nil, ErrBlockNotFound
	}

	executor := dbmetrics.GetExecutor(ctx, r.db)

	query, args, err := selectBlocks().Where(squirrel.Eq{"id": id}).ToSql()
	if err != nil {
		return nil, fmt.Errorf("%w: GetByID - build select query: %v", ErrBuildQuery, err)
	}

	block, err := scanBlock(executor.QueryRowContext(ctx, query, args...))
	if errors.Is(err, sql.ErrNoRows) {
		return nil, ErrBlockNotFound
	}
	if err != nil {
		return nil, fmt.Errorf("%w: GetByID - scan block: %v", ErrScanRow, err)
	}

	return block, nil
}

// ListForDate блокировки, покрывающие дату
func (r *Repository) ListForDate(ctx context.Context, date time.Time) ([]*domain.BlockedSlot, error) {
	day := domain.DateOnly(date)
	return r.List(ctx, domain.BlocksFilter{From: &day, To: &day})
}

// List блокировки, пересекающиеся с периодом [From, To]
func (r *Repository) List(ctx context.Context, filter domain.BlocksFilter) ([]*domain.BlockedSlot, error) {
	if !r.supported {
		return []*domain.BlockedSlot{}, nil
	}

	executor := dbmetrics.GetExecutor(ctx, r.db)

	selectBuilder := selectBlocks().OrderBy("start_date ASC", "id ASC")
	if filter.From != nil {
		selectBuilder = selectBuilder.Where(squirrel.GtOrEq{"end_date": domain.DateOnly(*filter.From)})
	}
	if filter.To != nil {
		selectBuilder = selectBuilder.Where(squirrel.LtOrEq{"start_date": domain.DateOnly(*filter.To)})
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

	blocks := make([]*domain.BlockedSlot, 0)
	for rows.Next() {
		block, err := scanBlock(rows)
		if err != nil {
			return nil, fmt.Errorf("%w: List - scan row: %v", ErrScanRow, err)
		}
		blocks = append(blocks, block)
	}

	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("%w: List - rows error: %v", ErrScanRow, err)
	}

	return blocks, nil
}

// Delete удаляет блокировку. Отменённые ею бронирования не восстанавливаются.
func (r *Repository) Delete(ctx context.Context, id int64) error {
	if !r.supported {
		return ErrBlockNotFound
	}

	executor := dbmetrics.GetExecutor(ctx, r.db)

	query, args, err := psqlbuilder.Delete("blocked_slots").
		Where(squirrel.Eq{"id": id}).
		ToSql()
	if err != nil {
		return fmt.Errorf("%w: Delete - build delete query: %v", ErrBuildQuery, err)
	}

	result, err := executor.ExecContext(ctx, query, args...)
	if err != nil {
		return fmt.Errorf("%w: Delete - execute delete: %v", ErrExecQuery, err)
	}

	rowsAffected, err := result.RowsAffected()
	if err != nil {
		return fmt.Errorf("%w: Delete - get rows affected: %v", ErrExecQuery, err)
	}
	if rowsAffected == 0 {
		return ErrBlockNotFound
	}

	return nil
}

func selectBlocks() squirrel.SelectBuilder {
	return psqlbuilder.Select(
		"id",
		"start_date",
		"end_date",
		"start_time",
		"end_time",
		"machine_id",
		"pitch_type",
		"reason",
		"created_by",
		"created_at",
	).From("blocked_slots")
}

type rowScanner interface {
	Scan(dest ...interface{}) error
}

func scanBlock(row rowScanner) (*domain.BlockedSlot, error) {
	var block domain.BlockedSlot
	var createdAt sql.NullTime

	err := row.Scan(
		&block.ID,
		&block.StartDate,
		&block.EndDate,
		&block.StartTime,
		&block.EndTime,
		&block.MachineID,
		&block.PitchType,
		&block.Reason,
		&block.CreatedBy,
		&createdAt,
	)
	if err != nil {
		return nil, err
	}

	block.CreatedAt = createdAt.Time
	return &block, nil
}
