package machine

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

var (
	// ErrMachineNotFound возвращается, когда машина не найдена
	ErrMachineNotFound = errors.New("machine.repository: machine not found")

	ErrBuildQuery = errors.New("machine.repository: failed to build query")
	ErrExecQuery  = errors.New("machine.repository: failed to execute query")
	ErrScanRow    = errors.New("machine.repository: failed to scan row")
)

// Repository справочник машин (только чтение)
type Repository struct {
	db dbmetrics.DBExecutor
}

func NewRepository(db dbmetrics.DBExecutor) *Repository {
	return &Repository{db: db}
}

// GetByID получает машину по ID, в том числе неактивную
func (r *Repository) GetByID(ctx context.Context, id int64) (*domain.Machine, error) {
	executor := dbmetrics.GetExecutor(ctx, r.db)

	query, args, err := selectMachines().Where(squirrel.Eq{"id": id}).ToSql()
	if err != nil {
		return nil, fmt.Errorf("%w: GetByID - build select query: %v", ErrBuildQuery, err)
	}

	var m domain.Machine
	err = executor.QueryRowContext(ctx, query, args...).Scan(&m.ID, &m.Name, &m.Category, &m.OperatorRequired, &m.IsActive)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, ErrMachineNotFound
	}
	if err != nil {
		return nil, fmt.Errorf("%w: GetByID - scan machine: %v", ErrScanRow, err)
	}

	return &m, nil
}

// ListActive активные машины, по категории если указана
func (r *Repository) ListActive(ctx context.Context, category *domain.MachineCategory) ([]*domain.Machine, error) {
	executor := dbmetrics.GetExecutor(ctx, r.db)

	selectBuilder := selectMachines().
		Where(squirrel.Eq{"is_active": true}).
		OrderBy("id ASC")
	if category != nil {
		selectBuilder = selectBuilder.Where(squirrel.Eq{"category": *category})
	}

	query, args, err := selectBuilder.ToSql()
	if err != nil {
		return nil, fmt.Errorf("%w: ListActive - build select query: %v", ErrBuildQuery, err)
	}

	rows, err := executor.QueryContext(ctx, query, args...)
	if err != nil {
		return nil, fmt.Errorf("%w: ListActive - execute query: %v", ErrExecQuery, err)
	}
	defer rows.Close()

	machines := make([]*domain.Machine, 0)
	for rows.Next() {
		var m domain.Machine
		if err := rows.Scan(&m.ID, &m.Name, &m.Category, &m.OperatorRequired, &m.IsActive); err != nil {
			return nil, fmt.Errorf("%w: ListActive - scan row: %v", ErrScanRow, err)
		}
		machines = append(machines, &m)
	}

	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("%w: ListActive - rows error: %v", ErrScanRow, err)
	}

	return machines, nil
}

func selectMachines() squirrel.SelectBuilder {
	return psqlbuilder.Select("id", "name", "category", "operator_required", "is_active").From("machines")
}
