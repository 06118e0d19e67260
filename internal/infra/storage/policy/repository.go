package policy

import (
	"context"
	"database/sql"
	"fmt"

	"github.com/Masterminds/squirrel"

	"github.com/m04kA/SMC-NetsBookingService/internal/domain"
	"github.com/m04kA/SMC-NetsBookingService/pkg/dbmetrics"
	"github.com/m04kA/SMC-NetsBookingService/pkg/psqlbuilder"
)

// Repository хранилище ключей политики. Значения хранятся как есть, разбор в сервисе политики.
type Repository struct {
	db dbmetrics.DBExecutor
}

// NewRepository создает новый экземпляр репозитория политики
func NewRepository(db dbmetrics.DBExecutor) *Repository {
	return &Repository{db: db}
}

// GetByKeys читает указанные ключи; отсутствующих ключей нет в результате
func (r *Repository) GetByKeys(ctx context.Context, keys []string) (map[string]domain.PolicyEntry, error) {
	executor := dbmetrics.GetExecutor(ctx, r.db)

	query, args, err := psqlbuilder.Select("key", "value", "updated_at").
		From("policies").
		Where(squirrel.Eq{"key": keys}).
		ToSql()
	if err != nil {
		return nil, fmt.Errorf("%w: GetByKeys - build select query: %v", ErrBuildQuery, err)
	}

	rows, err := executor.QueryContext(ctx, query, args...)
	if err != nil {
		return nil, fmt.Errorf("%w: GetByKeys - execute query: %v", ErrExecQuery, err)
	}
	defer rows.Close()

	entries := make(map[string]domain.PolicyEntry, len(keys))
	for rows.Next() {
		var entry domain.PolicyEntry
		var value sql.NullString
		var updatedAt sql.NullTime

		if err := rows.Scan(&entry.Key, &value, &updatedAt); err != nil {
			return nil, fmt.Errorf("%w: GetByKeys - scan row: %v", ErrScanRow, err)
		}

		entry.Value = value.String
		entry.UpdatedAt = updatedAt.Time
		entries[entry.Key] = entry
	}

	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("%w: GetByKeys - rows error: %v", ErrScanRow, err)
	}

	return entries, nil
}
