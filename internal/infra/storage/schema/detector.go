package schema

import (
	"context"
	"errors"
	"fmt"

	"github.com/Masterminds/squirrel"

	"github.com/m04kA/SMC-NetsBookingService/internal/domain"
	"github.com/m04kA/SMC-NetsBookingService/pkg/dbmetrics"
	"github.com/m04kA/SMC-NetsBookingService/pkg/psqlbuilder"
)

var (
	ErrBuildQuery = errors.New("schema.detector: failed to build query")
	ErrExecQuery  = errors.New("schema.detector: failed to execute query")
)

// pricingColumns колонки, появившиеся в миграции 002
var pricingColumns = []string{"original_price", "discount_amount", "extra_charge"}

// Detect определяет возможности схемы один раз при старте.
// Репозитории выбирают путь записи по результату, а не по тексту ошибки БД.
func Detect(ctx context.Context, db dbmetrics.DBExecutor) (domain.SchemaCapabilities, error) {
	var caps domain.SchemaCapabilities

	columns, err := count(ctx, db, psqlbuilder.Select("COUNT(*)").
		From("information_schema.columns").
		Where(squirrel.Expr("table_schema = current_schema()")).
		Where(squirrel.Eq{"table_name": "bookings", "column_name": pricingColumns}))
	if err != nil {
		return caps, fmt.Errorf("Detect - pricing columns: %w", err)
	}
	caps.PricingColumns = columns == len(pricingColumns)

	tables, err := count(ctx, db, psqlbuilder.Select("COUNT(*)").
		From("information_schema.tables").
		Where(squirrel.Expr("table_schema = current_schema()")).
		Where(squirrel.Eq{"table_name": "blocked_slots"}))
	if err != nil {
		return caps, fmt.Errorf("Detect - blocked slots: %w", err)
	}
	caps.BlockedSlots = tables == 1

	return caps, nil
}

func count(ctx context.Context, db dbmetrics.DBExecutor, builder squirrel.SelectBuilder) (int, error) {
	query, args, err := builder.ToSql()
	if err != nil {
		return 0, fmt.Errorf("%w: %v", ErrBuildQuery, err)
	}

	var n int
	if err := db.QueryRowContext(ctx, query, args...).Scan(&n); err != nil {
		return 0, fmt.Errorf("%w: %v", ErrExecQuery, err)
	}

	return n, nil
}
