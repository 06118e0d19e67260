package notification

import (
	"context"
	"database/sql"
	"encoding/json"
	"errors"
	"fmt"

	"github.com/Masterminds/squirrel"
	"github.com/google/uuid"

	"github.com/m04kA/SMC-NetsBookingService/internal/domain"
	"github.com/m04kA/SMC-NetsBookingService/pkg/dbmetrics"
	"github.com/m04kA/SMC-NetsBookingService/pkg/psqlbuilder"
)

var (
	ErrBuildQuery = errors.New("notification.repository: failed to build query")
	ErrExecQuery  = errors.New("notification.repository: failed to execute query")
	ErrEncode     = errors.New("notification.repository: failed to encode payload")
)

// Repository исходящие уведомления (outbox). Строки пишутся в транзакции отмены,
// published_at проставляется после успешной публикации в брокер.
type Repository struct {
	db dbmetrics.DBExecutor
}

func NewRepository(db dbmetrics.DBExecutor) *Repository {
	return &Repository{db: db}
}

// Create сохраняет уведомление
func (r *Repository) Create(ctx context.Context, n *domain.Notification) (*domain.Notification, error) {
	executor := dbmetrics.GetExecutor(ctx, r.db)

	payload, err := json.Marshal(n.Payload)
	if err != nil {
		return nil, fmt.Errorf("%w: Create - %v", ErrEncode, err)
	}

	query, args, err := psqlbuilder.Insert("notifications").
		Columns("id", "user_id", "booking_id", "kind", "payload").
		Values(n.ID, n.UserID, n.BookingID, n.Kind, payload).
		Suffix("RETURNING created_at").
		ToSql()
	if err != nil {
		return nil, fmt.Errorf("%w: Create - build insert query: %v", ErrBuildQuery, err)
	}

	var createdAt sql.NullTime
	if err := executor.QueryRowContext(ctx, query, args...).Scan(&createdAt); err != nil {
		return nil, fmt.Errorf("%w: Create - execute insert: %v", ErrExecQuery, err)
	}
	n.CreatedAt = createdAt.Time

	return n, nil
}

// MarkPublished отмечает уведомление отправленным
func (r *Repository) MarkPublished(ctx context.Context, id uuid.UUID) error {
	executor := dbmetrics.GetExecutor(ctx, r.db)

	query, args, err := psqlbuilder.Update("notifications").
		Set("published_at", squirrel.Expr("NOW()")).
		Where(squirrel.Eq{"id": id}).
		ToSql()
	if err != nil {
		return fmt.Errorf("%w: MarkPublished - build update query: %v", ErrBuildQuery, err)
	}

	if _, err := executor.ExecContext(ctx, query, args...); err != nil {
		return fmt.Errorf("%w: MarkPublished - execute update: %v", ErrExecQuery, err)
	}

	return nil
}
