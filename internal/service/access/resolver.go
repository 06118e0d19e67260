package access

import (
	"context"
	"errors"

	"github.com/m04kA/SMC-NetsBookingService/internal/domain"
	"github.com/m04kA/SMC-NetsBookingService/internal/integrations/userservice"
)

// UserServiceClient интерфейс клиента для UserService
type UserServiceClient interface {
	GetUserWithGracefulDegradation(ctx context.Context, userID int64) (*userservice.User, error)
}

// Logger интерфейс для логирования
type Logger interface {
	Warn(format string, v ...interface{})
}

// Resolver определяет роль пользователя.
// Неизвестный пользователь и недоступный UserService дают роль customer.
type Resolver struct {
	client UserServiceClient
	logger Logger
}

// NewResolver client может быть nil, тогда все пользователи customer
func NewResolver(client UserServiceClient, logger Logger) *Resolver {
	return &Resolver{client: client, logger: logger}
}

// Role роль пользователя
func (r *Resolver) Role(ctx context.Context, userID int64) domain.Role {
	if r.client == nil {
		return domain.RoleCustomer
	}

	user, err := r.client.GetUserWithGracefulDegradation(ctx, userID)
	if err != nil {
		if !errors.Is(err, userservice.ErrUserNotFound) {
			r.logger.Warn("Role: falling back to customer for user=%d: %v", userID, err)
		}
		return domain.RoleCustomer
	}

	if domain.Role(user.Role) == domain.RoleAdmin {
		return domain.RoleAdmin
	}
	return domain.RoleCustomer
}

// IsAdmin пользователь администратор
func (r *Resolver) IsAdmin(ctx context.Context, userID int64) bool {
	return r.Role(ctx, userID) == domain.RoleAdmin
}
