package access

import (
	"context"
	"fmt"
	"testing"

	"github.com/stretchr/testify/assert"

	"github.com/m04kA/SMC-NetsBookingService/internal/domain"
	"github.com/m04kA/SMC-NetsBookingService/internal/integrations/userservice"
)

type fakeClient map[int64]*userservice.User

func (f fakeClient) GetUserWithGracefulDegradation(_ context.Context, id int64) (*userservice.User, error) {
	if id == 500 {
		return nil, fmt.Errorf("%w: timeout", userservice.ErrServiceDegraded)
	}
	u, ok := f[id]
	if !ok {
		return nil, userservice.ErrUserNotFound
	}
	return u, nil
}

type nopLogger struct{}

func (nopLogger) Warn(string, ...interface{}) {}

func TestResolver_Role(t *testing.T) {
	r := NewResolver(fakeClient{
		1: {ID: 1, Role: "admin"},
		2: {ID: 2, Role: "customer"},
		3: {ID: 3, Role: "superuser"},
	}, nopLogger{})

	ctx := context.Background()
	assert.Equal(t, domain.RoleAdmin, r.Role(ctx, 1))
	assert.Equal(t, domain.RoleCustomer, r.Role(ctx, 2))
	assert.Equal(t, domain.RoleCustomer, r.Role(ctx, 3))
	assert.Equal(t, domain.RoleCustomer, r.Role(ctx, 404))
	assert.False(t, r.IsAdmin(ctx, 500), "деградация даёт роль customer")

	assert.Equal(t, domain.RoleCustomer, NewResolver(nil, nopLogger{}).Role(ctx, 1))
}
