package userservice

import (
	"context"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type nopLogger struct{}

func (nopLogger) Info(string, ...interface{})  {}
func (nopLogger) Warn(string, ...interface{})  {}
func (nopLogger) Error(string, ...interface{}) {}

func TestGetUser(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		switch r.URL.Path {
		case "/internal/users/1":
			_, _ = w.Write([]byte(`{"id":1,"name":"Admin","role":"admin"}`))
		case "/internal/users/2":
			w.WriteHeader(http.StatusNotFound)
		default:
			w.WriteHeader(http.StatusBadGateway)
		}
	}))
	defer srv.Close()

	c := NewClient(srv.URL, time.Second, nopLogger{})

	user, err := c.GetUser(context.Background(), 1)
	require.NoError(t, err)
	assert.Equal(t, "admin", user.Role)

	_, err = c.GetUserWithGracefulDegradation(context.Background(), 2)
	assert.ErrorIs(t, err, ErrUserNotFound)

	_, err = c.GetUserWithGracefulDegradation(context.Background(), 3)
	assert.ErrorIs(t, err, ErrServiceDegraded)
}
