package service_test

import (
	"context"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/openkanban/board-api/internal/domain"
	"github.com/openkanban/board-api/internal/service/auth"
	"github.com/openkanban/board-api/internal/store"
)

func TestUserRegisterAndLogin(t *testing.T) {
	t.Parallel()
	env := newServiceEnv(t)
	ctx := context.Background()

	user, token, err := env.userSvc.Register(ctx, "Ada", "Ada@Example.com", "correct horse")
	require.NoError(t, err)
	assert.NotEmpty(t, token)
	assert.Equal(t, "ada@example.com", user.Email, "email is normalized")
	assert.NotEqual(t, "correct horse", user.HashedPassword)

	loggedIn, token, err := env.userSvc.Login(ctx, "ada@example.com", "correct horse")
	require.NoError(t, err)
	assert.Equal(t, user.ID, loggedIn.ID)
	assert.NotEmpty(t, token)
}

func TestUserRegisterDuplicateEmail(t *testing.T) {
	t.Parallel()
	env := newServiceEnv(t)
	ctx := context.Background()

	_, _, err := env.userSvc.Register(ctx, "Ada", "ada@example.com", "correct horse")
	require.NoError(t, err)

	_, _, err = env.userSvc.Register(ctx, "Imposter", "ada@example.com", "battery staple")
	assert.ErrorIs(t, err, store.ErrEmailExists)
}

func TestUserRegisterRejectsShortPassword(t *testing.T) {
	t.Parallel()
	env := newServiceEnv(t)

	_, _, err := env.userSvc.Register(context.Background(), "Ada", "ada@example.com", "short")
	assert.ErrorIs(t, err, domain.ErrInvalidPassword)
}

func TestUserRegisterRejectsBadEmail(t *testing.T) {
	t.Parallel()
	env := newServiceEnv(t)

	_, _, err := env.userSvc.Register(context.Background(), "Ada", "not-an-email", "correct horse")
	assert.ErrorIs(t, err, domain.ErrInvalidEmail)
}

func TestUserLoginRejectsWrongPassword(t *testing.T) {
	t.Parallel()
	env := newServiceEnv(t)
	ctx := context.Background()

	_, _, err := env.userSvc.Register(ctx, "Ada", "ada@example.com", "correct horse")
	require.NoError(t, err)

	_, _, err = env.userSvc.Login(ctx, "ada@example.com", "battery staple")
	assert.ErrorIs(t, err, auth.ErrInvalidCredentials)
}

func TestUserLoginUnknownEmailSameAnswerAsWrongPassword(t *testing.T) {
	t.Parallel()
	env := newServiceEnv(t)

	_, _, err := env.userSvc.Login(context.Background(), "ghost@example.com", "whatever!")
	assert.ErrorIs(t, err, auth.ErrInvalidCredentials)
}

func TestUserList(t *testing.T) {
	t.Parallel()
	env := newServiceEnv(t)
	ctx := context.Background()

	env.seedUser(t, "Ada", "ada@example.com")
	env.seedUser(t, "Grace", "grace@example.com")

	users, err := env.userSvc.List(ctx)
	require.NoError(t, err)
	require.Len(t, users, 2)
	assert.Equal(t, "ada@example.com", users[0].Email)
	assert.Equal(t, "grace@example.com", users[1].Email)
}
