package service

import (
	"context"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"

	"mailtriage/internal/util"
)

func TestRegisterAndLogin(t *testing.T) {
	users := newFakeUserStore()
	svc := NewAuthService(users, "secret")

	u, err := svc.Register(context.Background(), "a@b.c", "hunter2")
	require.NoError(t, err)
	assert.Equal(t, "a@b.c", u.Email)

	token, err := svc.Login(context.Background(), "a@b.c", "hunter2")
	require.NoError(t, err)

	userID, isAdmin, err := util.ParseJWT(token, "secret")
	require.NoError(t, err)
	assert.Equal(t, u.ID, userID)
	assert.False(t, isAdmin)
}

func TestRegisterDuplicateEmail(t *testing.T) {
	users := newFakeUserStore()
	svc := NewAuthService(users, "secret")

	_, err := svc.Register(context.Background(), "a@b.c", "hunter2")
	require.NoError(t, err)

	_, err = svc.Register(context.Background(), "a@b.c", "other")
	assert.ErrorIs(t, err, ErrEmailTaken)
}

func TestLoginWrongPassword(t *testing.T) {
	users := newFakeUserStore()
	svc := NewAuthService(users, "secret")

	_, err := svc.Register(context.Background(), "a@b.c", "hunter2")
	require.NoError(t, err)

	_, err = svc.Login(context.Background(), "a@b.c", "wrong")
	assert.ErrorIs(t, err, ErrInvalidCredentials)

	_, err = svc.Login(context.Background(), "nobody@b.c", "hunter2")
	assert.ErrorIs(t, err, ErrInvalidCredentials)
}

func TestEmailServiceClearAllPublishes(t *testing.T) {
	emails := newFakeEmailStore()
	pub := &fakePublisher{}
	svc := NewEmailService(emails, nil, pub, zap.NewNop())

	id := seedEmail(t, emails)
	_ = id

	deleted, _, err := svc.ClearAll(context.Background())
	require.NoError(t, err)
	assert.Equal(t, int64(1), deleted)
	assert.Len(t, pub.byType("database.cleared"), 1)

	listed, err := svc.List(context.Background())
	require.NoError(t, err)
	assert.Empty(t, listed)
}
