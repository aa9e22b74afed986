package auth

import (
	"context"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/go-redis/redismock/v8"
)

func TestLoginChecker_LoggedUser(t *testing.T) {
	db, mock := redismock.NewClientMock()

	loginChecker := NewLoginChecker(time.Hour, db)
	require.NotNil(t, loginChecker)

	ctx := context.Background()

	mock.ExpectGet(sessionKeyPrefix + "invalid token").RedisNil()
	userID, err := loginChecker.LoggedUser(ctx, "invalid token")
	require.ErrorIs(t, err, ErrNotLoggedIn)
	assert.Empty(t, userID)

	testToken := "test-token"
	sessionKey := sessionKeyPrefix + testToken
	s := session{UserID: "user-1", CreatedAt: time.Now()}

	mock.ExpectGet(sessionKey).SetVal(s.encode())
	userID, err = loginChecker.LoggedUser(ctx, testToken)
	require.NoError(t, err)
	assert.Equal(t, "user-1", userID)

	// idempotent
	mock.ExpectGet(sessionKey).SetVal(s.encode())
	userID, err = loginChecker.LoggedUser(ctx, testToken)
	require.NoError(t, err)
	assert.Equal(t, "user-1", userID)
}

func TestLoginChecker_LoggedUser_ExpiredSession(t *testing.T) {
	db, mock := redismock.NewClientMock()
	loginChecker := NewLoginChecker(time.Hour, db)

	expired := session{UserID: "user-1", CreatedAt: time.Now().Add(-2 * time.Hour)}
	mock.ExpectGet(sessionKeyPrefix + "old-token").SetVal(expired.encode())

	_, err := loginChecker.LoggedUser(context.Background(), "old-token")
	require.ErrorIs(t, err, ErrNotLoggedIn)
}

func TestDecodeSession(t *testing.T) {
	now := time.Now().Truncate(time.Second)
	s := session{UserID: "user-1", CreatedAt: now}

	decoded, err := decodeSession(s.encode())
	require.NoError(t, err)
	assert.Equal(t, "user-1", decoded.UserID)
	assert.Equal(t, now.Unix(), decoded.CreatedAt.Unix())

	_, err = decodeSession("garbage")
	require.Error(t, err)
}
