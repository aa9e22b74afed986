package auth

import (
	"context"
	"testing"
	"time"

	"github.com/go-redis/redismock/v8"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestService_Login(t *testing.T) {
	db, mock := redismock.NewClientMock()
	service := NewService(time.Hour, db)
	require.NotNil(t, service)

	service.RandStringFunc = func(int) (string, error) {
		return "test-token", nil
	}

	createdAt := time.Now()
	s := session{UserID: "user-1", CreatedAt: createdAt}

	mock.ExpectSet(sessionKeyPrefix+"test-token", s.encode(), 0).SetVal("OK")
	mock.ExpectSAdd(tokensSetKey, "test-token").SetVal(1)

	token, err := service.Login(context.Background(), "user-1", createdAt)
	require.NoError(t, err)
	assert.Equal(t, "test-token", token)
	require.NoError(t, mock.ExpectationsWereMet())
}

func TestService_Logout(t *testing.T) {
	db, mock := redismock.NewClientMock()
	service := NewService(time.Hour, db)

	s := session{UserID: "user-1", CreatedAt: time.Now()}
	sessionKey := sessionKeyPrefix + "test-token"

	mock.ExpectGet(sessionKey).SetVal(s.encode())
	mock.ExpectDel(sessionKey).SetVal(1)
	mock.ExpectSRem(tokensSetKey, "test-token").SetVal(1)

	loggedOut, err := service.Logout(context.Background(), "test-token")
	require.NoError(t, err)
	assert.True(t, loggedOut)
	require.NoError(t, mock.ExpectationsWereMet())
}

func TestService_Logout_UnknownToken(t *testing.T) {
	db, mock := redismock.NewClientMock()
	service := NewService(time.Hour, db)

	mock.ExpectGet(sessionKeyPrefix + "bogus").RedisNil()

	_, err := service.Logout(context.Background(), "bogus")
	require.Error(t, err)
}
