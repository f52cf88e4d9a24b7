package ratelimit

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/go-redis/redismock/v9"
	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestLimiter_NilClientAlwaysAllows(t *testing.T) {
	l := New(nil)

	ok, err := l.Allow(context.Background(), uuid.New(), "message", time.Second)
	require.NoError(t, err)
	assert.True(t, ok)
}

func TestLimiter_Allow(t *testing.T) {
	db, mock := redismock.NewClientMock()
	l := New(db)
	userID := uuid.New()
	k := "rate_limit:user:" + userID.String() + ":message"

	mock.ExpectSetNX(k, "locked", time.Second).SetVal(true)
	mock.ExpectSetNX(k, "locked", time.Second).SetVal(false)

	ok, err := l.Allow(context.Background(), userID, "message", time.Second)
	require.NoError(t, err)
	assert.True(t, ok)

	ok, err = l.Allow(context.Background(), userID, "message", time.Second)
	require.NoError(t, err)
	assert.False(t, ok)

	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestLimiter_RedisError(t *testing.T) {
	db, mock := redismock.NewClientMock()
	l := New(db)
	userID := uuid.New()

	mock.ExpectSetNX("rate_limit:user:"+userID.String()+":friend_request", "locked", time.Minute).
		SetErr(errors.New("connection refused"))

	ok, err := l.Allow(context.Background(), userID, "friend_request", time.Minute)
	assert.Error(t, err)
	assert.False(t, ok)
}
