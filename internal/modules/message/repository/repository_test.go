package repository

import (
	"context"
	"errors"
	"testing"
	"time"

	"anoa.com/wanderhub/pkg/database/dbtest"
	"github.com/DATA-DOG/go-sqlmock"
	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestMessageRepository_ListConversation_ExactPair(t *testing.T) {
	db, mock := dbtest.New(t)
	a, b := uuid.New(), uuid.New()
	now := time.Now()

	rows := sqlmock.NewRows([]string{"id", "sender_id", "receiver_id", "content", "is_read", "created_at"}).
		AddRow(uuid.NewString(), a.String(), b.String(), "hi", true, now).
		AddRow(uuid.NewString(), b.String(), a.String(), "hey", false, now.Add(time.Second))

	mock.ExpectQuery(`SELECT \* FROM "messages" WHERE \(sender_id = \$1 AND receiver_id = \$2\) OR \(sender_id = \$3 AND receiver_id = \$4\) ORDER BY created_at ASC, id ASC`).
		WithArgs(a, b, b, a).
		WillReturnRows(rows)

	messages, err := NewMessageRepository(db).ListConversation(context.Background(), a, b)

	require.NoError(t, err)
	require.Len(t, messages, 2)
	assert.Equal(t, a, messages[0].SenderID)
	assert.Equal(t, "hey", *messages[1].Content)
}

func TestMessageRepository_MarkRead(t *testing.T) {
	db, mock := dbtest.New(t)
	receiver, sender := uuid.New(), uuid.New()

	mock.ExpectExec(`UPDATE "messages" SET "is_read"=\$1 WHERE sender_id = \$2 AND receiver_id = \$3 AND is_read = \$4`).
		WithArgs(true, sender, receiver, false).
		WillReturnResult(sqlmock.NewResult(0, 3))

	n, err := NewMessageRepository(db).MarkRead(context.Background(), receiver, sender)

	require.NoError(t, err)
	assert.Equal(t, int64(3), n)
}

func TestMessageRepository_UnreadBySender(t *testing.T) {
	db, mock := dbtest.New(t)
	receiver, s1, s2 := uuid.New(), uuid.New(), uuid.New()

	mock.ExpectQuery(`SELECT sender_id, COUNT\(\*\) AS count FROM "messages" WHERE receiver_id = \$1 AND is_read = \$2 GROUP BY "sender_id"`).
		WithArgs(receiver, false).
		WillReturnRows(sqlmock.NewRows([]string{"sender_id", "count"}).AddRow(s1.String(), 2).AddRow(s2.String(), 5))

	counts, err := NewMessageRepository(db).UnreadBySender(context.Background(), receiver)

	require.NoError(t, err)
	assert.Equal(t, map[uuid.UUID]int64{s1: 2, s2: 5}, counts)
}

func TestMessageRepository_WrapsDriverErrors(t *testing.T) {
	errDB := errors.New("connection reset")
	a, b := uuid.New(), uuid.New()

	db, mock := dbtest.New(t)
	repo := NewMessageRepository(db)
	mock.ExpectQuery(`SELECT \* FROM "messages"`).WillReturnError(errDB)
	mock.ExpectExec(`UPDATE "messages"`).WillReturnError(errDB)

	_, err := repo.ListConversation(context.Background(), a, b)
	assert.ErrorIs(t, err, errDB)
	assert.Contains(t, err.Error(), "list conversation")

	n, err := repo.MarkRead(context.Background(), a, b)
	assert.ErrorIs(t, err, errDB)
	assert.Zero(t, n)
}
