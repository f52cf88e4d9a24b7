package repository

import (
	"context"
	"errors"
	"testing"

	"anoa.com/wanderhub/internal/entity"
	"anoa.com/wanderhub/pkg/apperror"
	"anoa.com/wanderhub/pkg/database/dbtest"
	"github.com/DATA-DOG/go-sqlmock"
	"github.com/google/uuid"
	"github.com/jackc/pgx/v5/pgconn"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestFriendRepository_DeleteBetween_UsesCompoundPredicate(t *testing.T) {
	db, mock := dbtest.New(t)
	a, b := uuid.New(), uuid.New()

	mock.ExpectExec(`DELETE FROM "user_friends" WHERE \(user_id = \$1 AND friend_id = \$2\) OR \(user_id = \$3 AND friend_id = \$4\)`).
		WithArgs(a, b, b, a).
		WillReturnResult(sqlmock.NewResult(0, 1))

	n, err := NewFriendRepository(db).DeleteBetween(context.Background(), a, b)

	require.NoError(t, err)
	assert.Equal(t, int64(1), n)
}

func TestFriendRepository_Create_UniqueViolation(t *testing.T) {
	db, mock := dbtest.New(t)

	mock.ExpectExec(`INSERT INTO "user_friends"`).
		WillReturnError(&pgconn.PgError{Code: "23505", ConstraintName: "idx_user_friends_pair"})

	err := NewFriendRepository(db).Create(context.Background(), &entity.FriendEdge{
		UserID: uuid.New(), FriendID: uuid.New(), Status: entity.FriendStatusPending,
	})

	assert.ErrorIs(t, err, apperror.ErrConflict)
}

func TestFriendRepository_Accept(t *testing.T) {
	tests := []struct {
		name    string
		rows    int64
		execErr error
		wantErr error
	}{
		{name: "pending edge", rows: 1},
		{name: "already accepted", rows: 0, wantErr: apperror.ErrConflict},
		{name: "db error", execErr: errors.New("boom")},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			db, mock := dbtest.New(t)
			id := uuid.New()

			exp := mock.ExpectExec(`UPDATE "user_friends" SET "status"=\$1,"updated_at"=\$2 WHERE id = \$3 AND status = \$4`).
				WithArgs(entity.FriendStatusAccepted, sqlmock.AnyArg(), id, entity.FriendStatusPending)
			if tt.execErr != nil {
				exp.WillReturnError(tt.execErr)
			} else {
				exp.WillReturnResult(sqlmock.NewResult(0, tt.rows))
			}

			err := NewFriendRepository(db).Accept(context.Background(), id)

			switch {
			case tt.wantErr != nil:
				assert.ErrorIs(t, err, tt.wantErr)
			case tt.execErr != nil:
				assert.Error(t, err)
			default:
				assert.NoError(t, err)
			}
		})
	}
}

func TestFriendRepository_FindBetween_NotFound(t *testing.T) {
	db, mock := dbtest.New(t)
	a, b := uuid.New(), uuid.New()

	mock.ExpectQuery(`SELECT \* FROM "user_friends" WHERE \(user_id = \$1 AND friend_id = \$2\) OR \(user_id = \$3 AND friend_id = \$4\)`).
		WillReturnRows(sqlmock.NewRows([]string{"id"}))

	_, err := NewFriendRepository(db).FindBetween(context.Background(), a, b)

	assert.ErrorIs(t, err, apperror.ErrNotFound)
}
