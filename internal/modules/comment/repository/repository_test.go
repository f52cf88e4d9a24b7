package repository

import (
	"context"
	"testing"

	"anoa.com/wanderhub/internal/entity"
	"anoa.com/wanderhub/pkg/apperror"
	"anoa.com/wanderhub/pkg/database/dbtest"
	"github.com/DATA-DOG/go-sqlmock"
	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestCommentRepository_Create_AssignsID(t *testing.T) {
	db, mock := dbtest.New(t)
	placeID := uuid.New()

	mock.ExpectExec(`INSERT INTO "comments"`).WillReturnResult(sqlmock.NewResult(0, 1))

	comment := &entity.Comment{UserID: uuid.New(), PlaceID: &placeID, Content: "hi"}
	require.NoError(t, NewCommentRepository(db).Create(context.Background(), comment))
	assert.NotEqual(t, uuid.Nil, comment.ID)
}

func TestCommentRepository_Delete_RemovesLikesFirst(t *testing.T) {
	db, mock := dbtest.New(t)
	id := uuid.New()

	mock.ExpectBegin()
	mock.ExpectExec(`DELETE FROM "likes" WHERE comment_id = \$1`).
		WithArgs(id).
		WillReturnResult(sqlmock.NewResult(0, 3))
	mock.ExpectExec(`DELETE FROM "comments" WHERE id = \$1`).
		WithArgs(id).
		WillReturnResult(sqlmock.NewResult(0, 1))
	mock.ExpectCommit()

	require.NoError(t, NewCommentRepository(db).Delete(context.Background(), id))
}

func TestCommentRepository_Delete_NotFound(t *testing.T) {
	db, mock := dbtest.New(t)
	id := uuid.New()

	mock.ExpectBegin()
	mock.ExpectExec(`DELETE FROM "likes"`).WillReturnResult(sqlmock.NewResult(0, 0))
	mock.ExpectExec(`DELETE FROM "comments"`).WillReturnResult(sqlmock.NewResult(0, 0))
	mock.ExpectRollback()

	err := NewCommentRepository(db).Delete(context.Background(), id)
	assert.ErrorIs(t, err, apperror.ErrNotFound)
}
