package repository

import (
	"context"
	"errors"
	"testing"

	"anoa.com/wanderhub/internal/entity"
	"anoa.com/wanderhub/pkg/database/dbtest"
	"github.com/DATA-DOG/go-sqlmock"
	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestUpsert_UsesTargetSpecificConflictKey(t *testing.T) {
	placeID := uuid.New()
	eventID := uuid.New()

	tests := []struct {
		name    string
		rating  *entity.Rating
		pattern string
	}{
		{
			name:    "place",
			rating:  &entity.Rating{UserID: uuid.New(), PlaceID: &placeID, Rating: 4},
			pattern: `ON CONFLICT \("user_id","place_id"\) WHERE place_id IS NOT NULL DO UPDATE SET "rating"="excluded"."rating"`,
		},
		{
			name:    "event",
			rating:  &entity.Rating{UserID: uuid.New(), EventID: &eventID, Rating: 2},
			pattern: `ON CONFLICT \("user_id","event_id"\) WHERE event_id IS NOT NULL DO UPDATE SET "rating"="excluded"."rating"`,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			db, mock := dbtest.New(t)
			repo := NewRatingRepository(db)

			mock.ExpectQuery(`INSERT INTO "ratings" .*` + tt.pattern).
				WillReturnRows(sqlmock.NewRows([]string{"id"}).AddRow(7))

			require.NoError(t, repo.Upsert(context.Background(), tt.rating))
			assert.Equal(t, uint(7), tt.rating.ID)
		})
	}
}

func TestSummary(t *testing.T) {
	db, mock := dbtest.New(t)
	repo := NewRatingRepository(db)
	placeID := uuid.New()

	mock.ExpectQuery(`SELECT COALESCE\(AVG\(rating\), 0\) AS average, COUNT\(\*\) AS count FROM "ratings" WHERE place_id = \$1`).
		WithArgs(placeID).
		WillReturnRows(sqlmock.NewRows([]string{"average", "count"}).AddRow(4.5, 2))

	sum, err := repo.Summary(context.Background(), entity.Target{PlaceID: &placeID})
	require.NoError(t, err)
	assert.Equal(t, 4.5, sum.Average)
	assert.Equal(t, int64(2), sum.Count)
}

func TestFindByUser_NoneIsNil(t *testing.T) {
	db, mock := dbtest.New(t)
	repo := NewRatingRepository(db)
	userID := uuid.New()
	eventID := uuid.New()

	mock.ExpectQuery(`SELECT \* FROM "ratings" WHERE user_id = \$1 AND event_id = \$2`).
		WithArgs(userID, eventID, 1).
		WillReturnRows(sqlmock.NewRows([]string{"id"}))

	got, err := repo.FindByUser(context.Background(), userID, entity.Target{EventID: &eventID})
	require.NoError(t, err)
	assert.Nil(t, got)
}

func TestRatingRepository_WrapsDriverErrors(t *testing.T) {
	errDB := errors.New("connection reset")
	userID, placeID := uuid.New(), uuid.New()
	target := entity.Target{PlaceID: &placeID}

	db, mock := dbtest.New(t)
	repo := NewRatingRepository(db)
	mock.ExpectExec(`DELETE FROM "ratings"`).WillReturnError(errDB)
	mock.ExpectQuery(`SELECT count\(\*\) FROM "ratings"`).WillReturnError(errDB)

	_, err := repo.Delete(context.Background(), userID, target)
	assert.ErrorIs(t, err, errDB)
	assert.Contains(t, err.Error(), "delete rating")

	_, err = repo.Count(context.Background())
	assert.ErrorIs(t, err, errDB)
	assert.Contains(t, err.Error(), "count ratings")
}
