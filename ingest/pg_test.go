package main

import (
	"context"
	"testing"

	"github.com/DATA-DOG/go-sqlmock"
	"github.com/stretchr/testify/require"
	"gorm.io/driver/postgres"
	"gorm.io/gorm"

	"github.com/imkonsowa/restaurants-chat/models"
)

func newMockPg(t *testing.T) (*Pg, sqlmock.Sqlmock) {
	t.Helper()

	db, mock, err := sqlmock.New()
	require.NoError(t, err)
	t.Cleanup(func() { db.Close() })

	gdb, err := gorm.Open(postgres.New(postgres.Config{Conn: db}), &gorm.Config{})
	require.NoError(t, err)

	return &Pg{db: gdb}, mock
}

func TestUpsertRestaurantConflictsOnPartialYelpIDIndex(t *testing.T) {
	pg, mock := newMockPg(t)

	// The conflict target must name yelp_id together with the predicate of
	// the partial unique index, or Postgres rejects the statement.
	mock.ExpectBegin()
	mock.ExpectQuery(`INSERT INTO "restaurants" .+ ON CONFLICT \("yelp_id"\)\s+WHERE yelp_id <> ''\s+DO UPDATE SET .+ RETURNING "id"`).
		WillReturnRows(sqlmock.NewRows([]string{"id"}).AddRow(1))
	mock.ExpectCommit()

	err := pg.UpsertRestaurant(context.Background(), &models.Restaurant{
		YelpID:     "yelp-abc",
		Name:       "Sushi Go",
		Location:   "Los Angeles",
		Categories: "sushi",
		Rating:     4.5,
	})
	require.NoError(t, err)
	require.NoError(t, mock.ExpectationsWereMet())
}

func TestUpsertRestaurantWithoutYelpIDInserts(t *testing.T) {
	pg, mock := newMockPg(t)

	mock.ExpectBegin()
	mock.ExpectQuery(`INSERT INTO "restaurants" .+ RETURNING "id"`).
		WillReturnRows(sqlmock.NewRows([]string{"id"}).AddRow(2))
	mock.ExpectCommit()

	err := pg.UpsertRestaurant(context.Background(), &models.Restaurant{
		Name:       "Corner Diner",
		Location:   "Austin",
		Categories: "diner",
	})
	require.NoError(t, err)
	require.NoError(t, mock.ExpectationsWereMet())
}
