package main

import (
	"testing"

	"github.com/DATA-DOG/go-sqlmock"
	"github.com/stretchr/testify/require"
	"gorm.io/driver/postgres"
	"gorm.io/gorm"
)

func TestEnsureIndexesBacksIngestUpsert(t *testing.T) {
	db, mock, err := sqlmock.New()
	require.NoError(t, err)
	t.Cleanup(func() { db.Close() })

	gdb, err := gorm.Open(postgres.New(postgres.Config{Conn: db}), &gorm.Config{})
	require.NoError(t, err)

	// The index must be unique and partial on non-empty yelp_id so the
	// ingest conflict target has a constraint to resolve against while
	// admin-created rows keep an empty yelp_id.
	mock.ExpectExec(`CREATE UNIQUE INDEX IF NOT EXISTS idx_restaurants_yelp_id ON restaurants \(yelp_id\) WHERE yelp_id <> ''`).
		WillReturnResult(sqlmock.NewResult(0, 0))

	pg := &Pg{db: gdb}
	require.NoError(t, pg.ensureIndexes())
	require.NoError(t, mock.ExpectationsWereMet())
}
