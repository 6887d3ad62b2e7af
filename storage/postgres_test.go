package storage

import (
	"context"
	"errors"
	"testing"

	"github.com/pashagolub/pgxmock/v4"
	"github.com/rotisserie/eris"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestPostgresStore_Migrate(t *testing.T) {
	mock, err := pgxmock.NewPool()
	require.NoError(t, err)
	defer mock.Close()

	mock.ExpectExec("CREATE TABLE IF NOT EXISTS buildings").
		WillReturnResult(pgxmock.NewResult("CREATE", 0))

	store := NewPostgresStoreFromPool(mock)
	assert.NoError(t, store.Migrate(context.Background()))
	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestPostgresStore_Save(t *testing.T) {
	mock, err := pgxmock.NewPool()
	require.NoError(t, err)
	defer mock.Close()

	rec := sampleRecord()
	mock.ExpectQuery("INSERT INTO buildings").
		WithArgs(
			"110_West_57th_Street",
			pgxmock.AnyArg(),
			pgxmock.AnyArg(),
			pgxmock.AnyArg(),
			pgxmock.AnyArg(),
			rec.SourceURL,
			pgxmock.AnyArg(),
			pgxmock.AnyArg(),
			rec.RetrievedAt,
		).
		WillReturnRows(pgxmock.NewRows([]string{"times_scraped"}).AddRow(1))

	store := NewPostgresStoreFromPool(mock)
	ref, err := store.Save(context.Background(), rec, "110_West_57th_Street")
	require.NoError(t, err)
	assert.Equal(t, "postgres://buildings/110_West_57th_Street", ref)
	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestPostgresStore_SaveError(t *testing.T) {
	mock, err := pgxmock.NewPool()
	require.NoError(t, err)
	defer mock.Close()

	reset := errors.New("connection reset")
	mock.ExpectQuery("INSERT INTO buildings").
		WithArgs(
			"id",
			pgxmock.AnyArg(),
			pgxmock.AnyArg(),
			pgxmock.AnyArg(),
			pgxmock.AnyArg(),
			pgxmock.AnyArg(),
			pgxmock.AnyArg(),
			pgxmock.AnyArg(),
			pgxmock.AnyArg(),
		).
		WillReturnError(reset)

	_, err = NewPostgresStoreFromPool(mock).Save(context.Background(), sampleRecord(), "id")
	require.Error(t, err)
	assert.Contains(t, err.Error(), "postgres: upsert building")
	assert.ErrorIs(t, err, reset)
	assert.Equal(t, reset, eris.Cause(err))
	assert.NoError(t, mock.ExpectationsWereMet())
}
