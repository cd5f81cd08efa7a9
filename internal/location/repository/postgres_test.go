package repository

import (
	"context"
	"database/sql"
	"regexp"
	"testing"
	"time"

	"github.com/DATA-DOG/go-sqlmock"
	"github.com/fekuna/omnipos-inventory-service/internal/apperror"
	"github.com/fekuna/omnipos-inventory-service/internal/location/dto"
	"github.com/fekuna/omnipos-inventory-service/internal/model"
	"github.com/jackc/pgx/v5/pgconn"
	"github.com/jmoiron/sqlx"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func newMockRepo(t *testing.T) (*PGRepository, sqlmock.Sqlmock) {
	db, mock, err := sqlmock.New()
	require.NoError(t, err)
	t.Cleanup(func() { db.Close() })
	return NewPGRepository(sqlx.NewDb(db, "pgx")), mock
}

var locationColumns = []string{"id", "name", "code", "type", "capacity", "is_active", "created_at", "updated_at"}

func TestPG_CreateDuplicateCode(t *testing.T) {
	repo, mock := newMockRepo(t)
	at := time.Date(2026, 1, 1, 0, 0, 0, 0, time.UTC)

	mock.ExpectExec("INSERT INTO locations").
		WillReturnError(&pgconn.PgError{Code: "23505", ConstraintName: "locations_code_key"})

	err := repo.Create(context.Background(), &model.Location{ID: "l-1", Name: "Main", Code: "WH", Type: model.LocationWarehouse, CreatedAt: at, UpdatedAt: at})
	assert.ErrorIs(t, err, apperror.ErrDuplicateKey)
	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestPG_FindByID(t *testing.T) {
	repo, mock := newMockRepo(t)
	at := time.Date(2026, 1, 1, 0, 0, 0, 0, time.UTC)

	mock.ExpectQuery(regexp.QuoteMeta(`SELECT * FROM locations WHERE id = $1 LIMIT 1`)).
		WithArgs("l-1").
		WillReturnRows(sqlmock.NewRows(locationColumns).AddRow("l-1", "Main", "WH", "warehouse", 1000, true, at, at))
	mock.ExpectQuery(regexp.QuoteMeta(`SELECT * FROM locations WHERE id = $1 LIMIT 1`)).
		WithArgs("l-2").
		WillReturnError(sql.ErrNoRows)

	loc, err := repo.FindByID(context.Background(), "l-1")
	require.NoError(t, err)
	require.NotNil(t, loc.Capacity)
	assert.Equal(t, int64(1000), *loc.Capacity)

	loc, err = repo.FindByID(context.Background(), "l-2")
	require.NoError(t, err)
	assert.Nil(t, loc)
	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestPG_FindAllKeyword(t *testing.T) {
	repo, mock := newMockRepo(t)
	at := time.Date(2026, 1, 1, 0, 0, 0, 0, time.UTC)

	mock.ExpectQuery(regexp.QuoteMeta(`SELECT count(*) FROM locations WHERE (name ILIKE $1 OR code ILIKE $2)`)).
		WithArgs("%kiosk%", "%kiosk%").
		WillReturnRows(sqlmock.NewRows([]string{"count"}).AddRow(1))
	mock.ExpectPrepare(regexp.QuoteMeta(`SELECT * FROM locations WHERE (name ILIKE $1 OR code ILIKE $2) ORDER BY code ASC`)).
		ExpectQuery().
		WithArgs("%kiosk%", "%kiosk%").
		WillReturnRows(sqlmock.NewRows(locationColumns).AddRow("l-3", "Lobby Kiosk", "K1", "kiosk", nil, true, at, at))

	locs, total, err := repo.FindAll(context.Background(), &dto.LocationFilters{Keyword: "kiosk"})
	require.NoError(t, err)
	assert.Equal(t, 1, total)
	require.Len(t, locs, 1)
	assert.Nil(t, locs[0].Capacity)
	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestPG_DeleteReferenced(t *testing.T) {
	repo, mock := newMockRepo(t)

	mock.ExpectExec(regexp.QuoteMeta(`DELETE FROM locations WHERE id = $1`)).
		WithArgs("l-1").
		WillReturnError(&pgconn.PgError{Code: "23503"})

	err := repo.Delete(context.Background(), "l-1")
	assert.ErrorIs(t, err, apperror.ErrConflict)
	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestPG_IsCodeUnique(t *testing.T) {
	repo, mock := newMockRepo(t)

	mock.ExpectQuery(regexp.QuoteMeta(`SELECT EXISTS(SELECT 1 FROM locations WHERE code = $1 AND id::text <> $2)`)).
		WithArgs("WH", "").
		WillReturnRows(sqlmock.NewRows([]string{"exists"}).AddRow(true))

	unique, err := repo.IsCodeUnique(context.Background(), "WH", "")
	require.NoError(t, err)
	assert.False(t, unique)
	assert.NoError(t, mock.ExpectationsWereMet())
}
