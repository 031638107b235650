package user_test

import (
	"context"
	"database/sql"
	"errors"
	"testing"
	"time"

	"github.com/DATA-DOG/go-sqlmock"
	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/redmonkez12/daily-diet-api/internal/database"
	"github.com/redmonkez12/daily-diet-api/internal/user"
)

var userColumns = []string{"id", "name", "email", "created_at", "updated_at"}

func newRepository(t *testing.T) (*user.Repository, sqlmock.Sqlmock) {
	t.Helper()
	db, mock, err := sqlmock.New()
	require.NoError(t, err)
	t.Cleanup(func() { db.Close() })
	return user.NewRepository(database.NewBunDB(db)), mock
}

func TestRepository_List(t *testing.T) {
	repo, mock := newRepository(t)
	now := time.Now().UTC()
	a, b := uuid.New(), uuid.New()

	mock.ExpectQuery(`SELECT .* FROM "users"`).
		WillReturnRows(sqlmock.NewRows(userColumns).
			AddRow(a.String(), "Ann", "a@x.com", now, now).
			AddRow(b.String(), "Bob", "b@x.com", now, now))

	users, err := repo.List(context.Background())
	require.NoError(t, err)
	require.Len(t, users, 2)
	assert.Equal(t, a, users[0].ID)
	assert.Equal(t, "Bob", users[1].Name)
	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestRepository_GetByID(t *testing.T) {
	repo, mock := newRepository(t)
	id := uuid.New()
	now := time.Now().UTC()

	mock.ExpectQuery(`SELECT .* FROM "users".* WHERE \(id = .*` + id.String()).
		WillReturnRows(sqlmock.NewRows(userColumns).AddRow(id.String(), "Ann", "a@x.com", now, now))

	u, err := repo.GetByID(context.Background(), id)
	require.NoError(t, err)
	assert.Equal(t, id, u.ID)
	assert.Equal(t, "a@x.com", u.Email)
	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestRepository_GetByIDNotFound(t *testing.T) {
	repo, mock := newRepository(t)

	mock.ExpectQuery(`SELECT .* FROM "users"`).
		WillReturnRows(sqlmock.NewRows(userColumns))

	_, err := repo.GetByID(context.Background(), uuid.New())
	assert.ErrorIs(t, err, user.ErrNotFound)
}

func TestRepository_Exists(t *testing.T) {
	repo, mock := newRepository(t)

	mock.ExpectQuery(`SELECT EXISTS`).
		WillReturnRows(sqlmock.NewRows([]string{"exists"}).AddRow(true))

	ok, err := repo.Exists(context.Background(), uuid.New())
	require.NoError(t, err)
	assert.True(t, ok)
	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestRepository_Create(t *testing.T) {
	repo, mock := newRepository(t)
	now := time.Now().UTC()

	mock.ExpectQuery(`INSERT INTO "users"`).
		WillReturnRows(sqlmock.NewRows(userColumns).AddRow(uuid.NewString(), "Ann", "a@x.com", now, now))

	u, err := repo.Create(context.Background(), "Ann", "a@x.com")
	require.NoError(t, err)
	assert.Equal(t, "Ann", u.Name)
	assert.Equal(t, now, u.CreatedAt)
	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestRepository_CreateError(t *testing.T) {
	repo, mock := newRepository(t)

	mock.ExpectQuery(`INSERT INTO "users"`).WillReturnError(errors.New("connection refused"))

	_, err := repo.Create(context.Background(), "Ann", "a@x.com")
	assert.ErrorContains(t, err, "failed to create user")
}

func TestRepository_UpdateNotFound(t *testing.T) {
	repo, mock := newRepository(t)

	mock.ExpectQuery(`UPDATE "users"`).WillReturnError(sql.ErrNoRows)

	_, err := repo.Update(context.Background(), uuid.New(), "Ann", "a@x.com")
	assert.ErrorIs(t, err, user.ErrNotFound)
}

func TestRepository_UpdateMapsReturnedRow(t *testing.T) {
	repo, mock := newRepository(t)
	id := uuid.New()
	created := time.Date(2024, 10, 1, 12, 0, 0, 0, time.UTC)
	updated := created.Add(time.Hour)

	mock.ExpectQuery(`UPDATE "users".* SET name = 'Anne', email = 'anne@x.com'.* WHERE \(id = '` + id.String() + `'\) RETURNING`).
		WillReturnRows(sqlmock.NewRows(userColumns).AddRow(id.String(), "Anne", "anne@x.com", created, updated))

	u, err := repo.Update(context.Background(), id, "Anne", "anne@x.com")
	require.NoError(t, err)
	assert.Equal(t, id, u.ID)
	assert.Equal(t, "Anne", u.Name)
	assert.Equal(t, "anne@x.com", u.Email)
	assert.Equal(t, created, u.CreatedAt)
	assert.Equal(t, updated, u.UpdatedAt)
	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestRepository_Delete(t *testing.T) {
	repo, mock := newRepository(t)

	mock.ExpectExec(`DELETE FROM "users"`).WillReturnResult(sqlmock.NewResult(0, 1))
	require.NoError(t, repo.Delete(context.Background(), uuid.New()))

	mock.ExpectExec(`DELETE FROM "users"`).WillReturnResult(sqlmock.NewResult(0, 0))
	assert.ErrorIs(t, repo.Delete(context.Background(), uuid.New()), user.ErrNotFound)

	assert.NoError(t, mock.ExpectationsWereMet())
}
