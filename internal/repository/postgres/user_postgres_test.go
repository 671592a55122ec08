package postgres

import (
	"context"
	"database/sql"
	"errors"
	"testing"
	"time"

	"docqa/internal/model"
	"docqa/internal/repository"
	"github.com/DATA-DOG/go-sqlmock"
	"github.com/jackc/pgx/v5/pgconn"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

var userRowColumns = []string{"id", "username", "password_hash", "created_at"}

func TestUserPostgres_Create(t *testing.T) {
	db, mock, err := sqlmock.New()
	require.NoError(t, err)
	defer db.Close()

	repo := NewUserPostgres(db)
	ctx := context.Background()
	now := time.Now().UTC()
	u := &model.User{ID: "user-1", Username: "alice", PasswordHash: "hash", CreatedAt: now}

	t.Run("created", func(t *testing.T) {
		mock.ExpectQuery("INSERT INTO users").
			WithArgs(u.ID, u.Username, u.PasswordHash, u.CreatedAt).
			WillReturnRows(sqlmock.NewRows(userRowColumns).AddRow(u.ID, u.Username, u.PasswordHash, now))

		out, err := repo.Create(ctx, u)

		assert.NoError(t, err)
		assert.Equal(t, "alice", out.Username)
	})

	t.Run("duplicate username", func(t *testing.T) {
		mock.ExpectQuery("INSERT INTO users").
			WithArgs(u.ID, u.Username, u.PasswordHash, u.CreatedAt).
			WillReturnError(&pgconn.PgError{Code: "23505", ConstraintName: "users_username_key"})

		out, err := repo.Create(ctx, u)

		assert.ErrorIs(t, err, repository.ErrDuplicate)
		assert.Nil(t, out)
	})

	t.Run("other error passes through", func(t *testing.T) {
		mock.ExpectQuery("INSERT INTO users").WillReturnError(errors.New("conn reset"))

		_, err := repo.Create(ctx, u)

		assert.EqualError(t, err, "conn reset")
	})

	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestUserPostgres_Find(t *testing.T) {
	db, mock, err := sqlmock.New()
	require.NoError(t, err)
	defer db.Close()

	repo := NewUserPostgres(db)
	ctx := context.Background()

	mock.ExpectQuery("SELECT (.+) FROM users WHERE username = \\$1").
		WithArgs("alice").
		WillReturnRows(sqlmock.NewRows(userRowColumns).AddRow("user-1", "alice", "hash", time.Now()))

	u, err := repo.FindByUsername(ctx, "alice")
	assert.NoError(t, err)
	assert.Equal(t, "user-1", u.ID)
	assert.Equal(t, "hash", u.PasswordHash)

	mock.ExpectQuery("SELECT (.+) FROM users WHERE id = \\$1").
		WithArgs("missing").
		WillReturnError(sql.ErrNoRows)

	u, err = repo.FindByID(ctx, "missing")
	assert.ErrorIs(t, err, sql.ErrNoRows)
	assert.Nil(t, u)

	assert.NoError(t, mock.ExpectationsWereMet())
}
