package postgres

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgconn"
	"github.com/pashagolub/pgxmock/v3"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/oksasatya/meetup-api/internal/domain/entity"
	"github.com/oksasatya/meetup-api/internal/domain/repository"
)

var userRowColumns = []string{"id", "username", "email", "password_hash", "nickname", "created_at", "updated_at"}

func newRepoWithMock(t *testing.T) (*UserRepository, pgxmock.PgxPoolIface) {
	t.Helper()
	mock, err := pgxmock.NewPool()
	require.NoError(t, err)
	t.Cleanup(mock.Close)
	return NewUserRepository(mock), mock
}

func TestCreate_Success(t *testing.T) {
	repo, mock := newRepoWithMock(t)
	now := time.Date(2025, 3, 1, 12, 0, 0, 0, time.UTC)

	mock.ExpectQuery(`INSERT INTO users \(username, email, password_hash, nickname\)`).
		WithArgs("alice", "a@x.com", "digest", "Al").
		WillReturnRows(pgxmock.NewRows([]string{"id", "created_at", "updated_at"}).AddRow("u-1", now, now))

	u := &entity.User{Username: "alice", Email: "a@x.com", Password: "digest", Nickname: "Al"}
	require.NoError(t, repo.Create(context.Background(), u))

	assert.Equal(t, "u-1", u.ID)
	assert.Equal(t, now, u.CreatedAt)
	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestCreate_UniqueViolation(t *testing.T) {
	tests := []struct {
		name       string
		constraint string
		wantField  string
	}{
		{name: "email constraint", constraint: "uq_users_email", wantField: "email"},
		{name: "username constraint", constraint: "uq_users_username", wantField: "username"},
		{name: "legacy email index", constraint: "users_email_key", wantField: "email"},
		{name: "unknown constraint", constraint: "users_pkey", wantField: "user"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			repo, mock := newRepoWithMock(t)
			mock.ExpectQuery(`INSERT INTO users`).
				WithArgs("alice", "a@x.com", "digest", "Al").
				WillReturnError(&pgconn.PgError{Code: "23505", ConstraintName: tt.constraint})

			err := repo.Create(context.Background(), &entity.User{Username: "alice", Email: "a@x.com", Password: "digest", Nickname: "Al"})

			var conflict *repository.ConflictError
			require.True(t, errors.As(err, &conflict), "got %v", err)
			assert.Equal(t, tt.wantField, conflict.Field)
			assert.NoError(t, mock.ExpectationsWereMet())
		})
	}
}

func TestCreate_DBError(t *testing.T) {
	repo, mock := newRepoWithMock(t)
	mock.ExpectQuery(`INSERT INTO users`).
		WithArgs("alice", "a@x.com", "digest", "Al").
		WillReturnError(errors.New("db down"))

	err := repo.Create(context.Background(), &entity.User{Username: "alice", Email: "a@x.com", Password: "digest", Nickname: "Al"})
	require.Error(t, err)
	assert.Contains(t, err.Error(), "insert user: db down")

	var conflict *repository.ConflictError
	assert.False(t, errors.As(err, &conflict))
}

func TestGetters_Found(t *testing.T) {
	now := time.Date(2025, 3, 1, 12, 0, 0, 0, time.UTC)

	tests := []struct {
		name  string
		where string
		arg   string
		call  func(r *UserRepository, arg string) (*entity.User, error)
	}{
		{name: "by id", where: `WHERE id = \$1`, arg: "u-1", call: func(r *UserRepository, a string) (*entity.User, error) {
			return r.GetByID(context.Background(), a)
		}},
		{name: "by email", where: `WHERE email = \$1`, arg: "a@x.com", call: func(r *UserRepository, a string) (*entity.User, error) {
			return r.GetByEmail(context.Background(), a)
		}},
		{name: "by username", where: `WHERE username = \$1`, arg: "alice", call: func(r *UserRepository, a string) (*entity.User, error) {
			return r.GetByUsername(context.Background(), a)
		}},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			repo, mock := newRepoWithMock(t)
			mock.ExpectQuery(`SELECT id, username, email, password_hash, nickname, created_at, updated_at FROM users ` + tt.where).
				WithArgs(tt.arg).
				WillReturnRows(pgxmock.NewRows(userRowColumns).AddRow("u-1", "alice", "a@x.com", "digest", "Al", now, now))

			u, err := tt.call(repo, tt.arg)
			require.NoError(t, err)
			assert.Equal(t, &entity.User{
				ID: "u-1", Username: "alice", Email: "a@x.com", Password: "digest", Nickname: "Al",
				CreatedAt: now, UpdatedAt: now,
			}, u)
			assert.NoError(t, mock.ExpectationsWereMet())
		})
	}
}

func TestGetByUsername_NotFound(t *testing.T) {
	repo, mock := newRepoWithMock(t)
	mock.ExpectQuery(`FROM users WHERE username = \$1`).
		WithArgs("ghost").
		WillReturnError(pgx.ErrNoRows)

	u, err := repo.GetByUsername(context.Background(), "ghost")
	assert.Nil(t, u)
	assert.ErrorIs(t, err, repository.ErrNotFound)
}

func TestGetByID_MalformedUUID(t *testing.T) {
	repo, mock := newRepoWithMock(t)
	mock.ExpectQuery(`FROM users WHERE id = \$1`).
		WithArgs("nope").
		WillReturnError(&pgconn.PgError{Code: "22P02"})

	_, err := repo.GetByID(context.Background(), "nope")
	assert.ErrorIs(t, err, repository.ErrNotFound)
}

func TestGetByEmail_DBError(t *testing.T) {
	repo, mock := newRepoWithMock(t)
	mock.ExpectQuery(`FROM users WHERE email = \$1`).
		WithArgs("a@x.com").
		WillReturnError(errors.New("conn reset"))

	_, err := repo.GetByEmail(context.Background(), "a@x.com")
	require.Error(t, err)
	assert.NotErrorIs(t, err, repository.ErrNotFound)
	assert.Contains(t, err.Error(), "conn reset")
}
