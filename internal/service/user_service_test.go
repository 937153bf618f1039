package service_test

import (
	"context"
	"testing"

	dom "Tracker/internal/domain"
	"Tracker/internal/service"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgconn"
	"github.com/stretchr/testify/require"
	"golang.org/x/crypto/bcrypt"
)

// fakeUserRepo mirrors the Postgres behavior the service depends on:
// pgx.ErrNoRows for a missing username and a 23505 PgError when the
// unique constraint trips.
type fakeUserRepo struct {
	byName map[string]dom.User
	nextID int64
}

func newFakeUserRepo() *fakeUserRepo {
	return &fakeUserRepo{byName: map[string]dom.User{}, nextID: 1}
}

func (r *fakeUserRepo) GetByUsername(_ context.Context, username string) (dom.User, error) {
	u, ok := r.byName[username]
	if !ok {
		return dom.User{}, pgx.ErrNoRows
	}
	return u, nil
}

func (r *fakeUserRepo) Create(_ context.Context, username, passwordHash string) (dom.User, error) {
	if _, ok := r.byName[username]; ok {
		return dom.User{}, &pgconn.PgError{Code: "23505", ConstraintName: "users_username_key"}
	}
	u := dom.User{ID: r.nextID, Username: username, PasswordHash: passwordHash}
	r.nextID++
	r.byName[username] = u
	return u, nil
}

func TestUserService_Register(t *testing.T) {
	ctx := context.Background()

	t.Run("duplicate registration fails and keeps the original credential", func(t *testing.T) {
		repo := newFakeUserRepo()
		svc := service.NewUserService(repo)

		first, err := svc.Register(ctx, "alice", "pw1")
		require.NoError(t, err)
		require.Equal(t, int64(1), first.ID)

		_, err = svc.Register(ctx, "alice", "different")
		require.ErrorIs(t, err, service.ErrUsernameTaken)

		stored := repo.byName["alice"]
		require.Equal(t, first.PasswordHash, stored.PasswordHash)
		require.NoError(t, bcrypt.CompareHashAndPassword([]byte(stored.PasswordHash), []byte("pw1")))
	})

	t.Run("username is trimmed and required", func(t *testing.T) {
		repo := newFakeUserRepo()
		svc := service.NewUserService(repo)

		_, err := svc.Register(ctx, "   ", "pw")
		require.ErrorIs(t, err, service.ErrInvalidCredentials)

		_, err = svc.Register(ctx, "bob", "")
		require.ErrorIs(t, err, service.ErrInvalidCredentials)

		u, err := svc.Register(ctx, "  bob  ", "pw")
		require.NoError(t, err)
		require.Equal(t, "bob", u.Username)
	})

	t.Run("raw password is never stored", func(t *testing.T) {
		repo := newFakeUserRepo()
		svc := service.NewUserService(repo)

		_, err := svc.Register(ctx, "carol", "hunter2")
		require.NoError(t, err)
		require.NotEqual(t, "hunter2", repo.byName["carol"].PasswordHash)
	})
}

func TestUserService_ValidateCredentials(t *testing.T) {
	ctx := context.Background()
	repo := newFakeUserRepo()
	svc := service.NewUserService(repo)

	registered, err := svc.Register(ctx, "alice", "pw1")
	require.NoError(t, err)

	tests := []struct {
		name     string
		username string
		password string
		wantErr  error
	}{
		{name: "correct credentials", username: "alice", password: "pw1"},
		{name: "wrong password", username: "alice", password: "wrongpw", wantErr: service.ErrInvalidCredentials},
		{name: "unknown user", username: "ghost", password: "x", wantErr: service.ErrInvalidCredentials},
		{name: "empty password", username: "alice", password: "", wantErr: service.ErrInvalidCredentials},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			u, err := svc.ValidateCredentials(ctx, tt.username, tt.password)
			if tt.wantErr != nil {
				// Unknown user and wrong password must be the exact same
				// error value, leaking nothing about which it was.
				require.ErrorIs(t, err, tt.wantErr)
				require.Zero(t, u)
				return
			}
			require.NoError(t, err)
			require.Equal(t, registered.ID, u.ID)
		})
	}
}
