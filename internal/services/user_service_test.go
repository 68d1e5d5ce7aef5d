package services

import (
	"context"
	"testing"

	"github.com/Adilet2201/ChatConnect/internal/apperrors"
	"github.com/stretchr/testify/require"
	"golang.org/x/crypto/bcrypt"
)

func TestRegisterUser_Success(t *testing.T) {
	store := newMemUserStore()
	svc := NewUserService(store)

	user, err := svc.RegisterUser(context.Background(), "alice", "Alice@Example.com", "secret-password")
	require.NoError(t, err)
	require.Equal(t, "alice", user.Username)
	require.Equal(t, "alice@example.com", user.Email)
	require.NotEqual(t, "secret-password", user.HashedPassword)
	require.NoError(t, bcrypt.CompareHashAndPassword([]byte(user.HashedPassword), []byte("secret-password")))
}

func TestRegisterUser_UsernameConflictIsCaseInsensitive(t *testing.T) {
	store := newMemUserStore()
	svc := NewUserService(store)

	_, err := svc.RegisterUser(context.Background(), "alice", "alice@example.com", "secret-password")
	require.NoError(t, err)

	_, err = svc.RegisterUser(context.Background(), "ALICE", "other@example.com", "secret-password")
	require.ErrorIs(t, err, apperrors.ErrUsernameTaken)
}

func TestRegisterUser_EmailConflict(t *testing.T) {
	store := newMemUserStore()
	svc := NewUserService(store)

	_, err := svc.RegisterUser(context.Background(), "alice", "alice@example.com", "secret-password")
	require.NoError(t, err)

	_, err = svc.RegisterUser(context.Background(), "bob", "alice@example.com", "secret-password")
	require.ErrorIs(t, err, apperrors.ErrEmailTaken)
}

func TestAuthenticateUser(t *testing.T) {
	store := newMemUserStore()
	svc := NewUserService(store)

	_, err := svc.RegisterUser(context.Background(), "alice", "alice@example.com", "secret-password")
	require.NoError(t, err)

	user, err := svc.AuthenticateUser(context.Background(), "alice", "secret-password")
	require.NoError(t, err)
	require.Equal(t, "alice", user.Username)

	_, err = svc.AuthenticateUser(context.Background(), "alice", "wrong-password")
	require.ErrorIs(t, err, apperrors.ErrInvalidCredentials)

	_, err = svc.AuthenticateUser(context.Background(), "nobody", "secret-password")
	require.ErrorIs(t, err, apperrors.ErrNotFound)
}

func TestUsernameAvailable(t *testing.T) {
	store := newMemUserStore()
	svc := NewUserService(store)

	available, err := svc.UsernameAvailable(context.Background(), "alice")
	require.NoError(t, err)
	require.True(t, available)

	store.addUser("alice", "alice@example.com")

	available, err = svc.UsernameAvailable(context.Background(), "Alice")
	require.NoError(t, err)
	require.False(t, available)
}

func TestSearchUsers(t *testing.T) {
	store := newMemUserStore()
	svc := NewUserService(store)

	store.addUser("alice", "alice@example.com")
	store.addUser("alicia", "alicia@other.org")
	store.addUser("bob", "bob@example.com")

	users, err := svc.SearchUsers(context.Background(), "ALIC")
	require.NoError(t, err)
	require.Len(t, users, 2)

	// No matches is a soft miss, not an error.
	users, err = svc.SearchUsers(context.Background(), "zzz")
	require.NoError(t, err)
	require.Empty(t, users)
}
