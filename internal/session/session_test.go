package session

import (
	"context"
	"errors"
	"testing"

	"github.com/golang-jwt/jwt/v5"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"idcard/internal/storage"
)

func TestNewWithoutPersistedToken(t *testing.T) {
	s, err := New(context.Background(), storage.NewMemory(storage.Options{}).Scope("v"))
	require.NoError(t, err)
	assert.False(t, s.IsAdmin())
	assert.Empty(t, s.Token())
}

func TestNewTrustsPersistedToken(t *testing.T) {
	ctx := context.Background()
	store := storage.NewMemory(storage.Options{}).Scope("v")
	require.NoError(t, store.Set(ctx, storage.TokenKey, "stale-but-trusted"))

	s, err := New(ctx, store)
	require.NoError(t, err)
	assert.True(t, s.IsAdmin())
	assert.Equal(t, "stale-but-trusted", s.Token())
}

func TestLoginPersists(t *testing.T) {
	ctx := context.Background()
	store := storage.NewMemory(storage.Options{}).Scope("v")
	s, _ := New(ctx, store)

	require.NoError(t, s.Login(ctx, "abc"))
	assert.True(t, s.IsAdmin())
	val, ok, _ := store.Get(ctx, storage.TokenKey)
	assert.True(t, ok)
	assert.Equal(t, "abc", val)

	assert.Error(t, s.Login(ctx, ""))
}

func TestLogoutClearsEverything(t *testing.T) {
	ctx := context.Background()
	store := storage.NewMemory(storage.Options{}).Scope("v")
	s, _ := New(ctx, store)
	require.NoError(t, s.Login(ctx, "abc"))

	cleared := 0
	s.OnLogout(func() { cleared++ })
	require.NoError(t, s.Logout(ctx))

	assert.False(t, s.IsAdmin())
	assert.Empty(t, s.Token())
	_, ok, _ := store.Get(ctx, storage.TokenKey)
	assert.False(t, ok)
	assert.Equal(t, 1, cleared)
}

type failingStore struct{ storage.Storage }

func (failingStore) Get(context.Context, string) (string, bool, error) {
	return "", false, nil
}

func (failingStore) Delete(context.Context, string) error {
	return errors.New("down")
}

func TestLogoutClearsMemoryWhenStorageFails(t *testing.T) {
	s := &Session{store: failingStore{}, token: "abc"}
	assert.Error(t, s.Logout(context.Background()))
	assert.False(t, s.IsAdmin())
}

func TestDisplayName(t *testing.T) {
	ctx := context.Background()
	s, _ := New(ctx, storage.NewMemory(storage.Options{}).Scope("v"))
	assert.Empty(t, s.DisplayName())

	tok, err := jwt.NewWithClaims(jwt.SigningMethodHS256, jwt.MapClaims{"username": "registrar"}).SignedString([]byte("k"))
	require.NoError(t, err)
	require.NoError(t, s.Login(ctx, tok))
	assert.Equal(t, "registrar", s.DisplayName())

	require.NoError(t, s.Login(ctx, "opaque"))
	assert.Empty(t, s.DisplayName())
}
