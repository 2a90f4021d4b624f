package session_test

import (
	"context"
	"path/filepath"
	"testing"

	"agri_advisor/internal/session"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

// MustOpenBoltStore opens a BoltStore in a temporary directory.
func MustOpenBoltStore(t *testing.T) *session.BoltStore {
	t.Helper()
	s := session.NewBoltStore(filepath.Join(t.TempDir(), "nested", "session.db"))
	require.NoError(t, s.Open())
	t.Cleanup(func() { s.Close() })
	return s
}

func TestBoltStore_SetGetDelete(t *testing.T) {
	s := MustOpenBoltStore(t)
	ctx := context.Background()

	_, ok, err := s.Get(ctx, session.KeyUser)
	require.NoError(t, err)
	assert.False(t, ok)

	require.NoError(t, s.Set(ctx, session.KeyUser, `{"id":"1"}`))
	v, ok, err := s.Get(ctx, session.KeyUser)
	require.NoError(t, err)
	assert.True(t, ok)
	assert.Equal(t, `{"id":"1"}`, v)

	require.NoError(t, s.Delete(ctx, session.KeyUser))
	_, ok, err = s.Get(ctx, session.KeyUser)
	require.NoError(t, err)
	assert.False(t, ok)
}

func TestBoltStore_SurvivesReopen(t *testing.T) {
	path := filepath.Join(t.TempDir(), "session.db")
	ctx := context.Background()

	s := session.NewBoltStore(path)
	require.NoError(t, s.Open())
	require.NoError(t, s.Set(ctx, session.KeyPreferredLanguage, "en"))
	require.NoError(t, s.Close())

	s = session.NewBoltStore(path)
	require.NoError(t, s.Open())
	defer s.Close()

	v, ok, err := s.Get(ctx, session.KeyPreferredLanguage)
	require.NoError(t, err)
	assert.True(t, ok)
	assert.Equal(t, "en", v)
}

func TestBoltStore_NotOpen(t *testing.T) {
	s := session.NewBoltStore(filepath.Join(t.TempDir(), "session.db"))
	_, _, err := s.Get(context.Background(), session.KeyUser)
	assert.Error(t, err)
}
