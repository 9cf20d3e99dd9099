package prefs

import (
	"context"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func openTemp(t *testing.T) (*Store, string) {
	t.Helper()
	path := filepath.Join(t.TempDir(), "prefs_test.db")
	s, err := Open(path)
	require.NoError(t, err)
	t.Cleanup(func() { _ = s.Close() })
	return s, path
}

func TestDefaults(t *testing.T) {
	s, _ := openTemp(t)
	p, err := s.Get(context.Background())
	require.NoError(t, err)
	assert.Equal(t, Preferences{Theme: "light", ItemsPerPage: 20}, p)
}

func TestSetAndReopen(t *testing.T) {
	ctx := context.Background()
	s, path := openTemp(t)

	require.NoError(t, s.Set(ctx, KeyTheme, "dark"))
	require.NoError(t, s.Update(ctx, map[string]string{KeyItemsPerPage: "50", KeySidebarCollapsed: "1"}))
	require.NoError(t, s.Set(ctx, KeyItemsPerPage, "25"))
	require.NoError(t, s.Close())

	again, err := Open(path)
	require.NoError(t, err)
	defer again.Close()
	p, err := again.Get(ctx)
	require.NoError(t, err)
	assert.Equal(t, Preferences{Theme: "dark", ItemsPerPage: 25, SidebarCollapsed: true}, p)
}

func TestValidation(t *testing.T) {
	ctx := context.Background()
	s, _ := openTemp(t)

	assert.ErrorIs(t, s.Set(ctx, "font", "serif"), ErrUnknownKey)
	for _, tc := range []struct{ key, value string }{
		{KeyTheme, "solarized"},
		{KeyItemsPerPage, "0"},
		{KeyItemsPerPage, "many"},
		{KeyItemsPerPage, "501"},
		{KeySidebarCollapsed, "maybe"},
	} {
		assert.ErrorIs(t, s.Set(ctx, tc.key, tc.value), ErrInvalidValue, tc.key+"="+tc.value)
	}

	err := s.Update(ctx, map[string]string{KeyTheme: "dark", KeyItemsPerPage: "-1"})
	require.ErrorIs(t, err, ErrInvalidValue)
	p, err := s.Get(ctx)
	require.NoError(t, err)
	assert.Equal(t, "light", p.Theme)
}
