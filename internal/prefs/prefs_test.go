package prefs

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/require"
)

func TestLoadMissingIsZero(t *testing.T) {
	t.Setenv("XDG_CONFIG_HOME", t.TempDir())
	t.Setenv("HOME", t.TempDir())
	p, err := Load()
	require.NoError(t, err)
	require.Equal(t, Prefs{}, p)
}

func TestSaveUpdateLoad(t *testing.T) {
	dir := t.TempDir()
	t.Setenv("XDG_CONFIG_HOME", dir)
	t.Setenv("HOME", dir)

	require.NoError(t, Save(Prefs{SnoozeHours: 2.5}))
	require.NoError(t, Update(func(p *Prefs) { p.LastCategory = "deal_stacker" }))

	p, err := Load()
	require.NoError(t, err)
	require.Equal(t, Prefs{SnoozeHours: 2.5, LastCategory: "deal_stacker"}, p)

	path, err := prefsPath()
	require.NoError(t, err)
	_, err = os.Stat(path + ".tmp")
	require.True(t, os.IsNotExist(err))
	require.Equal(t, "triage", filepath.Base(filepath.Dir(path)))
}
