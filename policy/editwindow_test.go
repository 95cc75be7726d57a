package policy

import (
	"os"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"

	"github.com/qc-suite/gatekeeper/logging"
	"github.com/qc-suite/gatekeeper/model"
)

func TestMain(m *testing.M) {
	logging.Log = zap.NewNop()
	os.Exit(m.Run())
}

func permissiveConfig(days int) Config {
	return Config{
		CrossUserEditEnabled: true,
		EditWindowDays:       days,
		Modules: map[string]model.ModuleFlags{
			"changfu": {View: true, Edit: true, EditOthers: true},
			"dongtai": {View: true, Edit: true},
		},
	}
}

func TestCanEditForeignDayBoundary(t *testing.T) {
	w := NewEditWindow(permissiveConfig(7))
	now := time.Date(2026, 3, 10, 12, 0, 0, 0, time.UTC)

	// A record exactly seven days old is still inside the window.
	assert.True(t, w.CanEditForeign("changfu", now.AddDate(0, 0, -7), now))
	assert.True(t, w.CanEditForeign("changfu", now, now))
	assert.False(t, w.CanEditForeign("changfu", now.AddDate(0, 0, -8), now))
}

func TestCanEditForeignGlobalSwitch(t *testing.T) {
	config := permissiveConfig(7)
	config.CrossUserEditEnabled = false
	w := NewEditWindow(config)
	now := time.Now()

	assert.False(t, w.CanEditForeign("changfu", now, now))
}

func TestCanEditForeignModuleFlags(t *testing.T) {
	w := NewEditWindow(permissiveConfig(7))
	now := time.Now()

	// dongtai has edit but not edit_others; unknown modules have no flags.
	assert.False(t, w.CanEditForeign("dongtai", now, now))
	assert.False(t, w.CanEditForeign("zhoubao", now, now))
}

func TestNewEditWindowDefaultsWindowDays(t *testing.T) {
	w := NewEditWindow(Config{CrossUserEditEnabled: true})
	assert.Equal(t, DefaultEditWindowDays, w.Snapshot().EditWindowDays)
}

func TestReloadSwapsConfig(t *testing.T) {
	w := NewEditWindow(permissiveConfig(7))
	now := time.Date(2026, 3, 10, 12, 0, 0, 0, time.UTC)
	created := now.AddDate(0, 0, -10)

	assert.False(t, w.CanEditForeign("changfu", created, now))

	err := w.Reload(func() (Config, error) { return permissiveConfig(30), nil })
	require.NoError(t, err)

	assert.True(t, w.CanEditForeign("changfu", created, now))
}

func TestReloadKeepsConfigOnLoaderError(t *testing.T) {
	w := NewEditWindow(permissiveConfig(7))

	err := w.Reload(func() (Config, error) { return Config{}, assert.AnError })
	require.Error(t, err)

	assert.Equal(t, 7, w.Snapshot().EditWindowDays)
	assert.True(t, w.Snapshot().CrossUserEditEnabled)
}
