package logging

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestInitLoggerWritesToConfiguredDir(t *testing.T) {
	dir := t.TempDir()

	InitLogger(dir)
	defer Sync()

	require.NotNil(t, Log)
	Info("logger initialized")

	_, err := os.Stat(filepath.Join(dir, "gatekeeper.log"))
	assert.NoError(t, err)
	_, err = os.Stat(filepath.Join(dir, "gatekeeper_error.log"))
	assert.NoError(t, err)
}
