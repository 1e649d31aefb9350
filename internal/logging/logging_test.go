package logging

import (
	"encoding/json"
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"

	"github.com/smileynet/otakublog/internal/config"
)

func TestNew_WritesJSONToFile(t *testing.T) {
	// Given: a log file in a directory that does not exist yet
	path := filepath.Join(t.TempDir(), "logs", "otakublog.log")

	// When: logging above and below the configured level
	logger, err := New(config.Log{Level: "warn", File: path})
	require.NoError(t, err)
	logger.Info("quiet")
	logger.Warn("slot over quota", zap.String("slot", "contacts"))
	require.NoError(t, logger.Sync())

	// Then: only the warning is written, as JSON
	data, err := os.ReadFile(path)
	require.NoError(t, err)
	lines := strings.Split(strings.TrimSpace(string(data)), "\n")
	require.Len(t, lines, 1)
	var entry map[string]any
	require.NoError(t, json.Unmarshal([]byte(lines[0]), &entry))
	assert.Equal(t, "warn", entry["level"])
	assert.Equal(t, "slot over quota", entry["msg"])
	assert.Equal(t, "contacts", entry["slot"])
	assert.Contains(t, entry, "time")
}

func TestNew_Off(t *testing.T) {
	path := filepath.Join(t.TempDir(), "never.log")

	logger, err := New(config.Log{Level: LevelOff, File: path})

	require.NoError(t, err)
	logger.Error("dropped")
	_, statErr := os.Stat(path)
	assert.True(t, os.IsNotExist(statErr))
}

func TestNew_BadLevel(t *testing.T) {
	_, err := New(config.Log{Level: "chatty"})
	assert.Error(t, err)
}

func TestInstall_ReplacesGlobal(t *testing.T) {
	path := filepath.Join(t.TempDir(), "global.log")
	before := zap.L()

	logger, restore, err := Install(config.Log{Level: "debug", File: path})
	require.NoError(t, err)
	assert.Same(t, logger, zap.L())

	restore()
	assert.Same(t, before, zap.L())
}
