package config

import (
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func withTempXDGConfigHome(t *testing.T) string {
	t.Helper()
	tmpDir := t.TempDir()
	oldXDG := os.Getenv("XDG_CONFIG_HOME")
	_ = os.Setenv("XDG_CONFIG_HOME", tmpDir)
	t.Cleanup(func() {
		if oldXDG != "" {
			_ = os.Setenv("XDG_CONFIG_HOME", oldXDG)
		} else {
			_ = os.Unsetenv("XDG_CONFIG_HOME")
		}
	})
	return tmpDir
}

func TestInitConfigWritesSampleToDefaultPath(t *testing.T) {
	tmpDir := withTempXDGConfigHome(t)

	path, err := InitConfig(false)
	require.NoError(t, err)
	assert.Equal(t, filepath.Join(tmpDir, "danejoe-server", "config.yaml"), path)

	content, err := os.ReadFile(path)
	require.NoError(t, err)
	for _, section := range []string{"logging:", "reactor:", "mailbox:", "worker_pool:", "admin_api:", "repository:", "block_store:"} {
		assert.Contains(t, string(content), section)
	}

	loaded, err := LoadYAMLFile(path)
	require.NoError(t, err)
	assert.Equal(t, "INFO", loaded.Logging.Level)
}

func TestInitConfigRefusesToOverwriteWithoutForce(t *testing.T) {
	withTempXDGConfigHome(t)

	_, err := InitConfig(false)
	require.NoError(t, err)

	_, err = InitConfig(false)
	assert.Error(t, err)
	assert.True(t, strings.Contains(err.Error(), "already exists"))

	_, err = InitConfig(true)
	assert.NoError(t, err)
}

func TestDefaultConfigExists(t *testing.T) {
	withTempXDGConfigHome(t)

	assert.False(t, DefaultConfigExists())
	_, err := InitConfig(false)
	require.NoError(t, err)
	assert.True(t, DefaultConfigExists())
}
