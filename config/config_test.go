package config

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"golang.org/x/crypto/bcrypt"
)

var keys = []string{
	"ADMIN_USER", "ADMIN_PASS", "DATABASE_NAME", "PEPPER", "BCRYPT_COST",
	"LOG_LEVEL", "LOG_FORMAT", "LOG_FILE", "EXPORT_DIR",
}

// clearEnv unsets every key for the test and restores them afterwards,
// including values godotenv writes into the process environment.
func clearEnv(t *testing.T) {
	t.Helper()
	for _, k := range keys {
		t.Setenv(k, "")
		os.Unsetenv(k)
	}
}

func TestLoadDefaults(t *testing.T) {
	clearEnv(t)

	cfg, err := Load(filepath.Join(t.TempDir(), "missing.env"))
	require.NoError(t, err)
	assert.Equal(t, "library.db", cfg.DatabaseName)
	assert.Equal(t, "default-pepper", cfg.Pepper)
	assert.Equal(t, bcrypt.DefaultCost, cfg.BcryptCost)
	assert.Equal(t, "info", cfg.LogLevel)
	assert.Equal(t, "text", cfg.LogFormat)
	assert.Equal(t, "library.log", cfg.LogFile)
	assert.Equal(t, ".", cfg.ExportDir)
	assert.False(t, cfg.AdminEnabled())
}

func TestLoadEnvFile(t *testing.T) {
	clearEnv(t)
	path := filepath.Join(t.TempDir(), "manager.env")
	content := "ADMIN_USER=admin\nADMIN_PASS=secret\nDATABASE_NAME=/tmp/lib.db\nPEPPER=spicy\nBCRYPT_COST=4\n"
	require.NoError(t, os.WriteFile(path, []byte(content), 0o600))

	cfg, err := Load(path)
	require.NoError(t, err)
	assert.Equal(t, "admin", cfg.AdminUser)
	assert.Equal(t, "secret", cfg.AdminPass)
	assert.Equal(t, "/tmp/lib.db", cfg.DatabaseName)
	assert.Equal(t, "spicy", cfg.Pepper)
	assert.Equal(t, 4, cfg.BcryptCost)
	assert.True(t, cfg.AdminEnabled())
}

func TestEnvironmentWinsOverFile(t *testing.T) {
	clearEnv(t)
	path := filepath.Join(t.TempDir(), "manager.env")
	require.NoError(t, os.WriteFile(path, []byte("PEPPER=from-file\n"), 0o600))
	t.Setenv("PEPPER", "from-env")

	cfg, err := Load(path)
	require.NoError(t, err)
	assert.Equal(t, "from-env", cfg.Pepper)
}

func TestAdminNeedsBothValues(t *testing.T) {
	clearEnv(t)
	t.Setenv("ADMIN_USER", "admin")

	cfg, err := Load(filepath.Join(t.TempDir(), "missing.env"))
	require.NoError(t, err)
	assert.False(t, cfg.AdminEnabled())
}

func TestLoadRejectsBadCost(t *testing.T) {
	clearEnv(t)
	t.Setenv("BCRYPT_COST", "99")
	_, err := Load(filepath.Join(t.TempDir(), "missing.env"))
	assert.Error(t, err)

	t.Setenv("BCRYPT_COST", "many")
	_, err = Load(filepath.Join(t.TempDir(), "missing.env"))
	assert.Error(t, err)
}
