package initializers

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"gorm.io/gorm/logger"
)

func TestLoadEnv(t *testing.T) {
	dir := t.TempDir()
	wd, err := os.Getwd()
	require.NoError(t, err)
	require.NoError(t, os.Chdir(dir))
	t.Cleanup(func() { os.Chdir(wd) })

	assert.NoError(t, LoadEnv(), "missing .env is not an error")

	require.NoError(t, os.WriteFile(filepath.Join(dir, ".env"), []byte("REGUGUARD_TEST_VALUE=loaded\n"), 0o600))
	t.Setenv("REGUGUARD_TEST_VALUE", "")
	os.Unsetenv("REGUGUARD_TEST_VALUE")
	require.NoError(t, LoadEnv())
	assert.Equal(t, "loaded", os.Getenv("REGUGUARD_TEST_VALUE"))
}

func TestConnectDBWithoutURL(t *testing.T) {
	t.Setenv("DIRECT_URL", "")
	DB = nil

	assert.NoError(t, ConnectDB())
	assert.Nil(t, DB)
	assert.NoError(t, Migrate())
}

func TestGormLogLevel(t *testing.T) {
	t.Setenv("GORM_LOG_LEVEL", "info")
	assert.Equal(t, logger.Info, gormLogLevel())
	t.Setenv("GORM_LOG_LEVEL", "")
	assert.Equal(t, logger.Warn, gormLogLevel())
}
