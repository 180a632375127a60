package config

import (
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/adrg/xdg"
	"github.com/spf13/viper"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

// isolate resets viper and points XDG lookups at a temp dir so the user's
// real config is never read.
func isolate(t *testing.T) {
	t.Helper()
	viper.Reset()
	t.Cleanup(viper.Reset)
	t.Cleanup(xdg.Reload)
	t.Setenv("XDG_CONFIG_HOME", t.TempDir())
	xdg.Reload()
	t.Chdir(t.TempDir())
}

func TestInit(t *testing.T) {
	isolate(t)
	Init()

	assert.Equal(t, 1, viper.GetInt("version"))
	assert.Equal(t, 5, viper.GetInt("history_size"))
	assert.Equal(t, BackendFile, viper.GetString("state.backend"))
	assert.Equal(t, 60*time.Second, viper.GetDuration("drive.upload_cooldown"))
}

func TestLoad_NoConfigFile(t *testing.T) {
	isolate(t)
	Init()

	cfg, err := Load("")
	require.NoError(t, err)
	require.NotNil(t, cfg)

	assert.Equal(t, 1, cfg.Version)
	assert.Equal(t, "1", cfg.Tree.PrimaryID)
	assert.Equal(t, "2", cfg.Tree.OtherID)
	assert.Equal(t, "Bookmark Bars", cfg.Tree.ContainerTitle)
	assert.Equal(t, 10, cfg.Drive.MaxBackups)
	assert.Equal(t, time.Minute, cfg.Drive.UploadCooldown)
	assert.Equal(t, []string{"https://www.googleapis.com/auth/drive.appdata"}, cfg.OAuth.Scopes)
	assert.Empty(t, Validate(cfg))
}

func TestLoad_WithConfigFile(t *testing.T) {
	isolate(t)

	configPath := filepath.Join(t.TempDir(), "config.yaml")
	content := []byte(`history_size: 3
state:
  backend: redis
  redis:
    addr: redis.internal:6380
    db: 2
drive:
  upload_cooldown: 5m
`)
	require.NoError(t, os.WriteFile(configPath, content, 0o600))

	Init()
	cfg, err := Load(configPath)
	require.NoError(t, err)

	assert.Equal(t, 3, cfg.HistorySize)
	assert.Equal(t, BackendRedis, cfg.State.Backend)
	assert.Equal(t, "redis.internal:6380", cfg.State.Redis.Addr)
	assert.Equal(t, 2, cfg.State.Redis.DB)
	assert.Equal(t, "bbs:", cfg.State.Redis.Prefix)
	assert.Equal(t, 5*time.Minute, cfg.Drive.UploadCooldown)
}

func TestLoad_EnvOverrides(t *testing.T) {
	isolate(t)
	t.Setenv("BBS_DRIVE_MAX_BACKUPS", "3")
	t.Setenv("BBS_STATE_REDIS_ADDR", "cache:6379")
	t.Setenv("BBS_DRIVE_TOKEN", "ya29.secret")

	Init()
	cfg, err := Load("")
	require.NoError(t, err)

	assert.Equal(t, 3, cfg.Drive.MaxBackups)
	assert.Equal(t, "cache:6379", cfg.State.Redis.Addr)
	assert.Equal(t, "ya29.secret", cfg.Drive.Token)
}

func TestLoad_ExplicitPathNotFound(t *testing.T) {
	isolate(t)
	Init()

	_, err := Load("/non/existent/path/config.yaml")
	assert.Error(t, err)
}

func TestLoad_MalformedFile(t *testing.T) {
	isolate(t)
	configPath := filepath.Join(t.TempDir(), "config.yaml")
	require.NoError(t, os.WriteFile(configPath, []byte("history_size: [\n"), 0o600))

	Init()
	_, err := Load(configPath)
	assert.Error(t, err)
}

func TestLoadDotEnv(t *testing.T) {
	isolate(t)
	dir := t.TempDir()
	envFile := filepath.Join(dir, ".env")
	require.NoError(t, os.WriteFile(envFile, []byte("BBS_HISTORY_SIZE=7\nBBS_STATE_BACKEND=memory\n"), 0o600))

	// Already-set variables win over the file.
	t.Setenv("BBS_STATE_BACKEND", "file")
	t.Setenv("BBS_HISTORY_SIZE", "")
	require.NoError(t, os.Unsetenv("BBS_HISTORY_SIZE"))

	require.NoError(t, LoadDotEnv(envFile, filepath.Join(dir, "missing.env")))
	assert.Equal(t, "7", os.Getenv("BBS_HISTORY_SIZE"))
	assert.Equal(t, "file", os.Getenv("BBS_STATE_BACKEND"))

	require.NoError(t, LoadDotEnv(filepath.Join(dir, "nope.env")))
}

func TestKeys(t *testing.T) {
	keys := Keys()
	assert.Contains(t, keys, "state.redis.addr")
	assert.Contains(t, keys, "oauth.client_id")
	assert.IsNonDecreasing(t, keys)
}
