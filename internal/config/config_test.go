package config

import (
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"golang.org/x/text/language"
)

var allVars = []string{
	VarEnv, VarBackend, VarDBPath, VarRedisAddr, VarRedisPrefix,
	VarLoginDelay, VarLocale, VarStrictWeek,
}

// clearEnv unsets every taskflow variable for the duration of the test
func clearEnv(t *testing.T) {
	t.Helper()
	for _, key := range allVars {
		t.Setenv(key, "")
		os.Unsetenv(key)
	}
}

func TestLoad_Defaults(t *testing.T) {
	clearEnv(t)
	dir := t.TempDir()

	cfg, err := Load(dir)
	require.NoError(t, err)

	assert.Equal(t, dir, cfg.Dir)
	assert.Equal(t, EnvProd, cfg.Env)
	assert.Equal(t, "sqlite", cfg.Backend)
	assert.Equal(t, filepath.Join(dir, DBFile), cfg.DBPath)
	assert.Equal(t, DefaultRedisAddr, cfg.RedisAddr)
	assert.Equal(t, "", cfg.RedisPrefix)
	assert.Equal(t, time.Duration(0), cfg.LoginDelay)
	assert.Equal(t, language.Und, cfg.Locale)
	assert.False(t, cfg.StrictWeek)
	assert.Equal(t, filepath.Join(dir, LogFile), cfg.LogPath())
}

func TestLoad_FromEnvironment(t *testing.T) {
	clearEnv(t)
	t.Setenv(VarEnv, "LOCAL")
	t.Setenv(VarBackend, "Redis")
	t.Setenv(VarRedisAddr, "cache:6380")
	t.Setenv(VarRedisPrefix, "tf:")
	t.Setenv(VarLoginDelay, "1s")
	t.Setenv(VarLocale, "de-DE")
	t.Setenv(VarStrictWeek, "true")

	cfg, err := Load(t.TempDir())
	require.NoError(t, err)

	assert.Equal(t, EnvLocal, cfg.Env)
	assert.Equal(t, "redis", cfg.Backend)
	assert.Equal(t, "cache:6380", cfg.RedisAddr)
	assert.Equal(t, "tf:", cfg.RedisPrefix)
	assert.Equal(t, time.Second, cfg.LoginDelay)
	assert.Equal(t, language.MustParse("de-DE"), cfg.Locale)
	assert.True(t, cfg.StrictWeek)
}

func TestLoad_DotenvInConfigDir(t *testing.T) {
	clearEnv(t)
	dir := t.TempDir()
	content := "TASKFLOW_BACKEND=memory\nTASKFLOW_LOGIN_DELAY=250ms\n"
	require.NoError(t, os.WriteFile(filepath.Join(dir, EnvFile), []byte(content), 0600))

	cfg, err := Load(dir)
	require.NoError(t, err)
	assert.Equal(t, "memory", cfg.Backend)
	assert.Equal(t, 250*time.Millisecond, cfg.LoginDelay)
}

func TestLoad_EnvironmentBeatsDotenv(t *testing.T) {
	clearEnv(t)
	dir := t.TempDir()
	require.NoError(t, os.WriteFile(filepath.Join(dir, EnvFile), []byte("TASKFLOW_BACKEND=memory\n"), 0600))
	t.Setenv(VarBackend, "sqlite")

	cfg, err := Load(dir)
	require.NoError(t, err)
	assert.Equal(t, "sqlite", cfg.Backend)
}

func TestLoad_InvalidValues(t *testing.T) {
	tests := map[string]string{
		VarLoginDelay: "soon",
		VarLocale:     "not a locale!",
		VarStrictWeek: "maybe",
	}

	for key, value := range tests {
		t.Run(key, func(t *testing.T) {
			clearEnv(t)
			t.Setenv(key, value)
			_, err := Load(t.TempDir())
			assert.Error(t, err)
		})
	}
}

func TestLoad_NegativeDelay(t *testing.T) {
	clearEnv(t)
	t.Setenv(VarLoginDelay, "-1s")
	_, err := Load(t.TempDir())
	assert.Error(t, err)
}

func TestDefaultConfigDir(t *testing.T) {
	t.Setenv("XDG_CONFIG_HOME", "/tmp/xdg")
	assert.Equal(t, filepath.Join("/tmp/xdg", AppName), DefaultConfigDir())

	t.Setenv("XDG_CONFIG_HOME", "")
	home, err := os.UserHomeDir()
	if err != nil {
		t.Skip("no home directory")
	}
	assert.Equal(t, filepath.Join(home, ".config", AppName), DefaultConfigDir())
}

func TestEnsureDir(t *testing.T) {
	dir := filepath.Join(t.TempDir(), "nested", AppName)
	cfg := &Config{Dir: dir}
	require.NoError(t, cfg.EnsureDir())

	info, err := os.Stat(dir)
	require.NoError(t, err)
	assert.True(t, info.IsDir())
}
