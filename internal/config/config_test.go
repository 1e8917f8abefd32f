package config

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/require"
)

// clearEnv unsets every override for the duration of the test
func clearEnv(t *testing.T) {
	t.Helper()
	for _, key := range []string{EnvDBPath, EnvStorage, EnvLogLevel, EnvLogFormat, EnvSeedDemo} {
		old, had := os.LookupEnv(key)
		require.NoError(t, os.Unsetenv(key))
		t.Cleanup(func() {
			if had {
				os.Setenv(key, old)
				return
			}
			os.Unsetenv(key)
		})
	}
}

func writeFile(t *testing.T, name, content string) string {
	t.Helper()
	path := filepath.Join(t.TempDir(), name)
	require.NoError(t, os.WriteFile(path, []byte(content), 0o600))
	return path
}

func TestLoad_Defaults(t *testing.T) {
	clearEnv(t)

	cfg, err := Load("")
	require.NoError(t, err)
	require.Equal(t, Default(), cfg)
}

func TestLoad_FileThenEnv(t *testing.T) {
	clearEnv(t)

	path := writeFile(t, "auction.toml", `
db_path = "/tmp/lots.db"
storage = "sqlite"
log_level = "debug"
log_format = "text"
seed_demo = true
`)

	cfg, err := Load(path)
	require.NoError(t, err)
	require.Equal(t, Config{DBPath: "/tmp/lots.db", Storage: StorageSQLite, LogLevel: "debug", LogFormat: "text", SeedDemo: true}, cfg)

	t.Setenv(EnvStorage, "MEMORY")
	t.Setenv(EnvSeedDemo, "false")
	cfg, err = Load(path)
	require.NoError(t, err)
	require.Equal(t, StorageMemory, cfg.Storage)
	require.False(t, cfg.SeedDemo)
	require.Equal(t, "debug", cfg.LogLevel)
}

func TestLoad_DotEnv(t *testing.T) {
	clearEnv(t)

	envFile := writeFile(t, ".env", "AUCTION_STORAGE=memory\nLOG_LEVEL=warn\n")

	cfg, err := Load("", envFile, filepath.Join(t.TempDir(), "missing.env"))
	require.NoError(t, err)
	require.Equal(t, StorageMemory, cfg.Storage)
	require.Equal(t, "warn", cfg.LogLevel)
}

func TestLoad_Errors(t *testing.T) {
	tests := []struct {
		name  string
		file  string
		env   map[string]string
		noCfg bool
	}{
		{name: "missing_file", noCfg: true},
		{name: "unknown_key", file: `colour = "red"`},
		{name: "bad_toml", file: `storage = `},
		{name: "bad_seed_flag", env: map[string]string{EnvSeedDemo: "maybe"}},
		{name: "unknown_storage", env: map[string]string{EnvStorage: "postgres"}},
		{name: "bad_level", env: map[string]string{EnvLogLevel: "loud"}},
		{name: "bad_format", env: map[string]string{EnvLogFormat: "xml"}},
	}

	for _, tc := range tests {
		t.Run(tc.name, func(t *testing.T) {
			clearEnv(t)
			for k, v := range tc.env {
				t.Setenv(k, v)
			}

			path := ""
			switch {
			case tc.noCfg:
				path = filepath.Join(t.TempDir(), "nope.toml")
			case tc.file != "":
				path = writeFile(t, "auction.toml", tc.file)
			}

			_, err := Load(path)
			require.Error(t, err)
		})
	}
}

func TestValidate(t *testing.T) {
	cfg := Default()
	require.NoError(t, cfg.Validate())

	cfg.DBPath = " "
	require.Error(t, cfg.Validate())

	cfg.Storage = StorageMemory
	require.NoError(t, cfg.Validate())
}
