package config

import (
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func writeConfig(t *testing.T, content string) string {
	t.Helper()
	path := filepath.Join(t.TempDir(), "config.yaml")
	require.NoError(t, os.WriteFile(path, []byte(content), 0o600))
	return path
}

func TestLoadFile_Defaults(t *testing.T) {
	path := writeConfig(t, "server:\n  port: 9090\n")

	cfg, err := LoadFile(path)
	require.NoError(t, err)

	assert.Equal(t, 9090, cfg.Server.Port)
	assert.Equal(t, "mysql", cfg.Database.Driver)
	assert.Equal(t, 100, cfg.Import.BatchSize)
	assert.Equal(t, 5*time.Minute, cfg.Cache.CardTTL)
	assert.Equal(t, time.Hour, cfg.Cache.StatsTTL)
	assert.Equal(t, 10*time.Minute, cfg.Cache.SetTTL)
	assert.True(t, cfg.Redis.Enabled)
	assert.True(t, cfg.CORS.Enabled)
	assert.Equal(t, []string{"*"}, cfg.CORS.AllowOrigins)
	assert.Contains(t, cfg.CORS.AllowMethods, "DELETE")
	assert.Equal(t, 600, cfg.CORS.MaxAge)
}

func TestLoadFile_CORS(t *testing.T) {
	path := writeConfig(t, "cors:\n  allow_origins:\n    - http://localhost:3000\n  allow_credentials: true\n")

	cfg, err := LoadFile(path)
	require.NoError(t, err)
	assert.Equal(t, []string{"http://localhost:3000"}, cfg.CORS.AllowOrigins)
	assert.True(t, cfg.CORS.AllowCredentials)
}

func TestLoadFile_EnvOverride(t *testing.T) {
	path := writeConfig(t, "database:\n  password: fromfile\n")
	t.Setenv("MTGKIOSK_DATABASE_PASSWORD", "fromenv")

	cfg, err := LoadFile(path)
	require.NoError(t, err)
	assert.Equal(t, "fromenv", cfg.Database.Password)
}

func TestLoadFile_Validation(t *testing.T) {
	tests := []struct {
		name    string
		content string
	}{
		{"bad port", "server:\n  port: 70000\n"},
		{"bad driver", "database:\n  driver: sqlite\n"},
		{"bad batch", "import:\n  batch_size: 0\n"},
		{"release default secret", "server:\n  mode: release\n"},
		{"auth without hash", "auth:\n  enabled: true\n"},
		{"negative cors max age", "cors:\n  max_age: -1\n"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, err := LoadFile(writeConfig(t, tt.content))
			assert.Error(t, err)
		})
	}
}

func TestDSN(t *testing.T) {
	mysqlCfg := DatabaseConfig{
		Driver: "mysql", Host: "db", Port: 3306, User: "u", Password: "p",
		DBName: "mtg", Charset: "utf8mb4", ParseTime: true, Loc: "Asia/Shanghai",
	}
	assert.Equal(t, "u:p@tcp(db:3306)/mtg?charset=utf8mb4&parseTime=true&loc=Asia%2FShanghai", mysqlCfg.DSN())

	pgCfg := DatabaseConfig{
		Driver: "postgres", Host: "db", Port: 5432, User: "u", Password: "p",
		DBName: "mtg", SSLMode: "disable",
	}
	assert.Equal(t, "host=db port=5432 user=u password=p dbname=mtg sslmode=disable", pgCfg.DSN())
}
