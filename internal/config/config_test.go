package config

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func writeConfig(t *testing.T, body string) string {
	t.Helper()
	path := filepath.Join(t.TempDir(), "config.yaml")
	require.NoError(t, os.WriteFile(path, []byte(body), 0o644))
	return path
}

func TestLoad(t *testing.T) {
	path := writeConfig(t, `
server:
  port: 8080
  maxUploadMB: 50
database:
  driver: mysql
  host: db.internal
  port: 3306
  user: brandlens
  password: s3cret
  name: brandlens
openai:
  apiKey: sk-test
  model: gpt-4o
rateLimit:
  capacity: 100
  refillRate: 5
`)

	cfg, err := Load(path)
	require.NoError(t, err)
	assert.Equal(t, 8080, cfg.Server.Port)
	assert.Equal(t, int64(50<<20), cfg.MaxUploadBytes())
	assert.Equal(t, "mysql", cfg.Database.Driver)
	assert.Equal(t, "gpt-4o", cfg.OpenAI.Model)
	assert.Equal(t, 100, cfg.RateLimit.Capacity)

	dsn := cfg.MySQLDSN()
	assert.Contains(t, dsn, "brandlens:s3cret@tcp(db.internal:3306)/brandlens")
	assert.Contains(t, dsn, "parseTime=true")

	pg := cfg.PostgresDSN()
	assert.Contains(t, pg, "host=db.internal")
	assert.Contains(t, pg, "dbname=brandlens")
}

func TestLoad_Defaults(t *testing.T) {
	path := writeConfig(t, "server:\n  port: 9090\n")

	cfg, err := Load(path)
	require.NoError(t, err)
	// upload cap defaults when unset
	assert.Equal(t, int64(200<<20), cfg.MaxUploadBytes())
	assert.Equal(t, "brandlens.db", cfg.SQLitePath())

	cfg.Database.Path = "/tmp/custom.db"
	assert.Equal(t, "/tmp/custom.db", cfg.SQLitePath())
}

func TestLoad_MissingFile(t *testing.T) {
	_, err := Load("/does/not/exist.yaml")
	assert.Error(t, err)
}
