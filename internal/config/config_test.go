package config

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestLoadDefaults(t *testing.T) {
	t.Setenv("DB_DRIVER", "sqlite")
	t.Setenv("STORAGE_BACKEND", "local")

	cfg, err := Load()
	require.NoError(t, err)

	assert.Equal(t, "sqlite", cfg.Database.Driver)
	assert.Equal(t, 10, cfg.Photos.MaxPerItem)
	assert.Equal(t, int64(15*1024*1024), cfg.Photos.MaxSizeBytes)
	assert.Equal(t, time.Hour, cfg.FKAPI.CacheTTL)
	assert.Contains(t, cfg.Photos.AllowedTypes, "image/webp")
}

func TestValidateRejectsProductionDefaults(t *testing.T) {
	cfg := &Config{
		Environment: "production",
		JWT:         JWTConfig{SecretKey: "your-secret-key-change-in-production"},
		Database:    DatabaseConfig{Driver: "postgres"},
		Storage:     StorageConfig{Backend: "local"},
		Photos:      PhotoConfig{MaxPerItem: 10},
	}
	assert.Error(t, cfg.Validate())

	cfg.JWT.SecretKey = "s3cret"
	assert.Error(t, cfg.Validate(), "missing database password")

	cfg.Database.Password = "pw"
	assert.NoError(t, cfg.Validate())

	cfg.Database.Driver = "mysql"
	assert.Error(t, cfg.Validate())
}

func TestDSNPrefersURL(t *testing.T) {
	d := DatabaseConfig{URL: "postgres://bob:pw@db.example:5433/footy?sslmode=require"}
	dsn, err := d.DSN()
	require.NoError(t, err)
	assert.Contains(t, dsn, "host='db.example'")
	assert.Contains(t, dsn, "port='5433'")
	assert.Contains(t, dsn, "dbname='footy'")

	d = DatabaseConfig{Host: "localhost", Port: "5432", User: "u", Password: "p", Database: "d", SSLMode: "disable"}
	dsn, err = d.DSN()
	require.NoError(t, err)
	assert.Equal(t, "host=localhost port=5432 user=u password=p dbname=d sslmode=disable", dsn)
}

func TestGetEnvAsSlice(t *testing.T) {
	t.Setenv("X_LIST", " a, b ,,c")
	assert.Equal(t, []string{"a", "b", "c"}, getEnvAsSlice("X_LIST", nil))
	assert.Equal(t, []string{"d"}, getEnvAsSlice("X_MISSING", []string{"d"}))
}
