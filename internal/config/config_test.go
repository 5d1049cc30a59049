package config

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestLoadDefaultsAndDerivedJWKSURL(t *testing.T) {
	t.Setenv("SUPABASE_URL", "https://project.supabase.co/")
	t.Setenv("JWT_ALLOWED_ALGS", "RS256, HS256 ,")
	t.Setenv("LLM_TIMEOUT", "15s")

	cfg := Load()

	assert.Equal(t, "https://project.supabase.co/auth/v1/keys", cfg.Auth.JWKSURL)
	assert.Equal(t, []string{"RS256", "HS256"}, cfg.Auth.AllowedAlgs)
	assert.Equal(t, 15*time.Second, cfg.LLM.Timeout)
	assert.Equal(t, 10*time.Minute, cfg.Auth.JWKSCacheTTL)
	assert.Equal(t, "redis", cfg.Queue.Backend)
	assert.InDelta(t, 0.3, cfg.LLM.Temperature, 0.0001)
}

func TestValidateListsEverythingMissing(t *testing.T) {
	cfg := &Config{
		Database: DatabaseConfig{Driver: "oracle"},
		Queue:    QueueConfig{Backend: "memory"},
		LLM:      LLMConfig{Provider: "openai"},
	}

	err := cfg.Validate()
	require.Error(t, err)
	assert.Contains(t, err.Error(), "DB_DRIVER")
	assert.Contains(t, err.Error(), "LLM_API_KEY")
	assert.Contains(t, err.Error(), "LLM_TIMEOUT")
	assert.Contains(t, err.Error(), "SUPABASE_JWT_SECRET")
}

func TestGetDatabaseDSN(t *testing.T) {
	cfg := &Config{Database: DatabaseConfig{
		Driver: "mysql", Host: "db", Port: "3306", User: "u", Password: "p", DBName: "cv",
	}}
	assert.Equal(t, "u:p@tcp(db:3306)/cv?charset=utf8mb4&parseTime=True&loc=UTC", cfg.GetDatabaseDSN())

	cfg.Database.URL = "postgres://override"
	assert.Equal(t, "postgres://override", cfg.GetDatabaseDSN())
}
