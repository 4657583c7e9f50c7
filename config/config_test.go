package config

import (
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestDefault(t *testing.T) {
	cfg := Default()
	assert.Equal(t, 10, cfg.Feed.PageSize)
	assert.Equal(t, CacheMemory, cfg.Cache.Backend)
	assert.Equal(t, DriverSQLite, cfg.Database.Driver)
	assert.Zero(t, cfg.Cache.TTL)
	require.NoError(t, cfg.Validate())
}

func TestLoadFromFileAndEnv(t *testing.T) {
	dir := t.TempDir()
	path := filepath.Join(dir, "config.yaml")
	content := []byte("feed:\n  page_size: 25\ncache:\n  backend: redis\n  ttl: 30s\n")
	require.NoError(t, os.WriteFile(path, content, 0o600))

	t.Setenv("BLOGFEED_CONFIG", path)
	t.Setenv("BLOGFEED_REDIS_ADDR", "redis:6380")

	cfg, err := Load()
	require.NoError(t, err)
	assert.Equal(t, 25, cfg.Feed.PageSize)
	assert.Equal(t, CacheRedis, cfg.Cache.Backend)
	assert.Equal(t, 30*time.Second, cfg.Cache.TTL)
	assert.Equal(t, "redis:6380", cfg.Redis.Addr)
}

func TestValidate(t *testing.T) {
	cases := map[string]func(c *Config){
		"zero page size": func(c *Config) { c.Feed.PageSize = 0 },
		"unknown driver": func(c *Config) { c.Database.Driver = "mysql" },
		"unknown cache":  func(c *Config) { c.Cache.Backend = "memcached" },
		"negative ttl":   func(c *Config) { c.Cache.TTL = -time.Second },
	}
	for name, mutate := range cases {
		t.Run(name, func(t *testing.T) {
			cfg := Default()
			mutate(cfg)
			assert.Error(t, cfg.Validate())
		})
	}
}
