// Copyright (c) 2026 Sepehrz All rights reserved.
//
// By accessing or using this software, you agree to be bound by the terms
// of the License Agreement, which you can find at LICENSE files.

package config

import (
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestLoadDefaultsWithoutFile(t *testing.T) {
	cfg, err := Load(filepath.Join(t.TempDir(), "missing.yaml"))
	require.NoError(t, err)

	assert.Equal(t, "8.8.8.8", cfg.Resolvers.Public)
	assert.Equal(t, "5.200.200.200", cfg.Resolvers.Local)
	assert.Equal(t, 4*time.Second, cfg.Resolvers.Timeout())
	assert.Equal(t, 6, cfg.Checker.Concurrency)
	assert.Equal(t, 10, cfg.Checker.DNSWorkers)
	assert.Equal(t, 60*time.Minute, cfg.Checker.CycleInterval())
	assert.Equal(t, "domains.json", cfg.Store.Path)
	assert.Equal(t, 5*time.Second, cfg.Store.LockTimeout())
	assert.Empty(t, cfg.HTTP.ListenAddr)
	assert.Empty(t, cfg.History.Driver)
}

func TestLoadYAMLFile(t *testing.T) {
	path := filepath.Join(t.TempDir(), "filterwatch.yaml")
	require.NoError(t, os.WriteFile(path, []byte(`
resolvers:
  public: 1.1.1.1
  local: 10.202.10.202
  timeout_seconds: 2
checker:
  concurrency: 12
  cycle_interval_minutes: 30
store:
  path: /var/lib/filterwatch/domains.json
notify:
  telegram_token: "123:abc"
  admins: ["1001", "1002"]
history:
  driver: sqlite
  dsn: history.db
http:
  listen_addr: 127.0.0.1:8080
`), 0o644))

	cfg, err := Load(path)
	require.NoError(t, err)

	assert.Equal(t, "1.1.1.1", cfg.Resolvers.Public)
	assert.Equal(t, "10.202.10.202", cfg.Resolvers.Local)
	assert.Equal(t, 2*time.Second, cfg.Resolvers.Timeout())
	assert.Equal(t, 12, cfg.Checker.Concurrency)
	assert.Equal(t, 10, cfg.Checker.DNSWorkers, "unset field keeps its default")
	assert.Equal(t, 30*time.Minute, cfg.Checker.CycleInterval())
	assert.Equal(t, "/var/lib/filterwatch/domains.json", cfg.Store.Path)
	assert.Equal(t, []string{"1001", "1002"}, cfg.Notify.Admins)
	assert.Equal(t, "sqlite", cfg.History.Driver)
	assert.Equal(t, "127.0.0.1:8080", cfg.HTTP.ListenAddr)
}

func TestLoadEnvOverridesFile(t *testing.T) {
	path := filepath.Join(t.TempDir(), "filterwatch.yaml")
	require.NoError(t, os.WriteFile(path, []byte(`
resolvers:
  public: 1.1.1.1
  local: 10.202.10.202
`), 0o644))

	t.Setenv("FILTERWATCH_RESOLVERS__PUBLIC", "9.9.9.9")
	t.Setenv("FILTERWATCH_CHECKER__CONCURRENCY", "3")

	cfg, err := Load(path)
	require.NoError(t, err)

	assert.Equal(t, "9.9.9.9", cfg.Resolvers.Public)
	assert.Equal(t, "10.202.10.202", cfg.Resolvers.Local)
	assert.Equal(t, 3, cfg.Checker.Concurrency)
}

func TestLoadRejectsInvalid(t *testing.T) {
	t.Run("bad history driver", func(t *testing.T) {
		path := filepath.Join(t.TempDir(), "filterwatch.yaml")
		require.NoError(t, os.WriteFile(path, []byte(`
history:
  driver: postgres
  dsn: whatever
`), 0o644))

		_, err := Load(path)
		assert.Error(t, err)
	})

	t.Run("bad listen address", func(t *testing.T) {
		path := filepath.Join(t.TempDir(), "filterwatch.yaml")
		require.NoError(t, os.WriteFile(path, []byte(`
http:
  listen_addr: not-an-address
`), 0o644))

		_, err := Load(path)
		assert.Error(t, err)
	})

	t.Run("malformed yaml", func(t *testing.T) {
		path := filepath.Join(t.TempDir(), "filterwatch.yaml")
		require.NoError(t, os.WriteFile(path, []byte(`{{`), 0o644))

		_, err := Load(path)
		assert.Error(t, err)
	})
}
