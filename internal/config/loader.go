// Copyright (c) 2026 Sepehrz All rights reserved.
//
// By accessing or using this software, you agree to be bound by the terms
// of the License Agreement, which you can find at LICENSE files.

// Package config loads the service configuration from three overlay
// layers, highest precedence last:
//
//  1. optional .env file (dotenv values exported into the process),
//  2. the YAML config file (default filterwatch.yaml),
//  3. environment variables prefixed FILTERWATCH_, where __ maps to a
//     dot (e.g. FILTERWATCH_RESOLVERS__PUBLIC → resolvers.public).
//
// After merging, the tree is unmarshalled into typed structs, filled
// with code defaults, and validated. The binary fails fast on a
// malformed configuration.
package config

import (
	"fmt"
	"os"
	"strings"

	"github.com/joho/godotenv"
	"github.com/knadh/koanf/parsers/yaml"
	"github.com/knadh/koanf/providers/env"
	"github.com/knadh/koanf/providers/file"
	koanf "github.com/knadh/koanf/v2"
)

// envPrefix marks the environment variables that override file values.
const envPrefix = "FILTERWATCH_"

// Defaults applied after the overlay merge.
const (
	DefaultPath               = "filterwatch.yaml"
	defaultStorePath          = "domains.json"
	defaultTimeoutSeconds     = 4
	defaultConcurrency        = 6
	defaultDNSWorkers         = 10
	defaultCycleMinutes       = 60
	defaultLockTimeoutSeconds = 5
	defaultLogDir             = "logs"
	defaultPublicResolver     = "8.8.8.8"
	defaultLocalResolver      = "5.200.200.200"
	defaultTelegramAPIURL     = "https://api.telegram.org"
)

// Load builds one Config from the .env, YAML, and environment layers.
// A missing YAML file is not an error; defaults and environment
// variables alone can configure the service.
func Load(path string) (*Config, error) {
	// .env (optional, no error if missing)
	_ = godotenv.Load()

	k := koanf.New(".")

	if path == "" {
		path = DefaultPath
	}
	if _, err := os.Stat(path); err == nil {
		if err := k.Load(file.Provider(path), yaml.Parser()); err != nil {
			return nil, fmt.Errorf("load config %s: %w", path, err)
		}
	}

	// Env overrides: FILTERWATCH_RESOLVERS__PUBLIC → resolvers.public
	if err := k.Load(env.Provider(envPrefix, ".", func(s string) string {
		s = strings.TrimPrefix(s, envPrefix)
		return strings.ToLower(strings.ReplaceAll(s, "__", "."))
	}), nil); err != nil {
		return nil, fmt.Errorf("apply env overrides: %w", err)
	}

	var cfg Config
	if err := k.Unmarshal("", &cfg); err != nil {
		return nil, fmt.Errorf("unmarshal config: %w", err)
	}

	applyDefaults(&cfg)
	if err := validateStruct(&cfg); err != nil {
		return nil, fmt.Errorf("validate config: %w", err)
	}
	return &cfg, nil
}

// applyDefaults fills the zero-valued fields with the code defaults.
func applyDefaults(cfg *Config) {
	if cfg.Resolvers.Public == "" {
		cfg.Resolvers.Public = defaultPublicResolver
	}
	if cfg.Resolvers.Local == "" {
		cfg.Resolvers.Local = defaultLocalResolver
	}
	if cfg.Resolvers.TimeoutSeconds == 0 {
		cfg.Resolvers.TimeoutSeconds = defaultTimeoutSeconds
	}
	if cfg.Checker.Concurrency == 0 {
		cfg.Checker.Concurrency = defaultConcurrency
	}
	if cfg.Checker.DNSWorkers == 0 {
		cfg.Checker.DNSWorkers = defaultDNSWorkers
	}
	if cfg.Checker.CycleIntervalMinutes == 0 {
		cfg.Checker.CycleIntervalMinutes = defaultCycleMinutes
	}
	if cfg.Store.Path == "" {
		cfg.Store.Path = defaultStorePath
	}
	if cfg.Store.LockTimeoutSeconds == 0 {
		cfg.Store.LockTimeoutSeconds = defaultLockTimeoutSeconds
	}
	if cfg.Notify.TelegramAPIURL == "" {
		cfg.Notify.TelegramAPIURL = defaultTelegramAPIURL
	}
	if cfg.Log.Dir == "" {
		cfg.Log.Dir = defaultLogDir
	}
}
