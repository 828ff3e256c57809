// Copyright (c) 2026 Sepehrz All rights reserved.
//
// By accessing or using this software, you agree to be bound by the terms
// of the License Agreement, which you can find at LICENSE files.

package config

import "time"

// Resolvers holds the DNS probe targets.
type Resolvers struct {
	// Public is the resolver assumed free of filtering, used as the
	// trust baseline.
	Public string `koanf:"public" validate:"required"`

	// Local is the resolver potentially subject to filtering, being
	// tested against the baseline.
	Local string `koanf:"local" validate:"required"`

	// TimeoutSeconds bounds each DNS query.
	TimeoutSeconds int `koanf:"timeout_seconds" validate:"min=0"`
}

// Checker holds the scheduler tunables.
type Checker struct {
	// Concurrency is the admission limit on simultaneous domain checks.
	Concurrency int `koanf:"concurrency" validate:"min=0"`

	// DNSWorkers sizes the pool servicing blocking DNS exchanges.
	DNSWorkers int `koanf:"dns_workers" validate:"min=0"`

	// CycleIntervalMinutes is the sleep between periodic cycles.
	CycleIntervalMinutes int `koanf:"cycle_interval_minutes" validate:"min=0"`
}

// Store holds the domain registry location.
type Store struct {
	Path               string `koanf:"path"`
	LockTimeoutSeconds int    `koanf:"lock_timeout_seconds" validate:"min=0"`
}

// Notify holds the alert delivery settings. With an empty token the
// service logs filtered detections instead of delivering them.
type Notify struct {
	TelegramToken  string   `koanf:"telegram_token"`
	TelegramAPIURL string   `koanf:"telegram_api_url" validate:"omitempty,url"`
	Admins         []string `koanf:"admins"`
}

// History configures the optional check audit trail. An empty driver
// disables it.
type History struct {
	Driver string `koanf:"driver" validate:"omitempty,oneof=sqlite mysql"`
	DSN    string `koanf:"dsn" validate:"required_with=Driver"`
}

// HTTP holds the operator API settings. An empty listen address
// disables the server.
type HTTP struct {
	ListenAddr string `koanf:"listen_addr" validate:"omitempty,hostname_port"`
}

// Log holds logging settings.
type Log struct {
	Dir string `koanf:"dir"`
}

// Config is the immutable aggregate returned by Load.
type Config struct {
	Resolvers Resolvers `koanf:"resolvers"`
	Checker   Checker   `koanf:"checker"`
	Store     Store     `koanf:"store"`
	Notify    Notify    `koanf:"notify"`
	History   History   `koanf:"history"`
	HTTP      HTTP      `koanf:"http"`
	Log       Log       `koanf:"log"`
}

// Timeout returns the per-query timeout as a duration.
func (r Resolvers) Timeout() time.Duration {
	return time.Duration(r.TimeoutSeconds) * time.Second
}

// CycleInterval returns the inter-cycle sleep as a duration.
func (c Checker) CycleInterval() time.Duration {
	return time.Duration(c.CycleIntervalMinutes) * time.Minute
}

// LockTimeout returns the registry lock wait as a duration.
func (s Store) LockTimeout() time.Duration {
	return time.Duration(s.LockTimeoutSeconds) * time.Second
}
