// Copyright (c) 2026 Sepehrz All rights reserved.
//
// By accessing or using this software, you agree to be bound by the terms
// of the License Agreement, which you can find at LICENSE files.

package filterwatch

import "errors"

// Sentinel errors for the filterwatch package.
var (
	// ErrNoResolvers is returned when the watcher is built without a
	// public or a local resolver address.
	ErrNoResolvers = errors.New("filterwatch: no resolvers configured")

	// ErrInvalidDomain is returned when a domain name fails validation.
	ErrInvalidDomain = errors.New("filterwatch: invalid domain name")

	// ErrInvalidCategory is returned when a category path is not
	// "management", "subscription", or "countries/<CODE>".
	ErrInvalidCategory = errors.New("filterwatch: invalid category")

	// ErrDuplicateDomain is returned when adding a domain that already
	// exists in the target category.
	ErrDuplicateDomain = errors.New("filterwatch: domain already registered")

	// ErrDomainNotFound is returned when an operation names a domain
	// that is not in the registry.
	ErrDomainNotFound = errors.New("filterwatch: domain not found")

	// ErrInvalidInterval is returned when a check interval is not a
	// positive number of minutes.
	ErrInvalidInterval = errors.New("filterwatch: check interval must be positive")

	// ErrLockTimeout is returned when the registry file lock cannot be
	// acquired within the configured wait.
	ErrLockTimeout = errors.New("filterwatch: registry lock timed out")

	// ErrInternalPanic is returned when an internal panic is recovered
	// during a check cycle.
	ErrInternalPanic = errors.New("filterwatch: internal panic recovered")
)
