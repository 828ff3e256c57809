// Copyright (c) 2026 Sepehrz All rights reserved.
//
// By accessing or using this software, you agree to be bound by the terms
// of the License Agreement, which you can find at LICENSE files.

package filterwatch

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"os"
	"sync"
	"time"

	"github.com/gofrs/flock"
)

// DefaultLockTimeout bounds how long registry operations wait for the
// store lock before giving up with [ErrLockTimeout].
const DefaultLockTimeout = 5 * time.Second

// lockRetryDelay is how often a blocked lock acquisition re-polls the
// lock file.
const lockRetryDelay = 50 * time.Millisecond

// Document is the top-level shape of the registry file.
type Document struct {
	Domains Groups `json:"domains"`
}

// Groups is the on-disk grouping of entries. The two fixed sections are
// always present (possibly empty); country buckets exist only while
// non-empty.
type Groups struct {
	Management   []DomainEntry            `json:"management"`
	Subscription []DomainEntry            `json:"subscription"`
	Countries    map[string][]DomainEntry `json:"countries"`
}

// Registry is a durable, lock-protected store of monitored domains,
// grouped into the management and subscription sections plus per-country
// buckets. It persists to a single JSON document guarded by a lock file,
// so multiple processes can share one store safely.
//
// Every operation is a complete load/mutate/save transaction under the
// lock; [Registry] instances hold no cached state between calls and are
// safe for concurrent use.
type Registry struct {
	path        string
	lockTimeout time.Duration

	// mu serializes goroutines within this process; flock excludes
	// other processes. Both are held for the full load/mutate/save
	// span of an operation.
	mu   sync.Mutex
	lock *flock.Flock

	now func() time.Time
}

// RegistryOption is a functional option for configuring a [Registry].
type RegistryOption func(*Registry)

// WithLockTimeout bounds how long registry operations wait for the
// store lock. The default is 5 seconds.
func WithLockTimeout(d time.Duration) RegistryOption {
	return func(r *Registry) {
		if d > 0 {
			r.lockTimeout = d
		}
	}
}

// NewRegistry returns a registry backed by the JSON document at path.
// The companion lock file (path + ".lock") is created on first use. A
// missing document reads as the empty structure; the file itself is
// materialized by the first write, never by reads.
func NewRegistry(path string, opts ...RegistryOption) *Registry {
	r := &Registry{
		path:        path,
		lockTimeout: DefaultLockTimeout,
		lock:        flock.New(path + ".lock"),
		now:         time.Now,
	}
	for _, opt := range opts {
		opt(r)
	}
	return r
}

// Path returns the location of the backing JSON document.
func (r *Registry) Path() string { return r.path }

// withLock runs fn while holding both the in-process mutex and the
// cross-process lock file. Acquisition of the lock file is bounded by
// the configured timeout.
func (r *Registry) withLock(fn func() error) error {
	r.mu.Lock()
	defer r.mu.Unlock()

	ctx, cancel := context.WithTimeout(context.Background(), r.lockTimeout)
	defer cancel()

	locked, err := r.lock.TryLockContext(ctx, lockRetryDelay)
	if err != nil || !locked {
		if err == nil || errors.Is(err, context.DeadlineExceeded) {
			return fmt.Errorf("%w: %s after %s", ErrLockTimeout, r.lock.Path(), r.lockTimeout)
		}
		return fmt.Errorf("acquire registry lock %s: %w", r.lock.Path(), err)
	}
	defer func() { _ = r.lock.Unlock() }()

	return fn()
}

// read parses the backing document. A missing file, or a file without
// the top-level domains key, reads as the empty structure. Must be
// called with the lock held.
func (r *Registry) read() (Document, error) {
	var doc Document

	data, err := os.ReadFile(r.path)
	if err != nil {
		if os.IsNotExist(err) {
			return doc, nil
		}
		return doc, fmt.Errorf("read registry %s: %w", r.path, err)
	}

	if len(data) == 0 {
		return doc, nil
	}
	if err := json.Unmarshal(data, &doc); err != nil {
		return doc, fmt.Errorf("parse registry %s: %w", r.path, err)
	}
	return doc, nil
}

// write atomically replaces the backing document: the new content is
// written to a temporary file, synced, then renamed over the old one,
// so readers never observe a partial write. Must be called with the
// lock held.
func (r *Registry) write(doc Document) error {
	data, err := json.MarshalIndent(doc, "", "  ")
	if err != nil {
		return fmt.Errorf("encode registry: %w", err)
	}

	tmp := r.path + ".tmp"
	f, err := os.OpenFile(tmp, os.O_WRONLY|os.O_CREATE|os.O_TRUNC, 0o644)
	if err != nil {
		return fmt.Errorf("write registry %s: %w", tmp, err)
	}
	if _, err := f.Write(data); err != nil {
		f.Close()
		os.Remove(tmp)
		return fmt.Errorf("write registry %s: %w", tmp, err)
	}
	if err := f.Sync(); err != nil {
		f.Close()
		os.Remove(tmp)
		return fmt.Errorf("sync registry %s: %w", tmp, err)
	}
	if err := f.Close(); err != nil {
		os.Remove(tmp)
		return fmt.Errorf("close registry %s: %w", tmp, err)
	}
	if err := os.Rename(tmp, r.path); err != nil {
		os.Remove(tmp)
		return fmt.Errorf("replace registry %s: %w", r.path, err)
	}
	return nil
}

// Load returns the current document under the store lock. A missing
// backing file yields the empty default structure.
func (r *Registry) Load() (Document, error) {
	var doc Document
	err := r.withLock(func() error {
		loaded, err := r.read()
		if err != nil {
			return err
		}
		// Normalize so callers always see the fixed sections.
		doc = newCollection(loaded).document()
		return nil
	})
	return doc, err
}

// Save atomically replaces the store content with doc.
func (r *Registry) Save(doc Document) error {
	return r.withLock(func() error {
		return r.write(newCollection(doc).document())
	})
}

// ListAll returns a flattened view across all categories, de-duplicated
// by name. The scan runs management, then subscription, then countries
// in code order; the first occurrence of a name wins.
func (r *Registry) ListAll() ([]DomainEntry, error) {
	var out []DomainEntry
	err := r.withLock(func() error {
		doc, err := r.read()
		if err != nil {
			return err
		}
		out = newCollection(doc).all()
		return nil
	})
	return out, err
}

// ListByCategory returns the entries of one bucket in insertion order.
func (r *Registry) ListByCategory(cat Category) ([]DomainEntry, error) {
	var out []DomainEntry
	err := r.withLock(func() error {
		doc, err := r.read()
		if err != nil {
			return err
		}
		out = newCollection(doc).inCategory(cat)
		return nil
	})
	return out, err
}

// ListCountries returns the country codes that currently have at least
// one entry, sorted.
func (r *Registry) ListCountries() ([]string, error) {
	var out []string
	err := r.withLock(func() error {
		doc, err := r.read()
		if err != nil {
			return err
		}
		out = newCollection(doc).countries()
		return nil
	})
	return out, err
}

// ListByCountry returns the entries of one country bucket.
func (r *Registry) ListByCountry(code string) ([]DomainEntry, error) {
	cat, err := CountryCategory(code)
	if err != nil {
		return nil, err
	}
	return r.ListByCategory(cat)
}

// Find returns the first entry with the given name in scan order, or
// [ErrDomainNotFound].
func (r *Registry) Find(name string) (DomainEntry, error) {
	name = normalizeDomain(name)
	var out DomainEntry
	err := r.withLock(func() error {
		doc, err := r.read()
		if err != nil {
			return err
		}
		entry, ok := newCollection(doc).find(name)
		if !ok {
			return fmt.Errorf("%w: %s", ErrDomainNotFound, name)
		}
		out = entry
		return nil
	})
	return out, err
}

// Add registers a new entry in the given category. The name and
// category are normalized and validated first: an unknown section or a
// malformed country bucket fails with [ErrInvalidCategory], and country
// codes are upper-cased so hand-built categories land in the same
// bucket the lookups read. Label, purpose, and a zero interval receive
// the registry defaults; NotifyAdmins is taken as given, so construct
// entries with [NewDomainEntry] to start from notifications enabled.
// Adding a name that already exists in the target bucket fails with
// [ErrDuplicateDomain]; the same name in another bucket is permitted
// (discouraged, but the store does not forbid it).
func (r *Registry) Add(cat Category, entry DomainEntry) (DomainEntry, error) {
	cat, err := ParseCategory(string(cat))
	if err != nil {
		return DomainEntry{}, err
	}
	name, err := NormalizeDomain(entry.Name)
	if err != nil {
		return DomainEntry{}, err
	}
	entry.Name = name
	entry.Category = cat
	if entry.Label == "" {
		entry.Label = name
	}
	if entry.Purpose == "" {
		entry.Purpose = DefaultPurpose
	}
	if entry.CheckIntervalMinutes == 0 {
		entry.CheckIntervalMinutes = DefaultCheckIntervalMinutes
	}
	if entry.CheckIntervalMinutes < 0 {
		return DomainEntry{}, fmt.Errorf("%w: %d", ErrInvalidInterval, entry.CheckIntervalMinutes)
	}

	err = r.withLock(func() error {
		doc, err := r.read()
		if err != nil {
			return err
		}
		c := newCollection(doc)
		if err := c.add(entry); err != nil {
			return fmt.Errorf("%w: %s in %s", ErrDuplicateDomain, name, cat)
		}
		return r.write(c.document())
	})
	if err != nil {
		return DomainEntry{}, err
	}
	return entry, nil
}

// Remove deletes every occurrence of name across all buckets and
// returns how many entries were removed. Country buckets left empty by
// the removal are pruned from the document.
func (r *Registry) Remove(name string) (int, error) {
	name = normalizeDomain(name)
	removed := 0
	err := r.withLock(func() error {
		doc, err := r.read()
		if err != nil {
			return err
		}
		c := newCollection(doc)
		removed = c.removeAll(name)
		if removed == 0 {
			return nil
		}
		return r.write(c.document())
	})
	return removed, err
}

// Update applies the set fields to the first entry with the given name
// in scan order. Occurrences of the name in later buckets are left
// untouched. Returns [ErrDomainNotFound] if no entry matches, and
// [ErrInvalidInterval] if the update would make the interval
// non-positive.
func (r *Registry) Update(name string, fields UpdateFields) (DomainEntry, error) {
	name = normalizeDomain(name)
	if fields.CheckIntervalMinutes != nil && *fields.CheckIntervalMinutes <= 0 {
		return DomainEntry{}, fmt.Errorf("%w: %d", ErrInvalidInterval, *fields.CheckIntervalMinutes)
	}

	var out DomainEntry
	err := r.withLock(func() error {
		doc, err := r.read()
		if err != nil {
			return err
		}
		c := newCollection(doc)
		entry, ok := c.updateFirst(name, fields)
		if !ok {
			return fmt.Errorf("%w: %s", ErrDomainNotFound, name)
		}
		out = entry
		if fields.empty() {
			return nil
		}
		return r.write(c.document())
	})
	if err != nil {
		return DomainEntry{}, err
	}
	return out, nil
}

// TouchLastCheck stamps the outcome of a completed check onto every
// occurrence of name across all buckets: last_checked_at becomes the
// current UTC time, last_status becomes verdict, and last_details is
// replaced when details is non-nil. Returns the first occurrence in
// scan order, or [ErrDomainNotFound].
func (r *Registry) TouchLastCheck(name string, verdict Verdict, details *CheckDetails) (DomainEntry, error) {
	name = normalizeDomain(name)
	now := r.now().UTC()

	var out DomainEntry
	err := r.withLock(func() error {
		doc, err := r.read()
		if err != nil {
			return err
		}
		c := newCollection(doc)
		entry, ok := c.touchAll(name, verdict, details, now)
		if !ok {
			return fmt.Errorf("%w: %s", ErrDomainNotFound, name)
		}
		out = entry
		return r.write(c.document())
	})
	if err != nil {
		return DomainEntry{}, err
	}
	return out, nil
}
