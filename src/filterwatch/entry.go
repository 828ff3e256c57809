// Copyright (c) 2026 Sepehrz All rights reserved.
//
// By accessing or using this software, you agree to be bound by the terms
// of the License Agreement, which you can find at LICENSE files.

package filterwatch

import "time"

// Registry defaults applied by [NewDomainEntry] and [Registry.Add].
const (
	// DefaultCheckIntervalMinutes is the check cadence given to entries
	// that do not specify one.
	DefaultCheckIntervalMinutes = 60

	// DefaultPurpose is the classification tag given to entries that do
	// not specify one.
	DefaultPurpose = "other"
)

// DomainEntry is one monitored domain as stored in the registry.
//
// The nullable fields (LastCheckedAt, LastStatus, LastDetails) are nil
// until the first completed check; they serialize as JSON null so the
// on-disk document keeps a stable shape.
type DomainEntry struct {
	// Name is the domain name, stored in normalized (lowercase,
	// punycode) form.
	Name string `json:"name"`

	// Label is the operator-facing display name. Defaults to Name.
	Label string `json:"label"`

	// Purpose is a free-form classification tag.
	Purpose string `json:"purpose"`

	// CheckIntervalMinutes is how often the scheduler re-checks this
	// entry. Always positive.
	CheckIntervalMinutes int `json:"check_interval_minutes"`

	// NotifyAdmins controls whether a filtered verdict for this entry
	// triggers operator notifications.
	NotifyAdmins bool `json:"notify_admins"`

	// LastCheckedAt is the UTC completion time of the most recent
	// check. Nil means never checked, which makes the entry always due.
	LastCheckedAt *time.Time `json:"last_checked_at"`

	// LastStatus is the verdict of the most recent check.
	LastStatus *Verdict `json:"last_status"`

	// LastDetails holds the raw probe results of the most recent
	// check, kept for operator inspection only.
	LastDetails *CheckDetails `json:"last_details"`

	// Notes is free-form operator text.
	Notes string `json:"notes"`

	// Category is the slot this entry lives in. It is positional in
	// the stored document, so it is populated on load rather than
	// serialized per entry.
	Category Category `json:"-"`
}

// NewDomainEntry returns an entry for name with registry defaults:
// label equal to the name, purpose "other", a 60 minute check interval,
// and admin notifications enabled. The name is stored as given; it is
// normalized and validated by [Registry.Add].
func NewDomainEntry(name string) DomainEntry {
	return DomainEntry{
		Name:                 name,
		Label:                name,
		Purpose:              DefaultPurpose,
		CheckIntervalMinutes: DefaultCheckIntervalMinutes,
		NotifyAdmins:         true,
	}
}

// IsDue reports whether the entry should be checked at the given time:
// either it has never been checked, or its interval has elapsed since
// the last check. A non-positive stored interval falls back to
// [DefaultCheckIntervalMinutes] rather than making the entry always due.
func (e DomainEntry) IsDue(now time.Time) bool {
	if e.LastCheckedAt == nil {
		return true
	}
	interval := e.CheckIntervalMinutes
	if interval <= 0 {
		interval = DefaultCheckIntervalMinutes
	}
	return now.Sub(*e.LastCheckedAt) >= time.Duration(interval)*time.Minute
}

// DisplayName returns the label when set, the name otherwise.
func (e DomainEntry) DisplayName() string {
	if e.Label != "" {
		return e.Label
	}
	return e.Name
}

// UpdateFields selects which entry fields [Registry.Update] overwrites.
// Nil fields are left untouched. Name and category are immutable; to
// move an entry, remove it and add it again.
type UpdateFields struct {
	Label                *string
	Purpose              *string
	CheckIntervalMinutes *int
	NotifyAdmins         *bool
	Notes                *string
}

// apply copies the set fields onto the entry.
func (f UpdateFields) apply(e *DomainEntry) {
	if f.Label != nil {
		e.Label = *f.Label
	}
	if f.Purpose != nil {
		e.Purpose = *f.Purpose
	}
	if f.CheckIntervalMinutes != nil {
		e.CheckIntervalMinutes = *f.CheckIntervalMinutes
	}
	if f.NotifyAdmins != nil {
		e.NotifyAdmins = *f.NotifyAdmins
	}
	if f.Notes != nil {
		e.Notes = *f.Notes
	}
}

// empty reports whether no field is set.
func (f UpdateFields) empty() bool {
	return f.Label == nil && f.Purpose == nil && f.CheckIntervalMinutes == nil &&
		f.NotifyAdmins == nil && f.Notes == nil
}
