// Copyright (c) 2026 Sepehrz All rights reserved.
//
// By accessing or using this software, you agree to be bound by the terms
// of the License Agreement, which you can find at LICENSE files.

package filterwatch

import (
	"sort"
	"time"
)

// collection is the in-memory form of the stored document: one flat
// list of entries in scan order (management, subscription, then
// countries by code), each tagged with its category, plus a name index.
// Operations work against this single list instead of walking three
// separate buckets; grouping is reconstructed only on serialization.
type collection struct {
	entries []DomainEntry
	byName  map[string][]int
}

// newCollection flattens a parsed document into scan order.
func newCollection(doc Document) *collection {
	c := &collection{}

	for _, e := range doc.Domains.Management {
		e.Category = CategoryManagement
		c.entries = append(c.entries, e)
	}
	for _, e := range doc.Domains.Subscription {
		e.Category = CategorySubscription
		c.entries = append(c.entries, e)
	}

	codes := make([]string, 0, len(doc.Domains.Countries))
	for code := range doc.Domains.Countries {
		codes = append(codes, code)
	}
	sort.Strings(codes)
	for _, code := range codes {
		cat := Category(countriesPrefix + code)
		for _, e := range doc.Domains.Countries[code] {
			e.Category = cat
			c.entries = append(c.entries, e)
		}
	}

	c.reindex()
	return c
}

// document regroups the flat list into the on-disk shape.
func (c *collection) document() Document {
	doc := Document{}
	doc.Domains.Management = []DomainEntry{}
	doc.Domains.Subscription = []DomainEntry{}
	doc.Domains.Countries = map[string][]DomainEntry{}

	for _, e := range c.entries {
		switch {
		case e.Category == CategoryManagement:
			doc.Domains.Management = append(doc.Domains.Management, e)
		case e.Category == CategorySubscription:
			doc.Domains.Subscription = append(doc.Domains.Subscription, e)
		case e.Category.IsCountry():
			code := e.Category.CountryCode()
			doc.Domains.Countries[code] = append(doc.Domains.Countries[code], e)
		}
	}
	return doc
}

// reindex rebuilds the name index after a mutation. Index slices hold
// entry positions in scan order, so the first element is the match
// that wins lookups.
func (c *collection) reindex() {
	c.byName = make(map[string][]int, len(c.entries))
	for i, e := range c.entries {
		c.byName[e.Name] = append(c.byName[e.Name], i)
	}
}

// categoryRank orders categories for the scan: management first, then
// subscription, then country buckets by code.
func categoryRank(cat Category) (int, string) {
	switch {
	case cat == CategoryManagement:
		return 0, ""
	case cat == CategorySubscription:
		return 1, ""
	default:
		return 2, cat.CountryCode()
	}
}

// resort restores scan order after an append. The sort is stable, so
// insertion order within each bucket is preserved.
func (c *collection) resort() {
	sort.SliceStable(c.entries, func(i, j int) bool {
		ri, ci := categoryRank(c.entries[i].Category)
		rj, cj := categoryRank(c.entries[j].Category)
		if ri != rj {
			return ri < rj
		}
		return ci < cj
	})
	c.reindex()
}

// all returns the entries de-duplicated by name, first occurrence in
// scan order winning.
func (c *collection) all() []DomainEntry {
	seen := make(map[string]struct{}, len(c.entries))
	out := make([]DomainEntry, 0, len(c.entries))
	for _, e := range c.entries {
		if _, ok := seen[e.Name]; ok {
			continue
		}
		seen[e.Name] = struct{}{}
		out = append(out, e)
	}
	return out
}

// inCategory returns the entries of one bucket in insertion order.
func (c *collection) inCategory(cat Category) []DomainEntry {
	out := []DomainEntry{}
	for _, e := range c.entries {
		if e.Category == cat {
			out = append(out, e)
		}
	}
	return out
}

// countries returns the country codes with at least one entry, sorted.
func (c *collection) countries() []string {
	seen := map[string]struct{}{}
	codes := []string{}
	for _, e := range c.entries {
		if !e.Category.IsCountry() {
			continue
		}
		code := e.Category.CountryCode()
		if _, ok := seen[code]; ok {
			continue
		}
		seen[code] = struct{}{}
		codes = append(codes, code)
	}
	sort.Strings(codes)
	return codes
}

// find returns the first entry with the given name in scan order.
func (c *collection) find(name string) (DomainEntry, bool) {
	if idx, ok := c.byName[name]; ok && len(idx) > 0 {
		return c.entries[idx[0]], true
	}
	return DomainEntry{}, false
}

// add appends an entry to its bucket. The duplicate check is scoped to
// the target bucket: the same name may exist in another category.
func (c *collection) add(entry DomainEntry) error {
	for _, i := range c.byName[entry.Name] {
		if c.entries[i].Category == entry.Category {
			return ErrDuplicateDomain
		}
	}
	c.entries = append(c.entries, entry)
	c.resort()
	return nil
}

// removeAll deletes every occurrence of name across all buckets and
// returns how many were removed. Emptied country buckets disappear
// from the document because grouping is rebuilt on save.
func (c *collection) removeAll(name string) int {
	kept := c.entries[:0]
	removed := 0
	for _, e := range c.entries {
		if e.Name == name {
			removed++
			continue
		}
		kept = append(kept, e)
	}
	c.entries = kept
	if removed > 0 {
		c.reindex()
	}
	return removed
}

// updateFirst applies fields to the first entry with the given name in
// scan order. Later occurrences in other buckets are left alone.
func (c *collection) updateFirst(name string, fields UpdateFields) (DomainEntry, bool) {
	idx, ok := c.byName[name]
	if !ok || len(idx) == 0 {
		return DomainEntry{}, false
	}
	fields.apply(&c.entries[idx[0]])
	return c.entries[idx[0]], true
}

// touchAll stamps the check outcome onto every occurrence of name and
// returns the first one. Unlike updateFirst this touches all buckets,
// so duplicated names never carry stale statuses.
func (c *collection) touchAll(name string, verdict Verdict, details *CheckDetails, now time.Time) (DomainEntry, bool) {
	idx, ok := c.byName[name]
	if !ok || len(idx) == 0 {
		return DomainEntry{}, false
	}
	for _, i := range idx {
		c.entries[i].LastCheckedAt = &now
		c.entries[i].LastStatus = &verdict
		if details != nil {
			c.entries[i].LastDetails = details
		}
	}
	return c.entries[idx[0]], true
}
