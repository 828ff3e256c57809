// Copyright (c) 2026 Sepehrz All rights reserved.
//
// By accessing or using this software, you agree to be bound by the terms
// of the License Agreement, which you can find at LICENSE files.

package filterwatch

import (
	"encoding/json"
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"sync"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func newTestRegistry(t *testing.T) *Registry {
	t.Helper()
	return NewRegistry(filepath.Join(t.TempDir(), "domains.json"))
}

func TestRegistryLoadMissingFile(t *testing.T) {
	r := newTestRegistry(t)

	doc, err := r.Load()
	require.NoError(t, err)

	assert.Empty(t, doc.Domains.Management)
	assert.Empty(t, doc.Domains.Subscription)
	assert.Empty(t, doc.Domains.Countries)

	entries, err := r.ListAll()
	require.NoError(t, err)
	assert.Empty(t, entries)

	// Reads never materialize the document; only writes do.
	_, statErr := os.Stat(r.Path())
	assert.True(t, os.IsNotExist(statErr))
}

func TestRegistryLoadMissingDomainsKey(t *testing.T) {
	path := filepath.Join(t.TempDir(), "domains.json")
	require.NoError(t, os.WriteFile(path, []byte(`{}`), 0o644))

	r := NewRegistry(path)
	entries, err := r.ListAll()
	require.NoError(t, err)
	assert.Empty(t, entries)
}

func TestRegistryLoadCorruptFile(t *testing.T) {
	path := filepath.Join(t.TempDir(), "domains.json")
	require.NoError(t, os.WriteFile(path, []byte(`{"domains": [`), 0o644))

	r := NewRegistry(path)
	_, err := r.ListAll()
	assert.Error(t, err)
}

func TestRegistryAddFindRoundTrip(t *testing.T) {
	r := newTestRegistry(t)

	added, err := r.Add(CategoryManagement, NewDomainEntry("Panel.Example.COM"))
	require.NoError(t, err)
	assert.Equal(t, "panel.example.com", added.Name)
	assert.Equal(t, CategoryManagement, added.Category)

	found, err := r.Find("panel.example.com")
	require.NoError(t, err)
	assert.Equal(t, added, found)

	// Lookup is case-insensitive through normalization.
	found, err = r.Find("PANEL.example.com")
	require.NoError(t, err)
	assert.Equal(t, added.Name, found.Name)
}

func TestRegistryAddValidation(t *testing.T) {
	r := newTestRegistry(t)

	t.Run("invalid name", func(t *testing.T) {
		_, err := r.Add(CategoryManagement, NewDomainEntry("not_a_domain"))
		assert.True(t, errors.Is(err, ErrInvalidDomain))
	})

	t.Run("negative interval", func(t *testing.T) {
		e := NewDomainEntry("example.com")
		e.CheckIntervalMinutes = -5
		_, err := r.Add(CategoryManagement, e)
		assert.True(t, errors.Is(err, ErrInvalidInterval))
	})

	t.Run("zero interval gets the default", func(t *testing.T) {
		e := DomainEntry{Name: "defaulted.example.com", NotifyAdmins: true}
		added, err := r.Add(CategoryManagement, e)
		require.NoError(t, err)
		assert.Equal(t, DefaultCheckIntervalMinutes, added.CheckIntervalMinutes)
		assert.Equal(t, "defaulted.example.com", added.Label)
		assert.Equal(t, DefaultPurpose, added.Purpose)
	})

	t.Run("notify flag is taken as given", func(t *testing.T) {
		// NewDomainEntry is the defaulting path for NotifyAdmins; a
		// bare literal keeps whatever the caller set.
		added, err := r.Add(CategoryManagement, NewDomainEntry("loud.example.com"))
		require.NoError(t, err)
		assert.True(t, added.NotifyAdmins)

		added, err = r.Add(CategoryManagement, DomainEntry{Name: "quiet.example.com"})
		require.NoError(t, err)
		assert.False(t, added.NotifyAdmins)
	})
}

func TestRegistryAddCategoryValidation(t *testing.T) {
	r := newTestRegistry(t)

	t.Run("unknown category is rejected", func(t *testing.T) {
		_, err := r.Add(Category("bogus"), NewDomainEntry("lost.example.com"))
		assert.True(t, errors.Is(err, ErrInvalidCategory))

		// Nothing was persisted; the write never happened.
		_, statErr := os.Stat(r.Path())
		assert.True(t, os.IsNotExist(statErr))
		_, err = r.Find("lost.example.com")
		assert.True(t, errors.Is(err, ErrDomainNotFound))
	})

	t.Run("malformed country bucket is rejected", func(t *testing.T) {
		_, err := r.Add(Category("countries/NLD"), NewDomainEntry("lost.example.com"))
		assert.True(t, errors.Is(err, ErrInvalidCategory))
	})

	t.Run("hand-built lowercase country is normalized", func(t *testing.T) {
		added, err := r.Add(Category("countries/nl"), NewDomainEntry("dutch.example.com"))
		require.NoError(t, err)
		assert.Equal(t, Category("countries/NL"), added.Category)

		// The upper-cased lookups see the entry.
		entries, err := r.ListByCountry("NL")
		require.NoError(t, err)
		require.Len(t, entries, 1)
		assert.Equal(t, "dutch.example.com", entries[0].Name)

		// And the stored document holds a single "NL" bucket.
		data, err := os.ReadFile(r.Path())
		require.NoError(t, err)
		var doc Document
		require.NoError(t, json.Unmarshal(data, &doc))
		assert.Contains(t, doc.Domains.Countries, "NL")
		assert.NotContains(t, doc.Domains.Countries, "nl")
	})
}

func TestRegistryDuplicateScopedPerBucket(t *testing.T) {
	r := newTestRegistry(t)

	_, err := r.Add(CategoryManagement, NewDomainEntry("dup.example.com"))
	require.NoError(t, err)

	// Same name in the same bucket is refused.
	_, err = r.Add(CategoryManagement, NewDomainEntry("dup.example.com"))
	assert.True(t, errors.Is(err, ErrDuplicateDomain))

	// Same name in another bucket is permitted.
	nl, err := CountryCategory("nl")
	require.NoError(t, err)
	_, err = r.Add(nl, NewDomainEntry("dup.example.com"))
	assert.NoError(t, err)
}

func TestRegistryListAllDeduplicates(t *testing.T) {
	r := newTestRegistry(t)

	// Build a document with the same name in two buckets directly,
	// bypassing Add's duplicate check.
	mgmt := NewDomainEntry("shared.example.com")
	mgmt.Label = "from management"
	country := NewDomainEntry("shared.example.com")
	country.Label = "from NL"

	doc := Document{}
	doc.Domains.Management = []DomainEntry{mgmt}
	doc.Domains.Countries = map[string][]DomainEntry{"NL": {country}}
	require.NoError(t, r.Save(doc))

	entries, err := r.ListAll()
	require.NoError(t, err)
	require.Len(t, entries, 1)
	// Scan-order precedence: management wins.
	assert.Equal(t, "from management", entries[0].Label)
	assert.Equal(t, CategoryManagement, entries[0].Category)
}

func TestRegistryScanOrder(t *testing.T) {
	r := newTestRegistry(t)

	nl, _ := CountryCategory("NL")
	de, _ := CountryCategory("DE")

	_, err := r.Add(nl, NewDomainEntry("c.example.com"))
	require.NoError(t, err)
	_, err = r.Add(CategorySubscription, NewDomainEntry("b.example.com"))
	require.NoError(t, err)
	_, err = r.Add(CategoryManagement, NewDomainEntry("a.example.com"))
	require.NoError(t, err)
	_, err = r.Add(de, NewDomainEntry("d.example.com"))
	require.NoError(t, err)

	entries, err := r.ListAll()
	require.NoError(t, err)
	require.Len(t, entries, 4)

	// management, subscription, then countries in code order.
	assert.Equal(t, "a.example.com", entries[0].Name)
	assert.Equal(t, "b.example.com", entries[1].Name)
	assert.Equal(t, "d.example.com", entries[2].Name)
	assert.Equal(t, "c.example.com", entries[3].Name)

	codes, err := r.ListCountries()
	require.NoError(t, err)
	assert.Equal(t, []string{"DE", "NL"}, codes)

	nlEntries, err := r.ListByCountry("nl")
	require.NoError(t, err)
	require.Len(t, nlEntries, 1)
	assert.Equal(t, "c.example.com", nlEntries[0].Name)
}

func TestRegistryRemoveAcrossBuckets(t *testing.T) {
	r := newTestRegistry(t)

	nl, _ := CountryCategory("NL")
	_, err := r.Add(CategoryManagement, NewDomainEntry("gone.example.com"))
	require.NoError(t, err)
	_, err = r.Add(nl, NewDomainEntry("gone.example.com"))
	require.NoError(t, err)
	_, err = r.Add(nl, NewDomainEntry("stays.example.com"))
	require.NoError(t, err)

	removed, err := r.Remove("gone.example.com")
	require.NoError(t, err)
	assert.Equal(t, 2, removed)

	_, err = r.Find("gone.example.com")
	assert.True(t, errors.Is(err, ErrDomainNotFound))

	// Removing an absent name is not an error, just a zero count.
	removed, err = r.Remove("gone.example.com")
	require.NoError(t, err)
	assert.Zero(t, removed)
}

func TestRegistryRemovePrunesEmptyCountryBucket(t *testing.T) {
	r := newTestRegistry(t)

	nl, _ := CountryCategory("NL")
	_, err := r.Add(nl, NewDomainEntry("only.example.nl"))
	require.NoError(t, err)

	_, err = r.Remove("only.example.nl")
	require.NoError(t, err)

	codes, err := r.ListCountries()
	require.NoError(t, err)
	assert.Empty(t, codes)

	// The emptied bucket is gone from the document itself.
	data, err := os.ReadFile(r.Path())
	require.NoError(t, err)
	var doc Document
	require.NoError(t, json.Unmarshal(data, &doc))
	assert.NotContains(t, doc.Domains.Countries, "NL")
}

func TestRegistryUpdate(t *testing.T) {
	r := newTestRegistry(t)

	_, err := r.Add(CategoryManagement, NewDomainEntry("upd.example.com"))
	require.NoError(t, err)

	label := "Updated"
	interval := 5
	updated, err := r.Update("upd.example.com", UpdateFields{
		Label:                &label,
		CheckIntervalMinutes: &interval,
	})
	require.NoError(t, err)
	assert.Equal(t, "Updated", updated.Label)
	assert.Equal(t, 5, updated.CheckIntervalMinutes)

	found, err := r.Find("upd.example.com")
	require.NoError(t, err)
	assert.Equal(t, "Updated", found.Label)

	t.Run("not found", func(t *testing.T) {
		_, err := r.Update("missing.example.com", UpdateFields{Label: &label})
		assert.True(t, errors.Is(err, ErrDomainNotFound))
	})

	t.Run("rejects non-positive interval", func(t *testing.T) {
		bad := 0
		_, err := r.Update("upd.example.com", UpdateFields{CheckIntervalMinutes: &bad})
		assert.True(t, errors.Is(err, ErrInvalidInterval))
	})

	t.Run("only touches the first occurrence", func(t *testing.T) {
		nl, _ := CountryCategory("NL")
		_, err := r.Add(nl, NewDomainEntry("upd.example.com"))
		require.NoError(t, err)

		other := "First only"
		_, err = r.Update("upd.example.com", UpdateFields{Label: &other})
		require.NoError(t, err)

		nlEntries, err := r.ListByCountry("NL")
		require.NoError(t, err)
		require.Len(t, nlEntries, 1)
		assert.Equal(t, "upd.example.com", nlEntries[0].Label)
	})
}

func TestRegistryTouchLastCheck(t *testing.T) {
	r := newTestRegistry(t)

	nl, _ := CountryCategory("NL")
	_, err := r.Add(CategoryManagement, NewDomainEntry("touch.example.com"))
	require.NoError(t, err)
	_, err = r.Add(nl, NewDomainEntry("touch.example.com"))
	require.NoError(t, err)

	details := CheckDetails{
		Public: ProbeResult{Answers: []string{"1.2.3.4"}, Rcode: RcodeNoError},
		Local:  ProbeResult{Answers: []string{}, Rcode: RcodeNXDomain},
	}
	touched, err := r.TouchLastCheck("touch.example.com", VerdictFiltered, &details)
	require.NoError(t, err)
	require.NotNil(t, touched.LastStatus)
	assert.Equal(t, VerdictFiltered, *touched.LastStatus)
	require.NotNil(t, touched.LastCheckedAt)
	assert.WithinDuration(t, time.Now().UTC(), *touched.LastCheckedAt, 5*time.Second)

	// Unlike Update, the touch reaches every occurrence.
	for _, cat := range []Category{CategoryManagement, nl} {
		entries, err := r.ListByCategory(cat)
		require.NoError(t, err)
		require.Len(t, entries, 1)
		require.NotNil(t, entries[0].LastStatus, "category %s", cat)
		assert.Equal(t, VerdictFiltered, *entries[0].LastStatus)
		require.NotNil(t, entries[0].LastDetails)
		assert.Equal(t, details, *entries[0].LastDetails)
	}

	t.Run("nil details keeps previous details", func(t *testing.T) {
		_, err := r.TouchLastCheck("touch.example.com", VerdictOK, nil)
		require.NoError(t, err)

		found, err := r.Find("touch.example.com")
		require.NoError(t, err)
		assert.Equal(t, VerdictOK, *found.LastStatus)
		require.NotNil(t, found.LastDetails)
		assert.Equal(t, details, *found.LastDetails)
	})

	t.Run("not found", func(t *testing.T) {
		_, err := r.TouchLastCheck("missing.example.com", VerdictOK, nil)
		assert.True(t, errors.Is(err, ErrDomainNotFound))
	})
}

func TestRegistryConcurrentTouches(t *testing.T) {
	r := newTestRegistry(t)

	const n = 20
	names := make([]string, n)
	for i := range names {
		names[i] = fmt.Sprintf("host-%02d.example.com", i)
		_, err := r.Add(CategoryManagement, NewDomainEntry(names[i]))
		require.NoError(t, err)
	}

	var wg sync.WaitGroup
	for _, name := range names {
		wg.Add(1)
		go func(name string) {
			defer wg.Done()
			_, err := r.TouchLastCheck(name, VerdictOK, nil)
			assert.NoError(t, err)
		}(name)
	}
	wg.Wait()

	// No lost updates: every entry carries its status after the last
	// writer returns.
	entries, err := r.ListAll()
	require.NoError(t, err)
	require.Len(t, entries, n)
	for _, e := range entries {
		require.NotNil(t, e.LastStatus, "entry %s lost its update", e.Name)
		assert.Equal(t, VerdictOK, *e.LastStatus)
	}
}

func TestRegistryPersistedLayout(t *testing.T) {
	r := newTestRegistry(t)

	nl, _ := CountryCategory("NL")
	_, err := r.Add(CategoryManagement, NewDomainEntry("m.example.com"))
	require.NoError(t, err)
	_, err = r.Add(nl, NewDomainEntry("nl.example.com"))
	require.NoError(t, err)

	data, err := os.ReadFile(r.Path())
	require.NoError(t, err)

	var raw map[string]map[string]json.RawMessage
	require.NoError(t, json.Unmarshal(data, &raw))
	domains, ok := raw["domains"]
	require.True(t, ok, "top-level domains key missing")
	assert.Contains(t, domains, "management")
	assert.Contains(t, domains, "subscription")
	assert.Contains(t, domains, "countries")

	// No temp file left behind by the atomic replace.
	_, err = os.Stat(r.Path() + ".tmp")
	assert.True(t, os.IsNotExist(err))
}
