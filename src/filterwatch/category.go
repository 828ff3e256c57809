// Copyright (c) 2026 Sepehrz All rights reserved.
//
// By accessing or using this software, you agree to be bound by the terms
// of the License Agreement, which you can find at LICENSE files.

package filterwatch

import (
	"fmt"
	"strings"
)

// Category identifies one registry slot: a fixed section or a country
// bucket in the form "countries/<CODE>".
type Category string

// Fixed categories.
const (
	CategoryManagement   Category = "management"
	CategorySubscription Category = "subscription"
)

// countriesPrefix prefixes country bucket categories.
const countriesPrefix = "countries/"

// CountryCategory builds the category for a two-letter country code.
func CountryCategory(code string) (Category, error) {
	cc, err := normalizeCountryCode(code)
	if err != nil {
		return "", err
	}
	return Category(countriesPrefix + cc), nil
}

// ParseCategory parses an operator-supplied category path: "management",
// "subscription", or "countries/<CODE>". Matching is case-insensitive
// and country codes are normalized to upper case.
func ParseCategory(s string) (Category, error) {
	c := strings.ToLower(strings.TrimSpace(s))
	switch c {
	case string(CategoryManagement):
		return CategoryManagement, nil
	case string(CategorySubscription):
		return CategorySubscription, nil
	}
	if code, ok := strings.CutPrefix(c, countriesPrefix); ok {
		return CountryCategory(code)
	}
	return "", fmt.Errorf("%w: %q (use management, subscription, or countries/<CODE>)", ErrInvalidCategory, s)
}

// IsCountry reports whether the category is a country bucket.
func (c Category) IsCountry() bool {
	return strings.HasPrefix(string(c), countriesPrefix)
}

// CountryCode returns the country code for a country bucket, or ""
// for the fixed categories.
func (c Category) CountryCode() string {
	if code, ok := strings.CutPrefix(string(c), countriesPrefix); ok {
		return code
	}
	return ""
}

func (c Category) String() string { return string(c) }

// normalizeCountryCode validates and upper-cases a two-letter code.
func normalizeCountryCode(code string) (string, error) {
	cc := strings.ToUpper(strings.TrimSpace(code))
	if len(cc) != 2 || cc[0] < 'A' || cc[0] > 'Z' || cc[1] < 'A' || cc[1] > 'Z' {
		return "", fmt.Errorf("%w: country code %q must be two letters", ErrInvalidCategory, code)
	}
	return cc, nil
}
