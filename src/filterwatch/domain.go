// Copyright (c) 2026 Sepehrz All rights reserved.
//
// By accessing or using this software, you agree to be bound by the terms
// of the License Agreement, which you can find at LICENSE files.

package filterwatch

import (
	"fmt"
	"strings"

	"golang.org/x/net/idna"
)

// IsValidDomain reports whether domain is a syntactically valid domain name.
//
// A valid domain must have at least two labels separated by dots,
// each label must be 1-63 characters long, contain only ASCII
// letters, digits, or hyphens, and must not start or end with a hyphen.
// The TLD (last label) must be at least 2 characters and contain only letters.
func IsValidDomain(domain string) bool {
	if domain == "" || len(domain) > 253 {
		return false
	}

	labels := strings.Split(domain, ".")
	if len(labels) < 2 {
		return false
	}

	for i, label := range labels {
		if len(label) < 1 || len(label) > 63 {
			return false
		}

		// Labels must not start or end with a hyphen.
		if label[0] == '-' || label[len(label)-1] == '-' {
			return false
		}

		isTLD := i == len(labels)-1
		if isTLD && len(label) < 2 {
			return false
		}

		for _, c := range label {
			switch {
			case c >= 'a' && c <= 'z':
				// ok
			case c >= 'A' && c <= 'Z':
				// ok
			case c >= '0' && c <= '9':
				if isTLD {
					return false // TLD must be letters only.
				}
			case c == '-':
				if isTLD {
					return false // TLD must be letters only.
				}
			default:
				return false
			}
		}
	}

	return true
}

// NormalizeDomain canonicalizes a user-supplied domain name: trims
// whitespace and any trailing dot, lowercases, and converts Unicode
// names to their ASCII (punycode) form. It returns [ErrInvalidDomain]
// if the result is not a valid hostname.
func NormalizeDomain(domain string) (string, error) {
	d := strings.ToLower(strings.TrimSpace(domain))
	d = strings.TrimSuffix(d, ".")
	if d == "" {
		return "", fmt.Errorf("%w: empty name", ErrInvalidDomain)
	}

	ascii, err := idna.Lookup.ToASCII(d)
	if err != nil {
		return "", fmt.Errorf("%w: %q: %v", ErrInvalidDomain, domain, err)
	}

	if !IsValidDomain(ascii) {
		return "", fmt.Errorf("%w: %q", ErrInvalidDomain, domain)
	}
	return ascii, nil
}

// normalizeDomain lowercases and trims a domain name without validating
// it. Used on lookup paths where invalid input simply matches nothing.
func normalizeDomain(domain string) string {
	return strings.TrimSuffix(strings.ToLower(strings.TrimSpace(domain)), ".")
}
