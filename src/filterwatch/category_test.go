// Copyright (c) 2026 Sepehrz All rights reserved.
//
// By accessing or using this software, you agree to be bound by the terms
// of the License Agreement, which you can find at LICENSE files.

package filterwatch

import (
	"errors"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestParseCategory(t *testing.T) {
	tests := []struct {
		input   string
		want    Category
		wantErr bool
	}{
		{"management", CategoryManagement, false},
		{"Management", CategoryManagement, false},
		{"subscription", CategorySubscription, false},
		{"countries/NL", Category("countries/NL"), false},
		{"countries/nl", Category("countries/NL"), false},
		{" countries/ir ", Category("countries/IR"), false},

		{"", "", true},
		{"other", "", true},
		{"countries/", "", true},
		{"countries/NLD", "", true},
		{"countries/n1", "", true},
	}

	for _, tt := range tests {
		t.Run(tt.input, func(t *testing.T) {
			got, err := ParseCategory(tt.input)
			if tt.wantErr {
				assert.True(t, errors.Is(err, ErrInvalidCategory))
				return
			}
			require.NoError(t, err)
			assert.Equal(t, tt.want, got)
		})
	}
}

func TestCategoryCountry(t *testing.T) {
	cat, err := CountryCategory("de")
	require.NoError(t, err)

	assert.Equal(t, Category("countries/DE"), cat)
	assert.True(t, cat.IsCountry())
	assert.Equal(t, "DE", cat.CountryCode())

	assert.False(t, CategoryManagement.IsCountry())
	assert.Empty(t, CategoryManagement.CountryCode())
}
