// Copyright (c) 2026 Sepehrz All rights reserved.
//
// By accessing or using this software, you agree to be bound by the terms
// of the License Agreement, which you can find at LICENSE files.

package filterwatch

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestClassify(t *testing.T) {
	tests := []struct {
		name   string
		public ProbeResult
		local  ProbeResult
		want   Verdict
	}{
		{
			name:   "matching answer sets",
			public: ProbeResult{Answers: []string{"1.2.3.4", "5.6.7.8"}, Rcode: RcodeNoError},
			local:  ProbeResult{Answers: []string{"5.6.7.8", "1.2.3.4"}, Rcode: RcodeNoError},
			want:   VerdictOK,
		},
		{
			name:   "same set with duplicates",
			public: ProbeResult{Answers: []string{"1.2.3.4", "1.2.3.4"}, Rcode: RcodeNoError},
			local:  ProbeResult{Answers: []string{"1.2.3.4"}, Rcode: RcodeNoError},
			want:   VerdictOK,
		},
		{
			name:   "substituted resolution",
			public: ProbeResult{Answers: []string{"1.2.3.4"}, Rcode: RcodeNoError},
			local:  ProbeResult{Answers: []string{"10.10.34.34"}, Rcode: RcodeNoError},
			want:   VerdictFiltered,
		},
		{
			name:   "local subset of public",
			public: ProbeResult{Answers: []string{"1.2.3.4", "5.6.7.8"}, Rcode: RcodeNoError},
			local:  ProbeResult{Answers: []string{"1.2.3.4"}, Rcode: RcodeNoError},
			want:   VerdictFiltered,
		},
		{
			name:   "local suppressed the record",
			public: ProbeResult{Answers: []string{"1.2.3.4"}, Rcode: RcodeNoError},
			local:  ProbeResult{Answers: []string{}, Rcode: RcodeNXDomain},
			want:   VerdictFiltered,
		},
		{
			name:   "local timed out",
			public: ProbeResult{Answers: []string{"1.2.3.4"}, Rcode: RcodeNoError},
			local:  ProbeResult{Answers: []string{}, Error: ProbeErrorTimeout},
			want:   VerdictFiltered,
		},
		{
			name:   "public NXDOMAIN",
			public: ProbeResult{Answers: []string{}, Rcode: RcodeNXDomain},
			local:  ProbeResult{Answers: []string{}, Rcode: RcodeNXDomain},
			want:   VerdictInconclusive,
		},
		{
			name:   "public no answer while local answers",
			public: ProbeResult{Answers: []string{}, Rcode: RcodeNoAnswer},
			local:  ProbeResult{Answers: []string{"1.2.3.4"}, Rcode: RcodeNoError},
			want:   VerdictInconclusive,
		},
		{
			name:   "public timed out alone",
			public: ProbeResult{Answers: []string{}, Error: ProbeErrorTimeout},
			local:  ProbeResult{Answers: []string{"1.2.3.4"}, Rcode: RcodeNoError},
			want:   VerdictInconclusive,
		},
		{
			name:   "both failed takes precedence over inconclusive",
			public: ProbeResult{Answers: []string{}, Error: ProbeErrorTimeout},
			local:  ProbeResult{Answers: []string{}, Error: "SERVFAIL"},
			want:   VerdictError,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			verdict, details := Classify(tt.public, tt.local)
			assert.Equal(t, tt.want, verdict)
			assert.Equal(t, tt.public, details.Public)
			assert.Equal(t, tt.local, details.Local)
		})
	}
}

func TestSameAnswerSet(t *testing.T) {
	tests := []struct {
		name string
		a    []string
		b    []string
		want bool
	}{
		{"identical", []string{"1.1.1.1"}, []string{"1.1.1.1"}, true},
		{"reordered", []string{"1.1.1.1", "2.2.2.2"}, []string{"2.2.2.2", "1.1.1.1"}, true},
		{"duplicates collapse", []string{"1.1.1.1", "1.1.1.1"}, []string{"1.1.1.1"}, true},
		{"disjoint", []string{"1.1.1.1"}, []string{"2.2.2.2"}, false},
		{"subset", []string{"1.1.1.1", "2.2.2.2"}, []string{"1.1.1.1"}, false},
		{"superset", []string{"1.1.1.1"}, []string{"1.1.1.1", "2.2.2.2"}, false},
		{"both empty", nil, nil, true},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.want, sameAnswerSet(tt.a, tt.b))
		})
	}
}

func TestProbeResultSummary(t *testing.T) {
	assert.Equal(t, "[1.2.3.4]", ProbeResult{Answers: []string{"1.2.3.4"}}.Summary())
	assert.Equal(t, "NXDOMAIN", ProbeResult{Rcode: RcodeNXDomain}.Summary())
	assert.Equal(t, "TIMEOUT", ProbeResult{Error: ProbeErrorTimeout}.Summary())
	assert.Equal(t, "[]", ProbeResult{}.Summary())
}
