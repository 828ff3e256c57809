// Copyright (c) 2026 Sepehrz All rights reserved.
//
// By accessing or using this software, you agree to be bound by the terms
// of the License Agreement, which you can find at LICENSE files.

package filterwatch

import (
	"fmt"
	"time"
)

// Verdict is the outcome of comparing a public and a local resolver
// response for one domain.
type Verdict string

// Possible verdicts.
const (
	// VerdictOK means both resolvers returned the same answer set.
	VerdictOK Verdict = "ok"

	// VerdictFiltered means the public resolver answered but the local
	// resolver suppressed or substituted the records.
	VerdictFiltered Verdict = "filtered"

	// VerdictInconclusive means the public resolver could not confirm
	// the domain resolves, so no filtering verdict can be drawn.
	VerdictInconclusive Verdict = "inconclusive"

	// VerdictError means both resolvers failed at the query layer.
	VerdictError Verdict = "error"
)

// Rcode markers stored in [ProbeResult.Rcode] for non-exceptional
// outcomes. NO_ANSWER is synthetic: the response was NOERROR but carried
// no A records (e.g. AAAA-only domains).
const (
	RcodeNoError  = "NOERROR"
	RcodeNXDomain = "NXDOMAIN"
	RcodeNoAnswer = "NO_ANSWER"
)

// ProbeErrorTimeout is the value of [ProbeResult.Error] when the query
// exceeded its deadline.
const ProbeErrorTimeout = "TIMEOUT"

// ProbeResult is the normalized outcome of a single A-record query
// against one nameserver. All failure modes are encoded in the struct
// itself; a probe never returns an error to its caller.
type ProbeResult struct {
	// Answers holds the resolved IPv4 addresses. Order is not
	// significant; classification treats it as a set.
	Answers []string `json:"answers"`

	// Rcode classifies a non-exceptional negative outcome
	// (NXDOMAIN, NO_ANSWER) or marks success (NOERROR). Empty when
	// the query failed at the transport layer.
	Rcode string `json:"rcode,omitempty"`

	// Error carries exceptional failures: "TIMEOUT" for deadline
	// expiry, the resolver-layer message otherwise. Empty on success.
	Error string `json:"error,omitempty"`
}

// Failed reports whether the probe failed at the query layer, as
// opposed to a clean negative answer such as NXDOMAIN.
func (r ProbeResult) Failed() bool { return r.Error != "" }

// Summary renders the result for operator-facing messages: the answer
// list when present, otherwise the rcode or error marker.
func (r ProbeResult) Summary() string {
	if len(r.Answers) > 0 {
		return fmt.Sprintf("%v", r.Answers)
	}
	if r.Error != "" {
		return r.Error
	}
	if r.Rcode != "" {
		return r.Rcode
	}
	return "[]"
}

// CheckDetails pairs the two raw probe results that produced a verdict.
// It is persisted into the registry for operator inspection and attached
// to notifications.
type CheckDetails struct {
	Public ProbeResult `json:"public"`
	Local  ProbeResult `json:"local"`
}

// CheckEvent describes one completed domain check. Events are handed to
// the optional recorder hook (see [WithRecorder]) after the registry has
// been updated.
type CheckEvent struct {
	// Domain is the checked domain name.
	Domain string

	// Category is the registry slot the entry lives in, e.g.
	// "management" or "countries/NL".
	Category string

	// Verdict is the classifier outcome.
	Verdict Verdict

	// Details holds both raw probe results.
	Details CheckDetails

	// CheckedAt is the UTC completion time of the check.
	CheckedAt time.Time
}

// ResolverStatus reports the health of a single configured resolver,
// as returned by [Watcher.ResolverStatus].
type ResolverStatus struct {
	// Resolver is the nameserver address that was probed.
	Resolver string

	// Role is RolePublic or RoleLocal.
	Role string

	// Online indicates whether the resolver answered the health query.
	Online bool

	// LatencyMs is the round-trip time in milliseconds.
	// Only meaningful when Online is true.
	LatencyMs int64

	// Error is non-nil if the health check failed.
	Error error
}

// Resolver roles used in [ResolverStatus.Role].
const (
	RolePublic = "public"
	RoleLocal  = "local"
)
