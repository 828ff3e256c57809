// Copyright (c) 2026 Sepehrz All rights reserved.
//
// By accessing or using this software, you agree to be bound by the terms
// of the License Agreement, which you can find at LICENSE files.

// Package filterwatch implements a domain-filtering detection engine:
// it probes monitored domains against two DNS resolvers, one presumed
// unfiltered (the public baseline) and one presumed subject to
// national-level filtering (the local resolver), classifies each
// domain's reachability, persists the result, and raises operator
// notifications when a domain transitions into a filtered state.
//
// # How Detection Works
//
// For each domain the engine issues one A-record query against each
// resolver and compares the answer sets:
//
//   - Both resolvers return the same set of addresses: the domain is
//     reachable, verdict "ok".
//   - The public resolver answers but the local resolver returns a
//     different set, or nothing at all: the local side suppressed or
//     substituted the records, verdict "filtered".
//   - The public resolver itself returns no addresses (NXDOMAIN,
//     AAAA-only, timeout): no baseline, verdict "inconclusive".
//   - Both queries fail at the transport layer: verdict "error".
//
// Filtering is only ever inferred when the trusted baseline succeeds.
// An unreachable public resolver must not produce false "filtered"
// alarms. Answers are compared as sets; resolvers routinely rotate the
// order of A records between queries. Note that resolvers serving
// different subsets of a larger record set across queries can still
// produce a false "filtered" verdict; this is a known limitation of
// set comparison.
//
// # The Registry
//
// Monitored domains live in a [Registry]: a JSON document grouped into
// a management section, a subscription section, and per-country
// buckets, guarded by a lock file so multiple processes can share one
// store. Every mutation is a complete load/mutate/save transaction
// under the lock, and saves replace the document atomically via a
// temporary file and rename. Each entry carries its own check cadence
// (check_interval_minutes) and its last known status.
//
// # The Watcher
//
// The [Watcher] drives periodic checks. Each cycle it scans the
// registry for due entries (never checked, or interval elapsed), fans
// them out under a bounded admission limit, runs the two probes per
// domain concurrently on a fixed DNS worker pool, classifies, persists
// via [Registry.TouchLastCheck], and notifies the configured
// recipients about filtered detections. Failures of individual
// domains, recipients, or whole cycles are logged and isolated; the
// periodic loop exits only on context cancellation.
//
// # Features
//
//   - Two-resolver classification — ok / filtered / inconclusive /
//     error verdicts from a public/local answer-set comparison
//   - Durable registry — lock-file guarded JSON store with atomic
//     replace-on-write, safe across goroutines and processes
//   - Per-domain scheduling — every entry carries its own check
//     interval; a cycle only touches entries that are due
//   - Bounded concurrency — an admission semaphore caps in-flight
//     domain checks, a separate fixed pool services the blocking DNS
//     exchanges
//   - Runtime reconfiguration — resolvers and the admission limit can
//     be swapped on a live watcher
//   - Notification fan-out — pluggable [Notifier] with per-recipient
//     failure isolation
//   - Recorder hook — observe every completed check, e.g. for an audit
//     trail or metrics, without coupling the engine to a store
//   - Resolver health checks — online status and latency for both
//     resolvers
//   - Panic recovery — check units are protected with automatic
//     recovery and typed errors
//   - Functional options — clean, idiomatic configuration pattern
//   - Context-aware — full support for timeouts and cancellation via
//     [context.Context]
//   - Domain validation — normalization (including IDN punycode) and
//     validation of domain names
//   - Typed errors — sentinel errors for [errors.Is] matching
//
// # Quick Start
//
// Run the periodic worker over a file-backed registry:
//
//	registry := filterwatch.NewRegistry("domains.json")
//
//	_, err := registry.Add(filterwatch.CategoryManagement,
//	    filterwatch.NewDomainEntry("panel.example.com"))
//	if err != nil && !errors.Is(err, filterwatch.ErrDuplicateDomain) {
//	    log.Fatal(err)
//	}
//
//	w, err := filterwatch.New(registry,
//	    filterwatch.WithResolvers("8.8.8.8", "5.200.200.200"),
//	    filterwatch.WithRecipients("1001", "1002"),
//	    filterwatch.WithNotifier(myNotifier),
//	)
//	if err != nil {
//	    log.Fatal(err)
//	}
//	defer w.Close()
//
//	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt)
//	defer stop()
//	w.Run(ctx)
//
// Or run a single ad-hoc probe pair without touching any store:
//
//	public := filterwatch.Probe(ctx, "blocked.example", "8.8.8.8", 4*time.Second)
//	local := filterwatch.Probe(ctx, "blocked.example", "5.200.200.200", 4*time.Second)
//	verdict, _ := filterwatch.Classify(public, local)
//
// # Concurrency Model
//
// Two independent knobs bound the engine's fan-out. The admission
// limit ([WithConcurrency], default 6) caps how many domains are
// checked simultaneously, however many are due. The DNS worker pool
// ([WithDNSWorkers], default 10) caps how many blocking DNS exchanges
// run at once; it must be at least twice the admission limit because
// every admitted check runs its two probes concurrently. The registry
// is the only shared mutable resource and serializes itself; no
// ordering exists between sibling checks within a cycle.
//
// # Errors
//
// Probe failures are data, not errors: [Probe] never fails, it encodes
// timeouts and resolver exceptions into the returned [ProbeResult].
// Registry operations return hard errors, matched with [errors.Is]
// against the package sentinels such as [ErrLockTimeout],
// [ErrDuplicateDomain], and [ErrDomainNotFound]. The watcher isolates
// per-domain and per-recipient failures and recovers check-unit panics
// into logged [ErrInternalPanic] wrappers.
package filterwatch
