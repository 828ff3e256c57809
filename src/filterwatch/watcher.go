// Copyright (c) 2026 Sepehrz All rights reserved.
//
// By accessing or using this software, you agree to be bound by the terms
// of the License Agreement, which you can find at LICENSE files.

package filterwatch

import (
	"context"
	"fmt"
	"sync"
	"time"

	"github.com/miekg/dns"
	"go.uber.org/zap"
)

// Default configuration values.
const (
	// DefaultTimeout bounds each DNS query.
	DefaultTimeout = 4 * time.Second

	// DefaultConcurrency is the admission limit: how many domains may
	// be checked simultaneously within one cycle.
	DefaultConcurrency = 6

	// DefaultDNSWorkers is the size of the pool servicing blocking DNS
	// exchanges. Must be at least twice the admission limit, since
	// every admitted check runs two probes concurrently.
	DefaultDNSWorkers = 10

	// DefaultCycleInterval is the sleep between periodic cycles.
	DefaultCycleInterval = 60 * time.Minute

	defaultEDNS0Size = 1232 // Recommended size to prevent IP fragmentation
)

// Default resolvers: Google as the unfiltered baseline, the national
// resolver as the side under test.
const (
	DefaultPublicResolver = "8.8.8.8"
	DefaultLocalResolver  = "5.200.200.200"
)

// Watcher drives the detection engine: it reads due entries from the
// registry, probes each against the public and the local resolver,
// classifies the pair, persists the outcome, and raises notifications
// when a domain turns up filtered.
//
// Construct with [New]; run either a single [Watcher.RunCycle] or the
// periodic [Watcher.Run] loop. A Watcher is safe for concurrent use;
// [Watcher.SetConcurrency] and [Watcher.SetResolvers] may be called
// while cycles are running.
type Watcher struct {
	registry *Registry

	timeout       time.Duration
	cycleInterval time.Duration
	dnsWorkers    int

	notifier   Notifier
	recipients []string
	recorder   func(context.Context, CheckEvent)
	log        *zap.SugaredLogger

	dnsClient *dns.Client
	pool      *workPool
	inflight  *inflightSet

	// mu guards the resolver pair and the admission semaphore, both of
	// which are reconfigurable at runtime. The semaphore is swapped
	// whole; already-admitted units keep draining the one they hold.
	mu     sync.Mutex
	public string
	local  string
	sem    chan struct{}

	now func() time.Time
}

// CycleStats summarizes one completed cycle.
type CycleStats struct {
	// Due is how many entries were due and dispatched.
	Due int

	// Filtered is how many checks produced a filtered verdict.
	Filtered int

	// Errors is how many units failed outside the probe layer
	// (persistence failure or recovered panic).
	Errors int

	// Elapsed is the wall-clock duration of the cycle.
	Elapsed time.Duration
}

// New creates a [Watcher] over the given registry with the default
// resolvers and limits. Use functional options to customize behavior.
//
//	// Default configuration:
//	w, err := filterwatch.New(registry)
//
//	// Custom configuration:
//	w, err := filterwatch.New(registry,
//	    filterwatch.WithResolvers("1.1.1.1", "10.202.10.202"),
//	    filterwatch.WithConcurrency(12),
//	)
//
// Call [Watcher.Close] when done to release the DNS worker pool.
func New(registry *Registry, opts ...Option) (*Watcher, error) {
	w := &Watcher{
		registry:      registry,
		public:        DefaultPublicResolver,
		local:         DefaultLocalResolver,
		timeout:       DefaultTimeout,
		cycleInterval: DefaultCycleInterval,
		dnsWorkers:    DefaultDNSWorkers,
		inflight:      newInflightSet(),
		now:           time.Now,
	}

	for _, opt := range opts {
		opt(w)
	}

	if w.public == "" || w.local == "" {
		return nil, ErrNoResolvers
	}
	if w.sem == nil {
		w.sem = make(chan struct{}, DefaultConcurrency)
	}
	if w.log == nil {
		w.log = zap.NewNop().Sugar()
	}
	if w.dnsClient == nil {
		w.dnsClient = &dns.Client{
			Timeout: w.timeout,
			Net:     "udp",
		}
	}
	w.pool = newWorkPool(w.dnsWorkers)

	return w, nil
}

// Run executes check cycles forever, sleeping the configured interval
// between them, until ctx is canceled. A failure inside one cycle is
// logged and followed by the normal sleep; the loop exits only on
// cancellation. Cancellation during the sleep is honored immediately.
func (w *Watcher) Run(ctx context.Context) error {
	public, local := w.Resolvers()
	w.log.Infow("periodic worker starting",
		"interval", w.cycleInterval,
		"public", public,
		"local", local,
	)

	timer := time.NewTimer(0)
	defer timer.Stop()
	// Consume the immediate first fire so the first cycle starts now.
	<-timer.C

	for {
		stats, err := w.RunCycle(ctx)
		if err != nil {
			w.log.Errorw("check cycle failed", "err", err)
		} else if stats.Due > 0 {
			w.log.Infow("check cycle complete",
				"due", stats.Due,
				"filtered", stats.Filtered,
				"errors", stats.Errors,
				"elapsed", stats.Elapsed,
			)
		}

		timer.Reset(w.cycleInterval)
		select {
		case <-ctx.Done():
			w.log.Infow("periodic worker stopping", "reason", ctx.Err())
			return ctx.Err()
		case <-timer.C:
		}
	}
}

// RunCycle performs one pass over the registry: every entry whose
// check interval has elapsed is probed against both resolvers, the
// result is persisted, and filtered detections are notified. A cycle
// with zero due entries returns immediately.
//
// Failures of individual units are isolated: a panic or persistence
// error for one domain is logged and counted in [CycleStats.Errors]
// without disturbing sibling units.
func (w *Watcher) RunCycle(ctx context.Context) (CycleStats, error) {
	start := w.now()

	entries, err := w.registry.ListAll()
	if err != nil {
		return CycleStats{}, fmt.Errorf("list domains: %w", err)
	}

	now := w.now().UTC()
	due := entries[:0]
	for _, e := range entries {
		if e.IsDue(now) {
			due = append(due, e)
		}
	}
	if len(due) == 0 {
		return CycleStats{Elapsed: w.now().Sub(start)}, nil
	}

	// Snapshot the semaphore so a concurrent SetConcurrency swap
	// cannot strand our releases in a different channel.
	w.mu.Lock()
	sem := w.sem
	w.mu.Unlock()

	var (
		wg       sync.WaitGroup
		statsMu  sync.Mutex
		filtered int
		failures int
	)

Loop:
	for _, entry := range due {
		// Stop admitting new units once canceled; admitted ones run
		// to completion, each is short and idempotent.
		select {
		case <-ctx.Done():
			break Loop
		case sem <- struct{}{}:
		}

		wg.Add(1)
		go func(e DomainEntry) {
			defer wg.Done()
			defer func() { <-sem }() // Release semaphore
			defer func() {
				if r := recover(); r != nil {
					w.log.Errorw("check unit panicked",
						"domain", e.Name,
						"err", fmt.Errorf("%w: %v", ErrInternalPanic, r),
					)
					statsMu.Lock()
					failures++
					statsMu.Unlock()
				}
			}()

			event, err := w.CheckDomain(ctx, e)
			statsMu.Lock()
			switch {
			case err != nil:
				failures++
			case event.Verdict == VerdictFiltered:
				filtered++
			}
			statsMu.Unlock()
		}(entry)
	}

	wg.Wait()

	stats := CycleStats{
		Due:      len(due),
		Filtered: filtered,
		Errors:   failures,
		Elapsed:  w.now().Sub(start),
	}
	if ctx.Err() != nil {
		return stats, ctx.Err()
	}
	return stats, nil
}

// CheckDomain runs the full check unit for one entry: both probes
// concurrently on the DNS worker pool, classification, persistence via
// the registry, and the filtered-domain notification fan-out. It
// returns the completed [CheckEvent].
//
// The entry is skipped (without error) if another unit is already
// checking the same name; the returned event then carries an empty
// verdict.
func (w *Watcher) CheckDomain(ctx context.Context, entry DomainEntry) (CheckEvent, error) {
	if entry.Name == "" {
		return CheckEvent{}, fmt.Errorf("%w: empty name", ErrInvalidDomain)
	}
	if !w.inflight.begin(entry.Name) {
		w.log.Debugw("domain already being checked, skipping", "domain", entry.Name)
		return CheckEvent{}, nil
	}
	defer w.inflight.end(entry.Name)

	public, local := w.Resolvers()

	var (
		wg        sync.WaitGroup
		pubResult ProbeResult
		locResult ProbeResult
	)
	wg.Add(2)
	w.probeOn(ctx, &wg, entry.Name, public, &pubResult)
	w.probeOn(ctx, &wg, entry.Name, local, &locResult)
	wg.Wait()

	verdict, details := Classify(pubResult, locResult)
	checkedAt := w.now().UTC()

	event := CheckEvent{
		Domain:    entry.Name,
		Category:  entry.Category.String(),
		Verdict:   verdict,
		Details:   details,
		CheckedAt: checkedAt,
	}

	if _, err := w.registry.TouchLastCheck(entry.Name, verdict, &details); err != nil {
		w.log.Errorw("failed to persist check result", "domain", entry.Name, "err", err)
		return event, err
	}

	if w.recorder != nil {
		w.recorder(ctx, event)
	}

	if verdict == VerdictFiltered && entry.NotifyAdmins {
		w.notifyFiltered(ctx, entry.Name, details, checkedAt)
	}
	return event, nil
}

// probeOn schedules one probe on the DNS worker pool, writing the
// outcome into out and marking wg done when finished. A refused
// submission (pool closed, or cancellation while queued) is encoded
// into the result like any other probe failure.
func (w *Watcher) probeOn(ctx context.Context, wg *sync.WaitGroup, domain, server string, out *ProbeResult) {
	if err := w.pool.submit(ctx.Done(), func() {
		defer wg.Done()
		*out = probe(ctx, w.dnsClient, domain, server, w.timeout)
	}); err != nil {
		*out = ProbeResult{Answers: []string{}, Error: err.Error()}
		wg.Done()
	}
}

// notifyFiltered fans the alert out to every configured recipient.
// Per-recipient failures are logged, never escalated. Without a
// notifier the alert is logged as a fallback.
func (w *Watcher) notifyFiltered(ctx context.Context, name string, details CheckDetails, at time.Time) {
	message := formatAlert(name, details, at)

	if w.notifier == nil {
		w.log.Warnw("notifier not configured: filtered domain",
			"domain", name,
			"recipients", w.recipients,
		)
		return
	}
	for _, recipient := range w.recipients {
		if err := w.notifier.Notify(ctx, recipient, message); err != nil {
			w.log.Errorw("failed to notify recipient",
				"recipient", recipient,
				"domain", name,
				"err", err,
			)
		}
	}
}

// ResolverStatus probes both configured resolvers with a well-known
// domain and reports their health, public first.
func (w *Watcher) ResolverStatus(ctx context.Context) []ResolverStatus {
	public, local := w.Resolvers()

	statuses := make([]ResolverStatus, 2)
	var wg sync.WaitGroup
	wg.Add(2)
	go func() {
		defer wg.Done()
		statuses[0] = checkResolverHealth(ctx, w.dnsClient, public, RolePublic, w.timeout)
	}()
	go func() {
		defer wg.Done()
		statuses[1] = checkResolverHealth(ctx, w.dnsClient, local, RoleLocal, w.timeout)
	}()
	wg.Wait()

	return statuses
}

// Resolvers returns the current public and local resolver addresses.
func (w *Watcher) Resolvers() (string, string) {
	w.mu.Lock()
	defer w.mu.Unlock()
	return w.public, w.local
}

// SetResolvers replaces the resolver pair on a running [Watcher].
// The change takes effect for checks that start after this call
// returns; in-flight checks keep the pair they snapshotted. An empty
// address leaves the corresponding resolver unchanged.
func (w *Watcher) SetResolvers(public, local string) {
	w.mu.Lock()
	defer w.mu.Unlock()
	if public != "" {
		w.public = public
	}
	if local != "" {
		w.local = local
	}
}

// SetConcurrency replaces the admission semaphore for subsequent
// cycles. Units admitted under the previous limit drain unaffected.
// Non-positive values are ignored.
func (w *Watcher) SetConcurrency(n int) {
	if n <= 0 {
		return
	}
	w.mu.Lock()
	w.sem = make(chan struct{}, n)
	w.mu.Unlock()
}

// Close releases the DNS worker pool. The watcher must not be used
// after Close; call it once the periodic worker has exited.
func (w *Watcher) Close() {
	w.pool.close()
}
