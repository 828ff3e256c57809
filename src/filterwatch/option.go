// Copyright (c) 2026 Sepehrz All rights reserved.
//
// By accessing or using this software, you agree to be bound by the terms
// of the License Agreement, which you can find at LICENSE files.

package filterwatch

import (
	"context"
	"time"

	"github.com/miekg/dns"
	"go.uber.org/zap"
)

// Option is a functional option for configuring a [Watcher].
type Option func(*Watcher)

// WithResolvers sets the public (trusted baseline) and local (under
// test) resolver addresses. The defaults are [DefaultPublicResolver]
// and [DefaultLocalResolver]. Addresses may omit the port; :53 is
// assumed.
func WithResolvers(public, local string) Option {
	return func(w *Watcher) {
		w.public = public
		w.local = local
	}
}

// WithTimeout sets the timeout for each DNS query.
// The default is 4 seconds.
//
// This option has no effect if a custom DNS client is set via
// [WithDNSClient], as the custom client's own Timeout configuration
// takes precedence.
func WithTimeout(d time.Duration) Option {
	return func(w *Watcher) {
		if d > 0 {
			w.timeout = d
		}
	}
}

// WithCycleInterval sets the sleep between periodic cycles in
// [Watcher.Run]. The default is 60 minutes. Entries carry their own
// per-domain check intervals; the cycle interval only bounds how often
// the registry is scanned for due entries.
func WithCycleInterval(d time.Duration) Option {
	return func(w *Watcher) {
		if d > 0 {
			w.cycleInterval = d
		}
	}
}

// WithConcurrency sets the admission limit: how many domains may be
// checked simultaneously within one cycle. The default is 6. Use
// [Watcher.SetConcurrency] to change it at runtime.
func WithConcurrency(n int) Option {
	return func(w *Watcher) {
		if n > 0 {
			w.sem = make(chan struct{}, n)
		}
	}
}

// WithDNSWorkers sets the size of the worker pool servicing blocking
// DNS exchanges. The default is 10. Size it at least twice the
// admission limit: every admitted check holds two probe slots
// concurrently, and a smaller pool would serialize them.
func WithDNSWorkers(n int) Option {
	return func(w *Watcher) {
		if n > 0 {
			w.dnsWorkers = n
		}
	}
}

// WithDNSClient sets a custom [dns.Client] for all DNS operations.
// This allows full control over the transport configuration, including
// TCP transport (Net: "tcp"), DNS-over-TLS (Net: "tcp-tls" with
// TLSConfig), and custom Dialers for proxy or interface binding.
//
// When set, the [WithTimeout] option will not affect DNS queries;
// the client's own Timeout will be used instead.
//
// Passing nil is a no-op and the default UDP client will be used.
func WithDNSClient(client *dns.Client) Option {
	return func(w *Watcher) {
		if client != nil {
			w.dnsClient = client
		}
	}
}

// WithNotifier sets the delivery channel for filtered-domain alerts.
// Without a notifier the watcher logs alerts instead of delivering
// them.
func WithNotifier(n Notifier) Option {
	return func(w *Watcher) {
		w.notifier = n
	}
}

// WithRecipients sets the operator identities that receive
// filtered-domain alerts. With an empty list the notifier is never
// invoked.
func WithRecipients(ids ...string) Option {
	return func(w *Watcher) {
		w.recipients = ids
	}
}

// WithRecorder registers a hook invoked after every persisted check,
// e.g. to feed an audit trail or metrics. The hook runs on the check
// unit's goroutine and should return quickly.
func WithRecorder(fn func(context.Context, CheckEvent)) Option {
	return func(w *Watcher) {
		w.recorder = fn
	}
}

// WithLogger sets the logger for cycle and notification events.
// The default is a no-op logger, keeping the SDK quiet unless wired.
func WithLogger(log *zap.SugaredLogger) Option {
	return func(w *Watcher) {
		if log != nil {
			w.log = log
		}
	}
}
