// Copyright (c) 2026 Sepehrz All rights reserved.
//
// By accessing or using this software, you agree to be bound by the terms
// of the License Agreement, which you can find at LICENSE files.

package filterwatch

import (
	"context"
	"errors"
	"fmt"
	"net"
	"strings"
	"time"

	"github.com/miekg/dns"
)

// healthCheckDomain is resolved by [checkResolverHealth] to decide
// whether a resolver is answering at all.
const healthCheckDomain = "google.com"

// ensurePort appends the default DNS port when the server address
// carries none.
func ensurePort(server string) string {
	if !strings.Contains(server, ":") {
		return server + ":53"
	}
	return server
}

// Probe issues a single A-record query for domain against nameserver,
// bounded by timeout, and normalizes the outcome into a [ProbeResult].
//
// It never returns an error: timeouts, negative rcodes, and transport
// failures are all encoded in the result so that callers running many
// probes concurrently cannot be aborted by one bad domain.
func Probe(ctx context.Context, domain, nameserver string, timeout time.Duration) ProbeResult {
	client := &dns.Client{Timeout: timeout}
	return probe(ctx, client, domain, nameserver, timeout)
}

// probe is the core query path shared by [Probe] and the watcher's
// configured client.
func probe(ctx context.Context, client *dns.Client, domain, server string, timeout time.Duration) ProbeResult {
	msg := new(dns.Msg)
	msg.SetQuestion(dns.Fqdn(domain), dns.TypeA)
	msg.RecursionDesired = true
	msg.SetEdns0(defaultEDNS0Size, false)

	ctx, cancel := context.WithTimeout(ctx, timeout)
	defer cancel()

	resp, err := exchange(ctx, client, msg, ensurePort(server))
	if err != nil {
		if isTimeout(err) {
			return ProbeResult{Answers: []string{}, Error: ProbeErrorTimeout}
		}
		return ProbeResult{Answers: []string{}, Error: err.Error()}
	}

	switch resp.Rcode {
	case dns.RcodeSuccess:
		answers := extractA(resp)
		if len(answers) == 0 {
			return ProbeResult{Answers: []string{}, Rcode: RcodeNoAnswer}
		}
		return ProbeResult{Answers: answers, Rcode: RcodeNoError}
	case dns.RcodeNameError:
		return ProbeResult{Answers: []string{}, Rcode: RcodeNXDomain}
	default:
		return ProbeResult{Answers: []string{}, Error: rcodeString(resp.Rcode)}
	}
}

// exchange sends the prepared query to the server. The call runs in its
// own goroutine so a hung exchange cannot outlive context cancellation.
func exchange(ctx context.Context, client *dns.Client, msg *dns.Msg, server string) (*dns.Msg, error) {
	type dnsResult struct {
		msg *dns.Msg
		err error
	}
	ch := make(chan dnsResult, 1)

	go func() {
		resp, _, err := client.ExchangeContext(ctx, msg, server)
		ch <- dnsResult{msg: resp, err: err}
	}()

	select {
	case <-ctx.Done():
		return nil, ctx.Err()
	case result := <-ch:
		if result.err != nil {
			return nil, result.err
		}
		if result.msg == nil {
			return nil, fmt.Errorf("empty response from %s", server)
		}
		return result.msg, nil
	}
}

// extractA collects the IPv4 addresses from the answer section.
// CNAME and other chained records are not answers by themselves.
func extractA(msg *dns.Msg) []string {
	answers := []string{}
	for _, rr := range msg.Answer {
		if a, ok := rr.(*dns.A); ok {
			answers = append(answers, a.A.String())
		}
	}
	return answers
}

// isTimeout reports whether err stems from the query deadline expiring,
// at either the context or the transport layer.
func isTimeout(err error) bool {
	if errors.Is(err, context.DeadlineExceeded) {
		return true
	}
	var nerr net.Error
	return errors.As(err, &nerr) && nerr.Timeout()
}

// rcodeString renders a non-success response code such as SERVFAIL or
// REFUSED for the error field.
func rcodeString(rcode int) string {
	if s, ok := dns.RcodeToString[rcode]; ok {
		return s
	}
	return fmt.Sprintf("RCODE_%d", rcode)
}

// checkResolverHealth probes a single resolver by resolving a
// well-known domain and measuring the latency.
func checkResolverHealth(ctx context.Context, client *dns.Client, server, role string, timeout time.Duration) ResolverStatus {
	start := time.Now()

	res := probe(ctx, client, healthCheckDomain, server, timeout)
	latency := time.Since(start).Milliseconds()

	if res.Failed() {
		return ResolverStatus{
			Resolver: server,
			Role:     role,
			Online:   false,
			Error:    errors.New(res.Error),
		}
	}

	return ResolverStatus{
		Resolver:  server,
		Role:      role,
		Online:    true,
		LatencyMs: latency,
	}
}
