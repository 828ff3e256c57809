// Copyright (c) 2026 Sepehrz All rights reserved.
//
// By accessing or using this software, you agree to be bound by the terms
// of the License Agreement, which you can find at LICENSE files.

package filterwatch

// Classify compares the public and local probe results for one domain
// and produces a verdict. It is a pure function with no failure mode.
//
// The rules, evaluated in order:
//
//  1. Both probes failed at the query layer: VerdictError.
//  2. The public resolver returned addresses:
//     a. local returned the same address set: VerdictOK.
//     b. local returned a different set: VerdictFiltered.
//     c. local returned nothing: VerdictFiltered.
//  3. The public resolver returned no addresses: VerdictInconclusive.
//
// Filtering is only inferable when the trusted baseline succeeds. Any
// ambiguity on the public side must not be reported as filtered, to
// avoid false alarms. Answers are compared as sets: resolvers commonly
// return the same addresses in a different order.
func Classify(public, local ProbeResult) (Verdict, CheckDetails) {
	details := CheckDetails{Public: public, Local: local}

	if public.Failed() && local.Failed() {
		return VerdictError, details
	}

	if len(public.Answers) > 0 {
		if len(local.Answers) > 0 && sameAnswerSet(public.Answers, local.Answers) {
			return VerdictOK, details
		}
		return VerdictFiltered, details
	}

	return VerdictInconclusive, details
}

// sameAnswerSet reports whether two answer lists contain the same
// addresses, ignoring order and duplicates.
func sameAnswerSet(a, b []string) bool {
	seen := make(map[string]struct{}, len(a))
	for _, addr := range a {
		seen[addr] = struct{}{}
	}

	matched := make(map[string]struct{}, len(b))
	for _, addr := range b {
		if _, ok := seen[addr]; !ok {
			return false
		}
		matched[addr] = struct{}{}
	}

	return len(matched) == len(seen)
}
