// Copyright (c) 2026 Sepehrz All rights reserved.
//
// By accessing or using this software, you agree to be bound by the terms
// of the License Agreement, which you can find at LICENSE files.

package filterwatch

import (
	"context"
	"fmt"
	"time"
)

// Notifier delivers a filtered-domain alert to one operator identity.
// Implementations are expected to be safe for concurrent use; the
// watcher fans a single alert out to every configured recipient and a
// failure for one recipient never aborts delivery to the others.
type Notifier interface {
	Notify(ctx context.Context, recipient, message string) error
}

// NotifierFunc adapts a plain function to the [Notifier] interface.
type NotifierFunc func(ctx context.Context, recipient, message string) error

// Notify calls f.
func (f NotifierFunc) Notify(ctx context.Context, recipient, message string) error {
	return f(ctx, recipient, message)
}

// formatAlert renders the operator-facing message for a filtered
// domain: both resolvers' answer sets (or their rcode/error marker)
// and the check timestamp.
func formatAlert(name string, details CheckDetails, at time.Time) string {
	return fmt.Sprintf(
		"⚠️ Domain *%s* appears FILTERED.\n\n"+
			"Public answers: %s\n"+
			"Local answers: %s\n"+
			"Check time: %s",
		name,
		details.Public.Summary(),
		details.Local.Summary(),
		at.UTC().Format(time.RFC3339),
	)
}
