// Copyright (c) 2026 Sepehrz All rights reserved.
//
// By accessing or using this software, you agree to be bound by the terms
// of the License Agreement, which you can find at LICENSE files.

package filterwatch

// WithAdmins sets the operator identities that receive filtered-domain
// alerts.
//
// Deprecated: Use [WithRecipients] instead. The watcher delivers to any
// operator identity understood by the configured [Notifier], not only
// admin accounts, so the old name was misleading.
func WithAdmins(ids ...string) Option {
	return WithRecipients(ids...)
}
