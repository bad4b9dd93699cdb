// Package hash provides keyed digests for short-lived secrets.
//
// One-time codes are stored as HMAC digests so a leaked cache entry does not
// reveal the code that was sent to the user.
package hash
