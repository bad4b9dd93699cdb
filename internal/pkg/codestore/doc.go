// Package codestore keeps short-lived one-time codes keyed by channel key.
//
// Writes overwrite the previous value for a key and may carry an expiry.
// Redis is the shared store used by running instances; Memory serves tests
// and single-process development setups.
package codestore
