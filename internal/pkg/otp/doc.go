// Package otp implements time-based one-time passwords on pquerna/otp.
//
// TOTP is the RFC 6238 engine used to check authenticator codes: SHA-1 HMAC
// over a 30 second counter, 6 zero-padded digits and a tolerance of one step
// on each side, evaluated against an injected clock. Provisioner creates
// fresh secrets and otpauth:// URIs for authenticator apps.
package otp
