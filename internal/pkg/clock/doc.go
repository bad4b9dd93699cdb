// Package clock provides a tiny time abstraction.
//
// Code that depends on wall time (TOTP windows, code expiry) takes a Clocker
// instead of calling time.Now directly, so tests can pin the time with Fixed.
package clock
