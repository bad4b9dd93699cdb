// Package uid generates identifiers: snowflake numbers for rows and UUIDs
// for correlation and event ids.
package uid

// NumberID generates unique 64-bit identifiers.
type NumberID interface {
	Generate() int64
}

// StringID generates unique string identifiers.
type StringID interface {
	Generate() string
}
