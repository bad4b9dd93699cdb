// Package config reads typed configuration values by dotted key.
package config

import (
	"io"
	"time"
)

// Config retrieves configuration values by dotted key ("app.server.http.address").
// Missing or unconvertible values yield the zero value of the requested type.
type Config interface {
	io.Closer

	GetBool(key string) bool
	GetInt(key string) int
	GetInt64(key string) int64
	GetFloat64(key string) float64
	GetString(key string) string

	// GetDuration accepts Go duration strings ("90s", "10m") or plain integers as seconds.
	GetDuration(key string) time.Duration

	// GetBinary decodes a base64 (std) value.
	GetBinary(key string) []byte

	// GetArray reads a YAML list or a comma separated string. Blank entries are dropped.
	GetArray(key string) []string

	// GetMap reads "k:v,k:v" pairs.
	GetMap(key string) map[string]string
}
