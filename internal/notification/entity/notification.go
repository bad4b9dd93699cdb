package entity

import (
	"path"
	"strings"
	"time"
)

// AuditKind names an archived binding event.
type AuditKind string

const (
	AuditBindingVerified AuditKind = "binding_verified"
	AuditBindingDeleted  AuditKind = "binding_deleted"
)

func (k AuditKind) String() string {
	return string(k)
}

// AuditRecord is the archived form of a binding event.
type AuditRecord struct {
	EventID       string    `json:"event_id"`
	Kind          AuditKind `json:"kind"`
	Address       string    `json:"address"`
	Channel       string    `json:"channel"`
	OccurredAt    time.Time `json:"occurred_at"`
	CorrelationID string    `json:"correlation_id,omitempty"`
}

// ObjectKey places the record under prefix/kind/yyyy/mm/dd/<event id>.json.
// Events are partitioned by UTC day.
func (r AuditRecord) ObjectKey(prefix string) string {
	day := r.OccurredAt.UTC().Format("2006/01/02")
	return path.Join(strings.Trim(prefix, "/"), r.Kind.String(), day, r.EventID+".json")
}

// SMSCode is one code waiting for delivery.
type SMSCode struct {
	Address     string
	Phone       string
	Code        string
	RequestedAt time.Time
}

// Expired reports whether the code is older than ttl at now. A zero ttl never expires.
func (c SMSCode) Expired(now time.Time, ttl time.Duration) bool {
	return ttl > 0 && now.Sub(c.RequestedAt) >= ttl
}
