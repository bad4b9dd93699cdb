package entity

import (
	"time"

	"github.com/shandysiswandi/gofactor/internal/pkg/valueobject"
)

// Channel is the kind of secret bound to an address.
type Channel string

const (
	ChannelPhone         Channel = "phone"
	ChannelAuthenticator Channel = "authenticator"
)

func (c Channel) String() string {
	return string(c)
}

// SoftDeletes reports whether rows of the channel are soft deleted instead of kept forever.
func (c Channel) SoftDeletes() bool {
	return c == ChannelAuthenticator
}

// Binding is one non-deleted row of a channel table.
// Secret is the phone number or the sealed authenticator secret.
type Binding struct {
	ID        int64
	Channel   Channel
	Address   string
	Secret    string
	State     State
	Data      valueobject.JSONMap
	CreatedAt time.Time
	UpdatedAt time.Time
}

// Verification is the outcome of a successful code check.
type Verification struct {
	Data         valueobject.JSONMap
	Transitioned bool
}
