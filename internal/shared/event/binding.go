package event

import "time"

const BindingVerifiedDestination string = "recovery_binding_verified"
const BindingVerifiedConsumerNotification string = "recovery_binding_verified_notification"

const BindingDeletedDestination string = "recovery_binding_deleted"
const BindingDeletedConsumerNotification string = "recovery_binding_deleted_notification"

// HeaderCorrelationID carries the request correlation id across the broker.
const HeaderCorrelationID string = "cID"

type BindingVerifiedMessage struct {
	EventID    string    `json:"event_id"`
	Address    string    `json:"address"`
	Channel    string    `json:"channel"`
	VerifiedAt time.Time `json:"verified_at"`
}

type BindingDeletedMessage struct {
	EventID   string    `json:"event_id"`
	Address   string    `json:"address"`
	Channel   string    `json:"channel"`
	DeletedAt time.Time `json:"deleted_at"`
}
