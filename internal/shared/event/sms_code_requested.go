package event

import "time"

const SMSCodeRequestedDestination string = "recovery_sms_code_requested"
const SMSCodeRequestedConsumerNotification string = "recovery_sms_code_requested_notification"

// SMSCodeRequestedMessage carries a freshly issued code to the SMS gateway.
type SMSCodeRequestedMessage struct {
	Address     string    `json:"address"`
	Phone       string    `json:"phone"`
	Code        string    `json:"code"`
	RequestedAt time.Time `json:"requested_at"`
}
