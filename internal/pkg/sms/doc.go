// Package sms defines the contract for delivering text messages to phone numbers.
//
// Use cases depend on the SMS interface and the Message payload only. The
// concrete gateway is picked by driver name: "log" writes the message to the
// structured log for local development, "webhook" posts it as JSON to an HTTP
// gateway.
package sms
