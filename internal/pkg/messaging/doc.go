// Package messaging publishes and consumes events independently of the broker.
//
// Usecases depend on Publisher, inbound adapters on Consumer. The concrete
// driver (memory, NSQ, NATS, Kafka or Google Pub/Sub) is picked by
// NewFromDriver from configuration.
package messaging
