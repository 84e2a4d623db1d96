// Package queue defines message payloads exchanged over the message broker
// and the background consumer that drains them.
package queue

// NotificationQueuedEvent is published whenever a notification row is
// written. It carries enough to deliver the message through an external
// channel (email, push) without querying the primary database.
type NotificationQueuedEvent struct {
	NotificationID uint64 `json:"notification_id"`
	UserID         uint64 `json:"user_id"`
	Kind           string `json:"kind"`
	Subject        string `json:"subject"`
	Body           string `json:"body"`
	EntityType     string `json:"entity_type,omitempty"`
	EntityID       uint64 `json:"entity_id,omitempty"`
	QueuedAt       string `json:"queued_at"`
}
