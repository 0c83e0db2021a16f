// Package queue defines the message payloads exchanged over the broker and
// the background consumer that processes them.
package queue

// ApplicationDecidedEvent is published whenever an organizer approves or
// rejects a vendor application. It carries enough context for downstream
// consumers (notification, audit) without querying the primary database.
type ApplicationDecidedEvent struct {
	ApplicationID uint64 `json:"application_id"`
	EventID       uint64 `json:"event_id"`
	EventTitle    string `json:"event_title"`
	VendorID      uint64 `json:"vendor_id"`
	State         string `json:"state"`
	DecidedAt     string `json:"decided_at"`
}
