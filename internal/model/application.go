package model

import "time"

// Application states. An application starts pending; the owning organizer
// may move it between approved and rejected any number of times, and the
// vendor may withdraw (delete) it from any state.
const (
	StatePending  = "pending"
	StateApproved = "approved"
	StateRejected = "rejected"
)

// ValidDecision reports whether s is a state an organizer may set.
// Pending is the initial state only; decisions move away from it.
func ValidDecision(s string) bool {
	return s == StateApproved || s == StateRejected
}

// Application links a vendor to an event.
type Application struct {
	ID        uint64    `json:"id"`
	EventID   uint64    `json:"event_id"`
	VendorID  uint64    `json:"vendor_id"`
	Message   *string   `json:"message,omitempty"`
	State     string    `json:"state"`
	CreatedAt time.Time `json:"created_at"`
}

// VendorApplication is an application joined with the event fields a vendor
// sees in their own list.
type VendorApplication struct {
	Application
	EventTitle string  `json:"event_title"`
	EventDate  string  `json:"event_date"`
	EventCity  string  `json:"event_city"`
	EventPrice float64 `json:"event_price"`
	EventImage *string `json:"event_image,omitempty"`
}

// EventApplication is an application joined with the vendor's contact
// details, shown to the organizer reviewing an event.
type EventApplication struct {
	Application
	VendorName  string  `json:"vendor_name"`
	VendorEmail string  `json:"vendor_email"`
	VendorPhone *string `json:"vendor_phone,omitempty"`
	VendorBio   *string `json:"vendor_bio,omitempty"`
}
