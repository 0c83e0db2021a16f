package model

import (
	"encoding/json"
	"strings"
)

// Event is a marketplace event as returned by the API. Date is rendered as
// YYYY-MM-DD. RemainingCapacity is maintained exclusively by the
// application repository and stays within [0, TotalCapacity].
type Event struct {
	ID                uint64   `json:"id"`
	OrganizerID       uint64   `json:"organizer_id"`
	OrganizerName     string   `json:"organizer_name"`
	OrganizerEmail    string   `json:"organizer_email,omitempty"`
	Title             string   `json:"title"`
	Description       string   `json:"description"`
	Date              string   `json:"date"`
	City              string   `json:"city"`
	Address           string   `json:"address"`
	Price             float64  `json:"price"`
	TotalCapacity     uint32   `json:"total_capacity"`
	RemainingCapacity uint32   `json:"remaining_capacity"`
	StandSize         *string  `json:"stand_size,omitempty"`
	Requirements      []string `json:"requirements"`
	Image             *string  `json:"image,omitempty"`
}

// OwnedEvent extends Event with the application aggregates shown on an
// organizer's dashboard.
type OwnedEvent struct {
	Event
	ApplicationCount uint32 `json:"application_count"`
	ApprovedCount    uint32 `json:"approved_count"`
}

// DecodeRequirements parses the requirements column into an ordered list.
// New rows store a JSON array of strings; rows written before that format
// existed hold comma-separated text. The rule is: a valid JSON string array
// wins, anything else is split on commas with surrounding whitespace
// trimmed. Empty input yields an empty (non-nil) list.
func DecodeRequirements(raw string) []string {
	raw = strings.TrimSpace(raw)
	if raw == "" {
		return []string{}
	}
	var list []string
	if err := json.Unmarshal([]byte(raw), &list); err == nil {
		return list
	}
	parts := strings.Split(raw, ",")
	list = make([]string, 0, len(parts))
	for _, p := range parts {
		list = append(list, strings.TrimSpace(p))
	}
	return list
}

// EncodeRequirements serializes a requirements list for storage. Nil is
// returned for an empty list so the column stays NULL.
func EncodeRequirements(list []string) *string {
	if len(list) == 0 {
		return nil
	}
	b, err := json.Marshal(list)
	if err != nil {
		return nil
	}
	s := string(b)
	return &s
}
