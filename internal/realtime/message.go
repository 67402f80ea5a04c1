package realtime

import (
	"encoding/json"
	"time"
)

// StaffTopic reaches every connected staff client.
const StaffTopic = "staff"

// BookingTopic names the channel of one booking's guest and staff.
func BookingTopic(bookingID string) string {
	return "booking:" + bookingID
}

// StaffMemberTopic reaches one staff member.
func StaffMemberTopic(staffID string) string {
	return "staff:" + staffID
}

// Envelope is the wire format relayed through redis and written to sockets.
type Envelope struct {
	Topic string          `json:"topic"`
	Type  string          `json:"type"`
	Data  json.RawMessage `json:"data"`
	At    time.Time       `json:"at"`
}
