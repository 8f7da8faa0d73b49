package appointments

import (
	"time"

	"github.com/google/uuid"
)

// Status is the appointment lifecycle state. Rows are never deleted and a
// cancelled appointment never returns to Scheduled.
type Status string

const (
	StatusScheduled Status = "Scheduled"
	StatusCancelled Status = "Cancelled"
)

// PlaceholderPatientName is stored on every row; patient identity is not
// modeled in this system.
const PlaceholderPatientName = "User"

// Appointment is a persisted booking.
type Appointment struct {
	ID          uuid.UUID
	PatientName string
	DoctorName  string
	ScheduledAt string // "YYYY-MM-DD HH:MM", stored as the literal string
	Status      Status
	CreatedAt   time.Time
	UpdatedAt   time.Time
}

// SlotKey combines the extracted date and time into the stored scheduled_at
// value.
func SlotKey(date, timeOfDay string) string {
	return date + " " + timeOfDay
}
