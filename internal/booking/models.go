package booking

import "time"

// Appointment statuses. Declining a request sets StatusCancelled, the
// canonical terminal-rejected state.
const (
	StatusPending   = "pending"
	StatusApproved  = "approved"
	StatusCancelled = "cancelled"
	StatusDone      = "done"
)

// Allowed booking reasons.
var allowedReasons = map[string]bool{
	"paper related":   true,
	"doubt related":   true,
	"project related": true,
	"other":           true,
}

// Request is an untrusted booking submission. FacultyID comes from the form
// body and must match the id of the page the form was rendered for.
type Request struct {
	FacultyID         int    `json:"faculty_id"`
	StudentName       string `json:"student_name"`
	StudentDepartment string `json:"student_department"`
	Subgroup          string `json:"subgroup"`
	Reason            string `json:"reason"`
	StudentEmail      string `json:"student_email"`
	ContactNumber     string `json:"contact_number"`
	SlotTime          string `json:"slot_time"` // HH:MM
}

// Appointment is a persisted booking.
type Appointment struct {
	ID                string    `json:"id"`
	FacultyID         int       `json:"faculty_id"`
	StudentName       string    `json:"student_name"`
	StudentDepartment string    `json:"student_department"`
	Subgroup          string    `json:"subgroup"`
	Reason            string    `json:"reason"`
	StudentEmail      string    `json:"student_email"`
	ContactNumber     string    `json:"contact_number"`
	SlotTime          string    `json:"slot_time"` // HH:MM
	IPAddress         string    `json:"-"`
	Status            string    `json:"status"`
	CreatedAt         time.Time `json:"created_at"`
}
