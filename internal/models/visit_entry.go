package models

import "time"

// Status represents the approval state of a visit entry.
type Status string

const (
	StatusPending         Status = "Pending"
	StatusApproved        Status = "Approved"
	StatusRejected        Status = "Rejected"
	StatusInvalidEmployee Status = "Invalid Employee"
)

// Valid returns true when the status is a supported value.
func (s Status) Valid() bool {
	switch s {
	case StatusPending, StatusApproved, StatusRejected, StatusInvalidEmployee:
		return true
	default:
		return false
	}
}

// Terminal returns true when the status ends the approval pipeline.
func (s Status) Terminal() bool {
	return s == StatusApproved || s == StatusRejected
}

// VisitEntry is the canonical record kept in the central log and mirrored
// into per-employee ledgers. Start and end times are kept as HH:MM strings;
// native time values are never written to time cells.
type VisitEntry struct {
	RequestID     string    `json:"request_id"`
	Timestamp     time.Time `json:"timestamp"`
	EmployeeName  string    `json:"employee_name"`
	EmployeeEmail string    `json:"employee_email"`
	VisitDate     time.Time `json:"visit_date"`
	StartTime     string    `json:"start_time"`
	EndTime       string    `json:"end_time"`
	Purpose       string    `json:"purpose"`
	Reimbursement string    `json:"reimbursement"`
	Description   string    `json:"description"`
	Companies     string    `json:"companies"`
	Status        Status    `json:"status"`
	ActionDate    time.Time `json:"action_date,omitempty"`
	Comments      string    `json:"comments,omitempty"`
}

// Employee is a roster record resolved from the Config table.
type Employee struct {
	Name     string `json:"name"`
	Email    string `json:"email"`
	Position string `json:"position"`
}
