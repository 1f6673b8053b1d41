package request

import "time"

// Request is an employee's ask to use a specific device.
type Request struct {
	ID         string    `json:"id"`
	DeviceID   string    `json:"device_id"`
	EmployeeID string    `json:"employee_id"`
	Reason     string    `json:"reason"`
	Status     Status    `json:"status"`
	CreatedAt  time.Time `json:"created_at"`
	UpdatedAt  time.Time `json:"updated_at"`
}

// Clone returns an independent copy of the request.
func (r *Request) Clone() *Request {
	if r == nil {
		return nil
	}
	c := *r
	return &c
}

// Status is the status of a request.
type Status string

// Request statuses.
const (
	StatusPending   Status = "pending"
	StatusApproved  Status = "approved"
	StatusRejected  Status = "rejected"
	StatusCompleted Status = "completed"
)

// AllStatuses returns every known request status.
func AllStatuses() []Status {
	return []Status{StatusPending, StatusApproved, StatusRejected, StatusCompleted}
}

// Valid reports whether s is a known status.
func (s Status) Valid() bool {
	switch s {
	case StatusPending, StatusApproved, StatusRejected, StatusCompleted:
		return true
	default:
		return false
	}
}

// Terminal reports whether no further transition is possible from s.
func (s Status) Terminal() bool {
	return s == StatusRejected || s == StatusCompleted
}
