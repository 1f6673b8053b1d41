package allocation

import "time"

// Allocation is the record of a device held by an employee following an
// approved request.
type Allocation struct {
	ID        string `json:"id"`
	RequestID string `json:"request_id"`
	DeviceID  string `json:"device_id"`

	// EmployeeID is copied from the request for per-employee queries.
	EmployeeID string `json:"employee_id"`

	ReturnStatus ReturnStatus `json:"return_status"`
	Condition    Condition    `json:"condition,omitempty"`
	ReturnNote   string       `json:"return_note,omitempty"`

	IssuedBy   string `json:"issued_by"`
	ReceivedBy string `json:"received_by,omitempty"`

	AllocatedAt time.Time  `json:"allocated_at"`
	ReturnedAt  *time.Time `json:"returned_at,omitempty"`
}

// Active reports whether the device has not been returned yet.
func (a *Allocation) Active() bool {
	return a.ReturnStatus == ReturnStatusNotReturned
}

// Clone returns an independent copy of the allocation.
func (a *Allocation) Clone() *Allocation {
	if a == nil {
		return nil
	}
	c := *a
	if a.ReturnedAt != nil {
		t := *a.ReturnedAt
		c.ReturnedAt = &t
	}
	return &c
}

// ReturnStatus tells whether an allocation is still open.
type ReturnStatus string

// Return statuses.
const (
	ReturnStatusNotReturned ReturnStatus = "not_returned"
	ReturnStatusReturned    ReturnStatus = "returned"
)

// Condition is the state a device was in when it came back.
type Condition string

// Return conditions.
const (
	ConditionGood    Condition = "good"
	ConditionDamaged Condition = "damaged"
	ConditionLost    Condition = "lost"
)

// Valid reports whether c is a known condition.
func (c Condition) Valid() bool {
	switch c {
	case ConditionGood, ConditionDamaged, ConditionLost:
		return true
	default:
		return false
	}
}

// State filters allocations in list queries.
type State string

// List states.
const (
	StateAll      State = ""
	StateActive   State = "active"
	StateReturned State = "returned"
)
