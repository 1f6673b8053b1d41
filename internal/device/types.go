package device

import "time"

// Device is a trackable physical asset with a lifecycle status.
// This matches the devices table in migrations/20260301_090000_initial_schema.up.sql.
type Device struct {
	ID           string `json:"id"`
	Name         string `json:"name"`
	Type         string `json:"type"`
	Manufacturer string `json:"manufacturer,omitempty"`

	// SerialNumber is optional but unique when present.
	SerialNumber string `json:"serial_number,omitempty"`

	Status Status `json:"status"`

	CreatedAt time.Time `json:"created_at"`
	UpdatedAt time.Time `json:"updated_at"`
}

// Clone returns an independent copy of the device.
func (d *Device) Clone() *Device {
	if d == nil {
		return nil
	}
	c := *d
	return &c
}

// Status is the lifecycle status of a device.
//
// The registry persists whatever status it is given; whether a transition is
// legal is decided by the lifecycle coordinator.
type Status string

// Device statuses.
const (
	StatusAvailable   Status = "available"
	StatusInUse       Status = "in_use"
	StatusMaintenance Status = "maintenance"
)

// AllStatuses returns every known device status.
func AllStatuses() []Status {
	return []Status{StatusAvailable, StatusInUse, StatusMaintenance}
}

// Valid reports whether s is a known status.
func (s Status) Valid() bool {
	switch s {
	case StatusAvailable, StatusInUse, StatusMaintenance:
		return true
	default:
		return false
	}
}

// Stats contains registry statistics.
type Stats struct {
	Total    int            `json:"total"`
	ByStatus map[Status]int `json:"by_status"`
}
