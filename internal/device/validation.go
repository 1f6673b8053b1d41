package device

import (
	"fmt"
	"strings"
)

// Validation limits.
const (
	maxNameLength         = 100
	maxTypeLength         = 50
	maxManufacturerLength = 100
	maxSerialLength       = 64
)

// Normalize trims surrounding whitespace from all free-text fields.
func Normalize(d *Device) {
	d.Name = strings.TrimSpace(d.Name)
	d.Type = strings.TrimSpace(d.Type)
	d.Manufacturer = strings.TrimSpace(d.Manufacturer)
	d.SerialNumber = strings.TrimSpace(d.SerialNumber)
}

// ValidateDevice checks a device's fields.
// An empty status is accepted; Register defaults it to available.
func ValidateDevice(d *Device) error {
	if d == nil {
		return fmt.Errorf("%w: device is nil", ErrInvalidDevice)
	}

	switch {
	case d.Name == "":
		return fmt.Errorf("%w: name is required", ErrInvalidName)
	case len(d.Name) > maxNameLength:
		return fmt.Errorf("%w: exceeds %d characters", ErrInvalidName, maxNameLength)
	}

	switch {
	case d.Type == "":
		return fmt.Errorf("%w: type is required", ErrInvalidType)
	case len(d.Type) > maxTypeLength:
		return fmt.Errorf("%w: exceeds %d characters", ErrInvalidType, maxTypeLength)
	}

	if len(d.Manufacturer) > maxManufacturerLength {
		return fmt.Errorf("%w: manufacturer exceeds %d characters", ErrInvalidDevice, maxManufacturerLength)
	}
	if len(d.SerialNumber) > maxSerialLength {
		return fmt.Errorf("%w: serial number exceeds %d characters", ErrInvalidDevice, maxSerialLength)
	}

	if d.Status != "" && !d.Status.Valid() {
		return fmt.Errorf("%w: %q", ErrInvalidStatus, d.Status)
	}

	return nil
}
