package directory

import (
	"fmt"
	"net/mail"
	"strings"
)

const (
	maxCodeLength        = 20
	maxNameLength        = 100
	maxDescriptionLength = 500
	maxEmailLength       = 254
)

// NormalizeEmail trims and lower-cases an email address.
func NormalizeEmail(email string) string {
	return strings.ToLower(strings.TrimSpace(email))
}

// NormalizeCode trims and upper-cases a department code.
func NormalizeCode(code string) string {
	return strings.ToUpper(strings.TrimSpace(code))
}

// ValidateDepartment checks a department's fields. Call after normalising.
func ValidateDepartment(d *Department) error {
	switch {
	case d.Code == "":
		return fmt.Errorf("%w: code is required", ErrInvalidDepartment)
	case len(d.Code) > maxCodeLength:
		return fmt.Errorf("%w: code exceeds %d characters", ErrInvalidDepartment, maxCodeLength)
	case strings.ContainsAny(d.Code, " /"):
		return fmt.Errorf("%w: code must not contain spaces or slashes", ErrInvalidDepartment)
	case d.Name == "":
		return fmt.Errorf("%w: name is required", ErrInvalidDepartment)
	case len(d.Name) > maxNameLength:
		return fmt.Errorf("%w: name exceeds %d characters", ErrInvalidDepartment, maxNameLength)
	case len(d.Description) > maxDescriptionLength:
		return fmt.Errorf("%w: description exceeds %d characters", ErrInvalidDepartment, maxDescriptionLength)
	}
	return nil
}

// ValidateEmployee checks an employee's fields. Department existence is
// checked by the Directory.
func ValidateEmployee(e *Employee) error {
	switch {
	case e.Name == "":
		return fmt.Errorf("%w: name is required", ErrInvalidEmployee)
	case len(e.Name) > maxNameLength:
		return fmt.Errorf("%w: name exceeds %d characters", ErrInvalidEmployee, maxNameLength)
	case e.DepartmentCode == "":
		return fmt.Errorf("%w: department code is required", ErrInvalidEmployee)
	}

	if err := validateEmail(e.Email); err != nil {
		return err
	}
	if !e.Role.Valid() {
		return fmt.Errorf("%w: %q", ErrInvalidRole, e.Role)
	}
	return nil
}

func validateEmail(email string) error {
	if email == "" {
		return fmt.Errorf("%w: email is required", ErrInvalidEmail)
	}
	if len(email) > maxEmailLength {
		return fmt.Errorf("%w: exceeds %d characters", ErrInvalidEmail, maxEmailLength)
	}
	addr, err := mail.ParseAddress(email)
	if err != nil || addr.Address != email || !strings.Contains(email[strings.LastIndex(email, "@"):], ".") {
		return fmt.Errorf("%w: %q", ErrInvalidEmail, email)
	}
	return nil
}

func normalizeDepartment(d *Department) {
	d.Code = NormalizeCode(d.Code)
	d.Name = strings.TrimSpace(d.Name)
	d.Description = strings.TrimSpace(d.Description)
}

func normalizeEmployee(e *Employee) {
	e.Name = strings.TrimSpace(e.Name)
	e.Email = NormalizeEmail(e.Email)
	e.DepartmentCode = NormalizeCode(e.DepartmentCode)
	if e.Role == "" {
		e.Role = RoleStaff
	}
	e.Role = Role(strings.ToLower(string(e.Role)))
}
