package lifecycle

import "strings"

// Actor is the already-authorised identity performing an operation.
// The role is recorded with the event, not checked.
type Actor struct {
	ID   string `json:"id"`
	Role string `json:"role,omitempty"`
}

func (a Actor) validate() error {
	if strings.TrimSpace(a.ID) == "" {
		return ErrInvalidActor
	}
	return nil
}
