package store

import (
	"errors"
	"fmt"
)

// ErrNotFound is returned when a hostel, room, bed or registration id does
// not exist.
var ErrNotFound = errors.New("not found")

// ValidationError reports a rejected input field before any write happens.
type ValidationError struct {
	Field  string
	Reason string
}

func (e *ValidationError) Error() string {
	return fmt.Sprintf("invalid %s: %s", e.Field, e.Reason)
}

// HostelOccupiedError blocks hostel deletion while any of its beds are
// occupied, unless the operator forces it.
type HostelOccupiedError struct {
	HostelID int64
	Occupied int
}

func (e *HostelOccupiedError) Error() string {
	return fmt.Sprintf("hostel %d has %d occupied bed(s); pass force to delete anyway", e.HostelID, e.Occupied)
}

// IsValidation reports whether err is a ValidationError.
func IsValidation(err error) bool {
	var ve *ValidationError
	return errors.As(err, &ve)
}
