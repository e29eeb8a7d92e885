package geodesic

import (
	"errors"
	"fmt"
)

var (
	// ErrInvalidVector is returned when a direction has NaN or infinite
	// components or zero length.
	ErrInvalidVector = errors.New("invalid direction vector")

	// ErrTooManyHalfSpaces is returned when a region is built from more
	// than MaxHalfSpaces half-spaces.
	ErrTooManyHalfSpaces = errors.New("too many half-spaces")
)

// ErrInvalidLevel indicates a subdivision level outside the supported range.
type ErrInvalidLevel struct {
	Level int
	Max   int
}

func (e *ErrInvalidLevel) Error() string {
	return fmt.Sprintf("invalid level %d: must be in [0, %d]", e.Level, e.Max)
}

// ErrInvalidZone indicates a zone id outside [0, NumZones(Level)).
type ErrInvalidZone struct {
	Level int
	Zone  int
}

func (e *ErrInvalidZone) Error() string {
	return fmt.Sprintf("invalid zone %d at level %d", e.Zone, e.Level)
}

// InvariantError reports a violated geometric invariant of the grid.
//
// It is never returned. It is the panic value for conditions that can only
// arise from a programming defect, such as a finite direction that no
// icosahedron face contains.
type InvariantError struct {
	Op     string
	Detail string
}

func (e *InvariantError) Error() string {
	return fmt.Sprintf("geodesic: invariant violated in %s: %s", e.Op, e.Detail)
}

func invariant(op, format string, args ...any) {
	panic(&InvariantError{Op: op, Detail: fmt.Sprintf(format, args...)})
}

func checkLevel(level, maxLevel int) error {
	if level < 0 || level > maxLevel {
		return &ErrInvalidLevel{Level: level, Max: maxLevel}
	}
	return nil
}
