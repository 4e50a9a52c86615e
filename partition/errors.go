package partition

import (
	"errors"
	"fmt"
)

var (
	// ErrInvalidK is returned when the cluster count is not positive.
	ErrInvalidK = errors.New("partition: k must be positive")

	// ErrEmptyUniverse is returned when scoring over zero shared entities.
	ErrEmptyUniverse = errors.New("partition: shared entity universe is empty")

	// ErrUniverseMismatch is returned when two partitions index different universes.
	ErrUniverseMismatch = errors.New("partition: partitions were grouped over different universes")
)

// DuplicateEntityError reports an entity id that occurs more than once in a
// single assignment.
type DuplicateEntityError struct {
	ID     EntityID
	Labels [2]int
}

func (e *DuplicateEntityError) Error() string {
	return fmt.Sprintf("partition: entity %q assigned twice (labels %d and %d)", string(e.ID), e.Labels[0], e.Labels[1])
}
