package domain

import (
	"errors"
	"fmt"
	"strings"
)

var (
	// ErrInvalidTimestamp marks an activity record whose timestamp cannot be parsed.
	ErrInvalidTimestamp = errors.New("invalid timestamp")
	// ErrServiceUnavailable marks a failed call to an external collaborator.
	ErrServiceUnavailable = errors.New("service unavailable")
	// ErrInsufficientSlots means more items were waiting than slots were projected.
	ErrInsufficientSlots = errors.New("insufficient slots")
	// ErrInsufficientItems means more slots were projected than items were waiting.
	ErrInsufficientItems = errors.New("insufficient items")
	// ErrStaleDeletionPartialFailure means some stale entries could not be deleted.
	ErrStaleDeletionPartialFailure = errors.New("stale deletion partially failed")
)

// InvalidTimestampError identifies the rejected record.
type InvalidTimestampError struct {
	Index int
	Kind  string
	Raw   string
	Err   error
}

func (e *InvalidTimestampError) Error() string {
	return fmt.Sprintf("activity %d (%s): invalid timestamp %q: %v", e.Index, e.Kind, e.Raw, e.Err)
}

func (e *InvalidTimestampError) Unwrap() []error { return []error{ErrInvalidTimestamp, e.Err} }

// ServiceError wraps a collaborator failure with the service and operation names.
type ServiceError struct {
	Service string
	Op      string
	Err     error
}

// Unavailable builds a ServiceError; it returns nil when err is nil.
func Unavailable(service, op string, err error) error {
	if err == nil {
		return nil
	}
	return &ServiceError{Service: service, Op: op, Err: err}
}

func (e *ServiceError) Error() string {
	return fmt.Sprintf("%s %s: %v", e.Service, e.Op, e.Err)
}

func (e *ServiceError) Unwrap() []error { return []error{ErrServiceUnavailable, e.Err} }

// ShortfallError reports the surplus side of a truncated pairing.
type ShortfallError struct {
	Items int
	Slots int
}

func (e *ShortfallError) Error() string {
	if e.Items > e.Slots {
		return fmt.Sprintf("%d items waiting, only %d slots: %d left unscheduled", e.Items, e.Slots, e.Items-e.Slots)
	}
	return fmt.Sprintf("%d slots projected, only %d items: %d slots unused", e.Slots, e.Items, e.Slots-e.Items)
}

func (e *ShortfallError) Is(target error) bool {
	switch target {
	case ErrInsufficientSlots:
		return e.Items > e.Slots
	case ErrInsufficientItems:
		return e.Slots > e.Items
	}
	return false
}

// FailedDeletion pairs a stale entry with the error its deletion returned.
type FailedDeletion struct {
	Entry CalendarEntry
	Err   error
}

// DeletionError lists the stale entries that survived a cleanup pass.
type DeletionError struct {
	Failed []FailedDeletion
}

func (e *DeletionError) Error() string {
	parts := make([]string, 0, len(e.Failed))
	for _, f := range e.Failed {
		parts = append(parts, fmt.Sprintf("%s (%s): %v", f.Entry.EventID, f.Entry.LocationTag, f.Err))
	}
	return fmt.Sprintf("%d stale entries not deleted: %s", len(e.Failed), strings.Join(parts, "; "))
}

func (e *DeletionError) Unwrap() error { return ErrStaleDeletionPartialFailure }
