// Package changeset turns partial-update payloads into explicit per-field
// instructions. A nullable column gets a three-state Field (leave it, set
// it, clear it); a non-nullable column gets a two-state Optional (leave
// it, set it). Decoding from JSON happens once, at the boundary, in
// payload.go; the rest of the package never looks at raw JSON.
package changeset

import "time"

// State is the instruction carried by a Field.
type State uint8

const (
	// Unset leaves the stored value untouched.
	Unset State = iota
	// Null clears the stored value.
	Null
	// Value replaces the stored value.
	Value
)

func (s State) String() string {
	switch s {
	case Null:
		return "null"
	case Value:
		return "value"
	default:
		return "unset"
	}
}

// Field is a tri-state update for a nullable column. The zero Field is
// Unset.
type Field[T any] struct {
	state State
	value T
}

// Set returns a Field that stores v.
func Set[T any](v T) Field[T] { return Field[T]{state: Value, value: v} }

// SetNull returns a Field that clears the column.
func SetNull[T any]() Field[T] { return Field[T]{state: Null} }

// State returns the instruction.
func (f Field[T]) State() State { return f.state }

// IsSet reports whether the field touches the column at all.
func (f Field[T]) IsSet() bool { return f.state != Unset }

// Get returns the value when the state is Value.
func (f Field[T]) Get() (T, bool) { return f.value, f.state == Value }

// Ptr returns the value to store: nil for Null, a pointer for Value.
// It must only be called on a set field.
func (f Field[T]) Ptr() *T {
	if f.state != Value {
		return nil
	}
	v := f.value
	return &v
}

// Optional is a two-state update for a non-nullable column. The zero
// Optional is unset.
type Optional[T any] struct {
	set   bool
	value T
}

// Some returns an Optional that stores v.
func Some[T any](v T) Optional[T] { return Optional[T]{set: true, value: v} }

// IsSet reports whether a value was supplied.
func (o Optional[T]) IsSet() bool { return o.set }

// Get returns the value and whether it was supplied.
func (o Optional[T]) Get() (T, bool) { return o.value, o.set }

// Or returns the value, or def when unset.
func (o Optional[T]) Or(def T) T {
	if o.set {
		return o.value
	}
	return def
}

// Assignment is one "column = value" pair of an UPDATE. A nil Value
// stores NULL.
type Assignment struct {
	Column string
	Value  any
}

type assignments []Assignment

func addOptional[T any](a assignments, col string, o Optional[T]) assignments {
	if v, ok := o.Get(); ok {
		return append(a, Assignment{Column: col, Value: v})
	}
	return a
}

func addField[T any](a assignments, col string, f Field[T]) assignments {
	switch f.State() {
	case Null:
		return append(a, Assignment{Column: col, Value: nil})
	case Value:
		v, _ := f.Get()
		return append(a, Assignment{Column: col, Value: v})
	}
	return a
}

// stamp normalises an update timestamp to UTC at second precision.
func stamp(t time.Time) time.Time { return t.UTC().Truncate(time.Second) }
