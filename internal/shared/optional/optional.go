// Package optional provides a JSON field type that distinguishes an absent field
// from an explicit null, which partial updates need for "exclude unset" semantics.
package optional

import (
	"bytes"
	"encoding/json"
)

// Value holds a field decoded from a JSON object.
//
//	absent       -> Set == false
//	"field":null -> Set == true, Ptr == nil
//	"field":v    -> Set == true, Ptr != nil
type Value[T any] struct {
	Set bool
	Ptr *T
}

// Of returns a Value explicitly set to v.
func Of[T any](v T) Value[T] {
	return Value[T]{Set: true, Ptr: &v}
}

// Null returns a Value explicitly set to null.
func Null[T any]() Value[T] {
	return Value[T]{Set: true}
}

// UnmarshalJSON is only invoked when the key is present in the payload.
func (v *Value[T]) UnmarshalJSON(data []byte) error {
	v.Set = true
	if bytes.Equal(bytes.TrimSpace(data), []byte("null")) {
		v.Ptr = nil
		return nil
	}
	var out T
	if err := json.Unmarshal(data, &out); err != nil {
		return err
	}
	v.Ptr = &out
	return nil
}

// MarshalJSON renders null when unset or null.
func (v Value[T]) MarshalJSON() ([]byte, error) {
	if v.Ptr == nil {
		return []byte("null"), nil
	}
	return json.Marshal(*v.Ptr)
}

// ValidationValue exposes the field to struct validators as a pointer.
// Unset and null yield a nil pointer so `omitempty` rules skip them; a present
// value is validated even when it is the zero value (e.g. "").
func (v Value[T]) ValidationValue() any {
	return v.Ptr
}
