package model

// Optional holds a value that may be absent. The zero value is absent.
type Optional[T any] struct {
	value T
	ok    bool
}

// Some returns a present Optional holding v.
func Some[T any](v T) Optional[T] {
	return Optional[T]{value: v, ok: true}
}

// None returns an absent Optional.
func None[T any]() Optional[T] {
	return Optional[T]{}
}

// Get returns the value and whether it is present.
func (o Optional[T]) Get() (T, bool) {
	return o.value, o.ok
}

// Present reports whether a value is held.
func (o Optional[T]) Present() bool {
	return o.ok
}

// OrElse returns the held value, or fallback when absent.
func (o Optional[T]) OrElse(fallback T) T {
	if o.ok {
		return o.value
	}
	return fallback
}

// Or returns o when present, otherwise other.
func (o Optional[T]) Or(other Optional[T]) Optional[T] {
	if o.ok {
		return o
	}
	return other
}

// SomeString returns a present Optional for non-empty s and an absent one otherwise.
func SomeString(s string) Optional[string] {
	if s == "" {
		return None[string]()
	}
	return Some(s)
}
