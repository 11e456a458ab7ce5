package model

// Void is the value type for operations that succeed without a payload.
type Void struct{}

// Result is the outcome of an identity operation: either a value or an
// error, never both. Loading is carried elsewhere (session UI state),
// so there is no in-progress variant.
type Result[T any] struct {
	value T
	err   error
	ok    bool
}

// Success wraps a value in a successful Result.
func Success[T any](value T) Result[T] {
	return Result[T]{value: value, ok: true}
}

// Failure wraps an error in a failed Result.
func Failure[T any](err error) Result[T] {
	return Result[T]{err: err}
}

func (r Result[T]) IsSuccess() bool {
	return r.ok
}

func (r Result[T]) IsFailure() bool {
	return !r.ok
}

// Value returns the carried value, or the zero value on failure.
func (r Result[T]) Value() T {
	return r.value
}

// ValueOrDefault returns the carried value on success, d otherwise.
func (r Result[T]) ValueOrDefault(d T) T {
	if r.ok {
		return r.value
	}
	return d
}

// Err returns the carried error, or nil on success.
func (r Result[T]) Err() error {
	return r.err
}
