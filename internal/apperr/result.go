package apperr

// Result carries either a value or a classified error across the UI boundary
// so callers switch on the kind instead of recovering from arbitrary errors.
type Result[T any] struct {
	Value T
	Err   *Error
}

func Ok[T any](v T) Result[T] {
	return Result[T]{Value: v}
}

func Fail[T any](err error) Result[T] {
	return Result[T]{Err: As(err)}
}

func (r Result[T]) IsOk() bool {
	return r.Err == nil
}

// Unpack converts the result back into Go's value, error pair.
func (r Result[T]) Unpack() (T, error) {
	if r.Err != nil {
		return r.Value, r.Err
	}
	return r.Value, nil
}
