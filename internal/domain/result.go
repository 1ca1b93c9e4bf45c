package domain

import "errors"

// Result is the tagged success/failure envelope used at collaborator
// boundaries and in API responses.
type Result[T any] struct {
	Success bool   `json:"success"`
	Data    T      `json:"data,omitempty"`
	Error   string `json:"error,omitempty"`
}

// Ok wraps data in a successful Result.
func Ok[T any](data T) Result[T] {
	return Result[T]{Success: true, Data: data}
}

// Fail builds a failed Result from a message.
func Fail[T any](message string) Result[T] {
	if message == "" {
		message = "unknown error"
	}
	return Result[T]{Error: message}
}

// FailErr builds a failed Result from an error.
func FailErr[T any](err error) Result[T] {
	if err == nil {
		return Fail[T]("")
	}
	return Fail[T](err.Error())
}

// Unpack converts the Result into Go's value/error pair.
func (r Result[T]) Unpack() (T, error) {
	if !r.Success {
		var zero T
		msg := r.Error
		if msg == "" {
			msg = "unknown error"
		}
		return zero, errors.New(msg)
	}
	return r.Data, nil
}
