// Package common provides the UseCase/UnitOfWork building blocks shared by the
// administration packages. Successful mutations can only be produced by a
// UnitOfWork commit, so every state change leaves a domain event and an audit entry.
package common

// Result represents the outcome of a use case execution.
// Success can ONLY be created via UnitOfWork.Commit() to guarantee
// domain events and audit logs are always emitted.
//
// newSuccess is unexported: only the unit of work implementations in this
// package can turn a committed change into a successful result.
type Result[T any] struct {
	value   T
	err     *UseCaseError
	success bool
}

// newSuccess creates a successful result.
func newSuccess[T any](value T) Result[T] {
	return Result[T]{
		value:   value,
		success: true,
	}
}

// Failure creates a failed result. Any code may return failures.
func Failure[T any](err *UseCaseError) Result[T] {
	return Result[T]{
		err:     err,
		success: false,
	}
}

// IsSuccess returns true if the result is successful.
func (r Result[T]) IsSuccess() bool {
	return r.success
}

// IsFailure returns true if the result is a failure.
func (r Result[T]) IsFailure() bool {
	return !r.success
}

// Value returns the success value.
// Should only be called after checking IsSuccess().
func (r Result[T]) Value() T {
	return r.value
}

// Error returns the error if the result is a failure, nil otherwise.
func (r Result[T]) Error() *UseCaseError {
	return r.err
}

// Map transforms a successful result's value using the provided function.
// If the result is a failure, it returns the failure unchanged.
func Map[T, U any](r Result[T], fn func(T) U) Result[U] {
	if r.IsFailure() {
		return Failure[U](r.err)
	}
	return newSuccess(fn(r.value))
}

// FlatMap chains result-returning operations.
// If the result is a failure, it returns the failure unchanged.
// If successful, it applies the function which returns a new Result.
func FlatMap[T, U any](r Result[T], fn func(T) Result[U]) Result[U] {
	if r.IsFailure() {
		return Failure[U](r.err)
	}
	return fn(r.value)
}

// OrElse returns the success value or the provided default if failure.
func (r Result[T]) OrElse(defaultValue T) T {
	if r.IsSuccess() {
		return r.value
	}
	return defaultValue
}
