package service

import "fmt"

// Service methods return sentinel errors from the domain and store
// packages for expected conditions and wrap everything else in a
// per-service error type. Callers use errors.Is/errors.As; the API layer
// maps the sentinels to HTTP status codes.

// BoardServiceError wraps failures from board operations.
type BoardServiceError struct {
	Operation string
	Message   string
	Err       error
}

// Error implements the error interface.
func (e *BoardServiceError) Error() string {
	if e.Err != nil {
		return fmt.Sprintf("board service %s failed: %s: %v", e.Operation, e.Message, e.Err)
	}
	return fmt.Sprintf("board service %s failed: %s", e.Operation, e.Message)
}

// Unwrap returns the wrapped error to support errors.Is/errors.As.
func (e *BoardServiceError) Unwrap() error {
	return e.Err
}

// NewBoardServiceError creates a new BoardServiceError.
func NewBoardServiceError(operation, message string, err error) *BoardServiceError {
	return &BoardServiceError{Operation: operation, Message: message, Err: err}
}

// ListServiceError wraps failures from list operations.
type ListServiceError struct {
	Operation string
	Message   string
	Err       error
}

// Error implements the error interface.
func (e *ListServiceError) Error() string {
	if e.Err != nil {
		return fmt.Sprintf("list service %s failed: %s: %v", e.Operation, e.Message, e.Err)
	}
	return fmt.Sprintf("list service %s failed: %s", e.Operation, e.Message)
}

// Unwrap returns the wrapped error to support errors.Is/errors.As.
func (e *ListServiceError) Unwrap() error {
	return e.Err
}

// NewListServiceError creates a new ListServiceError.
func NewListServiceError(operation, message string, err error) *ListServiceError {
	return &ListServiceError{Operation: operation, Message: message, Err: err}
}

// TaskServiceError wraps failures from task operations.
type TaskServiceError struct {
	Operation string
	Message   string
	Err       error
}

// Error implements the error interface.
func (e *TaskServiceError) Error() string {
	if e.Err != nil {
		return fmt.Sprintf("task service %s failed: %s: %v", e.Operation, e.Message, e.Err)
	}
	return fmt.Sprintf("task service %s failed: %s", e.Operation, e.Message)
}

// Unwrap returns the wrapped error to support errors.Is/errors.As.
func (e *TaskServiceError) Unwrap() error {
	return e.Err
}

// NewTaskServiceError creates a new TaskServiceError.
func NewTaskServiceError(operation, message string, err error) *TaskServiceError {
	return &TaskServiceError{Operation: operation, Message: message, Err: err}
}

// UserServiceError wraps failures from user account operations.
type UserServiceError struct {
	Operation string
	Message   string
	Err       error
}

// Error implements the error interface.
func (e *UserServiceError) Error() string {
	if e.Err != nil {
		return fmt.Sprintf("user service %s failed: %s: %v", e.Operation, e.Message, e.Err)
	}
	return fmt.Sprintf("user service %s failed: %s", e.Operation, e.Message)
}

// Unwrap returns the wrapped error to support errors.Is/errors.As.
func (e *UserServiceError) Unwrap() error {
	return e.Err
}

// NewUserServiceError creates a new UserServiceError.
func NewUserServiceError(operation, message string, err error) *UserServiceError {
	return &UserServiceError{Operation: operation, Message: message, Err: err}
}

// ActivityServiceError wraps failures from activity feed operations.
type ActivityServiceError struct {
	Operation string
	Message   string
	Err       error
}

// Error implements the error interface.
func (e *ActivityServiceError) Error() string {
	if e.Err != nil {
		return fmt.Sprintf("activity service %s failed: %s: %v", e.Operation, e.Message, e.Err)
	}
	return fmt.Sprintf("activity service %s failed: %s", e.Operation, e.Message)
}

// Unwrap returns the wrapped error to support errors.Is/errors.As.
func (e *ActivityServiceError) Unwrap() error {
	return e.Err
}

// NewActivityServiceError creates a new ActivityServiceError.
func NewActivityServiceError(operation, message string, err error) *ActivityServiceError {
	return &ActivityServiceError{Operation: operation, Message: message, Err: err}
}
