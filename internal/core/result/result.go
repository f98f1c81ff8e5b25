package result

import "fmt"

// StatusCode classifies the outcome of an SRI operation.
type StatusCode int

const (
	// Success indicates the operation completed and carries data.
	Success StatusCode = iota
	// ServerError covers transport failures, timeouts and unexpected errors.
	ServerError
	// BadRequest covers invalid caller input or malformed remote payloads
	// attributable to bad input.
	BadRequest
	// NotFound means the remote system confirmed absence, or the returned
	// identifier did not match the requested one.
	NotFound
	// ListEmpty means the remote system answered with an empty collection.
	ListEmpty
	// LogicError means the remote system rejected the content on business grounds.
	LogicError
	// Unauthorized means the remote system rejected the credentials.
	Unauthorized
)

// String returns the canonical name of the status code.
func (s StatusCode) String() string {
	switch s {
	case Success:
		return "SUCCESS"
	case ServerError:
		return "SERVER_ERROR"
	case BadRequest:
		return "BAD_REQUEST"
	case NotFound:
		return "NOT_FOUND"
	case ListEmpty:
		return "LIST_EMPTY"
	case LogicError:
		return "LOGIC_ERROR"
	case Unauthorized:
		return "UNAUTHORIZED"
	default:
		return fmt.Sprintf("STATUS_%d", int(s))
	}
}

// HTTPStatus maps the status code to the closest HTTP status for handlers.
func (s StatusCode) HTTPStatus() int {
	switch s {
	case Success:
		return 200
	case BadRequest:
		return 400
	case Unauthorized:
		return 401
	case NotFound, ListEmpty:
		return 404
	case LogicError:
		return 422
	default:
		return 500
	}
}

// Result is the uniform envelope returned by every SRI operation.
// Data is populated only on success; Message is always populated on failure.
type Result[T any] struct {
	Success bool       `json:"success"`
	Status  StatusCode `json:"status"`
	Data    T          `json:"data,omitempty"`
	Message string     `json:"message,omitempty"`
}

// Ok builds a successful result carrying data.
func Ok[T any](data T) Result[T] {
	return Result[T]{Success: true, Status: Success, Data: data}
}

// Fail builds a failed result with a classification and message.
func Fail[T any](status StatusCode, message string) Result[T] {
	return Result[T]{Status: status, Message: message}
}

// Failf builds a failed result with a formatted message.
func Failf[T any](status StatusCode, format string, args ...any) Result[T] {
	return Result[T]{Status: status, Message: fmt.Sprintf(format, args...)}
}

// Propagate carries a failure across payload types, preserving status and message.
func Propagate[T, U any](from Result[U]) Result[T] {
	return Result[T]{Status: from.Status, Message: from.Message}
}
