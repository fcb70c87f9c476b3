package core

import "fmt"

// ConnectionErrorKind classifies why a connection attempt failed.
type ConnectionErrorKind int

const (
	// ConnectionFailed is the catch-all kind.
	ConnectionFailed ConnectionErrorKind = iota
	// ConnectionRefused means the server actively refused the connection.
	ConnectionRefused
	// AccessDenied means the server rejected the credentials.
	AccessDenied
	// HostNotFound means the host name could not be resolved.
	HostNotFound
	// HostNotReachable means there was no route to the host.
	HostNotReachable
	// InvalidConnection means the connection parameters were rejected locally.
	InvalidConnection
)

// String returns the string representation of ConnectionErrorKind.
func (k ConnectionErrorKind) String() string {
	switch k {
	case ConnectionRefused:
		return "connection refused"
	case AccessDenied:
		return "access denied"
	case HostNotFound:
		return "host not found"
	case HostNotReachable:
		return "host not reachable"
	case InvalidConnection:
		return "invalid connection"
	default:
		return "connection error"
	}
}

// ConnectionError wraps a client library error with its classified kind.
type ConnectionError struct {
	Kind ConnectionErrorKind
	Err  error
}

// Sentinels for errors.Is checks against a classified connection error.
var (
	ErrConnection        = &ConnectionError{Kind: ConnectionFailed}
	ErrConnectionRefused = &ConnectionError{Kind: ConnectionRefused}
	ErrAccessDenied      = &ConnectionError{Kind: AccessDenied}
	ErrHostNotFound      = &ConnectionError{Kind: HostNotFound}
	ErrHostNotReachable  = &ConnectionError{Kind: HostNotReachable}
	ErrInvalidConnection = &ConnectionError{Kind: InvalidConnection}
)

// NewConnectionError creates a ConnectionError of the given kind.
func NewConnectionError(kind ConnectionErrorKind, err error) *ConnectionError {
	return &ConnectionError{Kind: kind, Err: err}
}

func (e *ConnectionError) Error() string {
	if e.Err == nil {
		return e.Kind.String()
	}
	return fmt.Sprintf("%s: %v", e.Kind, e.Err)
}

func (e *ConnectionError) Unwrap() error {
	return e.Err
}

// Is reports whether target is a ConnectionError of the same kind.
func (e *ConnectionError) Is(target error) bool {
	t, ok := target.(*ConnectionError)
	if !ok {
		return false
	}
	return t.Kind == e.Kind
}
