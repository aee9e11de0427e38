package moodle

import "fmt"

// RemoteError is an explicit error payload returned by the Moodle web service
// (bad credentials, disabled function, permission denied).
type RemoteError struct {
	Message string
	Code    string
}

func (e *RemoteError) Error() string {
	if e.Code != "" {
		return fmt.Sprintf("moodle: %s (%s)", e.Message, e.Code)
	}
	return "moodle: " + e.Message
}

// TransportError means the request never produced a usable response: no
// network, unreachable host, malformed body.
type TransportError struct {
	Err error
}

func (e *TransportError) Error() string {
	return "moodle: request failed: " + e.Err.Error()
}

func (e *TransportError) Unwrap() error {
	return e.Err
}
