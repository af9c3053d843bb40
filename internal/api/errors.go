package api

import (
	"errors"
	"fmt"
)

// NetworkError is a connectivity failure: the request never produced an
// HTTP response (DNS, refused connection, timeout).
type NetworkError struct {
	URL string
	Err error
}

func (e *NetworkError) Error() string {
	return fmt.Sprintf("network error calling %s: %v", e.URL, e.Err)
}

func (e *NetworkError) Unwrap() error { return e.Err }

// ServerError is a rejected request: the service responded with a non-2xx
// status, e.g. a validation failure on bulk insert.
type ServerError struct {
	URL    string
	Status int
	Body   string
}

func (e *ServerError) Error() string {
	if e.Body != "" {
		return fmt.Sprintf("%s returned %d: %s", e.URL, e.Status, e.Body)
	}
	return fmt.Sprintf("%s returned %d", e.URL, e.Status)
}

// IsNetwork reports whether err is a connectivity failure.
func IsNetwork(err error) bool {
	var ne *NetworkError
	return errors.As(err, &ne)
}

// IsServer reports whether err is a rejected request.
func IsServer(err error) bool {
	var se *ServerError
	return errors.As(err, &se)
}

// IsUnauthorized reports whether err is a 401 response, i.e. the session
// token is missing or expired.
func IsUnauthorized(err error) bool {
	var se *ServerError
	return errors.As(err, &se) && se.Status == 401
}
