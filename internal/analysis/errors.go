package analysis

import "fmt"

// ValidationError means the request was rejected before any network
// activity. It is always handled locally with an inline warning.
type ValidationError struct {
	Message string
}

func (e *ValidationError) Error() string {
	return e.Message
}

// Permanent marks the error as not worth retrying.
func (e *ValidationError) Permanent() bool { return true }

// TransportError covers unreachable hosts, malformed responses and non-2xx
// statuses. Callers that wrap the operation in a retry helper will retry it.
type TransportError struct {
	Status  int
	Message string
	Err     error
}

func (e *TransportError) Error() string {
	if e.Message != "" {
		return e.Message
	}
	if e.Err != nil {
		return e.Err.Error()
	}
	return fmt.Sprintf("request failed with status %d", e.Status)
}

func (e *TransportError) Unwrap() error { return e.Err }

// BackendError means the service answered with a well-formed body that
// reports a logical failure, or a successful status missing required
// fields. Retrying a deterministic failure is pointless, so it is marked
// permanent.
type BackendError struct {
	Message string
}

func (e *BackendError) Error() string {
	if e.Message == "" {
		return "the analysis service reported a failure"
	}
	return e.Message
}

// Permanent marks the error as not worth retrying.
func (e *BackendError) Permanent() bool { return true }
