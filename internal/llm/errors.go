package llm

import "fmt"

// ErrorKind classifies a ServiceError
type ErrorKind string

// Service error kinds
const (
	// KindTransport means the service could not be reached
	KindTransport ErrorKind = "transport"
	// KindStatus means the service answered with a non-success status
	KindStatus ErrorKind = "status"
	// KindMalformed means the response body could not be decoded
	KindMalformed ErrorKind = "malformed"
)

// ServiceError is returned by Client.Generate when no usable response was
// received.
type ServiceError struct {
	Kind       ErrorKind
	StatusCode int    // KindStatus only
	Message    string // provider message when available
	Cause      error
}

func (e *ServiceError) Error() string {
	switch e.Kind {
	case KindStatus:
		return fmt.Sprintf("gemini status %d: %s", e.StatusCode, e.Message)
	case KindMalformed:
		return fmt.Sprintf("decode gemini response: %v", e.Cause)
	default:
		if e.Cause != nil {
			return fmt.Sprintf("gemini request failed: %v", e.Cause)
		}
		return "gemini request failed: " + e.Message
	}
}

func (e *ServiceError) Unwrap() error {
	return e.Cause
}
