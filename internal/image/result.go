package image

import (
	"errors"
	"fmt"
)

// Artifact is one decoded image returned by the endpoint.
type Artifact struct {
	Data         []byte
	Seed         uint32
	FinishReason FinishReason
}

// ServiceError is a transport, auth, quota or validation fault. Message is
// the upstream text, unmodified.
type ServiceError struct {
	Code    string
	Message string
	Err     error
}

func (e *ServiceError) Error() string {
	return fmt.Sprintf("image service error (%s): %s", e.Code, e.Message)
}

func (e *ServiceError) Unwrap() error {
	return e.Err
}

// ContentFilteredError means the endpoint refused or aborted the output.
type ContentFilteredError struct {
	Reason FinishReason
	Seed   uint32
}

func (e *ContentFilteredError) Error() string {
	return fmt.Sprintf("image content filtered: finish reason %s (seed %d)", e.Reason, e.Seed)
}

// ThrottledError is a transient refusal; retry policies act on it.
type ThrottledError struct {
	Code    string
	Message string
	Err     error
}

func (e *ThrottledError) Error() string {
	return fmt.Sprintf("image service throttled (%s): %s", e.Code, e.Message)
}

func (e *ThrottledError) Unwrap() error {
	return e.Err
}

func (*ThrottledError) Transient() bool {
	return true
}

type Kind int

const (
	KindSuccess Kind = iota
	KindServiceError
	KindContentFiltered
	KindThrottled
)

func (k Kind) String() string {
	switch k {
	case KindSuccess:
		return "success"
	case KindServiceError:
		return "service_error"
	case KindContentFiltered:
		return "content_filtered"
	case KindThrottled:
		return "throttled"
	default:
		return fmt.Sprintf("kind(%d)", int(k))
	}
}

// Result is the outcome of one request in a batch. Exactly one of
// Artifacts and Err is set.
type Result struct {
	Request   Request
	Artifacts []Artifact
	Err       error
}

func (r Result) Kind() Kind {
	var (
		filtered  *ContentFilteredError
		throttled *ThrottledError
	)
	switch {
	case r.Err == nil:
		return KindSuccess
	case errors.As(r.Err, &filtered):
		return KindContentFiltered
	case errors.As(r.Err, &throttled):
		return KindThrottled
	default:
		return KindServiceError
	}
}

func (r Result) OK() bool {
	return r.Err == nil
}
