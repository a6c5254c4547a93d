package destination

import "fmt"

// RemoteError reports a failed request to an external data service: either
// a non-success HTTP status or an underlying transport error. It never
// escapes the provider layer; callers there degrade to partial data.
type RemoteError struct {
	Op     string // logical operation, e.g. "countries", "weather"
	Status int    // HTTP status, 0 for transport failures
	Err    error  // underlying cause, nil for bad-status failures
}

func (e *RemoteError) Error() string {
	if e.Status != 0 {
		return fmt.Sprintf("%s: remote service returned status %d", e.Op, e.Status)
	}
	return fmt.Sprintf("%s: %v", e.Op, e.Err)
}

func (e *RemoteError) Unwrap() error { return e.Err }

// NotFoundError reports a request for a destination id that is not in the
// catalog. Unlike remote failures it has no degraded answer and is
// surfaced to the caller.
type NotFoundError struct {
	ID int
}

func (e *NotFoundError) Error() string {
	return fmt.Sprintf("destination %d not found", e.ID)
}
