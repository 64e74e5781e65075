package notion

import (
	"errors"
	"fmt"
	"net/http"
)

// ErrNotFound is returned (wrapped) when the requested record does not exist.
var ErrNotFound = errors.New("notion: record not found")

// CodeValidation is the Notion error code for a rejected request parameter,
// such as a start_cursor it did not issue.
const CodeValidation = "validation_error"

// QueryError reports a transport, auth or non-2xx failure against the API.
type QueryError struct {
	Op     string // "query", "page", "blocks"
	Status int    // HTTP status, 0 on transport failure
	Code   string // Notion error code, e.g. "unauthorized"
	Err    error
}

func (e *QueryError) Error() string {
	switch {
	case e.Status != 0 && e.Code != "":
		return fmt.Sprintf("notion %s: HTTP %d (%s): %v", e.Op, e.Status, e.Code, e.Err)
	case e.Status != 0:
		return fmt.Sprintf("notion %s: HTTP %d: %v", e.Op, e.Status, e.Err)
	default:
		return fmt.Sprintf("notion %s: %v", e.Op, e.Err)
	}
}

func (e *QueryError) Unwrap() error { return e.Err }

// Invalid reports whether Notion rejected a parameter of the request.
func (e *QueryError) Invalid() bool {
	return e.Status == http.StatusBadRequest && e.Code == CodeValidation
}

// MappingError reports an upstream record whose shape does not match what
// the decoder expects.
type MappingError struct {
	ID    string // record id, if known
	Field string // offending field or property name
	Err   error
}

func (e *MappingError) Error() string {
	id := e.ID
	if id == "" {
		id = "<unknown>"
	}
	if e.Field == "" {
		return fmt.Sprintf("notion: malformed record %s: %v", id, e.Err)
	}
	return fmt.Sprintf("notion: malformed record %s: field %q: %v", id, e.Field, e.Err)
}

func (e *MappingError) Unwrap() error { return e.Err }
