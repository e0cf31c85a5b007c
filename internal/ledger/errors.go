package ledger

import (
	"fmt"

	"github.com/shieldtip/shieldtip-backend/internal/model"
)

// ValidationError reports malformed input, raised before any store I/O.
type ValidationError struct {
	Field  string
	Reason string
}

func (e *ValidationError) Error() string {
	return fmt.Sprintf("invalid %s: %s", e.Field, e.Reason)
}

// TransitionError reports an attempt to move a record's status backward.
type TransitionError struct {
	From model.TransactionStatus
	To   model.TransactionStatus
}

func (e *TransitionError) Error() string {
	return fmt.Sprintf("illegal status transition %s -> %s", e.From, e.To)
}

// BackendError wraps a store failure that survived the retry budget.
type BackendError struct {
	Op  string
	Err error
}

func (e *BackendError) Error() string {
	return fmt.Sprintf("ledger backend unavailable during %s: %v", e.Op, e.Err)
}

func (e *BackendError) Unwrap() error {
	return e.Err
}
