package ptcg

import (
	"errors"
	"fmt"
)

// Sentinel errors for Pokemon TCG API operations.
var (
	ErrNotFound    = errors.New("ptcg: not found")
	ErrRateLimited = errors.New("ptcg: rate limited by server")
	ErrBadRequest  = errors.New("ptcg: bad request")
	ErrServer      = errors.New("ptcg: server error")
	ErrInvalidID   = errors.New("ptcg: invalid card ID format")
)

// Error wraps an underlying error with operation context.
type Error struct {
	Op  string // Operation: "searchCards", "getCard", "getSet"
	ID  string // If applicable
	Err error
}

func (e *Error) Error() string {
	if e.ID != "" {
		return fmt.Sprintf("ptcg %s [%s]: %v", e.Op, e.ID, e.Err)
	}
	return fmt.Sprintf("ptcg %s: %v", e.Op, e.Err)
}

func (e *Error) Unwrap() error {
	return e.Err
}

// wrapError creates an Error with context.
func wrapError(op, id string, err error) error {
	return &Error{
		Op:  op,
		ID:  id,
		Err: err,
	}
}

// Retryable reports whether an error is worth retrying or falling back on.
// Client-side mistakes (bad queries, unknown IDs) are not.
func Retryable(err error) bool {
	return errors.Is(err, ErrServer) || errors.Is(err, ErrRateLimited)
}
