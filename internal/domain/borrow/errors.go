package borrow

import "errors"

type Kind string

const (
	KindInvalidArgument Kind = "invalid_argument"
	KindNotFound        Kind = "not_found"
	KindStateConflict   Kind = "state_conflict"
)

// Error is a user-visible workflow error: a machine-readable kind plus a message.
type Error struct {
	Kind    Kind
	Message string
}

func (e *Error) Error() string { return e.Message }

func (e *Error) Is(target error) bool {
	t, ok := target.(*Error)
	return ok && t.Kind == e.Kind && t.Message == e.Message
}

func NewInvalidArgumentError(msg string) error {
	return &Error{Kind: KindInvalidArgument, Message: msg}
}

var (
	ErrNotFound         = &Error{Kind: KindNotFound, Message: "borrow not found"}
	ErrNotPending       = &Error{Kind: KindStateConflict, Message: "borrow is not pending approval"}
	ErrNotConfirmable   = &Error{Kind: KindStateConflict, Message: "borrow is not approved or awaiting pos confirmation"}
	ErrAlreadyConfirmed = &Error{Kind: KindStateConflict, Message: "pos already confirmed for this side"}
	ErrRejected         = &Error{Kind: KindStateConflict, Message: "borrow has been rejected"}
)

var (
	// ErrPreconditionFailed is returned by conditional writes that matched no row.
	ErrPreconditionFailed = errors.New("borrow update precondition failed")

	// ErrConcurrencyConflict means another writer changed the row between read and guarded write.
	ErrConcurrencyConflict = errors.New("borrow was modified concurrently")
)

// KindOf returns the kind of a workflow error, or "" for anything else.
func KindOf(err error) Kind {
	var e *Error
	if errors.As(err, &e) {
		return e.Kind
	}
	return ""
}
