package borrow

import "time"

type Status string

const (
	StatusPendingApproval Status = "pending_approval"
	StatusApproved        Status = "approved"
	StatusPosAdjusting    Status = "pos_adjusting"
	StatusCompleted       Status = "completed"
	StatusRejected        Status = "rejected"
)

// transitions is the only place legal status moves are defined.
var transitions = map[Status][]Status{
	StatusPendingApproval: {StatusApproved, StatusRejected},
	StatusApproved:        {StatusPosAdjusting},
	StatusPosAdjusting:    {StatusCompleted},
}

func ParseStatus(s string) (Status, error) {
	st := Status(s)
	if !st.Valid() {
		return "", NewInvalidArgumentError("unknown status " + s)
	}
	return st, nil
}

func (s Status) Valid() bool {
	switch s {
	case StatusPendingApproval, StatusApproved, StatusPosAdjusting, StatusCompleted, StatusRejected:
		return true
	}
	return false
}

func (s Status) CanTransitionTo(next Status) bool {
	for _, st := range transitions[s] {
		if st == next {
			return true
		}
	}
	return false
}

// AwaitingPos reports whether POS confirmations are accepted in this status.
func (s Status) AwaitingPos() bool { return s == StatusApproved || s == StatusPosAdjusting }

// DeriveStatus computes the status implied by the approval, rejection and confirmation facts.
func DeriveStatus(approved, borrowerConfirmed, lenderConfirmed, rejected bool) Status {
	switch {
	case rejected:
		return StatusRejected
	case !approved:
		return StatusPendingApproval
	case borrowerConfirmed && lenderConfirmed:
		return StatusCompleted
	case borrowerConfirmed || lenderConfirmed:
		return StatusPosAdjusting
	default:
		return StatusApproved
	}
}

// Confirmation is a planned one-sided POS acknowledgement. The write must be guarded on
// From and OtherConfirmed so a concurrent confirmation of the other side is detected.
type Confirmation struct {
	Side           Side
	ActorID        string
	At             time.Time
	From           Status
	To             Status
	OtherConfirmed bool
}

// Completes reports whether applying c moves the borrow to completed.
func (c Confirmation) Completes() bool { return c.To == StatusCompleted }

// PlanConfirmation validates a POS confirmation against the current row and computes the next status.
func (b *Borrow) PlanConfirmation(side Side, actorID string, at time.Time) (Confirmation, error) {
	if b.Status == StatusRejected {
		return Confirmation{}, ErrRejected
	}
	if !b.Status.AwaitingPos() {
		return Confirmation{}, ErrNotConfirmable
	}
	if b.Confirmed(side) {
		return Confirmation{}, ErrAlreadyConfirmed
	}
	other := b.Confirmed(side.Other())
	borrowerDone, lenderDone := other, true
	if side == SideBorrower {
		borrowerDone, lenderDone = true, other
	}
	next := DeriveStatus(true, borrowerDone, lenderDone, false)
	if !b.Status.CanTransitionTo(next) {
		return Confirmation{}, ErrNotConfirmable
	}
	return Confirmation{
		Side:           side,
		ActorID:        actorID,
		At:             at,
		From:           b.Status,
		To:             next,
		OtherConfirmed: other,
	}, nil
}
