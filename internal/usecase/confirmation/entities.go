package confirmation

import "storeops-borrow/internal/domain/borrow"

type ConfirmInput struct {
	BorrowID string
	Side     string // borrower | lender
	ActorID  string
}

// Result carries the row as committed. Completed is true only for the call whose
// write moved the borrow to completed.
type Result struct {
	Borrow    *borrow.Borrow
	Completed bool
}
