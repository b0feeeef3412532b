package approval

type ApproveInput struct {
	BorrowID       string
	ActorID        string
	LenderPhotoURL *string
}

type RejectInput struct {
	BorrowID string
	ActorID  string
	Reason   *string
}
