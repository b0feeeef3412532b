package workflow

import (
	"context"
	"errors"
	"sync"
	"testing"

	"storeops-borrow/internal/domain/audit"
	"storeops-borrow/internal/domain/borrow"
	"storeops-borrow/internal/usecase/approval"
	"storeops-borrow/internal/usecase/confirmation"
	"storeops-borrow/internal/usecase/photo"
	"storeops-borrow/internal/usecase/request"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func strp(s string) *string { return &s }

func TestWorkflow_HappyPath(t *testing.T) {
	h := newHarness(t)
	ctx := context.Background()

	// create
	b := h.create(t)
	assert.Equal(t, borrow.StatusPendingApproval, b.Status)
	require.Len(t, b.Items, 1)

	// approve
	b = h.approve(t, b.ID)
	assert.Equal(t, borrow.StatusApproved, b.Status)
	require.NotNil(t, b.ApprovedBy)
	assert.Equal(t, "U1", *b.ApprovedBy)
	assert.Nil(t, b.RejectedBy)

	// borrower confirms
	b, err := h.orch.ConfirmPos(ctx, confirmation.ConfirmInput{BorrowID: b.ID, Side: "borrower", ActorID: "UB"})
	require.NoError(t, err)
	assert.Equal(t, borrow.StatusPosAdjusting, b.Status)
	assert.True(t, b.BorrowerPosConfirmed)
	assert.False(t, b.LenderPosConfirmed)
	assert.Nil(t, b.CompletedAt)

	// lender confirms
	b, err = h.orch.ConfirmPos(ctx, confirmation.ConfirmInput{BorrowID: b.ID, Side: "lender", ActorID: "UL"})
	require.NoError(t, err)
	assert.Equal(t, borrow.StatusCompleted, b.Status)
	assert.True(t, b.BorrowerPosConfirmed)
	assert.True(t, b.LenderPosConfirmed)
	assert.NotNil(t, b.CompletedAt)

	_, err = h.orch.ConfirmPos(ctx, confirmation.ConfirmInput{BorrowID: b.ID, Side: "lender", ActorID: "UL"})
	assert.ErrorIs(t, err, borrow.ErrNotConfirmable)

	h.drain(t)

	created := h.notifier.byEvent(EventCreated)
	require.Len(t, created, 1)
	assert.Equal(t, "S2", created[0].StoreID)
	assert.Contains(t, created[0].Body, "Silom")

	approved := h.notifier.byEvent(EventApproved)
	require.Len(t, approved, 1)
	assert.Equal(t, "S1", approved[0].StoreID)
	assert.Equal(t, "U1", approved[0].Exclude)

	ack := h.notifier.byEvent(EventPosConfirmed)
	require.Len(t, ack, 1)
	assert.Equal(t, "S1", ack[0].StoreID, "lone confirmation acknowledges only its own side")

	done := h.notifier.byEvent(EventCompleted)
	require.Len(t, done, 2)
	assert.ElementsMatch(t, []string{"S1", "S2"}, []string{done[0].StoreID, done[1].StoreID})

	assert.Len(t, h.audit.byAction(audit.ActionBorrowCreated), 1)
	assert.Len(t, h.audit.byAction(audit.ActionBorrowApproved), 1)
	assert.Len(t, h.audit.byAction(audit.ActionBorrowPosConfirmed), 1)
	completedAudit := h.audit.byAction(audit.ActionBorrowCompleted)
	require.Len(t, completedAudit, 1)
	assert.Equal(t, EntityRef(b.ID), completedAudit[0].EntityRef)
}

func TestWorkflow_RejectThenEverythingConflicts(t *testing.T) {
	h := newHarness(t)
	ctx := context.Background()
	b := h.create(t)

	b, err := h.orch.Reject(ctx, approval.RejectInput{BorrowID: b.ID, ActorID: "U2", Reason: strp("out of stock")})
	require.NoError(t, err)
	assert.Equal(t, borrow.StatusRejected, b.Status)
	require.NotNil(t, b.RejectionReason)
	assert.Equal(t, "out of stock", *b.RejectionReason)
	assert.Nil(t, b.ApprovedAt)

	_, err = h.orch.Approve(ctx, approval.ApproveInput{BorrowID: b.ID, ActorID: "U1"})
	assert.ErrorIs(t, err, borrow.ErrNotPending)

	_, err = h.orch.Reject(ctx, approval.RejectInput{BorrowID: b.ID, ActorID: "U1"})
	assert.ErrorIs(t, err, borrow.ErrNotPending)

	_, err = h.orch.ConfirmPos(ctx, confirmation.ConfirmInput{BorrowID: b.ID, Side: "borrower", ActorID: "UB"})
	assert.ErrorIs(t, err, borrow.ErrRejected)

	_, err = h.orch.UploadPhoto(ctx, photo.UploadInput{BorrowID: b.ID, Side: "lender", PhotoURL: "https://img/l.jpg", ActorID: "U1"})
	assert.Equal(t, borrow.KindStateConflict, borrow.KindOf(err))

	h.drain(t)
	rejected := h.notifier.byEvent(EventRejected)
	require.Len(t, rejected, 1)
	assert.Equal(t, "S1", rejected[0].StoreID)
	assert.Contains(t, rejected[0].Body, "out of stock")
	assert.Empty(t, h.notifier.byEvent(EventApproved))
}

func TestWorkflow_ConfirmBeforeApproval(t *testing.T) {
	h := newHarness(t)
	b := h.create(t)

	_, err := h.orch.ConfirmPos(context.Background(), confirmation.ConfirmInput{BorrowID: b.ID, Side: "lender", ActorID: "UL"})
	assert.ErrorIs(t, err, borrow.ErrNotConfirmable)
}

func TestWorkflow_UnknownBorrow(t *testing.T) {
	h := newHarness(t)
	ctx := context.Background()

	_, err := h.orch.Approve(ctx, approval.ApproveInput{BorrowID: "missing", ActorID: "U1"})
	assert.ErrorIs(t, err, borrow.ErrNotFound)
	_, err = h.orch.ConfirmPos(ctx, confirmation.ConfirmInput{BorrowID: "missing", Side: "lender", ActorID: "U1"})
	assert.ErrorIs(t, err, borrow.ErrNotFound)
	_, err = h.orch.Get(ctx, "missing")
	assert.ErrorIs(t, err, borrow.ErrNotFound)
}

func TestWorkflow_InvalidCreatePersistsNothing(t *testing.T) {
	h := newHarness(t)
	_, err := h.orch.Create(context.Background(), request.CreateInput{FromStoreID: "S1", ToStoreID: "S1", ActorID: "U0",
		Items: []request.ItemInput{{ProductName: "Ice", Quantity: 1}}})
	assert.Equal(t, borrow.KindInvalidArgument, borrow.KindOf(err))

	var n int64
	h.db.Model(&borrow.Borrow{}).Count(&n)
	assert.Zero(t, n)
	h.drain(t)
	assert.Empty(t, h.notifier.byEvent(EventCreated))
}

func TestWorkflow_SideEffectFailuresAreSwallowed(t *testing.T) {
	h := newHarness(t)
	h.notifier.err = errors.New("push gateway down")
	h.audit.err = errors.New("audit table locked")

	b := h.create(t)
	b = h.approve(t, b.ID)
	assert.Equal(t, borrow.StatusApproved, b.Status)

	h.drain(t)
	assert.GreaterOrEqual(t, h.log.errorCount(), 4, "each failed side effect is logged")

	got, err := h.orch.Get(context.Background(), b.ID)
	require.NoError(t, err)
	assert.Equal(t, borrow.StatusApproved, got.Status)
}

func TestWorkflow_ConcurrentConfirmCompletesExactlyOnce(t *testing.T) {
	for i := 0; i < 20; i++ {
		h := newHarness(t)
		b := h.create(t)
		h.approve(t, b.ID)

		var wg sync.WaitGroup
		errs := make([]error, 2)
		for j, side := range []string{"borrower", "lender"} {
			wg.Add(1)
			go func(j int, side string) {
				defer wg.Done()
				_, errs[j] = h.orch.ConfirmPos(context.Background(), confirmation.ConfirmInput{BorrowID: b.ID, Side: side, ActorID: "U-" + side})
			}(j, side)
		}
		wg.Wait()
		require.NoError(t, errs[0])
		require.NoError(t, errs[1])

		got, err := h.orch.Get(context.Background(), b.ID)
		require.NoError(t, err)
		assert.Equal(t, borrow.StatusCompleted, got.Status)
		assert.True(t, got.BorrowerPosConfirmed)
		assert.True(t, got.LenderPosConfirmed)
		assert.NotNil(t, got.CompletedAt)

		h.drain(t)
		assert.Len(t, h.audit.byAction(audit.ActionBorrowCompleted), 1)
		assert.Len(t, h.audit.byAction(audit.ActionBorrowPosConfirmed), 1)
		assert.Len(t, h.notifier.byEvent(EventCompleted), 2, "one completion message per store")
	}
}

func TestWorkflow_ConcurrentApproveAndReject(t *testing.T) {
	h := newHarness(t)
	b := h.create(t)

	var wg sync.WaitGroup
	var approveErr, rejectErr error
	wg.Add(2)
	go func() {
		defer wg.Done()
		_, approveErr = h.orch.Approve(context.Background(), approval.ApproveInput{BorrowID: b.ID, ActorID: "U1"})
	}()
	go func() {
		defer wg.Done()
		_, rejectErr = h.orch.Reject(context.Background(), approval.RejectInput{BorrowID: b.ID, ActorID: "U2"})
	}()
	wg.Wait()

	// exactly one wins
	assert.True(t, (approveErr == nil) != (rejectErr == nil), "approve=%v reject=%v", approveErr, rejectErr)
	loser := approveErr
	if loser == nil {
		loser = rejectErr
	}
	assert.ErrorIs(t, loser, borrow.ErrNotPending)
}

func TestWorkflow_UploadPhotoAuditsOnly(t *testing.T) {
	h := newHarness(t)
	b := h.create(t)

	got, err := h.orch.UploadPhoto(context.Background(), photo.UploadInput{BorrowID: b.ID, Side: "borrower", PhotoURL: "https://img/b.jpg", ActorID: "U0"})
	require.NoError(t, err)
	require.NotNil(t, got.BorrowerPhotoURL)
	assert.Equal(t, "https://img/b.jpg", *got.BorrowerPhotoURL)
	assert.Equal(t, borrow.StatusPendingApproval, got.Status)

	h.drain(t)
	photos := h.audit.byAction(audit.ActionBorrowPhotoUploaded)
	require.Len(t, photos, 1)
	assert.Equal(t, "S1", photos[0].StoreID)
	assert.Len(t, h.notifier.sent, 1, "only the creation notification")
}

func TestWorkflow_GetResolvesNames(t *testing.T) {
	h := newHarness(t)
	b := h.create(t)
	h.approve(t, b.ID)

	v, err := h.orch.Get(context.Background(), b.ID)
	require.NoError(t, err)
	assert.Equal(t, "Silom", v.FromStoreName)
	assert.Equal(t, "Thonglor", v.ToStoreName)
	assert.Equal(t, "Ploy", v.RequestedByName)
	assert.Equal(t, "Nok", v.ApprovedByName)
	assert.Empty(t, v.RejectedByName)
	assert.Empty(t, v.LenderPosConfirmedByName)
	require.Len(t, v.Items, 1)
}

func TestWorkflow_GetSurvivesDirectoryErrors(t *testing.T) {
	h := newHarness(t)
	b := h.create(t)
	h.orch.directory = mapDirectory{err: errors.New("directory down")}

	v, err := h.orch.Get(context.Background(), b.ID)
	require.NoError(t, err)
	assert.Empty(t, v.FromStoreName)
	assert.Empty(t, v.RequestedByName)
	assert.Equal(t, b.ID, v.ID)
}

func TestWorkflow_List(t *testing.T) {
	h := newHarness(t)
	first := h.create(t)
	second := h.create(t)
	h.approve(t, second.ID)

	all, err := h.orch.List(context.Background(), borrow.ListFilter{StoreID: "S2"})
	require.NoError(t, err)
	assert.Len(t, all, 2)

	pending := borrow.StatusPendingApproval
	onlyPending, err := h.orch.List(context.Background(), borrow.ListFilter{StoreID: "S1", Status: &pending})
	require.NoError(t, err)
	require.Len(t, onlyPending, 1)
	assert.Equal(t, first.ID, onlyPending[0].ID)
}
