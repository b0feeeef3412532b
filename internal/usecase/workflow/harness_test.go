package workflow

import (
	"context"
	"testing"
	"time"

	repo "storeops-borrow/internal/adapter/repository/mysql"
	"storeops-borrow/internal/domain/borrow"
	"storeops-borrow/internal/usecase/approval"
	"storeops-borrow/internal/usecase/confirmation"
	"storeops-borrow/internal/usecase/photo"
	"storeops-borrow/internal/usecase/request"
	"storeops-borrow/pkg/retry"

	"github.com/stretchr/testify/require"
	"gorm.io/driver/sqlite"
	"gorm.io/gorm"
	"gorm.io/gorm/logger"
)

type harness struct {
	db       *gorm.DB
	orch     *Orchestrator
	notifier *recordingNotifier
	audit    *recordingAudit
	log      *captureLogger
	dispatch *Dispatcher
}

func newHarness(t *testing.T) *harness {
	t.Helper()
	db, err := gorm.Open(sqlite.Open(":memory:"), &gorm.Config{Logger: logger.Default.LogMode(logger.Silent)})
	require.NoError(t, err)
	sqlDB, err := db.DB()
	require.NoError(t, err)
	// one connection: concurrent transactions queue up instead of seeing separate in-memory dbs.
	// That serializes them, so the guard-miss retry is driven explicitly in interleave_test.go.
	sqlDB.SetMaxOpenConns(1)
	t.Cleanup(func() { _ = sqlDB.Close() })
	require.NoError(t, db.AutoMigrate(&borrow.Borrow{}, &borrow.Item{}))

	h := &harness{
		db:       db,
		notifier: &recordingNotifier{},
		audit:    &recordingAudit{},
		log:      &captureLogger{},
	}
	h.dispatch = NewDispatcher(2, 64, h.log)
	t.Cleanup(func() { _ = h.dispatch.Shutdown(context.Background()) })

	borrows := repo.NewBorrowRepository(db)
	h.orch = NewOrchestrator(Deps{
		Borrows:       borrows,
		Requests:      request.NewUsecase(borrows),
		Approvals:     approval.NewUsecase(borrows),
		Confirmations: confirmation.NewUsecase(repo.NewGormUoW(db), retry.WithBaseDelay(time.Millisecond)),
		Photos:        photo.NewUsecase(borrows),
		Notifier:      h.notifier,
		Audit:         h.audit,
		Directory: mapDirectory{
			stores: map[string]string{"S1": "Silom", "S2": "Thonglor"},
			actors: map[string]string{"U0": "Ploy", "U1": "Nok"},
		},
		Dispatcher: h.dispatch,
		Log:        h.log,
	})
	return h
}

// drain waits for every queued side effect; the dispatcher accepts nothing afterwards.
func (h *harness) drain(t *testing.T) {
	t.Helper()
	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()
	require.NoError(t, h.dispatch.Shutdown(ctx))
}

func (h *harness) create(t *testing.T) *borrow.Borrow {
	t.Helper()
	b, err := h.orch.Create(context.Background(), request.CreateInput{
		FromStoreID: "S1",
		ToStoreID:   "S2",
		ActorID:     "U0",
		Items:       []request.ItemInput{{ProductName: "Beer 620ml", Quantity: 24}},
	})
	require.NoError(t, err)
	return b
}

func (h *harness) approve(t *testing.T, id string) *borrow.Borrow {
	t.Helper()
	b, err := h.orch.Approve(context.Background(), approval.ApproveInput{BorrowID: id, ActorID: "U1"})
	require.NoError(t, err)
	return b
}
