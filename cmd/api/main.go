package main

import (
	"context"
	"errors"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/labstack/echo/v4"
	"github.com/labstack/echo/v4/middleware"
	"github.com/labstack/gommon/log"

	"storeops-borrow/internal/adapter/cache"
	httpadp "storeops-borrow/internal/adapter/http"
	mw "storeops-borrow/internal/adapter/middleware"
	"storeops-borrow/internal/adapter/notify"
	"storeops-borrow/internal/adapter/repository/mysql"
	"storeops-borrow/internal/config"
	"storeops-borrow/internal/domain/audit"
	"storeops-borrow/internal/domain/borrow"
	infracache "storeops-borrow/internal/infrastructure/cache"
	"storeops-borrow/internal/infrastructure/db"
	"storeops-borrow/internal/usecase/approval"
	"storeops-borrow/internal/usecase/confirmation"
	"storeops-borrow/internal/usecase/photo"
	"storeops-borrow/internal/usecase/request"
	"storeops-borrow/internal/usecase/workflow"
)

func main() {
	e := echo.New()
	e.HideBanner = true
	e.Logger.SetLevel(log.INFO)

	cfg, err := config.Load()
	if err != nil {
		e.Logger.Fatal(err)
	}
	if err := cfg.Validate(); err != nil {
		e.Logger.Fatal(err)
	}

	gdb, err := db.OpenGorm(cfg.DBDriver, cfg.DSN())
	if err != nil {
		e.Logger.Fatal(err)
	}
	if err := gdb.AutoMigrate(&borrow.Borrow{}, &borrow.Item{}, &audit.Entry{}); err != nil {
		e.Logger.Fatalf("migrate: %v", err)
	}
	sqlDB, err := gdb.DB()
	if err != nil {
		e.Logger.Fatal(err)
	}

	rdb, err := infracache.OpenRedis(cfg.RedisAddr, cfg.RedisPassword, cfg.RedisDB)
	if err != nil {
		e.Logger.Fatal(err)
	}

	// repositories
	borrows := mysql.NewBorrowRepository(gdb)
	auditRepo := mysql.NewAuditRepository(gdb)
	directory := cache.NewCachedDirectory(rdb, mysql.NewDirectoryRepository(gdb), cfg.DirectoryTTL())

	dispatcher := workflow.NewDispatcher(cfg.DispatchWorkers, cfg.DispatchQueueSize, e.Logger)
	orch := workflow.NewOrchestrator(workflow.Deps{
		Borrows:       borrows,
		Requests:      request.NewUsecase(borrows),
		Approvals:     approval.NewUsecase(borrows),
		Confirmations: confirmation.NewUsecase(mysql.NewGormUoW(gdb)),
		Photos:        photo.NewUsecase(borrows),
		Notifier:      notify.NewRedisStreamNotifier(rdb, cfg.NotifyStreamPrefix),
		Audit:         auditRepo,
		Directory:     directory,
		Dispatcher:    dispatcher,
		Log:           e.Logger,
	})

	h := httpadp.NewHandler(
		httpadp.Check{Name: "db", Ping: sqlDB.PingContext},
		httpadp.Check{Name: "redis", Ping: func(ctx context.Context) error { return rdb.Ping(ctx).Err() }},
	)
	bh := httpadp.NewBorrowHandler(orch)

	e.Validator = httpadp.NewValidator()
	e.Use(middleware.Logger(), middleware.Recover())

	// routes
	e.GET("/health", h.Health)

	g := e.Group("/borrows", mw.ActorJWT([]byte(cfg.JWTSecret)), mw.Idempotency(mw.NewReplayStore(rdb, cfg.IdempotencyTTL())))
	g.POST("", bh.Create)
	g.GET("", bh.List)
	g.GET("/:id", bh.Get)
	g.PATCH("/:id", bh.Patch)

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	go func() {
		addr := ":" + cfg.AppPort
		e.Logger.Infof("listening on %s", addr)
		if err := e.Start(addr); err != nil && !errors.Is(err, http.ErrServerClosed) {
			e.Logger.Fatal(err)
		}
	}()

	<-ctx.Done()
	shutdownCtx, cancel := context.WithTimeout(context.Background(), 15*time.Second)
	defer cancel()

	if err := e.Shutdown(shutdownCtx); err != nil {
		e.Logger.Errorf("http shutdown: %v", err)
	}
	// flush queued notifications and audit rows before closing their backends
	if err := dispatcher.Shutdown(shutdownCtx); err != nil {
		e.Logger.Errorf("%v", err)
	}
	if err := rdb.Close(); err != nil {
		e.Logger.Errorf("redis close: %v", err)
	}
	if err := sqlDB.Close(); err != nil {
		e.Logger.Errorf("db close: %v", err)
	}
}
