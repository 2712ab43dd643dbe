package main

import (
	"context"
	"log"
	"os"

	"github.com/pocketbase/pocketbase"
	"github.com/pocketbase/pocketbase/core"
	"github.com/sirupsen/logrus"

	"constructboq/collections"
	"constructboq/config"
	"constructboq/handlers"
	"constructboq/services"
)

func main() {
	cfg, err := config.Load(os.Getenv(config.EnvPrefix + "CONFIG"))
	if err != nil {
		log.Fatal(err)
	}
	logger, err := config.NewLogger(cfg.LogLevel, cfg.LogFormat)
	if err != nil {
		log.Fatal(err)
	}

	app := pocketbase.New()

	store, closeStore, err := walletStore(cfg, app, logger)
	if err != nil {
		logger.WithError(err).Fatal("wallet store")
	}
	app.OnTerminate().BindFunc(func(e *core.TerminateEvent) error {
		closeStore()
		return e.Next()
	})

	deps := &handlers.Deps{
		App:      app,
		Sessions: handlers.NewSessionRegistry(),
		Wallet:   services.NewWallet(store, cfg.CustomCodes),
		Log:      logger,
		Defaults: cfg.Defaults,
	}

	// Create the wallet collections on startup
	app.OnServe().BindFunc(func(se *core.ServeEvent) error {
		if err := collections.Setup(app); err != nil {
			return err
		}
		return se.Next()
	})

	app.OnServe().BindFunc(func(se *core.ServeEvent) error {
		api := se.Router.Group("/api")
		api.BindFunc(handlers.RequestLogger(logger))

		// ── Sessions ─────────────────────────────────────────────
		api.GET("/takeoffs", handlers.HandleTakeoffList(deps))
		api.POST("/takeoffs", handlers.HandleTakeoffCreate(deps))
		api.POST("/takeoffs/demo", handlers.HandleTakeoffDemo(deps))
		api.GET("/takeoffs/{id}", handlers.HandleTakeoffGet(deps))
		api.DELETE("/takeoffs/{id}", handlers.HandleTakeoffDelete(deps))
		api.POST("/takeoffs/{id}/merge", handlers.HandleTakeoffMerge(deps))

		// ── Items and pricing ────────────────────────────────────
		api.PATCH("/takeoffs/{id}/items/{itemId}", handlers.HandleItemPatch(deps))
		api.POST("/takeoffs/{id}/items/import", handlers.HandleItemImport(deps))
		api.PUT("/takeoffs/{id}/rates", handlers.HandleRateSet(deps))
		api.POST("/takeoffs/{id}/rates/suggestion", handlers.HandleRateSuggestion(deps))
		api.PUT("/takeoffs/{id}/overrides", handlers.HandleOverrideSet(deps))
		api.PUT("/takeoffs/{id}/breakdowns", handlers.HandleBreakdownSave(deps))
		api.PUT("/takeoffs/{id}/settings", handlers.HandleSettingsUpdate(deps))
		api.PUT("/takeoffs/{id}/meta", handlers.HandleMetaUpdate(deps))

		// ── Reports ──────────────────────────────────────────────
		api.GET("/takeoffs/{id}/takeoff-sheet", handlers.HandleTakeoffSheet(deps))
		api.GET("/takeoffs/{id}/certificate", handlers.HandleCertificate(deps))
		api.GET("/takeoffs/{id}/analytics", handlers.HandleAnalytics(deps))
		api.GET("/words", handlers.HandleWords(deps))

		// ── Wallet ───────────────────────────────────────────────
		api.GET("/wallet", handlers.HandleWalletGet(deps))
		api.POST("/wallet/redeem", handlers.HandleWalletRedeem(deps))
		api.POST("/wallet/credits", handlers.HandleWalletAdd(deps))
		api.POST("/takeoffs/{id}/unlock", handlers.HandleTakeoffUnlock(deps))

		// ── Export ───────────────────────────────────────────────
		api.GET("/takeoffs/{id}/export/excel", handlers.HandleExportExcel(deps))
		api.GET("/takeoffs/{id}/export/pdf", handlers.HandleExportPDF(deps))
		api.GET("/import/template", handlers.HandleItemTemplate(deps))
		api.POST("/import/errors", handlers.HandleImportErrorReport(deps))

		se.Router.GET("/takeoffs/{id}/print", handlers.HandlePrint(deps))

		return se.Next()
	})

	if err := app.Start(); err != nil {
		logger.WithError(err).Fatal("server stopped")
	}
}

// walletStore selects the wallet persistence backend.
func walletStore(cfg config.Config, app core.App, logger *logrus.Logger) (services.KVStore, func(), error) {
	noop := func() {}
	switch cfg.WalletBackend {
	case config.WalletMemory:
		return services.NewMemoryStore(), noop, nil
	case config.WalletRedis:
		store, err := services.NewRedisStore(context.Background(), cfg.RedisAddr, cfg.RedisPrefix)
		if err != nil {
			return nil, nil, err
		}
		return store, func() {
			if err := store.Close(); err != nil {
				logger.WithError(err).Warn("close redis wallet store")
			}
		}, nil
	default:
		return collections.NewRecordStore(app), noop, nil
	}
}
