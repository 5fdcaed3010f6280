package main

import (
	"context"
	"encoding/json"
	"os"

	"board-sync/internal/config"
	"board-sync/internal/database"
	"board-sync/internal/features/settings"
	"board-sync/internal/features/sheets"
	"board-sync/internal/logger"

	"go.uber.org/fx"
	"go.uber.org/fx/fxevent"
	"go.uber.org/zap"
)

// seedData is the sample board used for local development with SHEETS_SOURCE=xlsx.
type seedData struct {
	NotificationEmail string         `json:"notificationEmail"`
	Sheets            []sheets.Sheet `json:"sheets"`
}

// Data path (assuming running from the repository root)
const dataPath = "cmd/seed/data/board.json"

func Seed(
	lc fx.Lifecycle,
	cfg *config.Config,
	settingsService settings.SettingsService,
	logger *zap.Logger,
	shutdowner fx.Shutdowner,
) {
	lc.Append(fx.Hook{
		OnStart: func(ctx context.Context) error {
			go func() {
				defer func() {
					if err := shutdowner.Shutdown(); err != nil {
						logger.Error("Failed to shutdown", zap.Error(err))
					}
				}()

				logger.Info("Seeding sample board", zap.String("data", dataPath))

				b, err := os.ReadFile(dataPath)
				if err != nil {
					logger.Error("Failed to read seed data", zap.Error(err))
					return
				}
				var data seedData
				if err := json.Unmarshal(b, &data); err != nil {
					logger.Error("Failed to parse seed data", zap.Error(err))
					return
				}

				// 1. Workbook for the xlsx reader
				if err := sheets.WriteWorkbook(cfg.Sheets.XLSXPath, data.Sheets); err != nil {
					logger.Error("Failed to write workbook", zap.Error(err))
					return
				}
				logger.Info("Workbook written", zap.String("path", cfg.Sheets.XLSXPath), zap.Int("sheets", len(data.Sheets)))

				// 2. Notification recipient
				ctx := context.Background()
				if data.NotificationEmail != "" {
					if err := settingsService.SetNotificationEmail(ctx, data.NotificationEmail); err != nil {
						logger.Error("Failed to seed notification email", zap.Error(err))
						return
					}
					logger.Info("Notification email set", zap.String("email", data.NotificationEmail))
				}

				logger.Info("Seeding completed; run `syncctl sync` with SHEETS_SOURCE=xlsx to load it")
			}()
			return nil
		},
	})
}

func main() {
	app := fx.New(
		fx.Provide(
			config.LoadConfig,
			logger.NewLogger,
			database.NewDatabase,
			settings.NewSettingsRepository,
			settings.NewSettingsService,
		),
		fx.WithLogger(func(log *zap.Logger) fxevent.Logger {
			return &fxevent.ZapLogger{Logger: log}
		}),
		fx.Invoke(Seed),
	)

	app.Run()
}
