package logger

import (
	"context"

	"board-sync/internal/config"
	"board-sync/internal/database"

	"go.uber.org/fx"
	"go.uber.org/zap"
	"go.uber.org/zap/zapcore"
)

// New builds the console logger used by every entrypoint.
func New(cfg *config.Config) (*zap.Logger, error) {
	var zapConfig zap.Config
	if cfg.Environment == "production" {
		zapConfig = zap.NewProductionConfig()
	} else {
		zapConfig = zap.NewDevelopmentConfig()
	}

	// Important: Enable Caller to get Function Name
	zapConfig.EncoderConfig.FunctionKey = "func"

	return zapConfig.Build()
}

// NewLogger is the fx constructor. With LOG_TO_DB enabled, warn and error entries are
// also mirrored into the function_logs collection.
func NewLogger(lc fx.Lifecycle, cfg *config.Config, mongodb *database.MongodbDB) (*zap.Logger, error) {
	baseLogger, err := New(cfg)
	if err != nil {
		return nil, err
	}
	if !cfg.LogToDB {
		return baseLogger, nil
	}

	dbWriter := NewDBLogWriter(mongodb.DB.Collection("function_logs"), cfg.Environment)
	lc.Append(fx.Hook{
		OnStop: func(ctx context.Context) error {
			dbWriter.Close()
			return baseLogger.Sync()
		},
	})

	finalCore := NewDBCore(baseLogger.Core(), dbWriter, zapcore.WarnLevel)
	return zap.New(finalCore, zap.AddCaller()), nil
}
