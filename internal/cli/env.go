package cli

import (
	"context"

	"board-sync/internal/config"
	"board-sync/internal/database"
	"board-sync/internal/logger"

	"go.uber.org/zap"
)

// env is what a one-shot command needs: configuration, a logger and a database
// connection that the command closes when done.
type env struct {
	cfg *config.Config
	db  *database.MongodbDB
	log *zap.Logger
}

func openEnv(ctx context.Context, opts *RootOptions) (*env, error) {
	cfg, err := config.LoadConfig()
	if err != nil {
		return nil, err
	}
	if opts.Verbose {
		cfg.Environment = "development"
	}

	log, err := logger.New(cfg)
	if err != nil {
		return nil, err
	}

	db, err := database.Connect(ctx, cfg)
	if err != nil {
		return nil, err
	}
	return &env{cfg: cfg, db: db, log: log}, nil
}

func (e *env) Close(ctx context.Context) {
	_ = e.log.Sync()
	_ = e.db.Client.Disconnect(ctx)
}
