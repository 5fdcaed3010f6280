package main

import (
	"context"
	"fmt"

	common_api "board-sync/internal/common/api"
	"board-sync/internal/config"
	"board-sync/internal/database"
	"board-sync/internal/features/chat"
	"board-sync/internal/features/email"
	"board-sync/internal/features/notification"
	"board-sync/internal/features/settings"
	"board-sync/internal/features/sheets"
	"board-sync/internal/features/sync"
	"board-sync/internal/features/system"
	"board-sync/internal/logger"
	"board-sync/internal/middleware"
	"board-sync/pkg/utils"

	"github.com/gofiber/fiber/v2"
	"go.uber.org/fx"
	"go.uber.org/fx/fxevent"
	"go.uber.org/zap"
)

// NewFiberServer creates a new Fiber app instance
func NewFiberServer(cfg *config.Config) *fiber.App {
	app := fiber.New(fiber.Config{
		DisableStartupMessage: true,
		ErrorHandler: func(c *fiber.Ctx, err error) error {
			code := fiber.StatusInternalServerError
			if e, ok := err.(*fiber.Error); ok {
				code = e.Code
			}
			return c.Status(code).JSON(fiber.Map{
				"error": err.Error(),
			})
		},
	})

	app.Use(middleware.CORSMiddleware(cfg.CORSOrigins))

	return app
}

// AsRoute tags the constructor so Fx adds it to the "routes" group.
func AsRoute(f any) any {
	return fx.Annotate(
		f,
		fx.As(new(common_api.Route)),
		fx.ResultTags(`group:"routes"`),
	)
}

// RegisterAllRoutes calls Setup() on every member of the "routes" group.
func RegisterAllRoutes(app *fiber.App, routes []common_api.Route, log *zap.Logger) {
	for _, route := range routes {
		log.Debug("setting up route", zap.String("type", fmt.Sprintf("%T", route)))
		route.Setup(app)
	}
	log.Info("routes registered", zap.Int("count", len(routes)))
}

var RegisterAllRoutesWithAnnotation = fx.Annotate(
	RegisterAllRoutes,
	fx.ParamTags(``, `group:"routes"`, ``),
)

// StartServer starts Fiber in a goroutine and shuts it down when the app exits.
func StartServer(lc fx.Lifecycle, app *fiber.App, cfg *config.Config, log *zap.Logger, shutdowner fx.Shutdowner) {
	lc.Append(fx.Hook{
		OnStart: func(ctx context.Context) error {
			go func() {
				port := fmt.Sprintf(":%s", cfg.Port)
				log.Info("http server listening", zap.String("addr", port))
				if err := app.Listen(port); err != nil {
					log.Error("server failed", zap.Error(err))
					_ = shutdowner.Shutdown(fx.ExitCode(1))
				}
			}()
			return nil
		},
		OnStop: func(ctx context.Context) error {
			return app.ShutdownWithContext(ctx)
		},
	})
}

func NewSheetsReader(cfg *config.Config) (sheets.Reader, error) {
	return sheets.NewReader(context.Background(), cfg.Sheets)
}

func NewReplacer(store sync.DocumentStore, cfg *config.Config, log *zap.Logger) *sync.Replacer {
	return sync.NewReplacer(store, cfg.Sync.BatchSize, log)
}

func NewLease(mongodb *database.MongodbDB, cfg *config.Config) sync.Lease {
	return sync.NewMongoLease(mongodb, cfg.Sync.LeaseCollection, cfg.Sync.LeaseTTL)
}

func NewMailer(cfg *config.Config) email.Mailer {
	return email.NewSMTPMailer(cfg.SMTP)
}

// StartScheduler runs scheduled syncs when SYNC_SCHEDULE is set.
func StartScheduler(lc fx.Lifecycle, cfg *config.Config, service sync.SyncService, log *zap.Logger) error {
	scheduler, err := sync.NewScheduler(cfg.Sync.Schedule, service, log)
	if err != nil {
		return err
	}
	lc.Append(fx.Hook{
		OnStart: func(ctx context.Context) error {
			scheduler.Start()
			return nil
		},
		OnStop: func(ctx context.Context) error {
			return scheduler.Stop(ctx)
		},
	})
	return nil
}

func main() {
	app := fx.New(
		fx.Provide(
			// Load Config
			config.LoadConfig,

			// Initialize Logger
			logger.NewLogger,

			// Initialize Fiber Server
			NewFiberServer,

			// Initialize Database
			database.NewDatabase,

			// Initialize Repository
			settings.NewSettingsRepository,
			sync.NewSyncRunRepository,
			sync.NewMongoStore,
			email.NewFailureRepository,
			notification.NewOutboxRepository,
			notification.NewTokenStore,
			chat.NewChatRepository,

			// External systems
			NewSheetsReader,
			NewMailer,
			NewLease,

			settings.NewSettingsService,
			sync.BuildOptions,
			NewReplacer,
			sync.NewSyncService,
			notification.NewDispatcher,
			notification.NewWatchers,
			chat.NewChatService,

			// Interface Adapters
			func(s settings.SettingsService) sync.BoardNameWriter { return s },
			func(s settings.SettingsService) notification.RecipientSource { return s },

			// Initialize Controller
			sync.NewSyncController,
			settings.NewSettingsController,
			chat.NewChatController,
			system.NewDebugController,

			// Initialize API Routes
			AsRoute(sync.NewSyncApi),
			AsRoute(settings.NewSettingsApi),
			AsRoute(chat.NewChatApi),
			AsRoute(system.NewHealthApi),
			AsRoute(system.NewDebugApi),
		),
		fx.WithLogger(func(log *zap.Logger) fxevent.Logger {
			return &fxevent.ZapLogger{Logger: log}
		}),
		fx.Invoke(
			func(cfg *config.Config) { utils.SetSecret(cfg.JWTSecret) },
			RegisterAllRoutesWithAnnotation,
			StartServer,
			StartScheduler,
			notification.RegisterWatchers,
		),
	)

	app.Run()
}
