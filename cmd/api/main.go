package main

import (
	"context"
	"fmt"
	"log"

	common_api "go-bizops/internal/common/api"
	"go-bizops/internal/config"
	"go-bizops/internal/database"
	"go-bizops/internal/features/bulk_operation"
	"go-bizops/internal/features/maintenance"
	"go-bizops/internal/features/notification"
	"go-bizops/internal/features/record"
	"go-bizops/internal/features/saved_filter"
	"go-bizops/internal/features/schema"
	"go-bizops/internal/features/search"
	"go-bizops/internal/features/sync"
	"go-bizops/internal/features/user"
	"go-bizops/internal/logger"
	"go-bizops/internal/middleware"
	"go-bizops/pkg/utils"

	"github.com/gofiber/fiber/v2"
	"go.uber.org/fx"
	"go.uber.org/fx/fxevent"
	"go.uber.org/zap"
)

// NewFiberServer creates a new Fiber app instance
func NewFiberServer() *fiber.App {
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

	app.Use(middleware.CORSMiddleware())

	return app
}

// AsRoute is a helper function to reduce boilerplate.
// It tags the constructor so Fx knows to add it to the "routes" group.
func AsRoute(f any) any {
	return fx.Annotate(
		f,
		fx.As(new(common_api.Route)),
		fx.ResultTags(`group:"routes"`),
	)
}

// RegisterAllRoutes takes the group "routes" (slice of interfaces)
// and calls Setup() on each one.
func RegisterAllRoutes(app *fiber.App, routes []common_api.Route) {
	for _, route := range routes {
		route.Setup(app)
	}
}

var RegisterAllRoutesWithAnnotation = fx.Annotate(
	RegisterAllRoutes,
	fx.ParamTags(``, `group:"routes"`),
)

// StartServer creates a lifecycle hook to start Fiber in a goroutine
// and shut it down when the app exits.
func StartServer(lc fx.Lifecycle, app *fiber.App, cfg *config.Config) {
	lc.Append(fx.Hook{
		OnStart: func(ctx context.Context) error {
			go func() {
				port := fmt.Sprintf(":%s", cfg.Port)
				if err := app.Listen(port); err != nil {
					log.Fatalf("Server failed to start: %v", err)
				}
			}()
			return nil
		},
		OnStop: func(ctx context.Context) error {
			return app.Shutdown()
		},
	})
}

func main() {
	app := fx.New(
		fx.Provide(
			config.LoadConfig,
			logger.NewLogger,
			NewFiberServer,
			database.NewDatabase,
			schema.NewRegistry,

			record.NewRecordRepository,
			saved_filter.NewSavedFilterRepository,
			bulk_operation.NewBulkOperationRepository,
			notification.NewNotificationRepository,
			sync.NewSyncLogRepository,
			user.NewUserRepository,

			notification.NewHub,
			notification.NewNotificationService,
			search.NewExecutor,
			saved_filter.NewSavedFilterService,
			bulk_operation.NewBulkOperationService,
			sync.NewSyncService,
			user.NewUserService,
			maintenance.NewScheduler,

			// Interface adapter so bulk operations can report outcomes
			// without depending on the notification package directly.
			func(s notification.NotificationService) bulk_operation.Notifier { return s },

			search.NewSearchController,
			search.NewLiveController,
			saved_filter.NewSavedFilterController,
			bulk_operation.NewBulkOperationController,
			notification.NewNotificationController,
			sync.NewSyncController,
			user.NewUserController,

			AsRoute(search.NewSearchApi),
			AsRoute(saved_filter.NewSavedFilterApi),
			AsRoute(bulk_operation.NewBulkOperationApi),
			AsRoute(notification.NewNotificationApi),
			AsRoute(sync.NewSyncApi),
			AsRoute(user.NewUserApi),
		),
		fx.WithLogger(func(log *zap.Logger) fxevent.Logger {
			return &fxevent.ZapLogger{Logger: log}
		}),
		fx.Invoke(
			func(cfg *config.Config) {
				utils.SetSecret(cfg.JWTSecret)
			},
			RegisterAllRoutesWithAnnotation,
			StartServer,
			func(lc fx.Lifecycle, scheduler *maintenance.Scheduler) {
				lc.Append(fx.Hook{
					OnStart: func(ctx context.Context) error {
						return scheduler.Start()
					},
					OnStop: func(ctx context.Context) error {
						scheduler.Stop()
						return nil
					},
				})
			},
		),
	)

	app.Run()
}
