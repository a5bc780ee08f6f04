package main

import (
	"context"
	"fmt"
	"time"

	"go-bizops/internal/config"
	"go-bizops/internal/database"
	"go-bizops/internal/features/record"
	"go-bizops/internal/features/schema"
	"go-bizops/internal/features/user"
	"go-bizops/internal/logger"

	"go.mongodb.org/mongo-driver/mongo"
	"go.uber.org/fx"
	"go.uber.org/fx/fxevent"
	"go.uber.org/zap"
)

// Seed populates a development database with an admin account and a handful
// of records per module so search has something to chew on.
func Seed(
	lc fx.Lifecycle,
	userService user.UserService,
	userRepo user.UserRepository,
	recordRepo record.RecordRepository,
	registry *schema.Registry,
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

				logger.Info("Starting database seeding...")

				if _, err := userRepo.FindByUsername(ctx, "admin"); err == mongo.ErrNoDocuments {
					if _, err := userService.Register(ctx, "admin", "admin123", "admin@example.com", "admin"); err != nil {
						logger.Error("Failed to seed admin user", zap.Error(err))
						return
					}
					logger.Info("Seeded admin user")
				} else {
					logger.Info("Admin user exists, skipping")
				}

				for moduleName, rows := range sampleData() {
					count := 0
					for _, row := range rows {
						if _, err := recordRepo.Insert(ctx, moduleName, row); err != nil {
							logger.Error("Failed to seed record",
								zap.String("module", moduleName), zap.Error(err))
							continue
						}
						count++
					}
					logger.Info("Seeded module records",
						zap.String("module", moduleName), zap.Int("count", count))
				}

				logger.Info("Seeding complete")
			}()
			return nil
		},
	})
}

func sampleData() map[string][]map[string]any {
	areas := []string{"North", "South", "East", "West"}
	skus := []string{"Premium Basmati 25kg", "Classic Basmati 10kg", "Golden Sella 25kg"}
	statuses := []string{"paid", "partial", "unpaid"}

	data := map[string][]map[string]any{}

	for i := 0; i < 12; i++ {
		data["sales_transactions"] = append(data["sales_transactions"], map[string]any{
			"dealer":           fmt.Sprintf("Dealer %c Traders", 'A'+i),
			"area":             areas[i%len(areas)],
			"sku":              skus[i%len(skus)],
			"cases":            5 + i*3,
			"rate":             1200.0 + float64(i)*25,
			"amount":           float64(5+i*3) * (1200.0 + float64(i)*25),
			"transaction_date": time.Now().AddDate(0, 0, -i*2),
			"payment_status":   statuses[i%len(statuses)],
			"notes":            "",
		})
	}

	orderStatuses := []string{"pending", "in_production", "dispatched", "delivered"}
	for i := 0; i < 8; i++ {
		data["orders"] = append(data["orders"], map[string]any{
			"client":                  fmt.Sprintf("Client %c", 'A'+i),
			"area":                    areas[i%len(areas)],
			"sku":                     skus[i%len(skus)],
			"number_of_cases":         10 + i*5,
			"tentative_delivery_date": time.Now().AddDate(0, 0, 7+i),
			"status":                  orderStatuses[i%len(orderStatuses)],
		})
	}

	for i := 0; i < 6; i++ {
		data["customers"] = append(data["customers"], map[string]any{
			"name":                fmt.Sprintf("Customer %c Stores", 'A'+i),
			"area":                areas[i%len(areas)],
			"phone":               fmt.Sprintf("+91 98765 4321%d", i),
			"email":               fmt.Sprintf("customer%d@example.com", i),
			"outstanding_balance": float64(i) * 15000,
			"active":              i%5 != 4,
		})
	}

	for i := 0; i < 5; i++ {
		data["label_purchases"] = append(data["label_purchases"], map[string]any{
			"vendor":         fmt.Sprintf("Label Vendor %d", i+1),
			"label_type":     []string{"Printed", "Plain", "Holographic"}[i%3],
			"quantity":       1000 * (i + 1),
			"rate":           2.5 + float64(i)*0.5,
			"amount":         float64(1000*(i+1)) * (2.5 + float64(i)*0.5),
			"purchase_date":  time.Now().AddDate(0, -1, -i*3),
			"payment_status": statuses[i%len(statuses)],
		})
	}

	return data
}

func main() {
	app := fx.New(
		fx.Provide(
			config.LoadConfig,
			logger.NewLogger,
			database.NewDatabase,
			schema.NewRegistry,
			record.NewRecordRepository,
			user.NewUserRepository,
			user.NewUserService,
		),
		fx.WithLogger(func(log *zap.Logger) fxevent.Logger {
			return &fxevent.ZapLogger{Logger: log}
		}),
		fx.Invoke(Seed),
	)

	app.Run()
}
