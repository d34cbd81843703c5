package config

import (
	"os"
	"time"

	"github.com/gofiber/fiber/v2"
	"github.com/gofiber/fiber/v2/middleware/limiter"
	"github.com/gofiber/fiber/v2/middleware/logger"
	"github.com/hibiken/asynq"
	"github.com/rs/zerolog"
	"gorm.io/gorm"

	"github.com/receiptwise/backend/internal/api/handlers"
	"github.com/receiptwise/backend/internal/api/routes"
	"github.com/receiptwise/backend/internal/middleware"
	"github.com/receiptwise/backend/internal/utils"
	"github.com/receiptwise/backend/internal/utils/storage"
	"github.com/receiptwise/backend/pkg/expense"
	"github.com/receiptwise/backend/pkg/jwt"
	"github.com/receiptwise/backend/pkg/mailparse"
	"github.com/receiptwise/backend/pkg/processing"
	"github.com/receiptwise/backend/pkg/receipt"
	"github.com/receiptwise/backend/pkg/user"
)

func NewLogger() zerolog.Logger {
	zerolog.TimeFieldFormat = time.RFC3339
	return zerolog.New(os.Stdout).With().Timestamp().Logger()
}

func NewStorage() (storage.Storage, error) {
	s3, err := storage.NewAwsS3()
	if err != nil {
		return nil, err
	}
	return storage.NewManager(map[string]storage.Disk{
		"public": storage.NewLocalDisk(utils.GetConfig("STORAGE_LOCAL_DIR")),
		"s3":     s3,
	}), nil
}

func NewQueueClient() *asynq.Client {
	return asynq.NewClient(asynq.RedisClientOpt{
		Addr:     utils.GetConfig("REDIS_ADDR"),
		Password: utils.GetConfig("REDIS_PASSWORD"),
	})
}

func NewApp(db *gorm.DB, store storage.Storage, queueClient *asynq.Client, zlog zerolog.Logger) (*fiber.App, error) {
	utils.InitValidator()
	app := fiber.New(fiber.Config{
		EnablePrintRoutes: true,
		BodyLimit:         25 * 1024 * 1024,
	})
	middlewares := middleware.NewMiddleware()
	validator := utils.Validate

	app.Use(logger.New(logger.Config{
		TimeFormat: "2006-01-02 15:04:05",
		TimeZone:   "UTC",
	}))

	app.Use(limiter.New(limiter.Config{
		Max:        10,
		Expiration: 1 * time.Second,
	}))

	queue := processing.NewQueue(queueClient, zlog)

	// Repository
	userRepository := user.NewUserRepository(db)
	receiptRepository := receipt.NewReceiptRepository(db)

	// Service
	jwtService := jwt.NewJWTService()
	userService := user.NewUserService(userRepository, jwtService, zlog)
	receiptService := receipt.NewReceiptService(receiptRepository, store, queue, zlog)
	expenseService := expense.NewExpenseService(receiptRepository, zlog)
	emailIngestService := processing.NewEmailIngestService(
		userRepository,
		receiptRepository,
		store,
		mailparse.NewExtractor(zlog),
		queue,
		zlog,
	)

	// Handler
	userHandler := handlers.NewUserHandler(userService, validator)
	receiptHandler := handlers.NewReceiptHandler(receiptService, validator)
	expenseHandler := handlers.NewExpenseHandler(expenseService)
	webhookHandler := handlers.NewWebhookHandler(emailIngestService, queue, validator)

	// routes
	routesConfig := routes.Config{
		App:            app,
		UserHandler:    userHandler,
		ReceiptHandler: receiptHandler,
		ExpenseHandler: expenseHandler,
		WebhookHandler: webhookHandler,
		Middleware:     middlewares,
		JWTService:     jwtService,
	}
	routesConfig.Setup()
	return app, nil
}
