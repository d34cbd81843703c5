package config

import (
	"github.com/hibiken/asynq"
	"github.com/rs/zerolog"
	"gorm.io/gorm"

	"github.com/receiptwise/backend/internal/utils"
	"github.com/receiptwise/backend/internal/utils/storage"
	"github.com/receiptwise/backend/pkg/extraction"
	"github.com/receiptwise/backend/pkg/mailparse"
	"github.com/receiptwise/backend/pkg/processing"
	"github.com/receiptwise/backend/pkg/receipt"
	"github.com/receiptwise/backend/pkg/user"
)

// NewWorker builds the background job server. It shares repositories and
// storage with the API process but owns the extraction pipeline.
func NewWorker(db *gorm.DB, store storage.Storage, queueClient *asynq.Client, zlog zerolog.Logger) (*asynq.Server, *asynq.ServeMux) {
	server := asynq.NewServer(
		asynq.RedisClientOpt{
			Addr:     utils.GetConfig("REDIS_ADDR"),
			Password: utils.GetConfig("REDIS_PASSWORD"),
		},
		asynq.Config{
			Concurrency: 5,
		},
	)

	userRepository := user.NewUserRepository(db)
	receiptRepository := receipt.NewReceiptRepository(db)
	queue := processing.NewQueue(queueClient, zlog)

	processorService := processing.NewProcessorService(
		receiptRepository,
		store,
		extraction.NewOptimizer(zlog),
		extraction.NewOpenAIClient(zlog),
		zlog,
	)
	emailIngestService := processing.NewEmailIngestService(
		userRepository,
		receiptRepository,
		store,
		mailparse.NewExtractor(zlog),
		queue,
		zlog,
	)

	mux := asynq.NewServeMux()
	mux.Handle(processing.TypeReceiptProcess, processing.NewReceiptProcessHandler(processorService))
	mux.Handle(processing.TypeEmailIngest, processing.NewEmailIngestHandler(emailIngestService))

	return server, mux
}
