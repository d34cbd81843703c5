package main

import (
	"log"

	"github.com/receiptwise/backend/cmd/config"
	"github.com/receiptwise/backend/internal/utils"
)

func main() {
	utils.LoadConfig()
	zlog := config.NewLogger()

	db, err := config.ConnectDB()
	if err != nil {
		log.Fatalf("failed to connect database: %v", err)
	}

	store, err := config.NewStorage()
	if err != nil {
		log.Fatalf("failed to set up storage: %v", err)
	}

	queueClient := config.NewQueueClient()
	defer queueClient.Close()

	server, mux := config.NewWorker(db, store, queueClient, zlog)
	if err := server.Run(mux); err != nil {
		log.Fatalf("worker stopped: %v", err)
	}
}
