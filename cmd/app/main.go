package main

import (
	"fmt"
	"log"

	"github.com/receiptwise/backend/cmd/config"
	migration "github.com/receiptwise/backend/cmd/database/migrate"
	"github.com/receiptwise/backend/internal/utils"
)

func main() {
	utils.LoadConfig()
	zlog := config.NewLogger()

	db, err := config.ConnectDB()
	if err != nil {
		log.Fatalf("failed to connect database: %v", err)
	}

	if err := migration.Migrate(db); err != nil {
		log.Fatalf("failed to migrate database: %v", err)
	}

	store, err := config.NewStorage()
	if err != nil {
		log.Fatalf("failed to set up storage: %v", err)
	}

	queueClient := config.NewQueueClient()
	defer queueClient.Close()

	app, err := config.NewApp(db, store, queueClient, zlog)
	if err != nil {
		log.Fatalf("failed to set up application: %v", err)
	}

	port := utils.GetConfig("APP_PORT")
	if port == "" {
		port = "8080"
	}
	if err := app.Listen(fmt.Sprintf(":%s", port)); err != nil {
		log.Fatalf("server stopped: %v", err)
	}
}
