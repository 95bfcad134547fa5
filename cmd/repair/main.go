// Command repair runs the validate-and-repair pass over the persisted
// note and connection collections and exits. Useful after restoring a
// database file from another machine.
package main

import (
	"context"
	"log"

	"questnote/infrastructure/config"
	"questnote/infrastructure/di"

	"github.com/joho/godotenv"
	"go.uber.org/zap"
)

func main() {
	_ = godotenv.Load()

	cfg, err := config.LoadConfig()
	if err != nil {
		log.Fatalf("Failed to load configuration: %v", err)
	}

	container, err := di.InitializeContainer(cfg)
	if err != nil {
		log.Fatalf("Failed to initialize container: %v", err)
	}

	ctx := context.Background()

	notesRepaired := container.NoteStore.ValidateAndRepair(ctx)
	connsRepaired := container.ConnStore.ValidateAndRepair(ctx)

	container.Logger.Info("repair pass finished",
		zap.Bool("notesRepaired", notesRepaired),
		zap.Bool("connectionsRepaired", connsRepaired),
	)

	_ = container.Logger.Sync()
}
