package main

import (
	"context"
	"dronetracker/internal/app"
	"log"
)

func main() {
	ctx := context.Background()

	application, err := app.NewApp(ctx)
	if err != nil {
		log.Fatalf("Failed to start tracker: %v", err)
	}

	err = application.Run(ctx)
	application.Close()
	if err != nil {
		log.Fatalf("Tracking session ended with error: %v", err)
	}
}
