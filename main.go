package main

import (
	"context"
	"log"

	"vidinsights/internal"
	"vidinsights/internal/config"
	"vidinsights/ui"

	"github.com/joho/godotenv"
)

func main() {
	if err := godotenv.Load(); err != nil {
		log.Println("No .env file found, using system environment variables")
	}

	appConfig, err := config.Load()
	if err != nil {
		log.Fatalf("Failed to load configuration: %v", err)
	}
	internal.DefaultLogger = internal.NewLogger(internal.ParseLogLevel(appConfig.LogLevel))

	app, err := ui.NewApp(context.Background(), appConfig)
	if err != nil {
		log.Fatalf("Failed to initialize application: %v", err)
	}

	log.Printf("Starting vidinsights server on port %s", appConfig.Server.Port)
	log.Fatal(app.Start())
}
