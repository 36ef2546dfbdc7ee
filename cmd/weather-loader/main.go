package main

import (
	"log"

	"github.com/Deven107/weather-etl-pipeline/internal/bootstrap"
)

func main() {
	app, err := bootstrap.NewLoader()
	if err != nil {
		log.Fatalf("Failed to initialize application: %v", err)
	}

	if err := app.Run(); err != nil {
		log.Fatalf("Application failed: %v", err)
	}
}
