package main

import (
	"context"
	"log"
	"net/http"

	"github.com/aipowergrid/photo-gallery/internal/app"
	"github.com/aipowergrid/photo-gallery/internal/config"
)

func main() {
	cfg, err := config.Load()
	if err != nil {
		log.Fatalf("invalid configuration: %v", err)
	}

	appInstance, err := app.New(context.Background(), cfg)
	if err != nil {
		log.Fatalf("failed to initialise app: %v", err)
	}
	defer appInstance.Close()

	log.Printf("photo gallery API listening on %s", cfg.Address)
	if err := http.ListenAndServe(cfg.Address, appInstance.Router()); err != nil {
		log.Fatalf("server stopped: %v", err)
	}
}
