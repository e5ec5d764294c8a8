package main

import (
	"log"

	"github.com/joho/godotenv"
	"github.com/letopis/letopis/internal/config"
	"github.com/letopis/letopis/internal/db"
	"github.com/letopis/letopis/internal/handler"
	"github.com/letopis/letopis/internal/router"
	"github.com/letopis/letopis/internal/service"
)

func main() {
	// Optional; real deployments configure through the environment.
	_ = godotenv.Load()

	cfg := config.Load()

	gdb, err := db.Init(cfg.DatabasePath)
	if err != nil {
		log.Fatalf("failed to initialize database: %v", err)
	}

	if cfg.RootAuthorName != "" {
		if err := db.EnsureRootAuthor(gdb, cfg.RootAuthorName, cfg.RootAuthorPass); err != nil {
			log.Fatalf("failed to ensure root author: %v", err)
		}
	}

	scheduler := service.NewScheduler(gdb)
	if err := scheduler.Start(); err != nil {
		log.Fatalf("failed to start publish scheduler: %v", err)
	}
	defer scheduler.Stop()

	api := handler.NewAPI(gdb, cfg.UploadDir, cfg.UploadURLPath)
	defer api.Tracker().Shutdown()

	r := router.Setup(&cfg, api)
	if err := r.Run(cfg.ListenAddr); err != nil {
		log.Fatalf("failed to run server: %v", err)
	}
}
