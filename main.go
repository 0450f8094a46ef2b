package main

import (
	"time"

	"github.com/gradgate/gradgate/config"
	"github.com/gradgate/gradgate/models"
	"github.com/gradgate/gradgate/routes"
	"github.com/gradgate/gradgate/storage"
	"github.com/gradgate/gradgate/utils"
)

func main() {
	cfg := config.Load()

	// Initialize logger early
	if err := utils.InitLogger(cfg); err != nil {
		panic(err)
	}

	db := config.InitDatabase(&models.Application{}, &models.Attachment{})

	blobs, err := storage.NewDiskStore(cfg.StorageDir)
	if err != nil {
		utils.Sugar.Fatalf("blob store init failed: %v", err)
	}

	r := routes.SetupRouter(db, blobs)

	// Background reaping of blobs orphaned by partially failed submissions (best-effort)
	if cfg.OrphanReapEnabled {
		storage.StartOrphanReaper(db, blobs, 5*time.Minute, time.Duration(cfg.OrphanGraceMinutes)*time.Minute)
	}

	utils.Sugar.Infof("Starting server on port %s (graceful)", cfg.AppPort)
	if err := utils.GraceServer(":"+cfg.AppPort, r); err != nil {
		utils.Sugar.Fatalf("server stopped with error: %v", err)
	}
}
