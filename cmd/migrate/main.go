package main

import (
	"os"

	"github.com/riftresearch/swap-coordinator/internal/model"
	pgstore "github.com/riftresearch/swap-coordinator/internal/store/postgres"
	"github.com/riftresearch/swap-coordinator/internal/utils/config"
	"github.com/riftresearch/swap-coordinator/internal/utils/logger"
)

func main() {
	appConfig := config.New()
	logger := logger.New(appConfig.Environment)

	db := pgstore.New(appConfig, logger)

	if err := db.AutoMigrate(&model.SwapOrder{}); err != nil {
		logger.Error("[main][AutoMigrate] failed to run migrations", map[string]string{
			"error": err.Error(),
		})
		os.Exit(1)
	}

	logger.Info("Migrations completed successfully")
}
