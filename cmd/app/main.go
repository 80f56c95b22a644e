package main

import (
	"elc/config"
	"elc/di"
	"elc/helper"
	"elc/shared/logger"

	"github.com/rs/zerolog/log"
)

// @title ELC Connect API
// @version 1.0
// @description Room booking, attendance and learning resources for the English Learning Center.
// @BasePath /
// @securityDefinitions.apikey BearerAuth
// @in header
// @name Authorization
// @description Type "Bearer" followed by a space and the access token.
func main() {
	cfg := config.Get()

	logger.InitLogger()

	logger.SetLogLevel(cfg)

	if err := helper.AutoMigrate(cfg); err != nil {
		log.Fatal().Err(err).Msg("Failed to run database migrations")
	}

	http, cleanup := di.InitializeService()
	defer cleanup()

	http.Serve()
}
