package main

import (
	"github.com/wfunc/grapeserver/config"
	"github.com/wfunc/grapeserver/logger"
	"github.com/wfunc/grapeserver/persistence"
	"github.com/wfunc/grapeserver/server"
)

func main() {
	// Initialize logger
	logger.Init()

	// Load configuration
	cfg, err := config.LoadConfig(".")
	if err != nil {
		logger.Log.Fatalf("Failed to load configuration: %v", err)
	}

	// Initialize database (optional; without it games are not recorded)
	var db persistence.Database
	switch cfg.Database.Driver {
	case "gorm":
		db, err = persistence.NewGormPostgreSQL(
			cfg.Database.Postgres.Host,
			cfg.Database.Postgres.Port,
			cfg.Database.Postgres.User,
			cfg.Database.Postgres.Password,
			cfg.Database.Postgres.DBName,
		)
	case "postgres":
		db, err = persistence.NewPostgreSQL(
			cfg.Database.Postgres.Host,
			cfg.Database.Postgres.Port,
			cfg.Database.Postgres.User,
			cfg.Database.Postgres.Password,
			cfg.Database.Postgres.DBName,
		)
	}
	if err != nil {
		logger.Log.Fatalf("Failed to connect to database: %v", err)
	}
	if db != nil {
		logger.Log.Info("Database connection successful.")
		defer db.Close()
	}

	// Initialize game server
	gameServer := server.NewGameServer(cfg, db)

	// Start server
	logger.Log.Infof("Starting grape server on %s", cfg.Server.HTTPAddress)
	if err := gameServer.Start(); err != nil {
		logger.Log.Fatalf("Failed to start server: %v", err)
	}
}
