package main

import (
	"context"
	"log/slog"
	"os"
	"time"

	"github.com/prepmate/backend/repository"
	"github.com/prepmate/backend/services"
	"go.mongodb.org/mongo-driver/mongo"
	"go.mongodb.org/mongo-driver/mongo/options"
	"gorm.io/driver/postgres"
	"gorm.io/gorm"
	"gorm.io/gorm/logger"
)

func main() {
	// Setup structured logging with JSON format
	jsonLogger := slog.New(slog.NewJSONHandler(os.Stdout, nil))
	slog.SetDefault(jsonLogger)

	// Load configuration
	config := services.LoadConfig()

	// Connect to MongoDB (live session store)
	ctx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()

	mongoClient, err := mongo.Connect(ctx, options.Client().ApplyURI(config.Mongo.URI))
	if err != nil {
		slog.Error("Failed to connect to MongoDB", "error", err)
		os.Exit(1)
	}
	if err := mongoClient.Ping(ctx, nil); err != nil {
		slog.Error("Failed to ping MongoDB", "error", err)
		os.Exit(1)
	}
	defer mongoClient.Disconnect(context.Background())
	mongoDB := mongoClient.Database(config.Mongo.Database)
	slog.Info("Connected to MongoDB", "database", config.Mongo.Database)

	// Connect to Postgres (report store)
	var gormDB *gorm.DB
	if config.Database.URL != "" {
		gormDB, err = gorm.Open(postgres.Open(config.Database.URL), &gorm.Config{
			Logger: gormLogger(config.Database.LogLevel),
		})
		if err != nil {
			slog.Error("Failed to connect to Postgres", "error", err)
			os.Exit(1)
		}

		if sqlDB, err := gormDB.DB(); err == nil {
			sqlDB.SetMaxIdleConns(config.Database.MaxIdleConns)
			sqlDB.SetMaxOpenConns(config.Database.MaxOpenConns)
		}

		if err := repository.NewReportRepository(gormDB).AutoMigrate(); err != nil {
			slog.Error("Failed to run migrations", "error", err)
			os.Exit(1)
		}
		slog.Info("Connected to Postgres and ran migrations")
	} else {
		slog.Warn("Database URL not configured, report persistence disabled")
	}

	// Build the server
	server := services.NewServer(config)
	server.SetStores(mongoClient, mongoDB, gormDB)
	if err := server.InitializeServices(); err != nil {
		slog.Error("Failed to initialize services", "error", err)
		os.Exit(1)
	}

	// Seed the default tag catalog
	if config.Database.Seed {
		seeder := services.NewTagSeeder(repository.NewTagRepository(mongoDB))
		if err := seeder.SeedTags(ctx); err != nil {
			slog.Error("Failed to seed default tags", "error", err)
		}
	}

	server.Start()
}

func gormLogger(level string) logger.Interface {
	switch level {
	case "info":
		return logger.Default.LogMode(logger.Info)
	case "warn":
		return logger.Default.LogMode(logger.Warn)
	case "error":
		return logger.Default.LogMode(logger.Error)
	default:
		return logger.Default.LogMode(logger.Silent)
	}
}
