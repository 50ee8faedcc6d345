package main

import (
	"context"
	"fmt"
	"os"
	"os/signal"
	"syscall"
	"time"

	"event_hub/clock"
	"event_hub/config"
	"event_hub/database"
	"event_hub/handler"
	"event_hub/helper"
	"event_hub/logger"
	"event_hub/repository"
	"event_hub/router"
	"event_hub/service"

	"go.uber.org/zap"
)

func main() {
	settings, err := config.Load()
	if err != nil {
		fmt.Fprintln(os.Stderr, err)
		os.Exit(1)
	}

	log := logger.Must(settings.AppEnv)
	defer log.Sync()

	if err := run(settings, log); err != nil {
		log.Fatal("server stopped", zap.Error(err))
	}
}

func run(settings *config.Settings, log *zap.Logger) error {
	clk := clock.NewSystem()

	var store service.Store
	var seeder database.Seeder
	switch settings.DB.Driver {
	case "memory":
		mem := repository.NewMemoryStore(clk)
		store, seeder = mem, mem
		log.Warn("using in-memory store, data is lost on restart")
	default:
		db, err := database.Connect(settings.DB, log)
		if err != nil {
			return err
		}
		sqlDB, err := db.DB()
		if err != nil {
			return err
		}
		defer sqlDB.Close()

		pg := repository.NewStore(db)
		store, seeder = pg, pg
	}

	if settings.SeedData {
		if err := database.SeedData(context.Background(), seeder, clk.Now(), log); err != nil {
			return fmt.Errorf("seed data: %w", err)
		}
	}

	var uploader handler.ImageUploader
	if settings.Cloudinary.Enabled() {
		cld, err := helper.NewCloudinaryUploader(settings.Cloudinary)
		if err != nil {
			return err
		}
		uploader = cld
	} else {
		log.Info("cloudinary is not configured, image uploads are disabled")
	}

	tokens := helper.NewTokenManager(settings.JWT.Secret, settings.JWT.TTL, clk)
	hub := handler.NewSeatHub(log.Named("seats"))

	h := handler.NewHandler(
		service.NewAuthService(store, tokens, log.Named("auth")),
		service.NewEventService(store, clk, hub, log.Named("events")),
		service.NewBookingService(store, hub, log.Named("bookings")),
		hub,
		uploader,
		log,
	)
	app := router.NewApp(h, tokens, settings.CORSOrigin, log.Named("http"))

	go func() {
		quit := make(chan os.Signal, 1)
		signal.Notify(quit, syscall.SIGINT, syscall.SIGTERM)
		<-quit
		log.Info("shutting down server")
		if err := app.ShutdownWithTimeout(10 * time.Second); err != nil {
			log.Error("server shutdown failed", zap.Error(err))
		}
	}()

	addr := fmt.Sprintf(":%d", settings.Port)
	log.Info("server starting", zap.String("addr", addr), zap.String("env", settings.AppEnv))
	return app.Listen(addr)
}
