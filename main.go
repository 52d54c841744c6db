package main

import (
	"context"
	"fmt"
	"os"
	"os/signal"
	"syscall"

	"github.com/gin-gonic/gin"
	"github.com/joho/godotenv"

	"tailorbook/config"
	"tailorbook/routes"
	"tailorbook/services"
	"tailorbook/utils"
)

func main() {
	// Load environment variables
	if err := godotenv.Load(); err != nil {
		fmt.Println("No .env file found")
	}

	log := utils.NewLogger(os.Getenv("APP_ENV"), os.Getenv("LOG_LEVEL"))
	if os.Getenv("APP_ENV") != "development" {
		gin.SetMode(gin.ReleaseMode)
	}

	db, err := config.ConnectDB()
	if err != nil {
		log.Fatal().Err(err).Msg("failed to connect database")
	}

	bus := services.NewBus(log)
	store := services.NewStore(db, bus, log)
	if err := store.Init(context.Background()); err != nil {
		log.Fatal().Err(err).Msg("failed to initialize store")
	}

	app := services.NewFacade(store, log)
	if err := app.Reload(context.Background()); err != nil {
		log.Fatal().Err(err).Msg("failed to load customer cache")
	}

	bus.Subscribe(func(ev services.Event) {
		log.Debug().Str("event", ev.Kind).Msg("store notification")
	})

	reminders := services.NewReminderService(store, log)
	reminders.StartScheduler()

	backups := services.NewBackupScheduler(store, log)
	if err := backups.Start(context.Background()); err != nil {
		log.Error().Err(err).Msg("backup scheduler failed to start")
	}

	r := routes.SetupRouter(db, store, app, log)
	printRoutes(r)

	// Flush debounced edits on shutdown, best effort.
	quit := make(chan os.Signal, 1)
	signal.Notify(quit, syscall.SIGINT, syscall.SIGTERM)
	go func() {
		<-quit
		log.Info().Msg("shutting down")
		app.Close()
		reminders.Stop()
		backups.Stop()
		os.Exit(0)
	}()

	host := os.Getenv("HOST")
	if host == "" {
		host = "127.0.0.1"
	}
	port := os.Getenv("PORT")
	if port == "" {
		port = "8080"
	}
	if err := r.Run(host + ":" + port); err != nil {
		log.Fatal().Err(err).Msg("server stopped")
	}
}

func printRoutes(r *gin.Engine) {
	routes := r.Routes()
	for _, route := range routes {
		fmt.Printf("%-6s %s\n", route.Method, route.Path)
	}
}
