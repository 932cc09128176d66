package main

import (
	"context"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"plant_watering/internal/archive"
	"plant_watering/internal/config"
	"plant_watering/internal/events"
	"plant_watering/internal/handlers"
	"plant_watering/internal/logger"
	"plant_watering/internal/mqtt"
	"plant_watering/internal/relay"
	"plant_watering/internal/repository"
	"plant_watering/internal/repository/db"
	"plant_watering/internal/server"
	"plant_watering/internal/service"

	"github.com/rs/cors"
)

const shutdownTimeout = 10 * time.Second

func main() {
	boot := logger.Get(logger.InfoLevel)

	// load configs/config.yml, .env and PLANT_* overrides
	cfg, err := config.Load("")
	if err != nil {
		boot.Fatalw("error reading config", "err", err)
	}

	log := logger.New(cfg.Log.Level, cfg.Log.Format)
	defer func() { _ = log.Sync() }()

	// open DB
	database, err := db.InitDB(cfg.DB.Path)
	if err != nil {
		log.Fatalw("failed to init sqlite", "err", err, "path", cfg.DB.Path)
	}
	defer func() {
		if cerr := database.Close(); cerr != nil {
			log.Errorw("failed to close sqlite", "err", cerr)
		}
	}()

	// context for background goroutines
	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	// wire dependencies
	repos := repository.NewRepository(database)
	bus := events.NewBus(cfg.Bus, log)
	readingArchive, closeArchive := openArchive(cfg.Influx, log)
	defer closeArchive()
	startRelay(ctx, cfg.Redis, bus, log)

	var services *service.Service
	manager := mqtt.NewManager(cfg.MQTT, func(topic string, payload []byte) {
		services.HandleMessage(ctx, topic, payload)
	}, log)
	services = service.NewService(service.Deps{
		Repos:     repos,
		Bus:       bus,
		Publisher: manager,
		Archive:   readingArchive,
		JWTSecret: cfg.Auth.JWTSecret,
		Log:       log,
	})

	// paho keeps retrying in the background; HTTP is served either way
	if err := manager.Connect(); err != nil {
		log.Errorw("mqtt_initial_connect_failed", "err", err, "broker", cfg.MQTT.Broker)
	}

	apiHandler := handlers.NewHandler(services, bus, manager, log).WithAllowedOrigins(cfg.CORS.AllowedOrigins)
	router := withCORS(cfg.CORS, apiHandler.InitRoutes())

	// start HTTP server
	srv := &server.Server{}
	runHTTPServer(ctx, srv, cfg.Port, router, log)

	// graceful shutdown
	waitForShutdown(cancel, srv, manager, log)
}

// openArchive returns the InfluxDB archive when enabled, otherwise a no-op.
func openArchive(cfg config.InfluxConfig, log *logger.Logger) (service.ReadingArchive, func()) {
	if !cfg.Enabled {
		return archive.Nop{}, func() {}
	}
	a := archive.NewInflux(cfg)
	log.Infow("influx_archive_enabled", "url", cfg.URL, "org", cfg.Org, "bucket", cfg.Bucket)
	return a, a.Close
}

// startRelay mirrors bus events to a Redis stream when enabled.
func startRelay(ctx context.Context, cfg config.RedisConfig, bus *events.Bus, log *logger.Logger) {
	if !cfg.Enabled {
		return
	}
	client := relay.NewClient(cfg)
	if err := client.Ping(ctx).Err(); err != nil {
		log.Warnw("redis_ping_failed", "err", err, "addr", cfg.Addr)
	}
	r := relay.New(client, bus, cfg, log)
	go func() {
		r.Run(ctx)
		_ = client.Close()
	}()
}

func withCORS(cfg config.CORSConfig, h http.Handler) http.Handler {
	c := cors.New(cors.Options{
		AllowedOrigins:   cfg.AllowedOrigins,
		AllowedMethods:   []string{http.MethodGet, http.MethodPost, http.MethodOptions},
		AllowedHeaders:   []string{"Content-Type", "Authorization"},
		AllowCredentials: true,
	})
	return c.Handler(h)
}

// runHTTPServer runs the HTTP server in a separate goroutine.
func runHTTPServer(ctx context.Context, srv *server.Server, port string, handler http.Handler, log *logger.Logger) {
	go func() {
		log.Infow("http_listening", "port", port)
		if err := srv.Run(ctx, port, handler); err != nil && err != http.ErrServerClosed {
			log.Fatalw("error starting server", "err", err)
		}
	}()
}

// waitForShutdown listens for termination signals and performs graceful shutdown.
func waitForShutdown(cancel context.CancelFunc, srv *server.Server, manager *mqtt.Manager, log *logger.Logger) {
	quit := make(chan os.Signal, 1)
	signal.Notify(quit, syscall.SIGINT, syscall.SIGTERM)
	<-quit

	log.Infow("shutting down server...")

	// stop inbound MQTT traffic before the DB closes
	manager.Disconnect()

	// stop background goroutines and open event streams
	cancel()

	ctx, shutdownCancel := context.WithTimeout(context.Background(), shutdownTimeout)
	defer shutdownCancel()

	if err := srv.Shutdown(ctx); err != nil {
		log.Errorw("server forced to shutdown", "err", err)
	}
}
