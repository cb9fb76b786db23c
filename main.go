package main

import (
	"context"
	"flag"
	"fmt"
	"io"
	"log"
	"log/slog"
	"net/http"
	"os"
	"os/signal"
	"path/filepath"
	"syscall"
	"time"

	"flicksvault/api"
	"flicksvault/config"
	"flicksvault/handlers"
	"flicksvault/internal/kv"
	"flicksvault/services/collection"
	"flicksvault/services/watchlists"

	"github.com/gorilla/mux"
	"github.com/spf13/afero"
	"gopkg.in/natefinch/lumberjack.v2"
)

func main() {
	portOverride := flag.Int("port", 0, "override server port from config")
	dataOverride := flag.String("data", "", "override storage directory from config")
	flag.Parse()

	// Determine config path (env or default)
	configPath := os.Getenv("FLICKSVAULT_CONFIG")
	if configPath == "" {
		configPath = filepath.Join("data", "settings.json")
	}

	// Init config manager and load settings (creates defaults if missing)
	cfgManager := config.NewManager(configPath)
	settings, err := cfgManager.Load()
	if err != nil {
		log.Fatalf("failed to load settings: %v", err)
	}

	// Set up file logging with rotation
	if settings.Log.File != "" {
		logDir := filepath.Dir(settings.Log.File)
		if err := os.MkdirAll(logDir, 0o755); err != nil {
			log.Printf("Warning: could not create log directory %s: %v", logDir, err)
		} else {
			fileWriter := &lumberjack.Logger{
				Filename:   settings.Log.File,
				MaxSize:    settings.Log.MaxSize,
				MaxBackups: settings.Log.MaxBackups,
				MaxAge:     settings.Log.MaxAge,
				Compress:   settings.Log.Compress,
			}
			multiWriter := io.MultiWriter(os.Stdout, fileWriter)
			log.SetOutput(multiWriter)
			log.SetFlags(log.LstdFlags | log.Lshortfile)
			log.Printf("Logging to file: %s", settings.Log.File)
		}
	}

	if *portOverride > 0 {
		settings.Server.Port = *portOverride
	}
	if *dataOverride != "" {
		settings.Storage.Directory = *dataOverride
	}

	store, err := kv.NewFileStore(afero.NewOsFs(), settings.Storage.Directory)
	if err != nil {
		log.Fatalf("failed to open storage: %v", err)
	}

	collectionSvc, err := collection.NewService(store)
	if err != nil {
		log.Fatalf("failed to init collection service: %v", err)
	}
	watchlistSvc, err := watchlists.NewService(store)
	if err != nil {
		log.Fatalf("failed to init watchlist service: %v", err)
	}

	collectionSvc.Subscribe(func() {
		slog.Debug("collection changed", "total", collectionSvc.Stats().Total)
	})
	watchlistSvc.Subscribe(func() {
		slog.Debug("watchlists changed", "count", len(watchlistSvc.List()))
	})

	moviesHandler := handlers.NewMoviesHandler(collectionSvc, watchlistSvc, settings.Uploads.MaxPosterBytes)
	watchlistsHandler := handlers.NewWatchlistsHandler(watchlistSvc)

	router := mux.NewRouter()
	api.Register(router, moviesHandler, watchlistsHandler)

	addr := fmt.Sprintf("%s:%d", settings.Server.Host, settings.Server.Port)
	srv := &http.Server{
		Addr:         addr,
		Handler:      router,
		ReadTimeout:  15 * time.Second,
		WriteTimeout: 15 * time.Second,
	}

	go func() {
		log.Printf("flicksvault listening on %s", addr)
		if err := srv.ListenAndServe(); err != nil && err != http.ErrServerClosed {
			log.Fatalf("server error: %v", err)
		}
	}()

	stop := make(chan os.Signal, 1)
	signal.Notify(stop, syscall.SIGINT, syscall.SIGTERM)
	<-stop

	log.Println("Shutting down...")
	shutdownCtx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()

	if err := srv.Shutdown(shutdownCtx); err != nil {
		log.Printf("Server shutdown error: %v", err)
	}

	log.Println("Shutdown complete")
}
