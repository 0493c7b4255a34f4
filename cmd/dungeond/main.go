package main

import (
	"flag"
	"log"
	"os"
	"os/signal"
	"syscall"

	"github.com/lawnchairsociety/dungeongen/internal/config"
	"github.com/lawnchairsociety/dungeongen/internal/logger"
	"github.com/lawnchairsociety/dungeongen/internal/server"
	"github.com/lawnchairsociety/dungeongen/internal/store"
)

func main() {
	configFile := flag.String("config", "config/dungeongen.yaml", "Path to config YAML file")
	listen := flag.String("listen", "", "WebSocket listen address (default: from config)")
	tcpListen := flag.String("tcp", "", "Plain TCP listen address (default: from config, empty disables)")
	flag.Parse()

	cfg, err := config.LoadConfig(*configFile)
	if err != nil {
		log.Fatalf("Failed to load config: %v", err)
	}
	if *listen != "" {
		cfg.Server.Listen = *listen
	}
	if *tcpListen != "" {
		cfg.Server.TCPListen = *tcpListen
	}
	if err := cfg.Validate(); err != nil {
		log.Fatalf("Invalid config: %v", err)
	}

	// Initialize logger first (before any logging)
	logConfig, err := logger.LoadConfig(cfg.Logging.ConfigPath)
	if err != nil {
		log.Printf("Failed to load logging config, using defaults: %v", err)
	}
	if err := logger.Initialize(logConfig); err != nil {
		log.Fatalf("Failed to initialize logger: %v", err)
	}
	defer logger.Close()

	logger.Info("Starting dungeon layout service")

	entities, err := cfg.Entities.Factory()
	if err != nil {
		logger.Warning("Failed to load entity tables, using defaults", "path", cfg.Entities.TablesFile, "error", err)
		entities, _ = config.EntitiesConfig{}.Factory()
	}

	var st *store.Store
	if cfg.Store.Enabled {
		st, err = store.OpenWithConfig(cfg.Store.Config)
		if err != nil {
			logger.Error("Failed to open layout store", "driver", cfg.Store.Driver, "error", err)
			os.Exit(1)
		}
		defer st.Close()
	} else {
		logger.Info("Layout store disabled, layouts will not be cached")
	}

	switch origins := cfg.Server.WebSocket.AllowedOrigins; {
	case len(origins) == 0:
		logger.Info("WebSocket CORS policy", "mode", "same-origin")
	case len(origins) == 1 && origins[0] == "*":
		logger.Warning("WebSocket CORS allows all origins (not recommended for production)")
	default:
		logger.Info("WebSocket CORS policy", "allowed_origins", origins)
	}

	srv := server.NewServer(cfg, entities, st)

	errs := make(chan error, 2)
	go func() { errs <- srv.StartWebSocket() }()
	if cfg.Server.TCPListen != "" {
		go func() { errs <- srv.StartTCP() }()
	}

	logger.Info("Layout service running", "websocket", cfg.Server.Listen, "tcp", cfg.Server.TCPListen)
	logger.Info("Press Ctrl+C to shutdown")

	sigChan := make(chan os.Signal, 1)
	signal.Notify(sigChan, os.Interrupt, syscall.SIGTERM)

	select {
	case <-sigChan:
	case err := <-errs:
		if err != nil {
			logger.Error("Listener failed", "error", err)
		}
	}

	logger.Info("Shutting down server")
	srv.Shutdown()
	logger.Info("Server stopped")
}
