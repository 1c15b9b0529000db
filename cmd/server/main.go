package main

import (
	"log/slog"
	"net/http"
	"os"

	"github.com/codedrop/server/internal/config"
	"github.com/codedrop/server/internal/relay"
	"github.com/codedrop/server/internal/server"
)

func main() {
	logger := slog.New(slog.NewTextHandler(os.Stdout, nil))
	slog.SetDefault(logger)

	cfg := config.Load()

	// The hub's run loop is the single goroutine that mutates room
	// state; everything else talks to it over channels.
	hub := relay.NewHub(logger)
	go hub.Run()

	router := server.NewRouter(hub, cfg, logger)

	logger.Info("relay server listening", "port", cfg.Port)
	if err := http.ListenAndServe(":"+cfg.Port, router); err != nil {
		logger.Error("server exited", "error", err)
		os.Exit(1)
	}
}
