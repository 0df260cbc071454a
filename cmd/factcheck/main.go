package main

import (
	"context"
	"errors"
	"flag"
	"fmt"
	"log/slog"
	"net/http"
	"os"
	"os/signal"
	"strings"
	"syscall"

	"github.com/professor-icebear/Mistral-Fact-Checker/internal/config"
	"github.com/professor-icebear/Mistral-Fact-Checker/internal/fetcher"
	"github.com/professor-icebear/Mistral-Fact-Checker/internal/mistral"
	"github.com/professor-icebear/Mistral-Fact-Checker/internal/server"
)

func main() {
	showVersion := flag.Bool("version", false, "Show version and exit")
	flag.Parse()

	cfg, err := config.Load()
	if err != nil {
		slog.Error("Failed to load config", "error", err)
		os.Exit(1)
	}

	if *showVersion {
		fmt.Printf("%s %s\n", cfg.APITitle, cfg.APIVersion)
		os.Exit(0)
	}

	var logLevel slog.Level
	switch strings.ToLower(cfg.LogLevel) {
	case "debug":
		logLevel = slog.LevelDebug
	case "warn":
		logLevel = slog.LevelWarn
	case "error":
		logLevel = slog.LevelError
	default:
		logLevel = slog.LevelInfo
	}
	slog.SetDefault(slog.New(slog.NewTextHandler(os.Stderr, &slog.HandlerOptions{Level: logLevel})))

	slog.Info("Starting Mistral Fact Checker API", "version", cfg.APIVersion)

	prompts, err := mistral.LoadPrompts(cfg.PromptsPath)
	if err != nil {
		slog.Error("Failed to load prompts", "error", err)
		os.Exit(1)
	}

	// A failed client init leaves the service up but unhealthy; /health
	// reports the connection state.
	var analyzer server.Analyzer
	client, err := mistral.NewClient(cfg, prompts)
	if err != nil {
		slog.Error("Failed to initialize Mistral client", "error", err)
	} else {
		slog.Info("Mistral client initialized", "text_model", cfg.TextModel, "vision_model", cfg.VisionModel)
		analyzer = client
	}

	srv := server.New(cfg, analyzer, fetcher.New(cfg))

	sigCh := make(chan os.Signal, 1)
	signal.Notify(sigCh, syscall.SIGINT, syscall.SIGTERM)

	go func() {
		<-sigCh
		slog.Info("Shutting down...")
		srv.Shutdown(context.Background())
	}()

	if err := srv.Start(); err != nil && !errors.Is(err, http.ErrServerClosed) {
		slog.Error("Server error", "error", err)
		os.Exit(1)
	}
}
