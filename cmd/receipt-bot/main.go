package main

import (
	"context"
	_ "embed"
	"fmt"
	"log/slog"
	"os"
	"os/signal"
	"strings"
	"syscall"

	"github.com/zombor/receipt-bot/internal/config"
	"github.com/zombor/receipt-bot/internal/messaging"
	"github.com/zombor/receipt-bot/internal/metrics"
	"github.com/zombor/receipt-bot/internal/receipt"
	"github.com/zombor/receipt-bot/internal/scanning"
)

//go:embed VERSION.txt
var versionFile string

var version = strings.TrimSpace(versionFile)

func main() {
	if err := config.LoadDotEnv(".env"); err != nil {
		slog.Error("Failed to load .env", "error", err)
		os.Exit(1)
	}

	cfg, err := config.Parse(os.Args[1:])
	if err != nil {
		fmt.Fprintf(os.Stderr, "%s\n", config.Usage())
		fmt.Fprintf(os.Stderr, "error: %v\n", err)
		os.Exit(1)
	}

	if cfg.ShowVersion {
		fmt.Println(version)
		os.Exit(0)
	}

	// Initialize scanner based on type
	var scanner scanning.Scanner
	switch cfg.Scanner {
	case config.ScannerGemini:
		slog.Info("Initializing Gemini scanner...", "model", cfg.GeminiModel)
		scanner, err = scanning.NewGemini(cfg.GeminiAPIKey, cfg.GeminiModel)
		if err != nil {
			slog.Error("Failed to initialize Gemini", "error", err)
			os.Exit(1)
		}
	case config.ScannerOllama:
		slog.Info("Initializing Ollama scanner...", "url", cfg.OllamaURL, "model", cfg.OllamaModel)
		scanner, err = scanning.NewOllama(cfg.OllamaURL, cfg.OllamaModel)
		if err != nil {
			slog.Error("Failed to initialize Ollama", "error", err)
			os.Exit(1)
		}
	}
	defer scanner.Close()

	slog.Info("Initializing LINE client...")
	line, err := messaging.NewLine(cfg.ChannelAccessToken, cfg.LineAPIEndpoint, cfg.LineDataEndpoint)
	if err != nil {
		slog.Error("Failed to initialize LINE client", "error", err)
		os.Exit(1)
	}

	service := receipt.NewService(line, scanner)
	server := receipt.NewServer(service, cfg.ChannelSecret)

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	if cfg.MetricsAddr != "" {
		go func() {
			if err := metrics.Serve(ctx, cfg.MetricsAddr); err != nil {
				slog.Error("Metrics server error", "error", err)
			}
		}()
	}

	go func() {
		if err := server.Start(cfg.Addr()); err != nil {
			slog.Error("Server error", "error", err)
			os.Exit(1)
		}
	}()

	slog.Info("Server started", "version", version, "address", fmt.Sprintf("http://localhost%s", cfg.Addr()))

	<-ctx.Done()
	slog.Info("Shutting down...")
}
