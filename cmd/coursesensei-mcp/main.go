package main

import (
	"flag"
	"log/slog"
	"os"

	"github.com/preetimant/coursesensei/pkg/client"
	"github.com/preetimant/coursesensei/pkg/mcp"
)

func main() {
	apiURL := flag.String("api", envOrDefault("COURSESENSEI_API", "http://127.0.0.1:8090"), "Base URL of coursesensei-d")
	token := flag.String("token", os.Getenv("COURSESENSEI_WEBHOOK_TOKEN"), "webhook bearer token")
	flag.Parse()

	// stdout carries the protocol, so logs go to stderr.
	logger := slog.New(slog.NewJSONHandler(os.Stderr, nil))
	slog.SetDefault(logger)
	logger.Info("mcp server starting", "api", *apiURL)

	s := mcp.NewServer(*apiURL, client.WithToken(*token))
	if err := s.Serve(); err != nil {
		logger.Error("mcp server stopped", "error", err)
		os.Exit(1)
	}
}

func envOrDefault(key, fallback string) string {
	if value := os.Getenv(key); value != "" {
		return value
	}
	return fallback
}
