package main

import (
	"context"
	"errors"
	"flag"
	"log/slog"
	"os"
	"os/signal"
	"syscall"
	"time"

	goredis "github.com/redis/go-redis/v9"

	"github.com/preetimant/coursesensei/pkg/api"
	"github.com/preetimant/coursesensei/pkg/engine"
	"github.com/preetimant/coursesensei/pkg/store/redis"
)

func main() {
	cfg, err := LoadConfig(os.Args[1:])
	if err != nil {
		if errors.Is(err, flag.ErrHelp) {
			os.Exit(0)
		}
		slog.Error("invalid configuration", "error", err)
		os.Exit(2)
	}

	logger := slog.New(slog.NewJSONHandler(os.Stderr, &slog.HandlerOptions{Level: cfg.LogLevel}))
	slog.SetDefault(logger)
	logger.Info("system started", "component", "coursesensei-d", "kb", cfg.KBPath)

	if err := run(cfg, logger); err != nil {
		logger.Error("fatal", "error", err)
		os.Exit(1)
	}
	logger.Info("shutdown complete")
}

func run(cfg Config, logger *slog.Logger) error {
	ctx := context.Background()

	g, info, err := loadKnowledgeBase(ctx, cfg.KBPath)
	if err != nil {
		return err
	}
	logger.Info("knowledge base loaded", "source", info.Source, "checksum", info.Checksum, "nodes", info.Nodes)

	engCfg := engine.Config{
		CourseCacheSize:     cfg.CourseCacheSize,
		InstructorCacheSize: cfg.InstructorCacheSize,
		Logger:              logger,
	}

	var shared *redis.ResolutionIndex
	if cfg.RedisAddr != "" {
		rdb := goredis.NewClient(&goredis.Options{Addr: cfg.RedisAddr})
		defer rdb.Close()

		index := redis.NewResolutionIndex(rdb, info.Checksum, cfg.RedisTTL)
		pingCtx, cancel := context.WithTimeout(ctx, 2*time.Second)
		err := index.Ping(pingCtx)
		cancel()
		if err != nil {
			// Resolution still works from the graph alone.
			logger.Warn("redis unavailable, shared resolution index disabled", "addr", cfg.RedisAddr, "error", err)
		} else {
			engCfg.Index = index
			shared = index
			logger.Info("shared resolution index enabled", "addr", cfg.RedisAddr, "namespace", info.Checksum)
		}
	}

	eng, err := engine.New(g, engCfg)
	if err != nil {
		return err
	}

	srv := api.NewServer(eng, cfg.Addr, logger)
	srv.SetKnowledgeBase(info)
	srv.SetAuthToken(cfg.WebhookToken)
	if cfg.TLSCertFile != "" {
		srv.SetTLS(cfg.TLSCertFile, cfg.TLSKeyFile)
	}

	errCh := make(chan error, 1)
	go func() {
		errCh <- srv.Start()
	}()

	sigs := make(chan os.Signal, 1)
	signal.Notify(sigs, syscall.SIGINT, syscall.SIGTERM)

	select {
	case sig := <-sigs:
		logger.Info("shutdown initiated", "signal", sig.String())
	case err := <-errCh:
		if err != nil {
			return err
		}
		return nil
	}

	shutdownCtx, cancel := context.WithTimeout(ctx, 5*time.Second)
	defer cancel()
	if err := srv.Stop(shutdownCtx); err != nil {
		return err
	}

	courses, instructors := eng.Resolvers().CacheStats()
	logger.Info("resolver cache stats",
		"course_hits", courses.Hits, "course_misses", courses.Misses,
		"course_evictions", courses.Evictions, "course_size", courses.Size,
		"instructor_hits", instructors.Hits, "instructor_misses", instructors.Misses,
		"instructor_evictions", instructors.Evictions, "instructor_size", instructors.Size,
	)
	if shared != nil {
		if n, err := shared.Len(shutdownCtx); err != nil {
			logger.Warn("failed to read shared resolution index size", "error", err)
		} else {
			logger.Info("shared resolution index", "namespace", info.Checksum, "entries", n)
		}
	}
	return nil
}
