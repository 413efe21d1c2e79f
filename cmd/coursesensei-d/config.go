package main

import (
	"errors"
	"flag"
	"fmt"
	"io"
	"log/slog"
	"os"
	"path/filepath"
	"strconv"
	"strings"
	"time"

	"github.com/preetimant/coursesensei/pkg/engine"
)

const (
	defaultAddr     = "127.0.0.1:8090"
	defaultKBPath   = "coursesensei.db"
	defaultRedisTTL = 24 * time.Hour
)

type Config struct {
	KBPath              string
	Addr                string
	RedisAddr           string
	RedisTTL            time.Duration
	LogLevel            slog.Level
	CourseCacheSize     int
	InstructorCacheSize int
	TLSCertFile         string
	TLSKeyFile          string
	WebhookToken        string
}

func LoadConfig(args []string) (Config, error) {
	cwd, err := os.Getwd()
	if err != nil {
		return Config{}, fmt.Errorf("failed to get cwd: %w", err)
	}

	kbPath := envOrDefault("COURSESENSEI_KB_PATH", defaultKBPath)
	addr := addrFromEnv(defaultAddr)
	redisAddr := os.Getenv("COURSESENSEI_REDIS_ADDR")
	redisTTL := defaultRedisTTL
	if v := os.Getenv("COURSESENSEI_REDIS_TTL"); v != "" {
		parsed, err := time.ParseDuration(v)
		if err != nil {
			return Config{}, fmt.Errorf("invalid COURSESENSEI_REDIS_TTL: %w", err)
		}
		if parsed <= 0 {
			return Config{}, errors.New("COURSESENSEI_REDIS_TTL must be positive")
		}
		redisTTL = parsed
	}
	courseCache, err := intFromEnv("COURSESENSEI_COURSE_CACHE", engine.DefaultCourseCacheSize)
	if err != nil {
		return Config{}, err
	}
	instructorCache, err := intFromEnv("COURSESENSEI_INSTRUCTOR_CACHE", engine.DefaultInstructorCacheSize)
	if err != nil {
		return Config{}, err
	}

	flagSet := flag.NewFlagSet("coursesensei-d", flag.ContinueOnError)
	flagSet.SetOutput(io.Discard)
	flagKB := flagSet.String("kb", kbPath, "knowledge base: SQLite database (.db) or snapshot (.json, .yaml)")
	flagAddr := flagSet.String("addr", addr, "HTTP listen address")
	flagRedis := flagSet.String("redis-addr", redisAddr, "redis address for the shared resolution index (optional)")
	flagRedisTTL := flagSet.String("redis-ttl", redisTTL.String(), "lifetime of shared resolution entries")
	flagLogLevel := flagSet.String("log-level", envOrDefault("COURSESENSEI_LOG_LEVEL", "info"), "log level: debug|info|warn|error")
	flagCourseCache := flagSet.Int("course-cache", courseCache, "course resolution cache size")
	flagInstructorCache := flagSet.Int("instructor-cache", instructorCache, "instructor resolution cache size")
	flagTLSCert := flagSet.String("tls-cert", os.Getenv("COURSESENSEI_TLS_CERT"), "TLS certificate file")
	flagTLSKey := flagSet.String("tls-key", os.Getenv("COURSESENSEI_TLS_KEY"), "TLS key file")
	flagToken := flagSet.String("webhook-token", os.Getenv("COURSESENSEI_WEBHOOK_TOKEN"), "bearer token required on /webhook (optional)")

	if err := flagSet.Parse(args); err != nil {
		if errors.Is(err, flag.ErrHelp) {
			flagSet.SetOutput(os.Stdout)
			flagSet.PrintDefaults()
			return Config{}, err
		}
		return Config{}, err
	}

	ttl, err := time.ParseDuration(*flagRedisTTL)
	if err != nil {
		return Config{}, fmt.Errorf("invalid redis ttl: %w", err)
	}
	if ttl <= 0 {
		return Config{}, errors.New("redis ttl must be positive")
	}

	var level slog.Level
	if err := level.UnmarshalText([]byte(strings.TrimSpace(*flagLogLevel))); err != nil {
		return Config{}, fmt.Errorf("invalid log level %q", *flagLogLevel)
	}

	config := Config{
		KBPath:              resolvePath(*flagKB, cwd),
		Addr:                strings.TrimSpace(*flagAddr),
		RedisAddr:           strings.TrimSpace(*flagRedis),
		RedisTTL:            ttl,
		LogLevel:            level,
		CourseCacheSize:     *flagCourseCache,
		InstructorCacheSize: *flagInstructorCache,
		TLSCertFile:         resolvePath(*flagTLSCert, cwd),
		TLSKeyFile:          resolvePath(*flagTLSKey, cwd),
		WebhookToken:        *flagToken,
	}

	if config.KBPath == "" {
		return Config{}, errors.New("kb cannot be empty")
	}
	if config.Addr == "" {
		return Config{}, errors.New("addr cannot be empty")
	}
	if config.CourseCacheSize <= 0 || config.InstructorCacheSize <= 0 {
		return Config{}, errors.New("cache sizes must be positive")
	}
	if (config.TLSCertFile == "") != (config.TLSKeyFile == "") {
		return Config{}, errors.New("tls-cert and tls-key must be set together")
	}

	return config, nil
}

func envOrDefault(key, fallback string) string {
	if value := os.Getenv(key); value != "" {
		return value
	}
	return fallback
}

func intFromEnv(key string, fallback int) (int, error) {
	value := os.Getenv(key)
	if value == "" {
		return fallback, nil
	}
	n, err := strconv.Atoi(value)
	if err != nil {
		return 0, fmt.Errorf("invalid %s: %w", key, err)
	}
	return n, nil
}

func addrFromEnv(fallback string) string {
	if value := os.Getenv("COURSESENSEI_ADDR"); value != "" {
		return value
	}
	if port := os.Getenv("COURSESENSEI_PORT"); port != "" {
		return fmt.Sprintf("127.0.0.1:%s", port)
	}
	return fallback
}

func resolvePath(path string, cwd string) string {
	trimmed := strings.TrimSpace(path)
	if trimmed == "" {
		return trimmed
	}
	if filepath.IsAbs(trimmed) {
		return trimmed
	}
	return filepath.Join(cwd, trimmed)
}
