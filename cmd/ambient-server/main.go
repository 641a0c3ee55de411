package main

import (
	"context"
	"flag"
	"fmt"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/charmbracelet/log"
	"github.com/rx3lixir/ambient/internal/cache"
	"github.com/rx3lixir/ambient/internal/config"
	"github.com/rx3lixir/ambient/internal/db"
	"github.com/rx3lixir/ambient/internal/httpserver"
	"github.com/rx3lixir/ambient/internal/publish"
	"github.com/rx3lixir/ambient/pkg/jwt"
	"github.com/rx3lixir/ambient/pkg/s3storage"
)

func main() {
	configPath := flag.String("config", "", "Path to a yaml config file (optional)")
	issueToken := flag.String("issue-token", "", "Print an admin token for the given subject and exit")
	flag.Parse()

	// Setting up logger
	logger := log.NewWithOptions(os.Stderr, log.Options{
		ReportCaller:    true,
		ReportTimestamp: true,
		TimeFormat:      "2006-01-02 15:04:05",
		Level:           log.InfoLevel,
	})

	// Initializing global context instance
	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	// Initializing config manager
	cm, err := config.NewConfigManager(*configPath)
	if err != nil {
		logger.Error("Error getting config file", "error", err)
		os.Exit(1)
	}

	c := cm.GetConfig()

	// Validating configuration
	if err := c.ValidateServer(); err != nil {
		logger.Error("Invalid configuration", "error", err)
		os.Exit(1)
	}

	if level, err := log.ParseLevel(c.GeneralParams.LogLevel); err == nil {
		logger.SetLevel(level)
	}

	// Initializing JWT service
	jwtService := jwt.NewService(c.HTTPParams.SecretKey, c.HTTPParams.TokenTTL)

	if *issueToken != "" {
		token, err := jwtService.GenerateToken(*issueToken, jwt.RoleAdmin)
		if err != nil {
			logger.Error("Failed to issue token", "error", err)
			os.Exit(1)
		}
		fmt.Println(token)
		return
	}

	logger.Info(
		"Configuration loaded",
		"env", c.GeneralParams.Env,
		"http_addr", c.HTTPParams.Address,
		"presets", len(c.Presets),
		"catalog", c.CatalogParams.Enabled(),
		"cache", c.CacheParams.Enabled(),
		"s3", c.S3Params.Enabled(),
	)

	deps := httpserver.Deps{
		Presets: c.Presets,
		Seed:    c.GeneralParams.Seed,
		Tokens:  jwtService,
		Health:  map[string]httpserver.Pinger{},
	}

	var recorder publish.Recorder

	// Creating database connection pool
	if c.CatalogParams.Enabled() {
		pool, err := db.CreatePostgresPool(ctx, c.CatalogParams.GetDSN())
		if err != nil {
			logger.Error("Failed to create postgres pool", "error", err, "db", c.CatalogParams.Name)
			os.Exit(1)
		}
		defer pool.Close()

		store := db.NewPostgresStore(pool)
		store.SetTimeout(time.Duration(c.CatalogParams.Timeout) * time.Second)

		if err := store.EnsureSchema(ctx); err != nil {
			logger.Error("Failed to prepare catalog schema", "error", err)
			os.Exit(1)
		}

		logger.Info("Catalog connection established", "db", c.CatalogParams.Name)

		deps.Catalog = store
		deps.Health["catalog"] = store
		recorder = store
	}

	// Initialize render cache
	if c.CacheParams.Enabled() {
		cacheManager, err := cache.NewManager(c.CacheParams.Address, c.CacheParams.Password, c.CacheParams.TTL)
		if err != nil {
			logger.Error("Failed to create render cache", "error", err)
			os.Exit(1)
		}
		defer cacheManager.Close()

		// Renders from an earlier run may use different preset parameters
		if err := cacheManager.Invalidate(ctx, "*"); err != nil {
			logger.Warn("Failed to clear render cache", "error", err)
		}

		logger.Info("Render cache initialized", "address", c.CacheParams.Address, "ttl", c.CacheParams.TTL)

		deps.Cache = cacheManager
		deps.Health["cache"] = cacheManager
	}

	// Initialize S3 client
	if c.S3Params.Enabled() {
		s3Client, err := s3storage.NewMinIOClient(
			c.S3Params.Endpoint,
			c.S3Params.AccessKeyID,
			c.S3Params.SecretAccessKey,
			c.S3Params.BucketName,
			c.S3Params.UseSSL,
		)
		if err != nil {
			logger.Error("Failed to create S3 client", "error", err)
			os.Exit(1)
		}

		logger.Info("S3 storage client initialized", "bucket", c.S3Params.BucketName)

		deps.Publisher = publish.New(s3Client, recorder, c.S3Params.URLExpiry, logger)
		deps.Health["storage"] = s3Client
	}

	// Creates HTTP server
	server := httpserver.New(c.HTTPParams.Address, deps, logger)

	// Channel to listen for errors coming from the server
	serverErrors := make(chan error, 1)

	go func() {
		serverErrors <- server.Start()
	}()

	// Channel to listen for interrupt signals
	shutdown := make(chan os.Signal, 1)
	signal.Notify(shutdown, os.Interrupt, syscall.SIGTERM)

	// Block until we recieve a signal or error
	select {
	case err := <-serverErrors:
		if err != nil {
			logger.Error("Server error", "error", err)
			os.Exit(1)
		}

	case sig := <-shutdown:
		logger.Info("Shutdown signal received", "signal", sig)

		// Give outstanding requests 10s to complete
		ctx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
		defer cancel()

		if err := server.Shutdown(ctx); err != nil {
			logger.Error("Graceful shutdown failed", "error", err)
		}

		logger.Info("Server stopped gracefully")
	}
}
