package main

import (
	"context"
	"flag"
	"io"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/charmbracelet/log"
	"github.com/rx3lixir/ambient/internal/config"
	"github.com/rx3lixir/ambient/internal/db"
	"github.com/rx3lixir/ambient/internal/generator"
	"github.com/rx3lixir/ambient/internal/publish"
	"github.com/rx3lixir/ambient/pkg/s3storage"
)

func main() {
	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	if err := run(ctx, os.Args[1:], os.Stderr); err != nil {
		os.Exit(1)
	}
}

// run generates every configured preset and optionally publishes the result
func run(ctx context.Context, args []string, stderr io.Writer) error {
	fs := flag.NewFlagSet("ambient", flag.ContinueOnError)
	fs.SetOutput(stderr)

	configPath := fs.String("config", "", "Path to a yaml config file (optional)")
	outDir := fs.String("out", "", "Output directory (overrides general_params.output_dir)")
	seed := fs.Uint64("seed", 0, "Noise seed, 0 picks a random one")
	doPublish := fs.Bool("publish", false, "Upload written assets to S3 and record them in the catalog")

	if err := fs.Parse(args); err != nil {
		return err
	}

	// Setting up logger
	logger := log.NewWithOptions(stderr, log.Options{
		ReportTimestamp: true,
		TimeFormat:      "2006-01-02 15:04:05",
		Level:           log.InfoLevel,
	})

	// Initializing config manager
	cm, err := config.NewConfigManager(*configPath)
	if err != nil {
		logger.Error("Error getting config file", "error", err)
		return err
	}

	c := cm.GetConfig()

	if *outDir != "" {
		c.GeneralParams.OutputDir = *outDir
	}
	if *seed != 0 {
		c.GeneralParams.Seed = *seed
	}

	// Validating configuration
	if err := c.Validate(); err != nil {
		logger.Error("Invalid configuration", "error", err)
		return err
	}

	if level, err := log.ParseLevel(c.GeneralParams.LogLevel); err == nil {
		logger.SetLevel(level)
	}

	logger.Info(
		"Configuration loaded",
		"env", c.GeneralParams.Env,
		"output_dir", c.GeneralParams.OutputDir,
		"presets", len(c.Presets),
		"seeded", c.GeneralParams.Seed != 0,
	)

	if err := generator.EnsureDir(c.GeneralParams.OutputDir); err != nil {
		logger.Error("Failed to prepare output directory", "error", err)
		return err
	}

	start := time.Now()
	assets, err := generator.New(c.GeneralParams.Seed, logger).Run(ctx, c.GeneralParams.OutputDir, c.Presets)
	if err != nil {
		logger.Error("Generation failed", "error", err, "written", len(assets))
		return err
	}

	logger.Info("Ambient assets generated", "count", len(assets), "took", time.Since(start))

	if !*doPublish {
		return nil
	}

	if err := publishAssets(ctx, c, assets, logger); err != nil {
		logger.Error("Publishing failed", "error", err)
		return err
	}

	return nil
}

func publishAssets(ctx context.Context, c *config.Config, assets []generator.Asset, logger *log.Logger) error {
	if !c.S3Params.Enabled() {
		logger.Warn("S3 is not configured, nothing to publish to")
		return nil
	}

	// Initialize S3 client
	s3Client, err := s3storage.NewMinIOClient(
		c.S3Params.Endpoint,
		c.S3Params.AccessKeyID,
		c.S3Params.SecretAccessKey,
		c.S3Params.BucketName,
		c.S3Params.UseSSL,
	)
	if err != nil {
		return err
	}

	logger.Info("S3 storage client initialized", "bucket", c.S3Params.BucketName)

	var recorder publish.Recorder
	if c.CatalogParams.Enabled() {
		pool, err := db.CreatePostgresPool(ctx, c.CatalogParams.GetDSN())
		if err != nil {
			return err
		}
		defer pool.Close()

		store := db.NewPostgresStore(pool)
		store.SetTimeout(time.Duration(c.CatalogParams.Timeout) * time.Second)

		if err := store.EnsureSchema(ctx); err != nil {
			return err
		}

		logger.Info("Catalog connection established", "db", c.CatalogParams.Name)
		recorder = store
	}

	publisher := publish.New(s3Client, recorder, c.S3Params.URLExpiry, logger)

	for _, a := range assets {
		res, err := publisher.PublishFile(ctx, a)
		if err != nil {
			return err
		}
		if res.URL != "" {
			logger.Info("Download link", "asset", a.Preset.Name, "url", res.URL)
		}
	}

	return nil
}
