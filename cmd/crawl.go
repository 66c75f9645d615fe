package cmd

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/spf13/cobra"
	"github.com/spf13/viper"
	"go.uber.org/zap"

	sysclock "github.com/marketsnap/catalog-crawler/internal/clock/system"
	"github.com/marketsnap/catalog-crawler/internal/crawler"
	"github.com/marketsnap/catalog-crawler/internal/fetch"
	"github.com/marketsnap/catalog-crawler/internal/hash/sha256"
	"github.com/marketsnap/catalog-crawler/internal/id/uuid"
	"github.com/marketsnap/catalog-crawler/internal/logging"
)

// newCrawlCmd creates and configures the 'crawl' subcommand, which runs one
// full pass over the retailer catalog.
func newCrawlCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "crawl",
		Short: "Runs one catalog crawl pass",
		Long: `Walks the retailer category tree from the root, harvests product
listings from every leaf category, and upserts the results into the
configured store. A summary of the pass is published when it completes.`,

		RunE: runCrawlCommand,
	}
}

func runCrawlCommand(cmd *cobra.Command, _ []string) error {
	appInstance, err := resolveApp(cmd.Context())
	if err != nil {
		return err
	}
	v, err := resolveViper(cmd.Context())
	if err != nil {
		return err
	}

	cfg, err := crawler.LoadConfig(v)
	if err != nil {
		return fmt.Errorf("load crawler config: %w", err)
	}

	engine, err := buildEngine(cfg, v, appInstance)
	if err != nil {
		return err
	}

	if err := engine.Run(cmd.Context()); err != nil && !errors.Is(err, context.Canceled) {
		return fmt.Errorf("run crawler: %w", err)
	}

	logging.L.Info("Crawl pass finished.")
	return nil
}

func buildEngine(cfg crawler.Config, v *viper.Viper, appInstance App) (*crawler.Engine, error) {
	client, err := fetch.NewClient(fetch.Config{
		UserAgent:      cfg.UserAgent,
		RequestTimeout: time.Duration(v.GetInt("http.timeout_seconds")) * time.Second,
		MaxAttempts:    v.GetInt("http.max_attempts"),
		RetryDelay:     time.Duration(v.GetInt("http.retry_delay_ms")) * time.Millisecond,
	}, appInstance.GetLogger())
	if err != nil {
		return nil, fmt.Errorf("init fetch client: %w", err)
	}

	engine := crawler.NewEngine(
		cfg,
		client,
		appInstance.GetStore(),
		appInstance.GetImages(),
		appInstance.GetQueue(),
		uuid.New(),
		sha256.New(),
		sysclock.New(),
		appInstance.GetLogger().With(zap.String("component", "engine")),
	)
	return engine, nil
}
