// Package cmd defines and implements the CLI commands for the catalog crawler executable.
package cmd

import (
	"context"
	"fmt"
	"net/http"

	"github.com/spf13/cobra"
	"github.com/spf13/viper"
	"go.uber.org/zap"

	"github.com/marketsnap/catalog-crawler/internal/app"
	"github.com/marketsnap/catalog-crawler/internal/config"
	"github.com/marketsnap/catalog-crawler/internal/crawler"
	"github.com/marketsnap/catalog-crawler/internal/logging"
	"github.com/marketsnap/catalog-crawler/internal/queue"
)

var cfgFile string

// appKeyType is the key for storing the App in the context.
type appKeyType string

const (
	appKey   appKeyType = "app"
	viperKey appKeyType = "viper"
)

// App defines the application interface that commands use.
// This allows injecting a mock app during tests.
type App interface {
	Close()
	GetLogger() *zap.Logger
	GetStore() crawler.Store
	GetImages() crawler.ImageSink
	GetQueue() queue.Provider
	Router() http.Handler
}

// newApp is the application factory. It is a variable so tests can replace
// it with a mock factory.
var newApp = func(ctx context.Context, cfg config.Config) (App, error) {
	return app.NewApp(ctx, cfg)
}

// newRootCmd creates and configures the root command.
func newRootCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "catalog-crawler",
		Short: "A catalog crawler for retailer product data.",
		Long: `catalog-crawler walks a retailer's category tree, harvests product
listings from leaf categories, and upserts categories, products, and
supplier offers into the configured store.`,

		// Runs after config is loaded but before the subcommand's RunE;
		// builds the application and injects it into the command context.
		PersistentPreRunE: func(cmd *cobra.Command, _ []string) error {
			cfg, v, err := config.Load(cfgFile)
			if err != nil {
				return fmt.Errorf("load config: %w", err)
			}
			logging.InitLogger(cfg.Logging.Development)

			appInstance, err := newApp(cmd.Context(), cfg)
			if err != nil {
				return fmt.Errorf("failed to initialize application services: %w", err)
			}

			ctx := context.WithValue(cmd.Context(), appKey, appInstance)
			ctx = context.WithValue(ctx, viperKey, v)
			cmd.SetContext(ctx)
			return nil
		},

		PersistentPostRun: func(cmd *cobra.Command, _ []string) {
			if appInstance, ok := cmd.Context().Value(appKey).(App); ok && appInstance != nil {
				appInstance.Close()
			}
		},
	}

	cmd.PersistentFlags().StringVar(&cfgFile, "config", "", "config file (default is built-in defaults plus CATALOG_* env vars)")

	cmd.AddCommand(newCrawlCmd())
	cmd.AddCommand(newServeCmd())

	return cmd
}

func resolveApp(ctx context.Context) (App, error) {
	appInstance, ok := ctx.Value(appKey).(App)
	if !ok || appInstance == nil {
		return nil, fmt.Errorf("application services not initialized")
	}
	return appInstance, nil
}

func resolveViper(ctx context.Context) (*viper.Viper, error) {
	v, ok := ctx.Value(viperKey).(*viper.Viper)
	if !ok || v == nil {
		return nil, fmt.Errorf("configuration not initialized")
	}
	return v, nil
}

// Execute is the main entry point.
func Execute() {
	if err := newRootCmd().Execute(); err != nil {
		logging.L.Fatal("Command execution failed", zap.Error(err))
	}
}
