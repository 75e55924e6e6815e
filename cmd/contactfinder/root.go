package main

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"os"

	"github.com/spf13/cobra"

	"github.com/JonMunkholm/contactfinder/internal/artifact"
	"github.com/JonMunkholm/contactfinder/internal/catalog"
	"github.com/JonMunkholm/contactfinder/internal/config"
	"github.com/JonMunkholm/contactfinder/internal/core"
	"github.com/JonMunkholm/contactfinder/internal/hunter"
	"github.com/JonMunkholm/contactfinder/internal/logging"
	"github.com/JonMunkholm/contactfinder/internal/secrets"
)

// NewRootCmd creates the root command.
func NewRootCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "contactfinder",
		Short: "Find company contacts by domain and export them as CSV",
		Long: `contactfinder looks up the email addresses known for a company domain,
shows them, and writes them to <output>/<Company>/<Company>_contacts.csv.

The API key is read from HUNTER_API_KEY, falling back to the OS keychain
entry written by "contactfinder key set".`,
		Version:       getVersion(),
		SilenceUsage:  true,
		SilenceErrors: true,
	}

	cmd.PersistentFlags().String("config", "", "YAML config file (overrides "+config.FileEnv+")")

	cmd.AddCommand(NewServeCmd())
	cmd.AddCommand(NewSearchCmd())
	cmd.AddCommand(NewKeyCmd())
	cmd.AddCommand(NewVersionCmd())

	return cmd
}

// Execute runs the root command.
func Execute() {
	if err := NewRootCmd().Execute(); err != nil {
		fmt.Fprintln(os.Stderr, "Error:", err)
		os.Exit(1)
	}
}

// loadConfig reads configuration, sets up logging and resolves the API key.
func loadConfig(cmd *cobra.Command) (*config.Config, error) {
	path, _ := cmd.Flags().GetString("config")
	if path == "" {
		path = os.Getenv(config.FileEnv)
	}

	cfg, err := config.LoadFile(path)
	if err != nil {
		return nil, err
	}
	// Logs go to stderr so search output on stdout stays machine-readable.
	logging.Setup(cmd.ErrOrStderr(), cfg.Logging.Level, cfg.Logging.Format)

	key, err := secrets.ResolveAPIKey(cfg.Hunter.APIKey)
	switch {
	case err == nil:
		cfg.Hunter.APIKey = key
	case errors.Is(err, secrets.ErrNoAPIKey):
		// Not fatal: searches report the missing key to the user.
		slog.Warn("no API key configured", "detail", err)
	default:
		return nil, err
	}
	return cfg, nil
}

// app is the wired set of components a command runs against.
type app struct {
	service *core.Service
	catalog catalog.Catalog
	store   *artifact.Store
}

func (a *app) Close() error {
	return a.catalog.Close()
}

func newApp(ctx context.Context, cfg *config.Config) (*app, error) {
	store, err := artifact.NewStore(cfg.Artifacts.Dir)
	if err != nil {
		return nil, err
	}

	cat, err := catalog.Open(ctx, catalog.Options{
		Driver:   cfg.Catalog.Driver,
		DSN:      cfg.Catalog.DSN,
		MaxConns: cfg.Catalog.MaxConns,
	})
	if err != nil {
		return nil, fmt.Errorf("open catalog: %w", err)
	}

	client := hunter.New(hunter.Config{
		BaseURL:           cfg.Hunter.BaseURL,
		APIKey:            cfg.Hunter.APIKey,
		Timeout:           cfg.Hunter.Timeout,
		RequestsPerSecond: cfg.Hunter.RequestsPerSecond,
		Burst:             cfg.Hunter.Burst,
	})

	svc := core.NewService(client, store, cat, core.Options{
		MaxConcurrent: cfg.Search.MaxConcurrent,
		MaxWait:       cfg.Search.MaxWaitTime,
	})

	slog.Debug("components ready",
		"output_dir", store.Root(),
		"catalog", cfg.Catalog.Driver,
		"api_key_configured", client.HasAPIKey(),
	)

	return &app{service: svc, catalog: cat, store: store}, nil
}
