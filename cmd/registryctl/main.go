// Command registryctl runs administrative tasks against the well registry
// database: migrations, lookup refreshes, upload checks, exports, and
// development tokens.
package main

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"os"
	"os/signal"
	"syscall"

	"github.com/couchcryptid/well-registry/internal/adapter/postgres"
	"github.com/couchcryptid/well-registry/internal/config"
	"github.com/couchcryptid/well-registry/internal/domain"
	"github.com/couchcryptid/well-registry/internal/observability"
	"github.com/couchcryptid/well-registry/internal/registry"
	"github.com/joho/godotenv"
	"github.com/spf13/cobra"
)

// cliUser is recorded as insert and update user for writes made by the CLI.
const cliUser = "registryctl"

func main() {
	ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	if err := newRootCmd().ExecuteContext(ctx); err != nil {
		fmt.Fprintln(os.Stderr, "error:", err)
		os.Exit(1)
	}
}

func newRootCmd() *cobra.Command {
	root := &cobra.Command{
		Use:           "registryctl",
		Short:         "Administer the groundwater well registry",
		SilenceUsage:  true,
		SilenceErrors: true,
		PersistentPreRunE: func(*cobra.Command, []string) error {
			if err := godotenv.Load(); err != nil && !errors.Is(err, os.ErrNotExist) {
				return fmt.Errorf("read .env: %w", err)
			}
			return nil
		},
	}
	root.AddCommand(
		newMigrateCmd(),
		newUpdateLookupsCmd(),
		newValidateUploadCmd(),
		newExportCmd(),
		newTokenCmd(),
	)
	return root
}

// env bundles what most commands need: configuration, a logger, and an open
// store.
type env struct {
	cfg    *config.Config
	logger *slog.Logger
	store  *postgres.Store
}

func openEnv() (*env, error) {
	cfg, err := config.LoadTooling()
	if err != nil {
		return nil, err
	}
	cfg.LogFormat = "text"
	logger := observability.NewLogger(cfg)

	store, err := postgres.Open(cfg.DatabaseURL, cfg.DBMaxOpenConns, logger)
	if err != nil {
		return nil, err
	}
	return &env{cfg: cfg, logger: logger, store: store}, nil
}

func (e *env) Close() error { return e.store.Close() }

func (e *env) service() *registry.Service {
	return registry.New(e.store, registry.Options{
		NWISAgency:  e.cfg.NWISAgencyCode,
		PageSizeMax: e.cfg.PageSizeMax,
	}, e.logger, observability.NewMetrics())
}

// cliAccess is the access context commands act with: a superuser unless
// agencies are given, in which case a member of exactly those agencies.
func cliAccess(agencies []string) domain.AccessContext {
	p := domain.Principal{Username: cliUser, Superuser: len(agencies) == 0}
	if !p.Superuser {
		p.Groups = agencies
		p.Permissions = domain.AllPermissions
	}
	return domain.NewAgencyGroups(nil).Resolve(p)
}
