// Command stockctl runs imports, exports and token issuance against the inventory database.
package main

import (
	"context"
	"fmt"
	"os"
	"os/signal"
	"syscall"

	"go-inventory-tracker/config"
	"go-inventory-tracker/internal/app"
	"go-inventory-tracker/internal/repository"
	"go-inventory-tracker/pkg/database"
	"go-inventory-tracker/pkg/logger"

	"github.com/joho/godotenv"
	"github.com/spf13/cobra"
	"go.uber.org/zap"
)

func main() {
	_ = godotenv.Load()

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	if err := newRootCmd(config.LoadEnv()).ExecuteContext(ctx); err != nil {
		fmt.Fprintln(os.Stderr, "error:", err)
		os.Exit(1)
	}
}

func newRootCmd(cfg *config.Config) *cobra.Command {
	root := &cobra.Command{
		Use:           "stockctl",
		Short:         "Inventory tracker maintenance commands",
		SilenceUsage:  true,
		SilenceErrors: true,
	}
	root.AddCommand(newImportCmd(cfg), newExportCmd(cfg), newIssueTokenCmd(cfg))
	return root
}

// openServices connects to the configured database and builds the service graph.
func openServices(cfg *config.Config) (*app.Services, *zap.Logger, error) {
	log := logger.New(cfg.Logger, cfg.IsDevelopment())
	db, err := database.ConnectDB(cfg.Postgres, log, false)
	if err != nil {
		return nil, log, err
	}
	if err := repository.AutoMigrate(db); err != nil {
		return nil, log, fmt.Errorf("migrate: %w", err)
	}
	return app.NewServices(db, cfg, log, nil), log, nil
}
