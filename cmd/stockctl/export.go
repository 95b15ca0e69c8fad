package main

import (
	"fmt"
	"os"
	"path/filepath"

	"go-inventory-tracker/config"
	"go-inventory-tracker/internal/repository"
	"go-inventory-tracker/internal/service"

	"github.com/spf13/cobra"
)

type exportOptions struct {
	entity string
	format string
	outDir string
	days   int
}

func newExportCmd(cfg *config.Config) *cobra.Command {
	var opts exportOptions

	cmd := &cobra.Command{
		Use:   "export",
		Short: "Export products, transactions, inventory items or the stock movement report",
		RunE: func(cmd *cobra.Command, args []string) error {
			return runExport(cmd, cfg, opts)
		},
	}

	cmd.Flags().StringVar(&opts.entity, "entity", "", "products, transactions, inventory-items or stock-movement (required)")
	cmd.Flags().StringVar(&opts.format, "format", "csv", "Output format: csv or xlsx")
	cmd.Flags().StringVar(&opts.outDir, "out", ".", "Directory to write the file into")
	cmd.Flags().IntVar(&opts.days, "days", 30, "Days covered by the stock movement report")
	_ = cmd.MarkFlagRequired("entity")

	return cmd
}

func runExport(cmd *cobra.Command, cfg *config.Config, opts exportOptions) error {
	format, err := service.ParseExportFormat(opts.format)
	if err != nil {
		return err
	}

	services, log, err := openServices(cfg)
	defer log.Sync()
	if err != nil {
		return err
	}

	// Interrupting the command cancels the export between pages.
	ctx := cmd.Context()
	var file *service.ExportFile
	switch opts.entity {
	case "products":
		file, err = services.Export.ExportProducts(ctx, repository.ProductFilter{}, format)
	case "transactions":
		file, err = services.Export.ExportTransactions(ctx, repository.TransactionFilter{}, format)
	case "inventory-items":
		file, err = services.Export.ExportInventoryItems(ctx, repository.InventoryItemFilter{}, format)
	case "stock-movement":
		file, err = services.Export.ExportStockMovement(ctx, opts.days, format)
	default:
		return fmt.Errorf("invalid --entity %q", opts.entity)
	}
	if service.IsCancelled(err) {
		fmt.Fprintln(cmd.ErrOrStderr(), "export cancelled")
		return nil
	}
	if err != nil {
		return err
	}

	path := filepath.Join(opts.outDir, file.Filename)
	if err := os.WriteFile(path, file.Body, 0o644); err != nil {
		return err
	}
	fmt.Fprintf(cmd.OutOrStdout(), "wrote %d rows to %s\n", file.Rows, path)
	return nil
}
