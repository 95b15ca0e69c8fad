package main

import (
	"fmt"
	"os"

	"go-inventory-tracker/config"

	"github.com/spf13/cobra"
)

type importOptions struct {
	entity string
	file   string
	actor  string
}

func newImportCmd(cfg *config.Config) *cobra.Command {
	var opts importOptions

	cmd := &cobra.Command{
		Use:   "import",
		Short: "Import products or transactions from a CSV file",
		RunE: func(cmd *cobra.Command, args []string) error {
			return runImport(cmd, cfg, opts)
		},
	}

	cmd.Flags().StringVar(&opts.entity, "entity", "", "What to import: products or transactions (required)")
	cmd.Flags().StringVar(&opts.file, "file", "", "CSV file to read (required)")
	cmd.Flags().StringVar(&opts.actor, "actor", "stockctl", "Name recorded as created_by")
	_ = cmd.MarkFlagRequired("entity")
	_ = cmd.MarkFlagRequired("file")

	return cmd
}

func runImport(cmd *cobra.Command, cfg *config.Config, opts importOptions) error {
	raw, err := os.ReadFile(opts.file)
	if err != nil {
		return err
	}

	services, log, err := openServices(cfg)
	defer log.Sync()
	if err != nil {
		return err
	}

	ctx := cmd.Context()
	out := cmd.OutOrStdout()
	switch opts.entity {
	case "products":
		n, err := services.ProductImport.Import(ctx, string(raw), opts.actor)
		if err != nil {
			return err
		}
		fmt.Fprintf(out, "imported %d products\n", n)

	case "transactions":
		res, err := services.TransactionImport.Import(ctx, string(raw), opts.actor)
		if err != nil {
			return err
		}
		fmt.Fprintf(out, "imported %d transactions (%s format)\n", res.Inserted, res.Format)
		if w := res.Warning(); w != "" {
			fmt.Fprintln(cmd.ErrOrStderr(), "warning:", w)
		}

	default:
		return fmt.Errorf("invalid --entity %q: want products or transactions", opts.entity)
	}
	return nil
}
