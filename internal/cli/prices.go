package cli

import (
	"fmt"
	"os"

	"github.com/spf13/cobra"

	"github.com/Spok95/print-cashier/internal/domain/pricing"
)

func NewPricesCommand(opts *RootOptions) *cobra.Command {
	cmd := &cobra.Command{
		Use:   "prices",
		Short: "Manage the price catalogue",
	}
	cmd.AddCommand(newPricesExportCommand(opts))
	cmd.AddCommand(newPricesImportCommand(opts))
	cmd.AddCommand(newPricesResetCommand(opts))
	return cmd
}

func newPricesExportCommand(opts *RootOptions) *cobra.Command {
	var out string
	cmd := &cobra.Command{
		Use:   "export",
		Short: "Write the catalogue to an Excel sheet",
		RunE: func(cmd *cobra.Command, _ []string) error {
			e, err := load(opts)
			if err != nil {
				return err
			}
			cat, err := pricing.Load(e.cfg.Prices.Path)
			if err != nil {
				return err
			}
			data, err := pricing.ExportXLSX(cat)
			if err != nil {
				return err
			}
			if err := os.WriteFile(out, data, 0o644); err != nil {
				return fmt.Errorf("write %s: %w", out, err)
			}
			e.log.Info("prices exported", "file", out)
			return nil
		},
	}
	cmd.Flags().StringVarP(&out, "out", "o", "prices.xlsx", "output file")
	return cmd
}

func newPricesImportCommand(opts *RootOptions) *cobra.Command {
	var in string
	cmd := &cobra.Command{
		Use:   "import",
		Short: "Apply an edited Excel sheet to the catalogue",
		RunE: func(cmd *cobra.Command, _ []string) error {
			e, err := load(opts)
			if err != nil {
				return err
			}
			base, err := pricing.Load(e.cfg.Prices.Path)
			if err != nil {
				return err
			}
			data, err := os.ReadFile(in)
			if err != nil {
				return fmt.Errorf("read %s: %w", in, err)
			}
			next, n, err := pricing.ImportXLSX(base, data)
			if err != nil {
				e.log.Error("prices import failed", "file", in, "err", err)
				return err
			}
			if err := pricing.Save(e.cfg.Prices.Path, next); err != nil {
				return err
			}
			e.log.Info("prices imported", "file", in, "updated", n)
			fmt.Fprintf(cmd.OutOrStdout(), "updated %d prices\n", n)
			return nil
		},
	}
	cmd.Flags().StringVarP(&in, "in", "i", "", "edited Excel file")
	_ = cmd.MarkFlagRequired("in")
	return cmd
}

func newPricesResetCommand(opts *RootOptions) *cobra.Command {
	return &cobra.Command{
		Use:   "reset",
		Short: "Restore the built-in default catalogue",
		RunE: func(cmd *cobra.Command, _ []string) error {
			e, err := load(opts)
			if err != nil {
				return err
			}
			if err := pricing.Save(e.cfg.Prices.Path, pricing.DefaultCatalog()); err != nil {
				return err
			}
			e.log.Info("prices reset to defaults", "path", e.cfg.Prices.Path)
			return nil
		},
	}
}
