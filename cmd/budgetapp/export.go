package main

import (
	"fmt"

	"github.com/spf13/cobra"

	"github.com/Relton66/budgetapp/internal/cli"
	"github.com/Relton66/budgetapp/internal/config"
	"github.com/Relton66/budgetapp/internal/sheets"
)

func exportCmd() *cobra.Command {
	var budgetFlag string

	cmd := &cobra.Command{
		Use:   "export",
		Short: "Export a budget to Google Sheets",
		Long: `Export a budget's summary, allocations, and ledger to a Google Sheets
spreadsheet. Credentials and the spreadsheet ID come from the sheets
section of the config file or GOOGLE_SHEETS_* environment variables.`,
		RunE: func(cmd *cobra.Command, _ []string) error {
			ctx := cmd.Context()

			e, store, err := initEngine(ctx)
			if err != nil {
				return err
			}
			defer func() { _ = store.Close() }()

			budget, err := resolveBudget(ctx, store, budgetFlag)
			if err != nil {
				return err
			}

			sheetsConfig, err := config.LoadSheetsConfig()
			if err != nil {
				return err
			}

			writer, err := sheets.NewWriter(ctx, *sheetsConfig)
			if err != nil {
				return err
			}

			if err := e.ExportBudget(ctx, budget.ID, writer); err != nil {
				return err
			}

			fmt.Println(cli.SuccessStyle.Render(fmt.Sprintf("Exported %q to Google Sheets", budget.Name)))
			return nil
		},
	}

	cmd.Flags().StringVar(&budgetFlag, "budget", "", "budget name (defaults to the current budget)")
	return cmd
}

func migrateCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "migrate",
		Short: "Run any pending database migrations",
		RunE: func(cmd *cobra.Command, _ []string) error {
			store, err := initStorage(cmd.Context())
			if err != nil {
				return err
			}
			defer func() { _ = store.Close() }()

			fmt.Println(cli.SuccessStyle.Render("Database is up to date"))
			return nil
		},
	}
}
