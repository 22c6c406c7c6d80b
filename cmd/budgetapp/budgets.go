package main

import (
	"fmt"
	"os"
	"strings"
	"text/tabwriter"

	"github.com/spf13/cobra"

	"github.com/Relton66/budgetapp/internal/cli"
	"github.com/Relton66/budgetapp/internal/model"
)

func budgetsCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "budgets",
		Short: "Manage budgets and their category allocations",
	}

	cmd.AddCommand(listBudgetsCmd())
	cmd.AddCommand(showBudgetCmd())
	cmd.AddCommand(addBudgetCmd())
	cmd.AddCommand(editBudgetCmd())
	cmd.AddCommand(deleteBudgetCmd())
	cmd.AddCommand(setCurrentBudgetCmd())

	return cmd
}

func listBudgetsCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "list",
		Short: "List all budgets",
		RunE: func(cmd *cobra.Command, _ []string) error {
			ctx := cmd.Context()

			store, err := initStorage(ctx)
			if err != nil {
				return err
			}
			defer func() { _ = store.Close() }()

			budgets, err := store.GetBudgets(ctx)
			if err != nil {
				return fmt.Errorf("failed to get budgets: %w", err)
			}

			if len(budgets) == 0 {
				fmt.Println(cli.InfoStyle.Render("No budgets found. Use 'budgetapp budgets add' to create one."))
				return nil
			}

			w := tabwriter.NewWriter(os.Stdout, 0, 0, 2, ' ', 0)
			defer func() { _ = w.Flush() }()

			fmt.Fprintf(w, "%s\t%s\t%s\t%s\t%s\t%s\n",
				cli.HeaderStyle.Render("Name"),
				cli.HeaderStyle.Render("Start"),
				cli.HeaderStyle.Render("End"),
				cli.HeaderStyle.Render("Starting"),
				cli.HeaderStyle.Render("Remaining"),
				cli.HeaderStyle.Render("Current"))

			for _, b := range budgets {
				current := ""
				if b.IsCurrent {
					current = cli.SuccessStyle.Render("*")
				}
				fmt.Fprintf(w, "%s\t%s\t%s\t%s\t%s\t%s\n",
					b.Name,
					b.StartDate.Format(dateLayout),
					b.EndDate.Format(dateLayout),
					model.FormatAmount(b.StartBalance),
					model.FormatAmount(b.CurrentBalance),
					current)
			}

			return nil
		},
	}
}

func showBudgetCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "show [name]",
		Short: "Show a budget's balances and category allocations",
		Args:  cobra.MaximumNArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			ctx := cmd.Context()

			store, err := initStorage(ctx)
			if err != nil {
				return err
			}
			defer func() { _ = store.Close() }()

			name := ""
			if len(args) == 1 {
				name = args[0]
			}
			budget, err := resolveBudget(ctx, store, name)
			if err != nil {
				return err
			}

			allocations, err := store.GetCategoryBudgets(ctx, budget.ID)
			if err != nil {
				return fmt.Errorf("failed to get allocations: %w", err)
			}

			fmt.Printf("%s  (%s to %s)\n",
				cli.HeaderStyle.Render(budget.Name),
				budget.StartDate.Format(dateLayout),
				budget.EndDate.Format(dateLayout))
			fmt.Printf("Starting balance: %s\n", model.FormatAmount(budget.StartBalance))
			fmt.Printf("Remaining:        %s\n\n", model.FormatAmount(budget.CurrentBalance))

			w := tabwriter.NewWriter(os.Stdout, 0, 0, 2, ' ', 0)
			defer func() { _ = w.Flush() }()

			fmt.Fprintf(w, "%s\t%s\t%s\t%s\n",
				cli.HeaderStyle.Render("Category"),
				cli.HeaderStyle.Render("Allocated"),
				cli.HeaderStyle.Render("Remaining"),
				cli.HeaderStyle.Render("Spent"))

			for _, cb := range allocations {
				fmt.Fprintf(w, "%s\t%s\t%s\t%s\n",
					cb.CategoryName,
					model.FormatAmount(cb.StartBalance),
					model.FormatAmount(cb.CurrentBalance),
					model.FormatAmount(cb.Spent()))
			}

			return nil
		},
	}
}

func addBudgetCmd() *cobra.Command {
	var (
		startFlag    string
		endFlag      string
		balanceFlag  string
		allocateFlag []string
		fromFlag     string
	)

	cmd := &cobra.Command{
		Use:   "add <name>",
		Short: "Create a budget with category allocations",
		Long: `Create a budget. Allocations are given as --allocate "Category=Amount"
and must not add up to more than the starting balance. With --from, the
named budget's recurring entries are copied into the new one, dated one
month later.`,
		Args: cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			ctx := cmd.Context()

			e, store, err := initEngine(ctx)
			if err != nil {
				return err
			}
			defer func() { _ = store.Close() }()

			start, err := parseDate(startFlag, "start")
			if err != nil {
				return err
			}
			end, err := parseDate(endFlag, "end")
			if err != nil {
				return err
			}
			balance, err := model.ParseAmount(balanceFlag)
			if err != nil {
				return fmt.Errorf("invalid --balance %q: %w", balanceFlag, err)
			}

			allocations, err := parseAllocations(allocateFlag)
			if err != nil {
				return err
			}

			recurringSourceID := 0
			if fromFlag != "" {
				source, findErr := store.FindBudgetByName(ctx, fromFlag)
				if findErr != nil {
					return findErr
				}
				recurringSourceID = source.ID
			}

			budget := &model.Budget{
				Name:         args[0],
				StartDate:    start,
				EndDate:      end,
				StartBalance: balance,
			}

			id, err := e.SaveBudget(ctx, budget, allocations, recurringSourceID)
			if err != nil {
				return err
			}

			fmt.Println(cli.SuccessStyle.Render(fmt.Sprintf("Created budget %q (id %d)", args[0], id)))
			return nil
		},
	}

	cmd.Flags().StringVar(&startFlag, "start", "", "start date (YYYY-MM-DD)")
	cmd.Flags().StringVar(&endFlag, "end", "", "end date (YYYY-MM-DD)")
	cmd.Flags().StringVar(&balanceFlag, "balance", "", "starting balance, e.g. 1200 or $1,200.00")
	cmd.Flags().StringArrayVar(&allocateFlag, "allocate", nil, `category allocation as "Category=Amount" (repeatable)`)
	cmd.Flags().StringVar(&fromFlag, "from", "", "budget whose recurring entries seed this one")
	_ = cmd.MarkFlagRequired("start")
	_ = cmd.MarkFlagRequired("end")
	_ = cmd.MarkFlagRequired("balance")
	_ = cmd.MarkFlagRequired("allocate")

	return cmd
}

func editBudgetCmd() *cobra.Command {
	var (
		renameFlag   string
		startFlag    string
		endFlag      string
		balanceFlag  string
		allocateFlag []string
	)

	cmd := &cobra.Command{
		Use:   "edit <name>",
		Short: "Edit a budget and reshape its allocations",
		Long: `Edit a budget's name, dates, starting balance, and allocations. The
full allocation list is given again: categories missing from it are
dropped, new ones are added, and resized ones keep their recorded
spending. Posted entries and the running balance are never touched.`,
		Args: cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			ctx := cmd.Context()

			e, store, err := initEngine(ctx)
			if err != nil {
				return err
			}
			defer func() { _ = store.Close() }()

			existing, err := store.FindBudgetByName(ctx, args[0])
			if err != nil {
				return err
			}

			edited := *existing
			if renameFlag != "" {
				edited.Name = renameFlag
			}
			if startFlag != "" {
				if edited.StartDate, err = parseDate(startFlag, "start"); err != nil {
					return err
				}
			}
			if endFlag != "" {
				if edited.EndDate, err = parseDate(endFlag, "end"); err != nil {
					return err
				}
			}
			if balanceFlag != "" {
				if edited.StartBalance, err = model.ParseAmount(balanceFlag); err != nil {
					return fmt.Errorf("invalid --balance %q: %w", balanceFlag, err)
				}
			}

			var allocations []model.CategoryBudget
			if len(allocateFlag) > 0 {
				if allocations, err = parseAllocations(allocateFlag); err != nil {
					return err
				}
			} else {
				if allocations, err = store.GetCategoryBudgets(ctx, existing.ID); err != nil {
					return err
				}
			}

			if _, err := e.SaveBudget(ctx, &edited, allocations, 0); err != nil {
				return err
			}

			fmt.Println(cli.SuccessStyle.Render(fmt.Sprintf("Updated budget %q", edited.Name)))
			return nil
		},
	}

	cmd.Flags().StringVar(&renameFlag, "rename", "", "new budget name")
	cmd.Flags().StringVar(&startFlag, "start", "", "start date (YYYY-MM-DD)")
	cmd.Flags().StringVar(&endFlag, "end", "", "end date (YYYY-MM-DD)")
	cmd.Flags().StringVar(&balanceFlag, "balance", "", "starting balance")
	cmd.Flags().StringArrayVar(&allocateFlag, "allocate", nil, `full allocation list as "Category=Amount" (repeatable)`)

	return cmd
}

func deleteBudgetCmd() *cobra.Command {
	var forceFlag bool

	cmd := &cobra.Command{
		Use:   "delete <name>",
		Short: "Delete a budget and all of its entries",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			ctx := cmd.Context()

			e, store, err := initEngine(ctx)
			if err != nil {
				return err
			}
			defer func() { _ = store.Close() }()

			budget, err := store.FindBudgetByName(ctx, args[0])
			if err != nil {
				return err
			}

			if !forceFlag {
				return fmt.Errorf("deleting %q removes its ledger entries and allocations; re-run with --force", budget.Name)
			}

			if err := e.DeleteBudget(ctx, budget.ID); err != nil {
				return err
			}

			fmt.Println(cli.SuccessStyle.Render(fmt.Sprintf("Deleted budget %q", budget.Name)))
			return nil
		},
	}

	cmd.Flags().BoolVar(&forceFlag, "force", false, "skip the confirmation")
	return cmd
}

func setCurrentBudgetCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "set-current <name>",
		Short: "Mark a budget as the current one",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			ctx := cmd.Context()

			e, store, err := initEngine(ctx)
			if err != nil {
				return err
			}
			defer func() { _ = store.Close() }()

			budget, err := store.FindBudgetByName(ctx, args[0])
			if err != nil {
				return err
			}

			if err := e.SetCurrentBudget(ctx, budget.ID); err != nil {
				return err
			}

			fmt.Println(cli.SuccessStyle.Render(fmt.Sprintf("%q is now the current budget", budget.Name)))
			return nil
		},
	}
}

// parseAllocations turns repeated "Category=Amount" flags into allocation
// rows. Categories are carried by name; the engine resolves them during
// the save, creating the ones that do not exist yet.
func parseAllocations(specs []string) ([]model.CategoryBudget, error) {
	allocations := make([]model.CategoryBudget, 0, len(specs))
	for _, spec := range specs {
		name, amountStr, found := strings.Cut(spec, "=")
		if !found {
			return nil, fmt.Errorf("invalid allocation %q, expected \"Category=Amount\"", spec)
		}

		amount, err := model.ParseAmount(amountStr)
		if err != nil {
			return nil, fmt.Errorf("invalid allocation amount in %q: %w", spec, err)
		}

		allocations = append(allocations, model.CategoryBudget{
			CategoryName: strings.TrimSpace(name),
			StartBalance: amount,
		})
	}
	return allocations, nil
}
