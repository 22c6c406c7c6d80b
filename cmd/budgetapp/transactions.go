package main

import (
	"fmt"
	"os"
	"text/tabwriter"

	"github.com/spf13/cobra"

	"github.com/Relton66/budgetapp/internal/cli"
	"github.com/Relton66/budgetapp/internal/model"
	"github.com/Relton66/budgetapp/internal/service"
)

func transactionsCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:     "transactions",
		Aliases: []string{"txn"},
		Short:   "Post, edit, delete, and search ledger entries",
	}

	cmd.AddCommand(postTransactionCmd())
	cmd.AddCommand(editTransactionCmd())
	cmd.AddCommand(deleteTransactionCmd())
	cmd.AddCommand(listTransactionsCmd())

	return cmd
}

func postTransactionCmd() *cobra.Command {
	var (
		budgetFlag    string
		vendorFlag    string
		methodFlag    string
		amountFlag    string
		dateFlag      string
		commentFlag   string
		incomeFlag    bool
		recurringFlag bool
	)

	cmd := &cobra.Command{
		Use:   "post",
		Short: "Post a ledger entry",
		Long: `Post an income or expense entry. The amount is applied to the budget
balance and to the allocation of the vendor's category in one step.`,
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
			vendor, err := store.FindVendorByName(ctx, vendorFlag)
			if err != nil {
				return err
			}

			amount, err := model.ParseAmount(amountFlag)
			if err != nil {
				return fmt.Errorf("invalid --amount %q: %w", amountFlag, err)
			}
			date, err := parseDate(dateFlag, "date")
			if err != nil {
				return err
			}

			txn := &model.Transaction{
				BudgetID:  budget.ID,
				VendorID:  vendor.ID,
				Amount:    amount,
				Income:    incomeFlag,
				Recurring: recurringFlag,
				Date:      date,
				Comments:  commentFlag,
			}

			if methodFlag != "" {
				method, findErr := store.FindMethodByType(ctx, methodFlag)
				if findErr != nil {
					return findErr
				}
				txn.MethodID = method.ID
			}

			id, err := e.PostTransaction(ctx, txn)
			if err != nil {
				return err
			}

			fmt.Println(cli.SuccessStyle.Render(
				fmt.Sprintf("Posted entry %d: %s at %s", id, model.FormatAmount(amount), vendor.Name)))
			return nil
		},
	}

	cmd.Flags().StringVar(&budgetFlag, "budget", "", "budget name (defaults to the current budget)")
	cmd.Flags().StringVar(&vendorFlag, "vendor", "", "vendor name")
	cmd.Flags().StringVar(&methodFlag, "method", "", "payment method, e.g. Credit")
	cmd.Flags().StringVar(&amountFlag, "amount", "", "entry amount, always positive")
	cmd.Flags().StringVar(&dateFlag, "date", "", "entry date (YYYY-MM-DD)")
	cmd.Flags().StringVar(&commentFlag, "comment", "", "optional comment (max 100 characters)")
	cmd.Flags().BoolVar(&incomeFlag, "income", false, "record as income instead of expense")
	cmd.Flags().BoolVar(&recurringFlag, "recurring", false, "flag the entry as recurring")
	_ = cmd.MarkFlagRequired("vendor")
	_ = cmd.MarkFlagRequired("amount")
	_ = cmd.MarkFlagRequired("date")

	return cmd
}

func editTransactionCmd() *cobra.Command {
	var (
		vendorFlag    string
		methodFlag    string
		amountFlag    string
		dateFlag      string
		commentFlag   string
		incomeFlag    bool
		expenseFlag   bool
		recurringFlag bool
		onceFlag      bool
	)

	cmd := &cobra.Command{
		Use:   "edit <id>",
		Short: "Edit a ledger entry",
		Long: `Edit an entry. Balances move only where the edit changes them: a new
amount or direction re-reconciles the budget and the category, and a
vendor in a different category moves the delta between allocations.`,
		Args: cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			ctx := cmd.Context()

			e, store, err := initEngine(ctx)
			if err != nil {
				return err
			}
			defer func() { _ = store.Close() }()

			id, err := parseEntryID(args[0])
			if err != nil {
				return err
			}
			txn, err := store.GetTransaction(ctx, id)
			if err != nil {
				return err
			}

			if vendorFlag != "" {
				vendor, findErr := store.FindVendorByName(ctx, vendorFlag)
				if findErr != nil {
					return findErr
				}
				txn.VendorID = vendor.ID
			}
			if methodFlag != "" {
				method, findErr := store.FindMethodByType(ctx, methodFlag)
				if findErr != nil {
					return findErr
				}
				txn.MethodID = method.ID
			}
			if amountFlag != "" {
				if txn.Amount, err = model.ParseAmount(amountFlag); err != nil {
					return fmt.Errorf("invalid --amount %q: %w", amountFlag, err)
				}
			}
			if dateFlag != "" {
				if txn.Date, err = parseDate(dateFlag, "date"); err != nil {
					return err
				}
			}
			if cmd.Flags().Changed("comment") {
				txn.Comments = commentFlag
			}
			if incomeFlag {
				txn.Income = true
			}
			if expenseFlag {
				txn.Income = false
			}
			if recurringFlag {
				txn.Recurring = true
			}
			if onceFlag {
				txn.Recurring = false
			}

			if err := e.EditTransaction(ctx, txn); err != nil {
				return err
			}

			fmt.Println(cli.SuccessStyle.Render(fmt.Sprintf("Updated entry %d", id)))
			return nil
		},
	}

	cmd.Flags().StringVar(&vendorFlag, "vendor", "", "new vendor name")
	cmd.Flags().StringVar(&methodFlag, "method", "", "new payment method")
	cmd.Flags().StringVar(&amountFlag, "amount", "", "new amount")
	cmd.Flags().StringVar(&dateFlag, "date", "", "new date (YYYY-MM-DD)")
	cmd.Flags().StringVar(&commentFlag, "comment", "", "new comment")
	cmd.Flags().BoolVar(&incomeFlag, "income", false, "change the entry to income")
	cmd.Flags().BoolVar(&expenseFlag, "expense", false, "change the entry to expense")
	cmd.Flags().BoolVar(&recurringFlag, "recurring", false, "flag the entry as recurring")
	cmd.Flags().BoolVar(&onceFlag, "once", false, "clear the recurring flag")
	cmd.MarkFlagsMutuallyExclusive("income", "expense")
	cmd.MarkFlagsMutuallyExclusive("recurring", "once")

	return cmd
}

func deleteTransactionCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "delete <id>",
		Short: "Delete a ledger entry and roll its amount back",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			ctx := cmd.Context()

			e, store, err := initEngine(ctx)
			if err != nil {
				return err
			}
			defer func() { _ = store.Close() }()

			id, err := parseEntryID(args[0])
			if err != nil {
				return err
			}

			if err := e.DeleteTransaction(ctx, id); err != nil {
				return err
			}

			fmt.Println(cli.SuccessStyle.Render(fmt.Sprintf("Deleted entry %d", id)))
			return nil
		},
	}
}

func listTransactionsCmd() *cobra.Command {
	var (
		budgetFlag   string
		vendorFlag   string
		categoryFlag string
		methodFlag   string
		incomeFlag   bool
		expenseFlag  bool
		fromFlag     string
		toFlag       string
	)

	cmd := &cobra.Command{
		Use:   "list",
		Short: "List or search a budget's ledger entries",
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

			filter := service.TransactionFilter{BudgetID: budget.ID}

			if vendorFlag != "" {
				vendor, findErr := store.FindVendorByName(ctx, vendorFlag)
				if findErr != nil {
					return findErr
				}
				filter.VendorID = &vendor.ID
			}
			if categoryFlag != "" {
				category, findErr := store.FindCategoryByName(ctx, categoryFlag)
				if findErr != nil {
					return findErr
				}
				filter.CategoryID = &category.ID
			}
			if methodFlag != "" {
				method, findErr := store.FindMethodByType(ctx, methodFlag)
				if findErr != nil {
					return findErr
				}
				filter.MethodID = &method.ID
			}
			if incomeFlag {
				income := true
				filter.Income = &income
			}
			if expenseFlag {
				income := false
				filter.Income = &income
			}
			if fromFlag != "" {
				from, parseErr := parseDate(fromFlag, "from")
				if parseErr != nil {
					return parseErr
				}
				filter.DateFrom = &from
			}
			if toFlag != "" {
				to, parseErr := parseDate(toFlag, "to")
				if parseErr != nil {
					return parseErr
				}
				filter.DateTo = &to
			}

			transactions, err := e.SearchTransactions(ctx, filter)
			if err != nil {
				return err
			}

			if len(transactions) == 0 {
				fmt.Println(cli.InfoStyle.Render("No entries match."))
				return nil
			}

			w := tabwriter.NewWriter(os.Stdout, 0, 0, 2, ' ', 0)
			defer func() { _ = w.Flush() }()

			fmt.Fprintf(w, "%s\t%s\t%s\t%s\t%s\t%s\t%s\t%s\n",
				cli.HeaderStyle.Render("ID"),
				cli.HeaderStyle.Render("Date"),
				cli.HeaderStyle.Render("Vendor"),
				cli.HeaderStyle.Render("Category"),
				cli.HeaderStyle.Render("Amount"),
				cli.HeaderStyle.Render("Type"),
				cli.HeaderStyle.Render("Method"),
				cli.HeaderStyle.Render("Comments"))

			for _, txn := range transactions {
				entryType := "Expense"
				if txn.Income {
					entryType = "Income"
				}
				if txn.Recurring {
					entryType += " (recurring)"
				}
				fmt.Fprintf(w, "%d\t%s\t%s\t%s\t%s\t%s\t%s\t%s\n",
					txn.ID,
					txn.Date.Format(dateLayout),
					txn.VendorName,
					txn.CategoryName,
					model.FormatAmount(txn.Amount),
					entryType,
					txn.MethodType,
					txn.Comments)
			}

			return nil
		},
	}

	cmd.Flags().StringVar(&budgetFlag, "budget", "", "budget name (defaults to the current budget)")
	cmd.Flags().StringVar(&vendorFlag, "vendor", "", "filter by vendor")
	cmd.Flags().StringVar(&categoryFlag, "category", "", "filter by the vendor's category")
	cmd.Flags().StringVar(&methodFlag, "method", "", "filter by payment method")
	cmd.Flags().BoolVar(&incomeFlag, "income", false, "only income entries")
	cmd.Flags().BoolVar(&expenseFlag, "expense", false, "only expense entries")
	cmd.Flags().StringVar(&fromFlag, "from", "", "earliest date (YYYY-MM-DD)")
	cmd.Flags().StringVar(&toFlag, "to", "", "latest date (YYYY-MM-DD)")
	cmd.MarkFlagsMutuallyExclusive("income", "expense")

	return cmd
}
