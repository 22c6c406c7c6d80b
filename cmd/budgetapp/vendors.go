package main

import (
	"fmt"
	"os"
	"text/tabwriter"

	"github.com/spf13/cobra"

	"github.com/Relton66/budgetapp/internal/cli"
)

func vendorsCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "vendors",
		Short: "Manage vendors and their category assignments",
	}

	cmd.AddCommand(listVendorsCmd())
	cmd.AddCommand(addVendorCmd())
	cmd.AddCommand(renameVendorCmd())
	cmd.AddCommand(setVendorCategoryCmd())
	cmd.AddCommand(deactivateVendorCmd())

	return cmd
}

func listVendorsCmd() *cobra.Command {
	var allFlag bool

	cmd := &cobra.Command{
		Use:   "list",
		Short: "List vendors",
		RunE: func(cmd *cobra.Command, _ []string) error {
			ctx := cmd.Context()

			store, err := initStorage(ctx)
			if err != nil {
				return err
			}
			defer func() { _ = store.Close() }()

			vendors, err := store.GetVendors(ctx, !allFlag)
			if err != nil {
				return fmt.Errorf("failed to get vendors: %w", err)
			}

			if len(vendors) == 0 {
				fmt.Println(cli.InfoStyle.Render("No vendors found. Use 'budgetapp vendors add' to create one."))
				return nil
			}

			categories, err := store.GetCategories(ctx)
			if err != nil {
				return fmt.Errorf("failed to get categories: %w", err)
			}
			categoryNames := make(map[int]string, len(categories))
			for _, cat := range categories {
				categoryNames[cat.ID] = cat.Name
			}

			w := tabwriter.NewWriter(os.Stdout, 0, 0, 2, ' ', 0)
			defer func() { _ = w.Flush() }()

			fmt.Fprintf(w, "%s\t%s\t%s\t%s\n",
				cli.HeaderStyle.Render("ID"),
				cli.HeaderStyle.Render("Name"),
				cli.HeaderStyle.Render("Category"),
				cli.HeaderStyle.Render("Status"))

			for _, vendor := range vendors {
				status := "active"
				if !vendor.Active {
					status = cli.SubtleStyle.Render("inactive")
				}
				fmt.Fprintf(w, "%d\t%s\t%s\t%s\n",
					vendor.ID, vendor.Name, categoryNames[vendor.CategoryID], status)
			}

			return nil
		},
	}

	cmd.Flags().BoolVar(&allFlag, "all", false, "include deactivated vendors")
	return cmd
}

func addVendorCmd() *cobra.Command {
	var categoryFlag string

	cmd := &cobra.Command{
		Use:   "add <name>",
		Short: "Add a vendor",
		Long: `Create a vendor assigned to a category. Entries posted at this vendor
count against that category's allocation. A category name not seen
before is created along with the vendor.`,
		Args: cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			ctx := cmd.Context()

			e, store, err := initEngine(ctx)
			if err != nil {
				return err
			}
			defer func() { _ = store.Close() }()

			id, err := e.AddVendor(ctx, args[0], categoryFlag)
			if err != nil {
				return err
			}

			fmt.Println(cli.SuccessStyle.Render(
				fmt.Sprintf("Created vendor %q (id %d) in %s", args[0], id, categoryFlag)))
			return nil
		},
	}

	cmd.Flags().StringVar(&categoryFlag, "category", "", "category the vendor belongs to")
	_ = cmd.MarkFlagRequired("category")
	return cmd
}

func renameVendorCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "rename <name> <new-name>",
		Short: "Rename a vendor",
		Args:  cobra.ExactArgs(2),
		RunE: func(cmd *cobra.Command, args []string) error {
			ctx := cmd.Context()

			e, store, err := initEngine(ctx)
			if err != nil {
				return err
			}
			defer func() { _ = store.Close() }()

			vendor, err := store.FindVendorByName(ctx, args[0])
			if err != nil {
				return err
			}

			if err := e.RenameVendor(ctx, vendor.ID, args[1]); err != nil {
				return err
			}

			fmt.Println(cli.SuccessStyle.Render(fmt.Sprintf("Renamed %q to %q", args[0], args[1])))
			return nil
		},
	}
}

func setVendorCategoryCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "set-category <name> <category>",
		Short: "Move a vendor to a different category",
		Long: `Reassign a vendor. Existing entries stay where they were reconciled;
only future posts, edits, and deletes resolve to the new category.`,
		Args: cobra.ExactArgs(2),
		RunE: func(cmd *cobra.Command, args []string) error {
			ctx := cmd.Context()

			e, store, err := initEngine(ctx)
			if err != nil {
				return err
			}
			defer func() { _ = store.Close() }()

			vendor, err := store.FindVendorByName(ctx, args[0])
			if err != nil {
				return err
			}

			if err := e.SetVendorCategory(ctx, vendor.ID, args[1]); err != nil {
				return err
			}

			fmt.Println(cli.SuccessStyle.Render(fmt.Sprintf("Moved %q to %s", vendor.Name, args[1])))
			return nil
		},
	}
}

func deactivateVendorCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "deactivate <name>",
		Short: "Hide a vendor from entry forms",
		Long:  `Deactivate a vendor. Its history and category resolution are untouched.`,
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			ctx := cmd.Context()

			e, store, err := initEngine(ctx)
			if err != nil {
				return err
			}
			defer func() { _ = store.Close() }()

			vendor, err := store.FindVendorByName(ctx, args[0])
			if err != nil {
				return err
			}

			if err := e.DeactivateVendor(ctx, vendor.ID); err != nil {
				return err
			}

			fmt.Println(cli.SuccessStyle.Render(fmt.Sprintf("Deactivated %q", vendor.Name)))
			return nil
		},
	}
}
