package main

import (
	"fmt"
	"os"
	"text/tabwriter"

	"github.com/spf13/cobra"

	"github.com/Relton66/budgetapp/internal/cli"
)

func methodsCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "methods",
		Short: "Manage payment methods",
	}

	cmd.AddCommand(listMethodsCmd())
	cmd.AddCommand(addMethodCmd())
	cmd.AddCommand(setMethodActiveCmd("activate", true))
	cmd.AddCommand(setMethodActiveCmd("deactivate", false))

	return cmd
}

func listMethodsCmd() *cobra.Command {
	var allFlag bool

	cmd := &cobra.Command{
		Use:   "list",
		Short: "List payment methods",
		RunE: func(cmd *cobra.Command, _ []string) error {
			ctx := cmd.Context()

			store, err := initStorage(ctx)
			if err != nil {
				return err
			}
			defer func() { _ = store.Close() }()

			methods, err := store.GetMethods(ctx, !allFlag)
			if err != nil {
				return fmt.Errorf("failed to get methods: %w", err)
			}

			w := tabwriter.NewWriter(os.Stdout, 0, 0, 2, ' ', 0)
			defer func() { _ = w.Flush() }()

			fmt.Fprintf(w, "%s\t%s\t%s\n",
				cli.HeaderStyle.Render("ID"),
				cli.HeaderStyle.Render("Type"),
				cli.HeaderStyle.Render("Status"))

			for _, method := range methods {
				status := "active"
				if !method.Active {
					status = cli.SubtleStyle.Render("inactive")
				}
				fmt.Fprintf(w, "%d\t%s\t%s\n", method.ID, method.Type, status)
			}

			return nil
		},
	}

	cmd.Flags().BoolVar(&allFlag, "all", false, "include deactivated methods")
	return cmd
}

func addMethodCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "add <type>",
		Short: "Add a payment method",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			ctx := cmd.Context()

			e, store, err := initEngine(ctx)
			if err != nil {
				return err
			}
			defer func() { _ = store.Close() }()

			id, err := e.AddMethod(ctx, args[0])
			if err != nil {
				return err
			}

			fmt.Println(cli.SuccessStyle.Render(fmt.Sprintf("Created method %q (id %d)", args[0], id)))
			return nil
		},
	}
}

func setMethodActiveCmd(verb string, active bool) *cobra.Command {
	return &cobra.Command{
		Use:   fmt.Sprintf("%s <type>", verb),
		Short: fmt.Sprintf("%s a payment method", verb),
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			ctx := cmd.Context()

			e, store, err := initEngine(ctx)
			if err != nil {
				return err
			}
			defer func() { _ = store.Close() }()

			method, err := store.FindMethodByType(ctx, args[0])
			if err != nil {
				return err
			}

			if err := e.SetMethodActive(ctx, method.ID, active); err != nil {
				return err
			}

			fmt.Println(cli.SuccessStyle.Render(fmt.Sprintf("Method %q %sd", method.Type, verb)))
			return nil
		},
	}
}
