package main

import (
	"fmt"
	"text/tabwriter"

	"github.com/spf13/cobra"

	"keepmoney/internal/storage"
)

func (a *app) migrateCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "migrate",
		Short: "Create or upgrade the database schema",
		Long:  `Migrate applies the embedded schema migrations. Running it twice is harmless.`,
		Args:  exactArgs(0),
		RunE: func(cmd *cobra.Command, args []string) error {
			// Opening the ledger already ran the migrations.
			a.printf("Database ready: %s\n", a.cfg.SQLiteDBPath)
			return nil
		},
	}
}

func (a *app) balanceCmd() *cobra.Command {
	var recompute bool
	cmd := &cobra.Command{
		Use:   "balance",
		Short: "Show incomes, purchases and total of a user",
		Long: `Balance sums incomes, confirmed purchases and planned purchases.
With --recompute the total is also written to the user row.`,
		Args: exactArgs(0),
		RunE: func(cmd *cobra.Command, args []string) error {
			username, err := a.username()
			if err != nil {
				return err
			}
			b, err := a.ledger.Balance(cmd.Context(), username)
			if recompute && err == nil {
				b, err = a.ledger.RecomputeTotal(cmd.Context(), username)
			}
			if err != nil {
				return err
			}
			if a.json {
				return a.printJSON(b)
			}
			w := tabwriter.NewWriter(a.out, 0, 0, 2, ' ', 0)
			fmt.Fprintf(w, "incomes\t%s\n", b.Incomes)
			fmt.Fprintf(w, "purchases\t%s\n", b.Purchases)
			fmt.Fprintf(w, "planned\t%s\n", b.Planned)
			fmt.Fprintf(w, "total\t%s\n", b.Total)
			return w.Flush()
		},
	}
	cmd.Flags().BoolVar(&recompute, "recompute", false, "store the total in the user row")
	return cmd
}

func (a *app) countCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "count [TABLE]",
		Short: "Count rows per table, or per user with --user",
		Long: `Count prints the row count of one table, of every table, or with --user
the incomes and simple purchases of that user.

Example:
  keepmoneyctl count
  keepmoneyctl count purchases
  keepmoneyctl count -u mario`,
		Args: cobra.MaximumNArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			if a.user != "" {
				c, err := a.ledger.Counts(cmd.Context(), a.user)
				if err != nil {
					return err
				}
				if a.json {
					return a.printJSON(c)
				}
				a.printf("incomes %d\nsimple purchases %d\n", c.Incomes, c.SimplePurchases)
				return nil
			}

			tables := storage.Tables
			if len(args) == 1 {
				tables = []string{args[0]}
			}
			counts := make(map[string]int64, len(tables))
			w := tabwriter.NewWriter(a.out, 0, 0, 2, ' ', 0)
			for _, t := range tables {
				n, err := a.ledger.CountRows(cmd.Context(), t)
				if err != nil {
					return fmt.Errorf("count %s: %w", t, err)
				}
				counts[t] = n
				if !a.json {
					fmt.Fprintf(w, "%s\t%d\n", t, n)
				}
			}
			if a.json {
				return a.printJSON(counts)
			}
			return w.Flush()
		},
	}
}
