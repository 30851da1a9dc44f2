package main

import (
	"fmt"
	"text/tabwriter"
	"time"

	"github.com/spf13/cobra"

	"keepmoney/internal/core"
)

func (a *app) incomeCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "income",
		Short: "Record, remove and list incomes",
	}

	var value, date, category string
	add := &cobra.Command{
		Use:   "add",
		Short: "Record an income",
		Long: `Add records an income for --user.

Example:
  keepmoneyctl income add -u mario --value 1500,00 --category salary --date 2025-05-27`,
		Args: exactArgs(0),
		RunE: func(cmd *cobra.Command, args []string) error {
			username, err := a.username()
			if err != nil {
				return err
			}
			in, err := newIncome(username, value, date, category, time.Now())
			if err != nil {
				return err
			}
			id, err := a.ledger.RecordIncome(cmd.Context(), in)
			if err != nil {
				return err
			}
			a.printf("Recorded income %d: %s\n", id, in.Value)
			return nil
		},
	}
	add.Flags().StringVar(&value, "value", "", "amount, e.g. 12.34 or 12,34 (required)")
	add.Flags().StringVar(&date, "date", "", "date YYYY-MM-DD (default: today)")
	add.Flags().StringVar(&category, "category", "", "category id (required)")

	rm := &cobra.Command{
		Use:   "rm ID",
		Short: "Remove an income",
		Args:  exactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			username, err := a.username()
			if err != nil {
				return err
			}
			id, err := parseID(args[0])
			if err != nil {
				return err
			}
			if err := a.ledger.RemoveIncome(cmd.Context(), username, id); err != nil {
				return err
			}
			a.printf("Removed income %d\n", id)
			return nil
		},
	}

	list := &cobra.Command{
		Use:   "list",
		Short: "List incomes",
		Args:  exactArgs(0),
		RunE: func(cmd *cobra.Command, args []string) error {
			username, err := a.username()
			if err != nil {
				return err
			}
			rows, err := a.ledger.Incomes(cmd.Context(), username)
			if err != nil {
				return err
			}
			if a.json {
				return a.printJSON(rows)
			}
			if len(rows) == 0 {
				a.printf("No incomes found.\n")
				return nil
			}
			w := tabwriter.NewWriter(a.out, 0, 0, 2, ' ', 0)
			fmt.Fprintln(w, "ID\tDATE\tVALUE\tPIC")
			for _, r := range rows {
				fmt.Fprintf(w, "%d\t%s\t%s\t%d\n", r.ID, r.Date, r.Value, r.PicID)
			}
			return w.Flush()
		},
	}

	cmd.AddCommand(add, rm, list)
	return cmd
}

func newIncome(username, value, date, category string, now time.Time) (core.Income, error) {
	m, err := core.ParseMoney(value)
	if err != nil {
		return core.Income{}, err
	}
	d := core.NewDate(now.Year(), int(now.Month()), now.Day())
	if date != "" {
		if d, err = core.ParseDate(date); err != nil {
			return core.Income{}, fmt.Errorf("%w: invalid date %q", errUsage, date)
		}
	}
	return core.Income{Value: m, Date: d, CategoryID: category, Username: username}, nil
}
