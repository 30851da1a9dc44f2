package main

import (
	"fmt"
	"io"
	"text/tabwriter"
	"time"

	"github.com/spf13/cobra"

	"keepmoney/internal/core"
)

func (a *app) purchaseCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "purchase",
		Short: "Record, remove and list purchases",
	}

	var it itemFlags
	var date, clock string
	add := &cobra.Command{
		Use:   "add",
		Short: "Record a purchase",
		Long: `Add records a bought item for --user. Without --date the purchase is
dated now.

Example:
  keepmoneyctl purchase add -u mario --name bread --price 2,50 --amount 2 --category food`,
		Args: exactArgs(0),
		RunE: func(cmd *cobra.Command, args []string) error {
			username, err := a.username()
			if err != nil {
				return err
			}
			item, err := it.item()
			if err != nil {
				return err
			}
			at, err := purchaseTime(date, clock)
			if err != nil {
				return err
			}
			itemID, purchaseID, err := a.ledger.RecordPurchase(cmd.Context(), username, item, at)
			if err != nil {
				return err
			}
			a.printf("Recorded purchase %d (item %d): %s\n", purchaseID, itemID, item.Cost())
			return nil
		},
	}
	it.register(add)
	add.Flags().StringVar(&date, "date", "", "date YYYY-MM-DD (default: now)")
	add.Flags().StringVar(&clock, "time", "", "time HH:MM:SS (default: midnight when --date is set)")

	rm := &cobra.Command{
		Use:   "rm ITEM_ID",
		Short: "Remove a purchase and its item",
		Args:  exactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			username, err := a.username()
			if err != nil {
				return err
			}
			itemID, err := parseID(args[0])
			if err != nil {
				return err
			}
			if err := a.ledger.RemovePurchase(cmd.Context(), username, itemID); err != nil {
				return err
			}
			a.printf("Removed purchase of item %d\n", itemID)
			return nil
		},
	}

	var listID int64
	var limit int
	list := &cobra.Command{
		Use:   "list",
		Short: "List purchased items, newest first",
		Long: `List shows simple purchases, or the items of one wishlist with --list.

Example:
  keepmoneyctl purchase list -u mario --limit 10
  keepmoneyctl purchase list -u mario --list 3`,
		Args: exactArgs(0),
		RunE: func(cmd *cobra.Command, args []string) error {
			username, err := a.username()
			if err != nil {
				return err
			}
			rows, err := a.ledger.Purchases(cmd.Context(), username, listID, limit)
			if err != nil {
				return err
			}
			if a.json {
				return a.printJSON(rows)
			}
			return printItemRows(a.out, rows)
		},
	}
	list.Flags().Int64Var(&listID, "list", 0, "wishlist id (0 = simple purchases)")
	list.Flags().IntVar(&limit, "limit", 0, "maximum number of rows (0 = no limit)")

	cmd.AddCommand(add, rm, list)
	return cmd
}

// itemFlags are the flags describing one item.
type itemFlags struct {
	name     string
	price    string
	amount   int
	category string
}

func (f *itemFlags) register(cmd *cobra.Command) {
	cmd.Flags().StringVar(&f.name, "name", "", "item name")
	cmd.Flags().StringVar(&f.price, "price", "", "unit price, e.g. 2.50 (required)")
	cmd.Flags().IntVar(&f.amount, "amount", 1, "quantity")
	cmd.Flags().StringVar(&f.category, "category", "", "category id (required)")
}

func (f *itemFlags) item() (core.Item, error) {
	price, err := core.ParseMoney(f.price)
	if err != nil {
		return core.Item{}, err
	}
	it := core.Item{Name: f.name, Price: price, Amount: f.amount, CategoryID: f.category}
	return it, it.Validate()
}

func purchaseTime(date, clock string) (time.Time, error) {
	if date == "" {
		if clock != "" {
			return time.Time{}, fmt.Errorf("%w: --time needs --date", errUsage)
		}
		return time.Time{}, nil
	}
	if clock == "" {
		clock = "00:00:00"
	}
	at, err := time.ParseInLocation(core.DateLayout+" "+core.TimeLayout, date+" "+clock, time.UTC)
	if err != nil {
		return time.Time{}, fmt.Errorf("%w: invalid date/time %q %q", errUsage, date, clock)
	}
	return at, nil
}

func printItemRows(out io.Writer, rows []core.ItemRow) error {
	if len(rows) == 0 {
		_, err := fmt.Fprintln(out, "No purchases found.")
		return err
	}
	w := tabwriter.NewWriter(out, 0, 0, 2, ' ', 0)
	fmt.Fprintln(w, "ITEM\tNAME\tPRICE\tAMOUNT\tCOST\tPIC")
	for _, r := range rows {
		fmt.Fprintf(w, "%d\t%s\t%s\t%d\t%s\t%d\n", r.ItemID, r.Name, r.Price, r.Amount, r.Cost(), r.PicID)
	}
	return w.Flush()
}
