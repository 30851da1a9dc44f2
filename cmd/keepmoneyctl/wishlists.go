package main

import (
	"fmt"
	"strconv"
	"strings"
	"text/tabwriter"

	"github.com/spf13/cobra"

	"keepmoney/internal/core"
)

func (a *app) wishListCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:     "wishlist",
		Aliases: []string{"wl"},
		Short:   "Plan purchases with wishlists",
	}

	var name, description string
	var specs []string
	create := &cobra.Command{
		Use:   "create",
		Short: "Create a wishlist of planned purchases",
		Long: `Create stores a wishlist and one planned purchase per --item.
Items are written as name:price:amount:category.

Example:
  keepmoneyctl wishlist create -u mario --name holiday \
    --item tent:80:1:leisure --item socks:3,50:4:clothes`,
		Args: exactArgs(0),
		RunE: func(cmd *cobra.Command, args []string) error {
			username, err := a.username()
			if err != nil {
				return err
			}
			items := make([]core.Item, 0, len(specs))
			for _, spec := range specs {
				it, err := parseItemSpec(spec)
				if err != nil {
					return err
				}
				items = append(items, it)
			}
			id, err := a.ledger.CreateWishList(cmd.Context(), username, core.WishList{Name: name, Description: description}, items)
			if err != nil {
				return err
			}
			a.printf("Created wishlist %d with %d item(s)\n", id, len(items))
			return nil
		},
	}
	create.Flags().StringVar(&name, "name", "", "wishlist name (required)")
	create.Flags().StringVar(&description, "description", "", "description")
	create.Flags().StringArrayVar(&specs, "item", nil, "item as name:price:amount:category (repeatable)")

	items := &cobra.Command{
		Use:   "items LIST_ID",
		Short: "Show the items of a wishlist",
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
			rows, err := a.ledger.WishListItems(cmd.Context(), username, id)
			if err != nil {
				return err
			}
			if a.json {
				return a.printJSON(rows)
			}
			w := tabwriter.NewWriter(a.out, 0, 0, 2, ' ', 0)
			fmt.Fprintln(w, "ITEM\tNAME\tPRICE\tAMOUNT\tCOST\tCONFIRMED\tCATEGORY")
			for _, it := range rows {
				fmt.Fprintf(w, "%d\t%s\t%s\t%d\t%s\t%t\t%s\n", it.ID, it.Name, it.Price, it.Amount, it.Cost(), it.Confirmed, it.CategoryID)
			}
			return w.Flush()
		},
	}

	confirm := &cobra.Command{
		Use:   "confirm LIST_ID",
		Short: "Mark a wishlist bought now",
		Args:  exactArgs(1),
		RunE: a.onList(func(cmd *cobra.Command, username string, id int64) error {
			if err := a.ledger.ConfirmWishList(cmd.Context(), username, id); err != nil {
				return err
			}
			a.printf("Confirmed wishlist %d\n", id)
			return nil
		}),
	}

	rm := &cobra.Command{
		Use:   "rm LIST_ID",
		Short: "Delete a wishlist and its planned purchases",
		Args:  exactArgs(1),
		RunE: a.onList(func(cmd *cobra.Command, username string, id int64) error {
			if err := a.ledger.DeleteWishList(cmd.Context(), username, id); err != nil {
				return err
			}
			a.printf("Deleted wishlist %d\n", id)
			return nil
		}),
	}

	var confirmed bool
	list := &cobra.Command{
		Use:   "list",
		Short: "List wishlists with their totals",
		Args:  exactArgs(0),
		RunE: func(cmd *cobra.Command, args []string) error {
			username, err := a.username()
			if err != nil {
				return err
			}
			lists, err := a.ledger.WishLists(cmd.Context(), username, confirmed)
			if err != nil {
				return err
			}
			if a.json {
				return a.printJSON(lists)
			}
			if len(lists) == 0 {
				a.printf("No wishlists found.\n")
				return nil
			}
			w := tabwriter.NewWriter(a.out, 0, 0, 2, ' ', 0)
			fmt.Fprintln(w, "ID\tNAME\tTOTAL\tDESCRIPTION")
			for _, l := range lists {
				fmt.Fprintf(w, "%d\t%s\t%s\t%s\n", l.ID, l.Name, l.Total, l.Description)
			}
			return w.Flush()
		},
	}
	list.Flags().BoolVar(&confirmed, "confirmed", false, "list confirmed wishlists instead of open ones")

	var price string
	var amount int
	setItem := &cobra.Command{
		Use:   "set-item ITEM_ID",
		Short: "Change price and amount of a planned item",
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
			m, err := core.ParseMoney(price)
			if err != nil {
				return err
			}
			if amount < 1 {
				return core.ErrInvalidQuantity
			}
			if err := a.ledger.UpdateWishListItem(cmd.Context(), username, id, m, amount); err != nil {
				return err
			}
			a.printf("Updated item %d: %s x %d\n", id, m, amount)
			return nil
		},
	}
	setItem.Flags().StringVar(&price, "price", "", "unit price (required)")
	setItem.Flags().IntVar(&amount, "amount", 1, "quantity")

	cmd.AddCommand(create, items, confirm, rm, list, setItem)
	return cmd
}

// onList resolves --user and the list id argument.
func (a *app) onList(fn func(cmd *cobra.Command, username string, id int64) error) func(*cobra.Command, []string) error {
	return func(cmd *cobra.Command, args []string) error {
		username, err := a.username()
		if err != nil {
			return err
		}
		id, err := parseID(args[0])
		if err != nil {
			return err
		}
		return fn(cmd, username, id)
	}
}

// parseItemSpec reads name:price:amount:category. Price may use a comma.
func parseItemSpec(spec string) (core.Item, error) {
	parts := strings.Split(spec, ":")
	if len(parts) != 4 {
		return core.Item{}, fmt.Errorf("%w: item %q must be name:price:amount:category", errUsage, spec)
	}
	amount, err := strconv.Atoi(parts[2])
	if err != nil {
		return core.Item{}, fmt.Errorf("%w: item %q has invalid amount", errUsage, spec)
	}
	f := itemFlags{name: parts[0], price: parts[1], amount: amount, category: parts[3]}
	return f.item()
}
