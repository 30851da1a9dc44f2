package main

import (
	"fmt"
	"text/tabwriter"

	"github.com/spf13/cobra"

	"keepmoney/internal/core"
)

func (a *app) categoryCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "category",
		Short: "List and add categories",
	}

	list := &cobra.Command{
		Use:   "list",
		Short: "List categories",
		Args:  exactArgs(0),
		RunE: func(cmd *cobra.Command, args []string) error {
			cats, err := a.ledger.Categories(cmd.Context())
			if err != nil {
				return err
			}
			if a.json {
				return a.printJSON(cats)
			}
			w := tabwriter.NewWriter(a.out, 0, 0, 2, ' ', 0)
			fmt.Fprintln(w, "ID\tDESCRIPTION\tPIC")
			for _, c := range cats {
				fmt.Fprintf(w, "%s\t%s\t%d\n", c.ID, c.Description, c.PicID)
			}
			return w.Flush()
		},
	}

	var c core.Category
	add := &cobra.Command{
		Use:   "add",
		Short: "Add a category",
		Long: `Add creates a category. Ids are at most 8 characters.

Example:
  keepmoneyctl category add --id pets --description "Pets" --pic 12`,
		Args: exactArgs(0),
		RunE: func(cmd *cobra.Command, args []string) error {
			if err := a.ledger.AddCategory(cmd.Context(), c); err != nil {
				return err
			}
			a.printf("Added category: %s\n", c.ID)
			return nil
		},
	}
	add.Flags().StringVar(&c.ID, "id", "", "category id (required)")
	add.Flags().StringVar(&c.Description, "description", "", "description")
	add.Flags().IntVar(&c.PicID, "pic", 0, "picture id")

	cmd.AddCommand(list, add)
	return cmd
}
