package main

import (
	"fmt"
	"text/tabwriter"
	"time"

	"github.com/spf13/cobra"
)

var listCmd = &cobra.Command{
	Use:   "list",
	Short: "List orders in the view",
	RunE: func(cmd *cobra.Command, args []string) error {
		orders, err := apiClient.ListOrders(cmd.Context())
		if err != nil {
			return err
		}

		if jsonOutput {
			return printJSON(orders)
		}

		if len(orders) == 0 {
			fmt.Fprintln(cmd.OutOrStdout(), "No orders found.")
			return nil
		}

		w := tabwriter.NewWriter(cmd.OutOrStdout(), 0, 0, 2, ' ', 0)
		fmt.Fprintln(w, "ORDER ID\tCUSTOMER\tITEM\tCREATED")
		for _, o := range orders {
			fmt.Fprintf(w, "%s\t%s\t%s\t%s\n", o.OrderID, o.CustomerID, o.Item, o.CreatedAt.Format(time.RFC3339))
		}
		return w.Flush()
	},
}

func init() {
	rootCmd.AddCommand(listCmd)
}
