package main

import (
	"fmt"
	"time"

	"github.com/spf13/cobra"
)

var getCmd = &cobra.Command{
	Use:   "get <orderId>",
	Short: "Show one order from the view",
	Args:  cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		order, err := apiClient.GetOrder(cmd.Context(), args[0])
		if err != nil {
			return err
		}

		if jsonOutput {
			return printJSON(order)
		}

		out := cmd.OutOrStdout()
		fmt.Fprintf(out, "Order:    %s\n", order.OrderID)
		fmt.Fprintf(out, "Event:    %s\n", order.ID)
		fmt.Fprintf(out, "Customer: %s\n", order.CustomerID)
		fmt.Fprintf(out, "Item:     %s\n", order.Item)
		fmt.Fprintf(out, "Created:  %s\n", order.CreatedAt.Format(time.RFC3339))
		return nil
	},
}

func init() {
	rootCmd.AddCommand(getCmd)
}
