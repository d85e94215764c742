package main

import (
	"errors"
	"fmt"
	"net/http"

	"github.com/spf13/cobra"

	"github.com/jnst/order-processor/internal/client"
	"github.com/jnst/order-processor/internal/model"
)

var (
	placeCustomer string
	placeItem     string
)

var placeCmd = &cobra.Command{
	Use:   "place",
	Short: "Place an order and wait for it to become visible",
	RunE: func(cmd *cobra.Command, args []string) error {
		receipt, err := apiClient.PlaceOrder(cmd.Context(), &model.PlaceOrderParams{
			CustomerID: placeCustomer,
			Item:       placeItem,
		})

		var apiErr *client.APIError
		if errors.As(err, &apiErr) && apiErr.StatusCode == http.StatusGatewayTimeout && receipt != nil {
			// The write is durable; report the receipt and still fail the command.
			if jsonOutput {
				_ = printJSON(receipt)
			} else {
				fmt.Fprintf(cmd.ErrOrStderr(), "order %s accepted but not visible yet\n", receipt.OrderID)
			}
			return err
		}
		if err != nil {
			return err
		}

		if jsonOutput {
			return printJSON(receipt)
		}

		fmt.Fprintf(cmd.OutOrStdout(), "%s order %s (customer %s, item %s)\n",
			receipt.Status, receipt.OrderID, receipt.CustomerID, receipt.Item)
		return nil
	},
}

func init() {
	placeCmd.Flags().StringVar(&placeCustomer, "customer", "", "customer id (required)")
	placeCmd.Flags().StringVar(&placeItem, "item", "", "item to order (required)")
	_ = placeCmd.MarkFlagRequired("customer")
	_ = placeCmd.MarkFlagRequired("item")

	rootCmd.AddCommand(placeCmd)
}
