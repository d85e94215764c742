// Command orderctl places and inspects orders through the order API.
package main

import (
	"encoding/json"
	"fmt"
	"os"

	"github.com/spf13/cobra"

	"github.com/jnst/order-processor/internal/client"
)

var (
	apiURL     string
	jsonOutput bool

	apiClient *client.HTTPClient
)

var rootCmd = &cobra.Command{
	Use:           "orderctl",
	Short:         "orderctl - place and inspect orders",
	SilenceUsage:  true,
	SilenceErrors: true,
	PersistentPreRunE: func(cmd *cobra.Command, args []string) error {
		apiClient = client.NewHTTPClient(apiURL)
		return nil
	},
}

func init() {
	rootCmd.PersistentFlags().StringVar(&apiURL, "api-url", defaultAPIURL(), "order API base URL")
	rootCmd.PersistentFlags().BoolVar(&jsonOutput, "json", false, "output as JSON")
}

// defaultAPIURL returns API_URL if set, otherwise the local default.
func defaultAPIURL() string {
	if v := os.Getenv("API_URL"); v != "" {
		return v
	}
	return "http://localhost:8080"
}

func printJSON(v any) error {
	enc := json.NewEncoder(os.Stdout)
	enc.SetIndent("", "  ")
	return enc.Encode(v)
}

func main() {
	if err := rootCmd.Execute(); err != nil {
		fmt.Fprintf(os.Stderr, "Error: %v\n", err)
		os.Exit(1)
	}
}
