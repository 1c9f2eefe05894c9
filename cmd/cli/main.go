package main

import (
	"fmt"
	"os"
	"time"

	"github.com/spf13/cobra"
)

var (
	baseURL  string
	timeout  time.Duration
	apiToken string
	currency string
)

func main() {
	if err := rootCmd().Execute(); err != nil {
		fmt.Fprintln(os.Stderr, err)
		os.Exit(1)
	}
}

func rootCmd() *cobra.Command {
	root := &cobra.Command{
		Use:           "gobooks-cli",
		Short:         "GoBooks CLI tool",
		Long:          `A command line interface for checking and submitting bookkeeping documents.`,
		SilenceUsage:  true,
		SilenceErrors: true,
	}

	root.PersistentFlags().StringVar(&baseURL, "url", "http://localhost:8080", "Base URL of the GoBooks API")
	root.PersistentFlags().DurationVar(&timeout, "timeout", 10*time.Second, "Request timeout")
	root.PersistentFlags().StringVar(&apiToken, "token", os.Getenv("GOBOOKS_TOKEN"), "Bearer token for the API")
	root.PersistentFlags().StringVar(&currency, "currency", "USD", "ISO 4217 code used to display amounts")

	root.AddCommand(checkCmd())
	root.AddCommand(submitCmd())
	root.AddCommand(accountsCmd())
	root.AddCommand(tokenCmd())

	return root
}
