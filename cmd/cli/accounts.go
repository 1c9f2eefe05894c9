package main

import (
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"strconv"

	"github.com/spf13/cobra"

	"github.com/iho/gobooks/internal/adapter/http/dto"
)

func accountsCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "accounts",
		Short: "Chart of accounts operations",
	}

	var (
		filter accountFilter
		asJSON bool
	)

	listCmd := &cobra.Command{
		Use:   "list",
		Short: "List accounts",
		RunE: func(cmd *cobra.Command, args []string) error {
			resp, err := listAccounts(newAPIClient(), filter)
			if err != nil {
				return err
			}
			if asJSON {
				printJSON(resp)
				return nil
			}
			printAccounts(cmd.OutOrStdout(), resp)
			return nil
		},
	}
	listCmd.Flags().StringVar(&filter.Type, "type", "", "Only accounts of this type")
	listCmd.Flags().BoolVar(&filter.ActiveOnly, "active", false, "Hide deactivated accounts")
	listCmd.Flags().IntVar(&filter.Limit, "limit", 100, "Maximum number of accounts")
	listCmd.Flags().IntVar(&filter.Offset, "offset", 0, "Number of accounts to skip")
	listCmd.Flags().BoolVar(&asJSON, "json", false, "Print raw JSON")

	cmd.AddCommand(listCmd)
	return cmd
}

type accountFilter struct {
	Type       string
	ActiveOnly bool
	Limit      int
	Offset     int
}

func listAccounts(client *apiClient, filter accountFilter) (*dto.ListAccountsResponse, error) {
	query := url.Values{}
	query.Set("limit", strconv.Itoa(filter.Limit))
	query.Set("offset", strconv.Itoa(filter.Offset))
	if filter.Type != "" {
		query.Set("type", filter.Type)
	}
	if filter.ActiveOnly {
		query.Set("active", "true")
	}

	req, err := client.newRequest(http.MethodGet, "/api/v1/accounts?"+query.Encode(), nil)
	if err != nil {
		return nil, err
	}

	status, body, err := client.do(req)
	if err != nil {
		return nil, err
	}
	if status != http.StatusOK {
		return nil, fmt.Errorf("listing accounts failed (status %d): %s", status, string(body))
	}

	var resp dto.ListAccountsResponse
	if err := json.Unmarshal(body, &resp); err != nil {
		return nil, fmt.Errorf("failed to parse response: %w", err)
	}
	return &resp, nil
}

func printAccounts(out io.Writer, resp *dto.ListAccountsResponse) {
	fmt.Fprintf(out, "%-28s %-36s %-10s %s\n", "ID", "ACCOUNT", "TYPE", "ACTIVE")
	for _, a := range resp.Accounts {
		fmt.Fprintf(out, "%-28s %-36s %-10s %t\n", truncate(a.ID, 28), truncate(a.DisplayName, 36), a.Type, a.Active)
	}
	fmt.Fprintf(out, "%d of %d accounts\n", len(resp.Accounts), resp.Total)
}
