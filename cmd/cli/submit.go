package main

import (
	"bytes"
	"encoding/json"
	"fmt"
	"io"
	"net/http"

	"github.com/google/uuid"
	"github.com/spf13/cobra"

	"github.com/iho/gobooks/internal/adapter/http/dto"
	"github.com/iho/gobooks/internal/adapter/http/middleware"
)

var submitPaths = map[string]string{
	"transaction": "/api/v1/transactions",
	"invoice":     "/api/v1/invoices",
	"budget":      "/api/v1/budgets",
}

func submitCmd() *cobra.Command {
	var (
		file           string
		idempotencyKey string
	)

	cmd := &cobra.Command{
		Use:       "submit {transaction|invoice|budget}",
		Short:     "Submit a document to the API",
		Args:      cobra.MatchAll(cobra.ExactArgs(1), cobra.OnlyValidArgs),
		ValidArgs: []string{"transaction", "invoice", "budget"},
		RunE: func(cmd *cobra.Command, args []string) error {
			body, err := readDocument(file, cmd.InOrStdin())
			if err != nil {
				return err
			}

			if idempotencyKey == "" {
				idempotencyKey = uuid.NewString()
			}

			return submitDocument(cmd.OutOrStdout(), newAPIClient(), args[0], body, idempotencyKey)
		},
	}

	cmd.Flags().StringVarP(&file, "file", "f", "-", "Path to the JSON document, - for stdin")
	cmd.Flags().StringVar(&idempotencyKey, "idempotency-key", "", "Idempotency key; a random UUID when empty")

	return cmd
}

func submitDocument(out io.Writer, client *apiClient, kind string, body []byte, key string) error {
	path, ok := submitPaths[kind]
	if !ok {
		return fmt.Errorf("unknown document kind %q", kind)
	}
	if !json.Valid(body) {
		return fmt.Errorf("document is not valid JSON")
	}

	req, err := client.newRequest(http.MethodPost, path, bytes.NewReader(body))
	if err != nil {
		return err
	}
	req.Header.Set(middleware.IdempotencyKeyHeader, key)

	status, respBody, err := client.do(req)
	if err != nil {
		return err
	}

	if status >= http.StatusBadRequest {
		var apiErr dto.ErrorResponse
		if err := json.Unmarshal(respBody, &apiErr); err != nil || apiErr.Error == "" {
			return fmt.Errorf("submission failed (status %d): %s", status, string(respBody))
		}
		fmt.Fprintf(out, "Submission rejected: %s\n", apiErr.Message)
		for _, r := range apiErr.Reasons {
			fmt.Fprintf(out, "BLOCK %-24s %s\n", r.Code, r.Message)
		}
		return fmt.Errorf("submission failed with status %d", status)
	}

	fmt.Fprintf(out, "Submitted %s (idempotency key %s)\n", kind, key)
	var pretty bytes.Buffer
	if err := json.Indent(&pretty, respBody, "", "  "); err == nil {
		fmt.Fprintln(out, pretty.String())
	}
	return nil
}
