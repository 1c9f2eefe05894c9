package main

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"os"

	"github.com/spf13/cobra"

	"github.com/iho/gobooks/internal/adapter/http/dto"
	"github.com/iho/gobooks/internal/domain"
	"github.com/iho/gobooks/internal/infrastructure/config"
	"github.com/iho/gobooks/internal/usecase"
)

var errBlocked = errors.New("document cannot be submitted")

// offlineAccounts resolves accounts from a local chart of accounts.
// A nil map accepts every id as an active account.
type offlineAccounts map[string]*domain.Account

func (a offlineAccounts) Lookup(_ context.Context, id string) (*domain.Account, error) {
	if a == nil {
		return &domain.Account{ID: id, Name: id, Active: true}, nil
	}
	account, ok := a[id]
	if !ok {
		return nil, domain.ErrAccountNotFound
	}
	return account, nil
}

func loadAccounts(path string) (offlineAccounts, error) {
	if path == "" {
		return nil, nil
	}

	data, err := os.ReadFile(path)
	if err != nil {
		return nil, err
	}

	var accounts []dto.AccountResponse
	if err := json.Unmarshal(data, &accounts); err != nil {
		return nil, fmt.Errorf("failed to parse accounts file: %w", err)
	}

	result := make(offlineAccounts, len(accounts))
	for _, a := range accounts {
		result[a.ID] = &domain.Account{
			ID:     a.ID,
			Code:   a.Code,
			Name:   a.Name,
			Type:   domain.AccountType(a.Type),
			Active: a.Active,
		}
	}
	return result, nil
}

func checkCmd() *cobra.Command {
	var (
		file         string
		accountsFile string
		taxRate      string
	)

	cmd := &cobra.Command{
		Use:       "check {transaction|invoice|budget}",
		Short:     "Validate a document locally without submitting it",
		Args:      cobra.MatchAll(cobra.ExactArgs(1), cobra.OnlyValidArgs),
		ValidArgs: []string{"transaction", "invoice", "budget"},
		RunE: func(cmd *cobra.Command, args []string) error {
			body, err := readDocument(file, cmd.InOrStdin())
			if err != nil {
				return err
			}

			accounts, err := loadAccounts(accountsFile)
			if err != nil {
				return err
			}

			if taxRate == "" {
				taxRate = defaultTaxRate()
			}

			return runCheck(cmd.Context(), cmd.OutOrStdout(), args[0], body, domain.NewGate(accounts, nil), taxRate)
		},
	}

	cmd.Flags().StringVarP(&file, "file", "f", "-", "Path to the JSON document, - for stdin")
	cmd.Flags().StringVar(&accountsFile, "accounts", "", "JSON chart of accounts; every account is accepted when empty")
	cmd.Flags().StringVar(&taxRate, "default-tax-rate", "", "Tax rate applied to invoices without one")

	return cmd
}

// defaultTaxRate reads the server default so local checks agree with it.
func defaultTaxRate() string {
	cfg, err := config.Load()
	if err != nil {
		return "0"
	}
	return cfg.DefaultTaxRate
}

func runCheck(ctx context.Context, out io.Writer, kind string, body []byte, gate *domain.Gate, taxRate string) error {
	var decision domain.Decision

	switch kind {
	case "transaction":
		var req dto.TransactionRequest
		if err := json.Unmarshal(body, &req); err != nil {
			return fmt.Errorf("invalid transaction document: %w", err)
		}
		doc, err := req.ToDocument()
		if err != nil {
			return err
		}

		var balance domain.Balance
		balance, decision = usecase.NewTransactionUseCase(gate, nil, nil, nil).Preview(ctx, doc)

		fmt.Fprintf(out, "Debits:     %s\n", formatMoney(balance.TotalDebit))
		fmt.Fprintf(out, "Credits:    %s\n", formatMoney(balance.TotalCredit))
		fmt.Fprintf(out, "Difference: %s\n", formatMoney(balance.Difference))
		fmt.Fprintf(out, "State:      %s\n", balance.State())

	case "invoice":
		var req dto.InvoiceRequest
		if err := json.Unmarshal(body, &req); err != nil {
			return fmt.Errorf("invalid invoice document: %w", err)
		}
		doc, err := req.ToDocument()
		if err != nil {
			return err
		}

		uc := usecase.NewInvoiceUseCase(gate, nil, nil, nil, domain.ParseTaxRate(taxRate).Value())
		var totals domain.InvoiceTotals
		totals, decision = uc.Preview(ctx, doc)

		fmt.Fprintf(out, "Subtotal: %s\n", formatMoney(totals.Subtotal))
		fmt.Fprintf(out, "Tax:      %s\n", formatMoney(totals.TaxAmount))
		fmt.Fprintf(out, "Total:    %s\n", formatMoney(totals.TotalAmount))

	case "budget":
		var req dto.BudgetRequest
		if err := json.Unmarshal(body, &req); err != nil {
			return fmt.Errorf("invalid budget document: %w", err)
		}
		doc, err := req.ToDocument()
		if err != nil {
			return err
		}

		decision = usecase.NewBudgetUseCase(gate, nil, nil, nil).Preview(doc)
		fmt.Fprintf(out, "Budget: %s\n", formatMoney(doc.TotalAmount.Value()))

	default:
		return fmt.Errorf("unknown document kind %q", kind)
	}

	printDecision(out, decision)
	if !decision.CanSubmit {
		return errBlocked
	}
	return nil
}

func printDecision(out io.Writer, d domain.Decision) {
	for _, r := range d.Reasons {
		fmt.Fprintf(out, "BLOCK %-24s %s\n", r.Code, r.Message)
	}
	for _, w := range d.Warnings {
		fmt.Fprintf(out, "WARN  %-24s %s\n", w.Code, w.Message)
	}
	if d.CanSubmit {
		fmt.Fprintln(out, "Ready to submit")
	}
}

func readDocument(path string, stdin io.Reader) ([]byte, error) {
	if path == "" || path == "-" {
		return io.ReadAll(stdin)
	}
	return os.ReadFile(path)
}
