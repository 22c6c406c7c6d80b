package sheets

import (
	"context"
	"fmt"
	"log/slog"
	"os"

	"golang.org/x/oauth2"
	"golang.org/x/oauth2/google"
	"google.golang.org/api/option"
	"google.golang.org/api/sheets/v4"

	"github.com/Relton66/budgetapp/internal/model"
)

// Writer implements the ReportWriter interface for Google Sheets.
type Writer struct {
	service *sheets.Service
	config  Config
}

// NewWriter creates a new Google Sheets report writer.
func NewWriter(ctx context.Context, config Config) (*Writer, error) {
	if err := config.Validate(); err != nil {
		return nil, fmt.Errorf("invalid config: %w", err)
	}
	config = config.withDefaults()

	service, err := createSheetsService(ctx, config)
	if err != nil {
		return nil, fmt.Errorf("failed to create sheets service: %w", err)
	}

	return &Writer{
		config:  config,
		service: service,
	}, nil
}

// WriteBudgetReport implements the ReportWriter interface. The report lands
// on three tabs: a budget summary, the category allocations, and the full
// ledger. Each tab is cleared and rewritten whole.
func (w *Writer) WriteBudgetReport(ctx context.Context, report *model.BudgetReport) error {
	slog.Info("Writing budget report",
		"budget", report.Budget.Name,
		"allocations", len(report.Allocations),
		"transactions", len(report.Transactions))

	tabs := map[string][][]any{
		"Summary":      summaryValues(report),
		"Allocations":  allocationValues(allocationRows(report)),
		"Transactions": transactionValues(transactionRows(report)),
	}

	for tab, values := range tabs {
		if err := w.writeTab(ctx, tab, values); err != nil {
			return fmt.Errorf("failed to write %s tab: %w", tab, err)
		}
	}

	return nil
}

func (w *Writer) writeTab(ctx context.Context, tab string, values [][]any) error {
	rangeName := fmt.Sprintf("%s!A1:Z", tab)

	if _, err := w.service.Spreadsheets.Values.
		Clear(w.config.SpreadsheetID, rangeName, &sheets.ClearValuesRequest{}).
		Context(ctx).Do(); err != nil {
		return fmt.Errorf("failed to clear range: %w", err)
	}

	_, err := w.service.Spreadsheets.Values.
		Update(w.config.SpreadsheetID, fmt.Sprintf("%s!A1", tab), &sheets.ValueRange{Values: values}).
		ValueInputOption("USER_ENTERED").
		Context(ctx).Do()
	if err != nil {
		return fmt.Errorf("failed to update range: %w", err)
	}

	return nil
}

func summaryValues(report *model.BudgetReport) [][]any {
	b := report.Budget
	return [][]any{
		{"Budget", "Start Date", "End Date", "Starting Balance", "Current Balance"},
		{
			b.Name,
			b.StartDate.Format("2006-01-02"),
			b.EndDate.Format("2006-01-02"),
			b.StartBalance.StringFixed(2),
			b.CurrentBalance.StringFixed(2),
		},
	}
}

func allocationValues(rows []AllocationRow) [][]any {
	values := [][]any{
		{"Category", "Allocated", "Remaining", "Spent"},
	}
	for _, row := range rows {
		values = append(values, []any{
			row.Category,
			row.StartBalance.StringFixed(2),
			row.CurrentBalance.StringFixed(2),
			row.Spent.StringFixed(2),
		})
	}
	return values
}

func transactionValues(rows []TransactionRow) [][]any {
	values := [][]any{
		{"Date", "Vendor", "Category", "Method", "Amount", "Type", "Recurring", "Comments"},
	}
	for _, row := range rows {
		entryType := "Expense"
		if row.Income {
			entryType = "Income"
		}
		recurring := ""
		if row.Recurring {
			recurring = "Yes"
		}
		values = append(values, []any{
			row.Date.Format("2006-01-02"),
			row.Vendor,
			row.Category,
			row.Method,
			row.Amount.StringFixed(2),
			entryType,
			recurring,
			row.Comments,
		})
	}
	return values
}

// createSheetsService creates a Google Sheets API service.
func createSheetsService(ctx context.Context, config Config) (*sheets.Service, error) {
	var tokenSource oauth2.TokenSource

	if config.ServiceAccountPath != "" {
		jsonKey, err := os.ReadFile(config.ServiceAccountPath)
		if err != nil {
			return nil, fmt.Errorf("unable to read service account key file: %w", err)
		}

		jwtConfig, err := google.JWTConfigFromJSON(jsonKey, sheets.SpreadsheetsScope)
		if err != nil {
			return nil, fmt.Errorf("unable to parse service account key: %w", err)
		}

		tokenSource = jwtConfig.TokenSource(ctx)
	} else {
		oauthConfig := &oauth2.Config{
			ClientID:     config.ClientID,
			ClientSecret: config.ClientSecret,
			Endpoint:     google.Endpoint,
			Scopes:       []string{sheets.SpreadsheetsScope},
		}
		tokenSource = oauthConfig.TokenSource(ctx, &oauth2.Token{RefreshToken: config.RefreshToken})
	}

	service, err := sheets.NewService(ctx, option.WithTokenSource(tokenSource))
	if err != nil {
		return nil, fmt.Errorf("unable to create sheets service: %w", err)
	}

	return service, nil
}
