package sheets

import (
	"context"
	"sync"

	"github.com/Relton66/budgetapp/internal/model"
)

// MockWriter is a mock implementation of ReportWriter for testing.
type MockWriter struct {
	WriteFunc      func(ctx context.Context, report *model.BudgetReport) error
	LastReport     *model.BudgetReport
	WriteCallCount int
	mu             sync.Mutex
}

// NewMockWriter creates a new mock writer.
func NewMockWriter() *MockWriter {
	return &MockWriter{}
}

// WriteBudgetReport implements the ReportWriter interface.
func (m *MockWriter) WriteBudgetReport(ctx context.Context, report *model.BudgetReport) error {
	m.mu.Lock()
	defer m.mu.Unlock()

	m.WriteCallCount++
	m.LastReport = report

	if m.WriteFunc != nil {
		return m.WriteFunc(ctx, report)
	}
	return nil
}
