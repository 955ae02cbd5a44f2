package source

import (
	"context"
	"fmt"

	"MarketTerminal/internal/model"
)

// MockBaseline returns canned quotes for testing without network calls.
type MockBaseline struct {
	Quotes map[string]model.Quote
	Err    error
	// FailSymbols lists symbols that should error individually.
	FailSymbols map[string]bool
}

func (m *MockBaseline) Name() string { return "mock-baseline" }

func (m *MockBaseline) FetchQuote(_ context.Context, symbol string) (model.Quote, error) {
	if m.Err != nil {
		return model.Quote{}, m.Err
	}
	if m.FailSymbols[symbol] {
		return model.Quote{}, fmt.Errorf("mock: %s unavailable", symbol)
	}
	q, ok := m.Quotes[symbol]
	if !ok {
		return model.Quote{}, fmt.Errorf("mock: no quote for %s", symbol)
	}
	return q, nil
}

// MockOverlay returns canned overlay data for testing.
type MockOverlay struct {
	SourceName string
	Configured bool
	IsReady    bool
	Indices    map[string]model.Quote
	Stocks     map[string]model.Quote
	Err        error
}

func (m *MockOverlay) Name() string       { return m.SourceName }
func (m *MockOverlay) IsConfigured() bool { return m.Configured }
func (m *MockOverlay) Ready() bool        { return m.IsReady }

func (m *MockOverlay) FetchAll(context.Context) (map[string]model.Quote, map[string]model.Quote, error) {
	if m.Err != nil {
		return nil, nil, m.Err
	}
	return m.Indices, m.Stocks, nil
}

// MockVerifier returns canned verification quotes for testing.
type MockVerifier struct {
	Quotes map[string]model.Quote
}

func (m *MockVerifier) Name() string { return "mock-verifier" }

func (m *MockVerifier) FetchQuote(_ context.Context, symbol string) (model.Quote, error) {
	q, ok := m.Quotes[symbol]
	if !ok {
		return model.Quote{}, fmt.Errorf("mock: no quote for %s", symbol)
	}
	return q, nil
}
