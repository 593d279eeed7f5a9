package tools

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"log/slog"
	"strings"
	"testing"

	"github.com/mark3labs/mcp-go/mcp"

	"expensemcp/internal/core"
	"expensemcp/internal/ledger/memory"
	"expensemcp/internal/log"
	"expensemcp/internal/middleware/trace"
	"expensemcp/internal/services"
)

type failingService struct{}

func (failingService) AddExpense(context.Context, string, float64, string) (string, error) {
	return "", fmt.Errorf("add expense: insert expense: %w: %w", core.ErrStorageUnavailable, errors.New("disk I/O error"))
}

func (failingService) ListExpenses(context.Context) (string, error) {
	return "", fmt.Errorf("list expenses: %w: %w", core.ErrStorageUnavailable, errors.New("disk I/O error"))
}

func newRequest(name string, args map[string]any) mcp.CallToolRequest {
	req := mcp.CallToolRequest{}
	req.Params.Name = name
	req.Params.Arguments = args
	return req
}

func resultText(t *testing.T, res *mcp.CallToolResult) string {
	t.Helper()
	if res == nil || len(res.Content) != 1 {
		t.Fatalf("unexpected result: %+v", res)
	}
	text, ok := res.Content[0].(mcp.TextContent)
	if !ok {
		t.Fatalf("expected text content, got %T", res.Content[0])
	}
	return text.Text
}

func TestAddAndListTools(t *testing.T) {
	svc := services.NewExpenseService(memory.New(), nil, nil)
	add := &AddExpense{svc: svc}
	list := &ListExpenses{svc: svc}
	ctx := context.Background()

	res, err := list.Handle(ctx, newRequest(ListExpensesTool, nil))
	if err != nil {
		t.Fatalf("list: %v", err)
	}
	if got := resultText(t, res); got != "No expenses recorded yet." {
		t.Fatalf("empty list = %q", got)
	}

	res, err = add.Handle(ctx, newRequest(AddExpenseTool, map[string]any{
		"category":    "Travel",
		"amount":      float64(200),
		"description": "Flight",
	}))
	if err != nil || res.IsError {
		t.Fatalf("add: res=%+v err=%v", res, err)
	}
	if got := resultText(t, res); got != "Expense added: Flight ($200) in Travel" {
		t.Fatalf("add = %q", got)
	}

	res, _ = add.Handle(ctx, newRequest(AddExpenseTool, map[string]any{
		"category":    "Food",
		"amount":      12.5,
		"description": "Lunch",
	}))
	if res.IsError {
		t.Fatalf("add failed: %q", resultText(t, res))
	}

	res, _ = list.Handle(ctx, newRequest(ListExpensesTool, nil))
	want := "Expense Report:\n1. Travel - $200: Flight\n2. Food - $12.5: Lunch\n"
	if got := resultText(t, res); got != want {
		t.Fatalf("list = %q, want %q", got, want)
	}
}

func TestAddExpenseArgumentErrors(t *testing.T) {
	add := &AddExpense{svc: services.NewExpenseService(memory.New(), nil, nil)}

	tests := []struct {
		name string
		args map[string]any
		want string
	}{
		{"no arguments", nil, `missing required argument "category"`},
		{"missing amount", map[string]any{"category": "Food", "description": "x"}, `missing required argument "amount"`},
		{"missing description", map[string]any{"category": "Food", "amount": 1.0}, `missing required argument "description"`},
		{"category not a string", map[string]any{"category": 5.0, "amount": 1.0, "description": "x"}, `argument "category" must be a string`},
		{"amount not a number", map[string]any{"category": "Food", "amount": "lots", "description": "x"}, `argument "amount" must be a number`},
		{"amount is a bool", map[string]any{"category": "Food", "amount": true, "description": "x"}, `argument "amount" must be a number`},
		{"amount is NaN", map[string]any{"category": "Food", "amount": "NaN", "description": "x"}, `argument "amount" must be a finite number`},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			res, err := add.Handle(context.Background(), newRequest(AddExpenseTool, tt.args))
			if err != nil {
				t.Fatalf("protocol error: %v", err)
			}
			if !res.IsError {
				t.Fatalf("expected tool error result, got %q", resultText(t, res))
			}
			if got := resultText(t, res); got != tt.want {
				t.Fatalf("error text = %q, want %q", got, tt.want)
			}
		})
	}
}

func TestAddExpenseAcceptsNumericStrings(t *testing.T) {
	add := &AddExpense{svc: services.NewExpenseService(memory.New(), nil, nil)}
	res, _ := add.Handle(context.Background(), newRequest(AddExpenseTool, map[string]any{
		"category":    "Tech",
		"amount":      " -3.5 ",
		"description": "Cable",
	}))
	if res.IsError {
		t.Fatalf("unexpected error: %q", resultText(t, res))
	}
	if got := resultText(t, res); got != "Expense added: Cable ($-3.5) in Tech" {
		t.Fatalf("add = %q", got)
	}
}

func TestStorageFailureSurfacesRawError(t *testing.T) {
	add := &AddExpense{svc: failingService{}}
	list := &ListExpenses{svc: failingService{}}
	ctx := context.Background()

	res, err := add.Handle(ctx, newRequest(AddExpenseTool, map[string]any{
		"category": "Food", "amount": 1.0, "description": "x",
	}))
	if err != nil || !res.IsError {
		t.Fatalf("expected tool error result, res=%+v err=%v", res, err)
	}
	if got := resultText(t, res); !strings.Contains(got, "storage unavailable") || !strings.Contains(got, "disk I/O error") {
		t.Fatalf("error text = %q", got)
	}

	res, err = list.Handle(ctx, newRequest(ListExpensesTool, nil))
	if err != nil || !res.IsError {
		t.Fatalf("expected tool error result, res=%+v err=%v", res, err)
	}
}

func TestServerAdvertisesAndDispatchesTools(t *testing.T) {
	svc := services.NewExpenseService(memory.New(), nil, nil)
	s := NewServer(svc, "test", nil)
	ctx := context.Background()

	send := func(msg string) string {
		t.Helper()
		resp := s.HandleMessage(ctx, json.RawMessage(msg))
		out, err := json.Marshal(resp)
		if err != nil {
			t.Fatalf("marshal response: %v", err)
		}
		return string(out)
	}

	initResp := send(`{"jsonrpc":"2.0","id":1,"method":"initialize","params":{"protocolVersion":"2024-11-05","capabilities":{},"clientInfo":{"name":"test","version":"1"}}}`)
	if !strings.Contains(initResp, ServerName) {
		t.Fatalf("initialize response missing server name: %s", initResp)
	}

	listResp := send(`{"jsonrpc":"2.0","id":2,"method":"tools/list"}`)
	for _, name := range []string{AddExpenseTool, ListExpensesTool, `"category"`, `"amount"`, `"description"`} {
		if !strings.Contains(listResp, name) {
			t.Fatalf("tools/list response missing %s: %s", name, listResp)
		}
	}

	callResp := send(`{"jsonrpc":"2.0","id":3,"method":"tools/call","params":{"name":"add_expense","arguments":{"category":"Travel","amount":200,"description":"Flight"}}}`)
	if !strings.Contains(callResp, "Expense added: Flight ($200) in Travel") {
		t.Fatalf("tools/call response: %s", callResp)
	}

	reportResp := send(`{"jsonrpc":"2.0","id":4,"method":"tools/call","params":{"name":"list_expenses","arguments":{}}}`)
	if !strings.Contains(reportResp, `Expense Report:\n1. Travel - $200: Flight\n`) {
		t.Fatalf("list_expenses response: %s", reportResp)
	}
}

func TestWithLoggingRecordsRequestID(t *testing.T) {
	var buf bytes.Buffer
	logger := log.New(log.Config{Level: slog.LevelDebug, Component: log.ComponentTools, Output: &buf})

	list := &ListExpenses{svc: services.NewExpenseService(memory.New(), nil, nil)}
	handler := withLogging(ListExpensesTool, logger, list.Handle)

	ctx := context.WithValue(context.Background(), trace.RequestIDKey, "req-abc")
	if _, err := handler(ctx, newRequest(ListExpensesTool, nil)); err != nil {
		t.Fatalf("handler: %v", err)
	}

	out := buf.String()
	for _, want := range []string{"Tool call completed", "tool=list_expenses", "request_id=req-abc", "component=tools"} {
		if !strings.Contains(out, want) {
			t.Errorf("missing %q in %q", want, out)
		}
	}
}
