// Package tools exposes the expense ledger as MCP tools.
//
// Each tool follows the same pattern:
//   - a struct holding the ExpenseService it calls
//   - Definition() returns the mcp.Tool schema advertised to clients
//   - Handle() validates arguments, calls the service and returns its text verbatim
//
// Storage failures are returned as tool error results carrying the raw error
// text; the protocol-level error is reserved for the framework.
package tools

import (
	"context"
	"time"

	"github.com/mark3labs/mcp-go/mcp"
	"github.com/mark3labs/mcp-go/server"

	"expensemcp/internal/log"
	"expensemcp/internal/middleware/trace"
)

// ServerName is advertised to MCP clients during initialization.
const ServerName = "Remote Expense Tracker"

// Tool names.
const (
	AddExpenseTool   = "add_expense"
	ListExpensesTool = "list_expenses"
)

// ExpenseService is the subset of services.ExpenseService the tools call.
type ExpenseService interface {
	AddExpense(ctx context.Context, category string, amount float64, description string) (string, error)
	ListExpenses(ctx context.Context) (string, error)
}

// Tool is one registered MCP tool.
type Tool interface {
	Definition() mcp.Tool
	Handle(ctx context.Context, req mcp.CallToolRequest) (*mcp.CallToolResult, error)
}

// NewServer builds an MCP server with both expense tools registered.
func NewServer(svc ExpenseService, version string, logger *log.Logger) *server.MCPServer {
	s := server.NewMCPServer(
		ServerName,
		version,
		server.WithToolCapabilities(false),
		server.WithRecovery(),
	)
	RegisterTools(s, svc, logger)
	return s
}

// RegisterTools adds add_expense and list_expenses to s.
func RegisterTools(s *server.MCPServer, svc ExpenseService, logger *log.Logger) {
	if logger == nil {
		logger = log.FromContext(context.Background())
	}
	logger = logger.WithComponent(log.ComponentTools)

	for _, t := range []Tool{
		&AddExpense{svc: svc},
		&ListExpenses{svc: svc},
	} {
		s.AddTool(t.Definition(), withLogging(t.Definition().Name, logger, t.Handle))
	}
}

// withLogging records every invocation with its outcome and duration.
func withLogging(name string, logger *log.Logger, next server.ToolHandlerFunc) server.ToolHandlerFunc {
	return func(ctx context.Context, req mcp.CallToolRequest) (*mcp.CallToolResult, error) {
		start := time.Now()
		result, err := next(ctx, req)

		failed := err != nil || (result != nil && result.IsError)
		fields := log.NewFields().
			WithTool(name).
			WithRequestID(trace.GetRequestID(ctx)).
			WithError(err)
		fields[log.FieldSuccess] = !failed
		fields[log.FieldDuration] = time.Since(start).Milliseconds()

		if failed {
			logger.WarnContext(ctx, "Tool call failed", fields.ToSlice()...)
		} else {
			logger.InfoContext(ctx, "Tool call completed", fields.ToSlice()...)
		}
		return result, err
	}
}
