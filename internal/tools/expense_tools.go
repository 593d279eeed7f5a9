package tools

import (
	"context"

	"github.com/mark3labs/mcp-go/mcp"
)

// AddExpense records one expense.
type AddExpense struct {
	svc ExpenseService
}

func (t *AddExpense) Definition() mcp.Tool {
	return mcp.NewTool(AddExpenseTool,
		mcp.WithDescription("Add a new expense to the tracker."),
		mcp.WithString("category",
			mcp.Required(),
			mcp.Description("The category of expense (e.g., Food, Travel, Tech)"),
		),
		mcp.WithNumber("amount",
			mcp.Required(),
			mcp.Description("The cost of the item."),
		),
		mcp.WithString("description",
			mcp.Required(),
			mcp.Description("A brief description of what was bought."),
		),
	)
}

func (t *AddExpense) Handle(ctx context.Context, req mcp.CallToolRequest) (*mcp.CallToolResult, error) {
	category, err := stringArg(req, "category")
	if err != nil {
		return mcp.NewToolResultError(err.Error()), nil
	}
	amount, err := numberArg(req, "amount")
	if err != nil {
		return mcp.NewToolResultError(err.Error()), nil
	}
	description, err := stringArg(req, "description")
	if err != nil {
		return mcp.NewToolResultError(err.Error()), nil
	}

	text, err := t.svc.AddExpense(ctx, category, amount, description)
	if err != nil {
		return mcp.NewToolResultError(err.Error()), nil
	}
	return mcp.NewToolResultText(text), nil
}

// ListExpenses renders every recorded expense.
type ListExpenses struct {
	svc ExpenseService
}

func (t *ListExpenses) Definition() mcp.Tool {
	return mcp.NewTool(ListExpensesTool,
		mcp.WithDescription("List all recorded expenses."),
	)
}

func (t *ListExpenses) Handle(ctx context.Context, _ mcp.CallToolRequest) (*mcp.CallToolResult, error) {
	text, err := t.svc.ListExpenses(ctx)
	if err != nil {
		return mcp.NewToolResultError(err.Error()), nil
	}
	return mcp.NewToolResultText(text), nil
}
