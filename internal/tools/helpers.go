package tools

import (
	"fmt"
	"math"
	"strconv"
	"strings"

	"github.com/mark3labs/mcp-go/mcp"
)

// stringArg extracts a required string argument. Empty strings are valid values.
func stringArg(req mcp.CallToolRequest, key string) (string, error) {
	v, ok := req.GetArguments()[key]
	if !ok || v == nil {
		return "", fmt.Errorf("missing required argument %q", key)
	}
	s, ok := v.(string)
	if !ok {
		return "", fmt.Errorf("argument %q must be a string", key)
	}
	return s, nil
}

// numberArg extracts a required number argument. JSON numbers arrive as
// float64; numeric strings are accepted the way schema-coercing clients send them.
func numberArg(req mcp.CallToolRequest, key string) (float64, error) {
	v, ok := req.GetArguments()[key]
	if !ok || v == nil {
		return 0, fmt.Errorf("missing required argument %q", key)
	}

	var f float64
	switch n := v.(type) {
	case float64:
		f = n
	case int:
		f = float64(n)
	case int64:
		f = float64(n)
	case string:
		parsed, err := strconv.ParseFloat(strings.TrimSpace(n), 64)
		if err != nil {
			return 0, fmt.Errorf("argument %q must be a number", key)
		}
		f = parsed
	default:
		return 0, fmt.Errorf("argument %q must be a number", key)
	}

	if math.IsNaN(f) || math.IsInf(f, 0) {
		return 0, fmt.Errorf("argument %q must be a finite number", key)
	}
	return f, nil
}
