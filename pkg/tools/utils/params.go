package utils

import (
	"math"

	"github.com/cockroachdb/errors"
	"github.com/mark3labs/mcp-go/mcp"
)

// ErrMissingParam and ErrParamType classify argument problems.
var (
	ErrMissingParam = errors.New("missing required parameter")
	ErrParamType    = errors.New("parameter has the wrong type")
)

func lookup(req mcp.CallToolRequest, key string) (any, bool) {
	val, exists := req.GetArguments()[key]
	if !exists || val == nil {
		return nil, false
	}
	return val, true
}

// GetStringParam safely extracts a string parameter from the request
func GetStringParam(req mcp.CallToolRequest, key string, required bool) (string, error) {
	val, exists := lookup(req, key)
	if !exists {
		if required {
			return "", errors.Wrapf(ErrMissingParam, "'%s'", key)
		}
		return "", nil
	}

	str, ok := val.(string)
	if !ok {
		return "", errors.Wrapf(ErrParamType, "'%s' must be a string", key)
	}

	if required && str == "" {
		return "", errors.Wrapf(ErrMissingParam, "'%s' must not be empty", key)
	}

	return str, nil
}

// GetFloat64Param safely extracts a float64 parameter from the request
func GetFloat64Param(req mcp.CallToolRequest, key string, required bool) (float64, error) {
	val, exists := lookup(req, key)
	if !exists {
		if required {
			return 0, errors.Wrapf(ErrMissingParam, "'%s'", key)
		}
		return 0, nil
	}

	switch f := val.(type) {
	case float64:
		return f, nil
	case int:
		return float64(f), nil
	case int64:
		return float64(f), nil
	default:
		return 0, errors.Wrapf(ErrParamType, "'%s' must be a number", key)
	}
}

// GetIntParam safely extracts an integer parameter sent as a JSON number
func GetIntParam(req mcp.CallToolRequest, key string, required bool) (int, error) {
	f, err := GetFloat64Param(req, key, required)
	if err != nil {
		return 0, err
	}

	if f != math.Trunc(f) {
		return 0, errors.Wrapf(ErrParamType, "'%s' must be a whole number", key)
	}

	return int(f), nil
}

// GetBoolParam safely extracts a bool parameter from the request
func GetBoolParam(req mcp.CallToolRequest, key string, required bool) (bool, error) {
	val, exists := lookup(req, key)
	if !exists {
		if required {
			return false, errors.Wrapf(ErrMissingParam, "'%s'", key)
		}
		return false, nil
	}

	b, ok := val.(bool)
	if !ok {
		return false, errors.Wrapf(ErrParamType, "'%s' must be a boolean", key)
	}

	return b, nil
}

// HasParam reports whether the caller supplied a non-null value for key.
func HasParam(req mcp.CallToolRequest, key string) bool {
	_, exists := lookup(req, key)
	return exists
}

// HandleParameterError returns a properly formatted error response for parameter validation errors
func HandleParameterError(err error) *mcp.CallToolResult {
	return mcp.NewToolResultError("Invalid input: " + err.Error())
}
