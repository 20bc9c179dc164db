package socket

import (
	"encoding/json"
	"fmt"
)

// Actions understood by the control socket
const (
	ActionStatus      = "status"
	ActionGetConfig   = "get_config"
	ActionSetConfig   = "set_config"
	ActionRefresh     = "refresh"
	ActionGetSnapshot = "get_snapshot"
	ActionGetNames    = "get_names"
	ActionGetHistory  = "get_history"
)

// Command is one request sent over the socket
type Command struct {
	Action string                 `json:"action"`
	Data   map[string]interface{} `json:"data,omitempty"`
}

// Response answers a Command
type Response struct {
	Success bool                   `json:"success"`
	Message string                 `json:"message,omitempty"`
	Data    map[string]interface{} `json:"data,omitempty"`
	Error   string                 `json:"error,omitempty"`
}

// Fail builds an unsuccessful response
func Fail(format string, args ...interface{}) Response {
	return Response{Success: false, Error: fmt.Sprintf(format, args...)}
}

// DecodeData converts the loosely typed response data into v
func (r *Response) DecodeData(v interface{}) error {
	raw, err := json.Marshal(r.Data)
	if err != nil {
		return fmt.Errorf("failed to re-encode response data: %w", err)
	}
	if err := json.Unmarshal(raw, v); err != nil {
		return fmt.Errorf("failed to decode response data: %w", err)
	}
	return nil
}

// String returns the string value of key in cmd data
func (c Command) String(key string) (string, bool) {
	v, ok := c.Data[key].(string)
	return v, ok
}

// Int returns the integer value of key in cmd data, or def when absent
func (c Command) Int(key string, def int) int {
	switch v := c.Data[key].(type) {
	case float64:
		return int(v)
	case int:
		return v
	default:
		return def
	}
}
