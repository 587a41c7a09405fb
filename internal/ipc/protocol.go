package ipc

import (
	"encoding/json"
	"fmt"

	"github.com/1broseidon/winsettle/internal/daemon"
	"github.com/1broseidon/winsettle/internal/store"
)

// CommandType represents different IPC command types
type CommandType string

const (
	CommandReload         CommandType = "RELOAD"
	CommandGetStatus      CommandType = "GET_STATUS"
	CommandListGeometry   CommandType = "LIST_GEOMETRY"
	CommandForgetGeometry CommandType = "FORGET_GEOMETRY"
)

// Request represents an IPC request from client to server
type Request struct {
	Command CommandType     `json:"command"`
	Payload json.RawMessage `json:"payload,omitempty"`
}

// Response represents an IPC response from server to client
type Response struct {
	Status string          `json:"status"` // "OK" or "ERROR"
	Data   json.RawMessage `json:"data,omitempty"`
	Error  string          `json:"error,omitempty"`
}

// StatusData represents the data returned by GET_STATUS
type StatusData struct {
	DaemonRunning bool                   `json:"daemon_running"`
	UptimeSeconds int64                  `json:"uptime_seconds"`
	QuietPeriodMS int64                  `json:"quiet_period_ms"`
	StoreFile     string                 `json:"store_file"`
	StoredCount   int                    `json:"stored_count"`
	Tracked       []daemon.TrackedWindow `json:"tracked"`
}

// GeometryData represents the data returned by LIST_GEOMETRY
type GeometryData struct {
	Entries []store.Entry `json:"entries"`
}

// ForgetGeometryPayload represents the payload for FORGET_GEOMETRY
type ForgetGeometryPayload struct {
	Key string `json:"key"`
}

type ForgetGeometryData struct {
	Removed bool `json:"removed"`
}

// NewOKResponse creates a successful response with optional data
func NewOKResponse(data interface{}) (*Response, error) {
	var dataBytes json.RawMessage
	if data != nil {
		bytes, err := json.Marshal(data)
		if err != nil {
			return nil, fmt.Errorf("failed to marshal response data: %w", err)
		}
		dataBytes = bytes
	}

	return &Response{
		Status: "OK",
		Data:   dataBytes,
	}, nil
}

// NewErrorResponse creates an error response with a message
func NewErrorResponse(errMsg string) *Response {
	return &Response{
		Status: "ERROR",
		Error:  errMsg,
	}
}

// ParseRequest parses a request from JSON bytes
func ParseRequest(data []byte) (*Request, error) {
	var req Request
	if err := json.Unmarshal(data, &req); err != nil {
		return nil, fmt.Errorf("failed to parse request: %w", err)
	}
	return &req, nil
}

// Marshal converts a response to JSON bytes
func (r *Response) Marshal() ([]byte, error) {
	return json.Marshal(r)
}
