package ipc

import (
	"bufio"
	"encoding/json"
	"fmt"
	"net"
	"time"

	"github.com/1broseidon/winsettle/internal/runtimepath"
	"github.com/1broseidon/winsettle/internal/store"
)

// Client handles IPC communication with the daemon
type Client struct {
	socketPath string
	timeout    time.Duration
}

// NewClient creates a new IPC client
func NewClient() *Client {
	socketPath, err := runtimepath.SocketPath()
	if err != nil {
		// Keep constructor non-failing; sendRequest surfaces connection errors.
		socketPath = ""
	}

	return &Client{
		socketPath: socketPath,
		timeout:    5 * time.Second,
	}
}

// sendRequest sends a request and waits for a response
func (c *Client) sendRequest(req *Request) (*Response, error) {
	conn, err := net.DialTimeout("unix", c.socketPath, c.timeout)
	if err != nil {
		return nil, fmt.Errorf("failed to connect to daemon: %w (is the daemon running?)", err)
	}
	defer conn.Close()

	conn.SetDeadline(time.Now().Add(c.timeout))

	reqData, err := json.Marshal(req)
	if err != nil {
		return nil, fmt.Errorf("failed to marshal request: %w", err)
	}

	reqData = append(reqData, '\n')
	if _, err := conn.Write(reqData); err != nil {
		return nil, fmt.Errorf("failed to send request: %w", err)
	}

	reader := bufio.NewReader(conn)
	respData, err := reader.ReadBytes('\n')
	if err != nil {
		return nil, fmt.Errorf("failed to read response: %w", err)
	}

	var resp Response
	if err := json.Unmarshal(respData, &resp); err != nil {
		return nil, fmt.Errorf("failed to parse response: %w", err)
	}

	if resp.Status == "ERROR" {
		return nil, fmt.Errorf("daemon error: %s", resp.Error)
	}

	return &resp, nil
}

// Reload sends a RELOAD command to the daemon
func (c *Client) Reload() error {
	req := &Request{
		Command: CommandReload,
	}

	_, err := c.sendRequest(req)
	return err
}

// GetStatus retrieves daemon status
func (c *Client) GetStatus() (*StatusData, error) {
	req := &Request{
		Command: CommandGetStatus,
	}

	resp, err := c.sendRequest(req)
	if err != nil {
		return nil, err
	}

	var status StatusData
	if err := json.Unmarshal(resp.Data, &status); err != nil {
		return nil, fmt.Errorf("failed to parse status data: %w", err)
	}

	return &status, nil
}

// ListGeometry retrieves every stored window geometry.
func (c *Client) ListGeometry() ([]store.Entry, error) {
	req := &Request{
		Command: CommandListGeometry,
	}

	resp, err := c.sendRequest(req)
	if err != nil {
		return nil, err
	}

	var data GeometryData
	if err := json.Unmarshal(resp.Data, &data); err != nil {
		return nil, fmt.Errorf("failed to parse geometry data: %w", err)
	}

	return data.Entries, nil
}

// ForgetGeometry deletes the stored geometry for key. It reports whether an
// entry existed.
func (c *Client) ForgetGeometry(key string) (bool, error) {
	payload, err := json.Marshal(ForgetGeometryPayload{Key: key})
	if err != nil {
		return false, fmt.Errorf("failed to marshal payload: %w", err)
	}

	req := &Request{
		Command: CommandForgetGeometry,
		Payload: payload,
	}

	resp, err := c.sendRequest(req)
	if err != nil {
		return false, err
	}

	var data ForgetGeometryData
	if err := json.Unmarshal(resp.Data, &data); err != nil {
		return false, fmt.Errorf("failed to parse forget data: %w", err)
	}

	return data.Removed, nil
}
