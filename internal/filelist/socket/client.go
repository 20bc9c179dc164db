package socket

import (
	"encoding/base64"
	"encoding/json"
	"fmt"
	"net"
	"time"

	"github.com/dimasma0305/filelist/internal/filelist/database"
)

// Client talks to a running service over its control socket
type Client struct {
	socketPath string
	timeout    time.Duration
}

// NewClient creates a client for socketPath
func NewClient(socketPath string) *Client {
	return &Client{
		socketPath: socketPath,
		timeout:    30 * time.Second,
	}
}

// SetTimeout sets the connection timeout for the client
func (c *Client) SetTimeout(timeout time.Duration) {
	c.timeout = timeout
}

// SendCommand sends a command and returns the response
func (c *Client) SendCommand(action string, data map[string]interface{}) (*Response, error) {
	conn, err := net.DialTimeout("unix", c.socketPath, c.timeout)
	if err != nil {
		return nil, fmt.Errorf("failed to connect to socket %s: %w", c.socketPath, err)
	}
	defer func() { _ = conn.Close() }()

	_ = conn.SetDeadline(time.Now().Add(c.timeout))

	if err := json.NewEncoder(conn).Encode(Command{Action: action, Data: data}); err != nil {
		return nil, fmt.Errorf("failed to send command: %w", err)
	}

	var response Response
	if err := json.NewDecoder(conn).Decode(&response); err != nil {
		return nil, fmt.Errorf("failed to decode response: %w", err)
	}
	return &response, nil
}

func (c *Client) call(action string, data map[string]interface{}) (*Response, error) {
	resp, err := c.SendCommand(action, data)
	if err != nil {
		return nil, err
	}
	if !resp.Success {
		return resp, fmt.Errorf("%s failed: %s", action, resp.Error)
	}
	return resp, nil
}

// Status gets the service status
func (c *Client) Status() (*Response, error) {
	return c.call(ActionStatus, nil)
}

// GetConfig gets the current configuration
func (c *Client) GetConfig() (*Response, error) {
	return c.call(ActionGetConfig, nil)
}

// SetConfig writes one configuration field
func (c *Client) SetConfig(field, value string) (*Response, error) {
	return c.call(ActionSetConfig, map[string]interface{}{
		"field": field,
		"value": value,
	})
}

// Refresh asks for a manual refresh
func (c *Client) Refresh() (*Response, error) {
	return c.call(ActionRefresh, nil)
}

// Snapshot is the published payload as seen by a client
type Snapshot struct {
	Data      []byte    `json:"-"`
	Encoded   string    `json:"data"`
	Length    int       `json:"length"`
	Capacity  int       `json:"capacity"`
	Sequence  uint64    `json:"sequence"`
	Codec     string    `json:"codec"`
	UpdatedAt time.Time `json:"updated_at"`
}

// GetSnapshot fetches the compressed snapshot
func (c *Client) GetSnapshot() (*Snapshot, error) {
	resp, err := c.call(ActionGetSnapshot, nil)
	if err != nil {
		return nil, err
	}
	var snap Snapshot
	if err := resp.DecodeData(&snap); err != nil {
		return nil, err
	}
	snap.Data, err = base64.StdEncoding.DecodeString(snap.Encoded)
	if err != nil {
		return nil, fmt.Errorf("failed to decode snapshot data: %w", err)
	}
	return &snap, nil
}

// GetNames fetches the decoded list of published names
func (c *Client) GetNames() ([]string, error) {
	resp, err := c.call(ActionGetNames, nil)
	if err != nil {
		return nil, err
	}
	var data struct {
		Names []string `json:"names"`
	}
	if err := resp.DecodeData(&data); err != nil {
		return nil, err
	}
	return data.Names, nil
}

// GetHistory fetches up to limit recent refreshes, newest first
func (c *Client) GetHistory(limit int) ([]database.RefreshRecord, error) {
	resp, err := c.call(ActionGetHistory, map[string]interface{}{"limit": limit})
	if err != nil {
		return nil, err
	}
	var data struct {
		Refreshes []database.RefreshRecord `json:"refreshes"`
	}
	if err := resp.DecodeData(&data); err != nil {
		return nil, err
	}
	return data.Refreshes, nil
}

// IsRunning reports whether a service answers on the socket
func (c *Client) IsRunning() bool {
	resp, err := c.Status()
	return err == nil && resp.Success
}

// WaitForService waits for the service to answer
func (c *Client) WaitForService(maxWait time.Duration) error {
	deadline := time.Now().Add(maxWait)
	for time.Now().Before(deadline) {
		if c.IsRunning() {
			return nil
		}
		time.Sleep(200 * time.Millisecond)
	}
	return fmt.Errorf("service did not become available within %v", maxWait)
}
