package socketrpc

import (
	"bufio"
	"encoding/json"
	"fmt"
	"net"
	"sync"
	"time"

	"github.com/mobilityiq/mobilityiq/internal/model"
	"github.com/mobilityiq/mobilityiq/internal/session"
)

var _ model.PlannerAPI = (*Client)(nil)

// Client implements model.PlannerAPI over a Unix domain socket using JSON-RPC 2.0.
type Client struct {
	conn    net.Conn
	mu      sync.Mutex
	nextID  int
	scanner *bufio.Scanner
	encoder *json.Encoder
}

// Dial connects to the socket RPC server at the given path.
func Dial(socketPath string) (*Client, error) {
	conn, err := net.DialTimeout("unix", socketPath, 5*time.Second)
	if err != nil {
		return nil, fmt.Errorf("socketrpc: dial: %w", err)
	}
	scanner := bufio.NewScanner(conn)
	scanner.Buffer(make([]byte, 0, scannerInitBufSize), scannerMaxTokenSize)
	return &Client{
		conn:    conn,
		scanner: scanner,
		encoder: json.NewEncoder(conn),
	}, nil
}

// Close closes the underlying connection.
func (c *Client) Close() error {
	return c.conn.Close()
}

// call performs a JSON-RPC call and unmarshals the result into dest.
func (c *Client) call(method string, params any, dest any) error {
	c.mu.Lock()
	defer c.mu.Unlock()

	c.nextID++
	id := c.nextID

	var paramsData json.RawMessage
	if params != nil {
		data, err := json.Marshal(params)
		if err != nil {
			return fmt.Errorf("socketrpc: marshal params: %w", err)
		}
		paramsData = data
	}

	req := Request{
		JSONRPC: "2.0",
		ID:      id,
		Method:  method,
		Params:  paramsData,
	}

	c.conn.SetDeadline(time.Now().Add(30 * time.Second))
	defer c.conn.SetDeadline(time.Time{})

	if err := c.encoder.Encode(req); err != nil {
		return fmt.Errorf("socketrpc: send: %w", err)
	}

	if !c.scanner.Scan() {
		if err := c.scanner.Err(); err != nil {
			return fmt.Errorf("socketrpc: read: %w", err)
		}
		return fmt.Errorf("socketrpc: connection closed")
	}

	var resp Response
	if err := json.Unmarshal(c.scanner.Bytes(), &resp); err != nil {
		return fmt.Errorf("socketrpc: unmarshal response: %w", err)
	}
	if resp.ID != id && resp.Error == nil {
		return fmt.Errorf("socketrpc: response id %d, want %d", resp.ID, id)
	}
	if resp.Error != nil {
		return resp.Error
	}

	if dest != nil {
		if err := json.Unmarshal(resp.Result, dest); err != nil {
			return fmt.Errorf("socketrpc: unmarshal result: %w", err)
		}
	}
	return nil
}

func (c *Client) Navigate(screen session.Screen) (session.NavigationState, error) {
	var result session.NavigationState
	err := c.call("Navigate", map[string]any{"Screen": screen}, &result)
	return result, err
}

func (c *Client) Navigation() (session.NavigationState, error) {
	var result session.NavigationState
	err := c.call("Navigation", nil, &result)
	return result, err
}

func (c *Client) Back() (session.NavigationState, error) {
	var result session.NavigationState
	err := c.call("Back", nil, &result)
	return result, err
}

func (c *Client) AcceptUpload(d session.Dataset) (model.NetworkStatus, error) {
	var result model.NetworkStatus
	err := c.call("AcceptUpload", map[string]any{"Dataset": d}, &result)
	return result, err
}

func (c *Client) SetMode(mode session.Mode) (model.NetworkStatus, error) {
	var result model.NetworkStatus
	err := c.call("SetMode", map[string]any{"Mode": mode}, &result)
	return result, err
}

func (c *Client) ToggleMode() (model.NetworkStatus, error) {
	var result model.NetworkStatus
	err := c.call("ToggleMode", nil, &result)
	return result, err
}

func (c *Client) Network() (model.NetworkStatus, error) {
	var result model.NetworkStatus
	err := c.call("Network", nil, &result)
	return result, err
}

func (c *Client) Dashboard() (model.DashboardView, error) {
	var result model.DashboardView
	err := c.call("Dashboard", nil, &result)
	return result, err
}

func (c *Client) AllAlerts() ([]model.Alert, error) {
	var result []model.Alert
	err := c.call("AllAlerts", nil, &result)
	return result, err
}

func (c *Client) Corridor() (model.CorridorView, error) {
	var result model.CorridorView
	err := c.call("Corridor", nil, &result)
	return result, err
}

func (c *Client) TSPSimulation() (model.TSPSimulation, error) {
	var result model.TSPSimulation
	err := c.call("TSPSimulation", nil, &result)
	return result, err
}

func (c *Client) ScenarioBoard() (model.ScenarioBoard, error) {
	var result model.ScenarioBoard
	err := c.call("ScenarioBoard", nil, &result)
	return result, err
}

func (c *Client) ReportTemplates() ([]model.ReportTemplate, error) {
	var result []model.ReportTemplate
	err := c.call("ReportTemplates", nil, &result)
	return result, err
}

func (c *Client) BikeEstimate(segments int) (model.BikeEstimate, error) {
	var result model.BikeEstimate
	err := c.call("BikeEstimate", map[string]any{"Segments": segments}, &result)
	return result, err
}

func (c *Client) ExportReport(req model.ExportRequest) (model.ExportAck, error) {
	var result model.ExportAck
	err := c.call("ExportReport", map[string]any{"Request": req}, &result)
	return result, err
}

func (c *Client) RecentExports() ([]model.ExportAck, error) {
	var result []model.ExportAck
	err := c.call("RecentExports", nil, &result)
	return result, err
}
