package socketrpc

import (
	"encoding/json"
	"errors"
	"os"
	"path/filepath"

	"github.com/mobilityiq/mobilityiq/internal/design"
	"github.com/mobilityiq/mobilityiq/internal/report"
	"github.com/mobilityiq/mobilityiq/internal/session"
	"github.com/mobilityiq/mobilityiq/internal/upload"
)

// JSON-RPC 2.0 Method Reference
//
// The socket RPC server exposes model.PlannerAPI over a Unix domain socket.
// Each method maps 1:1 to the PlannerAPI interface.
//
//   Method            Params                         Result
//   ───────────────   ────────────────────────────   ─────────────────────────
//   Navigate          {Screen: string}               session.NavigationState
//   Navigation        (none)                         session.NavigationState
//   Back              (none)                         session.NavigationState
//   AcceptUpload      {Dataset: {gps, crashes, st}}  NetworkStatus
//   SetMode           {Mode: string}                 NetworkStatus
//   ToggleMode        (none)                         NetworkStatus
//   Network           (none)                         NetworkStatus
//   Dashboard         (none)                         DashboardView
//   AllAlerts         (none)                         []Alert
//   Corridor          (none)                         CorridorView
//   TSPSimulation     (none)                         TSPSimulation
//   ScenarioBoard     (none)                         ScenarioBoard
//   ReportTemplates   (none)                         []ReportTemplate
//   BikeEstimate      {Segments: int}                BikeEstimate (0..design.MaxSegments)
//   ExportReport      {Request: ExportRequest}       ExportAck
//   RecentExports     (none)                         []ExportAck
//
// Screens and modes travel as their lowercase names. Screen and Mode are
// required; an absent field is an invalid params error.
//
// Error codes follow JSON-RPC 2.0:
//   -32700  Parse error (malformed JSON)
//   -32601  Method not found
//   -32602  Invalid params
//   -32603  Internal error (marshal failure)
//   -32000  Application error; Data names the failure kind when known

const (
	codeParse         = -32700
	codeMethod        = -32601
	codeInvalidParams = -32602
	codeInternal      = -32603
	codeApplication   = -32000
)

// Request is a JSON-RPC 2.0 request.
type Request struct {
	JSONRPC string          `json:"jsonrpc"`
	ID      int             `json:"id"`
	Method  string          `json:"method"`
	Params  json.RawMessage `json:"params"`
}

// Response is a JSON-RPC 2.0 response.
type Response struct {
	JSONRPC string          `json:"jsonrpc"`
	ID      int             `json:"id"`
	Result  json.RawMessage `json:"result,omitempty"`
	Error   *RPCError       `json:"error,omitempty"`
}

// RPCError represents a JSON-RPC 2.0 error object.
type RPCError struct {
	Code    int    `json:"code"`
	Message string `json:"message"`
	Data    string `json:"data,omitempty"`
}

func (e *RPCError) Error() string { return e.Message }

// Unwrap restores the sentinel named by Data so callers can use errors.Is
// on either side of the socket.
func (e *RPCError) Unwrap() error {
	for _, k := range kinds {
		if k.name == e.Data {
			return k.err
		}
	}
	return nil
}

var kinds = []struct {
	name string
	err  error
}{
	{"unknown_screen", session.ErrUnknownScreen},
	{"unknown_mode", session.ErrUnknownMode},
	{"unknown_format", report.ErrUnknownFormat},
	{"unknown_template", report.ErrUnknownTemplate},
	{"unknown_section", report.ErrUnknownSection},
	{"upload_incomplete", upload.ErrIncomplete},
	{"too_many_segments", design.ErrTooManySegments},
}

func kindOf(err error) string {
	for _, k := range kinds {
		if errors.Is(err, k.err) {
			return k.name
		}
	}
	return ""
}

// DefaultSocketPath returns the default Unix socket path.
// It prefers $XDG_RUNTIME_DIR/mobilityiq/mobilityiq.sock, falling back to
// ~/.local/state/mobilityiq/mobilityiq.sock.
func DefaultSocketPath() string {
	if dir := os.Getenv("XDG_RUNTIME_DIR"); dir != "" {
		return filepath.Join(dir, "mobilityiq", "mobilityiq.sock")
	}
	home, err := os.UserHomeDir()
	if err != nil {
		return filepath.Join(os.TempDir(), "mobilityiq.sock")
	}
	return filepath.Join(home, ".local", "state", "mobilityiq", "mobilityiq.sock")
}
