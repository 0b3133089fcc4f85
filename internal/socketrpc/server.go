package socketrpc

import (
	"bufio"
	"encoding/json"
	"fmt"
	"net"
	"os"
	"path/filepath"
	"sync"
	"time"

	"go.uber.org/zap"

	"github.com/mobilityiq/mobilityiq/internal/design"
	"github.com/mobilityiq/mobilityiq/internal/model"
	"github.com/mobilityiq/mobilityiq/internal/session"
)

const (
	// scannerInitBufSize is the initial buffer size for the per-connection scanner (1 MB).
	scannerInitBufSize = 1024 * 1024
	// scannerMaxTokenSize is the maximum token size the scanner will accept.
	// Uploads travel inline, so this is well above upload.MaxFileSize * 3.
	scannerMaxTokenSize = 256 * 1024 * 1024
)

// Server exposes a model.PlannerAPI over a Unix domain socket using JSON-RPC 2.0.
type Server struct {
	socketPath string
	api        model.PlannerAPI
	log        *zap.Logger
	listener   net.Listener
	wg         sync.WaitGroup
	quit       chan struct{}

	mu    sync.Mutex
	conns map[net.Conn]struct{}
}

// NewServer creates a new socket RPC server.
func NewServer(socketPath string, api model.PlannerAPI, log *zap.Logger) *Server {
	if log == nil {
		log = zap.NewNop()
	}
	return &Server{
		socketPath: socketPath,
		api:        api,
		log:        log,
		quit:       make(chan struct{}),
		conns:      make(map[net.Conn]struct{}),
	}
}

// Start begins listening on the Unix socket and accepting connections.
func (s *Server) Start() error {
	if err := os.MkdirAll(filepath.Dir(s.socketPath), 0o755); err != nil {
		return fmt.Errorf("socketrpc: mkdir: %w", err)
	}

	// Remove a stale socket left by a crashed server.
	if _, err := os.Stat(s.socketPath); err == nil {
		conn, dialErr := net.DialTimeout("unix", s.socketPath, 500*time.Millisecond)
		if dialErr != nil {
			os.Remove(s.socketPath)
		} else {
			conn.Close()
			return fmt.Errorf("socketrpc: another server is already listening on %s", s.socketPath)
		}
	}

	ln, err := net.Listen("unix", s.socketPath)
	if err != nil {
		return fmt.Errorf("socketrpc: listen: %w", err)
	}
	s.listener = ln

	s.wg.Add(1)
	go s.acceptLoop()

	s.log.Info("socket rpc listening", zap.String("path", s.socketPath))
	return nil
}

// Stop closes the listener and open connections, waits for handlers to
// drain, and removes the socket file.
func (s *Server) Stop() {
	close(s.quit)
	if s.listener != nil {
		s.listener.Close()
	}
	s.mu.Lock()
	for c := range s.conns {
		c.Close()
	}
	s.mu.Unlock()
	s.wg.Wait()
	os.Remove(s.socketPath)
}

func (s *Server) acceptLoop() {
	defer s.wg.Done()
	for {
		conn, err := s.listener.Accept()
		if err != nil {
			select {
			case <-s.quit:
				return
			default:
				s.log.Warn("socket rpc accept", zap.Error(err))
				continue
			}
		}
		s.mu.Lock()
		s.conns[conn] = struct{}{}
		s.mu.Unlock()

		s.wg.Add(1)
		go s.handleConn(conn)
	}
}

func (s *Server) handleConn(conn net.Conn) {
	defer s.wg.Done()
	defer func() {
		s.mu.Lock()
		delete(s.conns, conn)
		s.mu.Unlock()
		conn.Close()
	}()

	scanner := bufio.NewScanner(conn)
	scanner.Buffer(make([]byte, 0, scannerInitBufSize), scannerMaxTokenSize)
	encoder := json.NewEncoder(conn)

	for scanner.Scan() {
		select {
		case <-s.quit:
			return
		default:
		}

		var req Request
		if err := json.Unmarshal(scanner.Bytes(), &req); err != nil {
			resp := Response{JSONRPC: "2.0", ID: 0, Error: &RPCError{Code: codeParse, Message: "parse error"}}
			encoder.Encode(resp)
			continue
		}

		resp := s.dispatch(req)
		if resp.Error != nil {
			s.log.Debug("socket rpc error",
				zap.String("method", req.Method),
				zap.Int("code", resp.Error.Code),
				zap.String("message", resp.Error.Message))
		}
		if err := encoder.Encode(resp); err != nil {
			return
		}
	}
}

func (s *Server) dispatch(req Request) Response {
	resp := Response{JSONRPC: "2.0", ID: req.ID}

	marshalResult := func(v any, err error) Response {
		if err != nil {
			resp.Error = &RPCError{Code: codeApplication, Message: err.Error(), Data: kindOf(err)}
			return resp
		}
		data, merr := json.Marshal(v)
		if merr != nil {
			resp.Error = &RPCError{Code: codeInternal, Message: merr.Error()}
			return resp
		}
		resp.Result = data
		return resp
	}

	invalidParams := func(err error) Response {
		resp.Error = &RPCError{Code: codeInvalidParams, Message: fmt.Sprintf("invalid params: %v", err), Data: kindOf(err)}
		return resp
	}

	switch req.Method {
	case "Navigate":
		var p struct{ Screen *session.Screen }
		if err := json.Unmarshal(req.Params, &p); err != nil {
			return invalidParams(err)
		}
		if p.Screen == nil {
			return invalidParams(errMissing("Screen"))
		}
		return marshalResult(s.api.Navigate(*p.Screen))

	case "Navigation":
		return marshalResult(s.api.Navigation())

	case "Back":
		return marshalResult(s.api.Back())

	case "AcceptUpload":
		var p struct{ Dataset session.Dataset }
		if err := json.Unmarshal(req.Params, &p); err != nil {
			return invalidParams(err)
		}
		return marshalResult(s.api.AcceptUpload(p.Dataset))

	case "SetMode":
		var p struct{ Mode *session.Mode }
		if err := json.Unmarshal(req.Params, &p); err != nil {
			return invalidParams(err)
		}
		if p.Mode == nil {
			return invalidParams(errMissing("Mode"))
		}
		return marshalResult(s.api.SetMode(*p.Mode))

	case "ToggleMode":
		return marshalResult(s.api.ToggleMode())

	case "Network":
		return marshalResult(s.api.Network())

	case "Dashboard":
		return marshalResult(s.api.Dashboard())

	case "AllAlerts":
		return marshalResult(s.api.AllAlerts())

	case "Corridor":
		return marshalResult(s.api.Corridor())

	case "TSPSimulation":
		return marshalResult(s.api.TSPSimulation())

	case "ScenarioBoard":
		return marshalResult(s.api.ScenarioBoard())

	case "ReportTemplates":
		return marshalResult(s.api.ReportTemplates())

	case "BikeEstimate":
		var p struct{ Segments int }
		if err := json.Unmarshal(req.Params, &p); err != nil && len(req.Params) > 0 {
			return invalidParams(err)
		}
		if p.Segments < 0 || p.Segments > design.MaxSegments {
			return invalidParams(fmt.Errorf("%w: %d", design.ErrTooManySegments, p.Segments))
		}
		return marshalResult(s.api.BikeEstimate(p.Segments))

	case "ExportReport":
		var p struct{ Request model.ExportRequest }
		if err := json.Unmarshal(req.Params, &p); err != nil {
			return invalidParams(err)
		}
		return marshalResult(s.api.ExportReport(p.Request))

	case "RecentExports":
		return marshalResult(s.api.RecentExports())

	default:
		resp.Error = &RPCError{Code: codeMethod, Message: fmt.Sprintf("method not found: %s", req.Method)}
		return resp
	}
}

func errMissing(field string) error {
	return fmt.Errorf("missing required field %s", field)
}
