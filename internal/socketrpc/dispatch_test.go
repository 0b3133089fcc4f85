package socketrpc

import (
	"encoding/json"
	"errors"
	"fmt"
	"testing"

	"github.com/mobilityiq/mobilityiq/internal/design"
	"github.com/mobilityiq/mobilityiq/internal/duckdb"
	"github.com/mobilityiq/mobilityiq/internal/model"
	"github.com/mobilityiq/mobilityiq/internal/planner"
	"github.com/mobilityiq/mobilityiq/internal/report"
	"github.com/mobilityiq/mobilityiq/internal/session"
	"github.com/mobilityiq/mobilityiq/internal/upload"
)

func newDispatchServer(t *testing.T) *Server {
	t.Helper()
	store, err := duckdb.NewStore(nil)
	if err != nil {
		t.Fatalf("NewStore: %v", err)
	}
	t.Cleanup(func() { store.Close() })
	return NewServer("", planner.NewService(session.NewState(), store, nil, nil), nil)
}

func call(t *testing.T, s *Server, method, params string) Response {
	t.Helper()
	req := Request{JSONRPC: "2.0", ID: 7, Method: method}
	if params != "" {
		req.Params = json.RawMessage(params)
	}
	resp := s.dispatch(req)
	if resp.ID != 7 || resp.JSONRPC != "2.0" {
		t.Fatalf("%s: bad envelope %+v", method, resp)
	}
	return resp
}

func TestDispatch_Navigate(t *testing.T) {
	s := newDispatchServer(t)

	resp := call(t, s, "Navigate", `{"Screen":"corridor"}`)
	if resp.Error != nil {
		t.Fatalf("Navigate: %v", resp.Error)
	}
	var st session.NavigationState
	if err := json.Unmarshal(resp.Result, &st); err != nil {
		t.Fatalf("unmarshal: %v", err)
	}
	if st.Active != session.ScreenCorridor || st.Previous != session.ScreenDashboard {
		t.Errorf("state = %+v", st)
	}

	resp = call(t, s, "Navigate", `{"Screen":"settings"}`)
	if resp.Error == nil || resp.Error.Code != codeInvalidParams {
		t.Fatalf("expected invalid params, got %+v", resp.Error)
	}
	if !errors.Is(resp.Error, session.ErrUnknownScreen) {
		t.Errorf("error kind = %q", resp.Error.Data)
	}
}

func TestDispatch_UploadErrors(t *testing.T) {
	s := newDispatchServer(t)

	resp := call(t, s, "AcceptUpload", `{"Dataset":{"gps":"g","crashes":"c"}}`)
	if resp.Error == nil || resp.Error.Code != codeApplication {
		t.Fatalf("expected application error, got %+v", resp.Error)
	}
	if !errors.Is(resp.Error, upload.ErrIncomplete) {
		t.Errorf("error kind = %q", resp.Error.Data)
	}
}

func TestDispatch_ExportErrorKind(t *testing.T) {
	s := newDispatchServer(t)

	resp := call(t, s, "ExportReport", `{"Request":{"format":"pdf","template":"memo"}}`)
	if resp.Error == nil {
		t.Fatal("expected error")
	}
	if !errors.Is(resp.Error, report.ErrUnknownTemplate) {
		t.Errorf("error kind = %q", resp.Error.Data)
	}
}

func TestDispatch_OptionalParams(t *testing.T) {
	s := newDispatchServer(t)

	for _, method := range []string{"Navigation", "Network", "Dashboard", "AllAlerts", "Corridor",
		"TSPSimulation", "ScenarioBoard", "ReportTemplates", "ToggleMode", "Back", "RecentExports"} {
		if resp := call(t, s, method, ""); resp.Error != nil {
			t.Errorf("%s: %v", method, resp.Error)
		}
	}
	if resp := call(t, s, "BikeEstimate", ""); resp.Error != nil {
		t.Errorf("BikeEstimate without params: %v", resp.Error)
	}
}

func TestDispatch_MethodNotFound(t *testing.T) {
	s := newDispatchServer(t)

	resp := call(t, s, "DropTables", "")
	if resp.Error == nil || resp.Error.Code != codeMethod {
		t.Fatalf("expected method not found, got %+v", resp.Error)
	}
}

func TestDispatch_InvalidParams(t *testing.T) {
	s := newDispatchServer(t)

	resp := call(t, s, "BikeEstimate", `{"Segments":"three"}`)
	if resp.Error == nil || resp.Error.Code != codeInvalidParams {
		t.Fatalf("expected invalid params, got %+v", resp.Error)
	}
}

func TestDispatch_RequiredFields(t *testing.T) {
	s := newDispatchServer(t)
	if resp := call(t, s, "Navigate", `{"Screen":"bike"}`); resp.Error != nil {
		t.Fatalf("Navigate: %v", resp.Error)
	}

	for _, tc := range []struct{ method, params string }{
		{"Navigate", `{}`},
		{"Navigate", `{"Screen":null}`},
		{"SetMode", `{}`},
		{"SetMode", ""},
	} {
		resp := call(t, s, tc.method, tc.params)
		if resp.Error == nil || resp.Error.Code != codeInvalidParams {
			t.Fatalf("%s(%s): expected invalid params, got %+v", tc.method, tc.params, resp.Error)
		}
	}

	resp := call(t, s, "Navigation", "")
	var st session.NavigationState
	if err := json.Unmarshal(resp.Result, &st); err != nil {
		t.Fatalf("unmarshal: %v", err)
	}
	if st.Active != session.ScreenBike {
		t.Errorf("rejected request moved navigation: %+v", st)
	}
}

func TestDispatch_BikeEstimateBounds(t *testing.T) {
	s := newDispatchServer(t)

	for _, params := range []string{`{"Segments":-1}`, `{"Segments":100000000000000000}`} {
		resp := call(t, s, "BikeEstimate", params)
		if resp.Error == nil || resp.Error.Code != codeInvalidParams {
			t.Fatalf("%s: expected invalid params, got %+v", params, resp.Error)
		}
		if !errors.Is(resp.Error, design.ErrTooManySegments) {
			t.Errorf("%s: error kind = %q", params, resp.Error.Data)
		}
	}
	if resp := call(t, s, "BikeEstimate", fmt.Sprintf(`{"Segments":%d}`, design.MaxSegments)); resp.Error != nil {
		t.Errorf("BikeEstimate at max: %v", resp.Error)
	}
}

func TestDispatch_BackAndRecentExports(t *testing.T) {
	s := newDispatchServer(t)
	call(t, s, "Navigate", `{"Screen":"scenario"}`)
	call(t, s, "Navigate", `{"Screen":"reports"}`)

	resp := call(t, s, "Back", "")
	var st session.NavigationState
	if err := json.Unmarshal(resp.Result, &st); err != nil {
		t.Fatalf("unmarshal: %v", err)
	}
	if st.Active != session.ScreenScenario || st.Previous != session.ScreenReports {
		t.Errorf("Back = %+v", st)
	}

	if resp := call(t, s, "ExportReport", `{"Request":{"format":"excel","template":"technical"}}`); resp.Error != nil {
		t.Fatalf("ExportReport: %v", resp.Error)
	}
	resp = call(t, s, "RecentExports", "")
	var recent []model.ExportAck
	if err := json.Unmarshal(resp.Result, &recent); err != nil {
		t.Fatalf("unmarshal: %v", err)
	}
	if len(recent) != 1 || recent[0].Template != "technical" {
		t.Errorf("RecentExports = %+v", recent)
	}
}

func TestRPCErrorUnwrapUnknownKind(t *testing.T) {
	e := &RPCError{Code: codeApplication, Message: "boom"}
	if e.Unwrap() != nil {
		t.Errorf("Unwrap = %v, want nil", e.Unwrap())
	}
}
