// Package planner implements model.PlannerAPI on top of the session stores,
// the display catalog and the report exporter. Both transports and the
// embedded TUI go through a Service.
package planner

import (
	"fmt"
	"sync"
	"time"

	"github.com/google/uuid"
	"go.uber.org/zap"

	"github.com/mobilityiq/mobilityiq/internal/design"
	"github.com/mobilityiq/mobilityiq/internal/model"
	"github.com/mobilityiq/mobilityiq/internal/report"
	"github.com/mobilityiq/mobilityiq/internal/session"
	"github.com/mobilityiq/mobilityiq/internal/upload"
)

var _ model.PlannerAPI = (*Service)(nil)

// Service answers planner requests for one session.
type Service struct {
	state    *session.State
	catalog  model.CatalogQuerier
	exporter *report.Exporter
	log      *zap.Logger
	now      func() time.Time

	mu     sync.RWMutex
	upload *model.UploadSummary
}

// NewService wires a service. A nil logger is replaced with a no-op logger
// and a nil exporter with one keeping the default history.
func NewService(state *session.State, catalog model.CatalogQuerier, exporter *report.Exporter, log *zap.Logger) *Service {
	if log == nil {
		log = zap.NewNop()
	}
	if exporter == nil {
		exporter = report.NewExporter(0)
	}
	return &Service{
		state:    state,
		catalog:  catalog,
		exporter: exporter,
		log:      log,
		now:      time.Now,
	}
}

// Navigate moves to screen. Out-of-range screens are rejected.
func (s *Service) Navigate(screen session.Screen) (session.NavigationState, error) {
	if !screen.Valid() {
		return session.NavigationState{}, fmt.Errorf("%w: %d", session.ErrUnknownScreen, uint8(screen))
	}
	st := s.state.Nav.Navigate(screen)
	s.log.Debug("navigate",
		zap.Stringer("from", st.Previous),
		zap.Stringer("to", st.Active))
	return st, nil
}

// Back returns to the previous screen in a single navigator step.
func (s *Service) Back() (session.NavigationState, error) {
	st := s.state.Nav.Back()
	s.log.Debug("navigate back",
		zap.Stringer("from", st.Previous),
		zap.Stringer("to", st.Active))
	return st, nil
}

// Navigation returns the current navigation state.
func (s *Service) Navigation() (session.NavigationState, error) {
	return s.state.Nav.State(), nil
}

// AcceptUpload stores d as the uploaded network and activates it.
func (s *Service) AcceptUpload(d session.Dataset) (model.NetworkStatus, error) {
	if err := upload.Validate(d); err != nil {
		return model.NetworkStatus{}, err
	}

	summary := &model.UploadSummary{
		ID:         uuid.NewString(),
		GPSBytes:   len(d.GPS),
		CrashBytes: len(d.Crashes),
		STBytes:    len(d.StopTimes),
		AcceptedAt: s.now().UTC(),
	}

	s.mu.Lock()
	st := s.state.Network.AcceptUpload(d)
	s.upload = summary
	s.mu.Unlock()

	s.log.Info("network uploaded",
		zap.String("upload_id", summary.ID),
		zap.Int("gps_bytes", summary.GPSBytes),
		zap.Int("crash_bytes", summary.CrashBytes),
		zap.Int("st_bytes", summary.STBytes))
	return s.status(st), nil
}

// SetMode selects a dataset. Selecting uploaded before any upload leaves the
// mode unchanged and is not an error.
func (s *Service) SetMode(mode session.Mode) (model.NetworkStatus, error) {
	if mode != session.ModeOriginal && mode != session.ModeUploaded {
		return model.NetworkStatus{}, fmt.Errorf("%w: %d", session.ErrUnknownMode, uint8(mode))
	}
	st := s.state.Network.SetMode(mode)
	if st.ActiveMode != mode {
		s.log.Debug("mode change ignored", zap.Stringer("requested", mode))
	} else {
		s.log.Info("network mode", zap.Stringer("mode", st.ActiveMode))
	}
	return s.status(st), nil
}

// ToggleMode flips between original and uploaded.
func (s *Service) ToggleMode() (model.NetworkStatus, error) {
	st := s.state.Network.Toggle()
	s.log.Info("network mode", zap.Stringer("mode", st.ActiveMode))
	return s.status(st), nil
}

// Network returns the network status.
func (s *Service) Network() (model.NetworkStatus, error) {
	return s.status(s.state.Network.State()), nil
}

func (s *Service) status(st session.NetworkModeState) model.NetworkStatus {
	out := model.NetworkStatus{
		ActiveMode:         st.ActiveMode,
		HasUploadedNetwork: st.HasUploadedNetwork(),
	}
	s.mu.RLock()
	if s.upload != nil && out.HasUploadedNetwork {
		u := *s.upload
		out.Upload = &u
	}
	s.mu.RUnlock()
	return out
}

// Dashboard returns the network overview for the active dataset.
func (s *Service) Dashboard() (model.DashboardView, error) {
	mode := s.state.Network.ActiveMode()
	cards, err := s.catalog.MetricCards(mode)
	if err != nil {
		return model.DashboardView{}, err
	}
	alerts, err := s.catalog.Alerts(false)
	if err != nil {
		return model.DashboardView{}, err
	}
	routes, err := s.catalog.RouteDetails()
	if err != nil {
		return model.DashboardView{}, err
	}
	return model.DashboardView{Mode: mode, Cards: cards, Alerts: alerts, Routes: routes}, nil
}

// AllAlerts returns every active alert.
func (s *Service) AllAlerts() ([]model.Alert, error) {
	return s.catalog.Alerts(true)
}

// Corridor returns the delay analysis for the active dataset.
func (s *Service) Corridor() (model.CorridorView, error) {
	mode := s.state.Network.ActiveMode()
	corridors, err := s.catalog.Corridors()
	if err != nil {
		return model.CorridorView{}, err
	}
	locations, err := s.catalog.DelayLocations(mode)
	if err != nil {
		return model.CorridorView{}, err
	}
	stats, err := s.catalog.DelayStats()
	if err != nil {
		return model.CorridorView{}, err
	}
	return model.CorridorView{Mode: mode, Corridors: corridors, Locations: locations, Stats: stats}, nil
}

// TSPSimulation returns the projected effect of signal priority.
func (s *Service) TSPSimulation() (model.TSPSimulation, error) {
	results, err := s.catalog.TSPResults()
	if err != nil {
		return model.TSPSimulation{}, err
	}
	stats, err := s.catalog.DelayStats()
	if err != nil {
		return model.TSPSimulation{}, err
	}
	return simulateTSP(results, stats), nil
}

// ScenarioBoard returns the scenarios, comparison table and budget.
func (s *Service) ScenarioBoard() (model.ScenarioBoard, error) {
	scenarios, err := s.catalog.Scenarios()
	if err != nil {
		return model.ScenarioBoard{}, err
	}
	return model.ScenarioBoard{
		Scenarios:  scenarios,
		Comparison: compare(scenarios),
		Budget:     budget(scenarios),
	}, nil
}

// ReportTemplates returns the report layouts.
func (s *Service) ReportTemplates() ([]model.ReportTemplate, error) {
	return s.catalog.ReportTemplates()
}

// BikeEstimate returns the sketchpad readout for segments drawn segments.
func (s *Service) BikeEstimate(segments int) (model.BikeEstimate, error) {
	if segments < 0 {
		return model.BikeEstimate{}, fmt.Errorf("planner: negative segment count %d", segments)
	}
	if segments > design.MaxSegments {
		return model.BikeEstimate{}, fmt.Errorf("planner: %w: %d", design.ErrTooManySegments, segments)
	}
	return design.EstimateFor(segments), nil
}

// ExportReport acknowledges a report download.
func (s *Service) ExportReport(req model.ExportRequest) (model.ExportAck, error) {
	templates, err := s.catalog.ReportTemplates()
	if err != nil {
		return model.ExportAck{}, err
	}
	ack, err := s.exporter.Export(req, templates)
	if err != nil {
		return model.ExportAck{}, err
	}
	s.log.Info("report exported",
		zap.String("export_id", ack.ID),
		zap.String("format", ack.Format),
		zap.String("template", ack.Template),
		zap.Strings("sections", ack.Sections))
	return ack, nil
}

// RecentExports returns the last acknowledged exports, newest first.
func (s *Service) RecentExports() ([]model.ExportAck, error) {
	return s.exporter.Recent(), nil
}
