package model

import "github.com/mobilityiq/mobilityiq/internal/session"

// CatalogQuerier provides read-only access to the dashboard's display values.
type CatalogQuerier interface {
	MetricCards(mode session.Mode) ([]MetricCard, error)
	Alerts(all bool) ([]Alert, error)
	RouteDetails() ([]RouteDetail, error)
	Corridors() ([]Corridor, error)
	DelayLocations(mode session.Mode) ([]DelayLocation, error)
	DelayStats() (DelayStats, error)
	TSPResults() ([]TSPResult, error)
	Scenarios() ([]Scenario, error)
	ReportTemplates() ([]ReportTemplate, error)
}

// Navigation moves between the top-level screens.
type Navigation interface {
	Navigate(screen session.Screen) (session.NavigationState, error)
	Navigation() (session.NavigationState, error)
	Back() (session.NavigationState, error)
}

// NetworkGate selects the dataset the displays read from.
type NetworkGate interface {
	AcceptUpload(d session.Dataset) (NetworkStatus, error)
	SetMode(mode session.Mode) (NetworkStatus, error)
	ToggleMode() (NetworkStatus, error)
	Network() (NetworkStatus, error)
}

// DisplayQuerier resolves display values against the active dataset.
type DisplayQuerier interface {
	Dashboard() (DashboardView, error)
	AllAlerts() ([]Alert, error)
	Corridor() (CorridorView, error)
	TSPSimulation() (TSPSimulation, error)
	ScenarioBoard() (ScenarioBoard, error)
	ReportTemplates() ([]ReportTemplate, error)
	BikeEstimate(segments int) (BikeEstimate, error)
}

// ReportExporter acknowledges report downloads and lists the recent ones.
type ReportExporter interface {
	ExportReport(req ExportRequest) (ExportAck, error)
	RecentExports() ([]ExportAck, error)
}

// PlannerAPI is the unified contract for read/write surfaces (HTTP, socket
// RPC) and for the TUI.
type PlannerAPI interface {
	Navigation
	NetworkGate
	DisplayQuerier
	ReportExporter
}
