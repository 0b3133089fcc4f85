package model

import (
	"time"

	"github.com/mobilityiq/mobilityiq/internal/session"
)

// MetricCard is one headline figure on the dashboard. Change is empty for
// datasets without a comparison period.
type MetricCard struct {
	Title      string `json:"title"`
	Value      string `json:"value"`
	Change     string `json:"change,omitempty"`
	ChangeType string `json:"change_type"` // "positive" or "negative"
}

// Alert is a service alert shown in the dashboard side panel.
type Alert struct {
	ID       int    `json:"id"`
	Route    string `json:"route"`
	Issue    string `json:"issue"`
	Severity string `json:"severity"` // high, medium, low
	Age      string `json:"age"`
}

// RouteDetail backs the route popup on the network overview.
type RouteDetail struct {
	RouteID   string  `json:"route_id"`
	Status    string  `json:"status"`
	Ridership int64   `json:"ridership"`
	OnTimePct int     `json:"on_time_pct"`
	AvgSpeed  float64 `json:"avg_speed_mph"`
}

// Corridor is a selectable route/corridor in the delay analysis.
type Corridor struct {
	ID   string `json:"id"`
	Name string `json:"name"`
}

// DelayLocation is one entry in the "top delay locations" list.
type DelayLocation struct {
	Location  string  `json:"location"`
	AvgDelay  float64 `json:"avg_delay_min"`
	Frequency string  `json:"frequency"`
}

// DelayStats summarises a corridor.
type DelayStats struct {
	AvgDelayMin       float64 `json:"avg_delay_min"`
	ScheduleAdherence int     `json:"schedule_adherence_pct"`
	ReliabilityScore  int     `json:"reliability_score"`
}

// TSPResult is the simulated effect of transit signal priority at one
// intersection.
type TSPResult struct {
	Intersection   string  `json:"intersection"`
	BeforeMin      float64 `json:"before_min"`
	AfterMin       float64 `json:"after_min"`
	SavingsMin     float64 `json:"savings_min"`
	ImprovementPct int     `json:"improvement_pct"`
}

// Scenario is a capital investment alternative.
type Scenario struct {
	ID             string  `json:"id"`
	Name           string  `json:"name"`
	Description    string  `json:"description"`
	CapitalCostM   float64 `json:"capital_cost_m"`
	OperatingCostM float64 `json:"operating_cost_m"`
	RidershipPct   int     `json:"ridership_pct"`
	EmissionsPct   int     `json:"emissions_pct"`
	ReliabilityPct int     `json:"reliability_pct"`
	TimelineMonths int     `json:"timeline_months"`
	BenefitCost    float64 `json:"benefit_cost"`
	Routes         string  `json:"routes"`
	Stops          string  `json:"stops"`
	Vehicles       string  `json:"vehicles"`
	Recommended    bool    `json:"recommended"`
}

// ComparisonRow is one criterion of the side-by-side scenario table.
// Best holds the index into Values of the winning scenario.
type ComparisonRow struct {
	Criterion string   `json:"criterion"`
	Values    []string `json:"values"`
	Best      int      `json:"best"`
}

// BudgetSummary compares the recommended option against the budget.
type BudgetSummary struct {
	BudgetM     float64 `json:"budget_m"`
	Recommended string  `json:"recommended"`
	CostM       float64 `json:"cost_m"`
	RemainingM  float64 `json:"remaining_m"`
}

// ScenarioBoard is everything the scenario screen shows.
type ScenarioBoard struct {
	Scenarios  []Scenario      `json:"scenarios"`
	Comparison []ComparisonRow `json:"comparison"`
	Budget     BudgetSummary   `json:"budget"`
}

// ReportTemplate describes a report layout.
type ReportTemplate struct {
	ID          string `json:"id"`
	Name        string `json:"name"`
	Description string `json:"description"`
	Pages       string `json:"pages"`
	PageCount   int    `json:"page_count"`
	Title       string `json:"title"`
}

// ExportRequest asks for a report download.
type ExportRequest struct {
	Format   string   `json:"format"`
	Template string   `json:"template"`
	Sections []string `json:"sections,omitempty"`
}

// ExportAck acknowledges a report download. No file is produced.
type ExportAck struct {
	ID        string    `json:"id"`
	Format    string    `json:"format"`
	Template  string    `json:"template"`
	Sections  []string  `json:"sections"`
	Message   string    `json:"message"`
	CreatedAt time.Time `json:"created_at"`
}

// UploadSummary describes an accepted upload without its contents.
type UploadSummary struct {
	ID         string    `json:"id"`
	GPSBytes   int       `json:"gps_bytes"`
	CrashBytes int       `json:"crash_bytes"`
	STBytes    int       `json:"st_bytes"`
	AcceptedAt time.Time `json:"accepted_at"`
}

// NetworkStatus is the wire view of the network store. Upload blobs never
// leave the service.
type NetworkStatus struct {
	ActiveMode         session.Mode   `json:"active_mode"`
	HasUploadedNetwork bool           `json:"has_uploaded_network"`
	Upload             *UploadSummary `json:"upload,omitempty"`
}

// DashboardView is the network overview for the active dataset.
type DashboardView struct {
	Mode   session.Mode  `json:"mode"`
	Cards  []MetricCard  `json:"cards"`
	Alerts []Alert       `json:"alerts"`
	Routes []RouteDetail `json:"routes"`
}

// CorridorView is the delay analysis for the active dataset.
type CorridorView struct {
	Mode      session.Mode    `json:"mode"`
	Corridors []Corridor      `json:"corridors"`
	Locations []DelayLocation `json:"locations"`
	Stats     DelayStats      `json:"stats"`
}

// BikeEstimate is the safety and cost readout of a bike lane sketch.
type BikeEstimate struct {
	Segments          int     `json:"segments"`
	TotalMiles        float64 `json:"total_miles"`
	CrashReductionPct int     `json:"crash_reduction_pct"`
	SafetyScore       int     `json:"safety_score"`
	ConstructionK     int     `json:"construction_k"`
	SignageK          int     `json:"signage_k"`
	SignalsLightingK  int     `json:"signals_lighting_k"`
	TotalK            int     `json:"total_k"`
	PerMileK          int     `json:"per_mile_k"`
	Coverage          float64 `json:"coverage"`
}

// TSPSimulation is the projected effect of signal priority along a corridor.
type TSPSimulation struct {
	Results          []TSPResult `json:"results"`
	TravelTimeMin    float64     `json:"travel_time_min"`
	ImprovementPct   int         `json:"improvement_pct"`
	ReliabilityScore int         `json:"reliability_score"`
	ReliabilityGain  int         `json:"reliability_gain"`
	CostK            int         `json:"cost_k"`
	EmissionsPct     float64     `json:"emissions_pct"`
	FuelSavings      int         `json:"fuel_savings_usd"`
	PassengerHours   int         `json:"passenger_hours_per_day"`
	PaybackYears     float64     `json:"payback_years"`
}
