package duckdb

import (
	"fmt"

	"github.com/mobilityiq/mobilityiq/internal/model"
	"github.com/mobilityiq/mobilityiq/internal/session"
)

// MetricCards returns the four headline cards for the given dataset.
func (s *Store) MetricCards(mode session.Mode) ([]model.MetricCard, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	ctx, cancel := s.queryCtx()
	defer cancel()

	rows, err := s.db.QueryContext(ctx, `
		SELECT title, value, change, change_type
		FROM metric_cards
		WHERE mode = ?
		ORDER BY position`, mode.String())
	if err != nil {
		return nil, fmt.Errorf("duckdb: metric cards: %w", err)
	}
	defer rows.Close()

	var cards []model.MetricCard
	for rows.Next() {
		var c model.MetricCard
		if err := rows.Scan(&c.Title, &c.Value, &c.Change, &c.ChangeType); err != nil {
			return nil, err
		}
		cards = append(cards, c)
	}
	return cards, rows.Err()
}

// Alerts returns the recent alerts, or every alert when all is set.
func (s *Store) Alerts(all bool) ([]model.Alert, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	ctx, cancel := s.queryCtx()
	defer cancel()

	query := `SELECT id, route, issue, severity, age FROM alerts`
	if !all {
		query += ` WHERE recent`
	}
	query += ` ORDER BY id`

	rows, err := s.db.QueryContext(ctx, query)
	if err != nil {
		return nil, fmt.Errorf("duckdb: alerts: %w", err)
	}
	defer rows.Close()

	var alerts []model.Alert
	for rows.Next() {
		var a model.Alert
		if err := rows.Scan(&a.ID, &a.Route, &a.Issue, &a.Severity, &a.Age); err != nil {
			return nil, err
		}
		alerts = append(alerts, a)
	}
	return alerts, rows.Err()
}

// RouteDetails returns the per-route summaries behind the network overview.
func (s *Store) RouteDetails() ([]model.RouteDetail, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	ctx, cancel := s.queryCtx()
	defer cancel()

	rows, err := s.db.QueryContext(ctx, `
		SELECT route_id, status, ridership, on_time_pct, avg_speed
		FROM route_details
		ORDER BY position`)
	if err != nil {
		return nil, fmt.Errorf("duckdb: route details: %w", err)
	}
	defer rows.Close()

	var routes []model.RouteDetail
	for rows.Next() {
		var r model.RouteDetail
		if err := rows.Scan(&r.RouteID, &r.Status, &r.Ridership, &r.OnTimePct, &r.AvgSpeed); err != nil {
			return nil, err
		}
		routes = append(routes, r)
	}
	return routes, rows.Err()
}

// Corridors returns the selectable corridors in display order.
func (s *Store) Corridors() ([]model.Corridor, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	ctx, cancel := s.queryCtx()
	defer cancel()

	rows, err := s.db.QueryContext(ctx, `SELECT id, name FROM corridors ORDER BY position`)
	if err != nil {
		return nil, fmt.Errorf("duckdb: corridors: %w", err)
	}
	defer rows.Close()

	var out []model.Corridor
	for rows.Next() {
		var c model.Corridor
		if err := rows.Scan(&c.ID, &c.Name); err != nil {
			return nil, err
		}
		out = append(out, c)
	}
	return out, rows.Err()
}

// DelayLocations returns the top delay locations for the given dataset,
// worst first.
func (s *Store) DelayLocations(mode session.Mode) ([]model.DelayLocation, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	ctx, cancel := s.queryCtx()
	defer cancel()

	rows, err := s.db.QueryContext(ctx, `
		SELECT location, avg_delay, frequency
		FROM delay_locations
		WHERE mode = ?
		ORDER BY position`, mode.String())
	if err != nil {
		return nil, fmt.Errorf("duckdb: delay locations: %w", err)
	}
	defer rows.Close()

	var out []model.DelayLocation
	for rows.Next() {
		var d model.DelayLocation
		if err := rows.Scan(&d.Location, &d.AvgDelay, &d.Frequency); err != nil {
			return nil, err
		}
		out = append(out, d)
	}
	return out, rows.Err()
}

// DelayStats returns the corridor summary figures.
func (s *Store) DelayStats() (model.DelayStats, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	ctx, cancel := s.queryCtx()
	defer cancel()

	var st model.DelayStats
	err := s.db.QueryRowContext(ctx, `
		SELECT avg_delay_min, schedule_adherence, reliability_score
		FROM delay_stats
		LIMIT 1`).Scan(&st.AvgDelayMin, &st.ScheduleAdherence, &st.ReliabilityScore)
	if err != nil {
		return model.DelayStats{}, fmt.Errorf("duckdb: delay stats: %w", err)
	}
	return st, nil
}

// TSPResults returns before/after travel times per intersection. Savings
// and improvement are left for the caller to derive.
func (s *Store) TSPResults() ([]model.TSPResult, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	ctx, cancel := s.queryCtx()
	defer cancel()

	rows, err := s.db.QueryContext(ctx, `
		SELECT intersection, before_min, after_min
		FROM tsp_results
		ORDER BY position`)
	if err != nil {
		return nil, fmt.Errorf("duckdb: tsp results: %w", err)
	}
	defer rows.Close()

	var out []model.TSPResult
	for rows.Next() {
		var r model.TSPResult
		if err := rows.Scan(&r.Intersection, &r.BeforeMin, &r.AfterMin); err != nil {
			return nil, err
		}
		out = append(out, r)
	}
	return out, rows.Err()
}

// Scenarios returns the capital investment alternatives ordered by ID.
func (s *Store) Scenarios() ([]model.Scenario, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	ctx, cancel := s.queryCtx()
	defer cancel()

	rows, err := s.db.QueryContext(ctx, `
		SELECT id, name, description, capital_cost_m, operating_cost_m,
		       ridership_pct, emissions_pct, reliability_pct, timeline_months,
		       benefit_cost, routes, stops, vehicles, recommended
		FROM scenarios
		ORDER BY id`)
	if err != nil {
		return nil, fmt.Errorf("duckdb: scenarios: %w", err)
	}
	defer rows.Close()

	var out []model.Scenario
	for rows.Next() {
		var sc model.Scenario
		if err := rows.Scan(
			&sc.ID, &sc.Name, &sc.Description, &sc.CapitalCostM, &sc.OperatingCostM,
			&sc.RidershipPct, &sc.EmissionsPct, &sc.ReliabilityPct, &sc.TimelineMonths,
			&sc.BenefitCost, &sc.Routes, &sc.Stops, &sc.Vehicles, &sc.Recommended,
		); err != nil {
			return nil, err
		}
		out = append(out, sc)
	}
	return out, rows.Err()
}

// ReportTemplates returns the report layouts in display order.
func (s *Store) ReportTemplates() ([]model.ReportTemplate, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	ctx, cancel := s.queryCtx()
	defer cancel()

	rows, err := s.db.QueryContext(ctx, `
		SELECT id, name, description, pages, page_count, title
		FROM report_templates
		ORDER BY position`)
	if err != nil {
		return nil, fmt.Errorf("duckdb: report templates: %w", err)
	}
	defer rows.Close()

	var out []model.ReportTemplate
	for rows.Next() {
		var t model.ReportTemplate
		if err := rows.Scan(&t.ID, &t.Name, &t.Description, &t.Pages, &t.PageCount, &t.Title); err != nil {
			return nil, err
		}
		out = append(out, t)
	}
	return out, rows.Err()
}
