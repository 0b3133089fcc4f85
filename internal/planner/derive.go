package planner

import (
	"fmt"
	"math"

	"github.com/mobilityiq/mobilityiq/internal/model"
)

// Corridor-wide TSP projections for Route 44.
const (
	tspTravelTimeMin   = -3.2
	tspImprovementPct  = 12
	tspReliabilityGain = 21
	tspCostK           = 124
	tspEmissionsPct    = -8.2
	tspFuelSavings     = 47300
	tspPassengerHours  = 142
	tspPaybackYears    = 2.6
)

// BudgetM is the capital budget for the 2025-2030 expansion plan.
const BudgetM = 50.0

func round1(v float64) float64 { return math.Round(v*10) / 10 }

// deriveTSP fills savings and improvement for each result.
func deriveTSP(results []model.TSPResult) []model.TSPResult {
	out := make([]model.TSPResult, len(results))
	for i, r := range results {
		r.SavingsMin = round1(r.BeforeMin - r.AfterMin)
		if r.BeforeMin > 0 {
			r.ImprovementPct = int(math.Round((r.BeforeMin - r.AfterMin) / r.BeforeMin * 100))
		}
		out[i] = r
	}
	return out
}

func simulateTSP(results []model.TSPResult, stats model.DelayStats) model.TSPSimulation {
	return model.TSPSimulation{
		Results:          deriveTSP(results),
		TravelTimeMin:    tspTravelTimeMin,
		ImprovementPct:   tspImprovementPct,
		ReliabilityScore: stats.ReliabilityScore + tspReliabilityGain,
		ReliabilityGain:  tspReliabilityGain,
		CostK:            tspCostK,
		EmissionsPct:     tspEmissionsPct,
		FuelSavings:      tspFuelSavings,
		PassengerHours:   tspPassengerHours,
		PaybackYears:     tspPaybackYears,
	}
}

type criterion struct {
	name   string
	value  func(model.Scenario) float64
	format func(model.Scenario) string
	lower  bool // lower is better
}

var criteria = []criterion{
	{
		name:   "Capital Cost",
		value:  func(s model.Scenario) float64 { return s.CapitalCostM },
		format: func(s model.Scenario) string { return fmt.Sprintf("$%.1fM", s.CapitalCostM) },
		lower:  true,
	},
	{
		name:   "Annual Operating Cost",
		value:  func(s model.Scenario) float64 { return s.OperatingCostM },
		format: func(s model.Scenario) string { return fmt.Sprintf("$%.1fM", s.OperatingCostM) },
		lower:  true,
	},
	{
		name:   "Ridership Increase",
		value:  func(s model.Scenario) float64 { return float64(s.RidershipPct) },
		format: func(s model.Scenario) string { return fmt.Sprintf("%+d%%", s.RidershipPct) },
	},
	{
		name:   "CO₂ Reduction",
		value:  func(s model.Scenario) float64 { return float64(s.EmissionsPct) },
		format: func(s model.Scenario) string { return fmt.Sprintf("%+d%%", s.EmissionsPct) },
		lower:  true,
	},
	{
		name:   "Implementation Timeline",
		value:  func(s model.Scenario) float64 { return float64(s.TimelineMonths) },
		format: func(s model.Scenario) string { return fmt.Sprintf("%d months", s.TimelineMonths) },
		lower:  true,
	},
	{
		name:   "Benefit-Cost Ratio",
		value:  func(s model.Scenario) float64 { return s.BenefitCost },
		format: func(s model.Scenario) string { return fmt.Sprintf("%.1f:1", s.BenefitCost) },
	},
}

// compare builds the side-by-side table. Best is -1 when there are no
// scenarios; ties go to the earlier scenario.
func compare(scenarios []model.Scenario) []model.ComparisonRow {
	rows := make([]model.ComparisonRow, 0, len(criteria))
	for _, c := range criteria {
		row := model.ComparisonRow{Criterion: c.name, Best: -1}
		for i, s := range scenarios {
			row.Values = append(row.Values, c.format(s))
			if row.Best < 0 {
				row.Best = i
				continue
			}
			v, best := c.value(s), c.value(scenarios[row.Best])
			if (c.lower && v < best) || (!c.lower && v > best) {
				row.Best = i
			}
		}
		rows = append(rows, row)
	}
	return rows
}

func budget(scenarios []model.Scenario) model.BudgetSummary {
	sum := model.BudgetSummary{BudgetM: BudgetM, RemainingM: BudgetM}
	for _, s := range scenarios {
		if s.Recommended {
			sum.Recommended = s.ID
			sum.CostM = s.CapitalCostM
			sum.RemainingM = round1(BudgetM - s.CapitalCostM)
			break
		}
	}
	return sum
}
