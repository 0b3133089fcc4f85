// Package design implements the bike lane sketchpad: drawn segments along a
// corridor and the safety and cost estimate they imply.
package design

import (
	"errors"
	"fmt"
	"math"
	"sync"

	"github.com/mobilityiq/mobilityiq/internal/model"
)

// Corridor geometry in miles.
const (
	SegmentMiles  = 0.3
	BaseMiles     = 2.4
	CorridorMiles = 6.0
)

// MaxSegments bounds a sketch. Estimates for larger counts are clamped.
const MaxSegments = 1000

var (
	// ErrUnknownLane is returned for lane type names outside the fixed set.
	ErrUnknownLane = errors.New("unknown lane type")
	// ErrTooManySegments is returned for segment counts above MaxSegments.
	ErrTooManySegments = errors.New("segment count out of range")
)

// LaneType is the protection style applied to drawn segments.
type LaneType uint8

const (
	LaneCycleTrack LaneType = iota
	LaneParkingProtected
	LaneRaised
)

var laneNames = []string{"cycle-track", "parking-protected", "raised"}
var laneLabels = []string{"Cycle Track", "Parking-Protected", "Raised Lane"}

// LaneTypes returns every lane type in display order.
func LaneTypes() []LaneType {
	return []LaneType{LaneCycleTrack, LaneParkingProtected, LaneRaised}
}

func (l LaneType) String() string {
	if int(l) < len(laneNames) {
		return laneNames[l]
	}
	return fmt.Sprintf("LaneType(%d)", uint8(l))
}

// Label is the display name.
func (l LaneType) Label() string {
	if int(l) < len(laneLabels) {
		return laneLabels[l]
	}
	return l.String()
}

// ParseLaneType maps a lane name to a LaneType.
func ParseLaneType(name string) (LaneType, error) {
	for i, n := range laneNames {
		if n == name {
			return LaneType(i), nil
		}
	}
	return 0, fmt.Errorf("%w: %q", ErrUnknownLane, name)
}

// EstimateFor returns the readout for n drawn segments. Every figure is
// non-decreasing in n; crash reduction, safety score and coverage have
// ceilings. n is clamped to [0, MaxSegments].
func EstimateFor(n int) model.BikeEstimate {
	n = max(0, min(n, MaxSegments))
	length := round1(BaseMiles + SegmentMiles*float64(n))
	construction := 486 + 120*n
	signage := 24 + 8*n
	signals := 67 + 15*n
	total := construction + signage + signals

	return model.BikeEstimate{
		Segments:          n,
		TotalMiles:        length,
		CrashReductionPct: min(95, 42+8*n),
		SafetyScore:       min(100, 87+2*n),
		ConstructionK:     construction,
		SignageK:          signage,
		SignalsLightingK:  signals,
		TotalK:            total,
		PerMileK:          int(math.Round(float64(total) / length)),
		Coverage:          math.Min(1, length/CorridorMiles),
	}
}

func round1(v float64) float64 {
	return math.Round(v*10) / 10
}

// Sketch is the mutable drawing state of the designer. It is safe for
// concurrent use.
type Sketch struct {
	mu       sync.Mutex
	lane     LaneType
	segments int
	heatmap  bool
}

// NewSketch returns an empty cycle-track sketch.
func NewSketch() *Sketch {
	return &Sketch{lane: LaneCycleTrack}
}

// Add draws one more segment and returns the new count. It is a no-op at
// MaxSegments.
func (s *Sketch) Add() int {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.segments < MaxSegments {
		s.segments++
	}
	return s.segments
}

// DeleteLast removes the most recent segment. It is a no-op on an empty
// sketch.
func (s *Sketch) DeleteLast() int {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.segments > 0 {
		s.segments--
	}
	return s.segments
}

// Clear removes every segment.
func (s *Sketch) Clear() {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.segments = 0
}

// SetLane changes the lane type for the whole sketch.
func (s *Sketch) SetLane(l LaneType) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.lane = l
}

// ToggleHeatmap flips the crash history overlay and returns its new state.
func (s *Sketch) ToggleHeatmap() bool {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.heatmap = !s.heatmap
	return s.heatmap
}

// Lane returns the selected lane type.
func (s *Sketch) Lane() LaneType {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.lane
}

// Segments returns the number of drawn segments.
func (s *Sketch) Segments() int {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.segments
}

// Heatmap reports whether the crash history overlay is on.
func (s *Sketch) Heatmap() bool {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.heatmap
}

// Estimate returns the readout for the current sketch.
func (s *Sketch) Estimate() model.BikeEstimate {
	return EstimateFor(s.Segments())
}
