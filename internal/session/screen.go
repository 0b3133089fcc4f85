package session

import (
	"errors"
	"fmt"
)

// ErrUnknownScreen is returned when a screen name is not one of the five
// top-level views.
var ErrUnknownScreen = errors.New("unknown screen")

// Screen identifies a top-level view. The zero value is ScreenDashboard.
type Screen uint8

const (
	ScreenDashboard Screen = iota
	ScreenCorridor
	ScreenBike
	ScreenScenario
	ScreenReports

	screenCount
)

var screenNames = [screenCount]string{
	ScreenDashboard: "dashboard",
	ScreenCorridor:  "corridor",
	ScreenBike:      "bike",
	ScreenScenario:  "scenario",
	ScreenReports:   "reports",
}

var screenTitles = [screenCount]string{
	ScreenDashboard: "Dashboard",
	ScreenCorridor:  "Corridor Analysis",
	ScreenBike:      "Bike Infrastructure",
	ScreenScenario:  "Scenario Planning",
	ScreenReports:   "Reports",
}

// Screens returns every screen in sidebar order.
func Screens() []Screen {
	out := make([]Screen, 0, screenCount)
	for s := Screen(0); s < screenCount; s++ {
		out = append(out, s)
	}
	return out
}

// Valid reports whether s is one of the declared screens.
func (s Screen) Valid() bool { return s < screenCount }

func (s Screen) String() string {
	if !s.Valid() {
		return fmt.Sprintf("Screen(%d)", uint8(s))
	}
	return screenNames[s]
}

// Title is the label shown in the sidebar.
func (s Screen) Title() string {
	if !s.Valid() {
		return s.String()
	}
	return screenTitles[s]
}

// ParseScreen maps a wire name ("corridor") to its Screen.
func ParseScreen(name string) (Screen, error) {
	for i, n := range screenNames {
		if n == name {
			return Screen(i), nil
		}
	}
	return 0, fmt.Errorf("%w: %q", ErrUnknownScreen, name)
}

func (s Screen) MarshalText() ([]byte, error) {
	if !s.Valid() {
		return nil, fmt.Errorf("%w: %d", ErrUnknownScreen, uint8(s))
	}
	return []byte(screenNames[s]), nil
}

func (s *Screen) UnmarshalText(text []byte) error {
	parsed, err := ParseScreen(string(text))
	if err != nil {
		return err
	}
	*s = parsed
	return nil
}
