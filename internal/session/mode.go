package session

import (
	"errors"
	"fmt"
)

// ErrUnknownMode is returned when a network mode name is neither
// "original" nor "uploaded".
var ErrUnknownMode = errors.New("unknown network mode")

// Mode selects which dataset drives the metric displays.
type Mode uint8

const (
	ModeOriginal Mode = iota
	ModeUploaded
)

func (m Mode) String() string {
	switch m {
	case ModeOriginal:
		return "original"
	case ModeUploaded:
		return "uploaded"
	default:
		return fmt.Sprintf("Mode(%d)", uint8(m))
	}
}

// Label is the toggle caption.
func (m Mode) Label() string {
	switch m {
	case ModeUploaded:
		return "Uploaded"
	default:
		return "Original"
	}
}

// ParseMode maps "original" / "uploaded" to a Mode.
func ParseMode(name string) (Mode, error) {
	switch name {
	case "original":
		return ModeOriginal, nil
	case "uploaded":
		return ModeUploaded, nil
	}
	return 0, fmt.Errorf("%w: %q", ErrUnknownMode, name)
}

func (m Mode) MarshalText() ([]byte, error) {
	if m != ModeOriginal && m != ModeUploaded {
		return nil, fmt.Errorf("%w: %d", ErrUnknownMode, uint8(m))
	}
	return []byte(m.String()), nil
}

func (m *Mode) UnmarshalText(text []byte) error {
	parsed, err := ParseMode(string(text))
	if err != nil {
		return err
	}
	*m = parsed
	return nil
}

// Dataset is a user-supplied network. The three blobs are carried verbatim
// and never inspected here.
type Dataset struct {
	GPS       string `json:"gps"`
	Crashes   string `json:"crashes"`
	StopTimes string `json:"st"`
}
