package tui

import (
	"errors"
	"fmt"
	"os"
	"path/filepath"

	"github.com/charmbracelet/lipgloss"
	"gopkg.in/yaml.v3"
)

// Palette colors. InitializeSkin may override them.
var (
	ColorNavy   = lipgloss.Color("#1E3A5F")
	ColorBlue   = lipgloss.Color("#2196F3")
	ColorGreen  = lipgloss.Color("#4CAF50")
	ColorOrange = lipgloss.Color("#FF9800")
	ColorRed    = lipgloss.Color("#F44336")
	ColorGray   = lipgloss.Color("#8A8F98")
	ColorWhite  = lipgloss.Color("#FFFFFF")
	ColorPurple = lipgloss.Color("#9C27B0")
)

// Skin is the on-disk color override file. Empty fields keep the default.
type Skin struct {
	Name   string `yaml:"name"`
	Colors struct {
		Navy   string `yaml:"navy"`
		Blue   string `yaml:"blue"`
		Green  string `yaml:"green"`
		Orange string `yaml:"orange"`
		Red    string `yaml:"red"`
		Gray   string `yaml:"gray"`
		White  string `yaml:"white"`
		Purple string `yaml:"purple"`
	} `yaml:"colors"`
}

// InitializeSkin loads <configDir>/skins/<name>.yml and applies it. The
// "default" skin and an empty name keep the built-in palette.
func InitializeSkin(name, configDir string) error {
	if name == "" || name == "default" {
		return nil
	}
	path := filepath.Join(configDir, "skins", name+".yml")
	data, err := os.ReadFile(path)
	if err != nil {
		if errors.Is(err, os.ErrNotExist) {
			return fmt.Errorf("skin %q not found at %s", name, path)
		}
		return err
	}
	var skin Skin
	if err := yaml.Unmarshal(data, &skin); err != nil {
		return fmt.Errorf("parsing skin %s: %w", path, err)
	}
	ApplySkin(skin)
	return nil
}

// ApplySkin overrides the palette with the skin's non-empty colors.
func ApplySkin(s Skin) {
	set := func(dst *lipgloss.Color, v string) {
		if v != "" {
			*dst = lipgloss.Color(v)
		}
	}
	set(&ColorNavy, s.Colors.Navy)
	set(&ColorBlue, s.Colors.Blue)
	set(&ColorGreen, s.Colors.Green)
	set(&ColorOrange, s.Colors.Orange)
	set(&ColorRed, s.Colors.Red)
	set(&ColorGray, s.Colors.Gray)
	set(&ColorWhite, s.Colors.White)
	set(&ColorPurple, s.Colors.Purple)
}

func severityColor(severity string) lipgloss.Color {
	switch severity {
	case "high", "High", "Major Delay":
		return ColorRed
	case "medium", "Medium", "Minor Delay":
		return ColorOrange
	default:
		return ColorGreen
	}
}

func titleStyle() lipgloss.Style {
	return lipgloss.NewStyle().Bold(true).Foreground(ColorBlue)
}

func mutedStyle() lipgloss.Style {
	return lipgloss.NewStyle().Foreground(ColorGray)
}

func panelStyle(width int) lipgloss.Style {
	return lipgloss.NewStyle().
		Width(width).
		Border(lipgloss.RoundedBorder()).
		BorderForeground(ColorGray).
		Padding(0, 1)
}
