package report

import (
	"errors"
	"fmt"
	"strings"
)

var (
	ErrUnknownFormat   = errors.New("unknown export format")
	ErrUnknownTemplate = errors.New("unknown report template")
	ErrUnknownSection  = errors.New("unknown report section")
)

// Format is an export file type.
type Format uint8

const (
	FormatPDF Format = iota
	FormatPowerPoint
	FormatExcel
)

var formatNames = []string{"pdf", "powerpoint", "excel"}
var formatLabels = []string{"PDF Document", "PowerPoint", "Excel Workbook"}

// Formats returns every export format in display order.
func Formats() []Format { return []Format{FormatPDF, FormatPowerPoint, FormatExcel} }

func (f Format) String() string {
	if int(f) < len(formatNames) {
		return formatNames[f]
	}
	return fmt.Sprintf("Format(%d)", uint8(f))
}

// Label is the option caption.
func (f Format) Label() string {
	if int(f) < len(formatLabels) {
		return formatLabels[f]
	}
	return f.String()
}

// ParseFormat maps a format tag to a Format. Matching ignores case.
func ParseFormat(name string) (Format, error) {
	lower := strings.ToLower(name)
	for i, n := range formatNames {
		if n == lower {
			return Format(i), nil
		}
	}
	return 0, fmt.Errorf("%w: %q", ErrUnknownFormat, name)
}

// Section is an optional block of the report body.
type Section struct {
	ID    string
	Label string
	On    bool // included by default
}

var sections = []Section{
	{ID: "summary", Label: "Executive Summary", On: true},
	{ID: "metrics", Label: "Key Metrics", On: true},
	{ID: "maps", Label: "Maps & Visualizations", On: true},
	{ID: "charts", Label: "Data Charts", On: true},
	{ID: "recommendations", Label: "Recommendations", On: true},
	{ID: "appendix", Label: "Technical Appendix", On: false},
}

// Sections returns the section catalog in display order.
func Sections() []Section {
	out := make([]Section, len(sections))
	copy(out, sections)
	return out
}

// SectionSet records which sections are included.
type SectionSet map[string]bool

// DefaultSections returns the sections that start checked.
func DefaultSections() SectionSet {
	set := make(SectionSet, len(sections))
	for _, s := range sections {
		set[s.ID] = s.On
	}
	return set
}

// ParseSections builds a set from section IDs. An empty list yields the
// defaults.
func ParseSections(ids []string) (SectionSet, error) {
	if len(ids) == 0 {
		return DefaultSections(), nil
	}
	set := make(SectionSet, len(sections))
	for _, s := range sections {
		set[s.ID] = false
	}
	for _, id := range ids {
		if _, ok := set[id]; !ok {
			return nil, fmt.Errorf("%w: %q", ErrUnknownSection, id)
		}
		set[id] = true
	}
	return set, nil
}

// IDs returns the included section IDs in catalog order.
func (s SectionSet) IDs() []string {
	var ids []string
	for _, sec := range sections {
		if s[sec.ID] {
			ids = append(ids, sec.ID)
		}
	}
	return ids
}

// Toggle flips one section.
func (s SectionSet) Toggle(id string) {
	if _, ok := s[id]; ok {
		s[id] = !s[id]
	}
}
