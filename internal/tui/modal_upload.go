package tui

import (
	"context"
	"fmt"
	"path/filepath"
	"strings"
	"time"

	"github.com/charmbracelet/bubbles/filepicker"
	"github.com/charmbracelet/bubbles/spinner"
	"github.com/charmbracelet/bubbles/textinput"
	tea "github.com/charmbracelet/bubbletea"
	"github.com/charmbracelet/lipgloss"

	"github.com/mobilityiq/mobilityiq/internal/session"
	"github.com/mobilityiq/mobilityiq/internal/upload"
)

const uploadReadTimeout = 30 * time.Second

type uploadSlot int

const (
	slotGPS uploadSlot = iota
	slotCrashes
	slotStopTimes
)

func (s uploadSlot) label() string {
	switch s {
	case slotCrashes:
		return upload.CrashesFile
	case slotStopTimes:
		return upload.STFile
	default:
		return upload.GPSFile
	}
}

// filesReadMsg carries the result of reading the selected files.
type filesReadMsg struct {
	dataset session.Dataset
	err     error
}

// UploadModal collects GPS.txt, crashes.txt and ST.txt either one by one
// through a file picker or all at once from a directory.
type UploadModal struct {
	picker   filepicker.Model
	dirInput textinput.Model
	spinner  spinner.Model

	paths    upload.Paths
	slot     uploadSlot
	dirMode  bool
	reading  bool
	err      error
	readFunc func(ctx context.Context, p upload.Paths) (session.Dataset, error)
}

// NewUploadModal opens the picker in dir.
func NewUploadModal(dir string) *UploadModal {
	fp := filepicker.New()
	fp.AllowedTypes = []string{".txt"}
	fp.CurrentDirectory = dir
	fp.Height = 10

	ti := textinput.New()
	ti.Placeholder = "directory containing GPS.txt, crashes.txt and ST.txt"
	ti.SetValue(dir)
	ti.CharLimit = 512

	sp := spinner.New()
	sp.Spinner = spinner.Dot

	return &UploadModal{
		picker:   fp,
		dirInput: ti,
		spinner:  sp,
		readFunc: upload.ReadFiles,
	}
}

func (u *UploadModal) ID() string { return "upload" }

func (u *UploadModal) Init() tea.Cmd {
	return u.picker.Init()
}

func (u *UploadModal) Update(msg tea.Msg) (bool, tea.Cmd) {
	switch msg := msg.(type) {
	case filesReadMsg:
		u.reading = false
		if msg.err != nil {
			u.err = msg.err
			return false, nil
		}
		ds := msg.dataset
		return true, func() tea.Msg { return datasetReadyMsg{dataset: ds} }

	case spinner.TickMsg:
		if !u.reading {
			return false, nil
		}
		var cmd tea.Cmd
		u.spinner, cmd = u.spinner.Update(msg)
		return false, cmd

	case tea.KeyMsg:
		return u.handleKey(msg)
	}

	var cmd tea.Cmd
	u.picker, cmd = u.picker.Update(msg)
	return false, cmd
}

func (u *UploadModal) handleKey(msg tea.KeyMsg) (bool, tea.Cmd) {
	if u.reading {
		return false, nil
	}
	switch msg.String() {
	case "esc":
		return true, nil
	case "tab":
		u.dirMode = !u.dirMode
		if u.dirMode {
			return false, u.dirInput.Focus()
		}
		u.dirInput.Blur()
		return false, nil
	}

	if u.dirMode {
		if msg.String() == "enter" {
			dir := strings.TrimSpace(u.dirInput.Value())
			if dir == "" {
				return false, nil
			}
			u.paths = upload.DirPaths(dir)
			return false, u.read()
		}
		var cmd tea.Cmd
		u.dirInput, cmd = u.dirInput.Update(msg)
		return false, cmd
	}

	switch msg.String() {
	case "1":
		u.slot = slotGPS
		return false, nil
	case "2":
		u.slot = slotCrashes
		return false, nil
	case "3":
		u.slot = slotStopTimes
		return false, nil
	case "x":
		u.paths = upload.Paths{}
		u.slot = slotGPS
		u.err = nil
		return false, nil
	case "p":
		if !u.paths.Complete() {
			u.err = fmt.Errorf("%w: missing %s", upload.ErrIncomplete, strings.Join(u.paths.Missing(), ", "))
			return false, nil
		}
		return false, u.read()
	}

	var cmd tea.Cmd
	u.picker, cmd = u.picker.Update(msg)
	if ok, path := u.picker.DidSelectFile(msg); ok {
		u.assign(path)
	}
	return false, cmd
}

// assign files path by name, falling back to the focused slot, then moves
// focus to the next empty slot.
func (u *UploadModal) assign(path string) {
	u.err = nil
	if !u.paths.Assign(path) {
		switch u.slot {
		case slotGPS:
			u.paths.GPS = path
		case slotCrashes:
			u.paths.Crashes = path
		case slotStopTimes:
			u.paths.StopTimes = path
		}
	}
	for _, s := range []uploadSlot{slotGPS, slotCrashes, slotStopTimes} {
		if u.slotPath(s) == "" {
			u.slot = s
			return
		}
	}
}

func (u *UploadModal) slotPath(s uploadSlot) string {
	switch s {
	case slotCrashes:
		return u.paths.Crashes
	case slotStopTimes:
		return u.paths.StopTimes
	default:
		return u.paths.GPS
	}
}

func (u *UploadModal) read() tea.Cmd {
	u.reading = true
	u.err = nil
	paths := u.paths
	read := u.readFunc
	return tea.Batch(u.spinner.Tick, func() tea.Msg {
		ctx, cancel := context.WithTimeout(context.Background(), uploadReadTimeout)
		defer cancel()
		ds, err := read(ctx, paths)
		return filesReadMsg{dataset: ds, err: err}
	})
}

func (u *UploadModal) View(width, height int) string {
	var b strings.Builder

	for _, s := range []uploadSlot{slotGPS, slotCrashes, slotStopTimes} {
		mark := lipgloss.NewStyle().Foreground(ColorRed).Render("✗")
		path := mutedStyle().Render("not selected")
		if p := u.slotPath(s); p != "" {
			mark = lipgloss.NewStyle().Foreground(ColorGreen).Render("✓")
			path = filepath.Clean(p)
		}
		label := fmt.Sprintf("%d. %-12s", int(s)+1, s.label())
		if s == u.slot && !u.dirMode {
			label = lipgloss.NewStyle().Bold(true).Foreground(ColorBlue).Render(label)
		}
		fmt.Fprintf(&b, "%s %s %s\n", mark, label, path)
	}
	b.WriteString("\n")

	switch {
	case u.reading:
		b.WriteString(u.spinner.View() + " Reading files...\n")
	case u.dirMode:
		b.WriteString(titleStyle().Render("Directory") + "\n")
		b.WriteString(u.dirInput.View() + "\n")
	default:
		b.WriteString(titleStyle().Render(u.picker.CurrentDirectory) + "\n")
		b.WriteString(u.picker.View() + "\n")
	}

	if u.err != nil {
		b.WriteString("\n" + lipgloss.NewStyle().Foreground(ColorRed).Render(u.err.Error()) + "\n")
	}

	hints := []string{"enter: Select", "1/2/3: Slot", "p: Process", "x: Clear", "tab: Directory", "ESC: Cancel"}
	if u.dirMode {
		hints = []string{"enter: Read directory", "tab: File picker", "ESC: Cancel"}
	}
	return renderModalFrame("Upload Network", b.String(), hints, width, height)
}
