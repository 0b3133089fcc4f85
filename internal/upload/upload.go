// Package upload collects the three text files that make up a user-supplied
// network. Contents are read verbatim; nothing is parsed.
package upload

import (
	"context"
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"strings"

	"github.com/dustin/go-humanize"
	"golang.org/x/sync/errgroup"

	"github.com/mobilityiq/mobilityiq/internal/session"
)

// Conventional file names inside an upload directory.
const (
	GPSFile     = "GPS.txt"
	CrashesFile = "crashes.txt"
	STFile      = "ST.txt"
)

// ErrIncomplete is returned when any of the three files is missing or empty.
var ErrIncomplete = errors.New("upload incomplete")

// MaxFileSize caps each file. Larger files are rejected rather than read.
const MaxFileSize = 64 << 20

// Paths names the three files of one upload.
type Paths struct {
	GPS       string
	Crashes   string
	StopTimes string
}

// Missing returns the conventional names of the unset paths.
func (p Paths) Missing() []string {
	var out []string
	if p.GPS == "" {
		out = append(out, GPSFile)
	}
	if p.Crashes == "" {
		out = append(out, CrashesFile)
	}
	if p.StopTimes == "" {
		out = append(out, STFile)
	}
	return out
}

// Complete reports whether all three paths are set.
func (p Paths) Complete() bool { return len(p.Missing()) == 0 }

// Assign places path in the slot matching its base name, ignoring case.
// It reports whether the name was recognised.
func (p *Paths) Assign(path string) bool {
	switch strings.ToLower(filepath.Base(path)) {
	case strings.ToLower(GPSFile):
		p.GPS = path
	case strings.ToLower(CrashesFile):
		p.Crashes = path
	case strings.ToLower(STFile):
		p.StopTimes = path
	default:
		return false
	}
	return true
}

// DirPaths returns the conventional paths inside dir.
func DirPaths(dir string) Paths {
	return Paths{
		GPS:       filepath.Join(dir, GPSFile),
		Crashes:   filepath.Join(dir, CrashesFile),
		StopTimes: filepath.Join(dir, STFile),
	}
}

// ReadDir reads GPS.txt, crashes.txt and ST.txt from dir.
func ReadDir(ctx context.Context, dir string) (session.Dataset, error) {
	return ReadFiles(ctx, DirPaths(dir))
}

// ReadFiles reads the three files concurrently. Any missing or empty file
// fails the whole upload with ErrIncomplete.
func ReadFiles(ctx context.Context, p Paths) (session.Dataset, error) {
	if missing := p.Missing(); len(missing) > 0 {
		return session.Dataset{}, fmt.Errorf("upload: %w: missing %s", ErrIncomplete, strings.Join(missing, ", "))
	}

	var ds session.Dataset
	g, gctx := errgroup.WithContext(ctx)
	for _, job := range []struct {
		path string
		dst  *string
	}{
		{p.GPS, &ds.GPS},
		{p.Crashes, &ds.Crashes},
		{p.StopTimes, &ds.StopTimes},
	} {
		job := job
		g.Go(func() error {
			text, err := readOne(gctx, job.path)
			if err != nil {
				return err
			}
			*job.dst = text
			return nil
		})
	}
	if err := g.Wait(); err != nil {
		return session.Dataset{}, err
	}
	return ds, nil
}

func readOne(ctx context.Context, path string) (string, error) {
	if err := ctx.Err(); err != nil {
		return "", err
	}
	info, err := os.Stat(path)
	if errors.Is(err, os.ErrNotExist) {
		return "", fmt.Errorf("upload: %w: %s not found", ErrIncomplete, filepath.Base(path))
	}
	if err != nil {
		return "", fmt.Errorf("upload: stat %s: %w", path, err)
	}
	if info.IsDir() {
		return "", fmt.Errorf("upload: %s is a directory", path)
	}
	if info.Size() > MaxFileSize {
		return "", fmt.Errorf("upload: %s is %s, limit is %s",
			filepath.Base(path), humanize.Bytes(uint64(info.Size())), humanize.Bytes(MaxFileSize))
	}
	data, err := os.ReadFile(path)
	if err != nil {
		return "", fmt.Errorf("upload: read %s: %w", path, err)
	}
	if len(data) == 0 {
		return "", fmt.Errorf("upload: %w: %s is empty", ErrIncomplete, filepath.Base(path))
	}
	return string(data), nil
}

// Validate checks that every blob of d is non-empty.
func Validate(d session.Dataset) error {
	var empty []string
	if d.GPS == "" {
		empty = append(empty, GPSFile)
	}
	if d.Crashes == "" {
		empty = append(empty, CrashesFile)
	}
	if d.StopTimes == "" {
		empty = append(empty, STFile)
	}
	if len(empty) > 0 {
		return fmt.Errorf("upload: %w: empty %s", ErrIncomplete, strings.Join(empty, ", "))
	}
	return nil
}

// FileStat describes one blob of an upload.
type FileStat struct {
	Name  string
	Bytes int
	Lines int
}

func (f FileStat) String() string {
	return fmt.Sprintf("%s (%s, %s lines)", f.Name, humanize.Bytes(uint64(f.Bytes)), humanize.Comma(int64(f.Lines)))
}

// Summarize returns per-file sizes and line counts.
func Summarize(d session.Dataset) []FileStat {
	return []FileStat{
		stat(GPSFile, d.GPS),
		stat(CrashesFile, d.Crashes),
		stat(STFile, d.StopTimes),
	}
}

func stat(name, text string) FileStat {
	lines := strings.Count(text, "\n")
	if text != "" && !strings.HasSuffix(text, "\n") {
		lines++
	}
	return FileStat{Name: name, Bytes: len(text), Lines: lines}
}
