// Package report builds report previews and acknowledges report downloads.
// No report file is ever rendered; an export is an acknowledgment only.
package report

import (
	"fmt"
	"strings"
	"sync"
	"time"

	"github.com/google/uuid"

	"github.com/mobilityiq/mobilityiq/internal/model"
)

// DefaultHistory is how many acknowledgments Recent keeps.
const DefaultHistory = 20

// Exporter validates export requests and remembers recent acknowledgments.
type Exporter struct {
	mu      sync.Mutex
	recent  []model.ExportAck
	history int
	now     func() time.Time
}

// NewExporter returns an exporter keeping up to history acknowledgments.
// A non-positive history uses DefaultHistory.
func NewExporter(history int) *Exporter {
	if history <= 0 {
		history = DefaultHistory
	}
	return &Exporter{history: history, now: time.Now}
}

// Export checks req against the known templates and returns an
// acknowledgment carrying the message shown to the user.
func (e *Exporter) Export(req model.ExportRequest, templates []model.ReportTemplate) (model.ExportAck, error) {
	format, err := ParseFormat(req.Format)
	if err != nil {
		return model.ExportAck{}, err
	}
	if !hasTemplate(templates, req.Template) {
		return model.ExportAck{}, fmt.Errorf("%w: %q", ErrUnknownTemplate, req.Template)
	}
	set, err := ParseSections(req.Sections)
	if err != nil {
		return model.ExportAck{}, err
	}

	ack := model.ExportAck{
		ID:        uuid.NewString(),
		Format:    format.String(),
		Template:  req.Template,
		Sections:  set.IDs(),
		Message:   DownloadMessage(format),
		CreatedAt: e.now().UTC(),
	}

	e.mu.Lock()
	e.recent = append(e.recent, ack)
	if len(e.recent) > e.history {
		e.recent = e.recent[len(e.recent)-e.history:]
	}
	e.mu.Unlock()

	return ack, nil
}

// Recent returns the remembered acknowledgments, newest first.
func (e *Exporter) Recent() []model.ExportAck {
	e.mu.Lock()
	defer e.mu.Unlock()

	out := make([]model.ExportAck, len(e.recent))
	for i, a := range e.recent {
		out[len(e.recent)-1-i] = a
	}
	return out
}

// DownloadMessage is the acknowledgment text for a download.
func DownloadMessage(f Format) string {
	return "Report downloaded as " + strings.ToUpper(f.String())
}

// PreviewMessage is the acknowledgment text for a preview refresh.
const PreviewMessage = "Report preview updated"

func hasTemplate(templates []model.ReportTemplate, id string) bool {
	for _, t := range templates {
		if t.ID == id {
			return true
		}
	}
	return false
}
