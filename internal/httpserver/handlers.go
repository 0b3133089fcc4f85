package httpserver

import (
	"errors"
	"fmt"
	"io"
	"mime/multipart"
	"net/http"
	"strconv"
	"time"

	"github.com/gin-gonic/gin"

	"github.com/mobilityiq/mobilityiq/internal/design"
	"github.com/mobilityiq/mobilityiq/internal/model"
	"github.com/mobilityiq/mobilityiq/internal/report"
	"github.com/mobilityiq/mobilityiq/internal/session"
	"github.com/mobilityiq/mobilityiq/internal/upload"
)

// statusFor maps a planner error onto an HTTP status.
func statusFor(err error) int {
	switch {
	case errors.Is(err, session.ErrUnknownScreen),
		errors.Is(err, session.ErrUnknownMode),
		errors.Is(err, report.ErrUnknownFormat),
		errors.Is(err, report.ErrUnknownTemplate),
		errors.Is(err, report.ErrUnknownSection),
		errors.Is(err, design.ErrTooManySegments):
		return http.StatusBadRequest
	case errors.Is(err, upload.ErrIncomplete):
		return http.StatusUnprocessableEntity
	default:
		return http.StatusInternalServerError
	}
}

func (s *Server) fail(c *gin.Context, err error) {
	_ = c.Error(err)
	status := statusFor(err)
	msg := err.Error()
	if status == http.StatusInternalServerError {
		msg = "internal error"
	}
	c.JSON(status, gin.H{"error": msg})
}

func (s *Server) handleHealth(c *gin.Context) {
	nav, err := s.api.Navigation()
	if err != nil {
		s.fail(c, err)
		return
	}
	network, err := s.api.Network()
	if err != nil {
		s.fail(c, err)
		return
	}
	c.JSON(http.StatusOK, gin.H{
		"status":      "ok",
		"uptime":      time.Since(s.startTime).String(),
		"screen":      nav.Active,
		"active_mode": network.ActiveMode,
	})
}

func (s *Server) handleGetNavigation(c *gin.Context) {
	st, err := s.api.Navigation()
	if err != nil {
		s.fail(c, err)
		return
	}
	c.JSON(http.StatusOK, st)
}

func (s *Server) handleNavigate(c *gin.Context) {
	var req struct {
		Screen string `json:"screen" binding:"required"`
	}
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "invalid JSON body or missing screen field"})
		return
	}
	screen, err := session.ParseScreen(req.Screen)
	if err != nil {
		s.fail(c, err)
		return
	}
	st, err := s.api.Navigate(screen)
	if err != nil {
		s.fail(c, err)
		return
	}
	c.JSON(http.StatusOK, st)
}

func (s *Server) handleBack(c *gin.Context) {
	st, err := s.api.Back()
	if err != nil {
		s.fail(c, err)
		return
	}
	c.JSON(http.StatusOK, st)
}

func (s *Server) handleGetNetwork(c *gin.Context) {
	st, err := s.api.Network()
	if err != nil {
		s.fail(c, err)
		return
	}
	c.JSON(http.StatusOK, st)
}

// handleUpload accepts either a multipart form with gps, crashes and st
// files or a JSON body with the same keys.
func (s *Server) handleUpload(c *gin.Context) {
	var ds session.Dataset
	if c.ContentType() == "multipart/form-data" {
		var err error
		ds, err = datasetFromForm(c)
		if err != nil {
			s.fail(c, err)
			return
		}
	} else if err := c.ShouldBindJSON(&ds); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "invalid JSON body"})
		return
	}

	st, err := s.api.AcceptUpload(ds)
	if err != nil {
		s.fail(c, err)
		return
	}
	c.JSON(http.StatusOK, st)
}

func datasetFromForm(c *gin.Context) (session.Dataset, error) {
	var ds session.Dataset
	for _, f := range []struct {
		field string
		name  string
		dst   *string
	}{
		{"gps", upload.GPSFile, &ds.GPS},
		{"crashes", upload.CrashesFile, &ds.Crashes},
		{"st", upload.STFile, &ds.StopTimes},
	} {
		fh, err := c.FormFile(f.field)
		if err != nil {
			return session.Dataset{}, fmt.Errorf("upload: %w: missing %s", upload.ErrIncomplete, f.name)
		}
		text, err := readFormFile(fh)
		if err != nil {
			return session.Dataset{}, err
		}
		*f.dst = text
	}
	return ds, nil
}

func readFormFile(fh *multipart.FileHeader) (string, error) {
	if fh.Size > upload.MaxFileSize {
		return "", fmt.Errorf("upload: %w: %s exceeds size limit", upload.ErrIncomplete, fh.Filename)
	}
	f, err := fh.Open()
	if err != nil {
		return "", fmt.Errorf("upload: open %s: %w", fh.Filename, err)
	}
	defer f.Close()
	data, err := io.ReadAll(io.LimitReader(f, upload.MaxFileSize))
	if err != nil {
		return "", fmt.Errorf("upload: read %s: %w", fh.Filename, err)
	}
	return string(data), nil
}

func (s *Server) handleSetMode(c *gin.Context) {
	var req struct {
		Mode string `json:"mode" binding:"required"`
	}
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "invalid JSON body or missing mode field"})
		return
	}
	mode, err := session.ParseMode(req.Mode)
	if err != nil {
		s.fail(c, err)
		return
	}
	st, err := s.api.SetMode(mode)
	if err != nil {
		s.fail(c, err)
		return
	}
	c.JSON(http.StatusOK, st)
}

func (s *Server) handleToggle(c *gin.Context) {
	st, err := s.api.ToggleMode()
	if err != nil {
		s.fail(c, err)
		return
	}
	c.JSON(http.StatusOK, st)
}

func (s *Server) handleDashboard(c *gin.Context) {
	view, err := s.api.Dashboard()
	if err != nil {
		s.fail(c, err)
		return
	}
	c.JSON(http.StatusOK, view)
}

func (s *Server) handleAlerts(c *gin.Context) {
	alerts, err := s.api.AllAlerts()
	if err != nil {
		s.fail(c, err)
		return
	}
	c.JSON(http.StatusOK, gin.H{"alerts": alerts})
}

func (s *Server) handleRoutes(c *gin.Context) {
	view, err := s.api.Dashboard()
	if err != nil {
		s.fail(c, err)
		return
	}
	c.JSON(http.StatusOK, gin.H{"routes": view.Routes})
}

func (s *Server) handleCorridor(c *gin.Context) {
	view, err := s.api.Corridor()
	if err != nil {
		s.fail(c, err)
		return
	}
	c.JSON(http.StatusOK, view)
}

func (s *Server) handleTSP(c *gin.Context) {
	sim, err := s.api.TSPSimulation()
	if err != nil {
		s.fail(c, err)
		return
	}
	c.JSON(http.StatusOK, sim)
}

func (s *Server) handleBikeEstimate(c *gin.Context) {
	n := 0
	if raw := c.Query("segments"); raw != "" {
		v, err := strconv.Atoi(raw)
		if err != nil || v < 0 || v > design.MaxSegments {
			c.JSON(http.StatusBadRequest, gin.H{"error": fmt.Sprintf("segments must be an integer between 0 and %d", design.MaxSegments)})
			return
		}
		n = v
	}
	est, err := s.api.BikeEstimate(n)
	if err != nil {
		s.fail(c, err)
		return
	}
	c.JSON(http.StatusOK, est)
}

func (s *Server) handleScenarios(c *gin.Context) {
	board, err := s.api.ScenarioBoard()
	if err != nil {
		s.fail(c, err)
		return
	}
	c.JSON(http.StatusOK, board)
}

func (s *Server) handleTemplates(c *gin.Context) {
	tpls, err := s.api.ReportTemplates()
	if err != nil {
		s.fail(c, err)
		return
	}
	formats := make([]gin.H, 0, len(report.Formats()))
	for _, f := range report.Formats() {
		formats = append(formats, gin.H{"id": f.String(), "label": f.Label()})
	}
	sections := make([]gin.H, 0, len(report.Sections()))
	for _, sec := range report.Sections() {
		sections = append(sections, gin.H{"id": sec.ID, "label": sec.Label, "default": sec.On})
	}
	c.JSON(http.StatusOK, gin.H{
		"templates": tpls,
		"formats":   formats,
		"sections":  sections,
	})
}

func (s *Server) handleExport(c *gin.Context) {
	var req model.ExportRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "invalid JSON body"})
		return
	}
	ack, err := s.api.ExportReport(req)
	if err != nil {
		s.fail(c, err)
		return
	}
	c.JSON(http.StatusOK, ack)
}

func (s *Server) handleRecentExports(c *gin.Context) {
	recent, err := s.api.RecentExports()
	if err != nil {
		s.fail(c, err)
		return
	}
	if recent == nil {
		recent = []model.ExportAck{}
	}
	c.JSON(http.StatusOK, gin.H{"exports": recent})
}
