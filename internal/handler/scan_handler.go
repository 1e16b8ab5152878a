package handler

import (
	"bufio"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"log/slog"
	"strconv"
	"time"

	"github.com/gofiber/fiber/v3"
	"github.com/google/uuid"

	"github.com/devdiary/devdiary/internal/domain"
	"github.com/devdiary/devdiary/internal/export"
	"github.com/devdiary/devdiary/internal/port"
	"github.com/devdiary/devdiary/internal/service"
)

// ScanHandler exposes scan orchestration over HTTP.
type ScanHandler struct {
	svc     *service.ScanService
	history port.HistoryStore
	tracker *JobTracker
	base    service.ScanOptions
}

// NewScanHandler creates a scan handler. history may be nil when the history
// store is disabled.
func NewScanHandler(svc *service.ScanService, history port.HistoryStore, tracker *JobTracker, base service.ScanOptions) *ScanHandler {
	return &ScanHandler{svc: svc, history: history, tracker: tracker, base: base}
}

// Register sets up scan routes.
func (h *ScanHandler) Register(router fiber.Router) {
	router.Post("/scans", h.StartScan)
	router.Get("/scans/:id", h.GetStatus)
	router.Get("/scans/:id/stream", h.StreamSSE)
	router.Get("/history", h.ListHistory)
	router.Get("/history/:id", h.GetResult)
	router.Get("/history/:id/export", h.ExportResult)
	router.Get("/doctor", h.Doctor)
}

type scanRequest struct {
	Mode  string   `json:"mode"`
	Since string   `json:"since,omitempty"`
	To    string   `json:"to,omitempty"`
	Repos []string `json:"repos,omitempty"`
}

// StartScan launches an asynchronous scan job and returns its ID.
func (h *ScanHandler) StartScan(c fiber.Ctx) error {
	var req scanRequest
	if err := c.Bind().JSON(&req); err != nil {
		return c.Status(fiber.StatusBadRequest).JSON(fiber.Map{"error": "invalid request"})
	}

	opts := h.base
	opts.Mode = domain.ParseScanMode(req.Mode)
	opts.Since = req.Since
	opts.To = req.To
	if len(req.Repos) > 0 {
		opts.Repos = req.Repos
	}

	jobID := uuid.NewString()
	h.tracker.CreateJob(jobID)

	go h.runScan(jobID, opts)

	return c.Status(fiber.StatusAccepted).JSON(fiber.Map{"job_id": jobID})
}

// runScan executes one scan job in the background, reporting progress to the
// tracker and persisting the result when a history store is configured.
func (h *ScanHandler) runScan(jobID string, opts service.ScanOptions) {
	ctx := context.Background()

	result, err := h.svc.Scan(ctx, opts, func(p domain.ScanProgress) {
		h.tracker.UpdateProgress(jobID, p)
	})
	if err != nil {
		slog.Error("scan job failed", "job_id", jobID, "error", err)
		h.tracker.FinishJob(jobID, "", err.Error())
		return
	}

	resultID := ""
	if h.history != nil {
		resultID, err = h.history.SaveScan(ctx, result)
		if err != nil {
			slog.Error("persist scan failed", "job_id", jobID, "error", err)
			h.tracker.FinishJob(jobID, "", err.Error())
			return
		}
	}
	h.tracker.FinishJob(jobID, resultID, "")
}

// GetStatus returns current job status.
func (h *ScanHandler) GetStatus(c fiber.Ctx) error {
	job, ok := h.tracker.GetJob(c.Params("id"))
	if !ok {
		return c.Status(fiber.StatusNotFound).JSON(fiber.Map{"error": "job not found"})
	}
	return c.JSON(job)
}

// StreamSSE streams job progress via Server-Sent Events.
func (h *ScanHandler) StreamSSE(c fiber.Ctx) error {
	id := c.Params("id")

	job, ok := h.tracker.GetJob(id)
	if !ok {
		return c.Status(fiber.StatusNotFound).JSON(fiber.Map{"error": "job not found"})
	}

	c.Set("Content-Type", "text/event-stream")
	c.Set("Cache-Control", "no-cache")
	c.Set("Connection", "keep-alive")

	// Already terminal: send the final status and stop.
	if job.Status == "complete" || job.Status == "error" {
		data, _ := json.Marshal(job)
		return c.SendString(fmt.Sprintf("event: %s\ndata: %s\n\n", job.Status, string(data)))
	}

	ch := h.tracker.Subscribe(id)

	return c.SendStreamWriter(func(w *bufio.Writer) {
		defer h.tracker.Unsubscribe(id, ch)

		data, _ := json.Marshal(job)
		fmt.Fprintf(w, "event: progress\ndata: %s\n\n", string(data))
		w.Flush()

		timeout := time.After(10 * time.Minute)
		for {
			select {
			case update, ok := <-ch:
				if !ok {
					return
				}
				data, _ := json.Marshal(update)
				eventType := "progress"
				if update.Status == "complete" || update.Status == "error" {
					eventType = update.Status
				}
				fmt.Fprintf(w, "event: %s\ndata: %s\n\n", eventType, string(data))
				w.Flush()

				if update.Status == "complete" || update.Status == "error" {
					return
				}
			case <-timeout:
				slog.Warn("SSE timeout", "job_id", id)
				return
			}
		}
	})
}

// ListHistory returns stored scan records, most recent first.
func (h *ScanHandler) ListHistory(c fiber.Ctx) error {
	if h.history == nil {
		return c.Status(fiber.StatusNotFound).JSON(fiber.Map{"error": "history disabled"})
	}
	limit, _ := strconv.Atoi(c.Query("limit", "0"))
	records, err := h.history.ListScans(c.Context(), limit)
	if err != nil {
		return c.Status(fiber.StatusInternalServerError).JSON(fiber.Map{"error": err.Error()})
	}
	if records == nil {
		records = []port.ScanRecord{}
	}
	return c.JSON(records)
}

// GetResult returns a stored scan result.
func (h *ScanHandler) GetResult(c fiber.Ctx) error {
	if h.history == nil {
		return c.Status(fiber.StatusNotFound).JSON(fiber.Map{"error": "history disabled"})
	}
	result, err := h.history.GetScan(c.Context(), c.Params("id"))
	if errors.Is(err, port.ErrScanNotFound) {
		return c.Status(fiber.StatusNotFound).JSON(fiber.Map{"error": "scan not found"})
	}
	if err != nil {
		return c.Status(fiber.StatusInternalServerError).JSON(fiber.Map{"error": err.Error()})
	}
	return c.JSON(result)
}

// ExportResult renders a stored scan result in the requested format
// (?format=markdown|json|html).
func (h *ScanHandler) ExportResult(c fiber.Ctx) error {
	if h.history == nil {
		return c.Status(fiber.StatusNotFound).JSON(fiber.Map{"error": "history disabled"})
	}
	result, err := h.history.GetScan(c.Context(), c.Params("id"))
	if errors.Is(err, port.ErrScanNotFound) {
		return c.Status(fiber.StatusNotFound).JSON(fiber.Map{"error": "scan not found"})
	}
	if err != nil {
		return c.Status(fiber.StatusInternalServerError).JSON(fiber.Map{"error": err.Error()})
	}

	format, err := export.ParseFormat(c.Query("format", "markdown"))
	if err != nil {
		return c.Status(fiber.StatusBadRequest).JSON(fiber.Map{"error": err.Error()})
	}

	opts := export.DefaultOptions(format)
	opts.IncludeStats = true
	content, err := export.Render(result, opts)
	if err != nil {
		return c.Status(fiber.StatusInternalServerError).JSON(fiber.Map{"error": err.Error()})
	}

	switch format {
	case export.FormatJSON:
		c.Set("Content-Type", "application/json")
	case export.FormatHTML:
		c.Set("Content-Type", "text/html; charset=utf-8")
	default:
		c.Set("Content-Type", "text/markdown; charset=utf-8")
	}
	return c.SendString(content)
}

// Doctor surfaces the model connectivity status. This is the one path where
// transport errors reach the caller.
func (h *ScanHandler) Doctor(c fiber.Ctx) error {
	status := h.svc.TestConnection(c.Context())
	return c.JSON(status)
}
