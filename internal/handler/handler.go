package handler

import (
	"context"
	"errors"
	"io"
	"log/slog"
	"net/http"
	"time"

	"github.com/example/sptracker/internal/errs"
	"github.com/example/sptracker/internal/ledger"
	"github.com/example/sptracker/internal/metrics"
	"github.com/example/sptracker/pkg/models"
	"github.com/gin-gonic/gin"
	"github.com/go-playground/validator/v10"
)

// LookupStore serves the reference data
type LookupStore interface {
	ListLevels(ctx context.Context) ([]models.Level, error)
	ListTypes(ctx context.Context) ([]models.Type, error)
	ListCategories(ctx context.Context, tab string) ([]models.Category, error)
}

// Ledger records attempts and revisions
type Ledger interface {
	RecordAttempt(ctx context.Context, req ledger.AttemptRequest) ([]models.Submission, error)
	CompleteAndReschedule(ctx context.Context, req ledger.CompleteRequest) (*models.Submission, error)
	ListSubmissions(ctx context.Context, f ledger.Filter) ([]models.Submission, error)
	Summary(ctx context.Context, f ledger.Filter) ([]models.SummaryRow, error)
}

// Progress serves the dashboard aggregates
type Progress interface {
	OverallProgress(ctx context.Context, tab string) ([]models.CategoryCount, error)
	OverallPending(ctx context.Context, tab string) ([]models.CategoryCount, error)
	WeeklyProgress(ctx context.Context, tab string) ([]models.WeeklyProgress, error)
}

// Options configures a Handler
type Options struct {
	DefaultTab string
	Location   *time.Location
	Logger     *slog.Logger
}

// Handler serves the tracker's HTTP API
type Handler struct {
	lookup     LookupStore
	ledger     Ledger
	progress   Progress
	defaultTab string
	loc        *time.Location
	logger     *slog.Logger
}

// New creates a handler
func New(lookup LookupStore, l Ledger, progress Progress, opts Options) *Handler {
	if opts.DefaultTab == "" {
		opts.DefaultTab = "IP"
	}
	if opts.Location == nil {
		opts.Location = time.Local
	}
	if opts.Logger == nil {
		opts.Logger = slog.Default()
	}
	return &Handler{
		lookup:     lookup,
		ledger:     l,
		progress:   progress,
		defaultTab: opts.DefaultTab,
		loc:        opts.Location,
		logger:     opts.Logger,
	}
}

// HealthCheck handles GET /health
func (h *Handler) HealthCheck(c *gin.Context) {
	c.JSON(http.StatusOK, gin.H{"status": "ok"})
}

// HandleMetadata handles POST /api/metadata
func (h *Handler) HandleMetadata(c *gin.Context) {
	const op = "metadata"
	tab, err := h.bindTab(c, op)
	if err != nil {
		h.fail(c, op, err, emptyMetadata())
		return
	}

	ctx := c.Request.Context()
	var resp MetadataResponse
	if resp.Levels, err = h.lookup.ListLevels(ctx); err != nil {
		h.fail(c, op, err, emptyMetadata(), "tab", tab)
		return
	}
	if resp.Types, err = h.lookup.ListTypes(ctx); err != nil {
		h.fail(c, op, err, emptyMetadata(), "tab", tab)
		return
	}
	if resp.Categories, err = h.lookup.ListCategories(ctx, tab); err != nil {
		h.fail(c, op, err, emptyMetadata(), "tab", tab)
		return
	}
	if resp.OverallPending, err = h.progress.OverallPending(ctx, tab); err != nil {
		h.fail(c, op, err, emptyMetadata(), "tab", tab)
		return
	}
	if resp.OverallProgress, err = h.progress.OverallProgress(ctx, tab); err != nil {
		h.fail(c, op, err, emptyMetadata(), "tab", tab)
		return
	}

	c.JSON(http.StatusOK, resp)
}

// HandleLevels handles POST /api/levels
func (h *Handler) HandleLevels(c *gin.Context) {
	levels, err := h.lookup.ListLevels(c.Request.Context())
	if err != nil {
		h.fail(c, "levels", err, StatusResponse{})
		return
	}
	c.JSON(http.StatusOK, gin.H{"sp_levels": levels})
}

// HandleTypes handles POST /api/types
func (h *Handler) HandleTypes(c *gin.Context) {
	types, err := h.lookup.ListTypes(c.Request.Context())
	if err != nil {
		h.fail(c, "types", err, StatusResponse{})
		return
	}
	c.JSON(http.StatusOK, gin.H{"sp_types": types})
}

// HandleCategories handles POST /api/categories
func (h *Handler) HandleCategories(c *gin.Context) {
	const op = "categories"
	tab, err := h.bindTab(c, op)
	if err != nil {
		h.fail(c, op, err, StatusResponse{})
		return
	}
	categories, err := h.lookup.ListCategories(c.Request.Context(), tab)
	if err != nil {
		h.fail(c, op, err, StatusResponse{}, "tab", tab)
		return
	}
	c.JSON(http.StatusOK, gin.H{"sp_categories": categories})
}

// HandleListSubmissions handles POST /api/submissions/all
func (h *Handler) HandleListSubmissions(c *gin.Context) {
	const op = "submissions.all"
	f, err := h.bindFilter(c, op)
	if err != nil {
		h.fail(c, op, err, []models.CalendarEvent{})
		return
	}
	subs, err := h.ledger.ListSubmissions(c.Request.Context(), f)
	if err != nil {
		h.fail(c, op, err, []models.CalendarEvent{}, "tab", f.Tab)
		return
	}
	c.JSON(http.StatusOK, toEvents(subs, h.loc))
}

// HandleSummary handles POST /api/submissions/summary
func (h *Handler) HandleSummary(c *gin.Context) {
	const op = "submissions.summary"
	f, err := h.bindFilter(c, op)
	if err != nil {
		h.fail(c, op, err, []models.SummaryRow{})
		return
	}
	summary, err := h.ledger.Summary(c.Request.Context(), f)
	if err != nil {
		h.fail(c, op, err, []models.SummaryRow{}, "tab", f.Tab)
		return
	}
	c.JSON(http.StatusOK, summary)
}

// HandleInsert handles POST /api/submissions/insert
func (h *Handler) HandleInsert(c *gin.Context) {
	const op = "submissions.insert"
	var req InsertRequest
	if err := bindJSON(c, op, &req); err != nil {
		h.fail(c, op, err, StatusResponse{})
		return
	}
	if req.Tab == "" {
		req.Tab = h.defaultTab
	}

	records, err := h.ledger.RecordAttempt(c.Request.Context(), ledger.AttemptRequest{
		Link:        req.Link,
		Category:    req.Category,
		Type:        req.Type,
		Level:       req.Level,
		Tab:         req.Tab,
		Repetitions: req.Rts,
	})
	if err != nil {
		h.fail(c, op, err, StatusResponse{},
			"type", req.Type, "level", req.Level, "category", req.Category, "tab", req.Tab)
		return
	}
	c.JSON(http.StatusOK, records)
}

// HandleUpdate handles POST /api/submissions/update
func (h *Handler) HandleUpdate(c *gin.Context) {
	const op = "submissions.update"
	var req UpdateRequest
	if err := bindJSON(c, op, &req); err != nil {
		h.fail(c, op, err, StatusResponse{})
		return
	}

	next, err := h.ledger.CompleteAndReschedule(c.Request.Context(), ledger.CompleteRequest{
		ID:          req.ID,
		Link:        req.Link,
		Category:    req.Category,
		Type:        req.Type,
		Level:       req.Level,
		Tab:         req.Tab,
		Repetitions: req.Rts,
	})
	if err != nil {
		h.fail(c, op, err, StatusResponse{},
			"id", req.ID, "type", req.Type, "level", req.Level, "category", req.Category)
		return
	}
	c.JSON(http.StatusOK, []models.CalendarEvent{toEvent(*next, h.loc)})
}

// HandleWeeklyProgress handles POST /api/weekly_progress
func (h *Handler) HandleWeeklyProgress(c *gin.Context) {
	const op = "weekly_progress"
	tab, err := h.bindTab(c, op)
	if err != nil {
		h.fail(c, op, err, []models.WeeklyProgress{})
		return
	}
	progress, err := h.progress.WeeklyProgress(c.Request.Context(), tab)
	if err != nil {
		h.fail(c, op, err, []models.WeeklyProgress{}, "tab", tab)
		return
	}
	c.JSON(http.StatusOK, progress)
}

// HandleOverallProgress handles POST /api/overall_progress
func (h *Handler) HandleOverallProgress(c *gin.Context) {
	h.handleCounts(c, "overall_progress", h.progress.OverallProgress)
}

// HandleOverallPending handles POST /api/overall_pending
func (h *Handler) HandleOverallPending(c *gin.Context) {
	h.handleCounts(c, "overall_pending", h.progress.OverallPending)
}

func (h *Handler) handleCounts(c *gin.Context, op string, fetch func(context.Context, string) ([]models.CategoryCount, error)) {
	tab, err := h.bindTab(c, op)
	if err != nil {
		h.fail(c, op, err, []models.CategoryCount{})
		return
	}
	counts, err := fetch(c.Request.Context(), tab)
	if err != nil {
		h.fail(c, op, err, []models.CategoryCount{}, "tab", tab)
		return
	}
	c.JSON(http.StatusOK, counts)
}

// bindTab reads an optional {tab} body
func (h *Handler) bindTab(c *gin.Context, op string) (string, error) {
	var req TabRequest
	if err := c.ShouldBindJSON(&req); err != nil && !errors.Is(err, io.EOF) {
		return "", bindingError(op, err)
	}
	if req.Tab == "" {
		return h.defaultTab, nil
	}
	return req.Tab, nil
}

func (h *Handler) bindFilter(c *gin.Context, op string) (ledger.Filter, error) {
	var req SubmissionsRequest
	if err := bindJSON(c, op, &req); err != nil {
		return ledger.Filter{}, err
	}
	from, to, err := parseRange(req.From, req.To, h.loc)
	if err != nil {
		return ledger.Filter{}, errs.E(errs.Validation, op, err, "from", "to")
	}
	tab := req.Tab
	if tab == "" {
		tab = h.defaultTab
	}
	var categories []string
	if len(req.Categories) > 0 {
		categories = req.Categories
	}
	return ledger.Filter{Tab: tab, From: from, To: to, Categories: categories}, nil
}

func bindJSON(c *gin.Context, op string, req any) error {
	if err := c.ShouldBindJSON(req); err != nil {
		return bindingError(op, err)
	}
	return nil
}

// bindingError turns a gin binding failure into a validation error naming
// the offending fields
func bindingError(op string, err error) error {
	var verrs validator.ValidationErrors
	if errors.As(err, &verrs) {
		fields := make([]string, 0, len(verrs))
		for _, fe := range verrs {
			fields = append(fields, fe.Field())
		}
		return errs.E(errs.Validation, op, err, fields...)
	}
	return errs.E(errs.Validation, op, err)
}

// fail logs err with the operation context and answers with body
func (h *Handler) fail(c *gin.Context, op string, err error, body any, attrs ...any) {
	kind := errs.KindOf(err)
	metrics.OperationErrors.WithLabelValues(op, kind.String()).Inc()

	args := append([]any{
		"op", op,
		"kind", kind.String(),
		"fields", errs.FieldsOf(err),
		"request_id", c.GetString(requestIDKey),
		"error", err,
	}, attrs...)
	h.logger.Error("request failed", args...)

	c.JSON(statusFor(kind), body)
}

func statusFor(kind errs.Kind) int {
	switch kind {
	case errs.Validation:
		return http.StatusBadRequest
	case errs.NotFound:
		return http.StatusNotFound
	case errs.Conflict:
		return http.StatusConflict
	default:
		return http.StatusInternalServerError
	}
}
