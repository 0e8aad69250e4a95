package api

import (
	"context"
	"net/http"
	"strconv"
	"time"

	"github.com/gin-gonic/gin"
	"go.uber.org/zap"

	"github.com/sandeepkv93/bossmode/internal/calendar"
	"github.com/sandeepkv93/bossmode/internal/projection"
	"github.com/sandeepkv93/bossmode/internal/service"
)

const healthDBTimeout = 2 * time.Second

// Pinger reports store reachability for the health check.
type Pinger interface {
	PingContext(ctx context.Context) error
}

type Handler struct {
	planner *service.Planner
	db      Pinger
	version string
	logger  *zap.Logger
}

func NewHandler(planner *service.Planner, db Pinger, version string, logger *zap.Logger) *Handler {
	if logger == nil {
		logger = zap.NewNop()
	}
	return &Handler{planner: planner, db: db, version: version, logger: logger}
}

type HealthResponse struct {
	Status     string `json:"status"`
	Version    string `json:"version"`
	Today      string `json:"today"`
	SystemTime string `json:"current_system_time"`
}

func (h *Handler) Health(c *gin.Context) {
	status, code := "ok", http.StatusOK
	if h.db != nil {
		ctx, cancel := context.WithTimeout(c.Request.Context(), healthDBTimeout)
		defer cancel()
		if err := h.db.PingContext(ctx); err != nil {
			h.logger.Warn("health check: store unreachable", zap.Error(err))
			status, code = "down", http.StatusInternalServerError
		}
	}
	c.JSON(code, HealthResponse{
		Status:     status,
		Version:    h.version,
		Today:      h.planner.Today(),
		SystemTime: h.planner.Now().Format(time.RFC3339),
	})
}

func (h *Handler) ListTasks(c *gin.Context) {
	f, ok := filterFromQuery(c)
	if !ok {
		return
	}
	c.JSON(http.StatusOK, toTaskItems(h.planner.List(f)))
}

func (h *Handler) CreateTask(c *gin.Context) {
	var req CreateTaskRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		badRequest(c, "invalid task payload")
		return
	}
	task, err := h.planner.CreateTask(c.Request.Context(), service.TaskInput{
		Title:           req.Title,
		DueDate:         req.DueDate,
		Priority:        req.Priority,
		Recurrence:      req.Recurrence,
		ReminderMinutes: req.ReminderMinutes,
		CategoryID:      req.CategoryID,
	})
	if err != nil {
		writeError(c, err)
		return
	}
	c.JSON(http.StatusCreated, toTaskItem(task))
}

func (h *Handler) UpdateTask(c *gin.Context) {
	var req UpdateTaskRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		badRequest(c, "invalid task payload")
		return
	}
	task, err := h.planner.UpdateTask(c.Request.Context(), c.Param("id"), service.TaskPatch{
		Title:           req.Title,
		DueDate:         req.DueDate,
		Priority:        req.Priority,
		Recurrence:      req.Recurrence,
		ReminderMinutes: req.ReminderMinutes,
		ClearReminder:   req.ClearReminder,
		CategoryID:      req.CategoryID,
	})
	if err != nil {
		writeError(c, err)
		return
	}
	c.JSON(http.StatusOK, toTaskItem(task))
}

func (h *Handler) DeleteTask(c *gin.Context) {
	if err := h.planner.DeleteTask(c.Request.Context(), c.Param("id")); err != nil {
		writeError(c, err)
		return
	}
	c.Status(http.StatusNoContent)
}

// ToggleTask flips a one-off task or one occurrence of a recurring task. The
// body is optional; instance_date defaults to today.
func (h *Handler) ToggleTask(c *gin.Context) {
	var req ToggleRequest
	if c.Request.ContentLength > 0 {
		if err := c.ShouldBindJSON(&req); err != nil {
			badRequest(c, "invalid toggle payload")
			return
		}
	}
	if req.InstanceDate != "" && !validDate(c, req.InstanceDate) {
		return
	}
	id := c.Param("id")
	done, err := h.planner.Toggle(c.Request.Context(), id, req.InstanceDate)
	if err != nil {
		writeError(c, err)
		return
	}
	resp := ToggleResponse{TaskID: id, Completed: done}
	if t, ok := h.planner.Task(id); ok && t.IsRecurring() {
		resp.InstanceDate = req.InstanceDate
		if resp.InstanceDate == "" {
			resp.InstanceDate = h.planner.Today()
		}
	}
	c.JSON(http.StatusOK, resp)
}

func (h *Handler) DayView(c *gin.Context) {
	date := c.Query("date")
	if date != "" && !validDate(c, date) {
		return
	}
	key, ok := projection.ParseSortKey(c.Query("group"))
	if !ok {
		badRequest(c, "group must be type, priority or due")
		return
	}
	order, ok := projection.ParseOrder(c.Query("order"))
	if !ok {
		badRequest(c, "order must be asc or desc")
		return
	}
	c.JSON(http.StatusOK, toDayResponse(h.planner.Day(date, key, order)))
}

func (h *Handler) WeekView(c *gin.Context) {
	date := c.Query("date")
	if date != "" && !validDate(c, date) {
		return
	}
	c.JSON(http.StatusOK, toWeekResponse(h.planner.Week(date)))
}

func (h *Handler) MonthView(c *gin.Context) {
	date := c.Query("date")
	if date != "" && !validDate(c, date) {
		return
	}
	c.JSON(http.StatusOK, toMonthResponse(h.planner.Month(date)))
}

func (h *Handler) TimelineView(c *gin.Context) {
	f, ok := filterFromQuery(c)
	if !ok {
		return
	}
	c.JSON(http.StatusOK, toTimelineItems(h.planner.Timeline(f)))
}

func (h *Handler) History(c *gin.Context) {
	q := projection.HistoryQuery{Search: c.Query("q")}
	for name, dst := range map[string]*int{"year": &q.Year, "month": &q.Month, "day": &q.Day} {
		raw := c.Query(name)
		if raw == "" {
			continue
		}
		v, err := strconv.Atoi(raw)
		if err != nil || v < 0 {
			badRequest(c, name+" must be a non-negative number")
			return
		}
		*dst = v
	}
	c.JSON(http.StatusOK, toHistoryItems(h.planner.History(q)))
}

func (h *Handler) Progress(c *gin.Context) {
	p := h.planner.Progress()
	c.JSON(http.StatusOK, ProgressResponse{
		Total:     p.Total,
		Completed: p.Completed,
		Percent:   p.Percent,
		Overdue:   p.Overdue,
		Mood:      string(p.Mood),
	})
}

func (h *Handler) Missed(c *gin.Context) {
	c.JSON(http.StatusOK, toTaskItems(h.planner.Missed()))
}

func (h *Handler) ListCategories(c *gin.Context) {
	cats := h.planner.Categories()
	out := make([]CategoryItem, 0, len(cats))
	for _, cat := range cats {
		out = append(out, toCategoryItem(cat))
	}
	c.JSON(http.StatusOK, out)
}

func (h *Handler) CreateCategory(c *gin.Context) {
	var req CreateCategoryRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		badRequest(c, "invalid category payload")
		return
	}
	cat, err := h.planner.CreateCategory(c.Request.Context(), req.Name, req.Color)
	if err != nil {
		writeError(c, err)
		return
	}
	c.JSON(http.StatusCreated, toCategoryItem(cat))
}

func (h *Handler) UpdateCategory(c *gin.Context) {
	var req UpdateCategoryRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		badRequest(c, "invalid category payload")
		return
	}
	cat, err := h.planner.UpdateCategory(c.Request.Context(), c.Param("id"), req.Name, req.Color)
	if err != nil {
		writeError(c, err)
		return
	}
	c.JSON(http.StatusOK, toCategoryItem(cat))
}

func (h *Handler) DeleteCategory(c *gin.Context) {
	if err := h.planner.DeleteCategory(c.Request.Context(), c.Param("id")); err != nil {
		writeError(c, err)
		return
	}
	c.Status(http.StatusNoContent)
}

func (h *Handler) ListAlerts(c *gin.Context) {
	c.JSON(http.StatusOK, toAlertItems(h.planner.Alerts()))
}

func (h *Handler) AckAlert(c *gin.Context) {
	if err := h.planner.Acknowledge(c.Param("id")); err != nil {
		writeError(c, err)
		return
	}
	c.Status(http.StatusNoContent)
}

func (h *Handler) SnoozeAlert(c *gin.Context) {
	var req SnoozeRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		badRequest(c, "invalid snooze payload")
		return
	}
	ev, err := h.planner.Snooze(c.Param("id"), req.Minutes)
	if err != nil {
		writeError(c, err)
		return
	}
	c.JSON(http.StatusOK, SnoozeResponse{TaskID: ev.TaskID, TriggerAt: formatTime(ev.TriggerAt)})
}

func filterFromQuery(c *gin.Context) (projection.Filter, bool) {
	status, ok := projection.ParseStatus(c.Query("status"))
	if !ok {
		badRequest(c, "status must be all, active or completed")
		return projection.Filter{}, false
	}
	return projection.Filter{Status: status, CategoryID: c.Query("category")}, true
}

func validDate(c *gin.Context, date string) bool {
	if _, err := calendar.ParseCalendarDate(date, time.UTC); err != nil {
		writeError(c, err)
		return false
	}
	return true
}
