package handler

import (
	"net/http"
	"strconv"

	"github.com/gin-gonic/gin"
	"go.uber.org/zap"

	"taskhub/internal/model"
	"taskhub/internal/query"
	"taskhub/internal/service"
)

type TaskHandler struct {
	tasks  *service.TaskService
	logger *zap.Logger
}

func NewTaskHandler(tasks *service.TaskService, logger *zap.Logger) *TaskHandler {
	return &TaskHandler{tasks: tasks, logger: logger}
}

type taskCreateRequest struct {
	Title       string  `json:"title"`
	Index       *int64  `json:"index"`
	Description string  `json:"description"`
	Status      string  `json:"status"`
	AssigneeID  *int64  `json:"assigneeId"`
	LabelIDs    []int64 `json:"labelIds"`
}

type taskUpdateRequest struct {
	Title       *string  `json:"title"`
	Index       *int64   `json:"index"`
	Description *string  `json:"description"`
	Status      *string  `json:"status"`
	AssigneeID  *int64   `json:"assigneeId"`
	LabelIDs    *[]int64 `json:"labelIds"`
	Version     *int64   `json:"version"`
}

func (h *TaskHandler) Create(c *gin.Context, p model.Principal) {
	var req taskCreateRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, ErrorResponse{Error: "invalid request body"})
		return
	}

	task, err := h.tasks.Create(c.Request.Context(), p, service.TaskDraft{
		Title:       req.Title,
		Index:       req.Index,
		Description: req.Description,
		StatusSlug:  req.Status,
		AssigneeID:  req.AssigneeID,
		LabelIDs:    req.LabelIDs,
	})
	if err != nil {
		respondError(c, h.logger, err)
		return
	}

	c.JSON(http.StatusCreated, task)
}

func (h *TaskHandler) Index(c *gin.Context, p model.Principal) {
	filter := query.Filter{
		StatusSlug:    c.Query("status"),
		TitleContains: c.Query("titleCont"),
	}
	if raw := c.Query("assigneeId"); raw != "" {
		id, err := strconv.ParseInt(raw, 10, 64)
		if err != nil {
			c.JSON(http.StatusBadRequest, ErrorResponse{Error: "invalid assigneeId"})
			return
		}
		filter.AssigneeID = &id
	}
	if raw := c.Query("labelId"); raw != "" {
		id, err := strconv.ParseInt(raw, 10, 64)
		if err != nil {
			c.JSON(http.StatusBadRequest, ErrorResponse{Error: "invalid labelId"})
			return
		}
		filter.LabelID = &id
	}

	var page query.Page
	var ok bool
	if page.Number, ok = intQuery(c, "page", 1); !ok {
		return
	}
	if page.Size, ok = intQuery(c, "pageSize", query.DefaultPageSize); !ok {
		return
	}

	result, err := h.tasks.List(c.Request.Context(), p, filter, page)
	if err != nil {
		respondError(c, h.logger, err)
		return
	}

	c.Header("X-Total-Count", strconv.Itoa(result.Total))
	c.JSON(http.StatusOK, result.Items)
}

func (h *TaskHandler) Show(c *gin.Context, p model.Principal) {
	id, ok := pathID(c)
	if !ok {
		return
	}

	task, err := h.tasks.Get(c.Request.Context(), p, id)
	if err != nil {
		respondError(c, h.logger, err)
		return
	}

	c.JSON(http.StatusOK, task)
}

func (h *TaskHandler) Update(c *gin.Context, p model.Principal) {
	id, ok := pathID(c)
	if !ok {
		return
	}

	var req taskUpdateRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, ErrorResponse{Error: "invalid request body"})
		return
	}

	task, err := h.tasks.Update(c.Request.Context(), p, id, service.TaskPatch{
		Title:       req.Title,
		Index:       req.Index,
		Description: req.Description,
		StatusSlug:  req.Status,
		AssigneeID:  req.AssigneeID,
		LabelIDs:    req.LabelIDs,
		Version:     req.Version,
	})
	if err != nil {
		respondError(c, h.logger, err)
		return
	}

	c.JSON(http.StatusOK, task)
}

func (h *TaskHandler) Destroy(c *gin.Context, p model.Principal) {
	id, ok := pathID(c)
	if !ok {
		return
	}

	if err := h.tasks.Delete(c.Request.Context(), p, id); err != nil {
		respondError(c, h.logger, err)
		return
	}

	c.Status(http.StatusNoContent)
}

func pathID(c *gin.Context) (int64, bool) {
	id, err := strconv.ParseInt(c.Param("id"), 10, 64)
	if err != nil {
		c.JSON(http.StatusBadRequest, ErrorResponse{Error: "invalid id"})
		return 0, false
	}
	return id, true
}

func intQuery(c *gin.Context, name string, fallback int) (int, bool) {
	raw := c.Query(name)
	if raw == "" {
		return fallback, true
	}
	n, err := strconv.Atoi(raw)
	if err != nil {
		c.JSON(http.StatusBadRequest, ErrorResponse{Error: "invalid " + name})
		return 0, false
	}
	return n, true
}
