package handler

import (
	"net/http"
	"strconv"

	"github.com/gin-gonic/gin"
	"go.uber.org/zap"

	"taskhub/internal/model"
	"taskhub/internal/service"
)

type StatusHandler struct {
	statuses *service.StatusService
	logger   *zap.Logger
}

func NewStatusHandler(statuses *service.StatusService, logger *zap.Logger) *StatusHandler {
	return &StatusHandler{statuses: statuses, logger: logger}
}

type statusCreateRequest struct {
	Name string `json:"name"`
	Slug string `json:"slug"`
}

type statusUpdateRequest struct {
	Name *string `json:"name"`
	Slug *string `json:"slug"`
}

func (h *StatusHandler) Create(c *gin.Context, p model.Principal) {
	var req statusCreateRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, ErrorResponse{Error: "invalid request body"})
		return
	}

	status, err := h.statuses.Create(c.Request.Context(), p, service.StatusDraft{
		Name: req.Name,
		Slug: req.Slug,
	})
	if err != nil {
		respondError(c, h.logger, err)
		return
	}

	c.JSON(http.StatusCreated, status)
}

func (h *StatusHandler) Index(c *gin.Context, _ model.Principal) {
	statuses, err := h.statuses.List(c.Request.Context())
	if err != nil {
		respondError(c, h.logger, err)
		return
	}

	c.Header("X-Total-Count", strconv.Itoa(len(statuses)))
	c.JSON(http.StatusOK, statuses)
}

func (h *StatusHandler) Show(c *gin.Context, _ model.Principal) {
	id, ok := pathID(c)
	if !ok {
		return
	}

	status, err := h.statuses.Get(c.Request.Context(), id)
	if err != nil {
		respondError(c, h.logger, err)
		return
	}

	c.JSON(http.StatusOK, status)
}

func (h *StatusHandler) Update(c *gin.Context, p model.Principal) {
	id, ok := pathID(c)
	if !ok {
		return
	}

	var req statusUpdateRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, ErrorResponse{Error: "invalid request body"})
		return
	}

	status, err := h.statuses.Update(c.Request.Context(), p, id, service.StatusPatch{
		Name: req.Name,
		Slug: req.Slug,
	})
	if err != nil {
		respondError(c, h.logger, err)
		return
	}

	c.JSON(http.StatusOK, status)
}

func (h *StatusHandler) Destroy(c *gin.Context, p model.Principal) {
	id, ok := pathID(c)
	if !ok {
		return
	}

	if err := h.statuses.Delete(c.Request.Context(), p, id); err != nil {
		respondError(c, h.logger, err)
		return
	}

	c.Status(http.StatusNoContent)
}
