package handler

import (
	"net/http"
	"strconv"

	"github.com/gin-gonic/gin"
	"go.uber.org/zap"

	"taskhub/internal/model"
	"taskhub/internal/service"
)

type LabelHandler struct {
	labels *service.LabelService
	logger *zap.Logger
}

func NewLabelHandler(labels *service.LabelService, logger *zap.Logger) *LabelHandler {
	return &LabelHandler{labels: labels, logger: logger}
}

type labelRequest struct {
	Name string `json:"name"`
}

func (h *LabelHandler) Create(c *gin.Context, p model.Principal) {
	var req labelRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, ErrorResponse{Error: "invalid request body"})
		return
	}

	label, err := h.labels.Create(c.Request.Context(), p, req.Name)
	if err != nil {
		respondError(c, h.logger, err)
		return
	}

	c.JSON(http.StatusCreated, label)
}

func (h *LabelHandler) Index(c *gin.Context, _ model.Principal) {
	labels, err := h.labels.List(c.Request.Context())
	if err != nil {
		respondError(c, h.logger, err)
		return
	}

	c.Header("X-Total-Count", strconv.Itoa(len(labels)))
	c.JSON(http.StatusOK, labels)
}

func (h *LabelHandler) Show(c *gin.Context, _ model.Principal) {
	id, ok := pathID(c)
	if !ok {
		return
	}

	label, err := h.labels.Get(c.Request.Context(), id)
	if err != nil {
		respondError(c, h.logger, err)
		return
	}

	c.JSON(http.StatusOK, label)
}

func (h *LabelHandler) Update(c *gin.Context, p model.Principal) {
	id, ok := pathID(c)
	if !ok {
		return
	}

	var req labelRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, ErrorResponse{Error: "invalid request body"})
		return
	}

	label, err := h.labels.Update(c.Request.Context(), p, id, req.Name)
	if err != nil {
		respondError(c, h.logger, err)
		return
	}

	c.JSON(http.StatusOK, label)
}

func (h *LabelHandler) Destroy(c *gin.Context, p model.Principal) {
	id, ok := pathID(c)
	if !ok {
		return
	}

	if err := h.labels.Delete(c.Request.Context(), p, id); err != nil {
		respondError(c, h.logger, err)
		return
	}

	c.Status(http.StatusNoContent)
}
