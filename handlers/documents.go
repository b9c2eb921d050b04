package handlers

import (
	"net/http"

	"github.com/gin-gonic/gin"

	"github.com/patrick-ksn/dms/internal/document"
	"github.com/patrick-ksn/dms/internal/models"
	"github.com/patrick-ksn/dms/pkg/logger"
)

type DocumentHandler struct {
	svc *document.Service
}

func NewDocumentHandler(svc *document.Service) *DocumentHandler {
	return &DocumentHandler{svc: svc}
}

func (h *DocumentHandler) Register(r *gin.Engine) {
	r.POST("/api/document", h.Create)
	r.PUT("/api/document/:id", h.Update)
	r.DELETE("/api/document/:id", h.Delete)
	r.GET("/api/document/:id", h.Get)
	r.GET("/api/documents", h.List)
}

func (h *DocumentHandler) Create(c *gin.Context) {
	var d models.Document
	if err := c.ShouldBindJSON(&d); err != nil {
		writeError(c, err)
		return
	}
	if err := d.Validate(); err != nil {
		writeError(c, err)
		return
	}
	logger.Debugf("create document: %+v", d)
	created, err := h.svc.Create(c.Request.Context(), d)
	if err != nil {
		writeError(c, err)
		return
	}
	c.JSON(http.StatusCreated, created)
}

func (h *DocumentHandler) Update(c *gin.Context) {
	id, err := pathID(c)
	if err != nil {
		writeError(c, err)
		return
	}
	var d models.Document
	if err := c.ShouldBindJSON(&d); err != nil {
		writeError(c, err)
		return
	}
	if err := d.Validate(); err != nil {
		writeError(c, err)
		return
	}
	d.ID = id
	logger.Debugf("update document: %+v", d)
	updated, err := h.svc.Update(c.Request.Context(), d)
	if err != nil {
		writeError(c, err)
		return
	}
	c.JSON(http.StatusOK, updated)
}

func (h *DocumentHandler) Delete(c *gin.Context) {
	id, err := pathID(c)
	if err != nil {
		writeError(c, err)
		return
	}
	logger.Debugf("delete document id: %d", id)
	if err := h.svc.Delete(c.Request.Context(), id); err != nil {
		writeError(c, err)
		return
	}
	c.Status(http.StatusNoContent)
}

func (h *DocumentHandler) Get(c *gin.Context) {
	id, err := pathID(c)
	if err != nil {
		writeError(c, err)
		return
	}
	logger.Debugf("get document id: %d", id)
	d, err := h.svc.FindByID(c.Request.Context(), id)
	if err != nil {
		writeError(c, err)
		return
	}
	c.JSON(http.StatusOK, d)
}

func (h *DocumentHandler) List(c *gin.Context) {
	logger.Debugf("get documents")
	docs, err := h.svc.GetAll(c.Request.Context())
	if err != nil {
		writeError(c, err)
		return
	}
	if len(docs) == 0 {
		c.Status(http.StatusNotFound)
		return
	}
	c.JSON(http.StatusOK, docs)
}
