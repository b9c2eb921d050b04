package handlers

import (
	"context"
	"errors"
	"net/http"

	"github.com/gin-gonic/gin"

	"github.com/patrick-ksn/dms/internal/author"
	"github.com/patrick-ksn/dms/internal/models"
	"github.com/patrick-ksn/dms/pkg/logger"
)

// DeleteCommandSender enqueues an author delete for asynchronous processing.
type DeleteCommandSender interface {
	SendDeleteCommand(ctx context.Context, authorID int) error
}

type AuthorHandler struct {
	svc    *author.Service
	sender DeleteCommandSender // nil when no queue is configured
}

func NewAuthorHandler(svc *author.Service, sender DeleteCommandSender) *AuthorHandler {
	return &AuthorHandler{svc: svc, sender: sender}
}

func (h *AuthorHandler) Register(r *gin.Engine) {
	r.POST("/api/author", h.Create)
	r.PUT("/api/author/:id", h.Update)
	r.DELETE("/api/author/:id", h.Delete)
	r.DELETE("/api/author/queue/:id", h.EnqueueDelete)
	r.GET("/api/author/:id", h.Get)
	r.GET("/api/authors", h.List)
}

func (h *AuthorHandler) Create(c *gin.Context) {
	var a models.Author
	if err := c.ShouldBindJSON(&a); err != nil {
		writeError(c, err)
		return
	}
	if err := a.Validate(); err != nil {
		writeError(c, err)
		return
	}
	logger.Debugf("create author: %+v", a)
	created, err := h.svc.Create(c.Request.Context(), a)
	if err != nil {
		writeError(c, err)
		return
	}
	c.JSON(http.StatusCreated, created)
}

func (h *AuthorHandler) Update(c *gin.Context) {
	id, err := pathID(c)
	if err != nil {
		writeError(c, err)
		return
	}
	var a models.Author
	if err := c.ShouldBindJSON(&a); err != nil {
		writeError(c, err)
		return
	}
	if err := a.Validate(); err != nil {
		writeError(c, err)
		return
	}
	a.ID = id
	logger.Debugf("update author: %+v", a)
	updated, err := h.svc.Update(c.Request.Context(), a)
	if err != nil {
		writeError(c, err)
		return
	}
	c.JSON(http.StatusOK, updated)
}

func (h *AuthorHandler) Delete(c *gin.Context) {
	id, err := pathID(c)
	if err != nil {
		writeError(c, err)
		return
	}
	logger.Debugf("delete author: %d", id)
	if err := h.svc.Delete(c.Request.Context(), id); err != nil {
		writeError(c, err)
		return
	}
	c.Status(http.StatusNoContent)
}

// EnqueueDelete publishes the delete command instead of applying it; the
// queue consumer performs the actual delete.
func (h *AuthorHandler) EnqueueDelete(c *gin.Context) {
	id, err := pathID(c)
	if err != nil {
		writeError(c, err)
		return
	}
	if h.sender == nil {
		writeError(c, errors.New("author delete queue is not configured"))
		return
	}
	logger.Debugf("send command to delete author: %d", id)
	if err := h.sender.SendDeleteCommand(c.Request.Context(), id); err != nil {
		writeError(c, err)
		return
	}
	c.Status(http.StatusNoContent)
}

func (h *AuthorHandler) Get(c *gin.Context) {
	id, err := pathID(c)
	if err != nil {
		writeError(c, err)
		return
	}
	logger.Debugf("get author: %d", id)
	a, err := h.svc.FindByID(c.Request.Context(), id)
	if err != nil {
		writeError(c, err)
		return
	}
	c.JSON(http.StatusOK, a)
}

func (h *AuthorHandler) List(c *gin.Context) {
	logger.Debugf("getAll authors")
	authors, err := h.svc.FindAll(c.Request.Context())
	if err != nil {
		writeError(c, err)
		return
	}
	if len(authors) == 0 {
		c.Status(http.StatusNotFound)
		return
	}
	c.JSON(http.StatusOK, authors)
}
