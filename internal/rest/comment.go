package rest

import (
	"net/http"

	"github.com/gin-gonic/gin"

	"github.com/Guyuepp/travel-feed/domain"
	"github.com/Guyuepp/travel-feed/internal/rest/request"
	"github.com/Guyuepp/travel-feed/internal/rest/response"
)

type CommentHandler struct {
	Service domain.CommentUsecase
}

func NewCommentHandler(svc domain.CommentUsecase) *CommentHandler {
	return &CommentHandler{
		Service: svc,
	}
}

func (h *CommentHandler) Create(c *gin.Context) {
	var req request.Comment
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}

	// Get user ID from context (set by authentication middleware)
	uid, ok := userID(c)
	if !ok {
		return
	}

	comment, err := h.Service.Create(c.Request.Context(), uid, c.Param("id"), req.Content)
	if err != nil {
		abortWithError(c, err)
		return
	}

	c.JSON(http.StatusCreated, response.NewSingleCommentFromDomain(&comment))
}

func (h *CommentHandler) Update(c *gin.Context) {
	var req request.Comment
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}

	uid, ok := userID(c)
	if !ok {
		return
	}

	err := h.Service.Update(c.Request.Context(), uid, c.Param("id"), c.Param("commentID"), req.Content)
	if err != nil {
		abortWithError(c, err)
		return
	}
	c.JSON(http.StatusOK, gin.H{"message": "Comment updated successfully"})
}

func (h *CommentHandler) Delete(c *gin.Context) {
	uid, ok := userID(c)
	if !ok {
		return
	}

	if err := h.Service.Delete(c.Request.Context(), uid, c.Param("id"), c.Param("commentID")); err != nil {
		abortWithError(c, err)
		return
	}
	c.JSON(http.StatusOK, gin.H{"message": "Comment deleted successfully"})
}

func (h *CommentHandler) Like(c *gin.Context) {
	uid, ok := userID(c)
	if !ok {
		return
	}

	if err := h.Service.Like(c.Request.Context(), uid, c.Param("id"), c.Param("commentID")); err != nil {
		abortWithError(c, err)
		return
	}
	c.JSON(http.StatusOK, gin.H{"is_changed": true})
}

func (h *CommentHandler) Dislike(c *gin.Context) {
	uid, ok := userID(c)
	if !ok {
		return
	}

	if err := h.Service.Dislike(c.Request.Context(), uid, c.Param("id"), c.Param("commentID")); err != nil {
		abortWithError(c, err)
		return
	}
	c.JSON(http.StatusOK, gin.H{"is_changed": true})
}
