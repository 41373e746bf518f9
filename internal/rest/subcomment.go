package rest

import (
	"net/http"

	"github.com/gin-gonic/gin"

	"github.com/Guyuepp/travel-feed/domain"
	"github.com/Guyuepp/travel-feed/internal/rest/request"
	"github.com/Guyuepp/travel-feed/internal/rest/response"
)

type SubCommentHandler struct {
	Service domain.SubCommentUsecase
}

func NewSubCommentHandler(svc domain.SubCommentUsecase) *SubCommentHandler {
	return &SubCommentHandler{
		Service: svc,
	}
}

func (h *SubCommentHandler) Create(c *gin.Context) {
	var req request.Comment
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}

	uid, ok := userID(c)
	if !ok {
		return
	}

	sub, err := h.Service.Create(c.Request.Context(), uid, c.Param("id"), c.Param("commentID"), req.Content)
	if err != nil {
		abortWithError(c, err)
		return
	}

	c.JSON(http.StatusCreated, response.NewSubCommentFromDomain(&sub))
}

func (h *SubCommentHandler) Update(c *gin.Context) {
	var req request.Comment
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}

	uid, ok := userID(c)
	if !ok {
		return
	}

	err := h.Service.Update(c.Request.Context(), uid,
		c.Param("id"), c.Param("commentID"), c.Param("subCommentID"), req.Content)
	if err != nil {
		abortWithError(c, err)
		return
	}
	c.JSON(http.StatusOK, gin.H{"message": "Reply updated successfully"})
}

func (h *SubCommentHandler) Delete(c *gin.Context) {
	uid, ok := userID(c)
	if !ok {
		return
	}

	err := h.Service.Delete(c.Request.Context(), uid, c.Param("id"), c.Param("commentID"), c.Param("subCommentID"))
	if err != nil {
		abortWithError(c, err)
		return
	}
	c.JSON(http.StatusOK, gin.H{"message": "Reply deleted successfully"})
}
