package rest

import (
	"net/http"

	"github.com/gin-gonic/gin"

	"github.com/Guyuepp/travel-feed/domain"
	"github.com/Guyuepp/travel-feed/internal/rest/request"
	"github.com/Guyuepp/travel-feed/internal/rest/response"
)

// FeedHandler  represent the httphandler for feed
type FeedHandler struct {
	Service domain.FeedUsecase
}

func NewFeedHandler(svc domain.FeedUsecase) *FeedHandler {
	return &FeedHandler{
		Service: svc,
	}
}

// Detail returns the feed with its references and counts the view of the caller's address
func (h *FeedHandler) Detail(c *gin.Context) {
	detail, err := h.Service.Detail(c.Request.Context(), c.Param("id"), c.ClientIP())
	if err != nil {
		abortWithError(c, err)
		return
	}

	c.JSON(http.StatusOK, response.NewFeedDetailFromDomain(&detail))
}

// Create will store the feed by given request body
func (h *FeedHandler) Create(c *gin.Context) {
	var req request.Feed
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}

	uid, ok := userID(c)
	if !ok {
		return
	}

	feed, err := h.Service.Create(c.Request.Context(), uid, req.ToDomain())
	if err != nil {
		abortWithError(c, err)
		return
	}

	c.JSON(http.StatusCreated, response.NewFeedFromDomain(&feed))
}

// Delete will delete the feed by given param
func (h *FeedHandler) Delete(c *gin.Context) {
	uid, ok := userID(c)
	if !ok {
		return
	}

	if err := h.Service.Delete(c.Request.Context(), uid, c.Param("id")); err != nil {
		abortWithError(c, err)
		return
	}

	c.Status(http.StatusNoContent)
}

func (h *FeedHandler) Like(c *gin.Context) {
	uid, ok := userID(c)
	if !ok {
		return
	}

	if err := h.Service.Like(c.Request.Context(), uid, c.Param("id")); err != nil {
		abortWithError(c, err)
		return
	}

	c.JSON(http.StatusOK, gin.H{"is_changed": true})
}

func (h *FeedHandler) Dislike(c *gin.Context) {
	uid, ok := userID(c)
	if !ok {
		return
	}

	if err := h.Service.Dislike(c.Request.Context(), uid, c.Param("id")); err != nil {
		abortWithError(c, err)
		return
	}

	c.JSON(http.StatusOK, gin.H{"is_changed": true})
}
