package rest

import (
	"net/http"

	"github.com/gin-gonic/gin"

	"github.com/Guyuepp/travel-feed/domain"
	"github.com/Guyuepp/travel-feed/internal/rest/request"
)

type UserHandler struct {
	Service domain.UserUsecase
}

func NewUserHandler(svc domain.UserUsecase) *UserHandler {
	return &UserHandler{
		Service: svc,
	}
}

// Withdraw deletes the caller's account after the password is confirmed
func (h *UserHandler) Withdraw(c *gin.Context) {
	var req request.Withdraw
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}

	uid, ok := userID(c)
	if !ok {
		return
	}

	if err := h.Service.Withdraw(c.Request.Context(), uid, req.Password); err != nil {
		abortWithError(c, err)
		return
	}

	c.Status(http.StatusNoContent)
}
