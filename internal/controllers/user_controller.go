package controllers

import (
	"net/http"

	"github.com/gin-gonic/gin"
	"go.uber.org/zap"

	"github.com/zaqqye/gazetrack_backend/internal/middleware"
	"github.com/zaqqye/gazetrack_backend/internal/services"
)

type UserController struct {
	Users *services.UserService
	Log   *zap.Logger
}

func (uc *UserController) Count(c *gin.Context) {
	n, err := uc.Users.GetUserCount(c.Request.Context())
	if err != nil {
		respondError(c, uc.Log, err, "")
		return
	}
	c.JSON(http.StatusOK, gin.H{"count": n})
}

// Create registers an administrator. Anyone may create the first account;
// after that only logged in users can add more.
func (uc *UserController) Create(c *gin.Context) {
	if _, loggedIn := middleware.CurrentUser(c); !loggedIn {
		open, err := uc.Users.CanRegisterOpenly(c.Request.Context())
		if err != nil {
			respondError(c, uc.Log, err, "")
			return
		}
		if !open {
			errorJSON(c, http.StatusForbidden, "registration is closed")
			return
		}
	}

	var req services.CreateUserRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		errorJSON(c, http.StatusBadRequest, "invalid JSON body")
		return
	}
	user, err := uc.Users.CreateUser(c.Request.Context(), req)
	if err != nil {
		respondError(c, uc.Log, err, "")
		return
	}
	c.JSON(http.StatusCreated, gin.H{
		"status": "success",
		"user":   gin.H{"id": user.ID, "username": user.Username},
	})
}
