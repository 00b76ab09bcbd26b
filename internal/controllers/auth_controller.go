package controllers

import (
	"errors"
	"net/http"
	"strings"
	"time"

	"github.com/gin-gonic/gin"
	"go.uber.org/zap"

	"github.com/zaqqye/gazetrack_backend/internal/middleware"
	"github.com/zaqqye/gazetrack_backend/internal/services"
)

type AuthController struct {
	Users     *services.UserService
	JWTSecret string
	TokenTTL  time.Duration
	Log       *zap.Logger
}

type tokenRequest struct {
	Username string `json:"username" binding:"required"`
	Password string `json:"password" binding:"required"`
}

func (a *AuthController) ShowLogin(c *gin.Context) {
	if _, ok := middleware.CurrentUser(c); ok {
		c.Redirect(http.StatusFound, "/")
		return
	}
	c.HTML(http.StatusOK, "login.html", gin.H{"Next": c.Query("next")})
}

func (a *AuthController) Login(c *gin.Context) {
	next := c.PostForm("next")
	if next == "" {
		next = c.Query("next")
	}
	user, err := a.Users.Authenticate(c.Request.Context(), c.PostForm("username"), c.PostForm("password"))
	if errors.Is(err, services.ErrInvalidCredentials) {
		a.Log.Info("Failed login attempt", zap.String("username", c.PostForm("username")), zap.String("client_ip", c.ClientIP()))
		c.HTML(http.StatusUnauthorized, "login.html", gin.H{"Error": "Usuario o contraseña incorrectos", "Next": next})
		return
	}
	if err != nil {
		a.Log.Error("Login failed", zap.Error(err))
		c.HTML(http.StatusInternalServerError, "login.html", gin.H{"Error": "Error interno, intente nuevamente", "Next": next})
		return
	}
	if err := middleware.Login(c, user); err != nil {
		a.Log.Error("Failed to save session", zap.Error(err))
		c.HTML(http.StatusInternalServerError, "login.html", gin.H{"Error": "Error interno, intente nuevamente", "Next": next})
		return
	}
	a.Log.Info("User logged in", zap.Uint("user_id", user.ID))
	c.Redirect(http.StatusFound, safeRedirect(next))
}

func (a *AuthController) Logout(c *gin.Context) {
	if err := middleware.Logout(c); err != nil {
		a.Log.Warn("Failed to clear session", zap.Error(err))
	}
	c.Redirect(http.StatusFound, "/login")
}

// Token issues a bearer token for API clients.
func (a *AuthController) Token(c *gin.Context) {
	var req tokenRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		errorJSON(c, http.StatusBadRequest, "username and password are required")
		return
	}
	user, err := a.Users.Authenticate(c.Request.Context(), req.Username, req.Password)
	if errors.Is(err, services.ErrInvalidCredentials) {
		errorJSON(c, http.StatusUnauthorized, "invalid credentials")
		return
	}
	if err != nil {
		respondError(c, a.Log, err, "")
		return
	}
	token, err := middleware.IssueToken(a.JWTSecret, a.TokenTTL, user)
	if err != nil {
		respondError(c, a.Log, err, "")
		return
	}
	c.JSON(http.StatusOK, gin.H{
		"access_token": token,
		"token_type":   "Bearer",
		"expires_in":   int(a.TokenTTL.Seconds()),
	})
}

// safeRedirect only follows local paths.
func safeRedirect(next string) string {
	if next == "" || !strings.HasPrefix(next, "/") || strings.HasPrefix(next, "//") || strings.HasPrefix(next, "/\\") {
		return "/"
	}
	return next
}
