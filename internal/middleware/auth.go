package middleware

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"net/url"
	"strconv"
	"strings"
	"time"

	"github.com/gin-contrib/sessions"
	"github.com/gin-gonic/gin"
	"github.com/golang-jwt/jwt/v5"
	"go.uber.org/zap"

	"github.com/zaqqye/gazetrack_backend/internal/models"
)

// SessionUserKey is the session entry holding the logged in user's id.
const SessionUserKey = "userID"

const (
	userContextKey = "user"
	tokenIssuer    = "gazetrack_backend"
)

type Claims struct {
	UserID   uint   `json:"user_id"`
	Username string `json:"username"`
	jwt.RegisteredClaims
}

// UserLookup resolves the user behind a session or token.
type UserLookup interface {
	GetUserByID(ctx context.Context, id uint) (*models.User, error)
}

// IssueToken signs an access token for user valid for ttl.
func IssueToken(secret string, ttl time.Duration, user *models.User) (string, error) {
	now := time.Now().UTC()
	claims := Claims{
		UserID:   user.ID,
		Username: user.Username,
		RegisteredClaims: jwt.RegisteredClaims{
			Issuer:    tokenIssuer,
			IssuedAt:  jwt.NewNumericDate(now),
			ExpiresAt: jwt.NewNumericDate(now.Add(ttl)),
			Subject:   user.SessionID(),
		},
	}
	return jwt.NewWithClaims(jwt.SigningMethodHS256, claims).SignedString([]byte(secret))
}

func parseToken(secret, raw string) (*Claims, error) {
	claims := &Claims{}
	token, err := jwt.ParseWithClaims(raw, claims, func(token *jwt.Token) (interface{}, error) {
		if _, ok := token.Method.(*jwt.SigningMethodHMAC); !ok {
			return nil, fmt.Errorf("unexpected signing method %v", token.Header["alg"])
		}
		return []byte(secret), nil
	}, jwt.WithIssuer(tokenIssuer))
	if err != nil {
		return nil, err
	}
	if !token.Valid {
		return nil, errors.New("invalid token")
	}
	return claims, nil
}

// UserLoader puts the current user in the context when the request carries
// a valid session or bearer token. Sessions pointing at a user that no longer
// exists are cleared. Requests without valid credentials pass through as
// guests; a bearer token that fails to verify is not replaced by the session.
func UserLoader(users UserLookup, jwtSecret string, log *zap.Logger) gin.HandlerFunc {
	return func(c *gin.Context) {
		if raw, ok := bearerToken(c); ok {
			claims, err := parseToken(jwtSecret, raw)
			if err != nil {
				log.Debug("Ignoring invalid bearer token", zap.String("path", c.Request.URL.Path), zap.Error(err))
				c.Next()
				return
			}
			user, err := users.GetUserByID(c.Request.Context(), claims.UserID)
			if err != nil {
				log.Debug("Ignoring token of unknown user", zap.Uint("user_id", claims.UserID), zap.Error(err))
				c.Next()
				return
			}
			c.Set(userContextKey, user)
			c.Next()
			return
		}

		session := sessions.Default(c)
		id, ok := session.Get(SessionUserKey).(uint)
		if !ok {
			c.Next()
			return
		}
		user, err := users.GetUserByID(c.Request.Context(), id)
		if err != nil {
			log.Debug("Dropping session of unknown user", zap.Uint("user_id", id), zap.Error(err))
			session.Clear()
			session.Options(sessions.Options{Path: "/", MaxAge: -1})
			_ = session.Save()
			c.Next()
			return
		}
		c.Set(userContextKey, user)
		c.Next()
	}
}

func bearerToken(c *gin.Context) (string, bool) {
	auth := c.GetHeader("Authorization")
	if len(auth) < len("Bearer ") || !strings.EqualFold(auth[:len("Bearer ")], "bearer ") {
		return "", false
	}
	return strings.TrimSpace(auth[len("Bearer "):]), true
}

// AuthRequired rejects guests. API and websocket requests get a 401, pages
// are redirected to the login form.
func AuthRequired() gin.HandlerFunc {
	return func(c *gin.Context) {
		if _, ok := CurrentUser(c); ok {
			c.Next()
			return
		}
		path := c.Request.URL.Path
		if strings.HasPrefix(path, "/api/") || strings.HasPrefix(path, "/ws/") {
			c.AbortWithStatusJSON(http.StatusUnauthorized, gin.H{"status": "error", "message": "authentication required"})
			return
		}
		c.Redirect(http.StatusFound, "/login?next="+url.QueryEscape(c.Request.URL.RequestURI()))
		c.Abort()
	}
}

// CurrentUser returns the user loaded by UserLoader.
func CurrentUser(c *gin.Context) (*models.User, bool) {
	v, ok := c.Get(userContextKey)
	if !ok {
		return nil, false
	}
	user, ok := v.(*models.User)
	return user, ok
}

// Login stores user in the session.
func Login(c *gin.Context, user *models.User) error {
	session := sessions.Default(c)
	session.Clear()
	session.Set(SessionUserKey, user.ID)
	return session.Save()
}

func Logout(c *gin.Context) error {
	session := sessions.Default(c)
	session.Clear()
	session.Options(sessions.Options{Path: "/", MaxAge: -1})
	return session.Save()
}

// userIDString is used in log fields.
func userIDString(c *gin.Context) string {
	if user, ok := CurrentUser(c); ok {
		return strconv.FormatUint(uint64(user.ID), 10)
	}
	return ""
}
