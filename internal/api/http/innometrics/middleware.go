package innometrics

import (
	"errors"
	"net/http"
	"strings"
	"time"

	"github.com/gin-gonic/gin"

	"github.com/innometrics/innometrics-backend/internal/domain/account"
	"github.com/innometrics/innometrics-backend/internal/logger"
	accountsvc "github.com/innometrics/innometrics-backend/internal/service/account"
)

const tokenPrefix = "Token "

// requestLogger names the request logger and logs every request after it completes.
func requestLogger() gin.HandlerFunc {
	return func(c *gin.Context) {
		start := time.Now()
		ctx := logger.WithName(c.Request.Context(), "http")
		c.Request = c.Request.WithContext(ctx)

		c.Next()

		status := c.Writer.Status()
		kvs := []any{
			"method", c.Request.Method,
			"path", routePath(c),
			"status", status,
			"duration", time.Since(start),
			"client_ip", c.ClientIP(),
		}

		switch {
		case status >= http.StatusInternalServerError:
			logger.ErrorKV(ctx, "http request", kvs...)
		case status >= http.StatusBadRequest:
			logger.WarnKV(ctx, "http request", kvs...)
		default:
			logger.DebugKV(ctx, "http request", kvs...)
		}
	}
}

func routePath(c *gin.Context) string {
	if path := c.FullPath(); path != "" {
		return path
	}

	return c.Request.URL.Path
}

// authenticate resolves the caller from the Authorization header or the session cookie.
func (s *Server) authenticate(c *gin.Context) {
	token := strings.TrimSpace(strings.TrimPrefix(c.GetHeader("Authorization"), tokenPrefix))
	if token == "" {
		token, _ = c.Cookie(SessionCookie)
	}

	user, err := s.accounts.Authenticate(c.Request.Context(), token)

	switch {
	case errors.Is(err, accountsvc.ErrUnauthenticated):
		c.AbortWithStatusJSON(http.StatusUnauthorized, gin.H{messageKey: "Unauthorized"})

		return
	case err != nil:
		logger.ErrorKV(c.Request.Context(), "failed to authenticate request", "error", err)
		c.AbortWithStatusJSON(http.StatusInternalServerError, gin.H{messageKey: "Something bad happened"})

		return
	}

	c.Set(userKey, user)
	c.Request = c.Request.WithContext(logger.WithKV(c.Request.Context(), "user_id", user.ID))
	c.Next()
}

// currentUser returns the user stored by authenticate.
func currentUser(c *gin.Context) *account.User {
	user, _ := c.MustGet(userKey).(*account.User)

	return user
}
