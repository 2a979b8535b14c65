package innometrics

import (
	"context"
	"net/http"
	"time"

	"github.com/gin-contrib/cors"
	"github.com/gin-gonic/gin"

	"github.com/innometrics/innometrics-backend/internal/domain/account"
	"github.com/innometrics/innometrics-backend/internal/domain/activity"
	"github.com/innometrics/innometrics-backend/internal/logger"
)

// SessionCookie carries the access token for browser clients.
const SessionCookie = "innometrics_session"

const (
	messageKey = "message"
	userKey    = "innometrics.user"
	corsMaxAge = 12 * time.Hour
)

type (
	// AccountService abstracts the account operations the transport depends on.
	AccountService interface {
		Register(ctx context.Context, reg *account.Registration) (*account.User, error)
		Login(ctx context.Context, email, password string) (string, error)
		Authenticate(ctx context.Context, token string) (*account.User, error)
		Delete(ctx context.Context, userID string) error
	}

	// ActivityService abstracts the activity operations the transport depends on.
	ActivityService interface {
		Add(ctx context.Context, userID string, a *activity.Activity) (string, error)
		AddBatch(ctx context.Context, userID string, items []*activity.Activity) ([]string, error)
		Delete(ctx context.Context, userID, id string) error
		Find(ctx context.Context, q *activity.Query) ([]*activity.Activity, error)
	}

	// Options tunes the HTTP server.
	Options struct {
		// AllowedOrigins may send credentialed cross-origin requests.
		AllowedOrigins []string
		// TokenTTL is the session cookie lifetime.
		TokenTTL time.Duration
		// Metrics records request metrics; nil disables /metrics.
		Metrics *Metrics
	}

	// Server serves the Innometrics API.
	Server struct {
		accounts   AccountService
		activities ActivityService
		options    Options
	}
)

// NewServer wires the services into an HTTP server.
func NewServer(accounts AccountService, activities ActivityService, options Options) *Server {
	return &Server{
		accounts:   accounts,
		activities: activities,
		options:    options,
	}
}

// Handler builds the gin engine with middleware and every API route.
func (s *Server) Handler() *gin.Engine {
	router := gin.New()
	router.Use(requestLogger(), gin.CustomRecovery(recovered))

	if s.options.Metrics != nil {
		router.Use(s.options.Metrics.middleware())
		router.GET("/metrics", gin.WrapH(s.options.Metrics.Handler()))
	}

	if len(s.options.AllowedOrigins) > 0 {
		//nolint:exhaustruct // Remaining CORS options keep their defaults.
		router.Use(cors.New(cors.Config{
			AllowOrigins:     s.options.AllowedOrigins,
			AllowMethods:     []string{http.MethodGet, http.MethodPost, http.MethodDelete, http.MethodOptions},
			AllowHeaders:     []string{"Origin", "Content-Type", "Authorization"},
			AllowCredentials: true,
			MaxAge:           corsMaxAge,
		}))
	}

	for _, e := range endpoints {
		handle := e.handle
		handlers := []gin.HandlerFunc{}

		if e.authenticated {
			handlers = append(handlers, s.authenticate)
		}

		handlers = append(handlers, func(c *gin.Context) {
			handle(s, c)
		})

		for _, method := range e.methods {
			router.Handle(method, e.path, handlers...)
		}
	}

	return router
}

func respond(c *gin.Context, status int, message string) {
	c.JSON(status, gin.H{messageKey: message})
}

func recovered(c *gin.Context, err any) {
	logger.ErrorKV(c.Request.Context(), "handler panicked", "path", c.Request.URL.Path, "panic", err)
	c.AbortWithStatusJSON(http.StatusInternalServerError, gin.H{messageKey: "Something bad happened"})
}
