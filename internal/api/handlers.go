package api

import (
	"context"
	"log/slog"
	"net/http"

	"publazer/internal/auth"
	"publazer/internal/config"
	"publazer/internal/notify"
	"publazer/internal/review"
	"publazer/internal/similarity"
	"publazer/internal/users"

	"github.com/gin-gonic/gin"
)

// Deps are the services the HTTP layer is built on.
type Deps struct {
	Config   *config.Config
	Users    *users.Service
	Papers   *review.Service
	Notify   *notify.Service
	Scanner  *similarity.Scanner
	JWT      *auth.JWTManager
	Revoker  *auth.Revoker
	Logger   *slog.Logger
	Database interface{ Ping(context.Context) error }
}

type Server struct {
	config     *config.Config
	users      *users.Service
	papers     *review.Service
	notify     *notify.Service
	scanner    *similarity.Scanner
	jwtManager *auth.JWTManager
	revoker    *auth.Revoker
	logger     *slog.Logger
	db         interface{ Ping(context.Context) error }
}

func NewServer(d Deps) *Server {
	return &Server{
		config:     d.Config,
		users:      d.Users,
		papers:     d.Papers,
		notify:     d.Notify,
		scanner:    d.Scanner,
		jwtManager: d.JWT,
		revoker:    d.Revoker,
		logger:     d.Logger,
		db:         d.Database,
	}
}

func (s *Server) Health(c *gin.Context) {
	body := gin.H{"status": "ok", "service": "publazer"}
	if s.db != nil {
		if err := s.db.Ping(c.Request.Context()); err != nil {
			s.logger.WarnContext(c.Request.Context(), "health check: database unreachable", "error", err)
			body["status"] = "degraded"
			body["database"] = "unavailable"
			c.JSON(http.StatusServiceUnavailable, body)
			return
		}
		body["database"] = "ok"
	}
	c.JSON(http.StatusOK, body)
}
