// Package api exposes the task engine over HTTP with gin. Routes follow
// the mobile client's existing paths.
package api

import (
	"context"
	"net/http"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/rs/zerolog"

	"github.com/nhle/taskly/internal/engine"
	"github.com/nhle/taskly/internal/model"
)

// Notifications is the notification inbox used by the notification routes.
type Notifications interface {
	GetNotificationsForUser(ctx context.Context, userID string, unreadOnly bool) ([]model.Notification, error)
	MarkNotificationRead(ctx context.Context, id string) error
}

// Pinger reports database health.
type Pinger interface {
	Ping(ctx context.Context) error
}

type handler struct {
	logger        zerolog.Logger
	engine        *engine.Engine
	notifications Notifications
	db            Pinger
}

// NewRouter builds the gin engine with every route registered.
func NewRouter(
	logger zerolog.Logger,
	eng *engine.Engine,
	notifications Notifications,
	db Pinger,
) *gin.Engine {
	h := &handler{
		logger:        logger.With().Str("component", "api").Logger(),
		engine:        eng,
		notifications: notifications,
		db:            db,
	}

	router := gin.New()
	router.Use(gin.Recovery())
	router.Use(h.requestLogger)
	h.registerRoutes(router)
	return router
}

func (h *handler) registerRoutes(router gin.IRouter) {
	router.GET("/", h.handleHealth)

	for _, k := range []struct {
		prefix string
		kind   model.Kind
	}{
		{"/personal_", model.KindPersonal},
		{"/group_", model.KindGroup},
	} {
		tasks := router.Group(k.prefix + "tasks")
		tasks.POST("", h.handleCreateTask(k.kind))
		tasks.GET("/:userId", h.handleGetTasks(k.kind))
		tasks.GET("/in_progress/:userId", h.handleGetBucket(k.kind, false))
		tasks.GET("/completed/:userId", h.handleGetBucket(k.kind, true))
		tasks.PUT("/:id", h.handleUpdateTaskStatus)

		subtasks := router.Group(k.prefix + "subtasks")
		subtasks.GET("/:taskId", h.handleGetSubtasks)
		subtasks.POST("", h.handleAddSubtask)
		subtasks.PUT("/:id", h.handleToggleSubtask)
	}

	members := router.Group("/group_task_members")
	members.GET("/:taskId", h.handleGetMembers)
	members.PUT("/:taskId", h.handleSetMembers)

	notifications := router.Group("/notifications")
	notifications.GET("/:userId", h.handleGetNotifications)
	notifications.PUT("/:id/read", h.handleMarkNotificationRead)
}

func (h *handler) handleHealth(c *gin.Context) {
	ctx, cancel := context.WithTimeout(c.Request.Context(), 2*time.Second)
	defer cancel()

	if err := h.db.Ping(ctx); err != nil {
		h.logger.Error().Err(err).Msg("health check failed")
		abort(c, newAPIError(http.StatusServiceUnavailable, "Database unavailable", err.Error()))
		return
	}
	c.JSON(http.StatusOK, gin.H{"message": "Taskly API is running"})
}

// requestLogger logs one line per request.
func (h *handler) requestLogger(c *gin.Context) {
	start := time.Now()
	c.Next()

	status := c.Writer.Status()
	event := h.logger.Info()
	if status >= http.StatusInternalServerError {
		event = h.logger.Error()
	}
	event.
		Str("method", c.Request.Method).
		Str("path", c.FullPath()).
		Int("status", status).
		Dur("latency", time.Since(start)).
		Msg("handled request")
}
