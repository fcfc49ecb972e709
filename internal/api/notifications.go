package api

import (
	"errors"
	"net/http"

	"github.com/gin-gonic/gin"

	"github.com/nhle/taskly/internal/model"
	"github.com/nhle/taskly/internal/store"
)

func (h *handler) handleGetNotifications(c *gin.Context) {
	unreadOnly := c.Query("unread") == "true"

	list, err := h.notifications.GetNotificationsForUser(c.Request.Context(), c.Param("userId"), unreadOnly)
	if err != nil {
		h.logger.Error().Err(err).Msg("failed to load notifications")
		abort(c, newAPIError(http.StatusInternalServerError, "Error fetching notifications.", err.Error()))
		return
	}
	if list == nil {
		list = []model.Notification{}
	}
	c.JSON(http.StatusOK, list)
}

func (h *handler) handleMarkNotificationRead(c *gin.Context) {
	err := h.notifications.MarkNotificationRead(c.Request.Context(), c.Param("id"))
	switch {
	case errors.Is(err, store.ErrNotFound):
		abort(c, newAPIError(http.StatusNotFound, "Notification not found.", err.Error()))
		return
	case err != nil:
		h.logger.Error().Err(err).Msg("failed to mark notification read")
		abort(c, newAPIError(http.StatusInternalServerError, "Error updating notification.", err.Error()))
		return
	}
	c.JSON(http.StatusOK, messageResponse{Message: "Notification marked as read."})
}
