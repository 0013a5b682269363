package api

import (
	"net/http"

	"publazer/internal/apperrors"

	"github.com/gin-gonic/gin"
)

func (s *Server) GetNotifications(c *gin.Context) {
	actor, ok := currentActor(c)
	if !ok {
		return
	}
	userID, ok := parseOptionalID(c, "userId")
	if !ok {
		return
	}

	list, err := s.notify.List(c.Request.Context(), actor, userID)
	if err != nil {
		respondError(c, err)
		return
	}
	c.JSON(http.StatusOK, list)
}

func (s *Server) MarkNotificationRead(c *gin.Context) {
	actor, ok := currentActor(c)
	if !ok {
		return
	}
	id, ok := parseID(c, "id", apperrors.CodeNotFound, "Notification")
	if !ok {
		return
	}

	n, err := s.notify.MarkRead(c.Request.Context(), actor, id)
	if err != nil {
		respondError(c, err)
		return
	}
	c.JSON(http.StatusOK, n)
}
