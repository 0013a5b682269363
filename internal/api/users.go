package api

import (
	"net/http"

	"publazer/internal/apperrors"
	"publazer/internal/models"

	"github.com/gin-gonic/gin"
)

func (s *Server) GetUsers(c *gin.Context) {
	users, err := s.users.List(c.Request.Context())
	if err != nil {
		respondError(c, err)
		return
	}
	c.JSON(http.StatusOK, users)
}

func (s *Server) CreateUser(c *gin.Context) {
	var req models.CreateUserRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		respondError(c, bindError(err))
		return
	}

	user, err := s.users.Create(c.Request.Context(), req)
	if err != nil {
		respondError(c, err)
		return
	}
	c.JSON(http.StatusCreated, user)
}

func (s *Server) UpdateUser(c *gin.Context) {
	actor, ok := currentActor(c)
	if !ok {
		return
	}
	id, ok := parseID(c, "id", apperrors.CodeUserNotFound, "User")
	if !ok {
		return
	}

	var req models.UpdateUserRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		respondError(c, bindError(err))
		return
	}

	user, err := s.users.Update(c.Request.Context(), actor, id, req)
	if err != nil {
		respondError(c, err)
		return
	}
	c.JSON(http.StatusOK, user)
}

func (s *Server) DeleteUser(c *gin.Context) {
	actor, ok := currentActor(c)
	if !ok {
		return
	}
	id, ok := parseID(c, "id", apperrors.CodeUserNotFound, "User")
	if !ok {
		return
	}

	if err := s.users.Delete(c.Request.Context(), actor, id); err != nil {
		respondError(c, err)
		return
	}
	message(c, http.StatusOK, "User deleted")
}
