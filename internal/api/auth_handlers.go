package api

import (
	"net/http"

	"publazer/internal/apperrors"
	"publazer/internal/middleware"
	"publazer/internal/models"

	"github.com/gin-gonic/gin"
)

func (s *Server) Register(c *gin.Context) {
	var req models.RegisterRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		respondError(c, bindError(err))
		return
	}

	user, err := s.users.Register(c.Request.Context(), req)
	if err != nil {
		respondError(c, err)
		return
	}

	token, err := s.jwtManager.GenerateToken(user)
	if err != nil {
		respondError(c, apperrors.Internal("Failed to generate token", err))
		return
	}

	c.JSON(http.StatusCreated, gin.H{
		"message": "User registered successfully!",
		"user":    user,
		"token":   token,
	})
}

func (s *Server) Login(c *gin.Context) {
	var req models.LoginRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		respondError(c, bindError(err))
		return
	}

	user, err := s.users.Authenticate(c.Request.Context(), req.Email, req.Password)
	if err != nil {
		respondError(c, err)
		return
	}

	token, err := s.jwtManager.GenerateToken(user)
	if err != nil {
		respondError(c, apperrors.Internal("Failed to generate token", err))
		return
	}

	c.JSON(http.StatusOK, models.LoginResponse{User: *user, Token: token})
}

// Logout revokes the presented token until it would have expired.
func (s *Server) Logout(c *gin.Context) {
	claims, ok := middleware.CurrentClaims(c)
	if !ok {
		respondError(c, apperrors.Unauthorized("Authentication required"))
		return
	}
	if err := s.revoker.Revoke(c.Request.Context(), claims); err != nil {
		respondError(c, apperrors.Internal("Failed to log out", err))
		return
	}
	message(c, http.StatusOK, "Logged out")
}

func (s *Server) GetProfile(c *gin.Context) {
	actor, ok := currentActor(c)
	if !ok {
		return
	}

	user, err := s.users.Get(c.Request.Context(), actor.ID)
	if err != nil {
		respondError(c, err)
		return
	}
	c.JSON(http.StatusOK, user)
}
