package api

import (
	"errors"
	"fmt"
	"strings"

	"publazer/internal/apperrors"
	"publazer/internal/middleware"
	"publazer/internal/models"

	"github.com/gin-gonic/gin"
	"github.com/go-playground/validator/v10"
	"github.com/google/uuid"
)

// respondError writes the error body for err. Server-side failures are
// logged and reported without their cause.
func respondError(c *gin.Context, err error) {
	status := apperrors.HTTPStatus(err)
	_ = c.Error(err)

	appErr, ok := apperrors.As(err)
	if !ok {
		appErr = apperrors.Internal("Internal server error", err)
	}
	c.JSON(status, gin.H{"error": appErr.Message, "code": appErr.Code})
}

// bindError converts a gin binding failure into a validation error.
func bindError(err error) error {
	var verrs validator.ValidationErrors
	if !errors.As(err, &verrs) {
		return apperrors.Validation("", "Invalid request body")
	}

	msgs := make([]string, 0, len(verrs))
	for _, fe := range verrs {
		field := fe.Field()
		switch fe.Tag() {
		case "required":
			msgs = append(msgs, fmt.Sprintf("%s is required", field))
		case "email":
			msgs = append(msgs, fmt.Sprintf("%s must be a valid email", field))
		case "min":
			msgs = append(msgs, fmt.Sprintf("%s must be at least %s characters", field, fe.Param()))
		case "max":
			msgs = append(msgs, fmt.Sprintf("%s must be at most %s characters", field, fe.Param()))
		case "user_role":
			msgs = append(msgs, fmt.Sprintf("%s must be one of %s", field, strings.Join(models.Roles, ", ")))
		case "paper_status":
			msgs = append(msgs, fmt.Sprintf("%s must be approved or rejected", field))
		default:
			msgs = append(msgs, fmt.Sprintf("%s is invalid", field))
		}
	}
	return apperrors.Validation("", strings.Join(msgs, "; "))
}

func currentActor(c *gin.Context) (models.Actor, bool) {
	id, ok := middleware.CurrentUserID(c)
	if !ok {
		respondError(c, apperrors.Unauthorized("Authentication required"))
		return models.Actor{}, false
	}
	return models.Actor{ID: id, Role: middleware.CurrentRole(c)}, true
}

func parseID(c *gin.Context, param, code, what string) (uuid.UUID, bool) {
	id, err := uuid.Parse(c.Param(param))
	if err != nil {
		respondError(c, apperrors.NotFound(code, what+" not found"))
		return uuid.Nil, false
	}
	return id, true
}

func parseOptionalID(c *gin.Context, query string) (uuid.UUID, bool) {
	raw := strings.TrimSpace(c.Query(query))
	if raw == "" {
		return uuid.Nil, true
	}
	id, err := uuid.Parse(raw)
	if err != nil {
		respondError(c, apperrors.Validation("", fmt.Sprintf("Invalid %s", query)))
		return uuid.Nil, false
	}
	return id, true
}

func message(c *gin.Context, status int, msg string) {
	c.JSON(status, gin.H{"message": msg})
}
