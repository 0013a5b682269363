// Package notify writes and serves per-user alerts. Writes made on behalf of
// another operation are best effort: failures are logged, never returned.
package notify

import (
	"context"
	"fmt"
	"log/slog"

	"github.com/google/uuid"

	"publazer/internal/apperrors"
	"publazer/internal/models"
	"publazer/internal/store"
)

const (
	LinkRepository    = "/repository"
	LinkMySubmissions = "/my-submissions"
)

type Service struct {
	notes  store.Notifications
	users  store.Users
	logger *slog.Logger
}

func NewService(notes store.Notifications, users store.Users, logger *slog.Logger) *Service {
	return &Service{notes: notes, users: users, logger: logger}
}

// AnnounceSubmission sends one info notification to every faculty and admin
// user and returns how many were written.
func (s *Service) AnnounceSubmission(ctx context.Context, paper *models.Paper) int {
	reviewers, err := s.users.ListByRoles(ctx, models.RoleFaculty, models.RoleAdmin)
	if err != nil {
		s.logger.ErrorContext(ctx, "failed to load reviewers for fan-out", "paper_id", paper.ID, "error", err)
		return 0
	}
	if len(reviewers) == 0 {
		return 0
	}

	batch := make([]models.Notification, 0, len(reviewers))
	for _, r := range reviewers {
		batch = append(batch, models.Notification{
			RecipientID: r.ID,
			Message:     SubmissionMessage(paper),
			Type:        models.NotificationInfo,
			Link:        LinkRepository,
		})
	}

	n, err := s.notes.CreateMany(ctx, batch)
	if err != nil {
		s.logger.ErrorContext(ctx, "submission fan-out failed", "paper_id", paper.ID, "recipients", len(batch), "error", err)
		return 0
	}
	s.logger.InfoContext(ctx, "submission announced", "paper_id", paper.ID, "recipients", n)
	return n
}

// NotifyAuthor tells the author about a status change or a new comment.
// It reports whether a notification was written.
func (s *Service) NotifyAuthor(ctx context.Context, paper *models.Paper, statusChanged, commented bool) bool {
	n, ok := ReviewNotification(paper, statusChanged, commented)
	if !ok {
		return false
	}
	if err := s.notes.Create(ctx, &n); err != nil {
		s.logger.ErrorContext(ctx, "failed to notify author", "paper_id", paper.ID, "author_id", paper.AuthorID, "error", err)
		return false
	}
	return true
}

// List returns the caller's notifications newest first. Admins may read any
// user's list.
func (s *Service) List(ctx context.Context, actor models.Actor, userID uuid.UUID) ([]models.Notification, error) {
	if userID == uuid.Nil {
		userID = actor.ID
	}
	if userID != actor.ID && !actor.IsAdmin() {
		return nil, apperrors.Forbidden("You can only read your own notifications")
	}
	return s.notes.ListByRecipient(ctx, userID)
}

func (s *Service) MarkRead(ctx context.Context, actor models.Actor, id uuid.UUID) (*models.Notification, error) {
	n, err := s.notes.Get(ctx, id)
	if err != nil {
		return nil, err
	}
	if n.RecipientID != actor.ID {
		return nil, apperrors.Forbidden("You can only update your own notifications")
	}
	if n.Read {
		return n, nil
	}
	return s.notes.MarkRead(ctx, id)
}

func SubmissionMessage(paper *models.Paper) string {
	return fmt.Sprintf("New paper submitted: %q by %s", paper.Title, paper.Author)
}

// ReviewNotification builds the author's notification for a review action.
// A status change wins over a comment for the type.
func ReviewNotification(paper *models.Paper, statusChanged, commented bool) (models.Notification, bool) {
	n := models.Notification{RecipientID: paper.AuthorID, Link: LinkMySubmissions}
	switch {
	case statusChanged && paper.IsApproved():
		n.Type = models.NotificationSuccess
		n.Message = fmt.Sprintf("Your paper %q has been approved", paper.Title)
	case statusChanged && paper.IsRejected():
		n.Type = models.NotificationError
		n.Message = fmt.Sprintf("Your paper %q has been rejected", paper.Title)
	case commented:
		n.Type = models.NotificationInfo
		n.Message = fmt.Sprintf("A reviewer commented on your paper %q", paper.Title)
		return n, true
	default:
		return n, false
	}
	if commented {
		n.Message += " with comments"
	}
	return n, true
}
