// Package store declares the persistence contracts for users, papers and
// notifications. internal/database implements them on Postgres; Memory backs
// demo mode and tests.
package store

import (
	"context"

	"github.com/google/uuid"

	"publazer/internal/models"
)

type Users interface {
	Create(ctx context.Context, user *models.User) error
	GetByID(ctx context.Context, id uuid.UUID) (*models.User, error)
	GetByEmail(ctx context.Context, email string) (*models.User, error)
	List(ctx context.Context) ([]models.User, error)
	ListByRoles(ctx context.Context, roles ...string) ([]models.User, error)
	// Update rewrites profile fields; the password hash only when newHash is non-nil.
	Update(ctx context.Context, user *models.User, newHash *string) error
	Delete(ctx context.Context, id uuid.UUID) error
}

type Papers interface {
	Create(ctx context.Context, paper *models.Paper) error
	Get(ctx context.Context, id uuid.UUID) (*models.Paper, error)
	List(ctx context.Context, filter models.PaperFilter) ([]models.Paper, error)
	// Update applies patch atomically. A supplied status is only written while
	// the paper is still pending.
	Update(ctx context.Context, id uuid.UUID, patch models.PaperPatch) (*models.Paper, error)
	SetPlagiarismScore(ctx context.Context, id uuid.UUID, score int) error
	Delete(ctx context.Context, id uuid.UUID) error
}

type Notifications interface {
	Create(ctx context.Context, n *models.Notification) error
	CreateMany(ctx context.Context, ns []models.Notification) (int, error)
	Get(ctx context.Context, id uuid.UUID) (*models.Notification, error)
	ListByRecipient(ctx context.Context, recipientID uuid.UUID) ([]models.Notification, error)
	MarkRead(ctx context.Context, id uuid.UUID) (*models.Notification, error)
}

// Corpus supplies the abstracts the similarity scanner compares against.
type Corpus interface {
	Abstracts(ctx context.Context) ([]models.AbstractRef, error)
}
