package database

import (
	"context"
	"errors"
	"time"

	"publazer/internal/apperrors"
	"publazer/internal/models"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5"
)

const notificationColumns = `id, recipient_id, message, type, link, read, created_at`

// NotificationStore implements store.Notifications on Postgres.
type NotificationStore struct {
	db *Database
}

func NewNotificationStore(db *Database) *NotificationStore {
	return &NotificationStore{db: db}
}

func scanNotification(row pgx.Row) (*models.Notification, error) {
	var n models.Notification
	err := row.Scan(&n.ID, &n.RecipientID, &n.Message, &n.Type, &n.Link, &n.Read, &n.CreatedAt)
	if errors.Is(err, pgx.ErrNoRows) {
		return nil, apperrors.NotFound("", "Notification not found")
	}
	if err != nil {
		return nil, storageErr("failed to read notification", err)
	}
	return &n, nil
}

func prepareNotification(n *models.Notification, now time.Time) {
	if n.ID == uuid.Nil {
		n.ID = uuid.New()
	}
	if n.Type == "" {
		n.Type = models.NotificationInfo
	}
	if n.CreatedAt.IsZero() {
		n.CreatedAt = now
	}
}

func (s *NotificationStore) Create(ctx context.Context, n *models.Notification) error {
	prepareNotification(n, time.Now())
	_, err := s.db.Exec(ctx,
		`INSERT INTO notifications (`+notificationColumns+`) VALUES ($1, $2, $3, $4, $5, $6, $7)`,
		n.ID, n.RecipientID, n.Message, n.Type, n.Link, n.Read, n.CreatedAt,
	)
	if err != nil {
		return storageErr("failed to create notification", err)
	}
	return nil
}

// CreateMany writes the batch with a single COPY.
func (s *NotificationStore) CreateMany(ctx context.Context, ns []models.Notification) (int, error) {
	if len(ns) == 0 {
		return 0, nil
	}
	now := time.Now()
	for i := range ns {
		prepareNotification(&ns[i], now)
	}

	copied, err := s.db.Pool.CopyFrom(ctx,
		pgx.Identifier{"notifications"},
		[]string{"id", "recipient_id", "message", "type", "link", "read", "created_at"},
		pgx.CopyFromSlice(len(ns), func(i int) ([]any, error) {
			n := ns[i]
			return []any{n.ID, n.RecipientID, n.Message, n.Type, n.Link, n.Read, n.CreatedAt}, nil
		}),
	)
	if err != nil {
		return 0, storageErr("failed to create notifications", err)
	}
	return int(copied), nil
}

func (s *NotificationStore) Get(ctx context.Context, id uuid.UUID) (*models.Notification, error) {
	return scanNotification(s.db.QueryRow(ctx, `SELECT `+notificationColumns+` FROM notifications WHERE id = $1`, id))
}

func (s *NotificationStore) ListByRecipient(ctx context.Context, recipientID uuid.UUID) ([]models.Notification, error) {
	rows, err := s.db.Query(ctx,
		`SELECT `+notificationColumns+` FROM notifications WHERE recipient_id = $1 ORDER BY created_at DESC, id`,
		recipientID,
	)
	if err != nil {
		return nil, storageErr("failed to list notifications", err)
	}
	defer rows.Close()

	out := make([]models.Notification, 0)
	for rows.Next() {
		n, err := scanNotification(rows)
		if err != nil {
			return nil, err
		}
		out = append(out, *n)
	}
	if err := rows.Err(); err != nil {
		return nil, storageErr("failed to list notifications", err)
	}
	return out, nil
}

func (s *NotificationStore) MarkRead(ctx context.Context, id uuid.UUID) (*models.Notification, error) {
	return scanNotification(s.db.QueryRow(ctx,
		`UPDATE notifications SET read = TRUE WHERE id = $1 RETURNING `+notificationColumns, id,
	))
}
