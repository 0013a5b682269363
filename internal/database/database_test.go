package database

import (
	"context"
	"os"
	"testing"

	"github.com/google/uuid"

	"publazer/internal/apperrors"
	"publazer/internal/models"
	"publazer/internal/store"
)

var (
	_ store.Users         = (*UserStore)(nil)
	_ store.Papers        = (*PaperStore)(nil)
	_ store.Corpus        = (*PaperStore)(nil)
	_ store.Notifications = (*NotificationStore)(nil)
)

// setupTestDB connects to PUBLAZER_TEST_DATABASE_URL and skips otherwise.
func setupTestDB(t *testing.T) *Database {
	t.Helper()
	url := os.Getenv("PUBLAZER_TEST_DATABASE_URL")
	if url == "" {
		t.Skip("PUBLAZER_TEST_DATABASE_URL not set")
	}

	ctx := context.Background()
	db, err := Connect(ctx, url)
	if err != nil {
		t.Fatalf("Failed to connect to database: %v", err)
	}
	t.Cleanup(db.Close)

	if err := RunMigrations(ctx, db); err != nil {
		t.Fatalf("Failed to run migrations: %v", err)
	}
	return db
}

func TestLikeEscaper(t *testing.T) {
	tests := map[string]string{
		"plain":    "plain",
		"50%":      `50\%`,
		"snake_id": `snake\_id`,
		`back\`:    `back\\`,
	}
	for in, want := range tests {
		if got := likeEscaper.Replace(in); got != want {
			t.Errorf("escape(%q) = %q, want %q", in, got, want)
		}
	}
}

func TestUserStoreDuplicateEmail(t *testing.T) {
	db := setupTestDB(t)
	users := NewUserStore(db)
	ctx := context.Background()

	email := "dup_" + uuid.NewString() + "@test.edu"
	u := models.User{Name: "First", Email: email, PasswordHash: "x", Role: models.RoleStudent}
	if err := users.Create(ctx, &u); err != nil {
		t.Fatalf("Create failed: %v", err)
	}
	t.Cleanup(func() { _ = users.Delete(ctx, u.ID) })

	again := models.User{Name: "Second", Email: email, PasswordHash: "x", Role: models.RoleStudent}
	if err := users.Create(ctx, &again); !apperrors.Is(err, apperrors.KindDuplicate) {
		t.Fatalf("expected duplicate error, got %v", err)
	}

	got, err := users.GetByEmail(ctx, email)
	if err != nil || got.ID != u.ID {
		t.Fatalf("GetByEmail = %+v, %v", got, err)
	}
}

func TestPaperStoreCommentsAndStatusGuard(t *testing.T) {
	db := setupTestDB(t)
	papers := NewPaperStore(db)
	ctx := context.Background()

	p := models.Paper{Title: "Guard " + uuid.NewString(), Abstract: "abstract", AuthorID: uuid.New()}
	if err := papers.Create(ctx, &p); err != nil {
		t.Fatalf("Create failed: %v", err)
	}
	t.Cleanup(func() { _ = papers.Delete(ctx, p.ID) })

	comment := models.Comment{Text: "first", ReviewerName: "Dr. R", ReviewerID: uuid.New()}
	approved := models.StatusApproved
	updated, err := papers.Update(ctx, p.ID, models.PaperPatch{Status: &approved, Comment: &comment})
	if err != nil {
		t.Fatalf("Update failed: %v", err)
	}
	if updated.Status != models.StatusApproved || len(updated.Comments) != 1 {
		t.Fatalf("unexpected paper after review: %+v", updated)
	}

	rejected := models.StatusRejected
	_, err = papers.Update(ctx, p.ID, models.PaperPatch{Status: &rejected})
	if appErr, ok := apperrors.As(err); !ok || appErr.Code != apperrors.CodeAlreadyReviewed {
		t.Fatalf("expected ALREADY_REVIEWED, got %v", err)
	}

	second := models.Comment{Text: "second"}
	updated, err = papers.Update(ctx, p.ID, models.PaperPatch{Comment: &second})
	if err != nil {
		t.Fatalf("comment-only update failed: %v", err)
	}
	if len(updated.Comments) != 2 || updated.Comments[0].Text != "first" || updated.Comments[1].Text != "second" {
		t.Errorf("comments not appended in order: %+v", updated.Comments)
	}

	if _, err := papers.Update(ctx, uuid.New(), models.PaperPatch{Status: &rejected}); !apperrors.Is(err, apperrors.KindNotFound) {
		t.Errorf("expected not found for missing paper, got %v", err)
	}
}

func TestNotificationStoreCopy(t *testing.T) {
	db := setupTestDB(t)
	notes := NewNotificationStore(db)
	ctx := context.Background()
	recipient := uuid.New()

	n, err := notes.CreateMany(ctx, []models.Notification{
		{RecipientID: recipient, Message: "a"},
		{RecipientID: recipient, Message: "b", Type: models.NotificationSuccess, Link: "/my-submissions"},
	})
	if err != nil || n != 2 {
		t.Fatalf("CreateMany = %d, %v", n, err)
	}

	list, err := notes.ListByRecipient(ctx, recipient)
	if err != nil || len(list) != 2 {
		t.Fatalf("ListByRecipient = %d, %v", len(list), err)
	}
	read, err := notes.MarkRead(ctx, list[0].ID)
	if err != nil || !read.Read {
		t.Fatalf("MarkRead = %+v, %v", read, err)
	}
}
