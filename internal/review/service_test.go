package review

import (
	"context"
	"errors"
	"io"
	"log/slog"
	"sync"
	"testing"

	"github.com/google/uuid"

	"publazer/internal/apperrors"
	"publazer/internal/events"
	"publazer/internal/models"
	"publazer/internal/notify"
	"publazer/internal/similarity"
	"publazer/internal/storage"
	"publazer/internal/store"
)

const testAbstract = "Machine learning methods for predicting crop yields in smallholder farms across East Africa."

var pdfBytes = []byte("%PDF-1.4\n1 0 obj<<>>endobj\ntrailer<<>>\n%%EOF")

type recordedEvent struct {
	topic   string
	payload any
}

type recordingPublisher struct {
	mu     sync.Mutex
	events []recordedEvent
}

func (p *recordingPublisher) Publish(_ context.Context, topic string, payload any) error {
	p.mu.Lock()
	defer p.mu.Unlock()
	p.events = append(p.events, recordedEvent{topic, payload})
	return nil
}

func (p *recordingPublisher) topics() []string {
	p.mu.Lock()
	defer p.mu.Unlock()
	out := make([]string, 0, len(p.events))
	for _, e := range p.events {
		out = append(out, e.topic)
	}
	return out
}

type failingFiles struct{}

func (failingFiles) Upload(context.Context, string, string, []byte) (string, error) {
	return "", errors.New("bucket unavailable")
}

func (failingFiles) Delete(context.Context, string) error {
	return errors.New("bucket unavailable")
}

type fixture struct {
	mem     *store.Memory
	files   *storage.MemoryStorage
	events  *recordingPublisher
	svc     *Service
	student models.User
	other   models.User
	faculty models.User
	admin   models.User
}

func newFixture(t *testing.T) *fixture {
	t.Helper()
	logger := slog.New(slog.NewTextHandler(io.Discard, nil))
	f := &fixture{
		mem:    store.NewMemory(),
		files:  storage.NewMemoryStorage(),
		events: &recordingPublisher{},
	}
	f.svc = NewService(Deps{
		Papers:   f.mem.Papers(),
		Users:    f.mem.Users(),
		Files:    f.files,
		Notifier: notify.NewService(f.mem.Notifications(), f.mem.Users(), logger),
		Scanner:  similarity.NewScanner(f.mem.Corpus()),
		Events:   f.events,
		Logger:   logger,
	})

	f.student = f.addUser(t, "Stu Dent", models.RoleStudent)
	f.other = f.addUser(t, "Oth Er", models.RoleStudent)
	f.faculty = f.addUser(t, "Dr. Fac", models.RoleFaculty)
	f.admin = f.addUser(t, "Ad Min", models.RoleAdmin)
	return f
}

func (f *fixture) addUser(t *testing.T, name, role string) models.User {
	t.Helper()
	u := models.User{Name: name, Email: uuid.NewString() + "@uni.edu", Role: role, Department: "Science"}
	if err := f.mem.Users().Create(context.Background(), &u); err != nil {
		t.Fatal(err)
	}
	return u
}

func actorOf(u models.User) models.Actor {
	return models.Actor{ID: u.ID, Role: u.Role}
}

func (f *fixture) submit(t *testing.T) *models.Paper {
	t.Helper()
	paper, err := f.svc.Submit(context.Background(), actorOf(f.student),
		models.UploadPaperRequest{Title: "Crop Yields", Abstract: testAbstract, Keywords: "ai, farming"},
		&Upload{Filename: "paper.pdf", Data: pdfBytes})
	if err != nil {
		t.Fatalf("Submit failed: %v", err)
	}
	return paper
}

func (f *fixture) notificationsFor(t *testing.T, id uuid.UUID) []models.Notification {
	t.Helper()
	list, err := f.mem.Notifications().ListByRecipient(context.Background(), id)
	if err != nil {
		t.Fatal(err)
	}
	return list
}

func strPtr(s string) *string { return &s }

func TestSubmit(t *testing.T) {
	f := newFixture(t)
	paper := f.submit(t)

	if paper.Status != models.StatusPending || paper.PlagiarismScore != 0 {
		t.Errorf("new paper should be pending with score 0: %+v", paper)
	}
	if paper.AuthorID != f.student.ID || paper.Author != "Stu Dent" || paper.Department != "Science" {
		t.Errorf("author must come from the caller: %+v", paper)
	}
	if f.files.Len() != 1 || paper.FileURL == "" {
		t.Errorf("file not stored: url=%q files=%d", paper.FileURL, f.files.Len())
	}

	for _, u := range []models.User{f.faculty, f.admin} {
		list := f.notificationsFor(t, u.ID)
		if len(list) != 1 || list[0].Link != notify.LinkRepository || list[0].Type != models.NotificationInfo {
			t.Errorf("%s should get one submission notification, got %+v", u.Role, list)
		}
	}
	if n := len(f.notificationsFor(t, f.student.ID)); n != 0 {
		t.Errorf("students get no fan-out, got %d", n)
	}

	if got := f.events.topics(); len(got) != 1 || got[0] != events.TopicPaperSubmitted {
		t.Errorf("events = %v", got)
	}
}

func TestSubmitRejects(t *testing.T) {
	f := newFixture(t)
	ctx := context.Background()
	req := models.UploadPaperRequest{Title: "T", Abstract: testAbstract}

	tests := []struct {
		name     string
		upload   *Upload
		wantCode string
	}{
		{"no file", nil, apperrors.CodeMissingFile},
		{"empty file", &Upload{Filename: "x.pdf"}, apperrors.CodeMissingFile},
		{"image", &Upload{Filename: "x.png", Data: []byte("\x89PNG\r\n\x1a\n\x00\x00\x00\rIHDR")}, apperrors.CodeUnsupportedFile},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, err := f.svc.Submit(ctx, actorOf(f.student), req, tt.upload)
			if appErr, ok := apperrors.As(err); !ok || appErr.Code != tt.wantCode {
				t.Errorf("expected %s, got %v", tt.wantCode, err)
			}
		})
	}

	papers, _ := f.mem.Papers().List(ctx, models.PaperFilter{})
	if len(papers) != 0 {
		t.Errorf("rejected uploads must not create papers, got %d", len(papers))
	}
}

func TestSubmitStorageFailure(t *testing.T) {
	f := newFixture(t)
	f.svc.files = failingFiles{}

	_, err := f.svc.Submit(context.Background(), actorOf(f.student),
		models.UploadPaperRequest{Title: "T", Abstract: testAbstract}, &Upload{Filename: "a.txt", Data: []byte(testAbstract)})
	if !apperrors.Is(err, apperrors.KindStorage) {
		t.Fatalf("expected storage error, got %v", err)
	}
	papers, _ := f.mem.Papers().List(context.Background(), models.PaperFilter{})
	if len(papers) != 0 {
		t.Errorf("no paper should be recorded, got %d", len(papers))
	}
}

func TestReviewApproveNotifiesAuthorOnce(t *testing.T) {
	f := newFixture(t)
	paper := f.submit(t)

	updated, err := f.svc.Update(context.Background(), actorOf(f.faculty), paper.ID,
		models.UpdatePaperRequest{Status: strPtr(models.StatusApproved), Comments: strPtr("  Well argued.  ")})
	if err != nil {
		t.Fatalf("Update failed: %v", err)
	}
	if updated.Status != models.StatusApproved {
		t.Errorf("status = %q", updated.Status)
	}
	if len(updated.Comments) != 1 {
		t.Fatalf("expected one comment, got %d", len(updated.Comments))
	}
	c := updated.Comments[0]
	if c.Text != "Well argued." || c.ReviewerName != "Dr. Fac" || c.ReviewerID != f.faculty.ID || c.Date.IsZero() {
		t.Errorf("unexpected comment: %+v", c)
	}

	list := f.notificationsFor(t, f.student.ID)
	if len(list) != 1 {
		t.Fatalf("author should get exactly one notification, got %d", len(list))
	}
	if list[0].Type != models.NotificationSuccess || list[0].Link != notify.LinkMySubmissions {
		t.Errorf("unexpected notification: %+v", list[0])
	}

	got := f.events.topics()
	if len(got) != 2 || got[1] != events.TopicPaperReviewed {
		t.Errorf("events = %v", got)
	}
}

func TestReviewReject(t *testing.T) {
	f := newFixture(t)
	paper := f.submit(t)

	if _, err := f.svc.Update(context.Background(), actorOf(f.admin), paper.ID,
		models.UpdatePaperRequest{Status: strPtr(models.StatusRejected)}); err != nil {
		t.Fatal(err)
	}
	list := f.notificationsFor(t, f.student.ID)
	if len(list) != 1 || list[0].Type != models.NotificationError {
		t.Errorf("expected one error notification, got %+v", list)
	}
}

func TestCommentsAppend(t *testing.T) {
	f := newFixture(t)
	paper := f.submit(t)
	ctx := context.Background()

	for i, text := range []string{"first", "second", "third"} {
		updated, err := f.svc.Update(ctx, actorOf(f.faculty), paper.ID, models.UpdatePaperRequest{Comments: strPtr(text)})
		if err != nil {
			t.Fatal(err)
		}
		if len(updated.Comments) != i+1 || updated.Comments[i].Text != text {
			t.Fatalf("after %q comments = %+v", text, updated.Comments)
		}
		if updated.Comments[0].Text != "first" {
			t.Errorf("earlier comments must not change: %+v", updated.Comments)
		}
		if updated.Status != models.StatusPending {
			t.Errorf("comment must not change status, got %q", updated.Status)
		}
	}

	list := f.notificationsFor(t, f.student.ID)
	if len(list) != 3 {
		t.Fatalf("expected one notification per comment, got %d", len(list))
	}
	for _, n := range list {
		if n.Type != models.NotificationInfo {
			t.Errorf("comment notification type = %q", n.Type)
		}
	}
}

func TestBlankCommentIgnored(t *testing.T) {
	f := newFixture(t)
	paper := f.submit(t)

	updated, err := f.svc.Update(context.Background(), actorOf(f.faculty), paper.ID, models.UpdatePaperRequest{Comments: strPtr("   ")})
	if err != nil {
		t.Fatal(err)
	}
	if len(updated.Comments) != 0 || len(f.notificationsFor(t, f.student.ID)) != 0 {
		t.Error("blank comment should be a no-op")
	}
}

func TestAlreadyReviewed(t *testing.T) {
	f := newFixture(t)
	paper := f.submit(t)
	ctx := context.Background()

	if _, err := f.svc.Update(ctx, actorOf(f.faculty), paper.ID, models.UpdatePaperRequest{Status: strPtr(models.StatusApproved)}); err != nil {
		t.Fatal(err)
	}

	_, err := f.svc.Update(ctx, actorOf(f.admin), paper.ID, models.UpdatePaperRequest{Status: strPtr(models.StatusRejected)})
	if appErr, ok := apperrors.As(err); !ok || appErr.Code != apperrors.CodeAlreadyReviewed {
		t.Fatalf("expected ALREADY_REVIEWED, got %v", err)
	}

	// Re-sending the current status is dropped, the comment still lands.
	updated, err := f.svc.Update(ctx, actorOf(f.admin), paper.ID,
		models.UpdatePaperRequest{Status: strPtr(models.StatusApproved), Comments: strPtr("late note")})
	if err != nil {
		t.Fatalf("same-status update failed: %v", err)
	}
	if len(updated.Comments) != 1 {
		t.Errorf("comment should be appended, got %+v", updated.Comments)
	}

	list := f.notificationsFor(t, f.student.ID)
	if len(list) != 2 {
		t.Errorf("expected approval plus comment notifications, got %d", len(list))
	}
}

func TestUpdatePermissions(t *testing.T) {
	f := newFixture(t)
	paper := f.submit(t)
	ctx := context.Background()

	tests := []struct {
		name     string
		actor    models.Actor
		req      models.UpdatePaperRequest
		wantKind apperrors.Kind
	}{
		{"student sets status", actorOf(f.student), models.UpdatePaperRequest{Status: strPtr(models.StatusApproved)}, apperrors.KindForbidden},
		{"student comments", actorOf(f.student), models.UpdatePaperRequest{Comments: strPtr("me")}, apperrors.KindForbidden},
		{"other student edits", actorOf(f.other), models.UpdatePaperRequest{Title: strPtr("Mine now")}, apperrors.KindForbidden},
		{"reviewer sets unknown status", actorOf(f.faculty), models.UpdatePaperRequest{Status: strPtr("archived")}, apperrors.KindValidation},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if _, err := f.svc.Update(ctx, tt.actor, paper.ID, tt.req); !apperrors.Is(err, tt.wantKind) {
				t.Errorf("expected %v, got %v", tt.wantKind, err)
			}
		})
	}

	updated, err := f.svc.Update(ctx, actorOf(f.student), paper.ID,
		models.UpdatePaperRequest{Title: strPtr("Crop Yields, revised"), Abstract: strPtr("")})
	if err != nil {
		t.Fatalf("owner edit failed: %v", err)
	}
	if updated.Title != "Crop Yields, revised" || updated.Abstract != testAbstract {
		t.Errorf("unexpected paper after owner edit: %+v", updated)
	}
	if n := len(f.notificationsFor(t, f.student.ID)); n != 0 {
		t.Errorf("descriptive edits send no notification, got %d", n)
	}

	if _, err := f.svc.Update(ctx, actorOf(f.faculty), uuid.New(), models.UpdatePaperRequest{Title: strPtr("x")}); !apperrors.Is(err, apperrors.KindNotFound) {
		t.Errorf("missing paper should be not found, got %v", err)
	}
}

func TestDelete(t *testing.T) {
	f := newFixture(t)
	ctx := context.Background()
	paper := f.submit(t)

	if err := f.svc.Delete(ctx, actorOf(f.other), paper.ID); !apperrors.Is(err, apperrors.KindForbidden) {
		t.Fatalf("non-owner delete should be forbidden, got %v", err)
	}
	if err := f.svc.Delete(ctx, actorOf(f.student), paper.ID); err != nil {
		t.Fatalf("owner delete failed: %v", err)
	}
	if f.files.Len() != 0 {
		t.Error("file should be removed with the paper")
	}
	if err := f.svc.Delete(ctx, actorOf(f.admin), paper.ID); !apperrors.Is(err, apperrors.KindNotFound) {
		t.Errorf("second delete should be not found, got %v", err)
	}
}

func TestDeleteSurvivesFileFailure(t *testing.T) {
	f := newFixture(t)
	paper := f.submit(t)
	f.svc.files = failingFiles{}

	if err := f.svc.Delete(context.Background(), actorOf(f.faculty), paper.ID); err != nil {
		t.Fatalf("file removal failure must not fail delete: %v", err)
	}
	if _, err := f.mem.Papers().Get(context.Background(), paper.ID); !apperrors.Is(err, apperrors.KindNotFound) {
		t.Error("paper record should be gone")
	}
}

func TestScanStored(t *testing.T) {
	f := newFixture(t)
	ctx := context.Background()
	paper := f.submit(t)

	twin := models.Paper{Title: "Twin", Abstract: testAbstract, AuthorID: f.other.ID}
	if err := f.mem.Papers().Create(ctx, &twin); err != nil {
		t.Fatal(err)
	}

	if _, err := f.svc.ScanStored(ctx, actorOf(f.student), paper.ID); !apperrors.Is(err, apperrors.KindForbidden) {
		t.Fatalf("students cannot scan, got %v", err)
	}

	result, err := f.svc.ScanStored(ctx, actorOf(f.faculty), paper.ID)
	if err != nil {
		t.Fatalf("ScanStored failed: %v", err)
	}
	if result.OverallScore != 100 || len(result.MatchedSources) != 1 || result.MatchedSources[0].PaperID != twin.ID {
		t.Errorf("unexpected scan result: %+v", result)
	}

	stored, _ := f.mem.Papers().Get(ctx, paper.ID)
	if stored.PlagiarismScore != 100 {
		t.Errorf("score not stored, got %d", stored.PlagiarismScore)
	}
}

func TestListStatusFilter(t *testing.T) {
	f := newFixture(t)
	ctx := context.Background()
	approved := f.submit(t)
	f.submit(t)
	rejected := f.submit(t)

	if _, err := f.svc.Update(ctx, actorOf(f.faculty), approved.ID, models.UpdatePaperRequest{Status: strPtr(models.StatusApproved)}); err != nil {
		t.Fatal(err)
	}
	if _, err := f.svc.Update(ctx, actorOf(f.faculty), rejected.ID, models.UpdatePaperRequest{Status: strPtr(models.StatusRejected)}); err != nil {
		t.Fatal(err)
	}

	list, err := f.svc.List(ctx, models.PaperFilter{Status: models.StatusApproved})
	if err != nil {
		t.Fatal(err)
	}
	if len(list) != 1 || list[0].ID != approved.ID {
		t.Errorf("approved listing = %+v", list)
	}

	if _, err := f.svc.List(ctx, models.PaperFilter{Status: "bogus"}); !apperrors.Is(err, apperrors.KindValidation) {
		t.Errorf("bad status filter should fail validation, got %v", err)
	}
}
