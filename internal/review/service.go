// Package review implements the paper lifecycle: submission, listing, the
// pending → approved/rejected review with comments, deletion and stored-paper
// similarity scans.
package review

import (
	"context"
	"fmt"
	"log/slog"
	"strings"
	"time"

	"github.com/gabriel-vasile/mimetype"
	"github.com/google/uuid"

	"publazer/internal/apperrors"
	"publazer/internal/events"
	"publazer/internal/models"
	"publazer/internal/notify"
	"publazer/internal/similarity"
	"publazer/internal/store"
)

// DefaultMaxUploadBytes applies when no limit is configured.
const DefaultMaxUploadBytes = 20 << 20

// FileStore keeps uploaded paper files.
type FileStore interface {
	Upload(ctx context.Context, ext, contentType string, data []byte) (string, error)
	Delete(ctx context.Context, fileURL string) error
}

type EventPublisher interface {
	Publish(ctx context.Context, topic string, payload any) error
}

// Upload is a received paper file.
type Upload struct {
	Filename string
	Data     []byte
}

// acceptedTypes maps the document types a paper may be uploaded as to the
// stored file extension.
var acceptedTypes = []struct {
	mime string
	ext  string
}{
	{"application/pdf", ".pdf"},
	{"application/vnd.openxmlformats-officedocument.wordprocessingml.document", ".docx"},
	{"application/msword", ".doc"},
	{"application/x-ole-storage", ".doc"},
	{"text/plain", ".txt"},
}

type Deps struct {
	Papers         store.Papers
	Users          store.Users
	Files          FileStore
	Notifier       *notify.Service
	Scanner        *similarity.Scanner
	Events         EventPublisher
	MaxUploadBytes int64
	Logger         *slog.Logger
}

type Service struct {
	papers   store.Papers
	users    store.Users
	files    FileStore
	notifier *notify.Service
	scanner  *similarity.Scanner
	events   EventPublisher
	maxBytes int64
	logger   *slog.Logger
	now      func() time.Time
}

func NewService(d Deps) *Service {
	maxBytes := d.MaxUploadBytes
	if maxBytes <= 0 {
		maxBytes = DefaultMaxUploadBytes
	}
	return &Service{
		papers:   d.Papers,
		users:    d.Users,
		files:    d.Files,
		notifier: d.Notifier,
		scanner:  d.Scanner,
		events:   d.Events,
		maxBytes: maxBytes,
		logger:   d.Logger,
		now:      time.Now,
	}
}

// Submit stores the file, records the paper as pending under the caller's
// name and announces it to every reviewer.
func (s *Service) Submit(ctx context.Context, actor models.Actor, req models.UploadPaperRequest, upload *Upload) (*models.Paper, error) {
	if upload == nil || len(upload.Data) == 0 {
		return nil, apperrors.Validation(apperrors.CodeMissingFile, "No file uploaded")
	}
	if int64(len(upload.Data)) > s.maxBytes {
		return nil, apperrors.Validation("", fmt.Sprintf("File exceeds the %d MB limit", s.maxBytes>>20))
	}
	contentType, ext, err := sniff(upload.Data)
	if err != nil {
		return nil, err
	}

	title := strings.TrimSpace(req.Title)
	abstract := strings.TrimSpace(req.Abstract)
	if title == "" || abstract == "" {
		return nil, apperrors.Validation("", "Title and abstract are required")
	}

	author, err := s.users.GetByID(ctx, actor.ID)
	if err != nil {
		if apperrors.Is(err, apperrors.KindNotFound) {
			return nil, apperrors.Unauthorized("Account no longer exists")
		}
		return nil, err
	}

	department := strings.TrimSpace(req.Department)
	if department == "" {
		department = author.Department
	}

	fileURL, err := s.files.Upload(ctx, ext, contentType, upload.Data)
	if err != nil {
		return nil, apperrors.Storage("Failed to upload file", err)
	}

	paper := &models.Paper{
		Title:      title,
		Abstract:   abstract,
		Keywords:   strings.TrimSpace(req.Keywords),
		FileURL:    fileURL,
		Author:     author.Name,
		AuthorID:   author.ID,
		Department: department,
		Status:     models.StatusPending,
		Comments:   []models.Comment{},
	}
	if err := s.papers.Create(ctx, paper); err != nil {
		s.removeFile(ctx, paper.ID, fileURL)
		return nil, err
	}
	s.logger.InfoContext(ctx, "paper submitted", "paper_id", paper.ID, "author_id", author.ID, "file", upload.Filename)

	notified := s.notifier.AnnounceSubmission(ctx, paper)
	s.publish(ctx, events.TopicPaperSubmitted, events.PaperSubmitted{
		PaperID:    paper.ID,
		Title:      paper.Title,
		Author:     paper.Author,
		AuthorID:   paper.AuthorID,
		Department: paper.Department,
		Reviewers:  notified,
		OccurredAt: s.now().UTC(),
	})
	return paper, nil
}

func sniff(data []byte) (contentType, ext string, err error) {
	mtype := mimetype.Detect(data)
	for _, t := range acceptedTypes {
		if mtype.Is(t.mime) {
			return t.mime, t.ext, nil
		}
	}
	return "", "", apperrors.Validation(apperrors.CodeUnsupportedFile,
		fmt.Sprintf("Unsupported file type %s, upload a PDF, Word or text document", mtype.String()))
}

func (s *Service) Get(ctx context.Context, id uuid.UUID) (*models.Paper, error) {
	return s.papers.Get(ctx, id)
}

func (s *Service) List(ctx context.Context, filter models.PaperFilter) ([]models.Paper, error) {
	if filter.Status != "" && !models.IsValidStatus(filter.Status) {
		return nil, apperrors.Validation("", "Invalid status filter")
	}
	return s.papers.List(ctx, filter)
}

// Update applies a partial edit. Faculty and admins may review: set a final
// status and append a comment. The author may only edit the descriptive
// fields of their own paper.
func (s *Service) Update(ctx context.Context, actor models.Actor, id uuid.UUID, req models.UpdatePaperRequest) (*models.Paper, error) {
	paper, err := s.papers.Get(ctx, id)
	if err != nil {
		return nil, err
	}

	reviewer := actor.CanReview()
	if !reviewer && !paper.IsOwnedBy(actor.ID) {
		return nil, apperrors.Forbidden("You can only edit your own papers")
	}

	var patch models.PaperPatch
	patch.Title = nonBlank(req.Title)
	patch.Abstract = nonBlank(req.Abstract)
	patch.Keywords = nonBlank(req.Keywords)

	status := nonBlank(req.Status)
	comment := nonBlank(req.Comments)
	if !reviewer && (status != nil || comment != nil) {
		return nil, apperrors.Forbidden("Only faculty or admin can review papers")
	}

	if status != nil && *status != paper.Status {
		if *status != models.StatusApproved && *status != models.StatusRejected {
			return nil, apperrors.Validation("", "Status must be approved or rejected")
		}
		if !paper.IsPending() {
			return nil, apperrors.Validation(apperrors.CodeAlreadyReviewed, "Paper has already been reviewed")
		}
		patch.Status = status
	}

	if comment != nil {
		patch.Comment = &models.Comment{
			Text:         *comment,
			ReviewerName: s.reviewerName(ctx, actor),
			ReviewerID:   actor.ID,
			Date:         s.now().UTC(),
		}
	}

	if patch.IsEmpty() {
		return paper, nil
	}

	updated, err := s.papers.Update(ctx, id, patch)
	if err != nil {
		return nil, err
	}

	statusChanged := patch.Status != nil
	commented := patch.Comment != nil
	if statusChanged || commented {
		s.logger.InfoContext(ctx, "paper reviewed", "paper_id", id, "reviewer_id", actor.ID, "status", updated.Status, "status_changed", statusChanged, "commented", commented)
		s.notifier.NotifyAuthor(ctx, updated, statusChanged, commented)

		ev := events.PaperReviewed{
			PaperID:       updated.ID,
			Title:         updated.Title,
			AuthorID:      updated.AuthorID,
			Status:        updated.Status,
			StatusChanged: statusChanged,
			OccurredAt:    s.now().UTC(),
		}
		if commented {
			ev.Comment = patch.Comment.Text
			ev.ReviewerName = patch.Comment.ReviewerName
		}
		s.publish(ctx, events.TopicPaperReviewed, ev)
	}
	return updated, nil
}

func nonBlank(v *string) *string {
	if v == nil {
		return nil
	}
	trimmed := strings.TrimSpace(*v)
	if trimmed == "" {
		return nil
	}
	return &trimmed
}

func (s *Service) reviewerName(ctx context.Context, actor models.Actor) string {
	u, err := s.users.GetByID(ctx, actor.ID)
	if err != nil {
		s.logger.WarnContext(ctx, "reviewer lookup failed", "reviewer_id", actor.ID, "error", err)
		return "Reviewer"
	}
	return u.Name
}

// Delete removes the paper record, then tries to remove its file.
func (s *Service) Delete(ctx context.Context, actor models.Actor, id uuid.UUID) error {
	paper, err := s.papers.Get(ctx, id)
	if err != nil {
		return err
	}
	if !actor.CanReview() && !paper.IsOwnedBy(actor.ID) {
		return apperrors.Forbidden("You can only delete your own papers")
	}

	if err := s.papers.Delete(ctx, id); err != nil {
		return err
	}
	s.logger.InfoContext(ctx, "paper deleted", "paper_id", id, "by", actor.ID)

	if paper.FileURL != "" {
		s.removeFile(ctx, id, paper.FileURL)
	}
	return nil
}

// ScanStored compares a stored paper's abstract with every other abstract
// and records the overall score on the paper.
func (s *Service) ScanStored(ctx context.Context, actor models.Actor, id uuid.UUID) (*models.ScanResult, error) {
	if !actor.CanReview() {
		return nil, apperrors.Forbidden("Only faculty or admin can scan papers")
	}
	paper, err := s.papers.Get(ctx, id)
	if err != nil {
		return nil, err
	}

	result, err := s.scanner.Scan(ctx, paper.Abstract, paper.ID)
	if err != nil {
		return nil, err
	}
	if err := s.papers.SetPlagiarismScore(ctx, id, result.OverallScore); err != nil {
		return nil, err
	}
	s.logger.InfoContext(ctx, "paper scanned", "paper_id", id, "score", result.OverallScore)
	return result, nil
}

func (s *Service) removeFile(ctx context.Context, paperID uuid.UUID, fileURL string) {
	if err := s.files.Delete(ctx, fileURL); err != nil {
		s.logger.WarnContext(ctx, "failed to delete paper file", "paper_id", paperID, "file", fileURL, "error", err)
	}
}

func (s *Service) publish(ctx context.Context, topic string, payload any) {
	if s.events == nil {
		return
	}
	if err := s.events.Publish(ctx, topic, payload); err != nil {
		s.logger.WarnContext(ctx, "failed to publish event", "topic", topic, "error", err)
	}
}
