package store

import (
	"context"
	"sort"
	"strings"
	"sync"
	"time"

	"github.com/google/uuid"

	"publazer/internal/apperrors"
	"publazer/internal/models"
)

// Memory keeps every collection in process. It is safe for concurrent use.
type Memory struct {
	mu            sync.RWMutex
	users         map[uuid.UUID]models.User
	papers        map[uuid.UUID]models.Paper
	notifications map[uuid.UUID]models.Notification
	now           func() time.Time
}

func NewMemory() *Memory {
	return &Memory{
		users:         make(map[uuid.UUID]models.User),
		papers:        make(map[uuid.UUID]models.Paper),
		notifications: make(map[uuid.UUID]models.Notification),
		now:           time.Now,
	}
}

// Users, Papers, Notifications and Corpus expose the typed views of m.
func (m *Memory) Users() Users                 { return memUsers{m} }
func (m *Memory) Papers() Papers               { return memPapers{m} }
func (m *Memory) Notifications() Notifications { return memNotifications{m} }
func (m *Memory) Corpus() Corpus               { return memPapers{m} }

type memUsers struct{ m *Memory }

func (s memUsers) Create(_ context.Context, user *models.User) error {
	s.m.mu.Lock()
	defer s.m.mu.Unlock()

	user.Email = strings.ToLower(strings.TrimSpace(user.Email))
	if s.m.emailTaken(user.Email, uuid.Nil) {
		return apperrors.Duplicate(apperrors.CodeDuplicateEmail, "Email already in use")
	}
	if user.ID == uuid.Nil {
		user.ID = uuid.New()
	}
	now := s.m.now()
	user.CreatedAt, user.UpdatedAt = now, now
	s.m.users[user.ID] = *user
	return nil
}

func (m *Memory) emailTaken(email string, except uuid.UUID) bool {
	for id, u := range m.users {
		if id != except && u.Email == email {
			return true
		}
	}
	return false
}

func (s memUsers) GetByID(_ context.Context, id uuid.UUID) (*models.User, error) {
	s.m.mu.RLock()
	defer s.m.mu.RUnlock()

	u, ok := s.m.users[id]
	if !ok {
		return nil, apperrors.NotFound(apperrors.CodeUserNotFound, "User not found")
	}
	return &u, nil
}

func (s memUsers) GetByEmail(_ context.Context, email string) (*models.User, error) {
	s.m.mu.RLock()
	defer s.m.mu.RUnlock()

	email = strings.ToLower(strings.TrimSpace(email))
	for _, u := range s.m.users {
		if u.Email == email {
			return &u, nil
		}
	}
	return nil, apperrors.NotFound(apperrors.CodeUserNotFound, "User not found")
}

func (s memUsers) List(_ context.Context) ([]models.User, error) {
	return s.filter(func(models.User) bool { return true }), nil
}

func (s memUsers) ListByRoles(_ context.Context, roles ...string) ([]models.User, error) {
	return s.filter(func(u models.User) bool {
		for _, r := range roles {
			if u.Role == r {
				return true
			}
		}
		return false
	}), nil
}

func (s memUsers) filter(keep func(models.User) bool) []models.User {
	s.m.mu.RLock()
	defer s.m.mu.RUnlock()

	users := make([]models.User, 0, len(s.m.users))
	for _, u := range s.m.users {
		if keep(u) {
			users = append(users, u)
		}
	}
	sort.Slice(users, func(i, j int) bool {
		if users[i].CreatedAt.Equal(users[j].CreatedAt) {
			return users[i].Email < users[j].Email
		}
		return users[i].CreatedAt.Before(users[j].CreatedAt)
	})
	return users
}

func (s memUsers) Update(_ context.Context, user *models.User, newHash *string) error {
	s.m.mu.Lock()
	defer s.m.mu.Unlock()

	existing, ok := s.m.users[user.ID]
	if !ok {
		return apperrors.NotFound(apperrors.CodeUserNotFound, "User not found")
	}
	email := strings.ToLower(strings.TrimSpace(user.Email))
	if s.m.emailTaken(email, user.ID) {
		return apperrors.Duplicate(apperrors.CodeDuplicateEmail, "Email already in use")
	}

	existing.Name = user.Name
	existing.Email = email
	existing.Role = user.Role
	existing.Department = user.Department
	if newHash != nil {
		existing.PasswordHash = *newHash
	}
	existing.UpdatedAt = s.m.now()
	s.m.users[user.ID] = existing
	*user = existing
	return nil
}

func (s memUsers) Delete(_ context.Context, id uuid.UUID) error {
	s.m.mu.Lock()
	defer s.m.mu.Unlock()

	if _, ok := s.m.users[id]; !ok {
		return apperrors.NotFound(apperrors.CodeUserNotFound, "User not found")
	}
	delete(s.m.users, id)
	return nil
}

type memPapers struct{ m *Memory }

func copyPaper(p models.Paper) models.Paper {
	p.Comments = append([]models.Comment{}, p.Comments...)
	return p
}

func (s memPapers) Create(_ context.Context, paper *models.Paper) error {
	s.m.mu.Lock()
	defer s.m.mu.Unlock()

	if paper.ID == uuid.Nil {
		paper.ID = uuid.New()
	}
	if paper.Status == "" {
		paper.Status = models.StatusPending
	}
	if paper.Comments == nil {
		paper.Comments = []models.Comment{}
	}
	now := s.m.now()
	if paper.UploadDate.IsZero() {
		paper.UploadDate = now
	}
	paper.UpdatedAt = now
	s.m.papers[paper.ID] = copyPaper(*paper)
	return nil
}

func (s memPapers) Get(_ context.Context, id uuid.UUID) (*models.Paper, error) {
	s.m.mu.RLock()
	defer s.m.mu.RUnlock()

	p, ok := s.m.papers[id]
	if !ok {
		return nil, apperrors.NotFound(apperrors.CodePaperNotFound, "Paper not found")
	}
	p = copyPaper(p)
	return &p, nil
}

func (s memPapers) List(_ context.Context, filter models.PaperFilter) ([]models.Paper, error) {
	s.m.mu.RLock()
	defer s.m.mu.RUnlock()

	search := strings.ToLower(filter.Search)
	papers := make([]models.Paper, 0)
	for _, p := range s.m.papers {
		if filter.AuthorID != nil && p.AuthorID != *filter.AuthorID {
			continue
		}
		if filter.Status != "" && p.Status != filter.Status {
			continue
		}
		if search != "" &&
			!strings.Contains(strings.ToLower(p.Title), search) &&
			!strings.Contains(strings.ToLower(p.Keywords), search) {
			continue
		}
		papers = append(papers, copyPaper(p))
	}
	sort.Slice(papers, func(i, j int) bool {
		if papers[i].UploadDate.Equal(papers[j].UploadDate) {
			return papers[i].ID.String() < papers[j].ID.String()
		}
		return papers[i].UploadDate.After(papers[j].UploadDate)
	})
	return papers, nil
}

func (s memPapers) Update(_ context.Context, id uuid.UUID, patch models.PaperPatch) (*models.Paper, error) {
	s.m.mu.Lock()
	defer s.m.mu.Unlock()

	p, ok := s.m.papers[id]
	if !ok {
		return nil, apperrors.NotFound(apperrors.CodePaperNotFound, "Paper not found")
	}
	if patch.Status != nil && p.Status != models.StatusPending {
		return nil, apperrors.Validation(apperrors.CodeAlreadyReviewed, "Paper has already been reviewed")
	}

	p = copyPaper(p)
	if patch.Title != nil {
		p.Title = *patch.Title
	}
	if patch.Abstract != nil {
		p.Abstract = *patch.Abstract
	}
	if patch.Keywords != nil {
		p.Keywords = *patch.Keywords
	}
	if patch.Status != nil {
		p.Status = *patch.Status
	}
	if patch.Comment != nil {
		p.Comments = append(p.Comments, *patch.Comment)
	}
	p.UpdatedAt = s.m.now()
	s.m.papers[id] = p

	out := copyPaper(p)
	return &out, nil
}

func (s memPapers) SetPlagiarismScore(_ context.Context, id uuid.UUID, score int) error {
	s.m.mu.Lock()
	defer s.m.mu.Unlock()

	p, ok := s.m.papers[id]
	if !ok {
		return apperrors.NotFound(apperrors.CodePaperNotFound, "Paper not found")
	}
	p.PlagiarismScore = score
	s.m.papers[id] = p
	return nil
}

func (s memPapers) Delete(_ context.Context, id uuid.UUID) error {
	s.m.mu.Lock()
	defer s.m.mu.Unlock()

	if _, ok := s.m.papers[id]; !ok {
		return apperrors.NotFound(apperrors.CodePaperNotFound, "Paper not found")
	}
	delete(s.m.papers, id)
	return nil
}

func (s memPapers) Abstracts(_ context.Context) ([]models.AbstractRef, error) {
	s.m.mu.RLock()
	defer s.m.mu.RUnlock()

	refs := make([]models.AbstractRef, 0, len(s.m.papers))
	for _, p := range s.m.papers {
		refs = append(refs, models.AbstractRef{ID: p.ID, Title: p.Title, Abstract: p.Abstract})
	}
	sort.Slice(refs, func(i, j int) bool { return refs[i].ID.String() < refs[j].ID.String() })
	return refs, nil
}

type memNotifications struct{ m *Memory }

func (s memNotifications) Create(_ context.Context, n *models.Notification) error {
	s.m.mu.Lock()
	defer s.m.mu.Unlock()

	s.m.insertNotification(n)
	return nil
}

func (m *Memory) insertNotification(n *models.Notification) {
	if n.ID == uuid.Nil {
		n.ID = uuid.New()
	}
	if n.Type == "" {
		n.Type = models.NotificationInfo
	}
	if n.CreatedAt.IsZero() {
		n.CreatedAt = m.now()
	}
	m.notifications[n.ID] = *n
}

func (s memNotifications) CreateMany(_ context.Context, ns []models.Notification) (int, error) {
	s.m.mu.Lock()
	defer s.m.mu.Unlock()

	for i := range ns {
		s.m.insertNotification(&ns[i])
	}
	return len(ns), nil
}

func (s memNotifications) Get(_ context.Context, id uuid.UUID) (*models.Notification, error) {
	s.m.mu.RLock()
	defer s.m.mu.RUnlock()

	n, ok := s.m.notifications[id]
	if !ok {
		return nil, apperrors.NotFound("", "Notification not found")
	}
	return &n, nil
}

func (s memNotifications) ListByRecipient(_ context.Context, recipientID uuid.UUID) ([]models.Notification, error) {
	s.m.mu.RLock()
	defer s.m.mu.RUnlock()

	out := make([]models.Notification, 0)
	for _, n := range s.m.notifications {
		if n.RecipientID == recipientID {
			out = append(out, n)
		}
	}
	sort.Slice(out, func(i, j int) bool {
		if out[i].CreatedAt.Equal(out[j].CreatedAt) {
			return out[i].ID.String() < out[j].ID.String()
		}
		return out[i].CreatedAt.After(out[j].CreatedAt)
	})
	return out, nil
}

func (s memNotifications) MarkRead(_ context.Context, id uuid.UUID) (*models.Notification, error) {
	s.m.mu.Lock()
	defer s.m.mu.Unlock()

	n, ok := s.m.notifications[id]
	if !ok {
		return nil, apperrors.NotFound("", "Notification not found")
	}
	n.Read = true
	s.m.notifications[id] = n
	return &n, nil
}
