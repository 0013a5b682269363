package models

import (
	"time"

	"github.com/google/uuid"
)

const (
	StatusPending  = "pending"
	StatusApproved = "approved"
	StatusRejected = "rejected"
)

func IsValidStatus(status string) bool {
	switch status {
	case StatusPending, StatusApproved, StatusRejected:
		return true
	}
	return false
}

type Paper struct {
	ID              uuid.UUID `json:"id" db:"id"`
	Title           string    `json:"title" db:"title"`
	Abstract        string    `json:"abstract" db:"abstract"`
	Keywords        string    `json:"keywords" db:"keywords"`
	FileURL         string    `json:"fileUrl" db:"file_url"`
	Author          string    `json:"author" db:"author"`
	AuthorID        uuid.UUID `json:"authorId" db:"author_id"`
	Department      string    `json:"department" db:"department"`
	UploadDate      time.Time `json:"uploadDate" db:"upload_date"`
	Status          string    `json:"status" db:"status"`
	PlagiarismScore int       `json:"plagiarismScore" db:"plagiarism_score"`
	Comments        []Comment `json:"comments" db:"comments"`
	UpdatedAt       time.Time `json:"updatedAt" db:"updated_at"`
}

type Comment struct {
	Text         string    `json:"text"`
	ReviewerName string    `json:"reviewerName"`
	ReviewerID   uuid.UUID `json:"reviewerId"`
	Date         time.Time `json:"date"`
}

// PaperFilter narrows a repository listing. Zero values mean "any".
type PaperFilter struct {
	AuthorID *uuid.UUID
	Status   string
	Search   string
}

// PaperPatch carries a partial update; nil fields are left untouched.
type PaperPatch struct {
	Title    *string
	Abstract *string
	Keywords *string
	Status   *string
	Comment  *Comment
}

func (p PaperPatch) IsEmpty() bool {
	return p.Title == nil && p.Abstract == nil && p.Keywords == nil && p.Status == nil && p.Comment == nil
}

type UploadPaperRequest struct {
	Title      string `form:"title" binding:"required,max=500"`
	Abstract   string `form:"abstract" binding:"required"`
	Keywords   string `form:"keywords" binding:"max=1000"`
	Department string `form:"department" binding:"max=255"`
}

type UpdatePaperRequest struct {
	Title    *string `json:"title" binding:"omitempty,max=500"`
	Abstract *string `json:"abstract"`
	Keywords *string `json:"keywords" binding:"omitempty,max=1000"`
	Status   *string `json:"status" binding:"omitempty,paper_status"`
	Comments *string `json:"comments" binding:"omitempty,max=5000"`
}

// AbstractRef is the slice of a paper the similarity scanner reads.
type AbstractRef struct {
	ID       uuid.UUID
	Title    string
	Abstract string
}

func (p *Paper) IsPending() bool {
	return p.Status == StatusPending
}

func (p *Paper) IsApproved() bool {
	return p.Status == StatusApproved
}

func (p *Paper) IsRejected() bool {
	return p.Status == StatusRejected
}

func (p *Paper) IsOwnedBy(userID uuid.UUID) bool {
	return p.AuthorID == userID
}
