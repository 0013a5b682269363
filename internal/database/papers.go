package database

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"strings"

	"publazer/internal/apperrors"
	"publazer/internal/models"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5"
)

const paperColumns = `id, title, abstract, keywords, file_url, author, author_id, department,
	upload_date, status, plagiarism_score, comments, updated_at`

// PaperStore implements store.Papers and store.Corpus on Postgres.
type PaperStore struct {
	db *Database
}

func NewPaperStore(db *Database) *PaperStore {
	return &PaperStore{db: db}
}

func scanPaper(row pgx.Row) (*models.Paper, error) {
	var p models.Paper
	err := row.Scan(
		&p.ID, &p.Title, &p.Abstract, &p.Keywords, &p.FileURL, &p.Author, &p.AuthorID, &p.Department,
		&p.UploadDate, &p.Status, &p.PlagiarismScore, &p.Comments, &p.UpdatedAt,
	)
	if errors.Is(err, pgx.ErrNoRows) {
		return nil, apperrors.NotFound(apperrors.CodePaperNotFound, "Paper not found")
	}
	if err != nil {
		return nil, storageErr("failed to read paper", err)
	}
	if p.Comments == nil {
		p.Comments = []models.Comment{}
	}
	return &p, nil
}

func (s *PaperStore) Create(ctx context.Context, paper *models.Paper) error {
	if paper.ID == uuid.Nil {
		paper.ID = uuid.New()
	}
	if paper.Status == "" {
		paper.Status = models.StatusPending
	}
	if paper.Comments == nil {
		paper.Comments = []models.Comment{}
	}

	query := `
		INSERT INTO papers (id, title, abstract, keywords, file_url, author, author_id, department, status, plagiarism_score, comments)
		VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, $10, $11)
		RETURNING upload_date, updated_at
	`
	err := s.db.QueryRow(ctx, query,
		paper.ID, paper.Title, paper.Abstract, paper.Keywords, paper.FileURL, paper.Author, paper.AuthorID,
		paper.Department, paper.Status, paper.PlagiarismScore, paper.Comments,
	).Scan(&paper.UploadDate, &paper.UpdatedAt)
	if err != nil {
		return storageErr("failed to create paper", err)
	}
	return nil
}

func (s *PaperStore) Get(ctx context.Context, id uuid.UUID) (*models.Paper, error) {
	return scanPaper(s.db.QueryRow(ctx, `SELECT `+paperColumns+` FROM papers WHERE id = $1`, id))
}

var likeEscaper = strings.NewReplacer(`\`, `\\`, `%`, `\%`, `_`, `\_`)

func (s *PaperStore) List(ctx context.Context, filter models.PaperFilter) ([]models.Paper, error) {
	var (
		conditions []string
		args       []any
	)
	if filter.AuthorID != nil {
		args = append(args, *filter.AuthorID)
		conditions = append(conditions, fmt.Sprintf("author_id = $%d", len(args)))
	}
	if filter.Status != "" {
		args = append(args, filter.Status)
		conditions = append(conditions, fmt.Sprintf("status = $%d", len(args)))
	}
	if filter.Search != "" {
		args = append(args, "%"+likeEscaper.Replace(filter.Search)+"%")
		conditions = append(conditions, fmt.Sprintf("(title ILIKE $%d OR keywords ILIKE $%d)", len(args), len(args)))
	}

	query := `SELECT ` + paperColumns + ` FROM papers`
	if len(conditions) > 0 {
		query += " WHERE " + strings.Join(conditions, " AND ")
	}
	query += " ORDER BY upload_date DESC, id"

	rows, err := s.db.Query(ctx, query, args...)
	if err != nil {
		return nil, storageErr("failed to list papers", err)
	}
	defer rows.Close()

	papers := make([]models.Paper, 0)
	for rows.Next() {
		p, err := scanPaper(rows)
		if err != nil {
			return nil, err
		}
		papers = append(papers, *p)
	}
	if err := rows.Err(); err != nil {
		return nil, storageErr("failed to list papers", err)
	}
	return papers, nil
}

// Update writes the patch in one statement. The comment is appended to the
// JSONB array and a status is only accepted while the row is pending.
func (s *PaperStore) Update(ctx context.Context, id uuid.UUID, patch models.PaperPatch) (*models.Paper, error) {
	var comment *string
	if patch.Comment != nil {
		raw, err := json.Marshal(patch.Comment)
		if err != nil {
			return nil, apperrors.Internal("failed to encode comment", err)
		}
		encoded := string(raw)
		comment = &encoded
	}

	query := `
		UPDATE papers
		SET title = COALESCE($2::text, title),
			abstract = COALESCE($3::text, abstract),
			keywords = COALESCE($4::text, keywords),
			status = COALESCE($5::text, status),
			comments = CASE WHEN $6::jsonb IS NULL THEN comments ELSE comments || jsonb_build_array($6::jsonb) END,
			updated_at = NOW()
		WHERE id = $1 AND ($5::text IS NULL OR status = 'pending')
		RETURNING ` + paperColumns

	paper, err := scanPaper(s.db.QueryRow(ctx, query, id, patch.Title, patch.Abstract, patch.Keywords, patch.Status, comment))
	if err == nil || !apperrors.Is(err, apperrors.KindNotFound) || patch.Status == nil {
		return paper, err
	}

	// Nothing matched: tell a missing paper apart from one that left pending.
	if _, getErr := s.Get(ctx, id); getErr != nil {
		return nil, getErr
	}
	return nil, apperrors.Validation(apperrors.CodeAlreadyReviewed, "Paper has already been reviewed")
}

func (s *PaperStore) SetPlagiarismScore(ctx context.Context, id uuid.UUID, score int) error {
	tag, err := s.db.Exec(ctx, `UPDATE papers SET plagiarism_score = $2, updated_at = NOW() WHERE id = $1`, id, score)
	if err != nil {
		return storageErr("failed to store plagiarism score", err)
	}
	if tag.RowsAffected() == 0 {
		return apperrors.NotFound(apperrors.CodePaperNotFound, "Paper not found")
	}
	return nil
}

func (s *PaperStore) Delete(ctx context.Context, id uuid.UUID) error {
	tag, err := s.db.Exec(ctx, `DELETE FROM papers WHERE id = $1`, id)
	if err != nil {
		return storageErr("failed to delete paper", err)
	}
	if tag.RowsAffected() == 0 {
		return apperrors.NotFound(apperrors.CodePaperNotFound, "Paper not found")
	}
	return nil
}

func (s *PaperStore) Abstracts(ctx context.Context) ([]models.AbstractRef, error) {
	rows, err := s.db.Query(ctx, `SELECT id, title, abstract FROM papers ORDER BY id`)
	if err != nil {
		return nil, storageErr("failed to load abstracts", err)
	}
	refs, err := pgx.CollectRows(rows, func(row pgx.CollectableRow) (models.AbstractRef, error) {
		var ref models.AbstractRef
		err := row.Scan(&ref.ID, &ref.Title, &ref.Abstract)
		return ref, err
	})
	if err != nil {
		return nil, storageErr("failed to load abstracts", err)
	}
	return refs, nil
}
