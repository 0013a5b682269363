package api

import (
	"bytes"
	"errors"
	"fmt"
	"io"
	"net/http"
	"strings"
	"time"

	"publazer/internal/apperrors"
	"publazer/internal/export"
	"publazer/internal/models"
	"publazer/internal/review"

	"github.com/gin-gonic/gin"
	"github.com/google/uuid"
)

func (s *Server) UploadPaper(c *gin.Context) {
	actor, ok := currentActor(c)
	if !ok {
		return
	}

	upload, err := s.readUpload(c, "file")
	if err != nil {
		respondError(c, err)
		return
	}
	if upload == nil {
		respondError(c, apperrors.Validation(apperrors.CodeMissingFile, "No file uploaded"))
		return
	}

	var req models.UploadPaperRequest
	if err := c.ShouldBind(&req); err != nil {
		respondError(c, bindError(err))
		return
	}

	paper, err := s.papers.Submit(c.Request.Context(), actor, req, upload)
	if err != nil {
		respondError(c, err)
		return
	}

	c.JSON(http.StatusCreated, gin.H{
		"message": "File uploaded successfully!",
		"paper":   paper,
	})
}

// readUpload returns nil when the form carries no such file.
func (s *Server) readUpload(c *gin.Context, field string) (*review.Upload, error) {
	header, err := c.FormFile(field)
	if err != nil {
		if errors.Is(err, http.ErrMissingFile) || errors.Is(err, http.ErrNotMultipart) {
			return nil, nil
		}
		return nil, apperrors.Validation("", "Invalid multipart form")
	}

	maxBytes := s.config.Upload.MaxBytes
	if maxBytes > 0 && header.Size > maxBytes {
		return nil, apperrors.Validation("", fmt.Sprintf("File exceeds the %d MB limit", maxBytes>>20))
	}

	file, err := header.Open()
	if err != nil {
		return nil, apperrors.Internal("Failed to read file", err)
	}
	defer file.Close()

	data, err := io.ReadAll(file)
	if err != nil {
		return nil, apperrors.Internal("Failed to read file", err)
	}
	return &review.Upload{Filename: header.Filename, Data: data}, nil
}

func (s *Server) paperFilter(c *gin.Context) (models.PaperFilter, bool) {
	filter := models.PaperFilter{
		Status: strings.TrimSpace(c.Query("status")),
		Search: strings.TrimSpace(c.Query("search")),
	}
	authorID, ok := parseOptionalID(c, "authorId")
	if !ok {
		return filter, false
	}
	if authorID != uuid.Nil {
		filter.AuthorID = &authorID
	}
	return filter, true
}

func (s *Server) GetPapers(c *gin.Context) {
	filter, ok := s.paperFilter(c)
	if !ok {
		return
	}

	papers, err := s.papers.List(c.Request.Context(), filter)
	if err != nil {
		respondError(c, err)
		return
	}
	c.JSON(http.StatusOK, papers)
}

func (s *Server) ExportPapers(c *gin.Context) {
	filter, ok := s.paperFilter(c)
	if !ok {
		return
	}

	papers, err := s.papers.List(c.Request.Context(), filter)
	if err != nil {
		respondError(c, err)
		return
	}

	var buf bytes.Buffer
	if err := export.WritePapers(&buf, papers); err != nil {
		respondError(c, apperrors.Internal("Failed to export papers", err))
		return
	}

	filename := fmt.Sprintf("papers-%s.xlsx", time.Now().UTC().Format("20060102"))
	c.Header("Content-Disposition", fmt.Sprintf("attachment; filename=%q", filename))
	c.Data(http.StatusOK, export.ContentType, buf.Bytes())
}

func (s *Server) GetPaper(c *gin.Context) {
	id, ok := parseID(c, "id", apperrors.CodePaperNotFound, "Paper")
	if !ok {
		return
	}
	paper, err := s.papers.Get(c.Request.Context(), id)
	if err != nil {
		respondError(c, err)
		return
	}
	c.JSON(http.StatusOK, paper)
}

func (s *Server) UpdatePaper(c *gin.Context) {
	actor, ok := currentActor(c)
	if !ok {
		return
	}
	id, ok := parseID(c, "id", apperrors.CodePaperNotFound, "Paper")
	if !ok {
		return
	}

	var req models.UpdatePaperRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		respondError(c, bindError(err))
		return
	}

	paper, err := s.papers.Update(c.Request.Context(), actor, id, req)
	if err != nil {
		respondError(c, err)
		return
	}
	c.JSON(http.StatusOK, paper)
}

func (s *Server) DeletePaper(c *gin.Context) {
	actor, ok := currentActor(c)
	if !ok {
		return
	}
	id, ok := parseID(c, "id", apperrors.CodePaperNotFound, "Paper")
	if !ok {
		return
	}

	if err := s.papers.Delete(c.Request.Context(), actor, id); err != nil {
		respondError(c, err)
		return
	}
	message(c, http.StatusOK, "Paper deleted successfully")
}

func (s *Server) ScanPaper(c *gin.Context) {
	actor, ok := currentActor(c)
	if !ok {
		return
	}
	id, ok := parseID(c, "id", apperrors.CodePaperNotFound, "Paper")
	if !ok {
		return
	}

	result, err := s.papers.ScanStored(c.Request.Context(), actor, id)
	if err != nil {
		respondError(c, err)
		return
	}
	c.JSON(http.StatusOK, result)
}
