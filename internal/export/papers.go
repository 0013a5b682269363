// Package export renders repository listings as spreadsheets.
package export

import (
	"fmt"
	"io"
	"strings"

	"github.com/xuri/excelize/v2"

	"publazer/internal/models"
)

const (
	SheetName   = "Papers"
	ContentType = "application/vnd.openxmlformats-officedocument.spreadsheetml.sheet"
)

var paperHeader = []any{
	"ID", "Title", "Author", "Department", "Keywords", "Status",
	"Plagiarism Score", "Comments", "Upload Date", "File URL",
}

// WritePapers writes one header row and one row per paper as an .xlsx
// workbook to w.
func WritePapers(w io.Writer, papers []models.Paper) error {
	f := excelize.NewFile()
	defer f.Close()

	if err := f.SetSheetName("Sheet1", SheetName); err != nil {
		return fmt.Errorf("failed to name sheet: %w", err)
	}

	if err := setRow(f, 1, paperHeader); err != nil {
		return err
	}
	for i, p := range papers {
		row := []any{
			p.ID.String(),
			p.Title,
			p.Author,
			p.Department,
			p.Keywords,
			p.Status,
			p.PlagiarismScore,
			commentSummary(p.Comments),
			p.UploadDate.UTC().Format("2006-01-02 15:04"),
			p.FileURL,
		}
		if err := setRow(f, i+2, row); err != nil {
			return err
		}
	}

	style, err := f.NewStyle(&excelize.Style{Font: &excelize.Font{Bold: true}})
	if err == nil {
		_ = f.SetRowStyle(SheetName, 1, 1, style)
	}
	_ = f.SetColWidth(SheetName, "B", "B", 48)

	if err := f.Write(w); err != nil {
		return fmt.Errorf("failed to write workbook: %w", err)
	}
	return nil
}

func setRow(f *excelize.File, row int, values []any) error {
	cell, err := excelize.CoordinatesToCellName(1, row)
	if err != nil {
		return err
	}
	if err := f.SetSheetRow(SheetName, cell, &values); err != nil {
		return fmt.Errorf("failed to write row %d: %w", row, err)
	}
	return nil
}

func commentSummary(comments []models.Comment) string {
	parts := make([]string, 0, len(comments))
	for _, c := range comments {
		parts = append(parts, fmt.Sprintf("%s: %s", c.ReviewerName, c.Text))
	}
	return strings.Join(parts, "\n")
}
