package models

import "github.com/google/uuid"

type MatchedSource struct {
	Source     string    `json:"source"`
	Percentage int       `json:"percentage"`
	URL        string    `json:"url"`
	PaperID    uuid.UUID `json:"paperId"`
}

type ScanResult struct {
	OverallScore   int             `json:"overallScore"`
	MatchedSources []MatchedSource `json:"matchedSources"`
	Details        string          `json:"details"`
}
