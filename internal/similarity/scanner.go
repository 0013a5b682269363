package similarity

import (
	"context"
	"fmt"
	"math"
	"sort"
	"unicode/utf8"

	"github.com/google/uuid"

	"publazer/internal/apperrors"
	"publazer/internal/models"
	"publazer/internal/store"
)

const (
	// MinTextLength is the shortest text, in characters, worth scanning.
	MinTextLength = 50
	// MatchThreshold is the percentage a source must exceed to be reported.
	MatchThreshold = 5
	// MaxMatches caps the reported sources.
	MaxMatches = 5

	sourceURL = "Internal Repository"
)

type Scanner struct {
	corpus store.Corpus
}

func NewScanner(corpus store.Corpus) *Scanner {
	return &Scanner{corpus: corpus}
}

// Scan compares text with every stored abstract. A non-nil excludeID skips
// that paper, so a stored paper is not matched against itself.
func (s *Scanner) Scan(ctx context.Context, text string, excludeID uuid.UUID) (*models.ScanResult, error) {
	if utf8.RuneCountInString(text) < MinTextLength {
		return nil, apperrors.Validation(apperrors.CodeTextTooShort,
			fmt.Sprintf("Text is too short to scan (min %d chars)", MinTextLength))
	}

	refs, err := s.corpus.Abstracts(ctx)
	if err != nil {
		return nil, err
	}

	scanned := 0
	overall := 0
	matches := make([]models.MatchedSource, 0)
	for _, ref := range refs {
		if excludeID != uuid.Nil && ref.ID == excludeID {
			continue
		}
		if err := ctx.Err(); err != nil {
			return nil, err
		}
		scanned++

		score := Percentage(Compare(text, ref.Abstract))
		if score <= MatchThreshold {
			continue
		}
		overall = max(overall, score)
		matches = append(matches, models.MatchedSource{
			Source:     ref.Title,
			Percentage: score,
			URL:        sourceURL,
			PaperID:    ref.ID,
		})
	}

	sort.SliceStable(matches, func(i, j int) bool {
		if matches[i].Percentage != matches[j].Percentage {
			return matches[i].Percentage > matches[j].Percentage
		}
		return matches[i].Source < matches[j].Source
	})
	if len(matches) > MaxMatches {
		matches = matches[:MaxMatches]
	}

	return &models.ScanResult{
		OverallScore:   overall,
		MatchedSources: matches,
		Details:        fmt.Sprintf("Scanned against %d documents.", scanned),
	}, nil
}

// Percentage rounds a coefficient to a whole percent, halves rounding up.
func Percentage(coefficient float64) int {
	return int(math.Floor(coefficient*100 + 0.5))
}

// Check scans an ad hoc submission. Text extracted from file, when one is
// given, replaces text.
func (s *Scanner) Check(ctx context.Context, text string, file []byte) (*models.ScanResult, error) {
	if len(file) > 0 {
		extracted, err := ExtractText(file)
		if err != nil {
			return nil, err
		}
		text = extracted
	}
	return s.Scan(ctx, text, uuid.Nil)
}
