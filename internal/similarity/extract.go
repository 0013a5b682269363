package similarity

import (
	"bytes"
	"fmt"
	"io"
	"strings"

	"github.com/gabriel-vasile/mimetype"
	"github.com/ledongthuc/pdf"

	"publazer/internal/apperrors"
)

// ExtractText returns the plain text of a PDF or text file.
func ExtractText(data []byte) (string, error) {
	mtype := mimetype.Detect(data)
	switch {
	case mtype.Is("application/pdf"):
		return pdfText(data)
	case mtype.Is("text/plain"):
		return string(data), nil
	default:
		return "", apperrors.Validation(apperrors.CodeUnsupportedFile,
			fmt.Sprintf("Unsupported file type %s, upload a PDF or text file", mtype.String()))
	}
}

func pdfText(data []byte) (text string, err error) {
	// The parser panics on some malformed documents.
	defer func() {
		if r := recover(); r != nil {
			text, err = "", apperrors.Validation(apperrors.CodeUnsupportedFile, "Could not read PDF file")
		}
	}()

	reader, err := pdf.NewReader(bytes.NewReader(data), int64(len(data)))
	if err != nil {
		return "", apperrors.Validation(apperrors.CodeUnsupportedFile, "Could not read PDF file")
	}
	plain, err := reader.GetPlainText()
	if err != nil {
		return "", apperrors.Validation(apperrors.CodeUnsupportedFile, "Could not read PDF file")
	}

	var sb strings.Builder
	if _, err := io.Copy(&sb, plain); err != nil {
		return "", apperrors.Internal("failed to extract PDF text", err)
	}
	return sb.String(), nil
}
