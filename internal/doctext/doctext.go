// Package doctext extracts plain text from uploaded contract documents.
// PDFs go through MuPDF (go-fitz) page by page; text-like files pass
// through unchanged. Formats without a text path here (notably .docx) get a
// placeholder so the pipeline can still run and report what happened instead
// of failing the upload.
package doctext

import (
	"context"
	"fmt"
	"os"
	"path/filepath"
	"strings"

	"github.com/gen2brain/go-fitz"
)

// placeholderText is returned for document formats the extractor cannot
// read. The extraction model receives it verbatim and produces an empty
// contract, which surfaces to the operator as "no rate samples extracted".
const placeholderText = "Document format not supported for text extraction. Please convert the contract to PDF or plain text and upload again."

// textExtensions are passed through as-is.
var textExtensions = map[string]bool{
	".txt": true,
	".md":  true,
	".csv": true,
}

// FromFile extracts the text content of the document at path, dispatching on
// the file extension.
func FromFile(ctx context.Context, path string) (string, error) {
	switch ext := strings.ToLower(filepath.Ext(path)); {
	case ext == ".pdf":
		return fromPDF(ctx, path)
	case textExtensions[ext]:
		data, err := os.ReadFile(path)
		if err != nil {
			return "", fmt.Errorf("read text document: %w", err)
		}
		return string(data), nil
	default:
		return placeholderText, nil
	}
}

// fromPDF concatenates the text of every page, separated by blank lines so
// page-spanning rate tables keep some structure for the model.
func fromPDF(ctx context.Context, path string) (string, error) {
	doc, err := fitz.New(path)
	if err != nil {
		return "", fmt.Errorf("open pdf: %w", err)
	}
	defer doc.Close()

	pages := doc.NumPage()
	if pages == 0 {
		return "", fmt.Errorf("pdf has no pages")
	}

	var b strings.Builder
	for page := 0; page < pages; page++ {
		select {
		case <-ctx.Done():
			return "", ctx.Err()
		default:
		}
		text, err := doc.Text(page)
		if err != nil {
			return "", fmt.Errorf("extract text from page %d: %w", page+1, err)
		}
		b.WriteString(text)
		b.WriteString("\n\n")
	}
	return b.String(), nil
}

// IsPlaceholder reports whether text is the unsupported-format placeholder,
// so callers can log the condition distinctly.
func IsPlaceholder(text string) bool {
	return text == placeholderText
}
