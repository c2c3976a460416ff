// Package textextract turns uploaded report files into plain text.
package textextract

import (
	"fmt"
	"io"
	"path/filepath"
	"strings"

	"github.com/dgallion1/finsight/internal/report"
)

// Extractor converts raw document bytes into plain text.
type Extractor interface {
	Extract(r io.Reader) (string, error)
}

// SupportedExtensions lists file extensions the pipeline can read.
var SupportedExtensions = map[string]bool{
	".txt":      true,
	".md":       true,
	".markdown": true,
	".html":     true,
	".htm":      true,
	".pdf":      true,
	".docx":     true,
}

// ForFile returns the extractor for a filename.
func ForFile(filename string) (Extractor, error) {
	ext := strings.ToLower(filepath.Ext(filename))
	switch ext {
	case ".txt":
		return TextExtractor{}, nil
	case ".md", ".markdown":
		return MarkdownExtractor{}, nil
	case ".html", ".htm":
		return HTMLExtractor{}, nil
	case ".pdf":
		return PDFExtractor{FallbackPdftotext: true}, nil
	case ".docx":
		return DOCXExtractor{}, nil
	default:
		return nil, fmt.Errorf("unsupported file extension %q: %w", ext, report.ErrInputUnreadable)
	}
}

// IsSupported reports whether filename has a readable extension.
func IsSupported(filename string) bool {
	return SupportedExtensions[strings.ToLower(filepath.Ext(filename))]
}

// Extract reads r with the extractor chosen by filename. Any failure is
// reported as report.ErrInputUnreadable.
func Extract(r io.Reader, filename string) (string, error) {
	ex, err := ForFile(filename)
	if err != nil {
		return "", err
	}
	text, err := ex.Extract(r)
	if err != nil {
		return "", fmt.Errorf("%s: %w: %w", filepath.Base(filename), report.ErrInputUnreadable, err)
	}
	return text, nil
}
