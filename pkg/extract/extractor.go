// Package extract converts uploaded document bytes into cleaned text.
// PDF and DOCX get format-aware extraction; everything else is treated as
// UTF-8 plain text. Output is NUL-stripped and must be non-empty.
package extract

import (
	"fmt"
	"strings"
)

// ExtractionError reports a document whose content could not be turned
// into usable text. It is fatal for that document only.
type ExtractionError struct {
	Reason string
	Err    error
}

func (e *ExtractionError) Error() string {
	if e.Err != nil {
		return fmt.Sprintf("extraction failed: %s: %v", e.Reason, e.Err)
	}
	return fmt.Sprintf("extraction failed: %s", e.Reason)
}

func (e *ExtractionError) Unwrap() error {
	return e.Err
}

// Extractor extracts plain text from document bytes.
type Extractor struct{}

// NewExtractor returns a new Extractor.
func NewExtractor() *Extractor {
	return &Extractor{}
}

// ExtractBytes extracts text from content based on the file extension.
// ext may be given with or without the leading dot and is matched
// case-insensitively. Unknown extensions are read as plain text.
func (e *Extractor) ExtractBytes(content []byte, ext string) (string, error) {
	ext = strings.ToLower(strings.TrimPrefix(ext, "."))

	var (
		text string
		err  error
	)
	switch ext {
	case "pdf":
		text, err = extractPDF(content)
	case "docx":
		text, err = extractDOCX(content)
	default:
		text, err = extractPlain(content)
	}
	if err != nil {
		return "", &ExtractionError{Reason: ext + " parse", Err: err}
	}

	text = strings.ReplaceAll(text, "\x00", "")
	if strings.TrimSpace(text) == "" {
		return "", &ExtractionError{Reason: "document produced no text"}
	}
	return text, nil
}
