package extract

import (
	"archive/zip"
	"bytes"
	"fmt"
	"io"
	"regexp"
	"strings"
)

// DOCX is a ZIP package whose main body lives in word/document.xml (OOXML).
// We pull every <w:t> text node; run and paragraph attributes vary too much
// between producers for anything stricter to be reliable.
var (
	wtNode      = regexp.MustCompile(`<w:t[^>]*>([^<]*)</w:t>`)
	paragraphEn = "</w:p>"
)

func extractDOCX(content []byte) (string, error) {
	zr, err := zip.NewReader(bytes.NewReader(content), int64(len(content)))
	if err != nil {
		return "", fmt.Errorf("not a zip package: %w", err)
	}

	docXML, err := readZipFile(zr, "word/document.xml")
	if err != nil {
		return "", err
	}

	// Keep paragraph boundaries: the chunker splits on blank lines.
	var paragraphs []string
	for _, block := range strings.Split(string(docXML), paragraphEn) {
		matches := wtNode.FindAllStringSubmatch(block, -1)
		if len(matches) == 0 {
			continue
		}
		var b strings.Builder
		for i, m := range matches {
			if i > 0 {
				b.WriteByte(' ')
			}
			b.WriteString(m[1])
		}
		if p := strings.TrimSpace(b.String()); p != "" {
			paragraphs = append(paragraphs, p)
		}
	}
	return strings.Join(paragraphs, "\n\n"), nil
}

func readZipFile(zr *zip.Reader, name string) ([]byte, error) {
	for _, f := range zr.File {
		if f.Name != name {
			continue
		}
		rc, err := f.Open()
		if err != nil {
			return nil, fmt.Errorf("open %s: %w", name, err)
		}
		defer rc.Close()
		data, err := io.ReadAll(rc)
		if err != nil {
			return nil, fmt.Errorf("read %s: %w", name, err)
		}
		return data, nil
	}
	return nil, fmt.Errorf("%s not found in package", name)
}
