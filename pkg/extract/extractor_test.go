package extract

import (
	"archive/zip"
	"bytes"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func buildDOCX(t *testing.T, documentXML string) []byte {
	t.Helper()

	var buf bytes.Buffer
	zw := zip.NewWriter(&buf)
	w, err := zw.Create("word/document.xml")
	require.NoError(t, err)
	_, err = w.Write([]byte(documentXML))
	require.NoError(t, err)
	require.NoError(t, zw.Close())
	return buf.Bytes()
}

func TestExtractPlainText(t *testing.T) {
	e := NewExtractor()

	text, err := e.ExtractBytes([]byte("hello world"), ".txt")
	assert.NoError(t, err)
	assert.Equal(t, "hello world", text)
}

func TestExtractUnknownExtensionFallsBackToPlain(t *testing.T) {
	e := NewExtractor()

	text, err := e.ExtractBytes([]byte("markdown content"), ".md")
	assert.NoError(t, err)
	assert.Equal(t, "markdown content", text)
}

func TestExtractStripsNulBytes(t *testing.T) {
	e := NewExtractor()

	text, err := e.ExtractBytes([]byte("hel\x00lo"), "txt")
	assert.NoError(t, err)
	assert.Equal(t, "hello", text)
}

func TestExtractInvalidUTF8Replaced(t *testing.T) {
	e := NewExtractor()

	text, err := e.ExtractBytes([]byte{'o', 'k', 0xff, 0xfe}, ".txt")
	assert.NoError(t, err)
	assert.Contains(t, text, "ok")
	assert.True(t, len(text) > 2)
}

func TestExtractEmptyDocumentFails(t *testing.T) {
	e := NewExtractor()

	_, err := e.ExtractBytes([]byte("   \n\t "), ".txt")
	require.Error(t, err)

	var extErr *ExtractionError
	assert.ErrorAs(t, err, &extErr)
}

func TestExtractDOCX(t *testing.T) {
	e := NewExtractor()

	doc := buildDOCX(t, `<w:document><w:body>`+
		`<w:p><w:r><w:t>First paragraph.</w:t></w:r></w:p>`+
		`<w:p><w:r><w:t xml:space="preserve">Second</w:t></w:r><w:r><w:t>paragraph.</w:t></w:r></w:p>`+
		`</w:body></w:document>`)

	text, err := e.ExtractBytes(doc, ".docx")
	require.NoError(t, err)
	// Paragraphs become blank-line separated so the chunker can split on them.
	assert.Equal(t, "First paragraph.\n\nSecond paragraph.", text)
}

func TestExtractDOCXNotAZip(t *testing.T) {
	e := NewExtractor()

	_, err := e.ExtractBytes([]byte("definitely not a zip"), ".docx")
	require.Error(t, err)

	var extErr *ExtractionError
	assert.ErrorAs(t, err, &extErr)
}

func TestExtractDOCXMissingDocumentXML(t *testing.T) {
	e := NewExtractor()

	var buf bytes.Buffer
	zw := zip.NewWriter(&buf)
	w, err := zw.Create("word/styles.xml")
	require.NoError(t, err)
	_, _ = w.Write([]byte("<w:styles/>"))
	require.NoError(t, zw.Close())

	_, err = e.ExtractBytes(buf.Bytes(), "docx")
	assert.Error(t, err)
}

func TestExtractPDFGarbageFails(t *testing.T) {
	e := NewExtractor()

	_, err := e.ExtractBytes([]byte("not a pdf at all"), ".pdf")
	require.Error(t, err)

	var extErr *ExtractionError
	assert.ErrorAs(t, err, &extErr)
}
