package extraction

import (
	"bytes"
	"context"
	"fmt"
	"os"
	"regexp"
	"strings"

	"github.com/gofiber/fiber/v2/log"
	"github.com/ledongthuc/pdf"
	"github.com/sahilchouksey/quiz-brain/model"
)

// PageMarkerFormat delimits pages in extracted text
const PageMarkerFormat = "--- Page %d ---"

// PageMarkerRegex matches the page delimiters written by the extractors
var PageMarkerRegex = regexp.MustCompile(`(?m)^--- Page \d+ ---$`)

// TextPDFExtractor reads the embedded text layer page by page. No OCR.
type TextPDFExtractor struct{}

// NewTextPDFExtractor creates a new text-layer extractor
func NewTextPDFExtractor() *TextPDFExtractor {
	return &TextPDFExtractor{}
}

func (e *TextPDFExtractor) Name() string { return "text-pdf" }

// Extract reads the file and returns page-delimited text
func (e *TextPDFExtractor) Extract(ctx context.Context, path string) (string, error) {
	content, err := os.ReadFile(path)
	if err != nil {
		return "", &model.ExtractionError{Strategy: e.Name(), Err: err}
	}
	text, err := ExtractPDFText(content)
	if err != nil {
		return "", &model.ExtractionError{Strategy: e.Name(), Err: err}
	}
	return text, nil
}

// ExtractPDFText extracts the text layer of every page with page markers
func ExtractPDFText(content []byte) (string, error) {
	pdfReader, err := openPDF(content)
	if err != nil {
		return "", err
	}

	numPages := pdfReader.NumPage()
	if numPages == 0 {
		return "", fmt.Errorf("PDF has no pages")
	}

	log.Infof("PDF Extractor: Processing PDF with %d pages", numPages)

	var textBuilder strings.Builder
	for i := 1; i <= numPages; i++ {
		pageText := pageText(pdfReader.Page(i), i)
		if pageText == "" {
			continue
		}
		if textBuilder.Len() > 0 {
			textBuilder.WriteString("\n\n")
		}
		textBuilder.WriteString(fmt.Sprintf(PageMarkerFormat, i))
		textBuilder.WriteString("\n")
		textBuilder.WriteString(pageText)
	}

	extracted := textBuilder.String()
	if strings.TrimSpace(extracted) == "" {
		return "", fmt.Errorf("no text layer found in PDF with %d pages - it may be scanned and require OCR", numPages)
	}

	log.Infof("PDF Extractor: Successfully extracted %d characters from %d pages", len(extracted), numPages)
	return extracted, nil
}

// pageText returns the text of one page, row-ordered when possible
func pageText(page pdf.Page, pageNum int) string {
	if page.V.IsNull() {
		log.Warnf("PDF Extractor: Page %d is null, skipping", pageNum)
		return ""
	}

	rows, err := page.GetTextByRow()
	if err != nil {
		log.Warnf("PDF Extractor: Row extraction failed for page %d, trying plain text: %v", pageNum, err)
		text, plainErr := page.GetPlainText(nil)
		if plainErr != nil {
			log.Warnf("PDF Extractor: Plain text extraction also failed for page %d: %v", pageNum, plainErr)
			return ""
		}
		return strings.TrimSpace(text)
	}

	var lines []string
	for _, row := range rows {
		var rowText strings.Builder
		for _, word := range row.Content {
			rowText.WriteString(word.S)
		}
		if line := strings.TrimSpace(rowText.String()); line != "" {
			lines = append(lines, line)
		}
	}
	return strings.Join(lines, "\n")
}

func openPDF(content []byte) (*pdf.Reader, error) {
	if len(content) == 0 {
		return nil, fmt.Errorf("empty PDF content")
	}
	content = sanitizePDF(content)
	reader, err := pdf.NewReader(bytes.NewReader(content), int64(len(content)))
	if err != nil {
		return nil, fmt.Errorf("failed to parse PDF: %w", err)
	}
	return reader, nil
}

// sanitizePDF truncates data appended after the last %%EOF marker, which
// is common for PDFs downloaded from the web
func sanitizePDF(content []byte) []byte {
	if !bytes.HasPrefix(content, []byte("%PDF-")) {
		return content
	}

	eofMarker := []byte("%%EOF")
	lastEOF := bytes.LastIndex(content, eofMarker)
	if lastEOF == -1 {
		return content
	}

	pdfEnd := lastEOF + len(eofMarker)
	for pdfEnd < len(content) && (content[pdfEnd] == '\n' || content[pdfEnd] == '\r') {
		pdfEnd++
	}

	if extraBytes := len(content) - pdfEnd; extraBytes > 10 {
		log.Warnf("PDF Sanitizer: Removing %d bytes of trailing garbage after %%EOF", extraBytes)
		return content[:pdfEnd]
	}
	return content
}
