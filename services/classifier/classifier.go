// Package classifier inspects an uploaded file and decides how it should be
// extracted: container type, PDF text layer, language and whether the file
// looks like an exam paper.
package classifier

import (
	"context"
	"fmt"
	"os"
	"path/filepath"
	"strings"

	"github.com/gabriel-vasile/mimetype"
	"github.com/gofiber/fiber/v2/log"
	"github.com/sahilchouksey/quiz-brain/model"
	"github.com/sahilchouksey/quiz-brain/services/extraction"
	"github.com/sahilchouksey/quiz-brain/services/ocr"
)

const (
	// DefaultMinTextLength is the average characters per page above which a
	// PDF counts as text based
	DefaultMinTextLength = 100
	// DefaultSamplePages is how many leading pages are inspected
	DefaultSamplePages = 3
	// maxImagesPerPage keeps slides with many figures from being read as scans
	maxImagesPerPage = 1.0
)

var (
	pdfExtensions   = map[string]bool{".pdf": true}
	imageExtensions = map[string]bool{".jpg": true, ".jpeg": true, ".png": true, ".bmp": true, ".tiff": true, ".tif": true, ".webp": true}
	textExtensions  = map[string]bool{".txt": true, ".md": true, ".text": true, ".html": true, ".htm": true}
)

// PageRenderer renders the leading pages of a PDF. *extraction.Ladder
// satisfies it.
type PageRenderer interface {
	Rasterize(ctx context.Context, content []byte, maxPages int) ([]extraction.PageImage, error)
}

// Config tunes the classifier thresholds
type Config struct {
	MinTextLength int
	SamplePages   int
}

// Classifier produces DocumentMetadata for a file
type Classifier struct {
	renderer      PageRenderer
	recognizer    ocr.Recognizer
	minTextLength int
	samplePages   int
}

// New creates a classifier. A nil recognizer disables OCR sampling, in which
// case scanned documents keep an unknown language.
func New(recognizer ocr.Recognizer, renderer PageRenderer, cfg Config) *Classifier {
	if renderer == nil {
		renderer = extraction.DefaultLadder()
	}
	if cfg.MinTextLength <= 0 {
		cfg.MinTextLength = DefaultMinTextLength
	}
	if cfg.SamplePages <= 0 {
		cfg.SamplePages = DefaultSamplePages
	}
	return &Classifier{
		renderer:      renderer,
		recognizer:    recognizer,
		minTextLength: cfg.MinTextLength,
		samplePages:   cfg.SamplePages,
	}
}

// Classify never fails. Unreadable input is logged as a ClassificationError
// and degrades to doc_type unknown.
func (c *Classifier) Classify(ctx context.Context, path string) model.DocumentMetadata {
	meta := model.DocumentMetadata{
		FileName:   filepath.Base(path),
		Extension:  strings.ToLower(filepath.Ext(path)),
		DocType:    model.DocTypeUnknown,
		PDFSubtype: model.PDFSubtypeUnknown,
		Language:   model.LanguageUnknown,
	}

	stat, err := os.Stat(path)
	if err != nil {
		logClassificationError(path, err)
		return meta
	}
	meta.FileSize = stat.Size()

	if mime, err := mimetype.DetectFile(path); err == nil {
		meta.MimeType = mime.String()
	}
	meta.DocType = docTypeFor(meta.Extension, meta.MimeType)

	switch meta.DocType {
	case model.DocTypePDF:
		c.classifyPDF(ctx, path, &meta)
	case model.DocTypeImage:
		c.classifyImage(ctx, path, &meta)
	case model.DocTypeText:
		c.classifyText(ctx, path, &meta)
	default:
		logClassificationError(path, fmt.Errorf("unsupported file type %q (%s)", meta.Extension, meta.MimeType))
	}

	log.Infof("Classifier: %s -> type=%s subtype=%s language=%s question_paper=%t",
		meta.FileName, meta.DocType, meta.PDFSubtype, meta.Language, meta.IsQuestionPaper)
	return meta
}

// docTypeFor dispatches on the extension and falls back to the sniffed MIME type
func docTypeFor(ext, mime string) model.DocType {
	switch {
	case pdfExtensions[ext]:
		return model.DocTypePDF
	case imageExtensions[ext]:
		return model.DocTypeImage
	case textExtensions[ext]:
		return model.DocTypeText
	}

	if mime == "" {
		return model.DocTypeUnknown
	}
	detected := mimetype.Lookup(strings.TrimSpace(strings.Split(mime, ";")[0]))
	switch {
	case detected == nil:
		return model.DocTypeUnknown
	case detected.Is("application/pdf"):
		return model.DocTypePDF
	case strings.HasPrefix(detected.String(), "image/"):
		return model.DocTypeImage
	case detected.Is("text/plain"), detected.Is("text/html"):
		return model.DocTypeText
	}
	return model.DocTypeUnknown
}

func (c *Classifier) classifyPDF(ctx context.Context, path string, meta *model.DocumentMetadata) {
	content, err := os.ReadFile(path)
	if err != nil {
		logClassificationError(path, err)
		return
	}

	info, err := extraction.InspectPDF(content, c.samplePages)
	if err != nil {
		// malformed for the text reader; the rasterizer ladder may still cope
		logClassificationError(path, err)
		return
	}
	meta.PageCount = info.PageCount

	log.Infof("Classifier: %s sampled %d/%d pages, avg %.0f chars and %.1f images per page",
		meta.FileName, info.SampledPages, info.PageCount, info.AvgTextChars(), info.AvgImages())

	if info.AvgTextChars() > float64(c.minTextLength) && info.AvgImages() <= maxImagesPerPage {
		meta.PDFSubtype = model.PDFSubtypeTextBased
		c.applySample(info.SampleText, meta)
		return
	}

	meta.PDFSubtype = model.PDFSubtypeImageBased
	if c.recognizer == nil {
		return
	}
	pages, err := c.renderer.Rasterize(ctx, content, 1)
	if err != nil || len(pages) == 0 {
		log.Warnf("Classifier: could not render first page of %s for sampling: %v", meta.FileName, err)
		return
	}
	c.applySample(c.ocrSample(ctx, ocr.Image{
		Data:     pages[0].Data,
		MIMEType: pages[0].MIMEType,
		Name:     "page_1.png",
	}), meta)
}

func (c *Classifier) classifyImage(ctx context.Context, path string, meta *model.DocumentMetadata) {
	if c.recognizer == nil {
		return
	}
	img, err := extraction.LoadImage(path)
	if err != nil {
		logClassificationError(path, err)
		return
	}
	c.applySample(c.ocrSample(ctx, img), meta)
}

func (c *Classifier) classifyText(ctx context.Context, path string, meta *model.DocumentMetadata) {
	text, err := (&extraction.TextExtractor{}).Extract(ctx, path)
	if err != nil {
		logClassificationError(path, err)
		return
	}
	c.applySample(text, meta)
}

func (c *Classifier) ocrSample(ctx context.Context, img ocr.Image) string {
	result, err := c.recognizer.Recognize(ctx, img, ocr.Options{Language: model.LanguageUnknown})
	if err != nil {
		log.Warnf("Classifier: OCR sample of %s failed: %v", img.Name, err)
		return ""
	}
	return result.Text
}

func (c *Classifier) applySample(sample string, meta *model.DocumentMetadata) {
	meta.Language = DetectLanguage(sample)
	meta.IsQuestionPaper = IsQuestionPaper(sample, meta.Language)
}

func logClassificationError(path string, err error) {
	log.Warnf("Classifier: %v", &model.ClassificationError{Path: path, Err: err})
}
