package extraction

import (
	"context"
	"fmt"
	"os"
	"path/filepath"
	"strings"

	"github.com/gabriel-vasile/mimetype"
	"github.com/gofiber/fiber/v2/log"
	"github.com/sahilchouksey/quiz-brain/model"
	"github.com/sahilchouksey/quiz-brain/services/ocr"
)

// Extractor turns a document into raw text
type Extractor interface {
	Name() string
	Extract(ctx context.Context, path string) (string, error)
}

// ImagePDFExtractor rasterizes every page and sends it through OCR
type ImagePDFExtractor struct {
	ladder     *Ladder
	recognizer ocr.Recognizer
	options    ocr.Options
}

func (e *ImagePDFExtractor) Name() string { return "image-pdf" }

func (e *ImagePDFExtractor) Extract(ctx context.Context, path string) (string, error) {
	content, err := os.ReadFile(path)
	if err != nil {
		return "", &model.ExtractionError{Strategy: e.Name(), Err: err}
	}

	pages, err := e.ladder.Rasterize(ctx, content, 0)
	if err != nil {
		return "", err
	}

	log.Infof("ImagePDFExtractor: running OCR on %d pages of %s", len(pages), filepath.Base(path))

	var textBuilder strings.Builder
	var lastErr error
	for _, page := range pages {
		result, err := e.recognizer.Recognize(ctx, ocr.Image{
			Data:     page.Data,
			MIMEType: page.MIMEType,
			Name:     fmt.Sprintf("page_%d.png", page.Page),
		}, e.options)
		if err != nil {
			log.Warnf("ImagePDFExtractor: OCR failed for page %d: %v", page.Page, err)
			lastErr = err
			continue
		}
		if textBuilder.Len() > 0 {
			textBuilder.WriteString("\n\n")
		}
		textBuilder.WriteString(fmt.Sprintf(PageMarkerFormat, page.Page))
		textBuilder.WriteString("\n")
		textBuilder.WriteString(result.Text)
	}

	if textBuilder.Len() == 0 {
		if lastErr == nil {
			lastErr = fmt.Errorf("no text recognized in %d pages", len(pages))
		}
		return "", &model.ExtractionError{Strategy: e.Name(), Err: lastErr}
	}
	return textBuilder.String(), nil
}

// ImageExtractor sends a single image through OCR
type ImageExtractor struct {
	recognizer ocr.Recognizer
	options    ocr.Options
}

func (e *ImageExtractor) Name() string { return "image" }

func (e *ImageExtractor) Extract(ctx context.Context, path string) (string, error) {
	img, err := LoadImage(path)
	if err != nil {
		return "", &model.ExtractionError{Strategy: e.Name(), Err: err}
	}
	result, err := e.recognizer.Recognize(ctx, img, e.options)
	if err != nil {
		return "", err
	}
	return result.Text, nil
}

// LoadImage reads an image file and sniffs its MIME type
func LoadImage(path string) (ocr.Image, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return ocr.Image{}, err
	}
	if len(data) == 0 {
		return ocr.Image{}, fmt.Errorf("image %s is empty", filepath.Base(path))
	}
	return ocr.Image{
		Data:     data,
		MIMEType: mimetype.Detect(data).String(),
		Name:     filepath.Base(path),
	}, nil
}
