package extraction

import (
	"bytes"
	"context"
	"fmt"
	"image/png"
	"io"

	"github.com/gen2brain/go-fitz"
	"github.com/gofiber/fiber/v2/log"
	"github.com/pdfcpu/pdfcpu/pkg/api"
	"github.com/pdfcpu/pdfcpu/pkg/pdfcpu"
	pdfmodel "github.com/pdfcpu/pdfcpu/pkg/pdfcpu/model"
	"github.com/sahilchouksey/quiz-brain/model"
	"github.com/sahilchouksey/quiz-brain/utils/fallback"
)

// PageImage is one rendered PDF page
type PageImage struct {
	Page     int
	Data     []byte
	MIMEType string
}

// Rasterizer turns PDF pages into images. maxPages <= 0 renders every page.
type Rasterizer interface {
	Name() string
	Rasterize(ctx context.Context, content []byte, maxPages int) ([]PageImage, error)
}

// FitzRasterizer renders pages with MuPDF
type FitzRasterizer struct {
	DPI float64
}

func (r *FitzRasterizer) Name() string { return "mupdf" }

func (r *FitzRasterizer) Rasterize(ctx context.Context, content []byte, maxPages int) ([]PageImage, error) {
	doc, err := fitz.NewFromMemory(content)
	if err != nil {
		return nil, fmt.Errorf("failed to open PDF: %w", err)
	}
	defer doc.Close()

	dpi := r.DPI
	if dpi <= 0 {
		dpi = 200
	}

	numPages := doc.NumPage()
	if maxPages > 0 && maxPages < numPages {
		numPages = maxPages
	}

	pages := make([]PageImage, 0, numPages)
	for i := 0; i < numPages; i++ {
		if err := ctx.Err(); err != nil {
			return nil, err
		}
		img, err := doc.ImageDPI(i, dpi)
		if err != nil {
			return nil, fmt.Errorf("failed to render page %d: %w", i+1, err)
		}
		var buf bytes.Buffer
		if err := png.Encode(&buf, img); err != nil {
			return nil, fmt.Errorf("failed to encode page %d: %w", i+1, err)
		}
		pages = append(pages, PageImage{Page: i + 1, Data: buf.Bytes(), MIMEType: "image/png"})
	}
	return pages, nil
}

// PdfcpuRasterizer is the in-process fallback. Scanned PDFs carry one
// full-page image per page, so the largest embedded image stands in for
// the rendered page.
type PdfcpuRasterizer struct{}

func (r *PdfcpuRasterizer) Name() string { return "pdfcpu-images" }

func (r *PdfcpuRasterizer) Rasterize(ctx context.Context, content []byte, maxPages int) ([]PageImage, error) {
	conf := pdfmodel.NewDefaultConfiguration()
	pdfCtx, err := api.ReadValidateAndOptimize(bytes.NewReader(sanitizePDF(content)), conf)
	if err != nil {
		return nil, fmt.Errorf("pdfcpu read: %w", err)
	}

	numPages := pdfCtx.PageCount
	if maxPages > 0 && maxPages < numPages {
		numPages = maxPages
	}

	var pages []PageImage
	for pageNr := 1; pageNr <= numPages; pageNr++ {
		if err := ctx.Err(); err != nil {
			return nil, err
		}
		images, err := pdfcpu.ExtractPageImages(pdfCtx, pageNr, false)
		if err != nil {
			log.Warnf("Rasterizer: pdfcpu could not extract images from page %d: %v", pageNr, err)
			continue
		}

		var best *pdfmodel.Image
		for _, img := range images {
			img := img
			if best == nil || img.Width*img.Height > best.Width*best.Height {
				best = &img
			}
		}
		if best == nil {
			continue
		}

		data, err := io.ReadAll(best)
		if err != nil {
			log.Warnf("Rasterizer: failed to read image on page %d: %v", pageNr, err)
			continue
		}
		pages = append(pages, PageImage{Page: pageNr, Data: data, MIMEType: imageMIMEType(best.FileType)})
	}

	if len(pages) == 0 {
		return nil, fmt.Errorf("no page images found in %d pages", numPages)
	}
	return pages, nil
}

func imageMIMEType(fileType string) string {
	switch fileType {
	case "jpg", "jpeg":
		return "image/jpeg"
	case "tif", "tiff":
		return "image/tiff"
	case "jpx", "jp2":
		return "image/jp2"
	}
	return "image/png"
}

// Ladder tries each rasterizer in order until one returns pages
type Ladder struct {
	rasterizers []Rasterizer
}

// NewLadder builds a rasterizer ladder in priority order
func NewLadder(rasterizers ...Rasterizer) *Ladder {
	return &Ladder{rasterizers: rasterizers}
}

// DefaultLadder is MuPDF first, pdfcpu image extraction second
func DefaultLadder() *Ladder {
	return NewLadder(&FitzRasterizer{DPI: 200}, &PdfcpuRasterizer{})
}

// Rasterize returns the pages of the first strategy that succeeds. Both
// strategies failing is an ExtractionError.
func (l *Ladder) Rasterize(ctx context.Context, content []byte, maxPages int) ([]PageImage, error) {
	steps := make([]fallback.Step[[]PageImage], 0, len(l.rasterizers))
	for _, r := range l.rasterizers {
		r := r
		steps = append(steps, fallback.Step[[]PageImage]{
			Name: r.Name(),
			Run: func(ctx context.Context) ([]PageImage, error) {
				return r.Rasterize(ctx, content, maxPages)
			},
		})
	}

	pages, outcome, err := fallback.Run(ctx, func(p []PageImage) bool { return len(p) > 0 }, steps...)
	if err != nil {
		return nil, &model.ExtractionError{Strategy: "rasterize", Err: err}
	}
	if len(outcome.Attempts) > 1 {
		log.Warnf("Rasterizer: %s rendered %d pages after the primary rasterizer failed", outcome.Winner, len(pages))
	}
	return pages, nil
}
