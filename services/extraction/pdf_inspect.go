package extraction

import (
	"bytes"
	"strings"

	"github.com/gofiber/fiber/v2/log"
	"github.com/ledongthuc/pdf"
	"github.com/pdfcpu/pdfcpu/pkg/api"
	"github.com/pdfcpu/pdfcpu/pkg/pdfcpu"
	pdfmodel "github.com/pdfcpu/pdfcpu/pkg/pdfcpu/model"
)

// PDFInfo summarizes the first pages of a PDF for classification
type PDFInfo struct {
	PageCount    int
	SampledPages int
	TextChars    []int // non-space characters per sampled page
	ImageCounts  []int // image XObjects per sampled page
	SampleText   string
}

// AvgTextChars is the mean number of text characters per sampled page
func (i PDFInfo) AvgTextChars() float64 {
	if i.SampledPages == 0 {
		return 0
	}
	total := 0
	for _, n := range i.TextChars {
		total += n
	}
	return float64(total) / float64(i.SampledPages)
}

// AvgImages is the mean number of images per sampled page
func (i PDFInfo) AvgImages() float64 {
	if i.SampledPages == 0 {
		return 0
	}
	total := 0
	for _, n := range i.ImageCounts {
		total += n
	}
	return float64(total) / float64(i.SampledPages)
}

// InspectPDF reads text length and image count over the first samplePages pages
func InspectPDF(content []byte, samplePages int) (PDFInfo, error) {
	reader, err := openPDF(content)
	if err != nil {
		return PDFInfo{}, err
	}

	info := PDFInfo{PageCount: reader.NumPage()}
	info.SampledPages = min(samplePages, info.PageCount)

	var sample strings.Builder
	for i := 1; i <= info.SampledPages; i++ {
		text := pageText(reader.Page(i), i)
		info.TextChars = append(info.TextChars, countNonSpace(text))
		if text != "" {
			sample.WriteString(text)
			sample.WriteString("\n")
		}
	}
	info.SampleText = sample.String()

	counts, err := pdfcpuImageCounts(content, info.SampledPages)
	if err != nil {
		log.Warnf("PDF Inspector: pdfcpu could not read the file (%v), counting images from page resources", err)
		counts = resourceImageCounts(reader, info.SampledPages)
	}
	info.ImageCounts = counts

	return info, nil
}

// pdfcpuImageCounts counts the image objects pdfcpu attributes to each page
func pdfcpuImageCounts(content []byte, pages int) ([]int, error) {
	conf := pdfmodel.NewDefaultConfiguration()
	ctx, err := api.ReadValidateAndOptimize(bytes.NewReader(sanitizePDF(content)), conf)
	if err != nil {
		return nil, err
	}

	counts := make([]int, 0, pages)
	for pageNr := 1; pageNr <= pages && pageNr <= ctx.PageCount; pageNr++ {
		counts = append(counts, len(pdfcpu.ImageObjNrs(ctx, pageNr)))
	}
	return counts, nil
}

// resourceImageCounts walks each page's XObject resources
func resourceImageCounts(reader *pdf.Reader, pages int) []int {
	counts := make([]int, 0, pages)
	for i := 1; i <= pages; i++ {
		page := reader.Page(i)
		n := 0
		if !page.V.IsNull() {
			xobjects := page.Resources().Key("XObject")
			for _, name := range xobjects.Keys() {
				if xobjects.Key(name).Key("Subtype").Name() == "Image" {
					n++
				}
			}
		}
		counts = append(counts, n)
	}
	return counts
}

func countNonSpace(s string) int {
	n := 0
	for _, r := range s {
		if r != ' ' && r != '\n' && r != '\t' && r != '\r' {
			n++
		}
	}
	return n
}
