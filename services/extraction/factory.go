package extraction

import (
	"fmt"

	"github.com/sahilchouksey/quiz-brain/model"
	"github.com/sahilchouksey/quiz-brain/services/ocr"
)

// Factory picks an extractor from document metadata
type Factory struct {
	ladder     *Ladder
	recognizer ocr.Recognizer
}

// NewFactory creates a factory; a nil ladder selects DefaultLadder
func NewFactory(recognizer ocr.Recognizer, ladder *Ladder) *Factory {
	if ladder == nil {
		ladder = DefaultLadder()
	}
	return &Factory{ladder: ladder, recognizer: recognizer}
}

// For returns the extractor for meta
func (f *Factory) For(meta model.DocumentMetadata) (Extractor, error) {
	opts := ocr.Options{Language: meta.Language, QuestionPaper: meta.IsQuestionPaper}

	switch meta.DocType {
	case model.DocTypePDF:
		if meta.PDFSubtype == model.PDFSubtypeTextBased {
			return NewTextPDFExtractor(), nil
		}
		// image_based and unknown subtypes both need rendering
		return &ImagePDFExtractor{ladder: f.ladder, recognizer: f.recognizer, options: opts}, nil
	case model.DocTypeImage:
		return &ImageExtractor{recognizer: f.recognizer, options: opts}, nil
	case model.DocTypeText:
		return &TextExtractor{}, nil
	}

	return nil, &model.ExtractionError{
		Strategy: "factory",
		Err:      fmt.Errorf("unsupported document type %q (%s)", meta.DocType, meta.Extension),
	}
}
