package model

// DocType is the container type of an uploaded document
type DocType string

const (
	DocTypePDF     DocType = "pdf"
	DocTypeImage   DocType = "image"
	DocTypeText    DocType = "text"
	DocTypeUnknown DocType = "unknown"
)

// PDFSubtype tells whether a PDF carries an embedded text layer
type PDFSubtype string

const (
	PDFSubtypeTextBased  PDFSubtype = "text_based"
	PDFSubtypeImageBased PDFSubtype = "image_based"
	PDFSubtypeUnknown    PDFSubtype = "unknown"
)

// Language is the detected script of a document
type Language string

const (
	LanguageEnglish Language = "english"
	LanguageBengali Language = "bengali"
	LanguageUnknown Language = "unknown"
	// LanguageAuto is only valid as a request hint
	LanguageAuto Language = "auto"
)

// ParseLanguage maps a user supplied hint to a Language, defaulting to auto
func ParseLanguage(s string) Language {
	switch Language(s) {
	case LanguageEnglish, LanguageBengali:
		return Language(s)
	case "bn", "ben", "bangla":
		return LanguageBengali
	case "en", "eng":
		return LanguageEnglish
	}
	return LanguageAuto
}

// DocumentMetadata is produced once by the classifier and read by the
// extractor factory and the generator to pick their strategies.
type DocumentMetadata struct {
	FileName        string     `json:"file_name"`
	Extension       string     `json:"extension"`
	FileSize        int64      `json:"file_size"`
	MimeType        string     `json:"mime_type,omitempty"`
	DocType         DocType    `json:"doc_type"`
	PDFSubtype      PDFSubtype `json:"pdf_subtype,omitempty"`
	PageCount       int        `json:"page_count,omitempty"`
	Language        Language   `json:"language"`
	IsQuestionPaper bool       `json:"is_question_paper"`
}

// IsRasterized reports whether extraction for this document goes through OCR
func (m DocumentMetadata) IsRasterized() bool {
	return m.DocType == DocTypeImage || (m.DocType == DocTypePDF && m.PDFSubtype == PDFSubtypeImageBased)
}
