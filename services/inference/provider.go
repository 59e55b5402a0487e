package inference

import "context"

// Attachment is binary content sent alongside a prompt (page image or raw PDF)
type Attachment struct {
	MIMEType string
	Data     []byte
}

// Request is a single generation request
type Request struct {
	Prompt      string
	Attachments []Attachment
}

// Model is an initialized handle for one named model
type Model interface {
	Generate(ctx context.Context, req Request) (string, error)
}

// Provider creates model handles. Handles are cached by the Client, so
// Model is called at most once per name.
type Provider interface {
	Name() string
	Model(name string) (Model, error)
}
