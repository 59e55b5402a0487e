package extraction

import (
	"bytes"
	"context"
	"fmt"
	"os"
	"path/filepath"
	"strings"
	"unicode/utf8"

	"github.com/sahilchouksey/quiz-brain/model"
	"golang.org/x/net/html"
)

// TextExtractor reads plain text and HTML documents
type TextExtractor struct{}

func (e *TextExtractor) Name() string { return "text" }

func (e *TextExtractor) Extract(ctx context.Context, path string) (string, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return "", &model.ExtractionError{Strategy: e.Name(), Err: err}
	}
	if !utf8.Valid(data) {
		return "", &model.ExtractionError{Strategy: e.Name(), Err: fmt.Errorf("%s is not valid UTF-8 text", filepath.Base(path))}
	}

	var text string
	if IsHTML(path, data) {
		text, err = HTMLToText(data)
		if err != nil {
			return "", &model.ExtractionError{Strategy: e.Name(), Err: err}
		}
	} else {
		text = string(data)
	}

	text = strings.TrimSpace(text)
	if text == "" {
		return "", &model.ExtractionError{Strategy: e.Name(), Err: fmt.Errorf("%s contains no text", filepath.Base(path))}
	}
	return text, nil
}

// IsHTML decides by extension, falling back to a leading tag
func IsHTML(path string, data []byte) bool {
	switch strings.ToLower(filepath.Ext(path)) {
	case ".html", ".htm":
		return true
	}
	head := bytes.ToLower(bytes.TrimSpace(data[:min(len(data), 512)]))
	return bytes.HasPrefix(head, []byte("<!doctype html")) || bytes.HasPrefix(head, []byte("<html"))
}

var skippedElements = map[string]bool{
	"script": true, "style": true, "noscript": true, "head": true, "template": true,
}

var blockElements = map[string]bool{
	"p": true, "div": true, "br": true, "li": true, "tr": true, "section": true, "article": true,
	"h1": true, "h2": true, "h3": true, "h4": true, "h5": true, "h6": true, "ol": true, "ul": true, "table": true,
}

// HTMLToText flattens an HTML document into readable lines
func HTMLToText(data []byte) (string, error) {
	doc, err := html.Parse(bytes.NewReader(data))
	if err != nil {
		return "", fmt.Errorf("failed to parse HTML: %w", err)
	}

	var sb strings.Builder
	lineStart := true
	var walk func(n *html.Node)
	walk = func(n *html.Node) {
		if n.Type == html.ElementNode && skippedElements[n.Data] {
			return
		}
		if n.Type == html.TextNode {
			if t := strings.Join(strings.Fields(n.Data), " "); t != "" {
				if !lineStart {
					sb.WriteString(" ")
				}
				sb.WriteString(t)
				lineStart = false
			}
		}
		for c := n.FirstChild; c != nil; c = c.NextSibling {
			walk(c)
		}
		if n.Type == html.ElementNode && blockElements[n.Data] && !lineStart {
			sb.WriteString("\n")
			lineStart = true
		}
	}
	walk(doc)

	return strings.TrimSpace(sb.String()), nil
}
