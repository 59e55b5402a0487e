package main

import (
	"encoding/json"
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/sahilchouksey/quiz-brain/model"
	"github.com/sahilchouksey/quiz-brain/services/pipeline"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestOutputPath(t *testing.T) {
	assert.Equal(t, filepath.Join("docs", "biology_questions.json"), outputPath(pipeline.Input{Path: "docs/biology.pdf"}, ""))
	assert.Equal(t, filepath.Join("out", "biology_questions.json"), outputPath(pipeline.Input{Path: "docs/biology.pdf"}, "out"))
	assert.Equal(t, "text-input_questions.json", outputPath(pipeline.Input{Text: "some text"}, ""))
}

func TestWriteArtifact(t *testing.T) {
	path := filepath.Join(t.TempDir(), "nested", "paper_questions.json")
	artifact := model.Artifact{
		SourceDocument: "paper.pdf",
		GeneratedAt:    time.Date(2025, 1, 2, 3, 4, 5, 0, time.UTC),
		Questions:      []model.QuestionAnswer{{Question: "কোষ কী?", Answer: "জীবনের একক", QuestionType: model.QuestionTypeShort}},
	}

	written, err := writeArtifact(artifact, path)
	require.NoError(t, err)
	assert.Equal(t, path, written)

	data, err := os.ReadFile(path)
	require.NoError(t, err)
	assert.Contains(t, string(data), "কোষ কী?", "non-ASCII text is written unescaped")

	var back model.Artifact
	require.NoError(t, json.Unmarshal(data, &back))
	assert.Equal(t, "paper.pdf", back.SourceDocument)
	require.Len(t, back.Questions, 1)
}
