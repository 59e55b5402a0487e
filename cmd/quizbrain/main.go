// Command quizbrain runs the generation pipeline on one document and writes
// the artifact next to it as <name>_questions.json.
//
//	quizbrain [-lang auto|english|bengali] [-type SHORT|MULTIPLECHOICE] [-options 4] [-count 0] [-out dir] <file>
//	quizbrain -text "..." [-out dir]
package main

import (
	"context"
	"encoding/json"
	"flag"
	"fmt"
	"os"
	"os/signal"
	"path/filepath"
	"strings"
	"syscall"

	"github.com/gofiber/fiber/v2/log"
	"github.com/sahilchouksey/quiz-brain/app"
	"github.com/sahilchouksey/quiz-brain/config"
	"github.com/sahilchouksey/quiz-brain/model"
	"github.com/sahilchouksey/quiz-brain/services/pipeline"
)

func main() {
	lang := flag.String("lang", "auto", "document language: auto, english or bengali")
	questionType := flag.String("type", "", "question type: SHORT or MULTIPLECHOICE (default from QUESTION_TYPE)")
	options := flag.Int("options", 0, "answer options per multiple choice question (default from ANSWER_OPTIONS)")
	count := flag.Int("count", 0, "number of questions, 0 sizes by document length")
	text := flag.String("text", "", "generate from this text instead of a file")
	outDir := flag.String("out", "", "output directory (default: next to the input, or the working directory)")
	flag.Parse()

	if (*text == "") == (flag.NArg() == 0) {
		fmt.Fprintln(os.Stderr, "usage: quizbrain [flags] <file> | quizbrain -text \"...\" [flags]")
		flag.PrintDefaults()
		os.Exit(2)
	}

	if err := config.LoadENV(); err != nil {
		log.Warnf("quizbrain: no .env file loaded: %v", err)
	}
	env, err := config.Get()
	if err != nil {
		log.Fatalf("quizbrain: %v", err)
	}

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	components, err := app.BuildComponents(ctx, env)
	if err != nil {
		log.Fatalf("quizbrain: %v", err)
	}

	in := pipeline.Input{
		Text:           *text,
		Language:       model.ParseLanguage(*lang),
		QuestionType:   model.ParseQuestionType(env.QUESTION_TYPE),
		AnswerOptions:  env.ANSWER_OPTIONS,
		RequestedCount: *count,
	}
	if *questionType != "" {
		in.QuestionType = model.ParseQuestionType(strings.ToUpper(*questionType))
	}
	if *options > 0 {
		in.AnswerOptions = *options
	}
	if flag.NArg() > 0 {
		in.Path = flag.Arg(0)
	}

	result, err := components.Pipeline.Run(ctx, "cli", in, pipeline.LogObserver{})
	if err != nil {
		log.Fatalf("quizbrain: %v", err)
	}

	path, err := writeArtifact(result.Artifact, outputPath(in, *outDir))
	if err != nil {
		log.Fatalf("quizbrain: %v", err)
	}
	fmt.Printf("%d questions written to %s\n", len(result.Artifact.Questions), path)
}

// outputPath names the artifact after the source document
func outputPath(in pipeline.Input, outDir string) string {
	name := pipeline.TextSourceName
	dir := "."
	if in.Path != "" {
		name = strings.TrimSuffix(filepath.Base(in.Path), filepath.Ext(in.Path))
		dir = filepath.Dir(in.Path)
	}
	if outDir != "" {
		dir = outDir
	}
	return filepath.Join(dir, name+"_questions.json")
}

func writeArtifact(artifact model.Artifact, path string) (string, error) {
	data, err := json.MarshalIndent(artifact, "", "  ")
	if err != nil {
		return "", err
	}
	if err := os.MkdirAll(filepath.Dir(path), 0o755); err != nil {
		return "", err
	}
	if err := os.WriteFile(path, data, 0o644); err != nil {
		return "", fmt.Errorf("failed to write %s: %w", path, err)
	}
	return path, nil
}
