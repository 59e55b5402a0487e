package app

import (
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"strings"
	"sync"
	"testing"
	"time"

	"github.com/sahilchouksey/quiz-brain/config"
	"github.com/sahilchouksey/quiz-brain/services/ocr"
	"github.com/sahilchouksey/quiz-brain/utils/testutil"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

// chatServer answers OpenAI-compatible chat completions and records the
// requested models
type chatServer struct {
	mu     sync.Mutex
	models []string
	reply  string
}

func (s *chatServer) ServeHTTP(w http.ResponseWriter, r *http.Request) {
	if !strings.HasSuffix(r.URL.Path, "/chat/completions") {
		w.WriteHeader(http.StatusNotFound)
		return
	}
	var body struct {
		Model string `json:"model"`
	}
	_ = json.NewDecoder(r.Body).Decode(&body)

	s.mu.Lock()
	s.models = append(s.models, body.Model)
	s.mu.Unlock()

	w.Header().Set("Content-Type", "application/json")
	_ = json.NewEncoder(w).Encode(map[string]interface{}{
		"id":     "chatcmpl-1",
		"object": "chat.completion",
		"model":  body.Model,
		"choices": []map[string]interface{}{{
			"index":         0,
			"message":       map[string]string{"role": "assistant", "content": s.reply},
			"finish_reason": "stop",
		}},
	})
}

func (s *chatServer) calls() []string {
	s.mu.Lock()
	defer s.mu.Unlock()
	return append([]string(nil), s.models...)
}

func testEnv(t *testing.T, visionModel string) (*config.EnviornmentVariable, *chatServer, func() int) {
	t.Helper()

	var (
		mu       sync.Mutex
		ocrCalls int
	)
	ocrServer := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		mu.Lock()
		ocrCalls++
		mu.Unlock()
		http.Error(w, "engine crashed", http.StatusInternalServerError)
	}))
	t.Cleanup(ocrServer.Close)

	chat := &chatServer{reply: "Photosynthesis converts light energy into chemical energy."}
	modelServer := httptest.NewServer(chat)
	t.Cleanup(modelServer.Close)

	return &config.EnviornmentVariable{
		MODEL_PROVIDER:        "openai",
		MODEL_ACCESS_KEY:      "test-key",
		MODEL_BASE_URL:        modelServer.URL + "/v1",
		QA_MODEL:              "qa-model",
		VISION_MODEL:          visionModel,
		MODEL_CALL_TIMEOUT:    5 * time.Second,
		RATE_LIMIT_BATCH_SIZE: 3,
		INITIAL_RETRY_DELAY:   time.Millisecond,
		MAX_RETRY_DELAY:       time.Millisecond,
		OCR_SERVICE_URL:       ocrServer.URL,
		OCR_TIMEOUT:           5 * time.Second,
		MIN_TEXT_LENGTH:       100,
		QUESTION_TYPE:         "MULTIPLECHOICE",
		ANSWER_OPTIONS:        4,
		MAX_CONCURRENT_CHUNKS: 1,
	}, chat, func() int {
		mu.Lock()
		defer mu.Unlock()
		return ocrCalls
	}
}

func TestBuildComponentsFallsBackToVisionModel(t *testing.T) {
	env, chat, ocrCalls := testEnv(t, "")

	components, err := BuildComponents(context.Background(), env)
	require.NoError(t, err)
	assert.Equal(t, []string{"local-ocr", "vision-model"}, components.OCREngine.StrategyNames())

	result, err := components.OCREngine.Recognize(context.Background(),
		ocr.Image{Data: testutil.PNG(8, 8), MIMEType: "image/png"}, ocr.Options{})
	require.NoError(t, err)

	assert.Equal(t, "vision-model", result.Strategy)
	assert.Equal(t, []string{"local-ocr", "vision-model"}, result.Attempts)
	assert.Contains(t, result.Text, "Photosynthesis")
	assert.Equal(t, 1, ocrCalls())
	assert.Equal(t, []string{"qa-model"}, chat.calls())
}

func TestBuildComponentsUsesVisionModel(t *testing.T) {
	env, chat, _ := testEnv(t, "vision-large")

	components, err := BuildComponents(context.Background(), env)
	require.NoError(t, err)

	_, err = components.OCREngine.Recognize(context.Background(),
		ocr.Image{Data: testutil.PNG(8, 8), MIMEType: "image/png"}, ocr.Options{})
	require.NoError(t, err)
	assert.Equal(t, []string{"vision-large"}, chat.calls())
}
