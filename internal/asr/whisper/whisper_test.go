package whisper

import (
	"context"
	"encoding/json"
	"io"
	"net/http"
	"net/http/httptest"
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/LovitraMehta/ChattyBot/internal/asr"
	"github.com/LovitraMehta/ChattyBot/internal/config"
)

func writeWAV(t *testing.T) string {
	t.Helper()
	path := filepath.Join(t.TempDir(), "input.wav")
	require.NoError(t, os.WriteFile(path, []byte("RIFF fake wav"), 0o644))
	return path
}

func TestTranscribeSendsForcedLanguage(t *testing.T) {
	var gotQuery map[string]string
	var gotAudio []byte
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		assert.Equal(t, "/asr", r.URL.Path)
		gotQuery = map[string]string{}
		for k := range r.URL.Query() {
			gotQuery[k] = r.URL.Query().Get(k)
		}
		if f, _, err := r.FormFile("audio_file"); assert.NoError(t, err) {
			gotAudio, _ = io.ReadAll(f)
		}
		_ = json.NewEncoder(w).Encode(map[string]string{"text": " नमस्ते दुनिया ", "language": "hi"})
	}))
	defer srv.Close()

	rec := New(config.WhisperConfig{Endpoint: srv.URL + "/", VADFilter: true})
	text, err := rec.Transcribe(context.Background(), writeWAV(t), asr.TranscribeOpts{Language: "hi"})
	require.NoError(t, err)

	assert.Equal(t, " नमस्ते दुनिया ", text)
	assert.Equal(t, "hi", gotQuery["language"])
	assert.Equal(t, "transcribe", gotQuery["task"])
	assert.Equal(t, "true", gotQuery["vad_filter"])
	assert.Equal(t, []byte("RIFF fake wav"), gotAudio)
}

func TestDetectLanguage(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		assert.Equal(t, "/detect-language", r.URL.Path)
		_, _ = io.WriteString(w, `{"detected_language":"hindi","language_code":"hi","confidence":0.87}`)
	}))
	defer srv.Close()

	rec := New(config.WhisperConfig{Endpoint: srv.URL})
	probs, err := rec.DetectLanguage(context.Background(), writeWAV(t))
	require.NoError(t, err)
	assert.Equal(t, map[string]float64{"hi": 0.87}, probs)
}

func TestDetectLanguageFromNameOnly(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		_, _ = io.WriteString(w, `{"detected_language":"english"}`)
	}))
	defer srv.Close()

	rec := New(config.WhisperConfig{Endpoint: srv.URL})
	probs, err := rec.DetectLanguage(context.Background(), writeWAV(t))
	require.NoError(t, err)
	assert.Equal(t, map[string]float64{"en": 1}, probs)
}

func TestErrors(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		http.Error(w, "model not loaded", http.StatusServiceUnavailable)
	}))
	defer srv.Close()

	rec := New(config.WhisperConfig{Endpoint: srv.URL})
	_, err := rec.Transcribe(context.Background(), writeWAV(t), asr.TranscribeOpts{Language: "en"})
	assert.ErrorContains(t, err, "status 503")

	_, err = rec.DetectLanguage(context.Background(), writeWAV(t))
	assert.ErrorContains(t, err, "status 503")

	_, err = rec.Transcribe(context.Background(), filepath.Join(t.TempDir(), "missing.wav"), asr.TranscribeOpts{})
	assert.ErrorContains(t, err, "opening audio")
}
