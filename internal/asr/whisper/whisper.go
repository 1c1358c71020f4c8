// Package whisper implements the Recognizer interface against a
// whisper-asr-webservice instance (ahmetoner/whisper-asr-webservice).
//
// Endpoints used:
//
//	POST /asr?task=transcribe&language=en&output=json   (multipart "audio_file")
//	POST /detect-language                                 (multipart "audio_file")
package whisper

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"log/slog"
	"mime/multipart"
	"net/http"
	"net/url"
	"os"
	"path/filepath"
	"strings"

	"github.com/LovitraMehta/ChattyBot/internal/asr"
	"github.com/LovitraMehta/ChattyBot/internal/config"
	"github.com/LovitraMehta/ChattyBot/internal/language"
)

// Recognizer talks to a whisper-asr-webservice over HTTP.
type Recognizer struct {
	endpoint  string
	vadFilter bool
	client    *http.Client
}

// New creates a whisper recognizer from config.
func New(cfg config.WhisperConfig) *Recognizer {
	return &Recognizer{
		endpoint:  strings.TrimRight(cfg.Endpoint, "/"),
		vadFilter: cfg.VADFilter,
		client:    &http.Client{},
	}
}

// Name returns the backend identifier.
func (r *Recognizer) Name() string { return "whisper" }

// DetectLanguage asks the service to identify the spoken language.
func (r *Recognizer) DetectLanguage(ctx context.Context, audioPath string) (map[string]float64, error) {
	var result struct {
		DetectedLanguage string  `json:"detected_language"`
		LanguageCode     string  `json:"language_code"`
		Confidence       float64 `json:"confidence"`
	}
	if err := r.post(ctx, "/detect-language", nil, audioPath, &result); err != nil {
		return nil, fmt.Errorf("detect language: %w", err)
	}

	code := result.LanguageCode
	if code == "" {
		code = language.FromName(result.DetectedLanguage)
	}
	if code == "" {
		return nil, fmt.Errorf("detect language: empty response")
	}
	prob := result.Confidence
	if prob <= 0 {
		prob = 1
	}
	slog.Debug("whisper language detected", "language", code, "confidence", prob)
	return map[string]float64{strings.ToLower(code): prob}, nil
}

// Transcribe runs forced-language transcription.
func (r *Recognizer) Transcribe(ctx context.Context, audioPath string, opts asr.TranscribeOpts) (string, error) {
	q := make(url.Values)
	q.Set("task", "transcribe")
	q.Set("output", "json")
	q.Set("encode", "true")
	if opts.Language != "" {
		q.Set("language", opts.Language)
	}
	if opts.Prompt != "" {
		q.Set("initial_prompt", opts.Prompt)
	}
	if r.vadFilter {
		q.Set("vad_filter", "true")
	}

	var result struct {
		Text     string `json:"text"`
		Language string `json:"language"`
	}
	if err := r.post(ctx, "/asr", q, audioPath, &result); err != nil {
		return "", fmt.Errorf("transcribe: %w", err)
	}

	slog.Debug("whisper transcription complete", "text_length", len(result.Text), "language", result.Language)
	return result.Text, nil
}

// Close is a no-op; connections are per-request.
func (r *Recognizer) Close() error { return nil }

// post uploads the file at audioPath as multipart field "audio_file" and
// decodes the JSON response into out.
func (r *Recognizer) post(ctx context.Context, path string, q url.Values, audioPath string, out any) error {
	f, err := os.Open(audioPath)
	if err != nil {
		return fmt.Errorf("opening audio: %w", err)
	}
	defer f.Close()

	body := &bytes.Buffer{}
	writer := multipart.NewWriter(body)
	part, err := writer.CreateFormFile("audio_file", filepath.Base(audioPath))
	if err != nil {
		return fmt.Errorf("creating form file: %w", err)
	}
	if _, err := io.Copy(part, f); err != nil {
		return fmt.Errorf("writing audio: %w", err)
	}
	writer.Close()

	reqURL := r.endpoint + path
	if len(q) > 0 {
		reqURL += "?" + q.Encode()
	}
	req, err := http.NewRequestWithContext(ctx, http.MethodPost, reqURL, body)
	if err != nil {
		return fmt.Errorf("creating request: %w", err)
	}
	req.Header.Set("Content-Type", writer.FormDataContentType())

	slog.Debug("whisper-asr request", "url", reqURL)

	resp, err := r.client.Do(req)
	if err != nil {
		return fmt.Errorf("request: %w", err)
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		respBody, _ := io.ReadAll(io.LimitReader(resp.Body, 2048))
		return fmt.Errorf("status %d: %s", resp.StatusCode, respBody)
	}

	if err := json.NewDecoder(resp.Body).Decode(out); err != nil {
		return fmt.Errorf("decoding response: %w", err)
	}
	return nil
}
