// Package http implements the public HTTP API of chattybot.
//
// Clients POST a short recording to /process_audio and receive the reply text
// plus a URL under /audio/ from which the spoken reply can be fetched until
// the retention sweep removes it.
package http

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"log/slog"
	"mime"
	"net/http"
	"os"
	"path/filepath"
	"strings"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/go-chi/chi/v5/middleware"
	httpSwagger "github.com/swaggo/http-swagger/v2"

	_ "github.com/LovitraMehta/ChattyBot/docs" // registers the OpenAPI spec
	"github.com/LovitraMehta/ChattyBot/internal/audio"
	"github.com/LovitraMehta/ChattyBot/internal/message"
	"github.com/LovitraMehta/ChattyBot/internal/pipeline"
	"github.com/LovitraMehta/ChattyBot/internal/transport"
)

// DefaultMaxUploadBytes caps the accepted request body.
const DefaultMaxUploadBytes = 25 << 20

// Transport serves the public API.
type Transport struct {
	port      int
	maxUpload int64
	proc      transport.Processor
	artifacts transport.Artifacts
	server    *http.Server
}

// New creates the HTTP transport on port. maxUpload <= 0 selects
// DefaultMaxUploadBytes.
func New(port int, maxUpload int64, proc transport.Processor, artifacts transport.Artifacts) *Transport {
	if maxUpload <= 0 {
		maxUpload = DefaultMaxUploadBytes
	}
	return &Transport{port: port, maxUpload: maxUpload, proc: proc, artifacts: artifacts}
}

// Name returns the transport identifier.
func (t *Transport) Name() string { return "http" }

// Router builds the route table.
func (t *Transport) Router() http.Handler {
	r := chi.NewRouter()
	r.Use(middleware.RequestID)
	r.Use(middleware.RealIP)
	r.Use(requestLogger)
	r.Use(middleware.Recoverer)

	r.Post("/process_audio", t.handleProcessAudio)
	r.Get("/audio/{token}", t.handleGetAudio)

	r.Get("/swagger/*", httpSwagger.Handler(
		httpSwagger.URL("/swagger/doc.json"),
	))
	return r
}

// Listen starts the HTTP server. It blocks until the context is cancelled.
func (t *Transport) Listen(ctx context.Context) error {
	t.server = &http.Server{
		Addr:              fmt.Sprintf(":%d", t.port),
		Handler:           t.Router(),
		ReadHeaderTimeout: 10 * time.Second,
	}

	slog.Info("http transport listening", "port", t.port)

	go func() {
		<-ctx.Done()
		slog.Info("http transport shutting down")
		shutdownCtx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
		defer cancel()
		_ = t.server.Shutdown(shutdownCtx)
	}()

	if err := t.server.ListenAndServe(); !errors.Is(err, http.ErrServerClosed) {
		return fmt.Errorf("http listen: %w", err)
	}
	return nil
}

// Close gracefully shuts down the HTTP server.
func (t *Transport) Close() error {
	if t.server != nil {
		ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
		defer cancel()
		return t.server.Shutdown(ctx)
	}
	return nil
}

// handleProcessAudio runs a recording through the pipeline.
//
// @Summary     Process a voice recording
// @Description Detects the spoken language (English or Hindi), transcribes the recording,
// @Description generates a reply in the same language and synthesizes it to speech.
// @Description Send multipart/form-data with an "audio" file field, or the raw bytes with an audio/* Content-Type.
// @Tags        audio
// @Accept      multipart/form-data
// @Accept      audio/webm
// @Accept      audio/wav
// @Produce     json
// @Param       audio  formData  file  true  "Recorded audio (webm, wav, ogg, mp3)"
// @Success     200  {object}  message.ProcessResponse
// @Failure     400  {object}  message.ErrorResponse  "Missing or invalid upload"
// @Failure     413  {object}  message.ErrorResponse  "Upload too large"
// @Failure     500  {object}  message.ErrorResponse  "Pipeline failure"
// @Router      /process_audio [post]
func (t *Transport) handleProcessAudio(w http.ResponseWriter, r *http.Request) {
	r.Body = http.MaxBytesReader(w, r.Body, t.maxUpload)

	raw, contentType, err := t.readUpload(r)
	if err != nil {
		var tooLarge *http.MaxBytesError
		switch {
		case errors.As(err, &tooLarge):
			respondError(w, http.StatusRequestEntityTooLarge, "upload too large")
		case errors.Is(err, errNoAudio):
			respondError(w, http.StatusBadRequest, "no audio file")
		default:
			respondError(w, http.StatusBadRequest, err.Error())
		}
		return
	}

	res, err := t.proc.Process(r.Context(), raw, contentType)
	if err != nil {
		if errors.Is(err, pipeline.ErrInvalidInput) {
			respondError(w, http.StatusBadRequest, err.Error())
			return
		}
		respondError(w, http.StatusInternalServerError, failureMessage(err))
		return
	}

	respondJSON(w, http.StatusOK, message.ProcessResponse{
		Text:     res.Text,
		Audio:    message.AudioURL(res.Token),
		Language: res.Language.String(),
	})
}

var errNoAudio = errors.New("no audio file")

// failureMessage reduces a pipeline failure to its kind. Backend details stay
// in the request log.
func failureMessage(err error) string {
	var perr *pipeline.Error
	if errors.As(err, &perr) && perr.Kind != nil {
		return perr.Kind.Error()
	}
	return "internal error"
}

// readUpload extracts the audio bytes and their declared MIME type from a
// multipart "audio" field or a raw audio/* body.
func (t *Transport) readUpload(r *http.Request) ([]byte, string, error) {
	mediaType, _, _ := mime.ParseMediaType(r.Header.Get("Content-Type"))

	switch {
	case mediaType == "multipart/form-data":
		if err := r.ParseMultipartForm(32 << 20); err != nil {
			return nil, "", fmt.Errorf("parsing form: %w", err)
		}
		file, header, err := r.FormFile("audio")
		if err != nil {
			if errors.Is(err, http.ErrMissingFile) {
				return nil, "", errNoAudio
			}
			return nil, "", fmt.Errorf("reading audio field: %w", err)
		}
		defer file.Close()

		raw, err := io.ReadAll(file)
		if err != nil {
			return nil, "", fmt.Errorf("reading audio field: %w", err)
		}
		ct := header.Header.Get("Content-Type")
		if ct == "" || ct == "application/octet-stream" {
			ct = mime.TypeByExtension(filepath.Ext(header.Filename))
		}
		return raw, ct, nil

	case strings.HasPrefix(mediaType, "audio/"):
		raw, err := io.ReadAll(r.Body)
		if err != nil {
			return nil, "", err
		}
		if len(raw) == 0 {
			return nil, "", errNoAudio
		}
		return raw, mediaType, nil

	default:
		return nil, "", errNoAudio
	}
}

// handleGetAudio serves a synthesized reply.
//
// @Summary     Fetch synthesized audio
// @Description Returns the spoken reply produced by /process_audio. Audio is deleted by the retention sweep.
// @Tags        audio
// @Produce     audio/wav
// @Produce     audio/mpeg
// @Param       token  path  string  true  "Request token from the audio URL"
// @Success     200  {file}    binary
// @Failure     404  {object}  message.ErrorResponse  "Unknown or expired token"
// @Router      /audio/{token} [get]
func (t *Transport) handleGetAudio(w http.ResponseWriter, r *http.Request) {
	path, err := t.artifacts.OutputPath(chi.URLParam(r, "token"))
	if err != nil {
		respondError(w, http.StatusNotFound, "audio not found")
		return
	}

	f, err := os.Open(path)
	if err != nil {
		// Swept between lookup and open.
		respondError(w, http.StatusNotFound, "audio not found")
		return
	}
	defer f.Close()

	info, err := f.Stat()
	if err != nil {
		respondError(w, http.StatusInternalServerError, err.Error())
		return
	}

	w.Header().Set("Content-Type", audio.ContentTypeFromExt(filepath.Ext(path)))
	http.ServeContent(w, r, filepath.Base(path), info.ModTime(), f)
}

func respondJSON(w http.ResponseWriter, status int, body any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	_ = json.NewEncoder(w).Encode(body)
}

func respondError(w http.ResponseWriter, status int, msg string) {
	respondJSON(w, status, message.ErrorResponse{Error: msg})
}

// requestLogger logs one line per request with slog.
func requestLogger(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		start := time.Now()
		ww := middleware.NewWrapResponseWriter(w, r.ProtoMajor)
		next.ServeHTTP(ww, r)

		level := slog.LevelInfo
		if ww.Status() >= http.StatusInternalServerError {
			level = slog.LevelError
		}
		slog.Log(r.Context(), level, "http request",
			"method", r.Method,
			"path", r.URL.Path,
			"status", ww.Status(),
			"bytes", ww.BytesWritten(),
			"duration", time.Since(start),
			"http_request_id", middleware.GetReqID(r.Context()),
		)
	})
}
