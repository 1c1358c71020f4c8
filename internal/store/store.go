// Package store manages the per-request audio artifacts on disk.
//
// Two directories are used: one for uploads and their normalized WAV copies,
// one for synthesized output served back to callers. Each request gets a
// random token and every file it owns is named after that token, so
// concurrent requests never touch the same path. Nothing here takes a lock.
package store

import (
	"errors"
	"fmt"
	"io/fs"
	"log/slog"
	"os"
	"path/filepath"
	"strings"

	"github.com/google/uuid"
)

// ErrNotFound is returned when an output artifact is absent or already swept.
var ErrNotFound = errors.New("artifact not found")

// Store allocates request contexts inside the upload and output directories.
type Store struct {
	uploadDir string
	outputDir string
	outputExt string
}

// New creates both directories if needed. outputExt is the file extension of
// synthesized audio (".wav", ".mp3"), including the dot.
func New(uploadDir, outputDir, outputExt string) (*Store, error) {
	for _, dir := range []string{uploadDir, outputDir} {
		if err := os.MkdirAll(dir, 0o755); err != nil {
			return nil, fmt.Errorf("creating %s: %w", dir, err)
		}
	}
	if outputExt == "" {
		outputExt = ".wav"
	}
	return &Store{uploadDir: uploadDir, outputDir: outputDir, outputExt: outputExt}, nil
}

// Dirs returns the directories covered by the retention sweep.
func (s *Store) Dirs() []string {
	return []string{s.uploadDir, s.outputDir}
}

// RequestContext owns the artifact locations of a single request.
type RequestContext struct {
	Token      string
	Upload     string // raw upload as received
	Normalized string // 16 kHz mono PCM WAV
	Output     string // synthesized reply
}

// Paths returns every artifact location owned by the request.
func (rc *RequestContext) Paths() []string {
	return []string{rc.Upload, rc.Normalized, rc.Output}
}

// NewRequest allocates a token and derives the three artifact paths. No files
// are created. uploadExt is the extension of the raw upload (".webm"). The
// normalized path never equals the upload path, even for a ".wav" upload.
func (s *Store) NewRequest(uploadExt string) *RequestContext {
	token := uuid.NewString()
	if uploadExt == "" {
		uploadExt = ".webm"
	}
	return &RequestContext{
		Token:      token,
		Upload:     filepath.Join(s.uploadDir, "input_"+token+uploadExt),
		Normalized: filepath.Join(s.uploadDir, "input_"+token+".16k.wav"),
		Output:     filepath.Join(s.outputDir, "output_"+token+s.outputExt),
	}
}

// Discard removes every artifact of rc. Missing files are ignored and other
// errors are logged, never returned.
func (s *Store) Discard(rc *RequestContext) {
	for _, path := range rc.Paths() {
		if err := removeIfExists(path); err != nil {
			slog.Warn("artifact cleanup failed", "path", path, "error", err)
		}
	}
}

// OutputPath resolves the synthesized audio for token. Tokens that are not
// UUIDs are rejected so callers cannot escape the output directory.
func (s *Store) OutputPath(token string) (string, error) {
	id, err := uuid.Parse(token)
	if err != nil || strings.ContainsAny(token, `/\`) {
		return "", ErrNotFound
	}
	path := filepath.Join(s.outputDir, "output_"+id.String()+s.outputExt)
	info, err := os.Stat(path)
	if err != nil || info.IsDir() {
		return "", ErrNotFound
	}
	return path, nil
}

func removeIfExists(path string) error {
	err := os.Remove(path)
	if err == nil || errors.Is(err, fs.ErrNotExist) {
		return nil
	}
	return err
}
