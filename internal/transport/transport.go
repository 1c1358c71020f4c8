// Package transport defines the interface shared by the servers chattybot
// exposes: the public HTTP API and the optional gRPC health endpoint.
package transport

import (
	"context"

	"github.com/LovitraMehta/ChattyBot/internal/pipeline"
)

// Processor runs one voice request. *pipeline.Pipeline implements it.
type Processor interface {
	Process(ctx context.Context, raw []byte, contentType string) (*pipeline.Result, error)
}

// Artifacts resolves a request token to its synthesized audio on disk.
// *store.Store implements it.
type Artifacts interface {
	OutputPath(token string) (string, error)
}

// Transport is a network server started and stopped by main.
type Transport interface {
	// Name returns the transport identifier (e.g., "http", "grpc").
	Name() string

	// Listen serves until the context is cancelled or Close is called.
	Listen(ctx context.Context) error

	// Close gracefully shuts down the transport, draining in-flight work.
	Close() error
}
