// Package logging provides a minimal logging interface and adapters for chatstore.
//
// The Logger interface defines the standard logging methods (Debug, Info, Warn, Error)
// that stores, the registry, the bridge and the chat producer use for observability.
// This package includes:
//
//   - Logger interface for dependency injection
//   - SlogAdapter wrapping Go's structured logging
//   - StoreLogger with component / store key context and domain helpers
//   - NoOpLogger for silent operation (the default everywhere)
//
// Usage:
//
//	logger := logging.NewSlogLogger(logging.LogLevelDebug, "text", false)
//	reg := registry.New(func(o *registry.Options) { o.Logger = logger })
package logging
