package engine

import (
	"context"

	"github.com/tetratelabs/wazero"

	"github.com/wippyai/wasm-bindgen/errors"
)

// Engine compiles and runs core WASM modules on a shared wazero runtime.
type Engine struct {
	runtime wazero.Runtime
}

// Config holds configuration for engine creation
type Config struct {
	// MemoryLimitPages sets the maximum memory per instance in pages (64KB each).
	// 0 means default (65536 pages = 4GB).
	// 256 = 16MB, 1024 = 64MB, 4096 = 256MB
	MemoryLimitPages uint32
}

// New creates a wazero-backed engine with default configuration.
func New(ctx context.Context) (*Engine, error) {
	return NewWithConfig(ctx, nil)
}

// NewWithConfig creates a new engine with custom configuration
func NewWithConfig(ctx context.Context, cfg *Config) (*Engine, error) {
	runtimeCfg := wazero.NewRuntimeConfig()
	if cfg != nil && cfg.MemoryLimitPages > 0 {
		runtimeCfg = runtimeCfg.WithMemoryLimitPages(cfg.MemoryLimitPages)
	}
	return &Engine{runtime: wazero.NewRuntimeWithConfig(ctx, runtimeCfg)}, nil
}

// Load compiles raw core module bytes. The returned Module can be
// instantiated repeatedly.
func (e *Engine) Load(ctx context.Context, wasmBytes []byte) (*Module, error) {
	compiled, err := e.runtime.CompileModule(ctx, wasmBytes)
	if err != nil {
		return nil, errors.Load("compile failed", err)
	}
	return &Module{engine: e, compiled: compiled}, nil
}

func (e *Engine) Close(ctx context.Context) error {
	return e.runtime.Close(ctx)
}
