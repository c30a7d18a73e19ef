package runtime

import (
	"context"

	"github.com/wippyai/wasm-bindgen/engine"
	"github.com/wippyai/wasm-bindgen/errors"
)

type Runtime struct {
	engine *engine.Engine
	hosts  *HostRegistry
}

func New(ctx context.Context) (*Runtime, error) {
	eng, err := engine.New(ctx)
	if err != nil {
		return nil, errors.Load("create engine", err)
	}

	return &Runtime{
		engine: eng,
		hosts:  NewHostRegistry(),
	}, nil
}

// Close releases all runtime resources.
// All instances must be closed before calling this.
func (r *Runtime) Close(ctx context.Context) error {
	return r.engine.Close(ctx)
}

// RegisterHost registers all functions of h under its namespace.
// Must be called BEFORE instantiating modules that import them.
func (r *Runtime) RegisterHost(h Host) error {
	return r.hosts.RegisterHost(h)
}

// RegisterFunc registers a single host function. The signature is WIT
// text, e.g. "log: func(msg: string)". An empty namespace registers a
// top-level world import.
func (r *Runtime) RegisterFunc(namespace, signature string, fn any) error {
	return r.hosts.RegisterFunc(namespace, signature, fn)
}

func (r *Runtime) Hosts() *HostRegistry {
	return r.hosts
}

// Load compiles a core WASM module. witText provides the function
// signatures since core modules lack type metadata.
func (r *Runtime) Load(ctx context.Context, wasm []byte, witText string) (*Module, error) {
	engineModule, err := r.engine.Load(ctx, wasm)
	if err != nil {
		return nil, err
	}

	return &Module{
		runtime:      r,
		engineModule: engineModule,
		witText:      witText,
	}, nil
}
