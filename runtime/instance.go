package runtime

import (
	"context"

	"github.com/wippyai/wasm-bindgen/bind"
	"github.com/wippyai/wasm-bindgen/engine"
	"github.com/wippyai/wasm-bindgen/errors"
)

type Instance struct {
	module     *Module
	engineInst *engine.Instance
	exports    *bind.ExportObject
}

// Call invokes an export by either its host-visible lowerCamelCase name
// or the original kebab-case WIT name.
func (i *Instance) Call(ctx context.Context, name string, args ...any) (any, error) {
	if exp, ok := i.exports.Get(name); ok {
		return exp.Call(ctx, args...)
	}
	if exp, ok := i.exports.Get(bind.LowerCamel(name)); ok {
		return exp.Call(ctx, args...)
	}
	return nil, errors.NotFound(errors.PhaseCall, "export", name)
}

// Exports returns the bound export object.
func (i *Instance) Exports() *bind.ExportObject {
	return i.exports
}

// MemorySize returns the current linear memory size in bytes.
func (i *Instance) MemorySize() uint32 {
	return i.engineInst.MemorySize()
}

func (i *Instance) Close(ctx context.Context) error {
	return i.engineInst.Close(ctx)
}
