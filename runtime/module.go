package runtime

import (
	"context"
	"sort"
	"sync"

	"github.com/wippyai/wasm-bindgen/bind"
	"github.com/wippyai/wasm-bindgen/engine"
	"github.com/wippyai/wasm-bindgen/errors"
)

type Module struct {
	sigsErr      error
	runtime      *Runtime
	engineModule *engine.Module
	sigs         map[string]bind.Signature
	witText      string
	sigsOnce     sync.Once
}

// Signatures returns the parsed function signatures, sorted by name.
func (m *Module) Signatures() ([]bind.Signature, error) {
	sigMap, err := m.signatures()
	if err != nil {
		return nil, err
	}
	sigs := make([]bind.Signature, 0, len(sigMap))
	for _, sig := range sigMap {
		sigs = append(sigs, sig)
	}
	sort.Slice(sigs, func(i, j int) bool { return sigs[i].Name < sigs[j].Name })
	return sigs, nil
}

// Signature returns the parsed signature for one function name.
func (m *Module) Signature(name string) (bind.Signature, error) {
	sigMap, err := m.signatures()
	if err != nil {
		return bind.Signature{}, err
	}
	sig, ok := sigMap[name]
	if !ok {
		return bind.Signature{}, errors.NotFound(errors.PhaseParse, "function", name)
	}
	return sig, nil
}

// signatures parses witText lazily on first call.
func (m *Module) signatures() (map[string]bind.Signature, error) {
	m.sigsOnce.Do(func() {
		m.sigs, m.sigsErr = ParseWitFunctions(m.witText)
	})
	return m.sigs, m.sigsErr
}

// RequiredImports lists the imports the compiled module declares.
func (m *Module) RequiredImports() []bind.RequiredImport {
	return m.engineModule.RequiredImports()
}

// Instantiate starts the module with the runtime's registered host
// functions wired in, then binds every export named in the WIT text that
// the module actually exports.
func (m *Module) Instantiate(ctx context.Context) (*Instance, error) {
	sigMap, err := m.signatures()
	if err != nil {
		return nil, err
	}

	imports, err := m.runtime.hosts.ImportObject()
	if err != nil {
		return nil, err
	}

	engineInst, err := m.engineModule.Instantiate(ctx, imports)
	if err != nil {
		return nil, err
	}

	var exported []bind.Signature
	for _, sig := range sigMap {
		if engineInst.ExportedFunction(sig.Name) != nil {
			exported = append(exported, sig)
		}
	}
	sort.Slice(exported, func(i, j int) bool { return exported[i].Name < exported[j].Name })

	gen := bind.NewGenerator()
	exports, err := bind.BindExports(gen, exported, engineInst)
	if err != nil {
		engineInst.Close(ctx)
		return nil, err
	}

	return &Instance{
		module:     m,
		engineInst: engineInst,
		exports:    exports,
	}, nil
}

func (m *Module) Close(ctx context.Context) error {
	return m.engineModule.Close(ctx)
}
