package engine

import (
	"context"

	"github.com/tetratelabs/wazero"

	"github.com/wippyai/wasm-bindgen/bind"
	"github.com/wippyai/wasm-bindgen/errors"
)

// Module is a compiled core WASM module.
type Module struct {
	engine   *Engine
	compiled wazero.CompiledModule
}

// RequiredImports lists every function import the module declares.
func (m *Module) RequiredImports() []bind.RequiredImport {
	defs := m.compiled.ImportedFunctions()
	required := make([]bind.RequiredImport, 0, len(defs))
	for _, def := range defs {
		moduleName, name, isImport := def.Import()
		if !isImport {
			continue
		}
		required = append(required, bind.RequiredImport{
			Namespace: moduleName,
			Name:      name,
		})
	}
	return required
}

// Instantiate wires the import object into the runtime and starts the
// module. Every declared import must be satisfied; gaps are reported all
// at once before anything is instantiated.
func (m *Module) Instantiate(ctx context.Context, imports *bind.ImportObject) (*Instance, error) {
	if imports == nil {
		imports = bind.NewImportObject()
	}
	if err := imports.Validate(m.RequiredImports()); err != nil {
		return nil, err
	}

	if err := m.instantiateHostModules(ctx, imports); err != nil {
		return nil, err
	}

	modConfig := wazero.NewModuleConfig().WithName("") // anonymous for parallel instantiation
	instance, err := m.engine.runtime.InstantiateModule(ctx, m.compiled, modConfig)
	if err != nil {
		return nil, errors.Instantiation(err)
	}

	return newInstance(instance), nil
}

// instantiateHostModules materializes the import object into wazero host
// modules, one per namespace the compiled module actually imports from. A
// namespace already present in the runtime is reused as-is.
func (m *Module) instantiateHostModules(ctx context.Context, imports *bind.ImportObject) error {
	needed := make(map[string]bool)
	for _, req := range m.RequiredImports() {
		needed[req.Namespace] = true
	}

	for _, ns := range imports.Namespaces() {
		if !needed[ns] {
			continue
		}
		if m.engine.runtime.Module(ns) != nil {
			continue
		}

		builder := m.engine.runtime.NewHostModuleBuilder(ns)
		for _, hf := range imports.Functions(ns) {
			raw, paramVT, resultVT, err := buildHostFunc(hf)
			if err != nil {
				return err
			}
			builder.NewFunctionBuilder().
				WithGoModuleFunction(raw, paramVT, resultVT).
				Export(hf.Signature.Name)
		}
		if _, err := builder.Instantiate(ctx); err != nil {
			return errors.Wrap(errors.PhaseWire, errors.KindInstantiation, err, ns)
		}
	}
	return nil
}

func (m *Module) Close(ctx context.Context) error {
	return m.compiled.Close(ctx)
}
