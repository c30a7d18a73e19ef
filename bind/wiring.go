package bind

import (
	"context"
	"sort"

	wasmbindgen "github.com/wippyai/wasm-bindgen"
	"github.com/wippyai/wasm-bindgen/errors"
)

// HostFunc is one host-provided import: its signature plus the Go
// implementation invoked when the module calls in.
type HostFunc struct {
	Signature Signature
	Fn        Func
}

// ImportObject collects host functions by namespace then function name.
// Top-level world imports live under RootNamespace.
type ImportObject struct {
	funcs map[string]map[string]HostFunc
}

func NewImportObject() *ImportObject {
	return &ImportObject{funcs: make(map[string]map[string]HostFunc)}
}

// Add registers fn under the given namespace. An empty namespace means a
// top-level import and is stored under RootNamespace. Re-adding the same
// (namespace, name) pair replaces the previous entry.
func (io *ImportObject) Add(namespace string, fn HostFunc) {
	if namespace == "" {
		namespace = RootNamespace
	}
	ns, ok := io.funcs[namespace]
	if !ok {
		ns = make(map[string]HostFunc)
		io.funcs[namespace] = ns
	}
	ns[fn.Signature.Name] = fn
}

// Lookup returns the host function registered under (namespace, name).
func (io *ImportObject) Lookup(namespace, name string) (HostFunc, bool) {
	if namespace == "" {
		namespace = RootNamespace
	}
	fn, ok := io.funcs[namespace][name]
	return fn, ok
}

// Namespaces returns the registered namespace names, sorted.
func (io *ImportObject) Namespaces() []string {
	names := make([]string, 0, len(io.funcs))
	for ns := range io.funcs {
		names = append(names, ns)
	}
	sort.Strings(names)
	return names
}

// Functions returns the registered functions of one namespace, sorted by
// export name.
func (io *ImportObject) Functions(namespace string) []HostFunc {
	ns := io.funcs[namespace]
	funcs := make([]HostFunc, 0, len(ns))
	for _, fn := range ns {
		funcs = append(funcs, fn)
	}
	sort.Slice(funcs, func(i, j int) bool {
		return funcs[i].Signature.Name < funcs[j].Signature.Name
	})
	return funcs
}

// RequiredImport names one import a module declares.
type RequiredImport struct {
	Namespace string
	Name      string
}

// Validate checks every declared import against the registered host
// functions and reports all gaps at once, grouped by namespace, rather
// than failing on the first.
func (io *ImportObject) Validate(required []RequiredImport) error {
	var missing []errors.MissingImport
	for _, req := range required {
		if _, ok := io.Lookup(req.Namespace, req.Name); !ok {
			missing = append(missing, errors.MissingImport{
				Namespace: req.Namespace,
				Function:  req.Name,
			})
		}
	}
	if len(missing) > 0 {
		return &errors.MissingImportsError{Imports: missing}
	}
	return nil
}

// Export is one bound module export under its host-visible name.
type Export struct {
	Signature Signature
	Call      Func
}

// ExportObject holds the generated bindings for an instance, keyed by the
// lowerCamelCase names hosts call them by.
type ExportObject struct {
	exports map[string]Export
}

// BindExports runs the generator over every signature and re-exposes the
// resulting bindings under host-visible names. A name collision after
// case conversion or any generation failure aborts the whole batch.
func BindExports(g *Generator, sigs []Signature, inst wasmbindgen.Instance) (*ExportObject, error) {
	eo := &ExportObject{exports: make(map[string]Export, len(sigs))}
	for _, sig := range sigs {
		fn, err := g.Bind(sig, inst)
		if err != nil {
			return nil, err
		}
		name := LowerCamel(sig.Name)
		if _, exists := eo.exports[name]; exists {
			return nil, errors.New(errors.PhaseWire, errors.KindInvalidInput).
				Path(sig.Name).
				Detail("export name collides with another export after case conversion: %s", name).
				Build()
		}
		eo.exports[name] = Export{Signature: sig, Call: fn}
	}
	return eo, nil
}

// Get returns the binding registered under the host-visible name.
func (eo *ExportObject) Get(name string) (Export, bool) {
	exp, ok := eo.exports[name]
	return exp, ok
}

// Call invokes the export registered under the host-visible name.
func (eo *ExportObject) Call(ctx context.Context, name string, args ...any) (any, error) {
	exp, ok := eo.exports[name]
	if !ok {
		return nil, errors.NotFound(errors.PhaseCall, "export", name)
	}
	return exp.Call(ctx, args...)
}

// Names returns the host-visible export names, sorted.
func (eo *ExportObject) Names() []string {
	names := make([]string, 0, len(eo.exports))
	for name := range eo.exports {
		names = append(names, name)
	}
	sort.Strings(names)
	return names
}

// Len returns the number of bound exports.
func (eo *ExportObject) Len() int {
	return len(eo.exports)
}
