package runtime

import (
	"context"
	"reflect"
	"sync"

	"github.com/wippyai/wasm-bindgen/bind"
	"github.com/wippyai/wasm-bindgen/errors"
)

// Host is the interface for struct-based host modules: a namespace plus
// the functions it provides, keyed by WIT signature text.
type Host interface {
	// Namespace returns the interface name (e.g. "example:host/log"),
	// or "" for top-level world imports.
	Namespace() string

	// Functions maps WIT signature text to the Go implementation, e.g.
	// "log: func(msg: string)" -> func(ctx context.Context, msg string).
	Functions() map[string]any
}

// HostRegistry collects host functions before modules are instantiated.
type HostRegistry struct {
	funcs map[string]map[string]bind.HostFunc
	mu    sync.RWMutex
}

func NewHostRegistry() *HostRegistry {
	return &HostRegistry{
		funcs: make(map[string]map[string]bind.HostFunc),
	}
}

// RegisterHost registers every function h provides under its namespace.
func (r *HostRegistry) RegisterHost(h Host) error {
	ns := h.Namespace()
	for signature, fn := range h.Functions() {
		if err := r.RegisterFunc(ns, signature, fn); err != nil {
			return err
		}
	}
	return nil
}

// RegisterFunc parses the WIT signature text and wraps the Go function so
// the module can call it. The Go function may take a leading
// context.Context and may return (T), (error) or (T, error).
func (r *HostRegistry) RegisterFunc(namespace, signature string, fn any) error {
	sigs, err := ParseWitFunctions(signature)
	if err != nil {
		return err
	}
	if len(sigs) != 1 {
		return errors.InvalidInput(errors.PhaseParse, "expected exactly one function signature, got "+signature)
	}

	var sig bind.Signature
	for _, s := range sigs {
		sig = s
	}

	adapted, err := adaptHandler(sig, fn)
	if err != nil {
		return err
	}

	if namespace == "" {
		namespace = bind.RootNamespace
	}

	r.mu.Lock()
	defer r.mu.Unlock()

	if r.funcs[namespace] == nil {
		r.funcs[namespace] = make(map[string]bind.HostFunc)
	}
	r.funcs[namespace][sig.Name] = bind.HostFunc{Signature: sig, Fn: adapted}
	return nil
}

// ImportObject materializes the registry into the import object handed to
// instantiation.
func (r *HostRegistry) ImportObject() (*bind.ImportObject, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()

	io := bind.NewImportObject()
	for ns, funcs := range r.funcs {
		for _, hf := range funcs {
			io.Add(ns, hf)
		}
	}
	return io, nil
}

var (
	ctxType = reflect.TypeOf((*context.Context)(nil)).Elem()
	errType = reflect.TypeOf((*error)(nil)).Elem()
)

// adaptHandler wraps an arbitrary Go function behind the uniform calling
// convention the binding layer uses. Argument count is validated here;
// argument values are converted per call.
func adaptHandler(sig bind.Signature, fn any) (bind.Func, error) {
	rv := reflect.ValueOf(fn)
	if rv.Kind() != reflect.Func {
		return nil, errors.New(errors.PhaseWire, errors.KindTypeMismatch).
			Path(sig.Name).
			GoType(reflect.TypeOf(fn).String()).
			Detail("handler must be a function").
			Build()
	}
	rt := rv.Type()

	numIn := rt.NumIn()
	hasCtx := numIn > 0 && rt.In(0) == ctxType
	goParamStart := 0
	if hasCtx {
		goParamStart = 1
	}

	if numIn-goParamStart != len(sig.Params) {
		return nil, errors.New(errors.PhaseWire, errors.KindTypeMismatch).
			Path(sig.Name).
			GoType(rt.String()).
			Detail("handler takes %d value argument(s), signature declares %d",
				numIn-goParamStart, len(sig.Params)).
			Build()
	}

	numOut := rt.NumOut()
	lastIsErr := numOut > 0 && rt.Out(numOut-1) == errType
	numValues := numOut
	if lastIsErr {
		numValues--
	}
	if numValues > 1 || numValues != len(sig.Results) {
		return nil, errors.New(errors.PhaseWire, errors.KindTypeMismatch).
			Path(sig.Name).
			GoType(rt.String()).
			Detail("handler returns %d value(s), signature declares %d",
				numValues, len(sig.Results)).
			Build()
	}

	return func(ctx context.Context, args ...any) (any, error) {
		in := make([]reflect.Value, 0, numIn)
		if hasCtx {
			in = append(in, reflect.ValueOf(ctx))
		}
		for i, arg := range args {
			inType := rt.In(goParamStart + i)
			if arg == nil {
				in = append(in, reflect.Zero(inType))
				continue
			}
			av := reflect.ValueOf(arg)
			if av.Type() != inType {
				if !av.Type().ConvertibleTo(inType) {
					return nil, errors.TypeMismatch(errors.PhaseCall,
						[]string{sig.Name, sig.Params[i].Name},
						av.Type().String(), inType.String())
				}
				av = av.Convert(inType)
			}
			in = append(in, av)
		}

		out := rv.Call(in)
		if lastIsErr {
			if errVal := out[numOut-1]; !errVal.IsNil() {
				return nil, errVal.Interface().(error)
			}
		}
		if numValues == 1 {
			return out[0].Interface(), nil
		}
		return nil, nil
	}, nil
}
