package bind

import (
	"context"
	stderrors "errors"
	"testing"

	"go.bytecodealliance.org/wit"

	"github.com/wippyai/wasm-bindgen/errors"
)

func TestImportObjectRootNamespace(t *testing.T) {
	io := NewImportObject()
	io.Add("", HostFunc{Signature: Signature{Name: "log"}})

	if _, ok := io.Lookup(RootNamespace, "log"); !ok {
		t.Error("empty namespace not stored under RootNamespace")
	}
	if _, ok := io.Lookup("", "log"); !ok {
		t.Error("empty namespace lookup did not resolve to RootNamespace")
	}
}

func TestImportObjectReplaces(t *testing.T) {
	first := func(ctx context.Context, args ...any) (any, error) { return 1, nil }
	second := func(ctx context.Context, args ...any) (any, error) { return 2, nil }

	io := NewImportObject()
	io.Add("host", HostFunc{Signature: Signature{Name: "f"}, Fn: first})
	io.Add("host", HostFunc{Signature: Signature{Name: "f"}, Fn: second})

	fn, ok := io.Lookup("host", "f")
	if !ok {
		t.Fatal("Lookup failed")
	}
	got, _ := fn.Fn(context.Background())
	if got != 2 {
		t.Errorf("Lookup returned stale entry, got %v", got)
	}
}

func TestImportObjectListings(t *testing.T) {
	io := NewImportObject()
	io.Add("zeta:host", HostFunc{Signature: Signature{Name: "b"}})
	io.Add("zeta:host", HostFunc{Signature: Signature{Name: "a"}})
	io.Add("alpha:host", HostFunc{Signature: Signature{Name: "c"}})

	ns := io.Namespaces()
	if len(ns) != 2 || ns[0] != "alpha:host" || ns[1] != "zeta:host" {
		t.Errorf("Namespaces = %v, want sorted [alpha:host zeta:host]", ns)
	}

	fns := io.Functions("zeta:host")
	if len(fns) != 2 || fns[0].Signature.Name != "a" || fns[1].Signature.Name != "b" {
		t.Errorf("Functions not sorted by name: %v", fns)
	}
}

func TestValidateReportsAllMissing(t *testing.T) {
	io := NewImportObject()
	io.Add("example:host/log", HostFunc{Signature: Signature{Name: "log"}})

	required := []RequiredImport{
		{Namespace: "example:host/log", Name: "log"},
		{Namespace: "example:host/log", Name: "flush"},
		{Namespace: "$root", Name: "now"},
	}

	err := io.Validate(required)
	var miss *errors.MissingImportsError
	if !stderrors.As(err, &miss) {
		t.Fatalf("Validate error = %T, want *MissingImportsError", err)
	}
	if len(miss.Imports) != 2 {
		t.Fatalf("missing = %d, want 2 (all gaps reported at once)", len(miss.Imports))
	}
}

func TestValidateComplete(t *testing.T) {
	io := NewImportObject()
	io.Add("$root", HostFunc{Signature: Signature{Name: "now"}})

	if err := io.Validate([]RequiredImport{{Namespace: "$root", Name: "now"}}); err != nil {
		t.Errorf("Validate = %v, want nil", err)
	}
}

func TestBindExportsHostVisibleNames(t *testing.T) {
	inst := newFakeInstance()
	inst.funcs["get-value"] = &fakeFunc{handler: func(stack []uint64) error {
		stack[0] = 7
		return nil
	}}

	sigs := []Signature{{
		Name:    "get-value",
		Results: []Param{{Type: wit.U32{}}},
	}}

	eo, err := BindExports(NewGenerator(), sigs, inst)
	if err != nil {
		t.Fatalf("BindExports: %v", err)
	}

	if _, ok := eo.Get("getValue"); !ok {
		t.Fatal("export not reachable under lowerCamelCase name")
	}
	if _, ok := eo.Get("get-value"); ok {
		t.Error("kebab-case name should not be registered")
	}

	got, err := eo.Call(context.Background(), "getValue")
	if err != nil {
		t.Fatalf("Call: %v", err)
	}
	if got != uint32(7) {
		t.Errorf("Call = %v, want uint32(7)", got)
	}

	names := eo.Names()
	if len(names) != 1 || names[0] != "getValue" {
		t.Errorf("Names = %v, want [getValue]", names)
	}
	if eo.Len() != 1 {
		t.Errorf("Len = %d, want 1", eo.Len())
	}
}

func TestBindExportsNameCollision(t *testing.T) {
	inst := newFakeInstance()
	inst.funcs["get-value"] = &fakeFunc{}
	inst.funcs["get_value"] = &fakeFunc{}

	sigs := []Signature{
		{Name: "get-value"},
		{Name: "get_value"},
	}

	_, err := BindExports(NewGenerator(), sigs, inst)
	var be *errors.Error
	if !stderrors.As(err, &be) || be.Kind != errors.KindInvalidInput {
		t.Fatalf("BindExports error = %v, want invalid_input collision", err)
	}
}

func TestExportObjectCallUnknown(t *testing.T) {
	eo, err := BindExports(NewGenerator(), nil, newFakeInstance())
	if err != nil {
		t.Fatalf("BindExports: %v", err)
	}

	_, err = eo.Call(context.Background(), "nope")
	var be *errors.Error
	if !stderrors.As(err, &be) || be.Kind != errors.KindNotFound {
		t.Fatalf("Call error = %v, want not_found", err)
	}
}
