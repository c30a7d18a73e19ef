package engine

import (
	"context"
	stderrors "errors"
	"fmt"
	"reflect"
	"testing"

	"github.com/tetratelabs/wazero/api"
	"go.bytecodealliance.org/wit"

	"github.com/wippyai/wasm-bindgen/bind"
	"github.com/wippyai/wasm-bindgen/errors"
)

func TestBuildHostFuncFlatSignatures(t *testing.T) {
	listU8 := &wit.TypeDef{Kind: &wit.List{Type: wit.U8{}}}

	tests := []struct {
		name     string
		sig      bind.Signature
		paramVT  []api.ValueType
		resultVT []api.ValueType
	}{
		{
			name: "scalar widths",
			sig: bind.Signature{
				Name: "mix",
				Params: []bind.Param{
					{Name: "a", Type: wit.U32{}},
					{Name: "b", Type: wit.S64{}},
					{Name: "c", Type: wit.F32{}},
					{Name: "d", Type: wit.F64{}},
				},
				Results: []bind.Param{{Type: wit.U64{}}},
			},
			paramVT: []api.ValueType{
				api.ValueTypeI32, api.ValueTypeI64, api.ValueTypeF32, api.ValueTypeF64,
			},
			resultVT: []api.ValueType{api.ValueTypeI64},
		},
		{
			name: "string becomes ptr len pair",
			sig: bind.Signature{
				Name:   "log",
				Params: []bind.Param{{Name: "msg", Type: wit.String{}}},
			},
			paramVT:  []api.ValueType{api.ValueTypeI32, api.ValueTypeI32},
			resultVT: nil,
		},
		{
			name: "indirect result appends retptr param",
			sig: bind.Signature{
				Name:    "read-env",
				Params:  []bind.Param{{Name: "key", Type: wit.String{}}},
				Results: []bind.Param{{Type: wit.String{}}},
			},
			paramVT: []api.ValueType{
				api.ValueTypeI32, api.ValueTypeI32, api.ValueTypeI32,
			},
			resultVT: nil,
		},
		{
			name: "list param",
			sig: bind.Signature{
				Name:    "checksum",
				Params:  []bind.Param{{Name: "data", Type: listU8}},
				Results: []bind.Param{{Type: wit.U32{}}},
			},
			paramVT:  []api.ValueType{api.ValueTypeI32, api.ValueTypeI32},
			resultVT: []api.ValueType{api.ValueTypeI32},
		},
		{
			name:     "nullary",
			sig:      bind.Signature{Name: "tick"},
			paramVT:  nil,
			resultVT: nil,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			raw, paramVT, resultVT, err := buildHostFunc(bind.HostFunc{Signature: tt.sig})
			if err != nil {
				t.Fatalf("buildHostFunc: %v", err)
			}
			if raw == nil {
				t.Fatal("buildHostFunc returned nil callback")
			}
			if !reflect.DeepEqual(paramVT, tt.paramVT) {
				t.Errorf("paramVT = %v, want %v", paramVT, tt.paramVT)
			}
			if !reflect.DeepEqual(resultVT, tt.resultVT) {
				t.Errorf("resultVT = %v, want %v", resultVT, tt.resultVT)
			}
		})
	}
}

func TestBuildHostFuncRejectsCompoundParam(t *testing.T) {
	record := &wit.TypeDef{Kind: &wit.Record{Fields: []wit.Field{
		{Name: "x", Type: wit.U32{}},
	}}}

	_, _, _, err := buildHostFunc(bind.HostFunc{Signature: bind.Signature{
		Name:   "draw",
		Params: []bind.Param{{Name: "p", Type: record}},
	}})

	var be *errors.Error
	if !stderrors.As(err, &be) || be.Kind != errors.KindUnsupported {
		t.Fatalf("buildHostFunc error = %v, want unsupported", err)
	}
}

func TestBuildHostFuncRejectsMultipleResults(t *testing.T) {
	_, _, _, err := buildHostFunc(bind.HostFunc{Signature: bind.Signature{
		Name: "pair",
		Results: []bind.Param{
			{Type: wit.U32{}},
			{Type: wit.U32{}},
		},
	}})

	var be *errors.Error
	if !stderrors.As(err, &be) || be.Kind != errors.KindUnsupported {
		t.Fatalf("buildHostFunc error = %v, want unsupported", err)
	}
}

func TestHostFuncHandlerErrorTraps(t *testing.T) {
	raw, _, _, err := buildHostFunc(bind.HostFunc{
		Signature: bind.Signature{
			Name:    "boom",
			Params:  []bind.Param{{Name: "x", Type: wit.U32{}}},
			Results: []bind.Param{{Type: wit.U32{}}},
		},
		Fn: func(ctx context.Context, args ...any) (any, error) {
			return nil, fmt.Errorf("handler failed")
		},
	})
	if err != nil {
		t.Fatalf("buildHostFunc: %v", err)
	}

	stack := []uint64{42}
	defer func() {
		r := recover()
		if r == nil {
			t.Fatalf("failing handler returned normally; guest would read stack[0] = %d as the result", stack[0])
		}
		var be *errors.Error
		perr, ok := r.(error)
		if !ok || !stderrors.As(perr, &be) || be.Kind != errors.KindInvalidData {
			t.Fatalf("panic value = %v, want structured invalid_data error", r)
		}
	}()
	raw(context.Background(), nil, stack)
}

func TestHostFuncLiftErrorTraps(t *testing.T) {
	raw, _, _, err := buildHostFunc(bind.HostFunc{
		Signature: bind.Signature{
			Name:   "take-char",
			Params: []bind.Param{{Name: "c", Type: wit.Char{}}},
		},
		Fn: func(ctx context.Context, args ...any) (any, error) {
			t.Error("handler ran on an invalid argument")
			return nil, nil
		},
	})
	if err != nil {
		t.Fatalf("buildHostFunc: %v", err)
	}

	defer func() {
		var be *errors.Error
		perr, ok := recover().(error)
		if !ok || !stderrors.As(perr, &be) || be.Kind != errors.KindInvalidData {
			t.Fatalf("want structured invalid_data panic for surrogate argument")
		}
	}()
	raw(context.Background(), nil, []uint64{0xD800})
}

func TestHostFuncScalarResultWritten(t *testing.T) {
	raw, _, _, err := buildHostFunc(bind.HostFunc{
		Signature: bind.Signature{
			Name:    "inc",
			Params:  []bind.Param{{Name: "x", Type: wit.U32{}}},
			Results: []bind.Param{{Type: wit.U32{}}},
		},
		Fn: func(ctx context.Context, args ...any) (any, error) {
			return args[0].(uint32) + 1, nil
		},
	})
	if err != nil {
		t.Fatalf("buildHostFunc: %v", err)
	}

	stack := []uint64{41}
	raw(context.Background(), nil, stack)
	if stack[0] != 42 {
		t.Errorf("stack[0] = %d, want 42", stack[0])
	}
}

func TestBuildHostFuncResolvesAliases(t *testing.T) {
	idName := "request-id"
	idAlias := &wit.TypeDef{Name: &idName, Kind: wit.U64{}}
	bytesName := "payload"
	bytesAlias := &wit.TypeDef{
		Name: &bytesName,
		Kind: &wit.TypeDef{Kind: &wit.List{Type: wit.U8{}}},
	}

	_, paramVT, resultVT, err := buildHostFunc(bind.HostFunc{Signature: bind.Signature{
		Name: "submit",
		Params: []bind.Param{
			{Name: "id", Type: idAlias},
			{Name: "data", Type: bytesAlias},
		},
		Results: []bind.Param{{Type: idAlias}},
	}})
	if err != nil {
		t.Fatalf("buildHostFunc rejected aliased types: %v", err)
	}

	wantParams := []api.ValueType{api.ValueTypeI64, api.ValueTypeI32, api.ValueTypeI32}
	if !reflect.DeepEqual(paramVT, wantParams) {
		t.Errorf("paramVT = %v, want %v", paramVT, wantParams)
	}
	if !reflect.DeepEqual(resultVT, []api.ValueType{api.ValueTypeI64}) {
		t.Errorf("resultVT = %v, want [i64]", resultVT)
	}
}

func TestScalarValueType(t *testing.T) {
	tests := []struct {
		typ  wit.Type
		want api.ValueType
	}{
		{wit.Bool{}, api.ValueTypeI32},
		{wit.U8{}, api.ValueTypeI32},
		{wit.S32{}, api.ValueTypeI32},
		{wit.Char{}, api.ValueTypeI32},
		{wit.U64{}, api.ValueTypeI64},
		{wit.S64{}, api.ValueTypeI64},
		{wit.F32{}, api.ValueTypeF32},
		{wit.F64{}, api.ValueTypeF64},
	}

	for _, tt := range tests {
		vt := scalarValueType(tt.typ)
		if len(vt) != 1 || vt[0] != tt.want {
			t.Errorf("scalarValueType(%T) = %v, want [%v]", tt.typ, vt, tt.want)
		}
	}
}
