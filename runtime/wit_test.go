package runtime

import (
	stderrors "errors"
	"testing"

	"go.bytecodealliance.org/wit"

	"github.com/wippyai/wasm-bindgen/abi"
	"github.com/wippyai/wasm-bindgen/errors"
)

func TestParseWitFunctions(t *testing.T) {
	witText := `
		add: func(a: s32, b: s32) -> s32;
		export greet: func(name: string) -> string;
		run: func();
		stats: func() -> (count: u32, total: u64);
		checksum: func(data: list<u8>) -> u32;
	`

	funcs, err := ParseWitFunctions(witText)
	if err != nil {
		t.Fatalf("ParseWitFunctions: %v", err)
	}
	if len(funcs) != 5 {
		t.Fatalf("parsed %d functions, want 5", len(funcs))
	}

	add := funcs["add"]
	if len(add.Params) != 2 || len(add.Results) != 1 {
		t.Fatalf("add arity = (%d, %d), want (2, 1)", len(add.Params), len(add.Results))
	}
	if add.Params[0].Name != "a" || add.Params[1].Name != "b" {
		t.Errorf("add param names = %q, %q", add.Params[0].Name, add.Params[1].Name)
	}
	if _, ok := add.Params[0].Type.(wit.S32); !ok {
		t.Errorf("add param type = %T, want wit.S32", add.Params[0].Type)
	}

	greet := funcs["greet"]
	if _, ok := greet.Params[0].Type.(wit.String); !ok {
		t.Errorf("greet param type = %T, want wit.String", greet.Params[0].Type)
	}
	if greet.Classification() != abi.Marshaled {
		t.Error("greet should classify as marshaled")
	}

	run := funcs["run"]
	if len(run.Params) != 0 || len(run.Results) != 0 {
		t.Errorf("run arity = (%d, %d), want (0, 0)", len(run.Params), len(run.Results))
	}

	stats := funcs["stats"]
	if len(stats.Results) != 2 {
		t.Fatalf("stats results = %d, want 2", len(stats.Results))
	}
	if stats.Results[0].Name != "count" || stats.Results[1].Name != "total" {
		t.Errorf("stats result names = %q, %q", stats.Results[0].Name, stats.Results[1].Name)
	}

	checksum := funcs["checksum"]
	if abi.TypeString(checksum.Params[0].Type) != "list<u8>" {
		t.Errorf("checksum param = %s, want list<u8>", abi.TypeString(checksum.Params[0].Type))
	}
}

func TestParseWitFunctionsKebabNames(t *testing.T) {
	funcs, err := ParseWitFunctions("get-current-time: func() -> u64;")
	if err != nil {
		t.Fatalf("ParseWitFunctions: %v", err)
	}
	if _, ok := funcs["get-current-time"]; !ok {
		t.Errorf("kebab-case name not preserved: %v", funcs)
	}
}

func TestParseWitFunctionsBareParamTypes(t *testing.T) {
	funcs, err := ParseWitFunctions("sum: func(u32, u32) -> u32;")
	if err != nil {
		t.Fatalf("ParseWitFunctions: %v", err)
	}
	sum := funcs["sum"]
	if len(sum.Params) != 2 {
		t.Fatalf("params = %d, want 2", len(sum.Params))
	}
	if sum.Params[0].Name != "" {
		t.Errorf("bare param picked up a name: %q", sum.Params[0].Name)
	}
}

func TestParseWitFunctionsEmpty(t *testing.T) {
	_, err := ParseWitFunctions("interface host { }")
	var be *errors.Error
	if !stderrors.As(err, &be) || be.Kind != errors.KindInvalidInput {
		t.Fatalf("error = %v, want invalid_input", err)
	}
}

func TestSplitParamsNested(t *testing.T) {
	got := splitParams("a: list<u8>, b: tuple<u32, string>, c: u32")
	want := []string{"a: list<u8>", "b: tuple<u32, string>", "c: u32"}
	if len(got) != len(want) {
		t.Fatalf("splitParams = %v, want %v", got, want)
	}
	for i := range want {
		if got[i] != want[i] {
			t.Errorf("splitParams[%d] = %q, want %q", i, got[i], want[i])
		}
	}
}
