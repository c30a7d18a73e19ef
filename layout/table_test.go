package layout

import (
	"errors"
	"testing"

	"go.bytecodealliance.org/wit"

	"github.com/wippyai/wasm-bindgen/abi"
	bindgenerrors "github.com/wippyai/wasm-bindgen/errors"
)

func TestCalculatePrimitives(t *testing.T) {
	tests := []struct {
		name  string
		typ   wit.Type
		size  uint32
		align uint32
	}{
		{"bool", wit.Bool{}, 1, 1},
		{"u8", wit.U8{}, 1, 1},
		{"s16", wit.S16{}, 2, 2},
		{"u32", wit.U32{}, 4, 4},
		{"char", wit.Char{}, 4, 4},
		{"f32", wit.F32{}, 4, 4},
		{"u64", wit.U64{}, 8, 8},
		{"f64", wit.F64{}, 8, 8},
		{"string", wit.String{}, 8, 4},
		{"list", &wit.TypeDef{Kind: &wit.List{Type: wit.F64{}}}, 8, 4},
	}

	tb := NewTable()
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			info, err := tb.Calculate(tt.typ)
			if err != nil {
				t.Fatalf("Calculate: %v", err)
			}
			if info.Size != tt.size || info.Align != tt.align {
				t.Errorf("got {%d,%d}, want {%d,%d}", info.Size, info.Align, tt.size, tt.align)
			}
		})
	}
}

func TestCalculateRecord(t *testing.T) {
	record := &wit.TypeDef{Kind: &wit.Record{Fields: []wit.Field{
		{Name: "flag", Type: wit.Bool{}},
		{Name: "count", Type: wit.U32{}},
		{Name: "weight", Type: wit.F64{}},
		{Name: "tag", Type: wit.U8{}},
	}}}

	tb := NewTable()
	info, err := tb.Calculate(record)
	if err != nil {
		t.Fatalf("Calculate: %v", err)
	}

	// flag@0, count@4, weight@8, tag@16, padded to 8-byte alignment.
	wantOffs := map[string]uint32{"flag": 0, "count": 4, "weight": 8, "tag": 16}
	for name, want := range wantOffs {
		if got := info.FieldOffs[name]; got != want {
			t.Errorf("field %s at offset %d, want %d", name, got, want)
		}
	}
	if info.Size != 24 {
		t.Errorf("size = %d, want 24", info.Size)
	}
	if info.Align != 8 {
		t.Errorf("align = %d, want 8", info.Align)
	}
}

func TestCalculateVariantAndEnum(t *testing.T) {
	tb := NewTable()

	variant := &wit.TypeDef{Kind: &wit.Variant{Cases: []wit.Case{
		{Name: "empty"},
		{Name: "num", Type: wit.U64{}},
		{Name: "small", Type: wit.U8{}},
	}}}
	info, err := tb.Calculate(variant)
	if err != nil {
		t.Fatalf("Calculate variant: %v", err)
	}
	// 1-byte discriminant aligned up to the 8-byte payload.
	if info.Size != 16 || info.Align != 8 {
		t.Errorf("variant layout = {%d,%d}, want {16,8}", info.Size, info.Align)
	}

	enum := &wit.TypeDef{Kind: &wit.Enum{Cases: make([]wit.EnumCase, 300)}}
	info, err = tb.Calculate(enum)
	if err != nil {
		t.Fatalf("Calculate enum: %v", err)
	}
	if info.Size != 2 || info.Align != 2 {
		t.Errorf("300-case enum layout = {%d,%d}, want {2,2}", info.Size, info.Align)
	}
}

func TestCalculateOptionAndResult(t *testing.T) {
	tb := NewTable()

	option := &wit.TypeDef{Kind: &wit.Option{Type: wit.U32{}}}
	info, err := tb.Calculate(option)
	if err != nil {
		t.Fatalf("Calculate option: %v", err)
	}
	if info.Size != 8 || info.Align != 4 {
		t.Errorf("option<u32> layout = {%d,%d}, want {8,4}", info.Size, info.Align)
	}

	result := &wit.TypeDef{Kind: &wit.Result{OK: wit.U8{}, Err: wit.U64{}}}
	info, err = tb.Calculate(result)
	if err != nil {
		t.Fatalf("Calculate result: %v", err)
	}
	if info.Size != 16 || info.Align != 8 {
		t.Errorf("result<u8,u64> layout = {%d,%d}, want {16,8}", info.Size, info.Align)
	}
}

func TestCalculateHandleTypesRejected(t *testing.T) {
	tb := NewTable()
	resource := &wit.TypeDef{Kind: &wit.Resource{}}

	own := &wit.TypeDef{Kind: &wit.Own{Type: resource}}
	if _, err := tb.Calculate(own); err == nil {
		t.Fatal("Calculate(own) should fail")
	} else {
		var e *bindgenerrors.Error
		if !errors.As(err, &e) || e.Kind != bindgenerrors.KindUnsupported {
			t.Errorf("want unsupported error, got %v", err)
		}
	}

	borrow := &wit.TypeDef{Kind: &wit.Borrow{Type: resource}}
	if _, err := tb.Calculate(borrow); err == nil {
		t.Fatal("Calculate(borrow) should fail")
	}
}

func TestCalculateMemoizes(t *testing.T) {
	record := &wit.TypeDef{Kind: &wit.Record{Fields: []wit.Field{
		{Name: "x", Type: wit.U32{}},
	}}}

	tb := NewTable()
	first, err := tb.Calculate(record)
	if err != nil {
		t.Fatalf("Calculate: %v", err)
	}
	second, err := tb.Calculate(record)
	if err != nil {
		t.Fatalf("Calculate (cached): %v", err)
	}
	if first.Size != second.Size || first.Align != second.Align {
		t.Error("cached entry diverges from first computation")
	}
	if _, ok := tb.cache[record]; !ok {
		t.Error("entry not memoized")
	}
}

// TestElementInfoMatchesTable cross-checks the element dispatch table
// against the calculator for every member of the closed kind set, so the
// two can never drift apart.
func TestElementInfoMatchesTable(t *testing.T) {
	tb := NewTable()
	for _, k := range abi.Kinds() {
		elem, ok := ElementInfo(k)
		if !ok {
			t.Fatalf("ElementInfo(%v) missing", k)
		}
		calc, err := tb.Calculate(k.Type())
		if err != nil {
			t.Fatalf("Calculate(%v): %v", k, err)
		}
		if elem.Size != calc.Size || elem.Align != calc.Align {
			t.Errorf("kind %v: table {%d,%d} != calculator {%d,%d}",
				k, elem.Size, elem.Align, calc.Size, calc.Align)
		}
		if elem.Size == 0 || elem.Align == 0 {
			t.Errorf("kind %v: zero size or align in table", k)
		}
	}
}

func TestElementInfoUnknownKind(t *testing.T) {
	if _, ok := ElementInfo(abi.Kind(200)); ok {
		t.Error("ElementInfo should reject out-of-range kinds")
	}
}
