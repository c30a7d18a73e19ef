package bind

import (
	stderrors "errors"
	"math"
	"testing"

	"go.bytecodealliance.org/wit"

	"github.com/wippyai/wasm-bindgen/errors"
)

func TestLowerScalar(t *testing.T) {
	tests := []struct {
		name  string
		typ   wit.Type
		value any
		want  uint64
	}{
		{"bool true", wit.Bool{}, true, 1},
		{"bool false", wit.Bool{}, false, 0},
		{"u8", wit.U8{}, uint8(255), 255},
		{"u16 from int", wit.U16{}, 65535, 65535},
		{"u32", wit.U32{}, uint32(4294967295), 4294967295},
		{"u64 max", wit.U64{}, uint64(math.MaxUint64), math.MaxUint64},
		{"s8 negative", wit.S8{}, int8(-1), 0xFFFFFFFF},
		{"s16 negative", wit.S16{}, int16(-2), 0xFFFFFFFE},
		{"s32 negative", wit.S32{}, int32(-1), 0xFFFFFFFF},
		{"s32 min", wit.S32{}, int32(math.MinInt32), 0x80000000},
		{"s64 negative", wit.S64{}, int64(-1), 0xFFFFFFFFFFFFFFFF},
		{"f32", wit.F32{}, float32(1.5), uint64(math.Float32bits(1.5))},
		{"f64", wit.F64{}, float64(-2.25), math.Float64bits(-2.25)},
		{"char rune", wit.Char{}, 'A', 65},
		{"char from string", wit.Char{}, "日", 0x65E5},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got, err := LowerScalar(tt.typ, tt.value, "v")
			if err != nil {
				t.Fatalf("LowerScalar: %v", err)
			}
			if got != tt.want {
				t.Errorf("LowerScalar = %#x, want %#x", got, tt.want)
			}
		})
	}
}

func TestLowerScalarErrors(t *testing.T) {
	tests := []struct {
		name  string
		typ   wit.Type
		value any
		kind  errors.Kind
	}{
		{"u8 overflow", wit.U8{}, 256, errors.KindOverflow},
		{"u16 overflow", wit.U16{}, uint32(70000), errors.KindOverflow},
		{"s8 overflow", wit.S8{}, 128, errors.KindOverflow},
		{"s16 underflow", wit.S16{}, -32769, errors.KindOverflow},
		{"bool mismatch", wit.Bool{}, 1, errors.KindTypeMismatch},
		{"u32 mismatch", wit.U32{}, "ten", errors.KindTypeMismatch},
		{"char surrogate", wit.Char{}, rune(0xD800), errors.KindInvalidData},
		{"char multi-rune string", wit.Char{}, "ab", errors.KindTypeMismatch},
		{"string not scalar", wit.String{}, "x", errors.KindUnsupported},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, err := LowerScalar(tt.typ, tt.value, "v")
			var be *errors.Error
			if !stderrors.As(err, &be) || be.Kind != tt.kind {
				t.Fatalf("LowerScalar error = %v, want kind %s", err, tt.kind)
			}
		})
	}
}

func TestLiftScalar(t *testing.T) {
	tests := []struct {
		name string
		typ  wit.Type
		slot uint64
		want any
	}{
		{"bool", wit.Bool{}, 1, true},
		{"bool zero", wit.Bool{}, 0, false},
		{"u8", wit.U8{}, 200, uint8(200)},
		{"u16", wit.U16{}, 65535, uint16(65535)},
		{"u32", wit.U32{}, 4294967295, uint32(4294967295)},
		{"u64", wit.U64{}, math.MaxUint64, uint64(math.MaxUint64)},
		{"s8", wit.S8{}, 0xFF, int8(-1)},
		{"s16", wit.S16{}, 0xFFFE, int16(-2)},
		{"s32", wit.S32{}, 0xFFFFFFFF, int32(-1)},
		{"s64", wit.S64{}, 0xFFFFFFFFFFFFFFFF, int64(-1)},
		{"f32", wit.F32{}, uint64(math.Float32bits(3.5)), float32(3.5)},
		{"f64", wit.F64{}, math.Float64bits(-0.5), float64(-0.5)},
		{"char", wit.Char{}, 0x1F680, rune(0x1F680)},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got, err := LiftScalar(tt.typ, tt.slot, "v")
			if err != nil {
				t.Fatalf("LiftScalar: %v", err)
			}
			if got != tt.want {
				t.Errorf("LiftScalar = %v (%T), want %v (%T)", got, got, tt.want, tt.want)
			}
		})
	}
}

func TestLiftScalarInvalidChar(t *testing.T) {
	_, err := LiftScalar(wit.Char{}, 0x110000, "v")
	var be *errors.Error
	if !stderrors.As(err, &be) || be.Kind != errors.KindInvalidData {
		t.Fatalf("LiftScalar error = %v, want invalid_data", err)
	}
}

func TestScalarRoundTripPreservesNegatives(t *testing.T) {
	slot, err := LowerScalar(wit.S32{}, int32(-123456), "v")
	if err != nil {
		t.Fatalf("LowerScalar: %v", err)
	}
	got, err := LiftScalar(wit.S32{}, slot, "v")
	if err != nil {
		t.Fatalf("LiftScalar: %v", err)
	}
	if got != int32(-123456) {
		t.Errorf("round trip = %v, want -123456", got)
	}
}

func TestLowerScalarCanonicalizesNaN(t *testing.T) {
	slot, err := LowerScalar(wit.F32{}, math.Float32frombits(0x7FC00001), "v")
	if err != nil {
		t.Fatalf("LowerScalar: %v", err)
	}
	if uint32(slot) != 0x7FC00000 {
		t.Errorf("NaN payload survived lowering: %#x", uint32(slot))
	}
}

func TestResolveAlias(t *testing.T) {
	name := "my-id"
	alias := &wit.TypeDef{Name: &name, Kind: wit.U32{}}
	doubleAlias := &wit.TypeDef{Kind: alias}

	if _, ok := Resolve(alias).(wit.U32); !ok {
		t.Errorf("Resolve(alias) = %T, want wit.U32", Resolve(alias))
	}
	if _, ok := Resolve(doubleAlias).(wit.U32); !ok {
		t.Errorf("Resolve(double alias) = %T, want wit.U32", Resolve(doubleAlias))
	}

	record := &wit.TypeDef{Kind: &wit.Record{}}
	if Resolve(record) != wit.Type(record) {
		t.Error("resolve must leave compound typedefs alone")
	}
}
