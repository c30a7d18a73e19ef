package layout

import (
	"go.bytecodealliance.org/wit"

	"github.com/wippyai/wasm-bindgen/abi"
	"github.com/wippyai/wasm-bindgen/errors"
)

// Info is the derived size/alignment entry for one type.
type Info struct {
	Size      uint32
	Align     uint32
	FieldOffs map[string]uint32 // record field offsets, nil otherwise
}

// Table memoizes Info per type identity.
type Table struct {
	cache map[*wit.TypeDef]Info
}

func NewTable() *Table {
	return &Table{
		cache: make(map[*wit.TypeDef]Info),
	}
}

// Calculate returns the size/alignment entry for t. Structural kinds derive
// their layout from their members; a malformed or handle-bearing type aborts
// with a layout error so no wrapper is ever generated over an undefined
// layout.
func (tb *Table) Calculate(t wit.Type) (Info, error) {
	switch typ := t.(type) {
	case wit.Bool, wit.U8, wit.S8:
		return Info{Size: 1, Align: 1}, nil
	case wit.U16, wit.S16:
		return Info{Size: 2, Align: 2}, nil
	case wit.U32, wit.S32, wit.F32, wit.Char:
		return Info{Size: 4, Align: 4}, nil
	case wit.U64, wit.S64, wit.F64:
		return Info{Size: 8, Align: 8}, nil
	case wit.String:
		return Info{Size: 8, Align: 4}, nil // [ptr: u32, len: u32]
	case *wit.TypeDef:
		return tb.calculateTypeDef(typ)
	default:
		return Info{}, errors.Unsupported(errors.PhaseLayout, abi.TypeString(t), "no defined layout")
	}
}

func (tb *Table) calculateTypeDef(t *wit.TypeDef) (Info, error) {
	if cached, ok := tb.cache[t]; ok {
		return cached, nil
	}

	var info Info
	var err error

	switch kind := t.Kind.(type) {
	case *wit.Record:
		info, err = tb.calculateRecord(kind)
	case *wit.Variant:
		info, err = tb.calculateVariant(kind)
	case *wit.Enum:
		size := abi.DiscriminantSize(len(kind.Cases))
		info = Info{Size: size, Align: size}
	case *wit.List:
		info = Info{Size: 8, Align: 4}
	case *wit.Option:
		info, err = tb.calculateOption(kind)
	case *wit.Result:
		info, err = tb.calculateResult(kind)
	case *wit.Tuple:
		info, err = tb.calculateTuple(kind)
	case *wit.Flags:
		info = calculateFlags(kind)
	case *wit.Own, *wit.Borrow:
		err = errors.Unsupported(errors.PhaseLayout, abi.TypeString(t), "handle types have no specified layout")
	case wit.Type:
		// nominal alias
		info, err = tb.Calculate(kind)
	default:
		err = errors.Unsupported(errors.PhaseLayout, abi.TypeString(t), "unknown type kind")
	}

	if err != nil {
		return Info{}, err
	}

	tb.cache[t] = info
	return info, nil
}

func (tb *Table) calculateRecord(r *wit.Record) (Info, error) {
	if len(r.Fields) == 0 {
		return Info{Size: 0, Align: 1}, nil
	}

	fieldOffs := make(map[string]uint32)
	maxAlign := uint32(1)
	offset := uint32(0)

	for _, field := range r.Fields {
		fl, err := tb.Calculate(field.Type)
		if err != nil {
			return Info{}, err
		}

		offset = abi.AlignTo(offset, fl.Align)
		fieldOffs[field.Name] = offset

		if fl.Align > maxAlign {
			maxAlign = fl.Align
		}

		offset += fl.Size
	}

	return Info{
		Size:      abi.AlignTo(offset, maxAlign),
		Align:     maxAlign,
		FieldOffs: fieldOffs,
	}, nil
}

func (tb *Table) calculateVariant(v *wit.Variant) (Info, error) {
	if len(v.Cases) == 0 {
		return Info{Size: 0, Align: 1}, nil
	}

	discSize := abi.DiscriminantSize(len(v.Cases))

	maxAlign := discSize
	maxSize := uint32(0)

	for _, cs := range v.Cases {
		if cs.Type == nil {
			continue
		}
		cl, err := tb.Calculate(cs.Type)
		if err != nil {
			return Info{}, err
		}
		if cl.Align > maxAlign {
			maxAlign = cl.Align
		}
		if cl.Size > maxSize {
			maxSize = cl.Size
		}
	}

	payloadOffset := abi.AlignTo(discSize, maxAlign)
	return Info{
		Size:  abi.AlignTo(payloadOffset+maxSize, maxAlign),
		Align: maxAlign,
	}, nil
}

func (tb *Table) calculateOption(o *wit.Option) (Info, error) {
	inner, err := tb.Calculate(o.Type)
	if err != nil {
		return Info{}, err
	}

	align := inner.Align
	if align < 1 {
		align = 1
	}

	payloadOffset := abi.AlignTo(1, align)
	return Info{
		Size:  abi.AlignTo(payloadOffset+inner.Size, align),
		Align: align,
	}, nil
}

func (tb *Table) calculateResult(r *wit.Result) (Info, error) {
	maxAlign := uint32(1)
	maxSize := uint32(0)

	for _, t := range []wit.Type{r.OK, r.Err} {
		if t == nil {
			continue
		}
		pl, err := tb.Calculate(t)
		if err != nil {
			return Info{}, err
		}
		if pl.Align > maxAlign {
			maxAlign = pl.Align
		}
		if pl.Size > maxSize {
			maxSize = pl.Size
		}
	}

	payloadOffset := abi.AlignTo(1, maxAlign)
	return Info{
		Size:  abi.AlignTo(payloadOffset+maxSize, maxAlign),
		Align: maxAlign,
	}, nil
}

func (tb *Table) calculateTuple(t *wit.Tuple) (Info, error) {
	if len(t.Types) == 0 {
		return Info{Size: 0, Align: 1}, nil
	}

	maxAlign := uint32(1)
	offset := uint32(0)

	for _, typ := range t.Types {
		el, err := tb.Calculate(typ)
		if err != nil {
			return Info{}, err
		}
		offset = abi.AlignTo(offset, el.Align)
		if el.Align > maxAlign {
			maxAlign = el.Align
		}
		offset += el.Size
	}

	return Info{
		Size:  abi.AlignTo(offset, maxAlign),
		Align: maxAlign,
	}, nil
}

func calculateFlags(f *wit.Flags) Info {
	n := len(f.Flags)

	switch {
	case n == 0:
		return Info{Size: 0, Align: 1}
	case n <= 8:
		return Info{Size: 1, Align: 1}
	case n <= 16:
		return Info{Size: 2, Align: 2}
	case n <= 32:
		return Info{Size: 4, Align: 4}
	case n <= 64:
		return Info{Size: 8, Align: 8}
	}

	// >64 flags: multiple u32s
	numU32s := uint32((n + 31) / 32)
	return Info{Size: numU32s * 4, Align: 4}
}
