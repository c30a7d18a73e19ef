package bind

import (
	"strings"

	"go.bytecodealliance.org/wit"

	"github.com/wippyai/wasm-bindgen/abi"
)

// Param is one named parameter or result of a function signature.
type Param struct {
	Name string
	Type wit.Type
}

// Signature describes one function from a resolved WIT world: the
// core-module export name plus its typed parameter and result lists.
type Signature struct {
	Name    string
	Params  []Param
	Results []Param
}

// ParamTypes returns the parameter types in declaration order.
func (s Signature) ParamTypes() []wit.Type {
	types := make([]wit.Type, len(s.Params))
	for i, p := range s.Params {
		types[i] = p.Type
	}
	return types
}

// ResultTypes returns the result types in declaration order.
func (s Signature) ResultTypes() []wit.Type {
	types := make([]wit.Type, len(s.Results))
	for i, r := range s.Results {
		types[i] = r.Type
	}
	return types
}

// Classification reports whether this signature takes the scalar fast
// path or needs a marshaling wrapper.
func (s Signature) Classification() abi.Classification {
	return abi.Classify(s.ParamTypes(), s.ResultTypes())
}

// String renders the signature in WIT-like form, e.g.
// "concat: func(a: string, b: string) -> string".
func (s Signature) String() string {
	var b strings.Builder
	b.WriteString(s.Name)
	b.WriteString(": func(")
	for i, p := range s.Params {
		if i > 0 {
			b.WriteString(", ")
		}
		if p.Name != "" {
			b.WriteString(p.Name)
			b.WriteString(": ")
		}
		b.WriteString(abi.TypeString(p.Type))
	}
	b.WriteString(")")
	switch len(s.Results) {
	case 0:
	case 1:
		b.WriteString(" -> ")
		b.WriteString(abi.TypeString(s.Results[0].Type))
	default:
		b.WriteString(" -> (")
		for i, r := range s.Results {
			if i > 0 {
				b.WriteString(", ")
			}
			if r.Name != "" {
				b.WriteString(r.Name)
				b.WriteString(": ")
			}
			b.WriteString(abi.TypeString(r.Type))
		}
		b.WriteString(")")
	}
	return b.String()
}
