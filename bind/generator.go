package bind

import (
	"context"
	"fmt"

	"go.bytecodealliance.org/wit"
	"go.uber.org/zap"

	wasmbindgen "github.com/wippyai/wasm-bindgen"
	"github.com/wippyai/wasm-bindgen/abi"
	"github.com/wippyai/wasm-bindgen/errors"
	"github.com/wippyai/wasm-bindgen/layout"
	"github.com/wippyai/wasm-bindgen/marshal"
)

// Func is a host-callable binding over one module export. Arguments are
// given in declaration order; a function with no results returns nil.
type Func func(ctx context.Context, args ...any) (any, error)

// Generator builds host-callable bindings from signatures. It owns a
// memoized layout table shared across all bindings it generates.
type Generator struct {
	layout *layout.Table
}

func NewGenerator() *Generator {
	return &Generator{layout: layout.NewTable()}
}

// Bind generates the binding for sig against inst. All-scalar signatures
// bind directly to the export; everything else gets a marshaling wrapper.
// Type combinations the wrapper cannot flatten fail here, not at call time.
func (g *Generator) Bind(sig Signature, inst wasmbindgen.Instance) (Func, error) {
	fn := inst.ExportedFunction(sig.Name)
	if fn == nil {
		return nil, errors.NotFound(errors.PhaseGenerate, "export", sig.Name)
	}

	if len(sig.Results) > 1 {
		return nil, errors.Unsupported(errors.PhaseGenerate, sig.String(),
			"multiple results need an indirect return area per result; not flattenable")
	}

	if sig.Classification() == abi.Scalar {
		return g.bindScalar(sig, fn), nil
	}
	return g.bindMarshaled(sig, fn, inst)
}

// bindScalar produces a direct binding: one stack slot per value in both
// directions, no linear-memory traffic, no allocator use.
func (g *Generator) bindScalar(sig Signature, fn wasmbindgen.Function) Func {
	params := append([]Param(nil), sig.Params...)
	var result wit.Type
	if len(sig.Results) == 1 {
		result = sig.Results[0].Type
	}

	stackLen := len(params)
	if result != nil && stackLen < 1 {
		stackLen = 1
	}

	return func(ctx context.Context, args ...any) (any, error) {
		if len(args) != len(params) {
			return nil, errors.InvalidInput(errors.PhaseCall,
				fmt.Sprintf("expected %d argument(s), got %d", len(params), len(args)))
		}

		stack := make([]uint64, stackLen)
		for i, p := range params {
			slot, err := LowerScalar(p.Type, args[i], p.Name)
			if err != nil {
				return nil, err
			}
			stack[i] = slot
		}

		if err := fn.CallWithStack(ctx, stack); err != nil {
			return nil, errors.Wrap(errors.PhaseCall, errors.KindInvalidData, err, sig.Name)
		}

		if result == nil {
			return nil, nil
		}
		return LiftScalar(result, stack[0], sig.Results[0].Name)
	}
}

// How one parameter travels across the boundary.
type lowerMode uint8

const (
	lowerScalarSlot lowerMode = iota // one slot, value in place
	lowerText                       // two slots, ptr then len
	lowerList                       // two slots, ptr then len
)

type paramPlan struct {
	name  string
	typ   wit.Type // resolved; scalar modes only
	elem  abi.Kind // list element kind
	mode  lowerMode
	slots int
}

type resultPlan struct {
	name string
	typ  wit.Type // resolved; scalar mode only
	elem abi.Kind
	mode lowerMode
}

func (g *Generator) bindMarshaled(sig Signature, fn wasmbindgen.Function, inst wasmbindgen.Instance) (Func, error) {
	plans := make([]paramPlan, len(sig.Params))
	stackLen := 0
	for i, p := range sig.Params {
		plan, err := g.planParam(p)
		if err != nil {
			return nil, err
		}
		plans[i] = plan
		stackLen += plan.slots
	}

	var result *resultPlan
	if len(sig.Results) == 1 {
		plan, err := g.planResult(sig.Results[0])
		if err != nil {
			return nil, err
		}
		result = &plan
		if stackLen < 1 {
			stackLen = 1
		}
	}

	helpers := marshal.NewHelpers(inst.Memory(), inst.Allocator())
	alloc := inst.Allocator()
	post := inst.ExportedFunction(PostReturnName(sig.Name))
	log := Logger()

	return func(ctx context.Context, args ...any) (any, error) {
		if len(args) != len(plans) {
			return nil, errors.InvalidInput(errors.PhaseCall,
				fmt.Sprintf("expected %d argument(s), got %d", len(plans), len(args)))
		}

		allocs := marshal.NewAllocationList()
		stack := make([]uint64, stackLen)
		idx := 0
		for i, plan := range plans {
			switch plan.mode {
			case lowerScalarSlot:
				slot, err := LowerScalar(plan.typ, args[i], plan.name)
				if err != nil {
					allocs.FreeAndRelease(alloc)
					return nil, err
				}
				stack[idx] = slot
				idx++
			case lowerText:
				ptr, length, err := helpers.EncodeText(args[i], allocs)
				if err != nil {
					allocs.FreeAndRelease(alloc)
					return nil, err
				}
				stack[idx] = uint64(ptr)
				stack[idx+1] = uint64(length)
				idx += 2
			case lowerList:
				ptr, length, err := helpers.StoreList(args[i], plan.elem, allocs)
				if err != nil {
					allocs.FreeAndRelease(alloc)
					return nil, err
				}
				stack[idx] = uint64(ptr)
				stack[idx+1] = uint64(length)
				idx += 2
			}
		}

		if err := fn.CallWithStack(ctx, stack); err != nil {
			allocs.FreeAndRelease(alloc)
			return nil, errors.Wrap(errors.PhaseCall, errors.KindInvalidData, err, sig.Name)
		}
		// Once the call returns, parameter memory belongs to the module.
		allocs.Release()

		if result == nil {
			return nil, nil
		}

		value, err := liftResult(helpers, *result, stack[0])
		if err != nil {
			return nil, err
		}

		// Release hook runs after the value is decoded out of linear
		// memory and before it is handed to the caller, exactly once.
		if post != nil {
			postStack := []uint64{stack[0]}
			if err := post.CallWithStack(ctx, postStack); err != nil {
				log.Warn("post-return hook failed",
					zap.String("func", sig.Name),
					zap.Error(err))
				return nil, errors.Wrap(errors.PhaseCall, errors.KindInvalidData, err,
					PostReturnName(sig.Name))
			}
		}

		return value, nil
	}, nil
}

func (g *Generator) planParam(p Param) (paramPlan, error) {
	t := Resolve(p.Type)

	if abi.IsScalarType(t) {
		return paramPlan{name: p.Name, typ: t, mode: lowerScalarSlot, slots: 1}, nil
	}
	if _, ok := t.(wit.String); ok {
		return paramPlan{name: p.Name, mode: lowerText, slots: 2}, nil
	}
	if td, ok := t.(*wit.TypeDef); ok {
		if list, ok := td.Kind.(*wit.List); ok {
			elem, err := g.listElemKind(list, p.Name)
			if err != nil {
				return paramPlan{}, err
			}
			return paramPlan{name: p.Name, elem: elem, mode: lowerList, slots: 2}, nil
		}
	}

	return paramPlan{}, errors.New(errors.PhaseGenerate, errors.KindUnsupported).
		Path(p.Name).
		WitType(abi.TypeString(p.Type)).
		Detail("cannot flatten parameter type").
		Build()
}

func (g *Generator) planResult(r Param) (resultPlan, error) {
	t := Resolve(r.Type)

	if abi.IsScalarType(t) {
		return resultPlan{name: r.Name, typ: t, mode: lowerScalarSlot}, nil
	}
	if _, ok := t.(wit.String); ok {
		return resultPlan{name: r.Name, mode: lowerText}, nil
	}
	if td, ok := t.(*wit.TypeDef); ok {
		if list, ok := td.Kind.(*wit.List); ok {
			elem, err := g.listElemKind(list, r.Name)
			if err != nil {
				return resultPlan{}, err
			}
			return resultPlan{name: r.Name, elem: elem, mode: lowerList}, nil
		}
	}

	return resultPlan{}, errors.New(errors.PhaseGenerate, errors.KindUnsupported).
		Path(r.Name).
		WitType(abi.TypeString(r.Type)).
		Detail("cannot lift result type").
		Build()
}

// listElemKind resolves a list's element to one of the fixed scalar kinds.
// Nested compounds inside lists are a generation-time error.
func (g *Generator) listElemKind(list *wit.List, path string) (abi.Kind, error) {
	elem := Resolve(list.Type)
	kind, ok := abi.KindOf(elem)
	if !ok {
		return 0, errors.New(errors.PhaseGenerate, errors.KindUnsupported).
			Path(path).
			WitType("list<" + abi.TypeString(list.Type) + ">").
			Detail("list elements must be scalar").
			Build()
	}
	// Layout stays warm for the element so later lookups are table hits.
	if _, err := g.layout.Calculate(elem); err != nil {
		return 0, err
	}
	return kind, nil
}

// liftResult decodes the single flat result slot. Indirect results hold a
// pointer to a two-word return area: data pointer at +0, length at +4.
func liftResult(helpers *marshal.Helpers, plan resultPlan, raw uint64) (any, error) {
	switch plan.mode {
	case lowerScalarSlot:
		return LiftScalar(plan.typ, raw, plan.name)
	case lowerText:
		ptr, length, err := readReturnArea(helpers, uint32(raw), plan.name)
		if err != nil {
			return nil, err
		}
		return helpers.DecodeText(ptr, length)
	case lowerList:
		ptr, length, err := readReturnArea(helpers, uint32(raw), plan.name)
		if err != nil {
			return nil, err
		}
		return helpers.LoadList(ptr, length, plan.elem)
	}
	return nil, errors.InvalidInput(errors.PhaseLift, "unknown result mode")
}

func readReturnArea(helpers *marshal.Helpers, area uint32, path string) (uint32, uint32, error) {
	ptr, err := helpers.Memory().ReadU32(area)
	if err != nil {
		return 0, 0, errors.OutOfBounds(errors.PhaseLift, []string{path}, area, 8)
	}
	length, err := helpers.Memory().ReadU32(area + 4)
	if err != nil {
		return 0, 0, errors.OutOfBounds(errors.PhaseLift, []string{path}, area+4, 4)
	}
	return ptr, length, nil
}
