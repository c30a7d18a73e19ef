package engine

import (
	"context"

	"github.com/tetratelabs/wazero/api"
	"go.bytecodealliance.org/wit"

	"github.com/wippyai/wasm-bindgen/abi"
	"github.com/wippyai/wasm-bindgen/bind"
	"github.com/wippyai/wasm-bindgen/errors"
	"github.com/wippyai/wasm-bindgen/marshal"
)

// How one host-call value travels across the boundary. Mirrors the
// export-side wrapper, with the lift/lower directions swapped.
type hostMode uint8

const (
	hostScalar hostMode = iota
	hostText
	hostList
)

type hostValuePlan struct {
	name string
	typ  wit.Type // scalar mode only
	elem abi.Kind // list element kind
	mode hostMode
}

// buildHostFunc compiles one registered host function into a raw wazero
// callback plus its flat core signature. Guest arguments are lifted out of
// the stack and linear memory, the Go function runs, and its result is
// lowered back; indirect results go through a caller-provided return area
// pointer appended as a trailing i32 parameter.
func buildHostFunc(hf bind.HostFunc) (api.GoModuleFunc, []api.ValueType, []api.ValueType, error) {
	params := make([]hostValuePlan, len(hf.Signature.Params))
	var paramVT []api.ValueType
	for i, p := range hf.Signature.Params {
		plan, vt, err := planHostValue(p)
		if err != nil {
			return nil, nil, nil, err
		}
		params[i] = plan
		paramVT = append(paramVT, vt...)
	}

	if len(hf.Signature.Results) > 1 {
		return nil, nil, nil, errors.Unsupported(errors.PhaseWire, hf.Signature.String(),
			"host functions support at most one result")
	}

	var result *hostValuePlan
	var resultVT []api.ValueType
	if len(hf.Signature.Results) == 1 {
		plan, vt, err := planHostValue(hf.Signature.Results[0])
		if err != nil {
			return nil, nil, nil, err
		}
		result = &plan
		if plan.mode == hostScalar {
			resultVT = vt
		} else {
			// Indirect result: the guest passes a return area pointer.
			paramVT = append(paramVT, api.ValueTypeI32)
		}
	}

	needsMemory := result != nil && result.mode != hostScalar
	for _, plan := range params {
		if plan.mode != hostScalar {
			needsMemory = true
		}
	}

	fn := hf.Fn
	name := hf.Signature.Name

	// Any failure panics with the structured error so wazero converts it
	// into a guest trap. Returning normally would signal success and hand
	// the guest whatever is left in the result slot.
	raw := func(ctx context.Context, mod api.Module, stack []uint64) {
		var helpers *marshal.Helpers
		if needsMemory {
			if mod.Memory() == nil {
				panic(errors.New(errors.PhaseCall, errors.KindInvalidInput).
					Path(name).
					Detail("module has no memory").
					Build())
			}
			mem := &wazeroMemory{mem: mod.Memory()}
			alloc := &moduleAllocator{ctx: ctx, allocFn: mod.ExportedFunction(CabiRealloc)}
			helpers = marshal.NewHelpers(mem, alloc)
		}

		args := make([]any, len(params))
		idx := 0
		for i, plan := range params {
			switch plan.mode {
			case hostScalar:
				value, err := bind.LiftScalar(plan.typ, stack[idx], plan.name)
				if err != nil {
					panic(err)
				}
				args[i] = value
				idx++
			case hostText:
				text, err := helpers.DecodeText(uint32(stack[idx]), uint32(stack[idx+1]))
				if err != nil {
					panic(err)
				}
				args[i] = text
				idx += 2
			case hostList:
				list, err := helpers.LoadList(uint32(stack[idx]), uint32(stack[idx+1]), plan.elem)
				if err != nil {
					panic(err)
				}
				args[i] = list
				idx += 2
			}
		}

		value, err := fn(ctx, args...)
		if err != nil {
			panic(errors.Wrap(errors.PhaseCall, errors.KindInvalidData, err, name))
		}

		if result == nil {
			return
		}

		switch result.mode {
		case hostScalar:
			slot, err := bind.LowerScalar(result.typ, value, result.name)
			if err != nil {
				panic(err)
			}
			stack[0] = slot
		case hostText, hostList:
			retptr := uint32(stack[idx])
			if err := storeIndirectResult(helpers, *result, value, retptr); err != nil {
				panic(err)
			}
		}
	}

	return raw, paramVT, resultVT, nil
}

func planHostValue(p bind.Param) (hostValuePlan, []api.ValueType, error) {
	t := bind.Resolve(p.Type)

	if abi.IsScalarType(t) {
		return hostValuePlan{name: p.Name, typ: t, mode: hostScalar}, scalarValueType(t), nil
	}
	if _, ok := t.(wit.String); ok {
		return hostValuePlan{name: p.Name, mode: hostText},
			[]api.ValueType{api.ValueTypeI32, api.ValueTypeI32}, nil
	}
	if td, ok := t.(*wit.TypeDef); ok {
		if list, ok := td.Kind.(*wit.List); ok {
			if kind, ok := abi.KindOf(bind.Resolve(list.Type)); ok {
				return hostValuePlan{name: p.Name, elem: kind, mode: hostList},
					[]api.ValueType{api.ValueTypeI32, api.ValueTypeI32}, nil
			}
		}
	}

	return hostValuePlan{}, nil, errors.New(errors.PhaseWire, errors.KindUnsupported).
		Path(p.Name).
		WitType(abi.TypeString(t)).
		Detail("cannot flatten host function value").
		Build()
}

func scalarValueType(t wit.Type) []api.ValueType {
	switch t.(type) {
	case wit.U64, wit.S64:
		return []api.ValueType{api.ValueTypeI64}
	case wit.F32:
		return []api.ValueType{api.ValueTypeF32}
	case wit.F64:
		return []api.ValueType{api.ValueTypeF64}
	default:
		return []api.ValueType{api.ValueTypeI32}
	}
}

// storeIndirectResult lowers a text or list result into guest memory and
// writes the (pointer, length) pair into the return area. The allocation
// is owned by the guest caller.
func storeIndirectResult(helpers *marshal.Helpers, plan hostValuePlan, value any, retptr uint32) error {
	allocs := marshal.NewAllocationList()
	defer allocs.Release() // allocations owned by WASM caller

	var ptr, length uint32
	var err error
	switch plan.mode {
	case hostText:
		ptr, length, err = helpers.EncodeText(value, allocs)
	case hostList:
		ptr, length, err = helpers.StoreList(value, plan.elem, allocs)
	}
	if err != nil {
		return err
	}

	if err := helpers.Memory().WriteU32(retptr, ptr); err != nil {
		return err
	}
	return helpers.Memory().WriteU32(retptr+4, length)
}
