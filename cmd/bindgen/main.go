package main

import (
	"context"
	"fmt"
	"os"
	"strconv"
	"strings"

	"github.com/spf13/cobra"
	"go.bytecodealliance.org/wit"
	"golang.org/x/term"

	"github.com/wippyai/wasm-bindgen/bind"
	"github.com/wippyai/wasm-bindgen/runtime"
)

var witFile string

func main() {
	root := &cobra.Command{
		Use:   "bindgen",
		Short: "Generate and exercise canonical ABI bindings for core WASM modules",
		Long: `bindgen loads a core WebAssembly module together with the WIT text
describing its functions, generates host-side bindings, and lets you
inspect and call the module's exports.`,
		SilenceUsage: true,
	}
	root.PersistentFlags().StringVar(&witFile, "wit", "", "Path to WIT text file with function signatures")

	root.AddCommand(listCmd(), callCmd(), tuiCmd())

	if err := root.Execute(); err != nil {
		os.Exit(1)
	}
}

func loadModule(ctx context.Context, wasmPath string) (*runtime.Runtime, *runtime.Module, error) {
	if witFile == "" {
		return nil, nil, fmt.Errorf("--wit is required: core modules carry no type metadata")
	}
	witText, err := os.ReadFile(witFile)
	if err != nil {
		return nil, nil, fmt.Errorf("read WIT file: %w", err)
	}
	wasmBytes, err := os.ReadFile(wasmPath)
	if err != nil {
		return nil, nil, fmt.Errorf("read module: %w", err)
	}

	rt, err := runtime.New(ctx)
	if err != nil {
		return nil, nil, err
	}

	mod, err := rt.Load(ctx, wasmBytes, string(witText))
	if err != nil {
		rt.Close(ctx)
		return nil, nil, err
	}
	return rt, mod, nil
}

func listCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "list <module.wasm>",
		Short: "List the module's functions and their marshaling classification",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			ctx := cmd.Context()
			rt, mod, err := loadModule(ctx, args[0])
			if err != nil {
				return err
			}
			defer rt.Close(ctx)

			sigs, err := mod.Signatures()
			if err != nil {
				return err
			}

			colored := term.IsTerminal(int(os.Stdout.Fd()))
			for _, sig := range sigs {
				class := sig.Classification().String()
				line := fmt.Sprintf("%s  [%s]  exported as %s", sig, class, bind.LowerCamel(sig.Name))
				if colored {
					line = styleFor(class).Render(line)
				}
				fmt.Println(line)
			}

			if required := mod.RequiredImports(); len(required) > 0 {
				fmt.Println("\nRequired imports:")
				for _, req := range required {
					fmt.Printf("  %s#%s\n", req.Namespace, req.Name)
				}
			}
			return nil
		},
	}
}

func callCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "call <module.wasm> <function> [args...]",
		Short: "Instantiate the module and call one export",
		Args:  cobra.MinimumNArgs(2),
		RunE: func(cmd *cobra.Command, args []string) error {
			ctx := cmd.Context()
			rt, mod, err := loadModule(ctx, args[0])
			if err != nil {
				return err
			}
			defer rt.Close(ctx)

			funcName := args[1]
			sig, err := mod.Signature(funcName)
			if err != nil {
				return err
			}
			if len(args)-2 != len(sig.Params) {
				return fmt.Errorf("%s takes %d argument(s), got %d", funcName, len(sig.Params), len(args)-2)
			}

			inst, err := mod.Instantiate(ctx)
			if err != nil {
				return err
			}
			defer inst.Close(ctx)

			callArgs := make([]any, len(sig.Params))
			for i, raw := range args[2:] {
				callArgs[i], err = parseArg(raw, sig.Params[i].Type)
				if err != nil {
					return fmt.Errorf("argument %q: %w", sig.Params[i].Name, err)
				}
			}

			result, err := inst.Call(ctx, funcName, callArgs...)
			if err != nil {
				return err
			}
			if len(sig.Results) > 0 {
				fmt.Printf("%v\n", result)
			}
			return nil
		},
	}
}

func tuiCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "tui <module.wasm>",
		Short: "Browse and call exports interactively",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			return runInteractive(args[0])
		},
	}
}

// parseArg converts a command-line string to the host value a parameter
// type expects. list<T> arguments are comma-separated.
func parseArg(value string, t wit.Type) (any, error) {
	switch v := t.(type) {
	case wit.String:
		return value, nil
	case wit.Bool:
		return value == "true" || value == "1", nil
	case wit.U8, wit.U16, wit.U32:
		n, err := strconv.ParseUint(value, 10, 32)
		return uint32(n), err
	case wit.S8, wit.S16, wit.S32:
		n, err := strconv.ParseInt(value, 10, 32)
		return int32(n), err
	case wit.U64:
		return strconv.ParseUint(value, 10, 64)
	case wit.S64:
		return strconv.ParseInt(value, 10, 64)
	case wit.F32:
		n, err := strconv.ParseFloat(value, 32)
		return float32(n), err
	case wit.F64:
		return strconv.ParseFloat(value, 64)
	case wit.Char:
		runes := []rune(value)
		if len(runes) != 1 {
			return nil, fmt.Errorf("char argument must be a single rune")
		}
		return runes[0], nil
	case *wit.TypeDef:
		if list, ok := v.Kind.(*wit.List); ok {
			return parseListArg(value, list.Type)
		}
	}
	return value, nil
}

func parseListArg(value string, elem wit.Type) (any, error) {
	if value == "" {
		return coerceListArgs(nil, elem), nil
	}
	parts := strings.Split(value, ",")
	out := make([]any, len(parts))
	for i, part := range parts {
		v, err := parseArg(strings.TrimSpace(part), elem)
		if err != nil {
			return nil, err
		}
		out[i] = v
	}
	return coerceListArgs(out, elem), nil
}

// coerceListArgs turns []any into the typed slice the marshaling helpers
// expect for the element type.
func coerceListArgs(values []any, elem wit.Type) any {
	switch elem.(type) {
	case wit.U8:
		out := make([]uint8, len(values))
		for i, v := range values {
			out[i] = uint8(v.(uint32))
		}
		return out
	case wit.U16:
		out := make([]uint16, len(values))
		for i, v := range values {
			out[i] = uint16(v.(uint32))
		}
		return out
	case wit.U32:
		out := make([]uint32, len(values))
		for i, v := range values {
			out[i] = v.(uint32)
		}
		return out
	case wit.S8:
		out := make([]int8, len(values))
		for i, v := range values {
			out[i] = int8(v.(int32))
		}
		return out
	case wit.S16:
		out := make([]int16, len(values))
		for i, v := range values {
			out[i] = int16(v.(int32))
		}
		return out
	case wit.S32:
		out := make([]int32, len(values))
		for i, v := range values {
			out[i] = v.(int32)
		}
		return out
	case wit.U64:
		out := make([]uint64, len(values))
		for i, v := range values {
			out[i] = v.(uint64)
		}
		return out
	case wit.S64:
		out := make([]int64, len(values))
		for i, v := range values {
			out[i] = v.(int64)
		}
		return out
	case wit.F32:
		out := make([]float32, len(values))
		for i, v := range values {
			out[i] = v.(float32)
		}
		return out
	case wit.F64:
		out := make([]float64, len(values))
		for i, v := range values {
			out[i] = v.(float64)
		}
		return out
	case wit.Bool:
		out := make([]bool, len(values))
		for i, v := range values {
			out[i] = v.(bool)
		}
		return out
	case wit.Char:
		out := make([]rune, len(values))
		for i, v := range values {
			out[i] = v.(rune)
		}
		return out
	default:
		return values
	}
}
