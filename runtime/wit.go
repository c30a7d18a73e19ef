package runtime

import (
	"regexp"
	"strings"

	"go.bytecodealliance.org/wit"

	"github.com/wippyai/wasm-bindgen/bind"
	"github.com/wippyai/wasm-bindgen/errors"
)

// Pattern: [export] name: func(params) -> result;
var funcPattern = regexp.MustCompile(`(?:export\s+)?([a-zA-Z_][a-zA-Z0-9_-]*)\s*:\s*func\s*\(([^)]*)\)(?:\s*->\s*([^;]+))?`)

// ParseWitFunctions extracts function signatures from WIT text, keyed by
// the kebab-case function name.
func ParseWitFunctions(witText string) (map[string]bind.Signature, error) {
	funcs := make(map[string]bind.Signature)

	matches := funcPattern.FindAllStringSubmatch(witText, -1)
	for _, match := range matches {
		name := match[1]
		paramsStr := strings.TrimSpace(match[2])
		resultStr := ""
		if len(match) > 3 {
			resultStr = strings.TrimSpace(match[3])
		}

		sig := bind.Signature{Name: name}

		if paramsStr != "" {
			for _, p := range splitParams(paramsStr) {
				param, err := parseParam(p)
				if err != nil {
					return nil, err
				}
				sig.Params = append(sig.Params, param)
			}
		}

		if resultStr != "" && resultStr != "()" {
			if strings.HasPrefix(resultStr, "(") && strings.HasSuffix(resultStr, ")") {
				inner := strings.TrimPrefix(strings.TrimSuffix(resultStr, ")"), "(")
				if inner != "" {
					for _, part := range splitParams(inner) {
						result, err := parseParam(part)
						if err != nil {
							return nil, err
						}
						sig.Results = append(sig.Results, result)
					}
				}
			} else {
				t, err := parseWitType(resultStr)
				if err != nil {
					return nil, errors.Wrap(errors.PhaseParse, errors.KindInvalidData, err, "parse result type "+resultStr)
				}
				sig.Results = []bind.Param{{Type: t}}
			}
		}

		funcs[name] = sig
	}

	if len(funcs) == 0 {
		return nil, errors.InvalidInput(errors.PhaseParse, "no functions found in WIT text")
	}

	return funcs, nil
}

// parseParam parses "name: type" or a bare "type".
func parseParam(s string) (bind.Param, error) {
	s = strings.TrimSpace(s)
	name := ""
	typStr := s
	if idx := strings.Index(s, ":"); idx != -1 {
		name = strings.TrimSpace(s[:idx])
		typStr = strings.TrimSpace(s[idx+1:])
	}
	t, err := parseWitType(typStr)
	if err != nil {
		return bind.Param{}, errors.Wrap(errors.PhaseParse, errors.KindInvalidData, err, "parse type "+typStr)
	}
	return bind.Param{Name: name, Type: t}, nil
}

// splitParams splits parameter list, handling nested angle brackets and parens.
func splitParams(s string) []string {
	var result []string
	var current strings.Builder
	depth := 0

	for _, ch := range s {
		switch ch {
		case '(', '<':
			depth++
			current.WriteRune(ch)
		case ')', '>':
			depth--
			current.WriteRune(ch)
		case ',':
			if depth == 0 {
				if str := strings.TrimSpace(current.String()); str != "" {
					result = append(result, str)
				}
				current.Reset()
			} else {
				current.WriteRune(ch)
			}
		default:
			current.WriteRune(ch)
		}
	}

	if str := strings.TrimSpace(current.String()); str != "" {
		result = append(result, str)
	}

	return result
}

func parseWitType(s string) (wit.Type, error) {
	return wit.ParseType(strings.TrimSpace(s))
}
