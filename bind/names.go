package bind

// Core export and namespace names used by the binding layer.
const (
	// RootNamespace groups imports declared at the top level of a world,
	// outside any named interface.
	RootNamespace = "$root"

	// PostReturnPrefix is prepended to a function's export name to form
	// the name of its release hook, e.g. "cabi_post_get-greeting".
	PostReturnPrefix = "cabi_post_"
)

// PostReturnName returns the export name of the release hook paired with
// the given function export.
func PostReturnName(export string) string {
	return PostReturnPrefix + export
}

// LowerCamel converts a kebab-case WIT function name to the
// lowerCamelCase form exposed to hosts.
// Examples:
//   - "get-greeting" -> "getGreeting"
//   - "http-fetch-json" -> "httpFetchJson"
//   - "run" -> "run" (no change)
func LowerCamel(kebab string) string {
	result := make([]byte, 0, len(kebab))
	upper := false
	for i := 0; i < len(kebab); i++ {
		c := kebab[i]
		if c == '-' || c == '_' {
			upper = len(result) > 0
			continue
		}
		if upper && c >= 'a' && c <= 'z' {
			c -= 'a' - 'A'
		}
		upper = false
		result = append(result, c)
	}
	return string(result)
}
