package inject

import (
	"fmt"
	"regexp"
	"sort"
	"strconv"
)

// Variables is the fixed set of names substituted into compiled source,
// with their local-development defaults. The process environment overrides
// a default per key at build time; the substituted value is baked into the
// artifact, changing it requires a rebuild.
var Variables = map[string]string{
	"APP_URL":  "http://localhost:5000",
	"DOCS_URL": "http://localhost:5000/docs",
}

// Resolve returns the injection map: the declared defaults overlaid with
// any values present in the process environment.
func Resolve(lookup func(string) (string, bool)) map[string]string {
	resolved := make(map[string]string, len(Variables))
	for name, fallback := range Variables {
		if v, ok := lookup(name); ok {
			resolved[name] = v
		} else {
			resolved[name] = fallback
		}
	}
	return resolved
}

// Defines converts a resolved injection map into bundler define entries,
// replacing process.env.<NAME> references with JS string literals.
func Defines(vars map[string]string) map[string]string {
	defines := make(map[string]string, len(vars))
	for name, value := range vars {
		defines["process.env."+name] = strconv.Quote(value)
	}
	return defines
}

var envRefPattern = regexp.MustCompile(`process\.env\.([A-Za-z_][A-Za-z0-9_]*)`)

// CheckCompiled scans a compiled artifact for process.env references that
// survived substitution. Any survivor names a variable absent from both
// the environment and the default map, which is a fatal build error.
func CheckCompiled(path string, data []byte) error {
	matches := envRefPattern.FindAllSubmatch(data, -1)
	if len(matches) == 0 {
		return nil
	}

	seen := make(map[string]bool)
	var names []string
	for _, m := range matches {
		name := string(m[1])
		if !seen[name] {
			seen[name] = true
			names = append(names, name)
		}
	}
	sort.Strings(names)
	return fmt.Errorf("%s: unresolved environment references: %v", path, names)
}
