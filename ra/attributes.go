package ra

import "strings"

// Tokenize splits a delimited attribute list into its component names.
func Tokenize(list string, delimiter string) []string {
	if list == "" {
		return nil
	}
	if delimiter == "" {
		delimiter = ";"
	}
	parts := strings.Split(list, delimiter)
	out := make([]string, 0, len(parts))
	for _, p := range parts {
		p = strings.TrimSpace(p)
		if p != "" {
			out = append(out, p)
		}
	}
	return out
}

// Join re-delimits attrs back into a single attribute-list string.
func Join(attrs []string, delimiter string) string {
	if delimiter == "" {
		delimiter = ";"
	}
	return strings.Join(attrs, delimiter)
}

// IsSubset reports whether every element of a appears in b.
func IsSubset(a, b []string) bool {
	set := make(map[string]struct{}, len(b))
	for _, x := range b {
		set[x] = struct{}{}
	}
	for _, x := range a {
		if _, ok := set[x]; !ok {
			return false
		}
	}
	return true
}

// SetEqual reports whether a and b contain exactly the same attribute
// names, ignoring order and duplicates (IsSubset both ways, spec.md
// property P7).
func SetEqual(a, b []string) bool {
	return IsSubset(a, b) && IsSubset(b, a)
}

// ConditionAttrs extracts the attribute names delimited by escape (the
// backtick by default) from a condition string, e.g. "`a`>10" -> ["a"].
func ConditionAttrs(cond string, escape string) []string {
	if escape == "" {
		escape = "`"
	}
	parts := strings.Split(cond, escape)
	var out []string
	for i, p := range parts {
		if i%2 == 1 && p != "" {
			out = append(out, p)
		}
	}
	return out
}

// FilterToSchema retains only the attrs present in schema, preserving
// attrs' order.
func FilterToSchema(attrs []string, schema []string) []string {
	set := make(map[string]struct{}, len(schema))
	for _, x := range schema {
		set[x] = struct{}{}
	}
	var out []string
	for _, a := range attrs {
		if _, ok := set[a]; ok {
			out = append(out, a)
		}
	}
	return out
}

// Dedup removes repeats from xs, preserving first-occurrence order.
func Dedup(xs []string) []string {
	seen := make(map[string]struct{}, len(xs))
	out := make([]string, 0, len(xs))
	for _, x := range xs {
		if _, ok := seen[x]; ok {
			continue
		}
		seen[x] = struct{}{}
		out = append(out, x)
	}
	return out
}
