package spec

import "strings"

// Placeholders returns the distinct $name / ${name} variable references
// found in a payload, in first-reference order. Positional and special
// shell parameters ($1, $@, $?, ...) and command substitutions ($( ... ))
// are not placeholders. The scan is deliberately quote-blind: the payload
// is opaque text and declared arguments are the only contract.
func Placeholders(content string) []string {
	var out []string
	seen := map[string]struct{}{}

	add := func(name string) {
		if name == "" || !isIdent(name) {
			return
		}
		if _, ok := seen[name]; ok {
			return
		}
		seen[name] = struct{}{}
		out = append(out, name)
	}

	for i := 0; i < len(content); i++ {
		if content[i] != '$' || i+1 >= len(content) {
			continue
		}
		switch c := content[i+1]; {
		case c == '{':
			end := strings.IndexByte(content[i+2:], '}')
			if end < 0 {
				return out
			}
			add(content[i+2 : i+2+end])
			i += 2 + end
		case isIdentStart(c):
			j := i + 1
			for j < len(content) && isIdentByte(content[j]) {
				j++
			}
			add(content[i+1 : j])
			i = j - 1
		default:
			// $(, $1, $@, $?, $$, ... - not a named placeholder.
		}
	}
	return out
}

// assignedShellVars returns the names a payload assigns itself (x=...,
// export x=..., for x in ...). Self-assigned variables are not external
// placeholders even when referenced later.
func assignedShellVars(content string) []string {
	var out []string
	for _, line := range strings.Split(content, "\n") {
		line = strings.TrimSpace(line)
		line = strings.TrimPrefix(line, "export ")
		line = strings.TrimPrefix(line, "local ")

		if name, ok := strings.CutPrefix(line, "for "); ok {
			if fields := strings.Fields(name); len(fields) > 0 && isIdent(fields[0]) {
				out = append(out, fields[0])
			}
			continue
		}

		if eq := strings.IndexByte(line, '='); eq > 0 {
			name := line[:eq]
			if isIdent(name) {
				out = append(out, name)
			}
		}
	}
	return out
}

func isIdent(s string) bool {
	if s == "" || !isIdentStart(s[0]) {
		return false
	}
	for i := 1; i < len(s); i++ {
		if !isIdentByte(s[i]) {
			return false
		}
	}
	return true
}

func isIdentStart(c byte) bool {
	return c == '_' || (c >= 'a' && c <= 'z') || (c >= 'A' && c <= 'Z')
}

func isIdentByte(c byte) bool {
	return isIdentStart(c) || (c >= '0' && c <= '9')
}
