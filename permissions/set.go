package permissions

import "sort"

// Set is a user permission object: the codes a session is allowed to use.
// A nil Set grants nothing.
type Set map[string]bool

// Has reports whether code is granted.
func (s Set) Has(code string) bool {
	return s[code]
}

// Codes returns the granted codes sorted.
func (s Set) Codes() []string {
	out := make([]string, 0, len(s))
	for code, ok := range s {
		if ok {
			out = append(out, code)
		}
	}
	sort.Strings(out)
	return out
}

// SetOf builds a Set from codes.
func SetOf(codes ...string) Set {
	s := make(Set, len(codes))
	for _, c := range codes {
		s[c] = true
	}
	return s
}
