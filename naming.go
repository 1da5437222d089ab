package jsonwalk

import (
	"unicode"
	"unicode/utf8"
)

// NamingPolicy derives the wire name of a member from its Go name.
type NamingPolicy interface {
	ConvertName(name string) string
}

type NamingPolicyFunc func(name string) string

func (f NamingPolicyFunc) ConvertName(name string) string { return f(name) }

var (
	// CamelCase lowercases the leading run of upper case letters, keeping
	// the last one of a run that is followed by a lower case letter:
	// URLPath becomes urlPath and ID becomes id.
	CamelCase NamingPolicy = NamingPolicyFunc(camelCase)
	// SnakeCase converts UserID to user_id.
	SnakeCase NamingPolicy = NamingPolicyFunc(snakeCase)
)

func camelCase(name string) string {
	r, _ := utf8.DecodeRuneInString(name)
	if !unicode.IsUpper(r) {
		return name
	}
	runes := []rune(name)
	for i := range runes {
		if i == 1 && !unicode.IsUpper(runes[i]) {
			break
		}
		if i > 0 && i+1 < len(runes) && !unicode.IsUpper(runes[i+1]) {
			break
		}
		runes[i] = unicode.ToLower(runes[i])
	}
	return string(runes)
}

func snakeCase(name string) string {
	runes := []rune(name)
	out := make([]rune, 0, len(runes)+4)
	for i, r := range runes {
		if unicode.IsUpper(r) {
			if i > 0 {
				prev := runes[i-1]
				nextLower := i+1 < len(runes) && unicode.IsLower(runes[i+1])
				if unicode.IsLower(prev) || unicode.IsDigit(prev) || (unicode.IsUpper(prev) && nextLower) {
					out = append(out, '_')
				}
			}
			r = unicode.ToLower(r)
		}
		out = append(out, r)
	}
	return string(out)
}
