package jsonwalk

import (
	"strconv"
	"strings"
)

func appendPathName(b *strings.Builder, name string) {
	if !needsQuoting(name) {
		b.WriteByte('.')
		b.WriteString(name)
		return
	}
	b.WriteString("['")
	for i := 0; i < len(name); i++ {
		c := name[i]
		if c == '\'' || c == '\\' {
			b.WriteByte('\\')
		}
		b.WriteByte(c)
	}
	b.WriteString("']")
}

func appendPathIndex(b *strings.Builder, i int) {
	b.WriteByte('[')
	b.WriteString(strconv.Itoa(i))
	b.WriteByte(']')
}

func needsQuoting(name string) bool {
	if name == "" {
		return true
	}
	for i := 0; i < len(name); i++ {
		switch c := name[i]; c {
		case '.', '[', ']', '\'', '"', '$', ' ', '\\':
			return true
		default:
			if c < 0x20 {
				return true
			}
		}
	}
	return false
}
