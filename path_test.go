package jsonwalk

import (
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestAppendPathName(t *testing.T) {
	tests := map[string]string{
		"name":   ".name",
		"x.y":    "['x.y']",
		"":       "['']",
		"a b":    "['a b']",
		"it's":   `['it\'s']`,
		`back\`:  `['back\\']`,
		"[0]":    "['[0]']",
		"$root":  "['$root']",
		"tab\tx": "['tab\tx']",
		"ünï":    ".ünï",
	}
	for name, expected := range tests {
		var b strings.Builder
		appendPathName(&b, name)
		assert.Equal(t, expected, b.String(), name)
	}
}

func TestPathOfReadError(t *testing.T) {
	type doc struct {
		A []map[string]int `json:"a"`
	}
	_, err := Unmarshal[doc]([]byte(`{"a":[{},{},{},{"ok":1,"x.y":"bad"}]}`), nil)
	assert.ErrorIs(t, err, ErrCannotConvert)

	var e *Error
	if assert.ErrorAs(t, err, &e) {
		assert.Equal(t, "$.a[3]['x.y']", e.Path)
	}
}

func TestPathOfWriteError(t *testing.T) {
	doc := map[string]any{
		"list": []any{1, map[string]any{"bad key": make(chan int)}},
	}
	_, err := Marshal(doc, nil)
	assert.ErrorIs(t, err, ErrCannotConvert)

	var e *Error
	if assert.ErrorAs(t, err, &e) {
		assert.Equal(t, "$.list[1]['bad key']", e.Path)
	}
}
