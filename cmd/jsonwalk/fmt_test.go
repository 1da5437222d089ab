package main

import (
	"bytes"
	"errors"
	"os"
	"path/filepath"
	"strings"
	"testing"
	"testing/iotest"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

const (
	sampleIn  = ` { "b" : [1, 2.5, "x"], "a": null, "c": {"z": true, "y": {}} } `
	sampleOut = `{"a":null,"b":[1,2.5,"x"],"c":{"y":{},"z":true}}` + "\n"
)

func TestFmtStdin(t *testing.T) {
	for _, chunk := range []string{"1", "3", "4096"} {
		var out bytes.Buffer
		err := runFmt([]string{"--chunk", chunk}, strings.NewReader(sampleIn), &out)
		require.NoError(t, err, "chunk %s", chunk)
		assert.Equal(t, sampleOut, out.String(), "chunk %s", chunk)
	}
}

func TestFmtOneByteReader(t *testing.T) {
	var out bytes.Buffer
	err := runFmt(nil, iotest.OneByteReader(strings.NewReader(sampleIn)), &out)
	require.NoError(t, err)
	assert.Equal(t, sampleOut, out.String())
}

func TestFmtFile(t *testing.T) {
	path := filepath.Join(t.TempDir(), "doc.json")
	require.NoError(t, os.WriteFile(path, []byte(sampleIn), 0o644))

	var out bytes.Buffer
	require.NoError(t, runFmt([]string{path}, strings.NewReader("ignored"), &out))
	assert.Equal(t, sampleOut, out.String())

	err := runFmt([]string{filepath.Join(t.TempDir(), "missing.json")}, nil, &out)
	assert.True(t, errors.Is(err, os.ErrNotExist))
}

func TestFmtErrors(t *testing.T) {
	var out bytes.Buffer
	assert.Error(t, runFmt(nil, strings.NewReader(`{"a":`), &out))
	assert.Error(t, runFmt(nil, strings.NewReader(`[1] [2]`), &out))
	assert.Error(t, runFmt([]string{"--max-depth", "1"}, strings.NewReader(`[[1]]`), &out))
	assert.Error(t, runFmt([]string{"--chunk", "0"}, strings.NewReader(`1`), &out))
	assert.Error(t, runFmt([]string{"a", "b"}, nil, &out))
	assert.Error(t, runFmt([]string{"--nope"}, nil, &out))
}

func TestPrintErrorPlain(t *testing.T) {
	var buf bytes.Buffer
	printError(&buf, errors.New("boom"))
	assert.Equal(t, "Error: boom\n", buf.String())
}

func TestFmtEscapeHTML(t *testing.T) {
	var out bytes.Buffer
	require.NoError(t, runFmt(nil, strings.NewReader(`["<&>"]`), &out))
	assert.NotContains(t, out.String(), "<")

	out.Reset()
	require.NoError(t, runFmt([]string{"--no-escape-html"}, strings.NewReader(`["<&>"]`), &out))
	assert.Equal(t, `["<&>"]`+"\n", out.String())
}
