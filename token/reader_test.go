package token

import (
	"errors"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type tok struct {
	Kind  Kind
	Depth int
	Text  string
}

func readAll(t *testing.T, data []byte) []tok {
	t.Helper()
	r := NewReader(data, true, NewState(0, false))
	var toks []tok
	for {
		ok, err := r.Read()
		require.NoError(t, err)
		if !ok {
			break
		}
		toks = append(toks, current(t, r))
	}
	return toks
}

func current(t *testing.T, r *Reader) tok {
	t.Helper()
	tk := tok{Kind: r.Kind(), Depth: r.Depth()}
	switch r.Kind() {
	case String, PropertyName:
		s, err := r.String()
		require.NoError(t, err)
		tk.Text = s
	case Number:
		tk.Text = string(r.Bytes())
	}
	return tk
}

// readSplit feeds data in two blocks split at offset, carrying the unconsumed
// tail over like the engine does.
func readSplit(t *testing.T, data []byte, offset int) []tok {
	t.Helper()
	st := NewState(0, false)
	var toks []tok

	r := NewReader(data[:offset], false, st)
	for {
		ok, err := r.Read()
		require.NoError(t, err)
		if !ok {
			break
		}
		toks = append(toks, current(t, r))
	}
	rest := append([]byte{}, data[r.BytesConsumed():]...)
	r = NewReader(rest, true, r.State())
	for {
		ok, err := r.Read()
		require.NoError(t, err)
		if !ok {
			break
		}
		toks = append(toks, current(t, r))
	}
	return toks
}

const sample = `{"name":"Jörg \"x\"","n":-12.5e+3,"list":[1,true,false,null,[],{}],"empty":"","e":"😀"}`

func TestReaderTokens(t *testing.T) {
	toks := readAll(t, []byte(sample))
	expected := []tok{
		{StartObject, 0, ""},
		{PropertyName, 1, "name"},
		{String, 1, "Jörg \"x\""},
		{PropertyName, 1, "n"},
		{Number, 1, "-12.5e+3"},
		{PropertyName, 1, "list"},
		{StartArray, 1, ""},
		{Number, 2, "1"},
		{True, 2, ""},
		{False, 2, ""},
		{Null, 2, ""},
		{StartArray, 2, ""},
		{EndArray, 2, ""},
		{StartObject, 2, ""},
		{EndObject, 2, ""},
		{EndArray, 1, ""},
		{PropertyName, 1, "empty"},
		{String, 1, ""},
		{PropertyName, 1, "e"},
		{String, 1, "\U0001F600"},
		{EndObject, 0, ""},
	}
	assert.Equal(t, expected, toks)
}

func TestReaderSplitAtEveryOffset(t *testing.T) {
	data := []byte(sample)
	whole := readAll(t, data)
	for i := 0; i <= len(data); i++ {
		assert.Equalf(t, whole, readSplit(t, data, i), "split at %d", i)
	}
}

func TestReaderNumberAtBlockEnd(t *testing.T) {
	r := NewReader([]byte("12"), false, NewState(0, false))
	ok, err := r.Read()
	require.NoError(t, err)
	assert.False(t, ok, "a number ending a non-final block may continue")

	r = NewReader([]byte("123"), true, r.State())
	ok, err = r.Read()
	require.NoError(t, err)
	require.True(t, ok)
	v, err := r.Int64()
	require.NoError(t, err)
	assert.EqualValues(t, 123, v)
}

func TestReaderTotalBytesConsumed(t *testing.T) {
	r := NewReader([]byte(`[1, `), false, NewState(0, false))
	for {
		ok, err := r.Read()
		require.NoError(t, err)
		if !ok {
			break
		}
	}
	assert.Equal(t, 2, r.BytesConsumed())

	r = NewReader([]byte(`, 2]`), true, r.State())
	ok, err := r.Read()
	require.NoError(t, err)
	require.True(t, ok)
	assert.Equal(t, Number, r.Kind())
	assert.EqualValues(t, 5, r.TotalBytesConsumed())
}

func TestReaderErrors(t *testing.T) {
	tests := []struct {
		input string
		err   error
	}{
		{`{"a" 1}`, ErrSyntax},
		{`{"a":1,}`, ErrSyntax},
		{`[1,]`, ErrSyntax},
		{`[1 2]`, ErrSyntax},
		{`{1:2}`, ErrSyntax},
		{`[tru]`, ErrSyntax},
		{`01`, ErrSyntax},
		{`-`, ErrUnexpectedEOF},
		{`1.`, ErrUnexpectedEOF},
		{`"abc`, ErrUnexpectedEOF},
		{`{"a":[1,2`, ErrUnexpectedEOF},
		{``, ErrUnexpectedEOF},
		{`"a\x"`, ErrSyntax},
		{"\"a\x01\"", ErrSyntax},
		{`[1]]`, ErrSyntax},
		{`{"a":1}}`, ErrSyntax},
		{`[}`, ErrSyntax},
		{`1 2`, ErrSyntax},
	}

	for _, test := range tests {
		r := NewReader([]byte(test.input), true, NewState(0, false))
		var err error
		for {
			var ok bool
			ok, err = r.Read()
			if err != nil || !ok {
				break
			}
		}
		require.Errorf(t, err, "input %q", test.input)
		assert.Truef(t, errors.Is(err, test.err), "input %q: %v", test.input, err)

		var se *SyntaxError
		assert.True(t, errors.As(err, &se))
	}
}

func TestReaderMaxDepth(t *testing.T) {
	r := NewReader([]byte(`[[[1]]]`), true, NewState(3, false))
	for {
		ok, err := r.Read()
		require.NoError(t, err)
		if !ok {
			break
		}
	}

	r = NewReader([]byte(`[[[[1]]]]`), true, NewState(3, false))
	var err error
	for {
		var ok bool
		ok, err = r.Read()
		if err != nil || !ok {
			break
		}
	}
	assert.ErrorIs(t, err, ErrMaxDepth)
}

func TestReaderDeepNestingBeyondInlineBits(t *testing.T) {
	const n = 201
	data := make([]byte, 0, 2*n)
	for i := 0; i < n; i++ {
		if i%2 == 0 {
			data = append(data, '[')
		} else {
			data = append(data, `{"k":`...)
		}
	}
	for i := n - 1; i >= 0; i-- {
		if i%2 == 0 {
			data = append(data, ']')
		} else {
			data = append(data, '}')
		}
	}
	r := NewReader(data, true, NewState(n, false))
	count := 0
	for {
		ok, err := r.Read()
		require.NoError(t, err)
		if !ok {
			break
		}
		count++
	}
	assert.Equal(t, 2*n+n/2, count)
}

func TestReaderMultipleValues(t *testing.T) {
	r := NewReader([]byte("1 {\"a\":2}\n[3]  "), true, NewState(0, true))
	var kinds []Kind
	for {
		ok, err := r.Read()
		require.NoError(t, err)
		if !ok {
			break
		}
		kinds = append(kinds, r.Kind())
	}
	assert.Equal(t, []Kind{Number, StartObject, PropertyName, Number, EndObject, StartArray, Number, EndArray}, kinds)
}

func TestReaderSkipAndRawValue(t *testing.T) {
	data := []byte(`{"a":{"b":[1,2,{"c":3}]},"d":4}`)
	r := NewReader(data, true, NewState(0, false))

	ok, err := r.Read()
	require.NoError(t, err)
	require.True(t, ok)
	ok, _ = r.Read()
	require.True(t, ok)
	require.Equal(t, PropertyName, r.Kind())
	ok, _ = r.Read()
	require.True(t, ok)
	require.Equal(t, StartObject, r.Kind())
	assert.True(t, r.ValueComplete())

	raw, err := r.RawValue()
	require.NoError(t, err)
	assert.Equal(t, `{"b":[1,2,{"c":3}]}`, string(raw))
	assert.Equal(t, EndObject, r.Kind())
	assert.Equal(t, 1, r.Depth())

	ok, _ = r.Read()
	require.True(t, ok)
	s, _ := r.String()
	assert.Equal(t, "d", s)
}

func TestReaderValueCompleteOnPartialBlock(t *testing.T) {
	r := NewReader([]byte(`[{"a":1},{"b":`), false, NewState(0, false))
	ok, _ := r.Read()
	require.True(t, ok)
	ok, _ = r.Read()
	require.True(t, ok)
	assert.True(t, r.ValueComplete())
	require.NoError(t, r.Skip())

	ok, _ = r.Read()
	require.True(t, ok)
	require.Equal(t, StartObject, r.Kind())
	assert.False(t, r.ValueComplete())
	assert.Equal(t, StartObject, r.Kind(), "lookahead must not move the reader")
}

func TestReaderAccessorKinds(t *testing.T) {
	r := NewReader([]byte(`true`), true, NewState(0, false))
	ok, _ := r.Read()
	require.True(t, ok)

	b, err := r.Bool()
	require.NoError(t, err)
	assert.True(t, b)

	_, err = r.Int64()
	assert.ErrorIs(t, err, ErrKind)
	_, err = r.String()
	assert.ErrorIs(t, err, ErrKind)
}

func TestReaderUnread(t *testing.T) {
	r := NewReader([]byte(`{"a":[1,{"b":`), false, NewState(0, false))
	var kinds []Kind
	for i := 0; i < 4; i++ {
		ok, err := r.Read()
		require.NoError(t, err)
		require.True(t, ok)
		kinds = append(kinds, r.Kind())
	}
	assert.Equal(t, []Kind{StartObject, PropertyName, StartArray, Number}, kinds)

	ok, _ := r.Read()
	require.True(t, ok)
	require.Equal(t, StartObject, r.Kind())
	require.Equal(t, 2, r.Depth())
	require.False(t, r.ValueComplete())

	r.Unread()
	assert.Equal(t, Number, r.Kind())
	st := r.State()
	assert.Equal(t, 2, st.Depth())

	rest := []byte(`2}]}`)
	data := append(append([]byte{}, []byte(`{"a":[1,{"b":`)[r.BytesConsumed():]...), rest...)
	r = NewReader(data, true, st)
	ok, err := r.Read()
	require.NoError(t, err)
	require.True(t, ok)
	assert.Equal(t, StartObject, r.Kind())
	assert.Equal(t, 2, r.Depth())
	assert.True(t, r.ValueComplete())
}
