package main

import (
	"fmt"
	"io"
	"os"
	"reflect"

	"github.com/karagenc/jsonwalk"
	"github.com/spf13/pflag"
)

var anyType = reflect.TypeOf((*any)(nil)).Elem()

func runFmt(args []string, stdin io.Reader, stdout io.Writer) error {
	var ef engineFlags
	fs := pflag.NewFlagSet("fmt", pflag.ContinueOnError)
	ef.register(fs)
	if err := fs.Parse(args); err != nil {
		return err
	}
	if fs.NArg() > 1 {
		return fmt.Errorf("fmt takes at most one file, got %d", fs.NArg())
	}
	o, err := ef.options()
	if err != nil {
		return err
	}

	in := stdin
	if fs.NArg() == 1 && fs.Arg(0) != "-" {
		f, err := os.Open(fs.Arg(0))
		if err != nil {
			return err
		}
		defer f.Close()
		in = f
	}
	return format(in, stdout, o)
}

// format reads one document from r block by block and writes it back to w
// chunk by chunk.
func format(r io.Reader, w io.Writer, o *jsonwalk.Options) error {
	d, err := jsonwalk.NewDeserializer(anyType, o)
	if err != nil {
		return err
	}
	buf := make([]byte, o.DefaultBufferSize())
	for {
		n, err := r.Read(buf)
		final := err == io.EOF
		if err != nil && !final {
			return err
		}
		if _, err := d.Feed(buf[:n], final); err != nil {
			return err
		}
		if final {
			break
		}
	}

	s, err := jsonwalk.NewSerializer(d.Value().Interface(), anyType, o)
	if err != nil {
		return err
	}
	defer s.Close()
	for {
		chunk, done, err := s.Next()
		if err != nil {
			return err
		}
		if _, err := w.Write(chunk); err != nil {
			return err
		}
		if done {
			break
		}
	}
	_, err = io.WriteString(w, "\n")
	return err
}
