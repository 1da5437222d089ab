package main

import (
	"compress/gzip"
	"fmt"
	"io"
	"net/http"

	"github.com/NYTimes/gziphandler"
	"github.com/karagenc/jsonwalk"
	"github.com/spf13/pflag"
)

func runServe(args []string) error {
	var ef engineFlags
	fs := pflag.NewFlagSet("serve", pflag.ContinueOnError)
	ef.register(fs)
	addr := fs.StringP("addr", "a", "127.0.0.1:3000", "Address to listen on")
	if err := fs.Parse(args); err != nil {
		return err
	}
	o, err := ef.options()
	if err != nil {
		return err
	}
	h, err := newHandler(o, gziphandler.DefaultMinSize)
	if err != nil {
		return err
	}
	fmt.Printf("Listening on: %s\n", *addr)
	return http.ListenAndServe(*addr, h)
}

// newHandler serves POST /normalize. The body holds any number of whitespace
// separated JSON values; each is written back normalized on its own line.
// Responses of at least gzipMinSize bytes are compressed when the client
// accepts gzip.
func newHandler(o *jsonwalk.Options, gzipMinSize int) (http.Handler, error) {
	compress, err := gziphandler.NewGzipLevelAndMinSize(gzip.DefaultCompression, gzipMinSize)
	if err != nil {
		return nil, err
	}
	mux := http.NewServeMux()
	mux.Handle("/normalize", compress(&normalizer{opts: o}))
	return mux, nil
}

type normalizer struct {
	opts *jsonwalk.Options
}

func (n *normalizer) ServeHTTP(w http.ResponseWriter, r *http.Request) {
	if r.Method != http.MethodPost {
		w.Header().Set("Allow", http.MethodPost)
		http.Error(w, "method not allowed", http.StatusMethodNotAllowed)
		return
	}

	dec := jsonwalk.NewDecoder(r.Body, n.opts)
	enc := jsonwalk.NewEncoder(w, n.opts)
	written := 0
	for {
		var v any
		err := dec.DecodeContext(r.Context(), &v)
		if err == io.EOF {
			break
		}
		if err != nil {
			if written == 0 {
				http.Error(w, err.Error(), http.StatusBadRequest)
			}
			// A partial response cannot change its status anymore.
			return
		}
		if written == 0 {
			w.Header().Set("Content-Type", "application/x-ndjson")
		}
		if err := enc.EncodeContext(r.Context(), v); err != nil {
			return
		}
		written++
	}
	if written == 0 {
		http.Error(w, "empty body", http.StatusBadRequest)
	}
}
