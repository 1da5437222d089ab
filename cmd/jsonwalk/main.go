// Command jsonwalk normalizes JSON documents with the jsonwalk engine.
//
//	jsonwalk fmt [--chunk N] [--max-depth D] [--unordered] [--no-escape-html] [file]
//	jsonwalk serve [--addr A]
package main

import (
	"fmt"
	"io"
	"os"

	"github.com/gookit/color"
	"github.com/karagenc/jsonwalk"
	"github.com/karagenc/jsonwalk/serializer/fast"
	"github.com/spf13/pflag"
	"golang.org/x/term"
)

const usage = `Usage:
  jsonwalk fmt [flags] [file]    normalize a document read from file or stdin
  jsonwalk serve [flags]         serve POST /normalize
`

func main() {
	if len(os.Args) < 2 {
		fmt.Fprint(os.Stderr, usage)
		os.Exit(2)
	}

	var err error
	switch cmd, args := os.Args[1], os.Args[2:]; cmd {
	case "fmt":
		err = runFmt(args, os.Stdin, os.Stdout)
	case "serve":
		err = runServe(args)
	case "-h", "--help", "help":
		fmt.Fprint(os.Stdout, usage)
		return
	default:
		err = fmt.Errorf("unknown command %q", cmd)
	}
	if err == pflag.ErrHelp {
		return
	}
	if err != nil {
		printError(os.Stderr, err)
		os.Exit(1)
	}
}

func printError(w io.Writer, err error) {
	msg := "Error: " + err.Error()
	if f, ok := w.(*os.File); ok && term.IsTerminal(int(f.Fd())) {
		msg = color.Red.Sprint(msg)
	}
	fmt.Fprintln(w, msg)
}

// engineFlags are the options shared by every command.
type engineFlags struct {
	maxDepth   int
	bufferSize int
	unordered  bool
	noEscape   bool
	debug      bool
}

func (f *engineFlags) register(fs *pflag.FlagSet) {
	fs.IntVar(&f.maxDepth, "max-depth", 64, "Maximum nesting depth")
	fs.IntVarP(&f.bufferSize, "chunk", "c", 16*1024, "Size of input blocks and output chunks in bytes")
	fs.BoolVar(&f.unordered, "unordered", false, "Keep map keys in iteration order instead of sorting them")
	fs.BoolVar(&f.noEscape, "no-escape-html", false, "Do not escape <, > and & in strings")
	fs.BoolVarP(&f.debug, "debug", "d", false, "Trace type resolution to stdout")
}

func (f *engineFlags) options() (*jsonwalk.Options, error) {
	opts := []jsonwalk.Option{
		jsonwalk.WithMaxDepth(f.maxDepth),
		jsonwalk.WithDefaultBufferSize(f.bufferSize),
		jsonwalk.WithUnorderedMaps(f.unordered),
		jsonwalk.WithEscapeHTML(!f.noEscape),
	}
	if f.noEscape {
		// Values marshaling themselves go through the backend.
		opts = append(opts, jsonwalk.WithBackend(fast.NewWithConfig(fast.DefaultConfig().WithoutHTMLEscape())))
	}
	if f.debug {
		opts = append(opts, jsonwalk.WithDebugger(jsonwalk.NewPrintDebugger().WithContext("jsonwalk")))
	}
	return jsonwalk.NewOptions(opts...)
}
