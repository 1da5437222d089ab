package jsonwalk

import (
	"fmt"
	"io"
	"os"
	"strings"

	"github.com/karagenc/jsonwalk/internal/sync"
	"github.com/xiegeo/coloredgoroutine"
)

type (
	// Debugger receives trace output of type resolution and of deferred
	// failures. The default discards everything.
	Debugger interface {
		Log(main string, v ...any)
		WithContext(context string) Debugger
		WithDynamicContext(context string, dynamicContext func() string) Debugger
	}

	noopDebugger struct{}

	printDebugger struct {
		out            io.Writer
		context        string
		dynamicContext func() string
	}
)

func NewNoopDebugger() Debugger { return noopDebugger{} }

func (d noopDebugger) Log(main string, v ...any) {}

func (d noopDebugger) WithContext(context string) Debugger { return d }

func (d noopDebugger) WithDynamicContext(context string, _ func() string) Debugger { return d }

// NewPrintDebugger returns a Debugger writing to stdout, colored by goroutine.
func NewPrintDebugger() Debugger {
	return NewWriterDebugger(coloredgoroutine.Colors(os.Stdout))
}

func NewWriterDebugger(w io.Writer) Debugger {
	return &printDebugger{out: w}
}

var printMu sync.Mutex

// Log writes the context, the dynamic context, main and v separated by colons.
func (d *printDebugger) Log(main string, v ...any) {
	fields := make([]string, 0, 3+len(v))
	if d.context != "" {
		fields = append(fields, d.context)
	}
	if d.dynamicContext != nil {
		if dc := d.dynamicContext(); dc != "" {
			fields = append(fields, dc)
		}
	}
	if main != "" {
		fields = append(fields, main)
	}
	for _, f := range v {
		fields = append(fields, fmt.Sprint(f))
	}

	printMu.Lock()
	defer printMu.Unlock()
	fmt.Fprintln(d.out, strings.Join(fields, ": "))
}

func (d printDebugger) WithContext(context string) Debugger {
	d.context = context
	return &d
}

func (d printDebugger) WithDynamicContext(context string, dynamicContext func() string) Debugger {
	d.context = context
	d.dynamicContext = dynamicContext
	return &d
}
