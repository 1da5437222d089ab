package fast

import (
	"github.com/bytedance/sonic"
	"github.com/goccy/go-json"
)

type Config struct {
	SonicConfig sonic.Config
	GoJSON      GoJSONConfig
}

type GoJSONConfig struct {
	EncodeOptions []json.EncodeOptionFunc
	DecodeOptions []json.DecodeOptionFunc
}

// DefaultConfig returns the configuration New uses. Both backends escape
// HTML and sort map keys.
func DefaultConfig() Config {
	return Config{
		SonicConfig: sonic.Config{
			// Decoded strings outlive the input buffer, which is pooled and reused.
			CopyString: true,
			// Marshaler output is embedded into a larger document.
			CompactMarshaler: true,
			EscapeHTML:       true,
			SortMapKeys:      true,
		},
		GoJSON: GoJSONConfig{
			EncodeOptions: []json.EncodeOptionFunc{},
		},
	}
}

// WithoutHTMLEscape returns c with HTML escaping turned off in both backends.
func (c Config) WithoutHTMLEscape() Config {
	c.SonicConfig.EscapeHTML = false
	c.GoJSON.EncodeOptions = append(append([]json.EncodeOptionFunc(nil), c.GoJSON.EncodeOptions...), json.DisableHTMLEscape())
	return c
}
