// Package serializer abstracts the JSON library used for values that marshal
// themselves (json.Marshaler, json.Unmarshaler). The engine hands such values
// to a backend instead of walking them.
package serializer

type JSONSerializer interface {
	Name() string
	Marshal(v any) ([]byte, error)
	Unmarshal(data []byte, v any) error
	// Valid reports whether data is one well-formed JSON value.
	Valid(data []byte) bool
}
