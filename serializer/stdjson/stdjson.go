package stdjson

import (
	"encoding/json"

	"github.com/karagenc/jsonwalk/serializer"
)

type stdjsonSerializer struct{}

func (s stdjsonSerializer) Name() string { return "encoding/json" }

func (s stdjsonSerializer) Marshal(v any) ([]byte, error) {
	return json.Marshal(v)
}

func (s stdjsonSerializer) Unmarshal(data []byte, v any) error {
	return json.Unmarshal(data, v)
}

func (s stdjsonSerializer) Valid(data []byte) bool {
	return json.Valid(data)
}

func New() serializer.JSONSerializer {
	return &stdjsonSerializer{}
}
