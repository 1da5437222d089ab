//go:build amd64 && (linux || windows || darwin)

package fast

import (
	"github.com/karagenc/jsonwalk/serializer"
	"github.com/karagenc/jsonwalk/serializer/sonic"
)

func New() serializer.JSONSerializer {
	return NewWithConfig(DefaultConfig())
}

func NewWithConfig(config Config) serializer.JSONSerializer {
	return sonic.New(config.SonicConfig)
}

func Type() SerializerType {
	return SerializerTypeSonic
}
