// Package token implements a resumable JSON tokenizer and a streaming JSON
// token writer.
//
// A Reader is created over one block of input. A token that does not fit in
// the block is left unconsumed: Read returns false with a nil error, and the
// caller continues with a new Reader built over the unconsumed tail plus more
// input and the State returned by the previous Reader.
package token

type Kind uint8

const (
	None Kind = iota
	StartObject
	EndObject
	StartArray
	EndArray
	PropertyName
	String
	Number
	True
	False
	Null
)

func (k Kind) String() string {
	switch k {
	case None:
		return "none"
	case StartObject:
		return "start-object"
	case EndObject:
		return "end-object"
	case StartArray:
		return "start-array"
	case EndArray:
		return "end-array"
	case PropertyName:
		return "property-name"
	case String:
		return "string"
	case Number:
		return "number"
	case True:
		return "true"
	case False:
		return "false"
	case Null:
		return "null"
	}
	return "<invalid>"
}

// IsScalar reports whether k is a complete value on its own.
func (k Kind) IsScalar() bool {
	switch k {
	case String, Number, True, False, Null:
		return true
	}
	return false
}

// IsStart reports whether k opens a container.
func (k Kind) IsStart() bool { return k == StartObject || k == StartArray }

// IsEnd reports whether k closes a container.
func (k Kind) IsEnd() bool { return k == EndObject || k == EndArray }
