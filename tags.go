package jsonwalk

import (
	"strings"

	mapset "github.com/deckarep/golang-set/v2"
)

const tagName = "json"

type tagInfo struct {
	name      string
	omitEmpty bool
	readOnly  bool
	skip      bool
}

// parseTag parses `json:"name,omitempty,readonly"`. A tag of "-" excludes
// the member. Unknown options are ignored.
func parseTag(tag string) tagInfo {
	if tag == "-" {
		return tagInfo{skip: true}
	}
	parts := strings.Split(tag, ",")
	opts := mapset.NewThreadUnsafeSet(parts[1:]...)
	return tagInfo{
		name:      parts[0],
		omitEmpty: opts.Contains("omitempty"),
		readOnly:  opts.Contains("readonly"),
	}
}
