package oracle

import (
	"encoding/json"
	"strings"
)

// DecodeObject decodes the JSON object found between the first '{' and the
// last '}' of reply. Prose around the object is ignored. ok is false when no
// such slice exists or it does not decode; callers then apply their default.
func DecodeObject[T any](reply string) (T, bool) {
	var out T
	raw, found := slice(reply, '{', '}')
	if !found {
		return out, false
	}
	if err := json.Unmarshal([]byte(raw), &out); err != nil {
		var zero T
		return zero, false
	}
	return out, true
}

// DecodeArray is DecodeObject for a top-level JSON array.
func DecodeArray[T any](reply string) ([]T, bool) {
	raw, found := slice(reply, '[', ']')
	if !found {
		return nil, false
	}
	var out []T
	if err := json.Unmarshal([]byte(raw), &out); err != nil {
		return nil, false
	}
	return out, true
}

// HasObject reports whether reply contains a '{' ... '}' slice at all.
// Used to tell "no JSON" apart from "malformed JSON".
func HasObject(reply string) bool {
	_, found := slice(reply, '{', '}')
	return found
}

func slice(s string, open, close byte) (string, bool) {
	start := strings.IndexByte(s, open)
	end := strings.LastIndexByte(s, close)
	if start == -1 || end <= start {
		return "", false
	}
	return s[start : end+1], true
}
