package model

import "github.com/tidwall/gjson"

// JSON wraps an untyped payload (json_metadata, custom_json.json) the way
// spec design note §9 asks for: a tolerant decode where every field access
// is guarded and any shape mismatch degrades to a zero value rather than
// propagating a failure. Built on gjson so no intermediate map[string]any
// allocation is needed for the common case of reading one or two fields out
// of a much larger payload.
type JSON struct {
	raw   string
	valid bool
}

// ParseJSON wraps s. Invalid JSON still returns a usable JSON whose
// accessors all report absence; it never returns an error.
func ParseJSON(s string) JSON {
	if s == "" || !gjson.Valid(s) {
		return JSON{}
	}
	return JSON{raw: s, valid: true}
}

// Exists reports whether path is present in the payload.
func (j JSON) Exists(path string) bool {
	if !j.valid {
		return false
	}
	return gjson.Get(j.raw, path).Exists()
}

// String returns the string at path, or "" if absent. Non-string values come
// back in text form: numbers and booleans formatted, objects and arrays as
// their raw JSON.
func (j JSON) String(path string) string {
	if !j.valid {
		return ""
	}
	return gjson.Get(j.raw, path).String()
}

// Array returns the elements at path, or nil if absent or not an array.
func (j JSON) Array(path string) []gjson.Result {
	if !j.valid {
		return nil
	}
	r := gjson.Get(j.raw, path)
	if !r.IsArray() {
		return nil
	}
	return r.Array()
}

// IsObject reports whether the top-level payload is a JSON object.
func (j JSON) IsObject() bool {
	return j.valid && gjson.Parse(j.raw).IsObject()
}

// IsArray reports whether the top-level payload is a JSON array.
func (j JSON) IsArray() bool {
	return j.valid && gjson.Parse(j.raw).IsArray()
}

// Len returns the number of top-level elements if the payload is an
// array, or 0 otherwise (absent, invalid, or a scalar/object payload).
func (j JSON) Len() int {
	if !j.IsArray() {
		return 0
	}
	return len(gjson.Parse(j.raw).Array())
}

// Index returns the i-th top-level array element as its own JSON, or a
// zero-value JSON if out of range or the payload is invalid. A non-array
// payload is treated as a one-element array holding itself, so Index(0)
// returns the payload.
func (j JSON) Index(i int) JSON {
	if !j.valid {
		return JSON{}
	}
	arr := gjson.Parse(j.raw).Array()
	if i < 0 || i >= len(arr) {
		return JSON{}
	}
	return JSON{raw: arr[i].Raw, valid: true}
}

// Raw returns the underlying JSON text, or "" if never set.
func (j JSON) Raw() string {
	return j.raw
}
