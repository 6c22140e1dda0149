// Package ai holds the result variants returned by the generative gateway.
// Their shape is owned by the gateway's response schemas, so each variant
// keeps the raw JSON and reads fields on demand instead of binding a fixed
// struct.
package ai

import (
	"encoding/json"
	"errors"
	"fmt"

	"github.com/tidwall/gjson"
)

// SchemaVersion is bumped whenever a response schema sent to the gateway
// changes shape. Stored records carry the version they were produced with.
const SchemaVersion = 1

var ErrMalformed = errors.New("malformed gateway payload")

// Payload is an opaque JSON object produced by the gateway.
type Payload json.RawMessage

func (p Payload) MarshalJSON() ([]byte, error) {
	if len(p) == 0 {
		return []byte("null"), nil
	}
	return p, nil
}

func (p *Payload) UnmarshalJSON(b []byte) error {
	*p = append((*p)[:0], b...)
	return nil
}

func (p Payload) Get(path string) gjson.Result {
	return gjson.GetBytes(p, path)
}

func (p Payload) String(path string) string {
	return p.Get(path).String()
}

func (p Payload) Float(path string) float64 {
	return p.Get(path).Float()
}

func (p Payload) Strings(path string) []string {
	res := p.Get(path)
	if !res.IsArray() {
		return nil
	}
	arr := res.Array()
	out := make([]string, 0, len(arr))
	for _, r := range arr {
		out = append(out, r.String())
	}
	return out
}

// parse checks raw is a JSON object carrying every required field.
func parse(kind string, raw []byte, required ...string) (Payload, error) {
	if !gjson.ValidBytes(raw) {
		return nil, fmt.Errorf("%s: %w: invalid json", kind, ErrMalformed)
	}
	if !gjson.ParseBytes(raw).IsObject() {
		return nil, fmt.Errorf("%s: %w: not an object", kind, ErrMalformed)
	}
	for _, field := range required {
		if !gjson.GetBytes(raw, field).Exists() {
			return nil, fmt.Errorf("%s: %w: missing %q", kind, ErrMalformed, field)
		}
	}
	out := make(Payload, len(raw))
	copy(out, raw)
	return out, nil
}
