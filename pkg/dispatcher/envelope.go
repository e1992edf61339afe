// Package dispatcher routes invoker method names to facility operations and renders their results.
package dispatcher

import (
	"fmt"
	"strings"

	"github.com/tidwall/sjson"
)

// Envelope keys.
const (
	KeyXBRLFilePath = "xbrlFilePath"
	KeyVoucherType  = "voucherType"
	KeyContent      = "content"
	KeyError        = "error"
	KeyStatus       = "status"
	KeyMessage      = "message"
)

// Invocation is one method call read from the command line.
type Invocation struct {
	// ID correlates the diagnostic trace of a single process run.
	ID     string
	Method string
	Args   []string
}

// Envelope is a flat JSON object of string values that renders on a single line
// with its keys in insertion order.
type Envelope struct {
	keys   []string
	values map[string]string
}

// NewEnvelope creates an empty Envelope.
func NewEnvelope() *Envelope {
	return &Envelope{values: make(map[string]string)}
}

// ErrorEnvelope creates the {"error": message} envelope.
func ErrorEnvelope(message string) *Envelope {
	return NewEnvelope().Set(KeyError, message)
}

// Set adds or replaces a key. Replacing keeps the original position.
func (e *Envelope) Set(key, value string) *Envelope {
	if _, ok := e.values[key]; !ok {
		e.keys = append(e.keys, key)
	}
	e.values[key] = value
	return e
}

// Render serializes the envelope. Values are escaped with EscapeJSON.
func (e *Envelope) Render() (string, error) {
	out := "{}"
	for _, k := range e.keys {
		var err error
		out, err = sjson.SetRaw(out, k, `"`+EscapeJSON(e.values[k])+`"`)
		if err != nil {
			return "", fmt.Errorf("dispatcher:envelope - failed to set %q: %w", k, err)
		}
	}
	return out, nil
}

// EscapeJSON escapes a string for embedding between JSON double quotes.
// Backslash, double quote, CR, LF and TAB get their short escapes; any other byte
// below 0x20 is written as \u00XX. Everything else, non-ASCII included, is copied as is.
func EscapeJSON(s string) string {
	var b strings.Builder
	b.Grow(len(s) + 8)
	for i := 0; i < len(s); i++ {
		c := s[i]
		switch c {
		case '\\':
			b.WriteString(`\\`)
		case '"':
			b.WriteString(`\"`)
		case '\r':
			b.WriteString(`\r`)
		case '\n':
			b.WriteString(`\n`)
		case '\t':
			b.WriteString(`\t`)
		default:
			if c < 0x20 {
				fmt.Fprintf(&b, `\u%04x`, c)
				continue
			}
			b.WriteByte(c)
		}
	}
	return b.String()
}

func stringValue(p *string) string {
	if p == nil {
		return ""
	}
	return *p
}
