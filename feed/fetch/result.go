package fetch

import (
	"bytes"
	"encoding/json"
	"io"
	"strconv"
)

// ErrorKey is the reserved key of the placeholder written for a failed fetch
const ErrorKey = "_error"

// Result is the outcome of a single fetch: a JSON value or an error, never both
type Result struct {
	// Value is the response body exactly as received
	Value json.RawMessage

	// Err is set when the fetch failed
	Err error
}

// OK returns a successful Result
func OK(v json.RawMessage) Result {
	return Result{Value: v}
}

// Failed returns a Result carrying err
func Failed(err error) Result {
	return Result{Err: err}
}

// OK reports whether the fetch succeeded
func (r Result) OK() bool {
	return r.Err == nil
}

// IsNull reports whether the fetched document is the JSON literal null
func (r Result) IsNull() bool {
	return r.OK() && bytes.Equal(bytes.TrimSpace(r.Value), []byte("null"))
}

// MarshalJSON writes the value verbatim, or {"_error": "<text>"} for a failure
func (r Result) MarshalJSON() ([]byte, error) {
	if r.Err != nil {
		return MarshalUnescaped(map[string]string{ErrorKey: Message(r.Err)})
	}
	if len(r.Value) == 0 {
		return []byte("null"), nil
	}
	return r.Value, nil
}

// MarshalUnescaped encodes v compactly without escaping <, > and &
func MarshalUnescaped(v any) ([]byte, error) {
	var buf bytes.Buffer
	enc := json.NewEncoder(&buf)
	enc.SetEscapeHTML(false)
	if err := enc.Encode(v); err != nil {
		return nil, err
	}
	return bytes.TrimSuffix(buf.Bytes(), []byte("\n")), nil
}

type frame struct {
	object bool
	n      int
}

// Unescape re-encodes a JSON document compactly with string escapes such as
// \u00e9 or \u003c written as literal characters. Key order and number
// literals are kept as they appear in doc.
func Unescape(doc []byte) ([]byte, error) {
	dec := json.NewDecoder(bytes.NewReader(doc))
	dec.UseNumber()

	var (
		buf   bytes.Buffer
		stack []frame
	)
	for {
		tok, err := dec.Token()
		if err == io.EOF {
			break
		}
		if err != nil {
			return nil, err
		}

		if d, ok := tok.(json.Delim); ok && (d == '}' || d == ']') {
			stack = stack[:len(stack)-1]
			buf.WriteRune(rune(d))
			continue
		}
		if len(stack) > 0 {
			top := &stack[len(stack)-1]
			switch {
			case top.object && top.n%2 == 1:
				buf.WriteByte(':')
			case top.n > 0:
				buf.WriteByte(',')
			}
			top.n++
		}

		switch v := tok.(type) {
		case json.Delim:
			buf.WriteRune(rune(v))
			stack = append(stack, frame{object: v == '{'})
		case string:
			b, err := MarshalUnescaped(v)
			if err != nil {
				return nil, err
			}
			buf.Write(b)
		case json.Number:
			buf.WriteString(v.String())
		case bool:
			buf.WriteString(strconv.FormatBool(v))
		case nil:
			buf.WriteString("null")
		}
	}
	if len(stack) > 0 {
		return nil, io.ErrUnexpectedEOF
	}
	return buf.Bytes(), nil
}
