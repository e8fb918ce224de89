package submit

import (
	"bytes"
	"encoding/json"
	"strconv"
)

// Response is the decoded body of the bulk upload endpoint.
//
// Errors is kept raw: the bulk endpoint sends a list of row failures while
// other endpoints of the catalog server send a field->message object.
type Response struct {
	OK      bool            `json:"ok"`
	Created int             `json:"created"`
	Failed  int             `json:"failed"`
	Errors  json.RawMessage `json:"errors,omitempty"`
	Error   string          `json:"error,omitempty"`
}

// RowError is one rejected row reported by the server.
type RowError struct {
	Row any `json:"row"`
	Err any `json:"error"`
}

// Label renders the row reference, "?" when the server sent none.
func (e RowError) Label() string {
	if s := scalarText(e.Row); s != "" {
		return s
	}
	return "?"
}

// Message renders the failure text, "Error" when the server sent none.
func (e RowError) Message() string {
	if s := scalarText(e.Err); s != "" {
		return s
	}
	return "Error"
}

// RowErrors decodes Errors when it is a JSON array. The second result is
// false when Errors is absent or has another shape.
func (r Response) RowErrors() ([]RowError, bool) {
	trimmed := bytes.TrimSpace(r.Errors)
	if len(trimmed) == 0 || trimmed[0] != '[' {
		return nil, false
	}
	var out []RowError
	if err := json.Unmarshal(trimmed, &out); err != nil {
		return nil, false
	}
	return out, true
}

// HasErrors reports whether the errors member is present and not null.
func (r Response) HasErrors() bool {
	trimmed := bytes.TrimSpace(r.Errors)
	return len(trimmed) > 0 && !bytes.Equal(trimmed, []byte("null"))
}

// ErrorsText pretty-prints a non-list errors member.
func (r Response) ErrorsText() string {
	var buf bytes.Buffer
	if err := json.Indent(&buf, bytes.TrimSpace(r.Errors), "", "  "); err != nil {
		return string(r.Errors)
	}
	return buf.String()
}

// scalarText renders a decoded JSON value, returning "" for values that
// carry nothing to show (null, false, zero, empty string).
func scalarText(v any) string {
	switch x := v.(type) {
	case nil:
		return ""
	case string:
		return x
	case float64:
		if x == 0 {
			return ""
		}
		return strconv.FormatFloat(x, 'f', -1, 64)
	case bool:
		if !x {
			return ""
		}
		return "true"
	default:
		b, err := json.Marshal(x)
		if err != nil {
			return ""
		}
		return string(b)
	}
}
