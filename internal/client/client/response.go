package client

import (
	"bytes"
	"encoding/json"
	"fmt"
	"net/http"
	"strings"
)

// normalize turns a raw HTTP exchange into either a JSON body ready for
// schema decoding or an *Error. A nil body with a nil error means an
// empty success (204 or a 2xx without content).
func normalize(status int, body []byte) ([]byte, error) {
	if status == http.StatusNoContent {
		return nil, nil
	}

	text := strings.TrimSpace(string(body))
	ok := status >= 200 && status < 300

	if text == "" {
		if ok {
			return nil, nil
		}
		return nil, statusError(status, statusLine(status), nil, nil)
	}

	var parsed any
	if err := json.Unmarshal(body, &parsed); err != nil {
		if ok {
			return nil, decodeError(status, text, text, err)
		}
		return nil, statusError(status, text, text, nil)
	}

	if ok {
		return bytes.TrimSpace(body), nil
	}

	obj, _ := parsed.(map[string]any)
	return nil, statusError(status, errorMessage(status, obj), parsed, fieldErrors(obj))
}

// errorMessage picks the server-supplied message, then the generic error
// field, then the status line.
func errorMessage(status int, obj map[string]any) string {
	if s, ok := obj["message"].(string); ok && strings.TrimSpace(s) != "" {
		return s
	}
	switch e := obj["error"].(type) {
	case string:
		if strings.TrimSpace(e) != "" {
			return e
		}
	case map[string]any:
		if s, ok := e["message"].(string); ok && strings.TrimSpace(s) != "" {
			return s
		}
	}
	return statusLine(status)
}

func statusLine(status int) string {
	if text := http.StatusText(status); text != "" {
		return text
	}
	return fmt.Sprintf("request failed with status %d", status)
}

// fieldErrors understands the two shapes validation failures usually come in:
// {"errors": {"email": "taken"}} and
// {"errors": [{"path": "email", "msg": "taken"}]}.
func fieldErrors(obj map[string]any) map[string]string {
	out := map[string]string{}

	switch errs := obj["errors"].(type) {
	case map[string]any:
		for k, v := range errs {
			out[k] = fieldMessage(v)
		}
	case []any:
		for _, item := range errs {
			m, ok := item.(map[string]any)
			if !ok {
				continue
			}
			name := firstString(m, "field", "path", "param")
			if name == "" {
				continue
			}
			out[name] = firstString(m, "message", "msg")
		}
	}

	if len(out) == 0 {
		return nil
	}
	return out
}

func fieldMessage(v any) string {
	switch x := v.(type) {
	case string:
		return x
	case map[string]any:
		return firstString(x, "message", "msg")
	case []any:
		if len(x) > 0 {
			return fieldMessage(x[0])
		}
	}
	return fmt.Sprint(v)
}

func firstString(m map[string]any, keys ...string) string {
	for _, k := range keys {
		if s, ok := m[k].(string); ok && s != "" {
			return s
		}
	}
	return ""
}
