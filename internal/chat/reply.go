package chat

import (
	"encoding/json"
	"fmt"
	"math"
	"strconv"
)

const (
	// DoneReply is shown when a successful answer carries no reply text.
	DoneReply = "Listo."
	// NetworkErrorReply is shown when the request never completed.
	NetworkErrorReply = "Error de red. Intenta de nuevo."
)

// ResolveReply turns a settled request into the assistant text to show.
// Server errors are answered in the conversation, never raised.
func ResolveReply(status int, body []byte, err error) string {
	if err != nil {
		return NetworkErrorReply
	}

	data := decodeObject(body)

	if status < 200 || status > 299 {
		if text, ok := textField(data, "error"); ok {
			return text
		}
		if text, ok := textField(data, "detail"); ok {
			return text
		}
		return fmt.Sprintf("Error %d", status)
	}

	if text, ok := textField(data, "reply"); ok {
		return text
	}
	return DoneReply
}

// decodeObject returns the body as a JSON object, or an empty one when the
// body is missing, malformed or not an object.
func decodeObject(body []byte) map[string]any {
	var data map[string]any
	if err := json.Unmarshal(body, &data); err != nil || data == nil {
		return map[string]any{}
	}
	return data
}

// textField reads a displayable value. Empty strings, zero, false and null
// count as absent. An object carrying a "message" string (the
// {"error": {"code", "message"}} envelope) yields that message.
func textField(data map[string]any, key string) (string, bool) {
	switch v := data[key].(type) {
	case string:
		return v, v != ""
	case float64:
		if v == 0 || math.IsNaN(v) {
			return "", false
		}
		return strconv.FormatFloat(v, 'f', -1, 64), true
	case bool:
		if v {
			return "true", true
		}
	case map[string]any:
		if msg, ok := v["message"].(string); ok && msg != "" {
			return msg, true
		}
	}
	return "", false
}
