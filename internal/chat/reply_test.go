package chat

import (
	"errors"
	"testing"
)

func TestResolveReply(t *testing.T) {
	tests := []struct {
		name     string
		status   int
		body     string
		err      error
		expected string
	}{
		{"reply text", 200, `{"reply":"Hola"}`, nil, "Hola"},
		{"created counts as success", 201, `{"reply":"Hecho"}`, nil, "Hecho"},
		{"missing reply", 200, `{}`, nil, DoneReply},
		{"empty reply", 200, `{"reply":""}`, nil, DoneReply},
		{"null reply", 200, `{"reply":null}`, nil, DoneReply},
		{"numeric reply", 200, `{"reply":42}`, nil, "42"},
		{"malformed success body", 200, `<html>`, nil, DoneReply},
		{"array success body", 200, `["Hola"]`, nil, DoneReply},
		{"empty success body", 204, ``, nil, DoneReply},
		{"error field", 500, `{"error":"boom"}`, nil, "boom"},
		{"error wins over detail", 400, `{"error":"first","detail":"second"}`, nil, "first"},
		{"detail fallback", 422, `{"detail":"campo requerido"}`, nil, "campo requerido"},
		{"empty error falls to detail", 400, `{"error":"","detail":"d"}`, nil, "d"},
		{"error envelope", 429, `{"error":{"code":"RATE_LIMITED","message":"Demasiadas solicitudes"}}`, nil, "Demasiadas solicitudes"},
		{"empty body", 500, ``, nil, "Error 500"},
		{"malformed error body", 502, `Bad Gateway`, nil, "Error 502"},
		{"reply on error status ignored", 503, `{"reply":"Hola"}`, nil, "Error 503"},
		{"redirect status is not success", 302, `{}`, nil, "Error 302"},
		{"network failure", 0, ``, errors.New("connection refused"), NetworkErrorReply},
	}

	for _, tc := range tests {
		t.Run(tc.name, func(t *testing.T) {
			got := ResolveReply(tc.status, []byte(tc.body), tc.err)
			if got != tc.expected {
				t.Errorf("Expected %q, got %q", tc.expected, got)
			}
		})
	}
}
