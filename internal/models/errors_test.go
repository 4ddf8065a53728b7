package models

import (
	"encoding/json"
	"net/http"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestErrorKind_HTTPStatus(t *testing.T) {
	tests := []struct {
		kind ErrorKind
		want int
	}{
		{ErrMethodNotAllowed, http.StatusMethodNotAllowed},
		{ErrBadRequest, http.StatusBadRequest},
		{ErrBadJSON, http.StatusBadRequest},
		{ErrEmptyMessage, http.StatusBadRequest},
		{ErrMessageTooLong, http.StatusRequestEntityTooLarge},
		{ErrMissingAPIKey, http.StatusInternalServerError},
		{ErrJSONEncodeFailed, http.StatusInternalServerError},
		{ErrUpstream, http.StatusBadGateway},
		{ErrEmptyUpstreamResponse, http.StatusBadGateway},
		{ErrBadUpstreamJSON, http.StatusBadGateway},
		{ErrUpstreamHTTP, http.StatusBadGateway},
		{ErrRateLimited, http.StatusTooManyRequests},
		{ErrorKind("something_else"), http.StatusInternalServerError},
	}

	for _, tc := range tests {
		t.Run(string(tc.kind), func(t *testing.T) {
			assert.Equal(t, tc.want, tc.kind.HTTPStatus())
			assert.NotEmpty(t, tc.kind.Message())
		})
	}
}

func TestChatRequest_Text(t *testing.T) {
	tests := []struct {
		name string
		body string
		want string
	}{
		{"string message", `{"message":"hola"}`, "hola"},
		{"number message", `{"message":42}`, ""},
		{"null message", `{"message":null}`, ""},
		{"missing message", `{"other":"x"}`, ""},
	}

	for _, tc := range tests {
		t.Run(tc.name, func(t *testing.T) {
			var req ChatRequest
			require.NoError(t, json.Unmarshal([]byte(tc.body), &req))
			assert.Equal(t, tc.want, req.Text())
		})
	}
}

func TestChatError_OmitsEmptyDiagnostics(t *testing.T) {
	data, err := json.Marshal(NewChatError(ErrEmptyMessage))
	require.NoError(t, err)

	var body map[string]interface{}
	require.NoError(t, json.Unmarshal(data, &body))

	assert.Equal(t, false, body["ok"])
	assert.Equal(t, "empty_message", body["error"])
	assert.Equal(t, "Escribe un mensaje.", body["message"])
	assert.NotContains(t, body, "details")
	assert.NotContains(t, body, "httpCode")
	assert.NotContains(t, body, "upstream")
}
