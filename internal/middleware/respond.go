package middleware

import (
	"encoding/json"
	"net/http"

	"agency-backend/internal/models"
)

// writeError writes a relay-shaped error body. The browser reads these
// cross-origin, so the open CORS header is always set.
func writeError(w http.ResponseWriter, kind models.ErrorKind) {
	body := models.NewChatError(kind)

	w.Header().Set("Content-Type", "application/json; charset=utf-8")
	w.Header().Set("X-Content-Type-Options", "nosniff")
	w.Header().Set("Access-Control-Allow-Origin", "*")
	w.WriteHeader(kind.HTTPStatus())

	enc := json.NewEncoder(w)
	enc.SetEscapeHTML(false)
	enc.Encode(body)
}
