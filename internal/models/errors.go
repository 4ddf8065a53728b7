package models

import "net/http"

// ErrorKind is the stable, client-facing error taxonomy of the relay.
type ErrorKind string

const (
	ErrMethodNotAllowed      ErrorKind = "method_not_allowed"
	ErrBadRequest            ErrorKind = "bad_request"
	ErrBadJSON               ErrorKind = "bad_json"
	ErrEmptyMessage          ErrorKind = "empty_message"
	ErrMessageTooLong        ErrorKind = "message_too_long"
	ErrMissingAPIKey         ErrorKind = "missing_api_key"
	ErrJSONEncodeFailed      ErrorKind = "json_encode_failed"
	ErrUpstream              ErrorKind = "upstream_error"
	ErrEmptyUpstreamResponse ErrorKind = "empty_upstream_response"
	ErrBadUpstreamJSON       ErrorKind = "bad_upstream_json"
	ErrUpstreamHTTP          ErrorKind = "upstream_http_error"

	// Produced by middleware, never by the relay itself.
	ErrRateLimited ErrorKind = "rate_limited"
	ErrInternal    ErrorKind = "internal_error"
)

type kindInfo struct {
	status  int
	message string
}

var kinds = map[ErrorKind]kindInfo{
	ErrMethodNotAllowed:      {http.StatusMethodNotAllowed, "Usa POST."},
	ErrBadRequest:            {http.StatusBadRequest, "Body vacío."},
	ErrBadJSON:               {http.StatusBadRequest, "JSON inválido."},
	ErrEmptyMessage:          {http.StatusBadRequest, "Escribe un mensaje."},
	ErrMessageTooLong:        {http.StatusRequestEntityTooLarge, "Mensaje demasiado largo."},
	ErrMissingAPIKey:         {http.StatusInternalServerError, "Falta configurar GEMINI_API_KEY en el servidor."},
	ErrJSONEncodeFailed:      {http.StatusInternalServerError, "No se pudo construir la solicitud."},
	ErrUpstream:              {http.StatusBadGateway, "Error conectando a Gemini."},
	ErrEmptyUpstreamResponse: {http.StatusBadGateway, "Respuesta vacía del proveedor."},
	ErrBadUpstreamJSON:       {http.StatusBadGateway, "JSON inválido del proveedor."},
	ErrUpstreamHTTP:          {http.StatusBadGateway, "Gemini respondió con error."},
	ErrRateLimited:           {http.StatusTooManyRequests, "Demasiadas solicitudes. Intenta de nuevo en un momento."},
	ErrInternal:              {http.StatusInternalServerError, "Error interno del servidor."},
}

// HTTPStatus maps the kind to the status code the endpoint responds with.
// Unknown kinds map to 500.
func (k ErrorKind) HTTPStatus() int {
	if info, ok := kinds[k]; ok {
		return info.status
	}
	return http.StatusInternalServerError
}

// Message is the fixed Spanish text shown to site visitors.
func (k ErrorKind) Message() string {
	if info, ok := kinds[k]; ok {
		return info.message
	}
	return kinds[ErrInternal].message
}
