package models

// MaxMessageRunes is the longest message accepted, counted in Unicode code points.
const MaxMessageRunes = 4000

// FallbackReply is returned when the provider answers without usable text.
const FallbackReply = "No pude generar una respuesta. Intenta de nuevo."

// ChatRequest is the payload sent to the relay endpoint.
// Only "message" is consumed; it is kept raw so non-string values can be
// treated as empty instead of failing the decode.
type ChatRequest struct {
	Message interface{} `json:"message"`
}

// Text returns the message as a string, or "" when it is not a JSON string.
func (r ChatRequest) Text() string {
	s, _ := r.Message.(string)
	return s
}

// ChatReply is the success body of the relay endpoint.
type ChatReply struct {
	OK    bool   `json:"ok"`
	Reply string `json:"reply"`
}

// ChatError is the failure body of the relay endpoint.
type ChatError struct {
	OK       bool        `json:"ok"`
	Error    ErrorKind   `json:"error"`
	Message  string      `json:"message"`
	Details  string      `json:"details,omitempty"`
	HTTPCode int         `json:"httpCode,omitempty"`
	Upstream interface{} `json:"upstream,omitempty"`
}

// NewChatReply wraps reply text in a success body.
func NewChatReply(text string) ChatReply {
	return ChatReply{OK: true, Reply: text}
}

// NewChatError builds a failure body with the kind's default message.
func NewChatError(kind ErrorKind) ChatError {
	return ChatError{
		OK:      false,
		Error:   kind,
		Message: kind.Message(),
	}
}
