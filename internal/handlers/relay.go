package handlers

import (
	"context"
	"encoding/json"
	"errors"
	"io"
	"net/http"
	"strings"
	"time"
	"unicode/utf8"

	"agency-backend/internal/logger"
	"agency-backend/internal/models"
	"agency-backend/internal/services"
)

// maxBodyBytes bounds how much of a request body is read. Anything larger
// cannot be a sensible chat message.
const maxBodyBytes = 1 << 20

// blankChars is the set trimmed from bodies and messages: ASCII whitespace
// plus NUL. Unicode spaces such as NBSP or U+3000 are message content.
const blankChars = " \t\n\r\x00\x0b"

type replier interface {
	Reply(ctx context.Context, message string) (string, error)
}

type relayObserver interface {
	ObserveRelay(result string, d time.Duration)
}

type RelayHandler struct {
	gemini  replier
	metrics relayObserver
}

func NewRelayHandler(gemini replier, metrics relayObserver) *RelayHandler {
	return &RelayHandler{
		gemini:  gemini,
		metrics: metrics,
	}
}

// Relay forwards one chat message from the site widget to Gemini.
// It handles every method itself so that non-POST requests still get the
// JSON error body.
func (h *RelayHandler) Relay(w http.ResponseWriter, r *http.Request) {
	start := time.Now()
	setCommonHeaders(w)

	if r.Method == http.MethodOptions {
		w.Header().Set("Access-Control-Allow-Methods", "POST, OPTIONS")
		w.Header().Set("Access-Control-Allow-Headers", "Content-Type")
		w.WriteHeader(http.StatusNoContent)
		return
	}

	if r.Method != http.MethodPost {
		h.fail(w, r, start, &services.RelayError{Kind: models.ErrMethodNotAllowed})
		return
	}

	raw, err := io.ReadAll(http.MaxBytesReader(w, r.Body, maxBodyBytes))
	if err != nil {
		var tooLarge *http.MaxBytesError
		if errors.As(err, &tooLarge) {
			h.fail(w, r, start, &services.RelayError{Kind: models.ErrMessageTooLong, Err: err})
			return
		}
		h.fail(w, r, start, &services.RelayError{Kind: models.ErrBadRequest, Err: err})
		return
	}

	if strings.Trim(string(raw), blankChars) == "" {
		h.fail(w, r, start, &services.RelayError{Kind: models.ErrBadRequest})
		return
	}

	var fields map[string]interface{}
	if err := json.Unmarshal(raw, &fields); err != nil || fields == nil {
		h.fail(w, r, start, &services.RelayError{Kind: models.ErrBadJSON, Err: err})
		return
	}

	req := models.ChatRequest{Message: fields["message"]}
	message := strings.Trim(req.Text(), blankChars)

	if message == "" {
		h.fail(w, r, start, &services.RelayError{Kind: models.ErrEmptyMessage})
		return
	}

	if utf8.RuneCountInString(message) > models.MaxMessageRunes {
		h.fail(w, r, start, &services.RelayError{Kind: models.ErrMessageTooLong})
		return
	}

	reply, err := h.gemini.Reply(r.Context(), message)
	if err != nil {
		var relayErr *services.RelayError
		if !errors.As(err, &relayErr) {
			relayErr = &services.RelayError{Kind: models.ErrUpstream, Details: err.Error(), Err: err}
		}
		h.fail(w, r, start, relayErr)
		return
	}

	h.observe("ok", start)
	logger.Log.Infow("relay ok",
		"request_id", r.Header.Get("X-Request-ID"),
		"message_runes", utf8.RuneCountInString(message),
		"reply_runes", utf8.RuneCountInString(reply),
		"duration", time.Since(start),
	)

	writeJSON(w, http.StatusOK, models.NewChatReply(reply))
}

func (h *RelayHandler) fail(w http.ResponseWriter, r *http.Request, start time.Time, relayErr *services.RelayError) {
	status := relayErr.Kind.HTTPStatus()
	h.observe(string(relayErr.Kind), start)

	fields := []interface{}{
		"kind", relayErr.Kind,
		"status", status,
		"request_id", r.Header.Get("X-Request-ID"),
		"duration", time.Since(start),
	}
	if relayErr.HTTPCode != 0 {
		fields = append(fields, "upstream_status", relayErr.HTTPCode)
	}
	if relayErr.Err != nil {
		fields = append(fields, "error", relayErr.Err)
	}

	switch {
	case status >= http.StatusInternalServerError:
		logger.Log.Errorw("relay failed", fields...)
	default:
		logger.Log.Infow("relay rejected", fields...)
	}

	writeJSON(w, status, relayErr.ChatError())
}

func (h *RelayHandler) observe(result string, start time.Time) {
	if h.metrics != nil {
		h.metrics.ObserveRelay(result, time.Since(start))
	}
}
