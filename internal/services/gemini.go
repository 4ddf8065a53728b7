package services

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/go-resty/resty/v2"

	"agency-backend/internal/logger"
	"agency-backend/internal/models"
)

const (
	DefaultGeminiBaseURL = "https://generativelanguage.googleapis.com"
	DefaultGeminiModel   = "gemini-1.5-flash"
	DefaultGeminiTimeout = 30 * time.Second

	generatePath = "/v1beta/models/{model}:generateContent"
	apiKeyHeader = "x-goog-api-key"
)

const systemInstruction = "Eres un asistente de una agencia de IA. Responde en español, claro y profesional. Da respuestas concisas, con pasos accionables. Si falta información, pregunta lo mínimo necesario."

// Generation parameters sent with every request.
const (
	temperature     = 0.5
	maxOutputTokens = 500
	topP            = 0.9
)

type GeminiOptions struct {
	BaseURL string
	Model   string
	Timeout time.Duration
}

// GeminiService relays one message to the Gemini generateContent endpoint.
// It keeps no state between calls and never retries.
type GeminiService struct {
	client *resty.Client
	apiKey string
	model  string
}

func NewGeminiService(apiKey string, opts GeminiOptions) *GeminiService {
	if opts.BaseURL == "" {
		opts.BaseURL = DefaultGeminiBaseURL
	}
	if opts.Model == "" {
		opts.Model = DefaultGeminiModel
	}
	if opts.Timeout <= 0 {
		opts.Timeout = DefaultGeminiTimeout
	}

	client := resty.New().
		SetBaseURL(strings.TrimRight(opts.BaseURL, "/")).
		SetTimeout(opts.Timeout).
		SetRetryCount(0).
		SetLogger(restyLogger{}).
		SetHeader("Content-Type", "application/json").
		SetHeader("User-Agent", "agency-backend/1.0")

	return &GeminiService{
		client: client,
		apiKey: strings.TrimSpace(apiKey),
		model:  opts.Model,
	}
}

// HasAPIKey reports whether a credential was configured.
func (s *GeminiService) HasAPIKey() bool {
	return s.apiKey != ""
}

// Reply sends message to Gemini and returns the extracted reply text.
// Every failure is a *RelayError. The call is detached from ctx cancellation
// and bounded only by the client timeout.
func (s *GeminiService) Reply(ctx context.Context, message string) (string, error) {
	if !s.HasAPIKey() {
		return "", &RelayError{Kind: models.ErrMissingAPIKey}
	}

	payload, err := json.Marshal(buildRequest(message))
	if err != nil {
		return "", &RelayError{Kind: models.ErrJSONEncodeFailed, Err: err}
	}

	start := time.Now()
	resp, err := s.client.R().
		SetContext(context.WithoutCancel(ctx)).
		SetHeader(apiKeyHeader, s.apiKey).
		SetPathParam("model", s.model).
		SetBody(payload).
		Post(generatePath)
	if err != nil {
		return "", &RelayError{Kind: models.ErrUpstream, Details: err.Error(), Err: err}
	}

	logger.Log.Debugw("gemini responded",
		"status", resp.StatusCode(),
		"bytes", len(resp.Body()),
		"duration", time.Since(start),
	)

	return parseResponse(resp.StatusCode(), resp.Body())
}

// ─── Wire types ───

type generateContentRequest struct {
	Contents         []requestContent `json:"contents"`
	GenerationConfig generationConfig `json:"generationConfig"`
}

type requestContent struct {
	Role  string        `json:"role"`
	Parts []requestPart `json:"parts"`
}

type requestPart struct {
	Text string `json:"text"`
}

type generationConfig struct {
	Temperature     float64 `json:"temperature"`
	MaxOutputTokens int     `json:"maxOutputTokens"`
	TopP            float64 `json:"topP"`
}

// Every level is optional; shapes that don't match are dropped, not fatal.
type generateContentResponse struct {
	Candidates []candidate `json:"candidates"`
}

type candidate struct {
	Content      *candidateContent `json:"content"`
	FinishReason string            `json:"finishReason"`
}

type candidateContent struct {
	Parts []responsePart `json:"parts"`
}

type responsePart struct {
	Text *string `json:"text"`
}

func buildRequest(message string) generateContentRequest {
	return generateContentRequest{
		Contents: []requestContent{
			{
				Role:  "user",
				Parts: []requestPart{{Text: systemInstruction + "\n\nUsuario: " + message}},
			},
		},
		GenerationConfig: generationConfig{
			Temperature:     temperature,
			MaxOutputTokens: maxOutputTokens,
			TopP:            topP,
		},
	}
}

// parseResponse classifies an upstream answer. Order matters: blank body,
// then JSON validity, then status code, then text extraction.
func parseResponse(status int, body []byte) (string, error) {
	if strings.TrimSpace(string(body)) == "" {
		return "", &RelayError{Kind: models.ErrEmptyUpstreamResponse, HTTPCode: status}
	}

	var decoded interface{}
	if err := json.Unmarshal(body, &decoded); err != nil {
		return "", &RelayError{Kind: models.ErrBadUpstreamJSON, HTTPCode: status, Err: err}
	}
	switch decoded.(type) {
	case map[string]interface{}, []interface{}:
	default:
		return "", &RelayError{
			Kind:     models.ErrBadUpstreamJSON,
			HTTPCode: status,
			Err:      fmt.Errorf("upstream body is a JSON %T, not an object", decoded),
		}
	}

	if status < 200 || status >= 300 {
		return "", &RelayError{Kind: models.ErrUpstreamHTTP, HTTPCode: status, Upstream: decoded}
	}

	var parsed generateContentResponse
	if err := json.Unmarshal(body, &parsed); err != nil {
		var typeErr *json.UnmarshalTypeError
		if !errors.As(err, &typeErr) {
			return "", &RelayError{Kind: models.ErrBadUpstreamJSON, HTTPCode: status, Err: err}
		}
		logger.Log.Warnw("unexpected gemini response shape", "error", err)
	}

	text := extractText(&parsed)
	if text == "" {
		if len(parsed.Candidates) > 0 {
			logger.Log.Warnw("gemini returned no text, using fallback",
				"finish_reason", parsed.Candidates[0].FinishReason)
		} else {
			logger.Log.Warn("gemini returned no candidates, using fallback")
		}
		text = models.FallbackReply
	}

	return text, nil
}

// extractText joins the text parts of the first candidate with newlines.
func extractText(resp *generateContentResponse) string {
	if len(resp.Candidates) == 0 || resp.Candidates[0].Content == nil {
		return ""
	}

	var texts []string
	for _, part := range resp.Candidates[0].Content.Parts {
		if part.Text != nil {
			texts = append(texts, *part.Text)
		}
	}
	return strings.TrimSpace(strings.Join(texts, "\n"))
}

// restyLogger routes resty's internal messages into zap.
type restyLogger struct{}

func (restyLogger) Errorf(format string, v ...interface{}) {
	logger.Log.Errorf("resty: "+format, v...)
}

func (restyLogger) Warnf(format string, v ...interface{}) {
	logger.Log.Warnf("resty: "+format, v...)
}

func (restyLogger) Debugf(format string, v ...interface{}) {
	logger.Log.Debugf("resty: "+format, v...)
}
