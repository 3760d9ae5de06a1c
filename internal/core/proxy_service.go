package core

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"log"
	"net/http"
	"strings"
)

const (
	// MaxMessageLength caps a single user message; longer input is spam
	// protection territory, not conversation.
	MaxMessageLength = 1000

	// historyLimit bounds the context forwarded upstream to the most
	// recent messages, keeping token cost in check.
	historyLimit = 10

	maxCompletionTokens = 500
)

// Localized user-facing error messages. The widget-facing errors stay in
// Russian, matching the site's primary language.
const (
	MsgTooManyRequests   = "Слишком много запросов. Пожалуйста, подождите минуту."
	MsgUpstreamRateLimit = "Слишком много запросов к AI. Попробуйте позже."
	MsgUnavailable       = "Сервис временно недоступен."
	MsgMessageTooLong    = "Сообщение слишком длинное. Максимум 1000 символов."
	MsgMessagesRequired  = "Messages are required"
	MsgContentRequired   = "Message content is required"
	MsgServiceError      = "AI service error"
	MsgNotConfigured     = "AI service is not configured"
)

type ChatMessage struct {
	Role    string `json:"role"` // "user" or "assistant"
	Content string `json:"content"`
}

type ChatRequest struct {
	Messages  []ChatMessage `json:"messages"`
	SessionID string        `json:"sessionId"`
	Language  string        `json:"language,omitempty"`
}

// ProxyError is a chat-proxy failure already translated to the status
// and message the caller should see.
type ProxyError struct {
	Status  int
	Message string
}

func (e *ProxyError) Error() string {
	return fmt.Sprintf("chat proxy error (status %d): %s", e.Status, e.Message)
}

// ChatProxy validates chat requests, augments them with the consultant
// persona, and opens a streaming completion against the upstream gateway.
type ChatProxy struct {
	client     *http.Client
	gatewayURL string
	apiKey     string
	model      string
}

func NewChatProxy(gatewayURL, apiKey, model string) *ChatProxy {
	return &ChatProxy{
		// No overall timeout: completions stream for as long as the
		// model generates. Cancellation comes from the request context.
		client:     &http.Client{},
		gatewayURL: gatewayURL,
		apiKey:     apiKey,
		model:      model,
	}
}

// Validate applies the fail-fast input checks: a non-empty message list
// whose final entry carries non-blank content of at most
// MaxMessageLength characters.
func (p *ChatProxy) Validate(req *ChatRequest) *ProxyError {
	if len(req.Messages) == 0 {
		return &ProxyError{Status: http.StatusBadRequest, Message: MsgMessagesRequired}
	}

	last := req.Messages[len(req.Messages)-1]
	if strings.TrimSpace(last.Content) == "" {
		return &ProxyError{Status: http.StatusBadRequest, Message: MsgContentRequired}
	}
	if len([]rune(last.Content)) > MaxMessageLength {
		return &ProxyError{Status: http.StatusBadRequest, Message: MsgMessageTooLong}
	}
	return nil
}

type upstreamMessage struct {
	Role    string `json:"role"`
	Content string `json:"content"`
}

type upstreamRequest struct {
	Model     string            `json:"model"`
	Messages  []upstreamMessage `json:"messages"`
	Stream    bool              `json:"stream"`
	MaxTokens int               `json:"max_tokens"`
}

// Open forwards the conversation to the gateway and returns the raw
// event-stream body for relaying. Upstream failures come back already
// translated; the body of a non-success upstream response is logged
// here and never reaches the caller.
func (p *ChatProxy) Open(ctx context.Context, req *ChatRequest) (io.ReadCloser, *ProxyError) {
	if p.apiKey == "" {
		log.Println("AI gateway API key is not configured")
		return nil, &ProxyError{Status: http.StatusInternalServerError, Message: MsgNotConfigured}
	}

	lang := ParseLanguage(req.Language)

	history := req.Messages
	if len(history) > historyLimit {
		history = history[len(history)-historyLimit:]
	}

	messages := make([]upstreamMessage, 0, len(history)+1)
	messages = append(messages, upstreamMessage{Role: "system", Content: SystemPrompt(lang)})
	for _, m := range history {
		messages = append(messages, upstreamMessage{Role: m.Role, Content: m.Content})
	}

	payload, err := json.Marshal(upstreamRequest{
		Model:     p.model,
		Messages:  messages,
		Stream:    true,
		MaxTokens: maxCompletionTokens,
	})
	if err != nil {
		log.Printf("Failed to marshal upstream request: %v", err)
		return nil, &ProxyError{Status: http.StatusInternalServerError, Message: MsgServiceError}
	}

	httpReq, err := http.NewRequestWithContext(ctx, http.MethodPost, p.gatewayURL, bytes.NewReader(payload))
	if err != nil {
		log.Printf("Failed to build upstream request: %v", err)
		return nil, &ProxyError{Status: http.StatusInternalServerError, Message: MsgServiceError}
	}
	httpReq.Header.Set("Authorization", "Bearer "+p.apiKey)
	httpReq.Header.Set("Content-Type", "application/json")

	resp, err := p.client.Do(httpReq)
	if err != nil {
		log.Printf("AI gateway request failed: %v", err)
		return nil, &ProxyError{Status: http.StatusInternalServerError, Message: MsgServiceError}
	}

	if resp.StatusCode != http.StatusOK {
		defer resp.Body.Close()

		switch resp.StatusCode {
		case http.StatusTooManyRequests:
			return nil, &ProxyError{Status: http.StatusTooManyRequests, Message: MsgUpstreamRateLimit}
		case http.StatusPaymentRequired:
			return nil, &ProxyError{Status: http.StatusPaymentRequired, Message: MsgUnavailable}
		}

		body, _ := io.ReadAll(io.LimitReader(resp.Body, 4096))
		log.Printf("AI gateway error: status=%d body=%s", resp.StatusCode, string(body))
		return nil, &ProxyError{Status: http.StatusInternalServerError, Message: MsgServiceError}
	}

	return resp.Body, nil
}
