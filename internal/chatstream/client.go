package chatstream

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"log"
	"net/http"
	"sync/atomic"
	"time"

	"github.com/google/uuid"

	"bokeeb.kz/site-backend/internal/core"
)

var (
	ErrBusy        = errors.New("a chat turn is already in flight")
	ErrRateLimited = errors.New(core.MsgTooManyRequests)
)

// Client drives one chat conversation against the proxy. A client keeps
// the message history for its session and allows a single in-flight
// turn at a time, mirroring the widget's disabled input while streaming.
type Client struct {
	httpClient *http.Client
	baseURL    string
	apiKey     string
	language   core.Language

	sessionID string
	messages  []core.ChatMessage
	inFlight  atomic.Bool
}

// NewClient creates a consumer for the API at baseURL (e.g.
// "https://host/api"). The session identity lives exactly as long as
// the client value, like a browser tab session.
func NewClient(baseURL, apiKey string, language core.Language) *Client {
	return &Client{
		httpClient: &http.Client{},
		baseURL:    baseURL,
		apiKey:     apiKey,
		language:   language,
		sessionID:  newSessionID(),
	}
}

func newSessionID() string {
	return fmt.Sprintf("session_%d_%s", time.Now().UnixMilli(), uuid.NewString()[:8])
}

func (c *Client) SessionID() string {
	return c.sessionID
}

// Send submits text as the next user message and streams the assistant
// reply, invoking onDelta for each content fragment as it arrives. It
// returns the complete reply once the stream is drained. On success the
// exchange is reported to the log endpoint in the background; on any
// failure the turn leaves no trace in the history.
func (c *Client) Send(ctx context.Context, text string, onDelta func(string)) (string, error) {
	if !c.inFlight.CompareAndSwap(false, true) {
		return "", ErrBusy
	}
	defer c.inFlight.Store(false)

	userMsg := core.ChatMessage{Role: "user", Content: text}

	payload, err := json.Marshal(core.ChatRequest{
		Messages:  append(append([]core.ChatMessage{}, c.messages...), userMsg),
		SessionID: c.sessionID,
		Language:  string(c.language),
	})
	if err != nil {
		return "", fmt.Errorf("failed to marshal chat request: %w", err)
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodPost, c.baseURL+"/chat", bytes.NewReader(payload))
	if err != nil {
		return "", fmt.Errorf("failed to build chat request: %w", err)
	}
	req.Header.Set("Content-Type", "application/json")
	req.Header.Set("Authorization", "Bearer "+c.apiKey)

	resp, err := c.httpClient.Do(req)
	if err != nil {
		return "", fmt.Errorf("chat request failed: %w", err)
	}
	defer resp.Body.Close()

	if resp.StatusCode == http.StatusTooManyRequests {
		return "", ErrRateLimited
	}
	if resp.StatusCode != http.StatusOK {
		return "", fmt.Errorf("chat request rejected: %s", readErrorMessage(resp.Body, resp.StatusCode))
	}

	parser := NewParser(onDelta)
	buf := make([]byte, 4096)
	for {
		n, err := resp.Body.Read(buf)
		if n > 0 {
			parser.Feed(string(buf[:n]))
		}
		if err == io.EOF {
			break
		}
		if err != nil {
			return "", fmt.Errorf("chat stream read failed: %w", err)
		}
	}

	answer := parser.Text()
	if answer == "" {
		return "", errors.New("chat stream produced no content")
	}

	c.messages = append(c.messages, userMsg, core.ChatMessage{Role: "assistant", Content: answer})

	// Best-effort logging after the terminal read so the logged answer
	// is never a partial prefix. Failures must not affect the caller.
	go c.logExchange(text, answer)

	return answer, nil
}

func (c *Client) logExchange(question, answer string) {
	payload, err := json.Marshal(map[string]string{
		"sessionId": c.sessionID,
		"language":  string(c.language),
		"question":  question,
		"answer":    answer,
	})
	if err != nil {
		log.Printf("Failed to marshal chat log payload: %v", err)
		return
	}

	req, err := http.NewRequest(http.MethodPost, c.baseURL+"/log-chat", bytes.NewReader(payload))
	if err != nil {
		log.Printf("Failed to build chat log request: %v", err)
		return
	}
	req.Header.Set("Content-Type", "application/json")
	req.Header.Set("Authorization", "Bearer "+c.apiKey)

	resp, err := c.httpClient.Do(req)
	if err != nil {
		log.Printf("Failed to log chat exchange: %v", err)
		return
	}
	resp.Body.Close()
}

func readErrorMessage(body io.Reader, status int) string {
	var payload struct {
		Error string `json:"error"`
	}
	if err := json.NewDecoder(io.LimitReader(body, 4096)).Decode(&payload); err == nil && payload.Error != "" {
		return payload.Error
	}
	return fmt.Sprintf("status %d", status)
}
