package api

import (
	"encoding/json"
	"io"
	"log"
	"net/http"

	"bokeeb.kz/site-backend/internal/core"
	"bokeeb.kz/site-backend/internal/ratelimit"
)

// ChatHandler serves the widget-facing chat stream: rate limiting,
// validation, upstream relay, and the exchange log sink.
type ChatHandler struct {
	proxy       *core.ChatProxy
	siteService *core.SiteService
	limiter     *ratelimit.Limiter
}

func NewChatHandler(proxy *core.ChatProxy, site *core.SiteService, limiter *ratelimit.Limiter) *ChatHandler {
	return &ChatHandler{proxy: proxy, siteService: site, limiter: limiter}
}

// StreamChat relays an upstream completion stream to the caller.
// The response body is piped through verbatim: the consumer parses the
// event framing, not the proxy.
func (h *ChatHandler) StreamChat(w http.ResponseWriter, r *http.Request) {
	ip := ClientIP(r)
	if !h.limiter.Allow(ip) {
		writeJSONError(w, http.StatusTooManyRequests, core.MsgTooManyRequests)
		return
	}

	var req core.ChatRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeJSONError(w, http.StatusBadRequest, "Invalid request body")
		return
	}

	if perr := h.proxy.Validate(&req); perr != nil {
		writeJSONError(w, perr.Status, perr.Message)
		return
	}

	// The request context cancels the upstream call when the widget
	// disconnects mid-stream.
	body, perr := h.proxy.Open(r.Context(), &req)
	if perr != nil {
		writeJSONError(w, perr.Status, perr.Message)
		return
	}
	defer body.Close()

	w.Header().Set("Content-Type", "text/event-stream")
	w.Header().Set("Cache-Control", "no-cache")
	w.WriteHeader(http.StatusOK)

	if _, err := io.Copy(newFlushWriter(w), body); err != nil {
		// Headers are already out; nothing to send but a log line.
		log.Printf("Chat stream relay interrupted for %s: %v", ip, err)
	}
}

type LogChatRequest struct {
	SessionID string `json:"sessionId"`
	Language  string `json:"language"`
	Question  string `json:"question"`
	Answer    string `json:"answer"`
}

// LogChat records one finished exchange. The widget fires this after the
// stream completes and ignores the response.
func (h *ChatHandler) LogChat(w http.ResponseWriter, r *http.Request) {
	var req LogChatRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeJSONError(w, http.StatusBadRequest, "Invalid request body")
		return
	}
	if req.SessionID == "" || req.Question == "" {
		writeJSONError(w, http.StatusBadRequest, "sessionId and question are required")
		return
	}

	var ip *string
	if addr := ClientIP(r); addr != UnknownClient {
		ip = &addr
	}

	lang := string(core.ParseLanguage(req.Language))
	entry, err := h.siteService.RecordChatExchange(req.SessionID, lang, req.Question, req.Answer, ip)
	if err != nil {
		log.Printf("Failed to record chat exchange for session %s: %v", req.SessionID, err)
		writeJSONError(w, http.StatusInternalServerError, "Failed to record chat")
		return
	}

	w.WriteHeader(http.StatusCreated)
	json.NewEncoder(w).Encode(entry)
}

// flushWriter pushes relayed bytes to the client as they arrive instead
// of letting the server buffer the stream.
type flushWriter struct {
	w       io.Writer
	flusher http.Flusher
}

func newFlushWriter(w http.ResponseWriter) *flushWriter {
	fw := &flushWriter{w: w}
	if flusher, ok := w.(http.Flusher); ok {
		fw.flusher = flusher
	}
	return fw
}

func (fw *flushWriter) Write(p []byte) (int, error) {
	n, err := fw.w.Write(p)
	if fw.flusher != nil {
		fw.flusher.Flush()
	}
	return n, err
}

func writeJSONError(w http.ResponseWriter, status int, message string) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	json.NewEncoder(w).Encode(map[string]string{"error": message})
}
