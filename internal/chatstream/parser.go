// Package chatstream is the widget side of the chat protocol: it drives
// a streamed completion request, decodes the event-stream framing into
// content deltas, and reports finished exchanges to the log endpoint.
package chatstream

import (
	"encoding/json"
	"strings"
)

const (
	dataPrefix   = "data: "
	doneSentinel = "[DONE]"
)

// Parser reconstructs content deltas from the line-oriented event
// framing. Bytes arrive in arbitrary chunks; the parser consumes only
// complete lines and re-buffers any trailing partial line for the next
// feed, so a delta split across reads is never dropped or applied twice.
type Parser struct {
	buffer      string
	lastFailed  string
	accumulator strings.Builder
	onDelta     func(string)
}

// NewParser returns a parser that invokes onDelta, in arrival order,
// for every non-empty content delta. onDelta may be nil.
func NewParser(onDelta func(string)) *Parser {
	return &Parser{onDelta: onDelta}
}

type deltaEvent struct {
	Choices []struct {
		Delta struct {
			Content string `json:"content"`
		} `json:"delta"`
	} `json:"choices"`
}

// Feed appends chunk to the buffer and parses every complete line in it.
func (p *Parser) Feed(chunk string) {
	p.buffer += chunk

	for {
		idx := strings.IndexByte(p.buffer, '\n')
		if idx == -1 {
			return
		}
		line := p.buffer[:idx]
		p.buffer = p.buffer[idx+1:]

		line = strings.TrimSuffix(line, "\r")
		if strings.HasPrefix(line, ":") || strings.TrimSpace(line) == "" {
			continue
		}
		if !strings.HasPrefix(line, dataPrefix) {
			continue
		}

		jsonStr := strings.TrimSpace(line[len(dataPrefix):])
		if jsonStr == doneSentinel {
			// Logical end of the event sequence; the transport may
			// still deliver trailing bytes, which we ignore.
			return
		}

		var event deltaEvent
		if err := json.Unmarshal([]byte(jsonStr), &event); err != nil {
			if line == p.lastFailed {
				// Same bytes failed twice: the payload is corrupt, not
				// split across reads. Drop it rather than loop.
				p.lastFailed = ""
				continue
			}
			// Assume the line was cut mid-payload by the read boundary:
			// push it back and wait for more bytes.
			p.lastFailed = line
			p.buffer = line + "\n" + p.buffer
			return
		}
		p.lastFailed = ""

		if len(event.Choices) > 0 {
			if content := event.Choices[0].Delta.Content; content != "" {
				p.accumulator.WriteString(content)
				if p.onDelta != nil {
					p.onDelta(content)
				}
			}
		}
	}
}

// Text returns the concatenation of every delta parsed so far.
func (p *Parser) Text() string {
	return p.accumulator.String()
}
