package llm

import (
	"bufio"
	"bytes"
	"context"
	"encoding/json"
	"io"
	"net/http"
	"strings"

	"github.com/m-mizutani/goerr/v2"

	"github.com/dinadyno/persona-chat/core"
)

// DefaultOllamaURL is the chat endpoint of a locally running Ollama server.
const DefaultOllamaURL = "http://localhost:11434/api/chat"

// OllamaConfig configures the Ollama provider.
type OllamaConfig struct {
	// URL is the chat endpoint. Defaults to DefaultOllamaURL.
	URL string

	// HTTPClient overrides the default client. No timeout is set by
	// default: a streaming response stays open as long as the model keeps
	// generating.
	HTTPClient *http.Client
}

// Ollama streams chat completions from a local Ollama server. The response
// is newline-delimited JSON; the stream ends at a done=true record or when
// the connection closes.
type Ollama struct {
	url    string
	client *http.Client
}

// NewOllama creates an Ollama provider.
func NewOllama(cfg OllamaConfig) *Ollama {
	url := cfg.URL
	if url == "" {
		url = DefaultOllamaURL
	}
	client := cfg.HTTPClient
	if client == nil {
		client = &http.Client{}
	}
	return &Ollama{url: url, client: client}
}

type ollamaChatRequest struct {
	Model    string         `json:"model"`
	Messages []core.Message `json:"messages"`
	Stream   bool           `json:"stream"`
}

type ollamaChatLine struct {
	Message struct {
		Content string `json:"content"`
	} `json:"message"`
	Done bool `json:"done"`
}

// StreamChat implements Provider against Ollama's /api/chat endpoint.
func (o *Ollama) StreamChat(ctx context.Context, model string, messages []core.Message, emit func(token string)) (string, error) {
	payload, err := json.Marshal(ollamaChatRequest{Model: model, Messages: messages, Stream: true})
	if err != nil {
		return "", goerr.Wrap(err, "marshal chat request")
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodPost, o.url, bytes.NewReader(payload))
	if err != nil {
		return "", goerr.Wrap(err, "create chat request", goerr.V("url", o.url))
	}
	req.Header.Set("Content-Type", "application/json")

	resp, err := o.client.Do(req)
	if err != nil {
		return "", goerr.Wrap(ErrTransport, "connect to model server",
			goerr.V("url", o.url), goerr.V("cause", err.Error()))
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		body, _ := io.ReadAll(io.LimitReader(resp.Body, 4096))
		return "", goerr.Wrap(ErrTransport, "model server returned error status",
			goerr.V("url", o.url), goerr.V("status", resp.StatusCode),
			goerr.V("body", strings.TrimSpace(string(body))))
	}

	var full strings.Builder
	scanner := bufio.NewScanner(resp.Body)
	scanner.Buffer(make([]byte, 0, 64*1024), 1<<20)

	for scanner.Scan() {
		line := bytes.TrimSpace(scanner.Bytes())
		if len(line) == 0 {
			continue
		}

		var chunk ollamaChatLine
		if err := json.Unmarshal(line, &chunk); err != nil {
			return full.String(), goerr.Wrap(ErrProtocol, "decode stream line",
				goerr.V("line", string(line)))
		}

		if chunk.Message.Content != "" {
			full.WriteString(chunk.Message.Content)
			emit(chunk.Message.Content)
		}
		if chunk.Done {
			return full.String(), nil
		}
	}

	if err := scanner.Err(); err != nil {
		return full.String(), goerr.Wrap(ErrTransport, "read stream", goerr.V("cause", err.Error()))
	}

	// The server closed the connection without a done marker; the
	// accumulated text is the complete response.
	return full.String(), nil
}

var _ Provider = (*Ollama)(nil)
