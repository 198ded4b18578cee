package llm_test

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/m-mizutani/gt"

	"github.com/dinadyno/persona-chat/core"
	"github.com/dinadyno/persona-chat/llm"
)

func ndjsonServer(t *testing.T, lines []string, wantModel string) *httptest.Server {
	t.Helper()
	return httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		var req struct {
			Model    string         `json:"model"`
			Messages []core.Message `json:"messages"`
			Stream   bool           `json:"stream"`
		}
		gt.NoError(t, json.NewDecoder(r.Body).Decode(&req)).Required()
		gt.Value(t, req.Model).Equal(wantModel)
		gt.Bool(t, req.Stream).True()

		flusher := w.(http.Flusher)
		for _, line := range lines {
			fmt.Fprintln(w, line)
			flusher.Flush()
		}
	}))
}

func TestStreamChat(t *testing.T) {
	srv := ndjsonServer(t, []string{
		`{"message":{"content":"Hi"},"done":false}`,
		`{"message":{"content":" there"},"done":false}`,
		`{"message":{"content":""},"done":true}`,
	}, "dina")
	defer srv.Close()

	provider := llm.NewOllama(llm.OllamaConfig{URL: srv.URL})

	var tokens []string
	full, err := provider.StreamChat(context.Background(), "dina",
		[]core.Message{{Role: core.RoleUser, Content: "hello"}},
		func(token string) { tokens = append(tokens, token) })

	gt.NoError(t, err).Required()
	gt.Value(t, full).Equal("Hi there")
	gt.Value(t, tokens).Equal([]string{"Hi", " there"})
}

func TestStreamChatStopsAtDone(t *testing.T) {
	srv := ndjsonServer(t, []string{
		`{"message":{"content":"done"},"done":true}`,
		`{"message":{"content":"ignored"},"done":false}`,
	}, "dyno")
	defer srv.Close()

	provider := llm.NewOllama(llm.OllamaConfig{URL: srv.URL})

	full, err := provider.StreamChat(context.Background(), "dyno", nil, func(string) {})
	gt.NoError(t, err).Required()
	gt.Value(t, full).Equal("done")
}

func TestStreamChatEOFWithoutDone(t *testing.T) {
	// The server closing the connection without a done marker is a normal
	// end of stream.
	srv := ndjsonServer(t, []string{
		`{"message":{"content":"partial"},"done":false}`,
	}, "dina")
	defer srv.Close()

	provider := llm.NewOllama(llm.OllamaConfig{URL: srv.URL})

	full, err := provider.StreamChat(context.Background(), "dina", nil, func(string) {})
	gt.NoError(t, err).Required()
	gt.Value(t, full).Equal("partial")
}

func TestStreamChatUnreachableServer(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(http.ResponseWriter, *http.Request) {}))
	srv.Close()

	provider := llm.NewOllama(llm.OllamaConfig{URL: srv.URL})

	_, err := provider.StreamChat(context.Background(), "dina", nil, func(string) {})
	gt.Error(t, err)
	gt.Bool(t, errors.Is(err, llm.ErrTransport)).True()
}

func TestStreamChatErrorStatus(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		http.Error(w, "model not found", http.StatusNotFound)
	}))
	defer srv.Close()

	provider := llm.NewOllama(llm.OllamaConfig{URL: srv.URL})

	_, err := provider.StreamChat(context.Background(), "dina", nil, func(string) {})
	gt.Error(t, err)
	gt.Bool(t, errors.Is(err, llm.ErrTransport)).True()
}

func TestStreamChatMalformedLine(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		fmt.Fprintln(w, `{"message":{"content":"ok"},"done":false}`)
		fmt.Fprintln(w, `this is not json`)
	}))
	defer srv.Close()

	provider := llm.NewOllama(llm.OllamaConfig{URL: srv.URL})

	var tokens []string
	partial, err := provider.StreamChat(context.Background(), "dina", nil,
		func(token string) { tokens = append(tokens, token) })

	gt.Error(t, err)
	gt.Bool(t, errors.Is(err, llm.ErrProtocol)).True()

	// Tokens emitted before the malformed line are preserved.
	gt.Value(t, partial).Equal("ok")
	gt.Value(t, tokens).Equal([]string{"ok"})
}
