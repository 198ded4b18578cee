// Package server exposes the chat over a small web UI: persona selector,
// memory-clear control, free-text input, and a streaming transcript.
// Response tokens reach the browser over a WebSocket.
package server

import (
	"context"
	_ "embed"
	"log"
	"net/http"

	"github.com/go-chi/chi/v5"
	"github.com/google/uuid"
	"github.com/gorilla/websocket"

	"github.com/dinadyno/persona-chat/chat"
	"github.com/dinadyno/persona-chat/core"
)

//go:embed index.html
var indexHTML []byte

// Chat is the orchestrator surface the server needs.
// *chat.Orchestrator implements it.
type Chat interface {
	Turn(ctx context.Context, persona core.Persona, input string, emit func(token string)) (*chat.TurnResult, error)
	ClearMemory(ctx context.Context, persona core.Persona) error
	History(persona core.Persona) []core.Message
}

// Server serves the UI and the WebSocket chat endpoint.
type Server struct {
	chat     Chat
	mux      *chi.Mux
	upgrader websocket.Upgrader
}

// New creates a server around the given chat orchestrator.
func New(c Chat) *Server {
	s := &Server{
		chat: c,
		upgrader: websocket.Upgrader{
			// Local single-user app; any origin may connect.
			CheckOrigin: func(*http.Request) bool { return true },
		},
	}

	r := chi.NewRouter()
	r.Get("/", s.handleIndex)
	r.Get("/health", s.handleHealth)
	r.Get("/ws", s.handleWS)
	s.mux = r
	return s
}

// Handler returns the HTTP handler, mainly for tests.
func (s *Server) Handler() http.Handler {
	return s.mux
}

// Run serves until the listener fails.
func (s *Server) Run(addr string) error {
	log.Printf("[SERVER] Listening on %s", addr)
	return http.ListenAndServe(addr, s.mux)
}

func (s *Server) handleIndex(w http.ResponseWriter, r *http.Request) {
	w.Header().Set("Content-Type", "text/html; charset=utf-8")
	_, _ = w.Write(indexHTML)
}

func (s *Server) handleHealth(w http.ResponseWriter, r *http.Request) {
	w.WriteHeader(http.StatusOK)
	_, _ = w.Write([]byte("ok"))
}

// clientMessage is what the browser sends.
type clientMessage struct {
	Type    string `json:"type"` // "chat", "clear", "select"
	Persona string `json:"persona"`
	Text    string `json:"text,omitempty"`
}

// serverMessage is what the browser receives.
type serverMessage struct {
	Type     string         `json:"type"` // "history", "token", "done", "error"
	Persona  string         `json:"persona,omitempty"`
	Text     string         `json:"text,omitempty"`
	Messages []core.Message `json:"messages,omitempty"`
}

// handleWS runs the per-connection read loop. Requests on one connection
// are handled strictly one at a time, so a user cannot race their own turn.
func (s *Server) handleWS(w http.ResponseWriter, r *http.Request) {
	conn, err := s.upgrader.Upgrade(w, r, nil)
	if err != nil {
		log.Printf("[SERVER] WebSocket upgrade failed: %v", err)
		return
	}
	defer conn.Close()

	connID := uuid.New().String()
	log.Printf("[SERVER] WebSocket connected: %s", connID)

	for {
		var msg clientMessage
		if err := conn.ReadJSON(&msg); err != nil {
			if websocket.IsUnexpectedCloseError(err, websocket.CloseNormalClosure, websocket.CloseGoingAway) {
				log.Printf("[SERVER] WebSocket %s closed: %v", connID, err)
			}
			return
		}

		persona, err := core.ParsePersona(msg.Persona)
		if err != nil {
			s.send(conn, serverMessage{Type: "error", Text: err.Error()})
			continue
		}

		switch msg.Type {
		case "select":
			s.send(conn, serverMessage{
				Type:     "history",
				Persona:  persona.String(),
				Messages: s.chat.History(persona),
			})

		case "clear":
			if err := s.chat.ClearMemory(r.Context(), persona); err != nil {
				s.send(conn, serverMessage{Type: "error", Text: err.Error()})
				continue
			}
			s.send(conn, serverMessage{
				Type:     "history",
				Persona:  persona.String(),
				Messages: []core.Message{},
			})

		case "chat":
			result, err := s.chat.Turn(r.Context(), persona, msg.Text, func(token string) {
				s.send(conn, serverMessage{Type: "token", Persona: persona.String(), Text: token})
			})
			if err != nil {
				s.send(conn, serverMessage{Type: "error", Text: err.Error()})
				continue
			}
			if result.PersistErr != nil {
				s.send(conn, serverMessage{
					Type: "error",
					Text: "This turn was not saved to memory: " + result.PersistErr.Error(),
				})
			}
			s.send(conn, serverMessage{Type: "done", Persona: persona.String(), Text: result.Response})

		default:
			s.send(conn, serverMessage{Type: "error", Text: "unknown message type: " + msg.Type})
		}
	}
}

func (s *Server) send(conn *websocket.Conn, msg serverMessage) {
	if err := conn.WriteJSON(msg); err != nil {
		log.Printf("[SERVER] WebSocket write failed: %v", err)
	}
}
