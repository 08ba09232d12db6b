package websocket

import (
	"encoding/json"
	"log/slog"
	"sync"
	"time"

	"github.com/google/uuid"
	"github.com/gorilla/websocket"
)

type Hub struct {
	clients    map[*Client]bool
	register   chan *Client
	unregister chan *Client
	mu         sync.RWMutex
}

// Client is one live answer channel. A client is bound to a single
// interview session for its whole lifetime; the session must already
// exist when the connection is made.
type Client struct {
	Hub            *Hub
	Conn           *websocket.Conn
	Send           chan []byte
	ClientID       string
	SessionID      string
	MessageHandler func(*Client, []byte) // Function to handle incoming messages
}

// Message is the wire format of the live answer channel. Audio arrives
// base64-encoded, optionally split into ordered chunks; IsFinal marks
// a recording as the candidate's committed answer.
type Message struct {
	Type            string `json:"type"` // "audio", "audio_chunk", "end_session"
	Content         string `json:"content,omitempty"`
	AudioDataBase64 string `json:"audio_data_base64,omitempty"`
	ChunkIndex      int    `json:"chunk_index,omitempty"`
	TotalChunks     int    `json:"total_chunks,omitempty"`
	IsLastChunk     bool   `json:"is_last_chunk,omitempty"`
	IsFinal         bool   `json:"is_final,omitempty"`
	SessionID       string `json:"session_id,omitempty"`
}

// TranscriptMessage is the server's reply after transcribing audio.
type TranscriptMessage struct {
	Type      string `json:"type"` // "transcript"
	Content   string `json:"content"`
	IsFinal   bool   `json:"is_final"`
	SessionID string `json:"session_id,omitempty"`
}

func NewHub() *Hub {
	return &Hub{
		clients:    make(map[*Client]bool),
		register:   make(chan *Client),
		unregister: make(chan *Client),
	}
}

func (h *Hub) Run() {
	for {
		select {
		case client := <-h.register:
			h.mu.Lock()
			h.clients[client] = true
			h.mu.Unlock()
			slog.Info("Client registered", "client_id", client.ClientID, "session_id", client.SessionID)

		case client := <-h.unregister:
			h.mu.Lock()
			if _, ok := h.clients[client]; ok {
				delete(h.clients, client)
				close(client.Send)
			}
			h.mu.Unlock()
			slog.Info("Client unregistered", "client_id", client.ClientID, "session_id", client.SessionID)
		}
	}
}

func (h *Hub) RegisterClient(conn *websocket.Conn, sessionID string) *Client {
	client := &Client{
		Hub:       h,
		Conn:      conn,
		Send:      make(chan []byte, 256),
		ClientID:  uuid.New().String(),
		SessionID: sessionID,
	}

	h.register <- client
	return client
}

func (c *Client) ReadPump() {
	defer func() {
		c.Hub.unregister <- c
		c.Conn.Close()
	}()

	c.Conn.SetReadLimit(10 * 1024 * 1024) // 10MB limit for large audio recordings
	c.Conn.SetReadDeadline(time.Now().Add(60 * time.Second))
	c.Conn.SetPongHandler(func(string) error {
		c.Conn.SetReadDeadline(time.Now().Add(60 * time.Second))
		return nil
	})

	for {
		_, messageBytes, err := c.Conn.ReadMessage()
		if err != nil {
			if websocket.IsUnexpectedCloseError(err, websocket.CloseGoingAway, websocket.CloseAbnormalClosure) {
				slog.Error("WebSocket error", "error", err)
			}
			break
		}

		if c.MessageHandler != nil {
			// Run message handler asynchronously to avoid blocking
			go c.MessageHandler(c, messageBytes)
		} else {
			slog.Warn("No message handler configured", "session_id", c.SessionID)
		}
	}
}

func (c *Client) WritePump() {
	ticker := time.NewTicker(54 * time.Second)
	defer func() {
		ticker.Stop()
		c.Conn.Close()
	}()

	for {
		select {
		case message, ok := <-c.Send:
			c.Conn.SetWriteDeadline(time.Now().Add(10 * time.Second))
			if !ok {
				c.Conn.WriteMessage(websocket.CloseMessage, []byte{})
				return
			}

			w, err := c.Conn.NextWriter(websocket.TextMessage)
			if err != nil {
				return
			}
			w.Write(message)

			n := len(c.Send)
			for i := 0; i < n; i++ {
				w.Write([]byte{'\n'})
				w.Write(<-c.Send)
			}

			if err := w.Close(); err != nil {
				return
			}

		case <-ticker.C:
			c.Conn.SetWriteDeadline(time.Now().Add(10 * time.Second))
			if err := c.Conn.WriteMessage(websocket.PingMessage, nil); err != nil {
				return
			}
		}
	}
}

// SendTranscript queues a transcript reply for the client.
// Transcription runs in its own goroutine, so the client may have
// unregistered (and had its Send channel closed) before the transcript
// is ready; a dropped reply to a gone client is fine, a crash is not.
func (c *Client) SendTranscript(content string, isFinal bool) {
	msg := TranscriptMessage{
		Type:      "transcript",
		Content:   content,
		IsFinal:   isFinal,
		SessionID: c.SessionID,
	}

	msgBytes, err := json.Marshal(msg)
	if err != nil {
		slog.Error("Failed to marshal transcript message", "error", err)
		return
	}

	defer func() {
		if r := recover(); r != nil {
			slog.Warn("Dropped transcript for disconnected client", "client_id", c.ClientID, "session_id", c.SessionID)
		}
	}()
	select {
	case c.Send <- msgBytes:
	default:
		slog.Warn("Dropped transcript, send buffer full", "client_id", c.ClientID, "session_id", c.SessionID)
	}
}
