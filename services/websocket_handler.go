package services

import (
	"context"
	"encoding/base64"
	"encoding/json"
	"log/slog"
	"time"

	ws "github.com/prepmate/backend/websocket"
)

// safeSend tries to send a message to the client channel, recovers if closed
func safeSend(ch chan<- []byte, msg []byte) {
	defer func() {
		if r := recover(); r != nil {
			// Channel is closed, ignore
		}
	}()
	select {
	case ch <- msg:
		// sent
	default:
		// channel full or closed
	}
}

// WebSocketHandler drives the live answer channel: audio comes in over
// the socket, transcripts go back out, and final recordings are
// appended to the session as answers.
type WebSocketHandler struct {
	assembler   *AudioAssembler
	transcriber Transcriber
	sessions    SessionStore
}

func NewWebSocketHandler(assembler *AudioAssembler, transcriber Transcriber, sessions SessionStore) *WebSocketHandler {
	return &WebSocketHandler{
		assembler:   assembler,
		transcriber: transcriber,
		sessions:    sessions,
	}
}

// HandleWebSocketMessage processes one incoming message from the live
// answer channel.
func (h *WebSocketHandler) HandleWebSocketMessage(client *ws.Client, messageBytes []byte) {
	var msg ws.Message
	if err := json.Unmarshal(messageBytes, &msg); err != nil {
		slog.Error("Failed to unmarshal WebSocket message", "error", err)
		return
	}

	slog.Info("WebSocket message received", "type", msg.Type, "session_id", client.SessionID)

	switch msg.Type {
	case "audio":
		audioData, ok := h.decodeAudio(msg, client.SessionID)
		if !ok {
			return
		}
		h.transcribeAndReply(client, audioData, msg.IsFinal)

	case "audio_chunk":
		audioData, ok := h.decodeAudio(msg, client.SessionID)
		if !ok {
			return
		}
		h.assembler.Append(client.SessionID, msg.ChunkIndex, audioData)

		if msg.IsLastChunk {
			assembled, err := h.assembler.Complete(client.SessionID)
			if err != nil {
				slog.Error("Failed to assemble audio", "error", err, "session_id", client.SessionID)
				return
			}
			h.transcribeAndReply(client, assembled, msg.IsFinal)
		}

	case "end_session":
		slog.Info("Received end_session request", "session_id", client.SessionID)
		h.assembler.Discard(client.SessionID)

		endMsg := map[string]any{
			"type":    "end_session",
			"content": "Session closed. Your answers are saved.",
		}
		if b, err := json.Marshal(endMsg); err == nil {
			safeSend(client.Send, b)
		}
		// Close the connection after a short delay to allow the message to be sent
		go func() {
			<-time.After(200 * time.Millisecond)
			client.Conn.Close()
		}()

	default:
		slog.Warn("Unknown message type", "type", msg.Type, "session_id", client.SessionID)
	}
}

func (h *WebSocketHandler) decodeAudio(msg ws.Message, sessionID string) ([]byte, bool) {
	if msg.AudioDataBase64 == "" {
		slog.Error("No audio data provided", "session_id", sessionID)
		return nil, false
	}
	decoded, err := base64.StdEncoding.DecodeString(msg.AudioDataBase64)
	if err != nil {
		slog.Error("Failed to decode Base64 audio data", "error", err, "session_id", sessionID)
		return nil, false
	}
	return decoded, true
}

// transcribeAndReply converts and transcribes a complete recording,
// sends the transcript back, and appends it as an answer when the
// recording was marked final. The connection's request context is long
// gone, so processing runs against its own deadline.
func (h *WebSocketHandler) transcribeAndReply(client *ws.Client, webmData []byte, isFinal bool) {
	if h.transcriber == nil {
		slog.Error("No transcription service configured", "session_id", client.SessionID)
		return
	}

	ctx, cancel := context.WithTimeout(context.Background(), adapterTimeout)
	defer cancel()

	wavData, err := ConvertWebMToWAV(webmData)
	if err != nil {
		slog.Error("Audio conversion failed", "error", err, "session_id", client.SessionID)
		return
	}

	transcript, err := h.transcriber.TranscribeAudio(ctx, wavData)
	if err != nil {
		slog.Error("Transcription failed", "error", err, "session_id", client.SessionID)
		return
	}

	client.SendTranscript(transcript, isFinal)

	if isFinal {
		if _, err := h.sessions.AppendAnswer(ctx, client.SessionID, transcript); err != nil {
			slog.Error("Failed to append answer", "error", err, "session_id", client.SessionID)
			return
		}
		slog.Info("Answer appended from live channel", "session_id", client.SessionID, "transcript_length", len(transcript))
	}
}
