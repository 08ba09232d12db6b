package websocket

import (
	"encoding/json"
	"testing"
)

func TestSendTranscriptAfterChannelClosed(t *testing.T) {
	// The hub closes Send when a client unregisters. A transcript that
	// finishes after the disconnect must be dropped, not crash.
	client := &Client{
		ClientID:  "c1",
		SessionID: "s1",
		Send:      make(chan []byte, 1),
	}
	close(client.Send)

	client.SendTranscript("too late", true)
}

func TestSendTranscriptQueuesMessage(t *testing.T) {
	client := &Client{
		ClientID:  "c1",
		SessionID: "s1",
		Send:      make(chan []byte, 1),
	}

	client.SendTranscript("partial text", false)

	select {
	case raw := <-client.Send:
		var msg TranscriptMessage
		if err := json.Unmarshal(raw, &msg); err != nil {
			t.Fatalf("queued message is not valid JSON: %v", err)
		}
		if msg.Type != "transcript" {
			t.Errorf("type = %q, expected %q", msg.Type, "transcript")
		}
		if msg.Content != "partial text" {
			t.Errorf("content = %q", msg.Content)
		}
		if msg.IsFinal {
			t.Error("is_final = true, expected false")
		}
		if msg.SessionID != "s1" {
			t.Errorf("session_id = %q", msg.SessionID)
		}
	default:
		t.Fatal("no message queued on Send")
	}
}

func TestSendTranscriptFullBufferDoesNotBlock(t *testing.T) {
	client := &Client{
		ClientID:  "c1",
		SessionID: "s1",
		Send:      make(chan []byte), // unbuffered, no reader
	}

	done := make(chan struct{})
	go func() {
		client.SendTranscript("dropped", false)
		close(done)
	}()

	select {
	case <-done:
	case <-client.Send:
		t.Fatal("message should have been dropped, not delivered")
	}
}
