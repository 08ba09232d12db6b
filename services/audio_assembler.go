package services

import (
	"fmt"
	"log/slog"
	"sync"
	"time"
)

const assemblyTTL = 5 * time.Minute

// AudioAssembler buffers chunked audio uploads until the last chunk
// arrives. Browsers split long recordings into base64 chunks over the
// WebSocket; chunks for one recording share a session ID and arrive in
// order. Abandoned recordings are dropped after a TTL so a client that
// disconnects mid-upload does not leak memory.
type AudioAssembler struct {
	mu        sync.Mutex
	pending   map[string]*pendingAudio
	closeOnce sync.Once
	done      chan struct{}
}

type pendingAudio struct {
	chunks       [][]byte
	lastActivity time.Time
}

func NewAudioAssembler() *AudioAssembler {
	a := &AudioAssembler{
		pending: make(map[string]*pendingAudio),
		done:    make(chan struct{}),
	}

	// Background cleanup of abandoned recordings
	go a.cleanupLoop()

	return a
}

// Append stores one chunk for the session's in-flight recording.
func (a *AudioAssembler) Append(sessionID string, chunkIndex int, data []byte) {
	a.mu.Lock()
	defer a.mu.Unlock()

	p, ok := a.pending[sessionID]
	if !ok {
		p = &pendingAudio{}
		a.pending[sessionID] = p
	}
	p.chunks = append(p.chunks, data)
	p.lastActivity = time.Now()

	slog.Info("Audio chunk buffered", "session_id", sessionID, "chunk_index", chunkIndex, "chunk_size", len(data))
}

// Complete concatenates the session's buffered chunks and clears them.
func (a *AudioAssembler) Complete(sessionID string) ([]byte, error) {
	a.mu.Lock()
	defer a.mu.Unlock()

	p, ok := a.pending[sessionID]
	if !ok || len(p.chunks) == 0 {
		return nil, fmt.Errorf("no buffered audio for session %s", sessionID)
	}
	delete(a.pending, sessionID)

	var total int
	for _, chunk := range p.chunks {
		total += len(chunk)
	}
	assembled := make([]byte, 0, total)
	for _, chunk := range p.chunks {
		assembled = append(assembled, chunk...)
	}

	slog.Info("Audio assembled", "session_id", sessionID, "chunks", len(p.chunks), "total_size", total)
	return assembled, nil
}

// Discard drops any buffered chunks for the session.
func (a *AudioAssembler) Discard(sessionID string) {
	a.mu.Lock()
	defer a.mu.Unlock()
	delete(a.pending, sessionID)
}

// Close stops the background cleanup goroutine.
func (a *AudioAssembler) Close() {
	a.closeOnce.Do(func() { close(a.done) })
}

func (a *AudioAssembler) cleanupLoop() {
	ticker := time.NewTicker(time.Minute)
	defer ticker.Stop()

	for {
		select {
		case <-ticker.C:
			a.mu.Lock()
			for sessionID, p := range a.pending {
				if time.Since(p.lastActivity) > assemblyTTL {
					delete(a.pending, sessionID)
					slog.Warn("Dropped abandoned audio upload", "session_id", sessionID, "chunks", len(p.chunks))
				}
			}
			a.mu.Unlock()
		case <-a.done:
			return
		}
	}
}
