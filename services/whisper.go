package services

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"log/slog"
	"mime/multipart"
	"net/http"
	"time"
)

// WhisperService talks to a self-hosted whisper.cpp server. It is the
// preferred transcription backend; Gemini is the fallback when no
// server URL is configured.
type WhisperService struct {
	baseURL string
	client  *http.Client
}

type whisperResponse struct {
	Text string `json:"text"`
}

func NewWhisperService(baseURL string) *WhisperService {
	return &WhisperService{
		baseURL: baseURL,
		client: &http.Client{
			Timeout: 60 * time.Second,
		},
	}
}

// TranscribeAudio sends WAV audio to the whisper server's inference
// endpoint and returns the transcript.
func (s *WhisperService) TranscribeAudio(ctx context.Context, audioData []byte) (string, error) {
	var body bytes.Buffer
	writer := multipart.NewWriter(&body)

	part, err := writer.CreateFormFile("file", "audio.wav")
	if err != nil {
		return "", fmt.Errorf("failed to create form file: %w", err)
	}
	if _, err := part.Write(audioData); err != nil {
		return "", fmt.Errorf("failed to write audio data: %w", err)
	}
	if err := writer.WriteField("response_format", "json"); err != nil {
		return "", fmt.Errorf("failed to write form field: %w", err)
	}
	if err := writer.Close(); err != nil {
		return "", fmt.Errorf("failed to close multipart writer: %w", err)
	}

	url := s.baseURL + "/inference"
	req, err := http.NewRequestWithContext(ctx, "POST", url, &body)
	if err != nil {
		return "", fmt.Errorf("failed to create request: %w", err)
	}
	req.Header.Set("Content-Type", writer.FormDataContentType())

	resp, err := s.client.Do(req)
	if err != nil {
		return "", fmt.Errorf("%w: failed to reach whisper server: %v", ErrAdapterFailure, err)
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		respBody, _ := io.ReadAll(resp.Body)
		return "", fmt.Errorf("%w: whisper server error: %d - %s", ErrAdapterFailure, resp.StatusCode, string(respBody))
	}

	var result whisperResponse
	if err := json.NewDecoder(resp.Body).Decode(&result); err != nil {
		return "", fmt.Errorf("%w: failed to decode whisper response: %v", ErrAdapterFailure, err)
	}

	slog.Info("Audio transcribed by whisper server", "audio_size", len(audioData), "transcript_length", len(result.Text))
	return result.Text, nil
}
