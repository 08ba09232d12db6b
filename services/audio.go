package services

import (
	"fmt"
	"log/slog"
	"os"
	"os/exec"
)

// ConvertWebMToWAV converts browser-recorded WebM audio to 16kHz mono
// PCM WAV, the format both transcription backends accept.
func ConvertWebMToWAV(webmData []byte) ([]byte, error) {
	// Create temporary files
	inputFile, err := os.CreateTemp("", "input-*.webm")
	if err != nil {
		return nil, fmt.Errorf("failed to create input temp file: %w", err)
	}
	defer os.Remove(inputFile.Name())
	defer inputFile.Close()

	outputFile, err := os.CreateTemp("", "output-*.wav")
	if err != nil {
		return nil, fmt.Errorf("failed to create output temp file: %w", err)
	}
	defer os.Remove(outputFile.Name())
	defer outputFile.Close()

	// Write WebM data to input file
	if _, err := inputFile.Write(webmData); err != nil {
		return nil, fmt.Errorf("failed to write WebM data: %w", err)
	}
	inputFile.Close()
	outputFile.Close()

	// Convert using FFmpeg
	cmd := exec.Command("ffmpeg",
		"-i", inputFile.Name(), // Input file
		"-acodec", "pcm_s16le", // Audio codec (16-bit PCM)
		"-ar", "16000", // Sample rate (16kHz)
		"-ac", "1", // Mono channel
		"-y",              // Overwrite output file
		outputFile.Name(), // Output file
	)

	if err := cmd.Run(); err != nil {
		return nil, fmt.Errorf("ffmpeg conversion failed: %w", err)
	}

	// Read converted WAV data
	wavData, err := os.ReadFile(outputFile.Name())
	if err != nil {
		return nil, fmt.Errorf("failed to read converted WAV file: %w", err)
	}

	slog.Info("Audio conversion completed", "webm_size", len(webmData), "wav_size", len(wavData))
	return wavData, nil
}
