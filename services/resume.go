package services

import (
	"bytes"
	"fmt"
	"log/slog"
	"strings"

	"github.com/ledongthuc/pdf"
)

// ExtractResumeText pulls the plain text out of an uploaded resume PDF.
// Encrypted, malformed, or text-free PDFs are invalid-argument errors:
// the upload is rejected rather than sent to the model empty.
func ExtractResumeText(data []byte) (string, error) {
	reader, err := pdf.NewReader(bytes.NewReader(data), int64(len(data)))
	if err != nil {
		return "", fmt.Errorf("%w: failed to parse PDF: %v", ErrInvalidArgument, err)
	}

	textReader, err := reader.GetPlainText()
	if err != nil {
		return "", fmt.Errorf("%w: failed to extract text from PDF: %v", ErrInvalidArgument, err)
	}

	var buf bytes.Buffer
	if _, err := buf.ReadFrom(textReader); err != nil {
		return "", fmt.Errorf("%w: failed to read PDF text: %v", ErrInvalidArgument, err)
	}

	text := strings.TrimSpace(buf.String())
	if text == "" {
		return "", fmt.Errorf("%w: PDF contains no extractable text", ErrInvalidArgument)
	}

	slog.Info("Resume text extracted", "pdf_size", len(data), "text_length", len(text))
	return text, nil
}
