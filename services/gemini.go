package services

import (
	"context"
	"encoding/json"
	"fmt"
	"log/slog"
	"strings"
	"time"

	"github.com/prepmate/backend/models"

	"google.golang.org/genai"
)

const (
	ModelName      = "gemini-2.5-flash"
	adapterTimeout = 30 * time.Second
)

// GeminiService handles question generation, answer evaluation, and
// fallback audio transcription. Every call is a single request with a
// hard timeout and no retries; a slow model surfaces as an error
// rather than a hung request.
type GeminiService struct {
	genaiClient *genai.Client
}

func NewGeminiService(apiKey string) *GeminiService {
	genaiClient, err := genai.NewClient(context.Background(), &genai.ClientConfig{
		APIKey: apiKey,
	})
	if err != nil {
		slog.Error("Failed to create genai client", "error", err)
		return nil
	}

	return &GeminiService{genaiClient: genaiClient}
}

// GenerateQuestions asks the model for count interview questions
// grounded in the resume text. The model answers with a numbered list,
// which is parsed into individual questions.
func (g *GeminiService) GenerateQuestions(ctx context.Context, resumeText string, count int, difficulty, interviewType string) ([]models.Question, error) {
	if g == nil || g.genaiClient == nil {
		return nil, fmt.Errorf("%w: genai client not initialized", ErrAdapterFailure)
	}

	ctx, cancel := context.WithTimeout(ctx, adapterTimeout)
	defer cancel()

	prompt := buildQuestionPrompt(resumeText, count, difficulty, interviewType)

	config := &genai.GenerateContentConfig{
		SystemInstruction: genai.NewContentFromText(
			"You are an experienced technical interviewer preparing questions for a candidate.",
			genai.RoleUser,
		),
	}

	result, err := g.genaiClient.Models.GenerateContent(
		ctx,
		ModelName,
		genai.Text(prompt),
		config,
	)
	if err != nil {
		return nil, fmt.Errorf("%w: failed to generate questions: %v", ErrAdapterFailure, err)
	}

	questions := parseQuestionList(result.Text())
	if len(questions) == 0 {
		return nil, fmt.Errorf("%w: model returned no parseable questions", ErrAdapterFailure)
	}
	if len(questions) > count {
		questions = questions[:count]
	}

	slog.Info("Generated interview questions", "count", len(questions), "difficulty", difficulty, "type", interviewType)
	return questions, nil
}

// EvaluateAnswer scores one answer against its question. The model is
// asked for a strict JSON object; anything that does not parse after
// fence stripping is an adapter failure.
func (g *GeminiService) EvaluateAnswer(ctx context.Context, question, answer string) (*models.Evaluation, error) {
	if g == nil || g.genaiClient == nil {
		return nil, fmt.Errorf("%w: genai client not initialized", ErrAdapterFailure)
	}

	ctx, cancel := context.WithTimeout(ctx, adapterTimeout)
	defer cancel()

	prompt := buildEvaluationPrompt(question, answer)

	result, err := g.genaiClient.Models.GenerateContent(
		ctx,
		ModelName,
		genai.Text(prompt),
		nil,
	)
	if err != nil {
		return nil, fmt.Errorf("%w: failed to evaluate answer: %v", ErrAdapterFailure, err)
	}

	evaluation, err := parseEvaluation(result.Text())
	if err != nil {
		return nil, err
	}

	slog.Info("Answer evaluated", "question_length", len(question), "answer_length", len(answer))
	return evaluation, nil
}

// TranscribeAudio transcribes WAV audio with Gemini. Used as the
// fallback when no dedicated transcription server is configured.
func (g *GeminiService) TranscribeAudio(ctx context.Context, audioData []byte) (string, error) {
	slog.Info("Transcribing audio with Gemini", "size", len(audioData))

	// Add timeout for transcription
	ctx, cancel := context.WithTimeout(ctx, 15*time.Second)
	defer cancel()

	if g == nil || g.genaiClient == nil {
		return "", fmt.Errorf("%w: genai client not initialized", ErrAdapterFailure)
	}

	parts := []*genai.Part{
		genai.NewPartFromText("Transcribe this audio to text. Provide only the transcript, no additional commentary."),
		&genai.Part{
			InlineData: &genai.Blob{
				MIMEType: "audio/wav",
				Data:     audioData,
			},
		},
	}

	contents := []*genai.Content{
		genai.NewContentFromParts(parts, genai.RoleUser),
	}

	result, err := g.genaiClient.Models.GenerateContent(
		ctx,
		ModelName,
		contents,
		nil,
	)
	if err != nil {
		return "", fmt.Errorf("%w: failed to generate transcript: %v", ErrAdapterFailure, err)
	}

	transcript := strings.TrimSpace(result.Text())
	slog.Info("Audio transcribed successfully", "transcript_length", len(transcript))

	return transcript, nil
}

func buildQuestionPrompt(resumeText string, count int, difficulty, interviewType string) string {
	return fmt.Sprintf(`Based on the following resume, generate exactly %d %s interview questions at %s difficulty.

Resume:
%s

Guidelines:
- Questions must be specific to the candidate's experience, skills, and projects from the resume
- Keep the depth appropriate for %s difficulty
- Return ONLY the questions as a numbered list (1. 2. 3. ...), one question per line
- Do not include any preamble, commentary, or answer hints`,
		count, interviewType, difficulty, resumeText, difficulty)
}

func buildEvaluationPrompt(question, answer string) string {
	return fmt.Sprintf(`You are an expert interview coach. Evaluate the candidate's answer to the interview question below.

Question:
%s

Answer:
%s

Respond with ONLY a valid JSON object, no markdown fences, in exactly this structure:
{
  "evaluation": {
    "clarity": {"score": <0-10>, "feedback": "<one sentence>"},
    "technical_relevance": {"score": <0-10>, "feedback": "<one sentence>"},
    "structure": {"score": <0-10>, "feedback": "<one sentence>"},
    "communication": {"score": <0-10>, "feedback": "<one sentence>"},
    "correctness": {"score": <0-10>, "feedback": "<one sentence>"}
  },
  "summary": "<two or three sentences of overall feedback>",
  "strengths": ["<strength>", ...],
  "improvements": ["<improvement>", ...],
  "revised_answer": "<an improved version of the answer>",
  "tips": ["<actionable tip>", ...]
}`, question, answer)
}

// parseQuestionList extracts questions from a numbered-list response.
// Leading list markers ("1.", "2)", "-", "*") are stripped; blank lines
// and unnumbered preamble shorter than a sentence are skipped.
func parseQuestionList(text string) []models.Question {
	var questions []models.Question
	for _, line := range strings.Split(text, "\n") {
		line = strings.TrimSpace(line)
		if line == "" {
			continue
		}
		stripped, numbered := stripListMarker(line)
		if !numbered && len(questions) == 0 {
			// Preamble before the first numbered item
			continue
		}
		if stripped == "" {
			continue
		}
		if numbered {
			questions = append(questions, models.Question{Text: stripped})
		} else if len(questions) > 0 {
			// Continuation of the previous question wrapped across lines
			last := &questions[len(questions)-1]
			last.Text = last.Text + " " + stripped
		}
	}
	return questions
}

// stripListMarker removes a leading "N.", "N)", "-" or "*" marker and
// reports whether one was present.
func stripListMarker(line string) (string, bool) {
	if strings.HasPrefix(line, "-") || strings.HasPrefix(line, "*") {
		return strings.TrimSpace(line[1:]), true
	}

	i := 0
	for i < len(line) && line[i] >= '0' && line[i] <= '9' {
		i++
	}
	if i == 0 || i >= len(line) {
		return line, false
	}
	if line[i] != '.' && line[i] != ')' {
		return line, false
	}
	return strings.TrimSpace(line[i+1:]), true
}

// parseEvaluation decodes the model's JSON evaluation, tolerating
// markdown code fences around the object.
func parseEvaluation(text string) (*models.Evaluation, error) {
	cleaned := stripMarkdownFences(text)

	var evaluation models.Evaluation
	if err := json.Unmarshal([]byte(cleaned), &evaluation); err != nil {
		slog.Error("Failed to parse evaluation JSON", "error", err, "response_length", len(text))
		return nil, fmt.Errorf("%w: model returned malformed evaluation: %v", ErrAdapterFailure, err)
	}

	if _, ok := evaluation.ResolveScore(); !ok {
		return nil, fmt.Errorf("%w: evaluation carries no score", ErrAdapterFailure)
	}
	return &evaluation, nil
}

// stripMarkdownFences removes a surrounding ```json ... ``` block if
// the model wrapped its response in one.
func stripMarkdownFences(text string) string {
	cleaned := strings.TrimSpace(text)
	if !strings.HasPrefix(cleaned, "```") {
		return cleaned
	}
	cleaned = strings.TrimPrefix(cleaned, "```json")
	cleaned = strings.TrimPrefix(cleaned, "```")
	cleaned = strings.TrimSuffix(strings.TrimSpace(cleaned), "```")
	return strings.TrimSpace(cleaned)
}
