package services

import (
	"bytes"
	"context"
	"encoding/csv"
	"encoding/json"
	"testing"
	"time"

	"github.com/prepmate/backend/models"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.mongodb.org/mongo-driver/bson/primitive"
)

func scorePtr(v float64) *float64 { return &v }

func exportFixture() models.Session {
	return models.Session{
		ID:        primitive.NewObjectID(),
		CreatedAt: time.Date(2025, 7, 1, 10, 0, 0, 0, time.UTC),
		Questions: []models.Question{
			{Text: "What is a goroutine?"},
			{Text: "Explain channels."},
			{Text: "Describe your last project."},
		},
		Answers: []string{
			"A lightweight thread managed by the runtime.",
			"Typed conduits for communication between goroutines.",
		},
		Evaluations: []models.Evaluation{
			{Score: scorePtr(8), Summary: "Accurate and concise.", Strengths: []string{"clear definition"}},
			{Score: scorePtr(6)},
		},
		Difficulty:    models.DifficultyMedium,
		InterviewType: models.TypeTechnical,
		Status:        models.StatusInProgress,
	}
}

func allIncluded(format string) ExportOptions {
	return ExportOptions{
		Format:             format,
		IncludeQuestions:   true,
		IncludeAnswers:     true,
		IncludeEvaluations: true,
	}
}

func TestExportCSVOneRowPerQuestion(t *testing.T) {
	exporter := NewExportService(nil)
	session := exportFixture()

	data, contentType, filename, err := exporter.Export(context.Background(), []models.Session{session}, allIncluded(FormatCSV))
	require.NoError(t, err)
	assert.Equal(t, "text/csv", contentType)
	assert.Contains(t, filename, ".csv")

	records, err := csv.NewReader(bytes.NewReader(data)).ReadAll()
	require.NoError(t, err)

	// Header plus one row per question, answered or not
	require.Len(t, records, 4)

	// Two answered rows carry answer and score
	assert.Equal(t, "What is a goroutine?", records[1][6])
	assert.Equal(t, "A lightweight thread managed by the runtime.", records[1][7])
	assert.Equal(t, "8.00", records[1][8])

	// The evaluation cell carries the whole evaluation, not just the
	// resolved score
	var evaluation models.Evaluation
	require.NoError(t, json.Unmarshal([]byte(records[1][9]), &evaluation))
	assert.Equal(t, "Accurate and concise.", evaluation.Summary)
	assert.Equal(t, []string{"clear definition"}, evaluation.Strengths)
	require.NotNil(t, evaluation.Score)
	assert.Equal(t, 8.0, *evaluation.Score)

	// Third question was never answered: blank answer, score, and
	// evaluation cells
	assert.Equal(t, "Describe your last project.", records[3][6])
	assert.Equal(t, "", records[3][7])
	assert.Equal(t, "", records[3][8])
	assert.Equal(t, "", records[3][9])

	// Overall score column is the session average
	assert.Equal(t, "7.00", records[1][4])
}

func TestExportCSVRespectsIncludeFlags(t *testing.T) {
	exporter := NewExportService(nil)
	session := exportFixture()

	opts := ExportOptions{Format: FormatCSV, IncludeQuestions: true}
	data, _, _, err := exporter.Export(context.Background(), []models.Session{session}, opts)
	require.NoError(t, err)

	records, err := csv.NewReader(bytes.NewReader(data)).ReadAll()
	require.NoError(t, err)
	require.Len(t, records, 4)

	for _, row := range records[1:] {
		assert.NotEmpty(t, row[6])
		assert.Empty(t, row[7])
		assert.Empty(t, row[8])
		assert.Empty(t, row[9])
	}
}

func TestExportJSON(t *testing.T) {
	exporter := NewExportService(nil)
	session := exportFixture()

	data, contentType, _, err := exporter.Export(context.Background(), []models.Session{session}, allIncluded(FormatJSON))
	require.NoError(t, err)
	assert.Equal(t, "application/json", contentType)

	var payload struct {
		Count    int `json:"count"`
		Sessions []struct {
			ID           string   `json:"id"`
			OverallScore float64  `json:"overall_score"`
			Answers      []string `json:"answers"`
		} `json:"sessions"`
	}
	require.NoError(t, json.Unmarshal(data, &payload))

	require.Equal(t, 1, payload.Count)
	assert.Equal(t, session.ID.Hex(), payload.Sessions[0].ID)
	assert.InDelta(t, 7.0, payload.Sessions[0].OverallScore, 1e-9)
	assert.Len(t, payload.Sessions[0].Answers, 2)
}

func TestExportUnknownFormat(t *testing.T) {
	exporter := NewExportService(nil)

	_, _, _, err := exporter.Export(context.Background(), []models.Session{exportFixture()}, allIncluded("xml"))
	assert.ErrorIs(t, err, ErrUnsupportedFormat)
}

func TestExportPDFUsesRenderer(t *testing.T) {
	renderer := &fakeRenderer{output: []byte("%PDF-fake")}
	exporter := NewExportService(renderer)

	data, contentType, _, err := exporter.Export(context.Background(), []models.Session{exportFixture()}, allIncluded(FormatPDF))
	require.NoError(t, err)
	assert.Equal(t, "application/pdf", contentType)
	assert.Equal(t, []byte("%PDF-fake"), data)

	// The rendered HTML carries the report content
	assert.Contains(t, renderer.lastHTML, "What is a goroutine?")
	assert.Contains(t, renderer.lastHTML, "Not answered")
}

type fakeRenderer struct {
	output   []byte
	lastHTML string
}

func (f *fakeRenderer) RenderHTML(ctx context.Context, html string) ([]byte, error) {
	f.lastHTML = html
	return f.output, nil
}
