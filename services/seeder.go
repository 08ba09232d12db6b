package services

import (
	"context"
	"log/slog"

	"github.com/prepmate/backend/models"
)

// TagSeeder creates the default tag catalog on startup so a fresh
// install has something to label sessions with.
type TagSeeder struct {
	tags TagStore
}

func NewTagSeeder(tags TagStore) *TagSeeder {
	return &TagSeeder{tags: tags}
}

var defaultTags = []models.Tag{
	{Name: "strong-performance", Color: "#2f855a"},
	{Name: "needs-practice", Color: "#c53030"},
	{Name: "follow-up", Color: "#b7791f"},
	{Name: "favorite", Color: "#2b6cb0"},
	{Name: "mock-final", Color: "#6b46c1"},
}

// SeedTags creates each default tag that does not exist yet (idempotent).
func (s *TagSeeder) SeedTags(ctx context.Context) error {
	seeded := 0
	for _, tag := range defaultTags {
		existing, err := s.tags.GetTag(ctx, tag.Name)
		if err != nil {
			slog.Error("Failed to check default tag", "name", tag.Name, "error", err)
			return err
		}
		if existing != nil {
			continue
		}
		if err := s.tags.CreateTag(ctx, &tag); err != nil {
			slog.Error("Failed to seed default tag", "name", tag.Name, "error", err)
			return err
		}
		seeded++
	}

	if seeded > 0 {
		slog.Info("Default tags seeded", "count", seeded)
	} else {
		slog.Info("Default tags already present, skipping")
	}
	return nil
}
