package repository

import (
	"context"
	"log/slog"
	"time"

	"github.com/prepmate/backend/models"
	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/bson/primitive"
	"go.mongodb.org/mongo-driver/mongo"
	"go.mongodb.org/mongo-driver/mongo/options"
)

// TagRepository stores tag definitions and the session/tag join
// documents. Tag names are the unique key.
type TagRepository struct {
	tags        *mongo.Collection
	sessionTags *mongo.Collection
}

func NewTagRepository(db *mongo.Database) *TagRepository {
	return &TagRepository{
		tags:        db.Collection("tags"),
		sessionTags: db.Collection("session_tags"),
	}
}

// GetTag returns the tag with the given name, or (nil, nil) when no
// such tag exists.
func (r *TagRepository) GetTag(ctx context.Context, name string) (*models.Tag, error) {
	var tag models.Tag
	if err := r.tags.FindOne(ctx, bson.M{"name": name}).Decode(&tag); err != nil {
		if err == mongo.ErrNoDocuments {
			return nil, nil
		}
		slog.Error("Failed to get tag", "error", err, "name", name)
		return nil, err
	}
	return &tag, nil
}

// CreateTag stores a new tag definition and fills in its identifier.
func (r *TagRepository) CreateTag(ctx context.Context, tag *models.Tag) error {
	if tag.ID.IsZero() {
		tag.ID = primitive.NewObjectID()
	}
	if tag.CreatedAt.IsZero() {
		tag.CreatedAt = time.Now()
	}
	if _, err := r.tags.InsertOne(ctx, tag); err != nil {
		slog.Error("Failed to create tag", "error", err, "name", tag.Name)
		return err
	}
	slog.Info("Tag created", "tag_id", tag.ID.Hex(), "name", tag.Name)
	return nil
}

// ListTags returns every tag definition, oldest first.
func (r *TagRepository) ListTags(ctx context.Context) ([]models.Tag, error) {
	opts := options.Find().SetSort(bson.D{{Key: "created_at", Value: 1}})
	cursor, err := r.tags.Find(ctx, bson.M{}, opts)
	if err != nil {
		slog.Error("Failed to list tags", "error", err)
		return nil, err
	}
	defer cursor.Close(ctx)

	tags := []models.Tag{}
	if err := cursor.All(ctx, &tags); err != nil {
		slog.Error("Failed to decode tags", "error", err)
		return nil, err
	}
	return tags, nil
}

// DeleteTag removes a tag definition and its session associations,
// returning how many definitions were deleted.
func (r *TagRepository) DeleteTag(ctx context.Context, name string) (int64, error) {
	res, err := r.tags.DeleteOne(ctx, bson.M{"name": name})
	if err != nil {
		slog.Error("Failed to delete tag", "error", err, "name", name)
		return 0, err
	}
	if _, err := r.sessionTags.DeleteMany(ctx, bson.M{"tag_name": name}); err != nil {
		slog.Error("Failed to delete session tags", "error", err, "name", name)
		return res.DeletedCount, err
	}
	return res.DeletedCount, nil
}

// AddSessionTag records the association between a session and a tag.
func (r *TagRepository) AddSessionTag(ctx context.Context, sessionID string, tagName string) error {
	join := models.SessionTag{
		SessionID: sessionID,
		TagName:   tagName,
		AddedAt:   time.Now(),
	}
	if _, err := r.sessionTags.InsertOne(ctx, join); err != nil {
		slog.Error("Failed to add session tag", "error", err, "session_id", sessionID, "tag", tagName)
		return err
	}
	return nil
}

// GetSessionTags returns the tag names associated with a session.
func (r *TagRepository) GetSessionTags(ctx context.Context, sessionID string) ([]string, error) {
	cursor, err := r.sessionTags.Find(ctx, bson.M{"session_id": sessionID})
	if err != nil {
		slog.Error("Failed to get session tags", "error", err, "session_id", sessionID)
		return nil, err
	}
	defer cursor.Close(ctx)

	joins := []models.SessionTag{}
	if err := cursor.All(ctx, &joins); err != nil {
		slog.Error("Failed to decode session tags", "error", err, "session_id", sessionID)
		return nil, err
	}

	names := make([]string, 0, len(joins))
	for _, j := range joins {
		names = append(names, j.TagName)
	}
	return names, nil
}
