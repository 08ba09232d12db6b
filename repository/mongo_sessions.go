package repository

import (
	"context"
	"fmt"
	"log/slog"
	"time"

	"github.com/prepmate/backend/models"
	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/bson/primitive"
	"go.mongodb.org/mongo-driver/mongo"
	"go.mongodb.org/mongo-driver/mongo/options"
)

// SessionRepository is the live session document store. Mutations are
// keyed update operations backed by Mongo's atomic field updates;
// concurrent writes to the same session are last-write-wins at the
// field level and need no application-level locking.
type SessionRepository struct {
	col *mongo.Collection
}

func NewSessionRepository(db *mongo.Database) *SessionRepository {
	return &SessionRepository{col: db.Collection("sessions")}
}

// ListFilter narrows a session listing. Zero values mean "no filter".
type ListFilter struct {
	TypeSubstring string
	Difficulty    string
	StartDate     *time.Time
	EndDate       *time.Time
}

// Get returns the session with the given hex identifier, or (nil, nil)
// when the identifier is malformed or resolves to nothing.
func (r *SessionRepository) Get(ctx context.Context, id string) (*models.Session, error) {
	objID, err := primitive.ObjectIDFromHex(id)
	if err != nil {
		return nil, nil
	}

	var session models.Session
	if err := r.col.FindOne(ctx, bson.M{"_id": objID}).Decode(&session); err != nil {
		if err == mongo.ErrNoDocuments {
			return nil, nil
		}
		slog.Error("Failed to get session", "error", err, "session_id", id)
		return nil, err
	}
	return &session, nil
}

// List returns sessions matching the filter, newest first.
func (r *SessionRepository) List(ctx context.Context, filter ListFilter) ([]models.Session, error) {
	query := bson.M{}
	if filter.TypeSubstring != "" {
		query["interview_type"] = bson.M{"$regex": filter.TypeSubstring, "$options": "i"}
	}
	if filter.Difficulty != "" {
		query["difficulty"] = filter.Difficulty
	}
	if filter.StartDate != nil && filter.EndDate != nil {
		query["timestamp"] = bson.M{"$gte": *filter.StartDate, "$lte": *filter.EndDate}
	}

	opts := options.Find().SetSort(bson.D{{Key: "timestamp", Value: -1}})
	cursor, err := r.col.Find(ctx, query, opts)
	if err != nil {
		slog.Error("Failed to list sessions", "error", err)
		return nil, err
	}
	defer cursor.Close(ctx)

	sessions := []models.Session{}
	if err := cursor.All(ctx, &sessions); err != nil {
		slog.Error("Failed to decode sessions", "error", err)
		return nil, err
	}
	return sessions, nil
}

// Insert stores a new session and fills in its generated identifier.
func (r *SessionRepository) Insert(ctx context.Context, session *models.Session) error {
	if session.ID.IsZero() {
		session.ID = primitive.NewObjectID()
	}
	if _, err := r.col.InsertOne(ctx, session); err != nil {
		slog.Error("Failed to insert session", "error", err)
		return err
	}
	slog.Info("Session created", "session_id", session.ID.Hex())
	return nil
}

// Delete removes a session and returns how many documents were deleted.
func (r *SessionRepository) Delete(ctx context.Context, id string) (int64, error) {
	objID, err := primitive.ObjectIDFromHex(id)
	if err != nil {
		return 0, nil
	}
	res, err := r.col.DeleteOne(ctx, bson.M{"_id": objID})
	if err != nil {
		slog.Error("Failed to delete session", "error", err, "session_id", id)
		return 0, err
	}
	return res.DeletedCount, nil
}

// AppendAnswer pushes a transcribed answer onto the session's ordered
// answer list. The boolean reports whether the session exists.
func (r *SessionRepository) AppendAnswer(ctx context.Context, id string, answer string) (bool, error) {
	return r.updateByID(ctx, id, bson.M{"$push": bson.M{"answers": answer}})
}

// SetEvaluations replaces the session's evaluations wholesale.
// Evaluations are never field-patched after this.
func (r *SessionRepository) SetEvaluations(ctx context.Context, id string, evaluations []models.Evaluation) (bool, error) {
	return r.updateByID(ctx, id, bson.M{"$set": bson.M{"evaluations": evaluations}})
}

// SetStatus updates the session lifecycle status.
func (r *SessionRepository) SetStatus(ctx context.Context, id string, status string) (bool, error) {
	return r.updateByID(ctx, id, bson.M{"$set": bson.M{"status": status}})
}

// SetNotes replaces the session's free-text notes.
func (r *SessionRepository) SetNotes(ctx context.Context, id string, notes string) (bool, error) {
	return r.updateByID(ctx, id, bson.M{"$set": bson.M{"notes": notes}})
}

// SetRating records a 1-5 rating for the feedback on one question.
func (r *SessionRepository) SetRating(ctx context.Context, id string, questionIndex int, rating int) (bool, error) {
	field := fmt.Sprintf("feedback_ratings.%d", questionIndex)
	return r.updateByID(ctx, id, bson.M{"$set": bson.M{field: rating}})
}

// SetComment records a free-text comment on one question's feedback.
func (r *SessionRepository) SetComment(ctx context.Context, id string, questionIndex int, comment string) (bool, error) {
	field := fmt.Sprintf("comments.%d", questionIndex)
	return r.updateByID(ctx, id, bson.M{"$set": bson.M{field: comment}})
}

// AddTagName adds a tag name to the session's tag set.
func (r *SessionRepository) AddTagName(ctx context.Context, id string, tagName string) (bool, error) {
	return r.updateByID(ctx, id, bson.M{"$addToSet": bson.M{"tags": tagName}})
}

// RemoveTagName pulls a tag name from every session carrying it and
// returns how many sessions were modified. Used when a tag definition
// is deleted so the denormalized arrays stay in sync.
func (r *SessionRepository) RemoveTagName(ctx context.Context, tagName string) (int64, error) {
	res, err := r.col.UpdateMany(ctx, bson.M{"tags": tagName}, bson.M{"$pull": bson.M{"tags": tagName}})
	if err != nil {
		slog.Error("Failed to remove tag from sessions", "error", err, "tag", tagName)
		return 0, err
	}
	return res.ModifiedCount, nil
}

func (r *SessionRepository) updateByID(ctx context.Context, id string, update bson.M) (bool, error) {
	objID, err := primitive.ObjectIDFromHex(id)
	if err != nil {
		return false, nil
	}
	res, err := r.col.UpdateOne(ctx, bson.M{"_id": objID}, update)
	if err != nil {
		slog.Error("Failed to update session", "error", err, "session_id", id)
		return false, err
	}
	return res.MatchedCount > 0, nil
}
