package repository

import (
	"context"
	"errors"
	"fmt"

	"quicknotes/metrics"
	"quicknotes/model"

	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/mongo"
	"go.mongodb.org/mongo-driver/mongo/options"
)

var (
	ErrDuplicateNoteID = errors.New("note id already exists")
	ErrInvalidNote     = errors.New("note id is required")
)

const notesCollection = "notes"

type MongoNotesRepo struct {
	MongoCollection *mongo.Collection
}

func GetNotesRepo(client *mongo.Client, database string) *MongoNotesRepo {
	return &MongoNotesRepo{
		MongoCollection: client.Database(database).Collection(notesCollection),
	}
}

// FindAll retrieves all notes for a user, oldest first
func (r *MongoNotesRepo) FindAll(ctx context.Context, userID string) ([]*model.Note, error) {
	return r.find(ctx, "find_all", bson.M{"user_id": userID})
}

// FindByCategory retrieves the user's notes of one category
func (r *MongoNotesRepo) FindByCategory(ctx context.Context, userID string, category model.Category) ([]*model.Note, error) {
	return r.find(ctx, "find_by_category", bson.M{"user_id": userID, "category": category})
}

func (r *MongoNotesRepo) find(ctx context.Context, op string, filter bson.M) ([]*model.Note, error) {
	timer := metrics.TrackDBOperation(op, notesCollection)
	defer timer.ObserveDuration()

	opts := options.Find().SetSort(bson.D{{Key: "created_at", Value: 1}})
	cursor, err := r.MongoCollection.Find(ctx, filter, opts)
	if err != nil {
		return nil, fmt.Errorf("find notes: %w", err)
	}
	defer cursor.Close(ctx)

	notes := make([]*model.Note, 0)
	if err = cursor.All(ctx, &notes); err != nil {
		return nil, fmt.Errorf("decode notes: %w", err)
	}
	return notes, nil
}

// FindOne retrieves a specific note, nil when absent or not owned
func (r *MongoNotesRepo) FindOne(ctx context.Context, noteID, userID string) (*model.Note, error) {
	timer := metrics.TrackDBOperation("find_one", notesCollection)
	defer timer.ObserveDuration()

	var note model.Note
	err := r.MongoCollection.FindOne(ctx, ownedFilter(noteID, userID)).Decode(&note)
	if err != nil {
		if errors.Is(err, mongo.ErrNoDocuments) {
			return nil, nil
		}
		return nil, fmt.Errorf("find note: %w", err)
	}
	return &note, nil
}

func (r *MongoNotesRepo) Insert(ctx context.Context, note *model.Note) error {
	if note == nil || note.ID == "" {
		return ErrInvalidNote
	}

	timer := metrics.TrackDBOperation("insert", notesCollection)
	defer timer.ObserveDuration()

	if _, err := r.MongoCollection.InsertOne(ctx, note); err != nil {
		if mongo.IsDuplicateKeyError(err) {
			return ErrDuplicateNoteID
		}
		return fmt.Errorf("insert note: %w", err)
	}
	return nil
}

// Update sets only the supplied fields and returns the merged document
func (r *MongoNotesRepo) Update(ctx context.Context, noteID, userID string, patch model.NotePatch) (*model.Note, error) {
	set := bson.M{}
	if patch.Title != nil {
		set["title"] = *patch.Title
	}
	if patch.Content != nil {
		set["content"] = *patch.Content
	}
	if patch.Category != nil {
		set["category"] = *patch.Category
	}
	if !patch.UpdatedAt.IsZero() {
		set["updated_at"] = patch.UpdatedAt
	}
	if len(set) == 0 {
		return r.FindOne(ctx, noteID, userID)
	}

	timer := metrics.TrackDBOperation("update", notesCollection)
	defer timer.ObserveDuration()

	opts := options.FindOneAndUpdate().SetReturnDocument(options.After)

	var note model.Note
	err := r.MongoCollection.FindOneAndUpdate(ctx, ownedFilter(noteID, userID), bson.M{"$set": set}, opts).Decode(&note)
	if err != nil {
		if errors.Is(err, mongo.ErrNoDocuments) {
			return nil, nil
		}
		return nil, fmt.Errorf("update note: %w", err)
	}
	return &note, nil
}

func (r *MongoNotesRepo) Remove(ctx context.Context, noteID, userID string) (bool, error) {
	timer := metrics.TrackDBOperation("delete", notesCollection)
	defer timer.ObserveDuration()

	result, err := r.MongoCollection.DeleteOne(ctx, ownedFilter(noteID, userID))
	if err != nil {
		return false, fmt.Errorf("delete note: %w", err)
	}
	return result.DeletedCount > 0, nil
}

// Ping checks the connection behind the collection
func (r *MongoNotesRepo) Ping(ctx context.Context) error {
	return r.MongoCollection.Database().Client().Ping(ctx, nil)
}

func ownedFilter(noteID, userID string) bson.M {
	return bson.M{
		"_id":     noteID,
		"user_id": userID,
	}
}
