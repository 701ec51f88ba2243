package repositories

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/debatify/backend/internal/models"
	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/bson/primitive"
	"go.mongodb.org/mongo-driver/mongo"
	"go.mongodb.org/mongo-driver/mongo/options"
)

// ErrContentNotFound is returned when no aggregate matches the given ID.
var ErrContentNotFound = errors.New("content not found")

// ErrInvalidContentID is returned for IDs that are not valid ObjectID hex.
var ErrInvalidContentID = errors.New("invalid content ID format")

// ContentRepository defines the interface for content aggregate operations.
// Every method is parametrized by kind; each kind maps to its own
// MongoDB collection.
type ContentRepository interface {
	Create(ctx context.Context, content *models.Content) error
	GetByID(ctx context.Context, kind models.Kind, id string) (*models.Content, error)
	Replace(ctx context.Context, content *models.Content) error
	Delete(ctx context.Context, kind models.Kind, id string) error
	IncrementViews(ctx context.Context, kind models.Kind, id string) error
	ListAll(ctx context.Context, kind models.Kind) ([]models.Content, error)
	ListByAuthor(ctx context.Context, kind models.Kind, authorID uint) ([]models.Content, error)
	ListByAuthors(ctx context.Context, kind models.Kind, authorIDs []uint) ([]models.Content, error)
	ListBookmarkedBy(ctx context.Context, kind models.Kind, userID uint) ([]models.Content, error)
}

// MongoContentRepository implements ContentRepository for MongoDB
type MongoContentRepository struct {
	db *mongo.Database
}

// NewMongoContentRepository creates a new MongoContentRepository
func NewMongoContentRepository(db *mongo.Database) *MongoContentRepository {
	return &MongoContentRepository{db: db}
}

func (r *MongoContentRepository) collection(kind models.Kind) *mongo.Collection {
	return r.db.Collection(kind.Collection())
}

// Create inserts a new content aggregate
func (r *MongoContentRepository) Create(ctx context.Context, content *models.Content) error {
	content.ID = primitive.NewObjectID()
	content.CreatedAt = time.Now()
	content.UpdatedAt = content.CreatedAt
	if content.Comments == nil {
		content.Comments = []models.Comment{}
	}
	_, err := r.collection(content.Kind).InsertOne(ctx, content)
	return err
}

// GetByID retrieves a content aggregate by ID
func (r *MongoContentRepository) GetByID(ctx context.Context, kind models.Kind, id string) (*models.Content, error) {
	objID, err := primitive.ObjectIDFromHex(id)
	if err != nil {
		return nil, ErrInvalidContentID
	}

	var content models.Content
	err = r.collection(kind).FindOne(ctx, bson.M{"_id": objID}).Decode(&content)
	if err != nil {
		if err == mongo.ErrNoDocuments {
			return nil, ErrContentNotFound
		}
		return nil, err
	}
	return &content, nil
}

// Replace writes back a mutated aggregate (last write wins)
func (r *MongoContentRepository) Replace(ctx context.Context, content *models.Content) error {
	content.UpdatedAt = time.Now()
	res, err := r.collection(content.Kind).ReplaceOne(ctx, bson.M{"_id": content.ID}, content)
	if err != nil {
		return err
	}
	if res.MatchedCount == 0 {
		return ErrContentNotFound
	}
	return nil
}

// Delete removes a content aggregate by ID
func (r *MongoContentRepository) Delete(ctx context.Context, kind models.Kind, id string) error {
	objID, err := primitive.ObjectIDFromHex(id)
	if err != nil {
		return ErrInvalidContentID
	}

	res, err := r.collection(kind).DeleteOne(ctx, bson.M{"_id": objID})
	if err != nil {
		return err
	}
	if res.DeletedCount == 0 {
		return ErrContentNotFound
	}
	return nil
}

// IncrementViews bumps the stored view counter by one
func (r *MongoContentRepository) IncrementViews(ctx context.Context, kind models.Kind, id string) error {
	objID, err := primitive.ObjectIDFromHex(id)
	if err != nil {
		return ErrInvalidContentID
	}
	_, err = r.collection(kind).UpdateOne(ctx, bson.M{"_id": objID}, bson.M{"$inc": bson.M{"views": 1}})
	if err != nil {
		return fmt.Errorf("increment views: %w", err)
	}
	return nil
}

func (r *MongoContentRepository) find(ctx context.Context, kind models.Kind, filter interface{}) ([]models.Content, error) {
	var items []models.Content
	findOptions := options.Find().SetSort(bson.D{{Key: "created_at", Value: -1}})
	cursor, err := r.collection(kind).Find(ctx, filter, findOptions)
	if err != nil {
		return nil, err
	}
	defer cursor.Close(ctx)

	if err = cursor.All(ctx, &items); err != nil {
		return nil, err
	}
	return items, nil
}

// ListAll retrieves every aggregate of the kind, newest first
func (r *MongoContentRepository) ListAll(ctx context.Context, kind models.Kind) ([]models.Content, error) {
	return r.find(ctx, kind, bson.D{})
}

// ListByAuthor retrieves a single author's aggregates
func (r *MongoContentRepository) ListByAuthor(ctx context.Context, kind models.Kind, authorID uint) ([]models.Content, error) {
	return r.find(ctx, kind, bson.M{"author_id": authorID})
}

// ListByAuthors retrieves public aggregates from a set of authors
// (private items are excluded from following feeds)
func (r *MongoContentRepository) ListByAuthors(ctx context.Context, kind models.Kind, authorIDs []uint) ([]models.Content, error) {
	if len(authorIDs) == 0 {
		return []models.Content{}, nil
	}
	return r.find(ctx, kind, bson.M{"author_id": bson.M{"$in": authorIDs}, "is_private": false})
}

// ListBookmarkedBy retrieves aggregates the user has bookmarked
func (r *MongoContentRepository) ListBookmarkedBy(ctx context.Context, kind models.Kind, userID uint) ([]models.Content, error) {
	return r.find(ctx, kind, bson.M{"bookmarked_by": userID})
}
