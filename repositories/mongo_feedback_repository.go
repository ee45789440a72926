package repositories

import (
	"context"
	"fmt"
	"time"

	"github.com/Dosada05/medcamp/models"
	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/mongo"
	"go.mongodb.org/mongo-driver/mongo/options"
)

type mongoFeedbackRepository struct {
	feedback *mongo.Collection
	camps    *mongo.Collection
}

func NewMongoFeedbackRepository(db *mongo.Database) FeedbackRepository {
	return &mongoFeedbackRepository{
		feedback: db.Collection(FeedbackCollection),
		camps:    db.Collection(CampsCollection),
	}
}

func (r *mongoFeedbackRepository) Create(ctx context.Context, fb *models.Feedback) error {
	// Mongo has no foreign keys, so the camp reference is checked by hand.
	n, err := r.camps.CountDocuments(ctx, bson.M{"_id": fb.CampID})
	if err != nil {
		return fmt.Errorf("failed to check feedback camp: %w", err)
	}
	if n == 0 {
		return ErrFeedbackCampInvalid
	}
	if fb.Date.IsZero() {
		fb.Date = time.Now().UTC()
	}
	if _, err := r.feedback.InsertOne(ctx, fb); err != nil {
		return fmt.Errorf("failed to create feedback: %w", err)
	}
	return nil
}

func (r *mongoFeedbackRepository) List(ctx context.Context, limit int) ([]models.Feedback, error) {
	opts := options.Find().
		SetSort(bson.D{{Key: "date", Value: -1}}).
		SetLimit(int64(normalizeLimit(limit, 20, 100)))
	return r.find(ctx, bson.M{}, opts)
}

func (r *mongoFeedbackRepository) ListByCamp(ctx context.Context, campID string) ([]models.Feedback, error) {
	opts := options.Find().SetSort(bson.D{{Key: "date", Value: -1}})
	return r.find(ctx, bson.M{"campId": campID}, opts)
}

func (r *mongoFeedbackRepository) find(ctx context.Context, filter bson.M, opts *options.FindOptions) ([]models.Feedback, error) {
	cursor, err := r.feedback.Find(ctx, filter, opts)
	if err != nil {
		return nil, fmt.Errorf("failed to list feedback: %w", err)
	}
	out := make([]models.Feedback, 0)
	if err := cursor.All(ctx, &out); err != nil {
		return nil, fmt.Errorf("failed to decode feedback: %w", err)
	}
	return out, nil
}
