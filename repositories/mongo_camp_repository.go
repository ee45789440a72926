package repositories

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/Dosada05/medcamp/models"
	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/mongo"
	"go.mongodb.org/mongo-driver/mongo/options"
)

type mongoCampRepository struct {
	camps         *mongo.Collection
	registrations *mongo.Collection
}

func NewMongoCampRepository(db *mongo.Database) CampRepository {
	return &mongoCampRepository{
		camps:         db.Collection(CampsCollection),
		registrations: db.Collection(RegistrationsCollection),
	}
}

func (r *mongoCampRepository) Create(ctx context.Context, c *models.Camp) error {
	c.CreatedAt = time.Now().UTC()
	if _, err := r.camps.InsertOne(ctx, c); err != nil {
		return fmt.Errorf("failed to create camp: %w", err)
	}
	return nil
}

func (r *mongoCampRepository) GetByID(ctx context.Context, id string) (*models.Camp, error) {
	var camp models.Camp
	if err := r.camps.FindOne(ctx, bson.M{"_id": id}).Decode(&camp); err != nil {
		if errors.Is(err, mongo.ErrNoDocuments) {
			return nil, ErrCampNotFound
		}
		return nil, fmt.Errorf("failed to find camp: %w", err)
	}
	return &camp, nil
}

func (r *mongoCampRepository) List(ctx context.Context, filter ListCampsFilter) ([]models.Camp, int, error) {
	query := bson.M{}
	if strings.TrimSpace(filter.Search) != "" {
		re := containsRegex(filter.Search)
		query["$or"] = bson.A{
			bson.M{"name": re},
			bson.M{"location": re},
			bson.M{"healthcareProfessional": re},
		}
	}

	total, err := r.camps.CountDocuments(ctx, query)
	if err != nil {
		return nil, 0, fmt.Errorf("failed to count camps: %w", err)
	}

	opts := options.Find().
		SetSort(mongoCampSort(filter.Sort)).
		SetSkip(int64(max(filter.Offset, 0))).
		SetLimit(int64(normalizeLimit(filter.Limit, 20, 100)))

	cursor, err := r.camps.Find(ctx, query, opts)
	if err != nil {
		return nil, 0, fmt.Errorf("failed to list camps: %w", err)
	}
	camps := make([]models.Camp, 0)
	if err := cursor.All(ctx, &camps); err != nil {
		return nil, 0, fmt.Errorf("failed to decode camps: %w", err)
	}
	return camps, int(total), nil
}

func (r *mongoCampRepository) Update(ctx context.Context, c *models.Camp) error {
	update := bson.M{"$set": bson.M{
		"name":                   c.Name,
		"description":            c.Description,
		"location":               c.Location,
		"date":                   c.Date,
		"fees":                   c.Fees,
		"healthcareProfessional": c.HealthcareProfessional,
	}}
	res, err := r.camps.UpdateOne(ctx, bson.M{"_id": c.ID}, update)
	if err != nil {
		return fmt.Errorf("failed to update camp: %w", err)
	}
	if res.MatchedCount == 0 {
		return ErrCampNotFound
	}
	return nil
}

func (r *mongoCampRepository) UpdateImageKey(ctx context.Context, id string, imageKey *string) error {
	res, err := r.camps.UpdateOne(ctx, bson.M{"_id": id}, bson.M{"$set": bson.M{"imageKey": imageKey}})
	if err != nil {
		return fmt.Errorf("failed to update camp image: %w", err)
	}
	if res.MatchedCount == 0 {
		return ErrCampNotFound
	}
	return nil
}

func (r *mongoCampRepository) Delete(ctx context.Context, id string) error {
	return runMongoTx(ctx, r.camps.Database().Client(), func(sc mongo.SessionContext) error {
		res, err := r.camps.DeleteOne(sc, bson.M{"_id": id})
		if err != nil {
			return fmt.Errorf("failed to delete camp: %w", err)
		}
		if res.DeletedCount == 0 {
			return ErrCampNotFound
		}
		if _, err := r.registrations.DeleteMany(sc, bson.M{"campId": id}); err != nil {
			return fmt.Errorf("failed to delete camp registrations: %w", err)
		}
		return nil
	})
}

func (r *mongoCampRepository) AdjustParticipantCount(ctx context.Context, id string, delta int) (*models.Camp, error) {
	return adjustMongoCampCount(ctx, r.camps, id, delta)
}

func (r *mongoCampRepository) SetParticipantCount(ctx context.Context, id string, count int) (*models.Camp, error) {
	var camp models.Camp
	opts := options.FindOneAndUpdate().SetReturnDocument(options.After)
	err := r.camps.FindOneAndUpdate(ctx, bson.M{"_id": id}, bson.M{"$set": bson.M{"participantCount": count}}, opts).Decode(&camp)
	if err != nil {
		if errors.Is(err, mongo.ErrNoDocuments) {
			return nil, ErrCampNotFound
		}
		return nil, fmt.Errorf("failed to set participant count: %w", err)
	}
	return &camp, nil
}

func (r *mongoCampRepository) Count(ctx context.Context) (int, error) {
	n, err := r.camps.CountDocuments(ctx, bson.M{})
	if err != nil {
		return 0, fmt.Errorf("failed to count camps: %w", err)
	}
	return int(n), nil
}

// adjustMongoCampCount increments with $inc; decrements only match documents
// whose counter stays non-negative.
func adjustMongoCampCount(ctx context.Context, camps *mongo.Collection, id string, delta int) (*models.Camp, error) {
	filter := bson.M{"_id": id}
	if delta < 0 {
		filter["participantCount"] = bson.M{"$gte": -delta}
	}

	var camp models.Camp
	opts := options.FindOneAndUpdate().SetReturnDocument(options.After)
	err := camps.FindOneAndUpdate(ctx, filter, bson.M{"$inc": bson.M{"participantCount": delta}}, opts).Decode(&camp)
	if err == nil {
		return &camp, nil
	}
	if !errors.Is(err, mongo.ErrNoDocuments) {
		return nil, fmt.Errorf("failed to adjust participant count: %w", err)
	}

	n, err := camps.CountDocuments(ctx, bson.M{"_id": id})
	if err != nil {
		return nil, fmt.Errorf("failed to check camp existence: %w", err)
	}
	if n > 0 {
		return nil, ErrCampCountUnderflow
	}
	return nil, ErrCampNotFound
}

func mongoCampSort(sort models.CampSort) bson.D {
	switch sort {
	case models.CampSortParticipants:
		return bson.D{{Key: "participantCount", Value: -1}, {Key: "createdAt", Value: -1}}
	case models.CampSortFees:
		return bson.D{{Key: "fees", Value: 1}, {Key: "createdAt", Value: -1}}
	case models.CampSortName:
		return bson.D{{Key: "name", Value: 1}}
	case models.CampSortDate:
		return bson.D{{Key: "date", Value: 1}}
	default:
		return bson.D{{Key: "createdAt", Value: -1}}
	}
}
