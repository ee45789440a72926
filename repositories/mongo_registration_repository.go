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
)

type mongoRegistrationRepository struct {
	client        *mongo.Client
	registrations *mongo.Collection
	camps         *mongo.Collection
}

func NewMongoRegistrationRepository(db *mongo.Database) RegistrationRepository {
	return &mongoRegistrationRepository{
		client:        db.Client(),
		registrations: db.Collection(RegistrationsCollection),
		camps:         db.Collection(CampsCollection),
	}
}

func (r *mongoRegistrationRepository) Create(ctx context.Context, reg *models.Registration) error {
	reg.UpdatedAt = reg.CreatedAt
	return runMongoTx(ctx, r.client, func(sc mongo.SessionContext) error {
		if _, err := r.registrations.InsertOne(sc, reg); err != nil {
			if mongo.IsDuplicateKeyError(err) {
				return ErrRegistrationConflict
			}
			return fmt.Errorf("failed to create registration: %w", err)
		}
		_, err := adjustMongoCampCount(sc, r.camps, reg.CampID, 1)
		return err
	})
}

func (r *mongoRegistrationRepository) FindByID(ctx context.Context, id string) (*models.Registration, error) {
	return r.findOne(ctx, bson.M{"_id": id})
}

func (r *mongoRegistrationRepository) FindByIDAndParticipant(ctx context.Context, id, email string) (*models.Registration, error) {
	return r.findOne(ctx, bson.M{"_id": id, "participantEmail": email})
}

func (r *mongoRegistrationRepository) FindByCampAndParticipant(ctx context.Context, campID, email string) (*models.Registration, error) {
	return r.findOne(ctx, bson.M{"campId": campID, "participantEmail": email})
}

func (r *mongoRegistrationRepository) findOne(ctx context.Context, filter bson.M) (*models.Registration, error) {
	var reg models.Registration
	if err := r.registrations.FindOne(ctx, filter).Decode(&reg); err != nil {
		if errors.Is(err, mongo.ErrNoDocuments) {
			return nil, ErrRegistrationNotFound
		}
		return nil, fmt.Errorf("failed to find registration: %w", err)
	}
	return &reg, nil
}

func (r *mongoRegistrationRepository) MarkPaid(ctx context.Context, id string, transactionID *string, at time.Time) (bool, error) {
	filter := bson.M{"_id": id, "paymentStatus": models.PaymentPay}
	set := bson.M{
		"confirmationStatus": models.ConfirmationProcessing,
		"paymentStatus":      models.PaymentPaid,
		"paidAt":             at,
		"updatedAt":          at,
	}
	if transactionID != nil {
		set["transactionId"] = *transactionID
	}
	res, err := r.registrations.UpdateOne(ctx, filter, bson.M{"$set": set})
	if err != nil {
		if mongo.IsDuplicateKeyError(err) {
			return false, ErrTransactionConflict
		}
		return false, fmt.Errorf("failed to mark registration paid: %w", err)
	}
	return res.ModifiedCount > 0, nil
}

func (r *mongoRegistrationRepository) MarkConfirmed(ctx context.Context, id string, at time.Time) (bool, error) {
	filter := bson.M{
		"_id":                id,
		"confirmationStatus": models.ConfirmationProcessing,
		"paymentStatus":      models.PaymentPaid,
	}
	update := bson.M{"$set": bson.M{"confirmationStatus": models.ConfirmationConfirmed, "updatedAt": at}}
	res, err := r.registrations.UpdateOne(ctx, filter, update)
	if err != nil {
		return false, fmt.Errorf("failed to confirm registration: %w", err)
	}
	return res.ModifiedCount > 0, nil
}

func (r *mongoRegistrationRepository) DeleteByCampAndParticipant(ctx context.Context, campID, email string) (*models.Registration, error) {
	return r.deleteOne(ctx, bson.M{"campId": campID, "participantEmail": email})
}

func (r *mongoRegistrationRepository) DeleteByID(ctx context.Context, id string) (*models.Registration, error) {
	return r.deleteOne(ctx, bson.M{"_id": id})
}

func (r *mongoRegistrationRepository) deleteOne(ctx context.Context, filter bson.M) (*models.Registration, error) {
	var deleted *models.Registration
	err := runMongoTx(ctx, r.client, func(sc mongo.SessionContext) error {
		deleted = nil
		var reg models.Registration
		if err := r.registrations.FindOneAndDelete(sc, filter).Decode(&reg); err != nil {
			if errors.Is(err, mongo.ErrNoDocuments) {
				return nil
			}
			return fmt.Errorf("failed to delete registration: %w", err)
		}
		if _, err := adjustMongoCampCount(sc, r.camps, reg.CampID, -1); err != nil && !errors.Is(err, ErrCampCountUnderflow) {
			return err
		}
		deleted = &reg
		return nil
	})
	if err != nil {
		return nil, err
	}
	return deleted, nil
}

func (r *mongoRegistrationRepository) CountByCamp(ctx context.Context, campID string) (int, error) {
	n, err := r.registrations.CountDocuments(ctx, bson.M{"campId": campID})
	if err != nil {
		return 0, fmt.Errorf("failed to count camp registrations: %w", err)
	}
	return int(n), nil
}

func (r *mongoRegistrationRepository) ListPaid(ctx context.Context, filter models.PaidRegistrationsFilter) ([]models.RegistrationWithCamp, error) {
	return r.aggregateJoined(ctx, PaidRegistrationsPipeline(filter))
}

func (r *mongoRegistrationRepository) CountPaid(ctx context.Context, filter models.PaidRegistrationsFilter) (int, error) {
	n, err := r.registrations.CountDocuments(ctx, paidRegistrationsMatch(filter))
	if err != nil {
		return 0, fmt.Errorf("failed to count paid registrations: %w", err)
	}
	return int(n), nil
}

func (r *mongoRegistrationRepository) ListByParticipant(ctx context.Context, email string) ([]models.RegistrationWithCamp, error) {
	pipeline := mongo.Pipeline{
		{{Key: "$match", Value: bson.M{"participantEmail": email}}},
		{{Key: "$sort", Value: bson.D{{Key: "createdAt", Value: -1}}}},
	}
	return r.aggregateJoined(ctx, append(pipeline, campLookupStages()...))
}

func (r *mongoRegistrationRepository) Stats(ctx context.Context) (models.RegistrationStats, error) {
	pipeline := append(campLookupStages(), bson.D{{Key: "$group", Value: bson.D{
		{Key: "_id", Value: nil},
		{Key: "total", Value: bson.M{"$sum": 1}},
		{Key: "paid", Value: bson.M{"$sum": bson.M{"$cond": bson.A{
			bson.M{"$eq": bson.A{"$paymentStatus", models.PaymentPaid}}, 1, 0,
		}}}},
		{Key: "confirmed", Value: bson.M{"$sum": bson.M{"$cond": bson.A{
			bson.M{"$eq": bson.A{"$confirmationStatus", models.ConfirmationConfirmed}}, 1, 0,
		}}}},
		{Key: "feesCollected", Value: bson.M{"$sum": bson.M{"$cond": bson.A{
			bson.M{"$eq": bson.A{"$paymentStatus", models.PaymentPaid}}, "$camp.fees", 0,
		}}}},
	}}})

	cursor, err := r.registrations.Aggregate(ctx, pipeline)
	if err != nil {
		return models.RegistrationStats{}, fmt.Errorf("failed to load registration stats: %w", err)
	}
	defer cursor.Close(ctx)

	var stats models.RegistrationStats
	if cursor.Next(ctx) {
		var row struct {
			Total         int     `bson:"total"`
			Paid          int     `bson:"paid"`
			Confirmed     int     `bson:"confirmed"`
			FeesCollected float64 `bson:"feesCollected"`
		}
		if err := cursor.Decode(&row); err != nil {
			return models.RegistrationStats{}, fmt.Errorf("failed to decode registration stats: %w", err)
		}
		stats = models.RegistrationStats{
			Total:         row.Total,
			Paid:          row.Paid,
			Confirmed:     row.Confirmed,
			FeesCollected: row.FeesCollected,
		}
	}
	return stats, cursor.Err()
}

func (r *mongoRegistrationRepository) aggregateJoined(ctx context.Context, pipeline mongo.Pipeline) ([]models.RegistrationWithCamp, error) {
	cursor, err := r.registrations.Aggregate(ctx, pipeline)
	if err != nil {
		return nil, fmt.Errorf("failed to list registrations: %w", err)
	}
	out := make([]models.RegistrationWithCamp, 0)
	if err := cursor.All(ctx, &out); err != nil {
		return nil, fmt.Errorf("failed to decode registrations: %w", err)
	}
	return out, nil
}

// PaidRegistrationsPipeline строит агрегацию для ListPaid: новые заявки первыми,
// при равенстве по id, вместе с данными лагеря.
func PaidRegistrationsPipeline(filter models.PaidRegistrationsFilter) mongo.Pipeline {
	pipeline := mongo.Pipeline{
		{{Key: "$match", Value: paidRegistrationsMatch(filter)}},
		{{Key: "$sort", Value: bson.D{{Key: "createdAt", Value: -1}, {Key: "_id", Value: -1}}}},
		{{Key: "$skip", Value: int64(max(filter.Offset, 0))}},
		{{Key: "$limit", Value: int64(normalizeLimit(filter.Limit, 10, 100))}},
	}
	return append(pipeline, campLookupStages()...)
}

func paidRegistrationsMatch(filter models.PaidRegistrationsFilter) bson.M {
	match := bson.M{"paymentStatus": models.PaymentPaid}
	if strings.TrimSpace(filter.Search) != "" {
		re := containsRegex(filter.Search)
		match["$or"] = bson.A{
			bson.M{"participantName": re},
			bson.M{"confirmationStatus": re},
		}
	}
	return match
}
