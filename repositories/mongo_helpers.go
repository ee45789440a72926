package repositories

import (
	"context"
	"fmt"
	"regexp"
	"strings"

	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/bson/primitive"
	"go.mongodb.org/mongo-driver/mongo"
	"go.mongodb.org/mongo-driver/mongo/options"
)

const (
	UsersCollection         = "users"
	CampsCollection         = "camps"
	RegistrationsCollection = "registrations"
	FeedbackCollection      = "feedback"
)

// EnsureMongoIndexes создает индексы, на которых держится уникальность в Mongo.
// Безопасно вызывать при каждом старте.
func EnsureMongoIndexes(ctx context.Context, db *mongo.Database) error {
	indexes := map[string][]mongo.IndexModel{
		UsersCollection: {
			{Keys: bson.D{{Key: "email", Value: 1}}, Options: options.Index().SetUnique(true).SetName("users_email_key")},
		},
		RegistrationsCollection: {
			{
				Keys:    bson.D{{Key: "campId", Value: 1}, {Key: "participantEmail", Value: 1}},
				Options: options.Index().SetUnique(true).SetName("registrations_camp_participant_key"),
			},
			{
				// transactionId отсутствует у неоплаченных заявок, поэтому индекс разреженный.
				Keys:    bson.D{{Key: "transactionId", Value: 1}},
				Options: options.Index().SetUnique(true).SetSparse(true).SetName("registrations_transaction_id_key"),
			},
			{Keys: bson.D{{Key: "paymentStatus", Value: 1}, {Key: "createdAt", Value: -1}}},
		},
		FeedbackCollection: {
			{Keys: bson.D{{Key: "campId", Value: 1}, {Key: "date", Value: -1}}},
		},
	}

	for coll, idx := range indexes {
		if _, err := db.Collection(coll).Indexes().CreateMany(ctx, idx); err != nil {
			return fmt.Errorf("failed to create indexes for %s: %w", coll, err)
		}
	}
	return nil
}

// runMongoTx executes fn inside a multi-document transaction. Requires a
// replica set or sharded cluster.
func runMongoTx(ctx context.Context, client *mongo.Client, fn func(sc mongo.SessionContext) error) error {
	session, err := client.StartSession()
	if err != nil {
		return fmt.Errorf("failed to start mongo session: %w", err)
	}
	defer session.EndSession(ctx)

	_, err = session.WithTransaction(ctx, func(sc mongo.SessionContext) (interface{}, error) {
		return nil, fn(sc)
	})
	return err
}

// containsRegex matches search as a literal, case-insensitive substring.
func containsRegex(search string) primitive.Regex {
	return primitive.Regex{Pattern: regexp.QuoteMeta(strings.TrimSpace(search)), Options: "i"}
}

func campLookupStages() mongo.Pipeline {
	return mongo.Pipeline{
		{{Key: "$lookup", Value: bson.D{
			{Key: "from", Value: CampsCollection},
			{Key: "localField", Value: "campId"},
			{Key: "foreignField", Value: "_id"},
			{Key: "as", Value: "camp"},
		}}},
		{{Key: "$unwind", Value: "$camp"}},
	}
}

func NewMongoStore(db *mongo.Database) *Store {
	return &Store{
		Users:         NewMongoUserRepository(db),
		Camps:         NewMongoCampRepository(db),
		Registrations: NewMongoRegistrationRepository(db),
		Feedback:      NewMongoFeedbackRepository(db),
	}
}
