package repositories

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/Dosada05/medcamp/models"
	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/mongo"
	"go.mongodb.org/mongo-driver/mongo/options"
)

type mongoUserRepository struct {
	users *mongo.Collection
}

func NewMongoUserRepository(db *mongo.Database) UserRepository {
	return &mongoUserRepository{users: db.Collection(UsersCollection)}
}

func (r *mongoUserRepository) Create(ctx context.Context, user *models.User) error {
	user.CreatedAt = time.Now().UTC()
	if _, err := r.users.InsertOne(ctx, user); err != nil {
		if mongo.IsDuplicateKeyError(err) {
			return ErrUserEmailConflict
		}
		return fmt.Errorf("failed to create user: %w", err)
	}
	return nil
}

func (r *mongoUserRepository) GetByEmail(ctx context.Context, email string) (*models.User, error) {
	var user models.User
	err := r.users.FindOne(ctx, bson.M{"email": email}).Decode(&user)
	if err != nil {
		if errors.Is(err, mongo.ErrNoDocuments) {
			return nil, ErrUserNotFound
		}
		return nil, fmt.Errorf("failed to find user: %w", err)
	}
	return &user, nil
}

func (r *mongoUserRepository) UpdateProfile(ctx context.Context, email string, patch models.UserProfilePatch) (*models.User, error) {
	set := bson.M{}
	if patch.Name != nil {
		set["name"] = *patch.Name
	}
	if patch.Photo != nil {
		set["photo"] = *patch.Photo
	}
	if len(set) == 0 {
		return r.GetByEmail(ctx, email)
	}

	var user models.User
	opts := options.FindOneAndUpdate().SetReturnDocument(options.After)
	err := r.users.FindOneAndUpdate(ctx, bson.M{"email": email}, bson.M{"$set": set}, opts).Decode(&user)
	if err != nil {
		if errors.Is(err, mongo.ErrNoDocuments) {
			return nil, ErrUserNotFound
		}
		return nil, fmt.Errorf("failed to update user: %w", err)
	}
	return &user, nil
}

func (r *mongoUserRepository) Count(ctx context.Context) (int, error) {
	n, err := r.users.CountDocuments(ctx, bson.M{})
	if err != nil {
		return 0, fmt.Errorf("failed to count users: %w", err)
	}
	return int(n), nil
}
