package mongodb

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/ZinoM21/any-cv-api/internal/domain"

	"github.com/google/uuid"
	"go.mongodb.org/mongo-driver/v2/bson"
	"go.mongodb.org/mongo-driver/v2/mongo"
	"go.mongodb.org/mongo-driver/v2/mongo/options"
)

type profileRepository struct {
	collection *mongo.Collection
}

func NewProfileRepository(db *mongo.Database) domain.ProfileRepository {
	return &profileRepository{collection: db.Collection("profiles")}
}

// EnsureProfileIndexes creates the indexes the repository relies on:
// a unique key on identifier, a sparse unique key on the publishing slug and
// a TTL index that evicts expired guest profiles.
func EnsureProfileIndexes(ctx context.Context, db *mongo.Database) error {
	_, err := db.Collection("profiles").Indexes().CreateMany(ctx, []mongo.IndexModel{
		{
			Keys:    bson.D{{Key: "identifier", Value: 1}},
			Options: options.Index().SetUnique(true),
		},
		{
			Keys:    bson.D{{Key: "publishing.slug", Value: 1}},
			Options: options.Index().SetUnique(true).SetSparse(true),
		},
		{
			Keys:    bson.D{{Key: "expiresAt", Value: 1}},
			Options: options.Index().SetExpireAfterSeconds(0),
		},
		{
			Keys: bson.D{{Key: "userId", Value: 1}},
		},
	})
	return err
}

// Upsert replaces the profile stored under profile.Identifier wholesale,
// inserting when absent, and returns the stored form. There is no version
// check: concurrent upserts of the same identifier are last-writer-wins.
func (r *profileRepository) Upsert(ctx context.Context, profile *domain.Profile) (*domain.Profile, error) {
	now := time.Now().UTC()
	profile.UpdatedAt = now

	raw, err := bson.Marshal(profile)
	if err != nil {
		return nil, fmt.Errorf("failed to marshal profile: %w", err)
	}
	var doc bson.M
	if err := bson.Unmarshal(raw, &doc); err != nil {
		return nil, fmt.Errorf("failed to build update document: %w", err)
	}
	// _id and createdAt are immutable once stored; they only apply on insert.
	delete(doc, "_id")
	delete(doc, "createdAt")

	id := profile.ID
	if id == "" {
		id = uuid.NewString()
	}

	update := bson.M{
		"$set": doc,
		"$setOnInsert": bson.M{
			"_id":       id,
			"createdAt": now,
		},
	}

	opts := options.FindOneAndUpdate().
		SetUpsert(true).
		SetReturnDocument(options.After)

	var stored domain.Profile
	err = r.collection.FindOneAndUpdate(ctx, bson.M{"identifier": profile.Identifier}, update, opts).Decode(&stored)
	if err != nil {
		return nil, fmt.Errorf("failed to upsert profile %s: %w", profile.Identifier, err)
	}
	return &stored, nil
}

func (r *profileRepository) FindByIdentifier(ctx context.Context, identifier string) (*domain.Profile, error) {
	var profile domain.Profile
	err := r.collection.FindOne(ctx, bson.M{"identifier": identifier}).Decode(&profile)
	if err != nil {
		if errors.Is(err, mongo.ErrNoDocuments) {
			return nil, nil
		}
		return nil, err
	}
	return &profile, nil
}

func (r *profileRepository) FindByUserID(ctx context.Context, userID string) ([]domain.Profile, error) {
	opts := options.Find().SetSort(bson.D{{Key: "createdAt", Value: -1}})
	cursor, err := r.collection.Find(ctx, bson.M{"userId": userID}, opts)
	if err != nil {
		return nil, err
	}
	defer cursor.Close(ctx)

	profiles := []domain.Profile{}
	if err := cursor.All(ctx, &profiles); err != nil {
		return nil, err
	}
	return profiles, nil
}

func (r *profileRepository) FindPublished(ctx context.Context) ([]domain.Profile, error) {
	opts := options.Find().SetSort(bson.D{{Key: "publishing.publishedAt", Value: -1}})
	cursor, err := r.collection.Find(ctx, bson.M{"publishing": bson.M{"$exists": true}}, opts)
	if err != nil {
		return nil, err
	}
	defer cursor.Close(ctx)

	profiles := []domain.Profile{}
	if err := cursor.All(ctx, &profiles); err != nil {
		return nil, err
	}
	return profiles, nil
}

func (r *profileRepository) FindPublishedBySlug(ctx context.Context, slug string) (*domain.Profile, error) {
	var profile domain.Profile
	err := r.collection.FindOne(ctx, bson.M{"publishing.slug": slug}).Decode(&profile)
	if err != nil {
		if errors.Is(err, mongo.ErrNoDocuments) {
			return nil, nil
		}
		return nil, err
	}
	return &profile, nil
}

func (r *profileRepository) Delete(ctx context.Context, identifier string) error {
	result, err := r.collection.DeleteOne(ctx, bson.M{"identifier": identifier})
	if err != nil {
		return fmt.Errorf("failed to delete profile %s: %w", identifier, err)
	}
	if result.DeletedCount == 0 {
		return mongo.ErrNoDocuments
	}
	return nil
}

func (r *profileRepository) DeleteByUserID(ctx context.Context, userID string) error {
	_, err := r.collection.DeleteMany(ctx, bson.M{"userId": userID})
	return err
}
