package mongo

import (
	"context"
	"errors"
	"time"

	"ironhouse/gym-api/internal/domain"
	"ironhouse/gym-api/internal/repository"

	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/bson/primitive"
	"go.mongodb.org/mongo-driver/mongo"
	"go.mongodb.org/mongo-driver/mongo/options"
)

const waitlistCollectionName = "waitlists"

// mongoWaitlistRepository implements repository.WaitlistRepository
type mongoWaitlistRepository struct {
	collection *mongo.Collection
}

// NewMongoWaitlistRepository creates the waitlist ledger backed by MongoDB.
func NewMongoWaitlistRepository(db *mongo.Database) repository.WaitlistRepository {
	return &mongoWaitlistRepository{
		collection: db.Collection(waitlistCollectionName),
	}
}

func (r *mongoWaitlistRepository) Create(ctx context.Context, entry *domain.WaitlistEntry) (primitive.ObjectID, error) {
	if entry.Member == primitive.NilObjectID || entry.Class == primitive.NilObjectID {
		return primitive.NilObjectID, errors.New("waitlist entry requires member and class")
	}

	entry.ID = primitive.NewObjectID()
	now := time.Now().UTC()
	entry.CreatedAt = now
	entry.UpdatedAt = now
	if entry.Status == "" {
		entry.Status = domain.WaitlistWaiting
	}

	if _, err := r.collection.InsertOne(ctx, entry); err != nil {
		return primitive.NilObjectID, err
	}
	return entry.ID, nil
}

func (r *mongoWaitlistRepository) GetByID(ctx context.Context, id primitive.ObjectID) (*domain.WaitlistEntry, error) {
	var entry domain.WaitlistEntry
	err := r.collection.FindOne(ctx, bson.M{"_id": id}).Decode(&entry)
	if err != nil {
		if errors.Is(err, mongo.ErrNoDocuments) {
			return nil, repository.ErrNotFound
		}
		return nil, err
	}
	return &entry, nil
}

func (r *mongoWaitlistRepository) CountWaiting(ctx context.Context, slot domain.Slot) (int64, error) {
	filter := slotFilter(slot)
	filter["status"] = domain.WaitlistWaiting
	return r.collection.CountDocuments(ctx, filter)
}

// NextWaiting returns the head of the queue. Ties on position (possible under
// concurrent joins) go to the earlier entry.
func (r *mongoWaitlistRepository) NextWaiting(ctx context.Context, slot domain.Slot) (*domain.WaitlistEntry, error) {
	filter := slotFilter(slot)
	filter["status"] = domain.WaitlistWaiting
	findOptions := options.FindOne().SetSort(bson.D{
		{Key: "position", Value: 1},
		{Key: "createdAt", Value: 1},
	})

	var entry domain.WaitlistEntry
	err := r.collection.FindOne(ctx, filter, findOptions).Decode(&entry)
	if err != nil {
		if errors.Is(err, mongo.ErrNoDocuments) {
			return nil, repository.ErrNotFound
		}
		return nil, err
	}
	return &entry, nil
}

// ListByMember returns a member's entries newest first, optionally limited to statuses.
func (r *mongoWaitlistRepository) ListByMember(ctx context.Context, memberID primitive.ObjectID, statuses ...domain.WaitlistStatus) ([]domain.WaitlistEntry, error) {
	filter := bson.M{"member": memberID}
	if len(statuses) > 0 {
		filter["status"] = bson.M{"$in": statuses}
	}
	findOptions := options.Find().SetSort(bson.D{{Key: "createdAt", Value: -1}})

	cursor, err := r.collection.Find(ctx, filter, findOptions)
	if err != nil {
		return nil, err
	}
	return decodeAll[domain.WaitlistEntry](ctx, cursor)
}

func (r *mongoWaitlistRepository) UpdateStatus(ctx context.Context, id primitive.ObjectID, status domain.WaitlistStatus) error {
	update := bson.M{
		"$set": bson.M{
			"status":    status,
			"updatedAt": time.Now().UTC(),
		},
	}
	result, err := r.collection.UpdateOne(ctx, bson.M{"_id": id}, update)
	if err != nil {
		return err
	}
	if result.MatchedCount == 0 {
		return repository.ErrNotFound
	}
	return nil
}

func (r *mongoWaitlistRepository) ExpireWaitingBefore(ctx context.Context, cutoff time.Time) (int64, error) {
	filter := bson.M{
		"status":    domain.WaitlistWaiting,
		"expiresAt": bson.M{"$lt": cutoff.UTC()},
	}
	update := bson.M{
		"$set": bson.M{
			"status":    domain.WaitlistExpired,
			"updatedAt": time.Now().UTC(),
		},
	}
	result, err := r.collection.UpdateMany(ctx, filter, update)
	if err != nil {
		return 0, err
	}
	return result.ModifiedCount, nil
}

// EnsureWaitlistIndexes creates necessary indexes for the waitlists collection.
func EnsureWaitlistIndexes(ctx context.Context, collection *mongo.Collection) error {
	indexes := []mongo.IndexModel{
		{
			Keys: bson.D{
				{Key: "class", Value: 1},
				{Key: "bookingDate", Value: 1},
				{Key: "startTime", Value: 1},
				{Key: "status", Value: 1},
				{Key: "position", Value: 1},
			},
		},
		{
			Keys: bson.D{{Key: "member", Value: 1}, {Key: "createdAt", Value: -1}},
		},
		{
			Keys: bson.D{{Key: "status", Value: 1}, {Key: "expiresAt", Value: 1}},
		},
	}
	_, err := collection.Indexes().CreateMany(ctx, indexes)
	return err
}
