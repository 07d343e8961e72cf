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

const recurringCollectionName = "recurring_bookings"

// mongoRecurringBookingRepository implements repository.RecurringBookingRepository
type mongoRecurringBookingRepository struct {
	collection *mongo.Collection
}

// NewMongoRecurringBookingRepository creates a new RecurringBooking repository backed by MongoDB.
func NewMongoRecurringBookingRepository(db *mongo.Database) repository.RecurringBookingRepository {
	return &mongoRecurringBookingRepository{
		collection: db.Collection(recurringCollectionName),
	}
}

// Create inserts a new recurring series. Status defaults to active.
func (r *mongoRecurringBookingRepository) Create(ctx context.Context, rb *domain.RecurringBooking) (primitive.ObjectID, error) {
	if rb.Member == primitive.NilObjectID || rb.Class == primitive.NilObjectID {
		return primitive.NilObjectID, errors.New("recurring booking requires member and class")
	}

	rb.ID = primitive.NewObjectID()
	now := time.Now().UTC()
	rb.CreatedAt = now
	rb.UpdatedAt = now
	if rb.Status == "" {
		rb.Status = domain.RecurringActive
	}

	if _, err := r.collection.InsertOne(ctx, rb); err != nil {
		return primitive.NilObjectID, err
	}
	return rb.ID, nil
}

// GetByID retrieves a recurring series by its ID.
func (r *mongoRecurringBookingRepository) GetByID(ctx context.Context, id primitive.ObjectID) (*domain.RecurringBooking, error) {
	var rb domain.RecurringBooking
	err := r.collection.FindOne(ctx, bson.M{"_id": id}).Decode(&rb)
	if err != nil {
		if errors.Is(err, mongo.ErrNoDocuments) {
			return nil, repository.ErrNotFound
		}
		return nil, err
	}
	return &rb, nil
}

// ListByMember returns a member's series, newest first.
func (r *mongoRecurringBookingRepository) ListByMember(ctx context.Context, memberID primitive.ObjectID) ([]domain.RecurringBooking, error) {
	findOptions := options.Find().SetSort(bson.D{{Key: "createdAt", Value: -1}})
	cursor, err := r.collection.Find(ctx, bson.M{"member": memberID}, findOptions)
	if err != nil {
		return nil, err
	}
	return decodeAll[domain.RecurringBooking](ctx, cursor)
}

func (r *mongoRecurringBookingRepository) UpdateStatus(ctx context.Context, id primitive.ObjectID, status domain.RecurringStatus) error {
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

// EnsureRecurringBookingIndexes creates necessary indexes for the recurring_bookings collection.
func EnsureRecurringBookingIndexes(ctx context.Context, collection *mongo.Collection) error {
	_, err := collection.Indexes().CreateOne(ctx, mongo.IndexModel{
		Keys: bson.D{{Key: "member", Value: 1}, {Key: "createdAt", Value: -1}},
	})
	return err
}
