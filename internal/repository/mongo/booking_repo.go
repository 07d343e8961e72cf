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

const bookingCollectionName = "bookings"

// mongoBookingRepository implements repository.BookingRepository
type mongoBookingRepository struct {
	collection *mongo.Collection
}

// NewMongoBookingRepository creates the booking ledger backed by MongoDB.
func NewMongoBookingRepository(db *mongo.Database) repository.BookingRepository {
	return &mongoBookingRepository{
		collection: db.Collection(bookingCollectionName),
	}
}

// slotFilter matches documents in the slot. An empty StartTime matches every
// session of the class on that date.
func slotFilter(slot domain.Slot) bson.M {
	filter := bson.M{
		"class":       slot.Class,
		"bookingDate": slot.Date,
	}
	if slot.StartTime != "" {
		filter["startTime"] = slot.StartTime
	}
	return filter
}

// Create inserts a new booking. Status defaults to confirmed and type to single.
func (r *mongoBookingRepository) Create(ctx context.Context, booking *domain.Booking) (primitive.ObjectID, error) {
	if booking.Member == primitive.NilObjectID || booking.Class == primitive.NilObjectID {
		return primitive.NilObjectID, errors.New("booking requires member and class")
	}

	booking.ID = primitive.NewObjectID()
	now := time.Now().UTC()
	booking.CreatedAt = now
	booking.UpdatedAt = now
	if booking.Status == "" {
		booking.Status = domain.BookingConfirmed
	}
	if booking.BookingType == "" {
		booking.BookingType = domain.BookingSingle
	}

	if _, err := r.collection.InsertOne(ctx, booking); err != nil {
		return primitive.NilObjectID, err
	}
	return booking.ID, nil
}

// GetByID retrieves a booking by its ID.
func (r *mongoBookingRepository) GetByID(ctx context.Context, id primitive.ObjectID) (*domain.Booking, error) {
	var booking domain.Booking
	err := r.collection.FindOne(ctx, bson.M{"_id": id}).Decode(&booking)
	if err != nil {
		if errors.Is(err, mongo.ErrNoDocuments) {
			return nil, repository.ErrNotFound
		}
		return nil, err
	}
	return &booking, nil
}

func (r *mongoBookingRepository) FindActiveForMember(ctx context.Context, memberID primitive.ObjectID, slot domain.Slot) (*domain.Booking, error) {
	filter := slotFilter(slot)
	filter["member"] = memberID
	filter["status"] = bson.M{"$ne": domain.BookingCancelled}

	var booking domain.Booking
	err := r.collection.FindOne(ctx, filter).Decode(&booking)
	if err != nil {
		if errors.Is(err, mongo.ErrNoDocuments) {
			return nil, repository.ErrNotFound
		}
		return nil, err
	}
	return &booking, nil
}

func (r *mongoBookingRepository) CountActive(ctx context.Context, slot domain.Slot) (int64, error) {
	filter := slotFilter(slot)
	filter["status"] = bson.M{"$ne": domain.BookingCancelled}
	return r.collection.CountDocuments(ctx, filter)
}

// ListByMember returns a member's bookings in chronological order.
func (r *mongoBookingRepository) ListByMember(ctx context.Context, memberID primitive.ObjectID) ([]domain.Booking, error) {
	findOptions := options.Find().SetSort(bson.D{
		{Key: "bookingDate", Value: 1},
		{Key: "startTime", Value: 1},
	})
	cursor, err := r.collection.Find(ctx, bson.M{"member": memberID}, findOptions)
	if err != nil {
		return nil, err
	}
	return decodeAll[domain.Booking](ctx, cursor)
}

// ListByRecurring returns the bookings generated by one recurring series.
func (r *mongoBookingRepository) ListByRecurring(ctx context.Context, recurringID primitive.ObjectID) ([]domain.Booking, error) {
	findOptions := options.Find().SetSort(bson.D{{Key: "bookingDate", Value: 1}})
	cursor, err := r.collection.Find(ctx, bson.M{"recurringBooking": recurringID}, findOptions)
	if err != nil {
		return nil, err
	}
	return decodeAll[domain.Booking](ctx, cursor)
}

// ListAll returns every booking, newest date first.
func (r *mongoBookingRepository) ListAll(ctx context.Context) ([]domain.Booking, error) {
	findOptions := options.Find().SetSort(bson.D{
		{Key: "bookingDate", Value: -1},
		{Key: "startTime", Value: -1},
	})
	cursor, err := r.collection.Find(ctx, bson.M{}, findOptions)
	if err != nil {
		return nil, err
	}
	return decodeAll[domain.Booking](ctx, cursor)
}

// Cancel soft-deletes a booking by moving it to cancelled.
func (r *mongoBookingRepository) Cancel(ctx context.Context, id primitive.ObjectID, at time.Time) error {
	update := bson.M{
		"$set": bson.M{
			"status":      domain.BookingCancelled,
			"cancelledAt": at.UTC(),
			"updatedAt":   time.Now().UTC(),
		},
	}
	return r.updateOne(ctx, id, update)
}

func (r *mongoBookingRepository) UpdateStatus(ctx context.Context, id primitive.ObjectID, status domain.BookingStatus) error {
	update := bson.M{
		"$set": bson.M{
			"status":    status,
			"updatedAt": time.Now().UTC(),
		},
	}
	return r.updateOne(ctx, id, update)
}

func (r *mongoBookingRepository) updateOne(ctx context.Context, id primitive.ObjectID, update bson.M) error {
	result, err := r.collection.UpdateOne(ctx, bson.M{"_id": id}, update)
	if err != nil {
		return err
	}
	if result.MatchedCount == 0 {
		return repository.ErrNotFound
	}
	return nil
}

// EnsureBookingIndexes creates necessary indexes for the bookings collection.
func EnsureBookingIndexes(ctx context.Context, collection *mongo.Collection) error {
	indexes := []mongo.IndexModel{
		{
			Keys: bson.D{
				{Key: "class", Value: 1},
				{Key: "bookingDate", Value: 1},
				{Key: "startTime", Value: 1},
				{Key: "status", Value: 1},
			},
		},
		{
			Keys: bson.D{{Key: "member", Value: 1}, {Key: "bookingDate", Value: 1}},
		},
		{
			Keys:    bson.D{{Key: "recurringBooking", Value: 1}},
			Options: options.Index().SetSparse(true),
		},
	}
	_, err := collection.Indexes().CreateMany(ctx, indexes)
	return err
}
