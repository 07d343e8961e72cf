package repository

import (
	"context"
	"time"

	"ironhouse/gym-api/internal/domain"

	"go.mongodb.org/mongo-driver/bson/primitive"
)

var (
	ErrNotFound     = RepositoryError("not found")
	ErrDuplicateKey = RepositoryError("duplicate key")
)

// RepositoryError helps distinguish repository errors
type RepositoryError string

func (e RepositoryError) Error() string {
	return string(e)
}

// UserRepository defines the interface for interacting with user accounts.
type UserRepository interface {
	Create(ctx context.Context, user *domain.User) (primitive.ObjectID, error)
	GetByEmail(ctx context.Context, email string) (*domain.User, error)
	GetByID(ctx context.Context, id primitive.ObjectID) (*domain.User, error)
	GetByIDs(ctx context.Context, ids []primitive.ObjectID) ([]domain.User, error)
}

// MemberRepository is the member directory: member profiles keyed by user account.
type MemberRepository interface {
	Create(ctx context.Context, member *domain.Member) (primitive.ObjectID, error)
	GetByUserID(ctx context.Context, userID primitive.ObjectID) (*domain.Member, error)
	GetByIDs(ctx context.Context, ids []primitive.ObjectID) ([]domain.Member, error)
}

// ClassRepository is the class catalog.
type ClassRepository interface {
	Create(ctx context.Context, class *domain.Class) (primitive.ObjectID, error)
	GetByID(ctx context.Context, id primitive.ObjectID) (*domain.Class, error)
	List(ctx context.Context) ([]domain.Class, error)
	SetImageKey(ctx context.Context, id primitive.ObjectID, key string) error
}

// BookingRepository is the booking ledger. "Active" means status != cancelled.
type BookingRepository interface {
	Create(ctx context.Context, booking *domain.Booking) (primitive.ObjectID, error)
	GetByID(ctx context.Context, id primitive.ObjectID) (*domain.Booking, error)
	// FindActiveForMember returns the member's non-cancelled booking for the slot, or ErrNotFound.
	FindActiveForMember(ctx context.Context, memberID primitive.ObjectID, slot domain.Slot) (*domain.Booking, error)
	// CountActive counts non-cancelled bookings in the slot; an empty slot.StartTime counts the whole date.
	CountActive(ctx context.Context, slot domain.Slot) (int64, error)
	ListByMember(ctx context.Context, memberID primitive.ObjectID) ([]domain.Booking, error)
	ListByRecurring(ctx context.Context, recurringID primitive.ObjectID) ([]domain.Booking, error)
	ListAll(ctx context.Context) ([]domain.Booking, error)
	Cancel(ctx context.Context, id primitive.ObjectID, at time.Time) error
	UpdateStatus(ctx context.Context, id primitive.ObjectID, status domain.BookingStatus) error
}

// WaitlistRepository is the waitlist ledger.
type WaitlistRepository interface {
	Create(ctx context.Context, entry *domain.WaitlistEntry) (primitive.ObjectID, error)
	GetByID(ctx context.Context, id primitive.ObjectID) (*domain.WaitlistEntry, error)
	// CountWaiting counts entries with status waiting; an empty slot.StartTime counts the whole date.
	CountWaiting(ctx context.Context, slot domain.Slot) (int64, error)
	// NextWaiting returns the lowest-position waiting entry for the slot, or ErrNotFound.
	NextWaiting(ctx context.Context, slot domain.Slot) (*domain.WaitlistEntry, error)
	ListByMember(ctx context.Context, memberID primitive.ObjectID, statuses ...domain.WaitlistStatus) ([]domain.WaitlistEntry, error)
	UpdateStatus(ctx context.Context, id primitive.ObjectID, status domain.WaitlistStatus) error
	// ExpireWaitingBefore marks waiting entries whose expiresAt is before cutoff as expired.
	ExpireWaitingBefore(ctx context.Context, cutoff time.Time) (int64, error)
}

// RecurringBookingRepository stores recurring booking series.
type RecurringBookingRepository interface {
	Create(ctx context.Context, rb *domain.RecurringBooking) (primitive.ObjectID, error)
	GetByID(ctx context.Context, id primitive.ObjectID) (*domain.RecurringBooking, error)
	ListByMember(ctx context.Context, memberID primitive.ObjectID) ([]domain.RecurringBooking, error)
	UpdateStatus(ctx context.Context, id primitive.ObjectID, status domain.RecurringStatus) error
}
