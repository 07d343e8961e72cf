package domain

import (
	"time"

	"go.mongodb.org/mongo-driver/bson/primitive"
)

// BookingStatus tracks a booking's lifecycle. Bookings are never deleted.
type BookingStatus string

const (
	BookingConfirmed BookingStatus = "confirmed"
	BookingCancelled BookingStatus = "cancelled"
	BookingCompleted BookingStatus = "completed"
	BookingNoShow    BookingStatus = "no-show"
)

type BookingType string

const (
	BookingSingle    BookingType = "single"
	BookingRecurring BookingType = "recurring"
)

// Booking is one reserved place in a class session for one member.
type Booking struct {
	ID     primitive.ObjectID `bson:"_id,omitempty" json:"id"`
	Member primitive.ObjectID `bson:"member" json:"member"`
	Class  primitive.ObjectID `bson:"class" json:"class"`

	ClassSnapshot `bson:",inline"`

	BookingDate      time.Time           `bson:"bookingDate" json:"bookingDate"` // UTC midnight
	StartTime        string              `bson:"startTime" json:"startTime"`     // "HH:mm"
	EndTime          string              `bson:"endTime" json:"endTime"`         // "HH:mm"
	Status           BookingStatus       `bson:"status" json:"status"`
	CancelledAt      *time.Time          `bson:"cancelledAt,omitempty" json:"cancelledAt,omitempty"`
	BookingType      BookingType         `bson:"bookingType" json:"bookingType"`
	RecurringBooking *primitive.ObjectID `bson:"recurringBooking,omitempty" json:"recurringBooking,omitempty"`
	Notes            string              `bson:"notes,omitempty" json:"notes,omitempty"`
	CreatedAt        time.Time           `bson:"createdAt" json:"createdAt"`
	UpdatedAt        time.Time           `bson:"updatedAt" json:"updatedAt"`
}

// Slot returns the capacity-accounting key of the booking.
func (b *Booking) Slot() Slot {
	return Slot{Class: b.Class, Date: b.BookingDate, StartTime: b.StartTime}
}

// Slot identifies a session for capacity accounting: (class, date, startTime).
// An empty StartTime means every session of the class on that date.
type Slot struct {
	Class     primitive.ObjectID
	Date      time.Time
	StartTime string
}
