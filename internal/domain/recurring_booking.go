package domain

import (
	"time"

	"ironhouse/gym-api/internal/calendar"

	"go.mongodb.org/mongo-driver/bson/primitive"
)

type RecurringStatus string

const (
	RecurringActive    RecurringStatus = "active"
	RecurringCancelled RecurringStatus = "cancelled"
)

// RecurringBooking is a repeat rule expanded into individual bookings once, at
// creation. TotalSessions counts calendar periods, not bookings created.
type RecurringBooking struct {
	ID     primitive.ObjectID `bson:"_id,omitempty" json:"id"`
	Member primitive.ObjectID `bson:"member" json:"member"`
	Class  primitive.ObjectID `bson:"class" json:"class"`

	ClassSnapshot `bson:",inline"`

	RecurrenceType calendar.Frequency `bson:"recurrenceType" json:"recurrenceType"`
	RecurrenceDay  string             `bson:"recurrenceDay" json:"recurrenceDay"`
	StartDate      time.Time          `bson:"startDate" json:"startDate"`
	EndDate        time.Time          `bson:"endDate" json:"endDate"`
	StartTime      string             `bson:"startTime" json:"startTime"`
	EndTime        string             `bson:"endTime" json:"endTime"`
	TotalSessions  int                `bson:"totalSessions" json:"totalSessions"`
	Status         RecurringStatus    `bson:"status" json:"status"`
	Notes          string             `bson:"notes,omitempty" json:"notes,omitempty"`
	CreatedAt      time.Time          `bson:"createdAt" json:"createdAt"`
	UpdatedAt      time.Time          `bson:"updatedAt" json:"updatedAt"`
}
