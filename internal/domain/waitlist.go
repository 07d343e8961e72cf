package domain

import (
	"time"

	"go.mongodb.org/mongo-driver/bson/primitive"
)

type WaitlistStatus string

const (
	WaitlistWaiting   WaitlistStatus = "waiting"
	WaitlistOffered   WaitlistStatus = "offered"
	WaitlistConverted WaitlistStatus = "converted"
	WaitlistExpired   WaitlistStatus = "expired"
)

// WaitlistEntry queues a member for a full session. Position is assigned once
// (waiting count + 1) and never compacted, so gaps are normal.
type WaitlistEntry struct {
	ID          primitive.ObjectID `bson:"_id,omitempty" json:"id"`
	Member      primitive.ObjectID `bson:"member" json:"member"`
	Class       primitive.ObjectID `bson:"class" json:"class"`
	ClassName   string             `bson:"className" json:"className"`
	BookingDate time.Time          `bson:"bookingDate" json:"bookingDate"`
	StartTime   string             `bson:"startTime" json:"startTime"`
	Position    int                `bson:"position" json:"position"`
	Status      WaitlistStatus     `bson:"status" json:"status"`
	ExpiresAt   time.Time          `bson:"expiresAt" json:"expiresAt"`
	CreatedAt   time.Time          `bson:"createdAt" json:"createdAt"`
	UpdatedAt   time.Time          `bson:"updatedAt" json:"updatedAt"`
}

func (w *WaitlistEntry) Slot() Slot {
	return Slot{Class: w.Class, Date: w.BookingDate, StartTime: w.StartTime}
}

// Active reports whether the entry is still queued from the member's view.
func (w *WaitlistEntry) Active() bool {
	return w.Status == WaitlistWaiting || w.Status == WaitlistOffered
}
