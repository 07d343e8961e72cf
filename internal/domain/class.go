package domain

import (
	"time"

	"go.mongodb.org/mongo-driver/bson/primitive"
)

// Class is a class definition in the catalog. Capacity applies to every date
// the class runs on.
type Class struct {
	ID          primitive.ObjectID `bson:"_id,omitempty" json:"id"`
	Name        string             `bson:"name" json:"name"`
	Description string             `bson:"description,omitempty" json:"description,omitempty"`
	Capacity    int                `bson:"capacity" json:"capacity"`
	Duration    int                `bson:"duration" json:"duration"` // minutes
	Trainer     primitive.ObjectID `bson:"trainer" json:"trainer"`
	TrainerName string             `bson:"trainerName" json:"trainerName"`
	Location    string             `bson:"location,omitempty" json:"location,omitempty"`
	Schedule    string             `bson:"schedule,omitempty" json:"schedule,omitempty"` // free text, e.g. "Mon/Wed 09:00"
	ImageKey    string             `bson:"imageKey,omitempty" json:"-"`
	CreatedAt   time.Time          `bson:"createdAt" json:"createdAt"`
	UpdatedAt   time.Time          `bson:"updatedAt" json:"updatedAt"`
}

// ClassSnapshot is the copy of a class's display attributes taken when a
// booking, waitlist entry or recurring series is written, so history stays
// readable after the class changes.
type ClassSnapshot struct {
	ClassName   string             `bson:"className" json:"className"`
	Trainer     primitive.ObjectID `bson:"trainer" json:"trainer"`
	TrainerName string             `bson:"trainerName" json:"trainerName"`
	Duration    int                `bson:"duration" json:"duration"`
	Location    string             `bson:"location,omitempty" json:"location,omitempty"`
}

// Snapshot captures the current display attributes of c.
func (c *Class) Snapshot() ClassSnapshot {
	return ClassSnapshot{
		ClassName:   c.Name,
		Trainer:     c.Trainer,
		TrainerName: c.TrainerName,
		Duration:    c.Duration,
		Location:    c.Location,
	}
}
