package service

import (
	"context"

	"ironhouse/gym-api/internal/domain"
)

// Availability is the booking state of a class on one date.
type Availability struct {
	Capacity        int   `json:"capacity"`
	BookedCount     int64 `json:"bookedCount"`
	AvailableSpots  int64 `json:"availableSpots"`
	WaitlistCount   int64 `json:"waitlistCount"`
	IsFull          bool  `json:"isFull"`
	CanBook         bool  `json:"canBook"`
	CanJoinWaitlist bool  `json:"canJoinWaitlist"`
}

// GetAvailability aggregates every session of the class on date, regardless
// of start time. Booking capacity itself is enforced per start time, so a
// class running several sessions a day reports their combined counts here.
func (s *bookingService) GetAvailability(ctx context.Context, classID, date string) (*Availability, error) {
	id, err := parseClassID(classID)
	if err != nil {
		return nil, err
	}
	day, err := parseDate(date)
	if err != nil {
		return nil, err
	}

	class, err := s.getClass(ctx, id)
	if err != nil {
		return nil, err
	}

	slot := domain.Slot{Class: class.ID, Date: day.Time()}
	booked, err := s.bookingRepo.CountActive(ctx, slot)
	if err != nil {
		return nil, err
	}
	waiting, err := s.waitlistRepo.CountWaiting(ctx, slot)
	if err != nil {
		return nil, err
	}

	available := max(int64(class.Capacity)-booked, 0)
	return &Availability{
		Capacity:        class.Capacity,
		BookedCount:     booked,
		AvailableSpots:  available,
		WaitlistCount:   waiting,
		IsFull:          available <= 0,
		CanBook:         available > 0,
		CanJoinWaitlist: true,
	}, nil
}
