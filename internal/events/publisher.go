package events

import (
	"context"
	"encoding/json"
	"time"

	"ironhouse/gym-api/internal/domain"
	"ironhouse/gym-api/internal/logging"

	"github.com/google/uuid"
	"github.com/nats-io/nats.go"
)

const (
	SubjectBookingCreated   = "booking.created"
	SubjectBookingCancelled = "booking.cancelled"
	SubjectWaitlistJoined   = "waitlist.joined"
	SubjectWaitlistPromoted = "waitlist.promoted"
	SubjectRecurringCreated = "recurring.created"
)

// EventPublisher announces booking ledger changes to other services.
type EventPublisher interface {
	PublishBookingCreated(ctx context.Context, booking *domain.Booking) error
	PublishBookingCancelled(ctx context.Context, booking *domain.Booking) error
	PublishWaitlistJoined(ctx context.Context, entry *domain.WaitlistEntry) error
	PublishWaitlistPromoted(ctx context.Context, entry *domain.WaitlistEntry, booking *domain.Booking) error
	PublishRecurringCreated(ctx context.Context, rb *domain.RecurringBooking, bookingsCreated int) error
	Close()
}

// publishConn is the part of *nats.Conn the publisher needs.
type publishConn interface {
	Publish(subject string, data []byte) error
}

type NatsPublisher struct {
	conn  publishConn
	close func()
	now   func() time.Time
}

func NewNatsPublisher(natsURL string) (EventPublisher, error) {
	nc, err := nats.Connect(natsURL, nats.Name("gym-api"))
	if err != nil {
		return nil, err
	}
	return &NatsPublisher{conn: nc, close: nc.Close, now: time.Now}, nil
}

// Envelope is the common header of every event.
type Envelope struct {
	EventID    string    `json:"event_id"`
	EventType  string    `json:"event_type"`
	OccurredAt time.Time `json:"occurred_at"`
}

type BookingEvent struct {
	Envelope
	BookingID   string    `json:"booking_id"`
	MemberID    string    `json:"member_id"`
	ClassID     string    `json:"class_id"`
	ClassName   string    `json:"class_name"`
	BookingDate time.Time `json:"booking_date"`
	StartTime   string    `json:"start_time"`
	EndTime     string    `json:"end_time"`
	Status      string    `json:"status"`
	BookingType string    `json:"booking_type"`
}

type WaitlistEvent struct {
	Envelope
	EntryID     string    `json:"entry_id"`
	MemberID    string    `json:"member_id"`
	ClassID     string    `json:"class_id"`
	ClassName   string    `json:"class_name"`
	BookingDate time.Time `json:"booking_date"`
	StartTime   string    `json:"start_time"`
	Position    int       `json:"position"`
	BookingID   string    `json:"booking_id,omitempty"`
}

type RecurringEvent struct {
	Envelope
	RecurringID     string    `json:"recurring_id"`
	MemberID        string    `json:"member_id"`
	ClassID         string    `json:"class_id"`
	RecurrenceType  string    `json:"recurrence_type"`
	RecurrenceDay   string    `json:"recurrence_day"`
	StartDate       time.Time `json:"start_date"`
	EndDate         time.Time `json:"end_date"`
	TotalSessions   int       `json:"total_sessions"`
	BookingsCreated int       `json:"bookings_created"`
}

func (p *NatsPublisher) envelope(eventType string) Envelope {
	return Envelope{
		EventID:    uuid.NewString(),
		EventType:  eventType,
		OccurredAt: p.now().UTC(),
	}
}

func NewBookingEvent(env Envelope, b *domain.Booking) BookingEvent {
	return BookingEvent{
		Envelope:    env,
		BookingID:   b.ID.Hex(),
		MemberID:    b.Member.Hex(),
		ClassID:     b.Class.Hex(),
		ClassName:   b.ClassName,
		BookingDate: b.BookingDate,
		StartTime:   b.StartTime,
		EndTime:     b.EndTime,
		Status:      string(b.Status),
		BookingType: string(b.BookingType),
	}
}

func NewWaitlistEvent(env Envelope, w *domain.WaitlistEntry) WaitlistEvent {
	return WaitlistEvent{
		Envelope:    env,
		EntryID:     w.ID.Hex(),
		MemberID:    w.Member.Hex(),
		ClassID:     w.Class.Hex(),
		ClassName:   w.ClassName,
		BookingDate: w.BookingDate,
		StartTime:   w.StartTime,
		Position:    w.Position,
	}
}

func (p *NatsPublisher) PublishBookingCreated(ctx context.Context, booking *domain.Booking) error {
	return p.publish(ctx, SubjectBookingCreated, NewBookingEvent(p.envelope(SubjectBookingCreated), booking))
}

func (p *NatsPublisher) PublishBookingCancelled(ctx context.Context, booking *domain.Booking) error {
	return p.publish(ctx, SubjectBookingCancelled, NewBookingEvent(p.envelope(SubjectBookingCancelled), booking))
}

func (p *NatsPublisher) PublishWaitlistJoined(ctx context.Context, entry *domain.WaitlistEntry) error {
	return p.publish(ctx, SubjectWaitlistJoined, NewWaitlistEvent(p.envelope(SubjectWaitlistJoined), entry))
}

func (p *NatsPublisher) PublishWaitlistPromoted(ctx context.Context, entry *domain.WaitlistEntry, booking *domain.Booking) error {
	event := NewWaitlistEvent(p.envelope(SubjectWaitlistPromoted), entry)
	event.BookingID = booking.ID.Hex()
	return p.publish(ctx, SubjectWaitlistPromoted, event)
}

func (p *NatsPublisher) PublishRecurringCreated(ctx context.Context, rb *domain.RecurringBooking, bookingsCreated int) error {
	event := RecurringEvent{
		Envelope:        p.envelope(SubjectRecurringCreated),
		RecurringID:     rb.ID.Hex(),
		MemberID:        rb.Member.Hex(),
		ClassID:         rb.Class.Hex(),
		RecurrenceType:  string(rb.RecurrenceType),
		RecurrenceDay:   rb.RecurrenceDay,
		StartDate:       rb.StartDate,
		EndDate:         rb.EndDate,
		TotalSessions:   rb.TotalSessions,
		BookingsCreated: bookingsCreated,
	}
	return p.publish(ctx, SubjectRecurringCreated, event)
}

func (p *NatsPublisher) publish(ctx context.Context, subject string, event any) error {
	logger := logging.FromContext(ctx)

	eventJSON, err := json.Marshal(event)
	if err != nil {
		logger.Error("Error marshalling event JSON", "subject", subject, "error", err)
		return err
	}

	if err := p.conn.Publish(subject, eventJSON); err != nil {
		logger.Error("Error publishing to NATS", "subject", subject, "error", err)
		return err
	}

	logger.Debug("Published event to NATS", "subject", subject)
	return nil
}

func (p *NatsPublisher) Close() {
	if p.close != nil {
		p.close()
	}
}

// NoopPublisher drops every event. Used when no NATS URL is configured.
type NoopPublisher struct{}

func (NoopPublisher) PublishBookingCreated(context.Context, *domain.Booking) error { return nil }

func (NoopPublisher) PublishBookingCancelled(context.Context, *domain.Booking) error { return nil }

func (NoopPublisher) PublishWaitlistJoined(context.Context, *domain.WaitlistEntry) error { return nil }

func (NoopPublisher) PublishWaitlistPromoted(context.Context, *domain.WaitlistEntry, *domain.Booking) error {
	return nil
}

func (NoopPublisher) PublishRecurringCreated(context.Context, *domain.RecurringBooking, int) error {
	return nil
}

func (NoopPublisher) Close() {}
