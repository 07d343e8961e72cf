package service

import (
	"context"
	"errors"
	"fmt"
	"strings"

	"ironhouse/gym-api/internal/calendar"
	"ironhouse/gym-api/internal/domain"
	"ironhouse/gym-api/internal/events"
	"ironhouse/gym-api/internal/logging"
	"ironhouse/gym-api/internal/repository"

	"go.mongodb.org/mongo-driver/bson/primitive"
)

// RecurringBookingInput carries the raw request fields of a recurring series.
type RecurringBookingInput struct {
	ClassID        string
	RecurrenceType string
	RecurrenceDay  string
	StartDate      string
	EndDate        string
	StartTime      string
	EndTime        string
	Notes          string
}

// RecurringResult reports the series and how many bookings it produced.
// TotalSessions counts calendar periods and can exceed BookingsCreated.
type RecurringResult struct {
	RecurringBooking *domain.RecurringBooking `json:"recurringBooking"`
	BookingsCreated  int                      `json:"bookingsCreated"`
	TotalSessions    int                      `json:"totalSessions"`
}

type RecurringCancelResult struct {
	RecurringBooking  *domain.RecurringBooking `json:"recurringBooking"`
	BookingsCancelled int                      `json:"bookingsCancelled"`
}

func (in RecurringBookingInput) complete() bool {
	for _, v := range []string{in.ClassID, in.RecurrenceType, in.RecurrenceDay, in.StartDate, in.EndDate, in.StartTime, in.EndTime} {
		if strings.TrimSpace(v) == "" {
			return false
		}
	}
	return true
}

// MaxRecurringMonths bounds the range a single recurring booking may cover.
const MaxRecurringMonths = 12

// CreateRecurringBooking stores the series and expands it into individual
// bookings once. Sessions that are already full are skipped, not waitlisted,
// and no duplicate check is made against the member's existing bookings.
func (s *bookingService) CreateRecurringBooking(ctx context.Context, userID primitive.ObjectID, in RecurringBookingInput) (*RecurringResult, error) {
	if !in.complete() {
		return nil, ErrRecurringDetailsRequired
	}

	classID, err := parseClassID(in.ClassID)
	if err != nil {
		return nil, err
	}
	freq := calendar.Frequency(strings.ToLower(strings.TrimSpace(in.RecurrenceType)))
	if !freq.Valid() {
		return nil, fmt.Errorf("%w: %v", ErrInvalidInput, calendar.ErrInvalidFrequency)
	}
	weekday, err := calendar.ParseWeekday(in.RecurrenceDay)
	if err != nil {
		return nil, fmt.Errorf("%w: %v", ErrInvalidInput, err)
	}
	startDate, err := parseDate(in.StartDate)
	if err != nil {
		return nil, err
	}
	endDate, err := parseDate(in.EndDate)
	if err != nil {
		return nil, err
	}
	if endDate.Before(startDate) {
		return nil, fmt.Errorf("%w: endDate must not be before startDate", ErrInvalidInput)
	}
	if endDate.After(startDate.AddMonths(MaxRecurringMonths)) {
		return nil, fmt.Errorf("%w: a recurring booking may span at most %d months", ErrInvalidInput, MaxRecurringMonths)
	}
	start, err := parseClock(in.StartTime)
	if err != nil {
		return nil, err
	}
	end, err := parseClock(in.EndTime)
	if err != nil {
		return nil, err
	}

	class, err := s.getClass(ctx, classID)
	if err != nil {
		return nil, err
	}
	member, err := s.memberFor(ctx, userID)
	if err != nil {
		return nil, err
	}

	dates, err := calendar.Occurrences(freq, weekday, startDate, endDate)
	if err != nil {
		return nil, fmt.Errorf("%w: %v", ErrInvalidInput, err)
	}

	rb := &domain.RecurringBooking{
		Member:         member.ID,
		Class:          class.ID,
		ClassSnapshot:  class.Snapshot(),
		RecurrenceType: freq,
		RecurrenceDay:  weekday.String(),
		StartDate:      startDate.Time(),
		EndDate:        endDate.Time(),
		StartTime:      start.String(),
		EndTime:        end.String(),
		TotalSessions:  calendar.PeriodCount(freq, startDate, endDate),
		Status:         domain.RecurringActive,
		Notes:          in.Notes,
	}
	if rb.ID, err = s.recurringRepo.Create(ctx, rb); err != nil {
		return nil, err
	}

	logger := logging.FromContext(ctx)
	created := 0
	for _, date := range dates {
		slot := domain.Slot{Class: class.ID, Date: date.Time(), StartTime: rb.StartTime}
		booked, err := s.bookingRepo.CountActive(ctx, slot)
		if err != nil {
			return nil, err
		}
		if booked >= int64(class.Capacity) {
			recurringSessionsSkippedTotal.Inc()
			logger.DebugContext(ctx, "Recurring session full, skipped",
				"recurringId", rb.ID.Hex(), "date", date.String())
			continue
		}

		recurringID := rb.ID
		booking := &domain.Booking{
			Member:           member.ID,
			Class:            class.ID,
			ClassSnapshot:    rb.ClassSnapshot,
			BookingDate:      slot.Date,
			StartTime:        rb.StartTime,
			EndTime:          rb.EndTime,
			Status:           domain.BookingConfirmed,
			BookingType:      domain.BookingRecurring,
			RecurringBooking: &recurringID,
			Notes:            in.Notes,
		}
		if booking.ID, err = s.bookingRepo.Create(ctx, booking); err != nil {
			return nil, err
		}
		bookingsCreatedTotal.WithLabelValues(string(domain.BookingRecurring), "recurring").Inc()
		created++
	}

	logger.InfoContext(ctx, "Recurring booking created",
		"recurringId", rb.ID.Hex(), "totalSessions", rb.TotalSessions, "bookingsCreated", created)
	s.emit(ctx, events.SubjectRecurringCreated, s.publisher.PublishRecurringCreated(ctx, rb, created))

	return &RecurringResult{
		RecurringBooking: rb,
		BookingsCreated:  created,
		TotalSessions:    rb.TotalSessions,
	}, nil
}

// GetMyRecurringBookings lists the caller's series, newest first.
func (s *bookingService) GetMyRecurringBookings(ctx context.Context, userID primitive.ObjectID) ([]domain.RecurringBooking, error) {
	member, err := s.memberFor(ctx, userID)
	if err != nil {
		return nil, err
	}
	return s.recurringRepo.ListByMember(ctx, member.ID)
}

// CancelRecurringBooking ends a series. Its confirmed bookings that can still
// be cancelled under the notice rule are cancelled and their places offered to
// the waitlist; the rest are left as they are.
func (s *bookingService) CancelRecurringBooking(ctx context.Context, userID, recurringID primitive.ObjectID) (*RecurringCancelResult, error) {
	rb, err := s.recurringRepo.GetByID(ctx, recurringID)
	if err != nil {
		if errors.Is(err, repository.ErrNotFound) {
			return nil, ErrRecurringBookingNotFound
		}
		return nil, err
	}

	if err := s.ensureOwner(ctx, userID, rb.Member); err != nil {
		return nil, err
	}
	if rb.Status == domain.RecurringCancelled {
		return nil, ErrRecurringAlreadyCancelled
	}

	if err := s.recurringRepo.UpdateStatus(ctx, rb.ID, domain.RecurringCancelled); err != nil {
		if errors.Is(err, repository.ErrNotFound) {
			return nil, ErrRecurringBookingNotFound
		}
		return nil, err
	}
	rb.Status = domain.RecurringCancelled

	bookings, err := s.bookingRepo.ListByRecurring(ctx, rb.ID)
	if err != nil {
		return nil, err
	}

	now := s.now()
	cancelled := 0
	for i := range bookings {
		b := &bookings[i]
		if b.Status != domain.BookingConfirmed || !s.cancellable(b, now) {
			continue
		}
		if err := s.cancelAndPromote(ctx, b, now); err != nil {
			return nil, err
		}
		cancelled++
	}

	logging.FromContext(ctx).InfoContext(ctx, "Recurring booking cancelled",
		"recurringId", rb.ID.Hex(), "bookingsCancelled", cancelled)
	return &RecurringCancelResult{RecurringBooking: rb, BookingsCancelled: cancelled}, nil
}
