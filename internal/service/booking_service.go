package service

import (
	"context"
	"errors"
	"fmt"
	"slices"
	"strings"
	"time"

	"ironhouse/gym-api/internal/calendar"
	"ironhouse/gym-api/internal/domain"
	"ironhouse/gym-api/internal/events"
	"ironhouse/gym-api/internal/logging"
	"ironhouse/gym-api/internal/repository"

	"go.mongodb.org/mongo-driver/bson/primitive"
)

// CancellationNotice is the minimum time between cancelling and the session start.
const CancellationNotice = 2 * time.Hour

// --- Service Interface ---
type BookingService interface {
	// Availability
	GetAvailability(ctx context.Context, classID, date string) (*Availability, error)

	// Bookings
	CreateBooking(ctx context.Context, userID primitive.ObjectID, in CreateBookingInput) (*BookingResult, error)
	CancelBooking(ctx context.Context, userID, bookingID primitive.ObjectID) (*domain.Booking, error)
	GetMyBookings(ctx context.Context, userID primitive.ObjectID) (*MemberBookings, error)
	GetAllBookings(ctx context.Context) ([]BookingView, error)
	MarkAttendance(ctx context.Context, actor Actor, bookingID primitive.ObjectID, status domain.BookingStatus) (*domain.Booking, error)

	// Waitlist
	GetMyWaitlist(ctx context.Context, userID primitive.ObjectID) ([]domain.WaitlistEntry, error)
	LeaveWaitlist(ctx context.Context, userID, entryID primitive.ObjectID) error
	ExpireStaleWaitlist(ctx context.Context) (int64, error)

	// Recurring bookings
	CreateRecurringBooking(ctx context.Context, userID primitive.ObjectID, in RecurringBookingInput) (*RecurringResult, error)
	GetMyRecurringBookings(ctx context.Context, userID primitive.ObjectID) ([]domain.RecurringBooking, error)
	CancelRecurringBooking(ctx context.Context, userID, recurringID primitive.ObjectID) (*RecurringCancelResult, error)
}

// Actor is the authenticated caller of a role-restricted operation.
type Actor struct {
	UserID primitive.ObjectID
	Role   domain.Role
}

// CreateBookingInput carries the raw request fields; dates are "YYYY-MM-DD"
// and times "HH:mm".
type CreateBookingInput struct {
	ClassID     string
	BookingDate string
	StartTime   string
	EndTime     string
	Notes       string
}

// BookingResult holds exactly one of Booking or Waitlist.
type BookingResult struct {
	Booking    *domain.Booking       `json:"booking,omitempty"`
	Waitlist   *domain.WaitlistEntry `json:"waitlist,omitempty"`
	Position   int                   `json:"position,omitempty"`
	Waitlisted bool                  `json:"waitlisted"`
}

type MemberBookings struct {
	Upcoming []domain.Booking `json:"upcoming"`
	Past     []domain.Booking `json:"past"`
}

// BookingView is a booking populated with the member's display data.
type BookingView struct {
	domain.Booking
	MemberName  string `json:"memberName,omitempty"`
	MemberEmail string `json:"memberEmail,omitempty"`
}

// --- Service Implementation ---

// bookingService implements BookingService on top of the ledger repositories.
// Capacity checks read the current count and then write; concurrent requests
// for the last place can both succeed.
type bookingService struct {
	userRepo      repository.UserRepository
	memberRepo    repository.MemberRepository
	classRepo     repository.ClassRepository
	bookingRepo   repository.BookingRepository
	waitlistRepo  repository.WaitlistRepository
	recurringRepo repository.RecurringBookingRepository
	publisher     events.EventPublisher
	loc           *time.Location
	now           func() time.Time
}

// NewBookingService creates a new instance of bookingService. loc is the
// timezone in which booking dates and "HH:mm" times are interpreted.
func NewBookingService(
	userRepo repository.UserRepository,
	memberRepo repository.MemberRepository,
	classRepo repository.ClassRepository,
	bookingRepo repository.BookingRepository,
	waitlistRepo repository.WaitlistRepository,
	recurringRepo repository.RecurringBookingRepository,
	publisher events.EventPublisher,
	loc *time.Location,
) BookingService {
	if publisher == nil {
		publisher = events.NoopPublisher{}
	}
	if loc == nil {
		loc = time.UTC
	}
	return &bookingService{
		userRepo:      userRepo,
		memberRepo:    memberRepo,
		classRepo:     classRepo,
		bookingRepo:   bookingRepo,
		waitlistRepo:  waitlistRepo,
		recurringRepo: recurringRepo,
		publisher:     publisher,
		loc:           loc,
		now:           time.Now,
	}
}

// CreateBooking books a place in a session, or queues the member on the
// session's waitlist when it is full.
func (s *bookingService) CreateBooking(ctx context.Context, userID primitive.ObjectID, in CreateBookingInput) (*BookingResult, error) {
	if strings.TrimSpace(in.ClassID) == "" || strings.TrimSpace(in.BookingDate) == "" ||
		strings.TrimSpace(in.StartTime) == "" || strings.TrimSpace(in.EndTime) == "" {
		return nil, ErrBookingDetailsRequired
	}

	classID, err := parseClassID(in.ClassID)
	if err != nil {
		return nil, err
	}
	date, err := parseDate(in.BookingDate)
	if err != nil {
		return nil, err
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

	slot := domain.Slot{Class: class.ID, Date: date.Time(), StartTime: start.String()}

	_, err = s.bookingRepo.FindActiveForMember(ctx, member.ID, slot)
	if err == nil {
		return nil, ErrDuplicateBooking
	}
	if !errors.Is(err, repository.ErrNotFound) {
		return nil, err
	}

	booked, err := s.bookingRepo.CountActive(ctx, slot)
	if err != nil {
		return nil, err
	}

	if booked >= int64(class.Capacity) {
		entry, err := s.joinWaitlist(ctx, member, class, slot, calendar.At(date, end, s.loc))
		if err != nil {
			return nil, err
		}
		return &BookingResult{Waitlist: entry, Position: entry.Position, Waitlisted: true}, nil
	}

	booking := &domain.Booking{
		Member:        member.ID,
		Class:         class.ID,
		ClassSnapshot: class.Snapshot(),
		BookingDate:   slot.Date,
		StartTime:     slot.StartTime,
		EndTime:       end.String(),
		Status:        domain.BookingConfirmed,
		BookingType:   domain.BookingSingle,
		Notes:         in.Notes,
	}
	if booking.ID, err = s.bookingRepo.Create(ctx, booking); err != nil {
		return nil, err
	}

	bookingsCreatedTotal.WithLabelValues(string(domain.BookingSingle), "direct").Inc()
	logging.FromContext(ctx).InfoContext(ctx, "Booking created",
		"bookingId", booking.ID.Hex(), "classId", class.ID.Hex(), "date", date.String(), "startTime", slot.StartTime)
	s.emit(ctx, events.SubjectBookingCreated, s.publisher.PublishBookingCreated(ctx, booking))

	return &BookingResult{Booking: booking}, nil
}

func (s *bookingService) joinWaitlist(ctx context.Context, member *domain.Member, class *domain.Class, slot domain.Slot, expiresAt time.Time) (*domain.WaitlistEntry, error) {
	waiting, err := s.waitlistRepo.CountWaiting(ctx, slot)
	if err != nil {
		return nil, err
	}

	entry := &domain.WaitlistEntry{
		Member:      member.ID,
		Class:       class.ID,
		ClassName:   class.Name,
		BookingDate: slot.Date,
		StartTime:   slot.StartTime,
		Position:    int(waiting) + 1,
		Status:      domain.WaitlistWaiting,
		ExpiresAt:   expiresAt.UTC(),
	}
	if entry.ID, err = s.waitlistRepo.Create(ctx, entry); err != nil {
		return nil, err
	}

	waitlistJoinedTotal.Inc()
	logging.FromContext(ctx).InfoContext(ctx, "Session full, member waitlisted",
		"waitlistId", entry.ID.Hex(), "classId", class.ID.Hex(), "position", entry.Position)
	s.emit(ctx, events.SubjectWaitlistJoined, s.publisher.PublishWaitlistJoined(ctx, entry))

	return entry, nil
}

// CancelBooking cancels the caller's booking and hands the freed place to the
// head of the session's waitlist.
func (s *bookingService) CancelBooking(ctx context.Context, userID, bookingID primitive.ObjectID) (*domain.Booking, error) {
	booking, err := s.bookingRepo.GetByID(ctx, bookingID)
	if err != nil {
		if errors.Is(err, repository.ErrNotFound) {
			return nil, ErrBookingNotFound
		}
		return nil, err
	}

	if err := s.ensureOwner(ctx, userID, booking.Member); err != nil {
		return nil, err
	}
	if booking.Status == domain.BookingCancelled {
		return nil, ErrBookingAlreadyCancelled
	}

	now := s.now()
	if !s.cancellable(booking, now) {
		return nil, ErrCancellationWindow
	}

	if err := s.cancelAndPromote(ctx, booking, now); err != nil {
		return nil, err
	}
	return booking, nil
}

// cancellable reports whether at least CancellationNotice remains before the
// booking starts.
func (s *bookingService) cancellable(b *domain.Booking, now time.Time) bool {
	return s.startOf(b).Sub(now) >= CancellationNotice
}

func (s *bookingService) cancelAndPromote(ctx context.Context, booking *domain.Booking, now time.Time) error {
	if err := s.bookingRepo.Cancel(ctx, booking.ID, now); err != nil {
		if errors.Is(err, repository.ErrNotFound) {
			return ErrBookingNotFound
		}
		return err
	}
	cancelledAt := now.UTC()
	booking.Status = domain.BookingCancelled
	booking.CancelledAt = &cancelledAt

	bookingsCancelledTotal.Inc()
	logger := logging.FromContext(ctx)
	logger.InfoContext(ctx, "Booking cancelled", "bookingId", booking.ID.Hex())
	s.emit(ctx, events.SubjectBookingCancelled, s.publisher.PublishBookingCancelled(ctx, booking))

	// The cancellation stands even if promotion fails.
	if _, err := s.promoteFromWaitlist(ctx, booking); err != nil {
		logger.ErrorContext(ctx, "Waitlist promotion failed", "bookingId", booking.ID.Hex(), "error", err)
	}
	return nil
}

// promoteFromWaitlist converts the lowest-position waiting entry of the
// cancelled booking's slot into a confirmed booking. It returns nil when
// nobody is waiting.
func (s *bookingService) promoteFromWaitlist(ctx context.Context, cancelled *domain.Booking) (*domain.Booking, error) {
	entry, err := s.waitlistRepo.NextWaiting(ctx, cancelled.Slot())
	if err != nil {
		if errors.Is(err, repository.ErrNotFound) {
			return nil, nil
		}
		return nil, err
	}

	snapshot := cancelled.ClassSnapshot
	if class, err := s.classRepo.GetByID(ctx, cancelled.Class); err == nil {
		snapshot = class.Snapshot()
	}

	booking := &domain.Booking{
		Member:        entry.Member,
		Class:         entry.Class,
		ClassSnapshot: snapshot,
		BookingDate:   entry.BookingDate,
		StartTime:     entry.StartTime,
		EndTime:       cancelled.EndTime,
		Status:        domain.BookingConfirmed,
		BookingType:   domain.BookingSingle,
	}

	// The entry is converted before the booking exists and put back to
	// waiting if the insert fails.
	if err := s.waitlistRepo.UpdateStatus(ctx, entry.ID, domain.WaitlistConverted); err != nil {
		return nil, err
	}
	if booking.ID, err = s.bookingRepo.Create(ctx, booking); err != nil {
		if rbErr := s.waitlistRepo.UpdateStatus(ctx, entry.ID, domain.WaitlistWaiting); rbErr != nil {
			logging.FromContext(ctx).ErrorContext(ctx, "Failed to restore waitlist entry",
				"waitlistId", entry.ID.Hex(), "error", rbErr)
		}
		return nil, err
	}
	entry.Status = domain.WaitlistConverted

	bookingsCreatedTotal.WithLabelValues(string(domain.BookingSingle), "waitlist").Inc()
	waitlistPromotionsTotal.Inc()
	logging.FromContext(ctx).InfoContext(ctx, "Waitlist entry promoted",
		"waitlistId", entry.ID.Hex(), "bookingId", booking.ID.Hex(), "position", entry.Position)
	s.emit(ctx, events.SubjectWaitlistPromoted, s.publisher.PublishWaitlistPromoted(ctx, entry, booking))

	return booking, nil
}

// GetMyBookings splits the caller's bookings into upcoming (soonest first) and
// past (most recent first). Every status is included.
func (s *bookingService) GetMyBookings(ctx context.Context, userID primitive.ObjectID) (*MemberBookings, error) {
	member, err := s.memberFor(ctx, userID)
	if err != nil {
		return nil, err
	}
	bookings, err := s.bookingRepo.ListByMember(ctx, member.ID)
	if err != nil {
		return nil, err
	}

	now := s.now()
	result := &MemberBookings{Upcoming: []domain.Booking{}, Past: []domain.Booking{}}
	for _, b := range bookings {
		if s.startOf(&b).Before(now) {
			result.Past = append(result.Past, b)
		} else {
			result.Upcoming = append(result.Upcoming, b)
		}
	}

	slices.SortStableFunc(result.Upcoming, func(a, b domain.Booking) int {
		return s.startOf(&a).Compare(s.startOf(&b))
	})
	slices.SortStableFunc(result.Past, func(a, b domain.Booking) int {
		return s.startOf(&b).Compare(s.startOf(&a))
	})
	return result, nil
}

// GetAllBookings lists every booking, newest date first, with member display
// data attached. Class data comes from each booking's snapshot.
func (s *bookingService) GetAllBookings(ctx context.Context) ([]BookingView, error) {
	bookings, err := s.bookingRepo.ListAll(ctx)
	if err != nil {
		return nil, err
	}

	memberIDs := make([]primitive.ObjectID, 0, len(bookings))
	seen := make(map[primitive.ObjectID]bool)
	for _, b := range bookings {
		if !seen[b.Member] {
			seen[b.Member] = true
			memberIDs = append(memberIDs, b.Member)
		}
	}

	members, err := s.memberRepo.GetByIDs(ctx, memberIDs)
	if err != nil {
		return nil, err
	}
	userIDs := make([]primitive.ObjectID, 0, len(members))
	userOfMember := make(map[primitive.ObjectID]primitive.ObjectID, len(members))
	for _, m := range members {
		userOfMember[m.ID] = m.UserID
		userIDs = append(userIDs, m.UserID)
	}

	users, err := s.userRepo.GetByIDs(ctx, userIDs)
	if err != nil {
		return nil, err
	}
	userByID := make(map[primitive.ObjectID]domain.User, len(users))
	for _, u := range users {
		userByID[u.ID] = u
	}

	views := make([]BookingView, 0, len(bookings))
	for _, b := range bookings {
		view := BookingView{Booking: b}
		if u, ok := userByID[userOfMember[b.Member]]; ok {
			view.MemberName = u.Name
			view.MemberEmail = u.Email
		}
		views = append(views, view)
	}
	return views, nil
}

// MarkAttendance records the outcome of a session for one booking. Admins may
// mark any booking, trainers only bookings of their own classes.
func (s *bookingService) MarkAttendance(ctx context.Context, actor Actor, bookingID primitive.ObjectID, status domain.BookingStatus) (*domain.Booking, error) {
	if status != domain.BookingCompleted && status != domain.BookingNoShow {
		return nil, fmt.Errorf("%w: attendance status must be completed or no-show", ErrInvalidInput)
	}

	booking, err := s.bookingRepo.GetByID(ctx, bookingID)
	if err != nil {
		if errors.Is(err, repository.ErrNotFound) {
			return nil, ErrBookingNotFound
		}
		return nil, err
	}

	switch {
	case actor.Role == domain.RoleAdmin:
	case actor.Role == domain.RoleTrainer && booking.Trainer == actor.UserID:
	default:
		return nil, ErrNotAuthorized
	}

	if booking.Status == domain.BookingCancelled {
		return nil, ErrBookingAlreadyCancelled
	}

	if err := s.bookingRepo.UpdateStatus(ctx, booking.ID, status); err != nil {
		if errors.Is(err, repository.ErrNotFound) {
			return nil, ErrBookingNotFound
		}
		return nil, err
	}
	booking.Status = status

	logging.FromContext(ctx).InfoContext(ctx, "Attendance recorded",
		"bookingId", booking.ID.Hex(), "status", string(status), "by", actor.UserID.Hex())
	return booking, nil
}

// --- Helpers ---

func (s *bookingService) getClass(ctx context.Context, id primitive.ObjectID) (*domain.Class, error) {
	class, err := s.classRepo.GetByID(ctx, id)
	if err != nil {
		if errors.Is(err, repository.ErrNotFound) {
			return nil, ErrClassNotFound
		}
		return nil, err
	}
	return class, nil
}

// memberFor resolves the member profile of an authenticated user.
func (s *bookingService) memberFor(ctx context.Context, userID primitive.ObjectID) (*domain.Member, error) {
	member, err := s.memberRepo.GetByUserID(ctx, userID)
	if err != nil {
		if errors.Is(err, repository.ErrNotFound) {
			return nil, ErrMemberProfileNotFound
		}
		return nil, err
	}
	return member, nil
}

// ensureOwner fails with ErrNotAuthorized unless userID's member profile is owner.
func (s *bookingService) ensureOwner(ctx context.Context, userID, owner primitive.ObjectID) error {
	member, err := s.memberFor(ctx, userID)
	if err != nil {
		if errors.Is(err, ErrMemberProfileNotFound) {
			return ErrNotAuthorized
		}
		return err
	}
	if member.ID != owner {
		return ErrNotAuthorized
	}
	return nil
}

// startOf is the instant a booking's session begins. A malformed stored time
// falls back to the start of the booking date.
func (s *bookingService) startOf(b *domain.Booking) time.Time {
	date := calendar.DateOf(b.BookingDate.UTC())
	start, err := calendar.Combine(date, b.StartTime, s.loc)
	if err != nil {
		return calendar.At(date, calendar.Clock{}, s.loc)
	}
	return start
}

// emit logs a failed publish. Events never fail the request that caused them.
func (s *bookingService) emit(ctx context.Context, subject string, err error) {
	if err != nil {
		logging.FromContext(ctx).WarnContext(ctx, "Failed to publish event", "subject", subject, "error", err)
	}
}

func parseObjectID(field, raw string) (primitive.ObjectID, error) {
	id, err := primitive.ObjectIDFromHex(strings.TrimSpace(raw))
	if err != nil {
		return primitive.NilObjectID, fmt.Errorf("%w: invalid %s", ErrInvalidInput, field)
	}
	return id, nil
}

// parseClassID reports an id that cannot name any class as an unknown class.
func parseClassID(raw string) (primitive.ObjectID, error) {
	id, err := primitive.ObjectIDFromHex(strings.TrimSpace(raw))
	if err != nil {
		return primitive.NilObjectID, ErrClassNotFound
	}
	return id, nil
}

func parseDate(raw string) (calendar.Date, error) {
	d, err := calendar.ParseDate(raw)
	if err != nil {
		return calendar.Date{}, fmt.Errorf("%w: %v", ErrInvalidInput, err)
	}
	return d, nil
}

func parseClock(raw string) (calendar.Clock, error) {
	c, err := calendar.ParseClock(raw)
	if err != nil {
		return calendar.Clock{}, fmt.Errorf("%w: %v", ErrInvalidInput, err)
	}
	return c, nil
}
