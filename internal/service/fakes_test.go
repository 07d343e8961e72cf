package service

import (
	"context"
	"sort"
	"sync"
	"time"

	"ironhouse/gym-api/internal/domain"
	"ironhouse/gym-api/internal/repository"

	"github.com/stretchr/testify/mock"
	"go.mongodb.org/mongo-driver/bson/primitive"
)

// In-memory repositories. They keep enough state to exercise the booking
// workflow end to end without a database.

type fakeUserRepo struct {
	mu    sync.Mutex
	users map[primitive.ObjectID]domain.User
}

func newFakeUserRepo() *fakeUserRepo {
	return &fakeUserRepo{users: map[primitive.ObjectID]domain.User{}}
}

func (r *fakeUserRepo) Create(_ context.Context, user *domain.User) (primitive.ObjectID, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	for _, u := range r.users {
		if u.Email == user.Email {
			return primitive.NilObjectID, repository.ErrDuplicateKey
		}
	}
	user.ID = primitive.NewObjectID()
	r.users[user.ID] = *user
	return user.ID, nil
}

func (r *fakeUserRepo) GetByEmail(_ context.Context, email string) (*domain.User, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	for _, u := range r.users {
		if u.Email == email {
			return &u, nil
		}
	}
	return nil, repository.ErrNotFound
}

func (r *fakeUserRepo) GetByID(_ context.Context, id primitive.ObjectID) (*domain.User, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	u, ok := r.users[id]
	if !ok {
		return nil, repository.ErrNotFound
	}
	return &u, nil
}

func (r *fakeUserRepo) GetByIDs(_ context.Context, ids []primitive.ObjectID) ([]domain.User, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	out := []domain.User{}
	for _, id := range ids {
		if u, ok := r.users[id]; ok {
			out = append(out, u)
		}
	}
	return out, nil
}

type fakeMemberRepo struct {
	mu      sync.Mutex
	members map[primitive.ObjectID]domain.Member
}

func newFakeMemberRepo() *fakeMemberRepo {
	return &fakeMemberRepo{members: map[primitive.ObjectID]domain.Member{}}
}

func (r *fakeMemberRepo) Create(_ context.Context, member *domain.Member) (primitive.ObjectID, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	for _, m := range r.members {
		if m.UserID == member.UserID {
			return primitive.NilObjectID, repository.ErrDuplicateKey
		}
	}
	member.ID = primitive.NewObjectID()
	r.members[member.ID] = *member
	return member.ID, nil
}

func (r *fakeMemberRepo) GetByUserID(_ context.Context, userID primitive.ObjectID) (*domain.Member, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	for _, m := range r.members {
		if m.UserID == userID {
			return &m, nil
		}
	}
	return nil, repository.ErrNotFound
}

func (r *fakeMemberRepo) GetByIDs(_ context.Context, ids []primitive.ObjectID) ([]domain.Member, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	out := []domain.Member{}
	for _, id := range ids {
		if m, ok := r.members[id]; ok {
			out = append(out, m)
		}
	}
	return out, nil
}

type fakeClassRepo struct {
	mu      sync.Mutex
	classes map[primitive.ObjectID]domain.Class
}

func newFakeClassRepo() *fakeClassRepo {
	return &fakeClassRepo{classes: map[primitive.ObjectID]domain.Class{}}
}

func (r *fakeClassRepo) Create(_ context.Context, class *domain.Class) (primitive.ObjectID, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	class.ID = primitive.NewObjectID()
	r.classes[class.ID] = *class
	return class.ID, nil
}

func (r *fakeClassRepo) GetByID(_ context.Context, id primitive.ObjectID) (*domain.Class, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	c, ok := r.classes[id]
	if !ok {
		return nil, repository.ErrNotFound
	}
	return &c, nil
}

func (r *fakeClassRepo) List(_ context.Context) ([]domain.Class, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	out := []domain.Class{}
	for _, c := range r.classes {
		out = append(out, c)
	}
	sort.Slice(out, func(i, j int) bool { return out[i].Name < out[j].Name })
	return out, nil
}

func (r *fakeClassRepo) SetImageKey(_ context.Context, id primitive.ObjectID, key string) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	c, ok := r.classes[id]
	if !ok {
		return repository.ErrNotFound
	}
	c.ImageKey = key
	r.classes[id] = c
	return nil
}

func slotMatches(slot domain.Slot, class primitive.ObjectID, date time.Time, startTime string) bool {
	if class != slot.Class || !date.Equal(slot.Date) {
		return false
	}
	return slot.StartTime == "" || slot.StartTime == startTime
}

type fakeBookingRepo struct {
	mu       sync.Mutex
	bookings []domain.Booking
	// createErr, when set, fails the next Create and is then cleared.
	createErr error
}

func newFakeBookingRepo() *fakeBookingRepo {
	return &fakeBookingRepo{}
}

func (r *fakeBookingRepo) Create(_ context.Context, booking *domain.Booking) (primitive.ObjectID, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	if err := r.createErr; err != nil {
		r.createErr = nil
		return primitive.NilObjectID, err
	}
	booking.ID = primitive.NewObjectID()
	if booking.Status == "" {
		booking.Status = domain.BookingConfirmed
	}
	if booking.BookingType == "" {
		booking.BookingType = domain.BookingSingle
	}
	r.bookings = append(r.bookings, *booking)
	return booking.ID, nil
}

func (r *fakeBookingRepo) GetByID(_ context.Context, id primitive.ObjectID) (*domain.Booking, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	for _, b := range r.bookings {
		if b.ID == id {
			return &b, nil
		}
	}
	return nil, repository.ErrNotFound
}

func (r *fakeBookingRepo) FindActiveForMember(_ context.Context, memberID primitive.ObjectID, slot domain.Slot) (*domain.Booking, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	for _, b := range r.bookings {
		if b.Member == memberID && b.Status != domain.BookingCancelled && slotMatches(slot, b.Class, b.BookingDate, b.StartTime) {
			return &b, nil
		}
	}
	return nil, repository.ErrNotFound
}

func (r *fakeBookingRepo) CountActive(_ context.Context, slot domain.Slot) (int64, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	var n int64
	for _, b := range r.bookings {
		if b.Status != domain.BookingCancelled && slotMatches(slot, b.Class, b.BookingDate, b.StartTime) {
			n++
		}
	}
	return n, nil
}

func (r *fakeBookingRepo) filter(keep func(domain.Booking) bool) []domain.Booking {
	r.mu.Lock()
	defer r.mu.Unlock()
	out := []domain.Booking{}
	for _, b := range r.bookings {
		if keep(b) {
			out = append(out, b)
		}
	}
	return out
}

func (r *fakeBookingRepo) ListByMember(_ context.Context, memberID primitive.ObjectID) ([]domain.Booking, error) {
	out := r.filter(func(b domain.Booking) bool { return b.Member == memberID })
	sort.SliceStable(out, func(i, j int) bool {
		if !out[i].BookingDate.Equal(out[j].BookingDate) {
			return out[i].BookingDate.Before(out[j].BookingDate)
		}
		return out[i].StartTime < out[j].StartTime
	})
	return out, nil
}

func (r *fakeBookingRepo) ListByRecurring(_ context.Context, recurringID primitive.ObjectID) ([]domain.Booking, error) {
	return r.filter(func(b domain.Booking) bool {
		return b.RecurringBooking != nil && *b.RecurringBooking == recurringID
	}), nil
}

func (r *fakeBookingRepo) ListAll(_ context.Context) ([]domain.Booking, error) {
	out := r.filter(func(domain.Booking) bool { return true })
	sort.SliceStable(out, func(i, j int) bool { return out[i].BookingDate.After(out[j].BookingDate) })
	return out, nil
}

func (r *fakeBookingRepo) Cancel(_ context.Context, id primitive.ObjectID, at time.Time) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	for i := range r.bookings {
		if r.bookings[i].ID == id {
			t := at.UTC()
			r.bookings[i].Status = domain.BookingCancelled
			r.bookings[i].CancelledAt = &t
			return nil
		}
	}
	return repository.ErrNotFound
}

func (r *fakeBookingRepo) UpdateStatus(_ context.Context, id primitive.ObjectID, status domain.BookingStatus) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	for i := range r.bookings {
		if r.bookings[i].ID == id {
			r.bookings[i].Status = status
			return nil
		}
	}
	return repository.ErrNotFound
}

// forMember returns the member's bookings in insertion order.
func (r *fakeBookingRepo) forMember(memberID primitive.ObjectID) []domain.Booking {
	return r.filter(func(b domain.Booking) bool { return b.Member == memberID })
}

type fakeWaitlistRepo struct {
	mu      sync.Mutex
	entries []domain.WaitlistEntry
	seq     int
	// updateErr, when set, fails the next UpdateStatus and is then cleared.
	updateErr error
}

func newFakeWaitlistRepo() *fakeWaitlistRepo {
	return &fakeWaitlistRepo{}
}

func (r *fakeWaitlistRepo) Create(_ context.Context, entry *domain.WaitlistEntry) (primitive.ObjectID, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.seq++
	entry.ID = primitive.NewObjectID()
	entry.CreatedAt = time.Unix(int64(r.seq), 0).UTC()
	if entry.Status == "" {
		entry.Status = domain.WaitlistWaiting
	}
	r.entries = append(r.entries, *entry)
	return entry.ID, nil
}

func (r *fakeWaitlistRepo) GetByID(_ context.Context, id primitive.ObjectID) (*domain.WaitlistEntry, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	for _, e := range r.entries {
		if e.ID == id {
			return &e, nil
		}
	}
	return nil, repository.ErrNotFound
}

func (r *fakeWaitlistRepo) CountWaiting(_ context.Context, slot domain.Slot) (int64, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	var n int64
	for _, e := range r.entries {
		if e.Status == domain.WaitlistWaiting && slotMatches(slot, e.Class, e.BookingDate, e.StartTime) {
			n++
		}
	}
	return n, nil
}

func (r *fakeWaitlistRepo) NextWaiting(_ context.Context, slot domain.Slot) (*domain.WaitlistEntry, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	var best *domain.WaitlistEntry
	for i := range r.entries {
		e := r.entries[i]
		if e.Status != domain.WaitlistWaiting || !slotMatches(slot, e.Class, e.BookingDate, e.StartTime) {
			continue
		}
		if best == nil || e.Position < best.Position ||
			(e.Position == best.Position && e.CreatedAt.Before(best.CreatedAt)) {
			best = &e
		}
	}
	if best == nil {
		return nil, repository.ErrNotFound
	}
	return best, nil
}

func (r *fakeWaitlistRepo) ListByMember(_ context.Context, memberID primitive.ObjectID, statuses ...domain.WaitlistStatus) ([]domain.WaitlistEntry, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	out := []domain.WaitlistEntry{}
	for i := len(r.entries) - 1; i >= 0; i-- {
		e := r.entries[i]
		if e.Member != memberID {
			continue
		}
		if len(statuses) > 0 && !containsStatus(statuses, e.Status) {
			continue
		}
		out = append(out, e)
	}
	return out, nil
}

func containsStatus(statuses []domain.WaitlistStatus, s domain.WaitlistStatus) bool {
	for _, v := range statuses {
		if v == s {
			return true
		}
	}
	return false
}

func (r *fakeWaitlistRepo) UpdateStatus(_ context.Context, id primitive.ObjectID, status domain.WaitlistStatus) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	if err := r.updateErr; err != nil {
		r.updateErr = nil
		return err
	}
	for i := range r.entries {
		if r.entries[i].ID == id {
			r.entries[i].Status = status
			return nil
		}
	}
	return repository.ErrNotFound
}

func (r *fakeWaitlistRepo) ExpireWaitingBefore(_ context.Context, cutoff time.Time) (int64, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	var n int64
	for i := range r.entries {
		if r.entries[i].Status == domain.WaitlistWaiting && r.entries[i].ExpiresAt.Before(cutoff) {
			r.entries[i].Status = domain.WaitlistExpired
			n++
		}
	}
	return n, nil
}

func (r *fakeWaitlistRepo) get(id primitive.ObjectID) domain.WaitlistEntry {
	e, _ := r.GetByID(context.Background(), id)
	return *e
}

type fakeRecurringRepo struct {
	mu     sync.Mutex
	series map[primitive.ObjectID]domain.RecurringBooking
	order  []primitive.ObjectID
}

func newFakeRecurringRepo() *fakeRecurringRepo {
	return &fakeRecurringRepo{series: map[primitive.ObjectID]domain.RecurringBooking{}}
}

func (r *fakeRecurringRepo) Create(_ context.Context, rb *domain.RecurringBooking) (primitive.ObjectID, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	rb.ID = primitive.NewObjectID()
	if rb.Status == "" {
		rb.Status = domain.RecurringActive
	}
	r.series[rb.ID] = *rb
	r.order = append(r.order, rb.ID)
	return rb.ID, nil
}

func (r *fakeRecurringRepo) GetByID(_ context.Context, id primitive.ObjectID) (*domain.RecurringBooking, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	rb, ok := r.series[id]
	if !ok {
		return nil, repository.ErrNotFound
	}
	return &rb, nil
}

func (r *fakeRecurringRepo) ListByMember(_ context.Context, memberID primitive.ObjectID) ([]domain.RecurringBooking, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	out := []domain.RecurringBooking{}
	for i := len(r.order) - 1; i >= 0; i-- {
		if rb := r.series[r.order[i]]; rb.Member == memberID {
			out = append(out, rb)
		}
	}
	return out, nil
}

func (r *fakeRecurringRepo) UpdateStatus(_ context.Context, id primitive.ObjectID, status domain.RecurringStatus) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	rb, ok := r.series[id]
	if !ok {
		return repository.ErrNotFound
	}
	rb.Status = status
	r.series[id] = rb
	return nil
}

// --- Collaborator mocks ---

type MockPublisher struct {
	mock.Mock
}

func (m *MockPublisher) PublishBookingCreated(ctx context.Context, booking *domain.Booking) error {
	return m.Called(ctx, booking).Error(0)
}

func (m *MockPublisher) PublishBookingCancelled(ctx context.Context, booking *domain.Booking) error {
	return m.Called(ctx, booking).Error(0)
}

func (m *MockPublisher) PublishWaitlistJoined(ctx context.Context, entry *domain.WaitlistEntry) error {
	return m.Called(ctx, entry).Error(0)
}

func (m *MockPublisher) PublishWaitlistPromoted(ctx context.Context, entry *domain.WaitlistEntry, booking *domain.Booking) error {
	return m.Called(ctx, entry, booking).Error(0)
}

func (m *MockPublisher) PublishRecurringCreated(ctx context.Context, rb *domain.RecurringBooking, bookingsCreated int) error {
	return m.Called(ctx, rb, bookingsCreated).Error(0)
}

func (m *MockPublisher) Close() {}

// allowAll accepts every publish call with err.
func (m *MockPublisher) allowAll(err error) {
	for _, method := range []string{"PublishBookingCreated", "PublishBookingCancelled", "PublishWaitlistJoined"} {
		m.On(method, mock.Anything, mock.Anything).Return(err).Maybe()
	}
	m.On("PublishWaitlistPromoted", mock.Anything, mock.Anything, mock.Anything).Return(err).Maybe()
	m.On("PublishRecurringCreated", mock.Anything, mock.Anything, mock.Anything).Return(err).Maybe()
}

type MockFileStorage struct {
	mock.Mock
}

func (m *MockFileStorage) GeneratePresignedUploadURL(ctx context.Context, objectKey string, contentType string, expires time.Duration) (string, error) {
	args := m.Called(ctx, objectKey, contentType, expires)
	return args.String(0), args.Error(1)
}

func (m *MockFileStorage) GeneratePresignedDownloadURL(ctx context.Context, objectKey string, expires time.Duration) (string, error) {
	args := m.Called(ctx, objectKey, expires)
	return args.String(0), args.Error(1)
}

func (m *MockFileStorage) DeleteObject(ctx context.Context, objectKey string) error {
	return m.Called(ctx, objectKey).Error(0)
}
