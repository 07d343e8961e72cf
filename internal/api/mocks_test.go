package api

import (
	"context"

	"ironhouse/gym-api/internal/domain"
	"ironhouse/gym-api/internal/service"

	"github.com/stretchr/testify/mock"
	"go.mongodb.org/mongo-driver/bson/primitive"
)

// --- AuthService ---

type MockAuthService struct {
	mock.Mock
}

func (m *MockAuthService) Register(ctx context.Context, in service.RegisterInput) (*domain.User, error) {
	args := m.Called(ctx, in)
	user, _ := args.Get(0).(*domain.User)
	return user, args.Error(1)
}

func (m *MockAuthService) Login(ctx context.Context, email, password string) (string, *domain.User, error) {
	args := m.Called(ctx, email, password)
	user, _ := args.Get(1).(*domain.User)
	return args.String(0), user, args.Error(2)
}

func (m *MockAuthService) GetUserByID(ctx context.Context, id string) (*domain.User, error) {
	args := m.Called(ctx, id)
	user, _ := args.Get(0).(*domain.User)
	return user, args.Error(1)
}

func (m *MockAuthService) GetJWTSecret() string {
	return testJWTSecret
}

// --- ClassService ---

type MockClassService struct {
	mock.Mock
}

func (m *MockClassService) CreateClass(ctx context.Context, actor service.Actor, in service.CreateClassInput) (*domain.Class, error) {
	args := m.Called(ctx, actor, in)
	class, _ := args.Get(0).(*domain.Class)
	return class, args.Error(1)
}

func (m *MockClassService) GetClassByID(ctx context.Context, classID primitive.ObjectID) (*service.ClassView, error) {
	args := m.Called(ctx, classID)
	view, _ := args.Get(0).(*service.ClassView)
	return view, args.Error(1)
}

func (m *MockClassService) ListClasses(ctx context.Context) ([]domain.Class, error) {
	args := m.Called(ctx)
	classes, _ := args.Get(0).([]domain.Class)
	return classes, args.Error(1)
}

func (m *MockClassService) CreateImageUploadURL(ctx context.Context, actor service.Actor, classID primitive.ObjectID, contentType string) (*service.ImageUpload, error) {
	args := m.Called(ctx, actor, classID, contentType)
	upload, _ := args.Get(0).(*service.ImageUpload)
	return upload, args.Error(1)
}

// --- BookingService ---

type MockBookingService struct {
	mock.Mock
}

func (m *MockBookingService) GetAvailability(ctx context.Context, classID, date string) (*service.Availability, error) {
	args := m.Called(ctx, classID, date)
	a, _ := args.Get(0).(*service.Availability)
	return a, args.Error(1)
}

func (m *MockBookingService) CreateBooking(ctx context.Context, userID primitive.ObjectID, in service.CreateBookingInput) (*service.BookingResult, error) {
	args := m.Called(ctx, userID, in)
	res, _ := args.Get(0).(*service.BookingResult)
	return res, args.Error(1)
}

func (m *MockBookingService) CancelBooking(ctx context.Context, userID, bookingID primitive.ObjectID) (*domain.Booking, error) {
	args := m.Called(ctx, userID, bookingID)
	b, _ := args.Get(0).(*domain.Booking)
	return b, args.Error(1)
}

func (m *MockBookingService) GetMyBookings(ctx context.Context, userID primitive.ObjectID) (*service.MemberBookings, error) {
	args := m.Called(ctx, userID)
	b, _ := args.Get(0).(*service.MemberBookings)
	return b, args.Error(1)
}

func (m *MockBookingService) GetAllBookings(ctx context.Context) ([]service.BookingView, error) {
	args := m.Called(ctx)
	v, _ := args.Get(0).([]service.BookingView)
	return v, args.Error(1)
}

func (m *MockBookingService) MarkAttendance(ctx context.Context, actor service.Actor, bookingID primitive.ObjectID, status domain.BookingStatus) (*domain.Booking, error) {
	args := m.Called(ctx, actor, bookingID, status)
	b, _ := args.Get(0).(*domain.Booking)
	return b, args.Error(1)
}

func (m *MockBookingService) GetMyWaitlist(ctx context.Context, userID primitive.ObjectID) ([]domain.WaitlistEntry, error) {
	args := m.Called(ctx, userID)
	e, _ := args.Get(0).([]domain.WaitlistEntry)
	return e, args.Error(1)
}

func (m *MockBookingService) LeaveWaitlist(ctx context.Context, userID, entryID primitive.ObjectID) error {
	return m.Called(ctx, userID, entryID).Error(0)
}

func (m *MockBookingService) ExpireStaleWaitlist(ctx context.Context) (int64, error) {
	args := m.Called(ctx)
	return args.Get(0).(int64), args.Error(1)
}

func (m *MockBookingService) CreateRecurringBooking(ctx context.Context, userID primitive.ObjectID, in service.RecurringBookingInput) (*service.RecurringResult, error) {
	args := m.Called(ctx, userID, in)
	r, _ := args.Get(0).(*service.RecurringResult)
	return r, args.Error(1)
}

func (m *MockBookingService) GetMyRecurringBookings(ctx context.Context, userID primitive.ObjectID) ([]domain.RecurringBooking, error) {
	args := m.Called(ctx, userID)
	r, _ := args.Get(0).([]domain.RecurringBooking)
	return r, args.Error(1)
}

func (m *MockBookingService) CancelRecurringBooking(ctx context.Context, userID, recurringID primitive.ObjectID) (*service.RecurringCancelResult, error) {
	args := m.Called(ctx, userID, recurringID)
	r, _ := args.Get(0).(*service.RecurringCancelResult)
	return r, args.Error(1)
}
