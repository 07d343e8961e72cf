package service

import "errors"

// Messages of these errors are returned to API clients verbatim.
var (
	ErrInvalidInput = errors.New("invalid input")

	// --- Not found ---
	ErrClassNotFound            = errors.New("Class not found")
	ErrMemberProfileNotFound    = errors.New("Member profile not found")
	ErrUserNotFound             = errors.New("User not found")
	ErrBookingNotFound          = errors.New("Booking not found")
	ErrWaitlistEntryNotFound    = errors.New("Waitlist entry not found")
	ErrRecurringBookingNotFound = errors.New("Recurring booking not found")

	// --- Validation ---
	ErrBookingDetailsRequired    = errors.New("All booking details are required")
	ErrRecurringDetailsRequired  = errors.New("All recurring booking details are required")
	ErrDuplicateBooking          = errors.New("You already have a booking for this class at this time")
	ErrCancellationWindow        = errors.New("Bookings can only be cancelled at least 2 hours in advance")
	ErrBookingAlreadyCancelled   = errors.New("Booking is already cancelled")
	ErrWaitlistEntryInactive     = errors.New("Waitlist entry is no longer active")
	ErrRecurringAlreadyCancelled = errors.New("Recurring booking is already cancelled")

	// --- Forbidden ---
	ErrNotAuthorized = errors.New("Not authorized")

	// --- Unavailable ---
	ErrImageStorageDisabled = errors.New("Image storage is not configured")
)
