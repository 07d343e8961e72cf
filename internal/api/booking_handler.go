package api

import (
	"fmt"
	"net/http"

	"ironhouse/gym-api/internal/domain"
	"ironhouse/gym-api/internal/service"

	"github.com/gin-gonic/gin"
)

// BookingHandler serves bookings, the waitlist and recurring series.
type BookingHandler struct {
	bookingService service.BookingService
}

// NewBookingHandler creates a new BookingHandler.
func NewBookingHandler(bookingService service.BookingService) *BookingHandler {
	return &BookingHandler{bookingService: bookingService}
}

// --- DTOs ---

type CreateBookingRequest struct {
	ClassID     string `json:"classId" binding:"required"`
	BookingDate string `json:"bookingDate" binding:"required,datetime=2006-01-02"`
	StartTime   string `json:"startTime" binding:"required,clock"`
	EndTime     string `json:"endTime" binding:"required,clock"`
	Notes       string `json:"notes" binding:"max=500"`
}

type AttendanceRequest struct {
	Status domain.BookingStatus `json:"status" binding:"required,oneof=completed no-show"`
}

type CreateRecurringRequest struct {
	ClassID        string `json:"classId" binding:"required"`
	RecurrenceType string `json:"recurrenceType" binding:"required"`
	RecurrenceDay  string `json:"recurrenceDay" binding:"required,weekday"`
	StartDate      string `json:"startDate" binding:"required,datetime=2006-01-02"`
	EndDate        string `json:"endDate" binding:"required,datetime=2006-01-02"`
	StartTime      string `json:"startTime" binding:"required,clock"`
	EndTime        string `json:"endTime" binding:"required,clock"`
	Notes          string `json:"notes" binding:"max=500"`
}

// --- Availability ---

// GetAvailability godoc
// @Summary Class availability on a date
// @Description Counts active bookings and waiting entries for every session of the class on the date.
// @Tags Bookings
// @Produce json
// @Param classId path string true "Class ID"
// @Param date path string true "Date (YYYY-MM-DD)"
// @Success 200 {object} Envelope{data=service.Availability}
// @Failure 400 {object} Envelope
// @Failure 404 {object} Envelope "Class not found"
// @Router /bookings/availability/{classId}/{date} [get]
func (h *BookingHandler) GetAvailability(c *gin.Context) {
	availability, err := h.bookingService.GetAvailability(c.Request.Context(), c.Param("classId"), c.Param("date"))
	if err != nil {
		abortWithServiceError(c, err)
		return
	}
	respondOK(c, http.StatusOK, availability, "")
}

// --- Bookings ---

// CreateBooking godoc
// @Summary Book a class session
// @Description Books a place, or joins the waitlist when the session is full.
// @Tags Bookings
// @Accept json
// @Produce json
// @Param booking body CreateBookingRequest true "Session to book"
// @Success 201 {object} Envelope{data=service.BookingResult}
// @Failure 400 {object} Envelope
// @Failure 404 {object} Envelope "Class or member profile not found"
// @Security BearerAuth
// @Router /bookings [post]
func (h *BookingHandler) CreateBooking(c *gin.Context) {
	actor, ok := currentActor(c)
	if !ok {
		return
	}

	var req CreateBookingRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		abortWithError(c, http.StatusBadRequest, validationMessage(err, service.ErrBookingDetailsRequired))
		return
	}

	result, err := h.bookingService.CreateBooking(c.Request.Context(), actor.UserID, service.CreateBookingInput{
		ClassID:     req.ClassID,
		BookingDate: req.BookingDate,
		StartTime:   req.StartTime,
		EndTime:     req.EndTime,
		Notes:       req.Notes,
	})
	if err != nil {
		abortWithServiceError(c, err)
		return
	}

	message := "Booking created successfully"
	if result.Waitlisted {
		message = fmt.Sprintf("Class is full. You have been added to the waitlist at position %d", result.Position)
	}
	respondOK(c, http.StatusCreated, result, message)
}

// CancelBooking godoc
// @Summary Cancel a booking
// @Description Cancels the caller's booking at least two hours ahead and promotes the next waitlisted member.
// @Tags Bookings
// @Produce json
// @Param id path string true "Booking ID"
// @Success 200 {object} Envelope{data=domain.Booking}
// @Failure 400 {object} Envelope
// @Failure 403 {object} Envelope
// @Failure 404 {object} Envelope
// @Security BearerAuth
// @Router /bookings/{id} [delete]
func (h *BookingHandler) CancelBooking(c *gin.Context) {
	actor, ok := currentActor(c)
	if !ok {
		return
	}
	bookingID, ok := pathObjectID(c, "id", "booking ID")
	if !ok {
		return
	}

	booking, err := h.bookingService.CancelBooking(c.Request.Context(), actor.UserID, bookingID)
	if err != nil {
		abortWithServiceError(c, err)
		return
	}
	respondOK(c, http.StatusOK, booking, "Booking cancelled successfully")
}

// GetMyBookings godoc
// @Summary The caller's bookings
// @Tags Bookings
// @Produce json
// @Success 200 {object} Envelope{data=service.MemberBookings}
// @Failure 404 {object} Envelope "Member profile not found"
// @Security BearerAuth
// @Router /bookings/my-bookings [get]
func (h *BookingHandler) GetMyBookings(c *gin.Context) {
	actor, ok := currentActor(c)
	if !ok {
		return
	}

	bookings, err := h.bookingService.GetMyBookings(c.Request.Context(), actor.UserID)
	if err != nil {
		abortWithServiceError(c, err)
		return
	}
	respondOK(c, http.StatusOK, bookings, "")
}

// GetAllBookings godoc
// @Summary Every booking
// @Tags Bookings
// @Produce json
// @Success 200 {object} Envelope{data=[]service.BookingView}
// @Failure 403 {object} Envelope
// @Security BearerAuth
// @Router /bookings [get]
func (h *BookingHandler) GetAllBookings(c *gin.Context) {
	bookings, err := h.bookingService.GetAllBookings(c.Request.Context())
	if err != nil {
		abortWithServiceError(c, err)
		return
	}
	respondOK(c, http.StatusOK, bookings, "")
}

// MarkAttendance godoc
// @Summary Record attendance
// @Tags Bookings
// @Accept json
// @Produce json
// @Param id path string true "Booking ID"
// @Param request body AttendanceRequest true "completed or no-show"
// @Success 200 {object} Envelope{data=domain.Booking}
// @Failure 400 {object} Envelope
// @Failure 403 {object} Envelope
// @Failure 404 {object} Envelope
// @Security BearerAuth
// @Router /bookings/{id}/attendance [patch]
func (h *BookingHandler) MarkAttendance(c *gin.Context) {
	actor, ok := currentActor(c)
	if !ok {
		return
	}
	bookingID, ok := pathObjectID(c, "id", "booking ID")
	if !ok {
		return
	}

	var req AttendanceRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		abortWithError(c, http.StatusBadRequest, validationMessage(err, nil))
		return
	}

	booking, err := h.bookingService.MarkAttendance(c.Request.Context(), actor, bookingID, req.Status)
	if err != nil {
		abortWithServiceError(c, err)
		return
	}
	respondOK(c, http.StatusOK, booking, "Attendance recorded")
}

// --- Waitlist ---

// GetMyWaitlist godoc
// @Summary The caller's waitlist entries
// @Description Entries still waiting or offered, newest first.
// @Tags Waitlist
// @Produce json
// @Success 200 {object} Envelope{data=[]domain.WaitlistEntry}
// @Security BearerAuth
// @Router /bookings/waitlist [get]
func (h *BookingHandler) GetMyWaitlist(c *gin.Context) {
	actor, ok := currentActor(c)
	if !ok {
		return
	}

	entries, err := h.bookingService.GetMyWaitlist(c.Request.Context(), actor.UserID)
	if err != nil {
		abortWithServiceError(c, err)
		return
	}
	respondOK(c, http.StatusOK, entries, "")
}

// LeaveWaitlist godoc
// @Summary Leave a waitlist
// @Tags Waitlist
// @Produce json
// @Param id path string true "Waitlist entry ID"
// @Success 200 {object} Envelope
// @Failure 400 {object} Envelope
// @Failure 403 {object} Envelope
// @Failure 404 {object} Envelope
// @Security BearerAuth
// @Router /bookings/waitlist/{id} [delete]
func (h *BookingHandler) LeaveWaitlist(c *gin.Context) {
	actor, ok := currentActor(c)
	if !ok {
		return
	}
	entryID, ok := pathObjectID(c, "id", "waitlist entry ID")
	if !ok {
		return
	}

	if err := h.bookingService.LeaveWaitlist(c.Request.Context(), actor.UserID, entryID); err != nil {
		abortWithServiceError(c, err)
		return
	}
	respondOK(c, http.StatusOK, nil, "Removed from waitlist successfully")
}

// --- Recurring bookings ---

// CreateRecurringBooking godoc
// @Summary Book a recurring series
// @Description Expands a weekly or monthly rule into bookings. Full sessions are skipped.
// @Tags Recurring
// @Accept json
// @Produce json
// @Param request body CreateRecurringRequest true "Series rule"
// @Success 201 {object} Envelope{data=service.RecurringResult}
// @Failure 400 {object} Envelope
// @Failure 404 {object} Envelope
// @Security BearerAuth
// @Router /bookings/recurring [post]
func (h *BookingHandler) CreateRecurringBooking(c *gin.Context) {
	actor, ok := currentActor(c)
	if !ok {
		return
	}

	var req CreateRecurringRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		abortWithError(c, http.StatusBadRequest, validationMessage(err, service.ErrRecurringDetailsRequired))
		return
	}

	result, err := h.bookingService.CreateRecurringBooking(c.Request.Context(), actor.UserID, service.RecurringBookingInput{
		ClassID:        req.ClassID,
		RecurrenceType: req.RecurrenceType,
		RecurrenceDay:  req.RecurrenceDay,
		StartDate:      req.StartDate,
		EndDate:        req.EndDate,
		StartTime:      req.StartTime,
		EndTime:        req.EndTime,
		Notes:          req.Notes,
	})
	if err != nil {
		abortWithServiceError(c, err)
		return
	}

	message := fmt.Sprintf("Recurring booking created. %d bookings created", result.BookingsCreated)
	respondOK(c, http.StatusCreated, result, message)
}

// GetMyRecurringBookings godoc
// @Summary The caller's recurring series
// @Tags Recurring
// @Produce json
// @Success 200 {object} Envelope{data=[]domain.RecurringBooking}
// @Security BearerAuth
// @Router /bookings/recurring [get]
func (h *BookingHandler) GetMyRecurringBookings(c *gin.Context) {
	actor, ok := currentActor(c)
	if !ok {
		return
	}

	series, err := h.bookingService.GetMyRecurringBookings(c.Request.Context(), actor.UserID)
	if err != nil {
		abortWithServiceError(c, err)
		return
	}
	respondOK(c, http.StatusOK, series, "")
}

// CancelRecurringBooking godoc
// @Summary Cancel a recurring series
// @Description Cancels the series and its confirmed bookings that are still outside the cancellation window.
// @Tags Recurring
// @Produce json
// @Param id path string true "Recurring booking ID"
// @Success 200 {object} Envelope{data=service.RecurringCancelResult}
// @Failure 400 {object} Envelope
// @Failure 403 {object} Envelope
// @Failure 404 {object} Envelope
// @Security BearerAuth
// @Router /bookings/recurring/{id} [delete]
func (h *BookingHandler) CancelRecurringBooking(c *gin.Context) {
	actor, ok := currentActor(c)
	if !ok {
		return
	}
	recurringID, ok := pathObjectID(c, "id", "recurring booking ID")
	if !ok {
		return
	}

	result, err := h.bookingService.CancelRecurringBooking(c.Request.Context(), actor.UserID, recurringID)
	if err != nil {
		abortWithServiceError(c, err)
		return
	}
	respondOK(c, http.StatusOK, result, "Recurring booking cancelled")
}
