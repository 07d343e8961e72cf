package api

import (
	"log/slog"
	"net/http"

	"ironhouse/gym-api/internal/domain"
	"ironhouse/gym-api/internal/service"

	"github.com/gin-gonic/gin"
	"github.com/prometheus/client_golang/prometheus/promhttp"
)

func SetupRoutes(
	router *gin.Engine,
	jwtSecret string,
	authService service.AuthService,
	classService service.ClassService,
	bookingService service.BookingService,
) {
	if err := RegisterValidators(); err != nil {
		slog.Error("Failed to register request validators", "error", err)
	}

	authHandler := NewAuthHandler(authService)
	classHandler := NewClassHandler(classService)
	bookingHandler := NewBookingHandler(bookingService)

	authMiddleware := AuthMiddleware(jwtSecret)
	staffOnly := RoleMiddleware(domain.RoleTrainer, domain.RoleAdmin)

	router.GET("/ping", func(c *gin.Context) {
		c.JSON(http.StatusOK, gin.H{"message": "pong"})
	})
	router.GET("/metrics", gin.WrapH(promhttp.Handler()))

	apiV1 := router.Group("/api/v1")
	{
		authGroup := apiV1.Group("/auth")
		{
			authGroup.POST("/register", authHandler.Register)
			authGroup.POST("/login", authHandler.Login)
		}

		// Public: lets visitors check a session before signing in.
		apiV1.GET("/bookings/availability/:classId/:date", bookingHandler.GetAvailability)
	}

	protected := apiV1.Group("")
	protected.Use(authMiddleware)
	{
		protected.GET("/me", authHandler.Me)

		// --- Class Catalog ---
		classGroup := protected.Group("/classes")
		{
			classGroup.GET("", classHandler.ListClasses)
			classGroup.GET("/:id", classHandler.GetClass)
			classGroup.POST("", staffOnly, classHandler.CreateClass)
			classGroup.POST("/:id/image-upload-url", staffOnly, classHandler.CreateImageUploadURL)
		}

		// --- Bookings ---
		bookingGroup := protected.Group("/bookings")
		{
			bookingGroup.POST("", bookingHandler.CreateBooking)
			bookingGroup.GET("", staffOnly, bookingHandler.GetAllBookings)
			bookingGroup.GET("/my-bookings", bookingHandler.GetMyBookings)
			bookingGroup.DELETE("/:id", bookingHandler.CancelBooking)
			bookingGroup.PATCH("/:id/attendance", staffOnly, bookingHandler.MarkAttendance)

			// --- Waitlist ---
			bookingGroup.GET("/waitlist", bookingHandler.GetMyWaitlist)
			bookingGroup.DELETE("/waitlist/:id", bookingHandler.LeaveWaitlist)

			// --- Recurring ---
			bookingGroup.POST("/recurring", bookingHandler.CreateRecurringBooking)
			bookingGroup.GET("/recurring", bookingHandler.GetMyRecurringBookings)
			bookingGroup.DELETE("/recurring/:id", bookingHandler.CancelRecurringBooking)
		}
	}
}
