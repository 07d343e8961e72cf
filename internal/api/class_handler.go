package api

import (
	"fmt"
	"net/http"

	"ironhouse/gym-api/internal/service"

	"github.com/gin-gonic/gin"
	"go.mongodb.org/mongo-driver/bson/primitive"
)

// ClassHandler serves the class catalog.
type ClassHandler struct {
	classService service.ClassService
}

func NewClassHandler(classService service.ClassService) *ClassHandler {
	return &ClassHandler{classService: classService}
}

// --- DTOs ---

type CreateClassRequest struct {
	Name        string `json:"name" binding:"required,max=120"`
	Description string `json:"description" binding:"max=2000"`
	Capacity    int    `json:"capacity" binding:"required,min=1"`
	Duration    int    `json:"duration" binding:"omitempty,min=1"` // minutes
	Location    string `json:"location"`
	Schedule    string `json:"schedule"`
	// Only honoured for admins creating a class for a trainer.
	TrainerID string `json:"trainerId" binding:"omitempty,len=24,hexadecimal"`
}

type ImageUploadRequest struct {
	ContentType string `json:"contentType" binding:"required,startswith=image/"`
}

// --- Handlers ---

// CreateClass godoc
// @Summary Create a class
// @Description Adds a class to the catalog. The caller becomes its trainer unless an admin names one.
// @Tags Classes
// @Accept json
// @Produce json
// @Param class body CreateClassRequest true "Class details"
// @Success 201 {object} Envelope{data=domain.Class}
// @Failure 400 {object} Envelope
// @Failure 403 {object} Envelope
// @Security BearerAuth
// @Router /classes [post]
func (h *ClassHandler) CreateClass(c *gin.Context) {
	actor, ok := currentActor(c)
	if !ok {
		return
	}

	var req CreateClassRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		abortWithError(c, http.StatusBadRequest, fmt.Sprintf("Validation error: %v", err))
		return
	}

	in := service.CreateClassInput{
		Name:        req.Name,
		Description: req.Description,
		Capacity:    req.Capacity,
		Duration:    req.Duration,
		Location:    req.Location,
		Schedule:    req.Schedule,
	}
	if req.TrainerID != "" {
		trainerID, err := primitive.ObjectIDFromHex(req.TrainerID)
		if err != nil {
			abortWithError(c, http.StatusBadRequest, "Invalid trainer ID format")
			return
		}
		in.TrainerID = &trainerID
	}

	class, err := h.classService.CreateClass(c.Request.Context(), actor, in)
	if err != nil {
		abortWithServiceError(c, err)
		return
	}
	respondOK(c, http.StatusCreated, class, "Class created successfully")
}

// ListClasses godoc
// @Summary List classes
// @Tags Classes
// @Produce json
// @Success 200 {object} Envelope{data=[]domain.Class}
// @Security BearerAuth
// @Router /classes [get]
func (h *ClassHandler) ListClasses(c *gin.Context) {
	classes, err := h.classService.ListClasses(c.Request.Context())
	if err != nil {
		abortWithServiceError(c, err)
		return
	}
	respondOK(c, http.StatusOK, classes, "")
}

// GetClass godoc
// @Summary Get a class
// @Description Includes a temporary image URL when the class has a cover image.
// @Tags Classes
// @Produce json
// @Param id path string true "Class ID"
// @Success 200 {object} Envelope{data=service.ClassView}
// @Failure 404 {object} Envelope
// @Security BearerAuth
// @Router /classes/{id} [get]
func (h *ClassHandler) GetClass(c *gin.Context) {
	classID, ok := pathObjectID(c, "id", "class ID")
	if !ok {
		return
	}

	view, err := h.classService.GetClassByID(c.Request.Context(), classID)
	if err != nil {
		abortWithServiceError(c, err)
		return
	}
	respondOK(c, http.StatusOK, view, "")
}

// CreateImageUploadURL godoc
// @Summary Presigned upload URL for a class image
// @Tags Classes
// @Accept json
// @Produce json
// @Param id path string true "Class ID"
// @Param request body ImageUploadRequest true "Image content type"
// @Success 200 {object} Envelope{data=service.ImageUpload}
// @Failure 400 {object} Envelope
// @Failure 403 {object} Envelope
// @Failure 503 {object} Envelope "Image storage not configured"
// @Security BearerAuth
// @Router /classes/{id}/image-upload-url [post]
func (h *ClassHandler) CreateImageUploadURL(c *gin.Context) {
	actor, ok := currentActor(c)
	if !ok {
		return
	}
	classID, ok := pathObjectID(c, "id", "class ID")
	if !ok {
		return
	}

	var req ImageUploadRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		abortWithError(c, http.StatusBadRequest, fmt.Sprintf("Validation error: %v", err))
		return
	}

	upload, err := h.classService.CreateImageUploadURL(c.Request.Context(), actor, classID, req.ContentType)
	if err != nil {
		abortWithServiceError(c, err)
		return
	}
	respondOK(c, http.StatusOK, upload, "")
}
