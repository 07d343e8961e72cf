package service

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"time"

	"ironhouse/gym-api/internal/domain"
	"ironhouse/gym-api/internal/logging"
	"ironhouse/gym-api/internal/repository"
	"ironhouse/gym-api/internal/storage"

	"go.mongodb.org/mongo-driver/bson/primitive"
)

// ImageURLExpiry is how long presigned class image URLs stay valid.
const ImageURLExpiry = 15 * time.Minute

// --- Service Interface ---
type ClassService interface {
	CreateClass(ctx context.Context, actor Actor, in CreateClassInput) (*domain.Class, error)
	GetClassByID(ctx context.Context, classID primitive.ObjectID) (*ClassView, error)
	ListClasses(ctx context.Context) ([]domain.Class, error)
	CreateImageUploadURL(ctx context.Context, actor Actor, classID primitive.ObjectID, contentType string) (*ImageUpload, error)
}

type CreateClassInput struct {
	Name        string
	Description string
	Capacity    int
	Duration    int
	Location    string
	Schedule    string
	// TrainerID lets an admin create a class on a trainer's behalf. Ignored for trainers.
	TrainerID *primitive.ObjectID
}

// ClassView is a class with a temporary download URL for its cover image.
type ClassView struct {
	domain.Class
	ImageURL string `json:"imageUrl,omitempty"`
}

type ImageUpload struct {
	UploadURL string `json:"uploadUrl"`
	ObjectKey string `json:"objectKey"`
	ExpiresIn int    `json:"expiresIn"` // seconds
}

// --- Service Implementation ---

// classService implements the ClassService interface.
type classService struct {
	classRepo   repository.ClassRepository
	userRepo    repository.UserRepository
	fileStorage storage.FileStorage
}

// NewClassService creates a new instance of classService. fileStorage may be
// nil, in which case image operations report ErrImageStorageDisabled.
func NewClassService(classRepo repository.ClassRepository, userRepo repository.UserRepository, fileStorage storage.FileStorage) ClassService {
	return &classService{
		classRepo:   classRepo,
		userRepo:    userRepo,
		fileStorage: fileStorage,
	}
}

// CreateClass adds a class to the catalog, snapshotting the trainer's name.
func (s *classService) CreateClass(ctx context.Context, actor Actor, in CreateClassInput) (*domain.Class, error) {
	name := strings.TrimSpace(in.Name)
	if name == "" {
		return nil, fmt.Errorf("%w: class name is required", ErrInvalidInput)
	}
	if in.Capacity < 1 {
		return nil, fmt.Errorf("%w: capacity must be at least 1", ErrInvalidInput)
	}
	if in.Duration < 1 {
		return nil, fmt.Errorf("%w: duration must be at least 1 minute", ErrInvalidInput)
	}

	trainerID := actor.UserID
	if actor.Role == domain.RoleAdmin && in.TrainerID != nil {
		trainerID = *in.TrainerID
	}

	trainer, err := s.userRepo.GetByID(ctx, trainerID)
	if err != nil {
		if errors.Is(err, repository.ErrNotFound) {
			return nil, ErrUserNotFound
		}
		return nil, err
	}
	if !trainer.IsTrainer() && !trainer.IsAdmin() {
		return nil, fmt.Errorf("%w: classes must be led by a trainer", ErrInvalidInput)
	}

	class := &domain.Class{
		Name:        name,
		Description: in.Description,
		Capacity:    in.Capacity,
		Duration:    in.Duration,
		Trainer:     trainer.ID,
		TrainerName: trainer.Name,
		Location:    in.Location,
		Schedule:    in.Schedule,
	}

	if class.ID, err = s.classRepo.Create(ctx, class); err != nil {
		return nil, err
	}

	logging.FromContext(ctx).InfoContext(ctx, "Class created", "classId", class.ID.Hex(), "trainerId", trainer.ID.Hex())
	return class, nil
}

// GetClassByID retrieves a single class with a presigned image URL when it has one.
func (s *classService) GetClassByID(ctx context.Context, classID primitive.ObjectID) (*ClassView, error) {
	class, err := s.classRepo.GetByID(ctx, classID)
	if err != nil {
		if errors.Is(err, repository.ErrNotFound) {
			return nil, ErrClassNotFound
		}
		return nil, err
	}

	view := &ClassView{Class: *class}
	if class.ImageKey != "" && s.fileStorage != nil {
		url, err := s.fileStorage.GeneratePresignedDownloadURL(ctx, class.ImageKey, ImageURLExpiry)
		if err != nil {
			// The class is still useful without its image.
			logging.FromContext(ctx).WarnContext(ctx, "Failed to presign class image", "classId", class.ID.Hex(), "error", err)
		} else {
			view.ImageURL = url
		}
	}
	return view, nil
}

// ListClasses returns the whole catalog sorted by name.
func (s *classService) ListClasses(ctx context.Context) ([]domain.Class, error) {
	return s.classRepo.List(ctx)
}

// CreateImageUploadURL issues a presigned PUT URL for a new cover image and
// records its key on the class. The previous image object is removed.
func (s *classService) CreateImageUploadURL(ctx context.Context, actor Actor, classID primitive.ObjectID, contentType string) (*ImageUpload, error) {
	if s.fileStorage == nil {
		return nil, ErrImageStorageDisabled
	}

	class, err := s.classRepo.GetByID(ctx, classID)
	if err != nil {
		if errors.Is(err, repository.ErrNotFound) {
			return nil, ErrClassNotFound
		}
		return nil, err
	}
	if actor.Role != domain.RoleAdmin && class.Trainer != actor.UserID {
		return nil, ErrNotAuthorized
	}

	key, err := storage.ClassImageKey(class.ID.Hex(), contentType)
	if err != nil {
		return nil, fmt.Errorf("%w: %v", ErrInvalidInput, err)
	}

	url, err := s.fileStorage.GeneratePresignedUploadURL(ctx, key, contentType, ImageURLExpiry)
	if err != nil {
		return nil, err
	}

	if err := s.classRepo.SetImageKey(ctx, class.ID, key); err != nil {
		if errors.Is(err, repository.ErrNotFound) {
			return nil, ErrClassNotFound
		}
		return nil, err
	}

	if class.ImageKey != "" {
		if err := s.fileStorage.DeleteObject(ctx, class.ImageKey); err != nil {
			logging.FromContext(ctx).WarnContext(ctx, "Failed to delete previous class image", "key", class.ImageKey, "error", err)
		}
	}

	return &ImageUpload{
		UploadURL: url,
		ObjectKey: key,
		ExpiresIn: int(ImageURLExpiry.Seconds()),
	}, nil
}
