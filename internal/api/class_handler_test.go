package api

import (
	"net/http"
	"testing"

	"ironhouse/gym-api/internal/domain"
	"ironhouse/gym-api/internal/service"

	"github.com/gin-gonic/gin"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"
	"github.com/stretchr/testify/require"
	"go.mongodb.org/mongo-driver/bson/primitive"
)

func TestCreateClass_Trainer(t *testing.T) {
	s := newTestServer(t)
	trainerID := primitive.NewObjectID()
	actor := service.Actor{UserID: trainerID, Role: domain.RoleTrainer}

	s.classes.On("CreateClass", mock.Anything, actor, service.CreateClassInput{
		Name: "Spin", Capacity: 12, Duration: 45, Location: "Studio 2", Schedule: "Mon/Wed 07:00",
	}).Return(&domain.Class{ID: primitive.NewObjectID(), Name: "Spin", Capacity: 12, Trainer: trainerID}, nil).Once()

	w, env := s.do(t, http.MethodPost, "/api/v1/classes", gin.H{
		"name": "Spin", "capacity": 12, "duration": 45, "location": "Studio 2", "schedule": "Mon/Wed 07:00",
	}, trainerID, domain.RoleTrainer)

	require.Equal(t, http.StatusCreated, w.Code)
	assert.Contains(t, string(env.Data), `"name":"Spin"`)
}

func TestCreateClass_AdminNamesTrainer(t *testing.T) {
	s := newTestServer(t)
	adminID := primitive.NewObjectID()
	trainerID := primitive.NewObjectID()

	s.classes.On("CreateClass", mock.Anything, service.Actor{UserID: adminID, Role: domain.RoleAdmin},
		mock.MatchedBy(func(in service.CreateClassInput) bool {
			return in.TrainerID != nil && *in.TrainerID == trainerID
		})).Return(&domain.Class{ID: primitive.NewObjectID()}, nil).Once()

	w, _ := s.do(t, http.MethodPost, "/api/v1/classes", gin.H{
		"name": "Yoga", "capacity": 20, "trainerId": trainerID.Hex(),
	}, adminID, domain.RoleAdmin)

	assert.Equal(t, http.StatusCreated, w.Code)
}

func TestCreateClass_ValidationAndRoles(t *testing.T) {
	t.Run("capacity below one", func(t *testing.T) {
		s := newTestServer(t)
		w, _ := s.do(t, http.MethodPost, "/api/v1/classes", gin.H{"name": "Spin", "capacity": 0}, primitive.NewObjectID(), domain.RoleTrainer)
		assert.Equal(t, http.StatusBadRequest, w.Code)
	})

	t.Run("members cannot create", func(t *testing.T) {
		s := newTestServer(t)
		w, _ := s.do(t, http.MethodPost, "/api/v1/classes", gin.H{"name": "Spin", "capacity": 5}, primitive.NewObjectID(), domain.RoleMember)
		assert.Equal(t, http.StatusForbidden, w.Code)
	})
}

func TestGetClass(t *testing.T) {
	classID := primitive.NewObjectID()

	t.Run("with image url", func(t *testing.T) {
		s := newTestServer(t)
		s.classes.On("GetClassByID", mock.Anything, classID).Return(&service.ClassView{
			Class:    domain.Class{ID: classID, Name: "Spin", ImageKey: "classes/x/y.png"},
			ImageURL: "https://cdn.example.com/classes/x/y.png?sig=1",
		}, nil).Once()

		w, env := s.do(t, http.MethodGet, "/api/v1/classes/"+classID.Hex(), nil, primitive.NewObjectID(), domain.RoleMember)

		require.Equal(t, http.StatusOK, w.Code)
		assert.Contains(t, string(env.Data), `"imageUrl":"https://cdn.example.com/classes/x/y.png?sig=1"`)
		assert.NotContains(t, string(env.Data), "imageKey")
	})

	t.Run("not found", func(t *testing.T) {
		s := newTestServer(t)
		s.classes.On("GetClassByID", mock.Anything, classID).Return(nil, service.ErrClassNotFound).Once()

		w, env := s.do(t, http.MethodGet, "/api/v1/classes/"+classID.Hex(), nil, primitive.NewObjectID(), domain.RoleMember)

		assert.Equal(t, http.StatusNotFound, w.Code)
		assert.Equal(t, "Class not found", env.Message)
	})
}

func TestListClasses(t *testing.T) {
	s := newTestServer(t)
	s.classes.On("ListClasses", mock.Anything).Return([]domain.Class{{Name: "Spin"}, {Name: "Yoga"}}, nil).Once()

	w, env := s.do(t, http.MethodGet, "/api/v1/classes", nil, primitive.NewObjectID(), domain.RoleMember)

	require.Equal(t, http.StatusOK, w.Code)
	assert.Contains(t, string(env.Data), "Yoga")
}

func TestCreateImageUploadURL(t *testing.T) {
	trainerID := primitive.NewObjectID()
	classID := primitive.NewObjectID()
	actor := service.Actor{UserID: trainerID, Role: domain.RoleTrainer}

	t.Run("issued", func(t *testing.T) {
		s := newTestServer(t)
		s.classes.On("CreateImageUploadURL", mock.Anything, actor, classID, "image/png").
			Return(&service.ImageUpload{UploadURL: "https://s3/put", ObjectKey: "classes/k.png", ExpiresIn: 900}, nil).Once()

		w, env := s.do(t, http.MethodPost, "/api/v1/classes/"+classID.Hex()+"/image-upload-url", gin.H{"contentType": "image/png"}, trainerID, domain.RoleTrainer)

		require.Equal(t, http.StatusOK, w.Code)
		assert.Contains(t, string(env.Data), `"objectKey":"classes/k.png"`)
	})

	t.Run("non-image content type", func(t *testing.T) {
		s := newTestServer(t)
		w, _ := s.do(t, http.MethodPost, "/api/v1/classes/"+classID.Hex()+"/image-upload-url", gin.H{"contentType": "application/pdf"}, trainerID, domain.RoleTrainer)
		assert.Equal(t, http.StatusBadRequest, w.Code)
	})

	t.Run("storage disabled", func(t *testing.T) {
		s := newTestServer(t)
		s.classes.On("CreateImageUploadURL", mock.Anything, actor, classID, "image/png").
			Return(nil, service.ErrImageStorageDisabled).Once()

		w, _ := s.do(t, http.MethodPost, "/api/v1/classes/"+classID.Hex()+"/image-upload-url", gin.H{"contentType": "image/png"}, trainerID, domain.RoleTrainer)
		assert.Equal(t, http.StatusServiceUnavailable, w.Code)
	})
}
