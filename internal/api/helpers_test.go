package api

import (
	"bytes"
	"encoding/json"
	"net/http/httptest"
	"testing"
	"time"

	"ironhouse/gym-api/internal/domain"

	"github.com/gin-gonic/gin"
	"github.com/golang-jwt/jwt/v4"
	"github.com/stretchr/testify/require"
	"go.mongodb.org/mongo-driver/bson/primitive"
)

const testJWTSecret = "test-secret"

type testServer struct {
	router   *gin.Engine
	auth     *MockAuthService
	classes  *MockClassService
	bookings *MockBookingService
}

func newTestServer(t *testing.T) *testServer {
	t.Helper()
	gin.SetMode(gin.TestMode)

	s := &testServer{
		router:   gin.New(),
		auth:     new(MockAuthService),
		classes:  new(MockClassService),
		bookings: new(MockBookingService),
	}
	s.router.Use(RequestLogger())
	SetupRoutes(s.router, testJWTSecret, s.auth, s.classes, s.bookings)

	t.Cleanup(func() {
		s.auth.AssertExpectations(t)
		s.classes.AssertExpectations(t)
		s.bookings.AssertExpectations(t)
	})
	return s
}

type envelopeBody struct {
	Success bool            `json:"success"`
	Data    json.RawMessage `json:"data"`
	Message string          `json:"message"`
}

// do sends the request, authenticating as userID/role when userID is not nil.
func (s *testServer) do(t *testing.T, method, path string, body any, userID primitive.ObjectID, role domain.Role) (*httptest.ResponseRecorder, envelopeBody) {
	t.Helper()

	var reader *bytes.Reader
	if body != nil {
		raw, err := json.Marshal(body)
		require.NoError(t, err)
		reader = bytes.NewReader(raw)
	} else {
		reader = bytes.NewReader(nil)
	}

	req := httptest.NewRequest(method, path, reader)
	req.Header.Set("Content-Type", "application/json")
	if !userID.IsZero() {
		req.Header.Set("Authorization", "Bearer "+signToken(t, userID.Hex(), role, time.Hour))
	}

	w := httptest.NewRecorder()
	s.router.ServeHTTP(w, req)

	var env envelopeBody
	if w.Body.Len() > 0 && path != "/metrics" {
		require.NoError(t, json.Unmarshal(w.Body.Bytes(), &env), w.Body.String())
	}
	return w, env
}

func signToken(t *testing.T, userID string, role domain.Role, ttl time.Duration) string {
	t.Helper()
	claims := jwtClaims{
		UserID: userID,
		Role:   role,
		RegisteredClaims: jwt.RegisteredClaims{
			ExpiresAt: jwt.NewNumericDate(time.Now().Add(ttl)),
			IssuedAt:  jwt.NewNumericDate(time.Now()),
		},
	}
	token, err := jwt.NewWithClaims(jwt.SigningMethodHS256, claims).SignedString([]byte(testJWTSecret))
	require.NoError(t, err)
	return token
}
